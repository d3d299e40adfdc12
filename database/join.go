package database

import (
	"fmt"

	"github.com/danthegoodman1/tinyrdb/table"
)

// Join is a nested loop inner equality join. Every matching (left, right)
// pair yields one merged row: the union of both rows, right values winning on
// a shared column name. No index is used and nothing is deduplicated, so it
// costs |left| x |right| comparisons.
func (db *Database) Join(leftName, rightName, leftColumn, rightColumn string) ([]table.Row, error) {
	left, err := db.Table(leftName)
	if err != nil {
		return nil, err
	}
	right, err := db.Table(rightName)
	if err != nil {
		return nil, err
	}
	if _, ok := left.ColumnType(leftColumn); !ok {
		return nil, fmt.Errorf("%w '%s' for table '%s'", table.ErrUnknownColumn, leftColumn, leftName)
	}
	if _, ok := right.ColumnType(rightColumn); !ok {
		return nil, fmt.Errorf("%w '%s' for table '%s'", table.ErrUnknownColumn, rightColumn, rightName)
	}

	leftRows := left.Rows()
	rightRows := right.Rows()

	res := make([]table.Row, 0)
	for _, l := range leftRows {
		for _, r := range rightRows {
			if !table.ValuesEqual(l[leftColumn], r[rightColumn]) {
				continue
			}
			merged := make(table.Row, len(l)+len(r))
			for k, v := range l {
				merged[k] = v
			}
			for k, v := range r {
				merged[k] = v
			}
			res = append(res, merged)
		}
	}
	return res, nil
}
