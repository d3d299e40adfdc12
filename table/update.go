package table

import (
	"context"
	"fmt"
)

// Update applies changes to the first row where column equals value. The
// primary key cannot be changed. Changed unique columns are checked against
// the other rows and re-indexed.
func (t *Table) Update(ctx context.Context, column string, value any, changes Row) error {
	row := t.find(column, value)
	if row == nil {
		return fmt.Errorf("%w for %s=%v in table '%s'", ErrNotFound, column, value, t.name)
	}

	if t.primaryKey != "" {
		if _, ok := changes[t.primaryKey]; ok {
			return fmt.Errorf("%w: '%s'", ErrImmutableKey, t.primaryKey)
		}
	}

	for col, v := range changes {
		ct, ok := t.types[col]
		if !ok {
			return fmt.Errorf("%w '%s' for table '%s'", ErrUnknownColumn, col, t.name)
		}
		if !ct.Accepts(v) {
			return fmt.Errorf("%w: column '%s' expects type %s, got %s", ErrTypeMismatch, col, ct, TypeName(v))
		}
		if v == nil || !t.isUnique(col) {
			continue
		}
		if owner, exists := t.uniqueIndexes[col][v]; exists && !sameRow(owner, row) {
			return &ConstraintError{Kind: UniqueConstraint, Column: col, Value: v}
		}
	}

	t.unindexRow(row)
	for col, v := range changes {
		row[col] = v
	}
	t.indexRow(row)

	return t.persist(ctx)
}
