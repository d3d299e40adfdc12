package executor

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/danthegoodman1/tinyrdb/parser"
	"github.com/danthegoodman1/tinyrdb/table"
)

// InsertRow inserts a row given as decoded JSON values rather than SQL
// literals. Values are coerced to the column types the same way statement
// literals are.
func (e *Executor) InsertRow(ctx context.Context, tableName string, values map[string]any) (*Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	t, err := e.db.Table(tableName)
	if err != nil {
		return nil, err
	}

	row := make(table.Row, len(values))
	for col, raw := range values {
		ct, ok := t.ColumnType(col)
		if !ok {
			return nil, fmt.Errorf("%w '%s' for table '%s'", table.ErrUnknownColumn, col, tableName)
		}
		v, err := jsonValue(raw)
		if err != nil {
			return nil, fmt.Errorf("column '%s': %w", col, err)
		}
		if v, err = Coerce(ct, v); err != nil {
			return nil, fmt.Errorf("column '%s': %w", col, err)
		}
		row[col] = v
	}

	stored, err := t.Insert(ctx, row)
	if err != nil {
		return nil, err
	}
	return &Result{
		Kind:         parser.KindInsert,
		Columns:      t.ColumnNames(),
		Rows:         []table.Row{stored},
		RowsAffected: 1,
	}, nil
}

// jsonValue maps a decoded JSON scalar onto the literal value types.
func jsonValue(v any) (any, error) {
	switch n := v.(type) {
	case nil, string, bool, int64, float64:
		return n, nil
	case int:
		return int64(n), nil
	case json.Number:
		return ParseLiteral(n.String())
	default:
		return nil, fmt.Errorf("%w: unsupported JSON value %s", table.ErrTypeMismatch, table.TypeName(v))
	}
}
