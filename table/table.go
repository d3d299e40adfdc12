package table

import (
	"context"
	"fmt"
	"reflect"
)

type (
	// Table is the row and index container for one relation. It is not safe
	// for concurrent use; callers serialize access.
	Table struct {
		name       string
		columns    []Column
		types      map[string]ColumnType
		primaryKey string
		uniqueKeys []string

		rows          []Row
		pkIndex       map[any]Row
		uniqueIndexes map[string]map[any]Row
		nextAutoID    int64

		onChange ChangeFunc
	}

	// ChangeFunc runs synchronously after every successful mutation.
	ChangeFunc func(ctx context.Context) error
)

// New creates an empty table. primaryKey may be empty. uniqueKeys may contain
// the primary key.
func New(name string, columns []Column, primaryKey string, uniqueKeys []string) (*Table, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: table name is empty", ErrInvalidSchema)
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("%w: table '%s' has no columns", ErrInvalidSchema, name)
	}

	t := &Table{
		name:          name,
		columns:       make([]Column, 0, len(columns)),
		types:         make(map[string]ColumnType, len(columns)),
		primaryKey:    primaryKey,
		pkIndex:       make(map[any]Row),
		uniqueIndexes: make(map[string]map[any]Row),
		nextAutoID:    1,
	}

	for _, col := range columns {
		if col.Name == "" {
			return nil, fmt.Errorf("%w: empty column name in table '%s'", ErrInvalidSchema, name)
		}
		if _, exists := t.types[col.Name]; exists {
			return nil, fmt.Errorf("%w: duplicate column '%s' in table '%s'", ErrInvalidSchema, col.Name, name)
		}
		if !col.Type.Valid() {
			return nil, fmt.Errorf("%w: column '%s' has unknown type '%s'", ErrInvalidSchema, col.Name, col.Type)
		}
		t.columns = append(t.columns, col)
		t.types[col.Name] = col.Type
	}

	if primaryKey != "" {
		if _, exists := t.types[primaryKey]; !exists {
			return nil, fmt.Errorf("%w: primary key '%s' is not a column of '%s'", ErrInvalidSchema, primaryKey, name)
		}
	}

	for _, col := range uniqueKeys {
		if _, exists := t.types[col]; !exists {
			return nil, fmt.Errorf("%w: unique key '%s' is not a column of '%s'", ErrInvalidSchema, col, name)
		}
		if _, dup := t.uniqueIndexes[col]; dup {
			continue
		}
		t.uniqueKeys = append(t.uniqueKeys, col)
		t.uniqueIndexes[col] = make(map[any]Row)
	}

	return t, nil
}

// OnChange registers the hook that persists the table after mutations.
func (t *Table) OnChange(f ChangeFunc) {
	t.onChange = f
}

func (t *Table) persist(ctx context.Context) error {
	if t.onChange == nil {
		return nil
	}
	if err := t.onChange(ctx); err != nil {
		return fmt.Errorf("error persisting table '%s': %w", t.name, err)
	}
	return nil
}

func (t *Table) Name() string {
	return t.name
}

func (t *Table) Columns() []Column {
	cols := make([]Column, len(t.columns))
	copy(cols, t.columns)
	return cols
}

func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.columns))
	for i, col := range t.columns {
		names[i] = col.Name
	}
	return names
}

func (t *Table) ColumnType(name string) (ColumnType, bool) {
	ct, ok := t.types[name]
	return ct, ok
}

func (t *Table) PrimaryKey() string {
	return t.primaryKey
}

func (t *Table) UniqueKeys() []string {
	keys := make([]string, len(t.uniqueKeys))
	copy(keys, t.uniqueKeys)
	return keys
}

func (t *Table) NextAutoID() int64 {
	return t.nextAutoID
}

func (t *Table) Len() int {
	return len(t.rows)
}

// Rows returns copies of every row in insertion order.
func (t *Table) Rows() []Row {
	rows := make([]Row, len(t.rows))
	for i, r := range t.rows {
		rows[i] = r.Clone()
	}
	return rows
}

func (t *Table) isUnique(col string) bool {
	_, ok := t.uniqueIndexes[col]
	return ok
}

func (t *Table) indexRow(row Row) {
	if t.primaryKey != "" {
		t.pkIndex[row[t.primaryKey]] = row
	}
	for col, idx := range t.uniqueIndexes {
		if v := row[col]; v != nil {
			idx[v] = row
		}
	}
}

func (t *Table) unindexRow(row Row) {
	if t.primaryKey != "" {
		delete(t.pkIndex, row[t.primaryKey])
	}
	for col, idx := range t.uniqueIndexes {
		if v := row[col]; v != nil && idx[v] != nil && sameRow(idx[v], row) {
			delete(idx, v)
		}
	}
}

// sameRow reports whether a and b are the same underlying map.
func sameRow(a, b Row) bool {
	return reflect.ValueOf(a).Pointer() == reflect.ValueOf(b).Pointer()
}
