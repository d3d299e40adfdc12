package table

import (
	"context"
	"fmt"
	"math"
)

// Insert validates row against the schema and constraints and appends it. No
// state changes unless every check passes. The caller's map is copied, never
// retained. The stored row is returned as a copy, including any assigned
// primary key.
func (t *Table) Insert(ctx context.Context, row Row) (Row, error) {
	newRow := make(Row, len(t.columns))
	for k, v := range row {
		newRow[k] = v
	}

	// schema checks run first: index lookups need hashable, well typed keys
	for col := range newRow {
		if _, ok := t.types[col]; !ok {
			return nil, fmt.Errorf("%w '%s' for table '%s'", ErrUnknownColumn, col, t.name)
		}
	}
	for _, col := range t.columns {
		v, ok := newRow[col.Name]
		if !ok {
			newRow[col.Name] = nil
			continue
		}
		if !col.Type.Accepts(v) {
			return nil, fmt.Errorf("%w: column '%s' expects type %s, got %s", ErrTypeMismatch, col.Name, col.Type, TypeName(v))
		}
	}

	autoAssigned := false
	if t.primaryKey != "" {
		if newRow[t.primaryKey] == nil {
			if t.nextAutoID == math.MaxInt64 {
				return nil, fmt.Errorf("%w for table '%s'", ErrAutoIDExhausted, t.name)
			}
			ct := t.types[t.primaryKey]
			if !ct.Accepts(t.nextAutoID) {
				return nil, fmt.Errorf("%w: primary key '%s' of type %s cannot take an auto id", ErrTypeMismatch, t.primaryKey, ct)
			}
			newRow[t.primaryKey] = t.nextAutoID
			autoAssigned = true
		}
		pk := newRow[t.primaryKey]
		if _, exists := t.pkIndex[pk]; exists {
			return nil, &ConstraintError{Kind: PrimaryKeyConstraint, Column: t.primaryKey, Value: pk}
		}
	}

	for _, col := range t.uniqueKeys {
		v := newRow[col]
		if v == nil || col == t.primaryKey {
			continue
		}
		if _, exists := t.uniqueIndexes[col][v]; exists {
			return nil, &ConstraintError{Kind: UniqueConstraint, Column: col, Value: v}
		}
	}

	t.rows = append(t.rows, newRow)
	t.indexRow(newRow)

	if autoAssigned {
		t.nextAutoID++
	} else if pk, ok := newRow[t.primaryKey].(int64); ok {
		t.advanceAutoID(pk)
	}

	if err := t.persist(ctx); err != nil {
		return newRow.Clone(), err
	}
	return newRow.Clone(), nil
}

// advanceAutoID moves the counter past an explicit id. It saturates at
// MaxInt64, which marks the counter as exhausted.
func (t *Table) advanceAutoID(id int64) {
	if id < t.nextAutoID {
		return
	}
	if id == math.MaxInt64 {
		t.nextAutoID = math.MaxInt64
		return
	}
	t.nextAutoID = id + 1
}
