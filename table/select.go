package table

import "fmt"

// Find returns a copy of the first row whose column equals value. Primary key
// and unique columns are served from their index.
func (t *Table) Find(column string, value any) (Row, bool) {
	row := t.find(column, value)
	if row == nil {
		return nil, false
	}
	return row.Clone(), true
}

// find returns the owning row, not a copy.
func (t *Table) find(column string, value any) Row {
	if !storable(value) {
		return nil
	}
	if column == t.primaryKey && column != "" {
		return t.pkIndex[t.indexKey(column, value)]
	}
	// nulls are never indexed, so a null lookup on a unique column scans
	if idx, ok := t.uniqueIndexes[column]; ok && value != nil {
		return idx[t.indexKey(column, value)]
	}
	if _, ok := t.types[column]; !ok {
		return nil
	}
	for _, r := range t.rows {
		if ValuesEqual(r[column], value) {
			return r
		}
	}
	return nil
}

// Select returns copies of every row matching all column = value pairs in
// where. An empty predicate selects everything.
func (t *Table) Select(where Row) ([]Row, error) {
	for col := range where {
		if _, ok := t.types[col]; !ok {
			return nil, fmt.Errorf("%w '%s' for table '%s'", ErrUnknownColumn, col, t.name)
		}
	}

	res := make([]Row, 0)
	for _, r := range t.rows {
		if matches(r, where) {
			res = append(res, r.Clone())
		}
	}
	return res, nil
}

func matches(r Row, where Row) bool {
	for col, v := range where {
		if !ValuesEqual(r[col], v) {
			return false
		}
	}
	return true
}

// storable reports whether v is a value a row can hold. Anything else matches
// no row and must not reach an index.
func storable(v any) bool {
	switch v.(type) {
	case nil, int64, float64, string:
		return true
	default:
		return false
	}
}

// indexKey converts a numeric lookup value to the column's stored numeric
// type so that index hits agree with ValuesEqual.
func (t *Table) indexKey(column string, value any) any {
	switch t.types[column] {
	case TypeInt:
		if f, ok := value.(float64); ok && f == float64(int64(f)) {
			return int64(f)
		}
	case TypeFloat:
		if i, ok := value.(int64); ok {
			return float64(i)
		}
	}
	return value
}
