package table

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
)

type (
	// Snapshot is the persisted form of a Table. Indexes are derived on load and
	// never stored.
	Snapshot struct {
		Name       string   `json:"name"`
		Schema     Schema   `json:"schema"`
		PrimaryKey *string  `json:"primaryKey"`
		UniqueKeys []string `json:"uniqueKeys"`
		Rows       []Row    `json:"rows"`
		NextAutoID int64    `json:"nextAutoId"`
	}

	// Schema encodes as a JSON object of column name to type tag, keeping the
	// declared column order in both directions.
	Schema []Column
)

func (s Schema) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, col := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(col.Name)
		if err != nil {
			return nil, fmt.Errorf("error in json.Marshal: %w", err)
		}
		tag, err := json.Marshal(string(col.Type))
		if err != nil {
			return nil, fmt.Errorf("error in json.Marshal: %w", err)
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(tag)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (s *Schema) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("error reading schema: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("%w: schema must be an object", ErrInvalidSchema)
	}

	cols := Schema{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("error reading schema column: %w", err)
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("%w: bad schema key %v", ErrInvalidSchema, tok)
		}
		var tag string
		if err := dec.Decode(&tag); err != nil {
			return fmt.Errorf("error reading type tag for column '%s': %w", name, err)
		}
		ct, err := ParseColumnType(tag)
		if err != nil {
			return fmt.Errorf("%w: column '%s': %s", ErrInvalidSchema, name, err.Error())
		}
		cols = append(cols, Column{Name: name, Type: ct})
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("error reading schema end: %w", err)
	}

	*s = cols
	return nil
}

// Serialize captures the table's schema, rows and auto id counter.
func (t *Table) Serialize() Snapshot {
	s := Snapshot{
		Name:       t.name,
		Schema:     Schema(t.Columns()),
		UniqueKeys: t.UniqueKeys(),
		Rows:       t.Rows(),
		NextAutoID: t.nextAutoID,
	}
	if t.primaryKey != "" {
		pk := t.primaryKey
		s.PrimaryKey = &pk
	}
	return s
}

// Deserialize rebuilds a Table from a snapshot. Row values are converted to
// their declared column types (snapshots decoded with json.Decoder.UseNumber
// keep integers exact) and every index is rebuilt before the table is
// returned.
func Deserialize(s Snapshot) (*Table, error) {
	pk := ""
	if s.PrimaryKey != nil {
		pk = *s.PrimaryKey
	}

	t, err := New(s.Name, s.Schema, pk, s.UniqueKeys)
	if err != nil {
		return nil, err
	}
	if s.NextAutoID > t.nextAutoID {
		t.nextAutoID = s.NextAutoID
	}

	t.rows = make([]Row, 0, len(s.Rows))
	for i, raw := range s.Rows {
		row := make(Row, len(t.columns))
		for col, v := range raw {
			ct, ok := t.types[col]
			if !ok {
				return nil, fmt.Errorf("%w '%s' in row %d of table '%s'", ErrUnknownColumn, col, i, t.name)
			}
			nv, err := normalize(ct, v)
			if err != nil {
				return nil, fmt.Errorf("row %d of table '%s', column '%s': %w", i, t.name, col, err)
			}
			row[col] = nv
		}
		for _, col := range t.columns {
			if _, ok := row[col.Name]; !ok {
				row[col.Name] = nil
			}
		}

		if pk != "" {
			if row[pk] == nil {
				return nil, fmt.Errorf("row %d of table '%s' has a null primary key", i, t.name)
			}
			if _, exists := t.pkIndex[row[pk]]; exists {
				return nil, &ConstraintError{Kind: PrimaryKeyConstraint, Column: pk, Value: row[pk]}
			}
			if id, ok := row[pk].(int64); ok {
				t.advanceAutoID(id)
			}
		}
		for _, col := range t.uniqueKeys {
			if v := row[col]; v != nil && col != pk {
				if _, exists := t.uniqueIndexes[col][v]; exists {
					return nil, &ConstraintError{Kind: UniqueConstraint, Column: col, Value: v}
				}
			}
		}

		t.rows = append(t.rows, row)
		t.indexRow(row)
	}

	return t, nil
}

func normalize(ct ColumnType, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch ct {
	case TypeInt:
		switch n := v.(type) {
		case json.Number:
			if i, err := n.Int64(); err == nil {
				return i, nil
			}
			f, err := n.Float64()
			if err != nil || f != math.Trunc(f) {
				break
			}
			return int64(f), nil
		case float64:
			if n == math.Trunc(n) {
				return int64(n), nil
			}
		case int64:
			return n, nil
		case int:
			return int64(n), nil
		}
	case TypeFloat:
		switch n := v.(type) {
		case json.Number:
			if f, err := n.Float64(); err == nil {
				return f, nil
			}
		case float64:
			return n, nil
		case int64:
			return float64(n), nil
		case int:
			return float64(n), nil
		}
	case TypeStr:
		if s, ok := v.(string); ok {
			return s, nil
		}
	}
	return nil, fmt.Errorf("%w: expected %s, got %v (%T)", ErrTypeMismatch, ct, v, v)
}
