package table

import (
	"fmt"
	"math"
)

type (
	// ColumnType is one of the three primitive types a column can hold. The
	// string value doubles as the type tag in snapshots.
	ColumnType string

	Column struct {
		Name string
		Type ColumnType
	}

	// Row maps column name to a typed value (int64, float64, string) or nil.
	Row map[string]any
)

const (
	TypeInt   ColumnType = "int"
	TypeFloat ColumnType = "float"
	TypeStr   ColumnType = "str"
)

func (ct ColumnType) Valid() bool {
	switch ct {
	case TypeInt, TypeFloat, TypeStr:
		return true
	default:
		return false
	}
}

// Accepts reports whether v may be stored in a column of this type. nil is
// always accepted.
func (ct ColumnType) Accepts(v any) bool {
	if v == nil {
		return true
	}
	switch ct {
	case TypeInt:
		_, ok := v.(int64)
		return ok
	case TypeFloat:
		_, ok := v.(float64)
		return ok
	case TypeStr:
		_, ok := v.(string)
		return ok
	default:
		return false
	}
}

func ParseColumnType(tag string) (ColumnType, error) {
	ct := ColumnType(tag)
	if !ct.Valid() {
		return "", fmt.Errorf("unknown type tag '%s'", tag)
	}
	return ct, nil
}

// TypeName names the Go-side type of a value for error messages.
func TypeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case int64, int, int32:
		return "int"
	case float64, float32:
		return "float"
	case string:
		return "str"
	case bool:
		return "bool"
	default:
		return fmt.Sprintf("%T", v)
	}
}

func (r Row) Clone() Row {
	c := make(Row, len(r))
	for k, v := range r {
		c[k] = v
	}
	return c
}

// ValuesEqual compares two stored values. Numbers compare by value across
// int64 and float64, so 1 equals 1.0. nil equals nil and nothing else.
func ValuesEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	af, aNum := asFloat(a)
	bf, bNum := asFloat(b)
	if aNum && bNum {
		ai, aInt := a.(int64)
		bi, bInt := b.(int64)
		if aInt && bInt {
			return ai == bi
		}
		return af == bf
	}
	if aNum != bNum {
		return false
	}
	return a == b
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int64:
		return float64(n), true
	case float64:
		if math.IsNaN(n) {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}
