package executor

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/danthegoodman1/tinyrdb/table"
)

// ParseLiteral interprets the source text of one literal. Accepted forms are
// signed integers, floats (with optional exponent), single or double quoted
// strings with doubled-quote escapes, true, false and null. Nothing is
// evaluated.
func ParseLiteral(raw string) (any, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, fmt.Errorf("%w: empty value", ErrInvalidLiteral)
	}

	switch strings.ToLower(s) {
	case "null":
		return nil, nil
	case "true":
		return true, nil
	case "false":
		return false, nil
	}

	if q := s[0]; q == '\'' || q == '"' {
		return parseQuoted(s)
	}

	if !isNumeric(s) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidLiteral, raw)
	}
	if !strings.ContainsAny(s, ".eE") {
		i, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: integer %s out of range", ErrInvalidLiteral, raw)
		}
		return i, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidLiteral, raw)
	}
	return f, nil
}

func parseQuoted(s string) (string, error) {
	q := s[0]
	if len(s) < 2 || s[len(s)-1] != q {
		return "", fmt.Errorf("%w: unterminated string %s", ErrInvalidLiteral, s)
	}
	body := s[1 : len(s)-1]
	quote := string(q)
	// every quote inside the body must be doubled
	if strings.Count(strings.ReplaceAll(body, quote+quote, ""), quote) > 0 {
		return "", fmt.Errorf("%w: stray quote in %s", ErrInvalidLiteral, s)
	}
	return strings.ReplaceAll(body, quote+quote, quote), nil
}

// isNumeric checks the number grammar: [+-] digits [. digits] [e [+-] digits],
// where either side of the point may be empty but not both.
func isNumeric(s string) bool {
	i := 0
	if s[i] == '+' || s[i] == '-' {
		i++
	}
	digits := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
			digits++
		}
	}
	if digits == 0 {
		return false
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		i++
		if i < len(s) && (s[i] == '+' || s[i] == '-') {
			i++
		}
		exp := 0
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
			exp++
		}
		if exp == 0 {
			return false
		}
	}
	return i == len(s)
}

// Coerce converts a literal value to the column type. nil passes through.
func Coerce(ct table.ColumnType, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch ct {
	case table.TypeInt:
		switch n := v.(type) {
		case int64:
			return n, nil
		case float64:
			if n == math.Trunc(n) && n >= math.MinInt64 && n < math.MaxInt64 {
				return int64(n), nil
			}
		case bool:
			if n {
				return int64(1), nil
			}
			return int64(0), nil
		case string:
			s := strings.TrimSpace(n)
			if i, err := strconv.ParseInt(s, 10, 64); err == nil {
				return i, nil
			}
		}
	case table.TypeFloat:
		switch n := v.(type) {
		case float64:
			return n, nil
		case int64:
			return float64(n), nil
		case bool:
			if n {
				return 1.0, nil
			}
			return 0.0, nil
		case string:
			s := strings.TrimSpace(n)
			if isNumeric(s) {
				if f, err := strconv.ParseFloat(s, 64); err == nil {
					return f, nil
				}
			}
		}
	case table.TypeStr:
		switch n := v.(type) {
		case string:
			return n, nil
		case int64:
			return strconv.FormatInt(n, 10), nil
		case float64:
			return FormatFloat(n), nil
		case bool:
			return strconv.FormatBool(n), nil
		}
	}
	return nil, fmt.Errorf("%w: expected %s, got %s %v", table.ErrTypeMismatch, ct, table.TypeName(v), v)
}

// FormatFloat renders f in plain decimal notation, keeping a ".0" on integral
// values so a float never reads back as an int.
func FormatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".NI") {
		s += ".0"
	}
	return s
}

func parseAndCoerce(ct table.ColumnType, raw string) (any, error) {
	v, err := ParseLiteral(raw)
	if err != nil {
		return nil, err
	}
	return Coerce(ct, v)
}
