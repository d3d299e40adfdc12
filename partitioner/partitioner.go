package partitioner

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type (
	// PartitionPlan derives one path segment "As=value" from a row by
	// applying Func to Args.
	PartitionPlan struct {
		Func string
		Args []string
		As   string
	}

	PartitionFunc func(row map[string]any, args []string) (string, error)
)

var (
	Functions = make(map[string]PartitionFunc)

	ErrFuncNotFound = errors.New("partition function not found")

	ErrMissingArgs       = errors.New("missing args")
	ErrMissingColumns    = errors.New("missing one or more columns specified in args")
	ErrInvalidColumnType = errors.New("invalid column type")
)

// Layouts tried in order when a time column holds a string.
var timeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05.000Z",
	time.RFC3339Nano,
	"2006-01-02",
}

func init() {
	registerTimeFunc("toDay", func(t time.Time) string { return fmt.Sprint(t.Day()) })
	registerTimeFunc("toMonth", func(t time.Time) string { return fmt.Sprint(int(t.Month())) })
	registerTimeFunc("toYear", func(t time.Time) string { return fmt.Sprint(t.Year()) })
	registerTimeFunc("toYearDay", func(t time.Time) string { return fmt.Sprint(t.YearDay()) })
	registerTimeFunc("toYearWeek", func(t time.Time) string {
		year, week := t.ISOWeek()
		return fmt.Sprintf("%d-%02d", year, week)
	})
	registerTimeFunc("toWeekDay", func(t time.Time) string { return t.Weekday().String() })

	// value partitions on the column value itself
	Functions["value"] = func(row map[string]any, args []string) (string, error) {
		if len(args) == 0 {
			return "", ErrMissingArgs
		}
		v, exists := row[args[0]]
		if !exists {
			return "", ErrMissingColumns
		}
		if v == nil {
			return "null", nil
		}
		return fmt.Sprint(v), nil
	}
}

func registerTimeFunc(name string, f func(time.Time) string) {
	Functions[name] = func(row map[string]any, args []string) (string, error) {
		t, err := parseTime(row, args)
		if err != nil {
			return "", fmt.Errorf("error in parseTime: %w", err)
		}
		return f(t), nil
	}
}

// ParsePlan reads a "func:column" or "func:column:as" spec. As defaults to
// the function name.
func ParsePlan(s string) (PartitionPlan, error) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 || parts[0] == "" || parts[1] == "" {
		return PartitionPlan{}, fmt.Errorf("invalid partition plan %q, expected func:column[:as]", s)
	}
	if _, ok := Functions[parts[0]]; !ok {
		return PartitionPlan{}, fmt.Errorf("%w: %s", ErrFuncNotFound, parts[0])
	}
	plan := PartitionPlan{Func: parts[0], Args: []string{parts[1]}, As: parts[0]}
	if len(parts) == 3 && parts[2] != "" {
		plan.As = parts[2]
	}
	return plan, nil
}

func GetRowPartition(row map[string]any, partitioners []PartitionPlan) (string, error) {
	var finalParts []string
	for _, partFunc := range partitioners {
		f, ok := Functions[partFunc.Func]
		if !ok {
			return "", ErrFuncNotFound
		}

		s, err := f(row, partFunc.Args)
		if err != nil {
			return "", fmt.Errorf("error processing partition function %s: %w", partFunc.Func, err)
		}
		finalParts = append(finalParts, fmt.Sprintf("%s=%s", partFunc.As, s))
	}
	return strings.Join(finalParts, "/"), nil
}

func parseTime(row map[string]any, args []string) (time.Time, error) {
	if len(args) == 0 {
		return time.Time{}, ErrMissingArgs
	}

	key := args[0]
	if key == "now()" {
		return time.Now(), nil
	}

	value, exists := row[key]
	if !exists {
		return time.Time{}, ErrMissingColumns
	}

	switch v := value.(type) {
	case string:
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, v); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("%w: unrecognized time %q", ErrInvalidColumnType, v)
	case int64:
		// unix milliseconds
		return time.UnixMilli(v).UTC(), nil
	case float64:
		return time.UnixMilli(int64(v)).UTC(), nil
	default:
		return time.Time{}, ErrInvalidColumnType
	}
}
