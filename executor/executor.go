package executor

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/danthegoodman1/tinyrdb/database"
	"github.com/danthegoodman1/tinyrdb/parser"
	"github.com/danthegoodman1/tinyrdb/table"
)

type (
	// Executor runs parsed statements against one catalog. All access to the
	// catalog goes through its lock.
	Executor struct {
		mu sync.Mutex
		db *database.Database
	}

	Result struct {
		Kind parser.Kind `json:"kind"`
		// Columns orders the keys of each row
		Columns      []string    `json:"columns,omitempty"`
		Rows         []table.Row `json:"rows,omitempty"`
		RowsAffected int         `json:"rowsAffected"`
		Tables       []string    `json:"tables,omitempty"`
		Message      string      `json:"message,omitempty"`
	}
)

var typeTokens = map[string]table.ColumnType{
	"INT":     table.TypeInt,
	"INTEGER": table.TypeInt,
	"FLOAT":   table.TypeFloat,
	"REAL":    table.TypeFloat,
	"DOUBLE":  table.TypeFloat,
	"STR":     table.TypeStr,
	"TEXT":    table.TypeStr,
	"STRING":  table.TypeStr,
	"VARCHAR": table.TypeStr,
}

func New(db *database.Database) *Executor {
	return &Executor{db: db}
}

// Run parses and executes one statement.
func (e *Executor) Run(ctx context.Context, sql string) (*Result, error) {
	cmd, err := parser.Parse(sql)
	if err != nil {
		return nil, err
	}
	return e.Execute(ctx, cmd)
}

func (e *Executor) Execute(ctx context.Context, cmd parser.Command) (*Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("kind", string(cmd.Kind())).Msg("executing statement")

	res, err := e.execute(ctx, cmd)
	if err != nil {
		if Classify(err) == StatusInternal {
			logger.Error().Err(err).Str("kind", string(cmd.Kind())).Msg("statement failed")
		}
		return nil, err
	}
	return res, nil
}

// WithDatabase runs fn while holding the executor lock, for helpers that need
// several catalog operations to happen as one step.
func (e *Executor) WithDatabase(ctx context.Context, fn func(ctx context.Context, db *database.Database) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(ctx, e.db)
}

func (e *Executor) execute(ctx context.Context, cmd parser.Command) (*Result, error) {
	switch c := cmd.(type) {
	case parser.ShowTables:
		return &Result{Kind: c.Kind(), Tables: e.db.TableNames()}, nil
	case parser.CreateTable:
		return e.createTable(ctx, c)
	case parser.Insert:
		return e.insert(ctx, c)
	case parser.Select:
		return e.selectRows(c)
	case parser.Join:
		return e.join(c)
	case parser.Update:
		return e.update(ctx, c)
	case parser.Delete:
		return e.delete(ctx, c)
	default:
		return nil, fmt.Errorf("unsupported command %T", cmd)
	}
}

func (e *Executor) createTable(ctx context.Context, c parser.CreateTable) (*Result, error) {
	columns := make([]table.Column, 0, len(c.Columns))
	primaryKey := ""
	var uniqueKeys []string
	for _, def := range c.Columns {
		ct, ok := typeTokens[strings.ToUpper(def.Type)]
		if !ok {
			return nil, fmt.Errorf("%w '%s' for column '%s'", ErrUnknownType, def.Type, def.Name)
		}
		columns = append(columns, table.Column{Name: def.Name, Type: ct})
		if def.Primary {
			if primaryKey != "" {
				return nil, fmt.Errorf("%w: table '%s' declares more than one primary key", table.ErrInvalidSchema, c.Table)
			}
			primaryKey = def.Name
		}
		if def.Unique {
			uniqueKeys = append(uniqueKeys, def.Name)
		}
	}

	created, err := e.db.CreateTable(ctx, c.Table, columns, primaryKey, uniqueKeys)
	if err != nil {
		return nil, fmt.Errorf("error creating table '%s': %w", c.Table, err)
	}
	msg := fmt.Sprintf("Table '%s' created", c.Table)
	if !created {
		msg = fmt.Sprintf("Table '%s' already exists", c.Table)
	}
	return &Result{Kind: c.Kind(), Message: msg}, nil
}

func (e *Executor) insert(ctx context.Context, c parser.Insert) (*Result, error) {
	t, err := e.db.Table(c.Table)
	if err != nil {
		return nil, err
	}
	cols := c.Columns
	if cols == nil {
		cols = t.ColumnNames()
	}
	if len(cols) != len(c.Values) {
		return nil, fmt.Errorf("%w: %d columns, %d values", ErrValueCount, len(cols), len(c.Values))
	}

	row := make(table.Row, len(cols))
	for i, col := range cols {
		v, err := coerceFor(t, col, c.Values[i])
		if err != nil {
			return nil, err
		}
		row[col] = v
	}

	stored, err := t.Insert(ctx, row)
	if err != nil {
		return nil, err
	}
	return &Result{
		Kind:         c.Kind(),
		Columns:      t.ColumnNames(),
		Rows:         []table.Row{stored},
		RowsAffected: 1,
	}, nil
}

func (e *Executor) selectRows(c parser.Select) (*Result, error) {
	t, err := e.db.Table(c.Table)
	if err != nil {
		return nil, err
	}

	where := table.Row{}
	if c.Where != nil {
		v, err := coerceFor(t, c.Where.Column, c.Where.Value)
		if err != nil {
			return nil, err
		}
		where[c.Where.Column] = v
	}
	rows, err := t.Select(where)
	if err != nil {
		return nil, err
	}

	cols, rows, err := project(c.Columns, t.ColumnNames(), rows)
	if err != nil {
		return nil, fmt.Errorf("%w for table '%s'", err, c.Table)
	}
	return &Result{Kind: c.Kind(), Columns: cols, Rows: rows}, nil
}

func (e *Executor) join(c parser.Join) (*Result, error) {
	left, err := e.db.Table(c.Left)
	if err != nil {
		return nil, err
	}
	right, err := e.db.Table(c.Right)
	if err != nil {
		return nil, err
	}

	rows, err := e.db.Join(c.Left, c.Right, unqualify(c.LeftColumn), unqualify(c.RightColumn))
	if err != nil {
		return nil, err
	}

	merged := left.ColumnNames()
	for _, col := range right.ColumnNames() {
		if _, ok := left.ColumnType(col); !ok {
			merged = append(merged, col)
		}
	}

	if c.Where != nil {
		col := unqualify(c.Where.Column)
		// right side values win in the merged row, so its type decides
		src := right
		if _, ok := right.ColumnType(col); !ok {
			src = left
		}
		v, err := coerceFor(src, col, c.Where.Value)
		if err != nil {
			return nil, err
		}
		filtered := make([]table.Row, 0, len(rows))
		for _, r := range rows {
			if table.ValuesEqual(r[col], v) {
				filtered = append(filtered, r)
			}
		}
		rows = filtered
	}

	var projection []string
	for _, col := range c.Columns {
		projection = append(projection, unqualify(col))
	}
	cols, rows, err := project(projection, merged, rows)
	if err != nil {
		return nil, fmt.Errorf("%w for join of '%s' and '%s'", err, c.Left, c.Right)
	}
	return &Result{Kind: c.Kind(), Columns: cols, Rows: rows}, nil
}

func (e *Executor) update(ctx context.Context, c parser.Update) (*Result, error) {
	if c.Where == nil {
		return nil, fmt.Errorf("%w: UPDATE on '%s'", ErrMissingWhereClause, c.Table)
	}
	t, err := e.db.Table(c.Table)
	if err != nil {
		return nil, err
	}
	wval, err := coerceFor(t, c.Where.Column, c.Where.Value)
	if err != nil {
		return nil, err
	}

	changes := make(table.Row, len(c.Set))
	for _, a := range c.Set {
		v, err := coerceFor(t, a.Column, a.Value)
		if err != nil {
			return nil, err
		}
		changes[a.Column] = v
	}

	if err := t.Update(ctx, c.Where.Column, wval, changes); err != nil {
		return nil, err
	}
	return &Result{Kind: c.Kind(), RowsAffected: 1}, nil
}

func (e *Executor) delete(ctx context.Context, c parser.Delete) (*Result, error) {
	if c.Where == nil {
		return nil, fmt.Errorf("%w: DELETE on '%s'", ErrMissingWhereClause, c.Table)
	}
	t, err := e.db.Table(c.Table)
	if err != nil {
		return nil, err
	}
	v, err := coerceFor(t, c.Where.Column, c.Where.Value)
	if err != nil {
		return nil, err
	}

	deleted, err := t.Delete(ctx, c.Where.Column, v)
	if err != nil {
		return nil, err
	}
	res := &Result{Kind: c.Kind()}
	if deleted {
		res.RowsAffected = 1
	}
	return res, nil
}

// coerceFor interprets raw as a literal for the given column of t.
func coerceFor(t *table.Table, column, raw string) (any, error) {
	ct, ok := t.ColumnType(column)
	if !ok {
		return nil, fmt.Errorf("%w '%s' for table '%s'", table.ErrUnknownColumn, column, t.Name())
	}
	v, err := parseAndCoerce(ct, raw)
	if err != nil {
		return nil, fmt.Errorf("column '%s': %w", column, err)
	}
	return v, nil
}

// project keeps only the requested columns of each row. A nil request keeps
// everything.
func project(requested, available []string, rows []table.Row) ([]string, []table.Row, error) {
	if requested == nil {
		return available, rows, nil
	}
	known := make(map[string]bool, len(available))
	for _, col := range available {
		known[col] = true
	}
	for _, col := range requested {
		if !known[col] {
			return nil, nil, fmt.Errorf("%w '%s'", table.ErrUnknownColumn, col)
		}
	}

	out := make([]table.Row, 0, len(rows))
	for _, r := range rows {
		p := make(table.Row, len(requested))
		for _, col := range requested {
			p[col] = r[col]
		}
		out = append(out, p)
	}
	return requested, out, nil
}

func unqualify(ref string) string {
	if i := strings.LastIndex(ref, "."); i >= 0 {
		return ref[i+1:]
	}
	return ref
}
