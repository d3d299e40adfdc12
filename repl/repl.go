package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/rs/zerolog"

	"github.com/danthegoodman1/tinyrdb/audit_log"
	"github.com/danthegoodman1/tinyrdb/executor"
	"github.com/danthegoodman1/tinyrdb/gologger"
	"github.com/danthegoodman1/tinyrdb/parser"
	"github.com/danthegoodman1/tinyrdb/utils"
)

const (
	prompt         = "tinyrdb> "
	continuePrompt = "...      "
)

const helpText = `
Supported SQL commands:
  SHOW TABLES;
  CREATE TABLE wallets (wallet_id INT PRIMARY KEY, owner STR, balance FLOAT, status STR);
  INSERT INTO wallets VALUES (6, 'Kim', 500.0, 'active');
  SELECT * FROM wallets WHERE wallet_id = 6;
  SELECT * FROM wallets JOIN ledger ON wallets.wallet_id = ledger.wallet_id;
  UPDATE wallets SET balance = 200.0 WHERE wallet_id = 3;
  DELETE FROM wallets WHERE wallet_id = 3;
  HELP
  EXIT
`

var logger = gologger.NewLogger()

type REPL struct {
	exec      *executor.Executor
	audit     *audit_log.Logger
	scanner   *bufio.Scanner
	out       io.Writer
	SessionID string
}

func New(exec *executor.Executor, audit *audit_log.Logger, in io.Reader, out io.Writer) *REPL {
	return &REPL{
		exec:      exec,
		audit:     audit,
		scanner:   bufio.NewScanner(in),
		out:       out,
		SessionID: utils.GenRandomShortID(),
	}
}

// Run reads and executes statements until EXIT, QUIT or end of input.
func (r *REPL) Run(ctx context.Context) error {
	sessionLogger := logger.With().Str("sessionID", r.SessionID).Logger()
	ctx = sessionLogger.WithContext(ctx)
	zerolog.Ctx(ctx).Debug().Msg("starting repl session")

	fmt.Fprintln(r.out, "tinyrdb SQL REPL")
	fmt.Fprintln(r.out, "Type HELP for commands")
	fmt.Fprintln(r.out, strings.Repeat("-", 50))

	for {
		sql, ok := r.readStatement()
		if !ok {
			fmt.Fprintln(r.out)
			return r.scanner.Err()
		}

		switch strings.ToLower(sql) {
		case "exit", "quit":
			fmt.Fprintln(r.out, "Goodbye!")
			return nil
		case "help":
			fmt.Fprint(r.out, helpText)
			continue
		}

		r.runStatement(ctx, sql)
	}
}

// readStatement reads lines until one ends with a semicolon. HELP, EXIT and
// QUIT on a first line need no semicolon. The trailing semicolon is dropped.
func (r *REPL) readStatement() (string, bool) {
	var lines []string
	for {
		if len(lines) == 0 {
			fmt.Fprint(r.out, prompt)
		} else {
			fmt.Fprint(r.out, continuePrompt)
		}
		if !r.scanner.Scan() {
			return "", false
		}
		line := strings.TrimSpace(r.scanner.Text())

		if len(lines) == 0 {
			switch strings.ToLower(line) {
			case "help", "exit", "quit":
				return line, true
			}
		}
		if line == "" {
			continue
		}

		lines = append(lines, line)
		if strings.HasSuffix(line, ";") {
			break
		}
	}

	sql := strings.Join(lines, "\n")
	return strings.TrimSpace(strings.TrimSuffix(sql, ";")), true
}

func (r *REPL) runStatement(ctx context.Context, sql string) {
	cmd, err := parser.Parse(sql)
	if err != nil {
		fmt.Fprintln(r.out, "Error:", err)
		return
	}
	if r.audit != nil {
		r.audit.Record(audit_log.SourceREPL, sql)
	}

	res, err := r.exec.Execute(ctx, cmd)
	if err != nil {
		fmt.Fprintln(r.out, "Error:", err)
		return
	}
	PrintResult(r.out, res)
}

// PrintResult writes a result the way the REPL shows it: a table for rows,
// one name per line for SHOW TABLES, otherwise a status line.
func PrintResult(out io.Writer, res *executor.Result) {
	switch res.Kind {
	case parser.KindShowTables:
		if len(res.Tables) == 0 {
			fmt.Fprintln(out, "No tables")
		}
		for _, name := range res.Tables {
			fmt.Fprintln(out, name)
		}
	case parser.KindSelect, parser.KindJoin:
		printRows(out, res)
	case parser.KindCreateTable:
		fmt.Fprintln(out, res.Message)
	default:
		fmt.Fprintf(out, "%d row(s) affected\n", res.RowsAffected)
	}
}

func printRows(out io.Writer, res *executor.Result) {
	if len(res.Rows) == 0 {
		fmt.Fprintln(out, "No rows")
		return
	}
	tw := tabwriter.NewWriter(out, 0, 0, 1, ' ', 0)
	fmt.Fprintln(tw, strings.Join(res.Columns, "\t| "))
	seps := make([]string, len(res.Columns))
	for i, col := range res.Columns {
		seps[i] = strings.Repeat("-", len(col))
	}
	fmt.Fprintln(tw, strings.Join(seps, "\t| "))
	for _, row := range res.Rows {
		cells := make([]string, len(res.Columns))
		for i, col := range res.Columns {
			cells[i] = FormatValue(row[col])
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t| "))
	}
	tw.Flush()
	fmt.Fprintf(out, "(%d rows)\n", len(res.Rows))
}

func FormatValue(v any) string {
	switch n := v.(type) {
	case nil:
		return "NULL"
	case float64:
		return executor.FormatFloat(n)
	case int64:
		return strconv.FormatInt(n, 10)
	default:
		return fmt.Sprint(n)
	}
}
