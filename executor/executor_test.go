package executor

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/danthegoodman1/tinyrdb/database"
	"github.com/danthegoodman1/tinyrdb/datastore"
	"github.com/danthegoodman1/tinyrdb/parser"
	"github.com/danthegoodman1/tinyrdb/table"
)

func newExecutor(t *testing.T) (*Executor, *datastore.MemoryDataStore) {
	t.Helper()
	store := datastore.NewMemoryDataStore()
	db, err := database.Open(context.Background(), store)
	if err != nil {
		t.Fatal(err)
	}
	return New(db), store
}

func mustRun(t *testing.T, e *Executor, sql string) *Result {
	t.Helper()
	res, err := e.Run(context.Background(), sql)
	if err != nil {
		t.Fatalf("%s: %s", sql, err)
	}
	return res
}

func setupWallets(t *testing.T, e *Executor) {
	t.Helper()
	mustRun(t, e, "CREATE TABLE wallets (wallet_id INT PRIMARY KEY, owner STR, balance FLOAT, status STR);")
	mustRun(t, e, "INSERT INTO wallets VALUES (1, 'Ana', 100.0, 'active');")
}

func TestInsertAndSelect(t *testing.T) {
	e, _ := newExecutor(t)
	setupWallets(t, e)

	res := mustRun(t, e, "SELECT * FROM wallets;")
	want := []table.Row{{"wallet_id": int64(1), "owner": "Ana", "balance": 100.0, "status": "active"}}
	if !reflect.DeepEqual(res.Rows, want) {
		t.Fatalf("got %+v", res.Rows)
	}
	if !reflect.DeepEqual(res.Columns, []string{"wallet_id", "owner", "balance", "status"}) {
		t.Fatalf("bad columns %v", res.Columns)
	}
}

func TestDuplicatePrimaryKey(t *testing.T) {
	e, _ := newExecutor(t)
	setupWallets(t, e)

	_, err := e.Run(context.Background(), "INSERT INTO wallets VALUES (1, 'Ana', 100.0, 'active');")
	var ce *table.ConstraintError
	if !errors.As(err, &ce) || ce.Kind != table.PrimaryKeyConstraint {
		t.Fatalf("expected primary key violation, got %v", err)
	}
	if Classify(err) != StatusBadRequest {
		t.Fatalf("bad status %s", Classify(err))
	}
	if res := mustRun(t, e, "SELECT * FROM wallets"); len(res.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(res.Rows))
	}
}

func TestJoin(t *testing.T) {
	e, _ := newExecutor(t)
	setupWallets(t, e)
	mustRun(t, e, "CREATE TABLE ledger (transaction_id INT PRIMARY KEY, wallet_id INT, amount FLOAT)")
	mustRun(t, e, "INSERT INTO ledger (wallet_id, amount) VALUES (1, 25)")

	res := mustRun(t, e, "SELECT * FROM wallets JOIN ledger ON wallets.wallet_id = ledger.wallet_id;")
	if len(res.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(res.Rows))
	}
	row := res.Rows[0]
	if row["owner"] != "Ana" || row["amount"] != 25.0 || row["transaction_id"] != int64(1) {
		t.Fatalf("bad merged row %+v", row)
	}
	wantCols := []string{"wallet_id", "owner", "balance", "status", "transaction_id", "amount"}
	if !reflect.DeepEqual(res.Columns, wantCols) {
		t.Fatalf("bad columns %v", res.Columns)
	}

	res = mustRun(t, e, "SELECT owner, ledger.amount FROM wallets JOIN ledger ON wallet_id = wallet_id WHERE amount = 30")
	if len(res.Rows) != 0 {
		t.Fatalf("expected no rows, got %+v", res.Rows)
	}
	res = mustRun(t, e, "SELECT owner, ledger.amount FROM wallets JOIN ledger ON wallet_id = wallet_id WHERE amount = 25")
	if !reflect.DeepEqual(res.Rows, []table.Row{{"owner": "Ana", "amount": 25.0}}) {
		t.Fatalf("got %+v", res.Rows)
	}
}

func TestUpdateAndDelete(t *testing.T) {
	e, _ := newExecutor(t)
	setupWallets(t, e)
	mustRun(t, e, "INSERT INTO wallets VALUES (2, 'Ben', 10, 'active')")

	res := mustRun(t, e, "UPDATE wallets SET balance = 50.0 WHERE wallet_id = 1")
	if res.RowsAffected != 1 {
		t.Fatalf("bad rows affected %d", res.RowsAffected)
	}
	res = mustRun(t, e, "SELECT balance FROM wallets")
	if res.Rows[0]["balance"] != 50.0 || res.Rows[1]["balance"] != 10.0 {
		t.Fatalf("got %+v", res.Rows)
	}

	mustRun(t, e, "DELETE FROM wallets WHERE wallet_id = 2")
	res = mustRun(t, e, "DELETE FROM wallets WHERE wallet_id = 1")
	if res.RowsAffected != 1 {
		t.Fatalf("bad rows affected %d", res.RowsAffected)
	}
	if res := mustRun(t, e, "SELECT * FROM wallets"); len(res.Rows) != 0 {
		t.Fatalf("expected empty table, got %+v", res.Rows)
	}

	res = mustRun(t, e, "DELETE FROM wallets WHERE wallet_id = 1")
	if res.RowsAffected != 0 {
		t.Fatalf("second delete should be a no-op, got %d", res.RowsAffected)
	}
}

func TestUpdateErrors(t *testing.T) {
	e, _ := newExecutor(t)
	setupWallets(t, e)

	_, err := e.Run(context.Background(), "UPDATE wallets SET balance = 1")
	if !errors.Is(err, ErrMissingWhereClause) {
		t.Fatalf("expected missing where, got %v", err)
	}
	_, err = e.Run(context.Background(), "DELETE FROM wallets")
	if !errors.Is(err, ErrMissingWhereClause) {
		t.Fatalf("expected missing where, got %v", err)
	}

	_, err = e.Run(context.Background(), "UPDATE wallets SET balance = 1 WHERE wallet_id = 9")
	if !errors.Is(err, table.ErrNotFound) || Classify(err) != StatusNotFound {
		t.Fatalf("expected not found, got %v", err)
	}

	_, err = e.Run(context.Background(), "UPDATE wallets SET wallet_id = 2 WHERE wallet_id = 1")
	if !errors.Is(err, table.ErrImmutableKey) {
		t.Fatalf("expected immutable key, got %v", err)
	}

	_, err = e.Run(context.Background(), "UPDATE wallets SET balance = 'lots' WHERE wallet_id = 1")
	if !errors.Is(err, table.ErrTypeMismatch) {
		t.Fatalf("expected type mismatch, got %v", err)
	}
}

func TestInsertErrors(t *testing.T) {
	e, store := newExecutor(t)
	setupWallets(t, e)
	writes := store.Writes

	cases := []struct {
		sql    string
		target error
	}{
		{"INSERT INTO wallets VALUES (2, 'Ben')", ErrValueCount},
		{"INSERT INTO wallets (wallet_id, nickname) VALUES (2, 'b')", table.ErrUnknownColumn},
		{"INSERT INTO wallets VALUES ('two', 'Ben', 1.0, 'active')", table.ErrTypeMismatch},
		{"INSERT INTO wallets VALUES (2.5, 'Ben', 1.0, 'active')", table.ErrTypeMismatch},
		{"INSERT INTO nope VALUES (1)", database.ErrUnknownTable},
		{"INSERT INTO wallets VALUES (1 + 1, 'Ben', 1.0, 'active')", parser.ErrSyntax},
	}
	for _, c := range cases {
		_, err := e.Run(context.Background(), c.sql)
		if !errors.Is(err, c.target) {
			t.Fatalf("%s: expected %v, got %v", c.sql, c.target, err)
		}
	}

	if res := mustRun(t, e, "SELECT * FROM wallets"); len(res.Rows) != 1 {
		t.Fatalf("failed inserts changed the table: %+v", res.Rows)
	}
	if store.Writes != writes {
		t.Fatalf("failed inserts wrote snapshots: %d -> %d", writes, store.Writes)
	}
}

func TestCoercionOnInsert(t *testing.T) {
	e, _ := newExecutor(t)
	mustRun(t, e, "CREATE TABLE t (id INTEGER PRIMARY KEY, n DOUBLE, s TEXT UNIQUE, flag INT)")
	mustRun(t, e, "INSERT INTO t VALUES (null, 3, 42, true)")
	mustRun(t, e, "INSERT INTO t (n, s) VALUES ('2.5', \"it\"\"s\")")

	res := mustRun(t, e, "SELECT * FROM t")
	want := []table.Row{
		{"id": int64(1), "n": 3.0, "s": "42", "flag": int64(1)},
		{"id": int64(2), "n": 2.5, "s": `it"s`, "flag": nil},
	}
	if !reflect.DeepEqual(res.Rows, want) {
		t.Fatalf("got %+v", res.Rows)
	}

	res = mustRun(t, e, "SELECT id FROM t WHERE s = 42")
	if len(res.Rows) != 1 || res.Rows[0]["id"] != int64(1) {
		t.Fatalf("got %+v", res.Rows)
	}
}

func TestCreateTable(t *testing.T) {
	e, _ := newExecutor(t)
	res := mustRun(t, e, "CREATE TABLE t (id INT PRIMARY KEY, phone STR UNIQUE NOT NULL)")
	if res.Message != "Table 't' created" {
		t.Fatalf("bad message %q", res.Message)
	}
	res = mustRun(t, e, "CREATE TABLE t (id INT)")
	if res.Message != "Table 't' already exists" {
		t.Fatalf("bad message %q", res.Message)
	}

	_, err := e.Run(context.Background(), "CREATE TABLE u (id BLOB)")
	if !errors.Is(err, ErrUnknownType) {
		t.Fatalf("expected unknown type, got %v", err)
	}
	_, err = e.Run(context.Background(), "CREATE TABLE u (a INT PRIMARY KEY, b INT PRIMARY KEY)")
	if !errors.Is(err, table.ErrInvalidSchema) {
		t.Fatalf("expected invalid schema, got %v", err)
	}

	res = mustRun(t, e, "SHOW TABLES")
	if !reflect.DeepEqual(res.Tables, []string{"t"}) {
		t.Fatalf("got %v", res.Tables)
	}

	err = e.WithDatabase(context.Background(), func(ctx context.Context, db *database.Database) error {
		tbl, err := db.Table("t")
		if err != nil {
			return err
		}
		if tbl.PrimaryKey() != "id" || !reflect.DeepEqual(tbl.UniqueKeys(), []string{"id", "phone"}) {
			t.Fatalf("bad keys %q %v", tbl.PrimaryKey(), tbl.UniqueKeys())
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestSelectErrors(t *testing.T) {
	e, _ := newExecutor(t)
	setupWallets(t, e)

	_, err := e.Run(context.Background(), "SELECT nickname FROM wallets")
	if !errors.Is(err, table.ErrUnknownColumn) {
		t.Fatalf("expected unknown column, got %v", err)
	}
	_, err = e.Run(context.Background(), "SELECT * FROM wallets WHERE nickname = 'a'")
	if !errors.Is(err, table.ErrUnknownColumn) {
		t.Fatalf("expected unknown column, got %v", err)
	}
	_, err = e.Run(context.Background(), "SELECT * FROM ghosts")
	if Classify(err) != StatusNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestClassify(t *testing.T) {
	if Classify(nil) != StatusOK {
		t.Fatal("nil should be ok")
	}
	if Classify(errors.New("disk on fire")) != StatusInternal {
		t.Fatal("unknown errors should be internal")
	}
	_, err := parser.Parse("DROP TABLE x")
	if Classify(err) != StatusBadRequest {
		t.Fatal("syntax errors should be bad requests")
	}
}

func TestInsertRow(t *testing.T) {
	e, _ := newExecutor(t)
	setupWallets(t, e)

	res, err := e.InsertRow(context.Background(), "wallets", map[string]any{
		"owner":   "Ben",
		"balance": json.Number("7"),
		"status":  nil,
	})
	if err != nil {
		t.Fatal(err)
	}
	want := table.Row{"wallet_id": int64(2), "owner": "Ben", "balance": 7.0, "status": nil}
	if !reflect.DeepEqual(res.Rows[0], want) {
		t.Fatalf("got %+v", res.Rows[0])
	}

	_, err = e.InsertRow(context.Background(), "wallets", map[string]any{"owner": []any{"x"}})
	if !errors.Is(err, table.ErrTypeMismatch) {
		t.Fatalf("expected type mismatch, got %v", err)
	}
	_, err = e.InsertRow(context.Background(), "wallets", map[string]any{"meta.tag": "x"})
	if !errors.Is(err, table.ErrUnknownColumn) {
		t.Fatalf("expected unknown column, got %v", err)
	}
}

func TestWhereNull(t *testing.T) {
	e, _ := newExecutor(t)
	mustRun(t, e, "CREATE TABLE a (id INT PRIMARY KEY, k INT)")
	mustRun(t, e, "INSERT INTO a VALUES (1, null)")
	mustRun(t, e, "INSERT INTO a VALUES (2, 5)")
	mustRun(t, e, "CREATE TABLE b (bid INT PRIMARY KEY, k INT)")
	mustRun(t, e, "INSERT INTO b VALUES (10, null)")

	res := mustRun(t, e, "SELECT * FROM a JOIN b ON a.k = b.k")
	if len(res.Rows) != 1 || res.Rows[0]["id"] != int64(1) || res.Rows[0]["bid"] != int64(10) {
		t.Fatalf("join on null keys: %+v", res.Rows)
	}

	res = mustRun(t, e, "SELECT id FROM a WHERE k = null")
	if len(res.Rows) != 1 || res.Rows[0]["id"] != int64(1) {
		t.Fatalf("select where null: %+v", res.Rows)
	}

	res = mustRun(t, e, "DELETE FROM a WHERE k = null")
	if res.RowsAffected != 1 {
		t.Fatal("delete where null affected", res.RowsAffected)
	}
	res = mustRun(t, e, "SELECT * FROM a")
	if len(res.Rows) != 1 || res.Rows[0]["id"] != int64(2) {
		t.Fatalf("wrong rows left: %+v", res.Rows)
	}
}

func TestAutoIDExhausted(t *testing.T) {
	e, _ := newExecutor(t)
	mustRun(t, e, "CREATE TABLE t (id INT PRIMARY KEY, v STR)")
	mustRun(t, e, "INSERT INTO t VALUES (9223372036854775807, 'x')")

	_, err := e.Run(context.Background(), "INSERT INTO t (v) VALUES ('y')")
	if !errors.Is(err, table.ErrAutoIDExhausted) {
		t.Fatal("expected exhausted auto id, got", err)
	}
	if Classify(err) != StatusBadRequest {
		t.Fatal("expected bad request, got", Classify(err))
	}
	res := mustRun(t, e, "SELECT * FROM t")
	if len(res.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(res.Rows))
	}
}

func TestCoerceFloatIntoStr(t *testing.T) {
	e, _ := newExecutor(t)
	mustRun(t, e, "CREATE TABLE notes (id INT PRIMARY KEY, body STR)")
	mustRun(t, e, "INSERT INTO notes VALUES (1, 100.0)")

	res := mustRun(t, e, "SELECT body FROM notes WHERE id = 1")
	if res.Rows[0]["body"] != "100.0" {
		t.Fatalf("got %#v", res.Rows[0]["body"])
	}
}
