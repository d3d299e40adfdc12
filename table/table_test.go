package table

import (
	"context"
	"errors"
	"math"
	"testing"
)

func walletsTable(t *testing.T) *Table {
	t.Helper()
	tbl, err := New("wallets", []Column{
		{Name: "wallet_id", Type: TypeInt},
		{Name: "owner", Type: TypeStr},
		{Name: "phone", Type: TypeStr},
		{Name: "balance", Type: TypeFloat},
	}, "wallet_id", []string{"wallet_id", "phone"})
	if err != nil {
		t.Fatal(err)
	}
	return tbl
}

// checkIndexes asserts every index entry points at the owning row and nothing
// else is indexed.
func checkIndexes(t *testing.T, tbl *Table) {
	t.Helper()
	if tbl.primaryKey != "" && len(tbl.pkIndex) != len(tbl.rows) {
		t.Fatalf("pk index has %d entries for %d rows", len(tbl.pkIndex), len(tbl.rows))
	}
	for col, idx := range tbl.uniqueIndexes {
		nonNull := 0
		for _, r := range tbl.rows {
			v := r[col]
			if v == nil {
				continue
			}
			nonNull++
			if !sameRow(idx[v], r) {
				t.Fatalf("unique index %s[%v] does not point at its row", col, v)
			}
		}
		if nonNull != len(idx) {
			t.Fatalf("unique index %s has %d entries, expected %d", col, len(idx), nonNull)
		}
	}
	for _, r := range tbl.rows {
		if tbl.primaryKey != "" && !sameRow(tbl.pkIndex[r[tbl.primaryKey]], r) {
			t.Fatalf("pk index entry for %v is stale", r[tbl.primaryKey])
		}
	}
}

func TestNewValidatesSchema(t *testing.T) {
	if _, err := New("t", nil, "", nil); !errors.Is(err, ErrInvalidSchema) {
		t.Fatal("expected invalid schema for no columns, got", err)
	}
	if _, err := New("t", []Column{{Name: "a", Type: TypeInt}, {Name: "a", Type: TypeStr}}, "", nil); !errors.Is(err, ErrInvalidSchema) {
		t.Fatal("expected invalid schema for duplicate column, got", err)
	}
	if _, err := New("t", []Column{{Name: "a", Type: "bool"}}, "", nil); !errors.Is(err, ErrInvalidSchema) {
		t.Fatal("expected invalid schema for bad type, got", err)
	}
	if _, err := New("t", []Column{{Name: "a", Type: TypeInt}}, "b", nil); !errors.Is(err, ErrInvalidSchema) {
		t.Fatal("expected invalid schema for unknown pk, got", err)
	}
	if _, err := New("t", []Column{{Name: "a", Type: TypeInt}}, "", []string{"c"}); !errors.Is(err, ErrInvalidSchema) {
		t.Fatal("expected invalid schema for unknown unique key, got", err)
	}
}

func TestInsertFillsNullsAndAutoID(t *testing.T) {
	ctx := context.Background()
	tbl := walletsTable(t)

	stored, err := tbl.Insert(ctx, Row{"owner": "Ana"})
	if err != nil {
		t.Fatal(err)
	}
	if stored["wallet_id"] != int64(1) {
		t.Fatalf("expected auto id 1, got %v", stored["wallet_id"])
	}
	if v, ok := stored["balance"]; !ok || v != nil {
		t.Fatal("missing column was not filled with null")
	}

	if _, err := tbl.Insert(ctx, Row{"wallet_id": int64(10), "owner": "Ben"}); err != nil {
		t.Fatal(err)
	}
	stored, err = tbl.Insert(ctx, Row{"wallet_id": nil, "owner": "Cy"})
	if err != nil {
		t.Fatal(err)
	}
	if stored["wallet_id"] != int64(11) {
		t.Fatalf("auto id should continue after explicit key, got %v", stored["wallet_id"])
	}
	if tbl.NextAutoID() != 12 {
		t.Fatalf("expected next auto id 12, got %d", tbl.NextAutoID())
	}
	checkIndexes(t, tbl)
}

func TestInsertDoesNotRetainCallerRow(t *testing.T) {
	tbl := walletsTable(t)
	in := Row{"wallet_id": int64(1), "owner": "Ana"}
	if _, err := tbl.Insert(context.Background(), in); err != nil {
		t.Fatal(err)
	}
	in["owner"] = "Mallory"
	got, _ := tbl.Find("wallet_id", int64(1))
	if got["owner"] != "Ana" {
		t.Fatal("table row changed through caller's map")
	}
	if _, ok := in["balance"]; ok {
		t.Fatal("caller's map was filled in")
	}
}

func TestPrimaryKeyViolation(t *testing.T) {
	ctx := context.Background()
	tbl := walletsTable(t)
	if _, err := tbl.Insert(ctx, Row{"wallet_id": int64(1), "owner": "Ana"}); err != nil {
		t.Fatal(err)
	}
	_, err := tbl.Insert(ctx, Row{"wallet_id": int64(1), "owner": "Ben"})
	var ce *ConstraintError
	if !errors.As(err, &ce) || ce.Kind != PrimaryKeyConstraint {
		t.Fatal("expected primary key violation, got", err)
	}
	if !errors.Is(err, ErrConstraintViolation) {
		t.Fatal("constraint error should match ErrConstraintViolation")
	}
	if tbl.Len() != 1 {
		t.Fatalf("expected 1 row, got %d", tbl.Len())
	}
	row, _ := tbl.Find("wallet_id", int64(1))
	if row["owner"] != "Ana" {
		t.Fatal("first row was replaced")
	}
	checkIndexes(t, tbl)
}

func TestUniqueViolationAndNulls(t *testing.T) {
	ctx := context.Background()
	tbl := walletsTable(t)
	if _, err := tbl.Insert(ctx, Row{"owner": "Ana", "phone": "555"}); err != nil {
		t.Fatal(err)
	}
	_, err := tbl.Insert(ctx, Row{"owner": "Ben", "phone": "555"})
	var ce *ConstraintError
	if !errors.As(err, &ce) || ce.Kind != UniqueConstraint || ce.Column != "phone" {
		t.Fatal("expected unique violation on phone, got", err)
	}
	if tbl.NextAutoID() != 2 {
		t.Fatal("failed insert consumed an auto id")
	}

	// nulls are exempt
	if _, err := tbl.Insert(ctx, Row{"owner": "Cy"}); err != nil {
		t.Fatal(err)
	}
	if _, err := tbl.Insert(ctx, Row{"owner": "Di", "phone": nil}); err != nil {
		t.Fatal(err)
	}
	if tbl.Len() != 3 {
		t.Fatalf("expected 3 rows, got %d", tbl.Len())
	}
	checkIndexes(t, tbl)
}

func TestSchemaClosure(t *testing.T) {
	tbl := walletsTable(t)
	_, err := tbl.Insert(context.Background(), Row{"owner": "Ana", "nickname": "A"})
	if !errors.Is(err, ErrUnknownColumn) {
		t.Fatal("expected unknown column, got", err)
	}
	if tbl.Len() != 0 {
		t.Fatal("row appended despite unknown column")
	}
	if tbl.NextAutoID() != 1 {
		t.Fatal("auto id advanced on failed insert")
	}
}

func TestTypeEnforcement(t *testing.T) {
	tbl := walletsTable(t)
	_, err := tbl.Insert(context.Background(), Row{"owner": "Ana", "balance": "lots"})
	if !errors.Is(err, ErrTypeMismatch) {
		t.Fatal("expected type mismatch, got", err)
	}
	_, err = tbl.Insert(context.Background(), Row{"owner": 12, "balance": 1.5})
	if !errors.Is(err, ErrTypeMismatch) {
		t.Fatal("expected type mismatch for int in str column, got", err)
	}
	if tbl.Len() != 0 {
		t.Fatal("row appended despite type mismatch")
	}
	checkIndexes(t, tbl)
}

func TestFind(t *testing.T) {
	ctx := context.Background()
	tbl := walletsTable(t)
	for _, owner := range []string{"Ana", "Ben", "Ana"} {
		if _, err := tbl.Insert(ctx, Row{"owner": owner}); err != nil {
			t.Fatal(err)
		}
	}

	row, ok := tbl.Find("wallet_id", int64(2))
	if !ok || row["owner"] != "Ben" {
		t.Fatal("pk lookup failed")
	}
	row, ok = tbl.Find("wallet_id", 2.0)
	if !ok || row["owner"] != "Ben" {
		t.Fatal("pk lookup with integral float failed")
	}
	row, ok = tbl.Find("owner", "Ana")
	if !ok || row["wallet_id"] != int64(1) {
		t.Fatal("scan should return the first match")
	}
	if _, ok := tbl.Find("owner", "Zed"); ok {
		t.Fatal("found a row that does not exist")
	}
	if _, ok := tbl.Find("nope", "Ana"); ok {
		t.Fatal("found a row by an unknown column")
	}
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	tbl := walletsTable(t)
	tbl.Insert(ctx, Row{"owner": "Ana", "balance": 100.0, "phone": "1"})
	tbl.Insert(ctx, Row{"owner": "Ben", "balance": 10.0, "phone": "2"})

	if err := tbl.Update(ctx, "wallet_id", int64(1), Row{"balance": 50.0}); err != nil {
		t.Fatal(err)
	}
	row, _ := tbl.Find("wallet_id", int64(1))
	if row["balance"] != 50.0 {
		t.Fatalf("balance not updated: %v", row["balance"])
	}
	other, _ := tbl.Find("wallet_id", int64(2))
	if other["balance"] != 10.0 {
		t.Fatal("update touched another row")
	}

	if err := tbl.Update(ctx, "wallet_id", int64(9), Row{"balance": 1.0}); !errors.Is(err, ErrNotFound) {
		t.Fatal("expected not found, got", err)
	}
	if err := tbl.Update(ctx, "wallet_id", int64(1), Row{"wallet_id": int64(3)}); !errors.Is(err, ErrImmutableKey) {
		t.Fatal("expected immutable key, got", err)
	}
	if err := tbl.Update(ctx, "wallet_id", int64(1), Row{"nickname": "A"}); !errors.Is(err, ErrUnknownColumn) {
		t.Fatal("expected unknown column, got", err)
	}
	if err := tbl.Update(ctx, "wallet_id", int64(1), Row{"balance": "x"}); !errors.Is(err, ErrTypeMismatch) {
		t.Fatal("expected type mismatch, got", err)
	}
	if err := tbl.Update(ctx, "wallet_id", int64(1), Row{"phone": "2"}); !errors.Is(err, ErrConstraintViolation) {
		t.Fatal("expected unique violation, got", err)
	}

	// re-keying a unique column keeps the index consistent
	if err := tbl.Update(ctx, "phone", "1", Row{"phone": "3"}); err != nil {
		t.Fatal(err)
	}
	if _, ok := tbl.Find("phone", "1"); ok {
		t.Fatal("stale unique index entry after update")
	}
	row, ok := tbl.Find("phone", "3")
	if !ok || row["owner"] != "Ana" {
		t.Fatal("updated unique value not indexed")
	}
	checkIndexes(t, tbl)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	tbl := walletsTable(t)
	tbl.Insert(ctx, Row{"owner": "Ana", "phone": "1"})
	tbl.Insert(ctx, Row{"owner": "Ben", "phone": "2"})
	tbl.Insert(ctx, Row{"owner": "Cy", "phone": "3"})

	deleted, err := tbl.Delete(ctx, "phone", "2")
	if err != nil || !deleted {
		t.Fatal("delete failed", err)
	}
	if tbl.Len() != 2 {
		t.Fatalf("expected 2 rows, got %d", tbl.Len())
	}
	if _, ok := tbl.Find("wallet_id", int64(2)); ok {
		t.Fatal("stale pk index entry after delete")
	}
	checkIndexes(t, tbl)

	deleted, err = tbl.Delete(ctx, "phone", "2")
	if err != nil || deleted {
		t.Fatal("second delete should be a silent no-op", err)
	}

	rows := tbl.Rows()
	if rows[0]["owner"] != "Ana" || rows[1]["owner"] != "Cy" {
		t.Fatal("insertion order not preserved after delete")
	}

	// the freed unique value can be reused
	if _, err := tbl.Insert(ctx, Row{"owner": "Di", "phone": "2"}); err != nil {
		t.Fatal(err)
	}
	checkIndexes(t, tbl)
}

func TestSelect(t *testing.T) {
	ctx := context.Background()
	tbl := walletsTable(t)
	tbl.Insert(ctx, Row{"owner": "Ana", "balance": 1.0})
	tbl.Insert(ctx, Row{"owner": "Ben", "balance": 1.0})
	tbl.Insert(ctx, Row{"owner": "Ana", "balance": 2.0})

	all, err := tbl.Select(nil)
	if err != nil || len(all) != 3 {
		t.Fatal("expected all rows", err)
	}
	rows, err := tbl.Select(Row{"owner": "Ana", "balance": 1.0})
	if err != nil || len(rows) != 1 || rows[0]["wallet_id"] != int64(1) {
		t.Fatal("conjunctive predicate failed", rows, err)
	}
	rows, _ = tbl.Select(Row{"balance": int64(1)})
	if len(rows) != 2 {
		t.Fatal("numeric equality should cross int and float")
	}
	if _, err := tbl.Select(Row{"nope": 1}); !errors.Is(err, ErrUnknownColumn) {
		t.Fatal("expected unknown column, got", err)
	}

	rows[0]["owner"] = "changed"
	again, _ := tbl.Select(Row{"wallet_id": int64(1)})
	if again[0]["owner"] != "Ana" {
		t.Fatal("select returned owning rows")
	}
}

func TestPersistHookRuns(t *testing.T) {
	ctx := context.Background()
	tbl := walletsTable(t)
	calls := 0
	tbl.OnChange(func(ctx context.Context) error {
		calls++
		return nil
	})

	tbl.Insert(ctx, Row{"owner": "Ana"})
	tbl.Insert(ctx, Row{"owner": "Ana", "nope": 1})
	tbl.Update(ctx, "wallet_id", int64(1), Row{"owner": "Ann"})
	tbl.Delete(ctx, "wallet_id", int64(1))
	tbl.Delete(ctx, "wallet_id", int64(1))

	if calls != 3 {
		t.Fatalf("expected 3 persist calls, got %d", calls)
	}
}

func TestValuesEqual(t *testing.T) {
	if !ValuesEqual(int64(1), 1.0) {
		t.Fatal("1 should equal 1.0")
	}
	if !ValuesEqual(nil, nil) {
		t.Fatal("null should equal null")
	}
	if ValuesEqual(nil, int64(0)) || ValuesEqual("", nil) {
		t.Fatal("null should only equal null")
	}
	if ValuesEqual("1", int64(1)) {
		t.Fatal("string should not equal number")
	}
	if !ValuesEqual("a", "a") {
		t.Fatal("equal strings should match")
	}
}

func TestAutoIDSaturatesAtMaxInt64(t *testing.T) {
	ctx := context.Background()
	tbl := walletsTable(t)

	if _, err := tbl.Insert(ctx, Row{"wallet_id": int64(math.MaxInt64), "owner": "Ana"}); err != nil {
		t.Fatal(err)
	}
	if tbl.NextAutoID() != math.MaxInt64 {
		t.Fatalf("counter wrapped to %d", tbl.NextAutoID())
	}

	_, err := tbl.Insert(ctx, Row{"owner": "Ben"})
	if !errors.Is(err, ErrAutoIDExhausted) {
		t.Fatal("expected exhausted auto id, got", err)
	}
	if tbl.Len() != 1 {
		t.Fatal("row appended without an id")
	}

	// explicit ids still work once the counter is spent
	if _, err := tbl.Insert(ctx, Row{"wallet_id": int64(7), "owner": "Cy"}); err != nil {
		t.Fatal(err)
	}
	if tbl.NextAutoID() != math.MaxInt64 {
		t.Fatal("counter moved backwards")
	}
	checkIndexes(t, tbl)

	restored, err := Deserialize(tbl.Serialize())
	if err != nil {
		t.Fatal(err)
	}
	if restored.NextAutoID() != math.MaxInt64 {
		t.Fatalf("restored counter is %d", restored.NextAutoID())
	}
}

// MaxInt64 itself is never handed out; it marks the counter as spent.
func TestAutoIDBeforeMax(t *testing.T) {
	ctx := context.Background()
	tbl := walletsTable(t)

	if _, err := tbl.Insert(ctx, Row{"wallet_id": int64(math.MaxInt64 - 2)}); err != nil {
		t.Fatal(err)
	}
	stored, err := tbl.Insert(ctx, Row{"owner": "Ana"})
	if err != nil {
		t.Fatal(err)
	}
	if stored["wallet_id"] != int64(math.MaxInt64-1) {
		t.Fatalf("assigned %v", stored["wallet_id"])
	}
	if _, err := tbl.Insert(ctx, Row{"owner": "Ben"}); !errors.Is(err, ErrAutoIDExhausted) {
		t.Fatal("expected exhausted auto id, got", err)
	}
}

func TestNonScalarValues(t *testing.T) {
	ctx := context.Background()
	tbl := walletsTable(t)
	if _, err := tbl.Insert(ctx, Row{"owner": "Ana", "phone": "1"}); err != nil {
		t.Fatal(err)
	}

	bad := []Row{
		{"owner": "Ben", "phone": []any{"x"}},
		{"wallet_id": map[string]any{"a": 1}, "owner": "Ben"},
		{"owner": []any{}},
	}
	for _, row := range bad {
		if _, err := tbl.Insert(ctx, row); !errors.Is(err, ErrTypeMismatch) {
			t.Fatalf("%v: expected type mismatch, got %v", row, err)
		}
	}
	if tbl.Len() != 1 {
		t.Fatal("rejected rows were appended")
	}

	if _, ok := tbl.Find("phone", []any{"1"}); ok {
		t.Fatal("found a row by a slice")
	}
	if _, ok := tbl.Find("wallet_id", map[string]any{}); ok {
		t.Fatal("found a row by a map")
	}
	if deleted, err := tbl.Delete(ctx, "phone", []any{"1"}); err != nil || deleted {
		t.Fatal("delete by a slice removed something", err)
	}
	if err := tbl.Update(ctx, "wallet_id", []any{int64(1)}, Row{"owner": "Cy"}); !errors.Is(err, ErrNotFound) {
		t.Fatal("expected not found, got", err)
	}
	if err := tbl.Update(ctx, "wallet_id", int64(1), Row{"phone": []any{"2"}}); !errors.Is(err, ErrTypeMismatch) {
		t.Fatal("expected type mismatch, got", err)
	}
	checkIndexes(t, tbl)
}

func TestNullLookups(t *testing.T) {
	ctx := context.Background()
	tbl := walletsTable(t)
	for _, row := range []Row{
		{"owner": "Ana", "phone": "1"},
		{"owner": "Ben"},
		{"owner": "Cy"},
	} {
		if _, err := tbl.Insert(ctx, row); err != nil {
			t.Fatal(err)
		}
	}

	row, ok := tbl.Find("phone", nil)
	if !ok || row["owner"] != "Ben" {
		t.Fatal("null lookup on a unique column should return the first null row", row)
	}
	rows, err := tbl.Select(Row{"balance": nil})
	if err != nil || len(rows) != 3 {
		t.Fatal("expected every row to have a null balance", len(rows), err)
	}

	deleted, err := tbl.Delete(ctx, "phone", nil)
	if err != nil || !deleted {
		t.Fatal("delete where phone is null removed nothing", err)
	}
	if _, ok := tbl.Find("owner", "Ben"); ok {
		t.Fatal("wrong row deleted")
	}
	if _, ok := tbl.Find("wallet_id", nil); ok {
		t.Fatal("primary key is never null")
	}
	checkIndexes(t, tbl)
}

func TestPersistFailureKeepsMutation(t *testing.T) {
	ctx := context.Background()
	tbl := walletsTable(t)
	writeErr := errors.New("disk full")
	tbl.OnChange(func(ctx context.Context) error {
		return writeErr
	})

	stored, err := tbl.Insert(ctx, Row{"owner": "Ana"})
	if !errors.Is(err, writeErr) {
		t.Fatal("expected the write error, got", err)
	}
	if stored["wallet_id"] != int64(1) || tbl.Len() != 1 {
		t.Fatal("insert should stand after a failed write")
	}
	if tbl.NextAutoID() != 2 {
		t.Fatal("counter should advance after a failed write")
	}
	checkIndexes(t, tbl)
}
