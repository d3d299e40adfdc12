package table

import "context"

// Delete removes the first row where column equals value along with its index
// entries. A missing row is not an error; deleted reports whether anything
// was removed.
func (t *Table) Delete(ctx context.Context, column string, value any) (deleted bool, err error) {
	row := t.find(column, value)
	if row == nil {
		return false, nil
	}

	for i, r := range t.rows {
		if sameRow(r, row) {
			t.rows = append(t.rows[:i], t.rows[i+1:]...)
			break
		}
	}
	t.unindexRow(row)

	return true, t.persist(ctx)
}
