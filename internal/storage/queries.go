package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"kassenbuch/internal/core"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx so every query below
// can run standalone or inside the save transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Queries bundles the SQL statements over the bookkeeping schema.
type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries { return &Queries{db: db} }

// WithTx rebinds the queries to a transaction.
func (q *Queries) WithTx(tx *sql.Tx) *Queries { return &Queries{db: tx} }

// ---------- daily_entry ----------

const upsertDailyEntry = `
INSERT INTO daily_entry (date, cash_cents, card_cents, note, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT (date) DO UPDATE SET
    cash_cents = excluded.cash_cents,
    card_cents = excluded.card_cents,
    note       = excluded.note,
    created_at = excluded.created_at,
    updated_at = excluded.updated_at
`

// UpsertDailyEntry inserts or replaces the row for e.Date. The caller
// decides the created_at it wants preserved.
func (q *Queries) UpsertDailyEntry(ctx context.Context, e core.DailyEntry) error {
	_, err := q.db.ExecContext(ctx, upsertDailyEntry,
		string(e.Date), int64(e.Cash), int64(e.Card), e.Note, e.CreatedAt, e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert daily entry: %w", err)
	}
	return nil
}

const getDailyEntry = `
SELECT date, cash_cents, card_cents, note, created_at, updated_at
FROM daily_entry
WHERE date = ?
`

// GetDailyEntry returns nil without error when no row exists; an
// absent entry is a valid empty result, not a failure.
func (q *Queries) GetDailyEntry(ctx context.Context, date core.Date) (*core.DailyEntry, error) {
	var e core.DailyEntry
	err := q.db.QueryRowContext(ctx, getDailyEntry, string(date)).
		Scan(&e.Date, &e.Cash, &e.Card, &e.Note, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get daily entry: %w", err)
	}
	return &e, nil
}

const listEntriesInRange = `
SELECT date, cash_cents, card_cents, note, created_at, updated_at
FROM daily_entry
WHERE date >= ? AND date <= ?
ORDER BY date ASC
`

func (q *Queries) ListEntriesInRange(ctx context.Context, from, to core.Date) ([]core.DailyEntry, error) {
	rows, err := q.db.QueryContext(ctx, listEntriesInRange, string(from), string(to))
	if err != nil {
		return nil, fmt.Errorf("list entries in range: %w", err)
	}
	defer rows.Close()

	var entries []core.DailyEntry
	for rows.Next() {
		var e core.DailyEntry
		if err := rows.Scan(&e.Date, &e.Cash, &e.Card, &e.Note, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan daily entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ---------- expense_item ----------

const insertExpenseItem = `
INSERT INTO expense_item (id, date, vendor_name, amount_cents, created_at)
VALUES (?, ?, ?, ?, ?)
`

func (q *Queries) InsertExpenseItem(ctx context.Context, it core.ExpenseItem) error {
	_, err := q.db.ExecContext(ctx, insertExpenseItem,
		it.ID, string(it.Date), it.Vendor, int64(it.Amount), it.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert expense item: %w", err)
	}
	return nil
}

const listExpensesByDate = `
SELECT id, date, vendor_name, amount_cents, created_at
FROM expense_item
WHERE date = ?
ORDER BY created_at ASC
`

func (q *Queries) ListExpensesByDate(ctx context.Context, date core.Date) ([]core.ExpenseItem, error) {
	return q.scanExpenses(q.db.QueryContext(ctx, listExpensesByDate, string(date)))
}

const listExpensesInRange = `
SELECT id, date, vendor_name, amount_cents, created_at
FROM expense_item
WHERE date >= ? AND date <= ?
ORDER BY date ASC, created_at ASC
`

func (q *Queries) ListExpensesInRange(ctx context.Context, from, to core.Date) ([]core.ExpenseItem, error) {
	return q.scanExpenses(q.db.QueryContext(ctx, listExpensesInRange, string(from), string(to)))
}

func (q *Queries) scanExpenses(rows *sql.Rows, err error) ([]core.ExpenseItem, error) {
	if err != nil {
		return nil, fmt.Errorf("list expense items: %w", err)
	}
	defer rows.Close()

	var items []core.ExpenseItem
	for rows.Next() {
		var it core.ExpenseItem
		if err := rows.Scan(&it.ID, &it.Date, &it.Vendor, &it.Amount, &it.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan expense item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

const sumExpensesByDate = `
SELECT COALESCE(SUM(amount_cents), 0)
FROM expense_item
WHERE date = ?
`

func (q *Queries) SumExpensesByDate(ctx context.Context, date core.Date) (core.Cents, error) {
	var total int64
	if err := q.db.QueryRowContext(ctx, sumExpensesByDate, string(date)).Scan(&total); err != nil {
		return 0, fmt.Errorf("sum expenses by date: %w", err)
	}
	return core.Cents(total), nil
}

const deleteExpensesByDate = `DELETE FROM expense_item WHERE date = ?`

func (q *Queries) DeleteExpensesByDate(ctx context.Context, date core.Date) error {
	if _, err := q.db.ExecContext(ctx, deleteExpensesByDate, string(date)); err != nil {
		return fmt.Errorf("delete expenses by date: %w", err)
	}
	return nil
}

const deleteExpenseItem = `DELETE FROM expense_item WHERE id = ?`

// DeleteExpenseItem reports how many rows were removed so callers can
// distinguish a missing id from a successful delete.
func (q *Queries) DeleteExpenseItem(ctx context.Context, id string) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteExpenseItem, id)
	if err != nil {
		return 0, fmt.Errorf("delete expense item: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete expense item rows affected: %w", err)
	}
	return n, nil
}

// ---------- audit_event ----------

const insertAuditEvent = `
INSERT INTO audit_event (id, entity_date, field, old_value, new_value, edited_at, comment)
VALUES (?, ?, ?, ?, ?, ?, ?)
`

// InsertAuditEvent is a plain INSERT: an id collision fails instead of
// overwriting, keeping the log append-only.
func (q *Queries) InsertAuditEvent(ctx context.Context, ev core.AuditEvent) error {
	comment := sql.NullString{String: ev.Comment, Valid: ev.Comment != ""}
	_, err := q.db.ExecContext(ctx, insertAuditEvent,
		ev.ID, string(ev.Date), string(ev.Field), ev.OldValue, ev.NewValue, ev.EditedAt, comment)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

const listAuditByDate = `
SELECT id, entity_date, field, old_value, new_value, edited_at, COALESCE(comment, '')
FROM audit_event
WHERE entity_date = ?
ORDER BY edited_at DESC
`

func (q *Queries) ListAuditByDate(ctx context.Context, date core.Date) ([]core.AuditEvent, error) {
	return q.scanAuditEvents(q.db.QueryContext(ctx, listAuditByDate, string(date)))
}

const listAuditInRange = `
SELECT id, entity_date, field, old_value, new_value, edited_at, COALESCE(comment, '')
FROM audit_event
WHERE edited_at >= ? AND edited_at <= ?
ORDER BY edited_at DESC
`

func (q *Queries) ListAuditInRange(ctx context.Context, fromMillis, toMillis int64) ([]core.AuditEvent, error) {
	return q.scanAuditEvents(q.db.QueryContext(ctx, listAuditInRange, fromMillis, toMillis))
}

func (q *Queries) scanAuditEvents(rows *sql.Rows, err error) ([]core.AuditEvent, error) {
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var events []core.AuditEvent
	for rows.Next() {
		var ev core.AuditEvent
		if err := rows.Scan(&ev.ID, &ev.Date, &ev.Field, &ev.OldValue, &ev.NewValue, &ev.EditedAt, &ev.Comment); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

const purgeAuditBefore = `DELETE FROM audit_event WHERE edited_at <= ?`

// PurgeAuditBefore deletes audit events edited at or before the
// cutoff, so a zero-day retention removes events written "now" too.
func (q *Queries) PurgeAuditBefore(ctx context.Context, cutoffMillis int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, purgeAuditBefore, cutoffMillis)
	if err != nil {
		return 0, fmt.Errorf("purge audit events: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge audit rows affected: %w", err)
	}
	return n, nil
}
