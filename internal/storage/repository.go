// Package storage persists the bookkeeping data in a local SQLite
// database. The schema is managed by embedded migrations; all SQL
// lives in the Queries layer, which the save transaction rebinds to a
// *sql.Tx so its read-diff-write sequence commits atomically.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"kassenbuch/internal/core"

	_ "modernc.org/sqlite"
)

type Repository struct {
	db *sql.DB
	q  *Queries
}

func NewRepository(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	// busy_timeout keeps concurrent writers queued instead of failing
	// immediately with SQLITE_BUSY.
	db, err := sql.Open("sqlite", "file:"+dbPath+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db, q: New(db)}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// WithinTx runs fn with transaction-bound queries. Any error from fn
// rolls the transaction back; partial effects are never visible to a
// concurrent reader.
func (r *Repository) WithinTx(ctx context.Context, fn func(q *Queries) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(r.q.WithTx(tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			slog.ErrorContext(ctx, "Transaction rollback failed", "error", rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Read-side pass-throughs used outside a transaction.

func (r *Repository) GetDailyEntry(ctx context.Context, date core.Date) (*core.DailyEntry, error) {
	return r.q.GetDailyEntry(ctx, date)
}

func (r *Repository) ListEntriesInRange(ctx context.Context, from, to core.Date) ([]core.DailyEntry, error) {
	return r.q.ListEntriesInRange(ctx, from, to)
}

func (r *Repository) ListExpensesByDate(ctx context.Context, date core.Date) ([]core.ExpenseItem, error) {
	return r.q.ListExpensesByDate(ctx, date)
}

func (r *Repository) ListExpensesInRange(ctx context.Context, from, to core.Date) ([]core.ExpenseItem, error) {
	return r.q.ListExpensesInRange(ctx, from, to)
}

func (r *Repository) ListAuditByDate(ctx context.Context, date core.Date) ([]core.AuditEvent, error) {
	return r.q.ListAuditByDate(ctx, date)
}

func (r *Repository) ListAuditInRange(ctx context.Context, fromMillis, toMillis int64) ([]core.AuditEvent, error) {
	return r.q.ListAuditInRange(ctx, fromMillis, toMillis)
}

func (r *Repository) InsertExpenseItem(ctx context.Context, it core.ExpenseItem) error {
	return r.q.InsertExpenseItem(ctx, it)
}

func (r *Repository) DeleteExpenseItem(ctx context.Context, id string) (int64, error) {
	return r.q.DeleteExpenseItem(ctx, id)
}

func (r *Repository) PurgeAuditBefore(ctx context.Context, cutoffMillis int64) (int64, error) {
	return r.q.PurgeAuditBefore(ctx, cutoffMillis)
}
