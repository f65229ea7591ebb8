// Package services implements the bookkeeping operations on top of the
// SQLite repository: the save transaction with field-level audit, the
// summary aggregation, audit queries and retention purge.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"kassenbuch/internal/amqp"
	"kassenbuch/internal/core"
	"kassenbuch/internal/storage"
)

// saveTimeout bounds the save transaction defensively. Local SQLite
// writes finish in milliseconds; hitting this means something is stuck.
const saveTimeout = 5 * time.Second

// DefaultRetentionDays is how long audit events are kept before the
// purge removes them.
const DefaultRetentionDays = 365

var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidRange     = errors.New("invalid range: from is after to")
	ErrInvalidRetention = errors.New("invalid retention days")
)

// BookkeepingService orchestrates entry, expense and audit operations.
// The AMQP client is optional; without it audit events stay local.
type BookkeepingService struct {
	store      *storage.Repository
	amqpClient *amqp.Client
	clock      core.Clock
	ids        core.IDGenerator
}

func NewBookkeepingService(store *storage.Repository, amqpClient *amqp.Client, clock core.Clock, ids core.IDGenerator) *BookkeepingService {
	if clock == nil {
		clock = core.SystemClock{}
	}
	if ids == nil {
		ids = core.UUIDGenerator{}
	}
	return &BookkeepingService{
		store:      store,
		amqpClient: amqpClient,
		clock:      clock,
		ids:        ids,
	}
}

// SaveDayInput is one full day as entered in the UI: revenue split,
// note and the complete receipt list for the date.
type SaveDayInput struct {
	Date         core.Date
	Cash         core.Cents
	Card         core.Cents
	Note         string
	Expenses     []core.ExpenseDraft
	AuditComment string
}

func (in SaveDayInput) validate() error {
	entry := core.DailyEntry{Date: in.Date, Cash: in.Cash, Card: in.Card, Note: in.Note}
	if err := entry.Validate(); err != nil {
		return err
	}
	for i, d := range in.Expenses {
		if err := d.Validate(); err != nil {
			return fmt.Errorf("expense %d: %w", i, err)
		}
	}
	return nil
}

// SaveDay runs the upsert-with-audit transaction: it diffs the stored
// cash, card and aggregate expense total against the input, writes one
// audit event per changed field, upserts the entry (preserving its
// original creation time) and replaces the date's receipt list with
// fresh ids. All of it commits atomically or not at all.
func (s *BookkeepingService) SaveDay(ctx context.Context, in SaveDayInput) error {
	if err := in.validate(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, saveTimeout)
	defer cancel()

	now := s.clock.NowMillis()
	var written []core.AuditEvent

	err := s.store.WithinTx(ctx, func(q *storage.Queries) error {
		old, err := q.GetDailyEntry(ctx, in.Date)
		if err != nil {
			return err
		}

		var oldCash, oldCard core.Cents
		createdAt := now
		if old != nil {
			oldCash, oldCard = old.Cash, old.Card
			createdAt = old.CreatedAt
		}

		oldExpenseTotal, err := q.SumExpensesByDate(ctx, in.Date)
		if err != nil {
			return err
		}
		newExpenseTotal := core.SumDrafts(in.Expenses)

		diffs := []struct {
			field    core.AuditField
			old, new core.Cents
		}{
			{core.FieldCash, oldCash, in.Cash},
			{core.FieldCard, oldCard, in.Card},
			{core.FieldExpenseTotal, oldExpenseTotal, newExpenseTotal},
		}
		for _, d := range diffs {
			if d.old == d.new {
				continue
			}
			ev := core.AuditEvent{
				ID:       s.ids.NewID(),
				Date:     in.Date,
				Field:    d.field,
				OldValue: strconv.FormatInt(int64(d.old), 10),
				NewValue: strconv.FormatInt(int64(d.new), 10),
				EditedAt: now,
				Comment:  in.AuditComment,
			}
			if err := q.InsertAuditEvent(ctx, ev); err != nil {
				return err
			}
			written = append(written, ev)
		}

		entry := core.DailyEntry{
			Date:      in.Date,
			Cash:      in.Cash,
			Card:      in.Card,
			Note:      in.Note,
			CreatedAt: createdAt,
			UpdatedAt: now,
		}
		if err := q.UpsertDailyEntry(ctx, entry); err != nil {
			return err
		}

		// Full replace: items absent from the draft are gone, and the
		// kept ones get fresh ids and creation times.
		if err := q.DeleteExpensesByDate(ctx, in.Date); err != nil {
			return err
		}
		for _, draft := range in.Expenses {
			item := core.ExpenseItem{
				ID:        s.ids.NewID(),
				Date:      in.Date,
				Vendor:    strings.TrimSpace(draft.Vendor),
				Amount:    draft.Amount,
				CreatedAt: now,
			}
			if err := q.InsertExpenseItem(ctx, item); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save day %s: %w", in.Date, err)
	}

	slog.InfoContext(ctx, "Day saved",
		"date", in.Date,
		"cash_cents", in.Cash,
		"card_cents", in.Card,
		"expense_items", len(in.Expenses),
		"audit_events", len(written))

	s.publishAuditEvents(ctx, written)
	return nil
}

// publishAuditEvents forwards committed events to the collector. A
// publish failure is logged and swallowed: the local save already
// succeeded.
func (s *BookkeepingService) publishAuditEvents(ctx context.Context, events []core.AuditEvent) {
	if s.amqpClient == nil || len(events) == 0 {
		return
	}
	for _, ev := range events {
		if err := s.amqpClient.PublishAuditEvent(ctx, ev); err != nil {
			slog.WarnContext(ctx, "Failed to publish audit event",
				"audit_id", ev.ID,
				"date", ev.Date,
				"field", ev.Field,
				"error", err)
		}
	}
}

// GetDay loads the entry and receipt list for one date. Returns
// ErrNotFound when the date has no entry row.
func (s *BookkeepingService) GetDay(ctx context.Context, date core.Date) (*core.DailyEntry, []core.ExpenseItem, error) {
	if err := date.Validate(); err != nil {
		return nil, nil, err
	}
	entry, err := s.store.GetDailyEntry(ctx, date)
	if err != nil {
		return nil, nil, fmt.Errorf("get day %s: %w", date, err)
	}
	if entry == nil {
		return nil, nil, ErrNotFound
	}
	items, err := s.store.ListExpensesByDate(ctx, date)
	if err != nil {
		return nil, nil, fmt.Errorf("list expenses for %s: %w", date, err)
	}
	return entry, items, nil
}

// Summarize aggregates one row per date in [from, to] that has an
// entry. Both reads run in one transaction so a concurrent save is
// either fully visible or not at all.
func (s *BookkeepingService) Summarize(ctx context.Context, from, to core.Date) (core.Summary, error) {
	if err := from.Validate(); err != nil {
		return core.Summary{}, err
	}
	if err := to.Validate(); err != nil {
		return core.Summary{}, err
	}
	if from > to {
		return core.Summary{}, ErrInvalidRange
	}

	var (
		entries []core.DailyEntry
		items   []core.ExpenseItem
	)
	err := s.store.WithinTx(ctx, func(q *storage.Queries) error {
		var err error
		if entries, err = q.ListEntriesInRange(ctx, from, to); err != nil {
			return err
		}
		items, err = q.ListExpensesInRange(ctx, from, to)
		return err
	})
	if err != nil {
		return core.Summary{}, fmt.Errorf("summarize %s..%s: %w", from, to, err)
	}

	return core.BuildSummary(from, to, entries, items), nil
}

// AuditByDate lists a date's audit events, newest first.
func (s *BookkeepingService) AuditByDate(ctx context.Context, date core.Date) ([]core.AuditEvent, error) {
	if err := date.Validate(); err != nil {
		return nil, err
	}
	events, err := s.store.ListAuditByDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("audit by date %s: %w", date, err)
	}
	return events, nil
}

// AuditInRange lists audit events edited in [fromMillis, toMillis],
// newest first.
func (s *BookkeepingService) AuditInRange(ctx context.Context, fromMillis, toMillis int64) ([]core.AuditEvent, error) {
	events, err := s.store.ListAuditInRange(ctx, fromMillis, toMillis)
	if err != nil {
		return nil, fmt.Errorf("audit in range: %w", err)
	}
	return events, nil
}

// PurgeAudit deletes audit events older than retentionDays before now.
// Zero deletes everything up to the current time; running it again
// with no new writes deletes nothing.
func (s *BookkeepingService) PurgeAudit(ctx context.Context, retentionDays int) (int64, error) {
	if retentionDays < 0 {
		return 0, ErrInvalidRetention
	}
	cutoff := s.clock.NowMillis() - int64(retentionDays)*24*int64(time.Hour/time.Millisecond)
	n, err := s.store.PurgeAuditBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge audit: %w", err)
	}
	if n > 0 {
		slog.InfoContext(ctx, "Purged audit events", "deleted", n, "retention_days", retentionDays)
	}
	return n, nil
}

// ListExpenses returns a date's receipt items in creation order.
func (s *BookkeepingService) ListExpenses(ctx context.Context, date core.Date) ([]core.ExpenseItem, error) {
	if err := date.Validate(); err != nil {
		return nil, err
	}
	items, err := s.store.ListExpensesByDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("list expenses for %s: %w", date, err)
	}
	return items, nil
}

// ExpensesInRange returns receipts for [from, to] ordered by date and
// creation time, for report rendering.
func (s *BookkeepingService) ExpensesInRange(ctx context.Context, from, to core.Date) ([]core.ExpenseItem, error) {
	if err := from.Validate(); err != nil {
		return nil, err
	}
	if err := to.Validate(); err != nil {
		return nil, err
	}
	if from > to {
		return nil, ErrInvalidRange
	}
	items, err := s.store.ListExpensesInRange(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("list expenses %s..%s: %w", from, to, err)
	}
	return items, nil
}

// AddExpense records a single receipt without touching the entry row
// or the audit log; the date's entry need not exist yet.
func (s *BookkeepingService) AddExpense(ctx context.Context, date core.Date, vendor string, amount core.Cents) (core.ExpenseItem, error) {
	item := core.ExpenseItem{
		ID:        s.ids.NewID(),
		Date:      date,
		Vendor:    strings.TrimSpace(vendor),
		Amount:    amount,
		CreatedAt: s.clock.NowMillis(),
	}
	if err := item.Validate(); err != nil {
		return core.ExpenseItem{}, err
	}
	if err := s.store.InsertExpenseItem(ctx, item); err != nil {
		return core.ExpenseItem{}, fmt.Errorf("add expense: %w", err)
	}
	return item, nil
}

// DeleteExpense removes one receipt by id.
func (s *BookkeepingService) DeleteExpense(ctx context.Context, id string) error {
	n, err := s.store.DeleteExpenseItem(ctx, id)
	if err != nil {
		return fmt.Errorf("delete expense %s: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Close releases the repository and the optional AMQP connection.
func (s *BookkeepingService) Close() error {
	var errs []error
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close bookkeeping service: %v", errs)
	}
	return nil
}
