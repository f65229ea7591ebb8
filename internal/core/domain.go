package core

import (
	"errors"
	"strings"
	"time"
)

// DateLayout is the wire and storage format for calendar dates.
const DateLayout = "2006-01-02"

type (
	// Date is a calendar date in ISO 8601 form (YYYY-MM-DD). The string
	// form orders lexicographically the same way the dates order, which
	// the storage layer relies on for range queries.
	Date string

	// DailyEntry is the per-date revenue record. At most one row exists
	// per date; saving the same date again updates it in place.
	DailyEntry struct {
		Date      Date
		Cash      Cents // Bargeld
		Card      Cents // Karte
		Note      string
		CreatedAt int64 // epoch millis, set on first save
		UpdatedAt int64 // epoch millis, set on every save
	}

	// ExpenseItem is a single dated receipt line. Items may exist for a
	// date that has no DailyEntry row yet.
	ExpenseItem struct {
		ID        string
		Date      Date
		Vendor    string
		Amount    Cents
		CreatedAt int64
	}

	// ExpenseDraft is an incoming receipt line before it has an identity.
	ExpenseDraft struct {
		Vendor string
		Amount Cents
	}

	// AuditEvent records one field's old→new change on a given date.
	// Events are append-only and never mutated after insertion.
	AuditEvent struct {
		ID       string
		Date     Date
		Field    AuditField
		OldValue string
		NewValue string
		EditedAt int64 // epoch millis
		Comment  string
	}

	// AuditField names a monitored DailyEntry field.
	AuditField string
)

// Monitored fields. The expense total is the aggregate over a date's
// receipts; individual vendor or amount edits are not audited, and
// neither is the note text.
const (
	FieldCash         AuditField = "cash"
	FieldCard         AuditField = "card"
	FieldExpenseTotal AuditField = "expense_total"
)

var (
	ErrInvalidDate   = errors.New("invalid date")
	ErrEmptyVendor   = errors.New("empty vendor name")
	ErrVendorTooLong = errors.New("vendor name too long (max 200 characters)")
	ErrNoteTooLong   = errors.New("note too long (max 1000 characters)")
)

// ParseDate parses and normalizes an ISO calendar date string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return "", ErrInvalidDate
	}
	return Date(t.Format(DateLayout)), nil
}

// NewDate builds a Date from year, month and day.
func NewDate(year, month, day int) Date {
	return Date(time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC).Format(DateLayout))
}

func (d Date) Validate() error {
	if _, err := time.Parse(DateLayout, string(d)); err != nil {
		return ErrInvalidDate
	}
	return nil
}

// Time returns the date at midnight UTC.
func (d Date) Time() time.Time {
	t, _ := time.Parse(DateLayout, string(d))
	return t
}

func (d Date) String() string { return string(d) }

// Revenue is cash plus card for the day.
func (e DailyEntry) Revenue() Cents { return e.Cash + e.Card }

func (e DailyEntry) Validate() error {
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if err := e.Cash.Validate(); err != nil {
		return err
	}
	if err := e.Card.Validate(); err != nil {
		return err
	}
	if len(e.Note) > 1000 {
		return ErrNoteTooLong
	}
	return nil
}

func (d ExpenseDraft) Validate() error {
	if len(strings.TrimSpace(d.Vendor)) == 0 {
		return ErrEmptyVendor
	}
	if len(d.Vendor) > 200 {
		return ErrVendorTooLong
	}
	return d.Amount.Validate()
}

func (i ExpenseItem) Validate() error {
	if err := i.Date.Validate(); err != nil {
		return err
	}
	return ExpenseDraft{Vendor: i.Vendor, Amount: i.Amount}.Validate()
}

// SumDrafts totals the amounts of a draft receipt list.
func SumDrafts(drafts []ExpenseDraft) Cents {
	var total Cents
	for _, d := range drafts {
		total += d.Amount
	}
	return total
}
