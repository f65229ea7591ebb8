package export

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/xuri/excelize/v2"

	"kassenbuch/internal/core"
)

type stubSource struct {
	summary  core.Summary
	receipts []core.ExpenseItem
	err      error

	gotFrom, gotTo core.Date
}

func (s *stubSource) Summarize(_ context.Context, from, to core.Date) (core.Summary, error) {
	s.gotFrom, s.gotTo = from, to
	return s.summary, s.err
}

func (s *stubSource) ExpensesInRange(context.Context, core.Date, core.Date) ([]core.ExpenseItem, error) {
	return s.receipts, s.err
}

func TestMonthReport(t *testing.T) {
	src := &stubSource{
		summary: core.Summary{
			From: "2026-02-01",
			To:   "2026-02-28",
			Rows: []core.SummaryRow{
				{Date: "2026-02-01", Cash: 1000, Card: 2000, ExpenseTotal: 500},
			},
			TotalCash:    1000,
			TotalCard:    2000,
			TotalExpense: 500,
		},
		receipts: []core.ExpenseItem{
			{ID: "a", Date: "2026-02-01", Vendor: "Aldi Süd", Amount: 500},
		},
	}

	svc := NewService(src, nil)
	data, err := svc.MonthReport(context.Background(), 2026, 2)
	if err != nil {
		t.Fatalf("month report: %v", err)
	}

	if src.gotFrom != "2026-02-01" || src.gotTo != "2026-02-28" {
		t.Fatalf("queried range %s..%s, want full February", src.gotFrom, src.gotTo)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	cases := []struct {
		sheet, cell, want string
	}{
		{"Summary", "A1", "Date"},
		{"Summary", "A2", "2026-02-01"},
		{"Summary", "B2", "10,00"},
		{"Summary", "D2", "30,00"},
		{"Summary", "F2", "25,00"},
		{"Summary", "A3", "Total"},
		{"Summary", "F3", "25,00"},
		{"Receipts", "B2", "Aldi Süd"},
		{"Receipts", "C2", "5,00"},
	}
	for _, tc := range cases {
		got, err := f.GetCellValue(tc.sheet, tc.cell)
		if err != nil {
			t.Fatalf("get %s!%s: %v", tc.sheet, tc.cell, err)
		}
		if got != tc.want {
			t.Fatalf("%s!%s = %q, want %q", tc.sheet, tc.cell, got, tc.want)
		}
	}
}

func TestMonthReportDecemberRange(t *testing.T) {
	src := &stubSource{}
	svc := NewService(src, nil)
	if _, err := svc.MonthReport(context.Background(), 2026, 12); err != nil {
		t.Fatalf("month report: %v", err)
	}
	if src.gotFrom != "2026-12-01" || src.gotTo != "2026-12-31" {
		t.Fatalf("queried range %s..%s, want full December", src.gotFrom, src.gotTo)
	}
}

func TestMonthReportInvalidMonth(t *testing.T) {
	svc := NewService(&stubSource{}, nil)
	if _, err := svc.MonthReport(context.Background(), 2026, 13); err == nil {
		t.Fatal("expected error for month 13")
	}
}

func TestMonthReportSourceError(t *testing.T) {
	svc := NewService(&stubSource{err: errors.New("db gone")}, nil)
	if _, err := svc.MonthReport(context.Background(), 2026, 2); err == nil {
		t.Fatal("expected error when source fails")
	}
}
