// Package export renders the monthly report workbook: one sheet with
// the per-day summary rows and totals, one with every receipt in the
// month. The UI layer turns the workbook into whatever the platform
// shares (PDF printing is the client's concern).
package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"kassenbuch/internal/core"
)

// SummarySource is the read side the report needs.
type SummarySource interface {
	Summarize(ctx context.Context, from, to core.Date) (core.Summary, error)
	ExpensesInRange(ctx context.Context, from, to core.Date) ([]core.ExpenseItem, error)
}

type Service struct {
	source SummarySource
	logger *slog.Logger
}

func NewService(source SummarySource, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{source: source, logger: logger}
}

const (
	summarySheet  = "Summary"
	receiptsSheet = "Receipts"
)

// MonthReport builds the XLSX workbook for one calendar month.
func (s *Service) MonthReport(ctx context.Context, year, month int) ([]byte, error) {
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("invalid month %d", month)
	}
	start := time.Now()

	from := core.NewDate(year, month, 1)
	// Day zero of the next month is the last day of this one.
	to := core.NewDate(year, month+1, 0)

	summary, err := s.source.Summarize(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("summarize month: %w", err)
	}
	receipts, err := s.source.ExpensesInRange(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("list receipts: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := s.writeSummarySheet(f, summary); err != nil {
		return nil, err
	}
	if err := s.writeReceiptsSheet(f, receipts); err != nil {
		return nil, err
	}

	// Drop the default sheet and make the summary active.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}
	idx, err := f.GetSheetIndex(summarySheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(idx)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}

	s.logger.InfoContext(ctx, "Month report rendered",
		"year", year,
		"month", month,
		"rows", len(summary.Rows),
		"receipts", len(receipts),
		"duration_ms", time.Since(start).Milliseconds())

	return buf.Bytes(), nil
}

func (s *Service) writeSummarySheet(f *excelize.File, summary core.Summary) error {
	if _, err := f.NewSheet(summarySheet); err != nil {
		return err
	}

	headers := []string{"Date", "Bargeld", "Karte", "Revenue", "Expenses", "Net"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(summarySheet, cell, h); err != nil {
			return err
		}
	}

	write := func(row, col int, v any) {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		_ = f.SetCellValue(summarySheet, cell, v)
	}

	row := 2
	for _, r := range summary.Rows {
		write(row, 1, string(r.Date))
		write(row, 2, core.FormatEuros(int64(r.Cash)))
		write(row, 3, core.FormatEuros(int64(r.Card)))
		write(row, 4, core.FormatEuros(int64(r.Revenue())))
		write(row, 5, core.FormatEuros(int64(r.ExpenseTotal)))
		write(row, 6, core.FormatEuros(r.Net()))
		row++
	}

	write(row, 1, "Total")
	write(row, 2, core.FormatEuros(int64(summary.TotalCash)))
	write(row, 3, core.FormatEuros(int64(summary.TotalCard)))
	write(row, 4, core.FormatEuros(int64(summary.TotalRevenue())))
	write(row, 5, core.FormatEuros(int64(summary.TotalExpense)))
	write(row, 6, core.FormatEuros(summary.TotalNet()))

	_ = f.SetColWidth(summarySheet, "A", "A", 12)
	_ = f.SetColWidth(summarySheet, "B", "F", 11)
	return nil
}

func (s *Service) writeReceiptsSheet(f *excelize.File, receipts []core.ExpenseItem) error {
	if _, err := f.NewSheet(receiptsSheet); err != nil {
		return err
	}

	headers := []string{"Date", "Vendor", "Amount"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(receiptsSheet, cell, h); err != nil {
			return err
		}
	}

	for i, it := range receipts {
		row := i + 2
		cell, _ := excelize.CoordinatesToCellName(1, row)
		_ = f.SetCellValue(receiptsSheet, cell, string(it.Date))
		cell, _ = excelize.CoordinatesToCellName(2, row)
		_ = f.SetCellValue(receiptsSheet, cell, it.Vendor)
		cell, _ = excelize.CoordinatesToCellName(3, row)
		_ = f.SetCellValue(receiptsSheet, cell, core.FormatEuros(int64(it.Amount)))
	}

	_ = f.SetColWidth(receiptsSheet, "A", "A", 12)
	_ = f.SetColWidth(receiptsSheet, "B", "B", 24)
	_ = f.SetColWidth(receiptsSheet, "C", "C", 11)
	return nil
}
