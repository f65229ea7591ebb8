package core

// SummaryRow is the derived per-date line of a summary: revenue split,
// aggregated expense total and resulting net. Not persisted.
type SummaryRow struct {
	Date         Date
	Cash         Cents
	Card         Cents
	ExpenseTotal Cents
}

// Revenue is cash plus card.
func (r SummaryRow) Revenue() Cents { return r.Cash + r.Card }

// Net is revenue minus expenses and may be negative.
func (r SummaryRow) Net() int64 { return int64(r.Revenue()) - int64(r.ExpenseTotal) }

// Summary covers a closed date range with one row per date that has a
// DailyEntry, plus column totals over the range.
type Summary struct {
	From         Date
	To           Date
	Rows         []SummaryRow
	TotalCash    Cents
	TotalCard    Cents
	TotalExpense Cents
}

func (s Summary) TotalRevenue() Cents { return s.TotalCash + s.TotalCard }

func (s Summary) TotalNet() int64 { return int64(s.TotalRevenue()) - int64(s.TotalExpense) }

// BuildSummary joins entries with their date's expense items. Entries
// must already be ordered ascending by date; dates that only have
// expense items and no entry row are left out.
func BuildSummary(from, to Date, entries []DailyEntry, items []ExpenseItem) Summary {
	byDate := make(map[Date]Cents, len(entries))
	for _, it := range items {
		byDate[it.Date] += it.Amount
	}

	s := Summary{From: from, To: to, Rows: make([]SummaryRow, 0, len(entries))}
	for _, e := range entries {
		row := SummaryRow{
			Date:         e.Date,
			Cash:         e.Cash,
			Card:         e.Card,
			ExpenseTotal: byDate[e.Date],
		}
		s.Rows = append(s.Rows, row)
		s.TotalCash += row.Cash
		s.TotalCard += row.Card
		s.TotalExpense += row.ExpenseTotal
	}
	return s
}
