package http

import "kassenbuch/internal/core"

// Request and response shapes for the JSON API. Amounts travel as
// integer cents; the receipt-entry endpoint additionally accepts a
// decimal string, matching what the money keypad produces.

type expenseDraftJSON struct {
	Vendor      string `json:"vendor"`
	AmountCents int64  `json:"amount_cents"`
}

type saveDayRequest struct {
	CashCents    int64              `json:"cash_cents"`
	CardCents    int64              `json:"card_cents"`
	Note         string             `json:"note"`
	Expenses     []expenseDraftJSON `json:"expenses"`
	AuditComment string             `json:"audit_comment"`
}

type expenseItemJSON struct {
	ID          string `json:"id"`
	Date        string `json:"date"`
	Vendor      string `json:"vendor"`
	AmountCents int64  `json:"amount_cents"`
	CreatedAt   int64  `json:"created_at"`
}

func toExpenseItemJSON(it core.ExpenseItem) expenseItemJSON {
	return expenseItemJSON{
		ID:          it.ID,
		Date:        string(it.Date),
		Vendor:      it.Vendor,
		AmountCents: int64(it.Amount),
		CreatedAt:   it.CreatedAt,
	}
}

func toExpenseItemsJSON(items []core.ExpenseItem) []expenseItemJSON {
	out := make([]expenseItemJSON, len(items))
	for i, it := range items {
		out[i] = toExpenseItemJSON(it)
	}
	return out
}

type dayResponse struct {
	Date      string            `json:"date"`
	CashCents int64             `json:"cash_cents"`
	CardCents int64             `json:"card_cents"`
	Revenue   int64             `json:"revenue_cents"`
	Note      string            `json:"note"`
	CreatedAt int64             `json:"created_at"`
	UpdatedAt int64             `json:"updated_at"`
	Expenses  []expenseItemJSON `json:"expenses"`
}

type summaryRowJSON struct {
	Date         string `json:"date"`
	CashCents    int64  `json:"cash_cents"`
	CardCents    int64  `json:"card_cents"`
	Revenue      int64  `json:"revenue_cents"`
	ExpenseCents int64  `json:"expense_cents"`
	NetCents     int64  `json:"net_cents"`
}

type summaryResponse struct {
	From         string           `json:"from"`
	To           string           `json:"to"`
	Rows         []summaryRowJSON `json:"rows"`
	TotalCash    int64            `json:"total_cash_cents"`
	TotalCard    int64            `json:"total_card_cents"`
	TotalRevenue int64            `json:"total_revenue_cents"`
	TotalExpense int64            `json:"total_expense_cents"`
	TotalNet     int64            `json:"total_net_cents"`
}

func toSummaryResponse(s core.Summary) summaryResponse {
	rows := make([]summaryRowJSON, len(s.Rows))
	for i, r := range s.Rows {
		rows[i] = summaryRowJSON{
			Date:         string(r.Date),
			CashCents:    int64(r.Cash),
			CardCents:    int64(r.Card),
			Revenue:      int64(r.Revenue()),
			ExpenseCents: int64(r.ExpenseTotal),
			NetCents:     r.Net(),
		}
	}
	return summaryResponse{
		From:         string(s.From),
		To:           string(s.To),
		Rows:         rows,
		TotalCash:    int64(s.TotalCash),
		TotalCard:    int64(s.TotalCard),
		TotalRevenue: int64(s.TotalRevenue()),
		TotalExpense: int64(s.TotalExpense),
		TotalNet:     s.TotalNet(),
	}
}

type auditEventJSON struct {
	ID       string `json:"id"`
	Date     string `json:"date"`
	Field    string `json:"field"`
	OldValue string `json:"old_value"`
	NewValue string `json:"new_value"`
	EditedAt int64  `json:"edited_at"`
	Comment  string `json:"comment,omitempty"`
}

func toAuditEventsJSON(events []core.AuditEvent) []auditEventJSON {
	out := make([]auditEventJSON, len(events))
	for i, ev := range events {
		out[i] = auditEventJSON{
			ID:       ev.ID,
			Date:     string(ev.Date),
			Field:    string(ev.Field),
			OldValue: ev.OldValue,
			NewValue: ev.NewValue,
			EditedAt: ev.EditedAt,
			Comment:  ev.Comment,
		}
	}
	return out
}

type addExpenseRequest struct {
	Date   string `json:"date"`
	Vendor string `json:"vendor"`
	// Amount is a decimal string like "12,34" or "12.34".
	Amount string `json:"amount"`
}

type purgeResponse struct {
	Deleted int64 `json:"deleted"`
}
