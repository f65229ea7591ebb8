package http

import (
	"net/http"

	"kassenbuch/internal/core"
	"kassenbuch/internal/services"
)

func (s *Server) handleSaveDay(w http.ResponseWriter, r *http.Request) {
	date, err := pathDate(r)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid date")
		return
	}

	var req saveDayRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cash, err := core.NewCents(req.CashCents)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid cash amount")
		return
	}
	card, err := core.NewCents(req.CardCents)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid card amount")
		return
	}

	drafts := make([]core.ExpenseDraft, len(req.Expenses))
	for i, e := range req.Expenses {
		amount, err := core.NewCents(e.AmountCents)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "invalid expense amount")
			return
		}
		drafts[i] = core.ExpenseDraft{Vendor: e.Vendor, Amount: amount}
	}

	err = s.books.SaveDay(r.Context(), services.SaveDayInput{
		Date:         date,
		Cash:         cash,
		Card:         card,
		Note:         req.Note,
		Expenses:     drafts,
		AuditComment: req.AuditComment,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetDay(w http.ResponseWriter, r *http.Request) {
	date, err := pathDate(r)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid date")
		return
	}

	entry, items, err := s.books.GetDay(r.Context(), date)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dayResponse{
		Date:      string(entry.Date),
		CashCents: int64(entry.Cash),
		CardCents: int64(entry.Card),
		Revenue:   int64(entry.Revenue()),
		Note:      entry.Note,
		CreatedAt: entry.CreatedAt,
		UpdatedAt: entry.UpdatedAt,
		Expenses:  toExpenseItemsJSON(items),
	})
}
