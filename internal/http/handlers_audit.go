package http

import (
	"net/http"

	"kassenbuch/internal/services"
)

// handleAudit serves either a single date's trail (?date=) or a
// timestamp window (?from=&to=, epoch millis).
func (s *Server) handleAudit(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	if query.Get("date") != "" {
		date, err := queryDate(r, "date")
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "invalid date")
			return
		}
		events, err := s.books.AuditByDate(r.Context(), date)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toAuditEventsJSON(events))
		return
	}

	from, err := queryInt64(r, "from")
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid 'from' timestamp")
		return
	}
	to, err := queryInt64(r, "to")
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid 'to' timestamp")
		return
	}

	events, err := s.books.AuditInRange(r.Context(), from, to)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAuditEventsJSON(events))
}

func (s *Server) handlePurgeAudit(w http.ResponseWriter, r *http.Request) {
	days, err := queryInt(r, "days", services.DefaultRetentionDays)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid days")
		return
	}

	deleted, err := s.books.PurgeAudit(r.Context(), days)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, purgeResponse{Deleted: deleted})
}
