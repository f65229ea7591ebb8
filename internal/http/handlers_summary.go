package http

import (
	"fmt"
	"net/http"
	"time"
)

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	from, err := queryDate(r, "from")
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid 'from' date")
		return
	}
	to, err := queryDate(r, "to")
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid 'to' date")
		return
	}

	summary, err := s.books.Summarize(r.Context(), from, to)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toSummaryResponse(summary))
}

func (s *Server) handleExportMonth(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	year, err := queryInt(r, "year", now.Year())
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid year")
		return
	}
	month, err := queryInt(r, "month", int(now.Month()))
	if err != nil || month < 1 || month > 12 {
		writeError(w, http.StatusUnprocessableEntity, "invalid month")
		return
	}

	data, err := s.exporter.MonthReport(r.Context(), year, month)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	filename := fmt.Sprintf("kassenbuch-%04d-%02d.xlsx", year, month)
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
