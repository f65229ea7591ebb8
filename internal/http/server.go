// Package http exposes the bookkeeping operations as a local JSON API
// for the phone/tablet clients.
package http

import (
	"context"
	"net/http"
	"time"

	"kassenbuch/internal/core"
	"kassenbuch/internal/services"
)

// Bookkeeper is the service surface the handlers consume.
type Bookkeeper interface {
	SaveDay(ctx context.Context, in services.SaveDayInput) error
	GetDay(ctx context.Context, date core.Date) (*core.DailyEntry, []core.ExpenseItem, error)
	Summarize(ctx context.Context, from, to core.Date) (core.Summary, error)
	AuditByDate(ctx context.Context, date core.Date) ([]core.AuditEvent, error)
	AuditInRange(ctx context.Context, fromMillis, toMillis int64) ([]core.AuditEvent, error)
	PurgeAudit(ctx context.Context, retentionDays int) (int64, error)
	ListExpenses(ctx context.Context, date core.Date) ([]core.ExpenseItem, error)
	AddExpense(ctx context.Context, date core.Date, vendor string, amount core.Cents) (core.ExpenseItem, error)
	DeleteExpense(ctx context.Context, id string) error
}

// Exporter renders the monthly report workbook.
type Exporter interface {
	MonthReport(ctx context.Context, year, month int) ([]byte, error)
}

type Server struct {
	http.Server
	books    Bookkeeper
	exporter Exporter
}

func NewServer(addr string, books Bookkeeper, exporter Exporter) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		books:    books,
		exporter: exporter,
	}

	s.Server.ReadTimeout = 10 * time.Second
	s.Server.WriteTimeout = 30 * time.Second
	s.Server.IdleTimeout = 60 * time.Second
	s.Server.MaxHeaderBytes = 1 << 16

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleHealth)

	mux.HandleFunc("POST /api/days/{date}", s.withRequestLog(s.handleSaveDay))
	mux.HandleFunc("GET /api/days/{date}", s.withRequestLog(s.handleGetDay))

	mux.HandleFunc("GET /api/summary", s.withRequestLog(s.handleSummary))
	mux.HandleFunc("GET /api/export/month", s.withRequestLog(s.handleExportMonth))

	mux.HandleFunc("GET /api/audit", s.withRequestLog(s.handleAudit))
	mux.HandleFunc("POST /api/audit/purge", s.withRequestLog(s.handlePurgeAudit))

	mux.HandleFunc("GET /api/expenses", s.withRequestLog(s.handleListExpenses))
	mux.HandleFunc("POST /api/expenses", s.withRequestLog(s.handleAddExpense))
	mux.HandleFunc("DELETE /api/expenses/{id}", s.withRequestLog(s.handleDeleteExpense))

	return s
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
