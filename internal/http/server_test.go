package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"kassenbuch/internal/core"
	"kassenbuch/internal/services"
)

// fakeBooks records the last call and returns canned data.
type fakeBooks struct {
	saved       *services.SaveDayInput
	entry       *core.DailyEntry
	items       []core.ExpenseItem
	summary     core.Summary
	audit       []core.AuditEvent
	purged      int64
	deleteErr   error
	getErr      error
	summErr     error
	purgeErr    error
	deletedID   string
	purgedDays  int
	auditByDate *core.Date
	auditRange  *[2]int64
}

func (f *fakeBooks) SaveDay(ctx context.Context, in services.SaveDayInput) error {
	f.saved = &in
	return nil
}

func (f *fakeBooks) GetDay(ctx context.Context, date core.Date) (*core.DailyEntry, []core.ExpenseItem, error) {
	if f.getErr != nil {
		return nil, nil, f.getErr
	}
	return f.entry, f.items, nil
}

func (f *fakeBooks) Summarize(ctx context.Context, from, to core.Date) (core.Summary, error) {
	if f.summErr != nil {
		return core.Summary{}, f.summErr
	}
	return f.summary, nil
}

func (f *fakeBooks) AuditByDate(ctx context.Context, date core.Date) ([]core.AuditEvent, error) {
	f.auditByDate = &date
	return f.audit, nil
}

func (f *fakeBooks) AuditInRange(ctx context.Context, fromMillis, toMillis int64) ([]core.AuditEvent, error) {
	f.auditRange = &[2]int64{fromMillis, toMillis}
	return f.audit, nil
}

func (f *fakeBooks) PurgeAudit(ctx context.Context, retentionDays int) (int64, error) {
	if f.purgeErr != nil {
		return 0, f.purgeErr
	}
	f.purgedDays = retentionDays
	return f.purged, nil
}

func (f *fakeBooks) ListExpenses(ctx context.Context, date core.Date) ([]core.ExpenseItem, error) {
	return f.items, nil
}

func (f *fakeBooks) AddExpense(ctx context.Context, date core.Date, vendor string, amount core.Cents) (core.ExpenseItem, error) {
	return core.ExpenseItem{ID: "exp-1", Date: date, Vendor: vendor, Amount: amount, CreatedAt: 42}, nil
}

func (f *fakeBooks) DeleteExpense(ctx context.Context, id string) error {
	f.deletedID = id
	return f.deleteErr
}

type fakeExporter struct {
	data []byte
	err  error
}

func (f fakeExporter) MonthReport(ctx context.Context, year, month int) ([]byte, error) {
	return f.data, f.err
}

func do(t *testing.T, srv *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func TestHealthEndpoints(t *testing.T) {
	srv := NewServer(":0", &fakeBooks{}, fakeExporter{})
	for _, path := range []string{"/healthz", "/readyz"} {
		rr := do(t, srv, http.MethodGet, path, "")
		if rr.Code != 200 {
			t.Fatalf("%s status=%d", path, rr.Code)
		}
	}
}

func TestSaveDay(t *testing.T) {
	books := &fakeBooks{}
	srv := NewServer(":0", books, fakeExporter{})

	body := `{"cash_cents":1000,"card_cents":2500,"note":"quiet day","expenses":[{"vendor":"Metro","amount_cents":500}],"audit_comment":"late fix"}`
	rr := do(t, srv, http.MethodPost, "/api/days/2026-03-14", body)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	if books.saved == nil {
		t.Fatal("SaveDay not called")
	}
	in := *books.saved
	if in.Date != "2026-03-14" || in.Cash != 1000 || in.Card != 2500 {
		t.Fatalf("unexpected input: %+v", in)
	}
	if len(in.Expenses) != 1 || in.Expenses[0].Vendor != "Metro" || in.Expenses[0].Amount != 500 {
		t.Fatalf("unexpected expenses: %+v", in.Expenses)
	}
	if in.AuditComment != "late fix" {
		t.Fatalf("comment not carried: %q", in.AuditComment)
	}
}

func TestSaveDayRejectsBadInput(t *testing.T) {
	books := &fakeBooks{}
	srv := NewServer(":0", books, fakeExporter{})

	cases := []struct {
		name   string
		target string
		body   string
		want   int
	}{
		{"bad date", "/api/days/14-03-2026", `{"cash_cents":1}`, 422},
		{"negative cash", "/api/days/2026-03-14", `{"cash_cents":-1}`, 422},
		{"negative expense", "/api/days/2026-03-14", `{"cash_cents":0,"expenses":[{"vendor":"x","amount_cents":-5}]}`, 422},
		{"unknown field", "/api/days/2026-03-14", `{"cash":1}`, 400},
		{"not json", "/api/days/2026-03-14", `cash=1`, 400},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := do(t, srv, http.MethodPost, tc.target, tc.body)
			if rr.Code != tc.want {
				t.Fatalf("status=%d want=%d body=%s", rr.Code, tc.want, rr.Body.String())
			}
		})
	}
	if books.saved != nil {
		t.Fatal("SaveDay called despite invalid input")
	}
}

func TestGetDay(t *testing.T) {
	books := &fakeBooks{
		entry: &core.DailyEntry{Date: "2026-03-14", Cash: 1000, Card: 2500, Note: "n", CreatedAt: 1, UpdatedAt: 2},
		items: []core.ExpenseItem{{ID: "a", Date: "2026-03-14", Vendor: "Metro", Amount: 500, CreatedAt: 1}},
	}
	srv := NewServer(":0", books, fakeExporter{})

	rr := do(t, srv, http.MethodGet, "/api/days/2026-03-14", "")
	if rr.Code != 200 {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	var resp dayResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Revenue != 3500 {
		t.Fatalf("revenue=%d", resp.Revenue)
	}
	if len(resp.Expenses) != 1 || resp.Expenses[0].Vendor != "Metro" {
		t.Fatalf("expenses: %+v", resp.Expenses)
	}
}

func TestGetDayNotFound(t *testing.T) {
	srv := NewServer(":0", &fakeBooks{getErr: services.ErrNotFound}, fakeExporter{})
	rr := do(t, srv, http.MethodGet, "/api/days/2026-03-14", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status=%d", rr.Code)
	}
}

func TestSummary(t *testing.T) {
	books := &fakeBooks{summary: core.Summary{
		From: "2026-03-01", To: "2026-03-31",
		Rows:      []core.SummaryRow{{Date: "2026-03-14", Cash: 1000, Card: 2000, ExpenseTotal: 500}},
		TotalCash: 1000, TotalCard: 2000, TotalExpense: 500,
	}}
	srv := NewServer(":0", books, fakeExporter{})

	rr := do(t, srv, http.MethodGet, "/api/summary?from=2026-03-01&to=2026-03-31", "")
	if rr.Code != 200 {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	var resp summaryResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.TotalRevenue != 3000 || resp.TotalNet != 2500 {
		t.Fatalf("totals: %+v", resp)
	}
	if len(resp.Rows) != 1 || resp.Rows[0].NetCents != 2500 {
		t.Fatalf("rows: %+v", resp.Rows)
	}
}

func TestSummaryBadRange(t *testing.T) {
	srv := NewServer(":0", &fakeBooks{summErr: services.ErrInvalidRange}, fakeExporter{})

	rr := do(t, srv, http.MethodGet, "/api/summary?to=2026-03-31", "")
	if rr.Code != 422 {
		t.Fatalf("missing from: status=%d", rr.Code)
	}

	rr = do(t, srv, http.MethodGet, "/api/summary?from=2026-03-31&to=2026-03-01", "")
	if rr.Code != 422 {
		t.Fatalf("reversed range: status=%d", rr.Code)
	}
}

func TestAuditByDateAndRange(t *testing.T) {
	books := &fakeBooks{audit: []core.AuditEvent{
		{ID: "ev-1", Date: "2026-03-14", Field: core.FieldCash, OldValue: "0", NewValue: "1000", EditedAt: 99, Comment: "c"},
	}}
	srv := NewServer(":0", books, fakeExporter{})

	rr := do(t, srv, http.MethodGet, "/api/audit?date=2026-03-14", "")
	if rr.Code != 200 {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	if books.auditByDate == nil || *books.auditByDate != "2026-03-14" {
		t.Fatalf("byDate not routed: %+v", books.auditByDate)
	}
	var events []auditEventJSON
	if err := json.Unmarshal(rr.Body.Bytes(), &events); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(events) != 1 || events[0].Field != "cash" || events[0].Comment != "c" {
		t.Fatalf("events: %+v", events)
	}

	rr = do(t, srv, http.MethodGet, "/api/audit?from=100&to=200", "")
	if rr.Code != 200 {
		t.Fatalf("range status=%d", rr.Code)
	}
	if books.auditRange == nil || books.auditRange[0] != 100 || books.auditRange[1] != 200 {
		t.Fatalf("range not routed: %+v", books.auditRange)
	}

	rr = do(t, srv, http.MethodGet, "/api/audit", "")
	if rr.Code != 422 {
		t.Fatalf("no params: status=%d", rr.Code)
	}
}

func TestPurgeAudit(t *testing.T) {
	books := &fakeBooks{purged: 7}
	srv := NewServer(":0", books, fakeExporter{})

	rr := do(t, srv, http.MethodPost, "/api/audit/purge?days=30", "")
	if rr.Code != 200 {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	if books.purgedDays != 30 {
		t.Fatalf("days=%d", books.purgedDays)
	}
	var resp purgeResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Deleted != 7 {
		t.Fatalf("deleted=%d", resp.Deleted)
	}

	rr = do(t, srv, http.MethodPost, "/api/audit/purge", "")
	if rr.Code != 200 || books.purgedDays != services.DefaultRetentionDays {
		t.Fatalf("default days: status=%d days=%d", rr.Code, books.purgedDays)
	}

	rr = do(t, srv, http.MethodPost, "/api/audit/purge?days=abc", "")
	if rr.Code != 422 {
		t.Fatalf("bad days: status=%d", rr.Code)
	}

	srv = NewServer(":0", &fakeBooks{purgeErr: services.ErrInvalidRetention}, fakeExporter{})
	rr = do(t, srv, http.MethodPost, "/api/audit/purge?days=-1", "")
	if rr.Code != 422 {
		t.Fatalf("negative days: status=%d", rr.Code)
	}
}

func TestExpenseEndpoints(t *testing.T) {
	books := &fakeBooks{items: []core.ExpenseItem{{ID: "a", Date: "2026-03-14", Vendor: "Metro", Amount: 500}}}
	srv := NewServer(":0", books, fakeExporter{})

	rr := do(t, srv, http.MethodGet, "/api/expenses?date=2026-03-14", "")
	if rr.Code != 200 {
		t.Fatalf("list status=%d", rr.Code)
	}

	rr = do(t, srv, http.MethodPost, "/api/expenses", `{"date":"2026-03-14","vendor":"Bakery","amount":"12,34"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("add status=%d body=%s", rr.Code, rr.Body.String())
	}
	var item expenseItemJSON
	if err := json.Unmarshal(rr.Body.Bytes(), &item); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if item.AmountCents != 1234 || item.Vendor != "Bakery" {
		t.Fatalf("item: %+v", item)
	}

	rr = do(t, srv, http.MethodPost, "/api/expenses", `{"date":"2026-03-14","vendor":"Bakery","amount":"-1,00"}`)
	if rr.Code != 422 {
		t.Fatalf("negative amount status=%d", rr.Code)
	}

	rr = do(t, srv, http.MethodDelete, "/api/expenses/a", "")
	if rr.Code != http.StatusNoContent || books.deletedID != "a" {
		t.Fatalf("delete status=%d id=%q", rr.Code, books.deletedID)
	}

	srv = NewServer(":0", &fakeBooks{deleteErr: services.ErrNotFound}, fakeExporter{})
	rr = do(t, srv, http.MethodDelete, "/api/expenses/missing", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("delete missing status=%d", rr.Code)
	}
}

func TestExportMonth(t *testing.T) {
	srv := NewServer(":0", &fakeBooks{}, fakeExporter{data: []byte("PK\x03\x04")})

	rr := do(t, srv, http.MethodGet, "/api/export/month?year=2026&month=3", "")
	if rr.Code != 200 {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	if ct := rr.Header().Get("Content-Type"); !strings.Contains(ct, "spreadsheetml") {
		t.Fatalf("content type: %s", ct)
	}
	if cd := rr.Header().Get("Content-Disposition"); !strings.Contains(cd, "kassenbuch-2026-03.xlsx") {
		t.Fatalf("disposition: %s", cd)
	}

	rr = do(t, srv, http.MethodGet, "/api/export/month?year=2026&month=13", "")
	if rr.Code != 422 {
		t.Fatalf("bad month status=%d", rr.Code)
	}

	srv = NewServer(":0", &fakeBooks{}, fakeExporter{err: errors.New("boom")})
	rr = do(t, srv, http.MethodGet, "/api/export/month?year=2026&month=3", "")
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("exporter error status=%d", rr.Code)
	}
}
