package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"tally/internal/cache"
	"tally/internal/log"
	"tally/internal/services"
	"tally/internal/storage"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server, *cache.LRUCache[[]byte]) {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "tally.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	reportCache := cache.NewLRUCache[[]byte](100, 5*time.Minute)
	notifier := services.NewNotifier(nil, reportCache)
	svc := Services{
		Accounts:     services.NewAccountService(store, notifier),
		Transactions: services.NewTransactionService(store, notifier),
		Projects:     services.NewProjectService(store, notifier),
		Employees:    services.NewEmployeeService(store, notifier),
		Salary:       services.NewSalaryService(store, notifier),
		Deductions:   services.NewDeductionService(store, notifier),
		Categories:   services.NewCategoryService(store, notifier),
		Reports:      services.NewReportService(store),
	}

	s := NewServer(":0", svc, reportCache, 15, log.New(log.DefaultConfig()))
	ts := httptest.NewServer(s.Handler)
	t.Cleanup(ts.Close)
	t.Cleanup(func() { _ = s.Shutdown(context.Background()) })
	return s, ts, reportCache
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, dst any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestAccountLifecycle(t *testing.T) {
	_, ts, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/accounts", map[string]any{
		"code":            "1001",
		"name":            "Cash",
		"type":            "asset",
		"opening_balance": 500.00,
		"is_active":       true,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: got %d", resp.StatusCode)
	}
	var created struct {
		ID int64 `json:"id"`
	}
	decodeBody(t, resp, &created)
	if created.ID == 0 {
		t.Fatal("created account has no id")
	}

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/accounts/1", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get: got %d", resp.StatusCode)
	}
	var account struct {
		Balance json.Number `json:"balance"`
	}
	decodeBody(t, resp, &account)
	if account.Balance.String() != "1000.00" {
		t.Fatalf("balance: got %s", account.Balance)
	}

	resp = doJSON(t, http.MethodDelete, ts.URL+"/api/accounts/1", nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete: got %d", resp.StatusCode)
	}
	resp = doJSON(t, http.MethodGet, ts.URL+"/api/accounts/1", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("get after delete: got %d", resp.StatusCode)
	}
}

func TestValidationErrorsReturn422(t *testing.T) {
	_, ts, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/accounts", map[string]any{
		"name": "No code",
		"type": "asset",
	})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("got %d", resp.StatusCode)
	}
	var body struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}
	decodeBody(t, resp, &body)
	if body.Fields["code"] == "" {
		t.Fatalf("expected a code field error, got %+v", body)
	}
}

func TestDuplicateAccountCodeReturns422(t *testing.T) {
	_, ts, _ := newTestServer(t)

	account := map[string]any{"code": "1001", "name": "Cash", "type": "asset"}
	if resp := doJSON(t, http.MethodPost, ts.URL+"/api/accounts", account); resp.StatusCode != http.StatusCreated {
		t.Fatalf("first create: got %d", resp.StatusCode)
	}
	resp := doJSON(t, http.MethodPost, ts.URL+"/api/accounts", account)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("duplicate create: got %d", resp.StatusCode)
	}
}

func TestBadRequestBodies(t *testing.T) {
	_, ts, _ := newTestServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		want   int
	}{
		{"invalid account id", http.MethodGet, "/api/accounts/abc", http.StatusBadRequest},
		{"zero account id", http.MethodGet, "/api/accounts/0", http.StatusBadRequest},
		{"missing transaction", http.MethodGet, "/api/transactions/42", http.StatusNotFound},
		{"missing project summary", http.MethodGet, "/api/projects/42/summary", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doJSON(t, tt.method, ts.URL+tt.path, nil)
			if resp.StatusCode != tt.want {
				t.Errorf("%s %s = %d, want %d", tt.method, tt.path, resp.StatusCode, tt.want)
			}
		})
	}
}

func TestDashboardCacheFlushedOnMutation(t *testing.T) {
	_, ts, reportCache := newTestServer(t)

	if resp := doJSON(t, http.MethodGet, ts.URL+"/api/dashboard/summary", nil); resp.StatusCode != http.StatusOK {
		t.Fatalf("dashboard: got %d", resp.StatusCode)
	}
	if reportCache.Size() != 1 {
		t.Fatalf("cache size after report: got %d", reportCache.Size())
	}

	resp := doJSON(t, http.MethodGet, ts.URL+"/api/dashboard/summary", nil)
	if resp.Header.Get("X-Cache") != "hit" {
		t.Fatal("second read should be a cache hit")
	}

	account := map[string]any{"code": "1001", "name": "Cash", "type": "asset"}
	if resp := doJSON(t, http.MethodPost, ts.URL+"/api/accounts", account); resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: got %d", resp.StatusCode)
	}
	if reportCache.Size() != 0 {
		t.Fatalf("cache should be flushed by the mutation, got size %d", reportCache.Size())
	}
}

func TestSalaryPaymentEndpoint(t *testing.T) {
	_, ts, _ := newTestServer(t)

	account := map[string]any{"code": "1001", "name": "Payroll", "type": "expense"}
	if resp := doJSON(t, http.MethodPost, ts.URL+"/api/accounts", account); resp.StatusCode != http.StatusCreated {
		t.Fatalf("create account: got %d", resp.StatusCode)
	}
	employee := map[string]any{
		"employee_code": "EMP-001",
		"first_name":    "Asha",
		"last_name":     "Verma",
		"hire_date":     "2024-01-10",
		"salary":        3000.00,
		"is_active":     true,
	}
	if resp := doJSON(t, http.MethodPost, ts.URL+"/api/employees", employee); resp.StatusCode != http.StatusCreated {
		t.Fatalf("create employee: got %d", resp.StatusCode)
	}

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/employees/1/salary-payments", map[string]any{
		"account_id":     1,
		"amount":         3000.00,
		"date":           "2024-06-30",
		"financial_year": "2024-2025",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("record payment: got %d", resp.StatusCode)
	}
	var payment struct {
		Description string `json:"description"`
	}
	decodeBody(t, resp, &payment)
	if payment.Description != "Salary Payment - Asha Verma" {
		t.Fatalf("description: got %q", payment.Description)
	}

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/employees/1/salary-history", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("history: got %d", resp.StatusCode)
	}
	var history struct {
		TotalPaid json.Number `json:"total_paid"`
	}
	decodeBody(t, resp, &history)
	if history.TotalPaid.String() != "3000.00" {
		t.Fatalf("total paid: got %s", history.TotalPaid)
	}
}

func TestFilterParsing(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet,
		"/api/transactions?financial_year=2024-2025&account_id=3&transaction_type=credit&is_active=true&start_date=2024-04-01&page=2&size=25&search=rent", nil)
	f := parseFilter(r)

	if f.FinancialYear != "2024-2025" {
		t.Errorf("financial year: got %q", f.FinancialYear)
	}
	if f.AccountID == nil || *f.AccountID != 3 {
		t.Errorf("account id: got %v", f.AccountID)
	}
	if string(f.TransactionType) != "credit" {
		t.Errorf("transaction type: got %q", f.TransactionType)
	}
	if f.IsActive == nil || !*f.IsActive {
		t.Errorf("is_active: got %v", f.IsActive)
	}
	if f.StartDate == nil {
		t.Error("start date not parsed")
	}
	if f.Page != 2 || f.Size != 25 {
		t.Errorf("paging: got page %d size %d", f.Page, f.Size)
	}
	if f.Search != "rent" {
		t.Errorf("search: got %q", f.Search)
	}

	r = httptest.NewRequest(http.MethodGet, "/api/transactions?account_id=abc&start_date=junk&is_recurring=maybe", nil)
	f = parseFilter(r)
	if f.AccountID != nil || f.StartDate != nil || f.IsRecurring != nil {
		t.Errorf("malformed values must be ignored, got %+v", f)
	}
}
