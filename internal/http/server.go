// Package http serves the JSON API.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"tally/internal/cache"
	"tally/internal/log"
	"tally/internal/services"
)

// Services bundles everything the handlers call into.
type Services struct {
	Accounts     *services.AccountService
	Transactions *services.TransactionService
	Projects     *services.ProjectService
	Employees    *services.EmployeeService
	Salary       *services.SalaryService
	Deductions   *services.DeductionService
	Categories   *services.CategoryService
	Reports      *services.ReportService
}

// Server wraps http.Server with the API routes, a per-IP rate limiter
// and an LRU cache for report responses. The cache is shared with the
// notifier, which flushes it on every mutation.
type Server struct {
	http.Server
	svc             Services
	logger          *log.Logger
	rateLimiter     *rateLimiter
	metrics         *securityMetrics
	defaultPageSize int

	reportCache  *cache.LRUCache[[]byte]
	cacheManager *cache.Manager

	shutdownOnce sync.Once
}

// NewServer configures routes and returns a ready-to-run server. The
// report cache may be nil to disable response caching; a zero
// defaultPageSize falls back to the domain default.
func NewServer(addr string, svc Services, reportCache *cache.LRUCache[[]byte], defaultPageSize int, logger *log.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		svc:             svc,
		logger:          logger.WithComponent(log.ComponentHTTP),
		rateLimiter:     newRateLimiter(),
		metrics:         &securityMetrics{},
		defaultPageSize: defaultPageSize,
		reportCache:     reportCache,
		cacheManager:    cache.NewManager(),
	}

	if reportCache != nil {
		s.cacheManager.Register(reportCache)
	}
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	api := func(pattern string, h http.HandlerFunc) {
		mux.HandleFunc(pattern, s.middleware(h))
	}

	api("GET /api/accounts", s.handleListAccounts)
	api("POST /api/accounts", s.handleCreateAccount)
	api("GET /api/accounts/{id}", s.handleGetAccount)
	api("PUT /api/accounts/{id}", s.handleUpdateAccount)
	api("DELETE /api/accounts/{id}", s.handleDeleteAccount)
	api("GET /api/accounts/{id}/transactions", s.handleAccountTransactions)

	api("GET /api/transactions", s.handleListTransactions)
	api("POST /api/transactions", s.handleCreateTransaction)
	api("GET /api/transactions/{id}", s.handleGetTransaction)
	api("PUT /api/transactions/{id}", s.handleUpdateTransaction)
	api("DELETE /api/transactions/{id}", s.handleDeleteTransaction)
	api("GET /api/transactions/meta/categories", s.handleTransactionCategories)
	api("GET /api/transactions/meta/financial-years", s.handleFinancialYears)

	api("GET /api/projects", s.handleListProjects)
	api("POST /api/projects", s.handleCreateProject)
	api("GET /api/projects/{id}", s.handleGetProject)
	api("PUT /api/projects/{id}", s.handleUpdateProject)
	api("DELETE /api/projects/{id}", s.handleDeleteProject)
	api("GET /api/projects/{id}/summary", s.handleProjectSummary)

	api("GET /api/employees", s.handleListEmployees)
	api("POST /api/employees", s.handleCreateEmployee)
	api("GET /api/employees/{id}", s.handleGetEmployee)
	api("PUT /api/employees/{id}", s.handleUpdateEmployee)
	api("DELETE /api/employees/{id}", s.handleDeleteEmployee)
	api("GET /api/employees/{id}/salary-history", s.handleSalaryHistory)
	api("POST /api/employees/{id}/salary-payments", s.handleRecordSalaryPayment)

	api("GET /api/deductions", s.handleListDeductions)
	api("POST /api/deductions", s.handleCreateDeduction)
	api("GET /api/deductions/{id}", s.handleGetDeduction)
	api("PUT /api/deductions/{id}", s.handleUpdateDeduction)
	api("DELETE /api/deductions/{id}", s.handleDeleteDeduction)
	api("GET /api/deductions/reports/employee-deductions", s.cached(s.handleEmployeeDeductions))

	api("GET /api/categories", s.handleListCategories)
	api("POST /api/categories", s.handleCreateCategory)
	api("GET /api/categories/{id}", s.handleGetCategory)
	api("PUT /api/categories/{id}", s.handleUpdateCategory)
	api("DELETE /api/categories/{id}", s.handleDeleteCategory)

	api("GET /api/dashboard/summary", s.cached(s.handleDashboard))
	api("GET /api/reports/financial-year/{fy}", s.cached(s.handleFinancialYearReport))
	api("GET /api/reports/profit-loss", s.cached(s.handleProfitLoss))
	api("GET /api/reports/balance-sheet", s.cached(s.handleBalanceSheet))
	api("GET /api/reports/projects", s.cached(s.handleProjectReports))
	api("GET /api/reports/projects/{id}/financial-summary", s.cached(s.handleProjectFinancialSummary))
	api("GET /api/reports/project-finance", s.cached(s.handleProjectFinanceReport))
	api("GET /api/reports/employees/salary", s.cached(s.handleSalaryReport))
	api("GET /api/reports/salary/monthly", s.cached(s.handleMonthlySalarySummary))
	api("GET /api/reports/salary/financial-year/{fy}", s.cached(s.handleFYSalarySummary))

	return s
}

// Shutdown stops the cleanup goroutines before draining the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
