package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"tally/internal/core"
	"tally/internal/storage"
)

func newTestStore(t *testing.T) *storage.Store {
	t.Helper()
	s, err := storage.Open(filepath.Join(t.TempDir(), "tally.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// noopNotifier has no broker and no cache; mutations still succeed.
func noopNotifier() *Notifier { return NewNotifier(nil, nil) }

func mny(t *testing.T, s string) core.Money {
	t.Helper()
	m, err := core.MoneyFromString(s)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func seedAccount(t *testing.T, store *storage.Store, code, opening string) core.Account {
	t.Helper()
	svc := NewAccountService(store, noopNotifier())
	a, err := svc.Create(context.Background(), core.Account{
		Code:           code,
		Name:           "Account " + code,
		Type:           core.AccountAsset,
		OpeningBalance: mny(t, opening),
		IsActive:       true,
	})
	if err != nil {
		t.Fatalf("seed account: %v", err)
	}
	return a
}

func TestAccountServiceValidation(t *testing.T) {
	store := newTestStore(t)
	svc := NewAccountService(store, noopNotifier())

	_, err := svc.Create(context.Background(), core.Account{Name: "No code", Type: core.AccountAsset})
	fe, ok := core.AsFieldErrors(err)
	if !ok {
		t.Fatalf("expected field errors, got %v", err)
	}
	if _, has := fe["code"]; !has {
		t.Fatalf("got %v", fe)
	}
}

func TestAccountBalanceIncludesOpening(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	a := seedAccount(t, store, "1001", "1000")

	txSvc := NewTransactionService(store, noopNotifier())
	_, err := txSvc.Create(ctx, core.Transaction{
		Date:        core.NewDate(2024, time.June, 1),
		Description: "Sale",
		Amount:      mny(t, "250"),
		Type:        core.Credit,
		AccountID:   a.ID,
	})
	if err != nil {
		t.Fatal(err)
	}

	got, err := NewAccountService(store, noopNotifier()).Get(ctx, a.ID)
	if err != nil {
		t.Fatal(err)
	}
	// Opening balance already landed as its own credit transaction, so the
	// lifetime balance is opening + opening credit + sale.
	if got.Balance.String() != "2250.00" {
		t.Fatalf("balance: got %s", got.Balance)
	}
}

func TestTransactionServiceRejectsUnknownReferences(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	a := seedAccount(t, store, "1001", "0")
	svc := NewTransactionService(store, noopNotifier())

	missing := int64(999)
	_, err := svc.Create(ctx, core.Transaction{
		Date:        core.NewDate(2024, time.June, 1),
		Description: "Entry",
		Amount:      mny(t, "10"),
		Type:        core.Debit,
		AccountID:   a.ID,
		ProjectID:   &missing,
	})
	fe, ok := core.AsFieldErrors(err)
	if !ok {
		t.Fatalf("expected field errors, got %v", err)
	}
	if _, has := fe["project_id"]; !has {
		t.Fatalf("got %v", fe)
	}
}

func TestDashboardTotalsExcludeOpeningBalances(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	a := seedAccount(t, store, "1001", "0")

	txSvc := NewTransactionService(store, noopNotifier())
	mk := func(typ core.TransactionType, amount, fy string) {
		t.Helper()
		_, err := txSvc.Create(ctx, core.Transaction{
			Date:          core.NewDate(2024, time.June, 1),
			Description:   "Entry",
			Amount:        mny(t, amount),
			Type:          typ,
			AccountID:     a.ID,
			FinancialYear: fy,
		})
		if err != nil {
			t.Fatal(err)
		}
	}
	mk(core.Credit, "500", "2024-2025")
	mk(core.Debit, "200", "2024-2025")
	mk(core.Credit, "999", "2023-2024") // outside the filter

	d, err := NewReportService(store).Dashboard(ctx, core.Filter{FinancialYear: "2024-2025"})
	if err != nil {
		t.Fatal(err)
	}
	if got := d.TotalsByType[core.AccountAsset].String(); got != "300.00" {
		t.Fatalf("asset total: got %s", got)
	}
	if d.TotalIncome.String() != "500.00" || d.TotalExpenses.String() != "200.00" {
		t.Fatalf("got income %s expenses %s", d.TotalIncome, d.TotalExpenses)
	}
	if d.NetBalance.String() != "300.00" {
		t.Fatalf("net: got %s", d.NetBalance)
	}
	if len(d.RecentTransactions) != 2 {
		t.Fatalf("recent: got %d", len(d.RecentTransactions))
	}
}

func TestDashboardRecentTransactionsByCreation(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	a := seedAccount(t, store, "1001", "0")

	txSvc := NewTransactionService(store, noopNotifier())
	mk := func(desc string, d core.Date) {
		t.Helper()
		_, err := txSvc.Create(ctx, core.Transaction{
			Date: d, Description: desc, Amount: mny(t, "100"),
			Type: core.Credit, AccountID: a.ID,
		})
		if err != nil {
			t.Fatal(err)
		}
	}
	mk("Current entry", core.NewDate(2024, time.June, 1))
	// Recorded later but dated earlier.
	mk("Backdated entry", core.NewDate(2024, time.January, 1))

	d, err := NewReportService(store).Dashboard(ctx, core.Filter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(d.RecentTransactions) != 2 || d.RecentTransactions[0].Description != "Backdated entry" {
		t.Fatalf("recent: got %+v", d.RecentTransactions)
	}
}

func TestDashboardActiveCountsIgnoreFilter(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seedAccount(t, store, "1001", "0")

	projSvc := NewProjectService(store, noopNotifier())
	if _, err := projSvc.Create(ctx, core.Project{Code: "PRJ-001", Name: "Website", Status: core.StatusActive}); err != nil {
		t.Fatal(err)
	}
	if _, err := projSvc.Create(ctx, core.Project{Code: "PRJ-002", Name: "Done", Status: core.StatusCompleted}); err != nil {
		t.Fatal(err)
	}

	// A filter matching nothing still reports the global active counts.
	d, err := NewReportService(store).Dashboard(ctx, core.Filter{FinancialYear: "1999-2000"})
	if err != nil {
		t.Fatal(err)
	}
	if d.ActiveAccounts != 1 || d.ActiveProjects != 1 {
		t.Fatalf("got accounts %d projects %d", d.ActiveAccounts, d.ActiveProjects)
	}
	if !d.TotalIncome.IsZero() {
		t.Fatalf("income should be zero, got %s", d.TotalIncome)
	}
}

func TestFinancialYearReportUsesLifetimeBalances(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	a := seedAccount(t, store, "1001", "1000")

	txSvc := NewTransactionService(store, noopNotifier())
	_, err := txSvc.Create(ctx, core.Transaction{
		Date:          core.NewDate(2024, time.June, 1),
		Description:   "Sale",
		Amount:        mny(t, "200"),
		Type:          core.Credit,
		AccountID:     a.ID,
		FinancialYear: "2024-2025",
	})
	if err != nil {
		t.Fatal(err)
	}
	_, err = txSvc.Create(ctx, core.Transaction{
		Date:          core.NewDate(2023, time.June, 1),
		Description:   "Old sale",
		Amount:        mny(t, "50"),
		Type:          core.Credit,
		AccountID:     a.ID,
		FinancialYear: "2023-2024",
	})
	if err != nil {
		t.Fatal(err)
	}

	report, err := NewReportService(store).FinancialYear(ctx, "2024-2025")
	if err != nil {
		t.Fatal(err)
	}
	// Year scope: only the 2024-2025 sale.
	if report.TotalIncome.String() != "200.00" {
		t.Fatalf("income: got %s", report.TotalIncome)
	}
	// Account grouping: lifetime balance with opening balance and with the
	// prior year's transaction.
	if len(report.AccountsByType) != 1 {
		t.Fatalf("groups: got %d", len(report.AccountsByType))
	}
	grp := report.AccountsByType[0]
	if grp.Type != core.AccountAsset || grp.Total.String() != "2250.00" {
		t.Fatalf("group: got %s %s", grp.Type, grp.Total)
	}
}

func TestSalaryPaymentFlow(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	a := seedAccount(t, store, "1001", "0")

	salary := mny(t, "3000")
	hire := core.NewDate(2024, time.January, 10)
	empSvc := NewEmployeeService(store, noopNotifier())
	e, err := empSvc.Create(ctx, core.Employee{
		EmployeeCode: "EMP-001", FirstName: "Asha", LastName: "Verma",
		HireDate: &hire, Salary: &salary, IsActive: true,
	})
	if err != nil {
		t.Fatal(err)
	}

	salSvc := NewSalaryService(store, noopNotifier())
	payment, err := salSvc.RecordPayment(ctx, PaymentRequest{
		EmployeeID:    e.ID,
		AccountID:     a.ID,
		Amount:        mny(t, "3000"),
		Date:          core.NewDate(2024, time.June, 30),
		FinancialYear: "2024-2025",
		NewDeductions: []core.Deduction{{
			Amount:      mny(t, "150"),
			Description: "Income tax",
			Type:        core.DeductionTax,
		}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if payment.Description != "Salary Payment - Asha Verma" || payment.Type != core.Credit {
		t.Fatalf("payment: got %+v", payment)
	}

	links, err := store.TransactionDeductions(ctx, payment.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(links) != 1 || links[0].AmountApplied.String() != "150.00" {
		t.Fatalf("links: got %+v", links)
	}

	history, err := salSvc.History(ctx, e.ID, core.Filter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(history.Payments) != 1 || history.TotalPaid.String() != "3000.00" {
		t.Fatalf("history: got %+v", history)
	}
}

func TestEmployeeDeductionsReport(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	empSvc := NewEmployeeService(store, noopNotifier())
	e, err := empSvc.Create(ctx, core.Employee{
		EmployeeCode: "EMP-001", FirstName: "Asha", LastName: "Verma", IsActive: true,
	})
	if err != nil {
		t.Fatal(err)
	}

	dedSvc := NewDeductionService(store, noopNotifier())
	mk := func(amount string, typ core.DeductionType) {
		t.Helper()
		_, err := dedSvc.Create(ctx, core.Deduction{
			EmployeeID:    e.ID,
			Amount:        mny(t, amount),
			Description:   "Deduction",
			Date:          core.NewDate(2024, time.May, 1),
			Type:          typ,
			FinancialYear: "FY2024",
		})
		if err != nil {
			t.Fatal(err)
		}
	}
	mk("500", core.DeductionTax)
	mk("200", core.DeductionInsurance)

	report, err := dedSvc.EmployeeDeductions(ctx, core.Filter{FinancialYear: "FY2024"})
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Entries) != 1 {
		t.Fatalf("entries: got %d", len(report.Entries))
	}
	entry := report.Entries[0]
	if entry.TotalDeductions.String() != "700.00" || entry.DeductionCount != 2 {
		t.Fatalf("totals: got %+v", entry)
	}
	byType := map[core.DeductionType]string{}
	for _, ts := range entry.ByType {
		byType[ts.Type] = ts.Total.String()
	}
	if byType[core.DeductionTax] != "500.00" || byType[core.DeductionInsurance] != "200.00" {
		t.Fatalf("by type: got %v", byType)
	}
}

func TestSalaryHistoryCountsAllCreditTransactions(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	a := seedAccount(t, store, "1001", "0")

	salary := mny(t, "3000")
	empSvc := NewEmployeeService(store, noopNotifier())
	e, err := empSvc.Create(ctx, core.Employee{
		EmployeeCode: "EMP-001", FirstName: "Asha", LastName: "Verma", Salary: &salary, IsActive: true,
	})
	if err != nil {
		t.Fatal(err)
	}

	// A credit recorded through the general transaction flow still
	// counts toward the employee's salary figures.
	txSvc := NewTransactionService(store, noopNotifier())
	_, err = txSvc.Create(ctx, core.Transaction{
		Date:        core.NewDate(2024, time.June, 15),
		Description: "Bonus",
		Amount:      mny(t, "500"),
		Type:        core.Credit,
		AccountID:   a.ID,
		EmployeeID:  &e.ID,
	})
	if err != nil {
		t.Fatal(err)
	}

	salSvc := NewSalaryService(store, noopNotifier())
	history, err := salSvc.History(ctx, e.ID, core.Filter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(history.Payments) != 1 || history.TotalPaid.String() != "500.00" {
		t.Fatalf("history: got %+v", history)
	}
}

func TestSalaryPaymentLinksExistingDeductions(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	a := seedAccount(t, store, "1001", "0")

	salary := mny(t, "3000")
	empSvc := NewEmployeeService(store, noopNotifier())
	e, err := empSvc.Create(ctx, core.Employee{
		EmployeeCode: "EMP-001", FirstName: "Asha", LastName: "Verma", Salary: &salary, IsActive: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	dedSvc := NewDeductionService(store, noopNotifier())
	d, err := dedSvc.Create(ctx, core.Deduction{
		EmployeeID:  e.ID,
		Amount:      mny(t, "500"),
		Description: "Loan repayment",
		Date:        core.NewDate(2024, time.May, 1),
		Type:        core.DeductionLoan,
	})
	if err != nil {
		t.Fatal(err)
	}

	// Settle only part of the loan with this payment.
	partial := mny(t, "200")
	salSvc := NewSalaryService(store, noopNotifier())
	payment, err := salSvc.RecordPayment(ctx, PaymentRequest{
		EmployeeID:    e.ID,
		AccountID:     a.ID,
		Amount:        mny(t, "3000"),
		Date:          core.NewDate(2024, time.June, 30),
		FinancialYear: "2024-2025",
		Deductions:    []core.DeductionLinkInput{{DeductionID: d.ID, AmountApplied: &partial}},
	})
	if err != nil {
		t.Fatal(err)
	}

	links, err := store.TransactionDeductions(ctx, payment.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(links) != 1 || links[0].AmountApplied.String() != "200.00" {
		t.Fatalf("links: got %+v", links)
	}
}

func TestFinancialYearSummaryClampsOutstanding(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	a := seedAccount(t, store, "1001", "0")

	salary := mny(t, "1000")
	hire := core.NewDate(2023, time.January, 10)
	empSvc := NewEmployeeService(store, noopNotifier())
	e, err := empSvc.Create(ctx, core.Employee{
		EmployeeCode: "EMP-001", FirstName: "Asha", LastName: "Verma",
		HireDate: &hire, Salary: &salary, IsActive: true,
	})
	if err != nil {
		t.Fatal(err)
	}

	salSvc := NewSalaryService(store, noopNotifier())
	// Pay more than the 12-month window accrues.
	_, err = salSvc.RecordPayment(ctx, PaymentRequest{
		EmployeeID:    e.ID,
		AccountID:     a.ID,
		Amount:        mny(t, "20000"),
		Date:          core.NewDate(2024, time.June, 30),
		FinancialYear: "2024-2025",
	})
	if err != nil {
		t.Fatal(err)
	}

	summary, err := salSvc.FinancialYearSummary(ctx, "2024-2025")
	if err != nil {
		t.Fatal(err)
	}
	if len(summary.Entries) != 1 {
		t.Fatalf("entries: got %d", len(summary.Entries))
	}
	entry := summary.Entries[0]
	if entry.Expected.String() != "12000.00" || entry.TotalPaid.String() != "20000.00" {
		t.Fatalf("got expected %s paid %s", entry.Expected, entry.TotalPaid)
	}
	if entry.Outstanding.String() != "0.00" {
		t.Fatalf("outstanding must clamp at zero, got %s", entry.Outstanding)
	}
}

func TestProjectFinanceService(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	a := seedAccount(t, store, "1001", "0")

	budget := mny(t, "10000")
	projSvc := NewProjectService(store, noopNotifier())
	p, err := projSvc.Create(ctx, core.Project{
		Code: "PRJ-001", Name: "Website", Status: core.StatusActive, Budget: &budget,
	})
	if err != nil {
		t.Fatal(err)
	}

	txSvc := NewTransactionService(store, noopNotifier())
	mk := func(typ core.TransactionType, amount, category string) {
		t.Helper()
		_, err := txSvc.Create(ctx, core.Transaction{
			Date:        core.NewDate(2024, time.June, 1),
			Description: "Entry",
			Amount:      mny(t, amount),
			Type:        typ,
			AccountID:   a.ID,
			ProjectID:   &p.ID,
			Category:    category,
		})
		if err != nil {
			t.Fatal(err)
		}
	}
	mk(core.Credit, "8000", "Consulting")
	mk(core.Debit, "3000", "Credit Card Fees")

	finance, err := projSvc.Finance(ctx, p.ID, core.Filter{})
	if err != nil {
		t.Fatal(err)
	}
	if finance.NetProfit.String() != "5000.00" || finance.BudgetUtilization.String() != "30.00" {
		t.Fatalf("got net %s utilization %s", finance.NetProfit, finance.BudgetUtilization)
	}

	card, err := projSvc.CreditCard(ctx, p.ID, core.Filter{})
	if err != nil {
		t.Fatal(err)
	}
	if card.CreditLimit.String() != "5000.00" || card.OutstandingBalance.String() != "3000.00" {
		t.Fatalf("got limit %s outstanding %s", card.CreditLimit, card.OutstandingBalance)
	}

	full, err := projSvc.Comprehensive(ctx, p.ID, core.Filter{})
	if err != nil {
		t.Fatal(err)
	}
	if full.Finance.TransactionCount != 2 || len(full.Employees) != 0 {
		t.Fatalf("got %+v", full)
	}
}

func TestProjectFinanceReportFiltersProjects(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	a := seedAccount(t, store, "1001", "0")

	projSvc := NewProjectService(store, noopNotifier())
	active, err := projSvc.Create(ctx, core.Project{
		Code: "PRJ-001", Name: "Website", Status: core.StatusActive, ClientName: "Acme Corp",
	})
	if err != nil {
		t.Fatal(err)
	}
	done, err := projSvc.Create(ctx, core.Project{
		Code: "PRJ-002", Name: "Migration", Status: core.StatusCompleted, ClientName: "Globex",
	})
	if err != nil {
		t.Fatal(err)
	}

	txSvc := NewTransactionService(store, noopNotifier())
	for _, pid := range []int64{active.ID, done.ID} {
		id := pid
		_, err := txSvc.Create(ctx, core.Transaction{
			Date:        core.NewDate(2024, time.June, 1),
			Description: "Entry",
			Amount:      mny(t, "100"),
			Type:        core.Credit,
			AccountID:   a.ID,
			ProjectID:   &id,
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	repSvc := NewReportService(store)
	report, err := repSvc.ProjectFinance(ctx, core.Filter{Status: core.StatusActive})
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Projects) != 1 || report.Projects[0].Finance.Project.Code != "PRJ-001" {
		t.Fatalf("status filter: got %+v", report.Projects)
	}

	// Client name matches on substring.
	report, err = repSvc.ProjectFinance(ctx, core.Filter{ClientName: "cme"})
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Projects) != 1 || report.Projects[0].Finance.Project.Code != "PRJ-001" {
		t.Fatalf("client filter: got %+v", report.Projects)
	}
}

func TestSalaryReportLimitsRecentPayments(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	a := seedAccount(t, store, "1001", "0")

	salary := mny(t, "1000")
	hire := core.NewDate(2024, time.January, 1)
	e, err := NewEmployeeService(store, noopNotifier()).Create(ctx, core.Employee{
		EmployeeCode: "EMP-001", FirstName: "Asha", LastName: "Verma",
		HireDate: &hire, Salary: &salary, IsActive: true,
	})
	if err != nil {
		t.Fatal(err)
	}

	salSvc := NewSalaryService(store, noopNotifier())
	for month := 1; month <= 8; month++ {
		_, err := salSvc.RecordPayment(ctx, PaymentRequest{
			EmployeeID: e.ID,
			AccountID:  a.ID,
			Amount:     mny(t, "1000"),
			Date:       core.NewDate(2024, time.Month(month), 28),
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	entries, err := NewReportService(store).SalaryReport(ctx, core.Filter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries: got %d", len(entries))
	}
	entry := entries[0]
	if len(entry.RecentPayments) != 5 {
		t.Fatalf("recent payments: got %d", len(entry.RecentPayments))
	}
	if entry.TotalPaid.String() != "8000.00" {
		t.Fatalf("paid: got %s", entry.TotalPaid)
	}
	if entry.AnnualExpected.String() != "12000.00" || entry.Outstanding.String() != "4000.00" {
		t.Fatalf("got expected %s outstanding %s", entry.AnnualExpected, entry.Outstanding)
	}

	history, err := salSvc.History(ctx, e.ID, core.Filter{})
	if err != nil {
		t.Fatal(err)
	}
	// History shows up to ten payments, the report only five.
	if len(history.Payments) != 8 {
		t.Fatalf("history payments: got %d", len(history.Payments))
	}
}
