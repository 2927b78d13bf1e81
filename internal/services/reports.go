package services

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"tally/internal/core"
	"tally/internal/storage"
)

const recentTransactionLimit = 10

// ReportService composes the cross-entity reports.
type ReportService struct {
	store      *storage.Store
	cardPolicy core.CardPolicy
}

func NewReportService(store *storage.Store) *ReportService {
	return &ReportService{store: store, cardPolicy: core.SubstringCardPolicy{}}
}

// ProjectSummary is one project's activity within a filter scope.
type ProjectSummary struct {
	Project       core.Project `json:"project"`
	TotalIncome   core.Money   `json:"total_income"`
	TotalExpenses core.Money   `json:"total_expenses"`
	Balance       core.Money   `json:"balance"`
}

// Dashboard is the landing overview.
type Dashboard struct {
	TotalsByType       map[core.AccountType]core.Money `json:"totals_by_type"`
	TotalIncome        core.Money                      `json:"total_income"`
	TotalExpenses      core.Money                      `json:"total_expenses"`
	NetBalance         core.Money                      `json:"net_balance"`
	ActiveAccounts     int                             `json:"active_accounts"`
	ActiveProjects     int                             `json:"active_projects"`
	ActiveEmployees    int                             `json:"active_employees"`
	RecentTransactions []core.Transaction              `json:"recent_transactions"`
	ProjectSummaries   []ProjectSummary                `json:"project_summaries"`
}

// Dashboard builds the overview for the filter. The per-type totals are
// signed sums of the filtered transactions only; opening balances are
// excluded, which intentionally differs from the account detail balance.
// The active counts ignore the filter entirely.
func (s *ReportService) Dashboard(ctx context.Context, f core.Filter) (Dashboard, error) {
	var (
		accounts []core.Account
		projects []core.Project
		txs      []core.Transaction
		recent   []core.Transaction
		d        Dashboard
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		accounts, err = s.store.AllAccounts(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		projects, err = s.store.AllProjects(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		txs, err = s.store.FilterTransactions(gctx, f)
		return err
	})
	g.Go(func() error {
		var err error
		recent, err = s.store.RecentTransactions(gctx, f, recentTransactionLimit)
		return err
	})
	g.Go(func() error {
		var err error
		d.ActiveAccounts, err = s.store.CountActiveAccounts(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		d.ActiveProjects, err = s.store.CountActiveProjects(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		d.ActiveEmployees, err = s.store.CountActiveEmployees(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return Dashboard{}, fmt.Errorf("dashboard: %w", err)
	}

	typeOf := make(map[int64]core.AccountType, len(accounts))
	for _, a := range accounts {
		typeOf[a.ID] = a.Type
	}

	d.TotalsByType = make(map[core.AccountType]core.Money)
	for _, t := range txs {
		at, ok := typeOf[t.AccountID]
		if !ok {
			continue
		}
		net := d.TotalsByType[at]
		if t.Type == core.Credit {
			net = net.Add(t.Amount)
		} else {
			net = net.Sub(t.Amount)
		}
		d.TotalsByType[at] = net
	}

	d.TotalIncome, d.TotalExpenses = core.SumByType(txs)
	d.NetBalance = d.TotalIncome.Sub(d.TotalExpenses)

	d.ProjectSummaries = projectSummaries(projects, txs)

	if recent == nil {
		recent = []core.Transaction{}
	}
	d.RecentTransactions = recent
	return d, nil
}

// projectSummaries sums each project's filtered activity. Projects with
// no matching transactions still appear with zero totals.
func projectSummaries(projects []core.Project, txs []core.Transaction) []ProjectSummary {
	byProject := make(map[int64][]core.Transaction)
	for _, t := range txs {
		if t.ProjectID == nil {
			continue
		}
		byProject[*t.ProjectID] = append(byProject[*t.ProjectID], t)
	}

	out := make([]ProjectSummary, 0, len(projects))
	for _, p := range projects {
		income, expenses := core.SumByType(byProject[p.ID])
		out = append(out, ProjectSummary{
			Project:       p,
			TotalIncome:   income,
			TotalExpenses: expenses,
			Balance:       income.Sub(expenses),
		})
	}
	return out
}

// ProfitLoss is the dashboard reshaped as an income statement.
type ProfitLoss struct {
	FinancialYear string     `json:"financial_year,omitempty"`
	StartDate     *core.Date `json:"start_date,omitempty"`
	EndDate       *core.Date `json:"end_date,omitempty"`
	TotalIncome   core.Money `json:"total_income"`
	TotalExpenses core.Money `json:"total_expenses"`
	NetProfit     core.Money `json:"net_profit"`
	ProfitMargin  core.Money `json:"profit_margin_percent"`
}

// ProfitLoss reports the filter scope's income against its expenses.
func (s *ReportService) ProfitLoss(ctx context.Context, f core.Filter) (ProfitLoss, error) {
	txs, err := s.store.FilterTransactions(ctx, f)
	if err != nil {
		return ProfitLoss{}, fmt.Errorf("profit and loss: %w", err)
	}

	income, expenses := core.SumByType(txs)
	net := income.Sub(expenses)
	return ProfitLoss{
		FinancialYear: f.FinancialYear,
		StartDate:     f.StartDate,
		EndDate:       f.EndDate,
		TotalIncome:   income,
		TotalExpenses: expenses,
		NetProfit:     net,
		ProfitMargin:  net.PercentOf(income),
	}, nil
}

// BalanceSheet groups the filter scope's account activity into the three
// statement sides. Like the dashboard it sums filtered transactions only,
// without opening balances.
type BalanceSheet struct {
	AsOf             *core.Date `json:"as_of,omitempty"`
	TotalAssets      core.Money `json:"total_assets"`
	TotalLiabilities core.Money `json:"total_liabilities"`
	TotalEquity      core.Money `json:"total_equity"`
	NetPosition      core.Money `json:"net_position"`
}

func (s *ReportService) BalanceSheet(ctx context.Context, f core.Filter) (BalanceSheet, error) {
	d, err := s.Dashboard(ctx, f)
	if err != nil {
		return BalanceSheet{}, fmt.Errorf("balance sheet: %w", err)
	}

	sheet := BalanceSheet{
		AsOf:             f.EndDate,
		TotalAssets:      d.TotalsByType[core.AccountAsset],
		TotalLiabilities: d.TotalsByType[core.AccountLiability],
		TotalEquity:      d.TotalsByType[core.AccountEquity],
	}
	sheet.NetPosition = sheet.TotalAssets.Sub(sheet.TotalLiabilities).Add(sheet.TotalEquity)
	return sheet, nil
}

// ProjectFinanceEntry is one project's finance, card exposure and
// deduction roll-up merged together.
type ProjectFinanceEntry struct {
	Finance    core.ProjectFinance     `json:"finance"`
	CreditCard core.CreditCardExposure `json:"credit_card"`
	Deductions core.DeductionRollup    `json:"deductions"`
}

// ProjectFinanceReport covers every project with grand totals.
type ProjectFinanceReport struct {
	Projects        []ProjectFinanceEntry `json:"projects"`
	TotalIncome     core.Money            `json:"total_income"`
	TotalExpenses   core.Money            `json:"total_expenses"`
	TotalNetProfit  core.Money            `json:"total_net_profit"`
	TotalDeductions core.Money            `json:"total_deductions"`
}

// ProjectFinance aggregates finance across all projects matching the
// filter, merging card exposure and deduction roll-ups by project.
func (s *ReportService) ProjectFinance(ctx context.Context, f core.Filter) (ProjectFinanceReport, error) {
	var (
		projects []core.Project
		txs      []core.Transaction
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		projects, err = s.store.FilterProjects(gctx, f)
		return err
	})
	g.Go(func() error {
		var err error
		txs, err = s.store.FilterTransactions(gctx, f)
		return err
	})
	if err := g.Wait(); err != nil {
		return ProjectFinanceReport{}, fmt.Errorf("project finance report: %w", err)
	}

	byProject := make(map[int64][]core.Transaction)
	for _, t := range txs {
		if t.ProjectID == nil {
			continue
		}
		byProject[*t.ProjectID] = append(byProject[*t.ProjectID], t)
	}

	report := ProjectFinanceReport{Projects: []ProjectFinanceEntry{}}
	for _, p := range projects {
		employees, err := s.store.ProjectEmployees(ctx, p.ID)
		if err != nil {
			return ProjectFinanceReport{}, err
		}
		deds, err := s.store.ProjectDeductions(ctx, p.ID, f)
		if err != nil {
			return ProjectFinanceReport{}, err
		}

		ptxs := byProject[p.ID]
		entry := ProjectFinanceEntry{
			Finance:    core.ComputeProjectFinance(p, ptxs),
			CreditCard: core.ComputeCreditCardExposure(p, ptxs, s.cardPolicy),
			Deductions: core.ComputeDeductionRollup(p, deds, len(employees)),
		}
		report.Projects = append(report.Projects, entry)

		report.TotalIncome = report.TotalIncome.Add(entry.Finance.TotalIncome)
		report.TotalExpenses = report.TotalExpenses.Add(entry.Finance.TotalExpenses)
		report.TotalNetProfit = report.TotalNetProfit.Add(entry.Finance.NetProfit)
		report.TotalDeductions = report.TotalDeductions.Add(entry.Deductions.TotalDeductions)
	}
	return report, nil
}

// ProjectFinancialSummary is a single project's raw transaction sets
// with their totals.
type ProjectFinancialSummary struct {
	Project           core.Project       `json:"project"`
	IncomeItems       []core.Transaction `json:"income_transactions"`
	ExpenseItems      []core.Transaction `json:"expense_transactions"`
	TotalIncome       core.Money         `json:"total_income"`
	TotalExpenses     core.Money         `json:"total_expenses"`
	Balance           core.Money         `json:"balance"`
	ProfitMargin      core.Money         `json:"profit_margin_percent"`
	BudgetUtilization core.Money         `json:"budget_utilization_percent"`
}

func (s *ReportService) ProjectFinancialSummary(ctx context.Context, projectID int64, f core.Filter) (ProjectFinancialSummary, error) {
	p, err := s.store.GetProject(ctx, projectID)
	if err != nil {
		return ProjectFinancialSummary{}, err
	}
	f.ProjectID = &projectID
	txs, err := s.store.FilterTransactions(ctx, f)
	if err != nil {
		return ProjectFinancialSummary{}, fmt.Errorf("project financial summary: %w", err)
	}

	summary := ProjectFinancialSummary{
		Project:      p,
		IncomeItems:  []core.Transaction{},
		ExpenseItems: []core.Transaction{},
	}
	for _, t := range txs {
		if t.Type == core.Credit {
			summary.IncomeItems = append(summary.IncomeItems, t)
		} else {
			summary.ExpenseItems = append(summary.ExpenseItems, t)
		}
	}
	summary.TotalIncome, summary.TotalExpenses = core.SumByType(txs)
	summary.Balance = summary.TotalIncome.Sub(summary.TotalExpenses)
	summary.ProfitMargin = summary.Balance.PercentOf(summary.TotalIncome)
	if p.Budget != nil {
		summary.BudgetUtilization = summary.TotalExpenses.PercentOf(*p.Budget)
	}
	return summary, nil
}

// AccountEntry is one account's lifetime balance inside a type group.
type AccountEntry struct {
	Account core.Account `json:"account"`
	Balance core.Money   `json:"balance"`
}

// TypeGroup collects one account type's accounts with a group total.
type TypeGroup struct {
	Type     core.AccountType `json:"type"`
	Accounts []AccountEntry   `json:"accounts"`
	Total    core.Money       `json:"total"`
}

// FinancialYearReport is the year-end statement.
type FinancialYearReport struct {
	FinancialYear  string      `json:"financial_year"`
	TotalIncome    core.Money  `json:"total_income"`
	TotalExpenses  core.Money  `json:"total_expenses"`
	NetResult      core.Money  `json:"net_result"`
	AccountsByType []TypeGroup `json:"accounts_by_type"`
}

// FinancialYear reports income and expenses within the labelled year, but
// groups accounts with their lifetime balances including opening
// balances. The two scopes differ on purpose: the statement shows the
// year's activity against the current state of the books.
func (s *ReportService) FinancialYear(ctx context.Context, financialYear string) (FinancialYearReport, error) {
	var (
		accounts []core.Account
		yearTxs  []core.Transaction
		allTxs   []core.Transaction
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		accounts, err = s.store.AllAccounts(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		yearTxs, err = s.store.FilterTransactions(gctx, core.Filter{FinancialYear: financialYear})
		return err
	})
	g.Go(func() error {
		var err error
		allTxs, err = s.store.FilterTransactions(gctx, core.Filter{})
		return err
	})
	if err := g.Wait(); err != nil {
		return FinancialYearReport{}, fmt.Errorf("financial year report: %w", err)
	}

	byAccount := make(map[int64][]core.Transaction)
	for _, t := range allTxs {
		byAccount[t.AccountID] = append(byAccount[t.AccountID], t)
	}

	groups := make(map[core.AccountType]*TypeGroup)
	for _, a := range accounts {
		balance := core.AccountBalance(a, byAccount[a.ID])
		grp, ok := groups[a.Type]
		if !ok {
			grp = &TypeGroup{Type: a.Type}
			groups[a.Type] = grp
		}
		grp.Accounts = append(grp.Accounts, AccountEntry{Account: a, Balance: balance})
		grp.Total = grp.Total.Add(balance)
	}

	report := FinancialYearReport{
		FinancialYear:  financialYear,
		AccountsByType: make([]TypeGroup, 0, len(groups)),
	}
	for _, grp := range groups {
		report.AccountsByType = append(report.AccountsByType, *grp)
	}
	sort.Slice(report.AccountsByType, func(i, j int) bool {
		return report.AccountsByType[i].Type < report.AccountsByType[j].Type
	})

	report.TotalIncome, report.TotalExpenses = core.SumByType(yearTxs)
	report.NetResult = report.TotalIncome.Sub(report.TotalExpenses)
	return report, nil
}

// SalaryReportEntry is one employee's year-scale salary standing.
type SalaryReportEntry struct {
	Employee       core.Employee      `json:"employee"`
	MonthsWorked   int                `json:"months_worked"`
	AnnualExpected core.Money         `json:"annual_expected"`
	TotalPaid      core.Money         `json:"total_paid"`
	Outstanding    core.Money         `json:"outstanding"`
	Progress       core.Money         `json:"progress_percent"`
	RecentPayments []core.Transaction `json:"recent_payments"`
}

// SalaryReport lists every employee's salary standing. Each entry shows
// the five most recent payments; the fuller history lives on the
// employee's own endpoint.
func (s *ReportService) SalaryReport(ctx context.Context, f core.Filter) ([]SalaryReportEntry, error) {
	employees, err := s.store.AllEmployees(ctx)
	if err != nil {
		return nil, fmt.Errorf("employees: %w", err)
	}

	asOf := core.Today()
	entries := make([]SalaryReportEntry, 0, len(employees))
	for _, e := range employees {
		recent, err := s.store.SalaryPayments(ctx, e.ID, f, salaryReportLimit)
		if err != nil {
			return nil, err
		}
		all, err := s.store.SalaryPayments(ctx, e.ID, f, 0)
		if err != nil {
			return nil, err
		}
		var paid core.Money
		for _, p := range all {
			paid = paid.Add(p.Amount)
		}

		months := 0
		if e.HireDate != nil {
			months = core.MonthsWorked(*e.HireDate, asOf)
		}
		annual := core.AnnualExpectedSalary(e)
		if recent == nil {
			recent = []core.Transaction{}
		}
		entries = append(entries, SalaryReportEntry{
			Employee:       e,
			MonthsWorked:   months,
			AnnualExpected: annual,
			TotalPaid:      paid,
			Outstanding:    annual.Sub(paid),
			Progress:       paid.PercentOf(annual),
			RecentPayments: recent,
		})
	}
	return entries, nil
}
