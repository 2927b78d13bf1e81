package services

import (
	"context"
	"fmt"
	"sort"

	"tally/internal/amqp"
	"tally/internal/core"
	"tally/internal/storage"
)

const (
	salaryHistoryLimit = 10
	salaryReportLimit  = 5
)

// SalaryService records salary payments and reports on salary accrual.
type SalaryService struct {
	store    *storage.Store
	notifier *Notifier
}

func NewSalaryService(store *storage.Store, notifier *Notifier) *SalaryService {
	return &SalaryService{store: store, notifier: notifier}
}

// PaymentRequest is one salary payment to record. Deductions name
// existing deductions to settle; a link without an applied amount takes
// the deduction's own amount.
type PaymentRequest struct {
	EmployeeID    int64                     `json:"employee_id"`
	AccountID     int64                     `json:"account_id"`
	Amount        core.Money                `json:"amount"`
	Date          core.Date                 `json:"date"`
	FinancialYear string                    `json:"financial_year"`
	Notes         string                    `json:"notes"`
	Deductions    []core.DeductionLinkInput `json:"deductions"`
	NewDeductions []core.Deduction          `json:"new_deductions"`
}

// RecordPayment writes the payment as a credit transaction against the
// employee, links the chosen existing deductions and creates the new
// ones, all atomically. New deductions inherit the payment's financial
// year and are applied at their full amount.
func (s *SalaryService) RecordPayment(ctx context.Context, req PaymentRequest) (core.Transaction, error) {
	e, err := s.store.GetEmployee(ctx, req.EmployeeID)
	if err != nil {
		return core.Transaction{}, err
	}
	if _, err := s.store.GetAccount(ctx, req.AccountID); err != nil {
		errs := core.FieldErrors{}
		errs.Add("account_id", "account does not exist")
		return core.Transaction{}, errs
	}

	payment := core.Transaction{
		Date:          req.Date,
		Description:   "Salary Payment - " + e.FullName(),
		Amount:        req.Amount,
		Type:          core.Credit,
		AccountID:     req.AccountID,
		EmployeeID:    &e.ID,
		Category:      "Salary",
		Notes:         req.Notes,
		FinancialYear: req.FinancialYear,
	}
	if err := payment.Validate(); err != nil {
		return core.Transaction{}, err
	}

	newDeductions := make([]core.Deduction, 0, len(req.NewDeductions))
	for i, d := range req.NewDeductions {
		d.EmployeeID = e.ID
		d.FinancialYear = req.FinancialYear
		if d.Date.IsZero() {
			d.Date = req.Date
		}
		if err := d.Validate(); err != nil {
			return core.Transaction{}, fmt.Errorf("new deduction %d: %w", i+1, err)
		}
		newDeductions = append(newDeductions, d)
	}

	created, err := s.store.RecordSalaryPayment(ctx, payment, req.Deductions, newDeductions)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("record salary payment: %w", err)
	}

	msg := amqp.NewEntityChangeMessage("salary_payment", created.ID, amqp.ActionCreated)
	msg.AccountID = created.AccountID
	msg.EmployeeID = e.ID
	s.notifier.EntityChanged(ctx, msg)
	return created, nil
}

// SalaryHistory is an employee's payment history with accrual figures.
type SalaryHistory struct {
	Employee       core.Employee      `json:"employee"`
	Payments       []core.Transaction `json:"payments"`
	TotalPaid      core.Money         `json:"total_paid"`
	MonthsWorked   int                `json:"months_worked"`
	ExpectedToDate core.Money         `json:"expected_to_date"`
	Outstanding    core.Money         `json:"outstanding"`
}

// History reports the employee's ten most recent salary payments within
// the filter, alongside accrual to date. Outstanding may be negative for
// an overpaid employee.
func (s *SalaryService) History(ctx context.Context, employeeID int64, f core.Filter) (SalaryHistory, error) {
	e, err := s.store.GetEmployee(ctx, employeeID)
	if err != nil {
		return SalaryHistory{}, err
	}

	payments, err := s.store.SalaryPayments(ctx, employeeID, f, salaryHistoryLimit)
	if err != nil {
		return SalaryHistory{}, err
	}
	totalPaid, err := s.totalPaid(ctx, employeeID, f)
	if err != nil {
		return SalaryHistory{}, err
	}

	asOf := core.Today()
	months := 0
	if e.HireDate != nil {
		months = core.MonthsWorked(*e.HireDate, asOf)
	}
	if payments == nil {
		payments = []core.Transaction{}
	}
	return SalaryHistory{
		Employee:       e,
		Payments:       payments,
		TotalPaid:      totalPaid,
		MonthsWorked:   months,
		ExpectedToDate: core.ExpectedSalary(e, asOf),
		Outstanding:    core.Outstanding(e, totalPaid, asOf),
	}, nil
}

func (s *SalaryService) totalPaid(ctx context.Context, employeeID int64, f core.Filter) (core.Money, error) {
	payments, err := s.store.SalaryPayments(ctx, employeeID, f, 0)
	if err != nil {
		return core.Money{}, err
	}
	var total core.Money
	for _, p := range payments {
		total = total.Add(p.Amount)
	}
	return total, nil
}

// MonthlyTotal is the salary paid in one calendar month.
type MonthlyTotal struct {
	Month        string     `json:"month"`
	Total        core.Money `json:"total"`
	PaymentCount int        `json:"payment_count"`
}

// MonthlySummary groups every salary payment within the filter by
// calendar month, newest first.
func (s *SalaryService) MonthlySummary(ctx context.Context, f core.Filter) ([]MonthlyTotal, error) {
	employees, err := s.store.AllEmployees(ctx)
	if err != nil {
		return nil, fmt.Errorf("employees: %w", err)
	}

	byMonth := make(map[string]*MonthlyTotal)
	for _, e := range employees {
		payments, err := s.store.SalaryPayments(ctx, e.ID, f, 0)
		if err != nil {
			return nil, err
		}
		for _, p := range payments {
			month := p.Date.Format("2006-01")
			mt, ok := byMonth[month]
			if !ok {
				mt = &MonthlyTotal{Month: month}
				byMonth[month] = mt
			}
			mt.Total = mt.Total.Add(p.Amount)
			mt.PaymentCount++
		}
	}

	out := make([]MonthlyTotal, 0, len(byMonth))
	for _, mt := range byMonth {
		out = append(out, *mt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month > out[j].Month })
	return out, nil
}

// YearSummaryEntry is one employee's accrual within a financial year.
type YearSummaryEntry struct {
	Employee    core.Employee `json:"employee"`
	Expected    core.Money    `json:"expected"`
	TotalPaid   core.Money    `json:"total_paid"`
	Outstanding core.Money    `json:"outstanding"`
}

// YearSummary is the financial-year salary roll-up.
type YearSummary struct {
	FinancialYear    string             `json:"financial_year"`
	Entries          []YearSummaryEntry `json:"entries"`
	TotalExpected    core.Money         `json:"total_expected"`
	TotalPaid        core.Money         `json:"total_paid"`
	TotalOutstanding core.Money         `json:"total_outstanding"`
}

// FinancialYearSummary accrues every employee's salary within the year's
// April-March window. Unlike the per-employee figure, outstanding here is
// clamped at zero and rounded; overpayments never show as negative.
func (s *SalaryService) FinancialYearSummary(ctx context.Context, financialYear string) (YearSummary, error) {
	employees, err := s.store.AllEmployees(ctx)
	if err != nil {
		return YearSummary{}, fmt.Errorf("employees: %w", err)
	}

	summary := YearSummary{FinancialYear: financialYear, Entries: []YearSummaryEntry{}}
	f := core.Filter{FinancialYear: financialYear}
	for _, e := range employees {
		paid, err := s.totalPaid(ctx, e.ID, f)
		if err != nil {
			return YearSummary{}, err
		}
		expected := core.ExpectedSalaryForYear(e, financialYear)
		outstanding := core.OutstandingForYear(e, paid, financialYear)

		summary.Entries = append(summary.Entries, YearSummaryEntry{
			Employee:    e,
			Expected:    expected,
			TotalPaid:   paid,
			Outstanding: outstanding,
		})
		summary.TotalExpected = summary.TotalExpected.Add(expected)
		summary.TotalPaid = summary.TotalPaid.Add(paid)
		summary.TotalOutstanding = summary.TotalOutstanding.Add(outstanding)
	}
	return summary, nil
}
