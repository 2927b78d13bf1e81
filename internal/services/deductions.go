package services

import (
	"context"
	"fmt"
	"sort"

	"tally/internal/amqp"
	"tally/internal/core"
	"tally/internal/storage"
)

// DeductionService handles standalone deduction records. Deductions
// created through the salary workflow go through SalaryService instead.
type DeductionService struct {
	store    *storage.Store
	notifier *Notifier
}

func NewDeductionService(store *storage.Store, notifier *Notifier) *DeductionService {
	return &DeductionService{store: store, notifier: notifier}
}

func (s *DeductionService) checkEmployee(ctx context.Context, d core.Deduction) error {
	if _, err := s.store.GetEmployee(ctx, d.EmployeeID); err != nil {
		errs := core.FieldErrors{}
		errs.Add("employee_id", "employee does not exist")
		return errs
	}
	return nil
}

func (s *DeductionService) Create(ctx context.Context, d core.Deduction) (core.Deduction, error) {
	if err := d.Validate(); err != nil {
		return core.Deduction{}, err
	}
	if err := s.checkEmployee(ctx, d); err != nil {
		return core.Deduction{}, err
	}
	created, err := s.store.CreateDeduction(ctx, d)
	if err != nil {
		return core.Deduction{}, fmt.Errorf("create deduction: %w", err)
	}
	msg := amqp.NewEntityChangeMessage("deduction", created.ID, amqp.ActionCreated)
	msg.EmployeeID = created.EmployeeID
	s.notifier.EntityChanged(ctx, msg)
	return created, nil
}

func (s *DeductionService) Get(ctx context.Context, id int64) (core.Deduction, error) {
	return s.store.GetDeduction(ctx, id)
}

func (s *DeductionService) Update(ctx context.Context, d core.Deduction) (core.Deduction, error) {
	if err := d.Validate(); err != nil {
		return core.Deduction{}, err
	}
	if err := s.checkEmployee(ctx, d); err != nil {
		return core.Deduction{}, err
	}
	updated, err := s.store.UpdateDeduction(ctx, d)
	if err != nil {
		return core.Deduction{}, err
	}
	msg := amqp.NewEntityChangeMessage("deduction", updated.ID, amqp.ActionUpdated)
	msg.EmployeeID = updated.EmployeeID
	s.notifier.EntityChanged(ctx, msg)
	return updated, nil
}

func (s *DeductionService) Delete(ctx context.Context, id int64) error {
	d, err := s.store.GetDeduction(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteDeduction(ctx, id); err != nil {
		return err
	}
	msg := amqp.NewEntityChangeMessage("deduction", id, amqp.ActionDeleted)
	msg.EmployeeID = d.EmployeeID
	s.notifier.EntityChanged(ctx, msg)
	return nil
}

func (s *DeductionService) List(ctx context.Context, f core.Filter) (core.Page[core.Deduction], error) {
	return s.store.ListDeductions(ctx, f)
}

// EmployeeDeductionEntry is one employee's deduction standing within
// the filter scope.
type EmployeeDeductionEntry struct {
	Employee        core.Employee               `json:"employee"`
	TotalPaid       core.Money                  `json:"total_paid"`
	TotalDeductions core.Money                  `json:"total_deductions"`
	NetSalary       core.Money                  `json:"net_salary"`
	PaymentCount    int                         `json:"payment_count"`
	DeductionCount  int                         `json:"deduction_count"`
	ByType          []core.DeductionTypeSummary `json:"by_type"`
}

// EmployeeDeductionReport totals deductions per employee against what
// was paid out to them.
type EmployeeDeductionReport struct {
	Entries         []EmployeeDeductionEntry `json:"entries"`
	TotalPaid       core.Money               `json:"total_paid"`
	TotalDeductions core.Money               `json:"total_deductions"`
}

// EmployeeDeductions reports every employee's deductions and net salary
// within the filter. Net salary is pay minus deductions and may be
// negative if deductions were recorded without matching payments.
func (s *DeductionService) EmployeeDeductions(ctx context.Context, f core.Filter) (EmployeeDeductionReport, error) {
	employees, err := s.store.AllEmployees(ctx)
	if err != nil {
		return EmployeeDeductionReport{}, fmt.Errorf("employee deductions: %w", err)
	}

	report := EmployeeDeductionReport{Entries: []EmployeeDeductionEntry{}}
	for _, e := range employees {
		payments, err := s.store.SalaryPayments(ctx, e.ID, f, 0)
		if err != nil {
			return EmployeeDeductionReport{}, err
		}
		df := f
		df.EmployeeID = &e.ID
		deds, err := s.store.FilterDeductions(ctx, df)
		if err != nil {
			return EmployeeDeductionReport{}, err
		}

		var paid core.Money
		for _, p := range payments {
			paid = paid.Add(p.Amount)
		}

		byType := make(map[core.DeductionType]*core.DeductionTypeSummary)
		var totalDeducted core.Money
		for _, d := range deds {
			ts, ok := byType[d.Type]
			if !ok {
				ts = &core.DeductionTypeSummary{Type: d.Type}
				byType[d.Type] = ts
			}
			ts.Total = ts.Total.Add(d.Amount)
			ts.Count++
			totalDeducted = totalDeducted.Add(d.Amount)
		}

		entry := EmployeeDeductionEntry{
			Employee:        e,
			TotalPaid:       paid,
			TotalDeductions: totalDeducted,
			NetSalary:       paid.Sub(totalDeducted),
			PaymentCount:    len(payments),
			DeductionCount:  len(deds),
			ByType:          make([]core.DeductionTypeSummary, 0, len(byType)),
		}
		for _, ts := range byType {
			entry.ByType = append(entry.ByType, *ts)
		}
		sort.Slice(entry.ByType, func(i, j int) bool {
			return entry.ByType[i].Type < entry.ByType[j].Type
		})

		report.Entries = append(report.Entries, entry)
		report.TotalPaid = report.TotalPaid.Add(paid)
		report.TotalDeductions = report.TotalDeductions.Add(totalDeducted)
	}
	return report, nil
}
