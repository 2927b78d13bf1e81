package services

import (
	"context"
	"fmt"

	"tally/internal/amqp"
	"tally/internal/core"
	"tally/internal/storage"
)

// ProjectService handles projects and their finance reports.
type ProjectService struct {
	store      *storage.Store
	notifier   *Notifier
	cardPolicy core.CardPolicy
}

func NewProjectService(store *storage.Store, notifier *Notifier) *ProjectService {
	return &ProjectService{
		store:      store,
		notifier:   notifier,
		cardPolicy: core.SubstringCardPolicy{},
	}
}

func (s *ProjectService) Create(ctx context.Context, p core.Project) (core.Project, error) {
	if err := p.Validate(); err != nil {
		return core.Project{}, err
	}
	created, err := s.store.CreateProject(ctx, p)
	if err != nil {
		return core.Project{}, fmt.Errorf("create project: %w", err)
	}
	s.notifier.EntityChanged(ctx, amqp.NewEntityChangeMessage("project", created.ID, amqp.ActionCreated))
	return created, nil
}

func (s *ProjectService) Get(ctx context.Context, id int64) (core.Project, error) {
	return s.store.GetProject(ctx, id)
}

func (s *ProjectService) Update(ctx context.Context, p core.Project) (core.Project, error) {
	if err := p.Validate(); err != nil {
		return core.Project{}, err
	}
	updated, err := s.store.UpdateProject(ctx, p)
	if err != nil {
		return core.Project{}, err
	}
	s.notifier.EntityChanged(ctx, amqp.NewEntityChangeMessage("project", updated.ID, amqp.ActionUpdated))
	return updated, nil
}

func (s *ProjectService) Delete(ctx context.Context, id int64) error {
	if err := s.store.DeleteProject(ctx, id); err != nil {
		return err
	}
	s.notifier.EntityChanged(ctx, amqp.NewEntityChangeMessage("project", id, amqp.ActionDeleted))
	return nil
}

func (s *ProjectService) List(ctx context.Context, f core.Filter) (core.Page[core.Project], error) {
	return s.store.ListProjects(ctx, f)
}

// projectTransactions loads the project's transactions narrowed by the
// filter's year and date dimensions.
func (s *ProjectService) projectTransactions(ctx context.Context, id int64, f core.Filter) (core.Project, []core.Transaction, error) {
	p, err := s.store.GetProject(ctx, id)
	if err != nil {
		return core.Project{}, nil, err
	}
	f.ProjectID = &id
	txs, err := s.store.FilterTransactions(ctx, f)
	if err != nil {
		return core.Project{}, nil, fmt.Errorf("project transactions: %w", err)
	}
	return p, txs, nil
}

// Finance returns the project's income and expense summary.
func (s *ProjectService) Finance(ctx context.Context, id int64, f core.Filter) (core.ProjectFinance, error) {
	p, txs, err := s.projectTransactions(ctx, id, f)
	if err != nil {
		return core.ProjectFinance{}, err
	}
	return core.ComputeProjectFinance(p, txs), nil
}

// CreditCard returns the project's card exposure.
func (s *ProjectService) CreditCard(ctx context.Context, id int64, f core.Filter) (core.CreditCardExposure, error) {
	p, txs, err := s.projectTransactions(ctx, id, f)
	if err != nil {
		return core.CreditCardExposure{}, err
	}
	return core.ComputeCreditCardExposure(p, txs, s.cardPolicy), nil
}

// Deductions rolls up the deductions of the project's employees.
func (s *ProjectService) Deductions(ctx context.Context, id int64, f core.Filter) (core.DeductionRollup, error) {
	p, err := s.store.GetProject(ctx, id)
	if err != nil {
		return core.DeductionRollup{}, err
	}
	employees, err := s.store.ProjectEmployees(ctx, id)
	if err != nil {
		return core.DeductionRollup{}, fmt.Errorf("project employees: %w", err)
	}
	deds, err := s.store.ProjectDeductions(ctx, id, f)
	if err != nil {
		return core.DeductionRollup{}, fmt.Errorf("project deductions: %w", err)
	}
	return core.ComputeDeductionRollup(p, deds, len(employees)), nil
}

// ComprehensiveReport is the all-in-one project view.
type ComprehensiveReport struct {
	Finance    core.ProjectFinance     `json:"finance"`
	CreditCard core.CreditCardExposure `json:"credit_card"`
	Deductions core.DeductionRollup    `json:"deductions"`
	Employees  []core.Employee         `json:"employees"`
}

// Comprehensive combines finance, card exposure, deductions and the
// assigned employees into one report.
func (s *ProjectService) Comprehensive(ctx context.Context, id int64, f core.Filter) (ComprehensiveReport, error) {
	p, txs, err := s.projectTransactions(ctx, id, f)
	if err != nil {
		return ComprehensiveReport{}, err
	}
	employees, err := s.store.ProjectEmployees(ctx, id)
	if err != nil {
		return ComprehensiveReport{}, fmt.Errorf("project employees: %w", err)
	}
	deds, err := s.store.ProjectDeductions(ctx, id, f)
	if err != nil {
		return ComprehensiveReport{}, fmt.Errorf("project deductions: %w", err)
	}
	if employees == nil {
		employees = []core.Employee{}
	}
	return ComprehensiveReport{
		Finance:    core.ComputeProjectFinance(p, txs),
		CreditCard: core.ComputeCreditCardExposure(p, txs, s.cardPolicy),
		Deductions: core.ComputeDeductionRollup(p, deds, len(employees)),
		Employees:  employees,
	}, nil
}
