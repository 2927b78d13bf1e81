package services

import (
	"context"
	"fmt"

	"tally/internal/amqp"
	"tally/internal/core"
	"tally/internal/storage"
)

// EmployeeService handles employee records.
type EmployeeService struct {
	store    *storage.Store
	notifier *Notifier
}

func NewEmployeeService(store *storage.Store, notifier *Notifier) *EmployeeService {
	return &EmployeeService{store: store, notifier: notifier}
}

func (s *EmployeeService) checkProject(ctx context.Context, e core.Employee) error {
	if e.ProjectID == nil {
		return nil
	}
	if _, err := s.store.GetProject(ctx, *e.ProjectID); err != nil {
		errs := core.FieldErrors{}
		errs.Add("project_id", "project does not exist")
		return errs
	}
	return nil
}

func (s *EmployeeService) Create(ctx context.Context, e core.Employee) (core.Employee, error) {
	if err := e.Validate(); err != nil {
		return core.Employee{}, err
	}
	if err := s.checkProject(ctx, e); err != nil {
		return core.Employee{}, err
	}
	created, err := s.store.CreateEmployee(ctx, e)
	if err != nil {
		return core.Employee{}, fmt.Errorf("create employee: %w", err)
	}
	s.notifier.EntityChanged(ctx, amqp.NewEntityChangeMessage("employee", created.ID, amqp.ActionCreated))
	return created, nil
}

func (s *EmployeeService) Get(ctx context.Context, id int64) (core.Employee, error) {
	return s.store.GetEmployee(ctx, id)
}

func (s *EmployeeService) Update(ctx context.Context, e core.Employee) (core.Employee, error) {
	if err := e.Validate(); err != nil {
		return core.Employee{}, err
	}
	if err := s.checkProject(ctx, e); err != nil {
		return core.Employee{}, err
	}
	updated, err := s.store.UpdateEmployee(ctx, e)
	if err != nil {
		return core.Employee{}, err
	}
	s.notifier.EntityChanged(ctx, amqp.NewEntityChangeMessage("employee", updated.ID, amqp.ActionUpdated))
	return updated, nil
}

func (s *EmployeeService) Delete(ctx context.Context, id int64) error {
	if err := s.store.DeleteEmployee(ctx, id); err != nil {
		return err
	}
	s.notifier.EntityChanged(ctx, amqp.NewEntityChangeMessage("employee", id, amqp.ActionDeleted))
	return nil
}

func (s *EmployeeService) List(ctx context.Context, f core.Filter) (core.Page[core.Employee], error) {
	return s.store.ListEmployees(ctx, f)
}
