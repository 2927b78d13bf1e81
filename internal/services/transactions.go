package services

import (
	"context"
	"fmt"

	"tally/internal/amqp"
	"tally/internal/core"
	"tally/internal/storage"
)

// TransactionService handles ledger entries.
type TransactionService struct {
	store    *storage.Store
	notifier *Notifier
}

func NewTransactionService(store *storage.Store, notifier *Notifier) *TransactionService {
	return &TransactionService{store: store, notifier: notifier}
}

// checkReferences verifies that the foreign keys point at live rows, so a
// bad id surfaces as a field error instead of a constraint failure.
func (s *TransactionService) checkReferences(ctx context.Context, t core.Transaction) error {
	errs := core.FieldErrors{}
	if _, err := s.store.GetAccount(ctx, t.AccountID); err != nil {
		errs.Add("account_id", "account does not exist")
	}
	if t.ProjectID != nil {
		if _, err := s.store.GetProject(ctx, *t.ProjectID); err != nil {
			errs.Add("project_id", "project does not exist")
		}
	}
	if t.EmployeeID != nil {
		if _, err := s.store.GetEmployee(ctx, *t.EmployeeID); err != nil {
			errs.Add("employee_id", "employee does not exist")
		}
	}
	return errs.OrNil()
}

// Create writes the transaction and links it to any named existing
// deductions. A link without an applied amount takes the deduction's
// own amount.
func (s *TransactionService) Create(ctx context.Context, t core.Transaction, links ...core.DeductionLinkInput) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if err := s.checkReferences(ctx, t); err != nil {
		return core.Transaction{}, err
	}
	created, err := s.store.CreateTransaction(ctx, t, links...)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}
	s.notifier.EntityChanged(ctx, changeMessage(created, amqp.ActionCreated))
	return created, nil
}

func (s *TransactionService) Get(ctx context.Context, id int64) (core.Transaction, error) {
	return s.store.GetTransaction(ctx, id)
}

// Links returns the transaction's deduction links.
func (s *TransactionService) Links(ctx context.Context, id int64) ([]core.DeductionLink, error) {
	return s.store.TransactionDeductions(ctx, id)
}

// Update rewrites the transaction. When links are given they replace
// the transaction's deduction links; with none, links are untouched.
func (s *TransactionService) Update(ctx context.Context, t core.Transaction, links ...core.DeductionLinkInput) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if err := s.checkReferences(ctx, t); err != nil {
		return core.Transaction{}, err
	}
	updated, err := s.store.UpdateTransaction(ctx, t, links...)
	if err != nil {
		return core.Transaction{}, err
	}
	s.notifier.EntityChanged(ctx, changeMessage(updated, amqp.ActionUpdated))
	return updated, nil
}

func (s *TransactionService) Delete(ctx context.Context, id int64) error {
	// Fetch first so the delete event still carries the related ids.
	t, err := s.store.GetTransaction(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteTransaction(ctx, id); err != nil {
		return err
	}
	s.notifier.EntityChanged(ctx, changeMessage(t, amqp.ActionDeleted))
	return nil
}

func (s *TransactionService) List(ctx context.Context, f core.Filter) (core.Page[core.Transaction], error) {
	return s.store.ListTransactions(ctx, f)
}

// Categories returns the distinct category strings in use, for form
// suggestions.
func (s *TransactionService) Categories(ctx context.Context) ([]string, error) {
	return s.store.DistinctCategories(ctx)
}

// FinancialYears returns the distinct financial-year labels in use.
func (s *TransactionService) FinancialYears(ctx context.Context) ([]string, error) {
	return s.store.DistinctFinancialYears(ctx)
}

func changeMessage(t core.Transaction, action string) *amqp.EntityChangeMessage {
	msg := amqp.NewEntityChangeMessage("transaction", t.ID, action)
	msg.AccountID = t.AccountID
	if t.ProjectID != nil {
		msg.ProjectID = *t.ProjectID
	}
	if t.EmployeeID != nil {
		msg.EmployeeID = *t.EmployeeID
	}
	return msg
}
