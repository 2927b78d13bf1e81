package services

import (
	"context"
	"fmt"

	"tally/internal/amqp"
	"tally/internal/core"
	"tally/internal/storage"
)

// AccountWithBalance is an account together with its derived balance.
type AccountWithBalance struct {
	core.Account
	Balance core.Money `json:"balance"`
}

// AccountService handles the chart of accounts.
type AccountService struct {
	store    *storage.Store
	notifier *Notifier
}

func NewAccountService(store *storage.Store, notifier *Notifier) *AccountService {
	return &AccountService{store: store, notifier: notifier}
}

// Create validates and stores the account. A non-zero opening balance
// lands as a synthetic opening transaction alongside.
func (s *AccountService) Create(ctx context.Context, a core.Account) (core.Account, error) {
	if err := a.Validate(); err != nil {
		return core.Account{}, err
	}
	created, err := s.store.CreateAccount(ctx, a)
	if err != nil {
		return core.Account{}, fmt.Errorf("create account: %w", err)
	}
	s.notifier.EntityChanged(ctx, amqp.NewEntityChangeMessage("account", created.ID, amqp.ActionCreated))
	return created, nil
}

// Get returns the account with its lifetime balance: opening balance plus
// every transaction it ever had, no filters.
func (s *AccountService) Get(ctx context.Context, id int64) (AccountWithBalance, error) {
	a, err := s.store.GetAccount(ctx, id)
	if err != nil {
		return AccountWithBalance{}, err
	}
	txs, err := s.store.FilterTransactions(ctx, core.Filter{AccountID: &id})
	if err != nil {
		return AccountWithBalance{}, fmt.Errorf("account transactions: %w", err)
	}
	return AccountWithBalance{Account: a, Balance: core.AccountBalance(a, txs)}, nil
}

func (s *AccountService) Update(ctx context.Context, a core.Account) (core.Account, error) {
	if err := a.Validate(); err != nil {
		return core.Account{}, err
	}
	updated, err := s.store.UpdateAccount(ctx, a)
	if err != nil {
		return core.Account{}, err
	}
	s.notifier.EntityChanged(ctx, amqp.NewEntityChangeMessage("account", updated.ID, amqp.ActionUpdated))
	return updated, nil
}

func (s *AccountService) Delete(ctx context.Context, id int64) error {
	if err := s.store.DeleteAccount(ctx, id); err != nil {
		return err
	}
	s.notifier.EntityChanged(ctx, amqp.NewEntityChangeMessage("account", id, amqp.ActionDeleted))
	return nil
}

// List returns a page of accounts, each with its lifetime balance.
func (s *AccountService) List(ctx context.Context, f core.Filter) (core.Page[AccountWithBalance], error) {
	page, err := s.store.ListAccounts(ctx, f)
	if err != nil {
		return core.Page[AccountWithBalance]{}, err
	}

	items := make([]AccountWithBalance, 0, len(page.Items))
	for _, a := range page.Items {
		txs, err := s.store.FilterTransactions(ctx, core.Filter{AccountID: &a.ID})
		if err != nil {
			return core.Page[AccountWithBalance]{}, fmt.Errorf("account %d transactions: %w", a.ID, err)
		}
		items = append(items, AccountWithBalance{Account: a, Balance: core.AccountBalance(a, txs)})
	}
	return core.Page[AccountWithBalance]{
		Items: items,
		Total: page.Total,
		Page:  page.Page,
		Size:  page.Size,
		Pages: page.Pages,
	}, nil
}

// Transactions lists one account's transactions, paged and filtered.
func (s *AccountService) Transactions(ctx context.Context, id int64, f core.Filter) (core.Page[core.Transaction], error) {
	if _, err := s.store.GetAccount(ctx, id); err != nil {
		return core.Page[core.Transaction]{}, err
	}
	f.AccountID = &id
	return s.store.ListTransactions(ctx, f)
}
