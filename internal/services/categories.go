package services

import (
	"context"
	"fmt"

	"tally/internal/amqp"
	"tally/internal/core"
	"tally/internal/storage"
)

// CategoryService handles category rows. Transactions reference
// categories by free text, so mutations here never touch the ledger.
type CategoryService struct {
	store    *storage.Store
	notifier *Notifier
}

func NewCategoryService(store *storage.Store, notifier *Notifier) *CategoryService {
	return &CategoryService{store: store, notifier: notifier}
}

func (s *CategoryService) Create(ctx context.Context, c core.Category) (core.Category, error) {
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	created, err := s.store.CreateCategory(ctx, c)
	if err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}
	s.notifier.EntityChanged(ctx, amqp.NewEntityChangeMessage("category", created.ID, amqp.ActionCreated))
	return created, nil
}

func (s *CategoryService) Get(ctx context.Context, id int64) (core.Category, error) {
	return s.store.GetCategory(ctx, id)
}

func (s *CategoryService) Update(ctx context.Context, c core.Category) (core.Category, error) {
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	updated, err := s.store.UpdateCategory(ctx, c)
	if err != nil {
		return core.Category{}, err
	}
	s.notifier.EntityChanged(ctx, amqp.NewEntityChangeMessage("category", updated.ID, amqp.ActionUpdated))
	return updated, nil
}

func (s *CategoryService) Delete(ctx context.Context, id int64) error {
	if err := s.store.DeleteCategory(ctx, id); err != nil {
		return err
	}
	s.notifier.EntityChanged(ctx, amqp.NewEntityChangeMessage("category", id, amqp.ActionDeleted))
	return nil
}

func (s *CategoryService) List(ctx context.Context, f core.Filter) ([]core.Category, error) {
	return s.store.ListCategories(ctx, f)
}
