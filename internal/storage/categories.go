package storage

import (
	"context"
	"fmt"

	"tally/internal/core"
)

const categoryColumns = "id, name, type, description, is_active, created_at, updated_at"

func scanCategory(row interface{ Scan(...any) error }) (core.Category, error) {
	var (
		c         core.Category
		createdAt string
		updatedAt string
	)
	err := row.Scan(&c.ID, &c.Name, &c.Type, &c.Description, &c.IsActive, &createdAt, &updatedAt)
	if err != nil {
		return core.Category{}, err
	}
	c.CreatedAt = parseTimestamp(createdAt)
	c.UpdatedAt = parseTimestamp(updatedAt)
	return c, nil
}

func (s *Store) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO categories (name, type, description, is_active) VALUES (?, ?, ?, ?)",
		c.Name, c.Type, c.Description, c.IsActive)
	if err != nil {
		return core.Category{}, uniqueField(err, "categories.name", "name", "category name is already in use")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Category{}, fmt.Errorf("category id: %w", err)
	}
	return s.GetCategory(ctx, id)
}

func (s *Store) GetCategory(ctx context.Context, id int64) (core.Category, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+categoryColumns+" FROM categories WHERE id = ?", id)
	c, err := scanCategory(row)
	if err != nil {
		return core.Category{}, mapErr(err)
	}
	return c, nil
}

func (s *Store) UpdateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE categories SET name = ?, type = ?, description = ?, is_active = ?,
		 updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		c.Name, c.Type, c.Description, c.IsActive, c.ID)
	if err != nil {
		return core.Category{}, uniqueField(err, "categories.name", "name", "category name is already in use")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.Category{}, core.ErrNotFound
	}
	return s.GetCategory(ctx, c.ID)
}

func (s *Store) DeleteCategory(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM categories WHERE id = ?", id)
	if err != nil {
		return mapErr(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// ListCategories lists category rows, optionally narrowed by type and
// active flag. The listing is small so it is never paginated.
func (s *Store) ListCategories(ctx context.Context, f core.Filter) ([]core.Category, error) {
	where := "1=1"
	var args []any
	if f.CategoryKind != "" {
		where += " AND type = ?"
		args = append(args, f.CategoryKind)
	}
	if f.IsActive != nil {
		where += " AND is_active = ?"
		args = append(args, *f.IsActive)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+categoryColumns+" FROM categories WHERE "+where+" ORDER BY name", args...)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var items []core.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, c)
	}
	return items, rows.Err()
}
