package storage

import (
	"context"
	"database/sql"
	"fmt"

	"tally/internal/core"
)

const projectColumns = `id, code, name, description, start_date, end_date, budget, status,
	client_name, created_at, updated_at`

func scanProject(row interface{ Scan(...any) error }) (core.Project, error) {
	var (
		p         core.Project
		startDate sql.NullString
		endDate   sql.NullString
		budget    sql.NullString
		createdAt string
		updatedAt string
	)
	err := row.Scan(&p.ID, &p.Code, &p.Name, &p.Description, &startDate, &endDate, &budget,
		&p.Status, &p.ClientName, &createdAt, &updatedAt)
	if err != nil {
		return core.Project{}, err
	}
	if p.StartDate, err = datePtrFromDB(startDate); err != nil {
		return core.Project{}, fmt.Errorf("project %d start date: %w", p.ID, err)
	}
	if p.EndDate, err = datePtrFromDB(endDate); err != nil {
		return core.Project{}, fmt.Errorf("project %d end date: %w", p.ID, err)
	}
	if p.Budget, err = moneyPtrFromDB(budget); err != nil {
		return core.Project{}, fmt.Errorf("project %d budget: %w", p.ID, err)
	}
	p.CreatedAt = parseTimestamp(createdAt)
	p.UpdatedAt = parseTimestamp(updatedAt)
	return p, nil
}

func (s *Store) CreateProject(ctx context.Context, p core.Project) (core.Project, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO projects (code, name, description, start_date, end_date, budget, status, client_name)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.Code, p.Name, p.Description, datePtrToDB(p.StartDate), datePtrToDB(p.EndDate),
		moneyPtrToDB(p.Budget), p.Status, p.ClientName)
	if err != nil {
		return core.Project{}, uniqueField(err, "projects.code", "code", "project code is already in use")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Project{}, fmt.Errorf("project id: %w", err)
	}
	return s.GetProject(ctx, id)
}

func (s *Store) GetProject(ctx context.Context, id int64) (core.Project, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+projectColumns+" FROM projects WHERE id = ?", id)
	p, err := scanProject(row)
	if err != nil {
		return core.Project{}, mapErr(err)
	}
	return p, nil
}

func (s *Store) UpdateProject(ctx context.Context, p core.Project) (core.Project, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE projects
		 SET code = ?, name = ?, description = ?, start_date = ?, end_date = ?, budget = ?,
		     status = ?, client_name = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		p.Code, p.Name, p.Description, datePtrToDB(p.StartDate), datePtrToDB(p.EndDate),
		moneyPtrToDB(p.Budget), p.Status, p.ClientName, p.ID)
	if err != nil {
		return core.Project{}, uniqueField(err, "projects.code", "code", "project code is already in use")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.Project{}, core.ErrNotFound
	}
	return s.GetProject(ctx, p.ID)
}

// DeleteProject removes the project. Its transactions and employees stay
// behind with their project reference cleared.
func (s *Store) DeleteProject(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM projects WHERE id = ?", id)
	if err != nil {
		return mapErr(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func projectWhere(f core.Filter) (string, []any) {
	where := "1=1"
	var args []any
	if f.Status != "" {
		where += " AND status = ?"
		args = append(args, f.Status)
	}
	if f.ClientName != "" {
		where += " AND client_name LIKE ?"
		args = append(args, "%"+f.ClientName+"%")
	}
	if f.Search != "" {
		where += " AND (code LIKE ? OR name LIKE ? OR client_name LIKE ?)"
		like := "%" + f.Search + "%"
		args = append(args, like, like, like)
	}
	return where, args
}

func (s *Store) ListProjects(ctx context.Context, f core.Filter) (core.Page[core.Project], error) {
	where, args := projectWhere(f)
	page, size, limit, offset := f.PageBounds()

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM projects WHERE "+where, args...).Scan(&total); err != nil {
		return core.Page[core.Project]{}, fmt.Errorf("count projects: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+projectColumns+" FROM projects WHERE "+where+" ORDER BY code LIMIT ? OFFSET ?",
		append(args, limit, offset)...)
	if err != nil {
		return core.Page[core.Project]{}, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var items []core.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return core.Page[core.Project]{}, fmt.Errorf("scan project: %w", err)
		}
		items = append(items, p)
	}
	if err := rows.Err(); err != nil {
		return core.Page[core.Project]{}, fmt.Errorf("list projects: %w", err)
	}
	return core.NewPage(items, total, page, size), nil
}

func (s *Store) AllProjects(ctx context.Context) ([]core.Project, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+projectColumns+" FROM projects ORDER BY code")
	if err != nil {
		return nil, fmt.Errorf("all projects: %w", err)
	}
	defer rows.Close()

	var items []core.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

// FilterProjects returns every project matching the filter's status,
// client name and search dimensions, with no pagination.
func (s *Store) FilterProjects(ctx context.Context, f core.Filter) ([]core.Project, error) {
	where, args := projectWhere(f)
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+projectColumns+" FROM projects WHERE "+where+" ORDER BY code", args...)
	if err != nil {
		return nil, fmt.Errorf("filter projects: %w", err)
	}
	defer rows.Close()

	var items []core.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

// CountActiveProjects counts projects in active status, ignoring filters.
func (s *Store) CountActiveProjects(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM projects WHERE status = ?", core.StatusActive).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count active projects: %w", err)
	}
	return n, nil
}
