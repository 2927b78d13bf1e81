package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"tally/internal/core"
)

const employeeColumns = `id, employee_code, first_name, last_name, email, phone, department,
	position, hire_date, salary, is_active, project_id, created_at, updated_at`

func scanEmployee(row interface{ Scan(...any) error }) (core.Employee, error) {
	var (
		e         core.Employee
		email     sql.NullString
		hireDate  sql.NullString
		salary    sql.NullString
		projectID sql.NullInt64
		createdAt string
		updatedAt string
	)
	err := row.Scan(&e.ID, &e.EmployeeCode, &e.FirstName, &e.LastName, &email, &e.Phone,
		&e.Department, &e.Position, &hireDate, &salary, &e.IsActive, &projectID,
		&createdAt, &updatedAt)
	if err != nil {
		return core.Employee{}, err
	}
	e.Email = email.String
	if e.HireDate, err = datePtrFromDB(hireDate); err != nil {
		return core.Employee{}, fmt.Errorf("employee %d hire date: %w", e.ID, err)
	}
	if e.Salary, err = moneyPtrFromDB(salary); err != nil {
		return core.Employee{}, fmt.Errorf("employee %d salary: %w", e.ID, err)
	}
	e.ProjectID = idPtrFromDB(projectID)
	e.CreatedAt = parseTimestamp(createdAt)
	e.UpdatedAt = parseTimestamp(updatedAt)
	return e, nil
}

// employeeWriteErr maps UNIQUE violations on either unique column to a
// field error.
func employeeWriteErr(err error) error {
	if err == nil {
		return nil
	}
	if strings.Contains(err.Error(), "UNIQUE constraint failed: employees.email") {
		errs := core.FieldErrors{}
		errs.Add("email", "email is already in use")
		return errs
	}
	return uniqueField(err, "employees.employee_code", "employee_code", "employee code is already in use")
}

func (s *Store) CreateEmployee(ctx context.Context, e core.Employee) (core.Employee, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO employees (employee_code, first_name, last_name, email, phone, department,
		 position, hire_date, salary, is_active, project_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.EmployeeCode, e.FirstName, e.LastName, optionalToDB(e.Email), e.Phone, e.Department,
		e.Position, datePtrToDB(e.HireDate), moneyPtrToDB(e.Salary), e.IsActive, idPtrToDB(e.ProjectID))
	if err != nil {
		return core.Employee{}, employeeWriteErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Employee{}, fmt.Errorf("employee id: %w", err)
	}
	return s.GetEmployee(ctx, id)
}

func (s *Store) GetEmployee(ctx context.Context, id int64) (core.Employee, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+employeeColumns+" FROM employees WHERE id = ?", id)
	e, err := scanEmployee(row)
	if err != nil {
		return core.Employee{}, mapErr(err)
	}
	return e, nil
}

func (s *Store) UpdateEmployee(ctx context.Context, e core.Employee) (core.Employee, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE employees
		 SET employee_code = ?, first_name = ?, last_name = ?, email = ?, phone = ?,
		     department = ?, position = ?, hire_date = ?, salary = ?, is_active = ?,
		     project_id = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		e.EmployeeCode, e.FirstName, e.LastName, optionalToDB(e.Email), e.Phone,
		e.Department, e.Position, datePtrToDB(e.HireDate), moneyPtrToDB(e.Salary), e.IsActive,
		idPtrToDB(e.ProjectID), e.ID)
	if err != nil {
		return core.Employee{}, employeeWriteErr(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.Employee{}, core.ErrNotFound
	}
	return s.GetEmployee(ctx, e.ID)
}

// DeleteEmployee removes the employee; deductions cascade away and
// transactions keep their rows with the employee reference cleared.
func (s *Store) DeleteEmployee(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM employees WHERE id = ?", id)
	if err != nil {
		return mapErr(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func employeeWhere(f core.Filter) (string, []any) {
	where := "1=1"
	var args []any
	if f.Department != "" {
		where += " AND department = ?"
		args = append(args, f.Department)
	}
	if f.Position != "" {
		where += " AND position = ?"
		args = append(args, f.Position)
	}
	if f.IsActive != nil {
		where += " AND is_active = ?"
		args = append(args, *f.IsActive)
	}
	if f.ProjectID != nil {
		where += " AND project_id = ?"
		args = append(args, *f.ProjectID)
	}
	if f.Search != "" {
		where += " AND (employee_code LIKE ? OR first_name LIKE ? OR last_name LIKE ? OR email LIKE ?)"
		like := "%" + f.Search + "%"
		args = append(args, like, like, like, like)
	}
	return where, args
}

func (s *Store) ListEmployees(ctx context.Context, f core.Filter) (core.Page[core.Employee], error) {
	where, args := employeeWhere(f)
	page, size, limit, offset := f.PageBounds()

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM employees WHERE "+where, args...).Scan(&total); err != nil {
		return core.Page[core.Employee]{}, fmt.Errorf("count employees: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+employeeColumns+" FROM employees WHERE "+where+" ORDER BY employee_code LIMIT ? OFFSET ?",
		append(args, limit, offset)...)
	if err != nil {
		return core.Page[core.Employee]{}, fmt.Errorf("list employees: %w", err)
	}
	defer rows.Close()

	var items []core.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return core.Page[core.Employee]{}, fmt.Errorf("scan employee: %w", err)
		}
		items = append(items, e)
	}
	if err := rows.Err(); err != nil {
		return core.Page[core.Employee]{}, fmt.Errorf("list employees: %w", err)
	}
	return core.NewPage(items, total, page, size), nil
}

func (s *Store) AllEmployees(ctx context.Context) ([]core.Employee, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+employeeColumns+" FROM employees ORDER BY employee_code")
	if err != nil {
		return nil, fmt.Errorf("all employees: %w", err)
	}
	defer rows.Close()

	var items []core.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("scan employee: %w", err)
		}
		items = append(items, e)
	}
	return items, rows.Err()
}

// ProjectEmployees lists the employees assigned to one project.
func (s *Store) ProjectEmployees(ctx context.Context, projectID int64) ([]core.Employee, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+employeeColumns+" FROM employees WHERE project_id = ? ORDER BY employee_code", projectID)
	if err != nil {
		return nil, fmt.Errorf("project employees: %w", err)
	}
	defer rows.Close()

	var items []core.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("scan employee: %w", err)
		}
		items = append(items, e)
	}
	return items, rows.Err()
}

// CountActiveEmployees ignores filters, like the other active counts.
func (s *Store) CountActiveEmployees(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM employees WHERE is_active = 1").Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count active employees: %w", err)
	}
	return n, nil
}
