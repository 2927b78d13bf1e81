package storage

import (
	"context"
	"database/sql"
	"fmt"

	"tally/internal/core"
)

const transactionColumns = `id, date, description, amount, transaction_type, account_id,
	project_id, employee_id, category, reference, notes, financial_year, created_at, updated_at`

func scanTransaction(row interface{ Scan(...any) error }) (core.Transaction, error) {
	var (
		t          core.Transaction
		date       string
		amount     string
		projectID  sql.NullInt64
		employeeID sql.NullInt64
		createdAt  string
		updatedAt  string
	)
	err := row.Scan(&t.ID, &date, &t.Description, &amount, &t.Type, &t.AccountID,
		&projectID, &employeeID, &t.Category, &t.Reference, &t.Notes, &t.FinancialYear,
		&createdAt, &updatedAt)
	if err != nil {
		return core.Transaction{}, err
	}
	if t.Date, err = dateFromDB(date); err != nil {
		return core.Transaction{}, fmt.Errorf("transaction %d date: %w", t.ID, err)
	}
	if t.Amount, err = moneyFromDB(amount); err != nil {
		return core.Transaction{}, fmt.Errorf("transaction %d amount: %w", t.ID, err)
	}
	t.ProjectID = idPtrFromDB(projectID)
	t.EmployeeID = idPtrFromDB(employeeID)
	t.CreatedAt = parseTimestamp(createdAt)
	t.UpdatedAt = parseTimestamp(updatedAt)
	return t, nil
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertTransactionTx(ctx context.Context, e execer, t *core.Transaction) error {
	res, err := e.ExecContext(ctx,
		`INSERT INTO transactions (date, description, amount, transaction_type, account_id,
		 project_id, employee_id, category, reference, notes, financial_year)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		dateToDB(t.Date), t.Description, moneyToDB(t.Amount), t.Type, t.AccountID,
		idPtrToDB(t.ProjectID), idPtrToDB(t.EmployeeID), t.Category, t.Reference, t.Notes, t.FinancialYear)
	if err != nil {
		return mapErr(err)
	}
	t.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("transaction id: %w", err)
	}
	return nil
}

// CreateTransaction inserts the transaction and links it to the named
// deductions, all in one database transaction when links are given.
func (s *Store) CreateTransaction(ctx context.Context, t core.Transaction, links ...core.DeductionLinkInput) (core.Transaction, error) {
	if len(links) == 0 {
		if err := insertTransactionTx(ctx, s.db, &t); err != nil {
			return core.Transaction{}, err
		}
		return s.GetTransaction(ctx, t.ID)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if err := insertTransactionTx(ctx, tx, &t); err != nil {
		return core.Transaction{}, err
	}
	if err := linkDeductions(ctx, tx, t.ID, nil, links); err != nil {
		return core.Transaction{}, err
	}
	if err := tx.Commit(); err != nil {
		return core.Transaction{}, fmt.Errorf("commit: %w", err)
	}
	return s.GetTransaction(ctx, t.ID)
}

func (s *Store) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+transactionColumns+" FROM transactions WHERE id = ?", id)
	t, err := scanTransaction(row)
	if err != nil {
		return core.Transaction{}, mapErr(err)
	}
	return t, nil
}

func updateTransactionTx(ctx context.Context, e execer, t core.Transaction) error {
	res, err := e.ExecContext(ctx,
		`UPDATE transactions
		 SET date = ?, description = ?, amount = ?, transaction_type = ?, account_id = ?,
		     project_id = ?, employee_id = ?, category = ?, reference = ?, notes = ?,
		     financial_year = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		dateToDB(t.Date), t.Description, moneyToDB(t.Amount), t.Type, t.AccountID,
		idPtrToDB(t.ProjectID), idPtrToDB(t.EmployeeID), t.Category, t.Reference, t.Notes,
		t.FinancialYear, t.ID)
	if err != nil {
		return mapErr(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// UpdateTransaction rewrites the transaction. When links are given the
// existing deduction links are replaced by them; with none, links are
// left untouched.
func (s *Store) UpdateTransaction(ctx context.Context, t core.Transaction, links ...core.DeductionLinkInput) (core.Transaction, error) {
	if len(links) == 0 {
		if err := updateTransactionTx(ctx, s.db, t); err != nil {
			return core.Transaction{}, err
		}
		return s.GetTransaction(ctx, t.ID)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if err := updateTransactionTx(ctx, tx, t); err != nil {
		return core.Transaction{}, err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM deduction_links WHERE transaction_id = ?", t.ID); err != nil {
		return core.Transaction{}, fmt.Errorf("clear deduction links: %w", err)
	}
	if err := linkDeductions(ctx, tx, t.ID, nil, links); err != nil {
		return core.Transaction{}, err
	}
	if err := tx.Commit(); err != nil {
		return core.Transaction{}, fmt.Errorf("commit: %w", err)
	}
	return s.GetTransaction(ctx, t.ID)
}

func (s *Store) DeleteTransaction(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM transactions WHERE id = ?", id)
	if err != nil {
		return mapErr(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func transactionWhere(f core.Filter) (string, []any) {
	where := "1=1"
	var args []any
	if f.FinancialYear != "" {
		where += " AND financial_year = ?"
		args = append(args, f.FinancialYear)
	}
	if f.StartDate != nil {
		where += " AND date >= ?"
		args = append(args, dateToDB(*f.StartDate))
	}
	if f.EndDate != nil {
		where += " AND date <= ?"
		args = append(args, dateToDB(*f.EndDate))
	}
	if f.AccountID != nil {
		where += " AND account_id = ?"
		args = append(args, *f.AccountID)
	}
	if f.ProjectID != nil {
		where += " AND project_id = ?"
		args = append(args, *f.ProjectID)
	}
	if f.EmployeeID != nil {
		where += " AND employee_id = ?"
		args = append(args, *f.EmployeeID)
	}
	if f.TransactionType != "" {
		where += " AND transaction_type = ?"
		args = append(args, f.TransactionType)
	}
	if f.Category != "" {
		where += " AND category = ?"
		args = append(args, f.Category)
	}
	if f.Search != "" {
		where += " AND (description LIKE ? OR reference LIKE ? OR notes LIKE ?)"
		like := "%" + f.Search + "%"
		args = append(args, like, like, like)
	}
	return where, args
}

// ListTransactions returns one page matching the filter, newest first.
func (s *Store) ListTransactions(ctx context.Context, f core.Filter) (core.Page[core.Transaction], error) {
	where, args := transactionWhere(f)
	page, size, limit, offset := f.PageBounds()

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM transactions WHERE "+where, args...).Scan(&total); err != nil {
		return core.Page[core.Transaction]{}, fmt.Errorf("count transactions: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+transactionColumns+" FROM transactions WHERE "+where+" ORDER BY date DESC, id DESC LIMIT ? OFFSET ?",
		append(args, limit, offset)...)
	if err != nil {
		return core.Page[core.Transaction]{}, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var items []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return core.Page[core.Transaction]{}, fmt.Errorf("scan transaction: %w", err)
		}
		items = append(items, t)
	}
	if err := rows.Err(); err != nil {
		return core.Page[core.Transaction]{}, fmt.Errorf("list transactions: %w", err)
	}
	return core.NewPage(items, total, page, size), nil
}

// FilterTransactions returns every transaction matching the filter, newest
// first, with no pagination. The aggregation engines reduce these in
// memory.
func (s *Store) FilterTransactions(ctx context.Context, f core.Filter) ([]core.Transaction, error) {
	where, args := transactionWhere(f)
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+transactionColumns+" FROM transactions WHERE "+where+" ORDER BY date DESC, id DESC", args...)
	if err != nil {
		return nil, fmt.Errorf("filter transactions: %w", err)
	}
	defer rows.Close()

	var items []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

// RecentTransactions returns the most recently recorded transactions
// matching the filter, newest insertion first. Backdated entries do not
// reorder the list.
func (s *Store) RecentTransactions(ctx context.Context, f core.Filter, limit int) ([]core.Transaction, error) {
	where, args := transactionWhere(f)
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+transactionColumns+" FROM transactions WHERE "+where+" ORDER BY created_at DESC, id DESC LIMIT ?",
		append(args, limit)...)
	if err != nil {
		return nil, fmt.Errorf("recent transactions: %w", err)
	}
	defer rows.Close()

	var items []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

// SalaryPayments returns an employee's salary-payment transactions within
// the filter, newest first, capped at limit (0 means no cap). Every credit
// transaction referencing the employee counts as a payment, wherever it
// was recorded.
func (s *Store) SalaryPayments(ctx context.Context, employeeID int64, f core.Filter, limit int) ([]core.Transaction, error) {
	f.EmployeeID = &employeeID
	f.TransactionType = core.Credit
	where, args := transactionWhere(f)

	query := "SELECT " + transactionColumns + " FROM transactions WHERE " + where + " ORDER BY date DESC, id DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("salary payments: %w", err)
	}
	defer rows.Close()

	var items []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

// DistinctCategories lists the category strings in use by transactions,
// for the category suggestion endpoint.
func (s *Store) DistinctCategories(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT DISTINCT category FROM transactions WHERE category != '' ORDER BY category")
	if err != nil {
		return nil, fmt.Errorf("distinct categories: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// DistinctFinancialYears lists financial-year labels present in the
// ledger, newest label first.
func (s *Store) DistinctFinancialYears(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT DISTINCT financial_year FROM transactions WHERE financial_year != '' ORDER BY financial_year DESC")
	if err != nil {
		return nil, fmt.Errorf("distinct financial years: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var fy string
		if err := rows.Scan(&fy); err != nil {
			return nil, fmt.Errorf("scan financial year: %w", err)
		}
		out = append(out, fy)
	}
	return out, rows.Err()
}
