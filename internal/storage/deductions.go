package storage

import (
	"context"
	"database/sql"
	"fmt"

	"tally/internal/core"
)

const deductionColumns = `id, employee_id, amount, description, date, deduction_type,
	is_recurring, monthly_deduction, financial_year, created_at, updated_at`

func scanDeduction(row interface{ Scan(...any) error }) (core.Deduction, error) {
	var (
		d         core.Deduction
		amount    string
		date      string
		monthly   sql.NullString
		createdAt string
		updatedAt string
	)
	err := row.Scan(&d.ID, &d.EmployeeID, &amount, &d.Description, &date, &d.Type,
		&d.IsRecurring, &monthly, &d.FinancialYear, &createdAt, &updatedAt)
	if err != nil {
		return core.Deduction{}, err
	}
	if d.Amount, err = moneyFromDB(amount); err != nil {
		return core.Deduction{}, fmt.Errorf("deduction %d amount: %w", d.ID, err)
	}
	if d.Date, err = dateFromDB(date); err != nil {
		return core.Deduction{}, fmt.Errorf("deduction %d date: %w", d.ID, err)
	}
	if d.MonthlyDeduction, err = moneyPtrFromDB(monthly); err != nil {
		return core.Deduction{}, fmt.Errorf("deduction %d monthly: %w", d.ID, err)
	}
	d.CreatedAt = parseTimestamp(createdAt)
	d.UpdatedAt = parseTimestamp(updatedAt)
	return d, nil
}

func insertDeductionTx(ctx context.Context, e execer, d *core.Deduction) error {
	res, err := e.ExecContext(ctx,
		`INSERT INTO deductions (employee_id, amount, description, date, deduction_type,
		 is_recurring, monthly_deduction, financial_year)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		d.EmployeeID, moneyToDB(d.Amount), d.Description, dateToDB(d.Date), d.Type,
		d.IsRecurring, moneyPtrToDB(d.MonthlyDeduction), d.FinancialYear)
	if err != nil {
		return mapErr(err)
	}
	d.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("deduction id: %w", err)
	}
	return nil
}

func (s *Store) CreateDeduction(ctx context.Context, d core.Deduction) (core.Deduction, error) {
	if err := insertDeductionTx(ctx, s.db, &d); err != nil {
		return core.Deduction{}, err
	}
	return s.GetDeduction(ctx, d.ID)
}

func (s *Store) GetDeduction(ctx context.Context, id int64) (core.Deduction, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+deductionColumns+" FROM deductions WHERE id = ?", id)
	d, err := scanDeduction(row)
	if err != nil {
		return core.Deduction{}, mapErr(err)
	}
	return d, nil
}

func (s *Store) UpdateDeduction(ctx context.Context, d core.Deduction) (core.Deduction, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE deductions
		 SET employee_id = ?, amount = ?, description = ?, date = ?, deduction_type = ?,
		     is_recurring = ?, monthly_deduction = ?, financial_year = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		d.EmployeeID, moneyToDB(d.Amount), d.Description, dateToDB(d.Date), d.Type,
		d.IsRecurring, moneyPtrToDB(d.MonthlyDeduction), d.FinancialYear, d.ID)
	if err != nil {
		return core.Deduction{}, mapErr(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.Deduction{}, core.ErrNotFound
	}
	return s.GetDeduction(ctx, d.ID)
}

func (s *Store) DeleteDeduction(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM deductions WHERE id = ?", id)
	if err != nil {
		return mapErr(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func deductionWhere(f core.Filter) (string, []any) {
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
	if f.EmployeeID != nil {
		where += " AND employee_id = ?"
		args = append(args, *f.EmployeeID)
	}
	if f.DeductionType != "" {
		where += " AND deduction_type = ?"
		args = append(args, f.DeductionType)
	}
	if f.IsRecurring != nil {
		where += " AND is_recurring = ?"
		args = append(args, *f.IsRecurring)
	}
	if f.Search != "" {
		where += " AND description LIKE ?"
		args = append(args, "%"+f.Search+"%")
	}
	return where, args
}

func (s *Store) ListDeductions(ctx context.Context, f core.Filter) (core.Page[core.Deduction], error) {
	where, args := deductionWhere(f)
	page, size, limit, offset := f.PageBounds()

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM deductions WHERE "+where, args...).Scan(&total); err != nil {
		return core.Page[core.Deduction]{}, fmt.Errorf("count deductions: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+deductionColumns+" FROM deductions WHERE "+where+" ORDER BY date DESC, id DESC LIMIT ? OFFSET ?",
		append(args, limit, offset)...)
	if err != nil {
		return core.Page[core.Deduction]{}, fmt.Errorf("list deductions: %w", err)
	}
	defer rows.Close()

	var items []core.Deduction
	for rows.Next() {
		d, err := scanDeduction(rows)
		if err != nil {
			return core.Page[core.Deduction]{}, fmt.Errorf("scan deduction: %w", err)
		}
		items = append(items, d)
	}
	if err := rows.Err(); err != nil {
		return core.Page[core.Deduction]{}, fmt.Errorf("list deductions: %w", err)
	}
	return core.NewPage(items, total, page, size), nil
}

// FilterDeductions returns every deduction matching the filter, unpaged,
// for the roll-up reports.
func (s *Store) FilterDeductions(ctx context.Context, f core.Filter) ([]core.Deduction, error) {
	where, args := deductionWhere(f)
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+deductionColumns+" FROM deductions WHERE "+where+" ORDER BY date DESC, id DESC", args...)
	if err != nil {
		return nil, fmt.Errorf("filter deductions: %w", err)
	}
	defer rows.Close()

	var items []core.Deduction
	for rows.Next() {
		d, err := scanDeduction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan deduction: %w", err)
		}
		items = append(items, d)
	}
	return items, rows.Err()
}

// ProjectDeductions returns deductions belonging to employees assigned to
// the project, further narrowed by the filter.
func (s *Store) ProjectDeductions(ctx context.Context, projectID int64, f core.Filter) ([]core.Deduction, error) {
	where, args := deductionWhere(f)
	where += " AND employee_id IN (SELECT id FROM employees WHERE project_id = ?)"
	args = append(args, projectID)

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+deductionColumns+" FROM deductions WHERE "+where+" ORDER BY date DESC, id DESC", args...)
	if err != nil {
		return nil, fmt.Errorf("project deductions: %w", err)
	}
	defer rows.Close()

	var items []core.Deduction
	for rows.Next() {
		d, err := scanDeduction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan deduction: %w", err)
		}
		items = append(items, d)
	}
	return items, rows.Err()
}

// TransactionDeductions returns the deductions linked to one salary
// payment, with the applied amount from the link row.
func (s *Store) TransactionDeductions(ctx context.Context, transactionID int64) ([]core.DeductionLink, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT transaction_id, deduction_id, amount_applied, created_at
		 FROM deduction_links WHERE transaction_id = ? ORDER BY deduction_id`, transactionID)
	if err != nil {
		return nil, fmt.Errorf("transaction deductions: %w", err)
	}
	defer rows.Close()

	var links []core.DeductionLink
	for rows.Next() {
		var (
			l         core.DeductionLink
			amount    string
			createdAt string
		)
		if err := rows.Scan(&l.TransactionID, &l.DeductionID, &amount, &createdAt); err != nil {
			return nil, fmt.Errorf("scan deduction link: %w", err)
		}
		if l.AmountApplied, err = moneyFromDB(amount); err != nil {
			return nil, fmt.Errorf("link amount: %w", err)
		}
		l.CreatedAt = parseTimestamp(createdAt)
		links = append(links, l)
	}
	return links, rows.Err()
}

// linkDeductions links the named existing deductions to a transaction. A
// link with no AmountApplied takes the deduction's own amount. When
// employeeID is non-nil each deduction must belong to that employee.
func linkDeductions(ctx context.Context, tx *sql.Tx, transactionID int64, employeeID *int64, links []core.DeductionLinkInput) error {
	for _, l := range links {
		query := "SELECT amount FROM deductions WHERE id = ?"
		args := []any{l.DeductionID}
		if employeeID != nil {
			query += " AND employee_id = ?"
			args = append(args, *employeeID)
		}
		var amount string
		if err := tx.QueryRowContext(ctx, query, args...).Scan(&amount); err != nil {
			if err == sql.ErrNoRows {
				return fmt.Errorf("deduction %d: %w", l.DeductionID, core.ErrNotFound)
			}
			return fmt.Errorf("deduction %d: %w", l.DeductionID, err)
		}
		if l.AmountApplied != nil {
			amount = moneyToDB(*l.AmountApplied)
		}
		if err := insertDeductionLink(ctx, tx, transactionID, l.DeductionID, amount); err != nil {
			return err
		}
	}
	return nil
}

// RecordSalaryPayment inserts the payment transaction, links it to the
// chosen existing deductions, and creates any new deductions linked at
// their full amount. Everything happens in a single database
// transaction: either the whole payment lands or none of it does.
func (s *Store) RecordSalaryPayment(ctx context.Context, payment core.Transaction, links []core.DeductionLinkInput, newDeductions []core.Deduction) (core.Transaction, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if err := insertTransactionTx(ctx, tx, &payment); err != nil {
		return core.Transaction{}, fmt.Errorf("payment transaction: %w", err)
	}

	if err := linkDeductions(ctx, tx, payment.ID, payment.EmployeeID, links); err != nil {
		return core.Transaction{}, err
	}

	for _, d := range newDeductions {
		if err := insertDeductionTx(ctx, tx, &d); err != nil {
			return core.Transaction{}, fmt.Errorf("new deduction: %w", err)
		}
		if err := insertDeductionLink(ctx, tx, payment.ID, d.ID, moneyToDB(d.Amount)); err != nil {
			return core.Transaction{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return core.Transaction{}, fmt.Errorf("commit: %w", err)
	}
	return s.GetTransaction(ctx, payment.ID)
}

func insertDeductionLink(ctx context.Context, e execer, transactionID, deductionID int64, amountApplied string) error {
	_, err := e.ExecContext(ctx,
		"INSERT INTO deduction_links (transaction_id, deduction_id, amount_applied) VALUES (?, ?, ?)",
		transactionID, deductionID, amountApplied)
	if err != nil {
		return fmt.Errorf("link deduction %d: %w", deductionID, mapErr(err))
	}
	return nil
}

// DeductionTotalForEmployee sums an employee's deductions within the
// filter.
func (s *Store) DeductionTotalForEmployee(ctx context.Context, employeeID int64, f core.Filter) (core.Money, error) {
	f.EmployeeID = &employeeID
	deds, err := s.FilterDeductions(ctx, f)
	if err != nil {
		return core.Money{}, err
	}
	var total core.Money
	for _, d := range deds {
		total = total.Add(d.Amount)
	}
	return total, nil
}
