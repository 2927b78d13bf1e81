package storage

import (
	"context"
	"fmt"

	"tally/internal/core"
)

const accountColumns = "id, code, name, type, category, opening_balance, is_active, created_at, updated_at"

func scanAccount(row interface{ Scan(...any) error }) (core.Account, error) {
	var (
		a         core.Account
		opening   string
		createdAt string
		updatedAt string
	)
	err := row.Scan(&a.ID, &a.Code, &a.Name, &a.Type, &a.Category, &opening, &a.IsActive, &createdAt, &updatedAt)
	if err != nil {
		return core.Account{}, err
	}
	if a.OpeningBalance, err = moneyFromDB(opening); err != nil {
		return core.Account{}, fmt.Errorf("account %d opening balance: %w", a.ID, err)
	}
	a.CreatedAt = parseTimestamp(createdAt)
	a.UpdatedAt = parseTimestamp(updatedAt)
	return a, nil
}

// CreateAccount inserts the account and, when the opening balance is
// non-zero, its synthetic opening transaction in the same database
// transaction.
func (s *Store) CreateAccount(ctx context.Context, a core.Account) (core.Account, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Account{}, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO accounts (code, name, type, category, opening_balance, is_active)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		a.Code, a.Name, a.Type, a.Category, moneyToDB(a.OpeningBalance), a.IsActive)
	if err != nil {
		return core.Account{}, uniqueField(err, "accounts.code", "code", "account code is already in use")
	}
	a.ID, err = res.LastInsertId()
	if err != nil {
		return core.Account{}, fmt.Errorf("account id: %w", err)
	}

	if !a.OpeningBalance.IsZero() {
		opening := core.OpeningTransaction(a, core.Today())
		if err := insertTransactionTx(ctx, tx, &opening); err != nil {
			return core.Account{}, fmt.Errorf("opening transaction: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return core.Account{}, fmt.Errorf("commit: %w", err)
	}
	return s.GetAccount(ctx, a.ID)
}

func (s *Store) GetAccount(ctx context.Context, id int64) (core.Account, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+accountColumns+" FROM accounts WHERE id = ?", id)
	a, err := scanAccount(row)
	if err != nil {
		return core.Account{}, mapErr(err)
	}
	return a, nil
}

// UpdateAccount rewrites the mutable fields. The opening balance is
// deliberately not updatable: it is fixed at creation together with its
// synthetic transaction.
func (s *Store) UpdateAccount(ctx context.Context, a core.Account) (core.Account, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE accounts
		 SET code = ?, name = ?, type = ?, category = ?, is_active = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		a.Code, a.Name, a.Type, a.Category, a.IsActive, a.ID)
	if err != nil {
		return core.Account{}, uniqueField(err, "accounts.code", "code", "account code is already in use")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.Account{}, core.ErrNotFound
	}
	return s.GetAccount(ctx, a.ID)
}

// DeleteAccount removes the account; its transactions go with it via the
// cascade.
func (s *Store) DeleteAccount(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM accounts WHERE id = ?", id)
	if err != nil {
		return mapErr(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func accountWhere(f core.Filter) (string, []any) {
	where := "1=1"
	var args []any
	if f.AccountType != "" {
		where += " AND type = ?"
		args = append(args, f.AccountType)
	}
	if f.IsActive != nil {
		where += " AND is_active = ?"
		args = append(args, *f.IsActive)
	}
	if f.Category != "" {
		where += " AND category = ?"
		args = append(args, f.Category)
	}
	if f.Search != "" {
		where += " AND (code LIKE ? OR name LIKE ?)"
		like := "%" + f.Search + "%"
		args = append(args, like, like)
	}
	return where, args
}

// ListAccounts returns one page of accounts matching the filter, ordered
// by code.
func (s *Store) ListAccounts(ctx context.Context, f core.Filter) (core.Page[core.Account], error) {
	where, args := accountWhere(f)
	page, size, limit, offset := f.PageBounds()

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM accounts WHERE "+where, args...).Scan(&total); err != nil {
		return core.Page[core.Account]{}, fmt.Errorf("count accounts: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+accountColumns+" FROM accounts WHERE "+where+" ORDER BY code LIMIT ? OFFSET ?",
		append(args, limit, offset)...)
	if err != nil {
		return core.Page[core.Account]{}, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var items []core.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return core.Page[core.Account]{}, fmt.Errorf("scan account: %w", err)
		}
		items = append(items, a)
	}
	if err := rows.Err(); err != nil {
		return core.Page[core.Account]{}, fmt.Errorf("list accounts: %w", err)
	}
	return core.NewPage(items, total, page, size), nil
}

// AllAccounts returns every account ordered by code, for reports that
// aggregate across the whole chart.
func (s *Store) AllAccounts(ctx context.Context) ([]core.Account, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+accountColumns+" FROM accounts ORDER BY code")
	if err != nil {
		return nil, fmt.Errorf("all accounts: %w", err)
	}
	defer rows.Close()

	var items []core.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		items = append(items, a)
	}
	return items, rows.Err()
}

// CountActiveAccounts ignores every filter dimension: the dashboard's
// active counts are global regardless of the report's date scope.
func (s *Store) CountActiveAccounts(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM accounts WHERE is_active = 1").Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count active accounts: %w", err)
	}
	return n, nil
}
