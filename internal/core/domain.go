package core

import (
	"strings"
	"time"
)

// Account types follow the usual five-way chart-of-accounts split.
type AccountType string

const (
	AccountAsset     AccountType = "asset"
	AccountLiability AccountType = "liability"
	AccountEquity    AccountType = "equity"
	AccountIncome    AccountType = "income"
	AccountExpense   AccountType = "expense"
)

// TransactionType carries the direction of an amount. Amounts themselves
// are always positive; sign lives here, never in the number.
type TransactionType string

const (
	Debit  TransactionType = "debit"
	Credit TransactionType = "credit"
)

type ProjectStatus string

const (
	StatusPlanned   ProjectStatus = "planned"
	StatusActive    ProjectStatus = "active"
	StatusCompleted ProjectStatus = "completed"
	StatusOnHold    ProjectStatus = "on_hold"
)

type DeductionType string

const (
	DeductionTax       DeductionType = "tax"
	DeductionInsurance DeductionType = "insurance"
	DeductionLoan      DeductionType = "loan"
	DeductionAdvance   DeductionType = "advance"
	DeductionOther     DeductionType = "other"
)

type CategoryType string

const (
	CategoryIncome    CategoryType = "income"
	CategoryExpense   CategoryType = "expense"
	CategoryAsset     CategoryType = "asset"
	CategoryLiability CategoryType = "liability"
)

// OpeningReference tags the synthetic transaction emitted when an account
// is created with a non-zero opening balance.
const OpeningReference = "OPENING"

// Account is a ledger account. Balance is derived, never stored: opening
// balance plus the signed sum of its transactions.
type Account struct {
	ID             int64       `json:"id"`
	Code           string      `json:"code"`
	Name           string      `json:"name"`
	Type           AccountType `json:"type"`
	Category       string      `json:"category,omitempty"`
	OpeningBalance Money       `json:"opening_balance"`
	IsActive       bool        `json:"is_active"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// Transaction is one dated, typed ledger entry. It belongs to exactly one
// account and optionally to a project and an employee.
type Transaction struct {
	ID            int64           `json:"id"`
	Date          Date            `json:"date"`
	Description   string          `json:"description"`
	Amount        Money           `json:"amount"`
	Type          TransactionType `json:"transaction_type"`
	AccountID     int64           `json:"account_id"`
	ProjectID     *int64          `json:"project_id,omitempty"`
	EmployeeID    *int64          `json:"employee_id,omitempty"`
	Category      string          `json:"category,omitempty"`
	Reference     string          `json:"reference,omitempty"`
	Notes         string          `json:"notes,omitempty"`
	FinancialYear string          `json:"financial_year,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

type Project struct {
	ID          int64         `json:"id"`
	Code        string        `json:"code"`
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	StartDate   *Date         `json:"start_date,omitempty"`
	EndDate     *Date         `json:"end_date,omitempty"`
	Budget      *Money        `json:"budget,omitempty"`
	Status      ProjectStatus `json:"status"`
	ClientName  string        `json:"client_name,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// Employee carries a monthly salary rate. Salary payments are recorded as
// credit transactions referencing the employee.
type Employee struct {
	ID           int64     `json:"id"`
	EmployeeCode string    `json:"employee_code"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Email        string    `json:"email,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	Department   string    `json:"department,omitempty"`
	Position     string    `json:"position,omitempty"`
	HireDate     *Date     `json:"hire_date,omitempty"`
	Salary       *Money    `json:"salary,omitempty"`
	IsActive     bool      `json:"is_active"`
	ProjectID    *int64    `json:"project_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// FullName joins first and last name for display and payment descriptions.
func (e Employee) FullName() string {
	return strings.TrimSpace(e.FirstName + " " + e.LastName)
}

type Deduction struct {
	ID               int64         `json:"id"`
	EmployeeID       int64         `json:"employee_id"`
	Amount           Money         `json:"amount"`
	Description      string        `json:"description"`
	Date             Date          `json:"date"`
	Type             DeductionType `json:"deduction_type"`
	IsRecurring      bool          `json:"is_recurring"`
	MonthlyDeduction *Money        `json:"monthly_deduction,omitempty"`
	FinancialYear    string        `json:"financial_year,omitempty"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

// Category rows are loosely coupled to transactions: a transaction's
// free-text category field need not resolve to any Category row.
type Category struct {
	ID          int64        `json:"id"`
	Name        string       `json:"name"`
	Type        CategoryType `json:"type"`
	Description string       `json:"description,omitempty"`
	IsActive    bool         `json:"is_active"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// DeductionLink associates a deduction with a transaction. AmountApplied
// is the portion of the deduction settled by that transaction and is
// independent of both the transaction and the deduction amounts.
type DeductionLink struct {
	TransactionID int64     `json:"transaction_id"`
	DeductionID   int64     `json:"deduction_id"`
	AmountApplied Money     `json:"amount_applied"`
	CreatedAt     time.Time `json:"created_at"`
}

// DeductionLinkInput selects an existing deduction to link to a
// transaction being written. A nil AmountApplied applies the deduction's
// own amount.
type DeductionLinkInput struct {
	DeductionID   int64  `json:"deduction_id"`
	AmountApplied *Money `json:"amount_applied,omitempty"`
}

func validAccountType(t AccountType) bool {
	switch t {
	case AccountAsset, AccountLiability, AccountEquity, AccountIncome, AccountExpense:
		return true
	}
	return false
}

func validTransactionType(t TransactionType) bool {
	return t == Debit || t == Credit
}

func validProjectStatus(s ProjectStatus) bool {
	switch s {
	case StatusPlanned, StatusActive, StatusCompleted, StatusOnHold:
		return true
	}
	return false
}

func validDeductionType(t DeductionType) bool {
	switch t {
	case DeductionTax, DeductionInsurance, DeductionLoan, DeductionAdvance, DeductionOther:
		return true
	}
	return false
}

func validCategoryType(t CategoryType) bool {
	switch t {
	case CategoryIncome, CategoryExpense, CategoryAsset, CategoryLiability:
		return true
	}
	return false
}

// Validate checks field rules; uniqueness is enforced by the store.
func (a Account) Validate() error {
	errs := FieldErrors{}
	if strings.TrimSpace(a.Code) == "" {
		errs.Add("code", "account code is required")
	} else if len(a.Code) > 20 {
		errs.Add("code", "account code must be at most 20 characters")
	}
	if strings.TrimSpace(a.Name) == "" {
		errs.Add("name", "account name is required")
	}
	if !validAccountType(a.Type) {
		errs.Add("type", "account type must be one of: asset, liability, equity, income, expense")
	}
	return errs.OrNil()
}

func (t Transaction) Validate() error {
	errs := FieldErrors{}
	if t.Date.IsZero() {
		errs.Add("date", "transaction date is required")
	}
	if strings.TrimSpace(t.Description) == "" {
		errs.Add("description", "description is required")
	}
	if !t.Amount.IsPositive() {
		errs.Add("amount", "amount must be greater than 0")
	}
	if !validTransactionType(t.Type) {
		errs.Add("transaction_type", "transaction type must be debit or credit")
	}
	if t.AccountID == 0 {
		errs.Add("account_id", "account selection is required")
	}
	return errs.OrNil()
}

func (p Project) Validate() error {
	errs := FieldErrors{}
	if strings.TrimSpace(p.Code) == "" {
		errs.Add("code", "project code is required")
	} else if len(p.Code) > 20 {
		errs.Add("code", "project code must be at most 20 characters")
	}
	if strings.TrimSpace(p.Name) == "" {
		errs.Add("name", "project name is required")
	}
	if !validProjectStatus(p.Status) {
		errs.Add("status", "project status must be one of: planned, active, completed, on_hold")
	}
	if p.StartDate != nil && p.EndDate != nil && p.EndDate.Before(p.StartDate.Time) {
		errs.Add("end_date", "end date must be after or equal to start date")
	}
	if p.Budget != nil && p.Budget.IsNegative() {
		errs.Add("budget", "budget must be greater than or equal to 0")
	}
	return errs.OrNil()
}

func (e Employee) Validate() error {
	errs := FieldErrors{}
	if strings.TrimSpace(e.EmployeeCode) == "" {
		errs.Add("employee_code", "employee code is required")
	} else if len(e.EmployeeCode) > 20 {
		errs.Add("employee_code", "employee code must be at most 20 characters")
	}
	if strings.TrimSpace(e.FirstName) == "" {
		errs.Add("first_name", "first name is required")
	}
	if strings.TrimSpace(e.LastName) == "" {
		errs.Add("last_name", "last name is required")
	}
	if e.Email != "" && !strings.Contains(e.Email, "@") {
		errs.Add("email", "please provide a valid email address")
	}
	if e.Salary != nil && e.Salary.IsNegative() {
		errs.Add("salary", "salary must be greater than or equal to 0")
	}
	return errs.OrNil()
}

func (d Deduction) Validate() error {
	errs := FieldErrors{}
	if d.EmployeeID == 0 {
		errs.Add("employee_id", "employee selection is required")
	}
	minAmount, _ := MoneyFromString("0.01")
	if d.Amount.Cmp(minAmount) < 0 {
		errs.Add("amount", "deduction amount must be greater than 0")
	}
	if strings.TrimSpace(d.Description) == "" {
		errs.Add("description", "deduction description is required")
	}
	if d.Date.IsZero() {
		errs.Add("date", "deduction date is required")
	}
	if !validDeductionType(d.Type) {
		errs.Add("deduction_type", "deduction type must be one of: tax, insurance, loan, advance, other")
	}
	if d.MonthlyDeduction != nil && d.MonthlyDeduction.IsNegative() {
		errs.Add("monthly_deduction", "monthly deduction must be greater than or equal to 0")
	}
	return errs.OrNil()
}

func (c Category) Validate() error {
	errs := FieldErrors{}
	if strings.TrimSpace(c.Name) == "" {
		errs.Add("name", "category name is required")
	}
	if !validCategoryType(c.Type) {
		errs.Add("type", "category type must be one of: income, expense, asset, liability")
	}
	return errs.OrNil()
}
