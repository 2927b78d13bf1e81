package core

import (
	"strconv"
	"strings"
	"time"
)

// Filter is the one immutable filter value shared by every aggregator.
// It is built once at the HTTP boundary and passed down; all fields are
// optional and AND-combined. Financial-year labels are opaque strings
// compared with exact equality: "FY2024" and "2024-2025" never match
// each other.
type Filter struct {
	FinancialYear string
	StartDate     *Date
	EndDate       *Date

	AccountID  *int64
	ProjectID  *int64
	EmployeeID *int64

	TransactionType TransactionType
	Category        string
	AccountType     AccountType

	DeductionType DeductionType
	IsRecurring   *bool

	CategoryKind CategoryType

	Status     ProjectStatus
	ClientName string

	Department string
	Position   string
	IsActive   *bool

	Search string

	Page int
	Size int
}

// WithFinancialYear returns a copy scoped to one financial year.
func (f Filter) WithFinancialYear(fy string) Filter {
	f.FinancialYear = fy
	return f
}

// WithDateRange returns a copy scoped to an inclusive date range.
func (f Filter) WithDateRange(start, end Date) Filter {
	f.StartDate = &start
	f.EndDate = &end
	return f
}

// MatchesTransaction applies the transaction-facing dimensions: financial
// year (exact), date range (inclusive on both bounds), entity ids, type
// and category.
func (f Filter) MatchesTransaction(t Transaction) bool {
	if f.FinancialYear != "" && t.FinancialYear != f.FinancialYear {
		return false
	}
	if f.StartDate != nil && !t.Date.OnOrAfter(*f.StartDate) {
		return false
	}
	if f.EndDate != nil && !t.Date.OnOrBefore(*f.EndDate) {
		return false
	}
	if f.AccountID != nil && t.AccountID != *f.AccountID {
		return false
	}
	if f.ProjectID != nil && (t.ProjectID == nil || *t.ProjectID != *f.ProjectID) {
		return false
	}
	if f.EmployeeID != nil && (t.EmployeeID == nil || *t.EmployeeID != *f.EmployeeID) {
		return false
	}
	if f.TransactionType != "" && t.Type != f.TransactionType {
		return false
	}
	if f.Category != "" && t.Category != f.Category {
		return false
	}
	return true
}

// MatchesDeduction applies the deduction-facing dimensions.
func (f Filter) MatchesDeduction(d Deduction) bool {
	if f.FinancialYear != "" && d.FinancialYear != f.FinancialYear {
		return false
	}
	if f.StartDate != nil && !d.Date.OnOrAfter(*f.StartDate) {
		return false
	}
	if f.EndDate != nil && !d.Date.OnOrBefore(*f.EndDate) {
		return false
	}
	if f.EmployeeID != nil && d.EmployeeID != *f.EmployeeID {
		return false
	}
	if f.DeductionType != "" && d.Type != f.DeductionType {
		return false
	}
	if f.IsRecurring != nil && d.IsRecurring != *f.IsRecurring {
		return false
	}
	return true
}

// FilterTransactions keeps the transactions matching f, preserving order.
func FilterTransactions(txs []Transaction, f Filter) []Transaction {
	out := make([]Transaction, 0, len(txs))
	for _, t := range txs {
		if f.MatchesTransaction(t) {
			out = append(out, t)
		}
	}
	return out
}

// FilterDeductions keeps the deductions matching f, preserving order.
func FilterDeductions(deds []Deduction, f Filter) []Deduction {
	out := make([]Deduction, 0, len(deds))
	for _, d := range deds {
		if f.MatchesDeduction(d) {
			out = append(out, d)
		}
	}
	return out
}

// FYWindow derives the April 1 – March 31 accrual window from a
// "YYYY-YYYY" financial-year label. Labels in any other format (for
// example "FY2024") have no derivable window and report ok=false; the
// label still works everywhere as an exact-match filter.
func FYWindow(label string) (start, end Date, ok bool) {
	parts := strings.Split(label, "-")
	if len(parts) != 2 {
		return Date{}, Date{}, false
	}
	startYear, err1 := strconv.Atoi(parts[0])
	endYear, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || startYear < 1000 || endYear < 1000 {
		return Date{}, Date{}, false
	}
	return NewDate(startYear, time.April, 1), NewDate(endYear, time.March, 31), true
}
