package core

import (
	"sort"
	"strings"
)

// ProjectFinance is the per-project income/expense summary over an
// already-filtered transaction set.
type ProjectFinance struct {
	Project           Project           `json:"project"`
	TotalIncome       Money             `json:"total_income"`
	TotalExpenses     Money             `json:"total_expenses"`
	NetProfit         Money             `json:"net_profit"`
	ProfitMargin      Money             `json:"profit_margin"`
	Budget            *Money            `json:"budget,omitempty"`
	BudgetVariance    *Money            `json:"budget_variance,omitempty"`
	BudgetUtilization Money             `json:"budget_utilization"`
	TransactionCount  int               `json:"transaction_count"`
	CategoryBreakdown []CategorySummary `json:"category_breakdown"`
}

// CategorySummary groups filtered transactions by their free-text
// category field.
type CategorySummary struct {
	Category         string `json:"category"`
	Income           Money  `json:"income"`
	Expenses         Money  `json:"expenses"`
	Net              Money  `json:"net"`
	TransactionCount int    `json:"transaction_count"`
}

// ComputeProjectFinance reduces a project's filtered transactions into its
// finance summary. A project with no transactions reports all-zero
// figures, not an error.
func ComputeProjectFinance(p Project, txs []Transaction) ProjectFinance {
	income, expenses := SumByType(txs)
	net := income.Sub(expenses)

	pf := ProjectFinance{
		Project:           p,
		TotalIncome:       income,
		TotalExpenses:     expenses,
		NetProfit:         net,
		ProfitMargin:      net.PercentOf(income),
		Budget:            p.Budget,
		TransactionCount:  len(txs),
		CategoryBreakdown: CategoryBreakdown(txs),
	}
	if p.Budget != nil {
		variance := p.Budget.Sub(expenses)
		pf.BudgetVariance = &variance
		pf.BudgetUtilization = expenses.PercentOf(*p.Budget)
	}
	return pf
}

// CategoryBreakdown groups transactions by category text, sorted by
// category name so repeated reads yield identical payloads.
func CategoryBreakdown(txs []Transaction) []CategorySummary {
	byCategory := make(map[string]*CategorySummary)
	for _, t := range txs {
		cs, ok := byCategory[t.Category]
		if !ok {
			cs = &CategorySummary{Category: t.Category}
			byCategory[t.Category] = cs
		}
		if t.Type == Credit {
			cs.Income = cs.Income.Add(t.Amount)
		} else {
			cs.Expenses = cs.Expenses.Add(t.Amount)
		}
		cs.TransactionCount++
	}

	out := make([]CategorySummary, 0, len(byCategory))
	for _, cs := range byCategory {
		cs.Net = cs.Income.Sub(cs.Expenses)
		out = append(out, *cs)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out
}

// CardPolicy decides which transactions count as credit-card charges and
// which as card payments. The aggregation logic depends only on this
// interface, so the categorization heuristic can change without touching
// it.
type CardPolicy interface {
	IsCardCharge(t Transaction) bool
	IsCardPayment(t Transaction) bool
}

// SubstringCardPolicy is the original heuristic over the free-text
// category field: a charge is a debit whose category contains "credit"
// (case-insensitive); a payment is any transaction whose category
// contains "credit" followed by "payment".
type SubstringCardPolicy struct{}

func (SubstringCardPolicy) IsCardCharge(t Transaction) bool {
	return t.Type == Debit && strings.Contains(strings.ToLower(t.Category), "credit")
}

func (SubstringCardPolicy) IsCardPayment(t Transaction) bool {
	cat := strings.ToLower(t.Category)
	i := strings.Index(cat, "credit")
	if i < 0 {
		return false
	}
	return strings.Contains(cat[i+len("credit"):], "payment")
}

// CreditCardExposure tracks card charges against the placeholder credit
// limit of half the project budget.
type CreditCardExposure struct {
	Project            Project       `json:"project"`
	TotalCardExpenses  Money         `json:"total_credit_card_expenses"`
	CreditLimit        Money         `json:"credit_limit"`
	PaymentsMade       Money         `json:"payments_made"`
	OutstandingBalance Money         `json:"outstanding_balance"`
	CreditAvailable    Money         `json:"credit_available"`
	TransactionCount   int           `json:"transaction_count"`
	RecentTransactions []Transaction `json:"recent_transactions"`
}

const recentCardTransactionLimit = 10

// ComputeCreditCardExposure reduces a project's filtered transactions
// into its card exposure. Outstanding clamps at zero, and available
// credit subtracts the unclamped charges-minus-payments figure, matching
// the original report.
func ComputeCreditCardExposure(p Project, txs []Transaction, policy CardPolicy) CreditCardExposure {
	var charges []Transaction
	var chargeTotal, payments Money
	for _, t := range txs {
		if policy.IsCardCharge(t) {
			charges = append(charges, t)
			chargeTotal = chargeTotal.Add(t.Amount)
		}
		if policy.IsCardPayment(t) {
			payments = payments.Add(t.Amount)
		}
	}

	var limit Money
	if p.Budget != nil {
		limit = p.Budget.Half()
	}
	exposure := chargeTotal.Sub(payments)

	recent := make([]Transaction, len(charges))
	copy(recent, charges)
	sort.SliceStable(recent, func(i, j int) bool { return recent[i].Date.After(recent[j].Date.Time) })
	if len(recent) > recentCardTransactionLimit {
		recent = recent[:recentCardTransactionLimit]
	}

	return CreditCardExposure{
		Project:            p,
		TotalCardExpenses:  chargeTotal,
		CreditLimit:        limit,
		PaymentsMade:       payments,
		OutstandingBalance: exposure.ClampZero(),
		CreditAvailable:    limit.Sub(exposure).ClampZero(),
		TransactionCount:   len(charges),
		RecentTransactions: recent,
	}
}

// DeductionTypeSummary is one slice of a roll-up grouped by deduction
// type.
type DeductionTypeSummary struct {
	Type  DeductionType `json:"deduction_type"`
	Total Money         `json:"total"`
	Count int           `json:"count"`
}

// DeductionRollup aggregates the filtered deductions of a set of
// employees, typically everyone assigned to one project.
type DeductionRollup struct {
	Project             Project                `json:"project"`
	TotalDeductions     Money                  `json:"total_deductions"`
	DeductionCount      int                    `json:"deduction_count"`
	EmployeeCount       int                    `json:"employee_count"`
	ByType              []DeductionTypeSummary `json:"deduction_type_breakdown"`
	RecurringDeductions Money                  `json:"recurring_deductions"`
	Deductions          []Deduction            `json:"deductions"`
}

// ComputeDeductionRollup reduces filtered deductions into the project
// roll-up. The breakdown is sorted by type name for stable payloads.
func ComputeDeductionRollup(p Project, deds []Deduction, employeeCount int) DeductionRollup {
	rollup := DeductionRollup{
		Project:       p,
		EmployeeCount: employeeCount,
		Deductions:    deds,
	}
	if rollup.Deductions == nil {
		rollup.Deductions = []Deduction{}
	}

	byType := make(map[DeductionType]*DeductionTypeSummary)
	for _, d := range deds {
		rollup.TotalDeductions = rollup.TotalDeductions.Add(d.Amount)
		rollup.DeductionCount++
		if d.IsRecurring {
			rollup.RecurringDeductions = rollup.RecurringDeductions.Add(d.Amount)
		}
		ts, ok := byType[d.Type]
		if !ok {
			ts = &DeductionTypeSummary{Type: d.Type}
			byType[d.Type] = ts
		}
		ts.Total = ts.Total.Add(d.Amount)
		ts.Count++
	}

	rollup.ByType = make([]DeductionTypeSummary, 0, len(byType))
	for _, ts := range byType {
		rollup.ByType = append(rollup.ByType, *ts)
	}
	sort.Slice(rollup.ByType, func(i, j int) bool { return rollup.ByType[i].Type < rollup.ByType[j].Type })
	return rollup
}
