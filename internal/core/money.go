// Package core holds the bookkeeping domain: entities, filters, and the
// pure aggregation engines that turn ledger rows into computed figures.
//
// This file defines Money, a fixed-point decimal amount. All arithmetic is
// exact; rounding to two decimal places happens only at reporting and
// serialization edges.
package core

import (
	"bytes"
	"fmt"

	"github.com/shopspring/decimal"
)

// Money is an exact decimal amount. The zero value is zero money.
type Money struct {
	d decimal.Decimal
}

// MoneyFromString parses a decimal string like "1234.56".
func MoneyFromString(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("parse amount %q: %w", s, err)
	}
	return Money{d: d}, nil
}

// MoneyFromInt returns a whole-unit amount.
func MoneyFromInt(n int64) Money {
	return Money{d: decimal.NewFromInt(n)}
}

// MoneyFromDecimal wraps a raw decimal.
func MoneyFromDecimal(d decimal.Decimal) Money {
	return Money{d: d}
}

func (m Money) Add(o Money) Money { return Money{d: m.d.Add(o.d)} }
func (m Money) Sub(o Money) Money { return Money{d: m.d.Sub(o.d)} }
func (m Money) Neg() Money        { return Money{d: m.d.Neg()} }
func (m Money) Abs() Money        { return Money{d: m.d.Abs()} }

// Mul multiplies by an integer factor (months, etc).
func (m Money) Mul(n int64) Money {
	return Money{d: m.d.Mul(decimal.NewFromInt(n))}
}

func (m Money) IsZero() bool     { return m.d.IsZero() }
func (m Money) IsPositive() bool { return m.d.IsPositive() }
func (m Money) IsNegative() bool { return m.d.IsNegative() }

// Cmp returns -1, 0 or 1 comparing m against o.
func (m Money) Cmp(o Money) int { return m.d.Cmp(o.d) }

// ClampZero returns m, or zero when m is negative.
func (m Money) ClampZero() Money {
	if m.d.IsNegative() {
		return Money{}
	}
	return m
}

// Round2 rounds half-up to two decimal places.
func (m Money) Round2() Money { return Money{d: m.d.Round(2)} }

// Decimal exposes the underlying decimal for chained computation.
func (m Money) Decimal() decimal.Decimal { return m.d }

// String formats with exactly two decimal places.
func (m Money) String() string { return m.d.StringFixed(2) }

// PercentOf returns m/total*100 rounded to two decimals, or zero when total
// is not positive. Used for profit margins and budget utilization.
func (m Money) PercentOf(total Money) Money {
	if !total.d.IsPositive() {
		return Money{}
	}
	return Money{d: m.d.Div(total.d).Mul(decimal.NewFromInt(100)).Round(2)}
}

// Half returns half of m. The credit-limit policy is 50% of budget.
func (m Money) Half() Money {
	return Money{d: m.d.Div(decimal.NewFromInt(2))}
}

// DivInt divides by an integer count, rounded to two decimals. Zero count
// yields zero, so averages over empty sets never fault.
func (m Money) DivInt(n int64) Money {
	if n == 0 {
		return Money{}
	}
	return Money{d: m.d.Div(decimal.NewFromInt(n)).Round(2)}
}

// MarshalJSON emits a plain JSON number with two decimal places.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.d.StringFixed(2)), nil
}

// UnmarshalJSON accepts either a JSON number or a quoted decimal string.
func (m *Money) UnmarshalJSON(b []byte) error {
	b = bytes.Trim(bytes.TrimSpace(b), `"`)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*m = Money{}
		return nil
	}
	d, err := decimal.NewFromString(string(b))
	if err != nil {
		return fmt.Errorf("parse amount %q: %w", b, err)
	}
	m.d = d
	return nil
}
