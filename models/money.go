package models

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ErrDivisionByZero is returned by Money.Div when the divisor is zero.
// Callers must not swallow it; a zero divisor in a money calculation points
// at corrupt document data, not a formatting problem.
var ErrDivisionByZero = errors.New("money: division by zero")

// Money is a monetary value with two-decimal persistence semantics.
// Arithmetic keeps full decimal precision across chained operations;
// Round2 is applied only when a value is about to be stored or rendered.
// Money is never backed by a binary float.
type Money struct {
	decimal.Decimal
}

// NewMoney wraps a decimal as Money.
func NewMoney(d decimal.Decimal) Money { return Money{d} }

// MoneyFromString parses a decimal string ("12.34") into Money.
func MoneyFromString(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, err
	}
	return Money{d}, nil
}

// MoneyFromInt returns a whole-unit Money value.
func MoneyFromInt(n int64) Money { return Money{decimal.NewFromInt(n)} }

// Add returns m + o at full precision.
func (m Money) Add(o Money) Money { return Money{m.Decimal.Add(o.Decimal)} }

// Sub returns m − o at full precision.
func (m Money) Sub(o Money) Money { return Money{m.Decimal.Sub(o.Decimal)} }

// Mul returns m × d at full precision.
func (m Money) Mul(d decimal.Decimal) Money { return Money{m.Decimal.Mul(d)} }

// Div returns m ÷ d, or ErrDivisionByZero when d is zero.
func (m Money) Div(d decimal.Decimal) (Money, error) {
	if d.IsZero() {
		return Money{}, ErrDivisionByZero
	}
	return Money{m.Decimal.Div(d)}, nil
}

// PercentOf returns p percent of m, i.e. m × p ÷ 100, at full precision.
func (m Money) PercentOf(p decimal.Decimal) Money {
	return Money{m.Decimal.Mul(p).Div(decimal.NewFromInt(100))}
}

// Round2 rounds to two decimal places, half away from zero.
func (m Money) Round2() Money { return Money{m.Decimal.Round(2)} }

// Neg returns −m.
func (m Money) Neg() Money { return Money{m.Decimal.Neg()} }

// StringFixed2 renders the value with exactly two decimals and a period
// separator, the form required inside Finvoice XML and for storage.
func (m Money) StringFixed2() string { return m.Decimal.StringFixed(2) }

// Equal reports numeric equality regardless of exponent.
func (m Money) Equal(o Money) bool { return m.Decimal.Equal(o.Decimal) }
