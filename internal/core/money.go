// Package core provides money parsing and handling utilities.
//
// Amounts are kept as integer minor units so that totals are exact.
// Parsing goes through shopspring/decimal and display through go-money.
package core

import (
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is the ISO code used for display when none is configured.
const DefaultCurrency = "BDT"

// Money is an amount in minor units (cents, paisa).
type Money struct {
	Cents int64
}

// Validate accepts strictly positive amounts, the rule for expense items.
func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (m Money) Add(n Money) Money { return Money{Cents: m.Cents + n.Cents} }
func (m Money) Sub(n Money) Money { return Money{Cents: m.Cents - n.Cents} }

func (m Money) IsZero() bool     { return m.Cents == 0 }
func (m Money) IsNegative() bool { return m.Cents < 0 }

// Decimal returns the amount in major units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// String renders the amount with two decimals and no currency, e.g. 1954.50.
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// Format renders the amount for display in the given currency, e.g. ৳1,954.50.
func (m Money) Format(currency string) string {
	if currency == "" {
		currency = DefaultCurrency
	}
	return money.New(m.Cents, currency).Display()
}

// FromDecimal converts a major unit decimal, rounding half away from zero to
// two places.
func FromDecimal(d decimal.Decimal) Money {
	return Money{Cents: d.Round(2).Shift(2).IntPart()}
}

// ParseDecimal parses a non-negative amount.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and
// rounds half-up on the third decimal place. Signs and exponents are rejected.
//
// Examples:
//
//	ParseDecimal("12.34")  -> 1234 cents
//	ParseDecimal("12,345") -> 1235 cents
//	ParseDecimal("0")      -> 0 cents
func ParseDecimal(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.ContainsAny(s, "+-eE") {
		return Money{}, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	// Keep Shift(2).IntPart() inside int64.
	if d.GreaterThan(decimal.New(1, 15)) {
		return Money{}, ErrInvalidAmount
	}
	return FromDecimal(d), nil
}

// ParseAmount parses a strictly positive amount, the rule for expenses.
func ParseAmount(s string) (Money, error) {
	m, err := ParseDecimal(s)
	if err != nil {
		return Money{}, err
	}
	if err := m.Validate(); err != nil {
		return Money{}, err
	}
	return m, nil
}
