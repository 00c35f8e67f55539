// Package core provides money parsing and handling utilities.
//
// This file contains functions for parsing monetary amounts from user-entered
// text and converting between minor units and decimal representations.
package core

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

var maxUnits = decimal.New(math.MaxInt64/100, 0)

// ParseAmount converts user-entered text to Money with proper rounding.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and rounds
// half-up to two decimal places. Only strictly positive values are accepted:
// empty text, non-numbers, negatives and amounts that round to zero all fail
// with ErrInvalidAmount.
//
// Examples:
//
//	ParseAmount("12.34")  -> 1234 cents
//	ParseAmount("12,34")  -> 1234 cents
//	ParseAmount("12.345") -> 1235 cents (half-up)
//	ParseAmount("0.004")  -> ErrInvalidAmount
func ParseAmount(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")

	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	if d.IsNegative() || d.GreaterThan(maxUnits) {
		return Money{}, ErrInvalidAmount
	}

	m := fromDecimal(d)
	if m.Cents <= 0 {
		return Money{}, ErrInvalidAmount
	}
	return m, nil
}

// Units returns a Money of whole currency units.
func Units(n int64) Money {
	return Money{Cents: n * 100}
}

func fromDecimal(d decimal.Decimal) Money {
	return Money{Cents: d.Round(2).Shift(2).IntPart()}
}

// Decimal returns the amount as an exact decimal in currency units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// String renders whole amounts without a fraction ("4800") and everything
// else with exactly two decimals ("4800.50").
func (m Money) String() string {
	if m.Cents%100 == 0 {
		return m.Decimal().StringFixed(0)
	}
	return m.Decimal().StringFixed(2)
}

func (m Money) Add(o Money) Money { return Money{Cents: m.Cents + o.Cents} }

func (m Money) Sub(o Money) Money { return Money{Cents: m.Cents - o.Cents} }

// CheckedAdd is Add for non-negative operands; ok is false when the sum
// does not fit in an int64 of cents.
func (m Money) CheckedAdd(o Money) (sum Money, ok bool) {
	if o.Cents > 0 && m.Cents > math.MaxInt64-o.Cents {
		return Money{}, false
	}
	return m.Add(o), true
}

// MarshalJSON encodes the amount as a bare JSON number in currency units.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts a JSON number or a quoted decimal string, the latter
// being how older snapshots stored form text.
func (m *Money) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*m = Money{}
		return nil
	}
	s := strings.ReplaceAll(strings.Trim(string(b), `"`), ",", ".")
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("decode money %s: %w", b, ErrInvalidAmount)
	}
	if d.Abs().GreaterThan(maxUnits) {
		return fmt.Errorf("decode money %s: %w", b, ErrInvalidAmount)
	}
	*m = fromDecimal(d)
	return nil
}
