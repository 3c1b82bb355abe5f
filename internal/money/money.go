// Package money configures decimal amounts shared by all services.
package money

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var ErrNotPositive = errors.New("amount must be greater than zero")

func init() {
	// Amounts travel as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// Scale is the number of fractional digits kept in storage.
const Scale = 2

// Total multiplies a unit price by a quantity.
func Total(unit decimal.Decimal, quantity int) decimal.Decimal {
	return unit.Mul(decimal.NewFromInt(int64(quantity)))
}

// Parse reads an amount from its text form as stored in Postgres.
func Parse(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return d, nil
}

// RequirePositive returns ErrNotPositive for amounts <= 0.
func RequirePositive(d decimal.Decimal) error {
	if !d.IsPositive() {
		return ErrNotPositive
	}
	return nil
}

// DecodeAmount accepts a JSON number or a numeric string.
func DecodeAmount(raw json.RawMessage) (decimal.Decimal, error) {
	var d decimal.Decimal
	if len(raw) == 0 || string(raw) == "null" {
		return decimal.Zero, ErrNotPositive
	}
	if err := json.Unmarshal(raw, &d); err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount: %w", err)
	}
	return d, RequirePositive(d)
}
