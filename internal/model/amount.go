package model

import (
	"errors"

	"github.com/shopspring/decimal"
)

const (
	MaxAmountIntegerDigits = 18
	MaxAmountScale         = 8
)

var ErrAmountOutOfRange = errors.New("amount allows at most 18 integer digits and 8 decimal places")

// CheckAmountRange bounds an amount by its digits and exponent only, so
// values like 1e50000000 are rejected without ever being expanded.
func CheckAmountRange(amount decimal.Decimal) error {
	exp := int(amount.Exponent())
	if exp < -MaxAmountScale {
		return ErrAmountOutOfRange
	}
	if amount.NumDigits()+exp > MaxAmountIntegerDigits {
		return ErrAmountOutOfRange
	}
	return nil
}
