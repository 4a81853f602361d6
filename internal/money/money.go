// Package money converts between integer minor units and vendor major-unit
// amounts. Conversions into minor units round half to even.
package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

const defaultExponent int32 = 2

// Exponent returns the number of minor-unit digits for an ISO currency.
// Unknown or empty codes fall back to two digits.
func Exponent(code string) int32 {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return defaultExponent
	}
	unit, err := currency.ParseISO(code)
	if err != nil {
		return defaultExponent
	}
	scale, _ := currency.Standard.Rounding(unit)
	return int32(scale)
}

// ToMajor turns minor units into a decimal amount in the currency's major unit.
func ToMajor(minor int64, code string) decimal.Decimal {
	return decimal.New(minor, -Exponent(code))
}

// FromMajor converts a major-unit amount into minor units. Digits beyond the
// currency exponent are rounded half to even and lost.
func FromMajor(amount decimal.Decimal, code string) int64 {
	return amount.Shift(Exponent(code)).RoundBank(0).IntPart()
}

// FromFloat converts a vendor float amount (e.g. Zuora 19.99) into minor units.
func FromFloat(amount float64, code string) int64 {
	return FromMajor(decimal.NewFromFloat(amount), code)
}

// ToFloat converts minor units into a float for vendors that only accept one.
func ToFloat(minor int64, code string) float64 {
	f, _ := ToMajor(minor, code).Float64()
	return f
}

// Display renders minor units as a fixed-point major-unit string ("19.99").
func Display(minor int64, code string) string {
	return ToMajor(minor, code).StringFixed(Exponent(code))
}

// ParseDisplay is the inverse of Display.
func ParseDisplay(value, code string) (int64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", value, err)
	}
	return FromMajor(d, code), nil
}

// Format renders "USD 19.99".
func Format(minor int64, code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return Display(minor, code)
	}
	return code + " " + Display(minor, code)
}
