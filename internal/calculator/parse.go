package calculator

import (
	"strings"

	"github.com/shopspring/decimal"
)

// maxUnitExponent bounds the decimal exponent accepted from user input.
const maxUnitExponent = 64

// ParseUnitValue converts a unit value as entered into a number.
// Empty, non-numeric or out-of-range text yields 0, which the calculator
// rejects for cartons.
func ParseUnitValue(raw string) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	d, err := decimal.NewFromString(raw)
	if err != nil || d.Exponent() < -maxUnitExponent || d.Exponent() > maxUnitExponent {
		return 0
	}
	return d.InexactFloat64()
}
