// Package convert converts package measurements between unit systems.
package convert

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidLength is returned for empty, non-numeric, negative or
// out-of-range lengths.
var ErrInvalidLength = errors.New("length must be a non-negative number")

// maxExponent bounds the decimal exponent of a typed length.
const maxExponent = 64

var centimetresPerInch = decimal.RequireFromString("2.54")

// InchesToCentimetres converts a length typed in inches.
func InchesToCentimetres(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, ErrInvalidLength
	}
	inches, err := decimal.NewFromString(raw)
	if err != nil || inches.IsNegative() {
		return decimal.Zero, ErrInvalidLength
	}
	if exp := inches.Exponent(); exp < -maxExponent || exp > maxExponent {
		return decimal.Zero, ErrInvalidLength
	}
	return inches.Mul(centimetresPerInch), nil
}
