package offer

import (
	"errors"
	"fmt"

	"github.com/eugenenazirov/offer-desk/internal/calculator"
	"github.com/eugenenazirov/offer-desk/internal/form"
)

// Field names, as used on the wire and in validation results.
const (
	FieldMode            = "mode"
	FieldMovementType    = "movementType"
	FieldIncoterms       = "incoterms"
	FieldCountriesCities = "countriesCities"
	FieldPackageType     = "packageType"
	FieldUnit1           = "unit1"
	FieldUnit1Value      = "unit1Value"
	FieldUnit2           = "unit2"
	FieldUnit2Value      = "unit2Value"
	FieldCurrency        = "currency"
)

// Fields lists every draft field in form order.
var Fields = []string{
	FieldMode,
	FieldMovementType,
	FieldIncoterms,
	FieldCountriesCities,
	FieldPackageType,
	FieldUnit1,
	FieldUnit1Value,
	FieldUnit2,
	FieldUnit2Value,
	FieldCurrency,
}

// ErrUnknownField is returned when a field name is not part of the draft.
var ErrUnknownField = errors.New("unknown offer field")

// Draft is an offer being entered. Values are kept as typed by the user.
// A Draft is a value: With returns a modified copy.
type Draft struct {
	Mode            string `json:"mode"`
	MovementType    string `json:"movementType"`
	Incoterms       string `json:"incoterms"`
	CountriesCities string `json:"countriesCities"`
	PackageType     string `json:"packageType"`
	Unit1           string `json:"unit1"`
	Unit1Value      string `json:"unit1Value"`
	Unit2           string `json:"unit2"`
	Unit2Value      string `json:"unit2Value"`
	Currency        string `json:"currency"`
}

// With returns a copy of d with field set to value.
func (d Draft) With(field, value string) (Draft, error) {
	ptr, err := d.field(field)
	if err != nil {
		return d, err
	}
	*ptr = value
	return d, nil
}

// Value returns the current value of field.
func (d Draft) Value(field string) (string, error) {
	ptr, err := d.field(field)
	if err != nil {
		return "", err
	}
	return *ptr, nil
}

// field resolves a field name against the receiver, which is already a copy.
func (d *Draft) field(name string) (*string, error) {
	switch name {
	case FieldMode:
		return &d.Mode, nil
	case FieldMovementType:
		return &d.MovementType, nil
	case FieldIncoterms:
		return &d.Incoterms, nil
	case FieldCountriesCities:
		return &d.CountriesCities, nil
	case FieldPackageType:
		return &d.PackageType, nil
	case FieldUnit1:
		return &d.Unit1, nil
	case FieldUnit1Value:
		return &d.Unit1Value, nil
	case FieldUnit2:
		return &d.Unit2, nil
	case FieldUnit2Value:
		return &d.Unit2Value, nil
	case FieldCurrency:
		return &d.Currency, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
}

// Unit1ValueVisible reports whether the first unit has been chosen, which
// makes its value input relevant.
func (d Draft) Unit1ValueVisible() bool {
	return form.Present(d.Unit1)
}

// Unit2ValueVisible is Unit1ValueVisible for the second unit.
func (d Draft) Unit2ValueVisible() bool {
	return form.Present(d.Unit2)
}

// Validate checks every field and returns the violated rules per field.
func (d Draft) Validate() form.Violations {
	violations := form.Violations{}
	for _, name := range Fields {
		value, _ := d.Value(name)
		if !form.Present(value) {
			violations.Add(name, form.RuleRequired)
		}
	}
	if form.Present(d.Mode) && d.Mode != calculator.ModeLCL && d.Mode != calculator.ModeFCL {
		violations.Add(FieldMode, form.RuleOneOf)
	}
	return violations
}

// CalculationRequest extracts the values the pallet calculator needs.
func (d Draft) CalculationRequest() calculator.Request {
	return calculator.Request{
		PackageType: d.PackageType,
		Unit1Value:  calculator.ParseUnitValue(d.Unit1Value),
		Unit2Value:  calculator.ParseUnitValue(d.Unit2Value),
	}
}
