package calculator

import "errors"

var (
	// ErrInvalidPackageType is returned when the package type is missing from the dimension table
	// or has no pallet rule.
	ErrInvalidPackageType = errors.New("selected package type is not valid")
	// ErrInvalidDimension is returned when a divisor in the pallet arithmetic is zero, negative or not finite.
	ErrInvalidDimension = errors.New("package dimensions and unit values must be positive numbers")
	// ErrModeInfeasible is returned when the pallet count exceeds what the chosen shipping mode can carry.
	ErrModeInfeasible = errors.New("shipping mode cannot carry the calculated pallet count")
)
