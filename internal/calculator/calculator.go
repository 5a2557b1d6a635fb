package calculator

import (
	"fmt"
	"math"
)

// Pallet bay, in the unit system of PackageDimension.
const (
	bayWidth  = 40
	bayLength = 48
	bayHeight = 60
)

// Carton sub-grid the two unit values are fitted into.
const (
	cartonUnit1Span = 24
	cartonUnit2Span = 16
)

// maxPalletCount bounds results so tiny divisors cannot overflow int.
const maxPalletCount = math.MaxInt32

type bayCalculator struct{}

// New creates a Calculator that fills the fixed 40x48x60 pallet bay.
func New() Calculator {
	return &bayCalculator{}
}

func (c *bayCalculator) CalculatePallets(req Request, dimensions map[string]PackageDimension) (int, error) {
	dim, ok := dimensions[req.PackageType]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPackageType, req.PackageType)
	}

	switch req.PackageType {
	case PackageCarton:
		perBay, err := boxesPerBay(dim)
		if err != nil {
			return 0, err
		}
		if !positive(req.Unit1Value) || !positive(req.Unit2Value) {
			return 0, fmt.Errorf("%w: unit values %v and %v", ErrInvalidDimension, req.Unit1Value, req.Unit2Value)
		}
		boxCount := math.Floor(cartonUnit1Span/req.Unit1Value) * math.Floor(cartonUnit2Span/req.Unit2Value)
		return toCount(perBay * boxCount)
	case PackageBox:
		perBay, err := boxesPerBay(dim)
		if err != nil {
			return 0, err
		}
		return toCount(perBay)
	case PackagePallet:
		return 1, nil
	default:
		return 0, fmt.Errorf("%w: no pallet rule for %q", ErrInvalidPackageType, req.PackageType)
	}
}

func boxesPerBay(dim PackageDimension) (float64, error) {
	if !positive(dim.Width) || !positive(dim.Length) || !positive(dim.Height) {
		return 0, fmt.Errorf("%w: %s is %vx%vx%v", ErrInvalidDimension, dim.Type, dim.Width, dim.Length, dim.Height)
	}
	return math.Floor(bayWidth/dim.Width) * math.Floor(bayLength/dim.Length) * math.Floor(bayHeight/dim.Height), nil
}

func toCount(v float64) (int, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 || v > maxPalletCount {
		return 0, fmt.Errorf("%w: pallet count %v out of range", ErrInvalidDimension, v)
	}
	return int(v), nil
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
