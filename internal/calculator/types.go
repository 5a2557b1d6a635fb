package calculator

// Package types with a pallet rule.
const (
	PackageCarton = "Carton"
	PackageBox    = "Box"
	PackagePallet = "Pallet"
)

// Shipping modes.
const (
	ModeLCL = "LCL"
	ModeFCL = "FCL"
)

// PackageDimension holds the external measurements of a package type.
// Width, Length and Height share the unit system of the pallet bay.
type PackageDimension struct {
	Type   string  `json:"type" yaml:"type"`
	Width  float64 `json:"width" yaml:"width"`
	Length float64 `json:"length" yaml:"length"`
	Height float64 `json:"height" yaml:"height"`
}

// Request carries the draft values the pallet count depends on.
type Request struct {
	PackageType string
	Unit1Value  float64
	Unit2Value  float64
}

// Calculator describes the behaviour required from a pallet calculator.
type Calculator interface {
	CalculatePallets(req Request, dimensions map[string]PackageDimension) (int, error)
}
