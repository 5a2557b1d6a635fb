package calculator

import "fmt"

// Feasibility messages shown to the user.
const (
	MessageLCLInfeasible = "LCL mode is not valid for 24 or more pallets. Please choose FCL."
	MessageFCLInfeasible = "FCL mode cannot ship more than 24 pallets."
)

const containerPalletLimit = 24

// Verdict is the outcome of the shipping-mode check.
type Verdict struct {
	Feasible bool   `json:"feasible"`
	Message  string `json:"message,omitempty"`
}

// Err returns nil for a feasible verdict and an error wrapping ErrModeInfeasible otherwise.
func (v Verdict) Err() error {
	if v.Feasible {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrModeInfeasible, v.Message)
}

// CheckMode reports whether mode can carry palletCount pallets.
// LCL stays below a full container; FCL carries at most one container.
func CheckMode(mode string, palletCount int) Verdict {
	switch {
	case mode == ModeLCL && palletCount >= containerPalletLimit:
		return Verdict{Message: MessageLCLInfeasible}
	case mode == ModeFCL && palletCount > containerPalletLimit:
		return Verdict{Message: MessageFCLInfeasible}
	default:
		return Verdict{Feasible: true}
	}
}
