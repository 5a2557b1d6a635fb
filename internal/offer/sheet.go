package offer

import (
	"errors"
	"sync"

	"github.com/eugenenazirov/offer-desk/internal/calculator"
	"github.com/eugenenazirov/offer-desk/internal/form"
)

// Estimate is the outcome shown next to the form: the pallet count and the mode verdict.
type Estimate struct {
	PalletCount int    `json:"palletCount"`
	Feasible    bool   `json:"feasible"`
	Message     string `json:"message,omitempty"`
}

// Sheet is one offer-entry session. It owns the current draft and the last
// successful pallet count, which survives failed recalculations.
type Sheet struct {
	calc       calculator.Calculator
	dimensions map[string]calculator.PackageDimension

	mu          sync.Mutex
	draft       Draft
	palletCount int
	calculated  bool
	message     string

	watchers form.Watchers
	scope    form.Scope
}

// NewSheet starts a session for draft. Changes to the package type or unit
// values recalculate the estimate once one exists; a mode change re-runs the
// mode check. Close releases those listeners.
func NewSheet(calc calculator.Calculator, dimensions map[string]calculator.PackageDimension, draft Draft) *Sheet {
	s := &Sheet{
		calc:       calc,
		dimensions: dimensions,
		draft:      draft,
	}

	recalc := func(string, string) {
		if s.hasEstimate() {
			_, _ = s.Calculate()
		}
	}
	s.scope.Watch(&s.watchers, FieldPackageType, recalc)
	s.scope.Watch(&s.watchers, FieldUnit1Value, recalc)
	s.scope.Watch(&s.watchers, FieldUnit2Value, recalc)
	s.scope.Watch(&s.watchers, FieldMode, func(string, string) { s.recheckMode() })

	return s
}

// Set changes one field and notifies its listeners.
func (s *Sheet) Set(field, value string) error {
	s.mu.Lock()
	next, err := s.draft.With(field, value)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.draft = next
	s.mu.Unlock()

	s.watchers.Notify(field, value)
	return nil
}

// Draft returns the current draft.
func (s *Sheet) Draft() Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

// PalletCount returns the last successfully calculated pallet count.
func (s *Sheet) PalletCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.palletCount
}

// Message returns the current error or feasibility message, empty when none.
func (s *Sheet) Message() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.message
}

// Calculate computes the pallet count and checks the shipping mode.
// On a calculator error the previous pallet count is kept and the error is returned.
// An infeasible mode returns the estimate together with an error wrapping
// calculator.ErrModeInfeasible.
func (s *Sheet) Calculate() (Estimate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count, err := s.calc.CalculatePallets(s.draft.CalculationRequest(), s.dimensions)
	if err != nil {
		s.message = calculationMessage(err)
		return Estimate{PalletCount: s.palletCount, Message: s.message}, err
	}

	s.palletCount = count
	s.calculated = true
	return s.applyVerdict()
}

// Submission validates the draft, calculates it and returns the payload to persist.
// Any validation, calculation or mode error blocks the submission.
func (s *Sheet) Submission() (Submission, error) {
	if err := s.Draft().Validate().Err(); err != nil {
		return Submission{}, err
	}
	if _, err := s.Calculate(); err != nil {
		return Submission{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return Submission{Draft: s.draft, PalletCount: s.palletCount}, nil
}

// Close unregisters the sheet's listeners. It is safe to call more than once.
func (s *Sheet) Close() {
	s.scope.Close()
}

func (s *Sheet) hasEstimate() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calculated
}

func (s *Sheet) recheckMode() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.calculated {
		_, _ = s.applyVerdict()
	}
}

// applyVerdict must be called with s.mu held.
func (s *Sheet) applyVerdict() (Estimate, error) {
	verdict := calculator.CheckMode(s.draft.Mode, s.palletCount)
	s.message = verdict.Message
	return Estimate{
		PalletCount: s.palletCount,
		Feasible:    verdict.Feasible,
		Message:     verdict.Message,
	}, verdict.Err()
}

func calculationMessage(err error) string {
	switch {
	case errors.Is(err, calculator.ErrInvalidPackageType):
		return "Selected package type is not valid."
	case errors.Is(err, calculator.ErrInvalidDimension):
		return "Package dimensions and unit values must be positive numbers."
	default:
		return err.Error()
	}
}
