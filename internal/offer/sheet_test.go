package offer

import (
	"errors"
	"testing"

	"github.com/eugenenazirov/offer-desk/internal/calculator"
	"github.com/eugenenazirov/offer-desk/internal/form"
)

// sheetDimensions fit 2x2x4 boxes into the bay, 16 in total.
func sheetDimensions() map[string]calculator.PackageDimension {
	return map[string]calculator.PackageDimension{
		"Carton": {Type: "Carton", Width: 20, Length: 24, Height: 15},
		"Box":    {Type: "Box", Width: 20, Length: 24, Height: 15},
		"Pallet": {Type: "Pallet", Width: 40, Length: 48, Height: 60},
	}
}

func newTestSheet(t *testing.T, draft Draft) *Sheet {
	t.Helper()

	s := NewSheet(calculator.New(), sheetDimensions(), draft)
	t.Cleanup(s.Close)
	return s
}

func TestSheetCalculate(t *testing.T) {
	t.Parallel()

	d, _ := completeDraft().With(FieldPackageType, "Box")
	s := newTestSheet(t, d)

	est, err := s.Calculate()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if est.PalletCount != 16 || !est.Feasible || est.Message != "" {
		t.Fatalf("unexpected estimate %+v", est)
	}
}

func TestSheetCalculateInfeasibleMode(t *testing.T) {
	t.Parallel()

	s := newTestSheet(t, completeDraft())

	est, err := s.Calculate()
	if !errors.Is(err, calculator.ErrModeInfeasible) {
		t.Fatalf("expected ErrModeInfeasible, got %v", err)
	}
	if est.PalletCount != 256 || est.Feasible || est.Message != calculator.MessageFCLInfeasible {
		t.Fatalf("unexpected estimate %+v", est)
	}
	if s.Message() != calculator.MessageFCLInfeasible {
		t.Fatalf("expected sheet message to be set, got %q", s.Message())
	}
}

func TestSheetKeepsPalletCountOnInvalidPackageType(t *testing.T) {
	t.Parallel()

	d, _ := completeDraft().With(FieldPackageType, "Box")
	s := newTestSheet(t, d)
	if _, err := s.Calculate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := s.Set(FieldPackageType, "Barrel"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	est, err := s.Calculate()
	if !errors.Is(err, calculator.ErrInvalidPackageType) {
		t.Fatalf("expected ErrInvalidPackageType, got %v", err)
	}
	if s.PalletCount() != 16 || est.PalletCount != 16 {
		t.Fatalf("expected previous pallet count 16 to be kept, got %d", s.PalletCount())
	}
	if s.Message() != "Selected package type is not valid." {
		t.Fatalf("unexpected message %q", s.Message())
	}
}

func TestSheetRecalculatesOnFieldChange(t *testing.T) {
	t.Parallel()

	d, _ := completeDraft().With(FieldMode, "LCL")
	d, _ = d.With(FieldPackageType, "Pallet")
	s := newTestSheet(t, d)

	if err := s.Set(FieldPackageType, "Box"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.PalletCount() != 0 {
		t.Fatalf("expected no recalculation before the first estimate, got %d", s.PalletCount())
	}

	if _, err := s.Calculate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.Set(FieldPackageType, "Carton"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.PalletCount() != 256 {
		t.Fatalf("expected recalculated count 256, got %d", s.PalletCount())
	}
	if s.Message() != calculator.MessageLCLInfeasible {
		t.Fatalf("expected LCL message, got %q", s.Message())
	}

	if err := s.Set(FieldUnit1Value, "24"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.PalletCount() != 64 {
		t.Fatalf("expected recalculated count 64, got %d", s.PalletCount())
	}
}

func TestSheetModeChangeRechecksVerdict(t *testing.T) {
	t.Parallel()

	s := newTestSheet(t, completeDraft())
	_, _ = s.Calculate()
	if s.Message() != calculator.MessageFCLInfeasible {
		t.Fatalf("expected FCL message, got %q", s.Message())
	}

	if err := s.Set(FieldMode, "LCL"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Message() != calculator.MessageLCLInfeasible {
		t.Fatalf("expected LCL message after mode change, got %q", s.Message())
	}
}

func TestSheetSubmission(t *testing.T) {
	t.Parallel()

	t.Run("valid", func(t *testing.T) {
		d, _ := completeDraft().With(FieldPackageType, "Pallet")
		s := newTestSheet(t, d)

		sub, err := s.Submission()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if sub.PalletCount != 1 || sub.Draft != d {
			t.Fatalf("unexpected submission %+v", sub)
		}
	})

	t.Run("invalid form", func(t *testing.T) {
		s := newTestSheet(t, Draft{Mode: "FCL"})
		_, err := s.Submission()
		var verr *form.ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if _, ok := verr.Violations[FieldPackageType]; !ok {
			t.Fatalf("expected packageType violation, got %v", verr.Violations)
		}
		if s.PalletCount() != 0 {
			t.Fatalf("expected no calculation for an invalid form")
		}
	})

	t.Run("infeasible mode", func(t *testing.T) {
		s := newTestSheet(t, completeDraft())
		if _, err := s.Submission(); !errors.Is(err, calculator.ErrModeInfeasible) {
			t.Fatalf("expected ErrModeInfeasible, got %v", err)
		}
	})
}

func TestSheetCloseUnregistersListeners(t *testing.T) {
	t.Parallel()

	s := NewSheet(calculator.New(), sheetDimensions(), completeDraft())
	if s.watchers.Len() == 0 {
		t.Fatalf("expected listeners to be registered")
	}
	s.Close()
	s.Close()
	if n := s.watchers.Len(); n != 0 {
		t.Fatalf("expected no listeners after Close, got %d", n)
	}
}
