package offer

import (
	"encoding/json"
	"errors"
	"slices"
	"testing"

	"github.com/eugenenazirov/offer-desk/internal/form"
)

func completeDraft() Draft {
	return Draft{
		Mode:            "FCL",
		MovementType:    "Door to Door",
		Incoterms:       "FOB",
		CountriesCities: "Turkey - Istanbul",
		PackageType:     "Carton",
		Unit1:           "cm",
		Unit1Value:      "6",
		Unit2:           "kg",
		Unit2Value:      "4",
		Currency:        "USD",
	}
}

func TestDraftWithReturnsCopy(t *testing.T) {
	t.Parallel()

	original := Draft{}
	updated, err := original.With(FieldMode, "LCL")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if original.Mode != "" {
		t.Fatalf("expected original draft to stay unchanged, got mode %q", original.Mode)
	}
	if updated.Mode != "LCL" {
		t.Fatalf("expected updated mode LCL, got %q", updated.Mode)
	}

	for _, field := range Fields {
		d, err := Draft{}.With(field, "x")
		if err != nil {
			t.Fatalf("With(%q) returned error: %v", field, err)
		}
		if got, _ := d.Value(field); got != "x" {
			t.Fatalf("Value(%q) = %q after With", field, got)
		}
	}
}

func TestDraftWithUnknownField(t *testing.T) {
	t.Parallel()

	if _, err := (Draft{}).With("palletCount", "3"); !errors.Is(err, ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}
	if _, err := (Draft{}).Value("id"); !errors.Is(err, ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}
}

func TestDraftValidate(t *testing.T) {
	t.Parallel()

	if v := completeDraft().Validate(); !v.Valid() {
		t.Fatalf("expected complete draft to be valid, got %v", v)
	}

	empty := Draft{}.Validate()
	if !slices.Equal(empty.Fields(), sortedFields()) {
		t.Fatalf("expected every field to be invalid, got %v", empty.Fields())
	}
	for _, field := range Fields {
		if !slices.Contains(empty[field], form.RuleRequired) {
			t.Fatalf("expected %s to violate required, got %v", field, empty[field])
		}
	}

	badMode, _ := completeDraft().With(FieldMode, "AIR")
	v := badMode.Validate()
	if !slices.Equal(v[FieldMode], []form.Rule{form.RuleOneOf}) {
		t.Fatalf("expected mode to violate oneOf, got %v", v)
	}

	blank, _ := completeDraft().With(FieldCurrency, "   ")
	if v := blank.Validate(); !slices.Equal(v.Fields(), []string{FieldCurrency}) {
		t.Fatalf("expected only currency to be invalid, got %v", v)
	}
}

func TestDraftUnitVisibility(t *testing.T) {
	t.Parallel()

	d := Draft{}
	if d.Unit1ValueVisible() || d.Unit2ValueVisible() {
		t.Fatalf("expected unit values hidden before units are chosen")
	}
	d, _ = d.With(FieldUnit1, "cm")
	if !d.Unit1ValueVisible() || d.Unit2ValueVisible() {
		t.Fatalf("expected only unit1 value visible")
	}
}

func TestDraftCalculationRequest(t *testing.T) {
	t.Parallel()

	d, _ := completeDraft().With(FieldUnit2Value, "abc")
	req := d.CalculationRequest()
	if req.PackageType != "Carton" || req.Unit1Value != 6 || req.Unit2Value != 0 {
		t.Fatalf("unexpected calculation request %+v", req)
	}
}

func TestRecordDecodesNumericAndStringIDs(t *testing.T) {
	t.Parallel()

	var records []Record
	payload := `[{"id":7,"mode":"FCL","palletCount":3},{"id":"a1f3","mode":"LCL","palletCount":12}]`
	if err := json.Unmarshal([]byte(payload), &records); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if records[0].ID != "7" || records[1].ID != "a1f3" {
		t.Fatalf("unexpected ids %q, %q", records[0].ID, records[1].ID)
	}
	if records[0].Mode != "FCL" || records[1].PalletCount != 12 {
		t.Fatalf("unexpected records %+v", records)
	}
}

func TestSubmissionFlattensDraft(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(Submission{Draft: completeDraft(), PalletCount: 16})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var body map[string]any
	if err := json.Unmarshal(data, &body); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if body["mode"] != "FCL" || body["palletCount"] != float64(16) {
		t.Fatalf("unexpected payload %s", data)
	}
	if _, nested := body["Draft"]; nested {
		t.Fatalf("expected draft fields at top level, got %s", data)
	}
}

func sortedFields() []string {
	out := slices.Clone(Fields)
	slices.Sort(out)
	return out
}
