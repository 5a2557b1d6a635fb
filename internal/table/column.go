package table

import (
	"strconv"
	"strings"

	"github.com/eugenenazirov/offer-desk/internal/offer"
)

// Column names, in display order.
const (
	ColumnMode            = "Mode"
	ColumnMovementType    = "Movement Type"
	ColumnIncoterms       = "Incoterms"
	ColumnCountriesCities = "Countries-Cities"
	ColumnPackageType     = "Package Type"
	ColumnUnit1           = "Unit-1"
	ColumnUnit2           = "Unit-2"
	ColumnPalletCount     = "Pallet Count"
	ColumnCurrency        = "Currency"
)

// SortOrder is the sort state of a column.
type SortOrder string

const (
	SortNone       SortOrder = ""
	SortAscending  SortOrder = "ascend"
	SortDescending SortOrder = "descend"
)

// ParseSortOrder accepts ascend/descend (and asc/desc) or an empty string.
func ParseSortOrder(raw string) (SortOrder, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "none", "null":
		return SortNone, nil
	case "ascend", "asc":
		return SortAscending, nil
	case "descend", "desc":
		return SortDescending, nil
	default:
		return SortNone, ErrInvalidSortOrder
	}
}

// next advances the cycle none -> ascend -> descend -> none.
func (o SortOrder) next() SortOrder {
	switch o {
	case SortNone:
		return SortAscending
	case SortAscending:
		return SortDescending
	default:
		return SortNone
	}
}

// FilterOption is one entry of a column's filter list.
type FilterOption struct {
	Text  string `json:"text"`
	Value string `json:"value"`
}

// fieldFunc reads the text a column shows for a record.
type fieldFunc func(offer.Record) string

// vocabularyFunc selects the vocabulary set that feeds a column's filter list.
type vocabularyFunc func(offer.Vocabulary) []string

type column struct {
	name     string
	order    SortOrder
	field    fieldFunc
	sortable bool
	multiple bool
	options  []FilterOption
	selected []string
	// options are regenerated from the vocabulary only when source is set;
	// a column filters only when it has a source.
	source vocabularyFunc
}

func (c *column) filterable() bool {
	return c.source != nil
}

// passes reports whether any selected value is contained in the record's field.
func (c *column) passes(r offer.Record) bool {
	if len(c.selected) == 0 {
		return true
	}
	value := c.field(r)
	for _, want := range c.selected {
		if strings.Contains(value, want) {
			return true
		}
	}
	return false
}

func (c *column) hasOption(value string) bool {
	for _, opt := range c.options {
		if opt.Value == value {
			return true
		}
	}
	return false
}

func defaultColumns() []*column {
	return []*column{
		{
			name:     ColumnMode,
			field:    func(r offer.Record) string { return r.Mode },
			sortable: true,
			multiple: true,
			source:   func(v offer.Vocabulary) []string { return v.Modes },
		},
		{
			name:     ColumnMovementType,
			field:    func(r offer.Record) string { return r.MovementType },
			sortable: true,
			multiple: true,
			source:   func(v offer.Vocabulary) []string { return v.MovementTypes },
		},
		{
			name:     ColumnIncoterms,
			field:    func(r offer.Record) string { return r.Incoterms },
			sortable: true,
			multiple: true,
			source:   func(v offer.Vocabulary) []string { return v.Incoterms },
		},
		{
			name:     ColumnCountriesCities,
			field:    func(r offer.Record) string { return r.CountriesCities },
			sortable: true,
		},
		{
			name:     ColumnPackageType,
			field:    func(r offer.Record) string { return r.PackageType },
			sortable: true,
			source:   func(v offer.Vocabulary) []string { return v.PackageTypes },
		},
		{
			name:  ColumnUnit1,
			field: func(r offer.Record) string { return r.Unit1Value },
		},
		{
			name:  ColumnUnit2,
			field: func(r offer.Record) string { return r.Unit2Value },
		},
		{
			name:  ColumnPalletCount,
			field: func(r offer.Record) string { return strconv.Itoa(r.PalletCount) },
		},
		{
			name:     ColumnCurrency,
			field:    func(r offer.Record) string { return r.Currency },
			sortable: true,
		},
	}
}
