package table

import (
	"fmt"
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/eugenenazirov/offer-desk/internal/offer"
)

// Model is the view state of the offer list: per-column sort order, filter
// options and filter selections. A Model is not safe for concurrent use.
type Model struct {
	columns    []*column
	index      map[string]*column
	vocabulary offer.Vocabulary
	collator   *collate.Collator
}

// Option configures a Model.
type Option func(*Model)

// WithLocale sets the language used to compare text when sorting.
func WithLocale(tag language.Tag) Option {
	return func(m *Model) {
		m.collator = collate.New(tag)
	}
}

// NewModel returns a model with the fixed offer columns, no sort and empty filter lists.
func NewModel(opts ...Option) *Model {
	m := &Model{
		columns:  defaultColumns(),
		collator: collate.New(language.English),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.index = make(map[string]*column, len(m.columns))
	for _, c := range m.columns {
		m.index[c.name] = c
		if c.filterable() {
			c.options = []FilterOption{}
		}
	}
	return m
}

// RegenerateFilterOptions replaces the filter list of every vocabulary-backed
// column with the vocabulary values, in vocabulary order. Previous options and
// selections of those columns are dropped.
func (m *Model) RegenerateFilterOptions(vocabulary offer.Vocabulary) {
	m.vocabulary = vocabulary
	for _, c := range m.columns {
		if !c.filterable() {
			continue
		}
		values := c.source(vocabulary)
		options := make([]FilterOption, 0, len(values))
		for _, v := range values {
			options = append(options, FilterOption{Text: v, Value: v})
		}
		c.options = options
		c.selected = nil
	}
}

// ResetSortAndFilters clears every sort order and regenerates the filter
// lists from the last vocabulary.
func (m *Model) ResetSortAndFilters() {
	for _, c := range m.columns {
		c.order = SortNone
	}
	m.RegenerateFilterOptions(m.vocabulary)
}

// SetSort sets the sort order of a column. Only one column sorts at a time,
// so a non-empty order clears the others.
func (m *Model) SetSort(name string, order SortOrder) error {
	c, err := m.sortableColumn(name)
	if err != nil {
		return err
	}
	switch order {
	case SortNone, SortAscending, SortDescending:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidSortOrder, order)
	}
	if order != SortNone {
		for _, other := range m.columns {
			other.order = SortNone
		}
	}
	c.order = order
	return nil
}

// CycleSort advances a column through none -> ascend -> descend -> none and
// returns the new order.
func (m *Model) CycleSort(name string) (SortOrder, error) {
	c, err := m.sortableColumn(name)
	if err != nil {
		return SortNone, err
	}
	next := c.order.next()
	if err := m.SetSort(name, next); err != nil {
		return SortNone, err
	}
	return next, nil
}

// ToggleFilter selects value on a column, or deselects it when already selected.
// On a single-select column selecting a value replaces the previous one.
func (m *Model) ToggleFilter(name, value string) error {
	c, err := m.filterableColumn(name)
	if err != nil {
		return err
	}
	if !c.hasOption(value) {
		return fmt.Errorf("%w: %q on %s", ErrUnknownFilterValue, value, name)
	}
	if i := slices.Index(c.selected, value); i >= 0 {
		c.selected = slices.Delete(c.selected, i, i+1)
		return nil
	}
	if c.multiple {
		c.selected = append(c.selected, value)
	} else {
		c.selected = []string{value}
	}
	return nil
}

// SetFilter replaces the selection of a column. An empty selection clears the filter.
func (m *Model) SetFilter(name string, values []string) error {
	c, err := m.filterableColumn(name)
	if err != nil {
		return err
	}
	values = uniqueValues(values)
	if !c.multiple && len(values) > 1 {
		return fmt.Errorf("%w: %s", ErrSingleSelect, name)
	}
	for _, v := range values {
		if !c.hasOption(v) {
			return fmt.Errorf("%w: %q on %s", ErrUnknownFilterValue, v, name)
		}
	}
	c.selected = values
	return nil
}

// uniqueValues drops repeated values, keeping first occurrences in order.
func uniqueValues(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// Apply returns the records that pass every column filter, ordered by the
// sorted column. The input slice is left untouched.
func (m *Model) Apply(records []offer.Record) []offer.Record {
	out := make([]offer.Record, 0, len(records))
	for _, r := range records {
		if m.passes(r) {
			out = append(out, r)
		}
	}

	for _, c := range m.columns {
		if c.order == SortNone {
			continue
		}
		field, desc := c.field, c.order == SortDescending
		slices.SortStableFunc(out, func(a, b offer.Record) int {
			cmp := m.collator.CompareString(field(a), field(b))
			if desc {
				return -cmp
			}
			return cmp
		})
		break
	}
	return out
}

// ColumnView is a snapshot of one column for display.
type ColumnView struct {
	Name       string         `json:"name"`
	SortOrder  SortOrder      `json:"sortOrder,omitempty"`
	Sortable   bool           `json:"sortable"`
	Filterable bool           `json:"filterable"`
	Multiple   bool           `json:"filterMultiple"`
	Filters    []FilterOption `json:"listOfFilter"`
	Selected   []string       `json:"selected,omitempty"`
}

// Columns returns the columns in display order.
func (m *Model) Columns() []ColumnView {
	views := make([]ColumnView, 0, len(m.columns))
	for _, c := range m.columns {
		filters := slices.Clone(c.options)
		if filters == nil {
			filters = []FilterOption{}
		}
		views = append(views, ColumnView{
			Name:       c.name,
			SortOrder:  c.order,
			Sortable:   c.sortable,
			Filterable: c.filterable(),
			Multiple:   c.multiple,
			Filters:    filters,
			Selected:   slices.Clone(c.selected),
		})
	}
	return views
}

func (m *Model) passes(r offer.Record) bool {
	for _, c := range m.columns {
		if c.filterable() && !c.passes(r) {
			return false
		}
	}
	return true
}

func (m *Model) lookup(name string) (*column, error) {
	c, ok := m.index[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
	}
	return c, nil
}

func (m *Model) sortableColumn(name string) (*column, error) {
	c, err := m.lookup(name)
	if err != nil {
		return nil, err
	}
	if !c.sortable {
		return nil, fmt.Errorf("%w: %s", ErrNotSortable, name)
	}
	return c, nil
}

func (m *Model) filterableColumn(name string) (*column, error) {
	c, err := m.lookup(name)
	if err != nil {
		return nil, err
	}
	if !c.filterable() {
		return nil, fmt.Errorf("%w: %s", ErrNotFilterable, name)
	}
	return c, nil
}
