package table

import "errors"

var (
	// ErrUnknownColumn is returned when a column name is not part of the table.
	ErrUnknownColumn = errors.New("unknown column")
	// ErrNotSortable is returned when sorting a column without a comparator.
	ErrNotSortable = errors.New("column is not sortable")
	// ErrNotFilterable is returned when filtering a column without a predicate.
	ErrNotFilterable = errors.New("column is not filterable")
	// ErrUnknownFilterValue is returned when a filter value is not among the column's options.
	ErrUnknownFilterValue = errors.New("filter value is not an option of the column")
	// ErrSingleSelect is returned when more than one value is selected on a single-select column.
	ErrSingleSelect = errors.New("column accepts a single filter value")
	// ErrInvalidSortOrder is returned for sort orders other than ascend, descend or none.
	ErrInvalidSortOrder = errors.New("invalid sort order")
)
