package storage

import (
	"errors"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/eugenenazirov/offer-desk/internal/calculator"
)

const maxDimensions = 32

var (
	// ErrInvalidDimensions indicates the provided dimension table violates validation rules.
	ErrInvalidDimensions = errors.New("dimensions must contain between 1 and 32 uniquely named package types with non-negative measurements")
)

var defaultDimensions = []calculator.PackageDimension{
	{Type: calculator.PackageCarton, Width: 10, Length: 12, Height: 15},
	{Type: calculator.PackageBox, Width: 20, Length: 24, Height: 30},
	{Type: calculator.PackagePallet, Width: 40, Length: 48, Height: 60},
}

// Storage provides access to the package dimension table used by the calculator.
type Storage interface {
	GetDimensions() ([]calculator.PackageDimension, error)
	SetDimensions(dimensions []calculator.PackageDimension) error
	Lookup() (map[string]calculator.PackageDimension, error)
}

// MemoryStorage keeps the dimension table in-memory and guards access with a RWMutex.
type MemoryStorage struct {
	mu         sync.RWMutex
	dimensions []calculator.PackageDimension
}

// NewMemoryStorage initialises storage with a copy of the default dimensions.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		dimensions: cloneAndSort(defaultDimensions),
	}
}

// DefaultDimensions returns a copy of the default dimension table.
func DefaultDimensions() []calculator.PackageDimension {
	return cloneAndSort(defaultDimensions)
}

// GetDimensions returns a copy of the current table ordered by package type.
func (s *MemoryStorage) GetDimensions() ([]calculator.PackageDimension, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return cloneAndSort(s.dimensions), nil
}

// Lookup returns the current table keyed by package type.
func (s *MemoryStorage) Lookup() (map[string]calculator.PackageDimension, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]calculator.PackageDimension, len(s.dimensions))
	for _, dim := range s.dimensions {
		out[dim.Type] = dim
	}
	return out, nil
}

// SetDimensions validates, normalises, and stores the provided table.
func (s *MemoryStorage) SetDimensions(dimensions []calculator.PackageDimension) error {
	normalized, err := normalizeDimensions(dimensions)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.dimensions = normalized
	s.mu.Unlock()

	return nil
}

func cloneAndSort(src []calculator.PackageDimension) []calculator.PackageDimension {
	if len(src) == 0 {
		return []calculator.PackageDimension{}
	}

	out := make([]calculator.PackageDimension, len(src))
	copy(out, src)
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out
}

func normalizeDimensions(dimensions []calculator.PackageDimension) ([]calculator.PackageDimension, error) {
	if len(dimensions) == 0 || len(dimensions) > maxDimensions {
		return nil, ErrInvalidDimensions
	}

	seen := make(map[string]struct{}, len(dimensions))
	out := make([]calculator.PackageDimension, 0, len(dimensions))
	for _, dim := range dimensions {
		dim.Type = strings.TrimSpace(dim.Type)
		if dim.Type == "" {
			return nil, ErrInvalidDimensions
		}
		if _, dup := seen[dim.Type]; dup {
			return nil, ErrInvalidDimensions
		}
		if !measurement(dim.Width) || !measurement(dim.Length) || !measurement(dim.Height) {
			return nil, ErrInvalidDimensions
		}
		seen[dim.Type] = struct{}{}
		out = append(out, dim)
	}
	return cloneAndSort(out), nil
}

// measurement accepts zero so degenerate boxes reach the calculator's own guard.
func measurement(v float64) bool {
	return v >= 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
