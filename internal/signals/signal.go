package signals

import (
	"context"
	"errors"
	"sort"

	"smellsense/internal/unit"
)

// ErrNoStructure is returned by signals that need a parsed unit
var ErrNoStructure = errors.New("unit has no structure")

// Signal represents any measurable metric/signal about code
type Signal interface {
	// Name returns the unique identifier for this signal
	Name() string

	// Category returns the category this signal belongs to
	Category() SignalCategory

	// Calculate computes the signal value for a code unit
	Calculate(ctx context.Context, u *unit.CodeUnit) (float64, error)

	// Description returns a human-readable description
	Description() string
}

// SignalCategory groups related signals
type SignalCategory string

const (
	CategorySize       SignalCategory = "size"
	CategoryComplexity SignalCategory = "complexity"
	CategoryCohesion   SignalCategory = "cohesion"
	CategoryCoupling   SignalCategory = "coupling"
)

// SignalRegistry manages all available signals
type SignalRegistry struct {
	signals map[string]Signal
}

// NewSignalRegistry creates a new signal registry
func NewSignalRegistry() *SignalRegistry {
	return &SignalRegistry{
		signals: make(map[string]Signal),
	}
}

// Register adds a signal to the registry
func (r *SignalRegistry) Register(signal Signal) {
	r.signals[signal.Name()] = signal
}

// Get retrieves a signal by name
func (r *SignalRegistry) Get(name string) (Signal, bool) {
	signal, ok := r.signals[name]
	return signal, ok
}

// GetByCategory returns all signals in a category, sorted by name
func (r *SignalRegistry) GetByCategory(category SignalCategory) []Signal {
	var result []Signal
	for _, signal := range r.GetAll() {
		if signal.Category() == category {
			result = append(result, signal)
		}
	}
	return result
}

// GetAll returns all registered signals, sorted by name
func (r *SignalRegistry) GetAll() []Signal {
	result := make([]Signal, 0, len(r.signals))
	for _, signal := range r.signals {
		result = append(result, signal)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name() < result[j].Name() })
	return result
}

// CalculateAll calculates all registered signals for a unit. Signals that
// fail are left out of the result.
func (r *SignalRegistry) CalculateAll(ctx context.Context, u *unit.CodeUnit) map[string]float64 {
	results := make(map[string]float64, len(r.signals))
	for name, signal := range r.signals {
		value, err := signal.Calculate(ctx, u)
		if err != nil {
			continue
		}
		results[name] = value
	}
	return results
}

// RequireStructure returns ErrNoStructure for units without a structure
func RequireStructure(u *unit.CodeUnit) error {
	if u == nil || u.Structure == nil {
		return ErrNoStructure
	}
	return nil
}
