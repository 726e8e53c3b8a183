package size

import (
	"context"

	"smellsense/internal/signals"
	"smellsense/internal/unit"
)

// LOCSignal measures Lines of Code
type LOCSignal struct{}

// NewLOCSignal creates a new LOC signal
func NewLOCSignal() *LOCSignal {
	return &LOCSignal{}
}

func (s *LOCSignal) Name() string {
	return "LOC"
}

func (s *LOCSignal) Category() signals.SignalCategory {
	return signals.CategorySize
}

func (s *LOCSignal) Description() string {
	return "Lines of Code - lines carrying at least one token (blank lines and comments excluded)"
}

func (s *LOCSignal) Calculate(ctx context.Context, u *unit.CodeUnit) (float64, error) {
	return float64(u.Summary.LineCount), nil
}

// LOCNAMMSignal measures Lines of Code without Accessors/Mutators
type LOCNAMMSignal struct {
	locSignal *LOCSignal
}

// NewLOCNAMMSignal creates a new LOCNAMM signal
func NewLOCNAMMSignal() *LOCNAMMSignal {
	return &LOCNAMMSignal{
		locSignal: NewLOCSignal(),
	}
}

func (s *LOCNAMMSignal) Name() string {
	return "LOCNAMM"
}

func (s *LOCNAMMSignal) Category() signals.SignalCategory {
	return signals.CategorySize
}

func (s *LOCNAMMSignal) Description() string {
	return "Lines of Code without Accessors/Mutators - LOC excluding simple getters/setters"
}

func (s *LOCNAMMSignal) Calculate(ctx context.Context, u *unit.CodeUnit) (float64, error) {
	if err := signals.RequireStructure(u); err != nil {
		return 0, err
	}
	totalLOC, err := s.locSignal.Calculate(ctx, u)
	if err != nil {
		return 0, err
	}

	accessorLOC := 0
	for _, method := range u.Structure.RegularMethods() {
		if method.IsAccessor() {
			accessorLOC += method.CodeLines
		}
	}

	result := totalLOC - float64(accessorLOC)
	if result < 0 {
		result = 0
	}
	return result, nil
}
