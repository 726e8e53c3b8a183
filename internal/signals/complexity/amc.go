package complexity

import (
	"context"

	"smellsense/internal/signals"
	"smellsense/internal/unit"
)

// AMCSignal measures Average Method Complexity
type AMCSignal struct {
	wmcSignal *WMCSignal
}

// NewAMCSignal creates a new AMC signal
func NewAMCSignal() *AMCSignal {
	return &AMCSignal{
		wmcSignal: NewWMCSignal(),
	}
}

func (s *AMCSignal) Name() string {
	return "AMC"
}

func (s *AMCSignal) Category() signals.SignalCategory {
	return signals.CategoryComplexity
}

func (s *AMCSignal) Description() string {
	return "Average Method Complexity - WMC divided by number of methods"
}

func (s *AMCSignal) Calculate(ctx context.Context, u *unit.CodeUnit) (float64, error) {
	if err := signals.RequireStructure(u); err != nil {
		return 0, err
	}
	nom := float64(len(u.Structure.RegularMethods()))
	if nom == 0 {
		return 0, nil
	}

	wmc, err := s.wmcSignal.Calculate(ctx, u)
	if err != nil {
		return 0, err
	}

	return wmc / nom, nil
}
