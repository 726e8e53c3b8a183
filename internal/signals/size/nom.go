package size

import (
	"context"

	"smellsense/internal/signals"
	"smellsense/internal/unit"
)

// NOMSignal measures Number of Methods
type NOMSignal struct{}

// NewNOMSignal creates a new NOM signal
func NewNOMSignal() *NOMSignal {
	return &NOMSignal{}
}

func (s *NOMSignal) Name() string {
	return "NOM"
}

func (s *NOMSignal) Category() signals.SignalCategory {
	return signals.CategorySize
}

func (s *NOMSignal) Description() string {
	return "Number of Methods - count of methods in the class, constructors excluded"
}

func (s *NOMSignal) Calculate(ctx context.Context, u *unit.CodeUnit) (float64, error) {
	return float64(u.Summary.MethodCount), nil
}

// NOMNAMMSignal measures Number of Methods without Accessors/Mutators
type NOMNAMMSignal struct{}

// NewNOMNAMMSignal creates a new NOMNAMM signal
func NewNOMNAMMSignal() *NOMNAMMSignal {
	return &NOMNAMMSignal{}
}

func (s *NOMNAMMSignal) Name() string {
	return "NOMNAMM"
}

func (s *NOMNAMMSignal) Category() signals.SignalCategory {
	return signals.CategorySize
}

func (s *NOMNAMMSignal) Description() string {
	return "Number of Methods without Accessors/Mutators - method count excluding simple getters/setters"
}

func (s *NOMNAMMSignal) Calculate(ctx context.Context, u *unit.CodeUnit) (float64, error) {
	if err := signals.RequireStructure(u); err != nil {
		return 0, err
	}
	return float64(len(u.Structure.NonAccessorMethods())), nil
}
