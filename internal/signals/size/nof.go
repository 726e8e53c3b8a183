package size

import (
	"context"

	"smellsense/internal/signals"
	"smellsense/internal/unit"
)

// NOFSignal measures Number of Fields
type NOFSignal struct{}

// NewNOFSignal creates a new NOF signal
func NewNOFSignal() *NOFSignal {
	return &NOFSignal{}
}

func (s *NOFSignal) Name() string {
	return "NOF"
}

func (s *NOFSignal) Category() signals.SignalCategory {
	return signals.CategorySize
}

func (s *NOFSignal) Description() string {
	return "Number of Fields - count of fields declared or assigned by the class"
}

func (s *NOFSignal) Calculate(ctx context.Context, u *unit.CodeUnit) (float64, error) {
	return float64(u.Summary.FieldCount), nil
}
