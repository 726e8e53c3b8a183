package coupling

import (
	"context"

	"smellsense/internal/signals"
	"smellsense/internal/unit"
)

// SDEPSignal counts distinct service-type collaborators held in fields
type SDEPSignal struct{}

// NewSDEPSignal creates a new SDEP signal
func NewSDEPSignal() *SDEPSignal {
	return &SDEPSignal{}
}

func (s *SDEPSignal) Name() string {
	return "SDEP"
}

func (s *SDEPSignal) Category() signals.SignalCategory {
	return signals.CategoryCoupling
}

func (s *SDEPSignal) Description() string {
	return "Service Dependencies - distinct service, repository or client types held in fields"
}

func (s *SDEPSignal) Calculate(ctx context.Context, u *unit.CodeUnit) (float64, error) {
	return float64(u.Summary.ServiceDependencies), nil
}
