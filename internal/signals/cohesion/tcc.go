package cohesion

import (
	"context"

	"smellsense/internal/signals"
	"smellsense/internal/signals/utils"
	"smellsense/internal/unit"
)

// TCCSignal measures Tight Class Cohesion
// TCC = Number of Directly Connected method pairs / Total possible pairs
// Two methods are directly connected if they access at least one common field
type TCCSignal struct {
	fieldAnalyzer *utils.FieldAccessAnalyzer
}

// NewTCCSignal creates a new TCC signal
func NewTCCSignal() *TCCSignal {
	return &TCCSignal{
		fieldAnalyzer: utils.NewFieldAccessAnalyzer(),
	}
}

func (s *TCCSignal) Name() string {
	return "TCC"
}

func (s *TCCSignal) Category() signals.SignalCategory {
	return signals.CategoryCohesion
}

func (s *TCCSignal) Description() string {
	return "Tight Class Cohesion - ratio of directly connected method pairs to total pairs"
}

func (s *TCCSignal) Calculate(ctx context.Context, u *unit.CodeUnit) (float64, error) {
	if err := signals.RequireStructure(u); err != nil {
		return 0, err
	}

	// TCC only considers non-trivial methods
	methods := u.Structure.NonAccessorMethods()
	n := len(methods)
	if n <= 1 {
		return 1.0, nil
	}

	totalPairs := n * (n - 1) / 2
	connectedPairs := 0
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if s.fieldAnalyzer.DoMethodsShareFields(methods[i].AccessedFields, methods[j].AccessedFields) {
				connectedPairs++
			}
		}
	}

	return float64(connectedPairs) / float64(totalPairs), nil
}
