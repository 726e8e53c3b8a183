package complexity

import (
	"context"

	"smellsense/internal/signals"
	"smellsense/internal/unit"
)

// WMCSignal measures Weighted Method Count (sum of cyclomatic complexity)
type WMCSignal struct{}

// NewWMCSignal creates a new WMC signal
func NewWMCSignal() *WMCSignal {
	return &WMCSignal{}
}

func (s *WMCSignal) Name() string {
	return "WMC"
}

func (s *WMCSignal) Category() signals.SignalCategory {
	return signals.CategoryComplexity
}

func (s *WMCSignal) Description() string {
	return "Weighted Method Count - sum of cyclomatic complexity of all methods"
}

func (s *WMCSignal) Calculate(ctx context.Context, u *unit.CodeUnit) (float64, error) {
	if err := signals.RequireStructure(u); err != nil {
		return 0, err
	}
	return float64(sumComplexity(u.Structure.RegularMethods())), nil
}

// WMCNAMMSignal measures WMC without Accessors/Mutators
type WMCNAMMSignal struct{}

// NewWMCNAMMSignal creates a new WMCNAMM signal
func NewWMCNAMMSignal() *WMCNAMMSignal {
	return &WMCNAMMSignal{}
}

func (s *WMCNAMMSignal) Name() string {
	return "WMCNAMM"
}

func (s *WMCNAMMSignal) Category() signals.SignalCategory {
	return signals.CategoryComplexity
}

func (s *WMCNAMMSignal) Description() string {
	return "Weighted Method Count without Accessors/Mutators - WMC excluding simple getters/setters"
}

func (s *WMCNAMMSignal) Calculate(ctx context.Context, u *unit.CodeUnit) (float64, error) {
	if err := signals.RequireStructure(u); err != nil {
		return 0, err
	}
	return float64(sumComplexity(u.Structure.NonAccessorMethods())), nil
}

func sumComplexity(methods []*unit.Method) int {
	total := 0
	for _, method := range methods {
		total += method.Complexity
	}
	return total
}
