package smells

import (
	"context"

	"smellsense/internal/unit"
)

// Detector is the main interface for code smell detection. Detectors are
// pure: they only read the unit and report at most one finding per kind.
type Detector interface {
	// Name returns the unique identifier for this detector
	Name() string

	// Kind returns the smell kind this detector finds
	Kind() Kind

	// Detect analyzes a code unit and returns its findings
	Detect(ctx context.Context, u *unit.CodeUnit) []Finding
}
