package godclass

import (
	"fmt"

	"smellsense/internal/smells"
)

// Thresholds configure god class detection. A class is a god class when it
// has more than MaxFields fields, more than MaxMethods methods and at least
// MinServiceDeps distinct service-type collaborators.
type Thresholds struct {
	MaxFields      int `yaml:"max_fields" toml:"max_fields"`
	MaxMethods     int `yaml:"max_methods" toml:"max_methods"`
	MinServiceDeps int `yaml:"min_service_deps" toml:"min_service_deps"`

	// Normalization ranges for the confidence score; the excess over the
	// gate is scaled to [0,1] at these upper bounds.
	NormFieldsMax  float64 `yaml:"norm_fields_max" toml:"norm_fields_max"`
	NormMethodsMax float64 `yaml:"norm_methods_max" toml:"norm_methods_max"`
	NormDepsMax    float64 `yaml:"norm_deps_max" toml:"norm_deps_max"`

	BaseConfidence float64 `yaml:"base_confidence" toml:"base_confidence"`
	ConfidenceSpan float64 `yaml:"confidence_span" toml:"confidence_span"`
	MaxConfidence  float64 `yaml:"max_confidence" toml:"max_confidence"`

	// Hint thresholds (Lanza & Marinescu) used for recommendations
	LowCohesion    float64 `yaml:"low_cohesion" toml:"low_cohesion"`
	HighATFD       float64 `yaml:"high_atfd" toml:"high_atfd"`
	HighComplexity int     `yaml:"high_complexity" toml:"high_complexity"`
	HighWMCNAMM    float64 `yaml:"high_wmcnamm" toml:"high_wmcnamm"`
	HighLOCNAMM    float64 `yaml:"high_locnamm" toml:"high_locnamm"`
}

// DefaultThresholds returns the stock god class thresholds
func DefaultThresholds() Thresholds {
	return Thresholds{
		MaxFields:      5,
		MaxMethods:     14,
		MinServiceDeps: 3,

		NormFieldsMax:  10,
		NormMethodsMax: 28,
		NormDepsMax:    9,

		BaseConfidence: 0.75,
		ConfidenceSpan: 0.20,
		MaxConfidence:  0.95,

		LowCohesion:    0.33,
		HighATFD:       6,
		HighComplexity: 10,
		HighWMCNAMM:    22,
		HighLOCNAMM:    176,
	}
}

// Validate checks the thresholds for consistency
func (t Thresholds) Validate() error {
	switch {
	case t.MaxFields < 0 || t.MaxMethods < 0 || t.MinServiceDeps < 0:
		return fmt.Errorf("god class gate counts must be non-negative: %w", smells.ErrConfiguration)
	case t.NormFieldsMax <= float64(t.MaxFields) ||
		t.NormMethodsMax <= float64(t.MaxMethods) ||
		t.NormDepsMax <= float64(t.MinServiceDeps):
		return fmt.Errorf("god class normalization bounds must exceed the gate: %w", smells.ErrConfiguration)
	case t.BaseConfidence <= 0 || t.MaxConfidence > 1 || t.BaseConfidence > t.MaxConfidence || t.ConfidenceSpan < 0:
		return fmt.Errorf("god class confidence range is invalid: %w", smells.ErrConfiguration)
	case t.LowCohesion < 0 || t.LowCohesion > 1:
		return fmt.Errorf("god class cohesion threshold must be within [0,1]: %w", smells.ErrConfiguration)
	}
	return nil
}
