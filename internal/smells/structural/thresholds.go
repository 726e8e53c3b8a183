package structural

import (
	"fmt"

	"smellsense/internal/smells"
)

// DataClassThresholds configure data class detection
type DataClassThresholds struct {
	MinFields      int     `yaml:"min_fields" toml:"min_fields"`
	BaseConfidence float64 `yaml:"base_confidence" toml:"base_confidence"`
	PairedSpan     float64 `yaml:"paired_span" toml:"paired_span"`
}

// LargeClassThresholds configure large class detection
type LargeClassThresholds struct {
	MaxFields int `yaml:"max_fields" toml:"max_fields"`
}

// LongMethodThresholds configure long method detection
type LongMethodThresholds struct {
	MaxLines      int `yaml:"max_lines" toml:"max_lines"`
	MaxComplexity int `yaml:"max_complexity" toml:"max_complexity"`
}

// LongParameterListThresholds configure long parameter list detection
type LongParameterListThresholds struct {
	MaxParams int `yaml:"max_params" toml:"max_params"`
}

// SaturationThresholds configure count-based confidence: rate per distinct
// occurrence, saturating at Max.
type SaturationThresholds struct {
	Rate float64 `yaml:"rate" toml:"rate"`
	Max  float64 `yaml:"max" toml:"max"`
}

// DuplicateCodeThresholds configure duplicate statement detection
type DuplicateCodeThresholds struct {
	MinRun int `yaml:"min_run" toml:"min_run"`
	Window int `yaml:"window" toml:"window"`
	// MinWindowTokens skips windows too small to be worth extracting
	MinWindowTokens int                  `yaml:"min_window_tokens" toml:"min_window_tokens"`
	Confidence      SaturationThresholds `yaml:"confidence" toml:"confidence"`
}

// FeatureEnvyThresholds configure feature envy detection
type FeatureEnvyThresholds struct {
	MinForeign int     `yaml:"min_foreign" toml:"min_foreign"`
	Ratio      float64 `yaml:"ratio" toml:"ratio"`
}

// Thresholds groups the structural detector thresholds
type Thresholds struct {
	DataClass          DataClassThresholds         `yaml:"data_class" toml:"data_class"`
	LargeClass         LargeClassThresholds        `yaml:"large_class" toml:"large_class"`
	LongMethod         LongMethodThresholds        `yaml:"long_method" toml:"long_method"`
	LongParameterList  LongParameterListThresholds `yaml:"long_parameter_list" toml:"long_parameter_list"`
	DeadCode           SaturationThresholds        `yaml:"dead_code" toml:"dead_code"`
	DuplicateCode      DuplicateCodeThresholds     `yaml:"duplicate_code" toml:"duplicate_code"`
	PointlessOperation SaturationThresholds        `yaml:"pointless_operation" toml:"pointless_operation"`
	FeatureEnvy        FeatureEnvyThresholds       `yaml:"feature_envy" toml:"feature_envy"`
}

// DefaultThresholds returns the stock structural thresholds
func DefaultThresholds() Thresholds {
	return Thresholds{
		DataClass:         DataClassThresholds{MinFields: 2, BaseConfidence: 0.6, PairedSpan: 0.35},
		LargeClass:        LargeClassThresholds{MaxFields: 10},
		LongMethod:        LongMethodThresholds{MaxLines: 30, MaxComplexity: 10},
		LongParameterList: LongParameterListThresholds{MaxParams: 5},
		DeadCode:          SaturationThresholds{Rate: 0.7, Max: 0.95},
		DuplicateCode: DuplicateCodeThresholds{
			MinRun:          2,
			Window:          3,
			MinWindowTokens: 15,
			Confidence:      SaturationThresholds{Rate: 0.55, Max: 0.95},
		},
		PointlessOperation: SaturationThresholds{Rate: 0.5, Max: 0.95},
		FeatureEnvy:        FeatureEnvyThresholds{MinForeign: 4, Ratio: 1.0},
	}
}

// Validate checks the thresholds for consistency
func (t Thresholds) Validate() error {
	switch {
	case t.DataClass.MinFields < 1:
		return fmt.Errorf("data class min_fields must be at least 1: %w", smells.ErrConfiguration)
	case t.DataClass.BaseConfidence <= 0 || t.DataClass.BaseConfidence+t.DataClass.PairedSpan > 1 || t.DataClass.PairedSpan < 0:
		return fmt.Errorf("data class confidence range is invalid: %w", smells.ErrConfiguration)
	case t.LargeClass.MaxFields < 1:
		return fmt.Errorf("large class max_fields must be positive: %w", smells.ErrConfiguration)
	case t.LongMethod.MaxLines < 1 || t.LongMethod.MaxComplexity < 1:
		return fmt.Errorf("long method limits must be positive: %w", smells.ErrConfiguration)
	case t.LongParameterList.MaxParams < 1:
		return fmt.Errorf("long parameter list max_params must be positive: %w", smells.ErrConfiguration)
	case t.DuplicateCode.MinRun < 2 || t.DuplicateCode.Window < 2:
		return fmt.Errorf("duplicate code min_run and window must be at least 2: %w", smells.ErrConfiguration)
	case t.FeatureEnvy.MinForeign < 1 || t.FeatureEnvy.Ratio < 0:
		return fmt.Errorf("feature envy thresholds are invalid: %w", smells.ErrConfiguration)
	}
	if err := t.DeadCode.Validate(); err != nil {
		return fmt.Errorf("dead_code: %w", err)
	}
	if err := t.DuplicateCode.Confidence.Validate(); err != nil {
		return fmt.Errorf("duplicate_code: %w", err)
	}
	if err := t.PointlessOperation.Validate(); err != nil {
		return fmt.Errorf("pointless_operation: %w", err)
	}
	return nil
}

// Validate checks that the saturation curve stays within (0,1]
func (s SaturationThresholds) Validate() error {
	if s.Rate <= 0 || s.Rate > 1 || s.Max <= 0 || s.Max > 1 {
		return fmt.Errorf("saturation rate and max must be within (0,1]: %w", smells.ErrConfiguration)
	}
	return nil
}
