// Package catalog wires the full detector bank from thresholds.
package catalog

import (
	"smellsense/internal/smells"
	"smellsense/internal/smells/godclass"
	"smellsense/internal/smells/lexical"
	"smellsense/internal/smells/structural"

	"go.uber.org/zap"
)

// Thresholds configure every detector of the bank
type Thresholds struct {
	GodClass   godclass.Thresholds   `yaml:"god_class" toml:"god_class"`
	Structural structural.Thresholds `yaml:"structural" toml:"structural"`
	Lexical    lexical.Thresholds    `yaml:"lexical" toml:"lexical"`
}

// DefaultThresholds returns the stock thresholds of all detectors
func DefaultThresholds() Thresholds {
	return Thresholds{
		GodClass:   godclass.DefaultThresholds(),
		Structural: structural.DefaultThresholds(),
		Lexical:    lexical.DefaultThresholds(),
	}
}

// Validate checks every threshold group
func (t Thresholds) Validate() error {
	if err := t.GodClass.Validate(); err != nil {
		return err
	}
	if err := t.Structural.Validate(); err != nil {
		return err
	}
	return t.Lexical.Validate()
}

// Detectors builds one detector per smell kind
func Detectors(t Thresholds, logger *zap.Logger) []smells.Detector {
	s := t.Structural
	l := t.Lexical
	return []smells.Detector{
		godclass.NewGodClassDetector(t.GodClass, logger),
		structural.NewDataClassDetector(s.DataClass),
		structural.NewLargeClassDetector(s.LargeClass),
		structural.NewLongMethodDetector(s.LongMethod),
		structural.NewLongParameterListDetector(s.LongParameterList),
		structural.NewDeadCodeDetector(s.DeadCode),
		structural.NewDuplicateCodeDetector(s.DuplicateCode),
		structural.NewPointlessOperationDetector(s.PointlessOperation),
		structural.NewFeatureEnvyDetector(s.FeatureEnvy),
		lexical.NewGlobalStateDetector(l.Scale),
		lexical.NewSwallowedExceptionDetector(l.Scale),
		lexical.NewMagicNumbersDetector(l.MagicNumbers, l.Scale),
		lexical.NewRawTypesDetector(l.RawTypes, l.Scale),
		lexical.NewUnnecessaryBoxingDetector(l.Scale),
		lexical.NewBadNamingDetector(l.Naming, l.Scale),
	}
}

// NewBank validates the thresholds and builds the detector bank
func NewBank(t Thresholds, logger *zap.Logger) (*smells.Bank, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return smells.NewBank(Detectors(t, logger), logger)
}
