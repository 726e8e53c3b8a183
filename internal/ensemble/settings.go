// Package ensemble fuses heuristic findings and the classifier vote into
// one verdict per code unit.
package ensemble

import (
	"time"

	"smellsense/internal/config"
	"smellsense/internal/smells"
)

// Settings are the immutable fusion parameters of an engine. They are built
// once from the configuration and never modified afterwards.
type Settings struct {
	HeuristicWeights map[smells.Kind]float64
	ClassifierWeight float64
	// NoiseFloor is the score below which the verdict is Clean
	NoiseFloor float64
	// StrongEvidence is the finding confidence that triggers precedence
	// suppression and structural overrides
	StrongEvidence   float64
	MentionThreshold float64
	SecondaryCap     int
	// Exclusions maps a kind to the kinds a strong finding of it suppresses
	Exclusions        map[smells.Kind][]smells.Kind
	ClassifierTimeout time.Duration
}

// NewSettings validates the configuration and resolves it into settings
func NewSettings(cfg *config.Config) (Settings, error) {
	if err := cfg.Validate(); err != nil {
		return Settings{}, err
	}
	weights, err := cfg.Ensemble.Weights()
	if err != nil {
		return Settings{}, err
	}
	exclusions, err := cfg.Ensemble.ExclusionTable()
	if err != nil {
		return Settings{}, err
	}

	return Settings{
		HeuristicWeights:  weights,
		ClassifierWeight:  cfg.Ensemble.ClassifierWeight,
		NoiseFloor:        cfg.Ensemble.NoiseFloor,
		StrongEvidence:    cfg.Ensemble.StrongEvidence,
		MentionThreshold:  cfg.Ensemble.MentionThreshold,
		SecondaryCap:      cfg.Ensemble.SecondaryCap,
		Exclusions:        exclusions,
		ClassifierTimeout: time.Duration(cfg.Classifier.TimeoutMs) * time.Millisecond,
	}, nil
}

// DefaultSettings returns the settings of the default configuration
func DefaultSettings() Settings {
	s, err := NewSettings(config.Default())
	if err != nil {
		panic(err)
	}
	return s
}
