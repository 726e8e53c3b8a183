package godclass

import (
	"context"
	"fmt"

	"smellsense/internal/signals/utils"
)

// ScoreBasedStrategy grades how far a class exceeds the gate. Confidence is
// BaseConfidence + ConfidenceSpan * mean(normalized excess), capped.
type ScoreBasedStrategy struct {
	thresholds Thresholds
	normalizer *utils.Normalizer
}

// NewScoreBasedStrategy creates a new score-based strategy
func NewScoreBasedStrategy(thresholds Thresholds) *ScoreBasedStrategy {
	return &ScoreBasedStrategy{
		thresholds: thresholds,
		normalizer: utils.NewNormalizer(),
	}
}

func (s *ScoreBasedStrategy) Name() string {
	return "score_based"
}

func (s *ScoreBasedStrategy) Detect(ctx context.Context, signalValues map[string]float64) *StrategyResult {
	result := &StrategyResult{
		Strategy:        s.Name(),
		ViolatedSignals: []string{},
	}

	var components []float64

	// Component 1: field excess
	if nof, ok := signalValues["NOF"]; ok {
		components = append(components, s.normalizer.Normalize(nof, float64(s.thresholds.MaxFields), s.thresholds.NormFieldsMax))
	}

	// Component 2: method excess
	if nom, ok := signalValues["NOM"]; ok {
		components = append(components, s.normalizer.Normalize(nom, float64(s.thresholds.MaxMethods), s.thresholds.NormMethodsMax))
	}

	// Component 3: service dependency excess
	if sdep, ok := signalValues["SDEP"]; ok {
		components = append(components, s.normalizer.Normalize(sdep, float64(s.thresholds.MinServiceDeps), s.thresholds.NormDepsMax))
	}

	// Component 4: TCC (inverted since low is bad)
	if tcc, ok := signalValues["TCC"]; ok {
		components = append(components, s.normalizer.Clamp(1.0-tcc, 0, 1))
		if tcc <= s.thresholds.LowCohesion {
			result.ViolatedSignals = append(result.ViolatedSignals, fmt.Sprintf("TCC %.2f <= %.2f", tcc, s.thresholds.LowCohesion))
		}
	}

	if len(components) == 0 {
		result.Explanation = "No signals available"
		return result
	}

	mean := 0.0
	for _, c := range components {
		mean += c
	}
	mean /= float64(len(components))

	if mean <= 0 {
		result.Explanation = "No excess over god class thresholds"
		return result
	}

	result.IsGodClass = true
	result.Confidence = s.normalizer.Clamp(s.thresholds.BaseConfidence+s.thresholds.ConfidenceSpan*mean, 0, s.thresholds.MaxConfidence)
	result.Explanation = fmt.Sprintf("God class excess score %.2f", mean)
	return result
}
