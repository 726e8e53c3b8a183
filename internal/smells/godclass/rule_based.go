package godclass

import (
	"context"
	"fmt"
)

// RuleBasedStrategy is the hard gate: too many fields, too many methods and
// several service collaborators must all hold.
type RuleBasedStrategy struct {
	thresholds Thresholds
}

// NewRuleBasedStrategy creates a new rule-based strategy
func NewRuleBasedStrategy(thresholds Thresholds) *RuleBasedStrategy {
	return &RuleBasedStrategy{thresholds: thresholds}
}

func (s *RuleBasedStrategy) Name() string {
	return "rule_based"
}

func (s *RuleBasedStrategy) Detect(ctx context.Context, signalValues map[string]float64) *StrategyResult {
	result := &StrategyResult{
		Strategy:        s.Name(),
		ViolatedSignals: []string{},
	}

	conditions := 0

	// Condition 1: NOF > MaxFields
	if nof, ok := signalValues["NOF"]; ok && nof > float64(s.thresholds.MaxFields) {
		conditions++
		result.ViolatedSignals = append(result.ViolatedSignals,
			fmt.Sprintf("fields %.0f > %d", nof, s.thresholds.MaxFields))
	}

	// Condition 2: NOM > MaxMethods
	if nom, ok := signalValues["NOM"]; ok && nom > float64(s.thresholds.MaxMethods) {
		conditions++
		result.ViolatedSignals = append(result.ViolatedSignals,
			fmt.Sprintf("methods %.0f > %d", nom, s.thresholds.MaxMethods))
	}

	// Condition 3: SDEP >= MinServiceDeps
	if sdep, ok := signalValues["SDEP"]; ok && sdep >= float64(s.thresholds.MinServiceDeps) {
		conditions++
		result.ViolatedSignals = append(result.ViolatedSignals,
			fmt.Sprintf("service dependencies %.0f >= %d", sdep, s.thresholds.MinServiceDeps))
	}

	if conditions == 3 {
		result.IsGodClass = true
		result.Confidence = s.thresholds.BaseConfidence
		result.Explanation = "All 3 god class conditions met"
	} else {
		result.Explanation = fmt.Sprintf("Only %d of 3 god class conditions met (not a god class)", conditions)
	}

	return result
}
