package godclass

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"smellsense/internal/signals"
	"smellsense/internal/signals/cohesion"
	"smellsense/internal/signals/complexity"
	"smellsense/internal/signals/coupling"
	"smellsense/internal/signals/size"
	"smellsense/internal/smells"
	"smellsense/internal/unit"

	"go.uber.org/zap"
)

// GodClassDetector detects god class code smell
type GodClassDetector struct {
	signalRegistry *signals.SignalRegistry
	strategies     []Strategy
	recommender    *Recommender
	logger         *zap.Logger
}

// NewGodClassDetector creates a new god class detector
func NewGodClassDetector(thresholds Thresholds, logger *zap.Logger) *GodClassDetector {
	// Create signal registry and register all needed signals
	signalRegistry := signals.NewSignalRegistry()

	// Register size signals
	signalRegistry.Register(size.NewLOCSignal())
	signalRegistry.Register(size.NewLOCNAMMSignal())
	signalRegistry.Register(size.NewNOMSignal())
	signalRegistry.Register(size.NewNOMNAMMSignal())
	signalRegistry.Register(size.NewNOFSignal())

	// Register complexity signals
	signalRegistry.Register(complexity.NewWMCSignal())
	signalRegistry.Register(complexity.NewWMCNAMMSignal())
	signalRegistry.Register(complexity.NewAMCSignal())

	// Register cohesion signals
	signalRegistry.Register(cohesion.NewTCCSignal())

	// Register coupling signals
	signalRegistry.Register(coupling.NewATFDSignal())
	signalRegistry.Register(coupling.NewSDEPSignal())

	return &GodClassDetector{
		signalRegistry: signalRegistry,
		strategies: []Strategy{
			NewRuleBasedStrategy(thresholds),
			NewScoreBasedStrategy(thresholds),
		},
		recommender: NewRecommender(thresholds),
		logger:      logger,
	}
}

func (d *GodClassDetector) Name() string {
	return "god_class_detector"
}

func (d *GodClassDetector) Kind() smells.Kind {
	return smells.GodClass
}

// Detect runs god class detection on a unit
func (d *GodClassDetector) Detect(ctx context.Context, u *unit.CodeUnit) []smells.Finding {
	if u.Malformed() || !u.Structure.HasClass {
		return nil
	}

	// Step 1: Calculate all signals in parallel
	signalValues := d.calculateSignals(ctx, u)

	// Step 2: Run all strategies
	strategyResults := d.runStrategies(ctx, signalValues)

	// Step 3: Aggregate strategy results
	aggregated := d.aggregateResults(strategyResults)

	d.logger.Debug("God class detection complete",
		zap.String("class", u.Structure.ClassName),
		zap.Bool("is_god_class", aggregated.IsGodClass),
		zap.Float64("confidence", aggregated.Confidence),
		zap.String("strategy", aggregated.BestStrategy))

	if !aggregated.IsGodClass {
		return nil
	}

	// Step 4: Turn recommendations into evidence hints
	recommendations := d.recommender.Generate(u, signalValues)
	hints := make([]string, 0, len(recommendations))
	for _, rec := range recommendations {
		hints = append(hints, rec.String())
	}

	evidence := fmt.Sprintf("class %s: %s; hints: %s",
		u.Structure.ClassName,
		strings.Join(aggregated.ViolatedSignals, ", "),
		strings.Join(hints, "; "))

	return []smells.Finding{{
		Kind:       smells.GodClass,
		Confidence: aggregated.Confidence,
		Evidence:   evidence,
		Detector:   d.Name(),
	}}
}

// SignalValues exposes the computed metrics of a unit
func (d *GodClassDetector) SignalValues(ctx context.Context, u *unit.CodeUnit) map[string]float64 {
	return d.calculateSignals(ctx, u)
}

// calculateSignals computes all registered signals
func (d *GodClassDetector) calculateSignals(ctx context.Context, u *unit.CodeUnit) map[string]float64 {
	allSignals := d.signalRegistry.GetAll()
	results := make(map[string]float64, len(allSignals))
	var mu sync.Mutex
	var wg sync.WaitGroup

	// Calculate signals in parallel
	for _, signal := range allSignals {
		wg.Add(1)
		go func(sig signals.Signal) {
			defer wg.Done()

			value, err := sig.Calculate(ctx, u)
			if err != nil {
				d.logger.Debug("Signal calculation failed",
					zap.String("signal", sig.Name()),
					zap.Error(err))
				return
			}

			mu.Lock()
			results[sig.Name()] = value
			mu.Unlock()
		}(signal)
	}

	wg.Wait()
	return results
}

// runStrategies executes all detection strategies
func (d *GodClassDetector) runStrategies(ctx context.Context, signalValues map[string]float64) []*StrategyResult {
	results := make([]*StrategyResult, 0, len(d.strategies))
	for _, strategy := range d.strategies {
		result := strategy.Detect(ctx, signalValues)
		d.logger.Debug("Strategy result",
			zap.String("strategy", result.Strategy),
			zap.Bool("is_god_class", result.IsGodClass),
			zap.String("explanation", result.Explanation))
		results = append(results, result)
	}
	return results
}

// AggregatedResult combines results from multiple strategies
type AggregatedResult struct {
	IsGodClass      bool
	Confidence      float64
	BestStrategy    string
	ViolatedSignals []string
}

// aggregateResults requires every strategy to agree and keeps the most
// confident one. The rule-based gate therefore decides whether the class is
// a god class and the score-based grade decides how sure we are.
func (d *GodClassDetector) aggregateResults(strategyResults []*StrategyResult) *AggregatedResult {
	aggregated := &AggregatedResult{
		BestStrategy:    "none",
		ViolatedSignals: []string{},
	}
	if len(strategyResults) == 0 {
		return aggregated
	}

	for _, result := range strategyResults {
		if !result.IsGodClass {
			return aggregated
		}
	}

	aggregated.IsGodClass = true
	for _, result := range strategyResults {
		aggregated.ViolatedSignals = append(aggregated.ViolatedSignals, result.ViolatedSignals...)
		if result.Confidence > aggregated.Confidence {
			aggregated.Confidence = result.Confidence
			aggregated.BestStrategy = result.Strategy
		}
	}
	return aggregated
}
