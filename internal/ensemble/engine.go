package ensemble

import (
	"context"
	"errors"

	"smellsense/internal/classifier"
	"smellsense/internal/smells"
	"smellsense/internal/unit"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Analysis is the full trail of one classification
type Analysis struct {
	Unit       *unit.CodeUnit
	Findings   []smells.Finding
	Vote       *classifier.Vote
	Candidates []Candidate
	Provenance Provenance
	Verdict    *Verdict
}

// Engine runs the detector bank and the classifier over one unit and fuses
// their outputs
type Engine struct {
	builder    *unit.Builder
	bank       *smells.Bank
	adapter    *classifier.Adapter
	aggregator *Aggregator
	resolver   *Resolver
	settings   Settings
	logger     *zap.Logger
}

// NewEngine creates an engine. A nil adapter runs heuristics only.
func NewEngine(builder *unit.Builder, bank *smells.Bank, adapter *classifier.Adapter, settings Settings, logger *zap.Logger) *Engine {
	return &Engine{
		builder:    builder,
		bank:       bank,
		adapter:    adapter,
		aggregator: NewAggregator(settings),
		resolver:   NewResolver(settings),
		settings:   settings,
		logger:     logger,
	}
}

// Classify returns the verdict for one input. Only context cancellation is
// returned as an error; parse and classifier failures degrade the verdict.
func (e *Engine) Classify(ctx context.Context, in unit.Input) (*Verdict, error) {
	analysis, err := e.Analyze(ctx, in)
	if err != nil {
		return nil, err
	}
	return analysis.Verdict, nil
}

// Analyze classifies one input and keeps the intermediate results
func (e *Engine) Analyze(ctx context.Context, in unit.Input) (*Analysis, error) {
	u, err := e.builder.Build(ctx, in)
	if err != nil {
		return nil, err
	}

	var (
		findings []smells.Finding
		vote     *classifier.Vote
		voteErr  error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		f, err := e.bank.Detect(gctx, u)
		if err != nil {
			return err
		}
		findings = f
		return nil
	})
	if e.adapter != nil {
		g.Go(func() error {
			cctx, cancel := context.WithTimeout(gctx, e.settings.ClassifierTimeout)
			defer cancel()
			vote, voteErr = e.adapter.Classify(cctx, u)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	provenance := Provenance{ClassifierErr: voteErr}
	if e.adapter != nil {
		provenance.Classifier = e.adapter.Name()
	}
	for _, f := range findings {
		provenance.Detectors = append(provenance.Detectors, f.Detector)
	}
	if voteErr != nil {
		e.logger.Warn("Classifier unavailable, using heuristics only",
			zap.Bool("timeout", errors.Is(voteErr, context.DeadlineExceeded)),
			zap.Error(voteErr))
	}

	candidates := e.aggregator.Aggregate(findings, vote)
	verdict := e.resolver.Resolve(candidates, provenance)

	e.logger.Debug("Classified code unit",
		zap.String("language", string(u.Language)),
		zap.String("primary_smell", string(verdict.PrimarySmell)),
		zap.Float64("confidence", verdict.Confidence),
		zap.Int("findings", len(findings)),
		zap.Bool("degraded", verdict.Degraded))

	return &Analysis{
		Unit:       u,
		Findings:   findings,
		Vote:       vote,
		Candidates: candidates,
		Provenance: provenance,
		Verdict:    verdict,
	}, nil
}

// ClassifyAll classifies inputs with at most workers in flight. Results
// keep the input order.
func (e *Engine) ClassifyAll(ctx context.Context, inputs []unit.Input, workers int) ([]*Verdict, error) {
	verdicts := make([]*Verdict, len(inputs))
	if len(inputs) == 0 {
		return verdicts, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(workers, len(inputs))))
	for i := range inputs {
		g.Go(func() error {
			v, err := e.Classify(gctx, inputs[i])
			if err != nil {
				return err
			}
			verdicts[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return verdicts, nil
}
