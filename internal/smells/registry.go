package smells

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"smellsense/internal/unit"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrConfiguration marks an invalid detector bank or configuration
var ErrConfiguration = errors.New("invalid configuration")

// Bank holds exactly one detector per smell kind and runs them in parallel
type Bank struct {
	detectors []Detector // sorted by kind priority
	logger    *zap.Logger
}

// NewBank creates a bank from the given detectors. Every non-Clean kind of
// the taxonomy must be covered by exactly one detector.
func NewBank(detectors []Detector, logger *zap.Logger) (*Bank, error) {
	byKind := make(map[Kind]Detector, len(detectors))
	for _, detector := range detectors {
		kind := detector.Kind()
		if !kind.Valid() || kind == Clean {
			return nil, fmt.Errorf("detector %s reports kind %q outside the taxonomy: %w",
				detector.Name(), kind, ErrConfiguration)
		}
		if existing, ok := byKind[kind]; ok {
			return nil, fmt.Errorf("detectors %s and %s both report %s: %w",
				existing.Name(), detector.Name(), kind, ErrConfiguration)
		}
		byKind[kind] = detector
	}

	ordered := make([]Detector, 0, len(byKind))
	for _, kind := range SmellKinds() {
		detector, ok := byKind[kind]
		if !ok {
			return nil, fmt.Errorf("no detector for %s: %w", kind, ErrConfiguration)
		}
		ordered = append(ordered, detector)
		logger.Debug("Registered smell detector",
			zap.String("detector", detector.Name()),
			zap.String("kind", string(kind)))
	}

	return &Bank{detectors: ordered, logger: logger}, nil
}

// Detectors returns the detectors in priority order
func (b *Bank) Detectors() []Detector {
	return append([]Detector(nil), b.detectors...)
}

// Detect runs every detector on the unit and returns the findings in
// taxonomy priority order. A detector that panics or reports invalid output
// contributes nothing. Only context cancellation is returned as an error.
func (b *Bank) Detect(ctx context.Context, u *unit.CodeUnit) ([]Finding, error) {
	results := make([][]Finding, len(b.detectors))

	g, gctx := errgroup.WithContext(ctx)
	for i, detector := range b.detectors {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = b.run(gctx, detector, u)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var findings []Finding
	for _, r := range results {
		findings = append(findings, r...)
	}
	sort.SliceStable(findings, func(i, j int) bool {
		return findings[i].Kind.Priority() < findings[j].Kind.Priority()
	})
	return findings, nil
}

// run invokes one detector, keeping only well-formed findings of its kind
func (b *Bank) run(ctx context.Context, detector Detector, u *unit.CodeUnit) (findings []Finding) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Warn("Detector panicked",
				zap.String("detector", detector.Name()),
				zap.Any("panic", r))
			findings = nil
		}
	}()

	var best *Finding
	for _, f := range detector.Detect(ctx, u) {
		if f.Kind != detector.Kind() {
			b.logger.Warn("Dropping finding of unexpected kind",
				zap.String("detector", detector.Name()),
				zap.String("kind", string(f.Kind)))
			continue
		}
		if math.IsNaN(f.Confidence) || f.Confidence <= 0 || f.Confidence > 1 {
			b.logger.Warn("Dropping finding with invalid confidence",
				zap.String("detector", detector.Name()),
				zap.Float64("confidence", f.Confidence))
			continue
		}
		if f.Detector == "" {
			f.Detector = detector.Name()
		}
		if best == nil || f.Confidence > best.Confidence {
			best = &f
		}
	}
	if best == nil {
		return nil
	}
	return []Finding{*best}
}
