package classifier

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"smellsense/internal/smells"
	"smellsense/internal/unit"

	"go.uber.org/zap"
)

// ErrClassifierUnavailable wraps every classifier failure: transport
// errors, timeouts and malformed votes. Callers fall back to heuristics.
var ErrClassifierUnavailable = errors.New("classifier unavailable")

// Vote is a validated probability vector in canonical taxonomy order
type Vote struct {
	Source        string
	Probabilities []float64
}

// P returns the probability of a kind, 0 for kinds outside the taxonomy
func (v *Vote) P(kind smells.Kind) float64 {
	if v == nil || !kind.Valid() {
		return 0
	}
	return v.Probabilities[kind.Priority()]
}

// Top returns the most probable kind; ties go to the higher priority kind
func (v *Vote) Top() (smells.Kind, float64) {
	kinds := smells.AllKinds()
	best := 0
	for i, p := range v.Probabilities {
		if p > v.Probabilities[best] {
			best = i
		}
	}
	return kinds[best], v.Probabilities[best]
}

// Adapter validates a model's raw vote against the taxonomy
type Adapter struct {
	model     Model
	tolerance float64
	logger    *zap.Logger
}

// NewAdapter wraps a model. tolerance bounds how far the raw probabilities
// may sum away from 1.
func NewAdapter(model Model, tolerance float64, logger *zap.Logger) *Adapter {
	return &Adapter{model: model, tolerance: tolerance, logger: logger}
}

// Name returns the wrapped model's name
func (a *Adapter) Name() string {
	return a.model.Name()
}

// Classify asks the model for a vote and normalizes it. Any failure is
// returned wrapped in ErrClassifierUnavailable.
func (a *Adapter) Classify(ctx context.Context, u *unit.CodeUnit) (vote *Vote, err error) {
	defer func() {
		if r := recover(); r != nil {
			vote = nil
			err = fmt.Errorf("model %s panicked: %v: %w", a.model.Name(), r, ErrClassifierUnavailable)
		}
	}()

	raw, err := a.model.Predict(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("model %s: %w: %w", a.model.Name(), err, ErrClassifierUnavailable)
	}

	vote, err = Normalize(raw, a.tolerance)
	if err != nil {
		a.logger.Warn("Discarding malformed classifier vote",
			zap.String("model", a.model.Name()),
			zap.Error(err))
		return nil, fmt.Errorf("model %s: %w", a.model.Name(), err)
	}
	vote.Source = a.model.Name()
	return vote, nil
}

// Normalize checks a raw vote (non-negative, no duplicate or unknown
// labels, exactly the taxonomy, summing to 1 within tolerance), reorders it
// to taxonomy order and rescales it to sum to exactly 1.
func Normalize(raw RawVote, tolerance float64) (*Vote, error) {
	kinds := smells.AllKinds()
	if len(raw.Labels) != len(raw.Probabilities) {
		return nil, fmt.Errorf("%d labels but %d probabilities: %w",
			len(raw.Labels), len(raw.Probabilities), ErrClassifierUnavailable)
	}

	probabilities := make([]float64, len(kinds))
	seen := make([]bool, len(kinds))
	sum := 0.0
	for i, label := range raw.Labels {
		kind, err := smells.ParseKind(label)
		if err != nil {
			return nil, fmt.Errorf("label %q is outside the taxonomy: %w", label, ErrClassifierUnavailable)
		}
		idx := kind.Priority()
		if seen[idx] {
			return nil, fmt.Errorf("label %s appears twice: %w", kind, ErrClassifierUnavailable)
		}
		p := raw.Probabilities[i]
		if math.IsNaN(p) || math.IsInf(p, 0) || p < 0 {
			return nil, fmt.Errorf("probability %v for %s: %w", p, kind, ErrClassifierUnavailable)
		}
		seen[idx] = true
		probabilities[idx] = p
		sum += p
	}

	var missing []string
	for i, ok := range seen {
		if !ok {
			missing = append(missing, string(kinds[i]))
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("vote misses labels %v: %w", missing, ErrClassifierUnavailable)
	}
	if math.Abs(sum-1) > tolerance || sum == 0 {
		return nil, fmt.Errorf("probabilities sum to %v: %w", sum, ErrClassifierUnavailable)
	}

	for i := range probabilities {
		probabilities[i] /= sum
	}
	return &Vote{Probabilities: probabilities}, nil
}

func sortedLabels(m map[string]float64) []string {
	labels := make([]string, 0, len(m))
	for label := range m {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}
