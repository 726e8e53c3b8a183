package ensemble

import (
	"fmt"
	"math"
	"strings"

	"smellsense/internal/smells"
)

// Resolver picks the final label from ranked candidates
type Resolver struct {
	settings Settings
}

// NewResolver creates a resolver over the given settings
func NewResolver(settings Settings) *Resolver {
	return &Resolver{settings: settings}
}

// Resolve turns the aggregator's ranking into a verdict:
//   - no candidate at or above the noise floor yields Clean with confidence
//     100*(1-top);
//   - a classifier-only winner yields to a candidate backed by a strong
//     structural finding;
//   - Clean yields to the best heuristic-backed candidate at or above the
//     noise floor.
//
// Confidence is the winner's share of the total score.
func (r *Resolver) Resolve(candidates []Candidate, provenance Provenance) *Verdict {
	verdict := &Verdict{
		SecondarySmells: []SecondarySmell{},
		Degraded:        provenance.Degraded(),
	}

	top := 0.0
	if len(candidates) > 0 {
		top = candidates[0].Score
	}

	winner := -1
	if top >= r.settings.NoiseFloor && len(candidates) > 0 {
		winner = 0
		if !candidates[winner].HeuristicBacked() {
			if i := r.strongStructural(candidates); i >= 0 {
				winner = i
			}
		}
		if candidates[winner].Kind == smells.Clean {
			if i := r.bestHeuristic(candidates); i >= 0 {
				winner = i
			}
		}
	}

	if winner < 0 {
		verdict.PrimarySmell = smells.Clean
		verdict.Confidence = clampPercent(100 * (1 - top))
		verdict.Rationale = append(verdict.Rationale,
			fmt.Sprintf("no signal reached the noise floor %.2f (top score %.3f)", r.settings.NoiseFloor, top))
	} else {
		w := candidates[winner]
		total := 0.0
		for _, c := range candidates {
			total += c.Score
		}
		verdict.PrimarySmell = w.Kind
		verdict.Confidence = clampPercent(100 * w.Score / total)
		verdict.Rationale = append(verdict.Rationale, w.Evidence()...)
		if w.Kind == smells.Clean {
			verdict.Rationale = append(verdict.Rationale,
				fmt.Sprintf("no detector reached the noise floor %.2f", r.settings.NoiseFloor))
		}
	}

	for i, c := range candidates {
		if len(verdict.SecondarySmells) >= r.settings.SecondaryCap {
			break
		}
		if i == winner || c.Kind == verdict.PrimarySmell || c.Score < r.settings.MentionThreshold {
			continue
		}
		verdict.SecondarySmells = append(verdict.SecondarySmells, SecondarySmell{Smell: c.Kind, Score: c.Score})
	}

	verdict.Rationale = append(verdict.Rationale, r.classifierLine(candidates, verdict.PrimarySmell, provenance))
	verdict.Rationale = append(verdict.Rationale, contributorsLine(provenance))
	return verdict
}

// strongStructural returns the first candidate backed by a structural
// finding at or above StrongEvidence
func (r *Resolver) strongStructural(candidates []Candidate) int {
	for i, c := range candidates {
		if c.Kind.Class() != smells.ClassStructural {
			continue
		}
		for _, f := range c.Findings {
			if f.Confidence >= r.settings.StrongEvidence {
				return i
			}
		}
	}
	return -1
}

// bestHeuristic returns the first heuristic-backed candidate at or above
// the noise floor
func (r *Resolver) bestHeuristic(candidates []Candidate) int {
	for i, c := range candidates {
		if c.HeuristicBacked() && c.Score >= r.settings.NoiseFloor {
			return i
		}
	}
	return -1
}

func (r *Resolver) classifierLine(candidates []Candidate, winner smells.Kind, p Provenance) string {
	switch {
	case p.ClassifierErr != nil:
		return "classifier unavailable: " + p.ClassifierErr.Error()
	case p.Classifier == "":
		return "classifier unavailable: not configured"
	}
	probability := 0.0
	for _, c := range candidates {
		if c.Kind == winner {
			probability = c.ClassifierProbability
		}
	}
	return fmt.Sprintf("classifier %s: P(%s) = %.3f", p.Classifier, winner, probability)
}

func contributorsLine(p Provenance) string {
	detectors := "none"
	if len(p.Detectors) > 0 {
		detectors = strings.Join(p.Detectors, ", ")
	}
	classifier := "unavailable"
	if !p.Degraded() {
		classifier = p.Classifier
	}
	return fmt.Sprintf("contributors: detectors [%s]; classifier %s", detectors, classifier)
}

func clampPercent(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(100, v))
}
