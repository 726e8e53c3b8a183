package ensemble

import (
	"math"
	"sort"

	"smellsense/internal/classifier"
	"smellsense/internal/smells"
)

// Source of a candidate's score
type Source string

const (
	SourceHeuristic  Source = "heuristic"
	SourceClassifier Source = "classifier"
)

// Candidate is the merged score of one smell kind
type Candidate struct {
	Kind  smells.Kind
	Score float64
	// Findings that contributed, in bank order
	Findings []smells.Finding
	// HeuristicConfidence is the highest confidence among Findings
	HeuristicConfidence   float64
	ClassifierProbability float64
}

// Sources lists where the score came from, heuristic first
func (c Candidate) Sources() []Source {
	var sources []Source
	if len(c.Findings) > 0 {
		sources = append(sources, SourceHeuristic)
	}
	if c.ClassifierProbability > 0 {
		sources = append(sources, SourceClassifier)
	}
	return sources
}

// HeuristicBacked reports whether any detector fired for the kind
func (c Candidate) HeuristicBacked() bool {
	return len(c.Findings) > 0
}

// Evidence returns the tagged evidence of the contributing findings
func (c Candidate) Evidence() []string {
	evidence := make([]string, len(c.Findings))
	for i, f := range c.Findings {
		evidence[i] = f.Tagged()
	}
	return evidence
}

// Aggregator merges findings and the classifier vote into ranked candidates
type Aggregator struct {
	settings Settings
}

// NewAggregator creates an aggregator over the given settings
func NewAggregator(settings Settings) *Aggregator {
	return &Aggregator{settings: settings}
}

// Aggregate scores every kind as the weighted heuristic confidence plus the
// weighted classifier probability, applies precedence suppression and
// returns the kinds with a positive score, best first. Equal scores are
// ordered by taxonomy priority. A nil vote skips the classifier term.
func (a *Aggregator) Aggregate(findings []smells.Finding, vote *classifier.Vote) []Candidate {
	kinds := smells.AllKinds()
	candidates := make([]Candidate, len(kinds))
	for i, kind := range kinds {
		candidates[i].Kind = kind
	}

	for _, f := range findings {
		if !f.Kind.Valid() || f.Kind == smells.Clean || math.IsNaN(f.Confidence) {
			continue
		}
		confidence := math.Max(0, math.Min(1, f.Confidence))
		c := &candidates[f.Kind.Priority()]
		c.Score += a.settings.HeuristicWeights[f.Kind] * confidence
		c.Findings = append(c.Findings, f)
		c.HeuristicConfidence = math.Max(c.HeuristicConfidence, confidence)
	}

	if vote != nil {
		for i := range candidates {
			p := vote.P(candidates[i].Kind)
			candidates[i].ClassifierProbability = p
			candidates[i].Score += a.settings.ClassifierWeight * p
		}
	}

	a.suppress(candidates)

	var ranked []Candidate
	for _, c := range candidates {
		if c.Score > 0 {
			ranked = append(ranked, c)
		}
	}
	// candidates start in priority order, so a stable sort keeps ties there
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

// suppress zeroes the kinds excluded by a strong finding. Suppressors are
// visited in priority order and a kind that was itself suppressed no longer
// suppresses others.
func (a *Aggregator) suppress(candidates []Candidate) {
	suppressed := make([]bool, len(candidates))
	for i := range candidates {
		c := &candidates[i]
		excluded := a.settings.Exclusions[c.Kind]
		if len(excluded) == 0 || suppressed[i] || c.HeuristicConfidence < a.settings.StrongEvidence {
			continue
		}
		for _, kind := range excluded {
			idx := kind.Priority()
			if idx < len(candidates) {
				suppressed[idx] = true
				candidates[idx].Score = 0
			}
		}
	}
}
