package ensemble

import (
	"testing"

	"smellsense/internal/classifier"
	"smellsense/internal/smells"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func finding(kind smells.Kind, confidence float64) smells.Finding {
	return smells.Finding{
		Kind:       kind,
		Confidence: confidence,
		Evidence:   "evidence for " + string(kind),
		Detector:   string(kind) + "_detector",
	}
}

// voteWith builds a canonical vote; unlisted kinds share the remainder
func voteWith(p map[smells.Kind]float64) *classifier.Vote {
	kinds := smells.AllKinds()
	rest := 1.0
	for _, v := range p {
		rest -= v
	}
	share := rest / float64(len(kinds)-len(p))

	vote := &classifier.Vote{Source: "test", Probabilities: make([]float64, len(kinds))}
	for i, kind := range kinds {
		if v, ok := p[kind]; ok {
			vote.Probabilities[i] = v
		} else {
			vote.Probabilities[i] = share
		}
	}
	return vote
}

func kindsOf(candidates []Candidate) []smells.Kind {
	kinds := make([]smells.Kind, len(candidates))
	for i, c := range candidates {
		kinds[i] = c.Kind
	}
	return kinds
}

func TestAggregateHeuristicsOnly(t *testing.T) {
	a := NewAggregator(DefaultSettings())

	candidates := a.Aggregate([]smells.Finding{
		finding(smells.MagicNumbers, 0.45),
		finding(smells.GodClass, 0.8),
	}, nil)

	require.Len(t, candidates, 2)
	assert.Equal(t, smells.GodClass, candidates[0].Kind)
	assert.InDelta(t, 0.8, candidates[0].Score, 1e-12)
	assert.Equal(t, []Source{SourceHeuristic}, candidates[0].Sources())
	assert.Equal(t, smells.MagicNumbers, candidates[1].Kind)
	assert.InDelta(t, 0.225, candidates[1].Score, 1e-12)
	assert.Equal(t, []string{"[MagicNumbers_detector] evidence for MagicNumbers"}, candidates[1].Evidence())
}

func TestAggregateWithVote(t *testing.T) {
	a := NewAggregator(DefaultSettings())

	candidates := a.Aggregate(
		[]smells.Finding{finding(smells.FeatureEnvy, 0.6)},
		voteWith(map[smells.Kind]float64{smells.FeatureEnvy: 0.55}),
	)

	// every kind gets a share of the vote
	require.Len(t, candidates, len(smells.AllKinds()))
	top := candidates[0]
	assert.Equal(t, smells.FeatureEnvy, top.Kind)
	assert.InDelta(t, 0.7*0.6+0.4*0.55, top.Score, 1e-12)
	assert.Equal(t, []Source{SourceHeuristic, SourceClassifier}, top.Sources())
	assert.InDelta(t, 0.6, top.HeuristicConfidence, 1e-12)
	assert.InDelta(t, 0.55, top.ClassifierProbability, 1e-12)

	// the remaining kinds tie on the classifier share and keep taxonomy order
	rest := kindsOf(candidates[1:])
	var expected []smells.Kind
	for _, kind := range smells.AllKinds() {
		if kind != smells.FeatureEnvy {
			expected = append(expected, kind)
		}
	}
	assert.Equal(t, expected, rest)
	for _, c := range candidates[1:] {
		assert.Equal(t, []Source{SourceClassifier}, c.Sources())
	}
}

func TestAggregateTiesFollowPriority(t *testing.T) {
	a := NewAggregator(DefaultSettings())

	// 0.9*0.5 and 0.5*0.9 are the same product
	candidates := a.Aggregate([]smells.Finding{
		finding(smells.MagicNumbers, 0.9),
		finding(smells.DataClass, 0.5),
	}, nil)

	require.Len(t, candidates, 2)
	assert.Equal(t, candidates[0].Score, candidates[1].Score)
	assert.Equal(t, []smells.Kind{smells.DataClass, smells.MagicNumbers}, kindsOf(candidates))
}

func TestAggregateSuppression(t *testing.T) {
	a := NewAggregator(DefaultSettings())
	findings := []smells.Finding{
		finding(smells.GodClass, 0.9),
		finding(smells.DataClass, 0.7),
		finding(smells.LargeClass, 0.6),
		finding(smells.LongMethod, 0.6),
	}

	candidates := a.Aggregate(findings, voteWith(map[smells.Kind]float64{smells.DataClass: 0.9}))
	kinds := kindsOf(candidates)
	assert.Contains(t, kinds, smells.GodClass)
	assert.Contains(t, kinds, smells.LongMethod)
	assert.NotContains(t, kinds, smells.DataClass)
	assert.NotContains(t, kinds, smells.LargeClass)

	// a weak god class suppresses nothing
	findings[0].Confidence = 0.7
	kinds = kindsOf(a.Aggregate(findings, nil))
	assert.Contains(t, kinds, smells.DataClass)
	assert.Contains(t, kinds, smells.LargeClass)
}

func TestAggregateMutualExclusionKeepsHigherPriority(t *testing.T) {
	a := NewAggregator(DefaultSettings())

	candidates := a.Aggregate([]smells.Finding{
		finding(smells.DataClass, 0.95),
		finding(smells.GodClass, 0.8),
	}, nil)

	assert.Equal(t, []smells.Kind{smells.GodClass}, kindsOf(candidates))
}

func TestAggregateIgnoresOutOfTaxonomyFindings(t *testing.T) {
	a := NewAggregator(DefaultSettings())

	candidates := a.Aggregate([]smells.Finding{
		finding(smells.Kind("Spaghetti"), 0.9),
		finding(smells.Clean, 0.9),
		finding(smells.BadNaming, 0.45),
	}, nil)

	assert.Equal(t, []smells.Kind{smells.BadNaming}, kindsOf(candidates))
}

func TestAggregateMergesRepeatedKinds(t *testing.T) {
	a := NewAggregator(DefaultSettings())

	candidates := a.Aggregate([]smells.Finding{
		finding(smells.LongMethod, 0.6),
		finding(smells.LongMethod, 0.8),
	}, nil)

	require.Len(t, candidates, 1)
	assert.InDelta(t, 0.85*1.4, candidates[0].Score, 1e-12)
	assert.InDelta(t, 0.8, candidates[0].HeuristicConfidence, 1e-12)
	assert.Len(t, candidates[0].Findings, 2)
}

func TestAggregateScoresNeverNegative(t *testing.T) {
	a := NewAggregator(DefaultSettings())

	candidates := a.Aggregate([]smells.Finding{
		finding(smells.DeadCode, -0.5),
		finding(smells.RawTypes, 1.7),
	}, nil)

	require.Len(t, candidates, 1)
	assert.Equal(t, smells.RawTypes, candidates[0].Kind)
	assert.InDelta(t, 0.55, candidates[0].Score, 1e-12)
}
