package smells

import (
	"context"
	"math"
	"testing"

	"smellsense/internal/unit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeDetector struct {
	name     string
	kind     Kind
	findings []Finding
	panics   bool
}

func (d *fakeDetector) Name() string { return d.name }
func (d *fakeDetector) Kind() Kind   { return d.kind }

func (d *fakeDetector) Detect(ctx context.Context, u *unit.CodeUnit) []Finding {
	if d.panics {
		panic("boom")
	}
	return d.findings
}

// fullSet returns one silent detector per smell kind, replaced by overrides
func fullSet(overrides ...*fakeDetector) []Detector {
	byKind := make(map[Kind]*fakeDetector)
	for _, o := range overrides {
		byKind[o.kind] = o
	}
	var detectors []Detector
	for _, kind := range SmellKinds() {
		if o, ok := byKind[kind]; ok {
			detectors = append(detectors, o)
			continue
		}
		detectors = append(detectors, &fakeDetector{name: string(kind), kind: kind})
	}
	return detectors
}

func TestNewBankRejectsIncompleteSets(t *testing.T) {
	detectors := fullSet()

	_, err := NewBank(detectors[1:], zap.NewNop())
	require.ErrorIs(t, err, ErrConfiguration)

	_, err = NewBank(append(detectors, &fakeDetector{name: "again", kind: GodClass}), zap.NewNop())
	require.ErrorIs(t, err, ErrConfiguration)

	_, err = NewBank(append(detectors, &fakeDetector{name: "clean", kind: Clean}), zap.NewNop())
	require.ErrorIs(t, err, ErrConfiguration)

	_, err = NewBank(append(detectors, &fakeDetector{name: "lazy", kind: Kind("LazyClass")}), zap.NewNop())
	require.ErrorIs(t, err, ErrConfiguration)

	bank, err := NewBank(detectors, zap.NewNop())
	require.NoError(t, err)
	assert.Len(t, bank.Detectors(), len(SmellKinds()))
}

func TestBankDetectOrdersByPriority(t *testing.T) {
	detectors := fullSet(
		&fakeDetector{name: "naming", kind: BadNaming, findings: []Finding{{Kind: BadNaming, Confidence: 0.45, Evidence: "x"}}},
		&fakeDetector{name: "god", kind: GodClass, findings: []Finding{{Kind: GodClass, Confidence: 0.9, Evidence: "big"}}},
		&fakeDetector{name: "envy", kind: FeatureEnvy, findings: []Finding{{Kind: FeatureEnvy, Confidence: 0.6, Evidence: "order"}}},
	)
	// registration order must not matter
	for i, j := 0, len(detectors)-1; i < j; i, j = i+1, j-1 {
		detectors[i], detectors[j] = detectors[j], detectors[i]
	}
	bank, err := NewBank(detectors, zap.NewNop())
	require.NoError(t, err)

	findings, err := bank.Detect(context.Background(), &unit.CodeUnit{})
	require.NoError(t, err)
	require.Len(t, findings, 3)
	assert.Equal(t, []Kind{GodClass, FeatureEnvy, BadNaming},
		[]Kind{findings[0].Kind, findings[1].Kind, findings[2].Kind})
	assert.Equal(t, "god", findings[0].Detector)
}

func TestBankDropsInvalidOutput(t *testing.T) {
	bank, err := NewBank(fullSet(
		&fakeDetector{name: "panicky", kind: DeadCode, panics: true},
		&fakeDetector{name: "liar", kind: MagicNumbers, findings: []Finding{
			{Kind: Kind("Spaghetti"), Confidence: 0.9},
			{Kind: GodClass, Confidence: 0.9},
		}},
		&fakeDetector{name: "nan", kind: RawTypes, findings: []Finding{
			{Kind: RawTypes, Confidence: math.NaN()},
			{Kind: RawTypes, Confidence: 1.5},
			{Kind: RawTypes, Confidence: 0},
		}},
		&fakeDetector{name: "twice", kind: LongMethod, findings: []Finding{
			{Kind: LongMethod, Confidence: 0.6, Evidence: "a"},
			{Kind: LongMethod, Confidence: 0.8, Evidence: "b"},
		}},
	), zap.NewNop())
	require.NoError(t, err)

	findings, err := bank.Detect(context.Background(), &unit.CodeUnit{})
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, LongMethod, findings[0].Kind)
	assert.Equal(t, 0.8, findings[0].Confidence)
	assert.Equal(t, "b", findings[0].Evidence)
}

func TestBankDetectCanceled(t *testing.T) {
	bank, err := NewBank(fullSet(), zap.NewNop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = bank.Detect(ctx, &unit.CodeUnit{})
	require.ErrorIs(t, err, context.Canceled)
}

func TestFindingTagged(t *testing.T) {
	f := Finding{Kind: DeadCode, Confidence: 0.7, Evidence: "line 3", Detector: "dead_code_detector"}
	assert.Equal(t, "[dead_code_detector] line 3", f.Tagged())
}

func TestRecommendationString(t *testing.T) {
	assert.Equal(t, "general", Recommendation{Type: "general"}.String())
	assert.Equal(t, "reduce_size (240 lines)", Recommendation{Type: "reduce_size", Description: "240 lines"}.String())
}
