package godclass

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"smellsense/internal/parse"
	"smellsense/internal/smells"
	"smellsense/internal/syntax"
	"smellsense/internal/unit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func build(t *testing.T, lang syntax.Language, source string) *unit.CodeUnit {
	t.Helper()
	registry, err := parse.NewDefaultRegistry(zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(registry.Close)

	u, err := unit.NewBuilder(registry, nil, zap.NewNop()).
		Build(context.Background(), unit.Input{Source: source, Language: lang})
	require.NoError(t, err)
	return u
}

// javaClass renders a class holding the given field types, with methods
// spread round-robin over the fields
func javaClass(fieldTypes []string, methods int) string {
	var b strings.Builder
	b.WriteString("public class OrderManager {\n")
	for i, typ := range fieldTypes {
		fmt.Fprintf(&b, "    private %s dep%d;\n", typ, i)
	}
	for i := 0; i < methods; i++ {
		fmt.Fprintf(&b, "    public void handle%c(String request) {\n", 'A'+i)
		fmt.Fprintf(&b, "        dep%d.process(request);\n", i%len(fieldTypes))
		b.WriteString("    }\n")
	}
	b.WriteString("}\n")
	return b.String()
}

func TestDetectGodClass(t *testing.T) {
	source := javaClass([]string{
		"OrderService", "PaymentGateway", "CustomerRepository",
		"EmailSender", "AuditLogger", "InventoryClient",
	}, 15)
	u := build(t, syntax.LanguageJava, source)
	require.False(t, u.Malformed())

	d := NewGodClassDetector(DefaultThresholds(), zap.NewNop())
	findings := d.Detect(context.Background(), u)
	require.Len(t, findings, 1)

	f := findings[0]
	assert.Equal(t, smells.GodClass, f.Kind)
	assert.Equal(t, "god_class_detector", f.Detector)
	assert.GreaterOrEqual(t, f.Confidence, 0.75)
	assert.LessOrEqual(t, f.Confidence, 0.95)
	assert.Contains(t, f.Evidence, "fields 6 > 5")
	assert.Contains(t, f.Evidence, "methods 15 > 14")
	assert.Contains(t, f.Evidence, "service dependencies 6 >= 3")
	assert.Contains(t, f.Evidence, "hints: ")
	assert.Contains(t, f.Evidence, "reduce_coupling (depends on 6 services and reads ")
}

func TestDetectGodClassNeedsServices(t *testing.T) {
	source := javaClass([]string{
		"OrderService", "PaymentGateway", "String", "int", "long", "boolean",
	}, 15)
	u := build(t, syntax.LanguageJava, source)

	d := NewGodClassDetector(DefaultThresholds(), zap.NewNop())
	assert.Empty(t, d.Detect(context.Background(), u))

	values := d.SignalValues(context.Background(), u)
	assert.Equal(t, 6.0, values["NOF"])
	assert.Equal(t, 15.0, values["NOM"])
	assert.Equal(t, 2.0, values["SDEP"])
}

func TestDetectGodClassSkipsBareMethods(t *testing.T) {
	u := build(t, syntax.LanguageJava, "public int add(int a, int b) {\n    return a + b;\n}\n")

	d := NewGodClassDetector(DefaultThresholds(), zap.NewNop())
	assert.Empty(t, d.Detect(context.Background(), u))
}

func TestRecommenderDescribesHints(t *testing.T) {
	u := build(t, syntax.LanguageJava, javaClass([]string{"OrderService"}, 2))
	r := NewRecommender(DefaultThresholds())

	recs := r.Generate(u, map[string]float64{"NOMNAMM": 20, "SDEP": 4, "ATFD": 0})
	require.Len(t, recs, 2)
	assert.Equal(t, "extract_class (20 methods besides accessors, group them by responsibility)", recs[0].String())
	assert.Equal(t, "reduce_coupling (depends on 4 services and reads 0 foreign attributes)", recs[1].String())

	recs = r.Generate(u, map[string]float64{})
	require.Len(t, recs, 1)
	assert.Equal(t, "general (split the class by responsibility)", recs[0].String())
}

func TestRuleBasedStrategy(t *testing.T) {
	s := NewRuleBasedStrategy(DefaultThresholds())

	hit := s.Detect(context.Background(), map[string]float64{"NOF": 6, "NOM": 15, "SDEP": 3})
	assert.True(t, hit.IsGodClass)
	assert.Equal(t, 0.75, hit.Confidence)
	assert.Len(t, hit.ViolatedSignals, 3)

	// boundaries are strict for counts and inclusive for dependencies
	miss := s.Detect(context.Background(), map[string]float64{"NOF": 5, "NOM": 15, "SDEP": 9})
	assert.False(t, miss.IsGodClass)
}

func TestScoreBasedStrategy(t *testing.T) {
	s := NewScoreBasedStrategy(DefaultThresholds())

	low := s.Detect(context.Background(), map[string]float64{"NOF": 6, "NOM": 15, "SDEP": 3, "TCC": 1})
	high := s.Detect(context.Background(), map[string]float64{"NOF": 20, "NOM": 40, "SDEP": 12, "TCC": 0})
	assert.True(t, low.IsGodClass)
	assert.True(t, high.IsGodClass)
	assert.Less(t, low.Confidence, high.Confidence)
	assert.InDelta(t, 0.95, high.Confidence, 1e-9)

	none := s.Detect(context.Background(), map[string]float64{"NOF": 2, "NOM": 3, "SDEP": 0, "TCC": 1})
	assert.False(t, none.IsGodClass)
}

func TestAggregateResultsRequiresAgreement(t *testing.T) {
	d := NewGodClassDetector(DefaultThresholds(), zap.NewNop())

	agg := d.aggregateResults([]*StrategyResult{
		{Strategy: "rule_based", IsGodClass: true, Confidence: 0.75, ViolatedSignals: []string{"a"}},
		{Strategy: "score_based", IsGodClass: true, Confidence: 0.85, ViolatedSignals: []string{"b"}},
	})
	assert.True(t, agg.IsGodClass)
	assert.Equal(t, 0.85, agg.Confidence)
	assert.Equal(t, "score_based", agg.BestStrategy)
	assert.Equal(t, []string{"a", "b"}, agg.ViolatedSignals)

	agg = d.aggregateResults([]*StrategyResult{
		{Strategy: "rule_based"},
		{Strategy: "score_based", IsGodClass: true, Confidence: 0.85},
	})
	assert.False(t, agg.IsGodClass)
}

func TestThresholdsValidate(t *testing.T) {
	require.NoError(t, DefaultThresholds().Validate())

	bad := DefaultThresholds()
	bad.NormFieldsMax = 3
	require.ErrorIs(t, bad.Validate(), smells.ErrConfiguration)

	bad = DefaultThresholds()
	bad.MaxConfidence = 1.2
	require.ErrorIs(t, bad.Validate(), smells.ErrConfiguration)
}
