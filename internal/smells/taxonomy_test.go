package smells

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaxonomyIsClosedAndOrdered(t *testing.T) {
	kinds := AllKinds()
	require.Len(t, kinds, 16)
	assert.Equal(t, GodClass, kinds[0])
	assert.Equal(t, Clean, kinds[len(kinds)-1])
	assert.NotContains(t, SmellKinds(), Clean)

	for i, kind := range kinds {
		assert.True(t, kind.Valid())
		assert.Equal(t, i, kind.Priority())
	}
	assert.False(t, Kind("LazyClass").Valid())
	assert.Equal(t, len(kinds), Kind("LazyClass").Priority())
}

func TestKindClassesFollowPriority(t *testing.T) {
	rank := map[KindClass]int{ClassStructural: 0, ClassSemantic: 1, ClassLexical: 2, ClassSentinel: 3}
	previous := 0
	for _, kind := range AllKinds() {
		current := rank[kind.Class()]
		assert.GreaterOrEqual(t, current, previous, "kind %s out of class order", kind)
		previous = current
	}
	assert.Equal(t, ClassSemantic, FeatureEnvy.Class())
	assert.Equal(t, ClassLexical, BadNaming.Class())
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		label    string
		expected Kind
	}{
		{"GodClass", GodClass},
		{"god_class", GodClass},
		{"God Class", GodClass},
		{"long-parameter-list", LongParameterList},
		{"CLEAN", Clean},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			kind, err := ParseKind(tt.label)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, kind)
		})
	}

	_, err := ParseKind("spaghetti")
	assert.Error(t, err)
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Feature Envy", FeatureEnvy.DisplayName())
	assert.Equal(t, "Other", Kind("Other").DisplayName())
}

func TestSitesEvidence(t *testing.T) {
	var sites Sites
	for i := 1; i <= 7; i++ {
		sites.Add("line %d", i)
	}
	sites.Add("line %d", 1)

	assert.Equal(t, 7, sites.Len())
	assert.Equal(t, "7 hits: line 1; line 2; line 3; line 4; line 5 (+2 more)", sites.Evidence("7 hits"))

	var empty Sites
	assert.Equal(t, "nothing", empty.Evidence("nothing"))
}
