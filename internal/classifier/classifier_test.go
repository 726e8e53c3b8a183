package classifier

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"smellsense/internal/smells"
	"smellsense/internal/syntax"
	"smellsense/internal/unit"

	"github.com/qdrant/go-client/qdrant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fullVote returns a raw vote over the taxonomy in reverse order with the
// given probabilities; unlisted kinds share the remainder evenly
func fullVote(p map[smells.Kind]float64) RawVote {
	kinds := smells.AllKinds()
	rest := 1.0
	for _, v := range p {
		rest -= v
	}
	share := rest / float64(len(kinds)-len(p))

	var vote RawVote
	for i := len(kinds) - 1; i >= 0; i-- {
		kind := kinds[i]
		v, ok := p[kind]
		if !ok {
			v = share
		}
		vote.Labels = append(vote.Labels, string(kind))
		vote.Probabilities = append(vote.Probabilities, v)
	}
	return vote
}

type funcModel struct {
	predict func(ctx context.Context, u *unit.CodeUnit) (RawVote, error)
	calls   atomic.Int32
}

func (m *funcModel) Name() string { return "func" }

func (m *funcModel) Predict(ctx context.Context, u *unit.CodeUnit) (RawVote, error) {
	m.calls.Add(1)
	return m.predict(ctx, u)
}

func testUnit(source string) *unit.CodeUnit {
	return &unit.CodeUnit{Source: source, Language: syntax.LanguageJava}
}

func TestNormalizeReordersToTaxonomy(t *testing.T) {
	raw := fullVote(map[smells.Kind]float64{smells.GodClass: 0.5, smells.Clean: 0.2})

	vote, err := Normalize(raw, 1e-3)
	require.NoError(t, err)
	require.Len(t, vote.Probabilities, len(smells.AllKinds()))
	assert.InDelta(t, 0.5, vote.P(smells.GodClass), 1e-12)
	assert.InDelta(t, 0.2, vote.P(smells.Clean), 1e-12)
	assert.InDelta(t, 0.3/14, vote.P(smells.BadNaming), 1e-12)

	top, p := vote.Top()
	assert.Equal(t, smells.GodClass, top)
	assert.InDelta(t, 0.5, p, 1e-12)
}

func TestNormalizeRescales(t *testing.T) {
	raw := fullVote(map[smells.Kind]float64{smells.DataClass: 0.6})
	raw.Probabilities[0] += 0.0005

	vote, err := Normalize(raw, 1e-3)
	require.NoError(t, err)
	sum := 0.0
	for _, p := range vote.Probabilities {
		sum += p
	}
	assert.InDelta(t, 1.0, sum, 1e-12)
}

func TestNormalizeAcceptsLabelSpellings(t *testing.T) {
	raw := fullVote(nil)
	raw.Labels[0] = "clean"
	raw.Labels[len(raw.Labels)-1] = "god_class"

	_, err := Normalize(raw, 1e-3)
	require.NoError(t, err)
}

func TestNormalizeRejectsMalformedVotes(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(v *RawVote)
	}{
		{"length mismatch", func(v *RawVote) { v.Probabilities = v.Probabilities[1:] }},
		{"unknown label", func(v *RawVote) { v.Labels[0] = "SpaghettiCode" }},
		{"duplicate label", func(v *RawVote) { v.Labels[1] = v.Labels[0] }},
		{"missing label", func(v *RawVote) {
			v.Labels = v.Labels[1:]
			v.Probabilities = v.Probabilities[1:]
		}},
		{"negative", func(v *RawVote) {
			v.Probabilities[0] = -0.1
			v.Probabilities[1] += 0.1
		}},
		{"nan", func(v *RawVote) { v.Probabilities[0] = math.NaN() }},
		{"sum too far from one", func(v *RawVote) { v.Probabilities[0] += 0.1 }},
		{"all zero", func(v *RawVote) {
			for i := range v.Probabilities {
				v.Probabilities[i] = 0
			}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := fullVote(nil)
			tt.mutate(&raw)
			_, err := Normalize(raw, 1e-3)
			require.ErrorIs(t, err, ErrClassifierUnavailable)
		})
	}
}

func TestAdapterClassify(t *testing.T) {
	model := NewStaticModel("fixed", fullVote(map[smells.Kind]float64{smells.LongMethod: 0.7}))
	adapter := NewAdapter(model, 1e-3, zap.NewNop())

	vote, err := adapter.Classify(context.Background(), testUnit("void f() {}"))
	require.NoError(t, err)
	assert.Equal(t, "fixed", vote.Source)
	assert.InDelta(t, 0.7, vote.P(smells.LongMethod), 1e-12)
	assert.Zero(t, vote.P(smells.Kind("Spaghetti")))
}

func TestAdapterWrapsFailures(t *testing.T) {
	tests := []struct {
		name    string
		predict func(ctx context.Context, u *unit.CodeUnit) (RawVote, error)
	}{
		{"model error", func(ctx context.Context, u *unit.CodeUnit) (RawVote, error) {
			return RawVote{}, errors.New("connection refused")
		}},
		{"panic", func(ctx context.Context, u *unit.CodeUnit) (RawVote, error) {
			panic("model exploded")
		}},
		{"malformed vote", func(ctx context.Context, u *unit.CodeUnit) (RawVote, error) {
			return RawVote{Labels: []string{"GodClass"}, Probabilities: []float64{1}}, nil
		}},
		{"timeout", func(ctx context.Context, u *unit.CodeUnit) (RawVote, error) {
			<-ctx.Done()
			return RawVote{}, ctx.Err()
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adapter := NewAdapter(&funcModel{predict: tt.predict}, 1e-3, zap.NewNop())
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			vote, err := adapter.Classify(ctx, testUnit("x"))
			require.ErrorIs(t, err, ErrClassifierUnavailable)
			assert.Nil(t, vote)
		})
	}
}

func TestCachedModel(t *testing.T) {
	inner := &funcModel{predict: func(ctx context.Context, u *unit.CodeUnit) (RawVote, error) {
		if u.Source == "fail" {
			return RawVote{}, errors.New("boom")
		}
		return fullVote(nil), nil
	}}
	cached, err := NewCachedModel(inner, 8)
	require.NoError(t, err)

	first, err := cached.Predict(context.Background(), testUnit("class A {}"))
	require.NoError(t, err)
	first.Probabilities[0] = 42 // callers may not corrupt the cache

	second, err := cached.Predict(context.Background(), testUnit("class A {}"))
	require.NoError(t, err)
	assert.Equal(t, fullVote(nil), second)
	assert.Equal(t, int32(1), inner.calls.Load())

	// same text in another language is a different key
	_, err = cached.Predict(context.Background(), &unit.CodeUnit{Source: "class A {}", Language: syntax.LanguagePython})
	require.NoError(t, err)
	assert.Equal(t, int32(2), inner.calls.Load())

	_, err = cached.Predict(context.Background(), testUnit("fail"))
	require.Error(t, err)
	_, err = cached.Predict(context.Background(), testUnit("fail"))
	require.Error(t, err)
	assert.Equal(t, int32(4), inner.calls.Load())
	assert.Equal(t, 2, cached.Len())
}

func TestRemoteModel(t *testing.T) {
	var got remoteRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(fullVote(map[smells.Kind]float64{smells.FeatureEnvy: 0.9}))
	}))
	defer server.Close()

	adapter := NewAdapter(NewRemoteModel(server.URL), 1e-3, zap.NewNop())
	vote, err := adapter.Classify(context.Background(), testUnit("class Printer {}"))
	require.NoError(t, err)
	assert.Equal(t, "class Printer {}", got.Code)
	assert.Equal(t, syntax.LanguageJava, got.Language)
	assert.InDelta(t, 0.9, vote.P(smells.FeatureEnvy), 1e-12)
}

func TestRemoteModelServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := NewRemoteModel(server.URL).Predict(context.Background(), testUnit("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestOllamaEmbedder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/embeddings", r.URL.Path)
		var req ollamaRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "nomic-embed-text", req.Model)
		_ = json.NewEncoder(w).Encode(ollamaResponse{Embedding: []float32{0.1, 0.2, 0.3}})
	}))
	defer server.Close()

	embedder, err := NewOllamaEmbedder(OllamaEmbeddingConfig{
		APIURL: server.URL + "/",
		Model:  "nomic-embed-text",
	}, zap.NewNop())
	require.NoError(t, err)

	vector, err := embedder.Embed(context.Background(), "class A {}")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, vector)

	embedder.config.Dimension = 768
	_, err = embedder.Embed(context.Background(), "class A {}")
	require.Error(t, err)
}

type fixedEmbedder struct{}

func (fixedEmbedder) Name() string { return "fixed" }

func (fixedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return []float32{1, 0}, nil
}

type fakeSearcher struct {
	points  []*qdrant.ScoredPoint
	request *qdrant.QueryPoints
}

func (s *fakeSearcher) Query(ctx context.Context, request *qdrant.QueryPoints) ([]*qdrant.ScoredPoint, error) {
	s.request = request
	return s.points, nil
}

func neighbour(label string, score float32) *qdrant.ScoredPoint {
	return &qdrant.ScoredPoint{
		Payload: qdrant.NewValueMap(map[string]any{LabelPayloadKey: label}),
		Score:   score,
	}
}

func TestKNNModel(t *testing.T) {
	searcher := &fakeSearcher{points: []*qdrant.ScoredPoint{
		neighbour("GodClass", 0.9),
		neighbour("god_class", 0.6),
		neighbour("DataClass", 0.5),
		neighbour("Spaghetti", 0.99),
		neighbour("Clean", -0.2),
	}}
	model := NewKNNModel(fixedEmbedder{}, searcher, "exemplars", 5, zap.NewNop())

	vote, err := NewAdapter(model, 1e-3, zap.NewNop()).Classify(context.Background(), testUnit("class A {}"))
	require.NoError(t, err)
	assert.InDelta(t, 0.75, vote.P(smells.GodClass), 1e-6)
	assert.InDelta(t, 0.25, vote.P(smells.DataClass), 1e-6)
	assert.Zero(t, vote.P(smells.Clean))

	assert.Equal(t, "exemplars", searcher.request.CollectionName)
	assert.Equal(t, uint64(5), searcher.request.GetLimit())
}

func TestKNNModelWithoutNeighbours(t *testing.T) {
	model := NewKNNModel(fixedEmbedder{}, &fakeSearcher{}, "exemplars", 5, zap.NewNop())

	_, err := NewAdapter(model, 1e-3, zap.NewNop()).Classify(context.Background(), testUnit("class A {}"))
	require.ErrorIs(t, err, ErrClassifierUnavailable)
}

func TestStaticModelFromMap(t *testing.T) {
	model := NewStaticModelFromMap("static", map[string]float64{"Clean": 1})
	_, err := NewAdapter(model, 1e-3, zap.NewNop()).Classify(context.Background(), testUnit("x"))
	require.ErrorIs(t, err, ErrClassifierUnavailable, "a vote must cover the whole taxonomy")
}
