package classifier

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"smellsense/internal/unit"

	lru "github.com/hashicorp/golang-lru/v2"
)

// CachedModel memoizes successful votes of another model, keyed by the
// language and source of the unit. Failures are not cached.
type CachedModel struct {
	model Model
	cache *lru.Cache[string, RawVote]
}

// NewCachedModel wraps a model with an LRU cache of the given size
func NewCachedModel(model Model, size int) (*CachedModel, error) {
	cache, err := lru.New[string, RawVote](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create vote cache: %w", err)
	}
	return &CachedModel{model: model, cache: cache}, nil
}

func (m *CachedModel) Name() string {
	return m.model.Name()
}

func (m *CachedModel) Predict(ctx context.Context, u *unit.CodeUnit) (RawVote, error) {
	key := cacheKey(u)
	if vote, ok := m.cache.Get(key); ok {
		return copyVote(vote), nil
	}
	vote, err := m.model.Predict(ctx, u)
	if err != nil {
		return RawVote{}, err
	}
	m.cache.Add(key, copyVote(vote))
	return vote, nil
}

// Len returns the number of cached votes
func (m *CachedModel) Len() int {
	return m.cache.Len()
}

func cacheKey(u *unit.CodeUnit) string {
	h := sha256.New()
	h.Write([]byte(u.Language))
	h.Write([]byte{0})
	h.Write([]byte(u.Source))
	return hex.EncodeToString(h.Sum(nil))
}

func copyVote(v RawVote) RawVote {
	return RawVote{
		Labels:        append([]string(nil), v.Labels...),
		Probabilities: append([]float64(nil), v.Probabilities...),
	}
}
