package classifier

import (
	"context"
	"fmt"

	"smellsense/internal/config"

	"go.uber.org/zap"
)

// NewFromConfig builds the configured classifier behind an Adapter. It
// returns a nil adapter when no classifier is configured; the release func
// is always safe to call.
func NewFromConfig(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Adapter, func(), error) {
	noop := func() {}
	c := cfg.Classifier

	var (
		model   Model
		release = noop
	)
	switch c.Backend {
	case config.ClassifierNone, "":
		logger.Info("No classifier configured, running heuristics only")
		return nil, noop, nil

	case config.ClassifierStatic:
		model = NewStaticModelFromMap("static", c.Vote)

	case config.ClassifierRemote:
		model = NewRemoteModel(c.URL)

	case config.ClassifierKNN:
		embedder, err := newEmbedder(ctx, cfg, logger)
		if err != nil {
			return nil, noop, err
		}
		client, err := NewQdrantClient(cfg.Qdrant.Host, cfg.Qdrant.Port, cfg.Qdrant.APIKey)
		if err != nil {
			return nil, noop, err
		}
		release = func() {
			if err := client.Close(); err != nil {
				logger.Warn("Failed to close qdrant client", zap.Error(err))
			}
		}
		model = NewKNNModel(embedder, client, c.Collection, c.TopK, logger)

	default:
		return nil, noop, fmt.Errorf("unknown classifier backend %q: %w", c.Backend, config.ErrConfiguration)
	}

	if c.CacheSize > 0 {
		cached, err := NewCachedModel(model, c.CacheSize)
		if err != nil {
			release()
			return nil, noop, err
		}
		model = cached
	}

	logger.Info("Classifier configured",
		zap.String("backend", c.Backend),
		zap.String("model", model.Name()),
		zap.Int("timeout_ms", c.TimeoutMs))
	return NewAdapter(model, c.VoteTolerance, logger), release, nil
}

func newEmbedder(ctx context.Context, cfg *config.Config, logger *zap.Logger) (Embedder, error) {
	switch cfg.Classifier.Embedder {
	case config.EmbedderGemini:
		return NewGeminiEmbedder(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.Gemini.Dimension)
	case config.EmbedderOllama, "":
		return NewOllamaEmbedder(OllamaEmbeddingConfig{
			APIURL:    cfg.Ollama.URL,
			APIKey:    cfg.Ollama.APIKey,
			Model:     cfg.Ollama.Model,
			Dimension: cfg.Ollama.Dimension,
		}, logger)
	}
	return nil, fmt.Errorf("unknown embedder %q: %w", cfg.Classifier.Embedder, config.ErrConfiguration)
}
