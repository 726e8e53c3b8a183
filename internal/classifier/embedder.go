package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"fortio.org/safecast"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

// Embedder turns code text into a dense vector
type Embedder interface {
	Name() string
	Embed(ctx context.Context, text string) ([]float32, error)
}

// OllamaEmbeddingConfig configures an Ollama embedding endpoint
type OllamaEmbeddingConfig struct {
	APIURL    string
	APIKey    string
	Model     string
	Dimension int
}

// OllamaEmbedder calls Ollama's /api/embeddings endpoint
type OllamaEmbedder struct {
	config OllamaEmbeddingConfig
	client *http.Client
	logger *zap.Logger
}

// NewOllamaEmbedder creates an Ollama embedder
func NewOllamaEmbedder(config OllamaEmbeddingConfig, logger *zap.Logger) (*OllamaEmbedder, error) {
	if config.APIURL == "" || config.Model == "" {
		return nil, fmt.Errorf("ollama embedder needs an url and a model")
	}
	return &OllamaEmbedder{
		config: config,
		client: &http.Client{Timeout: 30 * time.Second},
		logger: logger,
	}, nil
}

func (e *OllamaEmbedder) Name() string {
	return "ollama:" + e.config.Model
}

type ollamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaResponse struct {
	Embedding []float32 `json:"embedding"`
}

func (e *OllamaEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(ollamaRequest{Model: e.config.Model, Prompt: text})
	if err != nil {
		return nil, fmt.Errorf("failed to encode embedding request: %w", err)
	}

	url := strings.TrimRight(e.config.APIURL, "/") + "/api/embeddings"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if e.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.config.APIKey)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		e.logger.Warn("Embedding request rejected",
			zap.String("model", e.config.Model),
			zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("embedding request returned %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out ollamaResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode embedding response: %w", err)
	}
	if len(out.Embedding) == 0 {
		return nil, fmt.Errorf("empty embedding from %s", e.Name())
	}
	if e.config.Dimension > 0 && len(out.Embedding) != e.config.Dimension {
		return nil, fmt.Errorf("embedding has dimension %d, expected %d", len(out.Embedding), e.config.Dimension)
	}
	return out.Embedding, nil
}

// GeminiEmbedder embeds through the Gemini API
type GeminiEmbedder struct {
	client    *genai.Client
	model     string
	dimension int
}

// NewGeminiEmbedder creates a Gemini embedder. An empty apiKey lets the
// genai client read GEMINI_API_KEY itself.
func NewGeminiEmbedder(ctx context.Context, apiKey, model string, dimension int) (*GeminiEmbedder, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GeminiEmbedder{client: client, model: model, dimension: dimension}, nil
}

func (e *GeminiEmbedder) Name() string {
	return "gemini:" + e.model
}

func (e *GeminiEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	cfg := &genai.EmbedContentConfig{TaskType: "CLASSIFICATION"}
	if e.dimension > 0 {
		dim, err := safecast.Conv[int32](e.dimension)
		if err != nil {
			return nil, fmt.Errorf("invalid embedding dimension %d: %w", e.dimension, err)
		}
		cfg.OutputDimensionality = genai.Ptr(dim)
	}

	resp, err := e.client.Models.EmbedContent(ctx, e.model, genai.Text(text), cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini embedding failed: %w", err)
	}
	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Values) == 0 {
		return nil, fmt.Errorf("empty embedding from %s", e.Name())
	}
	return resp.Embeddings[0].Values, nil
}
