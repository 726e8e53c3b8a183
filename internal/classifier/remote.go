package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"smellsense/internal/syntax"
	"smellsense/internal/unit"
)

// RemoteModel calls a model-serving endpoint that answers
// {"labels": [...], "probabilities": [...]} for {"code", "language"}
type RemoteModel struct {
	url    string
	client *http.Client
}

// NewRemoteModel creates a model backed by an HTTP endpoint. Timeouts come
// from the caller's context.
func NewRemoteModel(url string) *RemoteModel {
	return &RemoteModel{url: url, client: &http.Client{}}
}

func (m *RemoteModel) Name() string {
	return "remote:" + m.url
}

type remoteRequest struct {
	Code     string          `json:"code"`
	Language syntax.Language `json:"language,omitempty"`
}

func (m *RemoteModel) Predict(ctx context.Context, u *unit.CodeUnit) (RawVote, error) {
	body, err := json.Marshal(remoteRequest{Code: u.Source, Language: u.Language})
	if err != nil {
		return RawVote{}, fmt.Errorf("failed to encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.url, bytes.NewReader(body))
	if err != nil {
		return RawVote{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return RawVote{}, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return RawVote{}, fmt.Errorf("model server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var vote RawVote
	if err := json.NewDecoder(resp.Body).Decode(&vote); err != nil {
		return RawVote{}, fmt.Errorf("failed to decode vote: %w", err)
	}
	return vote, nil
}
