package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"smellsense/internal/ensemble"
	"smellsense/internal/smells"
	"smellsense/internal/store"
	"smellsense/internal/syntax"
	"smellsense/internal/unit"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeClassifier struct {
	last      unit.Input
	saveErr   error
	recent    []*store.Record
	recentErr error
}

func (f *fakeClassifier) Classify(ctx context.Context, in unit.Input, save bool) (*ensemble.Verdict, *store.Record, error) {
	f.last = in
	if in.Source == "boom" {
		return nil, nil, context.Canceled
	}
	verdict := &ensemble.Verdict{PrimarySmell: smells.MagicNumbers, Confidence: 64, SecondarySmells: []ensemble.SecondarySmell{}}
	if !save {
		return verdict, nil, nil
	}
	if f.saveErr != nil {
		return verdict, nil, f.saveErr
	}
	return verdict, &store.Record{ID: "rec-1"}, nil
}

func (f *fakeClassifier) Recent(ctx context.Context, limit int) ([]*store.Record, error) {
	if f.recentErr != nil {
		return nil, f.recentErr
	}
	if limit < len(f.recent) {
		return f.recent[:limit], nil
	}
	return f.recent, nil
}

func text(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.Len(t, result.Content, 1)
	content, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	return content.Text
}

func TestClassifySmellTool(t *testing.T) {
	fake := &fakeClassifier{}
	s := NewSmellServer(fake, zap.NewNop())

	result, _, err := s.handleClassifySmell(context.Background(), nil, ClassifySmellParams{
		Code:     "x = 42 * 7",
		Language: "Python",
	})
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Equal(t, syntax.LanguagePython, fake.last.Language)

	var payload struct {
		Verdict  ensemble.Verdict `json:"verdict"`
		RecordID string           `json:"record_id"`
	}
	require.NoError(t, json.Unmarshal([]byte(text(t, result)), &payload))
	assert.Equal(t, smells.MagicNumbers, payload.Verdict.PrimarySmell)
	assert.Equal(t, 64.0, payload.Verdict.Confidence)
	assert.Empty(t, payload.RecordID)

	result, _, err = s.handleClassifySmell(context.Background(), nil, ClassifySmellParams{Code: "x = 42", Save: true})
	require.NoError(t, err)
	assert.Contains(t, text(t, result), `"record_id": "rec-1"`)
}

func TestClassifySmellToolErrors(t *testing.T) {
	fake := &fakeClassifier{saveErr: errors.New("store offline")}
	s := NewSmellServer(fake, zap.NewNop())

	result, _, err := s.handleClassifySmell(context.Background(), nil, ClassifySmellParams{Code: "  "})
	require.NoError(t, err)
	assert.True(t, result.IsError)

	result, _, err = s.handleClassifySmell(context.Background(), nil, ClassifySmellParams{Code: "boom"})
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, text(t, result), "context canceled")

	// the verdict survives a failed save
	result, _, err = s.handleClassifySmell(context.Background(), nil, ClassifySmellParams{Code: "x = 42", Save: true})
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Contains(t, text(t, result), "verdict not recorded: store offline")
	assert.Contains(t, text(t, result), `"primary_smell": "MagicNumbers"`)
}

func TestListSmellsTool(t *testing.T) {
	s := NewSmellServer(&fakeClassifier{}, zap.NewNop())

	result, _, err := s.handleListSmells(context.Background(), nil, struct{}{})
	require.NoError(t, err)
	listing := text(t, result)
	assert.Contains(t, listing, " 1. GodClass (God Class, structural)\n")
	assert.Contains(t, listing, "16. Clean (Clean, sentinel)\n")
}

func TestSmellHistoryTool(t *testing.T) {
	fake := &fakeClassifier{recent: []*store.Record{
		{ID: "a", PrimarySmell: smells.DeadCode},
		{ID: "b", PrimarySmell: smells.Clean},
	}}
	s := NewSmellServer(fake, zap.NewNop())

	result, _, err := s.handleSmellHistory(context.Background(), nil, SmellHistoryParams{Limit: 1})
	require.NoError(t, err)
	var payload struct {
		Records []store.Record `json:"records"`
	}
	require.NoError(t, json.Unmarshal([]byte(text(t, result)), &payload))
	require.Len(t, payload.Records, 1)
	assert.Equal(t, "a", payload.Records[0].ID)

	fake.recentErr = errors.New("verdict history is not configured")
	result, _, err = s.handleSmellHistory(context.Background(), nil, SmellHistoryParams{})
	require.NoError(t, err)
	assert.True(t, result.IsError)
}
