package config

import (
	"os"
	"path/filepath"
	"testing"

	"smellsense/internal/smells"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	weights, err := cfg.Ensemble.Weights()
	require.NoError(t, err)
	assert.Len(t, weights, len(smells.SmellKinds()))
	assert.Equal(t, 1.0, weights[smells.GodClass])

	table, err := cfg.Ensemble.ExclusionTable()
	require.NoError(t, err)
	assert.Equal(t, []smells.Kind{smells.DataClass, smells.LargeClass, smells.LongParameterList}, table[smells.GodClass])
	assert.Equal(t, []smells.Kind{smells.GodClass}, table[smells.DataClass])
}

func TestLoadConfigEmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, Default().Ensemble.NoiseFloor, cfg.Ensemble.NoiseFloor)
}

func TestLoadConfigYAML(t *testing.T) {
	path := writeConfig(t, "smellsense.yaml", `
app:
  port: 9090
thresholds:
  god_class:
    max_fields: 8
ensemble:
  noise_floor: 0.3
  heuristic_weights:
    BadNaming: 0.3
kuzu:
  path: /tmp/verdicts.kuzu
store:
  backend: kuzu
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.App.Port)
	assert.Equal(t, 8, cfg.Thresholds.GodClass.MaxFields)
	// untouched values keep their defaults
	assert.Equal(t, 14, cfg.Thresholds.GodClass.MaxMethods)
	assert.Equal(t, 0.3, cfg.Ensemble.NoiseFloor)
	assert.Equal(t, 0.75, cfg.Ensemble.StrongEvidence)
	assert.Equal(t, 0.3, cfg.Ensemble.HeuristicWeights["BadNaming"])
	assert.Equal(t, 1.0, cfg.Ensemble.HeuristicWeights["GodClass"])
	assert.Equal(t, StoreKuzu, cfg.Store.Backend)
	assert.Equal(t, "/tmp/verdicts.kuzu", cfg.Kuzu.Path)
}

func TestLoadConfigTOML(t *testing.T) {
	path := writeConfig(t, "smellsense.toml", `
[classifier]
backend = "remote"
url = "http://models:8000/classify"
timeout_ms = 500

[thresholds.structural.long_method]
max_lines = 40
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ClassifierRemote, cfg.Classifier.Backend)
	assert.Equal(t, "http://models:8000/classify", cfg.Classifier.URL)
	assert.Equal(t, 500, cfg.Classifier.TimeoutMs)
	assert.Equal(t, 40, cfg.Thresholds.Structural.LongMethod.MaxLines)
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{
			name:    "unsupported extension",
			file:    "config.json",
			content: "{}",
		},
		{
			name:    "broken yaml",
			file:    "config.yaml",
			content: "app: [",
		},
		{
			name:    "weight out of range",
			file:    "config.yaml",
			content: "ensemble:\n  heuristic_weights:\n    GodClass: 1.5\n",
		},
		{
			name:    "unknown smell in weights",
			file:    "config.yaml",
			content: "ensemble:\n  heuristic_weights:\n    SpaghettiCode: 0.5\n",
		},
		{
			name:    "exclusion of unknown smell",
			file:    "config.yaml",
			content: "ensemble:\n  exclusions:\n    GodClass: [Spaghetti]\n",
		},
		{
			name:    "self exclusion",
			file:    "config.yaml",
			content: "ensemble:\n  exclusions:\n    LongMethod: [LongMethod]\n",
		},
		{
			name:    "negative noise floor",
			file:    "config.toml",
			content: "[ensemble]\nnoise_floor = -0.1\n",
		},
		{
			name:    "unknown classifier backend",
			file:    "config.toml",
			content: "[classifier]\nbackend = \"oracle\"\n",
		},
		{
			name:    "invalid detector threshold",
			file:    "config.yaml",
			content: "thresholds:\n  lexical:\n    scale:\n      rate: 0\n",
		},
		{
			name:    "unknown store",
			file:    "config.yaml",
			content: "store:\n  backend: sqlite\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.file, tt.content))
			require.ErrorIs(t, err, ErrConfiguration)
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrConfiguration)
}

func TestMissingHeuristicWeight(t *testing.T) {
	cfg := Default()
	delete(cfg.Ensemble.HeuristicWeights, string(smells.FeatureEnvy))

	err := cfg.Validate()
	require.ErrorIs(t, err, ErrConfiguration)
	assert.Contains(t, err.Error(), "FeatureEnvy")
}

func TestWeightKeysAcceptAnySpelling(t *testing.T) {
	cfg := Default()
	delete(cfg.Ensemble.HeuristicWeights, string(smells.GodClass))
	cfg.Ensemble.HeuristicWeights["god_class"] = 0.95

	weights, err := cfg.Ensemble.Weights()
	require.NoError(t, err)
	assert.Equal(t, 0.95, weights[smells.GodClass])
}

func TestEnvironmentSecrets(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "gemini-secret")
	t.Setenv("NEO4J_PASSWORD", "graph-secret")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "gemini-secret", cfg.Gemini.APIKey)
	assert.Equal(t, "graph-secret", cfg.Neo4j.Password)
}

func TestStaticClassifierNeedsVote(t *testing.T) {
	cfg := Default()
	cfg.Classifier.Backend = ClassifierStatic
	require.ErrorIs(t, cfg.Validate(), ErrConfiguration)

	cfg.Classifier.Vote = map[string]float64{"Clean": 1}
	require.NoError(t, cfg.Validate())
}
