// Package config loads the deployment configuration: detector thresholds,
// ensemble weights, classifier backend and verdict store.
package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"smellsense/internal/smells"
	"smellsense/internal/smells/catalog"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// ErrConfiguration marks a missing or out-of-range setting. It is fatal at
// startup.
var ErrConfiguration = smells.ErrConfiguration

// Classifier backends
const (
	ClassifierNone   = "none"
	ClassifierStatic = "static"
	ClassifierKNN    = "knn"
	ClassifierRemote = "remote"
)

// Embedding backends for the knn classifier
const (
	EmbedderOllama = "ollama"
	EmbedderGemini = "gemini"
)

// Verdict store backends
const (
	StoreNone  = "none"
	StoreKuzu  = "kuzu"
	StoreNeo4j = "neo4j"
)

type Config struct {
	App        AppConfig          `yaml:"app" toml:"app"`
	Thresholds catalog.Thresholds `yaml:"thresholds" toml:"thresholds"`
	Ensemble   EnsembleConfig     `yaml:"ensemble" toml:"ensemble"`
	Classifier ClassifierConfig   `yaml:"classifier" toml:"classifier"`
	Qdrant     QdrantConfig       `yaml:"qdrant" toml:"qdrant"`
	Ollama     OllamaConfig       `yaml:"ollama" toml:"ollama"`
	Gemini     GeminiConfig       `yaml:"gemini" toml:"gemini"`
	Store      StoreConfig        `yaml:"store" toml:"store"`
	Kuzu       KuzuConfig         `yaml:"kuzu" toml:"kuzu"`
	Neo4j      Neo4jConfig        `yaml:"neo4j" toml:"neo4j"`
}

type AppConfig struct {
	Port     int    `yaml:"port" toml:"port"`
	LogLevel string `yaml:"log_level" toml:"log_level"`
	// ServiceSuffixes mark field types counted as service dependencies
	ServiceSuffixes []string `yaml:"service_suffixes" toml:"service_suffixes"`
	NumWorkers      int      `yaml:"num_workers" toml:"num_workers"`
	MaxFileBytes    int64    `yaml:"max_file_bytes" toml:"max_file_bytes"`
}

// EnsembleConfig holds the fusion weights and resolver thresholds. Maps are
// keyed by smell kind name.
type EnsembleConfig struct {
	HeuristicWeights map[string]float64  `yaml:"heuristic_weights" toml:"heuristic_weights"`
	ClassifierWeight float64             `yaml:"classifier_weight" toml:"classifier_weight"`
	NoiseFloor       float64             `yaml:"noise_floor" toml:"noise_floor"`
	StrongEvidence   float64             `yaml:"strong_evidence" toml:"strong_evidence"`
	MentionThreshold float64             `yaml:"mention_threshold" toml:"mention_threshold"`
	SecondaryCap     int                 `yaml:"secondary_cap" toml:"secondary_cap"`
	Exclusions       map[string][]string `yaml:"exclusions" toml:"exclusions"`
}

type ClassifierConfig struct {
	Backend       string  `yaml:"backend" toml:"backend"`
	TimeoutMs     int     `yaml:"timeout_ms" toml:"timeout_ms"`
	VoteTolerance float64 `yaml:"vote_tolerance" toml:"vote_tolerance"`
	CacheSize     int     `yaml:"cache_size" toml:"cache_size"`

	// knn
	Embedder   string `yaml:"embedder" toml:"embedder"`
	Collection string `yaml:"collection" toml:"collection"`
	TopK       int    `yaml:"top_k" toml:"top_k"`

	// remote
	URL string `yaml:"url" toml:"url"`

	// static
	Vote map[string]float64 `yaml:"vote" toml:"vote"`
}

type QdrantConfig struct {
	Host   string `yaml:"host" toml:"host"`
	Port   int    `yaml:"port" toml:"port"`
	APIKey string `yaml:"api_key" toml:"api_key"`
}

type OllamaConfig struct {
	URL       string `yaml:"url" toml:"url"`
	APIKey    string `yaml:"api_key" toml:"api_key"`
	Model     string `yaml:"model" toml:"model"`
	Dimension int    `yaml:"dimension" toml:"dimension"`
}

type GeminiConfig struct {
	APIKey    string `yaml:"api_key" toml:"api_key"`
	Model     string `yaml:"model" toml:"model"`
	Dimension int    `yaml:"dimension" toml:"dimension"`
}

type StoreConfig struct {
	Backend string `yaml:"backend" toml:"backend"`
}

type KuzuConfig struct {
	Path string `yaml:"path" toml:"path"`
}

type Neo4jConfig struct {
	URI      string `yaml:"uri" toml:"uri"`
	Username string `yaml:"username" toml:"username"`
	Password string `yaml:"password" toml:"password"`
}

// DefaultHeuristicWeights returns the stock per-kind trust in the detectors;
// structural detectors are trusted more than lexical ones
func DefaultHeuristicWeights() map[string]float64 {
	return map[string]float64{
		string(smells.GodClass):           1.0,
		string(smells.DataClass):          0.9,
		string(smells.LargeClass):         0.8,
		string(smells.LongMethod):         0.85,
		string(smells.LongParameterList):  0.8,
		string(smells.DeadCode):           0.9,
		string(smells.DuplicateCode):      0.8,
		string(smells.PointlessOperation): 0.75,
		string(smells.FeatureEnvy):        0.7,
		string(smells.GlobalState):        0.7,
		string(smells.SwallowedException): 0.7,
		string(smells.MagicNumbers):       0.5,
		string(smells.RawTypes):           0.55,
		string(smells.UnnecessaryBoxing):  0.55,
		string(smells.BadNaming):          0.4,
	}
}

// DefaultExclusions returns the stock precedence suppression table. A strong
// god class also absorbs the wide constructor its services arrive through.
func DefaultExclusions() map[string][]string {
	return map[string][]string{
		string(smells.GodClass):  {string(smells.DataClass), string(smells.LargeClass), string(smells.LongParameterList)},
		string(smells.DataClass): {string(smells.GodClass)},
	}
}

// Default returns a complete configuration that runs offline: heuristics
// only and no verdict store
func Default() *Config {
	return &Config{
		App: AppConfig{
			Port:         8080,
			LogLevel:     "info",
			NumWorkers:   4,
			MaxFileBytes: 512 * 1024,
		},
		Thresholds: catalog.DefaultThresholds(),
		Ensemble: EnsembleConfig{
			HeuristicWeights: DefaultHeuristicWeights(),
			ClassifierWeight: 0.4,
			NoiseFloor:       0.2,
			StrongEvidence:   0.75,
			MentionThreshold: 0.05,
			SecondaryCap:     3,
			Exclusions:       DefaultExclusions(),
		},
		Classifier: ClassifierConfig{
			Backend:       ClassifierNone,
			TimeoutMs:     2000,
			VoteTolerance: 1e-3,
			CacheSize:     1024,
			Embedder:      EmbedderOllama,
			Collection:    "smell_exemplars",
			TopK:          15,
		},
		Qdrant: QdrantConfig{Host: "localhost", Port: 6334},
		Ollama: OllamaConfig{URL: "http://localhost:11434", Model: "nomic-embed-text", Dimension: 768},
		Gemini: GeminiConfig{Model: "text-embedding-004", Dimension: 768},
		Store:  StoreConfig{Backend: StoreNone},
		Kuzu:   KuzuConfig{Path: "smellsense.kuzu"},
		Neo4j:  Neo4jConfig{URI: "bolt://localhost:7687", Username: "neo4j"},
	}
}

// LoadConfig reads a YAML or TOML file over Default(), applies secrets from
// the environment (and a .env file when present) and validates the result.
// An empty path yields the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file %s: %v: %w", path, err, ErrConfiguration)
			}
		case ".toml":
			if _, err := toml.Decode(string(data), cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file %s: %v: %w", path, err, ErrConfiguration)
			}
		default:
			return nil, fmt.Errorf("unsupported config format %q: %w", filepath.Ext(path), ErrConfiguration)
		}
	}

	_ = godotenv.Load()
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides secrets with environment variables
func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv("GEMINI_API_KEY")); v != "" {
		c.Gemini.APIKey = v
	}
	if v := strings.TrimSpace(os.Getenv("QDRANT_API_KEY")); v != "" {
		c.Qdrant.APIKey = v
	}
	if v := strings.TrimSpace(os.Getenv("OLLAMA_API_KEY")); v != "" {
		c.Ollama.APIKey = v
	}
	if v := strings.TrimSpace(os.Getenv("NEO4J_PASSWORD")); v != "" {
		c.Neo4j.Password = v
	}
}

// Validate checks every threshold, weight and table. Errors wrap
// ErrConfiguration.
func (c *Config) Validate() error {
	if err := c.Thresholds.Validate(); err != nil {
		return err
	}
	if err := c.Ensemble.Validate(); err != nil {
		return err
	}
	if err := c.Classifier.Validate(); err != nil {
		return err
	}

	switch c.Store.Backend {
	case StoreNone, "":
	case StoreKuzu:
		if c.Kuzu.Path == "" {
			return fmt.Errorf("kuzu store needs a path: %w", ErrConfiguration)
		}
	case StoreNeo4j:
		if c.Neo4j.URI == "" {
			return fmt.Errorf("neo4j store needs a uri: %w", ErrConfiguration)
		}
	default:
		return fmt.Errorf("unknown store backend %q: %w", c.Store.Backend, ErrConfiguration)
	}

	if c.App.NumWorkers < 1 {
		return fmt.Errorf("app num_workers must be positive: %w", ErrConfiguration)
	}
	return nil
}

func (e EnsembleConfig) Validate() error {
	if _, err := e.Weights(); err != nil {
		return err
	}
	if _, err := e.ExclusionTable(); err != nil {
		return err
	}

	switch {
	case !inRange(e.ClassifierWeight, 0, 1):
		return fmt.Errorf("classifier_weight must be within [0,1]: %w", ErrConfiguration)
	case !inRange(e.NoiseFloor, 0, 1):
		return fmt.Errorf("noise_floor must be within [0,1]: %w", ErrConfiguration)
	case !inRange(e.StrongEvidence, 0, 1) || e.StrongEvidence == 0:
		return fmt.Errorf("strong_evidence must be within (0,1]: %w", ErrConfiguration)
	case !inRange(e.MentionThreshold, 0, 1):
		return fmt.Errorf("mention_threshold must be within [0,1]: %w", ErrConfiguration)
	case e.SecondaryCap < 0:
		return fmt.Errorf("secondary_cap must not be negative: %w", ErrConfiguration)
	}
	return nil
}

// Weights resolves the heuristic weight table. Every smell kind needs a
// weight in (0,1]; keys accept any spelling ParseKind does.
func (e EnsembleConfig) Weights() (map[smells.Kind]float64, error) {
	weights := make(map[smells.Kind]float64, len(e.HeuristicWeights))
	for name, w := range e.HeuristicWeights {
		kind, err := smells.ParseKind(name)
		if err != nil || kind == smells.Clean {
			return nil, fmt.Errorf("heuristic weight for unknown smell %q: %w", name, ErrConfiguration)
		}
		if _, dup := weights[kind]; dup {
			return nil, fmt.Errorf("heuristic weight for %s given twice: %w", kind, ErrConfiguration)
		}
		if !inRange(w, 0, 1) || w == 0 {
			return nil, fmt.Errorf("heuristic weight for %s must be within (0,1], got %v: %w", kind, w, ErrConfiguration)
		}
		weights[kind] = w
	}
	for _, kind := range smells.SmellKinds() {
		if _, ok := weights[kind]; !ok {
			return nil, fmt.Errorf("missing heuristic weight for %s: %w", kind, ErrConfiguration)
		}
	}
	return weights, nil
}

// ExclusionTable resolves the precedence suppression table: a strong
// finding of the key kind zeroes the scores of the listed kinds
func (e EnsembleConfig) ExclusionTable() (map[smells.Kind][]smells.Kind, error) {
	table := make(map[smells.Kind][]smells.Kind, len(e.Exclusions))
	for suppressor, suppressed := range e.Exclusions {
		a, err := smells.ParseKind(suppressor)
		if err != nil || a == smells.Clean {
			return nil, fmt.Errorf("exclusion for unknown smell %q: %w", suppressor, ErrConfiguration)
		}
		for _, name := range suppressed {
			b, err := smells.ParseKind(name)
			if err != nil || b == smells.Clean {
				return nil, fmt.Errorf("%s excludes unknown smell %q: %w", a, name, ErrConfiguration)
			}
			if a == b {
				return nil, fmt.Errorf("%s cannot exclude itself: %w", a, ErrConfiguration)
			}
			table[a] = append(table[a], b)
		}
	}
	return table, nil
}

func (c ClassifierConfig) Validate() error {
	switch c.Backend {
	case ClassifierNone, "":
		return nil
	case ClassifierStatic:
		if len(c.Vote) == 0 {
			return fmt.Errorf("static classifier needs a vote: %w", ErrConfiguration)
		}
	case ClassifierKNN:
		if c.Embedder != EmbedderOllama && c.Embedder != EmbedderGemini {
			return fmt.Errorf("unknown embedder %q: %w", c.Embedder, ErrConfiguration)
		}
		if c.Collection == "" || c.TopK < 1 {
			return fmt.Errorf("knn classifier needs a collection and a positive top_k: %w", ErrConfiguration)
		}
	case ClassifierRemote:
		if c.URL == "" {
			return fmt.Errorf("remote classifier needs a url: %w", ErrConfiguration)
		}
	default:
		return fmt.Errorf("unknown classifier backend %q: %w", c.Backend, ErrConfiguration)
	}

	if c.TimeoutMs <= 0 {
		return fmt.Errorf("classifier timeout_ms must be positive: %w", ErrConfiguration)
	}
	if !inRange(c.VoteTolerance, 0, 0.5) || c.VoteTolerance == 0 {
		return fmt.Errorf("classifier vote_tolerance must be within (0,0.5]: %w", ErrConfiguration)
	}
	if c.CacheSize < 0 {
		return fmt.Errorf("classifier cache_size must not be negative: %w", ErrConfiguration)
	}
	return nil
}

func inRange(v, lo, hi float64) bool {
	return !math.IsNaN(v) && v >= lo && v <= hi
}
