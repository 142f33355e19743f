package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// OpenAIEmbedderConfig holds configuration for the OpenAI-compatible embedder.
type OpenAIEmbedderConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs" validate:"gte=0"`
}

// EmbedderConfig selects and configures the text embedder implementation.
type EmbedderConfig struct {
	Type   string                `yaml:"type" validate:"omitempty,oneof=tfidf openai"`
	OpenAI *OpenAIEmbedderConfig `yaml:"openai,omitempty"`
}

// GeneratorConfig selects and configures the text generation backend.
// An empty type means no generator is wired and the pipeline answers in
// fallback mode from the start.
type GeneratorConfig struct {
	Type        string  `yaml:"type" validate:"omitempty,oneof=openai none"`
	BaseURL     string  `yaml:"base_url"`
	APIKeyEnv   string  `yaml:"api_key_env"`
	Model       string  `yaml:"model"`
	TimeoutSecs int     `yaml:"timeout_secs" validate:"gte=0"`
	Temperature float64 `yaml:"temperature" validate:"gte=0,lte=2"`
	MaxTokens   int     `yaml:"max_tokens" validate:"gte=0"`
}

// VectorStoreConfig selects and configures the vector store implementation.
type VectorStoreConfig struct {
	Type   string        `yaml:"type" validate:"omitempty,oneof=memory qdrant"`
	Qdrant *QdrantConfig `yaml:"qdrant,omitempty"`
}

// QdrantConfig contains connection details for a Qdrant vector store.
type QdrantConfig struct {
	URL         string `yaml:"url"`
	APIKey      string `yaml:"api_key"`
	Collection  string `yaml:"collection"`
	TimeoutSecs int    `yaml:"timeout_secs" validate:"gte=0"`
}

// RetrievalConfig carries the tunable retrieval and ranking knobs. The two
// dedupe thresholds serve different stages: the looser one filters raw
// search results, where sliding-window chunking produces many near-identical
// neighbors; the stricter one consolidates the final list before generation.
type RetrievalConfig struct {
	TopK                   int     `yaml:"top_k" validate:"gte=0"`
	SimilarityThreshold    float64 `yaml:"similarity_threshold" validate:"gte=0,lte=1"`
	MaxContextChars        int     `yaml:"max_context_chars" validate:"gte=0"`
	ResultDedupeThreshold  float64 `yaml:"result_dedupe_threshold" validate:"gte=0,lte=1"`
	ConsolidationThreshold float64 `yaml:"consolidation_threshold" validate:"gte=0,lte=1"`
	// TermMatchCap bounds the per-term ranking bonus. 0 keeps the historical
	// uncapped behavior, which is under product review.
	TermMatchCap int `yaml:"term_match_cap" validate:"gte=0"`
	CacheSize    int `yaml:"cache_size" validate:"gte=0"`
	CacheTTLMins int `yaml:"cache_ttl_mins" validate:"gte=0"`
}

// IngestConfig configures how manual text files are split into chunks.
type IngestConfig struct {
	SentencesPerChunk int `yaml:"sentences_per_chunk" validate:"gte=0"`
	OverlapSentences  int `yaml:"overlap_sentences" validate:"gte=0"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Embedder    EmbedderConfig    `yaml:"embedder"`
	Generator   GeneratorConfig   `yaml:"generator"`
	VectorStore VectorStoreConfig `yaml:"vector_store"`
	Retrieval   RetrievalConfig   `yaml:"retrieval"`
	Ingest      IngestConfig      `yaml:"ingest"`
	Server      ServerConfig      `yaml:"server"`
	Environment string            `yaml:"environment" validate:"omitempty,oneof=development production"`
}

var validate = validator.New()

// Load reads a config from a specified path. If the file does not exist,
// returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(&cfg)
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

// LoadDefault tries ./motorag.yaml first, then ~/.config/motorag/config.yaml.
// If neither exists, it writes defaults to the user path and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "motorag.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "motorag", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{
		Embedder:    EmbedderConfig{Type: "tfidf"},
		Generator:   GeneratorConfig{Type: "none"},
		VectorStore: VectorStoreConfig{Type: "memory"},
		Environment: "development",
	}
	applyConfigDefaults(cfg)
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	r := &cfg.Retrieval
	if r.TopK == 0 {
		r.TopK = 3
	}
	if r.SimilarityThreshold == 0 {
		r.SimilarityThreshold = 0.6
	}
	if r.MaxContextChars == 0 {
		r.MaxContextChars = 6000
	}
	if r.ResultDedupeThreshold == 0 {
		r.ResultDedupeThreshold = 0.65
	}
	if r.ConsolidationThreshold == 0 {
		r.ConsolidationThreshold = 0.70
	}
	if r.CacheSize == 0 {
		r.CacheSize = 256
	}
	if r.CacheTTLMins == 0 {
		r.CacheTTLMins = 60
	}
	if cfg.Ingest.SentencesPerChunk == 0 {
		cfg.Ingest.SentencesPerChunk = 5
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Embedder.Type == "openai" && cfg.Embedder.OpenAI != nil {
		oa := cfg.Embedder.OpenAI
		if oa.BaseURL == "" {
			oa.BaseURL = "https://api.openai.com/v1"
		}
		if oa.APIKeyEnv == "" {
			oa.APIKeyEnv = "OPENAI_API_KEY"
		}
		if oa.Model == "" {
			oa.Model = "text-embedding-3-small"
		}
		if oa.TimeoutSecs == 0 {
			oa.TimeoutSecs = 30
		}
	}
	if cfg.Generator.Type == "openai" {
		g := &cfg.Generator
		if g.BaseURL == "" {
			g.BaseURL = "https://api.openai.com/v1"
		}
		if g.APIKeyEnv == "" {
			g.APIKeyEnv = "OPENAI_API_KEY"
		}
		if g.Model == "" {
			g.Model = "gpt-4o-mini"
		}
		if g.TimeoutSecs == 0 {
			g.TimeoutSecs = 60
		}
		if g.Temperature == 0 {
			g.Temperature = 0.2
		}
		if g.MaxTokens == 0 {
			g.MaxTokens = 2048
		}
	}
}
