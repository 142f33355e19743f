package main

import (
	"context"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"motorag/internal/config"
	"motorag/internal/domain"
	embopenai "motorag/internal/embedding/openai"
	"motorag/internal/embedding/tfidf"
	genopenai "motorag/internal/generation/openai"
	"motorag/internal/ingest"
	"motorag/internal/observability"
	"motorag/internal/pipeline"
	"motorag/internal/vectorstore/memory"
	"motorag/internal/vectorstore/qdrant"
)

var (
	flagConfig string
	flagCorpus []string

	cfg    *config.AppConfig
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "motorag",
	Short: "Technical question answering over motorcycle service manuals",
	Long: `motorag ingests motorcycle service and owner's manuals, indexes them in a
vector store, and answers maintenance, specification, and procedure questions
grounded in the manual text, with safety-aware response handling.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Missing .env is fine; explicit env vars still apply.
		_ = godotenv.Load()
		var err error
		if flagConfig != "" {
			cfg, err = config.Load(flagConfig)
		} else {
			cfg, _, err = config.LoadDefault()
		}
		if err != nil {
			return err
		}
		logger, err = observability.NewLogger(cfg.Environment)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringSliceVar(&flagCorpus, "corpus", nil, "manual text files to load (required with the in-memory store)")
}

// buildEngine assembles the embedder, store, and generator from config and,
// when corpus files are given, ingests them before serving queries. The
// in-memory store holds nothing between runs, so it always needs a corpus.
func buildEngine(ctx context.Context) (*pipeline.Engine, error) {
	embedder, err := buildEmbedder()
	if err != nil {
		return nil, err
	}
	store, err := buildStore()
	if err != nil {
		return nil, err
	}
	generator, err := buildGenerator()
	if err != nil {
		return nil, err
	}

	if len(flagCorpus) > 0 {
		chunker := ingest.NewChunker(cfg.Ingest.SentencesPerChunk, cfg.Ingest.OverlapSentences)
		ing := ingest.New(chunker, embedder, store, logger)
		if _, err := ing.IngestFiles(ctx, flagCorpus); err != nil {
			return nil, fmt.Errorf("ingest corpus: %w", err)
		}
	} else if cfg.VectorStore.Type == "" || cfg.VectorStore.Type == "memory" {
		return nil, fmt.Errorf("the in-memory store is empty on startup, pass --corpus with manual text files")
	}

	return pipeline.New(embedder, store, generator, pipelineConfig(), logger), nil
}

func pipelineConfig() pipeline.Config {
	r := cfg.Retrieval
	return pipeline.Config{
		TopK:                   r.TopK,
		SimilarityThreshold:    r.SimilarityThreshold,
		MaxContextChars:        r.MaxContextChars,
		ResultDedupeThreshold:  r.ResultDedupeThreshold,
		ConsolidationThreshold: r.ConsolidationThreshold,
		TermMatchCap:           r.TermMatchCap,
		CacheSize:              r.CacheSize,
		CacheTTL:               time.Duration(r.CacheTTLMins) * time.Minute,
		Sampling: domain.SamplingConfig{
			Temperature: cfg.Generator.Temperature,
			MaxTokens:   cfg.Generator.MaxTokens,
		},
	}
}

func buildEmbedder() (domain.Embedder, error) {
	switch cfg.Embedder.Type {
	case "", "tfidf":
		return tfidf.NewEmbedder(), nil
	case "openai":
		oa := cfg.Embedder.OpenAI
		if oa == nil {
			return nil, fmt.Errorf("embedder type openai requires an openai config section")
		}
		return embopenai.NewClient(embopenai.Config{
			BaseURL:   oa.BaseURL,
			APIKeyEnv: oa.APIKeyEnv,
			Model:     oa.Model,
			Timeout:   time.Duration(oa.TimeoutSecs) * time.Second,
		})
	default:
		return nil, fmt.Errorf("unknown embedder type %q", cfg.Embedder.Type)
	}
}

func buildStore() (domain.VectorStore, error) {
	switch cfg.VectorStore.Type {
	case "", "memory":
		return memory.NewStore(), nil
	case "qdrant":
		q := cfg.VectorStore.Qdrant
		if q == nil {
			return nil, fmt.Errorf("vector store type qdrant requires a qdrant config section")
		}
		return qdrant.NewStore(qdrant.Config{
			URL:        q.URL,
			APIKey:     q.APIKey,
			Collection: q.Collection,
			Timeout:    time.Duration(q.TimeoutSecs) * time.Second,
		}), nil
	default:
		return nil, fmt.Errorf("unknown vector store type %q", cfg.VectorStore.Type)
	}
}

func buildGenerator() (domain.Generator, error) {
	switch cfg.Generator.Type {
	case "", "none":
		return nil, nil
	case "openai":
		return genopenai.NewClient(genopenai.Config{
			BaseURL:   cfg.Generator.BaseURL,
			APIKeyEnv: cfg.Generator.APIKeyEnv,
			Model:     cfg.Generator.Model,
			Timeout:   time.Duration(cfg.Generator.TimeoutSecs) * time.Second,
		})
	default:
		return nil, fmt.Errorf("unknown generator type %q", cfg.Generator.Type)
	}
}
