// Package pipeline orchestrates the answer pipeline: embed, search, dedupe,
// rank, assemble, generate. Failures surface as structured results rather
// than errors so batch siblings and transports never see a panic or a raw
// backend failure.
package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"motorag/internal/compose"
	"motorag/internal/domain"
	"motorag/internal/intent"
	"motorag/internal/retrieval"
	"motorag/internal/safety"
)

// noInfoAnswer is returned when nothing in the corpus clears the similarity
// threshold. This is a valid outcome, not a failure.
const noInfoAnswer = "No relevant information was found in the manuals for your question. " +
	"Try rephrasing it, or ask about maintenance, specifications, or procedures."

// GenerationState tracks whether the generation backend is usable. The state
// transitions away from Unknown exactly once, via a single probe call, and
// never returns to Unknown.
type GenerationState int

const (
	GenerationUnknown GenerationState = iota
	GenerationAvailable
	GenerationFallback
)

func (s GenerationState) String() string {
	switch s {
	case GenerationAvailable:
		return "generative"
	case GenerationFallback:
		return "fallback"
	}
	return "unknown"
}

// Config carries the pipeline tunables.
type Config struct {
	TopK                   int
	SimilarityThreshold    float64
	MaxContextChars        int
	ResultDedupeThreshold  float64
	ConsolidationThreshold float64
	TermMatchCap           int
	CacheSize              int
	CacheTTL               time.Duration
	Sampling               domain.SamplingConfig
}

// QueryOptions are per-request overrides; zero values fall back to the
// engine configuration. A negative SimilarityThreshold requests an
// unfiltered search with a floor of 0.
type QueryOptions struct {
	TopK                int
	SimilarityThreshold float64
	SkillLevel          domain.SkillLevel
}

// SystemStats is a point-in-time snapshot for the stats command and the
// health endpoint.
type SystemStats struct {
	TotalChunks    int                  `json:"total_chunks"`
	GenerationMode string               `json:"generation_mode"`
	Cache          retrieval.CacheStats `json:"cache"`
}

// Engine wires the collaborators and post-processing stages into the single
// logical operation AnswerQuery, plus its batch variant.
type Engine struct {
	embedder  domain.Embedder
	store     domain.VectorStore
	generator domain.Generator

	resultDeduper *retrieval.Deduplicator
	consolidator  *retrieval.Deduplicator
	ranker        *retrieval.Ranker
	assessor      *safety.Assessor
	intents       *intent.Detector
	cache         *retrieval.ResultCache

	cfg Config
	log *zap.Logger

	probeOnce sync.Once
	genState  GenerationState
}

// New builds an engine. A nil generator puts the engine in fallback mode
// from the start; a nil logger disables logging.
func New(embedder domain.Embedder, store domain.VectorStore, generator domain.Generator, cfg Config, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.TopK <= 0 {
		cfg.TopK = 3
	}
	if cfg.SimilarityThreshold == 0 {
		cfg.SimilarityThreshold = 0.6
	}
	if cfg.MaxContextChars <= 0 {
		cfg.MaxContextChars = 6000
	}
	if cfg.ResultDedupeThreshold == 0 {
		cfg.ResultDedupeThreshold = retrieval.DefaultResultThreshold
	}
	if cfg.ConsolidationThreshold == 0 {
		cfg.ConsolidationThreshold = retrieval.DefaultConsolidationThreshold
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = 256
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = time.Hour
	}
	if cfg.Sampling.Temperature == 0 {
		cfg.Sampling.Temperature = 0.2
	}
	if cfg.Sampling.MaxTokens == 0 {
		cfg.Sampling.MaxTokens = 2048
	}
	return &Engine{
		embedder:      embedder,
		store:         store,
		generator:     generator,
		resultDeduper: retrieval.NewDeduplicator(cfg.ResultDedupeThreshold),
		consolidator:  retrieval.NewDeduplicator(cfg.ConsolidationThreshold),
		ranker:        retrieval.NewRanker(retrieval.DefaultVocabulary(), retrieval.DefaultWeights(), cfg.TermMatchCap),
		assessor:      safety.NewAssessor(safety.DefaultVocabulary()),
		intents:       intent.NewDetector(),
		cache:         retrieval.NewResultCache(cfg.CacheSize, cfg.CacheTTL, nil),
		cfg:           cfg,
		log:           log,
	}
}

// GenerationMode reports the resolved generation state, probing once if
// still unknown.
func (e *Engine) GenerationMode(ctx context.Context) GenerationState {
	e.ensureGenerationState(ctx)
	return e.genState
}

// ensureGenerationState resolves Unknown with a single probe call. The
// resolved state persists for the engine lifetime; it is never re-probed.
func (e *Engine) ensureGenerationState(ctx context.Context) {
	e.probeOnce.Do(func() {
		if e.generator == nil {
			e.genState = GenerationFallback
			e.log.Info("no generator configured, answering in fallback mode")
			return
		}
		probe := domain.SamplingConfig{Temperature: 0, MaxTokens: 8}
		if _, err := e.generator.Generate(ctx, "Reply with the single word OK.", probe); err != nil {
			e.genState = GenerationFallback
			e.log.Warn("generation probe failed, switching to fallback mode", zap.Error(err))
			return
		}
		e.genState = GenerationAvailable
		e.log.Info("generation probe succeeded", zap.String("generator", e.generator.Name()))
	})
}

// AnswerQuery runs the full pipeline for one query. It never returns an
// error: collaborator failures produce a structured failure result, an empty
// retrieval produces a polite no-information result, and generation failures
// degrade to the fallback composer.
func (e *Engine) AnswerQuery(ctx context.Context, query string, opts QueryOptions) domain.QueryResult {
	start := time.Now()
	topK := opts.TopK
	if topK <= 0 {
		topK = e.cfg.TopK
	}
	floor := e.cfg.SimilarityThreshold
	switch {
	case opts.SimilarityThreshold > 0:
		floor = opts.SimilarityThreshold
	case opts.SimilarityThreshold < 0:
		floor = 0
	}
	skill := opts.SkillLevel
	if skill == "" {
		skill = domain.SkillIntermediate
	}

	assessment := domain.QueryAssessment{
		Intent:      e.intents.Detect(query),
		SafetyLevel: e.assessor.AssessQuery(query),
	}

	candidates, err := e.retrieve(ctx, query, topK, floor)
	if err != nil {
		e.log.Error("retrieval failed", zap.String("query", query), zap.Error(err))
		return e.failure(query, err, skill, assessment, start)
	}
	if len(candidates) == 0 {
		return domain.QueryResult{
			Answer:         noInfoAnswer,
			Success:        true,
			ProcessingTime: time.Since(start),
			Metadata: domain.ResultMetadata{
				Intent:     assessment.Intent,
				SkillLevel: skill,
			},
		}
	}

	deduped := e.resultDeduper.Dedupe(candidates)
	ranked := e.ranker.Rank(deduped, query)
	consolidated := e.consolidator.Dedupe(ranked)
	removed := len(candidates) - len(consolidated)

	contextText, included := compose.AssembleContext(consolidated, e.cfg.MaxContextChars)

	answer, fallback := e.composeAnswer(ctx, query, contextText, included, skill, removed)
	answer = e.assessor.EnhanceResponse(answer, assessment.SafetyLevel, included)

	result := domain.QueryResult{
		Answer:         answer,
		Sources:        sourceRefs(included),
		Confidence:     meanSimilarity(included),
		SafetyLevel:    maxSafety(included),
		Success:        true,
		FallbackMode:   fallback,
		ChunksFound:    len(included),
		ProcessingTime: time.Since(start),
		Metadata: domain.ResultMetadata{
			Intent:     assessment.Intent,
			SkillLevel: skill,
			ChunkCount: len(included),
		},
	}
	e.log.Info("query answered",
		zap.String("intent", string(assessment.Intent)),
		zap.Int("query_safety", assessment.SafetyLevel),
		zap.Int("chunks", len(included)),
		zap.Bool("fallback", fallback),
		zap.Duration("elapsed", result.ProcessingTime))
	return result
}

// retrieve embeds the query and searches the store, consulting the result
// cache first. A store failure is retried once before giving up.
func (e *Engine) retrieve(ctx context.Context, query string, topK int, floor float64) ([]domain.ScoredCandidate, error) {
	key := retrieval.CacheKey(query, topK, floor)
	if cached, ok := e.cache.Get(key); ok {
		return cached, nil
	}
	vector, err := e.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrEmbeddingUnavailable, err)
	}
	candidates, err := e.store.Search(ctx, vector, topK, floor)
	if err != nil {
		e.log.Warn("vector search failed, retrying once", zap.Error(err))
		candidates, err = e.store.Search(ctx, vector, topK, floor)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
		}
	}
	e.cache.Set(key, candidates)
	return candidates, nil
}

// composeAnswer generates the answer text, degrading to the template
// composer when generation is unavailable or the call fails.
func (e *Engine) composeAnswer(ctx context.Context, query, contextText string, included []domain.ScoredCandidate, skill domain.SkillLevel, removed int) (string, bool) {
	e.ensureGenerationState(ctx)
	if e.genState != GenerationAvailable {
		return compose.ComposeFallback(query, included, removed), true
	}
	prompt := compose.BuildPrompt(query, contextText, skill)
	answer, err := e.generator.Generate(ctx, prompt, e.cfg.Sampling)
	if err != nil {
		e.log.Warn("generation failed, composing fallback answer", zap.Error(err))
		return compose.ComposeFallback(query, included, removed), true
	}
	return answer, false
}

func (e *Engine) failure(query string, err error, skill domain.SkillLevel, assessment domain.QueryAssessment, start time.Time) domain.QueryResult {
	return domain.QueryResult{
		Success:        false,
		Error:          err.Error(),
		ProcessingTime: time.Since(start),
		Metadata: domain.ResultMetadata{
			Intent:     assessment.Intent,
			SkillLevel: skill,
		},
	}
}

// BatchQuery fans out the independent query pipelines and collects one
// outcome per input query, preserving order. A failing member never aborts
// its siblings.
func (e *Engine) BatchQuery(ctx context.Context, queries []string, opts QueryOptions) []domain.QueryResult {
	results := make([]domain.QueryResult, len(queries))
	var wg sync.WaitGroup
	for i, q := range queries {
		wg.Add(1)
		go func(i int, q string) {
			defer wg.Done()
			results[i] = e.AnswerQuery(ctx, q, opts)
		}(i, q)
	}
	wg.Wait()
	return results
}

// Stats reports corpus size, generation mode, and cache effectiveness.
func (e *Engine) Stats(ctx context.Context) (SystemStats, error) {
	count, err := e.store.Count(ctx)
	if err != nil {
		return SystemStats{}, err
	}
	e.ensureGenerationState(ctx)
	return SystemStats{
		TotalChunks:    count,
		GenerationMode: e.genState.String(),
		Cache:          e.cache.Stats(),
	}, nil
}

func sourceRefs(candidates []domain.ScoredCandidate) []domain.SourceRef {
	refs := make([]domain.SourceRef, len(candidates))
	for i, c := range candidates {
		refs[i] = domain.SourceRef{
			Source:      c.Chunk.Source,
			Page:        c.Chunk.PageNumber,
			Similarity:  c.Similarity,
			SafetyLevel: c.Chunk.SafetyLevel,
		}
	}
	return refs
}

func meanSimilarity(candidates []domain.ScoredCandidate) float64 {
	if len(candidates) == 0 {
		return 0
	}
	sum := 0.0
	for _, c := range candidates {
		sum += c.Similarity
	}
	return sum / float64(len(candidates))
}

func maxSafety(candidates []domain.ScoredCandidate) int {
	level := 0
	for _, c := range candidates {
		if c.Chunk.SafetyLevel > level {
			level = c.Chunk.SafetyLevel
		}
	}
	return level
}
