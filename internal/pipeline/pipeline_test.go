package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"motorag/internal/domain"
)

type fakeEmbedder struct {
	mu     sync.Mutex
	calls  int
	failOn map[string]bool
}

func (f *fakeEmbedder) Name() string             { return "fake" }
func (f *fakeEmbedder) Prepare(_ []string) error { return nil }
func (f *fakeEmbedder) Dimension() int           { return 3 }
func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failOn[text] {
		return nil, errors.New("embedding backend down")
	}
	return []float64{1, 0, 0}, nil
}

type fakeStore struct {
	mu        sync.Mutex
	results   []domain.ScoredCandidate
	failures  int
	calls     int
	lastFloor float64
}

func (f *fakeStore) Init(_ context.Context, _ int) error                     { return nil }
func (f *fakeStore) Upsert(_ context.Context, _ []domain.PassageChunk) error { return nil }
func (f *fakeStore) Count(_ context.Context) (int, error)                    { return len(f.results), nil }
func (f *fakeStore) Clear(_ context.Context) error                           { return nil }
func (f *fakeStore) Search(_ context.Context, _ []float64, _ int, threshold float64) ([]domain.ScoredCandidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastFloor = threshold
	if f.failures > 0 {
		f.failures--
		return nil, errors.New("connection refused")
	}
	out := make([]domain.ScoredCandidate, len(f.results))
	copy(out, f.results)
	return out, nil
}

type fakeGenerator struct {
	answer   string
	genErr   error
	probeErr error
	calls    int
}

func (f *fakeGenerator) Name() string { return "fake-gen" }
func (f *fakeGenerator) Generate(_ context.Context, prompt string, _ domain.SamplingConfig) (string, error) {
	f.calls++
	if strings.Contains(prompt, "Reply with the single word OK") {
		return "OK", f.probeErr
	}
	if f.genErr != nil {
		return "", f.genErr
	}
	return f.answer, nil
}

func oilChunk() domain.ScoredCandidate {
	return domain.ScoredCandidate{
		Chunk: domain.PassageChunk{
			ID:          "c1",
			Content:     "The engine holds 1.2 litres of synthetic motor lubricant.",
			Source:      "manual.txt",
			PageNumber:  42,
			SafetyLevel: 1,
		},
		Similarity: 0.92,
	}
}

func newTestEngine(store *fakeStore, generator domain.Generator) (*Engine, *fakeEmbedder) {
	embedder := &fakeEmbedder{}
	return New(embedder, store, generator, Config{}, nil), embedder
}

func TestAnswerQueryGeneratedPath(t *testing.T) {
	store := &fakeStore{results: []domain.ScoredCandidate{oilChunk()}}
	gen := &fakeGenerator{answer: "Fill with 1.2 litres as stated on page 42."}
	engine, _ := newTestEngine(store, gen)

	result := engine.AnswerQuery(context.Background(), "quokka wombat question", QueryOptions{})
	assert.True(t, result.Success)
	assert.False(t, result.FallbackMode)
	assert.Equal(t, "Fill with 1.2 litres as stated on page 42.", result.Answer)
	assert.Equal(t, 1, result.ChunksFound)
	assert.InDelta(t, 0.92, result.Confidence, 1e-9)
	assert.Equal(t, 1, result.SafetyLevel)
	require.Len(t, result.Sources, 1)
	assert.Equal(t, "manual.txt", result.Sources[0].Source)
	assert.Equal(t, 42, result.Sources[0].Page)
	assert.InDelta(t, 0.92, result.Sources[0].Similarity, 1e-9)
	assert.Greater(t, result.ProcessingTime.Nanoseconds(), int64(0))
	assert.Equal(t, domain.SkillIntermediate, result.Metadata.SkillLevel)
}

func TestAnswerQuerySimilarityFloorOverrides(t *testing.T) {
	store := &fakeStore{results: []domain.ScoredCandidate{oilChunk()}}
	engine, _ := newTestEngine(store, &fakeGenerator{answer: "x"})

	engine.AnswerQuery(context.Background(), "first question", QueryOptions{})
	assert.InDelta(t, 0.6, store.lastFloor, 1e-9)

	engine.AnswerQuery(context.Background(), "second question", QueryOptions{SimilarityThreshold: 0.8})
	assert.InDelta(t, 0.8, store.lastFloor, 1e-9)

	// A negative threshold requests an unfiltered search.
	engine.AnswerQuery(context.Background(), "third question", QueryOptions{SimilarityThreshold: -1})
	assert.InDelta(t, 0, store.lastFloor, 1e-9)
}

func TestAnswerQueryNoRelevantContent(t *testing.T) {
	store := &fakeStore{}
	engine, _ := newTestEngine(store, &fakeGenerator{answer: "x"})

	result := engine.AnswerQuery(context.Background(), "quokka wombat", QueryOptions{})
	assert.True(t, result.Success)
	assert.Zero(t, result.ChunksFound)
	assert.Zero(t, result.Confidence)
	assert.Contains(t, result.Answer, "No relevant information")
	assert.Empty(t, result.Sources)
}

func TestAnswerQueryStoreRetrySucceeds(t *testing.T) {
	store := &fakeStore{results: []domain.ScoredCandidate{oilChunk()}, failures: 1}
	engine, _ := newTestEngine(store, &fakeGenerator{answer: "ok"})

	result := engine.AnswerQuery(context.Background(), "quokka wombat", QueryOptions{})
	assert.True(t, result.Success)
	assert.Equal(t, 2, store.calls)
}

func TestAnswerQueryStoreFailureIsStructured(t *testing.T) {
	store := &fakeStore{failures: 2}
	engine, _ := newTestEngine(store, &fakeGenerator{answer: "ok"})

	result := engine.AnswerQuery(context.Background(), "quokka wombat", QueryOptions{})
	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Error)
	assert.Empty(t, result.Answer)
}

func TestAnswerQueryGenerationFailureFallsBack(t *testing.T) {
	store := &fakeStore{results: []domain.ScoredCandidate{oilChunk()}}
	gen := &fakeGenerator{genErr: errors.New("rate limited")}
	engine, _ := newTestEngine(store, gen)

	result := engine.AnswerQuery(context.Background(), "quokka wombat", QueryOptions{})
	assert.True(t, result.Success)
	assert.True(t, result.FallbackMode)
	assert.Contains(t, result.Answer, "Here is what the manual says about")
	assert.Contains(t, result.Answer, "manual.txt, page 42")
}

func TestNilGeneratorAlwaysFallback(t *testing.T) {
	store := &fakeStore{results: []domain.ScoredCandidate{oilChunk()}}
	engine, _ := newTestEngine(store, nil)

	assert.Equal(t, GenerationFallback, engine.GenerationMode(context.Background()))
	result := engine.AnswerQuery(context.Background(), "quokka wombat", QueryOptions{})
	assert.True(t, result.Success)
	assert.True(t, result.FallbackMode)
}

func TestProbeFailurePersists(t *testing.T) {
	store := &fakeStore{results: []domain.ScoredCandidate{oilChunk()}}
	gen := &fakeGenerator{answer: "never used", probeErr: errors.New("unreachable")}
	engine, _ := newTestEngine(store, gen)

	first := engine.AnswerQuery(context.Background(), "quokka wombat", QueryOptions{})
	assert.True(t, first.FallbackMode)

	// The probe ran once; later queries never re-probe or call the backend.
	probeCalls := gen.calls
	second := engine.AnswerQuery(context.Background(), "other question", QueryOptions{})
	assert.True(t, second.FallbackMode)
	assert.Equal(t, probeCalls, gen.calls)
}

func TestAnswerQueryUsesCache(t *testing.T) {
	store := &fakeStore{results: []domain.ScoredCandidate{oilChunk()}}
	engine, embedder := newTestEngine(store, &fakeGenerator{answer: "ok"})

	engine.AnswerQuery(context.Background(), "quokka wombat", QueryOptions{})
	engine.AnswerQuery(context.Background(), "quokka wombat", QueryOptions{})
	assert.Equal(t, 1, embedder.calls)
	assert.Equal(t, 1, store.calls)
}

func TestConfidenceIsMeanOfIncluded(t *testing.T) {
	store := &fakeStore{results: []domain.ScoredCandidate{
		{Chunk: domain.PassageChunk{ID: "a", Content: "alpha bravo kilo", Source: "m", PageNumber: 1, SafetyLevel: 1}, Similarity: 0.9},
		{Chunk: domain.PassageChunk{ID: "b", Content: "delta foxtrot lima", Source: "m", PageNumber: 2, SafetyLevel: 1}, Similarity: 0.8},
		{Chunk: domain.PassageChunk{ID: "c", Content: "golf hotel mike", Source: "m", PageNumber: 3, SafetyLevel: 1}, Similarity: 0.7},
	}}
	engine, _ := newTestEngine(store, &fakeGenerator{answer: "ok"})

	result := engine.AnswerQuery(context.Background(), "quokka wombat", QueryOptions{})
	assert.Equal(t, 3, result.ChunksFound)
	assert.InDelta(t, 0.8, result.Confidence, 1e-9)
}

func TestAnswerQuerySafetyEnhancement(t *testing.T) {
	store := &fakeStore{results: []domain.ScoredCandidate{{
		Chunk: domain.PassageChunk{
			ID:          "s1",
			Content:     "Warning: fuel vapors may explode near open flame.",
			Source:      "manual.txt",
			PageNumber:  7,
			SafetyLevel: 3,
		},
		Similarity: 0.88,
	}}}
	engine, _ := newTestEngine(store, &fakeGenerator{answer: "Keep flames away from the tank."})

	result := engine.AnswerQuery(context.Background(), "danger of explosion and risk of fire", QueryOptions{})
	assert.True(t, result.Success)
	assert.Equal(t, 3, result.SafetyLevel)
	assert.True(t, strings.HasPrefix(result.Answer, "🚨 **CRITICAL** **SAFETY** **WARNING** 🚨"))
	assert.Contains(t, result.Answer, "Keep flames away from the tank.")
}

func TestBatchQueryIsolatesFailures(t *testing.T) {
	store := &fakeStore{results: []domain.ScoredCandidate{oilChunk()}}
	embedder := &fakeEmbedder{failOn: map[string]bool{"bad query": true}}
	engine := New(embedder, store, &fakeGenerator{answer: "ok"}, Config{}, nil)

	queries := []string{"first question", "bad query", "third question"}
	results := engine.BatchQuery(context.Background(), queries, QueryOptions{})
	require.Len(t, results, 3)
	assert.True(t, results[0].Success)
	assert.False(t, results[1].Success)
	assert.NotEmpty(t, results[1].Error)
	assert.True(t, results[2].Success)
}

func TestStats(t *testing.T) {
	store := &fakeStore{results: []domain.ScoredCandidate{oilChunk()}}
	engine, _ := newTestEngine(store, nil)

	stats, err := engine.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalChunks)
	assert.Equal(t, "fallback", stats.GenerationMode)
}
