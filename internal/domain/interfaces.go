package domain

import "context"

// Embedder converts free text into a numeric vector representation.
// Implementations may require a preparation phase over the corpus.
type Embedder interface {
	Name() string
	Prepare(corpus []string) error
	Dimension() int
	Embed(ctx context.Context, text string) ([]float64, error)
}

// VectorStore persists chunk embeddings and supports similarity search.
// Search returns candidates sorted by descending similarity, tolerates topK
// larger than the corpus, filters out stored vectors whose dimensionality
// does not match the query vector, and drops results below floor.
// Implementations must be safe for concurrent reads.
type VectorStore interface {
	Init(ctx context.Context, dimension int) error
	Upsert(ctx context.Context, chunks []PassageChunk) error
	Search(ctx context.Context, vector []float64, topK int, floor float64) ([]ScoredCandidate, error)
	Count(ctx context.Context) (int, error)
	Clear(ctx context.Context) error
}

// SamplingConfig holds the generation sampling parameters. The pipeline uses
// a fixed low temperature for technical consistency.
type SamplingConfig struct {
	Temperature float64
	TopP        float64
	MaxTokens   int
}

// Generator produces text from a prompt via an opaque language model.
type Generator interface {
	Name() string
	Generate(ctx context.Context, prompt string, cfg SamplingConfig) (string, error)
}
