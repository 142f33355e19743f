// Package memory provides a brute-force in-memory vector store.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"motorag/internal/domain"
)

// Store keeps chunk embeddings in memory and searches them with brute-force
// cosine similarity. Vectors are assumed L2-normalized. Reads are safe for
// concurrent use.
type Store struct {
	mu        sync.RWMutex
	dimension int
	chunks    []domain.PassageChunk
}

func NewStore() *Store { return &Store{} }

func (s *Store) Init(_ context.Context, dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dimension = dimension
	s.chunks = nil
	return nil
}

func (s *Store) Upsert(_ context.Context, chunks []domain.PassageChunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range chunks {
		if len(c.Embedding) != s.dimension {
			return errors.New("embedding dimension mismatch")
		}
	}
	s.chunks = append(s.chunks, chunks...)
	return nil
}

// Search scores every stored chunk against the query vector and returns up to
// topK candidates at or above floor, sorted by descending similarity. Stored
// vectors whose dimensionality does not match the query are skipped.
func (s *Store) Search(_ context.Context, vector []float64, topK int, floor float64) ([]domain.ScoredCandidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if topK <= 0 {
		topK = 5
	}
	candidates := make([]domain.ScoredCandidate, 0, len(s.chunks))
	for i := range s.chunks {
		c := &s.chunks[i]
		if len(c.Embedding) != len(vector) {
			continue
		}
		sim := dot(c.Embedding, vector)
		if sim < floor {
			continue
		}
		candidates = append(candidates, domain.ScoredCandidate{Chunk: *c, Similarity: sim})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Similarity > candidates[j].Similarity
	})
	if topK > len(candidates) {
		topK = len(candidates)
	}
	return candidates[:topK], nil
}

func (s *Store) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks), nil
}

func (s *Store) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks = nil
	return nil
}

func dot(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}
