// Package retrieval contains the candidate post-processing stages between
// vector search and context assembly: duplicate suppression, multi-factor
// re-ranking, query expansion, and a bounded result cache.
package retrieval

import (
	"strings"

	"motorag/internal/domain"
)

// Sliding-window chunking makes raw search results overlap heavily, so the
// raw-result filter runs looser than the final consolidation pass.
const (
	DefaultResultThreshold        = 0.65
	DefaultConsolidationThreshold = 0.70
)

// Deduplicator removes near-duplicate passages from a candidate list using
// lexical overlap against every previously accepted entry.
type Deduplicator struct {
	threshold float64
}

// NewDeduplicator creates a deduplicator rejecting candidates whose word-set
// overlap with an accepted entry exceeds threshold.
func NewDeduplicator(threshold float64) *Deduplicator {
	if threshold <= 0 {
		threshold = DefaultConsolidationThreshold
	}
	return &Deduplicator{threshold: threshold}
}

// Dedupe returns the surviving candidates in their input order. Candidates
// are expected in descending-similarity order so the best variant of each
// duplicate group wins. The output never exceeds the input, and candidates
// with an empty word set are always kept.
func (d *Deduplicator) Dedupe(candidates []domain.ScoredCandidate) []domain.ScoredCandidate {
	if len(candidates) == 0 {
		return candidates
	}
	kept := make([]domain.ScoredCandidate, 0, len(candidates))
	seen := make([]map[string]struct{}, 0, len(candidates))
	for _, c := range candidates {
		words := tokenSet(c.Chunk.Content)
		duplicate := false
		if len(words) > 0 {
			for _, prev := range seen {
				if overlapRatio(words, prev) > d.threshold {
					duplicate = true
					break
				}
			}
		}
		if duplicate {
			continue
		}
		kept = append(kept, c)
		seen = append(seen, words)
	}
	return kept
}

// overlapRatio is |a∩b| / min(|a|,|b|). Empty sets never overlap.
func overlapRatio(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	small, large := a, b
	if len(b) < len(a) {
		small, large = b, a
	}
	inter := 0
	for w := range small {
		if _, ok := large[w]; ok {
			inter++
		}
	}
	return float64(inter) / float64(len(small))
}

// tokenSet splits on whitespace so numeric tokens survive. Two passages
// that differ only in measurements are distinct content, not duplicates.
func tokenSet(s string) map[string]struct{} {
	tokens := strings.Fields(strings.ToLower(s))
	m := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		m[t] = struct{}{}
	}
	return m
}
