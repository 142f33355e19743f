// Package compose turns ranked candidates into a bounded generation context,
// builds the instruction prompt, and provides the template-based fallback
// when generation is unavailable.
package compose

import (
	"fmt"
	"strings"

	"motorag/internal/domain"
)

// AssembleContext packs ranked candidates into a metadata-tagged context
// string of at most maxChars. Candidates are consumed in order and assembly
// stops at the first block that would overflow, so the included candidates
// are always a prefix of the input and no block is ever truncated.
func AssembleContext(candidates []domain.ScoredCandidate, maxChars int) (string, []domain.ScoredCandidate) {
	var b strings.Builder
	var included []domain.ScoredCandidate
	for _, c := range candidates {
		block := formatBlock(c)
		if b.Len()+len(block) > maxChars {
			break
		}
		b.WriteString(block)
		included = append(included, c)
	}
	return b.String(), included
}

func formatBlock(c domain.ScoredCandidate) string {
	return fmt.Sprintf("[Source: %s | Page: %d | Safety: %d | Relevance: %.0f%%]\n%s\n---\n",
		c.Chunk.Source, c.Chunk.PageNumber, c.Chunk.SafetyLevel,
		c.Similarity*100, c.Chunk.Content)
}
