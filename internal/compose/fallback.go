package compose

import (
	"fmt"
	"strings"

	"motorag/internal/domain"
)

const fallbackLimit = 3

// ComposeFallback builds a template-based answer directly from the top
// candidates, used when the generation backend is unavailable or a
// generation call failed. A critical banner leads when any included
// candidate is high-risk, and a consolidation note is appended when
// duplicates were removed upstream.
func ComposeFallback(query string, candidates []domain.ScoredCandidate, removedDuplicates int) string {
	var b strings.Builder

	critical := false
	for i, c := range candidates {
		if i >= fallbackLimit {
			break
		}
		if c.Chunk.SafetyLevel >= 3 {
			critical = true
			break
		}
	}
	if critical {
		b.WriteString("🚨 CRITICAL SAFETY INFORMATION: read all warnings before proceeding. 🚨\n\n")
	}
	b.WriteString(fmt.Sprintf("Here is what the manual says about %q:\n\n", query))
	for i, c := range candidates {
		if i >= fallbackLimit {
			break
		}
		b.WriteString(fmt.Sprintf("%d. From %s, page %d (relevance %.0f%%):\n%s\n\n",
			i+1, c.Chunk.Source, c.Chunk.PageNumber, c.Similarity*100,
			strings.TrimSpace(c.Chunk.Content)))
	}
	if removedDuplicates > 0 {
		b.WriteString(fmt.Sprintf("Note: %d overlapping passage(s) were consolidated for clarity.\n", removedDuplicates))
	}
	return strings.TrimRight(b.String(), "\n")
}
