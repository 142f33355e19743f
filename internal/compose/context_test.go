package compose

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"motorag/internal/domain"
)

func scored(content, source string, page, level int, similarity float64) domain.ScoredCandidate {
	return domain.ScoredCandidate{
		Chunk: domain.PassageChunk{
			Content:     content,
			Source:      source,
			PageNumber:  page,
			SafetyLevel: level,
		},
		Similarity: similarity,
	}
}

func TestAssembleContextIncludesMetadataTags(t *testing.T) {
	in := []domain.ScoredCandidate{
		scored("Check the oil level weekly.", "owners_manual.txt", 42, 1, 0.87),
	}
	text, included := AssembleContext(in, 6000)
	require.Len(t, included, 1)
	assert.Contains(t, text, "[Source: owners_manual.txt | Page: 42 | Safety: 1 | Relevance: 87%]")
	assert.Contains(t, text, "Check the oil level weekly.")
	assert.Contains(t, text, "---")
}

func TestAssembleContextStopsAtBudgetWithWholeBlocks(t *testing.T) {
	first := scored("short passage one.", "m.txt", 1, 1, 0.9)
	second := scored("short passage two.", "m.txt", 2, 1, 0.8)
	firstBlockLen := len("[Source: m.txt | Page: 1 | Safety: 1 | Relevance: 90%]\nshort passage one.\n---\n")

	// Budget fits the first block but not both.
	text, included := AssembleContext([]domain.ScoredCandidate{first, second}, firstBlockLen+10)
	require.Len(t, included, 1)
	assert.Equal(t, "short passage one.", included[0].Chunk.Content)
	assert.NotContains(t, text, "short passage two.")
	// No partial second block leaked into the context.
	assert.Equal(t, 1, strings.Count(text, "[Source:"))
}

func TestAssembleContextZeroBudgetIncludesNothing(t *testing.T) {
	in := []domain.ScoredCandidate{scored("anything.", "m.txt", 1, 1, 0.9)}
	text, included := AssembleContext(in, 0)
	assert.Empty(t, text)
	assert.Empty(t, included)
}

func TestAssembleContextIncludedIsPrefix(t *testing.T) {
	in := []domain.ScoredCandidate{
		scored(strings.Repeat("a", 50)+".", "m.txt", 1, 1, 0.9),
		scored(strings.Repeat("b", 500)+".", "m.txt", 2, 1, 0.8),
		scored(strings.Repeat("c", 50)+".", "m.txt", 3, 1, 0.7),
	}
	// The second block overflows; assembly stops there even though the third
	// would fit.
	_, included := AssembleContext(in, 200)
	require.Len(t, included, 1)
	assert.Equal(t, in[0].Chunk.Content, included[0].Chunk.Content)
}
