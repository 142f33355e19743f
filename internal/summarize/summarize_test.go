package summarize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarizeSelectsFrequentTopicSentences(t *testing.T) {
	s := New()
	text := "The engine oil must be checked. Engine oil protects the engine. " +
		"Oil changes keep the engine healthy. The horn button is on the left."
	got := s.Summarize(text, 2)
	assert.Contains(t, got, "oil")
	sentences := strings.Count(got, ".")
	assert.Equal(t, 2, sentences)
}

func TestSummarizeKeepsOriginalOrder(t *testing.T) {
	s := New()
	text := "Alpha engine oil first. Beta engine oil second. Gamma engine oil third."
	got := s.Summarize(text, 3)
	assert.Equal(t, "Alpha engine oil first. Beta engine oil second. Gamma engine oil third.", got)
}

func TestSummarizeNoSentencesReturnsTrimmedText(t *testing.T) {
	s := New()
	assert.Equal(t, "no terminator here", s.Summarize("  no terminator here  ", 3))
}

func TestOverviewJoinsCorpus(t *testing.T) {
	s := New()
	got := s.Overview([]string{"Check the oil.", "Check the oil again."}, 1)
	assert.NotEmpty(t, got)
	assert.True(t, strings.HasSuffix(got, "."))
}

func TestSummarizeZeroMaxDefaultsToFive(t *testing.T) {
	s := New()
	text := strings.Repeat("Engine oil sentence. ", 10)
	got := s.Summarize(text, 0)
	assert.Equal(t, 5, strings.Count(got, "."))
}
