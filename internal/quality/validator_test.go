package quality

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"motorag/internal/domain"
)

func withLevel(level int) domain.ScoredCandidate {
	return domain.ScoredCandidate{Chunk: domain.PassageChunk{SafetyLevel: level}}
}

func TestValidateCompleteness(t *testing.T) {
	v := NewValidator()
	a := v.Validate("the oil level sits between the marks", "oil level", nil)
	assert.InDelta(t, 1.0, a.Completeness, 1e-9)

	partial := v.Validate("the oil is fine", "oil pressure", nil)
	assert.InDelta(t, 0.5, partial.Completeness, 1e-9)
}

func TestValidateSafetyForcedZero(t *testing.T) {
	v := NewValidator()
	// High-risk chunks but a response with no safety keyword at all.
	a := v.Validate("just unscrew the cap", "q", []domain.ScoredCandidate{withLevel(3)})
	assert.Zero(t, a.Safety)
	assert.NotEmpty(t, a.Issues)
}

func TestValidateSafetyScoreScalesWithMentions(t *testing.T) {
	v := NewValidator()
	a := v.Validate("warning: danger of burns", "q", []domain.ScoredCandidate{withLevel(3)})
	assert.InDelta(t, 1.0, a.Safety, 1e-9)
	assert.Empty(t, a.Issues)
}

func TestValidateTechnicalAndStructureAreBinary(t *testing.T) {
	v := NewValidator()
	rich := v.Validate("1. tighten to 25 Nm", "q", nil)
	assert.InDelta(t, 1.0, rich.Technical, 1e-9)
	assert.InDelta(t, 1.0, rich.Structure, 1e-9)

	plain := v.Validate("tighten it firmly", "q", nil)
	assert.InDelta(t, 0.5, plain.Technical, 1e-9)
	assert.InDelta(t, 0.7, plain.Structure, 1e-9)
}

func TestValidateAttributionCappedAtOne(t *testing.T) {
	v := NewValidator()
	a := v.Validate("see page 10 and page 12 of the manual", "q", nil)
	assert.InDelta(t, 1.0, a.Attribution, 1e-9)

	half := v.Validate("see page 10", "q", nil)
	assert.InDelta(t, 0.5, half.Attribution, 1e-9)
}

func TestValidateOverallIsWeightedSum(t *testing.T) {
	v := NewValidator()
	a := v.Validate("some response", "query words", nil)
	want := a.Completeness*0.3 + a.Safety*0.3 + a.Technical*0.2 + a.Structure*0.1 + a.Attribution*0.1
	assert.InDelta(t, want, a.Overall, 1e-9)
}

func TestValidateSuggestions(t *testing.T) {
	v := NewValidator()
	a := v.Validate("vague", "completely different words", nil)
	assert.Contains(t, a.Suggestions, "address more query terms")
	assert.Contains(t, a.Suggestions, "add specific technical details")
}
