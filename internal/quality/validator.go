// Package quality scores answer quality along five axes and runs the
// category evaluation harness.
package quality

import (
	"regexp"
	"strings"

	"motorag/internal/domain"
	"motorag/internal/retrieval"
	"motorag/internal/safety"
)

// Weights for the overall score. Completeness and safety dominate because a
// technically precise answer that skips a warning is worse than a vague one.
const (
	weightCompleteness = 0.3
	weightSafety       = 0.3
	weightTechnical    = 0.2
	weightStructure    = 0.1
	weightAttribution  = 0.1
)

var attributionRe = regexp.MustCompile(`(?i)page \d+|source:|manual`)

// Assessment holds the per-axis scores in [0,1] plus any detected issues and
// improvement suggestions.
type Assessment struct {
	Completeness float64  `json:"completeness"`
	Safety       float64  `json:"safety"`
	Technical    float64  `json:"technical_accuracy"`
	Structure    float64  `json:"structure"`
	Attribution  float64  `json:"source_attribution"`
	Overall      float64  `json:"overall"`
	Issues       []string `json:"issues,omitempty"`
	Suggestions  []string `json:"suggestions,omitempty"`
}

// Validator scores a response against its query and the chunks used to
// produce it.
type Validator struct {
	vocab      retrieval.Vocabulary
	indicators []string
}

func NewValidator() *Validator {
	return &Validator{
		vocab:      retrieval.DefaultVocabulary(),
		indicators: safety.DefaultVocabulary().Keywords,
	}
}

// Validate scores the response. The safety axis is forced to zero whenever
// the context contained level-3 chunks but the response mentions no safety
// keyword at all.
func (v *Validator) Validate(response, query string, candidates []domain.ScoredCandidate) Assessment {
	var a Assessment
	responseLower := strings.ToLower(response)

	queryTerms := map[string]struct{}{}
	for _, t := range strings.Fields(strings.ToLower(query)) {
		queryTerms[t] = struct{}{}
	}
	if len(queryTerms) > 0 {
		addressed := 0
		for t := range queryTerms {
			if strings.Contains(responseLower, t) {
				addressed++
			}
		}
		a.Completeness = float64(addressed) / float64(len(queryTerms))
	}

	safetyMentions := 0
	for _, kw := range v.indicators {
		if strings.Contains(responseLower, kw) {
			safetyMentions++
		}
	}
	highRiskChunks := 0
	for _, c := range candidates {
		if c.Chunk.SafetyLevel >= 3 {
			highRiskChunks++
		}
	}
	if highRiskChunks > 0 && safetyMentions == 0 {
		a.Issues = append(a.Issues, "high-safety content missing safety warnings")
		a.Safety = 0
	} else {
		denom := highRiskChunks
		if denom < 1 {
			denom = 1
		}
		a.Safety = float64(safetyMentions) / float64(denom)
		if a.Safety > 1 {
			a.Safety = 1
		}
	}

	if v.vocab.HasTechnicalData(response) {
		a.Technical = 1.0
	} else {
		a.Technical = 0.5
	}

	if v.vocab.HasStructuredContent(response) {
		a.Structure = 1.0
	} else {
		a.Structure = 0.7
	}

	mentions := len(attributionRe.FindAllString(responseLower, -1))
	a.Attribution = float64(mentions) / 2
	if a.Attribution > 1 {
		a.Attribution = 1
	}

	a.Overall = a.Completeness*weightCompleteness +
		a.Safety*weightSafety +
		a.Technical*weightTechnical +
		a.Structure*weightStructure +
		a.Attribution*weightAttribution

	if a.Completeness < 0.8 {
		a.Suggestions = append(a.Suggestions, "address more query terms")
	}
	if a.Safety < 0.5 {
		a.Suggestions = append(a.Suggestions, "include appropriate safety warnings")
	}
	if a.Technical < 0.7 {
		a.Suggestions = append(a.Suggestions, "add specific technical details")
	}
	return a
}
