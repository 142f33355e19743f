// Package safety classifies queries and passages by risk and injects safety
// emphasis into composed answers.
package safety

import (
	"regexp"
	"strings"

	"motorag/internal/domain"
)

// Vocabulary holds the keyword and pattern tables driving safety
// classification. Injected at construction so the tables can be tuned and
// tested independently of the assessor logic.
type Vocabulary struct {
	Keywords        []string
	PatternSources  []string
	HighRiskTerms   []string
	MediumRiskTerms []string
}

// DefaultVocabulary returns the manual-domain safety tables.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		Keywords: []string{
			"danger", "warning", "caution", "risk", "hazard",
			"safety", "critical", "emergency", "poison", "toxic",
			"scalding", "burn", "injury", "accident", "death",
		},
		PatternSources: []string{
			`danger of [^.]*`,
			`warning[^.]*`,
			`caution[^.]*`,
			`risk of [^.]*`,
			`hazard[^.]*`,
			`safety[^.]*`,
			`critical[^.]*`,
			`emergency[^.]*`,
		},
		HighRiskTerms: []string{
			"warning", "danger", "fatal", "death", "serious injury",
			"explosion", "fire", "toxic",
		},
		MediumRiskTerms: []string{
			"caution", "attention", "careful", "important safety",
			"hot surface", "sharp edge",
		},
	}
}

// Assessor computes discrete safety levels for queries and passages and
// applies warning banners and keyword emphasis to responses.
type Assessor struct {
	vocab    Vocabulary
	patterns []*regexp.Regexp
	// emphasis replacers are precompiled per keyword
	keywordRes []*regexp.Regexp
	sentenceRe *regexp.Regexp
}

// NewAssessor creates an assessor over the given vocabulary.
func NewAssessor(vocab Vocabulary) *Assessor {
	a := &Assessor{
		vocab:      vocab,
		sentenceRe: regexp.MustCompile(`[.!?]`),
	}
	for _, p := range vocab.PatternSources {
		a.patterns = append(a.patterns, regexp.MustCompile(p))
	}
	for _, kw := range vocab.Keywords {
		a.keywordRes = append(a.keywordRes, regexp.MustCompile(`(?i)`+regexp.QuoteMeta(kw)))
	}
	return a
}

// AssessQuery returns the query safety level, 0 (none) to 3 (critical).
// A strict priority cascade: the level 3 condition is evaluated first.
func (a *Assessor) AssessQuery(query string) int {
	queryLower := strings.ToLower(query)

	keywordCount := 0
	for _, kw := range a.vocab.Keywords {
		if strings.Contains(queryLower, kw) {
			keywordCount++
		}
	}
	patternMatches := 0
	for _, re := range a.patterns {
		if re.MatchString(queryLower) {
			patternMatches++
		}
	}
	switch {
	case keywordCount >= 3 || patternMatches >= 2:
		return 3
	case keywordCount >= 2 || patternMatches >= 1:
		return 2
	case keywordCount >= 1:
		return 1
	}
	return 0
}

// ClassifyPassage assigns a passage safety level at ingestion time. High-risk
// terms are checked before medium-risk terms; the highest-priority match
// wins. A passage with no risk terms is level 1.
func (a *Assessor) ClassifyPassage(content string) int {
	contentLower := strings.ToLower(content)
	for _, term := range a.vocab.HighRiskTerms {
		if strings.Contains(contentLower, term) {
			return 3
		}
	}
	for _, term := range a.vocab.MediumRiskTerms {
		if strings.Contains(contentLower, term) {
			return 2
		}
	}
	return 1
}

// EnhanceResponse applies safety emphasis to a composed response. At query
// safety level 0 the response passes through unchanged. Otherwise safety
// sentences are extracted from the candidates; when any exist, a warning
// banner (CRITICAL at level 3) is prepended at level 2 and above, and every
// safety keyword occurrence is uppercased and bolded.
func (a *Assessor) EnhanceResponse(response string, queryLevel int, candidates []domain.ScoredCandidate) string {
	if queryLevel == 0 {
		return response
	}
	safetyInfo := a.extractSafetyInfo(candidates)
	if len(safetyInfo) == 0 {
		return response
	}
	enhanced := response
	if queryLevel >= 2 {
		enhanced = a.buildWarning(safetyInfo, queryLevel) + "\n\n" + response
	}
	return a.emphasizeKeywords(enhanced)
}

// extractSafetyInfo collects candidate sentences containing a safety keyword,
// deduplicated, in first-seen order.
func (a *Assessor) extractSafetyInfo(candidates []domain.ScoredCandidate) []string {
	var info []string
	seen := make(map[string]struct{})
	for _, c := range candidates {
		contentLower := strings.ToLower(c.Chunk.Content)
		for _, kw := range a.vocab.Keywords {
			if !strings.Contains(contentLower, kw) {
				continue
			}
			for _, sentence := range a.sentenceRe.Split(c.Chunk.Content, -1) {
				if !strings.Contains(strings.ToLower(sentence), kw) {
					continue
				}
				s := strings.TrimSpace(sentence)
				if s == "" {
					break
				}
				if _, ok := seen[s]; !ok {
					seen[s] = struct{}{}
					info = append(info, s)
				}
				break
			}
		}
	}
	return info
}

func (a *Assessor) buildWarning(safetyInfo []string, level int) string {
	var b strings.Builder
	if level >= 3 {
		b.WriteString("🚨 CRITICAL SAFETY WARNING 🚨\n\n")
	} else {
		b.WriteString("⚠️ SAFETY WARNING ⚠️\n\n")
	}
	limit := len(safetyInfo)
	if limit > 2 {
		limit = 2
	}
	for _, info := range safetyInfo[:limit] {
		b.WriteString("• ")
		b.WriteString(info)
		b.WriteString("\n")
	}
	b.WriteString("\nPlease read and follow all safety instructions carefully.")
	return b.String()
}

func (a *Assessor) emphasizeKeywords(text string) string {
	for i, re := range a.keywordRes {
		upper := strings.ToUpper(a.vocab.Keywords[i])
		text = re.ReplaceAllString(text, "**"+upper+"**")
	}
	return text
}
