package retrieval

import (
	"regexp"
	"sort"
	"strings"

	"motorag/internal/domain"
)

// Weights are the additive ranking bonuses applied on top of similarity.
type Weights struct {
	TermMatch          float64
	MaintenanceKeyword float64
	Structure          float64
	Measurement        float64
	SafetyIndicator    float64
}

// DefaultWeights returns the tuned bonus weights.
func DefaultWeights() Weights {
	return Weights{
		TermMatch:          0.1,
		MaintenanceKeyword: 0.05,
		Structure:          0.08,
		Measurement:        0.06,
		SafetyIndicator:    0.15,
	}
}

// Vocabulary holds the keyword tables and content patterns the ranker scores
// against. Tables are injected at construction so they can be tuned and
// tested independently.
type Vocabulary struct {
	MaintenanceKeywords []string
	SafetyIndicators    []string
	structureRes        []*regexp.Regexp
	measurementRes      []*regexp.Regexp
}

// DefaultVocabulary returns the manual-domain keyword tables.
func DefaultVocabulary() Vocabulary {
	v := Vocabulary{
		MaintenanceKeywords: []string{
			"service", "check", "inspect", "replace", "adjust",
			"clean", "lubricate", "tighten", "torque", "interval",
		},
		SafetyIndicators: []string{
			"warning", "danger", "caution", "risk", "safety", "hazard",
			"injury", "death", "fire", "explosion", "toxic", "hot",
		},
	}
	structure := []string{
		`\d+\.`,      // numbered lists
		`[•\-\*]`,    // bullet points
		`step \d+`,   // step indicators
		`procedure:`, // procedure headers
		`:\s*\n`,     // colon before a line break
	}
	measurement := []string{
		`\d+\s*(mm|cm|m|in|ft)`,            // length
		`\d+\s*(rpm|mph|km/h)`,             // speed / rotation
		`\d+\s*(bar|psi|pa)`,               // pressure
		`\d+\s*(°c|°f|celsius|fahrenheit)`, // temperature
		`\d+\s*(nm|ft-lb)`,                 // torque
		`\d+\s*(ml|l|oz|qt)`,               // volume
		`\d+\s*(kg|lb|g)`,                  // weight
		`\d+\s*(v|volt|amp)`,               // electrical
	}
	for _, p := range structure {
		v.structureRes = append(v.structureRes, regexp.MustCompile(`(?i)`+p))
	}
	for _, p := range measurement {
		v.measurementRes = append(v.measurementRes, regexp.MustCompile(`(?i)`+p))
	}
	return v
}

// HasStructuredContent reports whether content carries steps, lists, or
// procedure markers.
func (v Vocabulary) HasStructuredContent(content string) bool {
	for _, re := range v.structureRes {
		if re.MatchString(content) {
			return true
		}
	}
	return false
}

// HasTechnicalData reports whether content contains a recognized
// number-plus-unit measurement.
func (v Vocabulary) HasTechnicalData(content string) bool {
	for _, re := range v.measurementRes {
		if re.MatchString(content) {
			return true
		}
	}
	return false
}

// Ranker re-scores candidates with similarity plus structural, technical,
// and safety signals.
type Ranker struct {
	vocab   Vocabulary
	weights Weights
	// termCap bounds the number of query-term matches that earn a bonus;
	// 0 keeps them uncapped.
	termCap int
}

// NewRanker creates a ranker over the given vocabulary and weights.
func NewRanker(vocab Vocabulary, weights Weights, termCap int) *Ranker {
	return &Ranker{vocab: vocab, weights: weights, termCap: termCap}
}

// Rank computes EnhancedScore for every candidate and returns them sorted by
// descending EnhancedScore. A candidate with no applicable bonuses keeps its
// similarity as the final score. The sort is stable with similarity as the
// tiebreaker, so equal scores fall back to original retrieval order.
func (r *Ranker) Rank(candidates []domain.ScoredCandidate, query string) []domain.ScoredCandidate {
	queryLower := strings.ToLower(query)
	queryTerms := fieldsSet(queryLower)
	querySafety := r.querySafetyIndicators(queryLower)

	ranked := make([]domain.ScoredCandidate, len(candidates))
	copy(ranked, candidates)
	for i := range ranked {
		contentLower := strings.ToLower(ranked[i].Chunk.Content)
		score := ranked[i].Similarity

		matches := 0
		for term := range queryTerms {
			if strings.Contains(contentLower, term) {
				matches++
			}
		}
		if r.termCap > 0 && matches > r.termCap {
			matches = r.termCap
		}
		score += float64(matches) * r.weights.TermMatch

		for _, kw := range r.vocab.MaintenanceKeywords {
			if strings.Contains(contentLower, kw) {
				score += r.weights.MaintenanceKeyword
			}
		}
		if r.vocab.HasStructuredContent(ranked[i].Chunk.Content) {
			score += r.weights.Structure
		}
		if r.vocab.HasTechnicalData(ranked[i].Chunk.Content) {
			score += r.weights.Measurement
		}
		// Safety bonus applies only when the query itself signals a safety
		// concern.
		if len(querySafety) > 0 {
			count := 0
			for _, ind := range r.vocab.SafetyIndicators {
				if strings.Contains(contentLower, ind) {
					count++
				}
			}
			score += float64(count) * r.weights.SafetyIndicator
		}
		ranked[i].EnhancedScore = score
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].EnhancedScore != ranked[j].EnhancedScore {
			return ranked[i].EnhancedScore > ranked[j].EnhancedScore
		}
		return ranked[i].Similarity > ranked[j].Similarity
	})
	return ranked
}

func (r *Ranker) querySafetyIndicators(queryLower string) []string {
	var found []string
	for _, ind := range r.vocab.SafetyIndicators {
		if strings.Contains(queryLower, ind) {
			found = append(found, ind)
		}
	}
	return found
}

func fieldsSet(s string) map[string]struct{} {
	fields := strings.Fields(s)
	m := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		m[f] = struct{}{}
	}
	return m
}
