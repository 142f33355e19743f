package retrieval

import (
	"sort"
	"strings"
)

// technicalTerms maps a component mention to related manual phrases used for
// query expansion.
var technicalTerms = map[string][]string{
	"oil":        {"engine oil", "transmission oil", "oil level", "oil change"},
	"brake":      {"brake fluid", "brake pads", "brake system", "brake lever"},
	"chain":      {"drive chain", "chain tension", "chain lubrication"},
	"tire":       {"tire pressure", "tire tread", "tire replacement"},
	"engine":     {"engine temperature", "engine performance", "engine maintenance"},
	"cooling":    {"coolant level", "radiator", "cooling system", "overheating"},
	"electrical": {"battery", "electrical system", "wiring", "fuses"},
	"suspension": {"front suspension", "rear suspension", "shock absorber"},
}

// ExpandQuery produces up to three query variants with related technical
// terms appended, for recall-oriented evaluation runs. The serving path uses
// the original query only.
func ExpandQuery(query string, vocab Vocabulary) []string {
	expanded := []string{query}
	queryLower := strings.ToLower(query)

	categories := make([]string, 0, len(technicalTerms))
	for category := range technicalTerms {
		categories = append(categories, category)
	}
	sort.Strings(categories)
	for _, category := range categories {
		if !strings.Contains(queryLower, category) {
			continue
		}
		for _, term := range technicalTerms[category] {
			if !strings.Contains(queryLower, term) {
				expanded = append(expanded, query+" "+term)
			}
		}
	}
	for _, kw := range vocab.MaintenanceKeywords {
		if strings.Contains(queryLower, kw) {
			expanded = append(expanded, query+" maintenance procedure service")
			break
		}
	}
	if len(expanded) > 3 {
		expanded = expanded[:3]
	}
	return expanded
}
