// Package intent categorizes user queries. The detected intent is carried as
// result metadata for observability; nothing in the pipeline branches on it.
package intent

import (
	"regexp"

	"motorag/internal/domain"
)

// Detector scores a query against per-category pattern tables; the highest
// scoring category wins, with "general" as the default.
type Detector struct {
	patterns map[domain.Intent][]*regexp.Regexp
}

var patternSources = map[domain.Intent][]string{
	domain.IntentMaintenance: {
		`check|inspect|verify|test|examine`,
		`oil|tire|chain|brake|fluid|filter`,
		`level|pressure|tension|condition`,
		`how often|when to|service interval`,
	},
	domain.IntentTroubleshooting: {
		`problem|issue|fault|error|won't|doesn't|not working`,
		`start|run|idle|overheat|stall|rough`,
		`what's wrong|what should i do|why`,
		`diagnose|fix|repair|solve`,
	},
	domain.IntentSpecifications: {
		`spec|specification|capacity|size|dimension`,
		`pressure|temperature|torque|clearance`,
		`what is|how much|how many`,
		`weight|volume|measurement`,
	},
	domain.IntentProcedure: {
		`how to|procedure|steps|instructions`,
		`replace|install|remove|adjust|change`,
		`do i|can i|should i`,
		`process|method|technique`,
	},
	domain.IntentSafety: {
		`safety|danger|warning|caution|risk`,
		`safe|unsafe|hazard|precaution`,
		`what if|is it safe|should i worry`,
		`emergency|critical|important`,
	},
}

// order fixes tie-breaking between equally scored categories.
var order = []domain.Intent{
	domain.IntentMaintenance,
	domain.IntentTroubleshooting,
	domain.IntentSpecifications,
	domain.IntentProcedure,
	domain.IntentSafety,
}

// NewDetector compiles the category pattern tables.
func NewDetector() *Detector {
	d := &Detector{patterns: make(map[domain.Intent][]*regexp.Regexp, len(patternSources))}
	for intent, sources := range patternSources {
		for _, src := range sources {
			d.patterns[intent] = append(d.patterns[intent], regexp.MustCompile(`(?i)`+src))
		}
	}
	return d
}

// Detect returns the best matching intent for the query.
func (d *Detector) Detect(query string) domain.Intent {
	best := domain.IntentGeneral
	bestScore := 0
	for _, intent := range order {
		score := 0
		for _, re := range d.patterns[intent] {
			if re.MatchString(query) {
				score++
			}
		}
		if score > bestScore {
			bestScore = score
			best = intent
		}
	}
	return best
}

// Confidence returns the fraction of the intent's patterns matching the
// query, in [0,1].
func (d *Detector) Confidence(query string, intent domain.Intent) float64 {
	patterns := d.patterns[intent]
	if len(patterns) == 0 {
		return 0
	}
	matches := 0
	for _, re := range patterns {
		if re.MatchString(query) {
			matches++
		}
	}
	conf := float64(matches) / float64(len(patterns))
	if conf > 1 {
		conf = 1
	}
	return conf
}
