package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"motorag/internal/domain"
)

func TestDetect(t *testing.T) {
	d := NewDetector()
	cases := []struct {
		query string
		want  domain.Intent
	}{
		{"How often should I check the oil level?", domain.IntentMaintenance},
		{"The engine won't start, what should I do?", domain.IntentTroubleshooting},
		{"What is the coolant capacity?", domain.IntentSpecifications},
		{"How to replace the air filter, step by step instructions", domain.IntentProcedure},
		{"Is it safe to touch the exhaust, any danger?", domain.IntentSafety},
		{"hello there", domain.IntentGeneral},
	}
	for _, tc := range cases {
		t.Run(tc.query, func(t *testing.T) {
			assert.Equal(t, tc.want, d.Detect(tc.query))
		})
	}
}

func TestDetectTieBreaksInFixedOrder(t *testing.T) {
	d := NewDetector()
	// Consistent results for the same query, run repeatedly.
	first := d.Detect("check the brake fluid level")
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, d.Detect("check the brake fluid level"))
	}
}

func TestConfidence(t *testing.T) {
	d := NewDetector()
	conf := d.Confidence("check the oil level", domain.IntentMaintenance)
	assert.Greater(t, conf, 0.0)
	assert.LessOrEqual(t, conf, 1.0)

	assert.Equal(t, 0.0, d.Confidence("check the oil level", domain.IntentGeneral))
}
