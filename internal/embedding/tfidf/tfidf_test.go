package tfidf

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrepareBuildsVocabulary(t *testing.T) {
	e := NewEmbedder()
	require.NoError(t, e.Prepare([]string{
		"engine oil capacity",
		"brake fluid level",
	}))
	assert.Greater(t, e.Dimension(), 0)
}

func TestPrepareEmptyCorpusFails(t *testing.T) {
	e := NewEmbedder()
	assert.Error(t, e.Prepare(nil))
}

func TestEmbedBeforePrepareFails(t *testing.T) {
	e := NewEmbedder()
	_, err := e.Embed(context.Background(), "anything")
	assert.Error(t, err)
}

func TestEmbedVectorsAreL2Normalized(t *testing.T) {
	e := NewEmbedder()
	require.NoError(t, e.Prepare([]string{
		"engine oil capacity and oil change",
		"brake fluid and brake pads",
		"chain tension adjustment",
	}))
	vec, err := e.Embed(context.Background(), "engine oil change")
	require.NoError(t, err)
	norm := 0.0
	for _, v := range vec {
		norm += v * v
	}
	assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-9)
}

func TestEmbedUnknownTokensGiveZeroVector(t *testing.T) {
	e := NewEmbedder()
	require.NoError(t, e.Prepare([]string{"engine oil"}))
	vec, err := e.Embed(context.Background(), "xyzzy plugh")
	require.NoError(t, err)
	for _, v := range vec {
		assert.Zero(t, v)
	}
}

func TestSimilarTextsScoreHigherThanUnrelated(t *testing.T) {
	e := NewEmbedder()
	require.NoError(t, e.Prepare([]string{
		"check engine oil level weekly",
		"brake pad wear inspection",
		"tire pressure front rear",
	}))
	ctx := context.Background()
	query, err := e.Embed(ctx, "engine oil level")
	require.NoError(t, err)
	oil, err := e.Embed(ctx, "check engine oil level weekly")
	require.NoError(t, err)
	brake, err := e.Embed(ctx, "brake pad wear inspection")
	require.NoError(t, err)

	assert.Greater(t, dot(query, oil), dot(query, brake))
}

func dot(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
