package route

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/google/uuid"

	"github.com/shaydu/carthorse/config"
	"github.com/shaydu/carthorse/core"
)

func TestComputeSimilarityExactMatchIsOne(t *testing.T) {
	pat := core.RoutePattern{TargetDistanceKM: 6, TargetElevationGainM: 300}
	assert.Equal(t, 1.0, computeSimilarity(6, 300, pat))
}

func TestComputeSimilarityClampedToZero(t *testing.T) {
	pat := core.RoutePattern{TargetDistanceKM: 6, TargetElevationGainM: 300}
	sim := computeSimilarity(60, 3000, pat)
	assert.Equal(t, 0.0, sim)
}

func TestClassifyDifficultyBuckets(t *testing.T) {
	thresholds := config.Default().L3.DifficultyThresholds
	assert.Equal(t, core.DifficultyEasy, classifyDifficulty(0, thresholds))
	assert.Equal(t, core.DifficultyModerate, classifyDifficulty(25, thresholds))
	assert.Equal(t, core.DifficultyHard, classifyDifficulty(45, thresholds))
	assert.Equal(t, core.DifficultyExpert, classifyDifficulty(100, thresholds))
}

func TestDefaultScorerProducesZeroToOneScores(t *testing.T) {
	pat := core.RoutePattern{Name: "p", TargetDistanceKM: 6, TargetElevationGainM: 300}

	cands := []*core.RouteRecommendation{
		{UUID: uuid.New(), Pattern: pat, Metrics: core.RouteMetrics{DistanceKM: 6, GainM: 300, ConnectivityScore: 1, UniqueTrailCount: 3, TrailCount: 3}},
		{UUID: uuid.New(), Pattern: pat, Metrics: core.RouteMetrics{DistanceKM: 12, GainM: 600, ConnectivityScore: 0, UniqueTrailCount: 1, TrailCount: 3}},
	}
	scorer := DefaultScorer{Weights: config.Default().L3.ScoringWeights}
	scores, err := scorer.Score(cands, pat)
	require.NoError(t, err)
	require.Len(t, scores, 2)
	for _, s := range scores {
		assert.GreaterOrEqual(t, s, 0.0)
		assert.LessOrEqual(t, s, 1.0)
	}
	assert.Greater(t, scores[0], scores[1])
}
