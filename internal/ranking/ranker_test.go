package ranking

import (
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wayfarer-ai/wayfarer/libs/travel-engine/internal/preferences"
	"github.com/wayfarer-ai/wayfarer/libs/travel-engine/internal/query"
	"github.com/wayfarer-ai/wayfarer/libs/travel-engine/internal/search"
	"github.com/wayfarer-ai/wayfarer/libs/travel-engine/internal/storage"
)

func candidate(name string, similarity float64) search.Result {
	return search.Result{
		Entity:     storage.Entity{ID: uuid.New(), Type: storage.EntityDestination, Name: name},
		Similarity: similarity,
	}
}

func TestWeights_Normalized(t *testing.T) {
	t.Run("defaults already sum to one", func(t *testing.T) {
		w := DefaultWeights().normalized()
		assert.InDelta(t, 1.0, w.sum(), 1e-9)
		assert.InDelta(t, 0.40, w.Similarity, 1e-9)
	})

	t.Run("partial override rescales", func(t *testing.T) {
		w := Weights{Similarity: 3, Preference: 1}.normalized()
		assert.InDelta(t, 1.0, w.sum(), 1e-9)
		assert.InDelta(t, 0.75, w.Similarity, 1e-9)
		assert.InDelta(t, 0.25, w.Preference, 1e-9)
	})

	t.Run("zero weights fall back to defaults", func(t *testing.T) {
		w := Weights{}.normalized()
		assert.Equal(t, DefaultWeights(), w)
	})
}

func TestRanker_CompositeIsExactWeightedSum(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	ranker := NewRanker(DefaultWeights(), nil)

	for i := 0; i < 100; i++ {
		scores := Scores{
			Similarity:   rng.Float64(),
			Preference:   rng.Float64(),
			Popularity:   rng.Float64(),
			Budget:       rng.Float64(),
			Temporal:     rng.Float64(),
			Availability: rng.Float64(),
		}
		ranker.score = func(*storage.Entity, float64, *query.Analysis, *preferences.Snapshot, time.Time) Scores {
			return scores
		}

		ranked, degraded := ranker.Rank([]search.Result{candidate("x", scores.Similarity)}, nil, nil, time.Now())
		require.False(t, degraded)
		require.Len(t, ranked, 1)

		expected := scores.Similarity*0.40 + scores.Preference*0.25 + scores.Popularity*0.15 +
			scores.Budget*0.10 + scores.Temporal*0.05 + scores.Availability*0.05
		assert.InDelta(t, expected, ranked[0].Composite, 1e-9)
	}
}

func TestRanker_OrdersByComposite(t *testing.T) {
	ranker := NewRanker(DefaultWeights(), nil)

	// With neutral defaults everywhere else, ordering follows similarity.
	ranked, degraded := ranker.Rank([]search.Result{
		candidate("mid", 0.70),
		candidate("best", 0.94),
		candidate("good", 0.81),
	}, &query.Analysis{}, nil, time.Now())

	require.False(t, degraded)
	require.Len(t, ranked, 3)
	assert.Equal(t, "best", ranked[0].Entity.Name)
	assert.Equal(t, "good", ranked[1].Entity.Name)
	assert.Equal(t, "mid", ranked[2].Entity.Name)
	assert.Greater(t, ranked[0].Composite, ranked[1].Composite)
}

func TestRanker_TiesKeepSearchOrder(t *testing.T) {
	ranker := NewRanker(DefaultWeights(), nil)
	ranker.score = func(*storage.Entity, float64, *query.Analysis, *preferences.Snapshot, time.Time) Scores {
		return Scores{Similarity: 0.5}
	}

	ranked, _ := ranker.Rank([]search.Result{
		candidate("first", 0.9),
		candidate("second", 0.9),
		candidate("third", 0.9),
	}, nil, nil, time.Now())

	require.Len(t, ranked, 3)
	assert.Equal(t, "first", ranked[0].Entity.Name)
	assert.Equal(t, "second", ranked[1].Entity.Name)
	assert.Equal(t, "third", ranked[2].Entity.Name)
}

func TestRanker_PanicDegradesToSimilarityOnly(t *testing.T) {
	ranker := NewRanker(DefaultWeights(), nil)
	ranker.score = func(*storage.Entity, float64, *query.Analysis, *preferences.Snapshot, time.Time) Scores {
		panic("scorer bug")
	}

	ranked, degraded := ranker.Rank([]search.Result{
		candidate("a", 0.94),
		candidate("b", 0.81),
	}, nil, nil, time.Now())

	assert.True(t, degraded)
	require.Len(t, ranked, 2)
	assert.Equal(t, "a", ranked[0].Entity.Name)
	assert.InDelta(t, 0.94, ranked[0].Composite, 1e-9)
	assert.Equal(t, LabelVeryPositive, ranked[0].Label)
	assert.InDelta(t, 0.81, ranked[1].Composite, 1e-9)
}

func TestRanker_RankIsIdempotent(t *testing.T) {
	ranker := NewRanker(DefaultWeights(), nil)
	in := []search.Result{candidate("a", 0.9), candidate("b", 0.6), candidate("c", 0.75)}

	first, _ := ranker.Rank(in, &query.Analysis{}, nil, time.Now())
	second, _ := ranker.Rank(in, &query.Analysis{}, nil, time.Now())

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Entity.ID, second[i].Entity.ID)
		assert.InDelta(t, first[i].Composite, second[i].Composite, 1e-12)
	}
}

func TestRanker_EmptyInput(t *testing.T) {
	ranker := NewRanker(DefaultWeights(), nil)
	ranked, degraded := ranker.Rank(nil, nil, nil, time.Now())
	assert.Empty(t, ranked)
	assert.False(t, degraded)
}

func TestLabel_Buckets(t *testing.T) {
	tests := []struct {
		score    float64
		expected string
	}{
		{0.95, LabelVeryPositive},
		{0.80, LabelVeryPositive},
		{0.79, LabelPositive},
		{0.60, LabelPositive},
		{0.59, LabelNeutral},
		{0.40, LabelNeutral},
		{0.39, LabelNegative},
		{0.20, LabelNegative},
		{0.19, LabelVeryNegative},
		{0.0, LabelVeryNegative},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.expected, Label(tc.score), "score %.2f", tc.score)
	}
}

func TestRanker_Explain(t *testing.T) {
	ranker := NewRanker(DefaultWeights(), nil)
	ranked, _ := ranker.Rank([]search.Result{candidate("a", 0.9)}, &query.Analysis{}, nil, time.Now())
	require.Len(t, ranked, 1)

	exp := ranker.Explain(ranked[0])
	require.Len(t, exp.Factors, 6)
	assert.Equal(t, "semantic_similarity", exp.Factors[0].Name)
	assert.InDelta(t, 0.40, exp.Factors[0].Weight, 1e-9)
	assert.Equal(t, ranked[0].Composite, exp.Composite)

	var sum float64
	for _, f := range exp.Factors {
		sum += f.Score * f.Weight
		assert.NotEmpty(t, f.Label)
	}
	assert.InDelta(t, exp.Composite, sum, 1e-9)
}
