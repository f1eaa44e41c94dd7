package engine

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wayfarer-ai/wayfarer/libs/travel-engine/internal/embedding"
	"github.com/wayfarer-ai/wayfarer/libs/travel-engine/internal/query"
	"github.com/wayfarer-ai/wayfarer/libs/travel-engine/internal/search"
	"github.com/wayfarer-ai/wayfarer/libs/travel-engine/internal/storage"
)

// stubExtractor returns a canned raw analysis, or an error.
type stubExtractor struct {
	payload string
	err     error
}

func (s *stubExtractor) Extract(context.Context, string, time.Time) (*query.RawAnalysis, error) {
	if s.err != nil {
		return nil, s.err
	}
	raw := &query.RawAnalysis{}
	if s.payload != "" {
		if err := json.Unmarshal([]byte(s.payload), raw); err != nil {
			return nil, err
		}
	}
	return raw, nil
}

// faultyStore fails searches for one entity type.
type faultyStore struct {
	search.Store
	failType storage.EntityType
}

func (s *faultyStore) Search(ctx context.Context, p search.Params, q []float32) ([]search.Result, error) {
	if p.Type == s.failType {
		return nil, errors.New("index offline")
	}
	return s.Store.Search(ctx, p, q)
}

func seedEntities(t *testing.T, embedder embedding.Embedder, store *search.MemoryStore) {
	t.Helper()
	ctx := context.Background()

	entities := []storage.Entity{
		{ID: uuid.New(), Type: storage.EntityDestination, Name: "tropical beach island", Tags: []string{"beach"}, Climate: "tropical", BestSeasons: []string{"summer"}, DailyCost: 90},
		{ID: uuid.New(), Type: storage.EntityDestination, Name: "alpine ski valley", Tags: []string{"mountain"}, Climate: "alpine", BestSeasons: []string{"winter"}, DailyCost: 180},
		{ID: uuid.New(), Type: storage.EntityProperty, Name: "beachfront resort", Category: "resort", StarRating: 5, DailyCost: 200},
		{ID: uuid.New(), Type: storage.EntityAmenity, Name: "infinity pool", Category: "wellness"},
	}
	for i := range entities {
		vec, err := embedder.EmbedSingle(ctx, entities[i].Name)
		require.NoError(t, err)
		entities[i].Embedding = vec
	}
	require.NoError(t, store.Add(entities...))
}

func newTestEngine(t *testing.T, extractor IntentExtractor, store search.Store) *Engine {
	t.Helper()
	embedder := embedding.NewMockClient(32)
	searcher := search.NewSearcher(store, search.Options{Limit: 10, Threshold: 0, Timeout: time.Second}, nil)

	eng, err := New(extractor, embedder, searcher)
	require.NoError(t, err)
	return eng
}

func TestEngine_RecommendEndToEnd(t *testing.T) {
	embedder := embedding.NewMockClient(32)
	store := search.NewMemoryStore(32)
	seedEntities(t, embedder, store)

	extractor := &stubExtractor{payload: `{
		"travel_dates": {"start_date": "2026-07-10", "end_date": "2026-07-17"},
		"budget": {"max_per_day": 150},
		"destination_preferences": {"destination_type": ["beach"], "climate": ["tropical"]},
		"travelers": {"group_size": 2},
		"activities": ["surfing"],
		"urgency": "planned"
	}`}
	eng := newTestEngine(t, extractor, store)

	resp, err := eng.Recommend(context.Background(), RecommendRequest{
		UserID:  uuid.New(),
		Message: "somewhere warm with waves in july",
	})
	require.NoError(t, err)

	require.NotNil(t, resp.Analysis)
	assert.Equal(t, "summer", resp.Analysis.Window.Season)
	assert.Equal(t, 7, resp.Analysis.Window.DurationDays)

	assert.NotEmpty(t, resp.Destinations)
	assert.NotEmpty(t, resp.Properties)
	assert.NotEmpty(t, resp.Amenities)
	assert.False(t, resp.Degraded)

	// Enough facets are known, no clarifying questions.
	assert.Empty(t, resp.FollowUps)

	assert.Contains(t, resp.Context, "## Trip requirements")
	assert.Contains(t, resp.Context, "## Matched destinations")
	assert.Contains(t, resp.Context, "## Guidelines")
}

func TestEngine_ExtractionFailureFallsBackToDefault(t *testing.T) {
	embedder := embedding.NewMockClient(32)
	store := search.NewMemoryStore(32)
	seedEntities(t, embedder, store)

	eng := newTestEngine(t, &stubExtractor{err: errors.New("provider timeout")}, store)

	resp, err := eng.Recommend(context.Background(), RecommendRequest{
		Message: "tropical beach island",
	})
	require.NoError(t, err)

	// Everything unknown warrants clarifying questions, and the raw message
	// still drives the search.
	assert.NotEmpty(t, resp.FollowUps)
	require.NotEmpty(t, resp.Destinations)
	assert.Equal(t, "tropical beach island", resp.Destinations[0].Entity.Name)
}

func TestEngine_EmptyMessageRejected(t *testing.T) {
	store := search.NewMemoryStore(32)
	eng := newTestEngine(t, &stubExtractor{}, store)

	_, err := eng.Recommend(context.Background(), RecommendRequest{Message: "   "})
	assert.Error(t, err)
}

func TestEngine_PartialSearchFailure(t *testing.T) {
	embedder := embedding.NewMockClient(32)
	memStore := search.NewMemoryStore(32)
	seedEntities(t, embedder, memStore)

	store := &faultyStore{Store: memStore, failType: storage.EntityAmenity}
	eng := newTestEngine(t, &stubExtractor{}, store)

	resp, err := eng.Recommend(context.Background(), RecommendRequest{
		Message: "tropical beach island",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.Destinations)
	assert.Empty(t, resp.Amenities)
	assert.NotContains(t, resp.Context, "## Matched amenities")
}

func TestEngine_TrackInteraction(t *testing.T) {
	store := search.NewMemoryStore(32)
	eng := newTestEngine(t, &stubExtractor{}, store)

	t.Run("valid kind accepted", func(t *testing.T) {
		err := eng.TrackInteraction(context.Background(), Interaction{
			UserID:          uuid.New(),
			Kind:            "destination_view",
			DestinationType: "beach",
		})
		assert.NoError(t, err)
	})

	t.Run("unknown kind rejected", func(t *testing.T) {
		err := eng.TrackInteraction(context.Background(), Interaction{
			UserID: uuid.New(),
			Kind:   "page_scroll",
		})
		assert.Error(t, err)
	})
}

func TestEngine_FirstRequestRanksWithNeutralPreference(t *testing.T) {
	embedder := embedding.NewMockClient(32)
	store := search.NewMemoryStore(32)
	seedEntities(t, embedder, store)

	extractor := &stubExtractor{payload: `{
		"destination_preferences": {"destination_type": ["beach"], "climate": ["tropical"]}
	}`}
	eng := newTestEngine(t, extractor, store)
	userID := uuid.New()

	// No profile exists yet, so this request's own stated facets must not
	// influence its own preference scores.
	resp, err := eng.Recommend(context.Background(), RecommendRequest{
		UserID:  userID,
		Message: "somewhere warm",
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Destinations)
	for _, d := range resp.Destinations {
		assert.InDelta(t, 0.5, d.Scores.Preference, 1e-9, "entity %s", d.Entity.Name)
	}

	// The facets were still tracked; the follow-up request sees them.
	resp, err = eng.Recommend(context.Background(), RecommendRequest{
		UserID:  userID,
		Message: "somewhere warm",
	})
	require.NoError(t, err)
	for _, d := range resp.Destinations {
		if d.Entity.Name == "tropical beach island" {
			assert.Greater(t, d.Scores.Preference, 0.5)
		}
	}
}

func TestEngine_PersonalizationShiftsRanking(t *testing.T) {
	embedder := embedding.NewMockClient(32)
	store := search.NewMemoryStore(32)
	seedEntities(t, embedder, store)

	eng := newTestEngine(t, &stubExtractor{}, store)
	userID := uuid.New()

	// Build up a strong beach preference through explicit interactions.
	for i := 0; i < 5; i++ {
		require.NoError(t, eng.TrackInteraction(context.Background(), Interaction{
			UserID:          userID,
			Kind:            "booking_intent",
			DestinationType: "beach",
			Climate:         "tropical",
		}))
	}

	resp, err := eng.Recommend(context.Background(), RecommendRequest{
		UserID:  userID,
		Message: "a week away somewhere nice",
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Destinations)

	var beach, alpine *float64
	for i := range resp.Destinations {
		d := resp.Destinations[i]
		switch d.Entity.Name {
		case "tropical beach island":
			beach = &resp.Destinations[i].Scores.Preference
		case "alpine ski valley":
			alpine = &resp.Destinations[i].Scores.Preference
		}
	}
	require.NotNil(t, beach)
	require.NotNil(t, alpine)
	assert.Greater(t, *beach, *alpine)
}

func TestEngine_Similar(t *testing.T) {
	embedder := embedding.NewMockClient(32)
	store := search.NewMemoryStore(32)
	seedEntities(t, embedder, store)

	searcher := search.NewSearcher(store, search.Options{Limit: 10, Threshold: 0, SimilarThreshold: 0, Timeout: time.Second}, nil)
	eng, err := New(&stubExtractor{}, embedder, searcher)
	require.NoError(t, err)

	vec, err := embedder.EmbedSingle(context.Background(), "tropical beach island")
	require.NoError(t, err)
	self := storage.Entity{ID: uuid.New(), Type: storage.EntityDestination, Embedding: vec}

	results, err := eng.Similar(context.Background(), self, storage.EntityDestination, 5)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "tropical beach island", results[0].Entity.Name)
}

func TestEngine_RequiredCollaborators(t *testing.T) {
	store := search.NewMemoryStore(32)
	searcher := search.NewSearcher(store, search.DefaultOptions(), nil)
	embedder := embedding.NewMockClient(32)

	_, err := New(nil, embedder, searcher)
	assert.Error(t, err)

	_, err = New(&stubExtractor{}, nil, searcher)
	assert.Error(t, err)

	_, err = New(&stubExtractor{}, embedder, nil)
	assert.Error(t, err)
}
