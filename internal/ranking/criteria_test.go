package ranking

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wayfarer-ai/wayfarer/libs/travel-engine/internal/preferences"
	"github.com/wayfarer-ai/wayfarer/libs/travel-engine/internal/query"
	"github.com/wayfarer-ai/wayfarer/libs/travel-engine/internal/storage"
)

func TestBudgetScore_Tiers(t *testing.T) {
	analysis := &query.Analysis{Budget: query.Budget{MaxPerDay: 100}}

	tests := []struct {
		name     string
		cost     float64
		expected float64
	}{
		{"well under ceiling", 70, budgetComfort},
		{"at 80 percent boundary", 80, budgetComfort},
		{"within ceiling", 95, budgetAtLimit},
		{"exactly at ceiling", 100, budgetAtLimit},
		{"slight stretch", 115, budgetStretch},
		{"at stretch boundary", 120, budgetStretch},
		{"well over", 200, budgetExceeded},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := &storage.Entity{DailyCost: tc.cost}
			assert.InDelta(t, tc.expected, budgetScore(e, analysis), 1e-9)
		})
	}
}

func TestBudgetScore_NeutralCases(t *testing.T) {
	t.Run("unstated budget", func(t *testing.T) {
		e := &storage.Entity{DailyCost: 500}
		assert.Equal(t, neutralScore, budgetScore(e, &query.Analysis{}))
	})

	t.Run("uncosted entity", func(t *testing.T) {
		e := &storage.Entity{}
		a := &query.Analysis{Budget: query.Budget{MaxPerDay: 100}}
		assert.Equal(t, neutralScore, budgetScore(e, a))
	})

	t.Run("total spread over duration", func(t *testing.T) {
		e := &storage.Entity{DailyCost: 90}
		a := &query.Analysis{
			Budget: query.Budget{Total: 700},
			Window: query.TravelWindow{DurationDays: 7},
		}
		// 700 / 7 = 100 per day ceiling, 90 is within it.
		assert.Equal(t, budgetAtLimit, budgetScore(e, a))
	})

	t.Run("tier only stays neutral", func(t *testing.T) {
		e := &storage.Entity{DailyCost: 90}
		a := &query.Analysis{Budget: query.Budget{Tier: "luxury"}}
		assert.Equal(t, neutralScore, budgetScore(e, a))
	})
}

func TestTemporalScore(t *testing.T) {
	entity := &storage.Entity{BestSeasons: []string{"spring", "Summer"}}

	tests := []struct {
		name     string
		analysis *query.Analysis
		entity   *storage.Entity
		expected float64
	}{
		{"season match", &query.Analysis{Window: query.TravelWindow{Season: "summer"}}, entity, 1.0},
		{"case insensitive match", &query.Analysis{Window: query.TravelWindow{Season: "SPRING"}}, entity, 1.0},
		{"season miss", &query.Analysis{Window: query.TravelWindow{Season: "winter"}}, entity, seasonMiss},
		{"unknown season", &query.Analysis{}, entity, neutralScore},
		{"entity without seasons", &query.Analysis{Window: query.TravelWindow{Season: "summer"}}, &storage.Entity{}, neutralScore},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.expected, temporalScore(tc.entity, tc.analysis), 1e-9)
		})
	}
}

func TestAvailabilityScore(t *testing.T) {
	tests := []struct {
		urgency  string
		expected float64
	}{
		{"immediate", availabilityImmediate},
		{"flexible", availabilityFlexible},
		{"planned", availabilityPlanned},
		{"", neutralScore},
		{"whenever", neutralScore},
	}
	for _, tc := range tests {
		a := &query.Analysis{Urgency: tc.urgency}
		assert.InDelta(t, tc.expected, availabilityScore(a), 1e-9, "urgency %q", tc.urgency)
	}
}

func TestPreferenceScore(t *testing.T) {
	profile := &preferences.Snapshot{
		DestinationTypes: map[string]float64{"beach": 1.0},
		Climates:         map[string]float64{"tropical": 0.8},
		Amenities:        map[string]float64{"spa": 1.0},
	}

	t.Run("matching destination lifts above neutral", func(t *testing.T) {
		e := &storage.Entity{
			Type:    storage.EntityDestination,
			Tags:    []string{"beach"},
			Climate: "tropical",
		}
		score := preferenceScore(e, profile)
		assert.Greater(t, score, noSignalScore)
		assert.LessOrEqual(t, score, 1.0)
	})

	t.Run("unmatched tags land at neutral floor", func(t *testing.T) {
		e := &storage.Entity{
			Type: storage.EntityDestination,
			Tags: []string{"desert"},
		}
		assert.InDelta(t, noSignalScore, preferenceScore(e, profile), 1e-9)
	})

	t.Run("empty profile is neutral", func(t *testing.T) {
		e := &storage.Entity{Type: storage.EntityDestination, Tags: []string{"beach"}}
		assert.Equal(t, noSignalScore, preferenceScore(e, nil))
		assert.Equal(t, noSignalScore, preferenceScore(e, &preferences.Snapshot{}))
	})

	t.Run("amenity matches by name", func(t *testing.T) {
		e := &storage.Entity{Type: storage.EntityAmenity, Name: "spa"}
		assert.InDelta(t, 1.0, preferenceScore(e, profile), 1e-9)
	})
}

func TestPopularityScore(t *testing.T) {
	t.Run("stored index wins", func(t *testing.T) {
		assert.InDelta(t, 0.9, popularityScore(&storage.Entity{Popularity: 0.9}), 1e-9)
	})

	t.Run("property blends rating and capacity", func(t *testing.T) {
		e := &storage.Entity{Type: storage.EntityProperty, StarRating: 5, Capacity: 8}
		assert.InDelta(t, 1.0, popularityScore(e), 1e-9)

		// 0.7*(4/5) + 0.3*(2/8)
		e = &storage.Entity{Type: storage.EntityProperty, StarRating: 4, Capacity: 2}
		assert.InDelta(t, 0.635, popularityScore(e), 1e-9)
	})

	t.Run("rating alone counts capacity as neutral", func(t *testing.T) {
		e := &storage.Entity{Type: storage.EntityProperty, StarRating: 4}
		assert.InDelta(t, 0.7*0.8+0.3*noSignalScore, popularityScore(e), 1e-9)
	})

	t.Run("capacity alone counts rating as neutral", func(t *testing.T) {
		e := &storage.Entity{Type: storage.EntityProperty, Capacity: 8}
		assert.InDelta(t, 0.7*noSignalScore+0.3*1.0, popularityScore(e), 1e-9)
	})

	t.Run("no signal at all", func(t *testing.T) {
		assert.Equal(t, noSignalScore, popularityScore(&storage.Entity{}))
		assert.Equal(t, noSignalScore, popularityScore(&storage.Entity{Type: storage.EntityProperty}))
	})
}
