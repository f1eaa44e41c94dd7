package assembly

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wayfarer-ai/wayfarer/libs/travel-engine/internal/preferences"
	"github.com/wayfarer-ai/wayfarer/libs/travel-engine/internal/query"
	"github.com/wayfarer-ai/wayfarer/libs/travel-engine/internal/ranking"
	"github.com/wayfarer-ai/wayfarer/libs/travel-engine/internal/storage"
)

func mustDate(t *testing.T, s string) *time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return &parsed
}

func sampleInput(t *testing.T) Input {
	baliID := uuid.MustParse("11111111-1111-1111-1111-111111111111")

	return Input{
		Analysis: &query.Analysis{
			Window: query.TravelWindow{Start: mustDate(t, "2026-07-10"), Season: "summer", DurationDays: 7},
			Budget: query.Budget{MaxPerDay: 150, Currency: "USD"},
			Destination: query.DestinationPreferences{
				Types:    []string{"beach"},
				Climates: []string{"tropical"},
			},
			Activities: []string{"surfing"},
			Amenities:  []string{"pool"},
			Urgency:    "planned",
		},
		Profile: &preferences.Snapshot{
			DestinationTypes: map[string]float64{"beach": 1.0},
			Budget:           preferences.BudgetStats{Min: 80, Max: 200, Median: 120, Mean: 130, Known: true},
		},
		Destinations: []ranking.Ranked{
			{
				Entity: storage.Entity{
					ID: baliID, Type: storage.EntityDestination, Name: "Bali",
					Region: "Indonesia", Climate: "tropical",
					Description: "Tropical island with surf beaches.",
					BestSeasons: []string{"spring", "summer"}, DailyCost: 85,
				},
				Composite: 0.9, Label: ranking.LabelVeryPositive,
			},
			{
				Entity: storage.Entity{
					ID: uuid.MustParse("22222222-2222-2222-2222-222222222222"),
					Type: storage.EntityDestination, Name: "Chamonix",
					BestSeasons: []string{"winter"},
				},
				Composite: 0.5, Label: ranking.LabelNeutral,
			},
		},
		Properties: []ranking.Ranked{
			{
				Entity: storage.Entity{
					ID: uuid.MustParse("33333333-3333-3333-3333-333333333333"),
					Type: storage.EntityProperty, Name: "Uluwatu Cliff Resort",
					ParentID: baliID, Category: "resort", StarRating: 5, DailyCost: 220,
				},
				Composite: 0.85, Label: ranking.LabelVeryPositive,
			},
			{
				Entity: storage.Entity{
					ID: uuid.MustParse("44444444-4444-4444-4444-444444444444"),
					Type: storage.EntityProperty, Name: "Standalone Stay",
					Category: "guesthouse",
				},
				Composite: 0.6, Label: ranking.LabelPositive,
			},
		},
		Amenities: []ranking.Ranked{
			{Entity: storage.Entity{ID: uuid.MustParse("55555555-5555-5555-5555-555555555555"), Type: storage.EntityAmenity, Name: "infinity pool", Category: "wellness"}},
			{Entity: storage.Entity{ID: uuid.MustParse("66666666-6666-6666-6666-666666666666"), Type: storage.EntityAmenity, Name: "spa", Category: "wellness"}},
			{Entity: storage.Entity{ID: uuid.MustParse("77777777-7777-7777-7777-777777777777"), Type: storage.EntityAmenity, Name: "free wifi"}},
		},
	}
}

func TestAssembler_Deterministic(t *testing.T) {
	a := NewAssembler(DefaultLimits())

	first := a.Build(sampleInput(t))
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, a.Build(sampleInput(t)))
	}
}

func TestAssembler_SectionOrder(t *testing.T) {
	a := NewAssembler(DefaultLimits())
	out := a.Build(sampleInput(t))

	sections := []string{
		"travel planning assistant",
		"## Traveler profile",
		"## Trip requirements",
		"## Matched destinations",
		"## Other matched stays",
		"## Matched amenities",
		"## Seasonal notes",
		"## Guidelines",
	}

	last := -1
	for _, section := range sections {
		idx := strings.Index(out, section)
		require.GreaterOrEqual(t, idx, 0, "missing section %q", section)
		assert.Greater(t, idx, last, "section %q out of order", section)
		last = idx
	}
}

func TestAssembler_NestsPropertiesUnderDestinations(t *testing.T) {
	a := NewAssembler(DefaultLimits())
	out := a.Build(sampleInput(t))

	// The resort belongs to Bali and must render nested, not standalone.
	destSection := out[strings.Index(out, "## Matched destinations"):strings.Index(out, "## Other matched stays")]
	assert.Contains(t, destSection, "Uluwatu Cliff Resort")

	standalone := out[strings.Index(out, "## Other matched stays"):strings.Index(out, "## Matched amenities")]
	assert.Contains(t, standalone, "Standalone Stay")
	assert.NotContains(t, standalone, "Uluwatu Cliff Resort")
}

func TestAssembler_AmenitiesGroupedByCategory(t *testing.T) {
	a := NewAssembler(DefaultLimits())
	out := a.Build(sampleInput(t))

	amenities := out[strings.Index(out, "## Matched amenities"):]
	assert.Contains(t, amenities, "wellness: infinity pool, spa")
	assert.Contains(t, amenities, "general: free wifi")
	// Category groups sort alphabetically.
	assert.Less(t, strings.Index(amenities, "general:"), strings.Index(amenities, "wellness:"))
}

func TestAssembler_SeasonalNoteForOffSeasonDestination(t *testing.T) {
	a := NewAssembler(DefaultLimits())
	out := a.Build(sampleInput(t))

	assert.Contains(t, out, "Chamonix is best visited in winter, not summer")
	assert.NotContains(t, out, "Bali is best visited")
}

func TestAssembler_DegradedBanner(t *testing.T) {
	a := NewAssembler(DefaultLimits())

	in := sampleInput(t)
	assert.NotContains(t, a.Build(in), "semantic match only")

	in.Degraded = true
	assert.Contains(t, a.Build(in), "semantic match only")
}

func TestAssembler_MaxDestinationsApplies(t *testing.T) {
	limits := DefaultLimits()
	limits.MaxDestinations = 1
	a := NewAssembler(limits)

	out := a.Build(sampleInput(t))
	assert.Contains(t, out, "1. Bali")
	assert.NotContains(t, out, "2. Chamonix")
}

func TestClipWords(t *testing.T) {
	t.Run("short text untouched", func(t *testing.T) {
		assert.Equal(t, "short", clipWords("short", 20))
	})

	t.Run("cuts at word boundary", func(t *testing.T) {
		out := clipWords("alpha beta gamma delta", 12)
		assert.Equal(t, "alpha beta...", out)
	})

	t.Run("never splits a rune", func(t *testing.T) {
		// No spaces in the first five bytes, and byte five lands inside the
		// third two-byte rune.
		out := clipWords("àààà", 5)
		assert.True(t, utf8.ValidString(out))
		assert.Equal(t, "àà...", out)
	})
}

func TestTruncateAtLine(t *testing.T) {
	t.Run("under limit untouched", func(t *testing.T) {
		s := "line one\nline two\n"
		assert.Equal(t, s, truncateAtLine(s, 100))
	})

	t.Run("cuts at line boundary with marker", func(t *testing.T) {
		s := strings.Repeat("some context line\n", 100)
		out := truncateAtLine(s, 200)

		assert.LessOrEqual(t, len(out), 200)
		assert.True(t, strings.HasSuffix(out, TruncationMarker))
		// Everything before the marker is whole lines.
		body := strings.TrimSuffix(out, TruncationMarker)
		assert.True(t, strings.HasSuffix(body, "\n"))
	})

	t.Run("never splits a rune without a newline", func(t *testing.T) {
		// 51 leaves an odd byte budget, so a naive cut would land inside one
		// of the two-byte runes.
		s := strings.Repeat("é", 200)
		out := truncateAtLine(s, 51)

		assert.LessOrEqual(t, len(out), 51)
		assert.True(t, utf8.ValidString(out))
		assert.True(t, strings.HasSuffix(out, TruncationMarker))
	})
}

func TestAssembler_TruncationEndToEnd(t *testing.T) {
	limits := DefaultLimits()
	limits.MaxChars = 600
	a := NewAssembler(limits)

	in := sampleInput(t)
	in.Destinations[0].Entity.Description = strings.Repeat("very detailed description ", 40)

	out := a.Build(in)
	assert.LessOrEqual(t, len(out), 600)
	assert.True(t, strings.HasSuffix(out, TruncationMarker))
}
