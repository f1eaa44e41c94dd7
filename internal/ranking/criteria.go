package ranking

import (
	"strconv"
	"strings"

	"github.com/wayfarer-ai/wayfarer/libs/travel-engine/internal/preferences"
	"github.com/wayfarer-ai/wayfarer/libs/travel-engine/internal/query"
	"github.com/wayfarer-ai/wayfarer/libs/travel-engine/internal/storage"
)

// neutralScore is used whenever a criterion has no signal to work with.
// Keeping it above the midpoint of the negative range avoids punishing
// entities for data the user never supplied.
const neutralScore = 0.7

// noSignalScore is the value for criteria where neither the entity nor the
// user carries any information at all.
const noSignalScore = 0.5

// Budget fit tiers, applied against the effective per-day ceiling.
const (
	budgetComfort  = 1.0  // at or under 80% of the ceiling
	budgetAtLimit  = 0.8  // within the ceiling
	budgetStretch  = 0.4  // up to 20% over
	budgetExceeded = 0.15 // beyond that
)

// Availability heuristic by stated urgency. Without live inventory this is
// a prior: immediate trips face the tightest availability, flexible dates
// the loosest.
const (
	availabilityImmediate = 0.4
	availabilityFlexible  = 0.9
	availabilityPlanned   = 0.8
)

// Temporal fit outside the entity's best seasons.
const seasonMiss = 0.4

// preferenceScore measures how well the entity matches the user's learned
// preference weights. Facets are matched per entity type; the result is the
// mean matched weight lifted into [0.5, 1.0] so an empty or irrelevant
// profile stays neutral.
func preferenceScore(e *storage.Entity, profile *preferences.Snapshot) float64 {
	if profile.Empty() {
		return noSignalScore
	}

	var sum float64
	var considered int

	match := func(m map[string]float64, key string) {
		if len(m) == 0 || key == "" {
			return
		}
		considered++
		sum += m[strings.ToLower(key)]
	}
	matchAll := func(m map[string]float64, keys []string) {
		for _, k := range keys {
			match(m, k)
		}
	}

	switch e.Type {
	case storage.EntityDestination:
		matchAll(profile.DestinationTypes, e.Tags)
		matchAll(profile.Activities, e.Tags)
		match(profile.Climates, e.Climate)
	case storage.EntityProperty:
		match(profile.AccommodationTypes, e.Category)
		matchAll(profile.Amenities, e.Tags)
		if e.StarRating > 0 {
			match(profile.StarRatings, strconv.FormatFloat(e.StarRating, 'g', -1, 64))
		}
	case storage.EntityCategory:
		match(profile.AccommodationTypes, e.Name)
		match(profile.AccommodationTypes, e.Category)
	case storage.EntityAmenity:
		match(profile.Amenities, e.Name)
		matchAll(profile.Amenities, e.Tags)
	}

	if considered == 0 {
		return noSignalScore
	}
	return noSignalScore + noSignalScore*(sum/float64(considered))
}

// Property fallback when no popularity index is stored: star rating carries
// most of the signal, guest capacity the rest. A missing component counts as
// neutral so a lone signal still moves the score.
const (
	popularityRatingShare     = 0.7
	popularityCapacityShare   = 0.3
	popularityCapacityCeiling = 8.0 // capacity contribution saturates here
)

// popularityScore uses the stored popularity index, falling back to a blend
// of star rating and guest capacity for properties that lack one.
func popularityScore(e *storage.Entity) float64 {
	if e.Popularity > 0 {
		return clamp01(e.Popularity)
	}
	if e.Type != storage.EntityProperty || (e.StarRating <= 0 && e.Capacity <= 0) {
		return noSignalScore
	}

	rating := noSignalScore
	if e.StarRating > 0 {
		rating = clamp01(e.StarRating / 5)
	}
	capacity := noSignalScore
	if e.Capacity > 0 {
		capacity = clamp01(float64(e.Capacity) / popularityCapacityCeiling)
	}
	return clamp01(popularityRatingShare*rating + popularityCapacityShare*capacity)
}

// budgetScore grades the entity's daily cost against the user's effective
// per-day ceiling. An unstated budget or an uncosted entity scores neutral.
func budgetScore(e *storage.Entity, a *query.Analysis) float64 {
	if a == nil || !a.Budget.Stated() || e.DailyCost <= 0 {
		return neutralScore
	}

	ceiling := a.Budget.MaxPerDay
	if ceiling <= 0 && a.Budget.Total > 0 && a.Window.DurationDays > 0 {
		ceiling = a.Budget.Total / float64(a.Window.DurationDays)
	}
	if ceiling <= 0 {
		return neutralScore
	}

	switch {
	case e.DailyCost <= 0.8*ceiling:
		return budgetComfort
	case e.DailyCost <= ceiling:
		return budgetAtLimit
	case e.DailyCost <= 1.2*ceiling:
		return budgetStretch
	default:
		return budgetExceeded
	}
}

// temporalScore checks the travel season against the entity's best seasons.
func temporalScore(e *storage.Entity, a *query.Analysis) float64 {
	if a == nil || a.Window.Season == "" || len(e.BestSeasons) == 0 {
		return neutralScore
	}
	season := strings.ToLower(a.Window.Season)
	for _, s := range e.BestSeasons {
		if strings.ToLower(s) == season {
			return 1.0
		}
	}
	return seasonMiss
}

// availabilityScore applies the urgency prior.
func availabilityScore(a *query.Analysis) float64 {
	if a == nil {
		return neutralScore
	}
	switch strings.ToLower(a.Urgency) {
	case "immediate":
		return availabilityImmediate
	case "flexible":
		return availabilityFlexible
	case "planned":
		return availabilityPlanned
	default:
		return neutralScore
	}
}
