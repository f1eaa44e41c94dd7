package query

import (
	"strings"
	"time"

	"github.com/wayfarer-ai/wayfarer/libs/travel-engine/internal/observability"
)

// DateLayout is the strict calendar format the provider is instructed to
// emit. Anything that does not parse against it becomes unknown.
const DateLayout = "2006-01-02"

// DefaultCurrency is assumed when the provider omits a currency code.
const DefaultCurrency = "USD"

// Normalizer repairs raw analyzer output into a well-formed Analysis. It
// never fails: irrecoverable input degrades to the default skeleton.
type Normalizer struct {
	logger *observability.Logger
}

// NewNormalizer creates a new normalizer.
func NewNormalizer(logger *observability.Logger) *Normalizer {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &Normalizer{logger: logger.WithComponent("normalizer")}
}

// Normalize converts raw analyzer output into a fully-populated Analysis.
func (n *Normalizer) Normalize(raw *RawAnalysis) *Analysis {
	if raw == nil {
		n.logger.Warn().Msg("nil raw analysis, substituting default skeleton")
		raw = DefaultRaw()
	}

	a := &Analysis{
		Activities: normalizeTags(raw.Activities),
		Amenities:  normalizeTags(raw.RequiredAmenities),
		Urgency:    strings.ToLower(raw.Urgency.String()),
		Intent:     strings.ToLower(raw.Intent.String()),
	}

	a.Window = n.normalizeWindow(raw)
	a.Budget = n.normalizeBudget(raw)

	a.Destination = DestinationPreferences{
		Types:      normalizeTags(raw.DestinationPreferences.DestinationTypes),
		Climates:   normalizeTags(raw.DestinationPreferences.Climates),
		Named:      normalizeTags(raw.DestinationPreferences.NamedLocations),
		Exclusions: normalizeTags(raw.DestinationPreferences.Exclusions),
	}

	a.Travelers = TravelerInfo{
		GroupSize:    clampCount(float64(raw.Travelers.GroupSize)),
		Types:        normalizeTags(raw.Travelers.TravelerTypes),
		AgeBands:     normalizeTags(raw.Travelers.AgeBands),
		SpecialNeeds: normalizeTags(raw.Travelers.SpecialNeeds),
	}

	a.Accommodation = AccommodationPreferences{
		MinStarRating: clampRating(float64(raw.Accommodation.MinStarRating)),
		RoomTypes:     normalizeTags(raw.Accommodation.RoomTypes),
		PropertyTypes: normalizeTags(raw.Accommodation.PropertyTypes),
	}

	a.Terms = buildSearchTerms(a)
	a.FollowUps = buildFollowUps(a)

	return a
}

// normalizeWindow parses dates strictly, derives duration when both ends are
// known, and derives a season from the start month when none was stated.
func (n *Normalizer) normalizeWindow(raw *RawAnalysis) TravelWindow {
	w := TravelWindow{
		Season:      strings.ToLower(raw.TravelDates.Season.String()),
		Flexibility: strings.ToLower(raw.TravelDates.Flexibility.String()),
	}

	w.Start = n.parseDate(raw.TravelDates.StartDate.String())
	w.End = n.parseDate(raw.TravelDates.EndDate.String())

	// End before start is structurally invalid; the end date becomes unknown.
	if w.Start != nil && w.End != nil && w.End.Before(*w.Start) {
		n.logger.Warn().
			Str("start", w.Start.Format(DateLayout)).
			Str("end", w.End.Format(DateLayout)).
			Msg("travel window ends before it starts, dropping end date")
		w.End = nil
	}

	if w.Start != nil && w.End != nil {
		// Derived duration always wins over a supplied one.
		w.DurationDays = int(w.End.Sub(*w.Start).Hours() / 24)
	} else {
		w.DurationDays = clampCount(float64(raw.TravelDates.DurationDays))
	}

	if w.Season == "" && w.Start != nil {
		w.Season = seasonOf(w.Start.Month())
	}

	return w
}

// normalizeBudget coerces budget figures to non-negative numbers and fills
// the default currency.
func (n *Normalizer) normalizeBudget(raw *RawAnalysis) Budget {
	b := Budget{
		MinPerDay: clampAmount(float64(raw.Budget.MinPerDay)),
		MaxPerDay: clampAmount(float64(raw.Budget.MaxPerDay)),
		Total:     clampAmount(float64(raw.Budget.Total)),
		Currency:  strings.ToUpper(raw.Budget.Currency.String()),
		Tier:      strings.ToLower(raw.Budget.Tier.String()),
	}

	if b.MinPerDay > 0 && b.MaxPerDay > 0 && b.MinPerDay > b.MaxPerDay {
		b.MinPerDay, b.MaxPerDay = b.MaxPerDay, b.MinPerDay
	}

	if b.Currency == "" {
		b.Currency = DefaultCurrency
	}

	return b
}

// parseDate parses a date string against the strict layout.
func (n *Normalizer) parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		n.logger.Debug().Str("value", s).Msg("unparseable date, treating as unknown")
		return nil
	}
	return &t
}

// buildSearchTerms flattens the tag lists into per-facet strings.
func buildSearchTerms(a *Analysis) SearchTerms {
	destParts := make([]string, 0, len(a.Destination.Types)+len(a.Destination.Climates)+len(a.Destination.Named))
	destParts = append(destParts, a.Destination.Types...)
	destParts = append(destParts, a.Destination.Climates...)
	destParts = append(destParts, a.Destination.Named...)

	accomParts := make([]string, 0, len(a.Accommodation.PropertyTypes)+len(a.Accommodation.RoomTypes))
	accomParts = append(accomParts, a.Accommodation.PropertyTypes...)
	accomParts = append(accomParts, a.Accommodation.RoomTypes...)

	return SearchTerms{
		Destination:   joinTerms(destParts),
		Amenity:       joinTerms(a.Amenities),
		Activity:      joinTerms(a.Activities),
		Accommodation: joinTerms(accomParts),
	}
}

// joinTerms joins with whitespace and drops facets that reduce to nothing.
func joinTerms(parts []string) string {
	return strings.TrimSpace(strings.Join(parts, " "))
}

// normalizeTags trims, lowercases, and de-duplicates a tag list, preserving
// first-seen order. The result is never nil.
func normalizeTags(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, tag := range in {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

// clampAmount coerces a money figure to non-negative; non-positive means unknown.
func clampAmount(v float64) float64 {
	if v <= 0 {
		return 0
	}
	return v
}

// clampCount coerces a count to a non-negative integer.
func clampCount(v float64) int {
	if v <= 0 {
		return 0
	}
	return int(v)
}

// clampRating bounds a star rating to [0, 5].
func clampRating(v float64) float64 {
	if v <= 0 {
		return 0
	}
	if v > 5 {
		return 5
	}
	return v
}

// seasonOf maps a month to a northern-hemisphere season name.
func seasonOf(m time.Month) string {
	switch m {
	case time.December, time.January, time.February:
		return "winter"
	case time.March, time.April, time.May:
		return "spring"
	case time.June, time.July, time.August:
		return "summer"
	default:
		return "autumn"
	}
}
