package query

import "time"

// RawAnalysis mirrors the JSON object returned by the intent extraction
// provider. Its field types tolerate the provider's shape drift: missing
// keys, scalars wrapped in single-element lists, numbers as strings. A zero
// RawAnalysis is the canonical default skeleton.
type RawAnalysis struct {
	TravelDates struct {
		StartDate    FlexString `json:"start_date"`
		EndDate      FlexString `json:"end_date"`
		Season       FlexString `json:"season"`
		Flexibility  FlexString `json:"flexibility"`
		DurationDays FlexFloat  `json:"duration_days"`
	} `json:"travel_dates"`

	Budget struct {
		MinPerDay FlexFloat  `json:"min_per_day"`
		MaxPerDay FlexFloat  `json:"max_per_day"`
		Total     FlexFloat  `json:"total"`
		Currency  FlexString `json:"currency"`
		Tier      FlexString `json:"tier"`
	} `json:"budget"`

	DestinationPreferences struct {
		DestinationTypes FlexStringList `json:"destination_type"`
		Climates         FlexStringList `json:"climate"`
		NamedLocations   FlexStringList `json:"named_locations"`
		Exclusions       FlexStringList `json:"exclusions"`
	} `json:"destination_preferences"`

	Travelers struct {
		GroupSize     FlexFloat      `json:"group_size"`
		TravelerTypes FlexStringList `json:"traveler_types"`
		AgeBands      FlexStringList `json:"age_bands"`
		SpecialNeeds  FlexStringList `json:"special_needs"`
	} `json:"travelers"`

	Activities        FlexStringList `json:"activities"`
	RequiredAmenities FlexStringList `json:"required_amenities"`

	Accommodation struct {
		MinStarRating FlexFloat      `json:"min_star_rating"`
		RoomTypes     FlexStringList `json:"room_types"`
		PropertyTypes FlexStringList `json:"property_types"`
	} `json:"accommodation"`

	Urgency FlexString `json:"urgency"`
	Intent  FlexString `json:"intent"`
}

// DefaultRaw returns the canonical default skeleton substituted when the
// provider output cannot be parsed at all.
func DefaultRaw() *RawAnalysis {
	return &RawAnalysis{}
}

// Analysis is the normalized structured intent consumed by the rest of the
// pipeline. Every list field is non-nil after normalization; unknown scalars
// are zero values (empty string, 0, nil time).
type Analysis struct {
	Window        TravelWindow
	Budget        Budget
	Destination   DestinationPreferences
	Travelers     TravelerInfo
	Activities    []string
	Amenities     []string
	Accommodation AccommodationPreferences
	Urgency       string
	Intent        string
	Terms         SearchTerms
	FollowUps     []string
}

// TravelWindow describes when the trip happens.
type TravelWindow struct {
	Start        *time.Time
	End          *time.Time
	Season       string
	Flexibility  string
	DurationDays int
}

// Known reports whether the window carries any usable signal.
func (w TravelWindow) Known() bool {
	return w.Start != nil || w.End != nil || w.Season != ""
}

// Budget describes the stated spend limits.
type Budget struct {
	MinPerDay float64
	MaxPerDay float64
	Total     float64
	Currency  string
	Tier      string
}

// Stated reports whether any budget signal was supplied.
func (b Budget) Stated() bool {
	return b.MaxPerDay > 0 || b.Total > 0 || b.Tier != ""
}

// DestinationPreferences describe where the user wants to go.
type DestinationPreferences struct {
	Types      []string
	Climates   []string
	Named      []string
	Exclusions []string
}

// Known reports whether any destination signal was supplied.
func (d DestinationPreferences) Known() bool {
	return len(d.Types) > 0 || len(d.Climates) > 0 || len(d.Named) > 0
}

// TravelerInfo describes who is travelling.
type TravelerInfo struct {
	GroupSize    int
	Types        []string
	AgeBands     []string
	SpecialNeeds []string
}

// Known reports whether any traveler signal was supplied.
func (t TravelerInfo) Known() bool {
	return t.GroupSize > 0 || len(t.Types) > 0
}

// AccommodationPreferences describe lodging requirements.
type AccommodationPreferences struct {
	MinStarRating float64
	RoomTypes     []string
	PropertyTypes []string
}

// SearchTerms holds the flattened per-facet strings fed to the embedding
// provider. Facets that reduce to nothing are empty strings.
type SearchTerms struct {
	Destination   string
	Amenity       string
	Activity      string
	Accommodation string
}

// Combined joins all non-empty facets into one embedding input. Falls back
// to the empty string when every facet is empty.
func (t SearchTerms) Combined() string {
	parts := make([]string, 0, 4)
	for _, p := range []string{t.Destination, t.Activity, t.Amenity, t.Accommodation} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return joinTerms(parts)
}
