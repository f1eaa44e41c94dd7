// Package preferences maintains per-user preference profiles built from
// query and interaction signals, with time decay and confidence pruning.
package preferences

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// Defaults for profile reading.
const (
	// DefaultConfidenceThreshold drops normalized weights below this value
	// from snapshots. The raw weight stays in storage and can resurface.
	DefaultConfidenceThreshold = 0.3

	// DefaultBudgetHistorySize bounds the budget sample window.
	DefaultBudgetHistorySize = 20
)

// Stepped decay applied to raw weights before normalization, keyed on how
// long ago each entry was last reinforced.
const (
	decayFreshDays = 30
	decayStaleDays = 90

	decayFactorStale   = 0.75
	decayFactorAncient = 0.5
)

// Signal is one weighted preference entry. The weight only ever grows; the
// timestamp moves forward on every reinforcement, so entries in the same map
// decay independently.
type Signal struct {
	Weight    float64   `json:"weight"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SignalMap holds one facet's weighted entries.
type SignalMap map[string]Signal

// Add grows an entry's weight and marks it reinforced as of now.
func (m SignalMap) Add(key string, increment float64, now time.Time) {
	s := m[key]
	s.Weight += increment
	s.UpdatedAt = now
	m[key] = s
}

// Weight returns the raw, undecayed weight for an entry.
func (m SignalMap) Weight(key string) float64 {
	return m[key].Weight
}

// Profile is the raw, persisted preference state for one user. Weights only
// ever grow; decay and pruning happen at read time, so a signal that fell
// below the confidence threshold can come back as it accumulates weight.
type Profile struct {
	UserID             uuid.UUID `json:"user_id"`
	DestinationTypes   SignalMap `json:"destination_types"`
	Climates           SignalMap `json:"climates"`
	Activities         SignalMap `json:"activities"`
	Amenities          SignalMap `json:"amenities"`
	AccommodationTypes SignalMap `json:"accommodation_types"`
	StarRatings        SignalMap `json:"star_ratings"`
	TravelerTypes      SignalMap `json:"traveler_types"`
	BudgetHistory      []float64 `json:"budget_history"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// NewProfile creates an empty profile for a user.
func NewProfile(userID uuid.UUID) *Profile {
	return &Profile{
		UserID:             userID,
		DestinationTypes:   SignalMap{},
		Climates:           SignalMap{},
		Activities:         SignalMap{},
		Amenities:          SignalMap{},
		AccommodationTypes: SignalMap{},
		StarRatings:        SignalMap{},
		TravelerTypes:      SignalMap{},
		BudgetHistory:      []float64{},
	}
}

// ensureMaps guards against profiles deserialized from older documents with
// missing maps.
func (p *Profile) ensureMaps() {
	if p.DestinationTypes == nil {
		p.DestinationTypes = SignalMap{}
	}
	if p.Climates == nil {
		p.Climates = SignalMap{}
	}
	if p.Activities == nil {
		p.Activities = SignalMap{}
	}
	if p.Amenities == nil {
		p.Amenities = SignalMap{}
	}
	if p.AccommodationTypes == nil {
		p.AccommodationTypes = SignalMap{}
	}
	if p.StarRatings == nil {
		p.StarRatings = SignalMap{}
	}
	if p.TravelerTypes == nil {
		p.TravelerTypes = SignalMap{}
	}
}

// Snapshot is the normalized, read-only view of a profile used by ranking
// and context assembly. Every map is non-nil; the maximum weight in any
// non-empty map is exactly 1.0 and nothing sits below the confidence
// threshold.
type Snapshot struct {
	DestinationTypes   map[string]float64
	Climates           map[string]float64
	Activities         map[string]float64
	Amenities          map[string]float64
	AccommodationTypes map[string]float64
	StarRatings        map[string]float64
	TravelerTypes      map[string]float64
	Budget             BudgetStats
}

// Empty reports whether the snapshot carries no signal at all.
func (s *Snapshot) Empty() bool {
	if s == nil {
		return true
	}
	return len(s.DestinationTypes) == 0 && len(s.Climates) == 0 &&
		len(s.Activities) == 0 && len(s.Amenities) == 0 &&
		len(s.AccommodationTypes) == 0 && len(s.StarRatings) == 0 &&
		len(s.TravelerTypes) == 0 && !s.Budget.Known
}

// BudgetStats summarizes the bounded budget history window.
type BudgetStats struct {
	Min    float64
	Max    float64
	Median float64
	Mean   float64
	Known  bool
}

// Snapshot produces the normalized view of the profile as of now. Each entry
// is decayed by its own staleness before normalization, so signals that keep
// getting reinforced pull ahead of ones that stopped.
func (p *Profile) Snapshot(now time.Time, confidenceThreshold float64) *Snapshot {
	if confidenceThreshold <= 0 {
		confidenceThreshold = DefaultConfidenceThreshold
	}

	p.ensureMaps()

	return &Snapshot{
		DestinationTypes:   normalizeWeights(p.DestinationTypes, now, confidenceThreshold),
		Climates:           normalizeWeights(p.Climates, now, confidenceThreshold),
		Activities:         normalizeWeights(p.Activities, now, confidenceThreshold),
		Amenities:          normalizeWeights(p.Amenities, now, confidenceThreshold),
		AccommodationTypes: normalizeWeights(p.AccommodationTypes, now, confidenceThreshold),
		StarRatings:        normalizeWeights(p.StarRatings, now, confidenceThreshold),
		TravelerTypes:      normalizeWeights(p.TravelerTypes, now, confidenceThreshold),
		Budget:             budgetStats(p.BudgetHistory),
	}
}

// normalizeWeights decays every entry by its own age, divides by the map's
// decayed maximum so the strongest current signal is exactly 1.0, then drops
// entries below the confidence threshold. A stale entry can fall under the
// threshold even though its raw weight once cleared it.
func normalizeWeights(m SignalMap, now time.Time, threshold float64) map[string]float64 {
	out := map[string]float64{}
	if len(m) == 0 {
		return out
	}

	decayed := make(map[string]float64, len(m))
	var max float64
	for k, s := range m {
		d := s.Weight * decayFactorFor(now.Sub(s.UpdatedAt))
		decayed[k] = d
		if d > max {
			max = d
		}
	}
	if max <= 0 {
		return out
	}

	for k, d := range decayed {
		normalized := d / max
		if normalized < threshold {
			continue
		}
		out[k] = normalized
	}
	return out
}

// decayFactorFor maps entry staleness to a stepped decay multiplier.
func decayFactorFor(age time.Duration) float64 {
	days := age.Hours() / 24
	switch {
	case days <= decayFreshDays:
		return 1.0
	case days <= decayStaleDays:
		return decayFactorStale
	default:
		return decayFactorAncient
	}
}

// budgetStats computes {min, max, median, mean} over the history window.
func budgetStats(history []float64) BudgetStats {
	if len(history) == 0 {
		return BudgetStats{}
	}

	sorted := make([]float64, len(history))
	copy(sorted, history)
	sort.Float64s(sorted)

	var sum float64
	for _, v := range sorted {
		sum += v
	}

	mid := len(sorted) / 2
	median := sorted[mid]
	if len(sorted)%2 == 0 {
		median = (sorted[mid-1] + sorted[mid]) / 2
	}

	return BudgetStats{
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
		Median: median,
		Mean:   sum / float64(len(sorted)),
		Known:  true,
	}
}
