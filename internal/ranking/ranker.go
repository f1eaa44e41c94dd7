// Package ranking orders similarity search candidates by a weighted blend
// of semantic, preference, and practicality criteria.
package ranking

import (
	"sort"
	"time"

	"github.com/wayfarer-ai/wayfarer/libs/travel-engine/internal/observability"
	"github.com/wayfarer-ai/wayfarer/libs/travel-engine/internal/preferences"
	"github.com/wayfarer-ai/wayfarer/libs/travel-engine/internal/query"
	"github.com/wayfarer-ai/wayfarer/libs/travel-engine/internal/search"
	"github.com/wayfarer-ai/wayfarer/libs/travel-engine/internal/storage"
)

// Weights controls the contribution of each criterion to the composite
// score. Weights are re-normalized to sum to 1.0 before use, so callers can
// supply any positive values.
type Weights struct {
	Similarity   float64 `yaml:"similarity"`
	Preference   float64 `yaml:"preference"`
	Popularity   float64 `yaml:"popularity"`
	Budget       float64 `yaml:"budget"`
	Temporal     float64 `yaml:"temporal"`
	Availability float64 `yaml:"availability"`
}

// DefaultWeights returns the standard criterion weighting.
func DefaultWeights() Weights {
	return Weights{
		Similarity:   0.40,
		Preference:   0.25,
		Popularity:   0.15,
		Budget:       0.10,
		Temporal:     0.05,
		Availability: 0.05,
	}
}

func (w Weights) sum() float64 {
	return w.Similarity + w.Preference + w.Popularity + w.Budget + w.Temporal + w.Availability
}

// normalized scales the weights so they sum to exactly 1.0. Non-positive
// weight sets fall back to the defaults.
func (w Weights) normalized() Weights {
	s := w.sum()
	if s <= 0 {
		return DefaultWeights()
	}
	return Weights{
		Similarity:   w.Similarity / s,
		Preference:   w.Preference / s,
		Popularity:   w.Popularity / s,
		Budget:       w.Budget / s,
		Temporal:     w.Temporal / s,
		Availability: w.Availability / s,
	}
}

// Scores holds the per-criterion values, each in [0, 1].
type Scores struct {
	Similarity   float64 `json:"similarity"`
	Preference   float64 `json:"preference"`
	Popularity   float64 `json:"popularity"`
	Budget       float64 `json:"budget"`
	Temporal     float64 `json:"temporal"`
	Availability float64 `json:"availability"`
}

func (s Scores) composite(w Weights) float64 {
	return s.Similarity*w.Similarity +
		s.Preference*w.Preference +
		s.Popularity*w.Popularity +
		s.Budget*w.Budget +
		s.Temporal*w.Temporal +
		s.Availability*w.Availability
}

// Ranked is one scored candidate.
type Ranked struct {
	Entity     storage.Entity `json:"entity"`
	Similarity float64        `json:"similarity"`
	Composite  float64        `json:"composite"`
	Scores     Scores         `json:"scores"`
	Label      string         `json:"label"`
}

// scoreFunc computes the per-criterion scores for one candidate. Held as a
// field so tests can inject failing scorers.
type scoreFunc func(e *storage.Entity, similarity float64, a *query.Analysis, profile *preferences.Snapshot, now time.Time) Scores

// Ranker orders candidates by composite score. Ordering is stable: when two
// candidates tie on composite score they keep their similarity search order.
type Ranker struct {
	weights Weights
	logger  *observability.Logger
	score   scoreFunc
}

// NewRanker creates a ranker with the given weights.
func NewRanker(weights Weights, logger *observability.Logger) *Ranker {
	if logger == nil {
		logger = observability.NopLogger()
	}
	r := &Ranker{
		weights: weights.normalized(),
		logger:  logger.WithComponent("ranker"),
	}
	r.score = r.scoreEntity
	return r
}

// Rank scores and orders one candidate list. The second return reports
// degraded mode: if any scorer panics the whole list falls back to pure
// similarity ordering rather than serving a partially scored mix.
func (r *Ranker) Rank(candidates []search.Result, a *query.Analysis, profile *preferences.Snapshot, now time.Time) (ranked []Ranked, degraded bool) {
	if len(candidates) == 0 {
		return []Ranked{}, false
	}

	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error().Interface("panic", rec).Msg("Scoring panicked, degrading to similarity-only ordering")
			ranked = r.similarityOnly(candidates)
			degraded = true
		}
	}()

	ranked = make([]Ranked, 0, len(candidates))
	for i := range candidates {
		c := &candidates[i]
		scores := r.score(&c.Entity, c.Similarity, a, profile, now)
		composite := scores.composite(r.weights)
		ranked = append(ranked, Ranked{
			Entity:     c.Entity,
			Similarity: c.Similarity,
			Composite:  composite,
			Scores:     scores,
			Label:      Label(composite),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Composite > ranked[j].Composite
	})
	return ranked, false
}

// similarityOnly builds the degraded result set: composite equals the raw
// similarity and the input order (already similarity-sorted) is preserved.
func (r *Ranker) similarityOnly(candidates []search.Result) []Ranked {
	out := make([]Ranked, 0, len(candidates))
	for i := range candidates {
		c := &candidates[i]
		out = append(out, Ranked{
			Entity:     c.Entity,
			Similarity: c.Similarity,
			Composite:  c.Similarity,
			Scores:     Scores{Similarity: c.Similarity},
			Label:      Label(c.Similarity),
		})
	}
	return out
}

// scoreEntity is the default scorer.
func (r *Ranker) scoreEntity(e *storage.Entity, similarity float64, a *query.Analysis, profile *preferences.Snapshot, now time.Time) Scores {
	return Scores{
		Similarity:   clamp01(similarity),
		Preference:   preferenceScore(e, profile),
		Popularity:   popularityScore(e),
		Budget:       budgetScore(e, a),
		Temporal:     temporalScore(e, a),
		Availability: availabilityScore(a),
	}
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
