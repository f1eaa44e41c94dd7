package preferences

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/wayfarer-ai/wayfarer/libs/travel-engine/internal/observability"
	"github.com/wayfarer-ai/wayfarer/libs/travel-engine/internal/query"
	"github.com/wayfarer-ai/wayfarer/libs/travel-engine/internal/storage"
)

// Weight increments per signal source. Explicit interactions carry more
// signal than a mention in a query; a booking intent dominates both.
const (
	IncrementQuery           = 0.2
	IncrementAmenityInterest = 0.3
	IncrementPropertyView    = 0.4
	IncrementDestinationView = 0.5
	IncrementBookingIntent   = 1.0
)

// InteractionKind identifies an explicit user action worth tracking.
type InteractionKind string

const (
	KindDestinationView InteractionKind = "destination_view"
	KindPropertyView    InteractionKind = "property_view"
	KindAmenityInterest InteractionKind = "amenity_interest"
	KindBookingIntent   InteractionKind = "booking_intent"
)

// ErrUnknownKind is returned for interaction kinds the tracker does not
// recognize.
var ErrUnknownKind = errors.New("preferences: unknown interaction kind")

// Interaction carries the facets of one explicit user action. Only the
// fields relevant to the kind need to be set; empty fields are skipped.
type Interaction struct {
	Kind            InteractionKind
	DestinationType string
	Climate         string
	PropertyType    string
	StarRating      float64
	Amenity         string
}

// Store loads and persists raw profiles. Load returns storage.ErrNotFound
// for users without a profile yet.
type Store interface {
	Load(ctx context.Context, userID uuid.UUID) (*Profile, error)
	Save(ctx context.Context, profile *Profile) error
}

// Options tunes tracker behavior.
type Options struct {
	ConfidenceThreshold float64
	BudgetHistorySize   int
}

// DefaultOptions returns the standard tracker tuning.
func DefaultOptions() Options {
	return Options{
		ConfidenceThreshold: DefaultConfidenceThreshold,
		BudgetHistorySize:   DefaultBudgetHistorySize,
	}
}

// Tracker folds query and interaction signals into stored profiles and
// serves normalized snapshots. All persistence is best effort: a failing
// store is logged and never propagated, so recommendation requests keep
// working without profile support.
type Tracker struct {
	store  Store
	opts   Options
	logger *observability.Logger
}

// NewTracker creates a tracker over the given store.
func NewTracker(store Store, opts Options, logger *observability.Logger) *Tracker {
	if opts.ConfidenceThreshold <= 0 {
		opts.ConfidenceThreshold = DefaultConfidenceThreshold
	}
	if opts.BudgetHistorySize <= 0 {
		opts.BudgetHistorySize = DefaultBudgetHistorySize
	}
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &Tracker{store: store, opts: opts, logger: logger.WithComponent("preference_tracker")}
}

// SnapshotFor returns the normalized profile view for a user as of now.
// Missing profiles and store failures both yield nil, which downstream
// consumers treat as a neutral profile.
func (t *Tracker) SnapshotFor(ctx context.Context, userID uuid.UUID, now time.Time) *Snapshot {
	if userID == uuid.Nil {
		return nil
	}

	profile, err := t.store.Load(ctx, userID)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			t.logger.Warn().Err(err).Str("user_id", userID.String()).Msg("Profile load failed, proceeding without preferences")
		}
		return nil
	}
	return profile.Snapshot(now, t.opts.ConfidenceThreshold)
}

// TrackQuery folds the stated facets of a normalized query into the user's
// profile. Anonymous queries (nil user) are ignored.
func (t *Tracker) TrackQuery(ctx context.Context, userID uuid.UUID, analysis *query.Analysis, now time.Time) {
	if userID == uuid.Nil || analysis == nil {
		return
	}
	t.mutate(ctx, userID, now, func(p *Profile) {
		ApplyQuery(p, analysis, t.opts.BudgetHistorySize, now)
	})
}

// TrackInteraction folds one explicit user action into the profile.
func (t *Tracker) TrackInteraction(ctx context.Context, userID uuid.UUID, interaction Interaction, now time.Time) error {
	if userID == uuid.Nil {
		return nil
	}
	increment, ok := incrementFor(interaction.Kind)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownKind, interaction.Kind)
	}
	t.mutate(ctx, userID, now, func(p *Profile) {
		ApplyInteraction(p, interaction, increment, now)
	})
	return nil
}

// mutate loads (or creates) the profile, applies the transform, stamps it
// and saves it back. Failures are logged, never returned.
func (t *Tracker) mutate(ctx context.Context, userID uuid.UUID, now time.Time, apply func(*Profile)) {
	profile, err := t.store.Load(ctx, userID)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		profile = NewProfile(userID)
	case err != nil:
		t.logger.Warn().Err(err).Str("user_id", userID.String()).Msg("Profile load failed, skipping preference update")
		return
	default:
		profile.ensureMaps()
	}

	apply(profile)
	profile.UpdatedAt = now

	if err := t.store.Save(ctx, profile); err != nil {
		t.logger.Warn().Err(err).Str("user_id", userID.String()).Msg("Profile save failed, preference update dropped")
	}
}

func incrementFor(kind InteractionKind) (float64, bool) {
	switch kind {
	case KindDestinationView:
		return IncrementDestinationView, true
	case KindPropertyView:
		return IncrementPropertyView, true
	case KindAmenityInterest:
		return IncrementAmenityInterest, true
	case KindBookingIntent:
		return IncrementBookingIntent, true
	default:
		return 0, false
	}
}

// ApplyQuery adds query-derived weight to every facet the user actually
// stated, reinforced as of now. Unknown facets contribute nothing.
func ApplyQuery(p *Profile, a *query.Analysis, budgetHistorySize int, now time.Time) {
	p.ensureMaps()

	for _, tag := range a.Destination.Types {
		p.DestinationTypes.Add(tag, IncrementQuery, now)
	}
	for _, tag := range a.Destination.Climates {
		p.Climates.Add(tag, IncrementQuery, now)
	}
	for _, tag := range a.Activities {
		p.Activities.Add(tag, IncrementQuery, now)
	}
	for _, tag := range a.Amenities {
		p.Amenities.Add(tag, IncrementQuery, now)
	}
	for _, tag := range a.Accommodation.PropertyTypes {
		p.AccommodationTypes.Add(tag, IncrementQuery, now)
	}
	if a.Accommodation.MinStarRating > 0 {
		p.StarRatings.Add(starKey(a.Accommodation.MinStarRating), IncrementQuery, now)
	}
	for _, tag := range a.Travelers.Types {
		p.TravelerTypes.Add(tag, IncrementQuery, now)
	}

	if perDay := budgetPerDay(a); perDay > 0 {
		p.BudgetHistory = appendBounded(p.BudgetHistory, perDay, budgetHistorySize)
	}
}

// ApplyInteraction adds the interaction's weight to whichever facets its
// payload carries, reinforced as of now.
func ApplyInteraction(p *Profile, in Interaction, increment float64, now time.Time) {
	p.ensureMaps()

	if in.DestinationType != "" {
		p.DestinationTypes.Add(in.DestinationType, increment, now)
	}
	if in.Climate != "" {
		p.Climates.Add(in.Climate, increment, now)
	}
	if in.PropertyType != "" {
		p.AccommodationTypes.Add(in.PropertyType, increment, now)
	}
	if in.StarRating > 0 {
		p.StarRatings.Add(starKey(in.StarRating), increment, now)
	}
	if in.Amenity != "" {
		p.Amenities.Add(in.Amenity, increment, now)
	}
}

// budgetPerDay derives a per-day budget sample: the stated daily cap when
// present, otherwise the trip total spread across a known duration.
func budgetPerDay(a *query.Analysis) float64 {
	if a.Budget.MaxPerDay > 0 {
		return a.Budget.MaxPerDay
	}
	if a.Budget.Total > 0 && a.Window.DurationDays > 0 {
		return a.Budget.Total / float64(a.Window.DurationDays)
	}
	return 0
}

// appendBounded appends keeping only the most recent limit samples.
func appendBounded(history []float64, value float64, limit int) []float64 {
	history = append(history, value)
	if len(history) > limit {
		history = history[len(history)-limit:]
	}
	return history
}

func starKey(rating float64) string {
	return strconv.FormatFloat(rating, 'g', -1, 64)
}
