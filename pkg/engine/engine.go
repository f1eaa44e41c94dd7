// Package engine is the public facade of the travel recommendation engine.
// It wires intent extraction, query normalization, vector search, ranking,
// preference tracking, and context assembly into one pipeline.
package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wayfarer-ai/wayfarer/libs/travel-engine/internal/assembly"
	"github.com/wayfarer-ai/wayfarer/libs/travel-engine/internal/embedding"
	"github.com/wayfarer-ai/wayfarer/libs/travel-engine/internal/observability"
	"github.com/wayfarer-ai/wayfarer/libs/travel-engine/internal/preferences"
	"github.com/wayfarer-ai/wayfarer/libs/travel-engine/internal/query"
	"github.com/wayfarer-ai/wayfarer/libs/travel-engine/internal/ranking"
	"github.com/wayfarer-ai/wayfarer/libs/travel-engine/internal/search"
	"github.com/wayfarer-ai/wayfarer/libs/travel-engine/internal/storage"
)

// IntentExtractor turns a free-text message into the raw structured intent.
// Implementations may fail; the engine substitutes the default skeleton and
// keeps going.
type IntentExtractor interface {
	Extract(ctx context.Context, message string, now time.Time) (*query.RawAnalysis, error)
}

// UserLookup fetches basic user records for context framing. Optional.
type UserLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*storage.User, error)
}

// InteractionLog appends raw interaction events for auditing. Optional.
type InteractionLog interface {
	Log(ctx context.Context, userID uuid.UUID, kind string, entityID uuid.UUID) error
}

// Engine runs the recommendation pipeline.
type Engine struct {
	extractor  IntentExtractor
	normalizer *query.Normalizer
	embedder   embedding.Embedder
	searcher   *search.Searcher
	ranker     *ranking.Ranker
	assembler  *assembly.Assembler
	tracker    *preferences.Tracker
	users      UserLookup
	events     InteractionLog
	logger     *observability.Logger
	now        func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(l *observability.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithRanker replaces the default ranker.
func WithRanker(r *ranking.Ranker) Option {
	return func(e *Engine) { e.ranker = r }
}

// WithAssembler replaces the default context assembler.
func WithAssembler(a *assembly.Assembler) Option {
	return func(e *Engine) { e.assembler = a }
}

// WithTracker replaces the default in-memory preference tracker.
func WithTracker(t *preferences.Tracker) Option {
	return func(e *Engine) { e.tracker = t }
}

// WithUserLookup enables user records in assembled contexts.
func WithUserLookup(u UserLookup) Option {
	return func(e *Engine) { e.users = u }
}

// WithInteractionLog enables interaction event auditing.
func WithInteractionLog(l InteractionLog) Option {
	return func(e *Engine) { e.events = l }
}

// WithClock overrides the time source. Used in tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New assembles an engine from its three required collaborators. Everything
// else has a working default.
func New(extractor IntentExtractor, embedder embedding.Embedder, searcher *search.Searcher, opts ...Option) (*Engine, error) {
	if extractor == nil {
		return nil, fmt.Errorf("engine: intent extractor is required")
	}
	if embedder == nil {
		return nil, fmt.Errorf("engine: embedder is required")
	}
	if searcher == nil {
		return nil, fmt.Errorf("engine: searcher is required")
	}

	e := &Engine{
		extractor: extractor,
		embedder:  embedder,
		searcher:  searcher,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.logger == nil {
		e.logger = observability.NopLogger()
	}
	e.logger = e.logger.WithComponent("engine")
	e.normalizer = query.NewNormalizer(e.logger)
	if e.ranker == nil {
		e.ranker = ranking.NewRanker(ranking.DefaultWeights(), e.logger)
	}
	if e.assembler == nil {
		e.assembler = assembly.NewAssembler(assembly.DefaultLimits())
	}
	if e.tracker == nil {
		e.tracker = preferences.NewTracker(preferences.NewMemoryStore(), preferences.DefaultOptions(), e.logger)
	}
	return e, nil
}

// RecommendRequest is one recommendation query. UserID may be uuid.Nil for
// anonymous queries; they skip preference tracking and profile lookup.
type RecommendRequest struct {
	UserID  uuid.UUID `json:"user_id,omitempty"`
	Message string    `json:"message"`
}

// RecommendResponse carries the full pipeline output for one request.
type RecommendResponse struct {
	Analysis     *query.Analysis  `json:"analysis"`
	Destinations []ranking.Ranked `json:"destinations"`
	Properties   []ranking.Ranked `json:"properties"`
	Categories   []ranking.Ranked `json:"categories"`
	Amenities    []ranking.Ranked `json:"amenities"`
	Context      string           `json:"context"`
	FollowUps    []string         `json:"follow_ups"`
	Degraded     bool             `json:"degraded"`
}

// Recommend runs the full pipeline: extract intent, normalize, search all
// entity types, rank, and assemble the generation context. Intent extraction
// and preference tracking failures degrade gracefully; embedding failures
// and vector dimension mismatches fail the request.
func (e *Engine) Recommend(ctx context.Context, req RecommendRequest) (*RecommendResponse, error) {
	if strings.TrimSpace(req.Message) == "" {
		return nil, fmt.Errorf("engine: empty message")
	}
	now := e.now()
	log := e.logger.WithUser(req.UserID.String())

	raw, err := e.extractor.Extract(ctx, req.Message, now)
	if err != nil {
		log.Warn().Err(err).Msg("Intent extraction failed, using default skeleton")
		raw = query.DefaultRaw()
	}
	analysis := e.normalizer.Normalize(raw)

	// Snapshot first: the profile that ranks this request reflects prior
	// behavior only, and tracking feeds back on subsequent requests.
	profile := e.tracker.SnapshotFor(ctx, req.UserID, now)
	e.tracker.TrackQuery(ctx, req.UserID, analysis, now)

	text := analysis.Terms.Combined()
	if text == "" {
		// Nothing usable survived normalization; embed the raw message so
		// the search still reflects what the user said.
		text = req.Message
	}
	vector, err := e.embedder.EmbedSingle(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	results, err := e.searcher.SearchAll(ctx, vector)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}
	if len(results.Failed) > 0 {
		log.Warn().
			Int("failed_types", len(results.Failed)).
			Msg("Proceeding with partial search results")
	}

	resp := &RecommendResponse{
		Analysis:  analysis,
		FollowUps: analysis.FollowUps,
	}
	resp.Destinations, resp.Degraded = e.rankMerge(results.Destinations, analysis, profile, now, resp.Degraded)
	resp.Properties, resp.Degraded = e.rankMerge(results.Properties, analysis, profile, now, resp.Degraded)
	resp.Categories, resp.Degraded = e.rankMerge(results.Categories, analysis, profile, now, resp.Degraded)
	resp.Amenities, resp.Degraded = e.rankMerge(results.Amenities, analysis, profile, now, resp.Degraded)

	resp.Context = e.assembler.Build(assembly.Input{
		Analysis:     analysis,
		Profile:      profile,
		User:         e.lookupUser(ctx, req.UserID),
		Destinations: resp.Destinations,
		Properties:   resp.Properties,
		Categories:   resp.Categories,
		Amenities:    resp.Amenities,
		Degraded:     resp.Degraded,
	})
	return resp, nil
}

// rankMerge ranks one candidate list and folds its degraded flag into the
// running one.
func (e *Engine) rankMerge(candidates []search.Result, a *query.Analysis, profile *preferences.Snapshot, now time.Time, degraded bool) ([]ranking.Ranked, bool) {
	ranked, d := e.ranker.Rank(candidates, a, profile, now)
	return ranked, degraded || d
}

// lookupUser fetches the user record best-effort.
func (e *Engine) lookupUser(ctx context.Context, userID uuid.UUID) *storage.User {
	if e.users == nil || userID == uuid.Nil {
		return nil
	}
	user, err := e.users.GetByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			e.logger.Debug().Err(err).Msg("User lookup failed")
		}
		return nil
	}
	return user
}

// Interaction is one explicit user action to fold into the profile.
type Interaction struct {
	UserID          uuid.UUID `json:"user_id"`
	Kind            string    `json:"kind"`
	EntityID        uuid.UUID `json:"entity_id,omitempty"`
	DestinationType string    `json:"destination_type,omitempty"`
	Climate         string    `json:"climate,omitempty"`
	PropertyType    string    `json:"property_type,omitempty"`
	StarRating      float64   `json:"star_rating,omitempty"`
	Amenity         string    `json:"amenity,omitempty"`
}

// TrackInteraction records an explicit user action. The preference update is
// best-effort; an unknown kind is the only error.
func (e *Engine) TrackInteraction(ctx context.Context, in Interaction) error {
	err := e.tracker.TrackInteraction(ctx, in.UserID, preferences.Interaction{
		Kind:            preferences.InteractionKind(in.Kind),
		DestinationType: in.DestinationType,
		Climate:         in.Climate,
		PropertyType:    in.PropertyType,
		StarRating:      in.StarRating,
		Amenity:         in.Amenity,
	}, e.now())
	if err != nil {
		return err
	}

	if e.events != nil {
		if logErr := e.events.Log(ctx, in.UserID, in.Kind, in.EntityID); logErr != nil {
			e.logger.Warn().Err(logErr).Msg("Interaction audit log failed")
		}
	}
	return nil
}

// Similar finds entities of targetType close to the given entity's stored
// embedding.
func (e *Engine) Similar(ctx context.Context, entity storage.Entity, targetType storage.EntityType, limit int) ([]search.Result, error) {
	return e.searcher.Similar(ctx, entity, targetType, limit)
}

// Explain breaks one ranked result into its labeled scoring factors.
func (e *Engine) Explain(ranked ranking.Ranked) ranking.Explanation {
	return e.ranker.Explain(ranked)
}
