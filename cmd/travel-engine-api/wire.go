// Package main provides dependency wiring for the API server.
package main

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/wayfarer-ai/wayfarer/libs/travel-engine/internal/assembly"
	"github.com/wayfarer-ai/wayfarer/libs/travel-engine/internal/cache"
	"github.com/wayfarer-ai/wayfarer/libs/travel-engine/internal/config"
	"github.com/wayfarer-ai/wayfarer/libs/travel-engine/internal/embedding"
	"github.com/wayfarer-ai/wayfarer/libs/travel-engine/internal/intent"
	"github.com/wayfarer-ai/wayfarer/libs/travel-engine/internal/observability"
	"github.com/wayfarer-ai/wayfarer/libs/travel-engine/internal/preferences"
	"github.com/wayfarer-ai/wayfarer/libs/travel-engine/internal/ranking"
	"github.com/wayfarer-ai/wayfarer/libs/travel-engine/internal/search"
	"github.com/wayfarer-ai/wayfarer/libs/travel-engine/internal/storage"
	"github.com/wayfarer-ai/wayfarer/libs/travel-engine/pkg/engine"
)

// Dependencies holds the constructed engine and the resources that need
// closing on shutdown.
type Dependencies struct {
	Engine *engine.Engine
	db     *sqlx.DB
	cache  cache.Client
}

// Close releases held resources.
func (d *Dependencies) Close() {
	if d.cache != nil {
		_ = d.cache.Close()
	}
	if d.db != nil {
		_ = d.db.Close()
	}
}

// buildDependencies constructs the full engine from configuration. Missing
// provider credentials degrade to local stand-ins (mock embedder, static
// intent) so the server still comes up for development.
func buildDependencies(cfg *config.Config, logger *observability.Logger) (*Dependencies, error) {
	deps := &Dependencies{}

	// Cache layer.
	switch cfg.Cache.Driver {
	case "redis":
		client, err := cache.NewRedisClient(cache.RedisConfig{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
			PoolSize: cfg.Cache.Redis.PoolSize,
			Prefix:   cfg.Cache.Redis.Prefix,
		})
		if err != nil {
			return nil, fmt.Errorf("redis cache: %w", err)
		}
		deps.cache = client
	default:
		deps.cache = cache.NewMemoryClient(cfg.Cache.TTL)
	}

	// Embedding provider, wrapped in the content-hash cache.
	var embedder embedding.Embedder
	if cfg.Embedding.APIKey != "" {
		client, err := embedding.NewClient(embedding.Config{
			APIKey:    cfg.Embedding.APIKey,
			BaseURL:   cfg.Embedding.BaseURL,
			Model:     cfg.Embedding.Model,
			Dimension: cfg.Embedding.Dimension,
			Timeout:   cfg.Embedding.Timeout,
		})
		if err != nil {
			return nil, fmt.Errorf("embedding client: %w", err)
		}
		embedder = client
	} else {
		logger.Warn().Msg("No embedding API key configured, using deterministic mock embedder")
		embedder = embedding.NewMockClient(cfg.Vector.Dimension)
	}
	embedder = embedding.NewCachedEmbedder(embedder, deps.cache, cfg.Embedding.CacheTTL, logger)

	// Intent extraction.
	var extractor engine.IntentExtractor
	if cfg.Intent.APIKey != "" {
		client, err := intent.NewClient(intent.Config{
			APIKey:  cfg.Intent.APIKey,
			BaseURL: cfg.Intent.BaseURL,
			Model:   cfg.Intent.Model,
			Timeout: cfg.Intent.Timeout,
		})
		if err != nil {
			return nil, fmt.Errorf("intent client: %w", err)
		}
		extractor = client
	} else {
		logger.Warn().Msg("No intent API key configured, queries run without structured intent")
		extractor = intent.NewStatic()
	}

	// Vector store and searcher.
	var store search.Store
	if cfg.Vector.Store == "pgvector" {
		db, err := storage.Connect(cfg.Database.DSN, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns, cfg.Database.ConnMaxLifetime)
		if err != nil {
			return nil, fmt.Errorf("database: %w", err)
		}
		deps.db = db
		store = search.NewPGVectorStore(db, cfg.Vector.Dimension)
	} else {
		store = search.NewMemoryStore(cfg.Vector.Dimension)
	}
	searcher := search.NewSearcher(store, search.Options{
		Limit:            cfg.Search.Limit,
		Threshold:        cfg.Search.SimilarityThreshold,
		SimilarThreshold: cfg.Search.SimilarThreshold,
		Timeout:          cfg.Search.Timeout,
	}, logger)

	// Preference tracking, cached when a profile table is available.
	var profileStore preferences.Store
	if deps.db != nil {
		profileStore = preferences.NewCachedStore(
			preferences.NewSQLStore(storage.NewProfileRepository(deps.db)),
			deps.cache, cfg.Preferences.ProfileCacheTTL, logger)
	} else {
		profileStore = preferences.NewMemoryStore()
	}
	tracker := preferences.NewTracker(profileStore, preferences.Options{
		ConfidenceThreshold: cfg.Preferences.ConfidenceThreshold,
		BudgetHistorySize:   cfg.Preferences.BudgetHistorySize,
	}, logger)

	ranker := ranking.NewRanker(ranking.Weights{
		Similarity:   cfg.Ranking.SimilarityWeight,
		Preference:   cfg.Ranking.PreferenceWeight,
		Popularity:   cfg.Ranking.PopularityWeight,
		Budget:       cfg.Ranking.BudgetWeight,
		Temporal:     cfg.Ranking.TemporalWeight,
		Availability: cfg.Ranking.AvailabilityWeight,
	}, logger)

	opts := []engine.Option{
		engine.WithLogger(logger),
		engine.WithRanker(ranker),
		engine.WithTracker(tracker),
		engine.WithAssembler(newAssembler(cfg)),
	}
	if deps.db != nil {
		opts = append(opts,
			engine.WithUserLookup(storage.NewUserRepository(deps.db)),
			engine.WithInteractionLog(storage.NewInteractionRepository(deps.db)),
		)
	}

	eng, err := engine.New(extractor, embedder, searcher, opts...)
	if err != nil {
		return nil, err
	}
	deps.Engine = eng
	return deps, nil
}

func newAssembler(cfg *config.Config) *assembly.Assembler {
	return assembly.NewAssembler(assembly.Limits{
		MaxChars:                    cfg.Context.MaxChars,
		MaxFieldChars:               cfg.Context.MaxFieldChars,
		MaxDestinations:             cfg.Context.MaxDestinations,
		MaxPropertiesPerDestination: cfg.Context.MaxPropertiesPerDestination,
	})
}
