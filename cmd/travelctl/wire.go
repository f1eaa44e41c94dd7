package main

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/wayfarer-ai/wayfarer/libs/travel-engine/internal/assembly"
	"github.com/wayfarer-ai/wayfarer/libs/travel-engine/internal/cache"
	"github.com/wayfarer-ai/wayfarer/libs/travel-engine/internal/config"
	"github.com/wayfarer-ai/wayfarer/libs/travel-engine/internal/embedding"
	"github.com/wayfarer-ai/wayfarer/libs/travel-engine/internal/intent"
	"github.com/wayfarer-ai/wayfarer/libs/travel-engine/internal/preferences"
	"github.com/wayfarer-ai/wayfarer/libs/travel-engine/internal/ranking"
	"github.com/wayfarer-ai/wayfarer/libs/travel-engine/internal/search"
	"github.com/wayfarer-ai/wayfarer/libs/travel-engine/internal/storage"
	"github.com/wayfarer-ai/wayfarer/libs/travel-engine/pkg/engine"
)

// runtimeDeps holds the constructed engine and closable resources for one
// CLI invocation.
type runtimeDeps struct {
	engine *engine.Engine
	db     *sqlx.DB
	cache  cache.Client
}

func (d *runtimeDeps) close() {
	if d.cache != nil {
		_ = d.cache.Close()
	}
	if d.db != nil {
		_ = d.db.Close()
	}
}

// buildEngine wires the pipeline from config. Without a Postgres vector
// store it falls back to an in-memory store seeded with bundled sample data
// so the CLI works out of the box.
func buildEngine(ctx context.Context) (*runtimeDeps, error) {
	deps := &runtimeDeps{}

	if cfg.Cache.Driver == "redis" {
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
	} else {
		deps.cache = cache.NewMemoryClient(cfg.Cache.TTL)
	}

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
		embedder = embedding.NewMockClient(cfg.Vector.Dimension)
	}
	embedder = embedding.NewCachedEmbedder(embedder, deps.cache, cfg.Embedding.CacheTTL, logger)

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
		extractor = intent.NewStatic()
	}

	var store search.Store
	if cfg.Vector.Store == "pgvector" {
		db, err := storage.Connect(cfg.Database.DSN, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns, cfg.Database.ConnMaxLifetime)
		if err != nil {
			return nil, fmt.Errorf("database: %w", err)
		}
		deps.db = db
		store = search.NewPGVectorStore(db, cfg.Vector.Dimension)
	} else {
		memStore := search.NewMemoryStore(cfg.Vector.Dimension)
		if err := seedSampleEntities(ctx, memStore, embedder); err != nil {
			return nil, fmt.Errorf("seed sample data: %w", err)
		}
		store = memStore
	}
	searcher := search.NewSearcher(store, search.Options{
		Limit:            cfg.Search.Limit,
		Threshold:        cfg.Search.SimilarityThreshold,
		SimilarThreshold: cfg.Search.SimilarThreshold,
		Timeout:          cfg.Search.Timeout,
	}, logger)

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

	assembler := assembly.NewAssembler(assembly.Limits{
		MaxChars:                    cfg.Context.MaxChars,
		MaxFieldChars:               cfg.Context.MaxFieldChars,
		MaxDestinations:             cfg.Context.MaxDestinations,
		MaxPropertiesPerDestination: cfg.Context.MaxPropertiesPerDestination,
	})

	opts := []engine.Option{
		engine.WithLogger(logger),
		engine.WithRanker(ranker),
		engine.WithTracker(tracker),
		engine.WithAssembler(assembler),
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
	deps.engine = eng
	return deps, nil
}
