package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/wayfarer-ai/wayfarer/libs/travel-engine/cmd/travel-engine-api/handlers"
	"github.com/wayfarer-ai/wayfarer/libs/travel-engine/internal/config"
	"github.com/wayfarer-ai/wayfarer/libs/travel-engine/internal/observability"
)

// NewRouter creates the API router with all routes configured.
func NewRouter(logger *observability.Logger, cfg *config.Config, deps *Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(cfg.Server.ReadTimeout))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"healthy","service":"travel-engine"}`))
	})

	recommendHandler := handlers.NewRecommendHandler(logger, deps.Engine)
	interactionHandler := handlers.NewInteractionHandler(logger, deps.Engine)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/recommend", recommendHandler.Recommend)
		r.Post("/interactions", interactionHandler.Track)
	})

	return r
}
