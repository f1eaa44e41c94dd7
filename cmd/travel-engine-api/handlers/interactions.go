package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/wayfarer-ai/wayfarer/libs/travel-engine/internal/observability"
	"github.com/wayfarer-ai/wayfarer/libs/travel-engine/internal/preferences"
	"github.com/wayfarer-ai/wayfarer/libs/travel-engine/pkg/engine"
)

// InteractionHandler handles interaction tracking requests.
type InteractionHandler struct {
	logger *observability.Logger
	engine *engine.Engine
}

// NewInteractionHandler creates a new interaction handler.
func NewInteractionHandler(logger *observability.Logger, eng *engine.Engine) *InteractionHandler {
	return &InteractionHandler{logger: logger, engine: eng}
}

// InteractionDTO represents the API request for interaction tracking.
type InteractionDTO struct {
	UserID          string  `json:"userId"`
	Kind            string  `json:"kind"`
	EntityID        string  `json:"entityId,omitempty"`
	DestinationType string  `json:"destinationType,omitempty"`
	Climate         string  `json:"climate,omitempty"`
	PropertyType    string  `json:"propertyType,omitempty"`
	StarRating      float64 `json:"starRating,omitempty"`
	Amenity         string  `json:"amenity,omitempty"`
}

// Track handles POST /v1/interactions.
func (h *InteractionHandler) Track(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var dto InteractionDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	userID, err := uuid.Parse(dto.UserID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid userId", err.Error())
		return
	}

	entityID := uuid.Nil
	if dto.EntityID != "" {
		if entityID, err = uuid.Parse(dto.EntityID); err != nil {
			writeError(w, http.StatusBadRequest, "invalid entityId", err.Error())
			return
		}
	}

	err = h.engine.TrackInteraction(ctx, engine.Interaction{
		UserID:          userID,
		Kind:            dto.Kind,
		EntityID:        entityID,
		DestinationType: dto.DestinationType,
		Climate:         dto.Climate,
		PropertyType:    dto.PropertyType,
		StarRating:      dto.StarRating,
		Amenity:         dto.Amenity,
	})
	if err != nil {
		if errors.Is(err, preferences.ErrUnknownKind) {
			writeError(w, http.StatusBadRequest, "unknown interaction kind", dto.Kind)
			return
		}
		h.logger.Error().Err(err).Msg("Interaction tracking failed")
		writeError(w, http.StatusInternalServerError, "interaction tracking failed", err.Error())
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}
