// Package handlers provides HTTP handlers for the Travel Engine API.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/wayfarer-ai/wayfarer/libs/travel-engine/internal/observability"
	"github.com/wayfarer-ai/wayfarer/libs/travel-engine/pkg/engine"
)

// RecommendHandler handles recommendation requests.
type RecommendHandler struct {
	logger *observability.Logger
	engine *engine.Engine
}

// NewRecommendHandler creates a new recommendation handler.
func NewRecommendHandler(logger *observability.Logger, eng *engine.Engine) *RecommendHandler {
	return &RecommendHandler{logger: logger, engine: eng}
}

// RecommendRequestDTO represents the API request for recommendations.
type RecommendRequestDTO struct {
	UserID  string `json:"userId,omitempty"`
	Message string `json:"message"`
}

// Recommend handles POST /v1/recommend.
func (h *RecommendHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var reqDTO RecommendRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&reqDTO); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if reqDTO.Message == "" {
		writeError(w, http.StatusBadRequest, "message is required", "")
		return
	}

	// Anonymous requests are valid; a malformed user id is not.
	userID := uuid.Nil
	if reqDTO.UserID != "" {
		parsed, err := uuid.Parse(reqDTO.UserID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid userId", err.Error())
			return
		}
		userID = parsed
	}

	resp, err := h.engine.Recommend(ctx, engine.RecommendRequest{
		UserID:  userID,
		Message: reqDTO.Message,
	})
	if err != nil {
		h.logger.Error().Err(err).Msg("Recommendation failed")
		writeError(w, http.StatusInternalServerError, "recommendation failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorDTO struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

func writeError(w http.ResponseWriter, status int, msg, detail string) {
	writeJSON(w, status, errorDTO{Error: msg, Detail: detail})
}
