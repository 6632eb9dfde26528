package api

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/lexibird/lexibird-api/internal/api/shared"
	"github.com/lexibird/lexibird-api/internal/domain"
	"github.com/lexibird/lexibird-api/internal/platform/logger"
	"github.com/lexibird/lexibird-api/internal/service/rescue"
)

// RescueHandler handles rescue mode HTTP requests.
type RescueHandler struct {
	rescueService rescue.RescueService
	validator     *validator.Validate
	logger        *slog.Logger
}

// NewRescueHandler creates a new RescueHandler.
func NewRescueHandler(
	rescueService rescue.RescueService,
	logger *slog.Logger,
) *RescueHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for RescueHandler")
	}

	return &RescueHandler{
		rescueService: rescueService,
		validator:     validator.New(),
		logger:        logger.With(slog.String("component", "rescue_handler")),
	}
}

// GetState handles GET /rescue requests.
func (h *RescueHandler) GetState(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	state, err := h.rescueService.State(r.Context(), userID)
	if err != nil {
		RespondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, state)
}

// GetThreshold handles GET /rescue/threshold requests. Clients read the
// pass bar here instead of hardcoding it, so rescue mode can lower it.
func (h *RescueHandler) GetThreshold(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	threshold, err := h.rescueService.CurrentPassThreshold(r.Context(), userID)
	if err != nil {
		RespondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ThresholdResponse{PassThreshold: threshold})
}

// ApplyScore handles POST /rescue/score requests, returning the score after
// the rescue bonus.
func (h *RescueHandler) ApplyScore(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	var req ApplyScoreRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	score, err := h.rescueService.ApplyScoreBonus(r.Context(), userID, req.RawScore)
	if err != nil {
		RespondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ScoreResponse{Score: score})
}

// RecordFailure handles POST /rescue/failures requests.
func (h *RescueHandler) RecordFailure(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	var req RecordFailureRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	state, err := h.rescueService.RecordFailure(
		r.Context(), userID, req.KeywordID, req.SessionID,
		req.Score, domain.LearningPhase(req.LearningPhase),
	)
	if err != nil {
		RespondWithServiceError(w, r, err)
		return
	}
	if state == nil {
		// Non-counting phases with no prior state produce nothing to report
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if state.IsActive {
		log.Debug("rescue state after failure",
			slog.String("user_id", userID.String()),
			slog.Int("consecutive_failures", state.ConsecutiveFailures))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, state)
}

// RecordImprovement handles POST /rescue/improvements requests.
func (h *RescueHandler) RecordImprovement(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	var req RecordImprovementRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	state, err := h.rescueService.RecordImprovement(r.Context(), userID, req.Score, req.PassedWithRescue)
	if err != nil {
		RespondWithServiceError(w, r, err)
		return
	}
	if state == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, state)
}

// Exit handles POST /rescue/exit requests.
func (h *RescueHandler) Exit(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	state, err := h.rescueService.Exit(r.Context(), userID)
	if err != nil {
		RespondWithServiceError(w, r, err)
		return
	}
	if state == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, state)
}

// GetStats handles GET /rescue/stats requests.
func (h *RescueHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	stats, err := h.rescueService.Stats(r.Context(), userID)
	if err != nil {
		RespondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, stats)
}
