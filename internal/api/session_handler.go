package api

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/lexibird/lexibird-api/internal/api/shared"
	"github.com/lexibird/lexibird-api/internal/domain"
	"github.com/lexibird/lexibird-api/internal/platform/logger"
	"github.com/lexibird/lexibird-api/internal/service/review"
)

// SessionHandler handles review session HTTP requests.
type SessionHandler struct {
	reviewService review.ReviewService
	validator     *validator.Validate
	logger        *slog.Logger
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(
	reviewService review.ReviewService,
	logger *slog.Logger,
) *SessionHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for SessionHandler")
	}

	return &SessionHandler{
		reviewService: reviewService,
		validator:     validator.New(),
		logger:        logger.With(slog.String("component", "session_handler")),
	}
}

// CreateSession handles POST /sessions requests. Without explicit keyword
// IDs the session is assembled from the user's due queue; an empty due
// queue is a 422, not a server failure.
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	// The body is optional; an absent body means "build from the due queue"
	var req CreateSessionRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := shared.DecodeJSON(r, &req); err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
			return
		}
	}

	var (
		session *domain.ReviewSession
		err     error
	)
	if len(req.KeywordIDs) > 0 {
		session, err = h.reviewService.CreateFromKeywords(r.Context(), userID, req.KeywordIDs)
	} else {
		session, err = h.reviewService.Create(r.Context(), userID)
	}
	if err != nil {
		RespondWithServiceError(w, r, err)
		return
	}

	log.Debug("session created",
		slog.String("user_id", userID.String()),
		slog.String("session_id", session.ID.String()),
		slog.Int("item_count", len(session.Items)))
	shared.RespondWithJSON(w, r, http.StatusCreated, session)
}

// GetSession handles GET /sessions/{sessionID} requests.
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	userID, sessionID, ok := requireUserAndPathUUID(w, r, "sessionID")
	if !ok {
		return
	}

	session, err := h.reviewService.Get(r.Context(), userID, sessionID)
	if err != nil {
		RespondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, session)
}

// SubmitAnswer handles POST /sessions/{sessionID}/answers requests.
// Answers against unknown sessions are dropped with 204; answers against
// completed sessions or out-of-range items return the session unchanged.
func (h *SessionHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	userID, sessionID, ok := requireUserAndPathUUID(w, r, "sessionID")
	if !ok {
		return
	}

	var req SubmitAnswerRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	session, err := h.reviewService.SubmitAnswer(r.Context(), userID, sessionID, review.ReviewAnswer{
		ItemIndex:      req.ItemIndex,
		Selection:      req.Selection,
		SelfAssessment: domain.SelfAssessment(req.SelfAssessment),
		ResponseTimeMs: req.ResponseTimeMs,
	})
	if err != nil {
		RespondWithServiceError(w, r, err)
		return
	}
	if session == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, session)
}

// CompleteSession handles POST /sessions/{sessionID}/complete requests.
func (h *SessionHandler) CompleteSession(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, sessionID, ok := requireUserAndPathUUID(w, r, "sessionID")
	if !ok {
		return
	}

	summary, err := h.reviewService.Complete(r.Context(), userID, sessionID)
	if err != nil {
		RespondWithServiceError(w, r, err)
		return
	}
	if summary == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	log.Debug("session completed",
		slog.String("user_id", userID.String()),
		slog.String("session_id", sessionID.String()),
		slog.Float64("accuracy", summary.Accuracy))
	shared.RespondWithJSON(w, r, http.StatusOK, summary)
}
