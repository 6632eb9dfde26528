package api

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/lexibird/lexibird-api/internal/api/shared"
	"github.com/lexibird/lexibird-api/internal/domain"
	"github.com/lexibird/lexibird-api/internal/platform/logger"
	"github.com/lexibird/lexibird-api/internal/service/progress"
)

// KeywordHandler handles keyword catalog and standalone attempt requests.
type KeywordHandler struct {
	progressService progress.ProgressService
	validator       *validator.Validate
	logger          *slog.Logger
}

// NewKeywordHandler creates a new KeywordHandler.
func NewKeywordHandler(
	progressService progress.ProgressService,
	logger *slog.Logger,
) *KeywordHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for KeywordHandler")
	}

	return &KeywordHandler{
		progressService: progressService,
		validator:       validator.New(),
		logger:          logger.With(slog.String("component", "keyword_handler")),
	}
}

// CreateKeyword handles POST /keywords requests. This is the content sync
// surface: the publishing pipeline pushes new catalog entries through it.
func (h *KeywordHandler) CreateKeyword(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req CreateKeywordRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	keyword, err := h.progressService.AddKeyword(r.Context(), req.Topic, req.Word, req.ImageURL, req.AudioURL)
	if err != nil {
		RespondWithServiceError(w, r, err)
		return
	}

	log.Debug("keyword created",
		slog.String("keyword_id", keyword.ID.String()),
		slog.String("topic", keyword.Topic))
	shared.RespondWithJSON(w, r, http.StatusCreated, keyword)
}

// EnrollKeyword handles POST /keywords/{keywordID}/enroll requests. It puts
// the keyword into the user's tracked set in the not_started status.
func (h *KeywordHandler) EnrollKeyword(w http.ResponseWriter, r *http.Request) {
	userID, keywordID, ok := requireUserAndPathUUID(w, r, "keywordID")
	if !ok {
		return
	}

	state, err := h.progressService.EnrollKeyword(r.Context(), userID, keywordID)
	if err != nil {
		RespondWithServiceError(w, r, err)
		return
	}
	if state == nil {
		// Enrollment against an unknown keyword is dropped, not failed
		w.WriteHeader(http.StatusNoContent)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, state)
}

// DueKeywords handles GET /keywords/due requests. The list is ordered by
// next review time, most overdue first.
func (h *KeywordHandler) DueKeywords(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	due, err := h.progressService.DueKeywords(r.Context(), userID)
	if err != nil {
		RespondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, due)
}

// RecordAttempt handles POST /keywords/{keywordID}/attempts requests, the
// standalone practice surface outside review sessions.
func (h *KeywordHandler) RecordAttempt(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, keywordID, ok := requireUserAndPathUUID(w, r, "keywordID")
	if !ok {
		return
	}

	var req RecordAttemptRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	state, err := h.progressService.RecordAttempt(r.Context(), userID, keywordID, domain.ReviewResult(req.Result))
	if err != nil {
		RespondWithServiceError(w, r, err)
		return
	}
	if state == nil {
		// Attempts against unknown keywords are dropped, not failed
		w.WriteHeader(http.StatusNoContent)
		return
	}

	log.Debug("attempt recorded",
		slog.String("user_id", userID.String()),
		slog.String("keyword_id", keywordID.String()),
		slog.Int("level", state.Level))
	shared.RespondWithJSON(w, r, http.StatusOK, state)
}
