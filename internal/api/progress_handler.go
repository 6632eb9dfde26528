package api

import (
	"log/slog"
	"net/http"

	"github.com/lexibird/lexibird-api/internal/api/shared"
	"github.com/lexibird/lexibird-api/internal/service/progress"
)

// ProgressHandler handles progress and ranking HTTP requests.
type ProgressHandler struct {
	progressService progress.ProgressService
	logger          *slog.Logger
}

// NewProgressHandler creates a new ProgressHandler.
func NewProgressHandler(
	progressService progress.ProgressService,
	logger *slog.Logger,
) *ProgressHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for ProgressHandler")
	}

	return &ProgressHandler{
		progressService: progressService,
		logger:          logger.With(slog.String("component", "progress_handler")),
	}
}

// GetOverview handles GET /progress requests.
func (h *ProgressHandler) GetOverview(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	overview, err := h.progressService.Overview(r.Context(), userID)
	if err != nil {
		RespondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, overview)
}

// CheckIntegrity handles GET /progress/integrity requests. Violations are
// logged server side; clients only see whether all checks passed.
func (h *ProgressHandler) CheckIntegrity(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	valid, err := h.progressService.ValidateIntegrity(r.Context(), userID)
	if err != nil {
		RespondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, IntegrityResponse{Valid: valid})
}

// GetRanking handles GET /rankings requests.
func (h *ProgressHandler) GetRanking(w http.ResponseWriter, r *http.Request) {
	if _, ok := getUserIDFromContext(r); !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	snapshot, err := h.progressService.Ranking(r.Context())
	if err != nil {
		RespondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, snapshot)
}
