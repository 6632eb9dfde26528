package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/lexibird/lexibird-api/internal/api/shared"
	"github.com/lexibird/lexibird-api/internal/domain"
	"github.com/lexibird/lexibird-api/internal/service/auth"
	"github.com/lexibird/lexibird-api/internal/store"
)

// AuthHandler handles device registration and token issuance.
type AuthHandler struct {
	userStore   store.UserStore
	jwtService  auth.JWTService
	tokenExpiry time.Duration
	validator   *validator.Validate
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(
	userStore store.UserStore,
	jwtService auth.JWTService,
	tokenExpiry time.Duration,
) *AuthHandler {
	return &AuthHandler{
		userStore:   userStore,
		jwtService:  jwtService,
		tokenExpiry: tokenExpiry,
		validator:   validator.New(),
	}
}

// Register handles the /auth/register endpoint. Registration is keyed by the
// opaque device installation ID: a new device gets a fresh user, a known
// device gets its existing user back. Both receive a bearer token.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest

	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	user, err := h.userStore.GetByDeviceID(r.Context(), req.DeviceID)
	switch {
	case err == nil:
		h.respondWithToken(w, r, user, http.StatusOK)
		return
	case !errors.Is(err, store.ErrUserNotFound):
		slog.Error("failed to look up device", "error", err)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to register device")
		return
	}

	user, err = domain.NewUser(req.DeviceID)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid device ID: "+err.Error())
		return
	}

	if err := h.userStore.Create(r.Context(), user); err != nil {
		if errors.Is(err, store.ErrDeviceExists) {
			// Two concurrent registrations raced; the device now exists,
			// so hand back the user the winner created.
			user, err = h.userStore.GetByDeviceID(r.Context(), req.DeviceID)
			if err != nil {
				slog.Error("failed to resolve device registration race", "error", err)
				shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to register device")
				return
			}
			h.respondWithToken(w, r, user, http.StatusOK)
			return
		}
		slog.Error("failed to create user", "error", err)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to register device")
		return
	}

	h.respondWithToken(w, r, user, http.StatusCreated)
}

func (h *AuthHandler) respondWithToken(w http.ResponseWriter, r *http.Request, user *domain.User, status int) {
	token, err := h.jwtService.GenerateToken(r.Context(), user.ID)
	if err != nil {
		slog.Error("failed to generate token", "error", err, "user_id", user.ID)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to generate authentication token")
		return
	}

	shared.RespondWithJSON(w, r, status, AuthResponse{
		UserID:    user.ID,
		Token:     token,
		ExpiresAt: time.Now().UTC().Add(h.tokenExpiry).Format(time.RFC3339),
	})
}
