package api

import (
	"github.com/google/uuid"
)

// Common request/response structures

// RegisterRequest defines the payload for the device registration endpoint.
// Registration is idempotent: a device ID that is already registered gets
// its existing user back with a fresh token.
type RegisterRequest struct {
	DeviceID string `json:"device_id" validate:"required,min=8,max=128"`
}

// AuthResponse defines the successful response for authentication endpoints.
type AuthResponse struct {
	// UserID is the unique identifier for the authenticated user
	UserID uuid.UUID `json:"user_id"`

	// Token is the JWT bearer token used for API authorization
	Token string `json:"token"`

	// ExpiresAt is the ISO 8601 timestamp when the token expires
	ExpiresAt string `json:"expires_at,omitempty"`
}

// CreateKeywordRequest defines the payload for adding a keyword to the catalog.
type CreateKeywordRequest struct {
	Topic    string `json:"topic" validate:"required,max=100"`
	Word     string `json:"word" validate:"required,max=100"`
	ImageURL string `json:"image_url" validate:"required,url"`
	AudioURL string `json:"audio_url" validate:"required,url"`
}

// RecordAttemptRequest defines the payload for a standalone keyword attempt.
type RecordAttemptRequest struct {
	Result string `json:"result" validate:"required,oneof=correct incorrect partial"`
}

// CreateSessionRequest defines the payload for creating a review session.
// When KeywordIDs is empty the session is assembled from the due queue.
type CreateSessionRequest struct {
	KeywordIDs []uuid.UUID `json:"keyword_ids,omitempty"`
}

// SubmitAnswerRequest defines the payload for answering one session item.
type SubmitAnswerRequest struct {
	ItemIndex      int    `json:"item_index" validate:"gte=0"`
	Selection      string `json:"selection" validate:"required"`
	SelfAssessment string `json:"self_assessment" validate:"required,oneof=instantly_got_it had_to_think forgot"`
	ResponseTimeMs int    `json:"response_time_ms" validate:"gte=0"`
}

// RecordFailureRequest defines the payload for a failed pronunciation attempt.
type RecordFailureRequest struct {
	KeywordID     uuid.UUID `json:"keyword_id" validate:"required"`
	SessionID     uuid.UUID `json:"session_id" validate:"required"`
	Score         int       `json:"score" validate:"gte=0,lte=100"`
	LearningPhase string    `json:"learning_phase" validate:"required,oneof=pronunciation_training context_guessing"`
}

// RecordImprovementRequest defines the payload for a passed pronunciation attempt.
type RecordImprovementRequest struct {
	Score            int  `json:"score" validate:"gte=0,lte=100"`
	PassedWithRescue bool `json:"passed_with_rescue"`
}

// ApplyScoreRequest defines the payload for applying the rescue score bonus.
type ApplyScoreRequest struct {
	RawScore int `json:"raw_score" validate:"gte=0,lte=100"`
}

// ScoreResponse carries a pronunciation score after bonus adjustment.
type ScoreResponse struct {
	Score int `json:"score"`
}

// ThresholdResponse carries the pass bar currently in effect for the user.
type ThresholdResponse struct {
	PassThreshold int `json:"pass_threshold"`
}

// IntegrityResponse reports whether the user's stored records are consistent.
type IntegrityResponse struct {
	Valid bool `json:"valid"`
}

// HealthResponse is the liveness probe body.
type HealthResponse struct {
	Status string `json:"status"`
}
