package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for User
var (
	ErrEmptyUserID     = errors.New("user ID cannot be empty")
	ErrEmptyDeviceID   = errors.New("device ID cannot be empty")
	ErrDeviceIDTooLong = errors.New("device ID must be at most 128 characters")
	ErrInvalidDeviceID = errors.New("device ID contains invalid characters")
)

// User represents one registered device of the learning app. Devices register
// once with an opaque installation identifier and receive a bearer token; all
// SRS, session, and rescue state is scoped by the user ID.
type User struct {
	ID        uuid.UUID `json:"id"`
	DeviceID  string    `json:"device_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewUser creates a new User for the given device identifier.
// It generates a new UUID for the user ID and sets the timestamps.
// Returns an error if validation fails.
func NewUser(deviceID string) (*User, error) {
	now := time.Now().UTC()
	user := &User{
		ID:        uuid.New(),
		DeviceID:  deviceID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// Validate checks if the User has valid data.
// Returns an error if any field fails validation.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return ErrEmptyUserID
	}

	if u.DeviceID == "" {
		return ErrEmptyDeviceID
	}

	if len(u.DeviceID) > 128 {
		return ErrDeviceIDTooLong
	}

	if strings.ContainsAny(u.DeviceID, " \t\n\r") {
		return ErrInvalidDeviceID
	}

	return nil
}
