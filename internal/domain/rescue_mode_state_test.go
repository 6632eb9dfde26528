package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNewRescueModeState(t *testing.T) {
	userID := uuid.New()

	state, err := NewRescueModeState(userID)

	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if state.UserID != userID {
		t.Errorf("Expected user ID %s, got %s", userID, state.UserID)
	}

	if state.IsActive {
		t.Error("Expected new state to be inactive")
	}

	if state.ConsecutiveFailures != 0 || state.TotalAttempts != 0 {
		t.Errorf("Expected zero counters, got failures=%d attempts=%d",
			state.ConsecutiveFailures, state.TotalAttempts)
	}

	if state.TriggeredAt != nil {
		t.Errorf("Expected nil TriggeredAt, got %v", state.TriggeredAt)
	}

	// Test invalid userID
	_, err = NewRescueModeState(uuid.Nil)
	if err != ErrEmptyRescueUserID {
		t.Errorf("Expected error %v, got %v", ErrEmptyRescueUserID, err)
	}
}

func TestRescueModeStateValidate(t *testing.T) {
	now := time.Now().UTC()
	validState := RescueModeState{
		UserID:              uuid.New(),
		IsActive:            true,
		ConsecutiveFailures: 3,
		TotalAttempts:       5,
		TriggeredAt:         &now,
		LearningPhase:       LearningPhasePronunciation,
	}

	// Test valid state
	if err := validState.Validate(); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}

	// Test negative counters
	invalidState := validState
	invalidState.ConsecutiveFailures = -1
	if err := invalidState.Validate(); err != ErrNegativeAttemptCount {
		t.Errorf("Expected error %v, got %v", ErrNegativeAttemptCount, err)
	}

	// Test active state without trigger time
	invalidState = validState
	invalidState.TriggeredAt = nil
	if err := invalidState.Validate(); err == nil {
		t.Error("Expected error for active state without TriggeredAt, got nil")
	}

	// Test invalid phase
	invalidState = validState
	invalidState.LearningPhase = "listening"
	if err := invalidState.Validate(); err != ErrInvalidLearningPhase {
		t.Errorf("Expected error %v, got %v", ErrInvalidLearningPhase, err)
	}
}

func TestRescueModeActivateDeactivate(t *testing.T) {
	state, _ := NewRescueModeState(uuid.New())
	now := time.Now().UTC()

	if err := state.Activate("keep going", now); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if !state.IsActive {
		t.Error("Expected state to be active")
	}
	if state.TriggeredAt == nil || !state.TriggeredAt.Equal(now) {
		t.Errorf("Expected TriggeredAt %v, got %v", now, state.TriggeredAt)
	}
	if state.SupportiveMessage != "keep going" {
		t.Errorf("Expected supportive message to be set, got %q", state.SupportiveMessage)
	}

	// Re-activating must not reset the trigger time
	if err := state.Activate("again", now.Add(time.Minute)); err != ErrRescueAlreadyActive {
		t.Errorf("Expected error %v, got %v", ErrRescueAlreadyActive, err)
	}
	if !state.TriggeredAt.Equal(now) {
		t.Errorf("Expected TriggeredAt to stay %v, got %v", now, state.TriggeredAt)
	}

	// Elapsed time is measured from the trigger
	later := now.Add(90 * time.Second)
	if d := state.TimeInRescue(later); d != 90*time.Second {
		t.Errorf("Expected 90s in rescue, got %v", d)
	}

	if err := state.Deactivate(later); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if state.IsActive {
		t.Error("Expected state to be inactive")
	}
	if state.TriggeredAt != nil {
		t.Errorf("Expected TriggeredAt to be cleared, got %v", state.TriggeredAt)
	}
	if state.SupportiveMessage != "" {
		t.Errorf("Expected supportive message to be cleared, got %q", state.SupportiveMessage)
	}
	if d := state.TimeInRescue(later); d != 0 {
		t.Errorf("Expected zero time in rescue while inactive, got %v", d)
	}

	// Deactivating an inactive state is rejected
	if err := state.Deactivate(later); err != ErrRescueNotActive {
		t.Errorf("Expected error %v, got %v", ErrRescueNotActive, err)
	}
}

// Test Clone detaches the trigger timestamp from the original
func TestRescueModeStateClone(t *testing.T) {
	state, err := NewRescueModeState(uuid.New())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	now := time.Now().UTC()
	if err := state.Activate("keep going", now); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	clone := state.Clone()
	*clone.TriggeredAt = clone.TriggeredAt.Add(time.Hour)
	clone.ConsecutiveFailures = 42

	if !state.TriggeredAt.Equal(now) {
		t.Errorf("Expected original TriggeredAt to stay %v, got %v", now, state.TriggeredAt)
	}
	if state.ConsecutiveFailures == 42 {
		t.Error("Expected original counters to be unaffected by clone mutation")
	}
}
