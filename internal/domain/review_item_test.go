package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNewReviewItem(t *testing.T) {
	userID := uuid.New()
	keywordID := uuid.New()

	item, err := NewReviewItem(userID, keywordID)

	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if item.UserID != userID {
		t.Errorf("Expected user ID %s, got %s", userID, item.UserID)
	}

	if item.KeywordID != keywordID {
		t.Errorf("Expected keyword ID %s, got %s", keywordID, item.KeywordID)
	}

	if item.IntervalDays != 0 {
		t.Errorf("Expected interval 0, got %d", item.IntervalDays)
	}

	if item.EaseFactor != 2.5 {
		t.Errorf("Expected ease factor 2.5, got %f", item.EaseFactor)
	}

	if item.ReviewCount != 0 {
		t.Errorf("Expected review count 0, got %d", item.ReviewCount)
	}

	now := time.Now().UTC()
	maxDiff := 2 * time.Second
	if item.NextReviewAt.Sub(now) > maxDiff || now.Sub(item.NextReviewAt) > maxDiff {
		t.Errorf("Expected NextReviewAt to be close to now, got %v", item.NextReviewAt)
	}

	// Test invalid userID
	_, err = NewReviewItem(uuid.Nil, keywordID)
	if err != ErrEmptyItemUserID {
		t.Errorf("Expected error %v, got %v", ErrEmptyItemUserID, err)
	}

	// Test invalid keywordID
	_, err = NewReviewItem(userID, uuid.Nil)
	if err != ErrEmptyItemKeywordID {
		t.Errorf("Expected error %v, got %v", ErrEmptyItemKeywordID, err)
	}
}

func TestReviewItemValidate(t *testing.T) {
	validItem := ReviewItem{
		UserID:       uuid.New(),
		KeywordID:    uuid.New(),
		IntervalDays: 6,
		EaseFactor:   2.5,
	}

	// Test valid item
	if err := validItem.Validate(); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}

	// Test ease factor exactly at the floor
	edgeItem := validItem
	edgeItem.EaseFactor = MinEaseFactor
	if err := edgeItem.Validate(); err != nil {
		t.Errorf("Expected no error at the ease floor, got %v", err)
	}

	// Test negative interval
	invalidItem := validItem
	invalidItem.IntervalDays = -1
	if err := invalidItem.Validate(); err != ErrNegativeInterval {
		t.Errorf("Expected error %v, got %v", ErrNegativeInterval, err)
	}

	// Test ease factor below the floor
	invalidItem = validItem
	invalidItem.EaseFactor = 1.2
	if err := invalidItem.Validate(); err != ErrEaseFactorTooLow {
		t.Errorf("Expected error %v, got %v", ErrEaseFactorTooLow, err)
	}
}
