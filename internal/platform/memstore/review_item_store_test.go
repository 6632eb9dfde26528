package memstore

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexibird/lexibird-api/internal/domain"
	"github.com/lexibird/lexibird-api/internal/store"
)

func newTestReviewItem(t *testing.T, userID, keywordID uuid.UUID) *domain.ReviewItem {
	t.Helper()
	item, err := domain.NewReviewItem(userID, keywordID)
	require.NoError(t, err)
	return item
}

func TestMemoryReviewItemStore(t *testing.T) {
	ctx := context.Background()

	t.Run("save and get", func(t *testing.T) {
		s := NewMemoryReviewItemStore(nil, newTestLogger())
		item := newTestReviewItem(t, uuid.New(), uuid.New())
		item.IntervalDays = 6
		item.EaseFactor = 2.36
		item.ReviewCount = 2

		require.NoError(t, s.Save(ctx, item))

		fetched, err := s.Get(ctx, item.UserID, item.KeywordID)
		require.NoError(t, err)
		assert.Equal(t, 6, fetched.IntervalDays)
		assert.InDelta(t, 2.36, fetched.EaseFactor, 1e-9)
		assert.Equal(t, 2, fetched.ReviewCount)
	})

	t.Run("unknown item returns not found", func(t *testing.T) {
		s := NewMemoryReviewItemStore(nil, newTestLogger())

		_, err := s.Get(ctx, uuid.New(), uuid.New())
		assert.ErrorIs(t, err, store.ErrReviewItemNotFound)
		assert.True(t, store.IsNotFoundError(err))
	})

	t.Run("returned item is a copy", func(t *testing.T) {
		s := NewMemoryReviewItemStore(nil, newTestLogger())
		item := newTestReviewItem(t, uuid.New(), uuid.New())
		require.NoError(t, s.Save(ctx, item))

		fetched, err := s.Get(ctx, item.UserID, item.KeywordID)
		require.NoError(t, err)
		fetched.ReviewCount = 99

		again, err := s.Get(ctx, item.UserID, item.KeywordID)
		require.NoError(t, err)
		assert.Equal(t, 0, again.ReviewCount)
	})

	t.Run("save rejects ease factor below the floor", func(t *testing.T) {
		s := NewMemoryReviewItemStore(nil, newTestLogger())
		item := newTestReviewItem(t, uuid.New(), uuid.New())
		item.EaseFactor = 1.2

		err := s.Save(ctx, item)
		assert.ErrorIs(t, err, domain.ErrEaseFactorTooLow)
	})

	t.Run("list by user returns only that user's items sorted", func(t *testing.T) {
		s := NewMemoryReviewItemStore(nil, newTestLogger())
		userID := uuid.New()
		for i := 0; i < 3; i++ {
			require.NoError(t, s.Save(ctx, newTestReviewItem(t, userID, uuid.New())))
		}
		require.NoError(t, s.Save(ctx, newTestReviewItem(t, uuid.New(), uuid.New())))

		items, err := s.ListByUser(ctx, userID)
		require.NoError(t, err)
		require.Len(t, items, 3)
		for i, item := range items {
			assert.Equal(t, userID, item.UserID)
			if i > 0 {
				assert.Less(t, items[i-1].KeywordID.String(), item.KeywordID.String())
			}
		}
	})

	t.Run("save marks items dirty for the owning user", func(t *testing.T) {
		notifier := &recordingNotifier{}
		s := NewMemoryReviewItemStore(notifier, newTestLogger())
		item := newTestReviewItem(t, uuid.New(), uuid.New())

		require.NoError(t, s.Save(ctx, item))

		marks := notifier.all()
		require.Len(t, marks, 1)
		assert.Equal(t, CollectionItems, marks[0].collection)
		assert.Equal(t, item.UserID, marks[0].userID)
	})

	t.Run("hydrate replaces contents without marks", func(t *testing.T) {
		notifier := &recordingNotifier{}
		s := NewMemoryReviewItemStore(notifier, newTestLogger())
		stale := newTestReviewItem(t, uuid.New(), uuid.New())
		require.NoError(t, s.Save(ctx, stale))
		notifier.reset()

		loaded := newTestReviewItem(t, uuid.New(), uuid.New())
		s.Hydrate([]*domain.ReviewItem{loaded})

		_, err := s.Get(ctx, stale.UserID, stale.KeywordID)
		assert.ErrorIs(t, err, store.ErrReviewItemNotFound)

		found, err := s.Get(ctx, loaded.UserID, loaded.KeywordID)
		require.NoError(t, err)
		assert.Equal(t, loaded.KeywordID, found.KeywordID)
		assert.Empty(t, notifier.all())
	})
}
