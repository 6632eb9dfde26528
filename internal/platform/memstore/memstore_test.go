package memstore

import (
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/lexibird/lexibird-api/internal/domain"
)

// newTestLogger returns a logger that discards output.
func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mark is one recorded MarkDirty call.
type mark struct {
	collection Collection
	userID     uuid.UUID
}

// recordingNotifier captures dirty marks for assertions.
type recordingNotifier struct {
	mu    sync.Mutex
	marks []mark
}

func (n *recordingNotifier) MarkDirty(collection Collection, userID uuid.UUID) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.marks = append(n.marks, mark{collection: collection, userID: userID})
}

func (n *recordingNotifier) all() []mark {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]mark, len(n.marks))
	copy(out, n.marks)
	return out
}

func (n *recordingNotifier) reset() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.marks = nil
}

func newTestUser(t *testing.T, deviceID string) *domain.User {
	t.Helper()
	user, err := domain.NewUser(deviceID)
	require.NoError(t, err)
	return user
}

func newTestKeyword(t *testing.T, topic, word string) *domain.Keyword {
	t.Helper()
	keyword, err := domain.NewKeyword(topic, word,
		"https://img.example/"+word+".png",
		"https://audio.example/"+word+".mp3")
	require.NoError(t, err)
	return keyword
}

// newLearningState builds a state already past not_started and due at next.
func newLearningState(t *testing.T, userID, keywordID uuid.UUID, next time.Time) *domain.KeywordSRSState {
	t.Helper()
	state, err := domain.NewKeywordSRSState(userID, keywordID)
	require.NoError(t, err)
	state.Status = domain.KeywordStatusLearning
	state.NextReviewAt = next
	return state
}

func newTestSession(t *testing.T, userID uuid.UUID, itemCount int) *domain.ReviewSession {
	t.Helper()
	items := make([]domain.SessionItem, 0, itemCount)
	for i := 0; i < itemCount; i++ {
		correct := "https://img.example/correct.png"
		items = append(items, domain.SessionItem{
			KeywordID:       uuid.New(),
			Word:            "word",
			CorrectImageURL: correct,
			AudioURL:        "https://audio.example/word.mp3",
			Options:         []string{correct, "https://img.example/a.png", "https://img.example/b.png"},
		})
	}
	session, err := domain.NewReviewSession(userID, items)
	require.NoError(t, err)
	return session
}
