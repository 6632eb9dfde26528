package memstore

import (
	"sync"

	"github.com/google/uuid"
)

// UserLocks serializes user-scoped operations across all in-memory stores.
// Counters in the SRS, session, and rescue records are read-modify-write,
// so every service operation that mutates a user's state holds that user's
// mutex for its whole span. Different users proceed in parallel.
type UserLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

// NewUserLocks creates an empty lock registry.
func NewUserLocks() *UserLocks {
	return &UserLocks{
		locks: make(map[uuid.UUID]*sync.Mutex),
	}
}

// Lock acquires the mutex for the given user, creating it on first use,
// and returns the function that releases it.
func (l *UserLocks) Lock(userID uuid.UUID) func() {
	l.mu.Lock()
	m, ok := l.locks[userID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[userID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
