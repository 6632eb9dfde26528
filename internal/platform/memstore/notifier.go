package memstore

import (
	"sync"

	"github.com/google/uuid"
)

// Collection names a persisted group of records. The write-behind persister
// snapshots collections per user; global collections use uuid.Nil as the
// user key.
type Collection string

// Persisted collections.
const (
	CollectionUsers    Collection = "users"
	CollectionKeywords Collection = "keywords"
	CollectionStates   Collection = "keyword_srs_states"
	CollectionItems    Collection = "review_items"
	CollectionSessions Collection = "review_sessions"
	CollectionRescue   Collection = "rescue_states"
	CollectionEvents   Collection = "events"
)

// Notifier receives a mark whenever a user's collection mutates so a
// write-behind persister can snapshot it later. Implementations must not
// block: marks arrive on the request path.
type Notifier interface {
	MarkDirty(collection Collection, userID uuid.UUID)
}

// NopNotifier discards all marks. Used in tests and for stores wired
// without persistence.
type NopNotifier struct{}

// MarkDirty implements Notifier.
func (NopNotifier) MarkDirty(Collection, uuid.UUID) {}

// NotifierBinding is a Notifier whose destination is bound after
// construction. Stores take their notifier up front while the persister
// that receives the marks reads back out of those same stores, so one
// side has to be wired late. Marks that arrive before Bind are dropped;
// only startup hydration runs in that window, and hydration never marks.
type NotifierBinding struct {
	mu     sync.RWMutex
	target Notifier
}

var _ Notifier = (*NotifierBinding)(nil)

// Bind sets the destination for all subsequent marks.
func (b *NotifierBinding) Bind(target Notifier) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.target = target
}

// MarkDirty implements Notifier.
func (b *NotifierBinding) MarkDirty(collection Collection, userID uuid.UUID) {
	b.mu.RLock()
	target := b.target
	b.mu.RUnlock()

	if target != nil {
		target.MarkDirty(collection, userID)
	}
}
