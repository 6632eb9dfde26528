package persist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lexibird/lexibird-api/internal/domain"
	"github.com/lexibird/lexibird-api/internal/events"
	"github.com/lexibird/lexibird-api/internal/platform/logger"
	"github.com/lexibird/lexibird-api/internal/platform/memstore"
	"github.com/lexibird/lexibird-api/internal/store"
)

// DefaultDebounce is the flush delay used when no debounce is configured.
const DefaultDebounce = 3 * time.Second

// Snapshotter is the durable side of the write-behind pipeline. Replace
// methods swap a user's rows (or the global keyword catalog) atomically;
// SaveUsers and AppendEvents are insert-if-absent since both collections
// are append-only.
type Snapshotter interface {
	SaveUsers(ctx context.Context, users []*domain.User) error
	ReplaceKeywords(ctx context.Context, keywords []*domain.Keyword) error
	ReplaceStates(ctx context.Context, userID uuid.UUID, states []*domain.KeywordSRSState) error
	ReplaceItems(ctx context.Context, userID uuid.UUID, items []*domain.ReviewItem) error
	ReplaceSessions(ctx context.Context, userID uuid.UUID, sessions []*domain.ReviewSession) error
	ReplaceRescueState(ctx context.Context, state *domain.RescueModeState) error
	AppendEvents(ctx context.Context, evts []events.Event) error
}

// UserSource reads single users for snapshotting.
type UserSource interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

// KeywordSource reads the keyword catalog for snapshotting.
type KeywordSource interface {
	ListAll(ctx context.Context) ([]*domain.Keyword, error)
}

// StateSource reads one user's SRS states for snapshotting.
type StateSource interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.KeywordSRSState, error)
}

// ItemSource reads one user's review items for snapshotting.
type ItemSource interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.ReviewItem, error)
}

// SessionSource reads one user's review sessions for snapshotting.
type SessionSource interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.ReviewSession, error)
}

// RescueSource reads one user's rescue state for snapshotting.
type RescueSource interface {
	Get(ctx context.Context, userID uuid.UUID) (*domain.RescueModeState, error)
}

// EventSource reads one user's event log for snapshotting.
type EventSource interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]events.Event, error)
}

// Sources bundles the read surfaces the Persister snapshots from. Each
// field is satisfied by the corresponding memstore type.
type Sources struct {
	Users    UserSource
	Keywords KeywordSource
	States   StateSource
	Items    ItemSource
	Sessions SessionSource
	Rescue   RescueSource
	Events   EventSource
}

// flushOrder fixes the sequence collections are written in. Users go
// first so a user row lands before the collections that reference it.
var flushOrder = []memstore.Collection{
	memstore.CollectionUsers,
	memstore.CollectionKeywords,
	memstore.CollectionStates,
	memstore.CollectionItems,
	memstore.CollectionSessions,
	memstore.CollectionRescue,
	memstore.CollectionEvents,
}

// Persister is the write-behind bridge between the memory stores and the
// snapshot store. It implements memstore.Notifier: MarkDirty records which
// (collection, user) pairs changed and arms a debounce timer; every mark
// that arrives before the timer fires joins the same flush. Flush can also
// be called directly, which the autosave job and shutdown path do.
//
// A pair whose snapshot write fails stays dirty and is retried on the next
// flush, so a transient database outage delays persistence rather than
// losing it.
type Persister struct {
	snap     Snapshotter
	sources  Sources
	debounce time.Duration
	logger   *slog.Logger

	mu    sync.Mutex
	dirty map[memstore.Collection]map[uuid.UUID]struct{}

	// flushMu serializes Flush calls from the loop, the autosave job,
	// and shutdown.
	flushMu sync.Mutex

	wake      chan struct{}
	done      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once
}

var _ memstore.Notifier = (*Persister)(nil)

// NewPersister creates a Persister and starts its debounce loop. A
// non-positive debounce falls back to DefaultDebounce. If logger is nil,
// a default logger will be used. Call Close to stop the loop and flush
// whatever is still dirty.
func NewPersister(snap Snapshotter, sources Sources, debounce time.Duration, logger *slog.Logger) *Persister {
	if snap == nil {
		panic("snapshotter cannot be nil")
	}

	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	if logger == nil {
		logger = slog.Default()
	}

	p := &Persister{
		snap:     snap,
		sources:  sources,
		debounce: debounce,
		logger:   logger.With(slog.String("component", "persister")),
		dirty:    make(map[memstore.Collection]map[uuid.UUID]struct{}),
		wake:     make(chan struct{}, 1),
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
	go p.loop()
	return p
}

// MarkDirty implements memstore.Notifier. It never blocks: stores call it
// on the request path.
func (p *Persister) MarkDirty(collection memstore.Collection, userID uuid.UUID) {
	p.remark(collection, userID)

	select {
	case p.wake <- struct{}{}:
	default:
	}
}

// remark records a dirty pair without arming the debounce timer. Failed
// flushes use it so retries wait for the next flush instead of spinning.
func (p *Persister) remark(collection memstore.Collection, userID uuid.UUID) {
	p.mu.Lock()
	defer p.mu.Unlock()

	users, ok := p.dirty[collection]
	if !ok {
		users = make(map[uuid.UUID]struct{})
		p.dirty[collection] = users
	}
	users[userID] = struct{}{}
}

// takeDirty swaps out the current dirty set, leaving an empty one behind.
func (p *Persister) takeDirty() map[memstore.Collection]map[uuid.UUID]struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()

	marks := p.dirty
	p.dirty = make(map[memstore.Collection]map[uuid.UUID]struct{})
	return marks
}

func (p *Persister) loop() {
	defer close(p.stopped)

	timer := time.NewTimer(p.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	armed := false

	for {
		select {
		case <-p.wake:
			if !armed {
				timer.Reset(p.debounce)
				armed = true
			}
		case <-timer.C:
			armed = false
			if err := p.Flush(context.Background()); err != nil {
				p.logger.Error("background flush failed",
					slog.String("error", err.Error()))
			}
		case <-p.done:
			if armed && !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			return
		}
	}
}

// Flush synchronously writes every dirty (collection, user) pair to the
// snapshot store. Pairs that fail are re-marked and included in the
// returned error; the rest of the flush proceeds.
func (p *Persister) Flush(ctx context.Context) error {
	p.flushMu.Lock()
	defer p.flushMu.Unlock()

	marks := p.takeDirty()
	if len(marks) == 0 {
		return nil
	}

	log := logger.FromContextOrDefault(ctx, p.logger)

	var errs []error
	for _, collection := range flushOrder {
		for userID := range marks[collection] {
			if err := p.flushOne(ctx, collection, userID); err != nil {
				p.remark(collection, userID)
				log.Error("failed to flush collection",
					slog.String("collection", string(collection)),
					slog.String("user_id", userID.String()),
					slog.String("error", err.Error()))
				errs = append(errs, fmt.Errorf("%s: %w", collection, err))
			}
		}
	}

	if len(errs) == 0 {
		log.Debug("flush completed", slog.Int("collections", len(marks)))
	}
	return errors.Join(errs...)
}

// flushOne snapshots a single (collection, user) pair. A pair whose source
// record has vanished is treated as flushed; the memory stores never
// delete users or rescue states, so that only happens in tests.
func (p *Persister) flushOne(ctx context.Context, collection memstore.Collection, userID uuid.UUID) error {
	switch collection {
	case memstore.CollectionUsers:
		user, err := p.sources.Users.GetByID(ctx, userID)
		if err != nil {
			if store.IsNotFoundError(err) {
				return nil
			}
			return err
		}
		return p.snap.SaveUsers(ctx, []*domain.User{user})

	case memstore.CollectionKeywords:
		keywords, err := p.sources.Keywords.ListAll(ctx)
		if err != nil {
			return err
		}
		return p.snap.ReplaceKeywords(ctx, keywords)

	case memstore.CollectionStates:
		states, err := p.sources.States.ListByUser(ctx, userID)
		if err != nil {
			return err
		}
		return p.snap.ReplaceStates(ctx, userID, states)

	case memstore.CollectionItems:
		items, err := p.sources.Items.ListByUser(ctx, userID)
		if err != nil {
			return err
		}
		return p.snap.ReplaceItems(ctx, userID, items)

	case memstore.CollectionSessions:
		sessions, err := p.sources.Sessions.ListByUser(ctx, userID)
		if err != nil {
			return err
		}
		return p.snap.ReplaceSessions(ctx, userID, sessions)

	case memstore.CollectionRescue:
		state, err := p.sources.Rescue.Get(ctx, userID)
		if err != nil {
			if store.IsNotFoundError(err) {
				return nil
			}
			return err
		}
		return p.snap.ReplaceRescueState(ctx, state)

	case memstore.CollectionEvents:
		evts, err := p.sources.Events.ListByUser(ctx, userID)
		if err != nil {
			return err
		}
		return p.snap.AppendEvents(ctx, evts)

	default:
		return fmt.Errorf("unknown collection %q", collection)
	}
}

// Close stops the debounce loop and flushes whatever is still dirty. It is
// safe to call more than once; marks arriving after Close are flushed only
// if a later Flush call picks them up.
func (p *Persister) Close(ctx context.Context) error {
	p.closeOnce.Do(func() { close(p.done) })
	<-p.stopped
	return p.Flush(ctx)
}
