package persist

import (
	"context"
	"fmt"

	"github.com/lexibird/lexibird-api/internal/domain"
	"github.com/lexibird/lexibird-api/internal/events"
	"github.com/lexibird/lexibird-api/internal/platform/memstore"
)

// Loader is the startup read surface of the snapshot store.
type Loader interface {
	LoadUsers(ctx context.Context) ([]*domain.User, error)
	LoadKeywords(ctx context.Context) ([]*domain.Keyword, error)
	LoadStates(ctx context.Context) ([]*domain.KeywordSRSState, error)
	LoadItems(ctx context.Context) ([]*domain.ReviewItem, error)
	LoadSessions(ctx context.Context) ([]*domain.ReviewSession, error)
	LoadRescueStates(ctx context.Context) ([]*domain.RescueModeState, error)
	LoadEvents(ctx context.Context) ([]events.Event, error)
}

// HydrateTargets bundles the memory stores Hydrate fills.
type HydrateTargets struct {
	Users    *memstore.MemoryUserStore
	Keywords *memstore.MemoryKeywordStore
	States   *memstore.MemoryStateStore
	Items    *memstore.MemoryReviewItemStore
	Sessions *memstore.MemorySessionStore
	Rescue   *memstore.MemoryRescueStore
	Events   *memstore.MemoryEventStore
}

// Hydrate loads every persisted collection into the memory stores. It runs
// once at startup, before the server accepts traffic, so it replaces store
// contents without dirty-marking them. Any load failure aborts the whole
// hydration: starting with a partial dataset would let the write-behind
// flush clobber the rows that were never read.
func Hydrate(ctx context.Context, loader Loader, targets HydrateTargets) error {
	users, err := loader.LoadUsers(ctx)
	if err != nil {
		return fmt.Errorf("failed to load users: %w", err)
	}

	keywords, err := loader.LoadKeywords(ctx)
	if err != nil {
		return fmt.Errorf("failed to load keywords: %w", err)
	}

	states, err := loader.LoadStates(ctx)
	if err != nil {
		return fmt.Errorf("failed to load srs states: %w", err)
	}

	items, err := loader.LoadItems(ctx)
	if err != nil {
		return fmt.Errorf("failed to load review items: %w", err)
	}

	sessions, err := loader.LoadSessions(ctx)
	if err != nil {
		return fmt.Errorf("failed to load review sessions: %w", err)
	}

	rescueStates, err := loader.LoadRescueStates(ctx)
	if err != nil {
		return fmt.Errorf("failed to load rescue states: %w", err)
	}

	evts, err := loader.LoadEvents(ctx)
	if err != nil {
		return fmt.Errorf("failed to load events: %w", err)
	}

	targets.Users.Hydrate(users)
	targets.Keywords.Hydrate(keywords)
	targets.States.Hydrate(states)
	targets.Items.Hydrate(items)
	targets.Sessions.Hydrate(sessions)
	targets.Rescue.Hydrate(rescueStates)
	targets.Events.Hydrate(evts)

	return nil
}
