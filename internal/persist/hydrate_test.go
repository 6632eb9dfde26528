package persist

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexibird/lexibird-api/internal/domain"
	"github.com/lexibird/lexibird-api/internal/events"
)

// fakeLoader serves fixed snapshots and can fail any single load.
type fakeLoader struct {
	users    []*domain.User
	keywords []*domain.Keyword
	states   []*domain.KeywordSRSState
	items    []*domain.ReviewItem
	sessions []*domain.ReviewSession
	rescue   []*domain.RescueModeState
	events   []events.Event

	statesErr error
}

func (f *fakeLoader) LoadUsers(context.Context) ([]*domain.User, error) {
	return f.users, nil
}

func (f *fakeLoader) LoadKeywords(context.Context) ([]*domain.Keyword, error) {
	return f.keywords, nil
}

func (f *fakeLoader) LoadStates(context.Context) ([]*domain.KeywordSRSState, error) {
	if f.statesErr != nil {
		return nil, f.statesErr
	}
	return f.states, nil
}

func (f *fakeLoader) LoadItems(context.Context) ([]*domain.ReviewItem, error) {
	return f.items, nil
}

func (f *fakeLoader) LoadSessions(context.Context) ([]*domain.ReviewSession, error) {
	return f.sessions, nil
}

func (f *fakeLoader) LoadRescueStates(context.Context) ([]*domain.RescueModeState, error) {
	return f.rescue, nil
}

func (f *fakeLoader) LoadEvents(context.Context) ([]events.Event, error) {
	return f.events, nil
}

func TestHydrateFillsStores(t *testing.T) {
	ctx := context.Background()
	_, targets := testStores(t)

	user, err := domain.NewUser("device-hydrate")
	require.NoError(t, err)

	keyword, err := domain.NewKeyword("food", "apple", "https://cdn.example.com/apple.png", "")
	require.NoError(t, err)

	state, err := domain.NewKeywordSRSState(user.ID, keyword.ID)
	require.NoError(t, err)

	item, err := domain.NewReviewItem(user.ID, keyword.ID)
	require.NoError(t, err)

	session, err := domain.NewReviewSession(user.ID, []domain.SessionItem{{
		KeywordID:       keyword.ID,
		Word:            keyword.Word,
		CorrectImageURL: keyword.ImageURL,
		Options:         []string{keyword.ImageURL},
	}})
	require.NoError(t, err)

	rescue, err := domain.NewRescueModeState(user.ID)
	require.NoError(t, err)

	event := events.NewEvent(events.EventReviewSessionCreated, user.ID, map[string]string{
		"session_id": session.ID.String(),
	})

	loader := &fakeLoader{
		users:    []*domain.User{user},
		keywords: []*domain.Keyword{keyword},
		states:   []*domain.KeywordSRSState{state},
		items:    []*domain.ReviewItem{item},
		sessions: []*domain.ReviewSession{session},
		rescue:   []*domain.RescueModeState{rescue},
		events:   []events.Event{event},
	}

	require.NoError(t, Hydrate(ctx, loader, targets))

	gotUser, err := targets.Users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.DeviceID, gotUser.DeviceID)

	gotKeywords, err := targets.Keywords.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, gotKeywords, 1)

	gotState, err := targets.States.Get(ctx, user.ID, keyword.ID)
	require.NoError(t, err)
	assert.Equal(t, state.Level, gotState.Level)

	gotItem, err := targets.Items.Get(ctx, user.ID, keyword.ID)
	require.NoError(t, err)
	assert.InDelta(t, item.EaseFactor, gotItem.EaseFactor, 0.0001)

	gotSession, err := targets.Sessions.GetByID(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, session.TargetDuration, gotSession.TargetDuration)

	gotRescue, err := targets.Rescue.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, gotRescue.IsActive)

	gotEvents, err := targets.Events.ListByUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, gotEvents, 1)
	assert.Equal(t, event.ID, gotEvents[0].ID)
}

func TestHydrateAbortsOnLoadFailure(t *testing.T) {
	ctx := context.Background()
	_, targets := testStores(t)

	user, err := domain.NewUser("device-partial")
	require.NoError(t, err)

	loader := &fakeLoader{
		users:     []*domain.User{user},
		statesErr: errors.New("corrupt snapshot"),
	}

	err = Hydrate(ctx, loader, targets)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "srs states")

	// Nothing was applied: hydration is all or nothing.
	users, err := targets.Users.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestHydrateWithEmptySnapshotsIsNoOp(t *testing.T) {
	ctx := context.Background()
	_, targets := testStores(t)

	require.NoError(t, Hydrate(ctx, &fakeLoader{}, targets))

	users, err := targets.Users.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)
}
