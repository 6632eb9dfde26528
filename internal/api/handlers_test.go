package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/lexibird/lexibird-api/internal/api/shared"
	"github.com/lexibird/lexibird-api/internal/config"
	"github.com/lexibird/lexibird-api/internal/domain"
	"github.com/lexibird/lexibird-api/internal/domain/srs"
	"github.com/lexibird/lexibird-api/internal/events"
	"github.com/lexibird/lexibird-api/internal/platform/memstore"
	"github.com/lexibird/lexibird-api/internal/service/auth"
	"github.com/lexibird/lexibird-api/internal/service/progress"
	"github.com/lexibird/lexibird-api/internal/service/rescue"
	"github.com/lexibird/lexibird-api/internal/service/review"
)

const testJWTSecret = "test-secret-0123456789abcdefghijklmnop"

// noopEmitter satisfies events.Emitter for handler tests that do not assert
// on emitted events.
type noopEmitter struct{}

func (noopEmitter) Emit(_ events.Event) {}

func testRescueConfig() config.RescueConfig {
	return config.RescueConfig{
		TriggerThreshold:     3,
		NormalPassThreshold:  70,
		LoweredPassThreshold: 60,
		ScoreBonus:           5,
		BonusEnabled:         true,
		Messages:             []string{"Keep going!"},
	}
}

// handlerEnv wires every handler onto a router backed by real services over
// in-memory stores, so tests drive the same paths production requests take.
// Authentication is bypassed by seeding the user ID directly into the
// request context; the middleware itself is covered in its own package.
type handlerEnv struct {
	router *chi.Mux

	users    *memstore.MemoryUserStore
	keywords *memstore.MemoryKeywordStore
	states   *memstore.MemoryStateStore
	sessions *memstore.MemorySessionStore
	rescues  *memstore.MemoryRescueStore
	eventLog *memstore.MemoryEventStore

	jwtService auth.JWTService

	userID uuid.UUID
}

func newHandlerEnv(t *testing.T) *handlerEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	users := memstore.NewMemoryUserStore(nil, logger)
	keywords := memstore.NewMemoryKeywordStore(nil, logger)
	states := memstore.NewMemoryStateStore(nil, logger)
	items := memstore.NewMemoryReviewItemStore(nil, logger)
	sessions := memstore.NewMemorySessionStore(nil, logger)
	rescues := memstore.NewMemoryRescueStore(nil, logger)
	eventLog := memstore.NewMemoryEventStore(nil, logger)

	locks := memstore.NewUserLocks()
	emitter := noopEmitter{}

	progressService := progress.NewProgressService(
		keywords, states, items, sessions, users, locks,
		srs.NewLevelTableStrategy(nil), logger,
	)
	reviewService := review.NewReviewService(
		keywords, states, items, sessions, locks,
		srs.NewLevelTableStrategy(nil), srs.NewSM2Strategy(nil),
		emitter, rand.New(rand.NewSource(1)), logger,
	)
	rescueService := rescue.NewRescueService(
		rescues, eventLog, locks, testRescueConfig(), emitter,
		rand.New(rand.NewSource(1)), logger,
	)

	jwtService, err := auth.NewJWTService(config.AuthConfig{
		JWTSecret:   testJWTSecret,
		TokenExpiry: time.Hour,
	})
	require.NoError(t, err)

	authHandler := NewAuthHandler(users, jwtService, time.Hour)
	keywordHandler := NewKeywordHandler(progressService, logger)
	sessionHandler := NewSessionHandler(reviewService, logger)
	rescueHandler := NewRescueHandler(rescueService, logger)
	progressHandler := NewProgressHandler(progressService, logger)

	router := chi.NewRouter()
	router.Post("/auth/register", authHandler.Register)
	router.Post("/keywords", keywordHandler.CreateKeyword)
	router.Get("/keywords/due", keywordHandler.DueKeywords)
	router.Post("/keywords/{keywordID}/enroll", keywordHandler.EnrollKeyword)
	router.Post("/keywords/{keywordID}/attempts", keywordHandler.RecordAttempt)
	router.Post("/sessions", sessionHandler.CreateSession)
	router.Get("/sessions/{sessionID}", sessionHandler.GetSession)
	router.Post("/sessions/{sessionID}/answers", sessionHandler.SubmitAnswer)
	router.Post("/sessions/{sessionID}/complete", sessionHandler.CompleteSession)
	router.Get("/rescue", rescueHandler.GetState)
	router.Get("/rescue/threshold", rescueHandler.GetThreshold)
	router.Post("/rescue/score", rescueHandler.ApplyScore)
	router.Post("/rescue/failures", rescueHandler.RecordFailure)
	router.Post("/rescue/improvements", rescueHandler.RecordImprovement)
	router.Post("/rescue/exit", rescueHandler.Exit)
	router.Get("/rescue/stats", rescueHandler.GetStats)
	router.Get("/progress", progressHandler.GetOverview)
	router.Get("/progress/integrity", progressHandler.CheckIntegrity)
	router.Get("/rankings", progressHandler.GetRanking)

	user, err := domain.NewUser("handler-test-device-1")
	require.NoError(t, err)
	require.NoError(t, users.Create(context.Background(), user))

	return &handlerEnv{
		router:     router,
		users:      users,
		keywords:   keywords,
		states:     states,
		sessions:   sessions,
		rescues:    rescues,
		eventLog:   eventLog,
		jwtService: jwtService,
		userID:     user.ID,
	}
}

// do sends a JSON request through the router authenticated as env.userID.
func (env *handlerEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	return env.doAs(t, env.userID, method, path, body)
}

// doAs sends a JSON request authenticated as the given user. uuid.Nil sends
// the request unauthenticated.
func (env *handlerEnv) doAs(
	t *testing.T,
	userID uuid.UUID,
	method, path string,
	body interface{},
) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(buf)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != uuid.Nil {
		req = req.WithContext(
			context.WithValue(req.Context(), shared.UserIDContextKey, userID),
		)
	}

	recorder := httptest.NewRecorder()
	env.router.ServeHTTP(recorder, req)
	return recorder
}

func decodeBody(t *testing.T, recorder *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), out))
}

// createKeyword adds a catalog keyword through the API and returns it.
func (env *handlerEnv) createKeyword(t *testing.T, topic, word string) *domain.Keyword {
	t.Helper()

	recorder := env.do(t, http.MethodPost, "/keywords", CreateKeywordRequest{
		Topic:    topic,
		Word:     word,
		ImageURL: "https://cdn.example.com/img/" + word + ".jpg",
		AudioURL: "https://cdn.example.com/audio/" + word + ".mp3",
	})
	require.Equal(t, http.StatusCreated, recorder.Code)

	var keyword domain.Keyword
	decodeBody(t, recorder, &keyword)
	return &keyword
}

// makeDue backdates the user's SRS state so the keyword shows up in the
// due queue immediately.
func (env *handlerEnv) makeDue(t *testing.T, keywordID uuid.UUID) {
	t.Helper()

	ctx := context.Background()
	state, err := env.states.Get(ctx, env.userID, keywordID)
	if err != nil {
		state, err = domain.NewKeywordSRSState(env.userID, keywordID)
		require.NoError(t, err)
	}
	state.Status = domain.KeywordStatusLearning
	state.NextReviewAt = time.Now().UTC().Add(-time.Hour)
	require.NoError(t, env.states.Save(ctx, state))
}
