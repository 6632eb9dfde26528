package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexibird/lexibird-api/internal/domain"
)

// startSession creates a due keyword and opens a session built from it.
func startSession(t *testing.T, env *handlerEnv) (*domain.Keyword, *domain.ReviewSession) {
	t.Helper()

	keyword := env.createKeyword(t, "animals", "elefante")
	env.makeDue(t, keyword.ID)

	recorder := env.do(t, http.MethodPost, "/sessions", nil)
	require.Equal(t, http.StatusCreated, recorder.Code)

	var session domain.ReviewSession
	decodeBody(t, recorder, &session)
	return keyword, &session
}

func TestCreateSession(t *testing.T) {
	t.Run("builds a session from the due queue", func(t *testing.T) {
		env := newHandlerEnv(t)
		keyword, session := startSession(t, env)

		assert.NotEqual(t, uuid.Nil, session.ID)
		assert.Equal(t, env.userID, session.UserID)
		assert.Equal(t, domain.SessionStatusInProgress, session.Status)
		require.Len(t, session.Items, 1)
		assert.Equal(t, keyword.ID, session.Items[0].KeywordID)
		assert.Contains(t, session.Items[0].Options, keyword.ImageURL)
	})

	t.Run("nothing due", func(t *testing.T) {
		env := newHandlerEnv(t)
		env.createKeyword(t, "animals", "elefante")

		recorder := env.do(t, http.MethodPost, "/sessions", nil)

		assert.Equal(t, http.StatusUnprocessableEntity, recorder.Code)
		assert.Contains(t, recorder.Body.String(), "No keywords due for review")
	})

	t.Run("explicit keyword list", func(t *testing.T) {
		env := newHandlerEnv(t)
		first := env.createKeyword(t, "animals", "elefante")
		second := env.createKeyword(t, "animals", "jirafa")

		recorder := env.do(t, http.MethodPost, "/sessions", CreateSessionRequest{
			KeywordIDs: []uuid.UUID{first.ID, second.ID},
		})

		require.Equal(t, http.StatusCreated, recorder.Code)

		var session domain.ReviewSession
		decodeBody(t, recorder, &session)
		assert.Len(t, session.Items, 2)
	})

	t.Run("explicit list with only unknown keywords", func(t *testing.T) {
		env := newHandlerEnv(t)

		recorder := env.do(t, http.MethodPost, "/sessions", CreateSessionRequest{
			KeywordIDs: []uuid.UUID{uuid.New()},
		})

		assert.Equal(t, http.StatusUnprocessableEntity, recorder.Code)
	})
}

func TestGetSession(t *testing.T) {
	t.Run("returns the owner's session", func(t *testing.T) {
		env := newHandlerEnv(t)
		_, session := startSession(t, env)

		recorder := env.do(t, http.MethodGet, "/sessions/"+session.ID.String(), nil)

		require.Equal(t, http.StatusOK, recorder.Code)

		var fetched domain.ReviewSession
		decodeBody(t, recorder, &fetched)
		assert.Equal(t, session.ID, fetched.ID)
	})

	t.Run("unknown session", func(t *testing.T) {
		env := newHandlerEnv(t)

		recorder := env.do(t, http.MethodGet, "/sessions/"+uuid.NewString(), nil)

		assert.Equal(t, http.StatusNotFound, recorder.Code)
	})

	t.Run("another user's session reads as missing", func(t *testing.T) {
		env := newHandlerEnv(t)
		_, session := startSession(t, env)

		other, err := domain.NewUser("other-device-0001")
		require.NoError(t, err)
		require.NoError(t, env.users.Create(context.Background(), other))

		recorder := env.doAs(t, other.ID, http.MethodGet,
			"/sessions/"+session.ID.String(), nil)

		assert.Equal(t, http.StatusNotFound, recorder.Code)
	})
}

func TestSubmitAnswer(t *testing.T) {
	t.Run("correct answer updates the session", func(t *testing.T) {
		env := newHandlerEnv(t)
		keyword, session := startSession(t, env)

		recorder := env.do(t, http.MethodPost,
			"/sessions/"+session.ID.String()+"/answers",
			SubmitAnswerRequest{
				ItemIndex:      0,
				Selection:      keyword.ImageURL,
				SelfAssessment: "instantly_got_it",
				ResponseTimeMs: 900,
			})

		require.Equal(t, http.StatusOK, recorder.Code)

		var updated domain.ReviewSession
		decodeBody(t, recorder, &updated)
		assert.Equal(t, 1, updated.CompletedItems)
		assert.Equal(t, 1, updated.CorrectAnswers)
		assert.Equal(t, 1, updated.InstantlyGotIt)
		assert.True(t, updated.Items[0].Answered)
		assert.True(t, updated.Items[0].IsCorrect)
	})

	t.Run("unknown session is a no-op", func(t *testing.T) {
		env := newHandlerEnv(t)

		recorder := env.do(t, http.MethodPost,
			"/sessions/"+uuid.NewString()+"/answers",
			SubmitAnswerRequest{
				ItemIndex:      0,
				Selection:      "whatever",
				SelfAssessment: "forgot",
			})

		assert.Equal(t, http.StatusNoContent, recorder.Code)
	})

	t.Run("unknown self-assessment value", func(t *testing.T) {
		env := newHandlerEnv(t)
		_, session := startSession(t, env)

		recorder := env.do(t, http.MethodPost,
			"/sessions/"+session.ID.String()+"/answers",
			SubmitAnswerRequest{
				ItemIndex:      0,
				Selection:      "whatever",
				SelfAssessment: "nailed_it",
			})

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})
}

func TestCompleteSession(t *testing.T) {
	t.Run("completes and summarizes", func(t *testing.T) {
		env := newHandlerEnv(t)
		keyword, session := startSession(t, env)

		answer := env.do(t, http.MethodPost,
			"/sessions/"+session.ID.String()+"/answers",
			SubmitAnswerRequest{
				ItemIndex:      0,
				Selection:      keyword.ImageURL,
				SelfAssessment: "instantly_got_it",
				ResponseTimeMs: 900,
			})
		require.Equal(t, http.StatusOK, answer.Code)

		recorder := env.do(t, http.MethodPost,
			"/sessions/"+session.ID.String()+"/complete", nil)

		require.Equal(t, http.StatusOK, recorder.Code)

		var summary domain.SessionSummary
		decodeBody(t, recorder, &summary)
		assert.Equal(t, session.ID, summary.SessionID)
		assert.Equal(t, 1, summary.ItemCount)
		assert.Equal(t, 1, summary.CompletedItems)
		assert.Equal(t, 1, summary.CorrectAnswers)
		assert.InDelta(t, 1.0, summary.Accuracy, 1e-9)
	})

	t.Run("unknown session is a no-op", func(t *testing.T) {
		env := newHandlerEnv(t)

		recorder := env.do(t, http.MethodPost,
			"/sessions/"+uuid.NewString()+"/complete", nil)

		assert.Equal(t, http.StatusNoContent, recorder.Code)
	})
}
