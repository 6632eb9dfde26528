package progress

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lexibird/lexibird-api/internal/domain"
	"github.com/lexibird/lexibird-api/internal/domain/srs"
	"github.com/lexibird/lexibird-api/internal/platform/logger"
	"github.com/lexibird/lexibird-api/internal/platform/memstore"
	"github.com/lexibird/lexibird-api/internal/service"
	"github.com/lexibird/lexibird-api/internal/store"
)

// Verify interface compliance at compile time
var _ ProgressService = (*progressServiceImpl)(nil)

// progressServiceImpl implements the ProgressService interface.
type progressServiceImpl struct {
	keywords store.KeywordStore
	states   store.StateStore
	items    store.ReviewItemStore
	sessions store.SessionStore
	users    store.UserStore
	locks    *memstore.UserLocks
	strategy srs.Strategy
	logger   *slog.Logger

	rankingMu sync.RWMutex
	ranking   *RankingSnapshot
}

// NewProgressService creates a new ProgressService implementation. The
// strategy is the level-table scheduler; session and item stores are read
// only, by the integrity check.
func NewProgressService(
	keywords store.KeywordStore,
	states store.StateStore,
	items store.ReviewItemStore,
	sessions store.SessionStore,
	users store.UserStore,
	locks *memstore.UserLocks,
	strategy srs.Strategy,
	logger *slog.Logger,
) ProgressService {
	if keywords == nil {
		panic("keywords cannot be nil")
	}
	if states == nil {
		panic("states cannot be nil")
	}
	if items == nil {
		panic("items cannot be nil")
	}
	if sessions == nil {
		panic("sessions cannot be nil")
	}
	if users == nil {
		panic("users cannot be nil")
	}
	if locks == nil {
		panic("locks cannot be nil")
	}
	if strategy == nil {
		panic("strategy cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &progressServiceImpl{
		keywords: keywords,
		states:   states,
		items:    items,
		sessions: sessions,
		users:    users,
		locks:    locks,
		strategy: strategy,
		logger:   logger.With(slog.String("component", "progress_service")),
	}
}

// AddKeyword implements ProgressService.AddKeyword.
func (s *progressServiceImpl) AddKeyword(
	ctx context.Context,
	topic, word, imageURL, audioURL string,
) (*domain.Keyword, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	keyword, err := domain.NewKeyword(topic, word, imageURL, audioURL)
	if err != nil {
		log.Warn("keyword validation failed",
			slog.String("error", err.Error()),
			slog.String("topic", topic),
			slog.String("word", word))
		return nil, err
	}

	if err := s.keywords.Create(ctx, keyword); err != nil {
		log.Error("failed to create keyword",
			slog.String("error", err.Error()),
			slog.String("keyword_id", keyword.ID.String()))
		return nil, service.NewError("add_keyword", "failed to create keyword", err)
	}

	log.Debug("keyword added",
		slog.String("keyword_id", keyword.ID.String()),
		slog.String("topic", keyword.Topic),
		slog.String("word", keyword.Word))
	return keyword, nil
}

// EnrollKeyword implements ProgressService.EnrollKeyword.
func (s *progressServiceImpl) EnrollKeyword(
	ctx context.Context,
	userID, keywordID uuid.UUID,
) (*domain.KeywordSRSState, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if _, err := s.keywords.GetByID(ctx, keywordID); err != nil {
		if store.IsNotFoundError(err) {
			log.Warn("enrollment for unknown keyword ignored",
				slog.String("user_id", userID.String()),
				slog.String("keyword_id", keywordID.String()))
			return nil, nil
		}
		log.Error("failed to look up keyword",
			slog.String("error", err.Error()),
			slog.String("keyword_id", keywordID.String()))
		return nil, service.NewError("enroll_keyword", "failed to look up keyword", err)
	}

	unlock := s.locks.Lock(userID)
	defer unlock()

	existing, err := s.states.Get(ctx, userID, keywordID)
	if err == nil {
		log.Debug("keyword already enrolled",
			slog.String("user_id", userID.String()),
			slog.String("keyword_id", keywordID.String()))
		return existing, nil
	}
	if !store.IsNotFoundError(err) {
		return nil, service.NewError("enroll_keyword", "failed to get srs state", err)
	}

	state, err := domain.NewKeywordSRSState(userID, keywordID)
	if err != nil {
		return nil, service.NewError("enroll_keyword", "failed to create srs state", err)
	}

	if err := s.states.Save(ctx, state); err != nil {
		log.Error("failed to save srs state",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("keyword_id", keywordID.String()))
		return nil, service.NewError("enroll_keyword", "failed to save srs state", err)
	}

	log.Debug("keyword enrolled",
		slog.String("user_id", userID.String()),
		slog.String("keyword_id", keywordID.String()))
	return state, nil
}

// RecordAttempt implements ProgressService.RecordAttempt.
func (s *progressServiceImpl) RecordAttempt(
	ctx context.Context,
	userID, keywordID uuid.UUID,
	result domain.ReviewResult,
) (*domain.KeywordSRSState, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	log.Debug("recording keyword attempt",
		slog.String("user_id", userID.String()),
		slog.String("keyword_id", keywordID.String()),
		slog.String("result", string(result)))

	if !domain.IsValidReviewResult(result) {
		log.Warn("invalid review result",
			slog.String("user_id", userID.String()),
			slog.String("keyword_id", keywordID.String()),
			slog.String("result", string(result)))
		return nil, srs.ErrInvalidResult
	}

	if _, err := s.keywords.GetByID(ctx, keywordID); err != nil {
		if store.IsNotFoundError(err) {
			log.Warn("attempt for unknown keyword ignored",
				slog.String("user_id", userID.String()),
				slog.String("keyword_id", keywordID.String()))
			return nil, nil
		}
		log.Error("failed to look up keyword",
			slog.String("error", err.Error()),
			slog.String("keyword_id", keywordID.String()))
		return nil, service.NewError("record_attempt", "failed to look up keyword", err)
	}

	unlock := s.locks.Lock(userID)
	defer unlock()

	state, err := s.states.Get(ctx, userID, keywordID)
	if err != nil {
		if !store.IsNotFoundError(err) {
			return nil, service.NewError("record_attempt", "failed to get srs state", err)
		}
		// First attempt without an explicit enrollment creates the state.
		state, err = domain.NewKeywordSRSState(userID, keywordID)
		if err != nil {
			return nil, service.NewError("record_attempt", "failed to create srs state", err)
		}
	}

	now := time.Now().UTC()
	if err := srs.ApplyToState(s.strategy, state, result, now); err != nil {
		if errors.Is(err, srs.ErrInvalidResult) {
			return nil, err
		}
		log.Error("failed to apply scheduling strategy",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("keyword_id", keywordID.String()))
		return nil, service.NewError("record_attempt", "failed to apply scheduling strategy", err)
	}

	if err := s.states.Save(ctx, state); err != nil {
		log.Error("failed to save srs state",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("keyword_id", keywordID.String()))
		return nil, service.NewError("record_attempt", "failed to save srs state", err)
	}

	log.Debug("keyword attempt recorded",
		slog.String("user_id", userID.String()),
		slog.String("keyword_id", keywordID.String()),
		slog.Int("level", state.Level),
		slog.String("status", string(state.Status)),
		slog.Time("next_review_at", state.NextReviewAt))
	return state, nil
}

// DueKeywords implements ProgressService.DueKeywords.
func (s *progressServiceImpl) DueKeywords(
	ctx context.Context,
	userID uuid.UUID,
) ([]DueKeyword, error) {
	states, err := s.states.ListDue(ctx, userID, time.Now().UTC())
	if err != nil {
		return nil, service.NewError("due_keywords", "failed to list due states", err)
	}

	due := make([]DueKeyword, 0, len(states))
	for _, state := range states {
		due = append(due, DueKeyword{
			KeywordID:    state.KeywordID,
			Level:        state.Level,
			NextReviewAt: state.NextReviewAt,
		})
	}
	return due, nil
}

// Overview implements ProgressService.Overview.
func (s *progressServiceImpl) Overview(
	ctx context.Context,
	userID uuid.UUID,
) (*Overview, error) {
	states, err := s.states.ListByUser(ctx, userID)
	if err != nil {
		return nil, service.NewError("overview", "failed to list srs states", err)
	}

	now := time.Now().UTC()
	overview := &Overview{TrackedKeywords: len(states)}
	for _, state := range states {
		switch state.Status {
		case domain.KeywordStatusNotStarted:
			overview.NotStarted++
		case domain.KeywordStatusLearning:
			overview.Learning++
		case domain.KeywordStatusMastered:
			overview.Mastered++
		}
		overview.TotalAttempts += state.Attempts
		overview.TotalCorrect += state.Correct
		if state.IsDue(now) {
			overview.DueNow++
		}
	}
	if overview.TotalAttempts > 0 {
		overview.Accuracy = float64(overview.TotalCorrect) / float64(overview.TotalAttempts)
	}
	return overview, nil
}

// ValidateIntegrity implements ProgressService.ValidateIntegrity.
// It recomputes every derivable invariant from the raw records, so it
// catches corruption introduced by a bad snapshot as well as logic bugs.
func (s *progressServiceImpl) ValidateIntegrity(
	ctx context.Context,
	userID uuid.UUID,
) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	valid := true

	states, err := s.states.ListByUser(ctx, userID)
	if err != nil {
		return false, service.NewError("validate_integrity", "failed to list srs states", err)
	}
	for _, state := range states {
		for _, reason := range stateViolations(state) {
			log.Warn("integrity violation",
				slog.String("user_id", userID.String()),
				slog.String("keyword_id", state.KeywordID.String()),
				slog.String("record", "srs_state"),
				slog.String("reason", reason))
			valid = false
		}
	}

	items, err := s.items.ListByUser(ctx, userID)
	if err != nil {
		return false, service.NewError("validate_integrity", "failed to list review items", err)
	}
	for _, item := range items {
		for _, reason := range itemViolations(item) {
			log.Warn("integrity violation",
				slog.String("user_id", userID.String()),
				slog.String("keyword_id", item.KeywordID.String()),
				slog.String("record", "review_item"),
				slog.String("reason", reason))
			valid = false
		}
	}

	sessions, err := s.sessions.ListByUser(ctx, userID)
	if err != nil {
		return false, service.NewError("validate_integrity", "failed to list sessions", err)
	}
	for _, session := range sessions {
		for _, reason := range sessionViolations(session) {
			log.Warn("integrity violation",
				slog.String("user_id", userID.String()),
				slog.String("session_id", session.ID.String()),
				slog.String("record", "session"),
				slog.String("reason", reason))
			valid = false
		}
	}

	return valid, nil
}

// Ranking implements ProgressService.Ranking.
func (s *progressServiceImpl) Ranking(ctx context.Context) (*RankingSnapshot, error) {
	s.rankingMu.RLock()
	snapshot := s.ranking
	s.rankingMu.RUnlock()

	if snapshot == nil {
		return s.RefreshRanking(ctx)
	}
	return snapshot, nil
}

// RefreshRanking implements ProgressService.RefreshRanking.
func (s *progressServiceImpl) RefreshRanking(ctx context.Context) (*RankingSnapshot, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	users, err := s.users.ListAll(ctx)
	if err != nil {
		return nil, service.NewError("refresh_ranking", "failed to list users", err)
	}

	entries := make([]RankingEntry, 0, len(users))
	for _, user := range users {
		states, err := s.states.ListByUser(ctx, user.ID)
		if err != nil {
			return nil, service.NewError("refresh_ranking", "failed to list srs states", err)
		}

		var attempts, correct, mastered int
		for _, state := range states {
			attempts += state.Attempts
			correct += state.Correct
			if state.Status == domain.KeywordStatusMastered {
				mastered++
			}
		}
		// Users who never attempted anything have no accuracy to rank.
		if attempts == 0 {
			continue
		}

		entries = append(entries, RankingEntry{
			UserID:   user.ID,
			Accuracy: float64(correct) / float64(attempts),
			Mastered: mastered,
			Attempts: attempts,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Accuracy != entries[j].Accuracy {
			return entries[i].Accuracy > entries[j].Accuracy
		}
		if entries[i].Mastered != entries[j].Mastered {
			return entries[i].Mastered > entries[j].Mastered
		}
		if entries[i].Attempts != entries[j].Attempts {
			return entries[i].Attempts > entries[j].Attempts
		}
		return entries[i].UserID.String() < entries[j].UserID.String()
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}

	snapshot := &RankingSnapshot{
		GeneratedAt: time.Now().UTC(),
		Entries:     entries,
	}

	s.rankingMu.Lock()
	s.ranking = snapshot
	s.rankingMu.Unlock()

	log.Debug("ranking refreshed", slog.Int("entries", len(entries)))
	return snapshot, nil
}

// stateViolations lists the invariants the given SRS state breaks.
func stateViolations(state *domain.KeywordSRSState) []string {
	var reasons []string
	if state.Level < domain.MinSRSLevel || state.Level > domain.MaxSRSLevel {
		reasons = append(reasons, "level out of range")
	}
	if state.Correct > state.Attempts {
		reasons = append(reasons, "correct count exceeds attempts")
	}
	if state.ConsecutiveCorrect > state.Attempts {
		reasons = append(reasons, "streak exceeds attempts")
	}
	if state.ConsecutiveCorrect < 0 || state.Attempts < 0 || state.Correct < 0 {
		reasons = append(reasons, "negative counter")
	}
	if state.Status == domain.KeywordStatusMastered && state.Level < domain.MaxSRSLevel {
		reasons = append(reasons, "mastered below the level cap")
	}
	if state.Status == domain.KeywordStatusNotStarted && state.Attempts > 0 {
		reasons = append(reasons, "attempts recorded while not started")
	}
	return reasons
}

// itemViolations lists the invariants the given review item breaks.
func itemViolations(item *domain.ReviewItem) []string {
	var reasons []string
	if item.EaseFactor < domain.MinEaseFactor {
		reasons = append(reasons, "ease factor below floor")
	}
	if item.IntervalDays < 0 {
		reasons = append(reasons, "negative interval")
	}
	if item.ReviewCount < 0 {
		reasons = append(reasons, "negative review count")
	}
	return reasons
}

// sessionViolations recounts a session's tallies from its items and lists
// every counter that disagrees.
func sessionViolations(session *domain.ReviewSession) []string {
	var answered, correct, instantly, hadToThink, forgot int
	for _, item := range session.Items {
		if !item.Answered {
			continue
		}
		answered++
		if item.IsCorrect {
			correct++
		}
		switch item.SelfAssessment {
		case domain.SelfAssessmentInstantlyGotIt:
			instantly++
		case domain.SelfAssessmentHadToThink:
			hadToThink++
		case domain.SelfAssessmentForgot:
			forgot++
		}
	}

	var reasons []string
	if session.CompletedItems != answered {
		reasons = append(reasons, "completed item count disagrees with items")
	}
	if session.CorrectAnswers != correct {
		reasons = append(reasons, "correct answer count disagrees with items")
	}
	if session.InstantlyGotIt != instantly ||
		session.HadToThink != hadToThink ||
		session.Forgot != forgot {
		reasons = append(reasons, "assessment tallies disagree with items")
	}
	if session.CurrentItemIndex < 0 || session.CurrentItemIndex > len(session.Items) {
		reasons = append(reasons, "current item index out of range")
	}
	return reasons
}
