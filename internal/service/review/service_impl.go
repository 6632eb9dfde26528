package review

import (
	"context"
	"log/slog"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lexibird/lexibird-api/internal/domain"
	"github.com/lexibird/lexibird-api/internal/domain/srs"
	"github.com/lexibird/lexibird-api/internal/events"
	"github.com/lexibird/lexibird-api/internal/platform/logger"
	"github.com/lexibird/lexibird-api/internal/platform/memstore"
	"github.com/lexibird/lexibird-api/internal/service"
	"github.com/lexibird/lexibird-api/internal/store"
)

// distractorsPerItem is how many wrong images accompany the correct one.
const distractorsPerItem = 2

// Verify interface compliance at compile time
var _ ReviewService = (*reviewServiceImpl)(nil)

// reviewServiceImpl implements the ReviewService interface.
type reviewServiceImpl struct {
	keywords   store.KeywordStore
	states     store.StateStore
	items      store.ReviewItemStore
	sessions   store.SessionStore
	locks      *memstore.UserLocks
	levelTable srs.Strategy
	sm2        srs.Strategy
	emitter    events.Emitter
	logger     *slog.Logger

	// rngMu guards rng, which is not safe for concurrent use.
	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewReviewService creates a new ReviewService implementation. The level
// table strategy drives the keyword mastery states, SM-2 the per-item
// schedules. A nil rng seeds from the clock; tests pass a fixed seed.
func NewReviewService(
	keywords store.KeywordStore,
	states store.StateStore,
	items store.ReviewItemStore,
	sessions store.SessionStore,
	locks *memstore.UserLocks,
	levelTable srs.Strategy,
	sm2 srs.Strategy,
	emitter events.Emitter,
	rng *rand.Rand,
	logger *slog.Logger,
) ReviewService {
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
	if locks == nil {
		panic("locks cannot be nil")
	}
	if levelTable == nil {
		panic("levelTable cannot be nil")
	}
	if sm2 == nil {
		panic("sm2 cannot be nil")
	}
	if emitter == nil {
		panic("emitter cannot be nil")
	}

	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &reviewServiceImpl{
		keywords:   keywords,
		states:     states,
		items:      items,
		sessions:   sessions,
		locks:      locks,
		levelTable: levelTable,
		sm2:        sm2,
		emitter:    emitter,
		rng:        rng,
		logger:     logger.With(slog.String("component", "review_service")),
	}
}

// Create implements ReviewService.Create.
func (s *reviewServiceImpl) Create(
	ctx context.Context,
	userID uuid.UUID,
) (*domain.ReviewSession, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	unlock := s.locks.Lock(userID)
	defer unlock()

	due, err := s.states.ListDue(ctx, userID, time.Now().UTC())
	if err != nil {
		return nil, service.NewError("create_session", "failed to list due keywords", err)
	}
	if len(due) == 0 {
		log.Debug("no keywords due for review", slog.String("user_id", userID.String()))
		return nil, ErrNoDueKeywords
	}

	keywordIDs := make([]uuid.UUID, 0, len(due))
	for _, state := range due {
		keywordIDs = append(keywordIDs, state.KeywordID)
	}

	return s.createSession(ctx, log, userID, keywordIDs)
}

// CreateFromKeywords implements ReviewService.CreateFromKeywords.
func (s *reviewServiceImpl) CreateFromKeywords(
	ctx context.Context,
	userID uuid.UUID,
	keywordIDs []uuid.UUID,
) (*domain.ReviewSession, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if len(keywordIDs) == 0 {
		log.Debug("no keywords requested for review", slog.String("user_id", userID.String()))
		return nil, ErrNoDueKeywords
	}

	unlock := s.locks.Lock(userID)
	defer unlock()

	return s.createSession(ctx, log, userID, keywordIDs)
}

// createSession assembles, persists, and announces a session for the given
// keywords. Callers hold the user lock.
func (s *reviewServiceImpl) createSession(
	ctx context.Context,
	log *slog.Logger,
	userID uuid.UUID,
	keywordIDs []uuid.UUID,
) (*domain.ReviewSession, error) {
	items, err := s.assembleItems(ctx, log, userID, keywordIDs)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		log.Debug("no known keywords to review", slog.String("user_id", userID.String()))
		return nil, ErrNoDueKeywords
	}

	session, err := domain.NewReviewSession(userID, items)
	if err != nil {
		return nil, service.NewError("create_session", "failed to build session", err)
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		log.Error("failed to save session",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("session_id", session.ID.String()))
		return nil, service.NewError("create_session", "failed to save session", err)
	}

	s.emitter.Emit(events.NewEvent(events.EventReviewSessionCreated, userID, map[string]string{
		"session_id": session.ID.String(),
		"item_count": strconv.Itoa(len(session.Items)),
	}))

	log.Debug("review session created",
		slog.String("user_id", userID.String()),
		slog.String("session_id", session.ID.String()),
		slog.Int("item_count", len(session.Items)),
		slog.Duration("target_duration", session.TargetDuration))
	return session, nil
}

// assembleItems builds one session item per known keyword: the word with its
// correct image/audio pairing and shuffled image options. Unknown keyword
// IDs are skipped.
func (s *reviewServiceImpl) assembleItems(
	ctx context.Context,
	log *slog.Logger,
	userID uuid.UUID,
	keywordIDs []uuid.UUID,
) ([]domain.SessionItem, error) {
	catalog, err := s.keywords.ListAll(ctx)
	if err != nil {
		return nil, service.NewError("create_session", "failed to list keywords", err)
	}

	byID := make(map[uuid.UUID]*domain.Keyword, len(catalog))
	byTopic := make(map[string][]*domain.Keyword)
	for _, keyword := range catalog {
		byID[keyword.ID] = keyword
		byTopic[keyword.Topic] = append(byTopic[keyword.Topic], keyword)
	}

	s.rngMu.Lock()
	defer s.rngMu.Unlock()

	items := make([]domain.SessionItem, 0, len(keywordIDs))
	for _, keywordID := range keywordIDs {
		keyword, ok := byID[keywordID]
		if !ok {
			log.Warn("unknown keyword skipped",
				slog.String("user_id", userID.String()),
				slog.String("keyword_id", keywordID.String()))
			continue
		}

		options := append([]string{keyword.ImageURL}, s.pickDistractors(keyword, byTopic[keyword.Topic], catalog)...)
		s.rng.Shuffle(len(options), func(i, j int) {
			options[i], options[j] = options[j], options[i]
		})

		items = append(items, domain.SessionItem{
			KeywordID:       keyword.ID,
			Word:            keyword.Word,
			CorrectImageURL: keyword.ImageURL,
			AudioURL:        keyword.AudioURL,
			Options:         options,
		})
	}

	s.rng.Shuffle(len(items), func(i, j int) {
		items[i], items[j] = items[j], items[i]
	})
	return items, nil
}

// pickDistractors chooses up to two wrong images for the keyword, preferring
// its own topic and falling back to the rest of the catalog when the topic
// is too small. A sparse catalog yields fewer distractors, never an error.
// The caller holds rngMu.
func (s *reviewServiceImpl) pickDistractors(
	keyword *domain.Keyword,
	sameTopic []*domain.Keyword,
	catalog []*domain.Keyword,
) []string {
	seen := map[string]bool{keyword.ImageURL: true}

	primary := candidateImages(sameTopic, keyword.ID, seen)
	s.rng.Shuffle(len(primary), func(i, j int) {
		primary[i], primary[j] = primary[j], primary[i]
	})
	if len(primary) > distractorsPerItem {
		primary = primary[:distractorsPerItem]
	}

	if len(primary) < distractorsPerItem {
		fallback := candidateImages(catalog, keyword.ID, seen)
		s.rng.Shuffle(len(fallback), func(i, j int) {
			fallback[i], fallback[j] = fallback[j], fallback[i]
		})
		if need := distractorsPerItem - len(primary); len(fallback) > need {
			fallback = fallback[:need]
		}
		primary = append(primary, fallback...)
	}
	return primary
}

// candidateImages collects distinct image URLs from the list, excluding the
// keyword under review and anything already seen.
func candidateImages(
	list []*domain.Keyword,
	excludeID uuid.UUID,
	seen map[string]bool,
) []string {
	var images []string
	for _, other := range list {
		if other.ID == excludeID || seen[other.ImageURL] {
			continue
		}
		seen[other.ImageURL] = true
		images = append(images, other.ImageURL)
	}
	return images
}

// Get implements ReviewService.Get.
func (s *reviewServiceImpl) Get(
	ctx context.Context,
	userID, sessionID uuid.UUID,
) (*domain.ReviewSession, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, store.ErrSessionNotFound
		}
		return nil, service.NewError("get_session", "failed to get session", err)
	}
	// A foreign session is reported as missing rather than forbidden, so
	// session IDs cannot be probed across users.
	if session.UserID != userID {
		return nil, store.ErrSessionNotFound
	}
	return session, nil
}

// SubmitAnswer implements ReviewService.SubmitAnswer.
func (s *reviewServiceImpl) SubmitAnswer(
	ctx context.Context,
	userID, sessionID uuid.UUID,
	answer ReviewAnswer,
) (*domain.ReviewSession, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	log.Debug("processing session answer",
		slog.String("user_id", userID.String()),
		slog.String("session_id", sessionID.String()),
		slog.Int("item_index", answer.ItemIndex),
		slog.String("self_assessment", string(answer.SelfAssessment)))

	if !domain.IsValidSelfAssessment(answer.SelfAssessment) {
		log.Warn("invalid self-assessment",
			slog.String("user_id", userID.String()),
			slog.String("session_id", sessionID.String()),
			slog.String("self_assessment", string(answer.SelfAssessment)))
		return nil, domain.ErrInvalidSelfAssessment
	}

	unlock := s.locks.Lock(userID)
	defer unlock()

	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if store.IsNotFoundError(err) {
			log.Warn("answer for unknown session ignored",
				slog.String("user_id", userID.String()),
				slog.String("session_id", sessionID.String()))
			return nil, nil
		}
		return nil, service.NewError("submit_answer", "failed to get session", err)
	}
	if session.UserID != userID {
		log.Warn("answer for another user's session ignored",
			slog.String("user_id", userID.String()),
			slog.String("session_id", sessionID.String()))
		return nil, nil
	}
	if session.IsCompleted() {
		log.Warn("answer for completed session ignored",
			slog.String("user_id", userID.String()),
			slog.String("session_id", sessionID.String()))
		return session, nil
	}
	if answer.ItemIndex < 0 || answer.ItemIndex >= len(session.Items) {
		log.Warn("answer for out-of-range item ignored",
			slog.String("user_id", userID.String()),
			slog.String("session_id", sessionID.String()),
			slog.Int("item_index", answer.ItemIndex),
			slog.Int("item_count", len(session.Items)))
		return session, nil
	}

	item := &session.Items[answer.ItemIndex]
	now := time.Now().UTC()

	// Resolve the records the answer mutates as they stood before this
	// item's first answer. Resubmissions recompute from that snapshot, so a
	// retried answer replaces its earlier effect instead of stacking on it.
	var prior domain.PriorSchedules
	if item.Prior != nil {
		prior = *item.Prior
	} else {
		state, err := s.getOrCreateState(ctx, userID, item.KeywordID)
		if err != nil {
			return nil, service.NewError("submit_answer", "failed to get srs state", err)
		}
		reviewItem, err := s.getOrCreateItem(ctx, userID, item.KeywordID)
		if err != nil {
			return nil, service.NewError("submit_answer", "failed to get review item", err)
		}
		prior = domain.PriorSchedules{State: *state, Item: *reviewItem}
	}

	if err := session.RecordAnswer(answer.ItemIndex, answer.Selection, answer.SelfAssessment, answer.ResponseTimeMs); err != nil {
		return nil, service.NewError("submit_answer", "failed to record answer", err)
	}
	item.Prior = &prior

	state := prior.State
	reviewItem := prior.Item

	result := domain.ReviewResultIncorrect
	if item.IsCorrect {
		result = domain.ReviewResultCorrect
	}
	if err := srs.ApplyToState(s.levelTable, &state, result, now); err != nil {
		return nil, service.NewError("submit_answer", "failed to apply level table", err)
	}
	if err := srs.ApplyToItem(s.sm2, &reviewItem, answer.SelfAssessment, now); err != nil {
		return nil, service.NewError("submit_answer", "failed to apply sm-2", err)
	}

	if err := s.states.Save(ctx, &state); err != nil {
		log.Error("failed to save srs state",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("keyword_id", item.KeywordID.String()))
		return nil, service.NewError("submit_answer", "failed to save srs state", err)
	}
	if err := s.items.Save(ctx, &reviewItem); err != nil {
		log.Error("failed to save review item",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("keyword_id", item.KeywordID.String()))
		return nil, service.NewError("submit_answer", "failed to save review item", err)
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		log.Error("failed to save session",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("session_id", sessionID.String()))
		return nil, service.NewError("submit_answer", "failed to save session", err)
	}

	log.Debug("session answer recorded",
		slog.String("user_id", userID.String()),
		slog.String("session_id", sessionID.String()),
		slog.Int("item_index", answer.ItemIndex),
		slog.Bool("is_correct", item.IsCorrect),
		slog.Int("interval_days", reviewItem.IntervalDays),
		slog.Float64("ease_factor", reviewItem.EaseFactor),
		slog.Time("next_review_at", reviewItem.NextReviewAt))
	return session, nil
}

// Complete implements ReviewService.Complete.
func (s *reviewServiceImpl) Complete(
	ctx context.Context,
	userID, sessionID uuid.UUID,
) (*domain.SessionSummary, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	unlock := s.locks.Lock(userID)
	defer unlock()

	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if store.IsNotFoundError(err) {
			log.Warn("completion of unknown session ignored",
				slog.String("user_id", userID.String()),
				slog.String("session_id", sessionID.String()))
			return nil, nil
		}
		return nil, service.NewError("complete_session", "failed to get session", err)
	}
	if session.UserID != userID {
		log.Warn("completion of another user's session ignored",
			slog.String("user_id", userID.String()),
			slog.String("session_id", sessionID.String()))
		return nil, nil
	}

	if session.IsCompleted() {
		log.Debug("session already completed",
			slog.String("user_id", userID.String()),
			slog.String("session_id", sessionID.String()))
		summary := session.Summary()
		return &summary, nil
	}

	now := time.Now().UTC()
	if err := session.Complete(now); err != nil {
		return nil, service.NewError("complete_session", "failed to complete session", err)
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		log.Error("failed to save session",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("session_id", sessionID.String()))
		return nil, service.NewError("complete_session", "failed to save session", err)
	}

	summary := session.Summary()
	s.emitter.Emit(events.NewEvent(events.EventReviewSessionCompleted, userID, map[string]string{
		"session_id":      session.ID.String(),
		"item_count":      strconv.Itoa(summary.ItemCount),
		"completed_items": strconv.Itoa(summary.CompletedItems),
		"correct_answers": strconv.Itoa(summary.CorrectAnswers),
		"accuracy":        strconv.FormatFloat(summary.Accuracy, 'f', 4, 64),
		"duration_ms":     strconv.FormatInt(summary.ActualDuration.Milliseconds(), 10),
	}))

	log.Debug("review session completed",
		slog.String("user_id", userID.String()),
		slog.String("session_id", sessionID.String()),
		slog.Int("completed_items", summary.CompletedItems),
		slog.Int("correct_answers", summary.CorrectAnswers),
		slog.Duration("actual_duration", summary.ActualDuration))
	return &summary, nil
}

// getOrCreateState loads the keyword's mastery state, creating the initial
// record when the session keyword was never enrolled.
func (s *reviewServiceImpl) getOrCreateState(
	ctx context.Context,
	userID, keywordID uuid.UUID,
) (*domain.KeywordSRSState, error) {
	state, err := s.states.Get(ctx, userID, keywordID)
	if err == nil {
		return state, nil
	}
	if !store.IsNotFoundError(err) {
		return nil, err
	}
	return domain.NewKeywordSRSState(userID, keywordID)
}

// getOrCreateItem loads the keyword's SM-2 item, creating the default
// record on the keyword's first session answer.
func (s *reviewServiceImpl) getOrCreateItem(
	ctx context.Context,
	userID, keywordID uuid.UUID,
) (*domain.ReviewItem, error) {
	item, err := s.items.Get(ctx, userID, keywordID)
	if err == nil {
		return item, nil
	}
	if !store.IsNotFoundError(err) {
		return nil, err
	}
	return domain.NewReviewItem(userID, keywordID)
}
