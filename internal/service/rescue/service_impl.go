package rescue

import (
	"context"
	"log/slog"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lexibird/lexibird-api/internal/config"
	"github.com/lexibird/lexibird-api/internal/domain"
	"github.com/lexibird/lexibird-api/internal/events"
	"github.com/lexibird/lexibird-api/internal/platform/logger"
	"github.com/lexibird/lexibird-api/internal/platform/memstore"
	"github.com/lexibird/lexibird-api/internal/service"
	"github.com/lexibird/lexibird-api/internal/store"
)

// rescueServiceImpl implements the RescueService interface.
type rescueServiceImpl struct {
	rescues  store.RescueStore
	eventLog store.EventStore
	locks    *memstore.UserLocks
	cfg      config.RescueConfig
	emitter  events.Emitter
	timeFunc func() time.Time // Injectable for testing
	logger   *slog.Logger

	// rngMu guards rng, which is not safe for concurrent use.
	rngMu sync.Mutex
	rng   *rand.Rand
}

// Ensure rescueServiceImpl implements RescueService interface
var _ RescueService = (*rescueServiceImpl)(nil)

// NewRescueService creates a new RescueService backed by the given stores.
// The rng drives supportive message selection; a nil rng gets a time-seeded
// one. Panics if any store, the locks, or the emitter is nil, or if the
// config carries no supportive messages.
func NewRescueService(
	rescues store.RescueStore,
	eventLog store.EventStore,
	locks *memstore.UserLocks,
	cfg config.RescueConfig,
	emitter events.Emitter,
	rng *rand.Rand,
	logger *slog.Logger,
) RescueService {
	if rescues == nil {
		panic("rescue store cannot be nil")
	}
	if eventLog == nil {
		panic("event store cannot be nil")
	}
	if locks == nil {
		panic("user locks cannot be nil")
	}
	if emitter == nil {
		panic("event emitter cannot be nil")
	}
	if len(cfg.Messages) == 0 {
		panic("rescue config must provide at least one supportive message")
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &rescueServiceImpl{
		rescues:  rescues,
		eventLog: eventLog,
		locks:    locks,
		cfg:      cfg,
		emitter:  emitter,
		timeFunc: func() time.Time { return time.Now().UTC() },
		rng:      rng,
		logger:   logger.With(slog.String("component", "rescue_service")),
	}
}

// RecordFailure implements RescueService.RecordFailure
func (s *rescueServiceImpl) RecordFailure(
	ctx context.Context,
	userID, keywordID, sessionID uuid.UUID,
	score int,
	phase domain.LearningPhase,
) (*domain.RescueModeState, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !domain.IsValidLearningPhase(phase) {
		log.Warn("failure with invalid learning phase rejected",
			slog.String("user_id", userID.String()),
			slog.String("phase", string(phase)))
		return nil, domain.ErrInvalidLearningPhase
	}
	if phase != domain.LearningPhasePronunciation {
		log.Debug("failure outside pronunciation training ignored",
			slog.String("user_id", userID.String()),
			slog.String("phase", string(phase)))
		state, err := s.rescues.Get(ctx, userID)
		if err != nil {
			if store.IsNotFoundError(err) {
				return nil, nil
			}
			return nil, service.NewError("record_failure", "failed to get rescue state", err)
		}
		return state, nil
	}

	unlock := s.locks.Lock(userID)
	defer unlock()

	state, err := s.rescues.Get(ctx, userID)
	if err != nil {
		if !store.IsNotFoundError(err) {
			return nil, service.NewError("record_failure", "failed to get rescue state", err)
		}
		state, err = domain.NewRescueModeState(userID)
		if err != nil {
			return nil, service.NewError("record_failure", "failed to create rescue state", err)
		}
	}

	now := s.timeFunc()
	state.ConsecutiveFailures++
	state.TotalAttempts++
	state.LearningPhase = phase
	state.UpdatedAt = now

	triggered := false
	if !state.IsActive && state.ConsecutiveFailures >= s.cfg.TriggerThreshold {
		if err := state.Activate(s.pickMessage(), now); err != nil {
			return nil, service.NewError("record_failure", "failed to activate rescue mode", err)
		}
		triggered = true
	}

	if err := s.rescues.Save(ctx, state); err != nil {
		log.Error("failed to save rescue state",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, service.NewError("record_failure", "failed to save rescue state", err)
	}

	if triggered {
		s.emitter.Emit(events.NewEvent(events.EventRescueModeTriggered, userID, map[string]string{
			"keyword_id":           keywordID.String(),
			"session_id":           sessionID.String(),
			"score":                strconv.Itoa(score),
			"consecutive_failures": strconv.Itoa(state.ConsecutiveFailures),
			"message":              state.SupportiveMessage,
		}))
		log.Debug("rescue mode triggered",
			slog.String("user_id", userID.String()),
			slog.Int("consecutive_failures", state.ConsecutiveFailures),
			slog.Int("score", score))
		return state, nil
	}

	log.Debug("pronunciation failure recorded",
		slog.String("user_id", userID.String()),
		slog.Int("consecutive_failures", state.ConsecutiveFailures),
		slog.Bool("rescue_active", state.IsActive))
	return state, nil
}

// RecordImprovement implements RescueService.RecordImprovement
func (s *rescueServiceImpl) RecordImprovement(
	ctx context.Context,
	userID uuid.UUID,
	score int,
	passedWithRescue bool,
) (*domain.RescueModeState, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	unlock := s.locks.Lock(userID)
	defer unlock()

	state, err := s.rescues.Get(ctx, userID)
	if err != nil {
		if store.IsNotFoundError(err) {
			log.Warn("improvement for user without rescue state ignored",
				slog.String("user_id", userID.String()))
			return nil, nil
		}
		return nil, service.NewError("record_improvement", "failed to get rescue state", err)
	}

	now := s.timeFunc()
	state.ConsecutiveFailures = 0
	state.UpdatedAt = now

	recovered := false
	var elapsed time.Duration
	if state.IsActive && passedWithRescue {
		elapsed = state.TimeInRescue(now)
		if err := state.Deactivate(now); err != nil {
			return nil, service.NewError("record_improvement", "failed to deactivate rescue mode", err)
		}
		recovered = true
	}

	if err := s.rescues.Save(ctx, state); err != nil {
		log.Error("failed to save rescue state",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, service.NewError("record_improvement", "failed to save rescue state", err)
	}

	if recovered {
		s.emitter.Emit(events.NewEvent(events.EventRescueModeUserImproved, userID, map[string]string{
			"score":             strconv.Itoa(score),
			"seconds_in_rescue": strconv.Itoa(int(elapsed.Seconds())),
		}))
	}

	log.Debug("pronunciation improvement recorded",
		slog.String("user_id", userID.String()),
		slog.Int("score", score),
		slog.Bool("recovered", recovered))
	return state, nil
}

// CurrentPassThreshold implements RescueService.CurrentPassThreshold
func (s *rescueServiceImpl) CurrentPassThreshold(ctx context.Context, userID uuid.UUID) (int, error) {
	state, err := s.rescues.Get(ctx, userID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return s.cfg.NormalPassThreshold, nil
		}
		return 0, service.NewError("pass_threshold", "failed to get rescue state", err)
	}
	if state.IsActive {
		return s.cfg.LoweredPassThreshold, nil
	}
	return s.cfg.NormalPassThreshold, nil
}

// ApplyScoreBonus implements RescueService.ApplyScoreBonus
func (s *rescueServiceImpl) ApplyScoreBonus(ctx context.Context, userID uuid.UUID, rawScore int) (int, error) {
	if !s.cfg.BonusEnabled {
		return rawScore, nil
	}

	state, err := s.rescues.Get(ctx, userID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return rawScore, nil
		}
		return 0, service.NewError("apply_score_bonus", "failed to get rescue state", err)
	}
	if !state.IsActive {
		return rawScore, nil
	}

	boosted := rawScore + s.cfg.ScoreBonus
	if boosted > 100 {
		boosted = 100
	}

	log := logger.FromContextOrDefault(ctx, s.logger)
	log.Debug("rescue score bonus applied",
		slog.String("user_id", userID.String()),
		slog.Int("raw_score", rawScore),
		slog.Int("boosted_score", boosted))
	return boosted, nil
}

// Exit implements RescueService.Exit
func (s *rescueServiceImpl) Exit(ctx context.Context, userID uuid.UUID) (*domain.RescueModeState, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	unlock := s.locks.Lock(userID)
	defer unlock()

	state, err := s.rescues.Get(ctx, userID)
	if err != nil {
		if store.IsNotFoundError(err) {
			log.Warn("exit for user without rescue state ignored",
				slog.String("user_id", userID.String()))
			return nil, nil
		}
		return nil, service.NewError("exit_rescue", "failed to get rescue state", err)
	}

	if !state.IsActive {
		log.Debug("exit ignored, rescue mode not active",
			slog.String("user_id", userID.String()))
		return state, nil
	}

	now := s.timeFunc()
	elapsed := state.TimeInRescue(now)
	if err := state.Deactivate(now); err != nil {
		return nil, service.NewError("exit_rescue", "failed to deactivate rescue mode", err)
	}

	if err := s.rescues.Save(ctx, state); err != nil {
		log.Error("failed to save rescue state",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, service.NewError("exit_rescue", "failed to save rescue state", err)
	}

	s.emitter.Emit(events.NewEvent(events.EventRescueModeExited, userID, map[string]string{
		"seconds_in_rescue": strconv.Itoa(int(elapsed.Seconds())),
	}))

	log.Debug("rescue mode exited on request",
		slog.String("user_id", userID.String()),
		slog.Duration("time_in_rescue", elapsed))
	return state, nil
}

// State implements RescueService.State
func (s *rescueServiceImpl) State(ctx context.Context, userID uuid.UUID) (*domain.RescueModeState, error) {
	state, err := s.rescues.Get(ctx, userID)
	if err != nil {
		if !store.IsNotFoundError(err) {
			return nil, service.NewError("get_rescue_state", "failed to get rescue state", err)
		}
		state, err = domain.NewRescueModeState(userID)
		if err != nil {
			return nil, service.NewError("get_rescue_state", "failed to create rescue state", err)
		}
	}
	return state, nil
}

// Stats implements RescueService.Stats
func (s *rescueServiceImpl) Stats(ctx context.Context, userID uuid.UUID) (*Stats, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	history, err := s.eventLog.ListByType(ctx, userID,
		events.EventRescueModeTriggered,
		events.EventRescueModeUserImproved,
		events.EventRescueModeExited,
	)
	if err != nil {
		return nil, service.NewError("rescue_stats", "failed to list rescue events", err)
	}

	stats := &Stats{}
	var totalSeconds float64
	var samples int
	for _, event := range history {
		switch event.Type {
		case events.EventRescueModeTriggered:
			stats.Triggers++
		case events.EventRescueModeUserImproved:
			stats.Improvements++
			seconds, err := strconv.ParseFloat(event.Payload["seconds_in_rescue"], 64)
			if err != nil {
				log.Warn("malformed rescue event payload skipped",
					slog.String("event_id", event.ID.String()),
					slog.String("error", err.Error()))
				continue
			}
			totalSeconds += seconds
			samples++
		case events.EventRescueModeExited:
			stats.ManualExits++
		}
	}

	if stats.Triggers > 0 {
		stats.SuccessRate = float64(stats.Improvements) / float64(stats.Triggers)
	}
	if samples > 0 {
		stats.AvgSecondsToImprove = totalSeconds / float64(samples)
	}
	return stats, nil
}

// pickMessage returns a random supportive message from the configured pool.
func (s *rescueServiceImpl) pickMessage() string {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return s.cfg.Messages[s.rng.Intn(len(s.cfg.Messages))]
}
