package task

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/lexibird/lexibird-api/internal/config"
	"github.com/lexibird/lexibird-api/internal/domain"
	"github.com/lexibird/lexibird-api/internal/events"
	"github.com/lexibird/lexibird-api/internal/service/progress"
	"github.com/lexibird/lexibird-api/internal/store"
)

// Flusher persists dirty in-memory state. The write-behind persister
// satisfies it.
type Flusher interface {
	Flush(ctx context.Context) error
}

// RankingRefresher rebuilds the cross-user accuracy ranking.
type RankingRefresher interface {
	RefreshRanking(ctx context.Context) (*progress.RankingSnapshot, error)
}

// Scheduler owns the periodic background jobs. Jobs run on the gocron
// scheduler's goroutines under a shared context that Stop cancels; each
// job reports failures through the logger rather than aborting the
// schedule.
type Scheduler struct {
	scheduler *gocron.Scheduler
	cancel    context.CancelFunc

	flusher  Flusher
	sessions store.SessionStore
	users    store.UserStore
	eventLog store.EventStore
	ranking  RankingRefresher

	autosaveEvery time.Duration
	cfg           config.TaskConfig
	logger        *slog.Logger
}

// NewScheduler creates a Scheduler with all jobs registered but unstarted.
func NewScheduler(
	flusher Flusher,
	sessions store.SessionStore,
	users store.UserStore,
	eventLog store.EventStore,
	ranking RankingRefresher,
	autosaveEvery time.Duration,
	cfg config.TaskConfig,
	logger *slog.Logger,
) *Scheduler {
	if flusher == nil {
		panic("flusher cannot be nil")
	}
	if sessions == nil {
		panic("session store cannot be nil")
	}
	if users == nil {
		panic("user store cannot be nil")
	}
	if eventLog == nil {
		panic("event log cannot be nil")
	}
	if ranking == nil {
		panic("ranking refresher cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}

	return &Scheduler{
		scheduler:     gocron.NewScheduler(time.UTC),
		flusher:       flusher,
		sessions:      sessions,
		users:         users,
		eventLog:      eventLog,
		ranking:       ranking,
		autosaveEvery: autosaveEvery,
		cfg:           cfg,
		logger:        logger.With(slog.String("component", "task_scheduler")),
	}
}

// Start schedules every job on its configured interval and begins running
// them in the background.
func (s *Scheduler) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	jobs := []struct {
		name     string
		interval time.Duration
		run      func(context.Context)
	}{
		{"autosave", s.autosaveEvery, s.autosave},
		{"session_reaper", s.cfg.ReaperInterval, s.reapSessions},
		{"activity_report", s.cfg.AnalyticsInterval, s.reportActivity},
		{"ranking_refresh", s.cfg.RankingInterval, s.refreshRanking},
	}

	for _, job := range jobs {
		run := job.run
		if _, err := s.scheduler.Every(job.interval).Do(func() { run(ctx) }); err != nil {
			cancel()
			return fmt.Errorf("failed to schedule %s job: %w", job.name, err)
		}
	}

	s.scheduler.StartAsync()
	s.logger.Info("background jobs started",
		slog.Duration("autosave_every", s.autosaveEvery),
		slog.Duration("reaper_every", s.cfg.ReaperInterval),
		slog.Duration("report_every", s.cfg.AnalyticsInterval),
		slog.Duration("ranking_every", s.cfg.RankingInterval))
	return nil
}

// Stop cancels the job context and halts the scheduler. Jobs already
// running observe the cancellation through their context.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.scheduler.Stop()
	s.logger.Info("background jobs stopped")
}

func (s *Scheduler) autosave(ctx context.Context) {
	if err := s.flusher.Flush(ctx); err != nil {
		s.logger.Error("autosave flush failed", "error", err)
		return
	}
	s.logger.Debug("autosave flush completed")
}

// reapSessions deletes completed sessions past their retention and
// in-progress sessions abandoned longer than the configured age.
func (s *Scheduler) reapSessions(ctx context.Context) {
	sessions, err := s.sessions.ListAll(ctx)
	if err != nil {
		s.logger.Error("session reaper failed to list sessions", "error", err)
		return
	}

	now := time.Now().UTC()
	var reaped int
	for _, session := range sessions {
		var expired bool
		switch {
		case session.Status == domain.SessionStatusCompleted && session.CompletedAt != nil:
			expired = now.Sub(*session.CompletedAt) > s.cfg.CompletedSessionTTL
		case session.Status == domain.SessionStatusInProgress:
			expired = now.Sub(session.StartedAt) > s.cfg.AbandonedSessionTTL
		}
		if !expired {
			continue
		}

		if err := s.sessions.Delete(ctx, session.ID); err != nil {
			s.logger.Error("failed to delete expired session",
				"error", err,
				"session_id", session.ID)
			continue
		}
		reaped++
	}

	if reaped > 0 {
		s.logger.Info("expired sessions reaped",
			slog.Int("count", reaped),
			slog.Int("scanned", len(sessions)))
	}
}

// reportActivity replays the event log and logs aggregate counts. The
// numbers land in the structured logs where the ops tooling picks them up.
func (s *Scheduler) reportActivity(ctx context.Context) {
	users, err := s.users.ListAll(ctx)
	if err != nil {
		s.logger.Error("activity report failed to list users", "error", err)
		return
	}

	var created, completed, rescueTriggers, rescueRecoveries int
	for _, user := range users {
		userEvents, err := s.eventLog.ListByUser(ctx, user.ID)
		if err != nil {
			s.logger.Error("activity report failed to list events",
				"error", err,
				"user_id", user.ID)
			continue
		}
		for _, event := range userEvents {
			switch event.Type {
			case events.EventReviewSessionCreated:
				created++
			case events.EventReviewSessionCompleted:
				completed++
			case events.EventRescueModeTriggered:
				rescueTriggers++
			case events.EventRescueModeUserImproved:
				rescueRecoveries++
			}
		}
	}

	s.logger.Info("activity report",
		slog.Int("users", len(users)),
		slog.Int("sessions_created", created),
		slog.Int("sessions_completed", completed),
		slog.Int("rescue_triggers", rescueTriggers),
		slog.Int("rescue_recoveries", rescueRecoveries))
}

func (s *Scheduler) refreshRanking(ctx context.Context) {
	snapshot, err := s.ranking.RefreshRanking(ctx)
	if err != nil {
		s.logger.Error("ranking refresh failed", "error", err)
		return
	}
	s.logger.Debug("ranking refreshed", slog.Int("entries", len(snapshot.Entries)))
}
