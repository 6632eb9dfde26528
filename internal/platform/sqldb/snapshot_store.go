package sqldb

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/lexibird/lexibird-api/internal/domain"
	"github.com/lexibird/lexibird-api/internal/events"
	"github.com/lexibird/lexibird-api/internal/platform/logger"
	"github.com/lexibird/lexibird-api/internal/store"
)

// SnapshotStore writes memory-store snapshots to the database and reads
// them back at startup. The in-memory stores stay authoritative at
// runtime; this store only sees whole collections, so writes replace a
// user's rows rather than patching them. Append-only collections (users,
// events) are inserted with ON CONFLICT DO NOTHING so a re-flush of
// already-persisted rows is a no-op.
type SnapshotStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewSnapshotStore creates a SnapshotStore on an open database handle.
// If logger is nil, a default logger will be used.
func NewSnapshotStore(db *sqlx.DB, logger *slog.Logger) *SnapshotStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &SnapshotStore{
		db:     db,
		logger: logger.With(slog.String("component", "snapshot_store")),
	}
}

// inTx runs fn inside a transaction, committing on success and rolling
// back on failure. Begin and commit failures are wrapped with
// store.ErrTransactionFailed.
func (s *SnapshotStore) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin: %w", store.ErrTransactionFailed, err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.logger.Error("failed to roll back transaction",
				slog.String("error", rbErr.Error()))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %w", store.ErrTransactionFailed, err)
	}
	return nil
}

// SaveUsers inserts users that are not yet persisted. Rows whose ID
// already exists are left untouched; users never change after creation.
func (s *SnapshotStore) SaveUsers(ctx context.Context, users []*domain.User) error {
	if len(users) == 0 {
		return nil
	}
	log := logger.FromContextOrDefault(ctx, s.logger)

	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		query := tx.Rebind(`
			INSERT INTO users (id, device_id, created_at, updated_at)
			VALUES (?, ?, ?, ?)
			ON CONFLICT (id) DO NOTHING
		`)
		for _, user := range users {
			row := userToRow(user)
			if _, err := tx.ExecContext(ctx, query,
				row.ID, row.DeviceID, row.CreatedAt, row.UpdatedAt); err != nil {
				return fmt.Errorf("failed to insert user %s: %w", row.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		log.Error("failed to save users",
			slog.String("error", err.Error()),
			slog.Int("count", len(users)))
		return store.NewStoreError("user", "save", "failed to persist users", err)
	}

	log.Debug("users saved", slog.Int("count", len(users)))
	return nil
}

// ReplaceKeywords swaps the entire keyword catalog for the given set.
// Keywords are global, not per-user.
func (s *SnapshotStore) ReplaceKeywords(ctx context.Context, keywords []*domain.Keyword) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM keywords`); err != nil {
			return fmt.Errorf("failed to clear keywords: %w", err)
		}

		query := tx.Rebind(`
			INSERT INTO keywords (id, topic, word, image_url, audio_url, created_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`)
		for _, keyword := range keywords {
			row := keywordToRow(keyword)
			if _, err := tx.ExecContext(ctx, query,
				row.ID, row.Topic, row.Word, row.ImageURL, row.AudioURL, row.CreatedAt); err != nil {
				return fmt.Errorf("failed to insert keyword %s: %w", row.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		log.Error("failed to replace keywords",
			slog.String("error", err.Error()),
			slog.Int("count", len(keywords)))
		return store.NewStoreError("keyword", "replace", "failed to persist keywords", err)
	}

	log.Debug("keywords replaced", slog.Int("count", len(keywords)))
	return nil
}

// ReplaceStates swaps one user's SRS states for the given set.
func (s *SnapshotStore) ReplaceStates(
	ctx context.Context,
	userID uuid.UUID,
	states []*domain.KeywordSRSState,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		deleteQuery := tx.Rebind(`DELETE FROM keyword_srs_states WHERE user_id = ?`)
		if _, err := tx.ExecContext(ctx, deleteQuery, userID); err != nil {
			return fmt.Errorf("failed to clear srs states: %w", err)
		}

		query := tx.Rebind(`
			INSERT INTO keyword_srs_states (
				user_id, keyword_id, level, status, consecutive_correct,
				attempts, correct, last_result, last_reviewed_at, next_review_at,
				created_at, updated_at
			)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		for _, state := range states {
			row := stateToRow(state)
			if _, err := tx.ExecContext(ctx, query,
				row.UserID, row.KeywordID, row.Level, row.Status, row.ConsecutiveCorrect,
				row.Attempts, row.Correct, row.LastResult, row.LastReviewedAt, row.NextReviewAt,
				row.CreatedAt, row.UpdatedAt); err != nil {
				return fmt.Errorf("failed to insert srs state for keyword %s: %w", row.KeywordID, err)
			}
		}
		return nil
	})
	if err != nil {
		log.Error("failed to replace srs states",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.Int("count", len(states)))
		return store.NewStoreError("srs_state", "replace", "failed to persist srs states", err)
	}

	log.Debug("srs states replaced",
		slog.String("user_id", userID.String()),
		slog.Int("count", len(states)))
	return nil
}

// ReplaceItems swaps one user's review items for the given set.
func (s *SnapshotStore) ReplaceItems(
	ctx context.Context,
	userID uuid.UUID,
	items []*domain.ReviewItem,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		deleteQuery := tx.Rebind(`DELETE FROM review_items WHERE user_id = ?`)
		if _, err := tx.ExecContext(ctx, deleteQuery, userID); err != nil {
			return fmt.Errorf("failed to clear review items: %w", err)
		}

		query := tx.Rebind(`
			INSERT INTO review_items (
				user_id, keyword_id, interval_days, ease_factor, review_count,
				next_review_at, created_at, updated_at
			)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`)
		for _, item := range items {
			row := itemToRow(item)
			if _, err := tx.ExecContext(ctx, query,
				row.UserID, row.KeywordID, row.IntervalDays, row.EaseFactor, row.ReviewCount,
				row.NextReviewAt, row.CreatedAt, row.UpdatedAt); err != nil {
				return fmt.Errorf("failed to insert review item for keyword %s: %w", row.KeywordID, err)
			}
		}
		return nil
	})
	if err != nil {
		log.Error("failed to replace review items",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.Int("count", len(items)))
		return store.NewStoreError("review_item", "replace", "failed to persist review items", err)
	}

	log.Debug("review items replaced",
		slog.String("user_id", userID.String()),
		slog.Int("count", len(items)))
	return nil
}

// ReplaceSessions swaps one user's review sessions for the given set.
func (s *SnapshotStore) ReplaceSessions(
	ctx context.Context,
	userID uuid.UUID,
	sessions []*domain.ReviewSession,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		deleteQuery := tx.Rebind(`DELETE FROM review_sessions WHERE user_id = ?`)
		if _, err := tx.ExecContext(ctx, deleteQuery, userID); err != nil {
			return fmt.Errorf("failed to clear review sessions: %w", err)
		}

		query := tx.Rebind(`
			INSERT INTO review_sessions (
				id, user_id, items, current_item_index, completed_items,
				correct_answers, instantly_got_it, had_to_think, forgot,
				target_duration_ms, status, started_at, completed_at, actual_duration_ms
			)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		for _, session := range sessions {
			row, err := sessionToRow(session)
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, query,
				row.ID, row.UserID, row.Items, row.CurrentItemIndex, row.CompletedItems,
				row.CorrectAnswers, row.InstantlyGotIt, row.HadToThink, row.Forgot,
				row.TargetDurationMs, row.Status, row.StartedAt, row.CompletedAt,
				row.ActualDurationMs); err != nil {
				return fmt.Errorf("failed to insert session %s: %w", row.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		log.Error("failed to replace review sessions",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.Int("count", len(sessions)))
		return store.NewStoreError("review_session", "replace", "failed to persist review sessions", err)
	}

	log.Debug("review sessions replaced",
		slog.String("user_id", userID.String()),
		slog.Int("count", len(sessions)))
	return nil
}

// ReplaceRescueState swaps one user's rescue state row.
func (s *SnapshotStore) ReplaceRescueState(ctx context.Context, state *domain.RescueModeState) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		deleteQuery := tx.Rebind(`DELETE FROM rescue_states WHERE user_id = ?`)
		if _, err := tx.ExecContext(ctx, deleteQuery, state.UserID); err != nil {
			return fmt.Errorf("failed to clear rescue state: %w", err)
		}

		query := tx.Rebind(`
			INSERT INTO rescue_states (
				user_id, is_active, consecutive_failures, total_attempts,
				triggered_at, supportive_message, learning_phase, created_at, updated_at
			)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		row := rescueToRow(state)
		if _, err := tx.ExecContext(ctx, query,
			row.UserID, row.IsActive, row.ConsecutiveFailures, row.TotalAttempts,
			row.TriggeredAt, row.SupportiveMessage, row.LearningPhase,
			row.CreatedAt, row.UpdatedAt); err != nil {
			return fmt.Errorf("failed to insert rescue state: %w", err)
		}
		return nil
	})
	if err != nil {
		log.Error("failed to replace rescue state",
			slog.String("error", err.Error()),
			slog.String("user_id", state.UserID.String()))
		return store.NewStoreError("rescue_state", "replace", "failed to persist rescue state", err)
	}

	log.Debug("rescue state replaced", slog.String("user_id", state.UserID.String()))
	return nil
}

// AppendEvents inserts events that are not yet persisted. Events are
// immutable, so rows whose ID already exists are left untouched.
func (s *SnapshotStore) AppendEvents(ctx context.Context, evts []events.Event) error {
	if len(evts) == 0 {
		return nil
	}
	log := logger.FromContextOrDefault(ctx, s.logger)

	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		query := tx.Rebind(`
			INSERT INTO events (id, user_id, type, payload, occurred_at)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT (id) DO NOTHING
		`)
		for _, event := range evts {
			row, err := eventToRow(event)
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, query,
				row.ID, row.UserID, row.Type, row.Payload, row.OccurredAt); err != nil {
				return fmt.Errorf("failed to insert event %s: %w", row.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		log.Error("failed to append events",
			slog.String("error", err.Error()),
			slog.Int("count", len(evts)))
		return store.NewStoreError("event", "append", "failed to persist events", err)
	}

	log.Debug("events appended", slog.Int("count", len(evts)))
	return nil
}

// LoadUsers reads every persisted user, ordered by ID.
func (s *SnapshotStore) LoadUsers(ctx context.Context) ([]*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var rows []userRow
	query := `SELECT id, device_id, created_at, updated_at FROM users ORDER BY id`
	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		log.Error("failed to load users", slog.String("error", err.Error()))
		return nil, store.NewStoreError("user", "load", "failed to load users", err)
	}

	users := make([]*domain.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, row.toDomain())
	}
	return users, nil
}

// LoadKeywords reads the whole keyword catalog, ordered by ID.
func (s *SnapshotStore) LoadKeywords(ctx context.Context) ([]*domain.Keyword, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var rows []keywordRow
	query := `SELECT id, topic, word, image_url, audio_url, created_at FROM keywords ORDER BY id`
	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		log.Error("failed to load keywords", slog.String("error", err.Error()))
		return nil, store.NewStoreError("keyword", "load", "failed to load keywords", err)
	}

	keywords := make([]*domain.Keyword, 0, len(rows))
	for _, row := range rows {
		keywords = append(keywords, row.toDomain())
	}
	return keywords, nil
}

// LoadStates reads every persisted SRS state across all users.
func (s *SnapshotStore) LoadStates(ctx context.Context) ([]*domain.KeywordSRSState, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var rows []stateRow
	query := `
		SELECT user_id, keyword_id, level, status, consecutive_correct,
		       attempts, correct, last_result, last_reviewed_at, next_review_at,
		       created_at, updated_at
		FROM keyword_srs_states
		ORDER BY user_id, keyword_id
	`
	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		log.Error("failed to load srs states", slog.String("error", err.Error()))
		return nil, store.NewStoreError("srs_state", "load", "failed to load srs states", err)
	}

	states := make([]*domain.KeywordSRSState, 0, len(rows))
	for _, row := range rows {
		states = append(states, row.toDomain())
	}
	return states, nil
}

// LoadItems reads every persisted review item across all users.
func (s *SnapshotStore) LoadItems(ctx context.Context) ([]*domain.ReviewItem, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var rows []itemRow
	query := `
		SELECT user_id, keyword_id, interval_days, ease_factor, review_count,
		       next_review_at, created_at, updated_at
		FROM review_items
		ORDER BY user_id, keyword_id
	`
	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		log.Error("failed to load review items", slog.String("error", err.Error()))
		return nil, store.NewStoreError("review_item", "load", "failed to load review items", err)
	}

	items := make([]*domain.ReviewItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toDomain())
	}
	return items, nil
}

// LoadSessions reads every persisted review session across all users.
func (s *SnapshotStore) LoadSessions(ctx context.Context) ([]*domain.ReviewSession, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var rows []sessionRow
	query := `
		SELECT id, user_id, items, current_item_index, completed_items,
		       correct_answers, instantly_got_it, had_to_think, forgot,
		       target_duration_ms, status, started_at, completed_at, actual_duration_ms
		FROM review_sessions
		ORDER BY started_at, id
	`
	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		log.Error("failed to load review sessions", slog.String("error", err.Error()))
		return nil, store.NewStoreError("review_session", "load", "failed to load review sessions", err)
	}

	sessions := make([]*domain.ReviewSession, 0, len(rows))
	for _, row := range rows {
		session, err := row.toDomain()
		if err != nil {
			log.Error("failed to decode review session",
				slog.String("error", err.Error()),
				slog.String("session_id", row.ID.String()))
			return nil, store.NewStoreError("review_session", "load", "failed to decode review session", err)
		}
		sessions = append(sessions, session)
	}
	return sessions, nil
}

// LoadRescueStates reads every persisted rescue state, one per user.
func (s *SnapshotStore) LoadRescueStates(ctx context.Context) ([]*domain.RescueModeState, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var rows []rescueRow
	query := `
		SELECT user_id, is_active, consecutive_failures, total_attempts,
		       triggered_at, supportive_message, learning_phase, created_at, updated_at
		FROM rescue_states
		ORDER BY user_id
	`
	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		log.Error("failed to load rescue states", slog.String("error", err.Error()))
		return nil, store.NewStoreError("rescue_state", "load", "failed to load rescue states", err)
	}

	states := make([]*domain.RescueModeState, 0, len(rows))
	for _, row := range rows {
		states = append(states, row.toDomain())
	}
	return states, nil
}

// LoadEvents reads the full event log in occurrence order. The order is
// what makes event replay deterministic, so ties on occurred_at fall back
// to the event ID.
func (s *SnapshotStore) LoadEvents(ctx context.Context) ([]events.Event, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var rows []eventRow
	query := `
		SELECT id, user_id, type, payload, occurred_at
		FROM events
		ORDER BY occurred_at, id
	`
	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		log.Error("failed to load events", slog.String("error", err.Error()))
		return nil, store.NewStoreError("event", "load", "failed to load events", err)
	}

	evts := make([]events.Event, 0, len(rows))
	for _, row := range rows {
		event, err := row.toDomain()
		if err != nil {
			log.Error("failed to decode event",
				slog.String("error", err.Error()),
				slog.String("event_id", row.ID.String()))
			return nil, store.NewStoreError("event", "load", "failed to decode event", err)
		}
		evts = append(evts, event)
	}
	return evts, nil
}
