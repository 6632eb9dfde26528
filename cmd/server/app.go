package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/jmoiron/sqlx"

	"github.com/lexibird/lexibird-api/internal/config"
	"github.com/lexibird/lexibird-api/internal/domain/srs"
	"github.com/lexibird/lexibird-api/internal/events"
	"github.com/lexibird/lexibird-api/internal/persist"
	"github.com/lexibird/lexibird-api/internal/platform/memstore"
	"github.com/lexibird/lexibird-api/internal/platform/sqldb"
	"github.com/lexibird/lexibird-api/internal/service/auth"
	"github.com/lexibird/lexibird-api/internal/service/progress"
	"github.com/lexibird/lexibird-api/internal/service/rescue"
	"github.com/lexibird/lexibird-api/internal/service/review"
	"github.com/lexibird/lexibird-api/internal/task"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sqlx.DB

	// Memory stores, the request-path source of truth
	userStore    *memstore.MemoryUserStore
	keywordStore *memstore.MemoryKeywordStore
	stateStore   *memstore.MemoryStateStore
	itemStore    *memstore.MemoryReviewItemStore
	sessionStore *memstore.MemorySessionStore
	rescueStore  *memstore.MemoryRescueStore
	eventStore   *memstore.MemoryEventStore

	// Write-behind persistence
	persister *persist.Persister

	// Service interfaces
	jwtService      auth.JWTService
	reviewService   review.ReviewService
	rescueService   rescue.RescueService
	progressService progress.ProgressService

	// Event system
	emitter *events.ChannelEmitter

	// Background jobs
	scheduler *task.Scheduler
}

// newApplication builds the full dependency graph: the snapshot database,
// memory stores hydrated from it, the write-behind persister, the domain
// services, the event pipeline, and the background job scheduler. Everything
// except the HTTP server is running when it returns.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	appLogger *slog.Logger,
) (*application, error) {
	app := &application{
		config: cfg,
		logger: appLogger,
	}

	// JWT service first: it only validates configuration and holds no
	// resources, so failing here leaves nothing to unwind.
	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}

	db, err := sqldb.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot database: %w", err)
	}
	app.db = db

	if err := sqldb.RunMigrations(db, cfg.Database.Driver); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	appLogger.Info("Snapshot database ready", "driver", cfg.Database.Driver)

	// Memory stores. The persister that receives their dirty marks reads
	// back out of the same stores, so the notifier is bound after both
	// sides exist.
	binding := &memstore.NotifierBinding{}
	app.userStore = memstore.NewMemoryUserStore(binding, appLogger)
	app.keywordStore = memstore.NewMemoryKeywordStore(binding, appLogger)
	app.stateStore = memstore.NewMemoryStateStore(binding, appLogger)
	app.itemStore = memstore.NewMemoryReviewItemStore(binding, appLogger)
	app.sessionStore = memstore.NewMemorySessionStore(binding, appLogger)
	app.rescueStore = memstore.NewMemoryRescueStore(binding, appLogger)
	app.eventStore = memstore.NewMemoryEventStore(binding, appLogger)

	snapshots := sqldb.NewSnapshotStore(db, appLogger)

	if err := persist.Hydrate(ctx, snapshots, persist.HydrateTargets{
		Users:    app.userStore,
		Keywords: app.keywordStore,
		States:   app.stateStore,
		Items:    app.itemStore,
		Sessions: app.sessionStore,
		Rescue:   app.rescueStore,
		Events:   app.eventStore,
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to hydrate stores from snapshot: %w", err)
	}

	app.persister = persist.NewPersister(snapshots, persist.Sources{
		Users:    app.userStore,
		Keywords: app.keywordStore,
		States:   app.stateStore,
		Items:    app.itemStore,
		Sessions: app.sessionStore,
		Rescue:   app.rescueStore,
		Events:   app.eventStore,
	}, cfg.Persist.Debounce, appLogger)
	binding.Bind(app.persister)

	// Event pipeline: services emit, the recorder appends to the durable
	// event log. Subscribe before any service can emit.
	app.emitter = events.NewChannelEmitter(appLogger, events.DefaultBufferSize)
	app.emitter.Subscribe(task.NewEventRecorder(app.eventStore, appLogger))

	locks := memstore.NewUserLocks()

	params := srs.NewDefaultParams()
	levelTable := srs.NewLevelTableStrategy(params)
	sm2 := srs.NewSM2Strategy(params)

	// A configured seed makes shuffles and message picks reproducible.
	// Zero leaves both services clock-seeded.
	var reviewRNG, rescueRNG *rand.Rand
	if cfg.Server.RandomSeed != 0 {
		reviewRNG = rand.New(rand.NewSource(cfg.Server.RandomSeed))
		rescueRNG = rand.New(rand.NewSource(cfg.Server.RandomSeed + 1))
	}

	app.reviewService = review.NewReviewService(
		app.keywordStore,
		app.stateStore,
		app.itemStore,
		app.sessionStore,
		locks,
		levelTable,
		sm2,
		app.emitter,
		reviewRNG,
		appLogger,
	)

	app.rescueService = rescue.NewRescueService(
		app.rescueStore,
		app.eventStore,
		locks,
		cfg.Rescue,
		app.emitter,
		rescueRNG,
		appLogger,
	)

	app.progressService = progress.NewProgressService(
		app.keywordStore,
		app.stateStore,
		app.itemStore,
		app.sessionStore,
		app.userStore,
		locks,
		levelTable,
		appLogger,
	)

	app.scheduler = task.NewScheduler(
		app.persister,
		app.sessionStore,
		app.userStore,
		app.eventStore,
		app.progressService,
		cfg.Persist.AutosaveInterval,
		cfg.Task,
		appLogger,
	)
	if err := app.scheduler.Start(); err != nil {
		app.cleanup(ctx)
		return nil, fmt.Errorf("failed to start background jobs: %w", err)
	}

	appLogger.Info("Application initialized successfully")
	return app, nil
}

// Run starts the application server, handling lifecycle and cleanup.
// It returns an error if the server fails to start or encounters problems.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// cleanup releases application resources in reverse startup order: stop the
// job scheduler, drain the event pipeline into the event log, flush the
// persister, and close the database.
func (app *application) cleanup(ctx context.Context) {
	if app.scheduler != nil {
		app.scheduler.Stop()
	}

	if app.emitter != nil {
		app.emitter.Close()
	}

	if app.persister != nil {
		if err := app.persister.Close(ctx); err != nil {
			app.logger.Error("Final snapshot flush failed", "error", err)
		}
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}
