package app

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"

	"github.com/trackside/livetracker/external/sportsfeed"
	"github.com/trackside/livetracker/internal/config"
	"github.com/trackside/livetracker/internal/domain/lineup"
	"github.com/trackside/livetracker/internal/domain/match"
	"github.com/trackside/livetracker/internal/domain/matchevent"
	"github.com/trackside/livetracker/internal/domain/statistics"
	"github.com/trackside/livetracker/internal/infrastructure/repository/memory"
	"github.com/trackside/livetracker/internal/infrastructure/repository/postgres"
	"github.com/trackside/livetracker/internal/interfaces/httpapi"
	idgen "github.com/trackside/livetracker/internal/platform/id"
	"github.com/trackside/livetracker/internal/platform/logging"
	"github.com/trackside/livetracker/internal/platform/resilience"
	"github.com/trackside/livetracker/internal/platform/scheduler"
	"github.com/trackside/livetracker/internal/usecase"
)

// App bundles the wired service: the HTTP surface, the trigger substrate
// driving the polling lifecycle and the optional database handle.
type App struct {
	Server    *http.Server
	Tracker   *usecase.TrackerService
	Substrate *scheduler.InProcess
	DB        *sqlx.DB
}

type matchStorage struct {
	statuses    match.StatusRepository
	lineups     lineup.Repository
	events      matchevent.Repository
	teamStats   statistics.TeamRepository
	playerStats statistics.PlayerRepository
	wiper       usecase.LiveDataWiper
}

func New(cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if strings.TrimSpace(cfg.HTTPAddr) == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	storage, db, err := newMatchStorage(cfg, logger)
	if err != nil {
		return nil, err
	}

	ids := idgen.NewRandomGenerator()
	guard := usecase.NewLineupGuard(storage.lineups, storage.wiper, ids, logger)
	events := usecase.NewEventReconciler(storage.events, logger)
	stats := usecase.NewStatsReconciler(storage.teamStats, storage.playerStats, logger)

	worker := usecase.NewPollWorker(
		newSnapshotProvider(cfg, logger),
		storage.statuses,
		storage.lineups,
		guard,
		events,
		stats,
		ids,
		logger,
	)

	substrate, err := scheduler.NewInProcess(cfg.SchedulerPoolSize, logger)
	if err != nil {
		closeDB(db, logger)
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	tracker := usecase.NewTrackerService(substrate, memory.NewJobStore(), worker, usecase.TrackerConfig{
		LiveInterval:         cfg.LivePollInterval,
		LiveMaxFirings:       cfg.LivePollMaxFirings,
		PostFinishInterval:   cfg.PostFinishInterval,
		PostFinishMaxFirings: cfg.PostFinishMaxFirings,
		PostFinishCutoff:     cfg.PostFinishCutoff,
	}, logger)

	handler := httpapi.NewHandler(tracker, logger)
	router := httpapi.NewRouter(handler, logger, cfg.CORSAllowedOrigins, cfg.InternalAPIToken)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return &App{
		Server:    server,
		Tracker:   tracker,
		Substrate: substrate,
		DB:        db,
	}, nil
}

// Close stops the trigger substrate and releases the database handle. The
// HTTP server is shut down by the caller so it controls the drain timeout.
func (a *App) Close(logger *logging.Logger) {
	if a == nil {
		return
	}
	if a.Substrate != nil {
		a.Substrate.Close()
	}
	closeDB(a.DB, logger)
}

// newMatchStorage picks the match state store. An empty DB_URL selects the
// in-memory arena, which is enough for a single-instance deployment since
// all live data is rebuilt from the feed on every poll anyway.
func newMatchStorage(cfg config.Config, logger *logging.Logger) (matchStorage, *sqlx.DB, error) {
	if strings.TrimSpace(cfg.DBURL) == "" {
		logger.Info("match state store", "backend", "memory")
		store := memory.NewMatchStore()
		return matchStorage{
			statuses:    store.Statuses,
			lineups:     store.Lineups,
			events:      store.Events,
			teamStats:   store.TeamStats,
			playerStats: store.PlayerStats,
			wiper:       store,
		}, nil, nil
	}

	dbURL := normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary)
	db, err := otelsqlx.Open("postgres", dbURL,
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithDBName(dbNameFromURL(dbURL)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return matchStorage{}, nil, fmt.Errorf("open database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		closeDB(db, logger)
		return matchStorage{}, nil, fmt.Errorf("ping database: %w", err)
	}

	logger.Info("match state store", "backend", "postgres", "db_name", dbNameFromURL(dbURL))
	return matchStorage{
		statuses:    postgres.NewMatchStatusRepository(db),
		lineups:     postgres.NewLineupRepository(db),
		events:      postgres.NewEventRepository(db),
		teamStats:   postgres.NewTeamStatsRepository(db),
		playerStats: postgres.NewPlayerStatsRepository(db),
		wiper:       postgres.NewLiveDataWiper(db),
	}, db, nil
}

func newSnapshotProvider(cfg config.Config, logger *logging.Logger) usecase.SnapshotProvider {
	if !cfg.FeedEnabled {
		logger.Warn("feed disabled, polls will observe absent snapshots", "reason", "FEED_ENABLED=false")
		return absentSnapshotProvider{}
	}

	return sportsfeed.NewClient(sportsfeed.ClientConfig{
		HTTPClient: &http.Client{Timeout: cfg.FeedTimeout},
		BaseURL:    cfg.FeedBaseURL,
		Token:      cfg.FeedToken,
		Timeout:    cfg.FeedTimeout,
		MaxRetries: cfg.FeedMaxRetries,
		Logger:     logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.FeedCircuitEnabled,
			FailureThreshold: cfg.FeedCircuitFailureCount,
			OpenTimeout:      cfg.FeedCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.FeedCircuitHalfOpenMaxReq,
		},
	})
}

// absentSnapshotProvider reports every match as not yet published. It keeps
// local runs working without upstream credentials.
type absentSnapshotProvider struct{}

func (absentSnapshotProvider) Snapshot(context.Context, string) (usecase.Snapshot, bool, error) {
	return usecase.Snapshot{}, false, nil
}

func closeDB(db *sqlx.DB, logger *logging.Logger) {
	if db == nil {
		return
	}
	if err := db.Close(); err != nil && logger != nil {
		logger.Warn("close database", "error", err)
	}
}
