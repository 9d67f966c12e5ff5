package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"IndicatorsQueue/internal/config"
	"IndicatorsQueue/internal/domain"
	"IndicatorsQueue/internal/infrastructure/audit"
	"IndicatorsQueue/internal/infrastructure/regions"
	"IndicatorsQueue/internal/infrastructure/scheduler"
	"IndicatorsQueue/internal/infrastructure/storage"
	"IndicatorsQueue/internal/infrastructure/telegram"
	"IndicatorsQueue/internal/logging"
	"IndicatorsQueue/internal/ports"
	"IndicatorsQueue/internal/server"
	"IndicatorsQueue/internal/usecase"
)

const shutdownTimeout = 30 * time.Second

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg       config.Config
	logger    *slog.Logger
	db        *sqlx.DB
	redis     *redis.Client
	updater   *usecase.Updater
	scheduler *usecase.Scheduler
}

// New connects infrastructure and builds the rebuild use case.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}

	queueSettings := config.NewQueueSettingsProvider(cfg.Path(), cfg.Queue)
	if err := queueSettings.Init(); err != nil {
		return nil, fmt.Errorf("queue settings: %w", err)
	}
	if err := scheduler.Validate(cfg.Scheduler.CronExpression); err != nil {
		return nil, err
	}

	dict, err := regions.Load(cfg.Regions.DictionaryPath)
	if err != nil {
		return nil, err
	}
	baseLogger.Info("region dictionary loaded", "path", cfg.Regions.DictionaryPath, "regions", len(dict.Names()))

	db, err := storage.Open(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := storage.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	a := &Application{cfg: cfg, logger: baseLogger, db: db}

	var notifier ports.Notifier
	if cfg.Notifications.Telegram.BotToken != "" && cfg.Notifications.Telegram.ChatID != "" {
		notifier = telegram.NewNotifier(cfg.Notifications.Telegram)
	}

	a.updater = usecase.NewUpdater(usecase.UpdaterDeps{
		Settings: queueSettings,
		Scores:   storage.NewScoreSource(db),
		Tenders:  storage.NewTenderRepository(db),
		Regions:  dict,
		Audit:    audit.NewClient(cfg.Audit),
		Queue:    storage.NewQueueRepository(db),
		History:  storage.NewHistoryRepository(db),
		Notifier: notifier,
		Logger:   baseLogger.With("component", "updater"),
	})

	var lock ports.RunLock
	if cfg.Redis.Addr != "" {
		client, err := scheduler.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		a.redis = client
		lock = scheduler.NewRedisLock(client, baseLogger.With("component", "lock"))
	} else {
		baseLogger.Warn("redis is not configured, run lock is process-local")
	}

	a.scheduler = usecase.NewScheduler(
		scheduler.NewCronScheduler(cfg.Scheduler.CronExpression, cfg.Scheduler.Location()),
		a.updater,
		lock,
		cfg.Scheduler.LockTTL,
		baseLogger.With("component", "scheduler"),
	)

	return a, nil
}

// RunOnce performs a single guarded rebuild.
func (a *Application) RunOnce(ctx context.Context) (domain.RunResult, error) {
	return a.scheduler.RunOnce(ctx)
}

// Serve runs the cron scheduler and the admin server until ctx is cancelled.
func (a *Application) Serve(ctx context.Context) error {
	srv := server.New(a.cfg.HTTP.Addr, a.scheduler, a.updater, a.logger.With("component", "server"))

	if err := a.scheduler.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	a.logger.Info("scheduler started",
		"cron", a.cfg.Scheduler.CronExpression,
		"timezone", a.cfg.Scheduler.Location().String())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.ListenAndServe)
	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		return errors.Join(
			srv.Shutdown(shutdownCtx),
			a.scheduler.Stop(shutdownCtx),
		)
	})

	return g.Wait()
}

// Close releases database and Redis connections.
func (a *Application) Close() error {
	var errs []error
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	if a.db != nil {
		errs = append(errs, a.db.Close())
	}
	return errors.Join(errs...)
}
