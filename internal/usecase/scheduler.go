package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"IndicatorsQueue/internal/domain"
	"IndicatorsQueue/internal/metrics"
	"IndicatorsQueue/internal/ports"
)

// ErrRunInProgress is returned when another rebuild holds the run lock.
var ErrRunInProgress = errors.New("queue rebuild already in progress")

const runLockKey = "indicators-queue:rebuild"

// Scheduler wires the cron driver with the queue updater and makes sure only
// one rebuild runs at a time.
type Scheduler struct {
	driver  ports.Scheduler
	updater *Updater
	lock    ports.RunLock
	ttl     time.Duration
	logger  *slog.Logger

	local sync.Mutex
}

// NewScheduler returns a helper to start/stop recurring rebuilds. A nil lock
// falls back to an in-process mutex.
func NewScheduler(driver ports.Scheduler, updater *Updater, lock ports.RunLock, ttl time.Duration, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Scheduler{driver: driver, updater: updater, lock: lock, ttl: ttl, logger: logger}
}

// RunOnce performs a single guarded rebuild.
func (s *Scheduler) RunOnce(ctx context.Context) (domain.RunResult, error) {
	if s.updater == nil {
		return domain.RunResult{}, fmt.Errorf("updater is not configured")
	}

	release, err := s.acquire(ctx)
	if err != nil {
		return domain.RunResult{}, err
	}
	defer release()

	return s.updater.Update(ctx)
}

func (s *Scheduler) acquire(ctx context.Context) (func(), error) {
	if s.lock == nil {
		if !s.local.TryLock() {
			return nil, ErrRunInProgress
		}
		return s.local.Unlock, nil
	}

	ok, err := s.lock.TryLock(ctx, runLockKey, s.ttl)
	if err != nil {
		return nil, fmt.Errorf("acquire run lock: %w", err)
	}
	if !ok {
		return nil, ErrRunInProgress
	}
	return func() {
		// released with a fresh context so a cancelled run still frees the lock
		unlockCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.lock.Unlock(unlockCtx, runLockKey); err != nil {
			s.logger.Error("release run lock", "error", err)
		}
	}, nil
}

// Start registers the rebuild with the provided scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.updater == nil {
		return nil
	}

	job := func(trigger time.Time) {
		s.logger.Info("scheduled rebuild triggered", "at", trigger)
		_, err := s.RunOnce(ctx)
		switch {
		case errors.Is(err, ErrRunInProgress):
			metrics.RecordSkipped()
			s.logger.Warn("scheduled rebuild skipped, another run is active")
		case err != nil:
			s.logger.Error("scheduled rebuild failed", "error", err)
		}
	}

	return s.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}
