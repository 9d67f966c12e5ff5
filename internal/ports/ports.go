package ports

import (
	"context"
	"time"

	"IndicatorsQueue/internal/config"
	"IndicatorsQueue/internal/domain"
)

// ScoreSource returns the current snapshot of scored tenders from analytics.
type ScoreSource interface {
	FetchScores(ctx context.Context) ([]domain.ScoredTender, error)
}

// TenderRepository looks tenders up by their outer identifier.
type TenderRepository interface {
	FindByOuterID(ctx context.Context, outerID string) (domain.Tender, error)
}

// RegionDictionary maps raw region labels to canonical names.
// The boolean is false when the label is unknown.
type RegionDictionary interface {
	Canonicalize(raw string) (string, bool)
}

// AuditService lists tenders currently under active monitoring.
type AuditService interface {
	ActiveMonitorings(ctx context.Context) ([]domain.Monitoring, error)
}

// SettingsProvider supplies queue settings; Init refreshes them before each run.
type SettingsProvider interface {
	Init() error
	Settings() config.QueueConfig
}

// QueueSink stores the published queue. It is replaced wholesale on every run.
type QueueSink interface {
	DeleteAll(ctx context.Context) error
	SaveAll(ctx context.Context, items []*domain.QueueItem) error
}

// HistoryStore records every published queue.
type HistoryStore interface {
	MaxID(ctx context.Context) (int64, error)
	Save(ctx context.Context, record domain.HistoryRecord) (domain.HistoryRecord, error)
}

// Notifier delivers run summaries to operators.
type Notifier interface {
	PublishRunSummary(ctx context.Context, result domain.RunResult) error
}

// RunLock guarantees a single active rebuild across instances.
type RunLock interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context, key string) error
}

// Scheduler controls when rebuilds execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
