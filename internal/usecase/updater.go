package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"IndicatorsQueue/internal/config"
	"IndicatorsQueue/internal/domain"
	"IndicatorsQueue/internal/metrics"
	"IndicatorsQueue/internal/ports"
	"IndicatorsQueue/internal/ranking"
)

// UpdaterDeps wires all driven adapters into the queue rebuild.
type UpdaterDeps struct {
	Settings ports.SettingsProvider
	Scores   ports.ScoreSource
	Tenders  ports.TenderRepository
	Regions  ports.RegionDictionary
	Audit    ports.AuditService
	Queue    ports.QueueSink
	History  ports.HistoryStore
	Notifier ports.Notifier
	Logger   *slog.Logger
	Clock    func() time.Time
}

// Updater rebuilds the region indicators queue.
type Updater struct {
	settings ports.SettingsProvider
	scores   ports.ScoreSource
	tenders  ports.TenderRepository
	regions  ports.RegionDictionary
	audit    ports.AuditService
	queue    ports.QueueSink
	history  ports.HistoryStore
	notifier ports.Notifier
	logger   *slog.Logger
	clock    func() time.Time

	mu      sync.RWMutex
	lastRun *domain.RunResult
}

// NewUpdater constructs the orchestration component.
func NewUpdater(deps UpdaterDeps) *Updater {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Updater{
		settings: deps.Settings,
		scores:   deps.Scores,
		tenders:  deps.Tenders,
		regions:  deps.Regions,
		audit:    deps.Audit,
		queue:    deps.Queue,
		history:  deps.History,
		notifier: deps.Notifier,
		logger:   logger,
		clock:    clock,
	}
}

// LastRun returns a copy of the most recent successful run, if any.
func (u *Updater) LastRun() (domain.RunResult, bool) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	if u.lastRun == nil {
		return domain.RunResult{}, false
	}
	return *u.lastRun, true
}

// Update runs the whole pipeline: ingest, filter, normalize regions, rank per
// region, reconcile monitorings and publish. The returned error is fatal; a
// failed monitoring lookup is not, it publishes an empty queue instead.
func (u *Updater) Update(ctx context.Context) (domain.RunResult, error) {
	started := time.Now()
	result, err := u.update(ctx)

	status := metrics.StatusSuccess
	switch {
	case err != nil:
		status = metrics.StatusFailed
	case result.MonitoringFailed:
		status = metrics.StatusMonitoringFailed
	}
	metrics.RecordRun(status, time.Since(started).Seconds())
	if err != nil {
		return result, err
	}

	metrics.RecordResult(result)
	u.mu.Lock()
	stored := result
	u.lastRun = &stored
	u.mu.Unlock()

	if u.notifier != nil {
		if nErr := u.notifier.PublishRunSummary(ctx, result); nErr != nil {
			u.logger.Error("run summary notification failed", "run_id", result.RunID, "error", nErr)
		}
	}
	return result, nil
}

func (u *Updater) update(ctx context.Context) (domain.RunResult, error) {
	result := domain.RunResult{RunID: uuid.NewString()}
	log := u.logger.With("run_id", result.RunID)

	if u.settings == nil || u.scores == nil || u.regions == nil || u.queue == nil || u.history == nil {
		return result, fmt.Errorf("updater is not fully configured")
	}
	if err := u.settings.Init(); err != nil {
		return result, fmt.Errorf("init settings: %w", err)
	}
	settings := u.settings.Settings()

	log.Info("updating region queue items starts")

	items, err := u.ingest(ctx)
	if err != nil {
		return result, err
	}
	result.Ingested = len(items)

	items, stats, err := filterByCPV(ctx, u.tenders, items, settings.ForbiddenCPVPrefix, settings.LookupConcurrency, log)
	if err != nil {
		return result, fmt.Errorf("filter by cpv: %w", err)
	}
	result.FilteredByCPV = stats.filtered
	result.LookupFailures = stats.failures

	result.UnresolvedRegions = normalizeRegions(items, u.regions)
	if len(result.UnresolvedRegions) > 0 {
		log.Warn("unresolved regions", "count", len(result.UnresolvedRegions), "regions", result.UnresolvedRegions)
	}
	if settings.UnresolvedRegionPolicy != config.RegionPolicyKeep {
		items, result.DroppedNoRegion = dropUnresolved(items)
	}

	ranked := u.rank(items, settings, &result)

	published, onMonitoring, err := reconcileMonitoring(ctx, u.audit, ranked, log)
	if err != nil {
		log.Error("monitorings loading failed, publishing empty queue", "error", err)
		result.MonitoringFailed = true
		published = nil
	}
	result.OnMonitoring = onMonitoring

	record, err := u.publish(ctx, published, log)
	if err != nil {
		return result, err
	}

	result.QueueID = record.ID
	result.DateCreated = record.DateCreated
	result.Published = len(published)
	result.TopRisk = domain.CountTopRisk(published)
	result.Items = published

	log.Info("updating region queue items finished",
		"queue_id", result.QueueID,
		"published", result.Published,
		"top_risk", result.TopRisk,
		"filtered_cpv", result.FilteredByCPV,
		"on_monitoring", result.OnMonitoring)
	return result, nil
}

func (u *Updater) ingest(ctx context.Context) ([]*domain.QueueItem, error) {
	scores, err := u.scores.FetchScores(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch scores: %w", err)
	}
	items := make([]*domain.QueueItem, 0, len(scores))
	for _, s := range scores {
		items = append(items, domain.NewQueueItem(s))
	}
	return items, nil
}

func (u *Updater) rank(items []*domain.QueueItem, settings config.QueueConfig, result *domain.RunResult) []*domain.QueueItem {
	byRegion := groupByRegion(items)
	ranked := make([]*domain.QueueItem, 0, len(items))
	for _, region := range sortedRegions(byRegion) {
		res := ranking.Categorize(byRegion[region], settings)
		result.Unbanded += len(res.Unbanded)
		ranked = append(ranked, res.Items()...)
	}
	return ranked
}

func (u *Updater) publish(ctx context.Context, items []*domain.QueueItem, log *slog.Logger) (domain.HistoryRecord, error) {
	log.Info("clear existing region indicators queue items")
	if err := u.queue.DeleteAll(ctx); err != nil {
		return domain.HistoryRecord{}, fmt.Errorf("clear queue: %w", err)
	}

	log.Info("save region indicators queue items", "count", len(items))
	if err := u.queue.SaveAll(ctx, items); err != nil {
		return domain.HistoryRecord{}, fmt.Errorf("save queue: %w", err)
	}

	maxID, err := u.history.MaxID(ctx)
	if err != nil {
		return domain.HistoryRecord{}, fmt.Errorf("history max id: %w", err)
	}

	saved, err := u.history.Save(ctx, domain.HistoryRecord{
		ID:          maxID + 1,
		DateCreated: u.clock().UTC(),
	})
	if err != nil {
		return domain.HistoryRecord{}, fmt.Errorf("save history: %w", err)
	}

	log.Info("saved indicators queue history", "id", saved.ID, "date_created", saved.DateCreated)
	return saved, nil
}
