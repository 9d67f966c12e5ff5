package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"IndicatorsQueue/internal/domain"
	"IndicatorsQueue/internal/ports"
)

// reconcileMonitoring removes tenders under active audit from the queue.
// Any failure to obtain the monitoring list is returned so the caller can
// publish an empty queue instead of an unverified one.
func reconcileMonitoring(
	ctx context.Context,
	audit ports.AuditService,
	items []*domain.QueueItem,
	logger *slog.Logger,
) ([]*domain.QueueItem, int, error) {
	if audit == nil {
		return nil, 0, fmt.Errorf("audit service is not configured")
	}

	monitorings, err := audit.ActiveMonitorings(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("load active monitorings: %w", err)
	}

	active := make(map[string]struct{}, len(monitorings))
	for _, m := range monitorings {
		active[m.ID] = struct{}{}
	}

	result := make([]*domain.QueueItem, 0, len(items))
	onMonitoring := 0
	for _, item := range items {
		if _, ok := active[item.TenderOuterID]; ok {
			item.MarkMonitoring()
			onMonitoring++
			logger.Info("tender in monitoring now", "tender_outer_id", item.TenderOuterID)
			continue
		}
		item.Monitoring = false
		result = append(result, item)
	}
	return result, onMonitoring, nil
}
