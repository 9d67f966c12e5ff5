package usecase

import (
	"context"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"IndicatorsQueue/internal/domain"
	"IndicatorsQueue/internal/ports"
)

type lookupStatus int

const (
	lookupKept lookupStatus = iota
	lookupFiltered
	lookupFailed
)

type filterStats struct {
	filtered int
	failures int
}

// filterByCPV drops items whose tender CPV starts with prefix. Lookups run
// concurrently; a failed lookup keeps the item. An empty prefix disables the filter.
func filterByCPV(
	ctx context.Context,
	repo ports.TenderRepository,
	items []*domain.QueueItem,
	prefix string,
	concurrency int,
	logger *slog.Logger,
) ([]*domain.QueueItem, filterStats, error) {
	if prefix == "" || repo == nil || len(items) == 0 {
		return items, filterStats{}, nil
	}
	if concurrency <= 0 {
		concurrency = 1
	}

	statuses := make([]lookupStatus, len(items))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, item := range items {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			tender, err := repo.FindByOuterID(gctx, item.TenderOuterID)
			if err != nil {
				logger.Error("tender lookup failed, keeping item",
					"tender_id", item.TenderID,
					"tender_outer_id", item.TenderOuterID,
					"error", err)
				statuses[i] = lookupFailed
				return nil
			}

			item.CPV = tender.CPV
			if strings.HasPrefix(tender.CPV, prefix) {
				logger.Info("tender skipped due to finance category",
					"tender_id", item.TenderID,
					"tender_outer_id", item.TenderOuterID,
					"cpv", tender.CPV)
				statuses[i] = lookupFiltered
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, filterStats{}, err
	}

	var stats filterStats
	kept := make([]*domain.QueueItem, 0, len(items))
	for i, item := range items {
		switch statuses[i] {
		case lookupFiltered:
			stats.filtered++
			continue
		case lookupFailed:
			stats.failures++
		}
		kept = append(kept, item)
	}
	return kept, stats, nil
}
