package storage

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"IndicatorsQueue/internal/domain"
	"IndicatorsQueue/internal/ports"
)

const insertBatchSize = 500

var queueColumns = []string{
	"tender_id",
	"tender_outer_id",
	"procuring_entity_id",
	"region",
	"tender_score",
	"materiality_score",
	"cpv",
	"top_risk",
	"risk_stage",
	"monitoring",
}

// QueueRepository persists the published region indicators queue.
type QueueRepository struct {
	db *sqlx.DB
}

var _ ports.QueueSink = (*QueueRepository)(nil)

// NewQueueRepository wires a sqlx.DB implementation.
func NewQueueRepository(db *sqlx.DB) *QueueRepository {
	return &QueueRepository{db: db}
}

func deleteQueueQuery() sq.DeleteBuilder {
	return psql.Delete(queueTable)
}

func insertQueueQuery(items []*domain.QueueItem) sq.InsertBuilder {
	insert := psql.Insert(queueTable).Columns(queueColumns...)
	for _, item := range items {
		insert = insert.Values(
			item.TenderID,
			item.TenderOuterID,
			item.ProcuringEntityID,
			nullIfEmpty(item.Region),
			item.TenderScore,
			item.MaterialityScore,
			item.CPV,
			item.TopRisk,
			nullIfEmpty(string(item.RiskStage)),
			item.Monitoring,
		)
	}
	return insert
}

// DeleteAll clears the queue.
func (r *QueueRepository) DeleteAll(ctx context.Context) error {
	query, args, err := deleteQueueQuery().ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete queue items: %w", err)
	}
	return nil
}

// SaveAll inserts items in batches inside one transaction.
func (r *QueueRepository) SaveAll(ctx context.Context, items []*domain.QueueItem) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	for start := 0; start < len(items); start += insertBatchSize {
		end := min(start+insertBatchSize, len(items))
		query, args, err := insertQueueQuery(items[start:end]).ToSql()
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("build insert: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert queue items: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit queue items: %w", err)
	}
	return nil
}

// List returns the persisted queue ordered by region and materiality.
func (r *QueueRepository) List(ctx context.Context) ([]domain.QueueItem, error) {
	query, args, err := psql.
		Select(
			"tender_id",
			"tender_outer_id",
			"procuring_entity_id",
			"COALESCE(region, '') AS region",
			"tender_score",
			"materiality_score",
			"cpv",
			"top_risk",
			"COALESCE(risk_stage, '') AS risk_stage",
			"monitoring",
		).
		From(queueTable).
		OrderBy("region", "materiality_score DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list: %w", err)
	}

	var items []domain.QueueItem
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("list queue items: %w", err)
	}
	return items, nil
}
