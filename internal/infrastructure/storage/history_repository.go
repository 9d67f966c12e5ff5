package storage

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"IndicatorsQueue/internal/domain"
	"IndicatorsQueue/internal/ports"
)

// HistoryRepository stores one record per published queue.
type HistoryRepository struct {
	db *sqlx.DB
}

var _ ports.HistoryStore = (*HistoryRepository)(nil)

// NewHistoryRepository wires a sqlx.DB implementation.
func NewHistoryRepository(db *sqlx.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// MaxID returns the highest stored id, zero for an empty history.
func (r *HistoryRepository) MaxID(ctx context.Context) (int64, error) {
	query, args, err := psql.Select("COALESCE(MAX(id), 0)").From(historyTable).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build max id: %w", err)
	}

	var id int64
	if err := r.db.GetContext(ctx, &id, query, args...); err != nil {
		return 0, fmt.Errorf("query max id: %w", err)
	}
	return id, nil
}

// Save inserts the record and returns it as stored.
func (r *HistoryRepository) Save(ctx context.Context, record domain.HistoryRecord) (domain.HistoryRecord, error) {
	query, args, err := psql.
		Insert(historyTable).
		Columns("id", "date_created").
		Values(record.ID, record.DateCreated).
		Suffix("RETURNING id, date_created").
		ToSql()
	if err != nil {
		return domain.HistoryRecord{}, fmt.Errorf("build history insert: %w", err)
	}

	var saved domain.HistoryRecord
	if err := r.db.GetContext(ctx, &saved, query, args...); err != nil {
		return domain.HistoryRecord{}, fmt.Errorf("insert history %d: %w", record.ID, err)
	}
	saved.DateCreated = saved.DateCreated.UTC()
	return saved, nil
}
