package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"IndicatorsQueue/internal/domain"
	"IndicatorsQueue/internal/ports"
)

// TenderRepository reads tender records by outer id.
type TenderRepository struct {
	db *sqlx.DB
}

var _ ports.TenderRepository = (*TenderRepository)(nil)

// NewTenderRepository wires a sqlx.DB implementation.
func NewTenderRepository(db *sqlx.DB) *TenderRepository {
	return &TenderRepository{db: db}
}

func tenderByOuterIDQuery(outerID string) sq.SelectBuilder {
	return psql.
		Select("outer_id", "COALESCE(cpv, '') AS cpv").
		From(tendersTable).
		Where(sq.Eq{"outer_id": outerID}).
		OrderBy("id").
		Limit(1)
}

// FindByOuterID returns the first tender with the outer id or domain.ErrTenderNotFound.
func (r *TenderRepository) FindByOuterID(ctx context.Context, outerID string) (domain.Tender, error) {
	query, args, err := tenderByOuterIDQuery(outerID).ToSql()
	if err != nil {
		return domain.Tender{}, fmt.Errorf("build tender query: %w", err)
	}

	var tender domain.Tender
	if err := r.db.GetContext(ctx, &tender, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Tender{}, fmt.Errorf("outer id %s: %w", outerID, domain.ErrTenderNotFound)
		}
		return domain.Tender{}, fmt.Errorf("query tender %s: %w", outerID, err)
	}
	return tender, nil
}
