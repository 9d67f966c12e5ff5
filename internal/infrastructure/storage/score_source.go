package storage

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"IndicatorsQueue/internal/domain"
	"IndicatorsQueue/internal/ports"
)

// ScoreSource reads the latest analytics snapshot of scored tenders.
type ScoreSource struct {
	db *sqlx.DB
}

var _ ports.ScoreSource = (*ScoreSource)(nil)

// NewScoreSource wires a sqlx.DB implementation.
func NewScoreSource(db *sqlx.DB) *ScoreSource {
	return &ScoreSource{db: db}
}

func scoresQuery() sq.SelectBuilder {
	return psql.
		Select(
			"tender_id",
			"tender_outer_id",
			"COALESCE(region, '') AS region",
			"procuring_entity_id",
			"tender_score",
			"materiality_score",
		).
		From(scoresTable)
}

// FetchScores returns every scored tender of the snapshot.
func (s *ScoreSource) FetchScores(ctx context.Context) ([]domain.ScoredTender, error) {
	query, args, err := scoresQuery().ToSql()
	if err != nil {
		return nil, fmt.Errorf("build scores query: %w", err)
	}

	var scores []domain.ScoredTender
	if err := s.db.SelectContext(ctx, &scores, query, args...); err != nil {
		return nil, fmt.Errorf("query scores: %w", err)
	}
	return scores, nil
}
