package storage

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"IndicatorsQueue/internal/config"
)

const (
	scoresTable  = "tender_scores"
	tendersTable = "tenders"
	queueTable   = "region_indicators_queue_items"
	historyTable = "indicators_queue_history"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Open connects to Postgres and applies pool limits.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	maxConns := cfg.MaxOpenConns
	if maxConns <= 0 {
		maxConns = 10
	}
	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns(maxConns / 2)
	db.SetConnMaxLifetime(5 * time.Minute)

	return db, nil
}

// schema creates the tables owned by this service. Scores and tenders belong
// to upstream systems and are only read.
const schema = `
CREATE TABLE IF NOT EXISTS region_indicators_queue_items (
    tender_id           TEXT             NOT NULL,
    tender_outer_id     TEXT             NOT NULL,
    procuring_entity_id TEXT             NOT NULL,
    region              TEXT,
    tender_score        DOUBLE PRECISION NOT NULL,
    materiality_score   DOUBLE PRECISION NOT NULL,
    cpv                 TEXT             NOT NULL DEFAULT '',
    top_risk            BOOLEAN          NOT NULL DEFAULT FALSE,
    risk_stage          TEXT,
    monitoring          BOOLEAN          NOT NULL DEFAULT FALSE
);

CREATE TABLE IF NOT EXISTS indicators_queue_history (
    id           BIGINT      PRIMARY KEY,
    date_created TIMESTAMPTZ NOT NULL
);
`

// Migrate creates the queue and history tables when missing.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
