package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// snapshotSchema backs the snapshot store's database tier. One row per
// company+period; the full snapshot rides in the data column so the table
// never lags the model.
const snapshotSchema = `
CREATE TABLE IF NOT EXISTS financial_snapshots (
	company_id  TEXT        NOT NULL,
	period_id   TEXT        NOT NULL,
	tier        TEXT        NOT NULL,
	data        JSONB       NOT NULL,
	resolved_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (company_id, period_id)
)`

// Connect opens a pgx pool for the snapshot store and ensures its schema
// exists. The caller owns the pool and closes it on shutdown.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("snapshot store: empty database url")
	}

	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("snapshot store: parse database url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("snapshot store: connect: %w", err)
	}

	if _, err := pool.Exec(ctx, snapshotSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("snapshot store: ensure schema: %w", err)
	}
	return pool, nil
}
