package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS sensor_history (
    id          BIGSERIAL PRIMARY KEY,
    msg_key     TEXT NOT NULL DEFAULT '',
    payload     JSONB NOT NULL,
    recorded_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS sensor_history_recorded_at_idx ON sensor_history (recorded_at DESC, id DESC);

CREATE TABLE IF NOT EXISTS sensor_alerts (
    request_id UUID PRIMARY KEY,
    created_at TIMESTAMPTZ NOT NULL,
    sent_at    TIMESTAMPTZ,
    variant    TEXT NOT NULL,
    metric     TEXT NOT NULL,
    severity   TEXT NOT NULL,
    subject    TEXT NOT NULL,
    body       TEXT NOT NULL,
    value      DOUBLE PRECISION NOT NULL,
    status     TEXT NOT NULL,
    last_error TEXT NOT NULL DEFAULT ''
);`

type DB struct {
	Pool *pgxpool.Pool
}

func New(ctx context.Context, dsn string) (*DB, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to reach database: %w", err)
	}
	return &DB{Pool: pool}, nil
}

// EnsureSchema creates the tables used by the dashboard when missing.
func (d *DB) EnsureSchema(ctx context.Context) error {
	if _, err := d.Pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

func (d *DB) Close() {
	d.Pool.Close()
}
