// Package postgres persists mirror buckets to a Postgres state table as
// JSONB documents, for deployments that already run a Postgres server. The
// single-writer assumption is unchanged: the mirror provides no cross-writer
// coordination.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver

	"opsdesk/pkg/domain"
)

// Compile-time contract assertion.
var _ domain.Mirror = (*Mirror)(nil)

const (
	defaultDriver = "pgx"
	defaultDSN    = "postgres://localhost/opsdesk?sslmode=disable"
)

// Mirror stores one row per bucket in a state table.
type Mirror struct {
	db *sql.DB
}

// New opens a Postgres-backed mirror using the provided DSN (falls back to
// defaultDSN) and ensures the state table exists.
func New(ctx context.Context, dsn string) (*Mirror, error) {
	if dsn == "" {
		dsn = defaultDSN
	}
	db, err := sql.Open(defaultDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS state (
		bucket TEXT PRIMARY KEY,
		payload JSONB NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure state table: %w", err)
	}
	return &Mirror{db: db}, nil
}

// Read returns the payload stored for bucket, or (nil, nil) when absent.
func (m *Mirror) Read(ctx context.Context, bucket domain.Bucket) ([]byte, error) {
	var payload []byte
	err := m.db.QueryRowContext(ctx, `SELECT payload FROM state WHERE bucket = $1`, string(bucket)).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", bucket, err)
	}
	return payload, nil
}

// Write upserts the payload for bucket.
func (m *Mirror) Write(ctx context.Context, bucket domain.Bucket, payload []byte) error {
	_, err := m.db.ExecContext(ctx,
		`INSERT INTO state(bucket,payload) VALUES($1,$2) ON CONFLICT(bucket) DO UPDATE SET payload=excluded.payload`,
		string(bucket), payload)
	if err != nil {
		return fmt.Errorf("upsert %s: %w", bucket, err)
	}
	return nil
}

// Delete removes the bucket row; absent rows are a no-op.
func (m *Mirror) Delete(ctx context.Context, bucket domain.Bucket) error {
	if _, err := m.db.ExecContext(ctx, `DELETE FROM state WHERE bucket = $1`, string(bucket)); err != nil {
		return fmt.Errorf("delete %s: %w", bucket, err)
	}
	return nil
}

// Close releases the database handle.
func (m *Mirror) Close() error { return m.db.Close() }

// DB exposes the underlying sql.DB for integration testing hooks.
func (m *Mirror) DB() *sql.DB { return m.db }
