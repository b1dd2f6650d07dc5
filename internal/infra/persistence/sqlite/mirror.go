// Package sqlite persists mirror buckets to a single SQLite table as JSON
// blobs. It is the default durable backend: a local key-value namespace that
// survives process restarts without requiring a server.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"opsdesk/pkg/domain"
)

// Compile-time contract assertion.
var _ domain.Mirror = (*Mirror)(nil)

// Mirror stores one row per bucket in a state table.
type Mirror struct {
	db   *sql.DB
	path string
}

// New opens (creating if needed) a SQLite-backed mirror at path.
func New(path string) (*Mirror, error) {
	if path == "" {
		path = "opsdesk.db"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS state (
		bucket TEXT PRIMARY KEY,
		payload BLOB NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create state table: %w", err)
	}
	return &Mirror{db: db, path: path}, nil
}

// Read returns the payload stored for bucket, or (nil, nil) when the bucket
// has never been written.
func (m *Mirror) Read(ctx context.Context, bucket domain.Bucket) ([]byte, error) {
	var payload []byte
	err := m.db.QueryRowContext(ctx, `SELECT payload FROM state WHERE bucket = ?`, string(bucket)).Scan(&payload)
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
		`INSERT INTO state(bucket,payload) VALUES(?,?) ON CONFLICT(bucket) DO UPDATE SET payload=excluded.payload`,
		string(bucket), payload)
	if err != nil {
		return fmt.Errorf("upsert %s: %w", bucket, err)
	}
	return nil
}

// Delete removes the bucket row; absent rows are a no-op.
func (m *Mirror) Delete(ctx context.Context, bucket domain.Bucket) error {
	if _, err := m.db.ExecContext(ctx, `DELETE FROM state WHERE bucket = ?`, string(bucket)); err != nil {
		return fmt.Errorf("delete %s: %w", bucket, err)
	}
	return nil
}

// Close releases the database handle.
func (m *Mirror) Close() error { return m.db.Close() }

// DB exposes the underlying sql.DB for integration testing hooks.
func (m *Mirror) DB() *sql.DB { return m.db }

// Path returns the configured database path.
func (m *Mirror) Path() string { return m.path }
