// Package memory provides an in-memory implementation of the persistence
// mirror used for tests and ephemeral environments.
package memory

import (
	"context"
	"sync"

	"opsdesk/pkg/domain"
)

// Compile-time contract assertion.
var _ domain.Mirror = (*Mirror)(nil)

// Mirror keeps bucket payloads in process memory. State is lost on exit.
type Mirror struct {
	mu      sync.RWMutex
	buckets map[domain.Bucket][]byte
}

// New returns an empty in-memory mirror.
func New() *Mirror {
	return &Mirror{buckets: make(map[domain.Bucket][]byte)}
}

// Read returns the stored payload for bucket, or (nil, nil) when absent.
func (m *Mirror) Read(_ context.Context, bucket domain.Bucket) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	payload, ok := m.buckets[bucket]
	if !ok {
		return nil, nil
	}
	cp := make([]byte, len(payload))
	copy(cp, payload)
	return cp, nil
}

// Write stores payload under bucket, replacing any previous value.
func (m *Mirror) Write(_ context.Context, bucket domain.Bucket, payload []byte) error {
	cp := make([]byte, len(payload))
	copy(cp, payload)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.buckets[bucket] = cp
	return nil
}

// Delete removes the bucket; absent buckets are a no-op.
func (m *Mirror) Delete(_ context.Context, bucket domain.Bucket) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.buckets, bucket)
	return nil
}

// Close is a no-op for the in-memory mirror.
func (m *Mirror) Close() error { return nil }

// Len reports the number of stored buckets. Test hook.
func (m *Mirror) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.buckets)
}
