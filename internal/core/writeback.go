package core

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"opsdesk/pkg/domain"
)

// DefaultFlushInterval is the debounce window for mirror writes. Repeated
// mutations to a bucket inside the window collapse into a single write
// carrying the latest state.
const DefaultFlushInterval = 300 * time.Millisecond

const flushWriteTimeout = 5 * time.Second

var (
	flushWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "opsdesk",
		Subsystem: "writeback",
		Name:      "writes_total",
		Help:      "Completed mirror bucket writes.",
	}, []string{"bucket"})
	flushFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "opsdesk",
		Subsystem: "writeback",
		Name:      "write_failures_total",
		Help:      "Mirror bucket writes that failed and were dropped.",
	}, []string{"bucket"})
	flushCoalesced = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "opsdesk",
		Subsystem: "writeback",
		Name:      "coalesced_total",
		Help:      "Enqueued snapshots superseded before their flush fired.",
	}, []string{"bucket"})
)

// flushQueue is a write-behind queue between the in-memory state and the
// mirror. Enqueue replaces any pending payload for the bucket and restarts
// that bucket's debounce timer; when the timer fires the latest payload is
// written once. Failed writes are logged and dropped, never retried, and
// never affect in-memory state.
type flushQueue struct {
	mirror   domain.Mirror
	logger   *zap.Logger
	interval time.Duration

	mu      sync.Mutex
	pending map[domain.Bucket][]byte
	timers  map[domain.Bucket]*time.Timer
	closed  bool
}

func newFlushQueue(mirror domain.Mirror, logger *zap.Logger, interval time.Duration) *flushQueue {
	if interval <= 0 {
		interval = DefaultFlushInterval
	}
	return &flushQueue{
		mirror:   mirror,
		logger:   logger,
		interval: interval,
		pending:  make(map[domain.Bucket][]byte),
		timers:   make(map[domain.Bucket]*time.Timer),
	}
}

// Enqueue schedules payload to be written to bucket after the debounce
// window. A payload already pending for the bucket is superseded.
func (q *flushQueue) Enqueue(bucket domain.Bucket, payload []byte) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	if _, ok := q.pending[bucket]; ok {
		flushCoalesced.WithLabelValues(string(bucket)).Inc()
	}
	q.pending[bucket] = payload
	if t, ok := q.timers[bucket]; ok {
		t.Stop()
		t.Reset(q.interval)
		return
	}
	q.timers[bucket] = time.AfterFunc(q.interval, func() { q.flush(bucket) })
}

func (q *flushQueue) flush(bucket domain.Bucket) {
	q.mu.Lock()
	payload, ok := q.pending[bucket]
	delete(q.pending, bucket)
	delete(q.timers, bucket)
	q.mu.Unlock()
	if !ok {
		return
	}
	q.write(bucket, payload)
}

func (q *flushQueue) write(bucket domain.Bucket, payload []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), flushWriteTimeout)
	defer cancel()
	if err := q.mirror.Write(ctx, bucket, payload); err != nil {
		flushFailures.WithLabelValues(string(bucket)).Inc()
		q.logger.Error("persist bucket", zap.String("bucket", string(bucket)), zap.Error(err))
		return
	}
	flushWrites.WithLabelValues(string(bucket)).Inc()
}

// FlushAll synchronously drains every pending bucket. Used on shutdown and by
// tests that need deterministic persistence.
func (q *flushQueue) FlushAll() {
	q.mu.Lock()
	drained := q.pending
	q.pending = make(map[domain.Bucket][]byte)
	for bucket, t := range q.timers {
		t.Stop()
		delete(q.timers, bucket)
	}
	q.mu.Unlock()
	for bucket, payload := range drained {
		q.write(bucket, payload)
	}
}

// Close drains pending writes and rejects further enqueues.
func (q *flushQueue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	q.mu.Unlock()
	q.FlushAll()
}
