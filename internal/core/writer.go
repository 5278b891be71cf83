package core

import (
	"context"
	"sync"
	"time"

	"pharmacounter/pkg/domain"
)

const defaultWriteTimeout = 30 * time.Second

// snapshotWriter saves the latest snapshot of one key on a background goroutine.
// Snapshots queued while a save is in flight collapse to the newest one, so the
// persisted value always converges to the last mutation.
type snapshotWriter struct {
	p       domain.Persistence
	key     string
	log     Logger
	metrics MetricsRecorder
	clock   Clock
	timeout time.Duration

	mu      sync.Mutex
	pending []byte
	dirty   bool
	closed  bool

	wake chan struct{}
	quit chan struct{}
	done chan struct{}
	once sync.Once
}

func newSnapshotWriter(p domain.Persistence, key string, o options) *snapshotWriter {
	w := &snapshotWriter{
		p:       p,
		key:     key,
		log:     o.logger,
		metrics: o.metrics,
		clock:   o.clock,
		timeout: o.writeTimeout,
		wake:    make(chan struct{}, 1),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go w.run()
	return w
}

// enqueue replaces any unsaved snapshot with data. It never blocks on I/O.
func (w *snapshotWriter) enqueue(data []byte) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		w.log.Warn("snapshot dropped after close", "key", w.key)
		return
	}
	w.pending = data
	w.dirty = true
	w.mu.Unlock()
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

func (w *snapshotWriter) run() {
	defer close(w.done)
	for {
		select {
		case <-w.wake:
			w.flush()
		case <-w.quit:
			w.flush()
			return
		}
	}
}

func (w *snapshotWriter) flush() {
	w.mu.Lock()
	if !w.dirty {
		w.mu.Unlock()
		return
	}
	data := w.pending
	w.pending, w.dirty = nil, false
	w.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()
	start := w.clock.Now()
	err := w.p.Save(ctx, w.key, data)
	w.metrics.Observe(ctx, "persist", err == nil, w.clock.Now().Sub(start))
	if err != nil {
		w.log.Warn("persist failed", "key", w.key, "error", err)
		return
	}
	w.log.Debug("persisted", "key", w.key, "bytes", len(data))
}

// Close stops accepting snapshots and waits for the last one to be saved.
func (w *snapshotWriter) Close(ctx context.Context) error {
	w.once.Do(func() {
		w.mu.Lock()
		w.closed = true
		w.mu.Unlock()
		close(w.quit)
	})
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
