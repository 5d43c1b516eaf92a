package personalize

import (
	"context"
	"sync"
	"time"

	"stylShop/pkg/logger"
)

// writeBehind persists profile snapshots off the request path. It keeps the
// latest snapshot per user and retries failed writes every interval until
// they land, so every snapshot is written at least once unless a newer one
// replaces it first.
type writeBehind struct {
	repo     ProfileRepository
	interval time.Duration

	mu      sync.Mutex
	pending map[uint]*AffinityProfile
	wake    chan struct{}

	cancel context.CancelFunc
	done   chan struct{}
}

func newWriteBehind(repo ProfileRepository, interval time.Duration) *writeBehind {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	ctx, cancel := context.WithCancel(context.Background())
	w := &writeBehind{
		repo:     repo,
		interval: interval,
		pending:  make(map[uint]*AffinityProfile),
		wake:     make(chan struct{}, 1),
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	go w.run(ctx)
	return w
}

func (w *writeBehind) persist(_ context.Context, userID uint, snapshot *AffinityProfile) error {
	w.mu.Lock()
	w.pending[userID] = snapshot
	w.mu.Unlock()

	select {
	case w.wake <- struct{}{}:
	default:
	}
	return nil
}

func (w *writeBehind) run(ctx context.Context) {
	defer close(w.done)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// last attempt for whatever is still queued
			flushCtx, cancel := context.WithTimeout(context.Background(), w.interval)
			w.flush(flushCtx)
			cancel()
			return
		case <-w.wake:
			w.flush(ctx)
		case <-ticker.C:
			w.flush(ctx)
		}
	}
}

func (w *writeBehind) flush(ctx context.Context) {
	w.mu.Lock()
	batch := w.pending
	w.pending = make(map[uint]*AffinityProfile, len(batch))
	w.mu.Unlock()

	for userID, snap := range batch {
		if err := w.repo.SaveProfile(ctx, userID, snap); err != nil {
			PersistFailuresTotal.WithLabelValues("async").Inc()
			logger.Warn("personalize_persist_retry",
				"user_id", userID,
				"error", err,
			)
			w.requeue(userID, snap)
		}
	}
}

// requeue puts snap back unless a newer snapshot arrived meanwhile.
func (w *writeBehind) requeue(userID uint, snap *AffinityProfile) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, newer := w.pending[userID]; !newer {
		w.pending[userID] = snap
	}
}

// Pending reports how many users still have an unwritten snapshot.
func (w *writeBehind) Pending() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.pending)
}

// Close stops the loop after one final flush.
func (w *writeBehind) Close() {
	w.cancel()
	<-w.done
}
