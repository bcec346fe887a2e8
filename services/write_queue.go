// services/write_queue.go - Debounced achievement writes
package services

import (
	"context"
	"sync"
	"time"

	"discjourney/progression"

	"go.uber.org/zap"
)

// Persister is where the queue flushes to. *AchievementStore implements it.
type Persister interface {
	Save(ctx context.Context, userID uint, snap progression.Snapshot, summary progression.Summary) error
}

// Summarizer derives the leaderboard totals written alongside a snapshot.
// It is called at write time so period keys match the moment of the write.
type Summarizer func(snap progression.Snapshot) progression.Summary

// CatalogSummarizer summarizes against cat at the clock's current time.
func CatalogSummarizer(cat *progression.Catalog, clock progression.Clock) Summarizer {
	return func(snap progression.Snapshot) progression.Summary {
		return progression.Summarize(cat, snap, clock.Now())
	}
}

type pendingWrite struct {
	gen   uint64
	snap  progression.Snapshot
	first time.Time
	due   time.Time
}

// WriteQueue holds the latest snapshot per user and writes it once the
// user has been quiet for the debounce interval. Newer snapshots replace
// older ones outright: the queue is last-writer-wins per user.
//
// A snapshot stays readable through Pending until its write has finished,
// so a load that races a flush never sees an older stored document.
type WriteQueue struct {
	store     Persister
	summarize Summarizer
	debounce time.Duration
	maxDelay time.Duration
	log      *zap.Logger
	now      func() time.Time

	mu       sync.Mutex
	gen      uint64
	pending  map[uint]pendingWrite
	inflight map[uint]pendingWrite

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// NewWriteQueue creates a queue. A zero debounce makes every Enqueue due
// on the next tick.
func NewWriteQueue(store Persister, summarize Summarizer, debounce time.Duration, log *zap.Logger) *WriteQueue {
	return &WriteQueue{
		store:     store,
		summarize: summarize,
		debounce: debounce,
		maxDelay: 10 * debounce,
		log:      log,
		now:      time.Now,
		pending:  make(map[uint]pendingWrite),
		inflight: make(map[uint]pendingWrite),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Enqueue records snap as the user's latest state.
func (q *WriteQueue) Enqueue(userID uint, snap progression.Snapshot) {
	now := q.now()

	q.mu.Lock()
	defer q.mu.Unlock()

	q.gen++
	w := pendingWrite{gen: q.gen, snap: snap.Clone(), first: now, due: now.Add(q.debounce)}
	if prev, ok := q.pending[userID]; ok {
		w.first = prev.first
	}
	// A user who never pauses is still written at least every maxDelay.
	if limit := w.first.Add(q.maxDelay); w.due.After(limit) {
		w.due = limit
	}
	q.pending[userID] = w
}

// Pending returns the newest not yet persisted snapshot for the user.
func (q *WriteQueue) Pending(userID uint) (progression.Snapshot, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if w, ok := q.pending[userID]; ok {
		return w.snap.Clone(), true
	}
	if w, ok := q.inflight[userID]; ok {
		return w.snap.Clone(), true
	}
	return progression.Snapshot{}, false
}

// Len is the number of users with unflushed writes.
func (q *WriteQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Start runs the flush loop until ctx is cancelled or Stop is called.
func (q *WriteQueue) Start(ctx context.Context) {
	interval := q.debounce / 4
	if interval < 10*time.Millisecond {
		interval = 10 * time.Millisecond
	}

	go func() {
		defer close(q.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				q.flush(ctx, false)
			case <-ctx.Done():
				q.flush(context.Background(), true)
				return
			case <-q.stop:
				q.flush(context.Background(), true)
				return
			}
		}
	}()
	q.log.Info("write queue started", zap.Duration("debounce", q.debounce))
}

// Stop ends the flush loop after writing everything still pending. It
// must only be called after Start.
func (q *WriteQueue) Stop() {
	q.stopOnce.Do(func() { close(q.stop) })
	<-q.done
	q.log.Info("write queue stopped")
}

// Flush writes every pending snapshot now, due or not.
func (q *WriteQueue) Flush(ctx context.Context) {
	q.flush(ctx, true)
}

func (q *WriteQueue) flush(ctx context.Context, all bool) {
	now := q.now()

	q.mu.Lock()
	batch := make(map[uint]pendingWrite)
	for userID, w := range q.pending {
		if all || !now.Before(w.due) {
			batch[userID] = w
			q.inflight[userID] = w
			delete(q.pending, userID)
		}
	}
	q.mu.Unlock()

	for userID, w := range batch {
		// Retries recompute too, in case a week or month rolled over.
		err := q.store.Save(ctx, userID, w.snap, q.summarize(w.snap))

		q.mu.Lock()
		if cur, ok := q.inflight[userID]; ok && cur.gen == w.gen {
			delete(q.inflight, userID)
		}
		if err != nil {
			// Retry on a later tick unless something newer already replaced it.
			if _, newer := q.pending[userID]; !newer {
				w.due = now.Add(q.debounce)
				q.pending[userID] = w
			}
		}
		q.mu.Unlock()

		if err != nil {
			q.log.Error("failed to write achievements", zap.Uint("user_id", userID), zap.Error(err))
		}
	}
}
