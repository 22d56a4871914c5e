package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/triplog/tracking-system/internal/core/ports"
)

// DefaultQueueCapacity bounds the offline queue; the oldest entries are
// evicted beyond it.
const DefaultQueueCapacity = 10

const queueStoreKey = "pending_submissions"

// OfflineQueue is a bounded FIFO of samples that failed remote delivery.
// Every mutation is persisted through the key-value port so pending
// submissions survive process restarts.
type OfflineQueue struct {
	store    ports.KeyValueStore
	capacity int
	log      zerolog.Logger

	mu      sync.Mutex
	entries []ports.PendingSubmission
}

func NewOfflineQueue(store ports.KeyValueStore, capacity int, log zerolog.Logger) *OfflineQueue {
	if capacity <= 0 {
		capacity = DefaultQueueCapacity
	}
	q := &OfflineQueue{store: store, capacity: capacity, log: log}
	q.load()
	return q
}

func (q *OfflineQueue) load() {
	raw, err := q.store.Get(queueStoreKey)
	if err != nil {
		if !errors.Is(err, ports.ErrKeyNotFound) {
			q.log.Warn().Err(err).Msg("could not load pending submissions")
		}
		return
	}
	if err := json.Unmarshal(raw, &q.entries); err != nil {
		q.log.Warn().Err(err).Msg("discarding corrupt pending submissions")
		q.entries = nil
		return
	}
	if len(q.entries) > q.capacity {
		q.entries = q.entries[len(q.entries)-q.capacity:]
	}
}

// Enqueue appends a failed submission, evicting the oldest entries when
// the queue is full.
func (q *OfflineQueue) Enqueue(payload ports.SamplePayload) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.entries = append(q.entries, ports.PendingSubmission{
		Payload:    payload,
		EnqueuedAt: time.Now().UTC(),
	})
	if len(q.entries) > q.capacity {
		q.entries = q.entries[len(q.entries)-q.capacity:]
	}
	q.persist()
}

// Flush resubmits pending entries oldest-first, stopping at the first
// failure so a dead link does not burn the whole tick on repeated failing
// calls. Entries that did not make it stay queued in order. Returns the
// number delivered.
func (q *OfflineQueue) Flush(ctx context.Context, submitter ports.SampleSubmitter) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	delivered := 0
	for len(q.entries) > 0 {
		if err := submitter.Submit(ctx, q.entries[0].Payload); err != nil {
			break
		}
		q.entries = q.entries[1:]
		delivered++
	}
	if delivered > 0 {
		q.persist()
	}
	return delivered
}

func (q *OfflineQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

// persist is called with q.mu held.
func (q *OfflineQueue) persist() {
	raw, err := json.Marshal(q.entries)
	if err == nil {
		err = q.store.Set(queueStoreKey, raw)
	}
	if err != nil {
		q.log.Warn().Err(err).Msg("could not persist pending submissions")
	}
}
