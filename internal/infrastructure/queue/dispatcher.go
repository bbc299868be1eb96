package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/secureid/identity-api/internal/api/metrics"
	"github.com/secureid/identity-api/internal/core/domain"
	"github.com/secureid/identity-api/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	insertTimeout  = 5 * time.Second
)

// AuditDispatcher hands audit entries to a fixed set of workers using
// consistent hashing on the actor, so one actor's entries are written in the
// order they were recorded. Record never blocks the request path: when a
// worker's buffer is full the entry is dropped and counted, because a slow
// audit sink must not stall the action being audited.
type AuditDispatcher struct {
	workers []chan *domain.AuditEntry
	repo    ports.AuditRepository
	log     zerolog.Logger
}

// NewAuditDispatcher creates an AuditDispatcher with numWorkers sharded
// workers. If numWorkers <= 0, defaultWorkers is used.
func NewAuditDispatcher(numWorkers int, repo ports.AuditRepository, log zerolog.Logger) *AuditDispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &AuditDispatcher{
		workers: make([]chan *domain.AuditEntry, numWorkers),
		repo:    repo,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan *domain.AuditEntry, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *AuditDispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Record enqueues an entry for its actor's worker. The timestamp is stamped
// at enqueue time so ordering reflects when the action happened, not when the
// sink got around to writing it.
func (d *AuditDispatcher) Record(actor, action, detail, originAddress string) {
	entry := &domain.AuditEntry{
		Actor:         actor,
		Action:        action,
		Detail:        detail,
		OriginAddress: originAddress,
		Timestamp:     time.Now().UTC(),
	}

	idx := d.shardIndex(actor)
	select {
	case d.workers[idx] <- entry:
		metrics.AuditQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		metrics.AuditDroppedTotal.Inc()
		d.log.Warn().
			Str("actor", actor).
			Str("action", action).
			Msg("audit queue full, entry dropped")
	}
}

// shardIndex maps an actor deterministically to a worker index.
func (d *AuditDispatcher) shardIndex(actor string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(actor))
	return int(h.Sum32()) % len(d.workers)
}

func (d *AuditDispatcher) runWorker(ctx context.Context, id int, ch <-chan *domain.AuditEntry) {
	workerID := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case entry, ok := <-ch:
			if !ok {
				return
			}
			metrics.AuditQueueDepth.WithLabelValues(workerID).Set(float64(len(ch)))
			d.persist(ctx, entry, id)
		}
	}
}

func (d *AuditDispatcher) persist(ctx context.Context, entry *domain.AuditEntry, workerID int) {
	insertCtx, cancel := context.WithTimeout(ctx, insertTimeout)
	defer cancel()

	if err := d.repo.Insert(insertCtx, entry); err != nil {
		metrics.AuditWriteFailuresTotal.Inc()
		d.log.Error().Err(err).
			Str("actor", entry.Actor).
			Str("action", entry.Action).
			Int("worker_id", workerID).
			Msg("audit write failed")
		return
	}
	metrics.AuditWrittenTotal.Inc()
}
