package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vetri-dj/ops-api/internal/api/metrics"
	"github.com/vetri-dj/ops-api/internal/core/domain"
	"github.com/vetri-dj/ops-api/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	insertTimeout  = 5 * time.Second
)

// AuditDispatcher implements ports.AuditRecorder. Records are routed to a
// fixed set of workers by hashing the entity id, so entries about one entity
// are written in the order they were recorded.
type AuditDispatcher struct {
	workers []chan domain.AuditRecord
	repo    ports.AuditRepository
	log     zerolog.Logger
	now     func() time.Time

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewAuditDispatcher creates an AuditDispatcher with numWorkers sharded
// workers, each with a channel of size buffer. Non-positive values fall back
// to the defaults.
func NewAuditDispatcher(numWorkers, buffer int, repo ports.AuditRepository, log zerolog.Logger) *AuditDispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	if buffer <= 0 {
		buffer = channelBuffer
	}
	d := &AuditDispatcher{
		workers: make([]chan domain.AuditRecord, numWorkers),
		repo:    repo,
		log:     log,
		now:     func() time.Time { return time.Now().UTC() },
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.AuditRecord, buffer)
	}
	return d
}

// Start launches the workers. Inserts run under ctx's values but not its
// cancellation: workers keep going until Close has drained their channels.
func (d *AuditDispatcher) Start(ctx context.Context) {
	base := context.WithoutCancel(ctx)
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(base, i, ch)
	}
}

// Record never blocks. When the target worker is saturated, or the
// dispatcher is closed, the record is dropped and logged.
func (d *AuditDispatcher) Record(_ context.Context, actorID string, action domain.ActionKind, entity domain.EntityKind, entityID, details string) {
	rec := domain.AuditRecord{
		ID:        uuid.NewString(),
		ActorID:   actorID,
		Action:    action,
		Entity:    entity,
		EntityID:  entityID,
		Details:   details,
		Timestamp: d.now(),
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.drop(rec, "dispatcher closed")
		return
	}

	idx := d.shardIndex(entityID)
	select {
	case d.workers[idx] <- rec:
		metrics.AuditQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		d.drop(rec, "queue full")
	}
}

// Close stops intake and waits for queued records to be written, or for
// ctx to expire.
func (d *AuditDispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		for _, ch := range d.workers {
			close(ch)
		}
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *AuditDispatcher) drop(rec domain.AuditRecord, reason string) {
	metrics.AuditRecordsTotal.WithLabelValues("dropped").Inc()
	d.log.Warn().
		Str("reason", reason).
		Str("action", string(rec.Action)).
		Str("entity", string(rec.Entity)).
		Str("entity_id", rec.EntityID).
		Msg("audit record dropped")
}

// shardIndex maps an entity id deterministically to a worker index.
func (d *AuditDispatcher) shardIndex(entityID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(entityID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *AuditDispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.AuditRecord) {
	defer d.wg.Done()
	label := strconv.Itoa(id)
	for rec := range ch {
		metrics.AuditQueueDepth.WithLabelValues(label).Set(float64(len(ch)))

		start := time.Now()
		insertCtx, cancel := context.WithTimeout(ctx, insertTimeout)
		err := d.repo.Insert(insertCtx, &rec)
		cancel()
		metrics.AuditWriteDuration.Observe(time.Since(start).Seconds())

		if err != nil {
			metrics.AuditRecordsTotal.WithLabelValues("failed").Inc()
			d.log.Warn().Err(err).
				Str("entity", string(rec.Entity)).
				Str("entity_id", rec.EntityID).
				Int("worker_id", id).
				Msg("audit insert failed")
			continue
		}
		metrics.AuditRecordsTotal.WithLabelValues("written").Inc()
	}
}
