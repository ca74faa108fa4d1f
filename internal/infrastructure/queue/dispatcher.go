package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/identity-api/internal/core/domain"
	"github.com/99minutos/identity-api/internal/core/ports"
	"github.com/99minutos/identity-api/internal/metrics"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	writeTimeout   = 5 * time.Second
	// drainTimeout bounds how long a worker keeps flushing its buffer after
	// ctx is cancelled.
	drainTimeout = 10 * time.Second
)

// Dispatcher writes audit events off the request path. Events are sharded by
// subject with consistent hashing so one user's events are stored in order.
type Dispatcher struct {
	workers []chan domain.AuditEvent
	repo    ports.AuditRepository
	log     zerolog.Logger
	wg      sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, repo ports.AuditRepository, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.AuditEvent, numWorkers),
		repo:    repo,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.AuditEvent, channelBuffer)
	}
	return d
}

var _ ports.AuditSink = (*Dispatcher)(nil)

// Start launches all worker goroutines. When ctx is cancelled each worker
// stores what is already buffered in its shard and returns.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Wait blocks until every worker has returned.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Record enqueues event without blocking. When the shard buffer is full the
// event is dropped and counted; auditing never stalls authentication.
func (d *Dispatcher) Record(event domain.AuditEvent) {
	idx := d.shardIndex(event.Subject)
	select {
	case d.workers[idx] <- event:
		metrics.AuditQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		metrics.AuditEventsTotal.WithLabelValues("dropped").Inc()
		d.log.Warn().
			Str("type", string(event.Type)).
			Str("subject", event.Subject).
			Int("worker_id", idx).
			Msg("audit queue full, event dropped")
	}
}

// shardIndex maps a subject deterministically to a worker index.
func (d *Dispatcher) shardIndex(subject string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(subject))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.AuditEvent) {
	defer d.wg.Done()
	label := strconv.Itoa(id)
	base := context.WithoutCancel(ctx)
	for {
		select {
		case <-ctx.Done():
			d.drain(base, id, ch)
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			metrics.AuditQueueDepth.WithLabelValues(label).Set(float64(len(ch)))
			d.store(base, id, event)
		}
	}
}

// drain stores the events left in ch without waiting for new ones.
func (d *Dispatcher) drain(base context.Context, id int, ch <-chan domain.AuditEvent) {
	deadline := time.Now().Add(drainTimeout)
	for time.Now().Before(deadline) {
		select {
		case event, ok := <-ch:
			if !ok {
				return
			}
			d.store(base, id, event)
		default:
			metrics.AuditQueueDepth.WithLabelValues(strconv.Itoa(id)).Set(0)
			return
		}
	}
	if n := len(ch); n > 0 {
		metrics.AuditEventsTotal.WithLabelValues("dropped").Add(float64(n))
		d.log.Warn().Int("worker_id", id).Int("pending", n).Msg("audit drain timed out, events dropped")
	}
}

// store writes one event on a context detached from worker cancellation so an
// event taken off the queue during shutdown is still persisted.
func (d *Dispatcher) store(base context.Context, id int, event domain.AuditEvent) {
	ctx, cancel := context.WithTimeout(base, writeTimeout)
	defer cancel()

	if err := d.repo.InsertEvent(ctx, &event); err != nil {
		metrics.AuditEventsTotal.WithLabelValues("failed").Inc()
		d.log.Error().Err(err).
			Str("type", string(event.Type)).
			Str("subject", event.Subject).
			Int("worker_id", id).
			Msg("audit event persistence failed")
		return
	}
	metrics.AuditEventsTotal.WithLabelValues("stored").Inc()
}
