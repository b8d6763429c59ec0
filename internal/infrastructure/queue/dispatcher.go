package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/biblioteca/loan-system/internal/core/domain"
	"github.com/biblioteca/loan-system/internal/pkg/metrics"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// Sink delivers one loan event to its final destination.
type Sink interface {
	Deliver(ctx context.Context, event domain.LoanEvent) error
}

// Dispatcher fans loan events out to a fixed set of workers using consistent
// hashing on the book id, so events about one book are delivered in order.
type Dispatcher struct {
	workers []chan domain.LoanEvent
	sink    Sink
	log     zerolog.Logger
	wg      sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, sink Sink, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.LoanEvent, numWorkers),
		sink:    sink,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.LoanEvent, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers exit when ctx is cancelled
// or after Close has drained their channel.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Publish queues an event for the worker that owns its book. It never
// blocks: when that worker's buffer is full the event is dropped and logged.
func (d *Dispatcher) Publish(event domain.LoanEvent) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.log.Warn().Str("event_id", event.ID).Msg("dispatcher closed, dropping loan event")
		return
	}

	idx := d.shardIndex(event.BookID)
	select {
	case d.workers[idx] <- event:
		metrics.LoanEventsQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		metrics.LoanEventsDroppedTotal.Inc()
		d.log.Warn().
			Str("event_id", event.ID).
			Str("type", string(event.Type)).
			Int("worker_id", idx).
			Msg("loan event queue full, dropping event")
	}
}

// Close stops accepting events and waits until queued ones are delivered.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		for _, ch := range d.workers {
			close(ch)
		}
	}
	d.mu.Unlock()
	d.wg.Wait()
}

// shardIndex maps a book id deterministically to a worker index.
func (d *Dispatcher) shardIndex(bookID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(bookID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.LoanEvent) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			metrics.LoanEventsQueueDepth.WithLabelValues(strconv.Itoa(id)).Set(float64(len(ch)))
			if err := d.sink.Deliver(ctx, event); err != nil {
				metrics.LoanEventsPublishedTotal.WithLabelValues(string(event.Type), "error").Inc()
				d.log.Error().Err(err).
					Str("event_id", event.ID).
					Str("loan_id", event.LoanID).
					Int("worker_id", id).
					Msg("loan event delivery failed")
				continue
			}
			metrics.LoanEventsPublishedTotal.WithLabelValues(string(event.Type), "ok").Inc()
		}
	}
}
