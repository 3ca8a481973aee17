// Package payments implements the payment gateways the order flow submits
// transfer batches to: an in-process queue drained by a worker pool that
// settles against a balance ledger, and an AMQP publisher for an external
// settlement service.
package payments

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	contracts "github.com/murkotick/marketplace-service/internal/app/marketplace/contracts"
)

// Queue is an unbounded batch backlog with a broker goroutine feeding a
// buffered output channel.
type Queue struct {
	mu      sync.Mutex
	backlog []contracts.TransferBatch
	notify  chan struct{}
	out     chan contracts.TransferBatch
	logger  *zap.Logger

	closed    atomic.Bool
	enqueued  atomic.Uint64
	processed atomic.Uint64
}

// NewQueue creates a Queue with a buffered output channel.
func NewQueue(outBuffer int, logger *zap.Logger) *Queue {
	if outBuffer <= 0 {
		outBuffer = 64
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Queue{
		notify: make(chan struct{}, 1),
		out:    make(chan contracts.TransferBatch, outBuffer),
		logger: logger,
	}
}

// Start runs the broker loop until ctx is done.
func (q *Queue) Start(ctx context.Context, highWatermark int) {
	go q.broker(ctx, highWatermark)
}

func (q *Queue) broker(ctx context.Context, highWatermark int) {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for {
		q.flushOnce()
		if highWatermark > 0 {
			if sz := q.BacklogSize(); sz > highWatermark {
				q.logger.Warn("payment backlog exceeds high watermark",
					zap.Int("backlog_size", sz), zap.Int("high_watermark", highWatermark))
			}
		}
		select {
		case <-ctx.Done():
			return
		case <-q.notify:
		case <-ticker.C:
		}
	}
}

func (q *Queue) flushOnce() {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.backlog) > 0 && len(q.out) < cap(q.out) {
		item := q.backlog[0]
		q.backlog = q.backlog[1:]
		q.out <- item
	}
}

// Enqueue appends a batch to the backlog. It returns false once intake is closed.
func (q *Queue) Enqueue(b contracts.TransferBatch) bool {
	if q.closed.Load() {
		return false
	}
	q.enqueued.Add(1)
	q.mu.Lock()
	q.backlog = append(q.backlog, b)
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
	return true
}

// Out exposes the output channel consumed by workers.
func (q *Queue) Out() <-chan contracts.TransferBatch { return q.out }

// BacklogSize returns the number of batches not yet handed to the output channel.
func (q *Queue) BacklogSize() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.backlog)
}

// MarkProcessed increments the processed counter.
func (q *Queue) MarkProcessed() { q.processed.Add(1) }

// CloseIntake rejects all future enqueues.
func (q *Queue) CloseIntake() { q.closed.Store(true) }

// IsClosed reports whether intake is closed.
func (q *Queue) IsClosed() bool { return q.closed.Load() }

// Metrics returns enqueued and processed counts plus backlog and depth.
func (q *Queue) Metrics() (enq, proc uint64, backlog, depth int) {
	q.mu.Lock()
	backlog = len(q.backlog)
	q.mu.Unlock()
	return q.enqueued.Load(), q.processed.Load(), backlog, backlog + len(q.out)
}
