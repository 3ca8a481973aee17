package payments

import (
	"context"
	"errors"

	contracts "github.com/murkotick/marketplace-service/internal/app/marketplace/contracts"
)

// ErrGatewayClosed is returned by Submit after intake was closed for shutdown.
var ErrGatewayClosed = errors.New("payments: gateway is not accepting batches")

// QueueGateway schedules batches on the in-process queue. Submit returns as
// soon as the batch is queued; workers settle it later.
type QueueGateway struct {
	q *Queue
}

func NewQueueGateway(q *Queue) *QueueGateway {
	return &QueueGateway{q: q}
}

var _ contracts.PaymentGateway = (*QueueGateway)(nil)

func (g *QueueGateway) Submit(ctx context.Context, b contracts.TransferBatch) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !g.q.Enqueue(b) {
		return ErrGatewayClosed
	}
	return nil
}

// Close stops intake; already queued batches still settle.
func (g *QueueGateway) Close() {
	g.q.CloseIntake()
}
