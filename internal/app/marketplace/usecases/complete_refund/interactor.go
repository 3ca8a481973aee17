package complete_refund

import (
	"context"

	"go.uber.org/zap"

	contracts "github.com/murkotick/marketplace-service/internal/app/marketplace/contracts"
	"github.com/murkotick/marketplace-service/internal/app/marketplace/domain"
	shared "github.com/murkotick/marketplace-service/internal/app/marketplace/usecases/shared"
	"github.com/murkotick/marketplace-service/internal/pkg/clock"
	commitplan "github.com/murkotick/marketplace-service/internal/pkg/committer"
)

// Interactor handles the on_refund_complete callback. It records the outcome
// as an outbox event; the order itself is never touched.
type Interactor struct {
	Orders     contracts.OrderStore
	OutboxRepo contracts.OutboxRepo
	Committer  contracts.Committer
	Clock      clock.Clock
	Logger     *zap.Logger
}

// NewInteractor constructs the interactor.
func NewInteractor(orders contracts.OrderStore, outboxRepo contracts.OutboxRepo, committer contracts.Committer, clk clock.Clock, logger *zap.Logger) *Interactor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Interactor{
		Orders:     orders,
		OutboxRepo: outboxRepo,
		Committer:  committer,
		Clock:      clk,
		Logger:     logger,
	}
}

// Execute records a settled or failed refund for an existing order. Only the
// service account may report outcomes.
func (it *Interactor) Execute(ctx context.Context, call contracts.CallContext, outcome contracts.RefundOutcome) error {
	if call.Self == "" || call.Caller != call.Self {
		return domain.ErrPrivateCallback
	}
	if outcome.OrderID == 0 {
		return domain.ErrMissingOrderID
	}
	order, err := it.Orders.Get(ctx, outcome.OrderID)
	if err != nil {
		return err
	}

	now := it.Clock.Now()
	var ev domain.DomainEvent
	if outcome.Settled {
		ev = &domain.RefundSettledEvent{OrderID: order.ID(), BatchID: outcome.BatchID, SettledAt: now}
	} else {
		ev = &domain.RefundFailedEvent{OrderID: order.ID(), BatchID: outcome.BatchID, Reason: outcome.Reason, FailedAt: now}
	}

	muts, err := shared.OutboxMutations(it.OutboxRepo, []domain.DomainEvent{ev}, now)
	if err != nil {
		return err
	}
	plan := commitplan.NewPlan()
	for _, m := range muts {
		plan.Add(m)
	}
	if err := it.Committer.Apply(ctx, plan); err != nil {
		return err
	}

	if outcome.Settled {
		it.Logger.Info("refund settled",
			zap.Uint64("order_id", order.ID()),
			zap.String("batch_id", outcome.BatchID),
			zap.String("amount", order.Refund().String()),
		)
	} else {
		it.Logger.Warn("refund failed",
			zap.Uint64("order_id", order.ID()),
			zap.String("batch_id", outcome.BatchID),
			zap.String("amount", order.Refund().String()),
			zap.String("reason", outcome.Reason),
		)
	}
	return nil
}
