package place_order

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	contracts "github.com/murkotick/marketplace-service/internal/app/marketplace/contracts"
	"github.com/murkotick/marketplace-service/internal/app/marketplace/domain"
	"github.com/murkotick/marketplace-service/internal/app/marketplace/domain/services"
	shared "github.com/murkotick/marketplace-service/internal/app/marketplace/usecases/shared"
	"github.com/murkotick/marketplace-service/internal/pkg/clock"
	commitplan "github.com/murkotick/marketplace-service/internal/pkg/committer"
)

// Request is the application-level place-order request.
type Request struct {
	ProductID uint64
}

// Result is a recorded order together with the id of the batch that pays for it.
type Result struct {
	Order   *domain.Order
	BatchID string
	// Submitted is false when the gateway rejected the batch. The order is
	// recorded either way.
	Submitted bool
}

// Interactor records purchases and schedules their settlement.
type Interactor struct {
	Products   contracts.ProductStore
	Orders     contracts.OrderStore
	OutboxRepo contracts.OutboxRepo
	Committer  contracts.Committer
	Gateway    contracts.PaymentGateway
	Calculator *services.SettlementCalculator
	Clock      clock.Clock
	Logger     *zap.Logger
}

// NewInteractor constructs the interactor.
func NewInteractor(
	products contracts.ProductStore,
	orders contracts.OrderStore,
	outboxRepo contracts.OutboxRepo,
	committer contracts.Committer,
	gateway contracts.PaymentGateway,
	clk clock.Clock,
	logger *zap.Logger,
) *Interactor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Interactor{
		Products:   products,
		Orders:     orders,
		OutboxRepo: outboxRepo,
		Committer:  committer,
		Gateway:    gateway,
		Calculator: services.NewSettlementCalculator(),
		Clock:      clk,
		Logger:     logger,
	}
}

// Execute validates the purchase, records the order and submits its transfer
// batch. Nothing is written when validation fails. Once the order is recorded
// the call succeeds even if the gateway refuses the batch.
func (it *Interactor) Execute(ctx context.Context, call contracts.CallContext, req Request) (*Result, error) {
	// 1. Validate input
	if req.ProductID == 0 {
		return nil, domain.ErrMissingProductID
	}
	product, err := it.Products.Get(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	split, err := it.Calculator.SplitPayment(product.Price(), call.AttachedPayment)
	if err != nil {
		return nil, fmt.Errorf("%w: attached %s, price %s", err, call.AttachedPayment, product.Price())
	}

	// 2. Record the order with its outbox events
	order, err := it.Orders.Record(ctx, func(id uint64) (*domain.Order, []*commitplan.Mutation, error) {
		o, err := domain.NewOrder(id, product, call.Caller, call.AttachedPayment, call.Timestamp)
		if err != nil {
			return nil, nil, err
		}
		muts, err := shared.OutboxMutations(it.OutboxRepo, o.DomainEvents(), call.Timestamp)
		if err != nil {
			return nil, nil, err
		}
		return o, muts, nil
	})
	if err != nil {
		return nil, err
	}

	// 3. Schedule settlement
	batch := buildBatch(order, product, split)
	res := &Result{Order: order, BatchID: batch.ID, Submitted: true}

	if err := it.Gateway.Submit(ctx, batch); err != nil {
		res.Submitted = false
		it.Logger.Error("transfer batch not submitted",
			zap.Uint64("order_id", order.ID()),
			zap.String("batch_id", batch.ID),
			zap.String("refund", split.Refund.String()),
			zap.Error(err),
		)
		it.recordSubmitFailure(ctx, order.ID(), batch.ID, err)
		return res, nil
	}

	it.Logger.Info("order placed",
		zap.Uint64("order_id", order.ID()),
		zap.Uint64("product_id", order.ProductID()),
		zap.String("buyer", order.Buyer()),
		zap.String("paid", order.Paid().String()),
		zap.String("refund", split.Refund.String()),
		zap.String("batch_id", batch.ID),
	)
	return res, nil
}

func buildBatch(order *domain.Order, product *domain.Product, split services.Split) contracts.TransferBatch {
	batch := contracts.TransferBatch{
		ID:      uuid.New().String(),
		OrderID: order.ID(),
		Transfers: []contracts.Transfer{
			{To: product.Owner(), Amount: split.Payout, Kind: contracts.TransferPayout},
		},
	}
	if !split.Refund.IsZero() {
		batch.Transfers = append(batch.Transfers, contracts.Transfer{
			To:     order.Buyer(),
			Amount: split.Refund,
			Kind:   contracts.TransferRefund,
		})
		batch.Callback = &contracts.Callback{
			Method:  contracts.CallbackRefundComplete,
			OrderID: order.ID(),
		}
	}
	return batch
}

// recordSubmitFailure is best effort: the order is already durable and the
// caller gets success regardless.
func (it *Interactor) recordSubmitFailure(ctx context.Context, orderID uint64, batchID string, cause error) {
	now := it.Clock.Now()
	ev := &domain.PaymentSubmitFailedEvent{
		OrderID:  orderID,
		BatchID:  batchID,
		Reason:   cause.Error(),
		FailedAt: now,
	}
	muts, err := shared.OutboxMutations(it.OutboxRepo, []domain.DomainEvent{ev}, now)
	if err != nil {
		it.Logger.Error("encode submit failure event", zap.Uint64("order_id", orderID), zap.Error(err))
		return
	}
	plan := commitplan.NewPlan()
	for _, m := range muts {
		plan.Add(m)
	}
	if err := it.Committer.Apply(ctx, plan); err != nil {
		it.Logger.Error("record submit failure event", zap.Uint64("order_id", orderID), zap.Error(err))
	}
}
