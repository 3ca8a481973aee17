package contracts

import (
	"context"

	"github.com/murkotick/marketplace-service/internal/app/marketplace/domain"
)

// TransferKind labels why funds move.
type TransferKind string

const (
	TransferPayout TransferKind = "payout"
	TransferRefund TransferKind = "refund"
)

// CallbackRefundComplete is the callback method the gateway invokes once a
// batch carrying a refund settles or fails.
const CallbackRefundComplete = "on_refund_complete"

// Transfer moves Amount from this service's account to To.
type Transfer struct {
	To     string
	Amount domain.Amount
	Kind   TransferKind
}

// Callback is invoked by the gateway after the batch settles, with the order id as payload.
type Callback struct {
	Method  string
	OrderID uint64
}

// TransferBatch is a set of transfers that settle or fail as one unit.
type TransferBatch struct {
	ID        string
	OrderID   uint64
	Transfers []Transfer
	Callback  *Callback
}

// PaymentGateway schedules transfer batches. Submit must not execute the
// transfers inline: it queues the batch and returns. Settlement is reported
// later through the batch callback.
type PaymentGateway interface {
	Submit(ctx context.Context, batch TransferBatch) error
}

// RefundOutcome is the settlement notification delivered for a batch callback.
type RefundOutcome struct {
	OrderID uint64
	BatchID string
	Settled bool
	Reason  string
}
