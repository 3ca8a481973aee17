package domain

import (
	"strconv"
	"time"
)

// DomainEvent is a marker interface for all domain events.
// Domain events represent facts about things that have happened in the domain.
type DomainEvent interface {
	EventType() string
	AggregateID() string
	OccurredAt() time.Time
}

// Event type names as written to the outbox.
const (
	EventProductCreated      = "product.created"
	EventOrderPlaced         = "order.placed"
	EventRefundScheduled     = "refund.scheduled"
	EventRefundSettled       = "refund.settled"
	EventRefundFailed        = "refund.failed"
	EventPaymentSubmitFailed = "payment.submit_failed"
)

// ProductAggregateID and OrderAggregateID namespace numeric ids in the outbox.
func ProductAggregateID(id uint64) string { return "product:" + strconv.FormatUint(id, 10) }
func OrderAggregateID(id uint64) string   { return "order:" + strconv.FormatUint(id, 10) }

// ProductCreatedEvent is raised when a new product is created.
type ProductCreatedEvent struct {
	ProductID uint64
	Owner     string
	Name      string
	Price     Amount
	Currency  string
	CreatedAt time.Time
}

func (e *ProductCreatedEvent) EventType() string     { return EventProductCreated }
func (e *ProductCreatedEvent) AggregateID() string   { return ProductAggregateID(e.ProductID) }
func (e *ProductCreatedEvent) OccurredAt() time.Time { return e.CreatedAt }

// OrderPlacedEvent is raised when an order is recorded.
type OrderPlacedEvent struct {
	OrderID   uint64
	ProductID uint64
	Buyer     string
	Price     Amount
	Paid      Amount
	PlacedAt  time.Time
}

func (e *OrderPlacedEvent) EventType() string     { return EventOrderPlaced }
func (e *OrderPlacedEvent) AggregateID() string   { return OrderAggregateID(e.OrderID) }
func (e *OrderPlacedEvent) OccurredAt() time.Time { return e.PlacedAt }

// RefundScheduledEvent is raised together with OrderPlacedEvent when the buyer overpaid.
type RefundScheduledEvent struct {
	OrderID     uint64
	Buyer       string
	Amount      Amount
	ScheduledAt time.Time
}

func (e *RefundScheduledEvent) EventType() string     { return EventRefundScheduled }
func (e *RefundScheduledEvent) AggregateID() string   { return OrderAggregateID(e.OrderID) }
func (e *RefundScheduledEvent) OccurredAt() time.Time { return e.ScheduledAt }

// RefundSettledEvent records that the gateway confirmed the refund transfer.
type RefundSettledEvent struct {
	OrderID   uint64
	BatchID   string
	SettledAt time.Time
}

func (e *RefundSettledEvent) EventType() string     { return EventRefundSettled }
func (e *RefundSettledEvent) AggregateID() string   { return OrderAggregateID(e.OrderID) }
func (e *RefundSettledEvent) OccurredAt() time.Time { return e.SettledAt }

// RefundFailedEvent records that the gateway gave up on the refund transfer.
// The order stays recorded; the refund is left for reconciliation.
type RefundFailedEvent struct {
	OrderID  uint64
	BatchID  string
	Reason   string
	FailedAt time.Time
}

func (e *RefundFailedEvent) EventType() string     { return EventRefundFailed }
func (e *RefundFailedEvent) AggregateID() string   { return OrderAggregateID(e.OrderID) }
func (e *RefundFailedEvent) OccurredAt() time.Time { return e.FailedAt }

// PaymentSubmitFailedEvent records that the transfer batch for a recorded
// order never reached the gateway.
type PaymentSubmitFailedEvent struct {
	OrderID  uint64
	BatchID  string
	Reason   string
	FailedAt time.Time
}

func (e *PaymentSubmitFailedEvent) EventType() string     { return EventPaymentSubmitFailed }
func (e *PaymentSubmitFailedEvent) AggregateID() string   { return OrderAggregateID(e.OrderID) }
func (e *PaymentSubmitFailedEvent) OccurredAt() time.Time { return e.FailedAt }
