package domain

import (
	"fmt"
	"strings"
	"time"
)

// Order is the durable receipt of a purchase. It is created once by PlaceOrder
// and never mutated afterwards, whatever happens to the refund it may carry.
type Order struct {
	id        uint64
	productID uint64
	buyer     string
	price     Amount
	paid      Amount
	createdAt time.Time
	events    []DomainEvent
}

// NewOrder validates a purchase of product by buyer with an attached payment.
// Validation happens before anything is built, so a rejected purchase leaves
// nothing to persist.
func NewOrder(id uint64, product *Product, buyer string, paid Amount, now time.Time) (*Order, error) {
	if product == nil {
		return nil, ErrProductNotFound
	}
	if strings.TrimSpace(buyer) == "" {
		return nil, ErrMissingCaller
	}
	if paid.LessThan(product.Price()) {
		return nil, fmt.Errorf("%w: attached %s, price %s", ErrInsufficientPayment, paid, product.Price())
	}

	o := &Order{
		id:        id,
		productID: product.ID(),
		buyer:     buyer,
		price:     product.Price(),
		paid:      paid,
		createdAt: now,
		events:    make([]DomainEvent, 0),
	}

	o.events = append(o.events, &OrderPlacedEvent{
		OrderID:   o.id,
		ProductID: o.productID,
		Buyer:     o.buyer,
		Price:     o.price,
		Paid:      o.paid,
		PlacedAt:  now,
	})

	if refund := o.Refund(); !refund.IsZero() {
		o.events = append(o.events, &RefundScheduledEvent{
			OrderID:     o.id,
			Buyer:       o.buyer,
			Amount:      refund,
			ScheduledAt: now,
		})
	}

	return o, nil
}

// ReconstructOrder rebuilds an Order from persisted state.
func ReconstructOrder(id, productID uint64, buyer string, price, paid Amount, createdAt time.Time) *Order {
	return &Order{
		id:        id,
		productID: productID,
		buyer:     buyer,
		price:     price,
		paid:      paid,
		createdAt: createdAt,
		events:    make([]DomainEvent, 0),
	}
}

func (o *Order) ID() uint64           { return o.id }
func (o *Order) ProductID() uint64    { return o.productID }
func (o *Order) Buyer() string        { return o.buyer }
func (o *Order) Price() Amount        { return o.price }
func (o *Order) Paid() Amount         { return o.paid }
func (o *Order) CreatedAt() time.Time { return o.createdAt }

func (o *Order) DomainEvents() []DomainEvent {
	return o.events
}

// Refund is the overpayment owed back to the buyer.
func (o *Order) Refund() Amount {
	r, err := o.paid.Sub(o.price)
	if err != nil {
		return Amount{}
	}
	return r
}

// NeedsRefund reports whether the buyer attached more than the price.
func (o *Order) NeedsRefund() bool {
	return o.paid.GreaterThan(o.price)
}

// ReceiptKey is a human-readable secondary key: product, buyer and timestamp.
func (o *Order) ReceiptKey() string {
	return fmt.Sprintf("%d_%s_%d", o.productID, o.buyer, o.createdAt.UnixNano())
}
