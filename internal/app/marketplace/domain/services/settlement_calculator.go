package services

import (
	"github.com/murkotick/marketplace-service/internal/app/marketplace/domain"
)

// Split is how an attached payment is distributed once an order is recorded.
type Split struct {
	// Payout goes to the seller and always equals the product price.
	Payout domain.Amount
	// Refund goes back to the buyer; zero when the buyer paid the exact price.
	Refund domain.Amount
}

// SettlementCalculator is a domain service that splits a payment between seller and buyer.
type SettlementCalculator struct{}

// NewSettlementCalculator creates a new SettlementCalculator instance.
func NewSettlementCalculator() *SettlementCalculator {
	return &SettlementCalculator{}
}

// SplitPayment returns the payout and refund for a payment against price.
// It fails with ErrInsufficientPayment when paid < price.
func (sc *SettlementCalculator) SplitPayment(price, paid domain.Amount) (Split, error) {
	refund, err := paid.Sub(price)
	if err != nil {
		return Split{}, domain.ErrInsufficientPayment
	}
	return Split{Payout: price, Refund: refund}, nil
}
