package dto

import (
	"time"

	"github.com/murkotick/marketplace-service/internal/app/marketplace/domain"
)

// ProductDTO contains full product fields returned by read queries.
// Amounts are base-10 strings so 128-bit values survive every transport.
type ProductDTO struct {
	ID          uint64
	Owner       string
	Name        string
	Price       string
	Currency    string
	Description string
	Options     []string
	CreatedAt   time.Time
}

// ProductPage is one page of the catalog. Success is true on every read that
// returns; Error is reserved for transports that report failures in-band.
type ProductPage struct {
	Products []*ProductDTO
	Page     uint64
	Limit    uint64
	Success  bool
	Error    string
}

// OrderDTO is a recorded order with its derived refund.
type OrderDTO struct {
	ID         uint64
	ProductID  uint64
	Buyer      string
	Price      string
	Paid       string
	Refund     string
	ReceiptKey string
	CreatedAt  time.Time
}

// UnsettledRefundDTO is a refund owed to a buyer that the gateway has not confirmed.
type UnsettledRefundDTO struct {
	OrderID uint64
	Buyer   string
	Amount  string
	// Status is "pending" (scheduled, no outcome yet), "failed" (gateway
	// reported failure) or "submit_failed" (batch never reached the gateway).
	Status string
	Reason string
	Since  time.Time
}

func FromProduct(p *domain.Product) *ProductDTO {
	if p == nil {
		return nil
	}
	return &ProductDTO{
		ID:          p.ID(),
		Owner:       p.Owner(),
		Name:        p.Name(),
		Price:       p.Price().String(),
		Currency:    p.Currency(),
		Description: p.Description(),
		Options:     p.Options(),
		CreatedAt:   p.CreatedAt(),
	}
}

func FromOrder(o *domain.Order) *OrderDTO {
	if o == nil {
		return nil
	}
	return &OrderDTO{
		ID:         o.ID(),
		ProductID:  o.ProductID(),
		Buyer:      o.Buyer(),
		Price:      o.Price().String(),
		Paid:       o.Paid().String(),
		Refund:     o.Refund().String(),
		ReceiptKey: o.ReceiptKey(),
		CreatedAt:  o.CreatedAt(),
	}
}
