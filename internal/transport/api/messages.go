// Package api holds the JSON messages shared by the gRPC service
// (marketplace.v1.MarketplaceService) and the HTTP API. Amounts are base-10
// strings so 128-bit values survive JSON clients.
package api

import "time"

type Product struct {
	ID          uint64    `json:"id"`
	Owner       string    `json:"owner"`
	Name        string    `json:"name"`
	Price       string    `json:"price"`
	Currency    string    `json:"currency"`
	Description string    `json:"description,omitempty"`
	Options     []string  `json:"options,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type Order struct {
	ID         uint64    `json:"id"`
	ProductID  uint64    `json:"product_id"`
	Buyer      string    `json:"buyer"`
	Price      string    `json:"price"`
	Paid       string    `json:"paid"`
	Refund     string    `json:"refund"`
	ReceiptKey string    `json:"receipt_key"`
	CreatedAt  time.Time `json:"created_at"`
}

type UnsettledRefund struct {
	OrderID uint64    `json:"order_id"`
	Buyer   string    `json:"buyer"`
	Amount  string    `json:"amount"`
	Status  string    `json:"status"`
	Reason  string    `json:"reason,omitempty"`
	Since   time.Time `json:"since"`
}

type AddProductRequest struct {
	Name        string   `json:"name"`
	Price       string   `json:"price"`
	Currency    string   `json:"currency,omitempty"`
	Description string   `json:"description,omitempty"`
	Options     []string `json:"options,omitempty"`
}

type AddProductReply struct {
	Product *Product `json:"product"`
}

type GetProductsRequest struct {
	Page  int64 `json:"page,omitempty"`
	Limit int64 `json:"limit,omitempty"`
}

type GetProductsReply struct {
	Products []*Product `json:"products"`
	Page     uint64     `json:"page"`
	Limit    uint64     `json:"limit"`
	Success  bool       `json:"success"`
	Error    string     `json:"error,omitempty"`
}

type GetProductRequest struct {
	ProductID uint64 `json:"product_id"`
}

type GetProductReply struct {
	Product *Product `json:"product"`
}

type PlaceOrderRequest struct {
	ProductID uint64 `json:"product_id"`
}

type PlaceOrderReply struct {
	Order            *Order `json:"order"`
	BatchID          string `json:"batch_id"`
	PaymentScheduled bool   `json:"payment_scheduled"`
}

type GetOrderRequest struct {
	OrderID uint64 `json:"order_id"`
}

type GetOrderReply struct {
	Order *Order `json:"order"`
}

type OnRefundCompleteRequest struct {
	OrderID uint64 `json:"order_id"`
	BatchID string `json:"batch_id,omitempty"`
	Settled bool   `json:"settled"`
	Reason  string `json:"reason,omitempty"`
}

type OnRefundCompleteReply struct{}

type ListUnsettledRefundsRequest struct{}

type ListUnsettledRefundsReply struct {
	Refunds []*UnsettledRefund `json:"refunds"`
}

// Call-context keys, used both as gRPC metadata keys and HTTP headers.
const (
	KeyAccountID       = "x-account-id"
	KeyAttachedDeposit = "x-attached-deposit"
)
