package api

import (
	"github.com/murkotick/marketplace-service/internal/app/marketplace/domain"
	"github.com/murkotick/marketplace-service/internal/app/marketplace/dto"
	"github.com/murkotick/marketplace-service/internal/app/marketplace/usecases/add_product"
)

// ToAddProductRequest parses the wire request into the usecase request.
func ToAddProductRequest(req *AddProductRequest) (add_product.Request, error) {
	price, err := domain.ParseAmount(req.Price)
	if err != nil {
		return add_product.Request{}, err
	}
	return add_product.Request{
		Name:        req.Name,
		Price:       price,
		Currency:    req.Currency,
		Description: req.Description,
		Options:     req.Options,
	}, nil
}

func FromProduct(d *dto.ProductDTO) *Product {
	if d == nil {
		return nil
	}
	return &Product{
		ID:          d.ID,
		Owner:       d.Owner,
		Name:        d.Name,
		Price:       d.Price,
		Currency:    d.Currency,
		Description: d.Description,
		Options:     d.Options,
		CreatedAt:   d.CreatedAt,
	}
}

func FromOrder(d *dto.OrderDTO) *Order {
	if d == nil {
		return nil
	}
	return &Order{
		ID:         d.ID,
		ProductID:  d.ProductID,
		Buyer:      d.Buyer,
		Price:      d.Price,
		Paid:       d.Paid,
		Refund:     d.Refund,
		ReceiptKey: d.ReceiptKey,
		CreatedAt:  d.CreatedAt,
	}
}

func FromProductPage(d *dto.ProductPage) *GetProductsReply {
	out := &GetProductsReply{
		Products: make([]*Product, 0, len(d.Products)),
		Page:     d.Page,
		Limit:    d.Limit,
		Success:  d.Success,
		Error:    d.Error,
	}
	for _, p := range d.Products {
		out.Products = append(out.Products, FromProduct(p))
	}
	return out
}

func FromUnsettled(in []*dto.UnsettledRefundDTO) *ListUnsettledRefundsReply {
	out := &ListUnsettledRefundsReply{Refunds: make([]*UnsettledRefund, 0, len(in))}
	for _, r := range in {
		out.Refunds = append(out.Refunds, &UnsettledRefund{
			OrderID: r.OrderID,
			Buyer:   r.Buyer,
			Amount:  r.Amount,
			Status:  r.Status,
			Reason:  r.Reason,
			Since:   r.Since,
		})
	}
	return out
}
