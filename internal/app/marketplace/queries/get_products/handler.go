package get_products

import (
	"context"

	contracts "github.com/murkotick/marketplace-service/internal/app/marketplace/contracts"
	"github.com/murkotick/marketplace-service/internal/app/marketplace/domain"
	"github.com/murkotick/marketplace-service/internal/app/marketplace/dto"
)

type Handler struct {
	products contracts.ProductReader
}

func NewHandler(r contracts.ProductReader) *Handler {
	return &Handler{products: r}
}

// Execute returns one page of the catalog in insertion order. Out-of-range
// pages are empty; only storage failures are errors.
func (h *Handler) Execute(ctx context.Context, page, limit int64) (*dto.ProductPage, error) {
	p := domain.NewPage(page, limit)
	products, err := h.products.Page(ctx, p)
	if err != nil {
		return nil, err
	}

	out := &dto.ProductPage{
		Products: make([]*dto.ProductDTO, 0, len(products)),
		Page:     p.Number,
		Limit:    p.Limit,
		Success:  true,
	}
	for _, prod := range products {
		out.Products = append(out.Products, dto.FromProduct(prod))
	}
	return out, nil
}
