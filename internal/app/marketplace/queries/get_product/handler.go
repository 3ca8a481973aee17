package get_product

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

func (h *Handler) Execute(ctx context.Context, productID uint64) (*dto.ProductDTO, error) {
	if productID == 0 {
		return nil, domain.ErrMissingProductID
	}
	p, err := h.products.Get(ctx, productID)
	if err != nil {
		return nil, err
	}
	return dto.FromProduct(p), nil
}
