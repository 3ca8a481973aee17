package get_order

import (
	"context"

	contracts "github.com/murkotick/marketplace-service/internal/app/marketplace/contracts"
	"github.com/murkotick/marketplace-service/internal/app/marketplace/domain"
	"github.com/murkotick/marketplace-service/internal/app/marketplace/dto"
)

type Handler struct {
	orders contracts.OrderReader
}

func NewHandler(r contracts.OrderReader) *Handler {
	return &Handler{orders: r}
}

func (h *Handler) Execute(ctx context.Context, orderID uint64) (*dto.OrderDTO, error) {
	if orderID == 0 {
		return nil, domain.ErrMissingOrderID
	}
	o, err := h.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return dto.FromOrder(o), nil
}
