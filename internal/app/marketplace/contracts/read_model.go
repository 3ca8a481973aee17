package contracts

import (
	"context"

	"github.com/murkotick/marketplace-service/internal/app/marketplace/domain"
)

// ProductReader is the read side of the catalog.
type ProductReader interface {
	Get(ctx context.Context, id uint64) (*domain.Product, error)
	Page(ctx context.Context, page domain.Page) ([]*domain.Product, error)
}

// OrderReader is the read side of the order ledger.
type OrderReader interface {
	Get(ctx context.Context, id uint64) (*domain.Order, error)
}
