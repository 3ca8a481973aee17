package contracts

import (
	"context"

	"github.com/murkotick/marketplace-service/internal/app/marketplace/domain"
	"github.com/murkotick/marketplace-service/internal/pkg/keyedlog"
)

// ProductStore is the write and lookup side of the catalog.
type ProductStore interface {
	Add(ctx context.Context, build keyedlog.BuildFunc[*domain.Product]) (*domain.Product, error)
	Get(ctx context.Context, id uint64) (*domain.Product, error)
}

// OrderStore is the write and lookup side of the order ledger.
type OrderStore interface {
	Record(ctx context.Context, build keyedlog.BuildFunc[*domain.Order]) (*domain.Order, error)
	Get(ctx context.Context, id uint64) (*domain.Order, error)
}
