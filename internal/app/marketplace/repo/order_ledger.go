package repo

import (
	"context"
	"errors"
	"time"

	"github.com/murkotick/marketplace-service/internal/app/marketplace/domain"
	"github.com/murkotick/marketplace-service/internal/pkg/keyedlog"
)

// OrderNamespace is the storage-key prefix of the order log.
const OrderNamespace = "o"

// DefaultOrderIDSeed is the id of the first order.
const DefaultOrderIDSeed = 100

// OrderLedger owns the order log and its id index.
type OrderLedger struct {
	log *keyedlog.Log[*domain.Order]
}

func NewOrderLedger(r keyedlog.Reader, c keyedlog.Committer, seed uint64) *OrderLedger {
	return &OrderLedger{
		log: keyedlog.New[*domain.Order](OrderNamespace, seed, r, c, OrderCodec{},
			func(o *domain.Order) time.Time { return o.CreatedAt() }),
	}
}

// Record assigns the next order id and persists the order built for it.
func (l *OrderLedger) Record(ctx context.Context, build keyedlog.BuildFunc[*domain.Order]) (*domain.Order, error) {
	return l.log.Append(ctx, build)
}

// Get returns the order or domain.ErrOrderNotFound.
func (l *OrderLedger) Get(ctx context.Context, id uint64) (*domain.Order, error) {
	o, err := l.log.Get(ctx, id)
	if errors.Is(err, keyedlog.ErrNotFound) {
		return nil, domain.ErrOrderNotFound
	}
	return o, err
}

// Count returns the number of recorded orders.
func (l *OrderLedger) Count(ctx context.Context) (uint64, error) {
	return l.log.Len(ctx)
}
