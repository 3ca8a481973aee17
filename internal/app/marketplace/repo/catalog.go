package repo

import (
	"context"
	"errors"
	"time"

	"github.com/murkotick/marketplace-service/internal/app/marketplace/domain"
	"github.com/murkotick/marketplace-service/internal/pkg/keyedlog"
)

// ProductNamespace is the storage-key prefix of the product log.
const ProductNamespace = "p"

// DefaultProductIDSeed is the id of the first product.
const DefaultProductIDSeed = 100

// Catalog owns the product log and its id index.
type Catalog struct {
	log *keyedlog.Log[*domain.Product]
}

func NewCatalog(r keyedlog.Reader, c keyedlog.Committer, seed uint64) *Catalog {
	return &Catalog{
		log: keyedlog.New[*domain.Product](ProductNamespace, seed, r, c, ProductCodec{},
			func(p *domain.Product) time.Time { return p.CreatedAt() }),
	}
}

// Add assigns the next product id, lets build construct the product for it and
// persists the product with build's companion mutations in one commit.
func (c *Catalog) Add(ctx context.Context, build keyedlog.BuildFunc[*domain.Product]) (*domain.Product, error) {
	return c.log.Append(ctx, build)
}

// Get returns the product or domain.ErrProductNotFound.
func (c *Catalog) Get(ctx context.Context, id uint64) (*domain.Product, error) {
	p, err := c.log.Get(ctx, id)
	if errors.Is(err, keyedlog.ErrNotFound) {
		return nil, domain.ErrProductNotFound
	}
	return p, err
}

// Page returns one page of products in insertion order. Pages past the end are empty.
func (c *Catalog) Page(ctx context.Context, page domain.Page) ([]*domain.Product, error) {
	total, err := c.log.Len(ctx)
	if err != nil {
		return nil, err
	}
	offset, ok := page.Window(total)
	if !ok {
		return []*domain.Product{}, nil
	}
	return c.log.Slice(ctx, offset, page.Limit)
}

// Count returns the number of products.
func (c *Catalog) Count(ctx context.Context) (uint64, error) {
	return c.log.Len(ctx)
}
