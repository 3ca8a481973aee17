package repo_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/murkotick/marketplace-service/internal/app/marketplace/domain"
	"github.com/murkotick/marketplace-service/internal/app/marketplace/repo"
	"github.com/murkotick/marketplace-service/internal/pkg/committer"
	"github.com/murkotick/marketplace-service/internal/pkg/memstore"
)

var now = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func addProducts(t *testing.T, c *repo.Catalog, n int) []uint64 {
	t.Helper()
	ids := make([]uint64, 0, n)
	for i := 0; i < n; i++ {
		name := fmt.Sprintf("product-%d", i)
		p, err := c.Add(context.Background(), func(id uint64) (*domain.Product, []*committer.Mutation, error) {
			p, err := domain.NewProduct(id, "seller.near", name, domain.NewAmount(uint64(i+1)), "", "", nil, now)
			return p, nil, err
		})
		require.NoError(t, err)
		ids = append(ids, p.ID())
	}
	return ids
}

func names(ps []*domain.Product) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.Name())
	}
	return out
}

func TestCatalog_AssignsIDsFromSeed(t *testing.T) {
	st := memstore.New()
	c := repo.NewCatalog(st, st, repo.DefaultProductIDSeed)

	ids := addProducts(t, c, 3)
	assert.Equal(t, []uint64{100, 101, 102}, ids)

	p, err := c.Get(context.Background(), 101)
	require.NoError(t, err)
	assert.Equal(t, "product-1", p.Name())
	assert.Equal(t, "seller.near", p.Owner())

	n, err := c.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(3), n)
}

func TestCatalog_GetMissing(t *testing.T) {
	st := memstore.New()
	c := repo.NewCatalog(st, st, repo.DefaultProductIDSeed)
	addProducts(t, c, 1)

	for _, id := range []uint64{0, 99, 101} {
		_, err := c.Get(context.Background(), id)
		assert.ErrorIs(t, err, domain.ErrProductNotFound, "id %d", id)
	}
}

func TestCatalog_Page(t *testing.T) {
	ctx := context.Background()

	t.Run("single product", func(t *testing.T) {
		st := memstore.New()
		c := repo.NewCatalog(st, st, repo.DefaultProductIDSeed)
		addProducts(t, c, 1)

		got, err := c.Page(ctx, domain.NewPage(1, 10))
		require.NoError(t, err)
		assert.Equal(t, []string{"product-0"}, names(got))

		got, err = c.Page(ctx, domain.NewPage(2, 10))
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("limit above fifty is clamped", func(t *testing.T) {
		st := memstore.New()
		c := repo.NewCatalog(st, st, repo.DefaultProductIDSeed)
		addProducts(t, c, 60)

		got, err := c.Page(ctx, domain.NewPage(1, 100))
		require.NoError(t, err)
		require.Len(t, got, domain.MaxPageLimit)
		assert.Equal(t, "product-49", got[len(got)-1].Name())

		got, err = c.Page(ctx, domain.NewPage(2, 100))
		require.NoError(t, err)
		require.Len(t, got, 10)
		assert.Equal(t, "product-50", got[0].Name())
	})

	t.Run("repeated reads are identical", func(t *testing.T) {
		st := memstore.New()
		c := repo.NewCatalog(st, st, repo.DefaultProductIDSeed)
		addProducts(t, c, 7)

		first, err := c.Page(ctx, domain.NewPage(1, 5))
		require.NoError(t, err)
		second, err := c.Page(ctx, domain.NewPage(1, 5))
		require.NoError(t, err)
		assert.Equal(t, names(first), names(second))
		for i := range first {
			assert.Equal(t, first[i].ID(), second[i].ID())
			assert.Equal(t, first[i].Price().String(), second[i].Price().String())
		}
	})

	st := memstore.New()
	c := repo.NewCatalog(st, st, repo.DefaultProductIDSeed)
	addProducts(t, c, 11)

	tests := []struct {
		name        string
		page, limit int64
		wantLen     int
		wantFirst   string
	}{
		{"first page of ten", 1, 10, 10, "product-0"},
		{"second page of ten", 2, 10, 1, "product-10"},
		{"everything fits", 1, 20, 11, "product-0"},
		{"zero limit means default", 1, 0, 11, "product-0"},
		{"zero page means first", 0, 5, 5, "product-0"},
		{"third page of five", 3, 5, 1, "product-10"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.Page(ctx, domain.NewPage(tt.page, tt.limit))
			require.NoError(t, err)
			require.Len(t, got, tt.wantLen)
			assert.Equal(t, tt.wantFirst, got[0].Name())
		})
	}

	t.Run("past the end is empty", func(t *testing.T) {
		got, err := c.Page(ctx, domain.NewPage(3, 10))
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})
}

func TestOrderLedger_RecordAndGet(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	c := repo.NewCatalog(st, st, repo.DefaultProductIDSeed)
	l := repo.NewOrderLedger(st, st, repo.DefaultOrderIDSeed)

	addProducts(t, c, 1)
	p, err := c.Get(ctx, 100)
	require.NoError(t, err)

	o, err := l.Record(ctx, func(id uint64) (*domain.Order, []*committer.Mutation, error) {
		o, err := domain.NewOrder(id, p, "buyer.near", domain.NewAmount(4), now)
		return o, nil, err
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(100), o.ID())

	got, err := l.Get(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, "buyer.near", got.Buyer())
	assert.Equal(t, "3", got.Refund().String())

	_, err = l.Get(ctx, 101)
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)

	// the product log is untouched by order writes
	n, err := c.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), n)
}

func TestOrderLedger_RejectedOrderWritesNothing(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	l := repo.NewOrderLedger(st, st, repo.DefaultOrderIDSeed)
	p := domain.ReconstructProduct(100, "s", "n", domain.NewAmount(10), "NEAR", "", nil, now)

	_, err := l.Record(ctx, func(id uint64) (*domain.Order, []*committer.Mutation, error) {
		o, err := domain.NewOrder(id, p, "buyer.near", domain.NewAmount(9), now)
		return o, nil, err
	})
	require.ErrorIs(t, err, domain.ErrInsufficientPayment)

	n, err := l.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}
