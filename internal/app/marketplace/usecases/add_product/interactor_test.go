package add_product_test

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	contracts "github.com/murkotick/marketplace-service/internal/app/marketplace/contracts"
	"github.com/murkotick/marketplace-service/internal/app/marketplace/domain"
	"github.com/murkotick/marketplace-service/internal/app/marketplace/repo"
	"github.com/murkotick/marketplace-service/internal/app/marketplace/usecases/add_product"
	"github.com/murkotick/marketplace-service/internal/models/m_outbox"
	"github.com/murkotick/marketplace-service/internal/pkg/memstore"
)

var now = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

func setup() (*add_product.Interactor, *repo.Catalog, *memstore.Store) {
	st := memstore.New()
	catalog := repo.NewCatalog(st, st, repo.DefaultProductIDSeed)
	return add_product.NewInteractor(catalog, repo.NewOutboxRepo(), nil), catalog, st
}

func TestAddProduct_Success(t *testing.T) {
	it, catalog, st := setup()
	call := contracts.CallContext{Caller: "seller.near", Timestamp: now, Self: "market.near"}

	p, err := it.Execute(context.Background(), call, add_product.Request{
		Name:        "Chair",
		Price:       domain.NewAmount(500),
		Description: "oak",
		Options:     []string{"brown"},
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(100), p.ID())
	assert.Equal(t, "seller.near", p.Owner())
	assert.Equal(t, domain.DefaultCurrency, p.Currency())
	assert.Equal(t, now, p.CreatedAt())

	stored, err := catalog.Get(context.Background(), 100)
	require.NoError(t, err)
	assert.Equal(t, "Chair", stored.Name())
	assert.Equal(t, []string{"brown"}, stored.Options())

	rows := st.Rows(m_outbox.TableName)
	require.Len(t, rows, 1)
	assert.Equal(t, domain.EventProductCreated, rows[0][m_outbox.ColEventType])
	assert.Equal(t, "product:100", rows[0][m_outbox.ColAggregateID])
	assert.Equal(t, m_outbox.StatusPending, rows[0][m_outbox.ColStatus])

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(rows[0][m_outbox.ColPayload].(string)), &payload))
	assert.Equal(t, "500", payload["price"])
	assert.Equal(t, "seller.near", payload["owner"])
}

func TestAddProduct_SequentialIDs(t *testing.T) {
	it, _, _ := setup()
	call := contracts.CallContext{Caller: "seller.near", Timestamp: now}

	for want := uint64(100); want < 105; want++ {
		p, err := it.Execute(context.Background(), call, add_product.Request{Name: "x", Price: domain.NewAmount(1)})
		require.NoError(t, err)
		assert.Equal(t, want, p.ID())
	}
}

func TestAddProduct_ValidationWritesNothing(t *testing.T) {
	tests := []struct {
		name    string
		call    contracts.CallContext
		req     add_product.Request
		wantErr error
	}{
		{"empty name", contracts.CallContext{Caller: "a"}, add_product.Request{Price: domain.NewAmount(1)}, domain.ErrEmptyProductName},
		{"zero price", contracts.CallContext{Caller: "a"}, add_product.Request{Name: "n"}, domain.ErrZeroPrice},
		{"no caller", contracts.CallContext{}, add_product.Request{Name: "n", Price: domain.NewAmount(1)}, domain.ErrMissingCaller},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			it, catalog, st := setup()
			_, err := it.Execute(context.Background(), tt.call, tt.req)
			require.ErrorIs(t, err, tt.wantErr)

			n, err := catalog.Count(context.Background())
			require.NoError(t, err)
			assert.Zero(t, n)
			assert.Empty(t, st.Rows(m_outbox.TableName))
		})
	}
}

func TestAddProduct_FieldsRoundTripVerbatim(t *testing.T) {
	it, catalog, _ := setup()
	call := contracts.CallContext{Caller: "seller.near", Timestamp: now}
	ctx := context.Background()

	_, err := it.Execute(ctx, call, add_product.Request{
		Name:        " A ",
		Price:       domain.NewAmount(3),
		Currency:    "usd ",
		Description: "  two spaces\n",
	})
	require.NoError(t, err)
	long := strings.Repeat("n", 300)
	_, err = it.Execute(ctx, call, add_product.Request{Name: long, Price: domain.NewAmount(1)})
	require.NoError(t, err)

	got, err := catalog.Page(ctx, domain.NewPage(1, 10))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, " A ", got[0].Name())
	assert.Equal(t, "usd ", got[0].Currency())
	assert.Equal(t, "  two spaces\n", got[0].Description())
	assert.Equal(t, long, got[1].Name())
}
