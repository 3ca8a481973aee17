package marketplace_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	app "github.com/murkotick/marketplace-service/internal/app/marketplace"
	contracts "github.com/murkotick/marketplace-service/internal/app/marketplace/contracts"
	"github.com/murkotick/marketplace-service/internal/app/marketplace/queries"
	"github.com/murkotick/marketplace-service/internal/pkg/clock"
	"github.com/murkotick/marketplace-service/internal/pkg/memstore"
	"github.com/murkotick/marketplace-service/internal/transport/api"
	httpmarket "github.com/murkotick/marketplace-service/internal/transport/http/marketplace"
)

const self = "market.near"

type nopGateway struct{}

func (nopGateway) Submit(context.Context, contracts.TransferBatch) error { return nil }

func newRouter(t *testing.T) http.Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st := memstore.New()
	clk := clock.NewTicking(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), time.Millisecond)
	a, err := app.New(app.Deps{
		Reader:    st,
		Committer: st,
		Outbox:    queries.NewMemoryOutboxReader(st),
		Gateway:   nopGateway{},
		Clock:     clk,
	})
	require.NoError(t, err)
	return httpmarket.NewServer(a.Commands, a.Queries, clk, self, nil).Handler()
}

func do(t *testing.T, h http.Handler, method, path, caller, deposit string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if caller != "" {
		req.Header.Set(api.KeyAccountID, caller)
	}
	if deposit != "" {
		req.Header.Set(api.KeyAttachedDeposit, deposit)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) *T {
	t.Helper()
	out := new(T)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
	return out
}

func TestHTTP_Flow(t *testing.T) {
	h := newRouter(t)

	w := do(t, h, http.MethodPost, "/api/v1/products", "seller.near", "", api.AddProductRequest{Name: "Lamp", Price: "340282366920938463463374607431768211455"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	added := decode[api.AddProductReply](t, w)
	assert.Equal(t, uint64(100), added.Product.ID)
	assert.Equal(t, "340282366920938463463374607431768211455", added.Product.Price)

	w = do(t, h, http.MethodPost, "/api/v1/products", "seller.near", "", api.AddProductRequest{Name: "Mug", Price: "3"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = do(t, h, http.MethodGet, "/api/v1/products?page=2&limit=1", "", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[api.GetProductsReply](t, w)
	require.Len(t, page.Products, 1)
	assert.Equal(t, "Mug", page.Products[0].Name)
	assert.True(t, page.Success)

	w = do(t, h, http.MethodGet, "/api/v1/products?page=9", "", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[api.GetProductsReply](t, w).Products)

	w = do(t, h, http.MethodPost, "/api/v1/orders", "buyer.near", "4", api.PlaceOrderRequest{ProductID: 101})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	placed := decode[api.PlaceOrderReply](t, w)
	assert.Equal(t, "1", placed.Order.Refund)
	assert.True(t, placed.PaymentScheduled)

	w = do(t, h, http.MethodGet, "/api/v1/orders/100", "", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "buyer.near", decode[api.GetOrderReply](t, w).Order.Buyer)

	w = do(t, h, http.MethodGet, "/api/v1/refunds/unsettled", "", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, decode[api.ListUnsettledRefundsReply](t, w).Refunds, 1)

	w = do(t, h, http.MethodPost, "/api/v1/orders/100/refund-outcome", self, "", api.OnRefundCompleteRequest{Settled: true, BatchID: placed.BatchID})
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

	w = do(t, h, http.MethodGet, "/api/v1/refunds/unsettled", "", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[api.ListUnsettledRefundsReply](t, w).Refunds)
}

func TestHTTP_Errors(t *testing.T) {
	h := newRouter(t)
	w := do(t, h, http.MethodPost, "/api/v1/products", "seller.near", "", api.AddProductRequest{Name: "Lamp", Price: "10"})
	require.Equal(t, http.StatusCreated, w.Code)

	tests := []struct {
		name    string
		method  string
		path    string
		caller  string
		deposit string
		body    any
		want    int
	}{
		{"bad json", http.MethodPost, "/api/v1/products", "seller.near", "", "not an object", http.StatusBadRequest},
		{"negative price", http.MethodPost, "/api/v1/products", "seller.near", "", api.AddProductRequest{Name: "x", Price: "-1"}, http.StatusBadRequest},
		{"bad page", http.MethodGet, "/api/v1/products?page=abc", "", "", nil, http.StatusBadRequest},
		{"bad product id", http.MethodGet, "/api/v1/products/abc", "", "", nil, http.StatusBadRequest},
		{"missing product", http.MethodGet, "/api/v1/products/5", "", "", nil, http.StatusNotFound},
		{"underpaid", http.MethodPost, "/api/v1/orders", "buyer.near", "9", api.PlaceOrderRequest{ProductID: 100}, http.StatusPaymentRequired},
		{"unknown product", http.MethodPost, "/api/v1/orders", "buyer.near", "9", api.PlaceOrderRequest{ProductID: 7}, http.StatusNotFound},
		{"malformed deposit", http.MethodPost, "/api/v1/orders", "buyer.near", "ten", api.PlaceOrderRequest{ProductID: 100}, http.StatusBadRequest},
		{"missing order", http.MethodGet, "/api/v1/orders/100", "", "", nil, http.StatusNotFound},
		{"outsider callback", http.MethodPost, "/api/v1/orders/100/refund-outcome", "mallory.near", "", api.OnRefundCompleteRequest{Settled: true}, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, tt.method, tt.path, tt.caller, tt.deposit, tt.body)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
			assert.Contains(t, w.Body.String(), `"error"`)
		})
	}
}

func TestHTTP_Healthz(t *testing.T) {
	w := do(t, newRouter(t), http.MethodGet, "/healthz", "", "", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}
