package marketplace

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	app "github.com/murkotick/marketplace-service/internal/app/marketplace"
	contracts "github.com/murkotick/marketplace-service/internal/app/marketplace/contracts"
	"github.com/murkotick/marketplace-service/internal/app/marketplace/dto"
	"github.com/murkotick/marketplace-service/internal/app/marketplace/usecases/place_order"
	"github.com/murkotick/marketplace-service/internal/pkg/clock"
	"github.com/murkotick/marketplace-service/internal/transport/api"
)

// Handler is a thin gRPC transport adapter.
// It validates input, builds the call context from metadata and delegates to CQRS handlers.
type Handler struct {
	commands app.Commands
	queries  app.Queries
	clock    clock.Clock
	self     string
}

var _ MarketplaceServer = (*Handler)(nil)

// NewHandler builds the handler. self is the service's own account handle.
func NewHandler(cmd app.Commands, qry app.Queries, clk clock.Clock, self string) *Handler {
	return &Handler{commands: cmd, queries: qry, clock: clk, self: self}
}

func (h *Handler) AddProduct(ctx context.Context, req *api.AddProductRequest) (*api.AddProductReply, error) {
	if err := api.ValidateAddProduct(req); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	call, err := h.callContext(ctx)
	if err != nil {
		return nil, mapError(err)
	}

	appReq, err := api.ToAddProductRequest(req)
	if err != nil {
		return nil, mapError(err)
	}

	p, err := h.commands.AddProduct.Execute(ctx, call, appReq)
	if err != nil {
		return nil, mapError(err)
	}
	return &api.AddProductReply{Product: api.FromProduct(dto.FromProduct(p))}, nil
}

func (h *Handler) GetProducts(ctx context.Context, req *api.GetProductsRequest) (*api.GetProductsReply, error) {
	page, err := h.queries.GetProducts.Execute(ctx, req.Page, req.Limit)
	if err != nil {
		return nil, mapError(err)
	}
	return api.FromProductPage(page), nil
}

func (h *Handler) GetProduct(ctx context.Context, req *api.GetProductRequest) (*api.GetProductReply, error) {
	p, err := h.queries.GetProduct.Execute(ctx, req.ProductID)
	if err != nil {
		return nil, mapError(err)
	}
	return &api.GetProductReply{Product: api.FromProduct(p)}, nil
}

func (h *Handler) PlaceOrder(ctx context.Context, req *api.PlaceOrderRequest) (*api.PlaceOrderReply, error) {
	call, err := h.callContext(ctx)
	if err != nil {
		return nil, mapError(err)
	}

	res, err := h.commands.PlaceOrder.Execute(ctx, call, place_order.Request{ProductID: req.ProductID})
	if err != nil {
		return nil, mapError(err)
	}
	return &api.PlaceOrderReply{
		Order:            api.FromOrder(dto.FromOrder(res.Order)),
		BatchID:          res.BatchID,
		PaymentScheduled: res.Submitted,
	}, nil
}

func (h *Handler) GetOrder(ctx context.Context, req *api.GetOrderRequest) (*api.GetOrderReply, error) {
	o, err := h.queries.GetOrder.Execute(ctx, req.OrderID)
	if err != nil {
		return nil, mapError(err)
	}
	return &api.GetOrderReply{Order: api.FromOrder(o)}, nil
}

func (h *Handler) OnRefundComplete(ctx context.Context, req *api.OnRefundCompleteRequest) (*api.OnRefundCompleteReply, error) {
	if err := api.ValidateOnRefundComplete(req); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	call, err := h.callContext(ctx)
	if err != nil {
		return nil, mapError(err)
	}

	outcome := contracts.RefundOutcome{
		OrderID: req.OrderID,
		BatchID: req.BatchID,
		Settled: req.Settled,
		Reason:  req.Reason,
	}
	if err := h.commands.CompleteRefund.Execute(ctx, call, outcome); err != nil {
		return nil, mapError(err)
	}
	return &api.OnRefundCompleteReply{}, nil
}

func (h *Handler) ListUnsettledRefunds(ctx context.Context, _ *api.ListUnsettledRefundsRequest) (*api.ListUnsettledRefundsReply, error) {
	refunds, err := h.queries.Unsettled.Execute(ctx)
	if err != nil {
		return nil, mapError(err)
	}
	return api.FromUnsettled(refunds), nil
}
