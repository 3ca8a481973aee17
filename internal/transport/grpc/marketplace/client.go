package marketplace

import (
	"context"

	"google.golang.org/grpc"

	"github.com/murkotick/marketplace-service/internal/transport/api"
)

// Client is a typed client for marketplace.v1.MarketplaceService. Caller and
// deposit travel as metadata; set them with WithCallContext.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) invoke(ctx context.Context, method string, in, out any, opts ...grpc.CallOption) error {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	return c.cc.Invoke(ctx, method, in, out, opts...)
}

func (c *Client) AddProduct(ctx context.Context, in *api.AddProductRequest, opts ...grpc.CallOption) (*api.AddProductReply, error) {
	out := new(api.AddProductReply)
	if err := c.invoke(ctx, MethodAddProduct, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetProducts(ctx context.Context, in *api.GetProductsRequest, opts ...grpc.CallOption) (*api.GetProductsReply, error) {
	out := new(api.GetProductsReply)
	if err := c.invoke(ctx, MethodGetProducts, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetProduct(ctx context.Context, in *api.GetProductRequest, opts ...grpc.CallOption) (*api.GetProductReply, error) {
	out := new(api.GetProductReply)
	if err := c.invoke(ctx, MethodGetProduct, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) PlaceOrder(ctx context.Context, in *api.PlaceOrderRequest, opts ...grpc.CallOption) (*api.PlaceOrderReply, error) {
	out := new(api.PlaceOrderReply)
	if err := c.invoke(ctx, MethodPlaceOrder, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetOrder(ctx context.Context, in *api.GetOrderRequest, opts ...grpc.CallOption) (*api.GetOrderReply, error) {
	out := new(api.GetOrderReply)
	if err := c.invoke(ctx, MethodGetOrder, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) OnRefundComplete(ctx context.Context, in *api.OnRefundCompleteRequest, opts ...grpc.CallOption) (*api.OnRefundCompleteReply, error) {
	out := new(api.OnRefundCompleteReply)
	if err := c.invoke(ctx, MethodOnRefundComplete, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListUnsettledRefunds(ctx context.Context, in *api.ListUnsettledRefundsRequest, opts ...grpc.CallOption) (*api.ListUnsettledRefundsReply, error) {
	out := new(api.ListUnsettledRefundsReply)
	if err := c.invoke(ctx, MethodListUnsettledRefunds, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
