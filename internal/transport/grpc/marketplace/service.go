package marketplace

import (
	"context"

	"google.golang.org/grpc"

	"github.com/murkotick/marketplace-service/internal/transport/api"
)

const ServiceName = "marketplace.v1.MarketplaceService"

const (
	MethodAddProduct           = "/" + ServiceName + "/AddProduct"
	MethodGetProducts          = "/" + ServiceName + "/GetProducts"
	MethodGetProduct           = "/" + ServiceName + "/GetProduct"
	MethodPlaceOrder           = "/" + ServiceName + "/PlaceOrder"
	MethodGetOrder             = "/" + ServiceName + "/GetOrder"
	MethodOnRefundComplete     = "/" + ServiceName + "/OnRefundComplete"
	MethodListUnsettledRefunds = "/" + ServiceName + "/ListUnsettledRefunds"
)

// MarketplaceServer is the server API of marketplace.v1.MarketplaceService.
type MarketplaceServer interface {
	AddProduct(context.Context, *api.AddProductRequest) (*api.AddProductReply, error)
	GetProducts(context.Context, *api.GetProductsRequest) (*api.GetProductsReply, error)
	GetProduct(context.Context, *api.GetProductRequest) (*api.GetProductReply, error)
	PlaceOrder(context.Context, *api.PlaceOrderRequest) (*api.PlaceOrderReply, error)
	GetOrder(context.Context, *api.GetOrderRequest) (*api.GetOrderReply, error)
	OnRefundComplete(context.Context, *api.OnRefundCompleteRequest) (*api.OnRefundCompleteReply, error)
	ListUnsettledRefunds(context.Context, *api.ListUnsettledRefundsRequest) (*api.ListUnsettledRefundsReply, error)
}

func RegisterMarketplaceServer(s grpc.ServiceRegistrar, srv MarketplaceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// unaryHandler builds a grpc.MethodHandler for one RPC.
func unaryHandler[Req any, Reply any](fullMethod string, call func(MarketplaceServer, context.Context, *Req) (*Reply, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(MarketplaceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(MarketplaceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*MarketplaceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "AddProduct", Handler: unaryHandler(MethodAddProduct, MarketplaceServer.AddProduct)},
		{MethodName: "GetProducts", Handler: unaryHandler(MethodGetProducts, MarketplaceServer.GetProducts)},
		{MethodName: "GetProduct", Handler: unaryHandler(MethodGetProduct, MarketplaceServer.GetProduct)},
		{MethodName: "PlaceOrder", Handler: unaryHandler(MethodPlaceOrder, MarketplaceServer.PlaceOrder)},
		{MethodName: "GetOrder", Handler: unaryHandler(MethodGetOrder, MarketplaceServer.GetOrder)},
		{MethodName: "OnRefundComplete", Handler: unaryHandler(MethodOnRefundComplete, MarketplaceServer.OnRefundComplete)},
		{MethodName: "ListUnsettledRefunds", Handler: unaryHandler(MethodListUnsettledRefunds, MarketplaceServer.ListUnsettledRefunds)},
	},
	Streams: []grpc.StreamDesc{},
}
