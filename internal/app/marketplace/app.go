// Package marketplace wires the catalog, the order ledger and the order flow
// into the command and query sets the transports serve.
package marketplace

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	contracts "github.com/murkotick/marketplace-service/internal/app/marketplace/contracts"
	"github.com/murkotick/marketplace-service/internal/app/marketplace/queries/get_order"
	"github.com/murkotick/marketplace-service/internal/app/marketplace/queries/get_product"
	"github.com/murkotick/marketplace-service/internal/app/marketplace/queries/get_products"
	"github.com/murkotick/marketplace-service/internal/app/marketplace/queries/unsettled_refunds"
	"github.com/murkotick/marketplace-service/internal/app/marketplace/repo"
	"github.com/murkotick/marketplace-service/internal/app/marketplace/usecases/add_product"
	"github.com/murkotick/marketplace-service/internal/app/marketplace/usecases/complete_refund"
	"github.com/murkotick/marketplace-service/internal/app/marketplace/usecases/place_order"
	"github.com/murkotick/marketplace-service/internal/pkg/clock"
	"github.com/murkotick/marketplace-service/internal/pkg/keyedlog"
)

// Commands groups write interactors.
// Keep transport layer depending on application layer only.
type Commands struct {
	AddProduct     *add_product.Interactor
	PlaceOrder     *place_order.Interactor
	CompleteRefund *complete_refund.Interactor
}

// Queries groups read handlers.
type Queries struct {
	GetProducts *get_products.Handler
	GetProduct  *get_product.Handler
	GetOrder    *get_order.Handler
	Unsettled   *unsettled_refunds.Handler
}

// ErrMissingDependency is returned by New when a required port is nil.
var ErrMissingDependency = errors.New("marketplace: missing dependency")

// Deps are the infrastructure ports the application runs on. Reader,
// Committer, Outbox and Gateway are required; the rest have defaults.
type Deps struct {
	Reader    keyedlog.Reader
	Committer contracts.Committer
	Outbox    contracts.OutboxReader
	Gateway   contracts.PaymentGateway
	Clock     clock.Clock
	Logger    *zap.Logger

	ProductIDSeed uint64
	OrderIDSeed   uint64
}

// App is the assembled application.
type App struct {
	Catalog  *repo.Catalog
	Orders   *repo.OrderLedger
	Commands Commands
	Queries  Queries
}

func (d Deps) validate() error {
	switch {
	case d.Reader == nil:
		return fmt.Errorf("%w: Reader", ErrMissingDependency)
	case d.Committer == nil:
		return fmt.Errorf("%w: Committer", ErrMissingDependency)
	case d.Outbox == nil:
		return fmt.Errorf("%w: Outbox", ErrMissingDependency)
	case d.Gateway == nil:
		return fmt.Errorf("%w: Gateway", ErrMissingDependency)
	}
	return nil
}

func New(d Deps) (*App, error) {
	if err := d.validate(); err != nil {
		return nil, err
	}
	if d.Clock == nil {
		d.Clock = clock.RealClock{}
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.ProductIDSeed == 0 {
		d.ProductIDSeed = repo.DefaultProductIDSeed
	}
	if d.OrderIDSeed == 0 {
		d.OrderIDSeed = repo.DefaultOrderIDSeed
	}

	catalog := repo.NewCatalog(d.Reader, d.Committer, d.ProductIDSeed)
	orders := repo.NewOrderLedger(d.Reader, d.Committer, d.OrderIDSeed)
	outboxRepo := repo.NewOutboxRepo()

	return &App{
		Catalog: catalog,
		Orders:  orders,
		Commands: Commands{
			AddProduct:     add_product.NewInteractor(catalog, outboxRepo, d.Logger.Named("add_product")),
			PlaceOrder:     place_order.NewInteractor(catalog, orders, outboxRepo, d.Committer, d.Gateway, d.Clock, d.Logger.Named("place_order")),
			CompleteRefund: complete_refund.NewInteractor(orders, outboxRepo, d.Committer, d.Clock, d.Logger.Named("complete_refund")),
		},
		Queries: Queries{
			GetProducts: get_products.NewHandler(catalog),
			GetProduct:  get_product.NewHandler(catalog),
			GetOrder:    get_order.NewHandler(orders),
			Unsettled:   unsettled_refunds.NewHandler(d.Outbox),
		},
	}, nil
}
