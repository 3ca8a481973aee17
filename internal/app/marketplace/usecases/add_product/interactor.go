package add_product

import (
	"context"

	"go.uber.org/zap"

	contracts "github.com/murkotick/marketplace-service/internal/app/marketplace/contracts"
	"github.com/murkotick/marketplace-service/internal/app/marketplace/domain"
	shared "github.com/murkotick/marketplace-service/internal/app/marketplace/usecases/shared"
	commitplan "github.com/murkotick/marketplace-service/internal/pkg/committer"
)

// Request is the application-level add-product request.
type Request struct {
	Name        string
	Price       domain.Amount
	Currency    string
	Description string
	Options     []string
}

// Interactor registers catalog products. The product record and its outbox
// events commit in one plan through the product log.
type Interactor struct {
	Products   contracts.ProductStore
	OutboxRepo contracts.OutboxRepo
	Logger     *zap.Logger
}

// NewInteractor constructs the interactor.
func NewInteractor(products contracts.ProductStore, outboxRepo contracts.OutboxRepo, logger *zap.Logger) *Interactor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Interactor{
		Products:   products,
		OutboxRepo: outboxRepo,
		Logger:     logger,
	}
}

// Execute creates a product owned by the caller and returns it with its assigned id.
func (it *Interactor) Execute(ctx context.Context, call contracts.CallContext, req Request) (*domain.Product, error) {
	product, err := it.Products.Add(ctx, func(id uint64) (*domain.Product, []*commitplan.Mutation, error) {
		// 1. Build domain aggregate (validates)
		p, err := domain.NewProduct(id, call.Caller, req.Name, req.Price, req.Currency, req.Description, req.Options, call.Timestamp)
		if err != nil {
			return nil, nil, err
		}

		// 2. Outbox events ride along with the record insert
		muts, err := shared.OutboxMutations(it.OutboxRepo, p.DomainEvents(), call.Timestamp)
		if err != nil {
			return nil, nil, err
		}
		return p, muts, nil
	})
	if err != nil {
		return nil, err
	}

	it.Logger.Info("product added",
		zap.Uint64("product_id", product.ID()),
		zap.String("owner", product.Owner()),
		zap.String("name", product.Name()),
		zap.String("price", product.Price().String()),
		zap.String("currency", product.Currency()),
	)
	return product, nil
}
