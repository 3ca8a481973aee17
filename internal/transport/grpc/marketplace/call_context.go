package marketplace

import (
	"context"
	"strings"

	"google.golang.org/grpc/metadata"

	contracts "github.com/murkotick/marketplace-service/internal/app/marketplace/contracts"
	"github.com/murkotick/marketplace-service/internal/app/marketplace/domain"
	"github.com/murkotick/marketplace-service/internal/transport/api"
)

// Metadata keys carrying the host call context.
const (
	MetadataAccountID       = api.KeyAccountID
	MetadataAttachedDeposit = api.KeyAttachedDeposit
)

// WithCallContext returns ctx carrying caller and deposit as outgoing metadata.
func WithCallContext(ctx context.Context, caller string, deposit domain.Amount) context.Context {
	return metadata.AppendToOutgoingContext(ctx,
		MetadataAccountID, caller,
		MetadataAttachedDeposit, deposit.String(),
	)
}

// callContext reads the caller and attached deposit from incoming metadata.
// A missing deposit is zero; a malformed one is an invalid argument.
func (h *Handler) callContext(ctx context.Context) (contracts.CallContext, error) {
	call := contracts.CallContext{
		Timestamp: h.clock.Now(),
		Self:      h.self,
	}

	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return call, nil
	}
	if v := md.Get(MetadataAccountID); len(v) > 0 {
		call.Caller = strings.TrimSpace(v[0])
	}
	if v := md.Get(MetadataAttachedDeposit); len(v) > 0 && strings.TrimSpace(v[0]) != "" {
		amt, err := domain.ParseAmount(v[0])
		if err != nil {
			return call, err
		}
		call.AttachedPayment = amt
	}
	return call, nil
}
