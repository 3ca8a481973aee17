package contracts

import (
	"context"

	commitplan "github.com/murkotick/marketplace-service/internal/pkg/committer"
)

// Committer applies a collection of mutations atomically. Usecases depend on
// this interface only; the Spanner adapter and the in-memory store both satisfy it.
type Committer interface {
	Apply(ctx context.Context, plan *commitplan.Plan) error
}
