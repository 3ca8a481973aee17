package committer

import (
	"context"
	"fmt"

	"cloud.google.com/go/spanner"
	"google.golang.org/grpc/codes"
)

// Adapter applies plans to Cloud Spanner in a single read-write transaction.
type Adapter struct {
	client *spanner.Client
}

func NewAdapter(client *spanner.Client) *Adapter {
	return &Adapter{client: client}
}

func (a *Adapter) Apply(ctx context.Context, plan *Plan) error {
	if plan == nil || plan.IsEmpty() {
		return nil
	}

	if a.client == nil {
		return fmt.Errorf("committer: spanner client is nil")
	}

	muts := ToSpanner(plan)
	_, err := a.client.ReadWriteTransaction(ctx, func(ctx context.Context, tx *spanner.ReadWriteTransaction) error {
		return tx.BufferWrite(muts)
	})
	if spanner.ErrCode(err) == codes.AlreadyExists {
		return fmt.Errorf("%w: %v", ErrConflict, err)
	}
	return err
}

// ToSpanner converts the plan into Spanner insert mutations, preserving order.
func ToSpanner(plan *Plan) []*spanner.Mutation {
	out := make([]*spanner.Mutation, 0, len(plan.Mutations()))
	for _, m := range plan.Mutations() {
		out = append(out, spanner.InsertMap(m.Table, m.Values))
	}
	return out
}
