package contracts

import (
	"context"
	"time"

	commitplan "github.com/murkotick/marketplace-service/internal/pkg/committer"
)

// OutboxRepo is the write-side repository interface for the transactional outbox.
// It returns mutations; it does not apply them.
type OutboxRepo interface {
	InsertMut(e *OutboxEvent) *commitplan.Mutation
}

// OutboxReader lists outbox events for reconciliation queries.
type OutboxReader interface {
	// ListEvents returns events of the given types ordered by creation time.
	ListEvents(ctx context.Context, eventTypes ...string) ([]*OutboxEvent, error)
}

// OutboxEvent is the application-level representation of an event persisted to the outbox table.
// Usecases are responsible for enriching domain events into this structure.
type OutboxEvent struct {
	EventID      string
	EventType    string
	AggregateID  string
	PayloadJSON  string
	Status       string
	CreatedAtUTC time.Time
}
