package shared

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	contracts "github.com/murkotick/marketplace-service/internal/app/marketplace/contracts"
	"github.com/murkotick/marketplace-service/internal/app/marketplace/domain"
	"github.com/murkotick/marketplace-service/internal/models/m_outbox"
	commitplan "github.com/murkotick/marketplace-service/internal/pkg/committer"
)

// MarshalDomainEventPayload converts a domain event into a JSON payload suitable for the outbox.
//
// Amounts are written as base-10 strings and ids as numbers.
func MarshalDomainEventPayload(ev domain.DomainEvent) (string, error) {
	if ev == nil {
		return "{}", nil
	}

	var payload map[string]interface{}
	switch e := ev.(type) {
	case *domain.ProductCreatedEvent:
		payload = map[string]interface{}{
			"product_id": e.ProductID,
			"owner":      e.Owner,
			"name":       e.Name,
			"price":      e.Price.String(),
			"currency":   e.Currency,
			"created_at": e.CreatedAt,
		}

	case *domain.OrderPlacedEvent:
		payload = map[string]interface{}{
			"order_id":   e.OrderID,
			"product_id": e.ProductID,
			"buyer":      e.Buyer,
			"price":      e.Price.String(),
			"paid":       e.Paid.String(),
			"placed_at":  e.PlacedAt,
		}

	case *domain.RefundScheduledEvent:
		payload = map[string]interface{}{
			"order_id":     e.OrderID,
			"buyer":        e.Buyer,
			"amount":       e.Amount.String(),
			"scheduled_at": e.ScheduledAt,
		}

	case *domain.RefundSettledEvent:
		payload = map[string]interface{}{
			"order_id":   e.OrderID,
			"batch_id":   e.BatchID,
			"settled_at": e.SettledAt,
		}

	case *domain.RefundFailedEvent:
		payload = map[string]interface{}{
			"order_id":  e.OrderID,
			"batch_id":  e.BatchID,
			"reason":    e.Reason,
			"failed_at": e.FailedAt,
		}

	case *domain.PaymentSubmitFailedEvent:
		payload = map[string]interface{}{
			"order_id":  e.OrderID,
			"batch_id":  e.BatchID,
			"reason":    e.Reason,
			"failed_at": e.FailedAt,
		}
	}

	if payload != nil {
		b, err := json.Marshal(payload)
		return string(b), err
	}

	// Fallback: try to marshal the event directly.
	b, err := json.Marshal(ev)
	if err != nil {
		return "", fmt.Errorf("marshal outbox payload for %T: %w", ev, err)
	}
	return string(b), nil
}

// OutboxMutations enriches domain events into pending outbox rows.
func OutboxMutations(repo contracts.OutboxRepo, events []domain.DomainEvent, now time.Time) ([]*commitplan.Mutation, error) {
	out := make([]*commitplan.Mutation, 0, len(events))
	for _, ev := range events {
		payload, err := MarshalDomainEventPayload(ev)
		if err != nil {
			return nil, err
		}
		out = append(out, repo.InsertMut(&contracts.OutboxEvent{
			EventID:      uuid.New().String(),
			EventType:    ev.EventType(),
			AggregateID:  ev.AggregateID(),
			PayloadJSON:  payload,
			Status:       m_outbox.StatusPending,
			CreatedAtUTC: now,
		}))
	}
	return out, nil
}
