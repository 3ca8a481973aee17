package queries

import (
	"context"
	"time"

	contracts "github.com/murkotick/marketplace-service/internal/app/marketplace/contracts"
	"github.com/murkotick/marketplace-service/internal/models/m_outbox"
)

// RowSource exposes raw table rows; memstore.Store satisfies it.
type RowSource interface {
	Rows(table string) []map[string]interface{}
}

// MemoryOutboxReader serves outbox events from an in-memory store.
type MemoryOutboxReader struct {
	rows RowSource
}

func NewMemoryOutboxReader(rows RowSource) *MemoryOutboxReader {
	return &MemoryOutboxReader{rows: rows}
}

var _ contracts.OutboxReader = (*MemoryOutboxReader)(nil)

// ListEvents returns matching events in insertion order.
func (r *MemoryOutboxReader) ListEvents(ctx context.Context, eventTypes ...string) ([]*contracts.OutboxEvent, error) {
	want := make(map[string]bool, len(eventTypes))
	for _, t := range eventTypes {
		want[t] = true
	}

	var out []*contracts.OutboxEvent
	for _, row := range r.rows.Rows(m_outbox.TableName) {
		e := OutboxEventFromRow(row)
		if len(want) > 0 && !want[e.EventType] {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

// OutboxEventFromRow converts an outbox insert map back into an OutboxEvent.
func OutboxEventFromRow(row map[string]interface{}) *contracts.OutboxEvent {
	e := &contracts.OutboxEvent{}
	e.EventID, _ = row[m_outbox.ColEventID].(string)
	e.EventType, _ = row[m_outbox.ColEventType].(string)
	e.AggregateID, _ = row[m_outbox.ColAggregateID].(string)
	e.PayloadJSON, _ = row[m_outbox.ColPayload].(string)
	e.Status, _ = row[m_outbox.ColStatus].(string)
	if t, ok := row[m_outbox.ColCreatedAt].(time.Time); ok {
		e.CreatedAtUTC = t
	}
	return e
}
