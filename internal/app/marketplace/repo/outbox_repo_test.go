package repo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	contracts "github.com/murkotick/marketplace-service/internal/app/marketplace/contracts"
	"github.com/murkotick/marketplace-service/internal/models/m_outbox"
)

// TestInsertMut_Columns verifies every outbox column is set and processed_at starts empty.
func TestInsertMut_Columns(t *testing.T) {
	r := NewOutboxRepo()
	at := time.Date(2024, 1, 1, 10, 0, 0, 0, time.FixedZone("X", 3600))

	mut := r.InsertMut(&contracts.OutboxEvent{
		EventID:      "evt-1",
		EventType:    "order.placed",
		AggregateID:  "order:100",
		PayloadJSON:  `{"order_id":100}`,
		Status:       m_outbox.StatusPending,
		CreatedAtUTC: at,
	})
	require.NotNil(t, mut)
	assert.Equal(t, m_outbox.TableName, mut.Table)

	values := mut.Values
	assert.Equal(t, "evt-1", values[m_outbox.ColEventID])
	assert.Equal(t, "order.placed", values[m_outbox.ColEventType])
	assert.Equal(t, "order:100", values[m_outbox.ColAggregateID])
	assert.Equal(t, `{"order_id":100}`, values[m_outbox.ColPayload])
	assert.Equal(t, m_outbox.StatusPending, values[m_outbox.ColStatus])
	assert.Equal(t, at.UTC(), values[m_outbox.ColCreatedAt])

	// processed_at must be present and nil until a relay publishes the event
	v, ok := values[m_outbox.ColProcessedAt]
	require.True(t, ok, "expected key %s in insert map", m_outbox.ColProcessedAt)
	assert.Nil(t, v)
}

func TestInsertMut_Nil(t *testing.T) {
	assert.Nil(t, NewOutboxRepo().InsertMut(nil))
}
