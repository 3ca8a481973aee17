package queries

import (
	"context"
	"time"

	"cloud.google.com/go/spanner"
	"google.golang.org/api/iterator"

	contracts "github.com/murkotick/marketplace-service/internal/app/marketplace/contracts"
	"github.com/murkotick/marketplace-service/internal/pkg/keyedlog"
)

// SpannerReadModel is an infrastructure adapter serving the keyed-log read
// port and the outbox reader straight from Spanner.
type SpannerReadModel struct {
	Client *spanner.Client
}

func NewSpannerReadModel(client *spanner.Client) *SpannerReadModel {
	return &SpannerReadModel{Client: client}
}

var (
	_ keyedlog.Reader        = (*SpannerReadModel)(nil)
	_ contracts.OutboxReader = (*SpannerReadModel)(nil)
)

func (rm *SpannerReadModel) Count(ctx context.Context, namespace string) (uint64, error) {
	stmt := spanner.Statement{
		SQL:    `SELECT COUNT(*) FROM records WHERE namespace = @ns`,
		Params: map[string]interface{}{"ns": namespace},
	}

	iter := rm.Client.Single().Query(ctx, stmt)
	defer iter.Stop()

	row, err := iter.Next()
	if err == iterator.Done {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	var n int64
	if err := row.Columns(&n); err != nil {
		return 0, err
	}
	return uint64(n), nil
}

func (rm *SpannerReadModel) Get(ctx context.Context, namespace string, key uint64) (*keyedlog.Record, error) {
	stmt := spanner.Statement{
		SQL: `SELECT namespace, record_key, schema_version, payload, created_at
		      FROM records
		      WHERE namespace = @ns AND record_key = @key`,
		Params: map[string]interface{}{"ns": namespace, "key": int64(key)},
	}

	iter := rm.Client.Single().Query(ctx, stmt)
	defer iter.Stop()

	row, err := iter.Next()
	if err == iterator.Done {
		return nil, keyedlog.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return scanRecord(row)
}

// Range reads by position. Keys are dense from the log seed, so ordering by
// key and offsetting matches insertion order.
func (rm *SpannerReadModel) Range(ctx context.Context, namespace string, offset, limit uint64) ([]*keyedlog.Record, error) {
	stmt := spanner.Statement{
		SQL: `SELECT namespace, record_key, schema_version, payload, created_at
		      FROM records
		      WHERE namespace = @ns
		      ORDER BY record_key ASC
		      LIMIT @limit OFFSET @offset`,
		Params: map[string]interface{}{
			"ns":     namespace,
			"limit":  int64(limit),
			"offset": int64(offset),
		},
	}

	iter := rm.Client.Single().Query(ctx, stmt)
	defer iter.Stop()

	out := make([]*keyedlog.Record, 0, limit)
	for {
		row, err := iter.Next()
		if err == iterator.Done {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		rec, err := scanRecord(row)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
}

func (rm *SpannerReadModel) ListEvents(ctx context.Context, eventTypes ...string) ([]*contracts.OutboxEvent, error) {
	stmt := spanner.Statement{
		SQL: `SELECT event_id, event_type, aggregate_id, payload, status, created_at
		      FROM outbox_events
		      WHERE event_type IN UNNEST(@types)
		      ORDER BY created_at ASC, event_id ASC`,
		Params: map[string]interface{}{"types": eventTypes},
	}

	iter := rm.Client.Single().Query(ctx, stmt)
	defer iter.Stop()

	var out []*contracts.OutboxEvent
	for {
		row, err := iter.Next()
		if err == iterator.Done {
			return out, nil
		}
		if err != nil {
			return nil, err
		}

		var e contracts.OutboxEvent
		if err := row.Columns(&e.EventID, &e.EventType, &e.AggregateID, &e.PayloadJSON, &e.Status, &e.CreatedAtUTC); err != nil {
			return nil, err
		}
		out = append(out, &e)
	}
}

func scanRecord(row *spanner.Row) (*keyedlog.Record, error) {
	var (
		ns        string
		key       int64
		version   int64
		payload   []byte
		createdAt time.Time
	)
	if err := row.Columns(&ns, &key, &version, &payload, &createdAt); err != nil {
		return nil, err
	}
	return &keyedlog.Record{
		Namespace:     ns,
		Key:           uint64(key),
		SchemaVersion: version,
		Payload:       payload,
		CreatedAt:     createdAt.UTC(),
	}, nil
}
