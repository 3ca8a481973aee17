// Package memstore is an in-process storage backend. It applies commit plans
// atomically under one lock and serves the keyed-log read port, so the service
// can run without Spanner and tests can inspect every row written.
package memstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/murkotick/marketplace-service/internal/models/m_record"
	"github.com/murkotick/marketplace-service/internal/pkg/committer"
	"github.com/murkotick/marketplace-service/internal/pkg/keyedlog"
)

type namespaceLog struct {
	order []*keyedlog.Record
	index map[uint64]*keyedlog.Record
}

// Store keeps every table in memory.
type Store struct {
	mu     sync.RWMutex
	logs   map[string]*namespaceLog
	tables map[string][]map[string]interface{}

	// FailApply, when set, makes Apply return its result without writing.
	FailApply func(plan *committer.Plan) error
}

func New() *Store {
	return &Store{
		logs:   make(map[string]*namespaceLog),
		tables: make(map[string][]map[string]interface{}),
	}
}

// Apply validates the whole plan first and only then writes, so a rejected
// plan leaves no partial rows behind.
func (s *Store) Apply(ctx context.Context, plan *committer.Plan) error {
	if plan == nil || plan.IsEmpty() {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailApply != nil {
		if err := s.FailApply(plan); err != nil {
			return err
		}
	}

	pending := make(map[string]map[uint64]bool)
	records := make([]*keyedlog.Record, 0)
	for _, m := range plan.Mutations() {
		if m.Table != m_record.TableName {
			continue
		}
		rec, err := recordFromValues(m.Values)
		if err != nil {
			return err
		}
		if s.hasKey(rec.Namespace, rec.Key) || pending[rec.Namespace][rec.Key] {
			return fmt.Errorf("%w: %s/%d", committer.ErrConflict, rec.Namespace, rec.Key)
		}
		if pending[rec.Namespace] == nil {
			pending[rec.Namespace] = make(map[uint64]bool)
		}
		pending[rec.Namespace][rec.Key] = true
		records = append(records, rec)
	}

	for _, rec := range records {
		s.appendRecord(rec)
	}
	for _, m := range plan.Mutations() {
		if m.Table == m_record.TableName {
			continue
		}
		row := make(map[string]interface{}, len(m.Values))
		for k, v := range m.Values {
			row[k] = v
		}
		s.tables[m.Table] = append(s.tables[m.Table], row)
	}
	return nil
}

func (s *Store) Count(ctx context.Context, namespace string) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	nl, ok := s.logs[namespace]
	if !ok {
		return 0, nil
	}
	return uint64(len(nl.order)), nil
}

func (s *Store) Get(ctx context.Context, namespace string, key uint64) (*keyedlog.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	nl, ok := s.logs[namespace]
	if !ok {
		return nil, keyedlog.ErrNotFound
	}
	rec, ok := nl.index[key]
	if !ok {
		return nil, keyedlog.ErrNotFound
	}
	return rec, nil
}

func (s *Store) Range(ctx context.Context, namespace string, offset, limit uint64) ([]*keyedlog.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*keyedlog.Record, 0)
	nl, ok := s.logs[namespace]
	if !ok || offset >= uint64(len(nl.order)) {
		return out, nil
	}
	end := uint64(len(nl.order))
	if limit < end-offset {
		end = offset + limit
	}
	return append(out, nl.order[offset:end]...), nil
}

// Rows returns a copy of every row inserted into table, in insertion order.
func (s *Store) Rows(table string) []map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows := s.tables[table]
	out := make([]map[string]interface{}, 0, len(rows))
	for _, r := range rows {
		cp := make(map[string]interface{}, len(r))
		for k, v := range r {
			cp[k] = v
		}
		out = append(out, cp)
	}
	return out
}

func (s *Store) hasKey(namespace string, key uint64) bool {
	nl, ok := s.logs[namespace]
	if !ok {
		return false
	}
	_, ok = nl.index[key]
	return ok
}

func (s *Store) appendRecord(rec *keyedlog.Record) {
	nl, ok := s.logs[rec.Namespace]
	if !ok {
		nl = &namespaceLog{index: make(map[uint64]*keyedlog.Record)}
		s.logs[rec.Namespace] = nl
	}
	nl.order = append(nl.order, rec)
	nl.index[rec.Key] = rec
}

func recordFromValues(values map[string]interface{}) (*keyedlog.Record, error) {
	ns, ok := values[m_record.ColNamespace].(string)
	if !ok {
		return nil, fmt.Errorf("memstore: %s must be a string", m_record.ColNamespace)
	}
	key, ok := values[m_record.ColRecordKey].(int64)
	if !ok || key < 0 {
		return nil, fmt.Errorf("memstore: %s must be a non-negative int64", m_record.ColRecordKey)
	}
	version, _ := values[m_record.ColSchemaVersion].(int64)
	payload, _ := values[m_record.ColPayload].([]byte)
	createdAt, _ := values[m_record.ColCreatedAt].(time.Time)

	buf := make([]byte, len(payload))
	copy(buf, payload)
	return &keyedlog.Record{
		Namespace:     ns,
		Key:           uint64(key),
		SchemaVersion: version,
		Payload:       buf,
		CreatedAt:     createdAt,
	}, nil
}
