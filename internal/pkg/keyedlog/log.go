// Package keyedlog implements an append-only record log with a key index on top
// of a namespaced storage port.
//
// Keys are assigned as seed + current length, so they are dense, strictly
// increasing and never reused. The log has no delete or update operation.
package keyedlog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/murkotick/marketplace-service/internal/models/m_record"
	"github.com/murkotick/marketplace-service/internal/pkg/committer"
)

var (
	// ErrNotFound is returned when no record is stored under a key.
	ErrNotFound = errors.New("keyedlog: record not found")

	// ErrKeyConflict is returned when another writer appended under the same key first.
	ErrKeyConflict = errors.New("keyedlog: key already taken")
)

// Record is a stored log entry as the backend sees it.
type Record struct {
	Namespace     string
	Key           uint64
	SchemaVersion int64
	Payload       []byte
	CreatedAt     time.Time
}

// Reader is the read side of the storage port.
type Reader interface {
	// Count returns the number of records in namespace.
	Count(ctx context.Context, namespace string) (uint64, error)

	// Get returns the record stored under key or ErrNotFound.
	Get(ctx context.Context, namespace string, key uint64) (*Record, error)

	// Range returns up to limit records in key order, starting at position offset.
	Range(ctx context.Context, namespace string, offset, limit uint64) ([]*Record, error)
}

// Committer applies a plan atomically.
type Committer interface {
	Apply(ctx context.Context, plan *committer.Plan) error
}

// Codec is the versioned serialization contract for T.
type Codec[T any] interface {
	Version() int64
	Encode(v T) ([]byte, error)
	Decode(version int64, payload []byte) (T, error)
}

// BuildFunc builds the record stored under key together with any companion
// mutations that must commit in the same plan.
type BuildFunc[T any] func(key uint64) (T, []*committer.Mutation, error)

// Log is a typed append-only log bound to one namespace.
type Log[T any] struct {
	namespace string
	seed      uint64
	reader    Reader
	committer Committer
	codec     Codec[T]
	stamp     func(T) time.Time

	mu sync.Mutex
}

// New creates a Log. stamp extracts the creation time persisted alongside each record.
func New[T any](namespace string, seed uint64, r Reader, c Committer, codec Codec[T], stamp func(T) time.Time) *Log[T] {
	return &Log[T]{
		namespace: namespace,
		seed:      seed,
		reader:    r,
		committer: c,
		codec:     codec,
		stamp:     stamp,
	}
}

// Len returns the number of appended records.
func (l *Log[T]) Len(ctx context.Context) (uint64, error) {
	return l.reader.Count(ctx, l.namespace)
}

// Append assigns the next key, builds the record for it and commits the record
// together with the companion mutations. Key assignment and the write happen
// under one lock, so two appends in this process never race for a key.
func (l *Log[T]) Append(ctx context.Context, build BuildFunc[T]) (T, error) {
	var zero T

	l.mu.Lock()
	defer l.mu.Unlock()

	n, err := l.reader.Count(ctx, l.namespace)
	if err != nil {
		return zero, fmt.Errorf("keyedlog %s: count: %w", l.namespace, err)
	}
	key := l.seed + n

	rec, extra, err := build(key)
	if err != nil {
		return zero, err
	}

	payload, err := l.codec.Encode(rec)
	if err != nil {
		return zero, fmt.Errorf("keyedlog %s: encode key %d: %w", l.namespace, key, err)
	}

	plan := committer.NewPlan()
	plan.Add(m_record.InsertMutation(m_record.BuildInsertMap(l.namespace, key, l.codec.Version(), payload, l.stamp(rec))))
	for _, m := range extra {
		plan.Add(m)
	}

	if err := l.committer.Apply(ctx, plan); err != nil {
		if errors.Is(err, committer.ErrConflict) {
			return zero, fmt.Errorf("%w: %s/%d", ErrKeyConflict, l.namespace, key)
		}
		return zero, fmt.Errorf("keyedlog %s: apply: %w", l.namespace, err)
	}
	return rec, nil
}

// Get returns the record stored under key.
func (l *Log[T]) Get(ctx context.Context, key uint64) (T, error) {
	var zero T
	if key < l.seed {
		return zero, ErrNotFound
	}
	rec, err := l.reader.Get(ctx, l.namespace, key)
	if err != nil {
		return zero, err
	}
	return l.decode(rec)
}

// Slice returns up to count records starting at position offset. Out-of-range
// requests return fewer or zero records, never an error.
func (l *Log[T]) Slice(ctx context.Context, offset, count uint64) ([]T, error) {
	out := make([]T, 0)
	if count == 0 {
		return out, nil
	}
	n, err := l.reader.Count(ctx, l.namespace)
	if err != nil {
		return nil, err
	}
	if offset >= n {
		return out, nil
	}
	if count > n-offset {
		count = n - offset
	}

	recs, err := l.reader.Range(ctx, l.namespace, offset, count)
	if err != nil {
		return nil, err
	}
	for _, rec := range recs {
		v, err := l.decode(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (l *Log[T]) decode(rec *Record) (T, error) {
	v, err := l.codec.Decode(rec.SchemaVersion, rec.Payload)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("keyedlog %s: decode key %d: %w", l.namespace, rec.Key, err)
	}
	return v, nil
}
