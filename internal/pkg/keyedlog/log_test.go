package keyedlog_test

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/murkotick/marketplace-service/internal/pkg/committer"
	"github.com/murkotick/marketplace-service/internal/pkg/keyedlog"
	"github.com/murkotick/marketplace-service/internal/pkg/memstore"
)

type item struct {
	Key   uint64
	Value uint64
}

type itemCodec struct{}

func (itemCodec) Version() int64 { return 1 }

func (itemCodec) Encode(v item) ([]byte, error) {
	b := make([]byte, 16)
	binary.BigEndian.PutUint64(b, v.Key)
	binary.BigEndian.PutUint64(b[8:], v.Value)
	return b, nil
}

func (itemCodec) Decode(version int64, payload []byte) (item, error) {
	if version != 1 || len(payload) != 16 {
		return item{}, fmt.Errorf("bad payload v%d len %d", version, len(payload))
	}
	return item{Key: binary.BigEndian.Uint64(payload), Value: binary.BigEndian.Uint64(payload[8:])}, nil
}

var stamp = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

func newLog(st *memstore.Store, ns string, seed uint64) *keyedlog.Log[item] {
	return keyedlog.New[item](ns, seed, st, st, itemCodec{}, func(item) time.Time { return stamp })
}

func appendValue(t *testing.T, l *keyedlog.Log[item], v uint64) item {
	t.Helper()
	it, err := l.Append(context.Background(), func(key uint64) (item, []*committer.Mutation, error) {
		return item{Key: key, Value: v}, nil, nil
	})
	require.NoError(t, err)
	return it
}

func TestAppend_AssignsDenseKeysFromSeed(t *testing.T) {
	ctx := context.Background()
	l := newLog(memstore.New(), "p", 100)

	for i := uint64(0); i < 5; i++ {
		it := appendValue(t, l, i*10)
		assert.Equal(t, 100+i, it.Key)
	}

	n, err := l.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), n)

	got, err := l.Get(ctx, 103)
	require.NoError(t, err)
	assert.Equal(t, item{Key: 103, Value: 30}, got)
}

func TestGet_Missing(t *testing.T) {
	ctx := context.Background()
	l := newLog(memstore.New(), "p", 100)
	appendValue(t, l, 1)

	for _, key := range []uint64{0, 99, 101, 1 << 63} {
		_, err := l.Get(ctx, key)
		assert.ErrorIs(t, err, keyedlog.ErrNotFound, "key %d", key)
	}
}

func TestSlice_ClipsAndNeverErrorsOnRange(t *testing.T) {
	ctx := context.Background()
	l := newLog(memstore.New(), "p", 1)
	for i := uint64(0); i < 11; i++ {
		appendValue(t, l, i)
	}

	tests := []struct {
		name          string
		offset, count uint64
		want          int
		firstKey      uint64
	}{
		{"first ten", 0, 10, 10, 1},
		{"tail", 10, 10, 1, 11},
		{"all", 0, 20, 11, 1},
		{"past end", 11, 5, 0, 0},
		{"far past end", 1 << 62, 5, 0, 0},
		{"zero count", 0, 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := l.Slice(ctx, tt.offset, tt.count)
			require.NoError(t, err)
			require.Len(t, got, tt.want)
			if tt.want > 0 {
				assert.Equal(t, tt.firstKey, got[0].Key)
			}
		})
	}
}

func TestAppend_NamespacesAreIndependent(t *testing.T) {
	st := memstore.New()
	products := newLog(st, "p", 100)
	orders := newLog(st, "o", 100)

	assert.Equal(t, uint64(100), appendValue(t, products, 1).Key)
	assert.Equal(t, uint64(101), appendValue(t, products, 2).Key)
	assert.Equal(t, uint64(100), appendValue(t, orders, 3).Key)

	got, err := orders.Get(context.Background(), 100)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), got.Value)
}

func TestAppend_BuildErrorWritesNothing(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	l := newLog(st, "p", 100)
	boom := errors.New("invalid")

	_, err := l.Append(ctx, func(key uint64) (item, []*committer.Mutation, error) {
		return item{}, nil, boom
	})
	require.ErrorIs(t, err, boom)

	n, err := l.Len(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, uint64(100), appendValue(t, l, 1).Key)
}

func TestAppend_CompanionMutationsCommitTogether(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	l := newLog(st, "p", 100)

	_, err := l.Append(ctx, func(key uint64) (item, []*committer.Mutation, error) {
		return item{Key: key}, []*committer.Mutation{
			committer.Insert("side", map[string]interface{}{"key": int64(key)}),
		}, nil
	})
	require.NoError(t, err)
	rows := st.Rows("side")
	require.Len(t, rows, 1)
	assert.Equal(t, int64(100), rows[0]["key"])

	st.FailApply = func(*committer.Plan) error { return errors.New("unavailable") }
	_, err = l.Append(ctx, func(key uint64) (item, []*committer.Mutation, error) {
		return item{Key: key}, []*committer.Mutation{committer.Insert("side", map[string]interface{}{"key": int64(key)})}, nil
	})
	require.Error(t, err)
	assert.Len(t, st.Rows("side"), 1)
	n, _ := l.Len(ctx)
	assert.Equal(t, uint64(1), n)
}

func TestAppend_ConflictSurfacesAsKeyConflict(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	a := newLog(st, "p", 100)
	appendValue(t, a, 1)

	// A second writer with a stale view of the namespace picks a taken key.
	stale := keyedlog.New[item]("p", 100, zeroCounter{st}, st, itemCodec{}, func(item) time.Time { return stamp })
	_, err := stale.Append(ctx, func(key uint64) (item, []*committer.Mutation, error) {
		return item{Key: key}, nil, nil
	})
	require.ErrorIs(t, err, keyedlog.ErrKeyConflict)
}

// zeroCounter reports every namespace as empty.
type zeroCounter struct{ *memstore.Store }

func (zeroCounter) Count(context.Context, string) (uint64, error) { return 0, nil }

func TestAppend_ConcurrentAppendsGetDistinctKeys(t *testing.T) {
	ctx := context.Background()
	l := newLog(memstore.New(), "o", 100)

	const n = 50
	var wg sync.WaitGroup
	keys := make(chan uint64, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(v uint64) {
			defer wg.Done()
			it, err := l.Append(ctx, func(key uint64) (item, []*committer.Mutation, error) {
				return item{Key: key, Value: v}, nil, nil
			})
			if err == nil {
				keys <- it.Key
			}
		}(uint64(i))
	}
	wg.Wait()
	close(keys)

	seen := make(map[uint64]bool)
	for k := range keys {
		assert.False(t, seen[k], "duplicate key %d", k)
		seen[k] = true
		assert.GreaterOrEqual(t, k, uint64(100))
		assert.Less(t, k, uint64(100+n))
	}
	assert.Len(t, seen, n)
}
