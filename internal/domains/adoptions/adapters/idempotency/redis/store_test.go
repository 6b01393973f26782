package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	goredis "github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/ports"
)

type fakeRedis struct {
	values map[string]string
	ttls   map[string]time.Duration
	err    error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{values: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) SetNX(_ context.Context, key string, value interface{}, expiration time.Duration) *goredis.BoolCmd {
	if f.err != nil {
		return goredis.NewBoolResult(false, f.err)
	}
	if _, exists := f.values[key]; exists {
		return goredis.NewBoolResult(false, nil)
	}
	f.values[key] = string(value.([]byte))
	f.ttls[key] = expiration
	return goredis.NewBoolResult(true, nil)
}

func (f *fakeRedis) Get(_ context.Context, key string) *goredis.StringCmd {
	value, ok := f.values[key]
	if !ok {
		return goredis.NewStringResult("", goredis.Nil)
	}
	return goredis.NewStringResult(value, nil)
}

func TestStore_SaveAndReplay(t *testing.T) {
	rdb := newFakeRedis()
	store := newStore(rdb, WithTTL(time.Hour))
	ctx := context.Background()

	missing, err := store.Get(ctx, "k-1")
	require.NoError(t, err)
	assert.Nil(t, missing)

	saved, err := store.Save(ctx, ports.IdempotencyRecord{Key: "k-1", RequestHash: "h", RequestID: "r-1"})
	require.NoError(t, err)
	assert.False(t, saved.CreatedAt.IsZero())
	assert.Equal(t, time.Hour, rdb.ttls[defaultPrefix+"k-1"])

	again, err := store.Save(ctx, ports.IdempotencyRecord{Key: "k-1", RequestHash: "h", RequestID: "r-1"})
	require.NoError(t, err)
	assert.Equal(t, "r-1", again.RequestID)

	loaded, err := store.Get(ctx, "k-1")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "h", loaded.RequestHash)
}

func TestStore_ConflictReturnsStoredRecord(t *testing.T) {
	store := newStore(newFakeRedis())
	ctx := context.Background()

	_, err := store.Save(ctx, ports.IdempotencyRecord{Key: "k-1", RequestHash: "h", RequestID: "r-1"})
	require.NoError(t, err)

	existing, err := store.Save(ctx, ports.IdempotencyRecord{Key: "k-1", RequestHash: "other", RequestID: "r-2"})
	require.ErrorIs(t, err, ports.ErrIdempotencyConflict)
	require.NotNil(t, existing)
	assert.Equal(t, "r-1", existing.RequestID)
}

func TestStore_PropagatesRedisErrors(t *testing.T) {
	rdb := newFakeRedis()
	rdb.err = errors.New("connection reset")
	store := newStore(rdb)

	_, err := store.Save(context.Background(), ports.IdempotencyRecord{Key: "k-1", RequestHash: "h", RequestID: "r-1"})
	require.EqualError(t, err, "connection reset")
}

func TestStore_PrefixIsolatesKeys(t *testing.T) {
	rdb := newFakeRedis()
	store := newStore(rdb, WithPrefix("test:"))

	_, err := store.Save(context.Background(), ports.IdempotencyRecord{Key: "k-1", RequestHash: "h", RequestID: "r-1"})
	require.NoError(t, err)
	_, ok := rdb.values["test:k-1"]
	assert.True(t, ok)
}
