package repository

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRedis(t *testing.T, maxRetries int) (*RedisStore, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), PoolSize: 16})
	t.Cleanup(func() { client.Close() })
	return NewRedisStoreFromClient(client, maxRetries, zap.NewNop()), client
}

func TestRedisStore(t *testing.T) {
	testStoreBehaviour(t, func(t *testing.T) Store {
		store, _ := newTestRedis(t, 100)
		return store
	})
}

func TestRedisStore_RetriesAfterWatchConflict(t *testing.T) {
	ctx := context.Background()
	store, client := newTestRedis(t, 3)
	require.NoError(t, store.HSet(ctx, "user:alice", map[string]string{"balance": "10"}))

	attempts := 0
	err := store.Atomic(ctx, []string{"user:alice"}, func(tx Tx) error {
		attempts++
		values, err := tx.HGetAll("user:alice")
		if err != nil {
			return err
		}
		if attempts == 1 {
			// Another writer slips in between the read and EXEC.
			require.NoError(t, client.HSet(ctx, "user:alice", "balance", "8").Err())
		}
		tx.HSet("user:alice", map[string]string{"balance": values["balance"] + "-seen"})
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)

	values, err := store.HGetAll(ctx, "user:alice")
	require.NoError(t, err)
	assert.Equal(t, "8-seen", values["balance"])
}

func TestRedisStore_ConflictWhenRetriesExhausted(t *testing.T) {
	ctx := context.Background()
	store, client := newTestRedis(t, 3)
	require.NoError(t, store.HSet(ctx, "user:alice", map[string]string{"balance": "10"}))

	attempts := 0
	err := store.Atomic(ctx, []string{"user:alice"}, func(tx Tx) error {
		attempts++
		require.NoError(t, client.HIncrBy(ctx, "user:alice", "balance", 1).Err())
		tx.HSet("user:alice", map[string]string{"balance": "0"})
		return nil
	})
	assert.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, 3, attempts)
}

func TestRedisStore_Ping(t *testing.T) {
	store, _ := newTestRedis(t, 1)
	assert.NoError(t, store.Ping(context.Background()))
}
