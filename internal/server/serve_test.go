package server

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/eternalApril/greenis/internal/storage"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// startServer runs Serve on a loopback port and returns a client connected to it
func startServer(t *testing.T) *redis.Client {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ks := storage.NewKeyspace(nil)
	engine := NewEngine(ks, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Serve(ctx, ln, engine, zap.NewNop())
	}()

	rdb := redis.NewClient(&redis.Options{
		Addr:            ln.Addr().String(),
		Protocol:        2,
		DisableIdentity: true,
	})

	t.Cleanup(func() {
		rdb.Close() //nolint:errcheck
		cancel()

		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("Serve did not return after cancellation")
		}
		ks.Close()
	})

	return rdb
}

func TestServe_Commands(t *testing.T) {
	rdb := startServer(t)
	ctx := context.Background()

	pong, err := rdb.Ping(ctx).Result()
	require.NoError(t, err)
	assert.Equal(t, "pong", pong)

	require.NoError(t, rdb.Set(ctx, "k", "v", 0).Err())
	val, err := rdb.Get(ctx, "k").Result()
	require.NoError(t, err)
	assert.Equal(t, "v", val)

	_, err = rdb.Get(ctx, "missing").Result()
	assert.ErrorIs(t, err, redis.Nil)

	n, err := rdb.Incr(ctx, "counter").Result()
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	for i, name := range []string{"minxo", "catorro", "capeta", "caixa", "cerva"} {
		require.NoError(t, rdb.ZAdd(ctx, "chave", redis.Z{Score: float64(11 + i), Member: name}).Err())
	}

	card, err := rdb.ZCard(ctx, "chave").Result()
	require.NoError(t, err)
	assert.EqualValues(t, 5, card)

	rank, err := rdb.ZRank(ctx, "chave", "capeta").Result()
	require.NoError(t, err)
	assert.EqualValues(t, 2, rank)

	names, err := rdb.ZRange(ctx, "chave", -2, -1).Result()
	require.NoError(t, err)
	assert.Equal(t, []string{"caixa", "cerva"}, names)

	size, err := rdb.DBSize(ctx).Result()
	require.NoError(t, err)
	assert.EqualValues(t, 7, size)

	err = rdb.ZAdd(ctx, "k", redis.Z{Score: 1, Member: "m"}).Err()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "WRONGTYPE")

	err = rdb.Do(ctx, "flushall").Err()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown command")

	deleted, err := rdb.Del(ctx, "k").Result()
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)
}

func TestServe_Expiry(t *testing.T) {
	rdb := startServer(t)
	ctx := context.Background()

	require.NoError(t, rdb.Set(ctx, "k", "v", time.Second).Err())
	assert.Equal(t, "v", rdb.Get(ctx, "k").Val())

	assert.Eventually(t, func() bool {
		return rdb.Get(ctx, "k").Err() == redis.Nil
	}, 3*time.Second, 50*time.Millisecond)
}

func TestServe_Pipelining(t *testing.T) {
	rdb := startServer(t)
	ctx := context.Background()

	count := 1000
	pipe := rdb.Pipeline()

	for i := 0; i < count; i++ {
		pipe.ZAdd(ctx, "board", redis.Z{Score: float64(count - i), Member: fmt.Sprintf("player_%d", i)})
	}
	rangeCmd := pipe.ZRange(ctx, "board", 0, 2)
	cardCmd := pipe.ZCard(ctx, "board")

	_, err := pipe.Exec(ctx)
	require.NoError(t, err)

	assert.EqualValues(t, count, cardCmd.Val())
	assert.Equal(t, []string{"player_999", "player_998", "player_997"}, rangeCmd.Val())
}
