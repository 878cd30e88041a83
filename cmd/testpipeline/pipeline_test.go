package testpipeline

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestPipelining runs against a live server. Set GREENIS_ADDR to enable it
func TestPipelining(t *testing.T) {
	addr := os.Getenv("GREENIS_ADDR")
	if addr == "" {
		t.Skip("GREENIS_ADDR is not set")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:            addr,
		Protocol:        2,
		DisableIdentity: true,
	})
	defer rdb.Close()

	ctx := context.Background()
	require.NoError(t, rdb.Ping(ctx).Err())

	count := 10_000
	pipe := rdb.Pipeline()

	for i := 0; i < count; i++ {
		key := fmt.Sprintf("pipe_key_%d", i)
		val := fmt.Sprintf("val_%d", i)
		pipe.Set(ctx, key, val, 0)
		pipe.ZAdd(ctx, "pipe_board", redis.Z{Score: float64(i % 100), Member: key})
	}

	getResults := make([]*redis.StringCmd, count)
	for i := 0; i < count; i++ {
		key := fmt.Sprintf("pipe_key_%d", i)
		getResults[i] = pipe.Get(ctx, key)
	}
	head := pipe.ZRange(ctx, "pipe_board", 0, 0)

	start := time.Now()
	_, err := pipe.Exec(ctx)
	elapsed := time.Since(start)

	assert.NoError(t, err, "Pipeline execution failed")
	t.Logf("Pipeline executed in %v", elapsed)

	for i := 0; i < count; i++ {
		expected := fmt.Sprintf("val_%d", i)
		val, err := getResults[i].Result()

		assert.NoError(t, err)
		assert.Equal(t, expected, val, "Key %d mismatch", i)
	}

	// score 0 members are pipe_key_0, pipe_key_100, ... and pipe_key_0 sorts first by name
	assert.Equal(t, []string{"pipe_key_0"}, head.Val())
}
