package testing

import (
	"context"
	"net"
	"os"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/require"
)

// GetRedisClient connects to the local test redis. Keys written by the test are the
// caller's responsibility; the client is closed when the test ends.
func GetRedisClient(t *testing.T) *redis.Client {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	host := os.Getenv("REDIS_HOST")
	if host == "" {
		host = "localhost"
	}
	t.Logf("using redis host: %s", host)

	rdb := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(host, "6379"),
		Password: os.Getenv("FITTRACK_REDIS_PASS"),
		DB:       1,
	})
	t.Cleanup(func() {
		_ = rdb.Close()
	})

	require.NoError(t, rdb.Ping(ctx).Err())
	return rdb
}
