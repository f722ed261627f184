package redis

import (
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	redislib "github.com/redis/go-redis/v9"
)

// redisFixture wires the receipt cache and the idempotency store to one
// in-memory server so tests can inspect raw keys and TTLs.
type redisFixture struct {
	server   *miniredis.Miniredis
	client   *redislib.Client
	receipts *ReceiptCache
	keys     *IdempotencyStore
}

func newRedisFixture(t *testing.T) *redisFixture {
	t.Helper()

	server := miniredis.RunT(t)
	client := redislib.NewClient(&redislib.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return &redisFixture{
		server:   server,
		client:   client,
		receipts: NewReceiptCache(client),
		keys:     NewIdempotencyStore(client),
	}
}
