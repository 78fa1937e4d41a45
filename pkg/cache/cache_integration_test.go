//go:build integration

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/Sternrassler/eve-market-arbitrage/pkg/goonmetrics"
)

// setupRedisContainer starts a Redis container and returns a client.
func setupRedisContainer(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}

	redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err, "start Redis container")

	endpoint, err := redisContainer.Endpoint(ctx, "")
	require.NoError(t, err, "resolve Redis endpoint")

	client := redis.NewClient(&redis.Options{Addr: endpoint})
	require.NoError(t, client.Ping(ctx).Err(), "connect to Redis")

	t.Cleanup(func() {
		client.Close()
		redisContainer.Terminate(context.Background())
	})

	return client
}

func TestManager_Integration_RoundTrip(t *testing.T) {
	redisClient := setupRedisContainer(t)
	manager := NewManager(redisClient, time.Minute)
	ctx := context.Background()

	quotes := []goonmetrics.ItemQuote{
		{ID: 22544, Quote: goonmetrics.Quote{
			Updated:        "2024-05-03T13:40:01Z",
			WeeklyMovement: 62.5,
			BuyMax:         10000000,
			BuyListed:      3,
			SellMin:        15000000,
			SellListed:     95,
		}},
	}
	ids := []int32{22544}

	_, ok := manager.Get(ctx, "60003760", ids)
	assert.False(t, ok, "fresh container must miss")

	manager.Set(ctx, "60003760", ids, quotes)

	got, ok := manager.Get(ctx, "60003760", ids)
	require.True(t, ok, "expected hit after set")
	assert.Equal(t, quotes, got)

	// The entry must actually live under the documented key scheme.
	key := QuoteKey{StationID: "60003760", ItemIDs: ids}.String()
	ttl, err := redisClient.TTL(ctx, key).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0), "entry must carry a TTL")
}
