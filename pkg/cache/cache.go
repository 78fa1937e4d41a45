// Package cache provides an optional Redis-backed cache for parsed
// per-batch quote lists. A cache problem never fails a fetch: backend
// errors are logged, counted and treated as misses.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Sternrassler/eve-market-arbitrage/pkg/goonmetrics"
)

// DefaultTTL is how long a cached batch stays valid. Goonmetrics
// aggregates update on the order of minutes; a short TTL keeps repeated
// runs cheap without serving stale prices for long.
const DefaultTTL = 5 * time.Minute

// Manager caches parsed batch quote lists in Redis. It implements
// goonmetrics.QuoteCache.
type Manager struct {
	redis  *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewManager creates a quote cache with the given TTL; a non-positive
// ttl selects DefaultTTL.
func NewManager(redisClient *redis.Client, ttl time.Duration) *Manager {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{
		redis:  redisClient,
		ttl:    ttl,
		logger: log.With().Str("component", "quote-cache").Logger(),
	}
}

// Get retrieves the cached quote list for a batch. The second return
// value reports whether the batch was found; backend errors count as
// misses.
func (m *Manager) Get(ctx context.Context, stationID string, itemIDs []int32) ([]goonmetrics.ItemQuote, bool) {
	key := QuoteKey{StationID: stationID, ItemIDs: itemIDs}.String()

	data, err := m.redis.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			CacheErrors.WithLabelValues("get").Inc()
			m.logger.Warn().Err(err).Str("key", key).Msg("Cache get failed, treating as miss")
		}
		CacheMisses.Inc()
		return nil, false
	}

	var quotes []goonmetrics.ItemQuote
	if err := json.Unmarshal(data, &quotes); err != nil {
		CacheErrors.WithLabelValues("get").Inc()
		m.logger.Warn().Err(err).Str("key", key).Msg("Corrupt cache entry, treating as miss")
		CacheMisses.Inc()
		return nil, false
	}

	CacheHits.Inc()
	return quotes, true
}

// Set stores a batch's quote list with the manager's TTL. Failures are
// logged and counted; the fetch result is already in hand, so nothing
// is lost beyond the cache entry.
func (m *Manager) Set(ctx context.Context, stationID string, itemIDs []int32, quotes []goonmetrics.ItemQuote) {
	key := QuoteKey{StationID: stationID, ItemIDs: itemIDs}.String()

	data, err := json.Marshal(quotes)
	if err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		m.logger.Warn().Err(err).Str("key", key).Msg("Cache entry marshal failed")
		return
	}

	if err := m.redis.Set(ctx, key, data, m.ttl).Err(); err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		m.logger.Warn().Err(err).Str("key", key).Msg("Cache set failed")
	}
}
