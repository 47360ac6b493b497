package scrape

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache is a 2-tier transcript cache: L1 in-memory + L2 Redis. L1 is fast
// but lost on restart; L2 survives restarts and is shared across processes.
// Redis being down is never an error: every failure degrades to a miss and
// the pipeline just scrapes again.
type Cache struct {
	l1  sync.Map      // key → *cacheEntry
	rdb *redis.Client // nil if Redis unavailable
	ttl time.Duration
}

type cacheEntry struct {
	value     string
	expiresAt time.Time
}

// cacheTTL bounds how long a scraped transcript is served without
// re-scraping. Transcripts are effectively immutable, 24h is generous.
const cacheTTL = 24 * time.Hour

func cacheKey(id string) string { return "transcript:" + id }

// NewCache connects to Redis once at startup. An empty URL, a bad URL or an
// unreachable server all leave the cache running on the memory tier alone.
func NewCache(redisURL string) *Cache {
	c := &Cache{ttl: cacheTTL}

	if redisURL == "" {
		slog.Info("cache: redis disabled, memory tier only")
		return c
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		slog.Warn("cache: invalid redis URL, memory tier only", slog.Any("error", err))
		return c
	}
	rdb := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		slog.Warn("cache: redis unreachable, memory tier only", slog.Any("error", err))
		return c
	}
	c.rdb = rdb
	slog.Info("cache: redis connected", slog.String("addr", opts.Addr))
	return c
}

// Get tries L1, then L2. On an L2 hit the entry is copied up into L1.
func (c *Cache) Get(ctx context.Context, id string) (string, bool) {
	if c == nil {
		return "", false
	}
	key := cacheKey(id)

	if val, ok := c.l1.Load(key); ok {
		entry := val.(*cacheEntry)
		if time.Now().Before(entry.expiresAt) {
			metrics.CacheHits.Add(1)
			slog.Debug("cache: L1 hit", slog.String("key", key))
			return entry.value, true
		}
		c.l1.Delete(key) // expired
	}

	if c.rdb != nil {
		val, err := c.rdb.Get(ctx, key).Result()
		if err == nil {
			metrics.CacheHits.Add(1)
			slog.Debug("cache: L2 hit", slog.String("key", key))
			c.l1.Store(key, &cacheEntry{value: val, expiresAt: time.Now().Add(c.ttl)})
			return val, true
		}
		if err != redis.Nil {
			slog.Debug("cache: L2 get failed", slog.Any("error", err))
		}
	}

	metrics.CacheMisses.Add(1)
	return "", false
}

// Set stores a transcript in both tiers. Only called after a non-empty
// successful extraction. Failures and not-found outcomes are never cached,
// a transient outage must not be pinned for 24h.
func (c *Cache) Set(ctx context.Context, id, transcript string) {
	if c == nil {
		return
	}
	key := cacheKey(id)

	c.l1.Store(key, &cacheEntry{value: transcript, expiresAt: time.Now().Add(c.ttl)})

	if c.rdb != nil {
		if err := c.rdb.Set(ctx, key, transcript, c.ttl).Err(); err != nil {
			slog.Debug("cache: L2 set failed", slog.Any("error", err))
		}
	}
}
