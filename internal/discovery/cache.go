package discovery

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jonathan/series-publisher/internal/types"
)

// DefaultCacheTTL is how long discovery results stay cached.
const DefaultCacheTTL = 6 * time.Hour

// Cache stores serialized discovery results.
type Cache interface {
	// Get returns ok=false on a miss.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// RedisCache implements Cache on a redis server.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache connects to redis at addr and verifies the connection.
func NewRedisCache(ctx context.Context, addr string) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return &RedisCache{client: client}, nil
}

// Get retrieves a value from redis.
func (c *RedisCache) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get key %s: %w", key, err)
	}
	return val, true, nil
}

// Set stores a value in redis with a TTL.
func (c *RedisCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set key %s: %w", key, err)
	}
	return nil
}

// Close closes the redis connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// CachedDiscoverer serves repeated keyword sets from a cache.
// Cache failures are logged and fall through to the wrapped Discoverer.
type CachedDiscoverer struct {
	inner  Discoverer
	cache  Cache
	ttl    time.Duration
	logger *slog.Logger
}

// NewCachedDiscoverer wraps inner with cache.
func NewCachedDiscoverer(inner Discoverer, cache Cache, ttl time.Duration, logger *slog.Logger) *CachedDiscoverer {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedDiscoverer{inner: inner, cache: cache, ttl: ttl, logger: logger}
}

// Discover returns cached notes for the keyword set, or searches and caches
// a non-empty result.
func (d *CachedDiscoverer) Discover(ctx context.Context, keywords []string) ([]types.ReferenceNote, error) {
	key := CacheKey(keywords)

	if raw, ok, err := d.cache.Get(ctx, key); err != nil {
		d.logger.Warn("discovery cache read failed", "key", key, "error", err)
	} else if ok {
		var notes []types.ReferenceNote
		if err := json.Unmarshal([]byte(raw), &notes); err == nil {
			d.logger.Debug("discovery cache hit", "key", key, "results", len(notes))
			return notes, nil
		}
		d.logger.Warn("discarding malformed cache entry", "key", key)
	}

	notes, err := d.inner.Discover(ctx, keywords)
	if err != nil || len(notes) == 0 {
		return notes, err
	}

	data, err := json.Marshal(notes)
	if err != nil {
		return notes, nil
	}
	if err := d.cache.Set(ctx, key, string(data), d.ttl); err != nil {
		d.logger.Warn("discovery cache write failed", "key", key, "error", err)
	}
	return notes, nil
}

// CacheKey derives an order-insensitive key for a keyword set.
func CacheKey(keywords []string) string {
	normalized := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			normalized = append(normalized, k)
		}
	}
	sort.Strings(normalized)
	hash := sha256.Sum256([]byte(strings.Join(normalized, "\x00")))
	return fmt.Sprintf("discovery:%x", hash[:8])
}
