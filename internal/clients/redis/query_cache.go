package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/atlaspedia/atlaspedia-backend/internal/pkg/logger"
)

// QueryCache fronts the hot read-side queries (popular tags, category counts)
// with short-TTL redis entries. A nil QueryCache is valid and disables caching.
type QueryCache interface {
	Get(ctx context.Context, key string, out any) bool
	Set(ctx context.Context, key string, val any, ttl time.Duration)
	Invalidate(ctx context.Context, keys ...string)
	InvalidatePrefix(ctx context.Context, prefix string)
	Close() error
}

type queryCache struct {
	log    *logger.Logger
	rdb    *goredis.Client
	prefix string
}

// NewQueryCache returns (nil, nil) when REDIS_ADDR is unset so callers can
// treat the cache as optional infrastructure.
func NewQueryCache(log *logger.Logger) (QueryCache, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, nil
	}
	prefix := strings.TrimSpace(os.Getenv("REDIS_KEY_PREFIX"))
	if prefix == "" {
		prefix = "taxonomy"
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &queryCache{
		log:    log.With("client", "RedisQueryCache"),
		rdb:    rdb,
		prefix: prefix,
	}, nil
}

func (c *queryCache) key(k string) string {
	return c.prefix + ":" + k
}

func (c *queryCache) Get(ctx context.Context, key string, out any) bool {
	raw, err := c.rdb.Get(ctx, c.key(key)).Bytes()
	if err != nil {
		if err != goredis.Nil {
			c.log.Warn("cache get failed", "key", key, "error", err)
		}
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		c.log.Warn("cache decode failed", "key", key, "error", err)
		return false
	}
	return true
}

func (c *queryCache) Set(ctx context.Context, key string, val any, ttl time.Duration) {
	raw, err := json.Marshal(val)
	if err != nil {
		c.log.Warn("cache encode failed", "key", key, "error", err)
		return
	}
	if err := c.rdb.Set(ctx, c.key(key), raw, ttl).Err(); err != nil {
		c.log.Warn("cache set failed", "key", key, "error", err)
	}
}

func (c *queryCache) Invalidate(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	full := make([]string, 0, len(keys))
	for _, k := range keys {
		full = append(full, c.key(k))
	}
	if err := c.rdb.Del(ctx, full...).Err(); err != nil {
		c.log.Warn("cache invalidate failed", "keys", keys, "error", err)
	}
}

func (c *queryCache) InvalidatePrefix(ctx context.Context, prefix string) {
	iter := c.rdb.Scan(ctx, 0, c.key(prefix)+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.log.Warn("cache scan failed", "prefix", prefix, "error", err)
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		c.log.Warn("cache invalidate failed", "prefix", prefix, "error", err)
	}
}

func (c *queryCache) Close() error {
	return c.rdb.Close()
}
