// Package cache is an optional Redis layer in front of the reasoning
// oracle. The same claim asked twice within the TTL is served from cache
// instead of burning another model call. Fully nil-safe: without REDIS_URL
// every operation is a no-op and the service runs uncached.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"factcheck-bot/api/internal/analysis"
)

const DefaultTTL = 6 * time.Hour

type Cache struct {
	rdb *redis.Client
	log *zap.SugaredLogger
}

// New connects to Redis at url. Empty url or a failed ping yields a
// disabled cache, not an error.
func New(url string, log *zap.SugaredLogger) *Cache {
	c := &Cache{log: log}
	if url == "" {
		log.Info("REDIS_URL not set, running without verdict cache")
		return c
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		// bare host:port is accepted too
		opts = &redis.Options{Addr: url}
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Warnw("redis unavailable, running without verdict cache", "err", err)
		return c
	}
	c.rdb = rdb
	return c
}

// Key derives the cache key for a request: hash of the claim text and the
// image locator. In-memory image bytes are not cached (uploads are
// one-shot).
func Key(req analysis.Request) string {
	h := sha256.New()
	h.Write([]byte(req.Text))
	h.Write([]byte{0})
	h.Write([]byte(req.ImageSource))
	h.Write([]byte{0})
	h.Write([]byte(req.TargetLanguage))
	return "verdict:" + hex.EncodeToString(h.Sum(nil))[:32]
}

func (c *Cache) Get(ctx context.Context, key string) (*analysis.VerdictRecord, bool) {
	if c == nil || c.rdb == nil {
		return nil, false
	}
	s, err := c.rdb.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			c.log.Warnw("cache get failed", "err", err)
		}
		return nil, false
	}
	var rec analysis.VerdictRecord
	if err := json.Unmarshal([]byte(s), &rec); err != nil {
		return nil, false
	}
	return &rec, true
}

func (c *Cache) Put(ctx context.Context, key string, rec *analysis.VerdictRecord, ttl time.Duration) {
	if c == nil || c.rdb == nil || rec == nil || rec.Verdict == analysis.VerdictError {
		return
	}
	b, err := json.Marshal(rec)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key, string(b), ttl).Err(); err != nil {
		c.log.Warnw("cache put failed", "err", err)
	}
}
