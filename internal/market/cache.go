// StockTrackHub | 2026
// cache.go

package market

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// QuoteCache keeps recently fetched market data so dashboard loads do
// not hammer the upstream. Misses are silent; the cache is advisory.
type QuoteCache interface {
	GetQuote(ctx context.Context, symbol string) (*Quote, bool)
	SetQuote(ctx context.Context, symbol string, q *Quote, ttl time.Duration)
	GetHistory(ctx context.Context, key string) ([]Candle, bool)
	SetHistory(
		ctx context.Context,
		key string,
		candles []Candle,
		ttl time.Duration,
	)
}

type redisCache struct {
	client *redis.Client
}

func NewRedisCache(client *redis.Client) QuoteCache {
	return &redisCache{client: client}
}

func (c *redisCache) GetQuote(
	ctx context.Context,
	symbol string,
) (*Quote, bool) {
	raw, err := c.client.Get(ctx, "quote:"+symbol).Bytes()
	if err != nil {
		return nil, false
	}

	var q Quote
	if err := json.Unmarshal(raw, &q); err != nil {
		return nil, false
	}

	return &q, true
}

func (c *redisCache) SetQuote(
	ctx context.Context,
	symbol string,
	q *Quote,
	ttl time.Duration,
) {
	raw, err := json.Marshal(q)
	if err != nil {
		return
	}

	//nolint:errcheck // cache writes are best-effort
	_ = c.client.Set(ctx, "quote:"+symbol, raw, ttl).Err()
}

func (c *redisCache) GetHistory(
	ctx context.Context,
	key string,
) ([]Candle, bool) {
	raw, err := c.client.Get(ctx, "history:"+key).Bytes()
	if err != nil {
		return nil, false
	}

	var candles []Candle
	if err := json.Unmarshal(raw, &candles); err != nil {
		return nil, false
	}

	return candles, true
}

func (c *redisCache) SetHistory(
	ctx context.Context,
	key string,
	candles []Candle,
	ttl time.Duration,
) {
	raw, err := json.Marshal(candles)
	if err != nil {
		return
	}

	//nolint:errcheck // cache writes are best-effort
	_ = c.client.Set(ctx, "history:"+key, raw, ttl).Err()
}

type memoryEntry struct {
	value     any
	expiresAt time.Time
}

// MemoryCache is an in-process QuoteCache used in tests and when Redis
// is unavailable.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]memoryEntry)}
}

func (c *MemoryCache) get(key string) (any, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || time.Now().After(entry.expiresAt) {
		return nil, false
	}

	return entry.value, true
}

func (c *MemoryCache) set(key string, value any, ttl time.Duration) {
	c.mu.Lock()
	c.entries[key] = memoryEntry{
		value:     value,
		expiresAt: time.Now().Add(ttl),
	}
	c.mu.Unlock()
}

func (c *MemoryCache) GetQuote(
	ctx context.Context,
	symbol string,
) (*Quote, bool) {
	value, ok := c.get("quote:" + symbol)
	if !ok {
		return nil, false
	}

	q, ok := value.(*Quote)
	return q, ok
}

func (c *MemoryCache) SetQuote(
	ctx context.Context,
	symbol string,
	q *Quote,
	ttl time.Duration,
) {
	c.set("quote:"+symbol, q, ttl)
}

func (c *MemoryCache) GetHistory(
	ctx context.Context,
	key string,
) ([]Candle, bool) {
	value, ok := c.get("history:" + key)
	if !ok {
		return nil, false
	}

	candles, ok := value.([]Candle)
	return candles, ok
}

func (c *MemoryCache) SetHistory(
	ctx context.Context,
	key string,
	candles []Candle,
	ttl time.Duration,
) {
	c.set("history:"+key, candles, ttl)
}
