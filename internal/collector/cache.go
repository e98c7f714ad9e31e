package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"EmaSentinel/internal/model"

	"github.com/go-redis/redis/v8"
)

// CachedFetcher wraps a Fetcher with a Redis cache keyed by source, symbol,
// history length and UTC day, so repeated runs on the same day reuse one fetch.
// Redis failures fall through to the wrapped fetcher.
type CachedFetcher struct {
	inner  Fetcher
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time
}

// NewCachedFetcher creates a caching decorator around inner.
func NewCachedFetcher(inner Fetcher, client *redis.Client, ttl time.Duration) *CachedFetcher {
	return &CachedFetcher{inner: inner, client: client, ttl: ttl, now: time.Now}
}

// NewRedisClient connects to Redis and verifies the connection.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return client, nil
}

func (f *CachedFetcher) Name() string { return f.inner.Name() }

func (f *CachedFetcher) cacheKey(symbol string, days int) string {
	return fmt.Sprintf("emasentinel:bars:%s:%s:%d:%s",
		f.inner.Name(), symbol, days, f.now().UTC().Format(model.DateLayout))
}

// cachedBar is the JSON form stored in Redis.
type cachedBar struct {
	T int64   `json:"t"`
	O float64 `json:"o"`
	H float64 `json:"h"`
	L float64 `json:"l"`
	C float64 `json:"c"`
	V float64 `json:"v"`
}

func (f *CachedFetcher) FetchDailyBars(ctx context.Context, symbol string, days int) ([]model.OHLCV, error) {
	key := f.cacheKey(symbol, days)

	data, err := f.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		bars, decErr := decodeBars(data)
		if decErr == nil {
			log.Printf("[INFO] bar cache hit: %s (%d bars)", key, len(bars))
			return bars, nil
		}
		log.Printf("[WARN] bar cache decode %s: %v", key, decErr)
	case err != redis.Nil:
		log.Printf("[WARN] bar cache get %s: %v", key, err)
	}

	bars, err := f.inner.FetchDailyBars(ctx, symbol, days)
	if err != nil {
		return nil, err
	}

	if payload, err := encodeBars(bars); err != nil {
		log.Printf("[WARN] bar cache encode: %v", err)
	} else if err := f.client.Set(ctx, key, payload, f.ttl).Err(); err != nil {
		log.Printf("[WARN] bar cache set %s: %v", key, err)
	}
	return bars, nil
}

func encodeBars(bars []model.OHLCV) ([]byte, error) {
	out := make([]cachedBar, len(bars))
	for i, b := range bars {
		out[i] = cachedBar{T: b.Time.Unix(), O: b.Open, H: b.High, L: b.Low, C: b.Close, V: b.Volume}
	}
	return json.Marshal(out)
}

func decodeBars(data []byte) ([]model.OHLCV, error) {
	var in []cachedBar
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, err
	}
	bars := make([]model.OHLCV, len(in))
	for i, b := range in {
		bars[i] = model.OHLCV{Time: time.Unix(b.T, 0).UTC(), Open: b.O, High: b.H, Low: b.L, Close: b.C, Volume: b.V}
	}
	return bars, nil
}
