package cache

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Cache stores encoded report payloads for a bounded time.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

func Key(prefix string, parts ...string) string {
	segments := make([]string, 0, 1+len(parts))
	segments = append(segments, prefix)
	segments = append(segments, parts...)
	return strings.Join(segments, "|")
}

// Remember returns the cached value under key, or builds and stores it.
// Cache failures are logged and treated as misses.
func Remember[T any](ctx context.Context, c Cache, log *zap.Logger, key string, ttl time.Duration, build func() (T, error)) (T, error) {
	if c == nil || ttl <= 0 {
		return build()
	}

	raw, ok, err := c.Get(ctx, key)
	if err != nil {
		log.Warn("report cache read failed", zap.String("key", key), zap.Error(err))
	}
	if ok {
		var cached T
		if err := json.Unmarshal(raw, &cached); err == nil {
			return cached, nil
		}
		log.Warn("report cache entry corrupt", zap.String("key", key))
	}

	value, err := build()
	if err != nil {
		return value, err
	}
	encoded, err := json.Marshal(value)
	if err != nil {
		return value, nil
	}
	if err := c.Set(ctx, key, encoded, ttl); err != nil {
		log.Warn("report cache write failed", zap.String("key", key), zap.Error(err))
	}
	return value, nil
}
