package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"socialnova/internal/middleware"

	"golang.org/x/sync/singleflight"
)

var group singleflight.Group

// Aside implements read-through caching. On a hit dest is decoded from Redis.
// On a miss fetch fills dest and the JSON encoding is stored for ttl.
// Concurrent misses on the same key share a single fetch. Without Redis it
// simply calls fetch.
func Aside(ctx context.Context, key string, dest interface{}, ttl time.Duration, fetch func() error) error {
	c := client
	if c == nil {
		return fetch()
	}

	if data, err := c.Get(ctx, key).Bytes(); err == nil {
		if jsonErr := json.Unmarshal(data, dest); jsonErr == nil {
			return nil
		}
	}

	leader := false
	v, err, _ := group.Do(key, func() (interface{}, error) {
		leader = true
		if err := fetch(); err != nil {
			return nil, err
		}
		data, err := json.Marshal(dest)
		if err != nil {
			return nil, err
		}
		if setErr := c.Set(ctx, key, data, ttl).Err(); setErr != nil {
			middleware.Logger.WarnContext(ctx, "cache write failed", slog.String("key", key), slog.String("error", setErr.Error()))
		}
		return data, nil
	})
	if err != nil {
		return err
	}
	if leader {
		// dest was filled by our own fetch
		return nil
	}
	return json.Unmarshal(v.([]byte), dest)
}
