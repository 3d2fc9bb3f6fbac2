// Package debounce collapses repeated invocations of an action that arrive
// within a short window, such as a double-tapped like button.
package debounce

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Guard admits the first call for a key in each window.
type Guard interface {
	// Allow reports whether the action keyed by key may run now. Calls for
	// the same key within the window after an admitted call return false.
	Allow(ctx context.Context, key string) (bool, error)
}

// RedisGuard shares windows across instances with SET NX PX.
type RedisGuard struct {
	rdb    *redis.Client
	window time.Duration
	prefix string
}

// NewRedisGuard returns a guard storing window markers under prefix.
func NewRedisGuard(rdb *redis.Client, window time.Duration, prefix string) *RedisGuard {
	return &RedisGuard{rdb: rdb, window: window, prefix: prefix}
}

func (g *RedisGuard) Allow(ctx context.Context, key string) (bool, error) {
	return g.rdb.SetNX(ctx, g.prefix+key, "1", g.window).Result()
}

// MemoryGuard keeps windows in process.
type MemoryGuard struct {
	window time.Duration
	now    func() time.Time

	mu    sync.Mutex
	until map[string]time.Time
	calls int
}

// NewMemoryGuard returns an in-process guard. now may be nil.
func NewMemoryGuard(window time.Duration, now func() time.Time) *MemoryGuard {
	if now == nil {
		now = time.Now
	}
	return &MemoryGuard{
		window: window,
		now:    now,
		until:  make(map[string]time.Time),
	}
}

func (g *MemoryGuard) Allow(_ context.Context, key string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if until, ok := g.until[key]; ok && now.Before(until) {
		return false, nil
	}
	g.until[key] = now.Add(g.window)

	g.calls++
	if g.calls%1024 == 0 {
		g.sweep(now)
	}
	return true, nil
}

// sweep drops expired windows. Callers hold mu.
func (g *MemoryGuard) sweep(now time.Time) {
	for k, until := range g.until {
		if !now.Before(until) {
			delete(g.until, k)
		}
	}
}

// FallbackGuard uses the primary guard and falls back to the secondary when
// the primary errors, so a Redis outage never blocks the action.
type FallbackGuard struct {
	Primary   Guard
	Secondary Guard
}

func (g FallbackGuard) Allow(ctx context.Context, key string) (bool, error) {
	ok, err := g.Primary.Allow(ctx, key)
	if err == nil {
		return ok, nil
	}
	return g.Secondary.Allow(ctx, key)
}

// New picks a Redis-backed guard when rdb is set and an in-memory one otherwise.
func New(rdb *redis.Client, window time.Duration) Guard {
	mem := NewMemoryGuard(window, nil)
	if rdb == nil {
		return mem
	}
	return FallbackGuard{Primary: NewRedisGuard(rdb, window, "debounce:"), Secondary: mem}
}
