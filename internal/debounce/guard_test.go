package debounce

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func TestMemoryGuard(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	g := NewMemoryGuard(400*time.Millisecond, clock.Now)
	ctx := context.Background()

	steps := []struct {
		name    string
		advance time.Duration
		key     string
		want    bool
	}{
		{"first call admitted", 0, "like:1:10", true},
		{"repeat inside window suppressed", 100 * time.Millisecond, "like:1:10", false},
		{"other key independent", 0, "like:2:10", true},
		{"still inside window", 250 * time.Millisecond, "like:1:10", false},
		{"window elapsed", 50 * time.Millisecond, "like:1:10", true},
	}
	for _, s := range steps {
		clock.Advance(s.advance)
		ok, err := g.Allow(ctx, s.key)
		require.NoError(t, err, s.name)
		assert.Equal(t, s.want, ok, s.name)
	}
}

func TestRedisGuard(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	g := NewRedisGuard(rdb, 400*time.Millisecond, "debounce:")
	ctx := context.Background()

	ok, err := g.Allow(ctx, "like:1:10")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = g.Allow(ctx, "like:1:10")
	require.NoError(t, err)
	assert.False(t, ok)

	mr.FastForward(time.Second)
	ok, err = g.Allow(ctx, "like:1:10")
	require.NoError(t, err)
	assert.True(t, ok)
}

type failingGuard struct{}

func (failingGuard) Allow(context.Context, string) (bool, error) {
	return false, errors.New("redis down")
}

func TestFallbackGuard(t *testing.T) {
	g := FallbackGuard{Primary: failingGuard{}, Secondary: NewMemoryGuard(time.Second, nil)}
	ok, err := g.Allow(context.Background(), "k")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = g.Allow(context.Background(), "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNew_WithoutRedisIsMemory(t *testing.T) {
	_, ok := New(nil, time.Second).(*MemoryGuard)
	assert.True(t, ok)
}
