package notifications

import (
	"context"
	"sync"
	"testing"
	"time"

	"socialnova/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthEvents_LocalDelivery(t *testing.T) {
	bus := NewAuthEvents(nil)

	var got []AuthEvent
	unsub := bus.Subscribe(1, func(ev AuthEvent) { got = append(got, ev) })
	other := 0
	bus.Subscribe(2, func(AuthEvent) { other++ })

	bus.Publish(context.Background(), AuthEvent{Type: SignedIn, UserID: 1})
	require.Len(t, got, 1)
	assert.Equal(t, SignedIn, got[0].Type)
	assert.False(t, got[0].At.IsZero())
	assert.Equal(t, 0, other)

	unsub()
	unsub()
	bus.Publish(context.Background(), AuthEvent{Type: SignedOut, UserID: 1})
	assert.Len(t, got, 1)
	assert.Equal(t, 0, bus.Subscribers(1))
	assert.Equal(t, 1, bus.Subscribers(2))
}

func TestAuthEvents_SubscriberCanUnsubscribeDuringDelivery(t *testing.T) {
	bus := NewAuthEvents(nil)
	calls := 0
	var unsub func()
	unsub = bus.Subscribe(1, func(AuthEvent) {
		calls++
		unsub()
	})

	bus.Publish(context.Background(), AuthEvent{Type: UserUpdated, UserID: 1})
	bus.Publish(context.Background(), AuthEvent{Type: UserUpdated, UserID: 1})
	assert.Equal(t, 1, calls)
}

func TestAuthEvents_PanickingSubscriberDoesNotBlockOthers(t *testing.T) {
	bus := NewAuthEvents(nil)
	bus.Subscribe(1, func(AuthEvent) { panic("bad subscriber") })
	delivered := false
	bus.Subscribe(1, func(AuthEvent) { delivered = true })

	assert.NotPanics(t, func() {
		bus.Publish(context.Background(), AuthEvent{Type: TokenRefreshed, UserID: 1})
	})
	assert.True(t, delivered)
}

func TestAuthEvents_RelayThroughRedis(t *testing.T) {
	rdb := newTestRedis(t)
	bus := NewAuthEvents(NewNotifier(rdb))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, bus.StartRelay(ctx))

	var mu sync.Mutex
	var got []AuthEvent
	bus.Subscribe(3, func(ev AuthEvent) {
		mu.Lock()
		got = append(got, ev)
		mu.Unlock()
	})

	bus.Publish(ctx, AuthEvent{Type: UserUpdated, UserID: 3, User: &models.User{ID: 3, Username: "neo"}})

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 1 && got[0].User != nil && got[0].User.Username == "neo"
	}, 2*time.Second, 10*time.Millisecond)

	// exactly once: relay is the only delivery path when Redis is attached
	time.Sleep(50 * time.Millisecond)
	mu.Lock()
	assert.Len(t, got, 1)
	mu.Unlock()
}
