package notifications

import (
	"context"
	"encoding/json"
	"log/slog"
	"runtime/debug"
	"strconv"
	"strings"
	"sync"
	"time"

	"socialnova/internal/middleware"
	"socialnova/internal/observability"
)

// AuthEvents fans auth state changes out to per-user subscribers. With a
// Notifier attached, events travel through Redis so subscribers on every
// instance see them; otherwise they are delivered in process.
type AuthEvents struct {
	mu     sync.RWMutex
	subs   map[uint]map[uint64]func(AuthEvent)
	nextID uint64

	notifier *Notifier
}

// NewAuthEvents creates a bus. notifier may be nil.
func NewAuthEvents(notifier *Notifier) *AuthEvents {
	return &AuthEvents{
		subs:     make(map[uint]map[uint64]func(AuthEvent)),
		notifier: notifier,
	}
}

// Subscribe registers fn for userID's events. The returned func removes the
// subscription and may be called more than once.
func (b *AuthEvents) Subscribe(userID uint, fn func(AuthEvent)) func() {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	m, ok := b.subs[userID]
	if !ok {
		m = make(map[uint64]func(AuthEvent))
		b.subs[userID] = m
	}
	m[id] = fn
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if m, ok := b.subs[userID]; ok {
				delete(m, id)
				if len(m) == 0 {
					delete(b.subs, userID)
				}
			}
		})
	}
}

// Subscribers returns how many subscriptions userID has.
func (b *AuthEvents) Subscribers(userID uint) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[userID])
}

// Publish sends ev to every subscriber of ev.UserID.
func (b *AuthEvents) Publish(ctx context.Context, ev AuthEvent) {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	observability.AuthEventsPublished.WithLabelValues(string(ev.Type)).Inc()

	if b.notifier != nil && b.notifier.Enabled() {
		payload, err := json.Marshal(ev)
		if err == nil {
			err = b.notifier.PublishAuth(ctx, ev.UserID, string(payload))
		}
		if err == nil {
			return
		}
		middleware.Logger.WarnContext(ctx, "auth event relay failed, delivering locally",
			slog.String("event", string(ev.Type)), slog.String("error", err.Error()))
	}
	b.Deliver(ev)
}

// Deliver invokes local subscribers. Callbacks run outside the lock so they
// may unsubscribe themselves.
func (b *AuthEvents) Deliver(ev AuthEvent) {
	b.mu.RLock()
	fns := make([]func(AuthEvent), 0, len(b.subs[ev.UserID]))
	for _, fn := range b.subs[ev.UserID] {
		fns = append(fns, fn)
	}
	b.mu.RUnlock()

	for _, fn := range fns {
		func() {
			defer func() {
				if r := recover(); r != nil {
					middleware.Logger.Error("auth event subscriber panicked",
						slog.Any("panic", r), slog.String("stack", string(debug.Stack())))
				}
			}()
			fn(ev)
		}()
	}
}

// StartRelay feeds auth events published by any instance into this bus.
func (b *AuthEvents) StartRelay(ctx context.Context) error {
	if b.notifier == nil {
		return nil
	}
	return b.notifier.StartPatternSubscriber(ctx, []string{authChannelPrefix + "*"}, func(channel, payload string) {
		if _, err := strconv.ParseUint(strings.TrimPrefix(channel, authChannelPrefix), 10, 64); err != nil {
			middleware.Logger.Warn("invalid auth channel", slog.String("channel", channel))
			return
		}
		var ev AuthEvent
		if err := json.Unmarshal([]byte(payload), &ev); err != nil {
			middleware.Logger.Warn("invalid auth event payload", slog.String("error", err.Error()))
			return
		}
		b.Deliver(ev)
	})
}
