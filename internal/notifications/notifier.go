package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strconv"

	"socialnova/internal/middleware"

	"github.com/redis/go-redis/v9"
)

const (
	userChannelPrefix = "notifications:user:"
	authChannelPrefix = "auth:user:"
	broadcastChannel  = "notifications:broadcast"
)

// Notifier provides helpers to publish notifications into Redis channels
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// Enabled reports whether a Redis client is attached.
func (n *Notifier) Enabled() bool {
	return n != nil && n.rdb != nil
}

// PublishUser sends a notification payload to a user's channel.
func (n *Notifier) PublishUser(ctx context.Context, userID uint, payload string) error {
	if !n.Enabled() {
		return nil
	}
	return n.rdb.Publish(ctx, UserChannel(userID), payload).Err()
}

// PublishAuth sends an auth event payload to a user's auth channel.
func (n *Notifier) PublishAuth(ctx context.Context, userID uint, payload string) error {
	if !n.Enabled() {
		return nil
	}
	return n.rdb.Publish(ctx, AuthChannel(userID), payload).Err()
}

// PublishBroadcast sends a notification payload to all connected users.
func (n *Notifier) PublishBroadcast(ctx context.Context, payload string) error {
	if !n.Enabled() {
		return nil
	}
	return n.rdb.Publish(ctx, broadcastChannel, payload).Err()
}

// StartPatternSubscriber subscribes to patterns and calls onMessage for each
// incoming message until ctx is cancelled. A panicking handler is logged and
// does not stop the subscription.
func (n *Notifier) StartPatternSubscriber(
	ctx context.Context, patterns []string, onMessage func(channel string, payload string),
) error {
	if !n.Enabled() {
		return nil
	}
	sub := n.rdb.PSubscribe(ctx, patterns...)
	// wait for the subscription to be confirmed so no early publish is lost
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("subscribe %v: %w", patterns, err)
	}
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							middleware.Logger.Error("panic in pattern subscriber",
								slog.Any("panic", r), slog.String("stack", string(debug.Stack())))
						}
					}()
					onMessage(msg.Channel, msg.Payload)
				}()
			}
		}
	}()

	return nil
}

// UserChannel derives the Redis channel name for a user.
func UserChannel(userID uint) string {
	return userChannelPrefix + strconv.FormatUint(uint64(userID), 10)
}

// AuthChannel derives the Redis channel carrying a user's auth events.
func AuthChannel(userID uint) string {
	return authChannelPrefix + strconv.FormatUint(uint64(userID), 10)
}
