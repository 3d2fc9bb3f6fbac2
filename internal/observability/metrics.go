// Package observability provides domain metrics and tracing.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PostsCreated counts posts created by media kind.
	PostsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "socialnova_posts_created_total",
		Help: "Total number of posts created",
	}, []string{"media_type"})

	// LikeToggles counts like toggles by outcome (liked, unliked, debounced).
	LikeToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "socialnova_like_toggles_total",
		Help: "Total number of like toggles by outcome",
	}, []string{"outcome"})

	// FeedPagesServed counts feed pages served, split by whether more pages remain.
	FeedPagesServed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "socialnova_feed_pages_served_total",
		Help: "Total number of feed pages served",
	}, []string{"has_more"})

	// MediaUploadBytes records the size of accepted uploads.
	MediaUploadBytes = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "socialnova_media_upload_bytes",
		Help:    "Size of accepted media uploads in bytes",
		Buckets: prometheus.ExponentialBuckets(16*1024, 4, 8),
	}, []string{"bucket", "media_type"})

	// AuthEventsPublished counts auth state changes by type.
	AuthEventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "socialnova_auth_events_total",
		Help: "Total number of auth state change events",
	}, []string{"event"})

	// WebSocketBackpressureDrops counts messages dropped due to backpressure by hub and reason.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "socialnova_websocket_backpressure_drops_total",
		Help: "Total number of WebSocket messages dropped due to backpressure",
	}, []string{"hub", "reason"})
)
