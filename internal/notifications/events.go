// Package notifications delivers auth state changes and post events to
// subscribers in process, across instances via Redis, and out over WebSockets.
package notifications

import (
	"encoding/json"
	"time"

	"socialnova/internal/models"
)

// AuthEventType names an authentication state change.
type AuthEventType string

const (
	SignedIn       AuthEventType = "SIGNED_IN"
	SignedOut      AuthEventType = "SIGNED_OUT"
	TokenRefreshed AuthEventType = "TOKEN_REFRESHED"
	UserUpdated    AuthEventType = "USER_UPDATED"
)

// AuthEvent is delivered to subscribers of a user's auth state.
type AuthEvent struct {
	Type   AuthEventType `json:"event"`
	UserID uint          `json:"user_id"`
	User   *models.User  `json:"user,omitempty"`
	// Session is set for SIGNED_IN and TOKEN_REFRESHED.
	Session *models.Session `json:"session,omitempty"`
	At      time.Time       `json:"at"`
}

// Post event types broadcast to every connected client.
const (
	EventPostCreated  = "post_created"
	EventPostDeleted  = "post_deleted"
	EventPostLiked    = "post_liked"
	EventCommentAdded = "comment_added"
	EventAuth         = "auth"
)

// Envelope is the wire form of every WebSocket message.
type Envelope struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Encode marshals an envelope.
func Encode(eventType string, payload interface{}) ([]byte, error) {
	return json.Marshal(Envelope{Type: eventType, Payload: payload})
}
