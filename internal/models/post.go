// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// MediaType is the kind of media attached to a post.
type MediaType string

const (
	MediaTypeImage MediaType = "image"
	MediaTypeVideo MediaType = "video"
)

// Valid reports whether t is a supported media kind.
func (t MediaType) Valid() bool {
	return t == MediaTypeImage || t == MediaTypeVideo
}

// Post represents a single media post.
type Post struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"not null;index" json:"user_id"`
	User         *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	RealmID      *uint     `gorm:"index" json:"realm_id,omitempty"`
	Realm        *Realm    `gorm:"foreignKey:RealmID" json:"realm,omitempty"`
	MediaURL     string    `gorm:"not null" json:"media_url"`
	MediaType    MediaType `gorm:"type:varchar(10);not null" json:"media_type"`
	ThumbnailURL string    `json:"thumbnail_url,omitempty"`
	Caption      *string   `gorm:"type:text" json:"caption"`
	// LikesCount is not persisted; computed at query time
	LikesCount int `gorm:"->;-:migration" json:"likes_count"`
	// CommentsCount is not persisted; computed at query time
	CommentsCount int `gorm:"->;-:migration" json:"comments_count"`
	// Liked and Saved are relative to the requesting user
	Liked     bool           `gorm:"->;-:migration" json:"liked"`
	Saved     bool           `gorm:"->;-:migration" json:"saved"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Like is a user's like of a post. One row per (user, post).
type Like struct {
	UserID    uint      `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	PostID    uint      `gorm:"primaryKey;autoIncrement:false;index" json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}

// SavedPost is a bookmark of a post by a user.
type SavedPost struct {
	UserID    uint      `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	PostID    uint      `gorm:"primaryKey;autoIncrement:false;index" json:"post_id"`
	Post      *Post     `gorm:"foreignKey:PostID" json:"post,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// LikeResult is returned by a like toggle.
type LikeResult struct {
	PostID     uint `json:"post_id"`
	Liked      bool `json:"liked"`
	LikesCount int  `json:"likes_count"`
	// Debounced is set when the toggle was suppressed as a repeat
	Debounced bool `json:"debounced"`
}
