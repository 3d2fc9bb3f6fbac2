package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// User represents a SocialNova account.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"size:30;uniqueIndex;not null" json:"username"`
	Email     string    `gorm:"size:255;uniqueIndex;not null" json:"-"`
	Password  string    `gorm:"not null" json:"-"`
	FullName  string    `gorm:"size:120" json:"full_name"`
	AvatarURL *string   `json:"avatar_url"`
	Bio       *string   `gorm:"type:text" json:"bio"`
	NameFold  string    `gorm:"type:text;not null;default:''" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Profile is a user together with the counts shown on a profile screen.
type Profile struct {
	User           *User `json:"user"`
	PostsCount     int64 `json:"posts_count"`
	FollowersCount int64 `json:"followers_count"`
	FollowingCount int64 `json:"following_count"`
	IsFollowing    bool  `json:"is_following"`
}

// BeforeSave refreshes NameFold from the searchable columns.
func (u *User) BeforeSave(*gorm.DB) error {
	u.NameFold = Fold(u.Username, u.FullName)
	return nil
}

// Fold lowercases and joins values for the name_fold search columns.
func Fold(values ...string) string {
	return strings.ToLower(strings.Join(values, "\n"))
}

// Account is a user as seen by themselves. Email is only ever serialized
// here, never on User.
type Account struct {
	*User
	Email string `json:"email"`
}

// NewAccount wraps u for its owner. A nil user yields nil.
func NewAccount(u *User) *Account {
	if u == nil {
		return nil
	}
	return &Account{User: u, Email: u.Email}
}

// Session describes the authenticated state handed back to clients.
type Session struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        *Account  `json:"user"`
}
