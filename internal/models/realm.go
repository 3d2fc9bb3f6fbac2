package models

import (
	"time"

	"gorm.io/gorm"
)

// Realm represents a community that posts can be shared into.
type Realm struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	Name        string  `gorm:"size:120;not null" json:"name"`
	Slug        string  `gorm:"size:24;not null;uniqueIndex" json:"slug"`
	Description string  `gorm:"type:text" json:"description"`
	CoverImage  *string `json:"cover_image"`
	NameFold    string  `gorm:"type:text;not null;default:''" json:"-"`
	CreatorID   uint    `gorm:"not null;index" json:"creator_id"`
	Creator     *User   `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
	// MembersCount is not persisted; computed at query time
	MembersCount int `gorm:"->;-:migration" json:"members_count"`
	// PostsCount is not persisted; computed at query time
	PostsCount int       `gorm:"->;-:migration" json:"posts_count"`
	IsMember   bool      `gorm:"->;-:migration" json:"is_member"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// BeforeSave refreshes NameFold from the searchable columns.
func (r *Realm) BeforeSave(*gorm.DB) error {
	r.NameFold = Fold(r.Name, r.Slug, r.Description)
	return nil
}

// RealmRole defines a member's role in a realm.
type RealmRole string

const (
	// RealmRoleOwner is held by the realm creator.
	RealmRoleOwner RealmRole = "owner"
	// RealmRoleMember is the default member role.
	RealmRoleMember RealmRole = "member"
)

// RealmMembership maps users to realms and tracks role.
type RealmMembership struct {
	RealmID   uint      `gorm:"primaryKey;autoIncrement:false" json:"realm_id"`
	UserID    uint      `gorm:"primaryKey;autoIncrement:false;index" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Role      RealmRole `gorm:"type:varchar(20);not null;default:'member'" json:"role"`
	CreatedAt time.Time `json:"created_at"`
}
