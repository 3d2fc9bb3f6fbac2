package models

import "time"

// Follow is a directed edge from follower to followee.
type Follow struct {
	FollowerID uint      `gorm:"primaryKey;autoIncrement:false" json:"follower_id"`
	FolloweeID uint      `gorm:"primaryKey;autoIncrement:false;index" json:"followee_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM
func (Follow) TableName() string {
	return "follows"
}
