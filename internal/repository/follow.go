package repository

import (
	"context"

	"socialnova/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FollowRepository stores the directed follow graph.
type FollowRepository interface {
	Follow(ctx context.Context, followerID, followeeID uint) error
	Unfollow(ctx context.Context, followerID, followeeID uint) error
	IsFollowing(ctx context.Context, followerID, followeeID uint) (bool, error)
	CountFollowers(ctx context.Context, userID uint) (int64, error)
	CountFollowing(ctx context.Context, userID uint) (int64, error)
}

type followRepository struct {
	db *gorm.DB
}

// NewFollowRepository creates a new FollowRepository
func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db}
}

// Follow is idempotent.
func (r *followRepository) Follow(ctx context.Context, followerID, followeeID uint) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.Follow{FollowerID: followerID, FolloweeID: followeeID}).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *followRepository) Unfollow(ctx context.Context, followerID, followeeID uint) error {
	err := r.db.WithContext(ctx).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Delete(&models.Follow{}).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *followRepository) IsFollowing(ctx context.Context, followerID, followeeID uint) (bool, error) {
	var n int64
	err := readDB(r.db).WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Count(&n).Error
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return n > 0, nil
}

func (r *followRepository) CountFollowers(ctx context.Context, userID uint) (int64, error) {
	return r.count(ctx, "followee_id = ?", userID)
}

func (r *followRepository) CountFollowing(ctx context.Context, userID uint) (int64, error) {
	return r.count(ctx, "follower_id = ?", userID)
}

func (r *followRepository) count(ctx context.Context, where string, userID uint) (int64, error) {
	var n int64
	if err := readDB(r.db).WithContext(ctx).Model(&models.Follow{}).Where(where, userID).Count(&n).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return n, nil
}
