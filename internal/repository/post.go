package repository

import (
	"context"

	"socialnova/internal/cache"
	"socialnova/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostRepository defines the interface for post data operations.
// viewerID 0 means an anonymous caller; Liked and Saved are then false.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint, viewerID uint) (*models.Post, error)
	ListRecent(ctx context.Context, limit, offset int, viewerID uint) ([]*models.Post, error)
	List(ctx context.Context, order OrderBy, limit, offset int, viewerID uint) ([]*models.Post, error)
	ListByUser(ctx context.Context, userID uint, limit, offset int, viewerID uint) ([]*models.Post, error)
	ListByRealm(ctx context.Context, realmID uint, limit, offset int, viewerID uint) ([]*models.Post, error)
	Feed(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, error)
	ListSaved(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, error)
	CountByUser(ctx context.Context, userID uint) (int64, error)
	Delete(ctx context.Context, id uint) error

	ToggleLike(ctx context.Context, userID, postID uint) (liked bool, count int, err error)
	LikeState(ctx context.Context, userID, postID uint) (liked bool, count int, err error)
	ToggleSave(ctx context.Context, userID, postID uint) (saved bool, err error)
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// newestFirst is the stable ordering used by every paged listing.
const newestFirst = "posts.created_at DESC, posts.id DESC"

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateRecentPosts(ctx)
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint, viewerID uint) (*models.Post, error) {
	var post models.Post
	fetch := func() error {
		err := r.withDetails(readDB(r.db).WithContext(ctx), viewerID).
			Preload("User").
			Preload("Realm").
			First(&post, id).Error
		return wrapFind(err, "Post", id)
	}

	var err error
	if viewerID == 0 {
		err = cache.Aside(ctx, cache.PostKey(id), &post, cache.PostTTL, fetch)
	} else {
		err = fetch()
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// ListRecent pages every post newest first. Anonymous pages are cached briefly.
func (r *postRepository) ListRecent(ctx context.Context, limit, offset int, viewerID uint) ([]*models.Post, error) {
	limit = clampLimit(limit)
	fetch := func(dst *[]*models.Post) error {
		return r.page(r.withDetails(readDB(r.db).WithContext(ctx), viewerID), limit, offset, dst)
	}
	posts := []*models.Post{}
	if viewerID == 0 && offset%limit == 0 {
		err := cache.Aside(ctx, cache.RecentPostsKey(offset/limit), &posts, cache.ListTTL, func() error {
			return fetch(&posts)
		})
		return posts, err
	}
	return posts, fetch(&posts)
}

func (r *postRepository) List(ctx context.Context, order OrderBy, limit, offset int, viewerID uint) ([]*models.Post, error) {
	posts := []*models.Post{}
	q := applyOrder(r.withDetails(readDB(r.db).WithContext(ctx), viewerID).Preload("User"), "posts", order)
	if err := q.Limit(clampLimit(limit)).Offset(offset).Find(&posts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) ListByUser(ctx context.Context, userID uint, limit, offset int, viewerID uint) ([]*models.Post, error) {
	posts := []*models.Post{}
	q := r.withDetails(readDB(r.db).WithContext(ctx), viewerID).Where("posts.user_id = ?", userID)
	return posts, r.page(q, clampLimit(limit), offset, &posts)
}

func (r *postRepository) ListByRealm(ctx context.Context, realmID uint, limit, offset int, viewerID uint) ([]*models.Post, error) {
	posts := []*models.Post{}
	q := r.withDetails(readDB(r.db).WithContext(ctx), viewerID).Where("posts.realm_id = ?", realmID)
	return posts, r.page(q, clampLimit(limit), offset, &posts)
}

// Feed pages the user's own posts, posts by users they follow, and posts in
// realms they belong to.
func (r *postRepository) Feed(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, error) {
	posts := []*models.Post{}
	q := r.withDetails(readDB(r.db).WithContext(ctx), userID).
		Where("posts.user_id = ? OR posts.user_id IN (SELECT followee_id FROM follows WHERE follower_id = ?)"+
			" OR posts.realm_id IN (SELECT realm_id FROM realm_memberships WHERE user_id = ?)",
			userID, userID, userID)
	return posts, r.page(q, clampLimit(limit), offset, &posts)
}

// ListSaved pages the user's bookmarks, most recently saved first.
func (r *postRepository) ListSaved(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, error) {
	posts := []*models.Post{}
	err := r.withDetails(readDB(r.db).WithContext(ctx), userID).
		Preload("User").
		Joins("JOIN saved_posts ON saved_posts.post_id = posts.id AND saved_posts.user_id = ?", userID).
		Order("saved_posts.created_at DESC, posts.id DESC").
		Limit(clampLimit(limit)).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) CountByUser(ctx context.Context, userID uint) (int64, error) {
	var n int64
	if err := readDB(r.db).WithContext(ctx).Model(&models.Post{}).Where("user_id = ?", userID).Count(&n).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return n, nil
}

func (r *postRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Post{}, id)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Post", id)
	}
	cache.InvalidatePost(ctx, id)
	cache.InvalidateRecentPosts(ctx)
	return nil
}

// ToggleLike flips the caller's like inside one transaction and returns the
// resulting state.
func (r *postRepository) ToggleLike(ctx context.Context, userID, postID uint) (bool, int, error) {
	var liked bool
	var count int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND post_id = ?", userID, postID).Delete(&models.Like{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			like := models.Like{UserID: userID, PostID: postID}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&like).Error; err != nil {
				return err
			}
			liked = true
		}
		return tx.Model(&models.Like{}).Where("post_id = ?", postID).Count(&count).Error
	})
	if err != nil {
		return false, 0, models.NewInternalError(err)
	}
	cache.InvalidatePost(ctx, postID)
	return liked, int(count), nil
}

func (r *postRepository) LikeState(ctx context.Context, userID, postID uint) (bool, int, error) {
	var row struct {
		Liked bool
		Count int
	}
	err := r.db.WithContext(ctx).Raw(
		"SELECT EXISTS(SELECT 1 FROM likes WHERE post_id = ? AND user_id = ?) AS liked, "+
			"(SELECT COUNT(*) FROM likes WHERE post_id = ?) AS count",
		postID, userID, postID).Scan(&row).Error
	if err != nil {
		return false, 0, models.NewInternalError(err)
	}
	return row.Liked, row.Count, nil
}

func (r *postRepository) ToggleSave(ctx context.Context, userID, postID uint) (bool, error) {
	var saved bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND post_id = ?", userID, postID).Delete(&models.SavedPost{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return nil
		}
		saved = true
		return tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.SavedPost{UserID: userID, PostID: postID}).Error
	})
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return saved, nil
}

func (r *postRepository) page(q *gorm.DB, limit, offset int, dst *[]*models.Post) error {
	err := q.Preload("User").
		Order(newestFirst).
		Limit(limit).
		Offset(offset).
		Find(dst).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// withDetails adds subqueries to fetch counts and the viewer's like/save
// state in a single query.
func (r *postRepository) withDetails(db *gorm.DB, viewerID uint) *gorm.DB {
	selectQuery := "posts.*, " +
		"(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id AND comments.deleted_at IS NULL) AS comments_count, " +
		"(SELECT COUNT(*) FROM likes WHERE likes.post_id = posts.id) AS likes_count"

	if viewerID != 0 {
		return db.Model(&models.Post{}).Select(selectQuery+
			", EXISTS(SELECT 1 FROM likes WHERE likes.post_id = posts.id AND likes.user_id = ?) AS liked"+
			", EXISTS(SELECT 1 FROM saved_posts WHERE saved_posts.post_id = posts.id AND saved_posts.user_id = ?) AS saved",
			viewerID, viewerID)
	}
	return db.Model(&models.Post{}).Select(selectQuery + ", false AS liked, false AS saved")
}
