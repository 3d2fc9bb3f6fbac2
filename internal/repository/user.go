package repository

import (
	"context"
	"errors"

	"socialnova/internal/cache"
	"socialnova/internal/models"

	"gorm.io/gorm"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, order OrderBy, limit, offset int) ([]models.User, error)
	Search(ctx context.Context, query string, limit int) ([]models.User, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// GetByID is read through the user cache. Cached entries carry the email
// but never the password hash.
func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var account models.Account
	err := cache.Aside(ctx, cache.UserKey(id), &account, cache.UserTTL, func() error {
		var user models.User
		if err := readDB(r.db).WithContext(ctx).First(&user, id).Error; err != nil {
			return wrapFind(err, "User", id)
		}
		account = *models.NewAccount(&user)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if account.User == nil {
		return nil, models.NewNotFoundError("User", id)
	}
	account.User.Email = account.Email
	return account.User, nil
}

// GetByEmail returns nil, nil when no user has the address.
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, "LOWER(email) = LOWER(?)", email)
}

// GetByUsername returns nil, nil when the username is free.
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(ctx, "LOWER(username) = LOWER(?)", username)
}

func (r *userRepository) findOne(ctx context.Context, where string, arg string) (*models.User, error) {
	var user models.User
	if err := readDB(r.db).WithContext(ctx).Where(where, arg).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("User already exists")
		}
		return models.NewInternalError(err)
	}
	return nil
}

// profileColumns are the columns Update writes. Credentials are never
// rewritten from a possibly cached copy.
var profileColumns = []string{"username", "full_name", "avatar_url", "bio", "name_fold"}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Model(user).Select(profileColumns).Updates(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("Username already taken")
		}
		return models.NewInternalError(err)
	}
	cache.InvalidateUser(ctx, user.ID)
	return nil
}

func (r *userRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.User{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateUser(ctx, id)
	return nil
}

func (r *userRepository) List(ctx context.Context, order OrderBy, limit, offset int) ([]models.User, error) {
	users := []models.User{}
	q := applyOrder(readDB(r.db).WithContext(ctx).Model(&models.User{}), "users", order)
	if err := q.Limit(clampLimit(limit)).Offset(offset).Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

// Search matches username and full name. An empty query matches everyone.
func (r *userRepository) Search(ctx context.Context, query string, limit int) ([]models.User, error) {
	if limit <= 0 || limit > MaxSearchResults {
		limit = MaxSearchResults
	}
	users := []models.User{}
	q := readDB(r.db).WithContext(ctx)
	if query != "" {
		like := likePattern(query)
		q = q.Where(`name_fold LIKE ? ESCAPE '\'`, like)
	}
	if err := q.Order("username ASC").Limit(limit).Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}
