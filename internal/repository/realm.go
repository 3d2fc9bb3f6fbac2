package repository

import (
	"context"

	"socialnova/internal/cache"
	"socialnova/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RealmRepository persists realms and their memberships.
type RealmRepository interface {
	Create(ctx context.Context, realm *models.Realm) error
	GetByID(ctx context.Context, id uint, viewerID uint) (*models.Realm, error)
	GetBySlug(ctx context.Context, slug string, viewerID uint) (*models.Realm, error)
	List(ctx context.Context, order OrderBy, limit, offset int, viewerID uint) ([]*models.Realm, error)
	Search(ctx context.Context, query string, limit int) ([]*models.Realm, error)
	Popular(ctx context.Context, limit int) ([]*models.Realm, error)

	AddMember(ctx context.Context, realmID, userID uint, role models.RealmRole) error
	RemoveMember(ctx context.Context, realmID, userID uint) error
	GetMembership(ctx context.Context, realmID, userID uint) (*models.RealmMembership, error)
	Members(ctx context.Context, realmID uint, limit, offset int) ([]*models.RealmMembership, error)
}

type realmRepository struct {
	db *gorm.DB
}

// NewRealmRepository creates a new RealmRepository
func NewRealmRepository(db *gorm.DB) RealmRepository {
	return &realmRepository{db: db}
}

// Create inserts the realm and makes its creator the owner.
func (r *realmRepository) Create(ctx context.Context, realm *models.Realm) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Creator").Create(realm).Error; err != nil {
			return err
		}
		return tx.Create(&models.RealmMembership{
			RealmID: realm.ID,
			UserID:  realm.CreatorID,
			Role:    models.RealmRoleOwner,
		}).Error
	})
	if err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("Realm slug already taken")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *realmRepository) GetByID(ctx context.Context, id uint, viewerID uint) (*models.Realm, error) {
	var realm models.Realm
	err := r.withCounts(readDB(r.db).WithContext(ctx), viewerID).Preload("Creator").First(&realm, id).Error
	if err != nil {
		return nil, wrapFind(err, "Realm", id)
	}
	return &realm, nil
}

func (r *realmRepository) GetBySlug(ctx context.Context, slug string, viewerID uint) (*models.Realm, error) {
	var realm models.Realm
	fetch := func() error {
		err := r.withCounts(readDB(r.db).WithContext(ctx), viewerID).
			Preload("Creator").
			Where("realms.slug = ?", slug).
			First(&realm).Error
		return wrapFind(err, "Realm", slug)
	}
	var err error
	if viewerID == 0 {
		err = cache.Aside(ctx, cache.RealmKey(slug), &realm, cache.RealmTTL, fetch)
	} else {
		err = fetch()
	}
	if err != nil {
		return nil, err
	}
	return &realm, nil
}

func (r *realmRepository) List(ctx context.Context, order OrderBy, limit, offset int, viewerID uint) ([]*models.Realm, error) {
	realms := []*models.Realm{}
	q := applyOrder(r.withCounts(readDB(r.db).WithContext(ctx), viewerID), "realms", order)
	if err := q.Limit(clampLimit(limit)).Offset(offset).Find(&realms).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return realms, nil
}

// Search matches name, slug and description. An empty query matches every realm.
func (r *realmRepository) Search(ctx context.Context, query string, limit int) ([]*models.Realm, error) {
	if limit <= 0 || limit > MaxSearchResults {
		limit = MaxSearchResults
	}
	realms := []*models.Realm{}
	q := r.withCounts(readDB(r.db).WithContext(ctx), 0)
	if query != "" {
		like := likePattern(query)
		q = q.Where(`realms.name_fold LIKE ? ESCAPE '\'`, like)
	}
	if err := q.Order("realms.name ASC").Limit(limit).Find(&realms).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return realms, nil
}

// Popular returns realms with the most members.
func (r *realmRepository) Popular(ctx context.Context, limit int) ([]*models.Realm, error) {
	return r.List(ctx, OrderBy{Column: "members_count", Desc: true}, limit, 0, 0)
}

// AddMember is idempotent; an existing membership keeps its role.
func (r *realmRepository) AddMember(ctx context.Context, realmID, userID uint, role models.RealmRole) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.RealmMembership{RealmID: realmID, UserID: userID, Role: role}).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *realmRepository) RemoveMember(ctx context.Context, realmID, userID uint) error {
	err := r.db.WithContext(ctx).
		Where("realm_id = ? AND user_id = ?", realmID, userID).
		Delete(&models.RealmMembership{}).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *realmRepository) GetMembership(ctx context.Context, realmID, userID uint) (*models.RealmMembership, error) {
	var m models.RealmMembership
	err := readDB(r.db).WithContext(ctx).
		Where("realm_id = ? AND user_id = ?", realmID, userID).
		First(&m).Error
	if err != nil {
		return nil, wrapFind(err, "Membership", realmID)
	}
	return &m, nil
}

// Members lists memberships, owners first then by join time.
func (r *realmRepository) Members(ctx context.Context, realmID uint, limit, offset int) ([]*models.RealmMembership, error) {
	members := []*models.RealmMembership{}
	err := readDB(r.db).WithContext(ctx).
		Preload("User").
		Where("realm_id = ?", realmID).
		// "owner" sorts after "member"
		Order("role DESC, created_at ASC, user_id ASC").
		Limit(clampLimit(limit)).
		Offset(offset).
		Find(&members).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return members, nil
}

func (r *realmRepository) withCounts(db *gorm.DB, viewerID uint) *gorm.DB {
	selectQuery := "realms.*, " +
		"(SELECT COUNT(*) FROM realm_memberships WHERE realm_memberships.realm_id = realms.id) AS members_count, " +
		"(SELECT COUNT(*) FROM posts WHERE posts.realm_id = realms.id AND posts.deleted_at IS NULL) AS posts_count"
	if viewerID != 0 {
		return db.Model(&models.Realm{}).Select(selectQuery+
			", EXISTS(SELECT 1 FROM realm_memberships WHERE realm_memberships.realm_id = realms.id AND realm_memberships.user_id = ?) AS is_member",
			viewerID)
	}
	return db.Model(&models.Realm{}).Select(selectQuery + ", false AS is_member")
}
