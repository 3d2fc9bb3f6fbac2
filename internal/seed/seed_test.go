package seed

import (
	"testing"

	"socialnova/internal/models"
	"socialnova/internal/testutil"
	"socialnova/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func count(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

func TestLoadSamples(t *testing.T) {
	data, err := LoadSamples()
	require.NoError(t, err)

	assert.Len(t, data.Users, 3)
	assert.Len(t, data.Realms, 3)
	assert.NotEmpty(t, data.Posts)
	assert.Equal(t, "urban-photography", data.Realms[0].Slug)
	assert.False(t, data.Posts[0].CreatedAt.IsZero())
	for _, r := range data.Realms {
		assert.NoError(t, validation.ValidateRealmSlug(r.Slug), r.Slug)
	}
}

func TestSamples_Idempotent(t *testing.T) {
	db := testutil.NewSQLiteDB(t)

	require.NoError(t, Samples(db, true))
	require.NoError(t, Samples(db, true))

	data, err := LoadSamples()
	require.NoError(t, err)
	assert.Equal(t, int64(len(data.Users)), count(t, db, &models.User{}))
	assert.Equal(t, int64(len(data.Realms)), count(t, db, &models.Realm{}))
	assert.Equal(t, int64(len(data.Posts)), count(t, db, &models.Post{}))
	assert.Equal(t, int64(len(data.Follows)), count(t, db, &models.Follow{}))
	// owners plus listed members
	assert.Equal(t, int64(6), count(t, db, &models.RealmMembership{}))

	var realmPosts int64
	require.NoError(t, db.Model(&models.Post{}).Where("realm_id IS NOT NULL").Count(&realmPosts).Error)
	assert.Equal(t, int64(2), realmPosts)
}

func TestSeed_Synthetic(t *testing.T) {
	db := testutil.NewSQLiteDB(t)

	res, err := Seed(db, Options{NumUsers: 6, NumPosts: 15, SkipBcrypt: true, RandSeed: 42})
	require.NoError(t, err)
	assert.Equal(t, 6, res.Users)
	assert.Equal(t, 15, res.Posts)
	assert.Equal(t, int64(6), count(t, db, &models.User{}))
	assert.Equal(t, int64(15), count(t, db, &models.Post{}))
	assert.Equal(t, int64(res.Follows), count(t, db, &models.Follow{}))

	var users []models.User
	require.NoError(t, db.Find(&users).Error)
	for _, u := range users {
		assert.NoError(t, validation.ValidateUsername(u.Username), u.Username)
	}

	var selfFollows int64
	require.NoError(t, db.Model(&models.Follow{}).Where("follower_id = followee_id").Count(&selfFollows).Error)
	assert.Zero(t, selfFollows)
}

func TestSeed_CleanRemovesEverything(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	_, err := Seed(db, Options{Samples: true, NumUsers: 3, NumPosts: 4, SkipBcrypt: true, RandSeed: 7})
	require.NoError(t, err)
	require.NotZero(t, count(t, db, &models.Post{}))

	_, err = Seed(db, Options{Clean: true})
	require.NoError(t, err)
	assert.Zero(t, count(t, db, &models.User{}))
	assert.Zero(t, count(t, db, &models.Post{}))
	assert.Zero(t, count(t, db, &models.Realm{}))
}

func TestFactory_BuildPostWithinWindow(t *testing.T) {
	f, err := NewFactory(nil, Options{SkipBcrypt: true, MaxDays: 2, RandSeed: 1})
	require.NoError(t, err)

	realm := uint(9)
	p := f.BuildPost(3, &realm)
	assert.Equal(t, uint(3), p.UserID)
	assert.Equal(t, &realm, p.RealmID)
	assert.Equal(t, models.MediaTypeImage, p.MediaType)
	assert.Contains(t, p.MediaURL, "https://picsum.photos/seed/")
	assert.False(t, p.CreatedAt.Before(f.now.AddDate(0, 0, -2)))
	require.NotNil(t, p.Caption)
	assert.Contains(t, *p.Caption, "#")
}
