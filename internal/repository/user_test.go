package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"socialnova/internal/cache"
	"socialnova/internal/models"
	"socialnova/internal/testutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func TestUserRepository_GetByID_Postgres(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	tests := []struct {
		name         string
		userID       uint
		mockBehavior func()
		wantUsername string
		wantCode     string
	}{
		{
			name:   "Success",
			userID: 1,
			mockBehavior: func() {
				rows := sqlmock.NewRows([]string{"id", "username", "email"}).
					AddRow(1, "testuser", "test@example.com")
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE "users"."id" = $1`)).
					WillReturnRows(rows)
			},
			wantUsername: "testuser",
		},
		{
			name:   "Not Found",
			userID: 99,
			mockBehavior: func() {
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE "users"."id" = $1`)).
					WillReturnError(gorm.ErrRecordNotFound)
			},
			wantCode: models.CodeNotFound,
		},
		{
			name:   "Driver Error",
			userID: 7,
			mockBehavior: func() {
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE "users"."id" = $1`)).
					WillReturnError(errors.New("connection reset"))
			},
			wantCode: models.CodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockBehavior()
			user, err := repo.GetByID(ctx, tt.userID)

			if tt.wantCode != "" {
				assert.True(t, models.IsCode(err, tt.wantCode), "got %v", err)
				assert.Nil(t, user)
			} else if assert.NoError(t, err) {
				assert.Equal(t, tt.wantUsername, user.Username)
				assert.Equal(t, "test@example.com", user.Email)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_Create_DuplicateIsConflict_Postgres(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "users"`)).
		WillReturnError(errors.New(`ERROR: duplicate key value violates unique constraint "idx_users_email" (SQLSTATE 23505)`))
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &models.User{Username: "dup", Email: "dup@example.com", Password: "x"})
	assert.True(t, models.IsCode(err, models.CodeConflict), "got %v", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_LookupsAndSearch(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db, "alice_wonder")
	testutil.CreateUser(t, db, "Bob")
	testutil.CreateUser(t, db, "under_score")

	got, err := repo.GetByUsername(ctx, "ALICE_WONDER")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, alice.ID, got.ID)

	got, err = repo.GetByEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, got)

	res, err := repo.Search(ctx, "BOB", 0)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "Bob", res[0].Username)

	// "_" is a literal, not a single-character wildcard
	res, err = repo.Search(ctx, "d_r", 0)
	require.NoError(t, err)
	assert.Empty(t, res)

	res, err = repo.Search(ctx, "r_s", 0)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "under_score", res[0].Username)

	res, err = repo.Search(ctx, "", 0)
	require.NoError(t, err)
	assert.Len(t, res, 3)
}

func TestUserRepository_CreateDuplicateUsername(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.User{Username: "neo", Email: "neo@example.com", Password: "h"}))
	err := repo.Create(ctx, &models.User{Username: "neo", Email: "other@example.com", Password: "h"})
	assert.True(t, models.IsCode(err, models.CodeConflict), "got %v", err)
}

func TestUserRepository_ListOrdered(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewUserRepository(db)
	for _, name := range []string{"carol", "alice", "bob"} {
		testutil.CreateUser(t, db, name)
	}

	users, err := repo.List(context.Background(), OrderBy{Column: "username"}, 2, 0)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "alice", users[0].Username)
	assert.Equal(t, "bob", users[1].Username)
}

func TestUserRepository_SearchFoldsNonASCII(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.User{Username: "elodie", Email: "e@example.com", Password: "h", FullName: "Élodie Ünal"}))
	testutil.CreateUser(t, db, "plain")

	for _, q := range []string{"élodie", "ÉLODIE", "ünal", "ÜNAL", "ELO"} {
		res, err := repo.Search(ctx, q, 0)
		require.NoError(t, err)
		require.Len(t, res, 1, q)
		assert.Equal(t, "elodie", res[0].Username)
	}
}

func TestUserRepository_CachedReadAndProfileUpdate(t *testing.T) {
	mr := miniredis.RunT(t)
	cache.SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { cache.SetClient(nil) })

	db := testutil.NewSQLiteDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()
	u := testutil.CreateUser(t, db, "cached")

	_, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	raw, err := mr.Get(cache.UserKey(u.ID))
	require.NoError(t, err)
	assert.Contains(t, raw, "cached@example.com")
	assert.NotContains(t, raw, u.Password)

	hit, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "cached@example.com", hit.Email)
	assert.Empty(t, hit.Password)

	hit.FullName = "Çağla Öz"
	require.NoError(t, repo.Update(ctx, hit))
	assert.False(t, mr.Exists(cache.UserKey(u.ID)))

	var stored models.User
	require.NoError(t, db.First(&stored, u.ID).Error)
	assert.Equal(t, u.Password, stored.Password)
	assert.Equal(t, "cached@example.com", stored.Email)
	assert.Equal(t, "Çağla Öz", stored.FullName)

	res, err := repo.Search(ctx, "ÇAĞLA", 0)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, u.ID, res[0].ID)
}
