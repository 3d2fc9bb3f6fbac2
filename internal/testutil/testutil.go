// Package testutil provides shared fixtures for backend tests.
package testutil

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"time"

	"socialnova/internal/config"
	"socialnova/internal/database"
	"socialnova/internal/models"

	"gorm.io/gorm"
)

// T is the subset of testing.TB the helpers need.
type T interface {
	Helper()
	Fatalf(string, ...any)
	Cleanup(func())
}

// NewSQLiteDB opens a private in-memory database with the full schema.
func NewSQLiteDB(t T) *gorm.DB {
	t.Helper()
	cfg := &config.Config{Env: "test", DBDriver: "sqlite", DBSQLitePath: "file::memory:"}
	db, err := database.Open(cfg)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.ApplySchema(context.Background(), db, cfg); err != nil {
		t.Fatalf("apply schema: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// CreateUser inserts a user named username with a placeholder password hash.
func CreateUser(t T, db *gorm.DB, username string) *models.User {
	t.Helper()
	u := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "$2a$10$placeholderplaceholderplaceholderplaceholderplacehold",
		FullName: username,
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return u
}

// CreatePost inserts an image post by userID at the given time.
func CreatePost(t T, db *gorm.DB, userID uint, at time.Time, realmID *uint) *models.Post {
	t.Helper()
	caption := fmt.Sprintf("post at %s", at.Format(time.RFC3339))
	p := &models.Post{
		UserID:    userID,
		RealmID:   realmID,
		MediaURL:  fmt.Sprintf("http://localhost/media/posts/%d/%d.png", userID, at.UnixNano()),
		MediaType: models.MediaTypeImage,
		Caption:   &caption,
		CreatedAt: at.UTC(),
	}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("create post: %v", err)
	}
	return p
}

// CreateRealm inserts a realm owned by creatorID.
func CreateRealm(t T, db *gorm.DB, creatorID uint, name, slug, description string) *models.Realm {
	t.Helper()
	r := &models.Realm{Name: name, Slug: slug, Description: description, CreatorID: creatorID}
	if err := db.Create(r).Error; err != nil {
		t.Fatalf("create realm: %v", err)
	}
	m := &models.RealmMembership{RealmID: r.ID, UserID: creatorID, Role: models.RealmRoleOwner}
	if err := db.Create(m).Error; err != nil {
		t.Fatalf("create realm owner: %v", err)
	}
	return r
}

// TinyPNG returns an in-memory PNG byte slice with the requested dimensions.
func TinyPNG(t interface {
	Helper()
	Fatalf(string, ...any)
}, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	buf := bytes.NewBuffer(nil)
	if err := png.Encode(buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}
