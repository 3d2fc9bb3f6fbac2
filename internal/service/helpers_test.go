package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"socialnova/internal/auth"
	"socialnova/internal/debounce"
	"socialnova/internal/notifications"
	"socialnova/internal/repository"
	"socialnova/internal/testutil"

	"gorm.io/gorm"
)

const testSecret = "service-test-secret-0123456789abcdef"

var t0 = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

type deps struct {
	db       *gorm.DB
	users    repository.UserRepository
	posts    repository.PostRepository
	comments repository.CommentRepository
	follows  repository.FollowRepository
	realms   repository.RealmRepository
	tokens   *auth.TokenManager
	events   *notifications.AuthEvents
	clock    *fakeClock
	guard    *debounce.MemoryGuard
}

func newDeps(t *testing.T) *deps {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	clock := &fakeClock{now: t0}
	return &deps{
		db:       db,
		users:    repository.NewUserRepository(db),
		posts:    repository.NewPostRepository(db),
		comments: repository.NewCommentRepository(db),
		follows:  repository.NewFollowRepository(db),
		realms:   repository.NewRealmRepository(db),
		tokens:   auth.NewTokenManager(testSecret, time.Hour, nil),
		events:   notifications.NewAuthEvents(nil),
		clock:    clock,
		guard:    debounce.NewMemoryGuard(400*time.Millisecond, clock.Now),
	}
}

func (d *deps) postService(pageSize int) *PostService {
	return NewPostService(d.posts, d.comments, d.realms, d.guard, pageSize)
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// guardStub is a func-field debounce.Guard.
type guardStub struct {
	allowFn func(context.Context, string) (bool, error)
}

func (g guardStub) Allow(ctx context.Context, key string) (bool, error) { return g.allowFn(ctx, key) }

func strPtr(s string) *string { return &s }
