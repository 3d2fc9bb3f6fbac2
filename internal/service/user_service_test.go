package service

import (
	"context"
	"strings"
	"testing"

	"socialnova/internal/models"
	"socialnova/internal/notifications"
	"socialnova/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_ProfileCounts(t *testing.T) {
	d := newDeps(t)
	svc := NewUserService(d.users, d.posts, d.follows, d.events)
	ctx := context.Background()

	alice := testutil.CreateUser(t, d.db, "alice")
	bob := testutil.CreateUser(t, d.db, "bob")
	carol := testutil.CreateUser(t, d.db, "carol")
	testutil.CreatePost(t, d.db, alice.ID, t0, nil)
	testutil.CreatePost(t, d.db, alice.ID, t0.Add(1), nil)

	require.NoError(t, svc.Follow(ctx, bob.ID, alice.ID))
	require.NoError(t, svc.Follow(ctx, carol.ID, alice.ID))
	require.NoError(t, svc.Follow(ctx, alice.ID, bob.ID))
	// following twice is a no-op
	require.NoError(t, svc.Follow(ctx, bob.ID, alice.ID))

	p, err := svc.Profile(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", p.User.Username)
	assert.Equal(t, int64(2), p.PostsCount)
	assert.Equal(t, int64(2), p.FollowersCount)
	assert.Equal(t, int64(1), p.FollowingCount)
	assert.True(t, p.IsFollowing)

	self, err := svc.Profile(ctx, alice.ID, alice.ID)
	require.NoError(t, err)
	assert.False(t, self.IsFollowing)

	require.NoError(t, svc.Unfollow(ctx, bob.ID, alice.ID))
	p, err = svc.Profile(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), p.FollowersCount)
	assert.False(t, p.IsFollowing)

	_, err = svc.Profile(ctx, 999, 0)
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}

func TestUserService_FollowRules(t *testing.T) {
	d := newDeps(t)
	svc := NewUserService(d.users, d.posts, d.follows, d.events)
	u := testutil.CreateUser(t, d.db, "solo")

	assert.True(t, models.IsCode(svc.Follow(context.Background(), u.ID, u.ID), models.CodeValidation))
	assert.True(t, models.IsCode(svc.Follow(context.Background(), u.ID, 404), models.CodeNotFound))
}

func TestUserService_UpdateProfile(t *testing.T) {
	d := newDeps(t)
	svc := NewUserService(d.users, d.posts, d.follows, d.events)
	ctx := context.Background()
	u := testutil.CreateUser(t, d.db, "changeme")
	testutil.CreateUser(t, d.db, "taken")

	var got []notifications.AuthEvent
	unsubscribe := d.events.Subscribe(u.ID, func(ev notifications.AuthEvent) { got = append(got, ev) })
	defer unsubscribe()

	updated, err := svc.UpdateProfile(ctx, UpdateProfileInput{
		UserID:   u.ID,
		Username: strPtr("renamed"),
		Bio:      strPtr("  hello there  "),
	})
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Username)
	require.NotNil(t, updated.Bio)
	assert.Equal(t, "hello there", *updated.Bio)
	assert.Equal(t, "changeme", updated.FullName)

	require.Len(t, got, 1)
	assert.Equal(t, notifications.UserUpdated, got[0].Type)
	assert.Equal(t, "renamed", got[0].User.Username)

	reloaded, err := d.users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", reloaded.Username)

	// clearing the bio stores NULL
	cleared, err := svc.UpdateProfile(ctx, UpdateProfileInput{UserID: u.ID, Bio: strPtr("")})
	require.NoError(t, err)
	assert.Nil(t, cleared.Bio)

	tests := []struct {
		name string
		in   UpdateProfileInput
		code string
	}{
		{"username taken", UpdateProfileInput{UserID: u.ID, Username: strPtr("TAKEN")}, models.CodeConflict},
		{"bad username", UpdateProfileInput{UserID: u.ID, Username: strPtr("no spaces")}, models.CodeValidation},
		{"bio too long", UpdateProfileInput{UserID: u.ID, Bio: strPtr(strings.Repeat("b", maxBioLen+1))}, models.CodeValidation},
		{"name too long", UpdateProfileInput{UserID: u.ID, FullName: strPtr(strings.Repeat("n", maxFullNameLen+1))}, models.CodeValidation},
		{"missing user", UpdateProfileInput{UserID: 999, Bio: strPtr("x")}, models.CodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.UpdateProfile(ctx, tt.in)
			assert.True(t, models.IsCode(err, tt.code), "got %v", err)
		})
	}
}
