package service

import (
	"context"
	"strconv"
	"testing"

	"socialnova/internal/models"
	"socialnova/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRealmService_CreateDefaultsSlug(t *testing.T) {
	d := newDeps(t)
	svc := NewRealmService(d.realms, d.posts, 10)
	ctx := context.Background()
	owner := testutil.CreateUser(t, d.db, "owner")

	realm, err := svc.CreateRealm(ctx, CreateRealmInput{CreatorID: owner.ID, Name: "  Urban Photography ", Description: "streets"})
	require.NoError(t, err)
	assert.Equal(t, "Urban Photography", realm.Name)
	assert.Equal(t, "urban-photography", realm.Slug)
	assert.Equal(t, 1, realm.MembersCount)
	assert.True(t, realm.IsMember)

	_, err = svc.CreateRealm(ctx, CreateRealmInput{CreatorID: owner.ID, Name: "Urban Photography"})
	assert.True(t, models.IsCode(err, models.CodeConflict), "got %v", err)

	_, err = svc.CreateRealm(ctx, CreateRealmInput{CreatorID: owner.ID, Name: "x", Slug: "Bad Slug"})
	assert.True(t, models.IsCode(err, models.CodeValidation))

	_, err = svc.CreateRealm(ctx, CreateRealmInput{CreatorID: owner.ID, Name: "   "})
	assert.True(t, models.IsCode(err, models.CodeValidation))
}

func TestRealmService_GetByIDOrSlug(t *testing.T) {
	d := newDeps(t)
	svc := NewRealmService(d.realms, d.posts, 10)
	ctx := context.Background()
	owner := testutil.CreateUser(t, d.db, "owner")
	realm := testutil.CreateRealm(t, d.db, owner.ID, "Travel", "travel", "")

	byID, err := svc.GetRealm(ctx, strconv.FormatUint(uint64(realm.ID), 10), 0)
	require.NoError(t, err)
	assert.Equal(t, "travel", byID.Slug)

	bySlug, err := svc.GetRealm(ctx, "TRAVEL", 0)
	require.NoError(t, err)
	assert.Equal(t, realm.ID, bySlug.ID)

	_, err = svc.GetRealm(ctx, "nowhere", 0)
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}

func TestRealmService_JoinLeave(t *testing.T) {
	d := newDeps(t)
	svc := NewRealmService(d.realms, d.posts, 10)
	ctx := context.Background()
	owner := testutil.CreateUser(t, d.db, "owner")
	member := testutil.CreateUser(t, d.db, "member")
	realm := testutil.CreateRealm(t, d.db, owner.ID, "Food", "food", "")

	joined, err := svc.Join(ctx, realm.ID, member.ID)
	require.NoError(t, err)
	assert.True(t, joined.IsMember)
	assert.Equal(t, 2, joined.MembersCount)

	again, err := svc.Join(ctx, realm.ID, member.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, again.MembersCount)

	members, err := svc.Members(ctx, realm.ID, 0)
	require.NoError(t, err)
	require.Len(t, members.Items, 2)
	assert.Equal(t, owner.ID, members.Items[0].UserID)
	assert.Equal(t, models.RealmRoleOwner, members.Items[0].Role)

	assert.True(t, models.IsCode(svc.Leave(ctx, realm.ID, owner.ID), models.CodeForbidden))
	require.NoError(t, svc.Leave(ctx, realm.ID, member.ID))
	assert.True(t, models.IsCode(svc.Leave(ctx, realm.ID, member.ID), models.CodeValidation))

	_, err = svc.Join(ctx, 999, member.ID)
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}

func TestRealmService_PostsAndList(t *testing.T) {
	d := newDeps(t)
	svc := NewRealmService(d.realms, d.posts, 10)
	ctx := context.Background()
	owner := testutil.CreateUser(t, d.db, "owner")
	small := testutil.CreateRealm(t, d.db, owner.ID, "Small", "small", "")
	big := testutil.CreateRealm(t, d.db, owner.ID, "Big", "big", "")
	for _, name := range []string{"m1", "m2"} {
		u := testutil.CreateUser(t, d.db, name)
		_, err := svc.Join(ctx, big.ID, u.ID)
		require.NoError(t, err)
	}
	testutil.CreatePost(t, d.db, owner.ID, t0, &small.ID)
	testutil.CreatePost(t, d.db, owner.ID, t0.Add(1), nil)

	posts, err := svc.Posts(ctx, small.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, posts.Items, 1)
	assert.Equal(t, small.ID, *posts.Items[0].RealmID)

	list, err := svc.ListRealms(ctx, owner.ID, 0)
	require.NoError(t, err)
	require.Len(t, list.Items, 2)
	assert.Equal(t, "big", list.Items[0].Slug)
	assert.Equal(t, 3, list.Items[0].MembersCount)

	_, err = svc.Posts(ctx, 404, 0, 0)
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}
