package service

import (
	"context"
	"testing"
	"time"

	"socialnova/internal/models"
	"socialnova/internal/repository"
	"socialnova/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeedService_PagesOfTen(t *testing.T) {
	d := newDeps(t)
	svc := NewFeedService(d.posts, 10)
	ctx := context.Background()

	me := testutil.CreateUser(t, d.db, "me")
	for i := 0; i < 23; i++ {
		testutil.CreatePost(t, d.db, me.ID, t0.Add(time.Duration(i)*time.Minute), nil)
	}

	var all []*models.Post
	wantSizes := []int{10, 10, 3}
	wantMore := []bool{true, true, false}
	for k := 0; k < 3; k++ {
		page, err := svc.Page(ctx, me.ID, k)
		require.NoError(t, err)
		assert.Equal(t, k, page.Page)
		assert.Equal(t, 10, page.PageSize)
		assert.Len(t, page.Items, wantSizes[k])
		assert.Equal(t, wantMore[k], page.HasMore)
		all = append(all, page.Items...)
	}

	// page k holds exactly the items after the first 10k, newest first
	require.Len(t, all, 23)
	for i := 1; i < len(all); i++ {
		assert.True(t, all[i-1].CreatedAt.After(all[i].CreatedAt))
	}
	assert.Equal(t, t0.Add(22*time.Minute).Unix(), all[0].CreatedAt.Unix())
}

func TestFeedService_ExactMultipleHasTrailingEmptyPage(t *testing.T) {
	d := newDeps(t)
	svc := NewFeedService(d.posts, 10)
	me := testutil.CreateUser(t, d.db, "me")
	for i := 0; i < 10; i++ {
		testutil.CreatePost(t, d.db, me.ID, t0.Add(time.Duration(i)*time.Second), nil)
	}

	first, err := svc.Page(context.Background(), me.ID, 0)
	require.NoError(t, err)
	assert.True(t, first.HasMore)

	second, err := svc.Page(context.Background(), me.ID, 1)
	require.NoError(t, err)
	assert.Empty(t, second.Items)
	assert.NotNil(t, second.Items)
	assert.False(t, second.HasMore)
}

func TestFeedService_NegativePage(t *testing.T) {
	d := newDeps(t)
	_, err := NewFeedService(d.posts, 0).Page(context.Background(), 1, -1)
	assert.True(t, models.IsCode(err, models.CodeValidation))
}

func TestFeedService_EmptyWhenNothingFollowed(t *testing.T) {
	d := newDeps(t)
	me := testutil.CreateUser(t, d.db, "lonely")
	other := testutil.CreateUser(t, d.db, "other")
	testutil.CreatePost(t, d.db, other.ID, t0, nil)

	page, err := NewFeedService(d.posts, 10).Page(context.Background(), me.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.False(t, page.HasMore)
}

func TestPageSizeOrDefault(t *testing.T) {
	assert.Equal(t, DefaultPageSize, pageSizeOrDefault(0))
	assert.Equal(t, DefaultPageSize, pageSizeOrDefault(-4))
	assert.Equal(t, 25, pageSizeOrDefault(25))
	assert.Equal(t, repository.MaxPageSize, pageSizeOrDefault(repository.MaxPageSize+50))
}

func TestFeedService_PageSizeAboveRowCap(t *testing.T) {
	d := newDeps(t)
	svc := NewFeedService(d.posts, 150)
	require.Equal(t, repository.MaxPageSize, svc.PageSize())
	ctx := context.Background()

	me := testutil.CreateUser(t, d.db, "bulk")
	for i := 0; i < repository.MaxPageSize+1; i++ {
		testutil.CreatePost(t, d.db, me.ID, t0.Add(time.Duration(i)*time.Second), nil)
	}

	first, err := svc.Page(ctx, me.ID, 0)
	require.NoError(t, err)
	assert.Len(t, first.Items, repository.MaxPageSize)
	assert.True(t, first.HasMore)

	second, err := svc.Page(ctx, me.ID, 1)
	require.NoError(t, err)
	assert.Len(t, second.Items, 1)
	assert.False(t, second.HasMore)
	assert.Equal(t, t0.Unix(), second.Items[0].CreatedAt.Unix())
}
