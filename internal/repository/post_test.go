package repository

import (
	"context"
	"testing"
	"time"

	"socialnova/internal/models"
	"socialnova/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func TestPostRepository_PagesAreStableAndDisjoint(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()
	u := testutil.CreateUser(t, db, "pager")

	// 25 posts; pairs share a timestamp so the id tiebreak matters
	for i := 0; i < 25; i++ {
		testutil.CreatePost(t, db, u.ID, base.Add(time.Duration(i/2)*time.Minute), nil)
	}

	seen := map[uint]bool{}
	var last *models.Post
	var sizes []int
	for page := 0; ; page++ {
		posts, err := repo.ListRecent(ctx, 10, page*10, 0)
		require.NoError(t, err)
		sizes = append(sizes, len(posts))
		for _, p := range posts {
			assert.False(t, seen[p.ID], "duplicate id %d", p.ID)
			seen[p.ID] = true
			if last != nil {
				assert.False(t, p.CreatedAt.After(last.CreatedAt), "not newest first")
				if p.CreatedAt.Equal(last.CreatedAt) {
					assert.Less(t, p.ID, last.ID)
				}
			}
			last = p
		}
		if len(posts) < 10 {
			break
		}
	}
	assert.Equal(t, []int{10, 10, 5}, sizes)
	assert.Len(t, seen, 25)
}

func TestPostRepository_GetByIDCountsAndViewerState(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewPostRepository(db)
	comments := NewCommentRepository(db)
	ctx := context.Background()

	author := testutil.CreateUser(t, db, "author")
	viewer := testutil.CreateUser(t, db, "viewer")
	post := testutil.CreatePost(t, db, author.ID, base, nil)

	liked, count, err := repo.ToggleLike(ctx, viewer.ID, post.ID)
	require.NoError(t, err)
	assert.True(t, liked)
	assert.Equal(t, 1, count)
	_, _, err = repo.ToggleLike(ctx, author.ID, post.ID)
	require.NoError(t, err)
	saved, err := repo.ToggleSave(ctx, viewer.ID, post.ID)
	require.NoError(t, err)
	assert.True(t, saved)
	require.NoError(t, comments.Create(ctx, &models.Comment{PostID: post.ID, UserID: viewer.ID, Content: "nice"}))

	got, err := repo.GetByID(ctx, post.ID, viewer.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.LikesCount)
	assert.Equal(t, 1, got.CommentsCount)
	assert.True(t, got.Liked)
	assert.True(t, got.Saved)
	require.NotNil(t, got.User)
	assert.Equal(t, "author", got.User.Username)

	anon, err := repo.GetByID(ctx, post.ID, 0)
	require.NoError(t, err)
	assert.False(t, anon.Liked)
	assert.False(t, anon.Saved)
	assert.Equal(t, 2, anon.LikesCount)

	liked, count, err = repo.ToggleLike(ctx, viewer.ID, post.ID)
	require.NoError(t, err)
	assert.False(t, liked)
	assert.Equal(t, 1, count)

	liked, count, err = repo.LikeState(ctx, viewer.ID, post.ID)
	require.NoError(t, err)
	assert.False(t, liked)
	assert.Equal(t, 1, count)

	saved, err = repo.ToggleSave(ctx, viewer.ID, post.ID)
	require.NoError(t, err)
	assert.False(t, saved)
}

func TestPostRepository_GetByIDMissing(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	_, err := NewPostRepository(db).GetByID(context.Background(), 404, 0)
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}

func TestPostRepository_Feed(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewPostRepository(db)
	follows := NewFollowRepository(db)
	realms := NewRealmRepository(db)
	ctx := context.Background()

	me := testutil.CreateUser(t, db, "me")
	friend := testutil.CreateUser(t, db, "friend")
	stranger := testutil.CreateUser(t, db, "stranger")
	realm := testutil.CreateRealm(t, db, stranger.ID, "Photography", "photography", "")

	mine := testutil.CreatePost(t, db, me.ID, base, nil)
	theirs := testutil.CreatePost(t, db, friend.ID, base.Add(time.Minute), nil)
	inRealm := testutil.CreatePost(t, db, stranger.ID, base.Add(2*time.Minute), &realm.ID)
	testutil.CreatePost(t, db, stranger.ID, base.Add(3*time.Minute), nil)

	posts, err := repo.Feed(ctx, me.ID, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, []uint{mine.ID}, ids(posts))

	require.NoError(t, follows.Follow(ctx, me.ID, friend.ID))
	require.NoError(t, realms.AddMember(ctx, realm.ID, me.ID, models.RealmRoleMember))

	posts, err = repo.Feed(ctx, me.ID, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, []uint{inRealm.ID, theirs.ID, mine.ID}, ids(posts))
}

func TestPostRepository_DeleteAndCount(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()
	u := testutil.CreateUser(t, db, "deleter")
	p := testutil.CreatePost(t, db, u.ID, base, nil)
	testutil.CreatePost(t, db, u.ID, base.Add(time.Second), nil)

	n, err := repo.CountByUser(ctx, u.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	require.NoError(t, repo.Delete(ctx, p.ID))
	assert.True(t, models.IsCode(repo.Delete(ctx, p.ID), models.CodeNotFound))

	n, err = repo.CountByUser(ctx, u.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestPostRepository_ListSavedAndOrdered(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()
	u := testutil.CreateUser(t, db, "saver")
	p1 := testutil.CreatePost(t, db, u.ID, base, nil)
	p2 := testutil.CreatePost(t, db, u.ID, base.Add(time.Minute), nil)

	_, _, err := repo.ToggleLike(ctx, u.ID, p1.ID)
	require.NoError(t, err)

	top, err := repo.List(ctx, OrderBy{Column: "likes_count", Desc: true}, 10, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, []uint{p1.ID, p2.ID}, ids(top))

	_, err = repo.ToggleSave(ctx, u.ID, p2.ID)
	require.NoError(t, err)
	saved, err := repo.ListSaved(ctx, u.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, p2.ID, saved[0].ID)
	assert.True(t, saved[0].Saved)
}

func ids(posts []*models.Post) []uint {
	out := make([]uint, 0, len(posts))
	for _, p := range posts {
		out = append(out, p.ID)
	}
	return out
}
