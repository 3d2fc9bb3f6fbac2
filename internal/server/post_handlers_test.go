package server

import (
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"socialnova/internal/config"
	"socialnova/internal/models"
	"socialnova/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetFeed_Pages(t *testing.T) {
	srv := newTestServer(t)
	app := srv.App()

	reader := signUp(t, app, "reader")
	author := testutil.CreateUser(t, srv.db, "author")
	base := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 12; i++ {
		testutil.CreatePost(t, srv.db, author.ID, base.Add(time.Duration(i)*time.Minute), nil)
	}

	resp, body := doJSON(t, app, http.MethodGet, "/api/feed", reader.AccessToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decode[models.Page[models.Post]](t, body).Items, "nobody followed yet")

	resp, _ = doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/users/%d/follow", author.ID), reader.AccessToken, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, body = doJSON(t, app, http.MethodGet, "/api/feed?page=0", reader.AccessToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	first := decode[models.Page[models.Post]](t, body)
	require.Len(t, first.Items, 10)
	assert.True(t, first.HasMore)
	assert.True(t, first.Items[0].CreatedAt.After(first.Items[9].CreatedAt))

	resp, body = doJSON(t, app, http.MethodGet, "/api/feed?page=1", reader.AccessToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	second := decode[models.Page[models.Post]](t, body)
	assert.Len(t, second.Items, 2)
	assert.False(t, second.HasMore)
	assert.Equal(t, 1, second.Page)

	resp, body = doJSON(t, app, http.MethodGet, "/api/feed?page=-1", reader.AccessToken, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, models.CodeValidation, decode[models.ErrorResponse](t, body).Code)
}

func TestCreatePost_Multipart(t *testing.T) {
	srv := newTestServer(t)
	app := srv.App()
	s := signUp(t, app, "maker")

	resp, body := doUpload(t, app, "/api/posts", s.AccessToken, "photo.png", testutil.TinyPNG(t, 64, 32),
		map[string]string{"caption": "  golden hour  "})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	post := decode[models.Post](t, body)
	assert.Equal(t, models.MediaTypeImage, post.MediaType)
	require.NotNil(t, post.Caption)
	assert.Equal(t, "golden hour", *post.Caption)
	prefix := fmt.Sprintf("http://api.test/media/posts/%d/", s.User.ID)
	assert.True(t, strings.HasPrefix(post.MediaURL, prefix), post.MediaURL)
	assert.True(t, strings.HasSuffix(post.ThumbnailURL, ".webp"), post.ThumbnailURL)

	resp, body = doJSON(t, app, http.MethodGet, strings.TrimPrefix(post.MediaURL, "http://api.test"), "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, testutil.TinyPNG(t, 64, 32), body)

	resp, body = doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/posts/%d", post.ID), "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, post.ID, decode[models.Post](t, body).ID)
}

func TestCreatePost_Rejects(t *testing.T) {
	srv := newTestServer(t)
	app := srv.App()
	s := signUp(t, app, "maker")

	tests := []struct {
		name     string
		filename string
		content  []byte
		fields   map[string]string
		status   int
	}{
		{"no file", "", nil, nil, http.StatusBadRequest},
		{"unsupported type", "notes.pdf", []byte("%PDF-1.4"), nil, http.StatusBadRequest},
		{"bad realm id", "a.png", testutil.TinyPNG(t, 4, 4), map[string]string{"realm_id": "abc"}, http.StatusBadRequest},
		{"unknown realm", "a.png", testutil.TinyPNG(t, 4, 4), map[string]string{"realm_id": "999"}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := doUpload(t, app, "/api/posts", s.AccessToken, tt.filename, tt.content, tt.fields)
			assert.Equal(t, tt.status, resp.StatusCode, string(body))
		})
	}

	resp, _ := doUpload(t, app, "/api/posts", "", "a.png", testutil.TinyPNG(t, 4, 4), nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestDeletePost_OwnerOnly(t *testing.T) {
	srv := newTestServer(t)
	app := srv.App()
	owner := signUp(t, app, "owner")
	other := signUp(t, app, "other")
	post := testutil.CreatePost(t, srv.db, owner.User.ID, time.Now(), nil)
	path := fmt.Sprintf("/api/posts/%d", post.ID)

	resp, _ := doJSON(t, app, http.MethodDelete, path, other.AccessToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodDelete, path, owner.AccessToken, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodGet, path, "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestLikePost_DebouncesRepeats(t *testing.T) {
	srv := newTestServer(t, func(c *config.Config) { c.LikeToggleWindowMS = 60_000 })
	app := srv.App()
	s := signUp(t, app, "fan")
	post := testutil.CreatePost(t, srv.db, s.User.ID, time.Now(), nil)
	path := fmt.Sprintf("/api/posts/%d/like", post.ID)

	resp, body := doJSON(t, app, http.MethodPost, path, s.AccessToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	first := decode[models.LikeResult](t, body)
	assert.True(t, first.Liked)
	assert.Equal(t, 1, first.LikesCount)
	assert.False(t, first.Debounced)

	resp, body = doJSON(t, app, http.MethodPost, path, s.AccessToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	second := decode[models.LikeResult](t, body)
	assert.True(t, second.Debounced)
	assert.True(t, second.Liked, "a debounced toggle keeps the current state")
	assert.Equal(t, 1, second.LikesCount)

	resp, _ = doJSON(t, app, http.MethodPost, "/api/posts/abc/like", s.AccessToken, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSavePost_TogglesAndLists(t *testing.T) {
	srv := newTestServer(t)
	app := srv.App()
	s := signUp(t, app, "saver")
	post := testutil.CreatePost(t, srv.db, s.User.ID, time.Now(), nil)
	path := fmt.Sprintf("/api/posts/%d/save", post.ID)

	resp, body := doJSON(t, app, http.MethodPost, path, s.AccessToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, decode[map[string]interface{}](t, body)["saved"])

	resp, body = doJSON(t, app, http.MethodGet, "/api/users/me/saved", s.AccessToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	saved := decode[models.Page[models.Post]](t, body)
	require.Len(t, saved.Items, 1)
	assert.True(t, saved.Items[0].Saved)

	resp, body = doJSON(t, app, http.MethodPost, path, s.AccessToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, decode[map[string]interface{}](t, body)["saved"])
}

func TestComments(t *testing.T) {
	srv := newTestServer(t)
	app := srv.App()
	author := signUp(t, app, "author")
	commenter := signUp(t, app, "commenter")
	post := testutil.CreatePost(t, srv.db, author.User.ID, time.Now(), nil)
	path := fmt.Sprintf("/api/posts/%d/comments", post.ID)

	resp, body := doJSON(t, app, http.MethodPost, path, commenter.AccessToken, map[string]string{"content": "  nice shot  "})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	comment := decode[models.Comment](t, body)
	assert.Equal(t, "nice shot", comment.Content)

	resp, _ = doJSON(t, app, http.MethodPost, path, commenter.AccessToken, map[string]string{"content": "   "})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = doJSON(t, app, http.MethodGet, path, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[models.Page[models.Comment]](t, body).Items, 1)

	del := fmt.Sprintf("%s/%d", path, comment.ID)
	resp, _ = doJSON(t, app, http.MethodDelete, del, signUp(t, app, "stranger").AccessToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodDelete, del, author.AccessToken, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestSuggestCaption_FlagGated(t *testing.T) {
	off := newTestServer(t).App()
	s := signUp(t, off, "writer")
	resp, body := doJSON(t, off, http.MethodPost, "/api/captions/suggest", s.AccessToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, models.CodeNotFound, decode[models.ErrorResponse](t, body).Code)

	on := newTestServer(t, func(c *config.Config) { c.FeatureFlags = "caption_suggestions=on" }).App()
	s = signUp(t, on, "writer")
	resp, body = doJSON(t, on, http.MethodPost, "/api/captions/suggest", s.AccessToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, decode[map[string]string](t, body)["caption"])
}
