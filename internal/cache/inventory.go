package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix        = "user:%d"
	PostKeyPrefix        = "post:%d"
	RealmKeyPrefix       = "realm:%s"
	RecentPostsKeyPrefix = "posts:recent:%d"
	TopicsKey            = "search:topics"
)

const (
	UserTTL   = 5 * time.Minute
	RealmTTL  = 10 * time.Minute
	PostTTL   = 30 * time.Minute
	ListTTL   = 30 * time.Second
	TopicsTTL = time.Hour
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func PostKey(postID uint) string {
	return fmt.Sprintf(PostKeyPrefix, postID)
}

func RealmKey(slug string) string {
	return fmt.Sprintf(RealmKeyPrefix, slug)
}

// RecentPostsKey caches one anonymous page of the public post listing.
func RecentPostsKey(page int) string {
	return fmt.Sprintf(RecentPostsKeyPrefix, page)
}

func Invalidate(ctx context.Context, keys ...string) {
	if client != nil && len(keys) > 0 {
		client.Del(ctx, keys...)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

func InvalidatePost(ctx context.Context, postID uint) {
	Invalidate(ctx, PostKey(postID))
}

// InvalidateRecentPosts drops the first cached pages of the public listing.
// Deeper pages expire on ListTTL.
func InvalidateRecentPosts(ctx context.Context) {
	Invalidate(ctx, RecentPostsKey(0), RecentPostsKey(1), RecentPostsKey(2))
}

func InvalidateRealm(ctx context.Context, slug string) {
	Invalidate(ctx, RealmKey(slug))
}
