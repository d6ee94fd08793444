package impl

import (
	"strconv"

	"fitlog/internal/cache"
	"fitlog/internal/domain/entity"

	"github.com/google/uuid"
)

// Cache key layout. Viewer-agnostic content and viewer-scoped overlays live
// under a shared resource prefix so one Invalidate on the prefix covers both.
//
//	comments/{postID}            -> prefix invalidated on any comment mutation
//	comments/{postID}/content    -> flat comment rows
//	comments/{postID}/liked/{u}  -> viewer's liked-comment overlay
//	posts                        -> prefix invalidated on post/like mutations
//	posts/list/{category}        -> post rows per category filter
//	posts/liked/{u}              -> viewer's liked-post overlay
//	post/{postID}                -> single post prefix
//	weekly-logs/{u}              -> viewer's log history
//	weekly-logs/all              -> organizer overview rows
//	challenge/{u}                -> viewer's challenge settings
//	notifications/{u}            -> viewer's notification feed

func commentsKey(postID int64) cache.Key {
	return cache.NewKey("comments", strconv.FormatInt(postID, 10))
}

func commentContentKey(postID int64) cache.Key {
	return cache.NewKey("comments", strconv.FormatInt(postID, 10), "content")
}

func commentLikedKey(postID int64, viewerID uuid.UUID) cache.Key {
	return cache.NewKey("comments", strconv.FormatInt(postID, 10), "liked", viewerID.String())
}

func postsKey() cache.Key {
	return cache.NewKey("posts")
}

func postListKey(category *entity.PostCategory) cache.Key {
	filter := "all"
	if category != nil {
		filter = string(*category)
	}

	return cache.NewKey("posts", "list", filter)
}

func postLikedKey(viewerID uuid.UUID) cache.Key {
	return cache.NewKey("posts", "liked", viewerID.String())
}

func postKey(postID int64) cache.Key {
	return cache.NewKey("post", strconv.FormatInt(postID, 10))
}

func postContentKey(postID int64) cache.Key {
	return cache.NewKey("post", strconv.FormatInt(postID, 10), "content")
}

func weeklyLogsKey(userID uuid.UUID) cache.Key {
	return cache.NewKey("weekly-logs", userID.String())
}

func weeklyLogsAllKey() cache.Key {
	return cache.NewKey("weekly-logs", "all")
}

func challengeKey(userID uuid.UUID) cache.Key {
	return cache.NewKey("challenge", userID.String())
}

func notificationsKey(userID uuid.UUID) cache.Key {
	return cache.NewKey("notifications", userID.String())
}

func notificationsAllKey() cache.Key {
	return cache.NewKey("notifications")
}

func commentsAllKey() cache.Key {
	return cache.NewKey("comments")
}

func progressKey() cache.Key {
	return cache.NewKey("progress", "overview")
}
