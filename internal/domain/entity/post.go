package entity

import (
	"time"

	"github.com/google/uuid"
)

// PostCategory classifies a community post.
type PostCategory string

const (
	PostCategoryLogShare PostCategory = "log_share"
	PostCategoryTip      PostCategory = "tip"
	PostCategoryQnA      PostCategory = "qna"
	PostCategoryFree     PostCategory = "free"
)

// Valid reports whether the category is one of the known values.
func (c PostCategory) Valid() bool {
	switch c {
	case PostCategoryLogShare, PostCategoryTip, PostCategoryQnA, PostCategoryFree:
		return true
	}

	return false
}

// PostMedia is an uploaded attachment on a post. URL is a short-lived signed
// link resolved at read time; Path is the stable storage object name.
type PostMedia struct {
	Path string `json:"path"`
	URL  string `json:"url"`
}

// Post is a community feed entry.
type Post struct {
	ID         int64
	UserID     uuid.UUID
	Category   PostCategory
	Title      string
	Content    string
	MediaPaths []string
	CreatedAt  time.Time
	UpdatedAt  time.Time

	// Denormalized by the read query.
	AuthorName *string
	LikeCount  int

	// Viewer-specific overlay.
	LikedByUser bool

	// Media carries resolved signed URLs for MediaPaths.
	Media []PostMedia
}
