package usecase

import (
	"context"
	"io"

	"fitlog/internal/domain/entity"
)

// MediaUpload carries one file attached to a mutation.
type MediaUpload struct {
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// CreatePostInput defines the data required to publish a community post.
type CreatePostInput struct {
	Category entity.PostCategory
	Title    string
	Content  string
	Media    []MediaUpload
}

// TogglePostLikeInput flips the viewer's like on a post. Liked is the state
// currently shown to the viewer.
type TogglePostLikeInput struct {
	PostID int64
	Liked  bool
}

// PostUsecase serves the community feed for the signed-in viewer.
type PostUsecase interface {
	// ListPosts returns the feed, newest first, optionally filtered by
	// category, with the viewer's like overlay applied.
	ListPosts(ctx context.Context, category *entity.PostCategory) ([]*entity.Post, error)

	// GetPost returns a single post with the viewer overlay.
	GetPost(ctx context.Context, postID int64) (*entity.Post, error)

	// CreatePost uploads the attachments and publishes the post, returning
	// its generated id.
	CreatePost(ctx context.Context, input CreatePostInput) (int64, error)

	// TogglePostLike flips the viewer's like on a post.
	TogglePostLike(ctx context.Context, input TogglePostLikeInput) error
}
