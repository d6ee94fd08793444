package usecase

import (
	"context"

	"fitlog/internal/domain/entity"
)

// CreateCommentInput defines the data required to post a comment.
type CreateCommentInput struct {
	PostID   int64
	Content  string
	ParentID *int64
}

// ToggleCommentLikeInput toggles the viewer's like on a comment. Liked is the
// state currently shown to the viewer; true means the mutation removes the
// like.
type ToggleCommentLikeInput struct {
	PostID    int64
	CommentID int64
	Liked     bool
}

// ThreadUsecase assembles a post's discussion thread for the signed-in viewer
// and funnels every thread mutation through the cache consistency contract.
type ThreadUsecase interface {
	// ListComments returns the post's comment forest: roots in chronological
	// order, children nested, liked/ownership flags resolved for the viewer.
	ListComments(ctx context.Context, postID int64) ([]*entity.Comment, error)

	// CreateComment posts a comment (or reply) as the viewer.
	CreateComment(ctx context.Context, input CreateCommentInput) error

	// DeleteComment removes the viewer's own comment.
	DeleteComment(ctx context.Context, postID, commentID int64) error

	// ToggleCommentLike flips the viewer's like on a comment.
	ToggleCommentLike(ctx context.Context, input ToggleCommentLikeInput) error
}
