package repository

import (
	"context"
	"errors"

	"fitlog/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrCommentNotFound is returned when a comment id does not resolve to a row.
var ErrCommentNotFound = errors.New("comment not found")

// CommentRepository defines the operations for comment persistence.
//
// Reads are split in two deliberately: ListByPost carries the viewer-agnostic
// content (author name and like count joined in) while LikedCommentIDs is the
// viewer-scoped overlay. The content result is therefore cacheable
// independently of who is looking at it.
type CommentRepository interface {
	// ListByPost retrieves every comment of a post as a flat record set,
	// ascending by creation time, with author name and aggregate like count
	// populated. Children, LikedByUser and IsMine are left zero.
	ListByPost(ctx context.Context, postID int64) ([]*entity.Comment, error)

	// LikedCommentIDs returns the subset of commentIDs the user has liked.
	LikedCommentIDs(ctx context.Context, userID uuid.UUID, commentIDs []int64) (map[int64]struct{}, error)

	// Create persists a new comment.
	Create(ctx context.Context, comment *entity.Comment) error

	// Delete removes a comment owned by userID. Returns ErrCommentNotFound
	// when no matching row exists.
	Delete(ctx context.Context, commentID int64, userID uuid.UUID) error

	// AddLike records the user's like on a comment. Adding an existing like
	// is a conflict surfaced by the infrastructure layer.
	AddLike(ctx context.Context, commentID int64, userID uuid.UUID) error

	// RemoveLike removes the user's like on a comment.
	RemoveLike(ctx context.Context, commentID int64, userID uuid.UUID) error
}
