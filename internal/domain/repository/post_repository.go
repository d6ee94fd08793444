package repository

import (
	"context"
	"errors"

	"fitlog/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrPostNotFound is returned when a post id does not resolve to a row.
var ErrPostNotFound = errors.New("post not found")

// PostRepository defines the operations for community post persistence.
type PostRepository interface {
	// List retrieves posts descending by creation time, with author name and
	// like count populated. A nil category means no filter.
	List(ctx context.Context, category *entity.PostCategory) ([]*entity.Post, error)

	// FindByID retrieves a single post. Returns ErrPostNotFound when no row
	// exists.
	FindByID(ctx context.Context, postID int64) (*entity.Post, error)

	// Create persists a new post and fills in its generated id.
	Create(ctx context.Context, post *entity.Post) error

	// LikedPostIDs returns the ids of every post the user has liked.
	LikedPostIDs(ctx context.Context, userID uuid.UUID) (map[int64]struct{}, error)

	// HasLiked reports whether the user has liked the post.
	HasLiked(ctx context.Context, postID int64, userID uuid.UUID) (bool, error)

	// AddLike records the user's like on a post.
	AddLike(ctx context.Context, postID int64, userID uuid.UUID) error

	// RemoveLike removes the user's like on a post.
	RemoveLike(ctx context.Context, postID int64, userID uuid.UUID) error
}
