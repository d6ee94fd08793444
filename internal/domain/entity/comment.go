package entity

import (
	"time"

	"github.com/google/uuid"
)

// Comment is a single entry in a post's discussion thread. Rows come flat
// from the store (ParentID links only); the thread service assembles the
// nested forest and fills in the viewer-specific fields.
type Comment struct {
	ID        int64
	PostID    int64
	UserID    uuid.UUID
	ParentID  *int64 // nil for top-level comments.
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time

	// Denormalized by the read query.
	AuthorName *string
	LikeCount  int

	// Viewer-specific, filled in during assembly.
	LikedByUser bool
	IsMine      bool

	// Children is populated by thread assembly; chronological within each
	// sibling list.
	Children []*Comment
}
