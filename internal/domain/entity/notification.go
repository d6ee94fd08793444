package entity

import (
	"time"

	"github.com/google/uuid"
)

// NotificationType identifies what a notification is about.
type NotificationType string

const (
	// NotificationCommentOnPost is raised when someone comments on the
	// recipient's post.
	NotificationCommentOnPost NotificationType = "comment_on_post"
)

// NotificationData is the loosely-typed payload attached to a notification.
type NotificationData struct {
	PostID         *int64  `json:"post_id,omitempty"`
	CommentID      *int64  `json:"comment_id,omitempty"`
	CommentPreview *string `json:"comment_preview,omitempty"`
	CommenterName  *string `json:"commenter_name,omitempty"`
}

// Notification is an in-app notification for a single user.
type Notification struct {
	ID        int64
	UserID    uuid.UUID
	Type      NotificationType
	Data      NotificationData
	ReadAt    *time.Time
	CreatedAt time.Time
}

// Read reports whether the notification has been marked read.
func (n *Notification) Read() bool {
	return n.ReadAt != nil
}
