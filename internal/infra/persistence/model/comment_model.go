package model

import (
	"time"

	"github.com/google/uuid"
)

// CommentModel mirrors the 'comments' table. ParentID is a self-reference
// with ON DELETE SET NULL semantics handled by the schema, so replies survive
// their parent's deletion.
type CommentModel struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	PostID    int64     `gorm:"not null;index"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index"`
	ParentID  *int64    `gorm:"index"`
	Content   string    `gorm:"type:text;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName explicitly sets the table name for GORM.
func (CommentModel) TableName() string {
	return "comments"
}

// CommentLikeModel mirrors the 'comment_likes' table. The composite primary
// key makes a double-like a unique violation.
type CommentLikeModel struct {
	CommentID int64     `gorm:"primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time
}

// TableName explicitly sets the table name for GORM.
func (CommentLikeModel) TableName() string {
	return "comment_likes"
}
