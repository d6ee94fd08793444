package model

import (
	"time"

	"github.com/google/uuid"
)

// PostModel mirrors the 'posts' table. MediaPaths holds the storage object
// names as a JSON array; signed URLs are resolved at read time, never stored.
type PostModel struct {
	ID         int64     `gorm:"primaryKey;autoIncrement"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;index"`
	Category   string    `gorm:"type:varchar(20);not null;index"`
	Title      string    `gorm:"type:varchar(200);not null"`
	Content    string    `gorm:"type:text;not null"`
	MediaPaths []byte    `gorm:"type:jsonb;not null;default:'[]'"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TableName explicitly sets the table name for GORM.
func (PostModel) TableName() string {
	return "posts"
}

// PostLikeModel mirrors the 'post_likes' table.
type PostLikeModel struct {
	PostID    int64     `gorm:"primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time
}

// TableName explicitly sets the table name for GORM.
func (PostLikeModel) TableName() string {
	return "post_likes"
}
