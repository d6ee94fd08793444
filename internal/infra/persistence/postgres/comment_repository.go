package postgres

import (
	"context"
	"time"

	"fitlog/internal/domain/entity"
	domainerrors "fitlog/internal/domain/errors"
	"fitlog/internal/domain/repository"
	"fitlog/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// commentRepository implements the domain.CommentRepository interface using GORM.
type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository is the constructor for commentRepository.
func NewCommentRepository(db *gorm.DB) repository.CommentRepository {
	return &commentRepository{db: db}
}

// commentRow is the scan target for the joined read: comment columns plus the
// denormalized author name and aggregate like count.
type commentRow struct {
	ID         int64
	PostID     int64
	UserID     uuid.UUID
	ParentID   *int64
	Content    string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	AuthorName *string
	LikeCount  int
}

func (repo *commentRepository) ListByPost(ctx context.Context, postID int64) ([]*entity.Comment, error) {
	var rows []commentRow

	err := repo.db.WithContext(ctx).
		Table("comments AS c").
		Select("c.id, c.post_id, c.user_id, c.parent_id, c.content, c.created_at, c.updated_at, "+
			"p.full_name AS author_name, COUNT(cl.user_id) AS like_count").
		Joins("LEFT JOIN profiles p ON p.id = c.user_id").
		Joins("LEFT JOIN comment_likes cl ON cl.comment_id = c.id").
		Where("c.post_id = ?", postID).
		Group("c.id, p.full_name").
		Order("c.created_at ASC, c.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list comments by post")
	}

	comments := make([]*entity.Comment, 0, len(rows))
	for _, row := range rows {
		comments = append(comments, &entity.Comment{
			ID:         row.ID,
			PostID:     row.PostID,
			UserID:     row.UserID,
			ParentID:   row.ParentID,
			Content:    row.Content,
			CreatedAt:  row.CreatedAt,
			UpdatedAt:  row.UpdatedAt,
			AuthorName: row.AuthorName,
			LikeCount:  row.LikeCount,
		})
	}

	return comments, nil
}

func (repo *commentRepository) LikedCommentIDs(ctx context.Context, userID uuid.UUID, commentIDs []int64) (map[int64]struct{}, error) {
	liked := make(map[int64]struct{}, len(commentIDs))
	if len(commentIDs) == 0 {
		return liked, nil
	}

	var ids []int64

	err := repo.db.WithContext(ctx).
		Model(&model.CommentLikeModel{}).
		Where("user_id = ? AND comment_id IN ?", userID, commentIDs).
		Pluck("comment_id", &ids).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to load liked comment ids")
	}

	for _, id := range ids {
		liked[id] = struct{}{}
	}

	return liked, nil
}

func (repo *commentRepository) Create(ctx context.Context, comment *entity.Comment) error {
	commentM := &model.CommentModel{
		PostID:   comment.PostID,
		UserID:   comment.UserID,
		ParentID: comment.ParentID,
		Content:  comment.Content,
	}

	if err := repo.db.WithContext(ctx).Create(commentM).Error; err != nil {
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.ErrNotFound.WrapMessage("post or parent comment does not exist")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create comment")
	}

	comment.ID = commentM.ID
	comment.CreatedAt = commentM.CreatedAt
	comment.UpdatedAt = commentM.UpdatedAt

	return nil
}

func (repo *commentRepository) Delete(ctx context.Context, commentID int64, userID uuid.UUID) error {
	result := repo.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", commentID, userID).
		Delete(&model.CommentModel{})
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to delete comment")
	}
	if result.RowsAffected == 0 {
		return repository.ErrCommentNotFound
	}

	return nil
}

func (repo *commentRepository) AddLike(ctx context.Context, commentID int64, userID uuid.UUID) error {
	likeM := &model.CommentLikeModel{CommentID: commentID, UserID: userID}

	if err := repo.db.WithContext(ctx).Create(likeM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return domainerrors.ErrConflict.WrapMessage("comment already liked")
		}
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.ErrNotFound.WrapMessage("comment does not exist")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to add comment like")
	}

	return nil
}

func (repo *commentRepository) RemoveLike(ctx context.Context, commentID int64, userID uuid.UUID) error {
	err := repo.db.WithContext(ctx).
		Where("comment_id = ? AND user_id = ?", commentID, userID).
		Delete(&model.CommentLikeModel{}).Error
	if err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to remove comment like")
	}

	return nil
}
