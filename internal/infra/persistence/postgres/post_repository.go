package postgres

import (
	"context"
	"encoding/json"
	"time"

	"fitlog/internal/domain/entity"
	domainerrors "fitlog/internal/domain/errors"
	"fitlog/internal/domain/repository"
	"fitlog/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// postRepository implements the domain.PostRepository interface using GORM.
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository is the constructor for postRepository.
func NewPostRepository(db *gorm.DB) repository.PostRepository {
	return &postRepository{db: db}
}

type postRow struct {
	ID         int64
	UserID     uuid.UUID
	Category   string
	Title      string
	Content    string
	MediaPaths []byte
	CreatedAt  time.Time
	UpdatedAt  time.Time
	AuthorName *string
	LikeCount  int
}

func (repo *postRepository) List(ctx context.Context, category *entity.PostCategory) ([]*entity.Post, error) {
	query := repo.db.WithContext(ctx).
		Table("posts AS po").
		Select("po.id, po.user_id, po.category, po.title, po.content, po.media_paths, po.created_at, po.updated_at, " +
			"p.full_name AS author_name, COUNT(pl.user_id) AS like_count").
		Joins("LEFT JOIN profiles p ON p.id = po.user_id").
		Joins("LEFT JOIN post_likes pl ON pl.post_id = po.id").
		Group("po.id, p.full_name").
		Order("po.created_at DESC, po.id DESC")

	if category != nil {
		query = query.Where("po.category = ?", string(*category))
	}

	var rows []postRow
	if err := query.Scan(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list posts")
	}

	posts := make([]*entity.Post, 0, len(rows))
	for i := range rows {
		post, err := toPostDomain(&rows[i])
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}

	return posts, nil
}

func (repo *postRepository) FindByID(ctx context.Context, postID int64) (*entity.Post, error) {
	var row postRow

	err := repo.db.WithContext(ctx).
		Table("posts AS po").
		Select("po.id, po.user_id, po.category, po.title, po.content, po.media_paths, po.created_at, po.updated_at, "+
			"p.full_name AS author_name, COUNT(pl.user_id) AS like_count").
		Joins("LEFT JOIN profiles p ON p.id = po.user_id").
		Joins("LEFT JOIN post_likes pl ON pl.post_id = po.id").
		Where("po.id = ?", postID).
		Group("po.id, p.full_name").
		Scan(&row).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to find post by id")
	}
	if row.ID == 0 {
		return nil, repository.ErrPostNotFound
	}

	return toPostDomain(&row)
}

func (repo *postRepository) Create(ctx context.Context, post *entity.Post) error {
	mediaPaths, err := json.Marshal(post.MediaPaths)
	if err != nil {
		return errors.Wrap(err, "failed to encode media paths")
	}
	if post.MediaPaths == nil {
		mediaPaths = []byte("[]")
	}

	postM := &model.PostModel{
		UserID:     post.UserID,
		Category:   string(post.Category),
		Title:      post.Title,
		Content:    post.Content,
		MediaPaths: mediaPaths,
	}

	if err := repo.db.WithContext(ctx).Create(postM).Error; err != nil {
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.ErrNotFound.WrapMessage("author profile does not exist")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create post")
	}

	post.ID = postM.ID
	post.CreatedAt = postM.CreatedAt
	post.UpdatedAt = postM.UpdatedAt

	return nil
}

func (repo *postRepository) LikedPostIDs(ctx context.Context, userID uuid.UUID) (map[int64]struct{}, error) {
	var ids []int64

	err := repo.db.WithContext(ctx).
		Model(&model.PostLikeModel{}).
		Where("user_id = ?", userID).
		Pluck("post_id", &ids).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to load liked post ids")
	}

	liked := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		liked[id] = struct{}{}
	}

	return liked, nil
}

func (repo *postRepository) HasLiked(ctx context.Context, postID int64, userID uuid.UUID) (bool, error) {
	var count int64

	err := repo.db.WithContext(ctx).
		Model(&model.PostLikeModel{}).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Count(&count).Error
	if err != nil {
		return false, errors.Wrap(err, "failed to check post like")
	}

	return count > 0, nil
}

func (repo *postRepository) AddLike(ctx context.Context, postID int64, userID uuid.UUID) error {
	likeM := &model.PostLikeModel{PostID: postID, UserID: userID}

	if err := repo.db.WithContext(ctx).Create(likeM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return domainerrors.ErrConflict.WrapMessage("post already liked")
		}
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.ErrNotFound.WrapMessage("post does not exist")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to add post like")
	}

	return nil
}

func (repo *postRepository) RemoveLike(ctx context.Context, postID int64, userID uuid.UUID) error {
	err := repo.db.WithContext(ctx).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Delete(&model.PostLikeModel{}).Error
	if err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to remove post like")
	}

	return nil
}

// --- Mapper Functions ---

func toPostDomain(row *postRow) (*entity.Post, error) {
	var mediaPaths []string
	if len(row.MediaPaths) > 0 {
		if err := json.Unmarshal(row.MediaPaths, &mediaPaths); err != nil {
			return nil, errors.Wrap(err, "failed to decode media paths")
		}
	}

	return &entity.Post{
		ID:         row.ID,
		UserID:     row.UserID,
		Category:   entity.PostCategory(row.Category),
		Title:      row.Title,
		Content:    row.Content,
		MediaPaths: mediaPaths,
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
		AuthorName: row.AuthorName,
		LikeCount:  row.LikeCount,
	}, nil
}
