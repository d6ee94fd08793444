package impl

import (
	"context"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"fitlog/config"
	"fitlog/internal/cache"
	deliverycontext "fitlog/internal/delivery/context"
	"fitlog/internal/domain/entity"
	domainerrors "fitlog/internal/domain/errors"
	"fitlog/internal/domain/repository"
	"fitlog/internal/usecase"

	"github.com/pkg/errors"
)

// previewRunes caps the comment excerpt carried inside a notification payload.
const previewRunes = 80

type threadService struct {
	txManager  repository.TransactionManager
	cacheStore *cache.Store
	viewer     usecase.ViewerProvider
	logger     *slog.Logger

	commentsStale time.Duration
}

// NewThreadService is the constructor for threadService.
func NewThreadService(
	cfg *config.Config,
	txManager repository.TransactionManager,
	cacheStore *cache.Store,
	viewer usecase.ViewerProvider,
	logger *slog.Logger,
) usecase.ThreadUsecase {
	return &threadService{
		txManager:     txManager,
		cacheStore:    cacheStore,
		viewer:        viewer,
		logger:        logger,
		commentsStale: cfg.Cache.CommentsStale,
	}
}

func (s *threadService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, s.logger)
}

// ListComments assembles the post's comment forest for the current viewer.
// The viewer-agnostic rows and the viewer's liked-set are cached under
// separate keys, so switching viewers reuses the heavy content read.
func (s *threadService) ListComments(ctx context.Context, postID int64) ([]*entity.Comment, error) {
	viewerID, ok := s.viewer.CurrentUserID()
	if !ok {
		return nil, domainerrors.ErrUnauthenticated
	}

	s.log(ctx).Debug("listing comments", slog.Int64("post_id", postID))

	flat, err := cache.Fetch(ctx, s.cacheStore, commentContentKey(postID), s.commentsStale,
		func(ctx context.Context) ([]*entity.Comment, error) {
			var rows []*entity.Comment

			err := s.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
				var err error
				rows, err = repoFactory.CommentRepo().ListByPost(ctx, postID)

				return err
			})
			if err != nil {
				return nil, errors.Wrap(err, "failed to list comments")
			}

			return rows, nil
		})
	if err != nil {
		return nil, err
	}

	liked, err := cache.Fetch(ctx, s.cacheStore, commentLikedKey(postID, viewerID), s.commentsStale,
		func(ctx context.Context) (map[int64]struct{}, error) {
			ids := make([]int64, 0, len(flat))
			for _, row := range flat {
				ids = append(ids, row.ID)
			}

			var set map[int64]struct{}

			err := s.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
				var err error
				set, err = repoFactory.CommentRepo().LikedCommentIDs(ctx, viewerID, ids)

				return err
			})
			if err != nil {
				return nil, errors.Wrap(err, "failed to load liked comments")
			}

			return set, nil
		})
	if err != nil {
		return nil, err
	}

	return entity.AssembleThread(flat, liked, viewerID), nil
}

// CreateComment posts a comment as the viewer and, when someone else owns the
// post, raises a notification for the owner inside the same transaction.
func (s *threadService) CreateComment(ctx context.Context, input usecase.CreateCommentInput) error {
	viewerID, ok := s.viewer.CurrentUserID()
	if !ok {
		return domainerrors.ErrUnauthenticated
	}

	content := strings.TrimSpace(input.Content)
	if content == "" {
		return domainerrors.ErrValidationFailed.WithDetails("comment content must not be empty")
	}

	s.log(ctx).Info("creating comment",
		slog.Int64("post_id", input.PostID), slog.Any("user_id", viewerID))

	op := func(ctx context.Context) error {
		return s.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
			post, err := repoFactory.PostRepo().FindByID(ctx, input.PostID)
			if err != nil {
				if errors.Is(err, repository.ErrPostNotFound) {
					return domainerrors.ErrNotFound.WithDetails("post does not exist")
				}

				return errors.Wrap(err, "failed to find post")
			}

			comment := &entity.Comment{
				PostID:   input.PostID,
				UserID:   viewerID,
				ParentID: input.ParentID,
				Content:  content,
			}
			if err := repoFactory.CommentRepo().Create(ctx, comment); err != nil {
				return errors.Wrap(err, "failed to create comment")
			}

			if post.UserID == viewerID {
				return nil
			}

			preview := truncateRunes(content, previewRunes)
			data := entity.NotificationData{
				PostID:         &input.PostID,
				CommentID:      &comment.ID,
				CommentPreview: &preview,
			}
			if profile, err := repoFactory.ProfileRepo().FindByID(ctx, viewerID); err == nil {
				data.CommenterName = profile.FullName
			}

			notification := &entity.Notification{
				UserID: post.UserID,
				Type:   entity.NotificationCommentOnPost,
				Data:   data,
			}
			if err := repoFactory.NotificationRepo().Create(ctx, notification); err != nil {
				return errors.Wrap(err, "failed to create notification")
			}

			return nil
		})
	}

	// The recipient of the raised notification is only known inside op, so
	// the whole notifications prefix is declared rather than a single feed.
	return s.cacheStore.Mutate(ctx, op,
		commentsKey(input.PostID),
		postKey(input.PostID),
		postsKey(),
		notificationsAllKey(),
	)
}

// DeleteComment removes the viewer's own comment. Replies to it survive and
// surface as roots on the next assembly.
func (s *threadService) DeleteComment(ctx context.Context, postID, commentID int64) error {
	viewerID, ok := s.viewer.CurrentUserID()
	if !ok {
		return domainerrors.ErrUnauthenticated
	}

	s.log(ctx).Info("deleting comment",
		slog.Int64("post_id", postID), slog.Int64("comment_id", commentID))

	op := func(ctx context.Context) error {
		return s.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
			err := repoFactory.CommentRepo().Delete(ctx, commentID, viewerID)
			if err != nil {
				if errors.Is(err, repository.ErrCommentNotFound) {
					return domainerrors.ErrNotFound.WithDetails("comment does not exist or is not yours")
				}

				return errors.Wrap(err, "failed to delete comment")
			}

			return nil
		})
	}

	return s.cacheStore.Mutate(ctx, op,
		commentsKey(postID),
		postKey(postID),
		postsKey(),
	)
}

// ToggleCommentLike flips the viewer's like. input.Liked carries the state the
// viewer currently sees, so true means the like is being removed.
func (s *threadService) ToggleCommentLike(ctx context.Context, input usecase.ToggleCommentLikeInput) error {
	viewerID, ok := s.viewer.CurrentUserID()
	if !ok {
		return domainerrors.ErrUnauthenticated
	}

	op := func(ctx context.Context) error {
		return s.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
			commentRepo := repoFactory.CommentRepo()
			if input.Liked {
				return errors.Wrap(commentRepo.RemoveLike(ctx, input.CommentID, viewerID), "failed to remove like")
			}

			return errors.Wrap(commentRepo.AddLike(ctx, input.CommentID, viewerID), "failed to add like")
		})
	}

	return s.cacheStore.Mutate(ctx, op, commentsKey(input.PostID))
}

// truncateRunes shortens s to at most n runes.
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}

	runes := []rune(s)

	return string(runes[:n])
}
