package impl

import (
	"context"
	"log/slog"
	"path"
	"strings"
	"time"

	"fitlog/config"
	"fitlog/internal/cache"
	deliverycontext "fitlog/internal/delivery/context"
	"fitlog/internal/domain/entity"
	domainerrors "fitlog/internal/domain/errors"
	"fitlog/internal/domain/repository"
	"fitlog/internal/domain/service"
	"fitlog/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

type postService struct {
	txManager  repository.TransactionManager
	cacheStore *cache.Store
	media      service.MediaStorage
	viewer     usecase.ViewerProvider
	logger     *slog.Logger

	postsStale      time.Duration
	postStale       time.Duration
	mediaBucket     string
	signedURLExpiry time.Duration
}

// NewPostService is the constructor for postService. media may be nil when no
// object store is configured; posting attachments then fails with a clear
// error while text-only posts keep working.
func NewPostService(
	cfg *config.Config,
	txManager repository.TransactionManager,
	cacheStore *cache.Store,
	media service.MediaStorage,
	viewer usecase.ViewerProvider,
	logger *slog.Logger,
) usecase.PostUsecase {
	s := &postService{
		txManager:  txManager,
		cacheStore: cacheStore,
		media:      media,
		viewer:     viewer,
		logger:     logger,
		postsStale: cfg.Cache.PostsStale,
		postStale:  cfg.Cache.PostStale,
	}
	if cfg.Storage != nil {
		s.mediaBucket = cfg.Storage.MediaBucket
		s.signedURLExpiry = cfg.Storage.SignedURLExpiry
	}

	return s
}

func (s *postService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, s.logger)
}

// ListPosts serves the feed with the viewer's like overlay. The rows are
// cached per category filter; the liked-set is cached once per viewer and
// shared with GetPost.
func (s *postService) ListPosts(ctx context.Context, category *entity.PostCategory) ([]*entity.Post, error) {
	viewerID, ok := s.viewer.CurrentUserID()
	if !ok {
		return nil, domainerrors.ErrUnauthenticated
	}
	if category != nil && !category.Valid() {
		return nil, domainerrors.ErrValidationFailed.WithDetails("unknown post category")
	}

	s.log(ctx).Debug("listing posts", slog.Any("category", category))

	rows, err := cache.Fetch(ctx, s.cacheStore, postListKey(category), s.postsStale,
		func(ctx context.Context) ([]*entity.Post, error) {
			var posts []*entity.Post

			err := s.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
				var err error
				posts, err = repoFactory.PostRepo().List(ctx, category)

				return err
			})
			if err != nil {
				return nil, errors.Wrap(err, "failed to list posts")
			}

			for _, post := range posts {
				if err := s.resolveMedia(ctx, post); err != nil {
					return nil, err
				}
			}

			return posts, nil
		})
	if err != nil {
		return nil, err
	}

	liked, err := s.likedPosts(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	out := make([]*entity.Post, 0, len(rows))
	for _, row := range rows {
		post := *row
		_, post.LikedByUser = liked[post.ID]
		out = append(out, &post)
	}

	return out, nil
}

// GetPost serves one post with the viewer overlay.
func (s *postService) GetPost(ctx context.Context, postID int64) (*entity.Post, error) {
	viewerID, ok := s.viewer.CurrentUserID()
	if !ok {
		return nil, domainerrors.ErrUnauthenticated
	}

	row, err := cache.Fetch(ctx, s.cacheStore, postContentKey(postID), s.postStale,
		func(ctx context.Context) (*entity.Post, error) {
			var post *entity.Post

			err := s.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
				var err error
				post, err = repoFactory.PostRepo().FindByID(ctx, postID)

				return err
			})
			if err != nil {
				if errors.Is(err, repository.ErrPostNotFound) {
					return nil, domainerrors.ErrNotFound.WithDetails("post does not exist")
				}

				return nil, errors.Wrap(err, "failed to find post")
			}
			if err := s.resolveMedia(ctx, post); err != nil {
				return nil, err
			}

			return post, nil
		})
	if err != nil {
		return nil, err
	}

	liked, err := s.likedPosts(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	post := *row
	_, post.LikedByUser = liked[post.ID]

	return &post, nil
}

// CreatePost uploads the attachments first, then publishes the row.
// A failed upload aborts the whole operation before anything is written.
func (s *postService) CreatePost(ctx context.Context, input usecase.CreatePostInput) (int64, error) {
	viewerID, ok := s.viewer.CurrentUserID()
	if !ok {
		return 0, domainerrors.ErrUnauthenticated
	}

	if !input.Category.Valid() {
		return 0, domainerrors.ErrValidationFailed.WithDetails("unknown post category")
	}
	title := strings.TrimSpace(input.Title)
	content := strings.TrimSpace(input.Content)
	if title == "" || content == "" {
		return 0, domainerrors.ErrValidationFailed.WithDetails("title and content must not be empty")
	}
	if len(input.Media) > 0 && s.media == nil {
		return 0, domainerrors.ErrInternalError.WithDetails("media storage is not configured")
	}

	s.log(ctx).Info("creating post",
		slog.String("category", string(input.Category)), slog.Any("user_id", viewerID))

	mediaPaths := make([]string, 0, len(input.Media))
	for _, upload := range input.Media {
		objectName := viewerID.String() + "/" + uuid.NewString() + strings.ToLower(path.Ext(upload.FileName))
		if err := s.media.Upload(ctx, s.mediaBucket, objectName, upload.Body, upload.Size, upload.ContentType); err != nil {
			return 0, errors.Wrap(err, "failed to upload post media")
		}
		mediaPaths = append(mediaPaths, objectName)
	}

	post := &entity.Post{
		UserID:     viewerID,
		Category:   input.Category,
		Title:      title,
		Content:    content,
		MediaPaths: mediaPaths,
	}

	op := func(ctx context.Context) error {
		return s.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
			return errors.Wrap(repoFactory.PostRepo().Create(ctx, post), "failed to create post")
		})
	}

	if err := s.cacheStore.Mutate(ctx, op, postsKey()); err != nil {
		return 0, err
	}

	return post.ID, nil
}

// TogglePostLike flips the viewer's like. input.Liked carries the state the
// viewer currently sees.
func (s *postService) TogglePostLike(ctx context.Context, input usecase.TogglePostLikeInput) error {
	viewerID, ok := s.viewer.CurrentUserID()
	if !ok {
		return domainerrors.ErrUnauthenticated
	}

	op := func(ctx context.Context) error {
		return s.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
			postRepo := repoFactory.PostRepo()
			if input.Liked {
				return errors.Wrap(postRepo.RemoveLike(ctx, input.PostID, viewerID), "failed to remove like")
			}

			return errors.Wrap(postRepo.AddLike(ctx, input.PostID, viewerID), "failed to add like")
		})
	}

	return s.cacheStore.Mutate(ctx, op, postsKey(), postKey(input.PostID))
}

// likedPosts returns the viewer's liked-post set, cached under a key covered
// by the posts prefix so every like mutation refreshes it.
func (s *postService) likedPosts(ctx context.Context, viewerID uuid.UUID) (map[int64]struct{}, error) {
	return cache.Fetch(ctx, s.cacheStore, postLikedKey(viewerID), s.postsStale,
		func(ctx context.Context) (map[int64]struct{}, error) {
			var set map[int64]struct{}

			err := s.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
				var err error
				set, err = repoFactory.PostRepo().LikedPostIDs(ctx, viewerID)

				return err
			})
			if err != nil {
				return nil, errors.Wrap(err, "failed to load liked posts")
			}

			return set, nil
		})
}

// resolveMedia fills Media with signed links for every stored attachment.
func (s *postService) resolveMedia(ctx context.Context, post *entity.Post) error {
	if len(post.MediaPaths) == 0 || s.media == nil {
		return nil
	}

	post.Media = make([]entity.PostMedia, 0, len(post.MediaPaths))
	for _, objectName := range post.MediaPaths {
		url, err := s.media.SignedURL(ctx, s.mediaBucket, objectName, s.signedURLExpiry)
		if err != nil {
			return errors.Wrap(err, "failed to sign media url")
		}
		post.Media = append(post.Media, entity.PostMedia{Path: objectName, URL: url})
	}

	return nil
}
