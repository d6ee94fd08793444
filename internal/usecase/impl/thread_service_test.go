package impl

import (
	"context"
	"testing"
	"time"

	"fitlog/config"
	"fitlog/internal/cache"
	"fitlog/internal/domain/entity"
	domainerrors "fitlog/internal/domain/errors"
	"fitlog/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type threadFixture struct {
	service usecase.ThreadUsecase
	factory *fakeRepoFactory
	store   *cache.Store
	viewer  *fixedViewer
}

func newThreadFixture(t *testing.T) *threadFixture {
	t.Helper()

	cfg := &config.Config{}
	cfg.Cache.CommentsStale = time.Minute

	factory := newFakeRepoFactory()
	store := cache.NewStore(testLogger())
	viewer := &fixedViewer{id: uuid.New(), signed: true}
	service := NewThreadService(cfg, &fakeTxManager{factory: factory}, store, viewer, testLogger())

	return &threadFixture{service: service, factory: factory, store: store, viewer: viewer}
}

func (fix *threadFixture) seedPost(t *testing.T, owner uuid.UUID) int64 {
	t.Helper()

	post := &entity.Post{UserID: owner, Category: entity.PostCategoryFree, Title: "t", Content: "c"}
	require.NoError(t, fix.factory.postRepo.Create(context.Background(), post))

	return post.ID
}

func TestThreadService_ListCommentsAssemblesForest(t *testing.T) {
	fix := newThreadFixture(t)
	other := uuid.New()
	postID := fix.seedPost(t, other)

	ctx := context.Background()
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	root := &entity.Comment{PostID: postID, UserID: other, Content: "root", CreatedAt: base}
	require.NoError(t, fix.factory.commentRepo.Create(ctx, root))
	reply := &entity.Comment{PostID: postID, UserID: fix.viewer.id, ParentID: &root.ID, Content: "reply", CreatedAt: base.Add(time.Minute)}
	require.NoError(t, fix.factory.commentRepo.Create(ctx, reply))
	require.NoError(t, fix.factory.commentRepo.AddLike(ctx, root.ID, fix.viewer.id))

	forest, err := fix.service.ListComments(ctx, postID)
	require.NoError(t, err)

	require.Len(t, forest, 1)
	assert.True(t, forest[0].LikedByUser)
	assert.False(t, forest[0].IsMine)
	require.Len(t, forest[0].Children, 1)
	assert.True(t, forest[0].Children[0].IsMine)
	assert.Equal(t, 2, entity.CountThread(forest))
}

func TestThreadService_ListCommentsIsMemoized(t *testing.T) {
	fix := newThreadFixture(t)
	postID := fix.seedPost(t, uuid.New())
	ctx := context.Background()

	_, err := fix.service.ListComments(ctx, postID)
	require.NoError(t, err)
	_, err = fix.service.ListComments(ctx, postID)
	require.NoError(t, err)

	assert.Equal(t, 1, fix.factory.commentRepo.lists())
}

func TestThreadService_ListCommentsRequiresViewer(t *testing.T) {
	fix := newThreadFixture(t)
	fix.viewer.signed = false

	_, err := fix.service.ListComments(context.Background(), 1)
	assert.ErrorIs(t, err, domainerrors.ErrUnauthenticated)
}

// Posting a comment must leave the next read consistent with the backend: the
// stale list is refetched, never patched locally, so a comment can never show
// up twice.
func TestThreadService_CreateCommentInvalidatesThread(t *testing.T) {
	fix := newThreadFixture(t)
	owner := uuid.New()
	postID := fix.seedPost(t, owner)
	ctx := context.Background()

	forest, err := fix.service.ListComments(ctx, postID)
	require.NoError(t, err)
	require.Empty(t, forest)
	require.Equal(t, 1, fix.factory.commentRepo.lists())

	require.NoError(t, fix.service.CreateComment(ctx, usecase.CreateCommentInput{PostID: postID, Content: "hello"}))

	forest, err = fix.service.ListComments(ctx, postID)
	require.NoError(t, err)
	assert.Equal(t, 2, fix.factory.commentRepo.lists(), "mutation must force a refetch")
	require.Len(t, forest, 1)
	assert.Equal(t, "hello", forest[0].Content)
	assert.Equal(t, 1, entity.CountThread(forest))
}

func TestThreadService_CreateCommentNotifiesPostOwner(t *testing.T) {
	fix := newThreadFixture(t)
	owner := uuid.New()
	postID := fix.seedPost(t, owner)
	ctx := context.Background()

	name := "Robin"
	fix.factory.profileRepo.profiles[fix.viewer.id] = &entity.Profile{ID: fix.viewer.id, FullName: &name}

	require.NoError(t, fix.service.CreateComment(ctx, usecase.CreateCommentInput{PostID: postID, Content: "nice progress"}))

	got := fix.factory.notificationRepo.byUser(owner)
	require.Len(t, got, 1)
	assert.Equal(t, entity.NotificationCommentOnPost, got[0].Type)
	require.NotNil(t, got[0].Data.CommentPreview)
	assert.Equal(t, "nice progress", *got[0].Data.CommentPreview)
	require.NotNil(t, got[0].Data.CommenterName)
	assert.Equal(t, "Robin", *got[0].Data.CommenterName)
}

func TestThreadService_CommentingOwnPostRaisesNoNotification(t *testing.T) {
	fix := newThreadFixture(t)
	postID := fix.seedPost(t, fix.viewer.id)

	require.NoError(t, fix.service.CreateComment(context.Background(), usecase.CreateCommentInput{PostID: postID, Content: "self"}))

	assert.Empty(t, fix.factory.notificationRepo.byUser(fix.viewer.id))
}

func TestThreadService_CreateCommentRejectsBlankContent(t *testing.T) {
	fix := newThreadFixture(t)
	postID := fix.seedPost(t, uuid.New())

	err := fix.service.CreateComment(context.Background(), usecase.CreateCommentInput{PostID: postID, Content: "   "})
	require.Error(t, err)

	var appErr domainerrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, domainerrors.ErrValidationFailed.ErrorCode(), appErr.ErrorCode())
}

// A failed mutation must not invalidate: the cached read stays authoritative
// and the UI keeps showing the pre-mutation state.
func TestThreadService_FailedMutationLeavesCacheIntact(t *testing.T) {
	fix := newThreadFixture(t)
	postID := fix.seedPost(t, uuid.New())
	ctx := context.Background()

	_, err := fix.service.ListComments(ctx, postID)
	require.NoError(t, err)
	require.Equal(t, 1, fix.factory.commentRepo.lists())

	fix.factory.commentRepo.createErr = errors.New("connection reset")
	require.Error(t, fix.service.CreateComment(ctx, usecase.CreateCommentInput{PostID: postID, Content: "lost"}))

	_, err = fix.service.ListComments(ctx, postID)
	require.NoError(t, err)
	assert.Equal(t, 1, fix.factory.commentRepo.lists(), "failed mutation must not invalidate")
}

func TestThreadService_DeleteCommentDemotesOrphanedReplies(t *testing.T) {
	fix := newThreadFixture(t)
	other := uuid.New()
	postID := fix.seedPost(t, other)
	ctx := context.Background()

	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	mine := &entity.Comment{PostID: postID, UserID: fix.viewer.id, Content: "mine", CreatedAt: base}
	require.NoError(t, fix.factory.commentRepo.Create(ctx, mine))
	reply := &entity.Comment{PostID: postID, UserID: other, ParentID: &mine.ID, Content: "reply", CreatedAt: base.Add(time.Minute)}
	require.NoError(t, fix.factory.commentRepo.Create(ctx, reply))

	require.NoError(t, fix.service.DeleteComment(ctx, postID, mine.ID))

	forest, err := fix.service.ListComments(ctx, postID)
	require.NoError(t, err)
	require.Len(t, forest, 1)
	assert.Equal(t, reply.ID, forest[0].ID)
	assert.Empty(t, forest[0].Children)
}

func TestThreadService_DeleteForeignCommentIsNotFound(t *testing.T) {
	fix := newThreadFixture(t)
	other := uuid.New()
	postID := fix.seedPost(t, other)
	ctx := context.Background()

	foreign := &entity.Comment{PostID: postID, UserID: other, Content: "not yours"}
	require.NoError(t, fix.factory.commentRepo.Create(ctx, foreign))

	err := fix.service.DeleteComment(ctx, postID, foreign.ID)
	require.Error(t, err)

	var appErr domainerrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, domainerrors.ErrNotFound.ErrorCode(), appErr.ErrorCode())
}

func TestThreadService_ToggleCommentLikeRoundTrip(t *testing.T) {
	fix := newThreadFixture(t)
	other := uuid.New()
	postID := fix.seedPost(t, other)
	ctx := context.Background()

	comment := &entity.Comment{PostID: postID, UserID: other, Content: "likeable"}
	require.NoError(t, fix.factory.commentRepo.Create(ctx, comment))

	require.NoError(t, fix.service.ToggleCommentLike(ctx, usecase.ToggleCommentLikeInput{
		PostID: postID, CommentID: comment.ID, Liked: false,
	}))

	forest, err := fix.service.ListComments(ctx, postID)
	require.NoError(t, err)
	require.Len(t, forest, 1)
	assert.True(t, forest[0].LikedByUser)
	assert.Equal(t, 1, forest[0].LikeCount)

	require.NoError(t, fix.service.ToggleCommentLike(ctx, usecase.ToggleCommentLikeInput{
		PostID: postID, CommentID: comment.ID, Liked: true,
	}))

	forest, err = fix.service.ListComments(ctx, postID)
	require.NoError(t, err)
	require.Len(t, forest, 1)
	assert.False(t, forest[0].LikedByUser)
	assert.Zero(t, forest[0].LikeCount)
}
