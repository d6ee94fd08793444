package impl

import (
	"bytes"
	"context"
	"io"
	"strconv"
	"sync"
	"testing"
	"time"

	"fitlog/config"
	"fitlog/internal/cache"
	"fitlog/internal/domain/entity"
	domainerrors "fitlog/internal/domain/errors"
	"fitlog/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMediaStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	upErr   error
}

func newFakeMediaStorage() *fakeMediaStorage {
	return &fakeMediaStorage{objects: make(map[string][]byte)}
}

func (f *fakeMediaStorage) Upload(_ context.Context, bucket, objectName string, body io.Reader, _ int64, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.upErr != nil {
		return f.upErr
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	f.objects[bucket+"/"+objectName] = data

	return nil
}

func (f *fakeMediaStorage) SignedURL(_ context.Context, bucket, objectName string, _ time.Duration) (string, error) {
	return "https://signed.test/" + bucket + "/" + objectName, nil
}

func (f *fakeMediaStorage) PublicURL(bucket, objectName string) string {
	return "https://public.test/" + bucket + "/" + objectName
}

func (f *fakeMediaStorage) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.objects)
}

type servicesFixture struct {
	factory *fakeRepoFactory
	store   *cache.Store
	media   *fakeMediaStorage
	viewer  *fixedViewer
	cfg     *config.Config
}

func newServicesFixture(t *testing.T) *servicesFixture {
	t.Helper()

	cfg := &config.Config{
		Cache: config.CacheConfig{
			CommentsStale:      time.Minute,
			PostsStale:         time.Minute,
			PostStale:          time.Minute,
			WeeklyLogsStale:    time.Minute,
			ChallengeStale:     time.Minute,
			NotificationsStale: time.Minute,
		},
		Storage: &config.StorageConfig{
			WeeklyLogBucket: "weekly-logs",
			MediaBucket:     "media",
			AvatarBucket:    "avatars",
			SignedURLExpiry: time.Hour,
		},
	}

	return &servicesFixture{
		factory: newFakeRepoFactory(),
		store:   cache.NewStore(testLogger()),
		media:   newFakeMediaStorage(),
		viewer:  &fixedViewer{id: uuid.New(), signed: true},
		cfg:     cfg,
	}
}

func (fix *servicesFixture) tx() *fakeTxManager {
	return &fakeTxManager{factory: fix.factory}
}

func TestPostService_ListPostsAppliesViewerOverlay(t *testing.T) {
	fix := newServicesFixture(t)
	service := NewPostService(fix.cfg, fix.tx(), fix.store, fix.media, fix.viewer, testLogger())
	ctx := context.Background()

	other := uuid.New()
	liked := &entity.Post{UserID: other, Category: entity.PostCategoryTip, Title: "a", Content: "a"}
	require.NoError(t, fix.factory.postRepo.Create(ctx, liked))
	plain := &entity.Post{UserID: other, Category: entity.PostCategoryTip, Title: "b", Content: "b"}
	require.NoError(t, fix.factory.postRepo.Create(ctx, plain))
	require.NoError(t, fix.factory.postRepo.AddLike(ctx, liked.ID, fix.viewer.id))

	posts, err := service.ListPosts(ctx, nil)
	require.NoError(t, err)
	require.Len(t, posts, 2)

	byID := make(map[int64]*entity.Post)
	for _, p := range posts {
		byID[p.ID] = p
	}
	assert.True(t, byID[liked.ID].LikedByUser)
	assert.Equal(t, 1, byID[liked.ID].LikeCount)
	assert.False(t, byID[plain.ID].LikedByUser)
}

func TestPostService_CategoryFilterIsCachedSeparately(t *testing.T) {
	fix := newServicesFixture(t)
	service := NewPostService(fix.cfg, fix.tx(), fix.store, fix.media, fix.viewer, testLogger())
	ctx := context.Background()

	tip := entity.PostCategoryTip
	qna := entity.PostCategoryQnA
	require.NoError(t, fix.factory.postRepo.Create(ctx, &entity.Post{UserID: fix.viewer.id, Category: tip, Title: "t", Content: "t"}))
	require.NoError(t, fix.factory.postRepo.Create(ctx, &entity.Post{UserID: fix.viewer.id, Category: qna, Title: "q", Content: "q"}))

	tips, err := service.ListPosts(ctx, &tip)
	require.NoError(t, err)
	require.Len(t, tips, 1)
	assert.Equal(t, tip, tips[0].Category)

	_, err = service.ListPosts(ctx, &tip)
	require.NoError(t, err)
	assert.Equal(t, 1, fix.factory.postRepo.lists())

	qnas, err := service.ListPosts(ctx, &qna)
	require.NoError(t, err)
	require.Len(t, qnas, 1)
	assert.Equal(t, 2, fix.factory.postRepo.lists())
}

// Toggling a like declares both the list and the single-post keys, so the
// detail view and every category feed agree on the next read.
func TestPostService_ToggleLikeInvalidatesListAndSingle(t *testing.T) {
	fix := newServicesFixture(t)
	service := NewPostService(fix.cfg, fix.tx(), fix.store, fix.media, fix.viewer, testLogger())
	ctx := context.Background()

	post := &entity.Post{UserID: uuid.New(), Category: entity.PostCategoryFree, Title: "t", Content: "c"}
	require.NoError(t, fix.factory.postRepo.Create(ctx, post))

	got, err := service.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.False(t, got.LikedByUser)

	require.NoError(t, service.TogglePostLike(ctx, usecase.TogglePostLikeInput{PostID: post.ID, Liked: false}))

	got, err = service.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.True(t, got.LikedByUser)
	assert.Equal(t, 1, got.LikeCount)

	posts, err := service.ListPosts(ctx, nil)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.True(t, posts[0].LikedByUser)
}

func TestPostService_CreatePostUploadsMedia(t *testing.T) {
	fix := newServicesFixture(t)
	service := NewPostService(fix.cfg, fix.tx(), fix.store, fix.media, fix.viewer, testLogger())
	ctx := context.Background()

	id, err := service.CreatePost(ctx, usecase.CreatePostInput{
		Category: entity.PostCategoryLogShare,
		Title:    "week 3",
		Content:  "progress photo",
		Media: []usecase.MediaUpload{{
			FileName:    "photo.JPG",
			ContentType: "image/jpeg",
			Size:        4,
			Body:        bytes.NewReader([]byte("data")),
		}},
	})
	require.NoError(t, err)
	require.NotZero(t, id)
	assert.Equal(t, 1, fix.media.count())

	got, err := service.GetPost(ctx, id)
	require.NoError(t, err)
	require.Len(t, got.MediaPaths, 1)
	assert.Contains(t, got.MediaPaths[0], fix.viewer.id.String()+"/")
	assert.Contains(t, got.MediaPaths[0], ".jpg")
	require.Len(t, got.Media, 1)
	assert.Contains(t, got.Media[0].URL, "https://signed.test/media/")
}

func TestPostService_CreatePostRejectsUnknownCategory(t *testing.T) {
	fix := newServicesFixture(t)
	service := NewPostService(fix.cfg, fix.tx(), fix.store, fix.media, fix.viewer, testLogger())

	_, err := service.CreatePost(context.Background(), usecase.CreatePostInput{
		Category: entity.PostCategory("announcement"),
		Title:    "t",
		Content:  "c",
	})
	require.Error(t, err)

	var appErr domainerrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, domainerrors.ErrValidationFailed.ErrorCode(), appErr.ErrorCode())
}

func TestWeeklyLogService_SubmitAndList(t *testing.T) {
	fix := newServicesFixture(t)
	service := NewWeeklyLogService(fix.cfg, fix.tx(), fix.store, fix.media, fix.viewer, testLogger())
	ctx := context.Background()

	weight := 82.5
	week1 := time.Date(2026, 2, 23, 0, 0, 0, 0, time.UTC)
	week2 := week1.AddDate(0, 0, 7)

	require.NoError(t, service.SubmitLog(ctx, usecase.SubmitWeeklyLogInput{WeekStart: week1, WeightKg: &weight}))

	lighter := 81.0
	require.NoError(t, service.SubmitLog(ctx, usecase.SubmitWeeklyLogInput{
		WeekStart: week2,
		WeightKg:  &lighter,
		Photo: &usecase.MediaUpload{
			FileName: "check-in.png", ContentType: "image/png", Size: 3, Body: bytes.NewReader([]byte("img")),
		},
	}))

	logs, err := service.ListLogs(ctx)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.True(t, logs[0].WeekStart.Equal(week2), "newest week first")
	require.NotNil(t, logs[0].PhotoURL)
	assert.Contains(t, *logs[0].PhotoURL, "https://signed.test/weekly-logs/")
	assert.Nil(t, logs[1].PhotoURL)
}

// A second submission for the same week must surface the duplicate conflict
// verbatim, and the cached history must stay untouched.
func TestWeeklyLogService_DuplicateWeekConflict(t *testing.T) {
	fix := newServicesFixture(t)
	service := NewWeeklyLogService(fix.cfg, fix.tx(), fix.store, fix.media, fix.viewer, testLogger())
	ctx := context.Background()

	weight := 80.0
	week := time.Date(2026, 2, 23, 0, 0, 0, 0, time.UTC)
	require.NoError(t, service.SubmitLog(ctx, usecase.SubmitWeeklyLogInput{WeekStart: week, WeightKg: &weight}))

	_, err := service.ListLogs(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, fix.factory.weeklyLogRepo.lists())

	err = service.SubmitLog(ctx, usecase.SubmitWeeklyLogInput{WeekStart: week, WeightKg: &weight})
	require.Error(t, err)

	var appErr domainerrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, domainerrors.ErrDuplicateWeeklyLog.ErrorCode(), appErr.ErrorCode())

	_, err = service.ListLogs(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, fix.factory.weeklyLogRepo.lists(), "failed submit must not invalidate")
}

func TestChallengeService_NoSettingsIsNotAnError(t *testing.T) {
	fix := newServicesFixture(t)
	service := NewChallengeService(fix.cfg, fix.tx(), fix.store, fix.viewer, testLogger())
	ctx := context.Background()

	settings, err := service.GetSettings(ctx)
	require.NoError(t, err)
	assert.Nil(t, settings)

	progress, err := service.Progress(ctx)
	require.NoError(t, err)
	assert.Nil(t, progress)
}

func TestChallengeService_UpsertAndProgress(t *testing.T) {
	fix := newServicesFixture(t)
	service := NewChallengeService(fix.cfg, fix.tx(), fix.store, fix.viewer, testLogger())
	ctx := context.Background()

	start := time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 8*7)
	require.NoError(t, service.UpsertSettings(ctx, usecase.UpsertChallengeInput{StartAt: start, EndAt: end}))

	impl, ok := service.(*challengeService)
	require.True(t, ok)
	impl.now = func() time.Time { return start.AddDate(0, 0, 17) }

	progress, err := service.Progress(ctx)
	require.NoError(t, err)
	require.NotNil(t, progress)
	assert.Equal(t, 8, progress.TotalWeeks)
	assert.Equal(t, 3, progress.ElapsedWeeks)
	assert.False(t, progress.Finished)
}

func TestChallengeService_UpsertRejectsInvertedWindow(t *testing.T) {
	fix := newServicesFixture(t)
	service := NewChallengeService(fix.cfg, fix.tx(), fix.store, fix.viewer, testLogger())

	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	err := service.UpsertSettings(context.Background(), usecase.UpsertChallengeInput{StartAt: start, EndAt: start})
	require.Error(t, err)

	var appErr domainerrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, domainerrors.ErrValidationFailed.ErrorCode(), appErr.ErrorCode())
}

func TestNotificationService_FeedIsCapped(t *testing.T) {
	fix := newServicesFixture(t)
	service := NewNotificationService(fix.cfg, fix.tx(), fix.store, fix.viewer, testLogger())
	ctx := context.Background()

	for i := 0; i < notificationFeedLimit+5; i++ {
		preview := "comment " + strconv.Itoa(i)
		require.NoError(t, fix.factory.notificationRepo.Create(ctx, &entity.Notification{
			UserID: fix.viewer.id,
			Type:   entity.NotificationCommentOnPost,
			Data:   entity.NotificationData{CommentPreview: &preview},
		}))
	}

	feed, err := service.ListNotifications(ctx)
	require.NoError(t, err)
	require.Len(t, feed, notificationFeedLimit)
	assert.Equal(t, "comment 34", *feed[0].Data.CommentPreview, "newest first")
}

func TestNotificationService_MarkReadRefreshesFeed(t *testing.T) {
	fix := newServicesFixture(t)
	service := NewNotificationService(fix.cfg, fix.tx(), fix.store, fix.viewer, testLogger())
	ctx := context.Background()

	n := &entity.Notification{UserID: fix.viewer.id, Type: entity.NotificationCommentOnPost}
	require.NoError(t, fix.factory.notificationRepo.Create(ctx, n))

	feed, err := service.ListNotifications(ctx)
	require.NoError(t, err)
	require.Len(t, feed, 1)
	require.False(t, feed[0].Read())

	require.NoError(t, service.MarkNotificationRead(ctx, n.ID))

	feed, err = service.ListNotifications(ctx)
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.True(t, feed[0].Read())
}

func TestNotificationService_MarkReadForeignNotification(t *testing.T) {
	fix := newServicesFixture(t)
	service := NewNotificationService(fix.cfg, fix.tx(), fix.store, fix.viewer, testLogger())
	ctx := context.Background()

	foreign := &entity.Notification{UserID: uuid.New(), Type: entity.NotificationCommentOnPost}
	require.NoError(t, fix.factory.notificationRepo.Create(ctx, foreign))

	err := service.MarkNotificationRead(ctx, foreign.ID)
	require.Error(t, err)

	var appErr domainerrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, domainerrors.ErrNotFound.ErrorCode(), appErr.ErrorCode())
}

func TestProfileService_CompleteOnboardingRecordsBaseline(t *testing.T) {
	fix := newServicesFixture(t)
	service := NewProfileService(fix.cfg, fix.tx(), fix.store, fix.media, fix.viewer, testLogger())
	ctx := context.Background()

	fix.factory.profileRepo.profiles[fix.viewer.id] = entity.NewDefaultProfile(fix.viewer.id)

	bodyFat := 24.5
	require.NoError(t, service.CompleteOnboarding(ctx, usecase.CompleteOnboardingInput{
		FullName:          "Sam",
		Gender:            entity.GenderFemale,
		HeightCm:          168,
		WeightKg:          63.2,
		BodyFatPercentage: &bodyFat,
	}))

	profile := fix.factory.profileRepo.profiles[fix.viewer.id]
	assert.True(t, profile.OnboardingCompleted)
	assert.Equal(t, "Sam", profile.DisplayName())
	require.NotNil(t, profile.WeightKg)
	assert.InDelta(t, 63.2, *profile.WeightKg, 0.001)
}

func TestProfileService_UpdateProfileUploadsAvatar(t *testing.T) {
	fix := newServicesFixture(t)
	service := NewProfileService(fix.cfg, fix.tx(), fix.store, fix.media, fix.viewer, testLogger())
	ctx := context.Background()

	fix.factory.profileRepo.profiles[fix.viewer.id] = entity.NewDefaultProfile(fix.viewer.id)

	require.NoError(t, service.UpdateProfile(ctx, usecase.UpdateProfileInput{
		FullName: "Alex",
		Avatar: &usecase.MediaUpload{
			FileName: "me.png", ContentType: "image/png", Size: 3, Body: bytes.NewReader([]byte("png")),
		},
	}))

	profile := fix.factory.profileRepo.profiles[fix.viewer.id]
	assert.Equal(t, "Alex", profile.DisplayName())
	require.NotNil(t, profile.AvatarURL)
	assert.Contains(t, *profile.AvatarURL, "https://public.test/avatars/")
	assert.Equal(t, 1, fix.media.count())
}

func TestProgressService_OverviewIsAdminOnly(t *testing.T) {
	fix := newServicesFixture(t)
	fix.cfg.Admin.UserID = uuid.NewString()
	service := NewProgressService(fix.cfg, fix.tx(), fix.store, fix.viewer, testLogger())

	_, err := service.Overview(context.Background())
	assert.ErrorIs(t, err, domainerrors.ErrForbidden)
}

func TestProgressService_OverviewComputesReductions(t *testing.T) {
	fix := newServicesFixture(t)
	fix.cfg.Admin.UserID = fix.viewer.id.String()
	service := NewProgressService(fix.cfg, fix.tx(), fix.store, fix.viewer, testLogger())
	ctx := context.Background()

	participant := uuid.New()
	name := "Kim"
	baseWeight := 90.0
	baseFat := 30.0
	fix.factory.profileRepo.profiles[participant] = &entity.Profile{
		ID: participant, FullName: &name,
		WeightKg: &baseWeight, BodyFatPercentage: &baseFat,
		OnboardingCompleted: true,
	}

	week := time.Date(2026, 2, 23, 0, 0, 0, 0, time.UTC)
	for i, w := range []float64{88.0, 86.5} {
		weight := w
		require.NoError(t, fix.factory.weeklyLogRepo.Create(ctx, &entity.WeeklyLog{
			UserID:    participant,
			WeekStart: week.AddDate(0, 0, 7*i),
			WeightKg:  &weight,
		}))
	}

	overview, err := service.Overview(ctx)
	require.NoError(t, err)
	require.Len(t, overview, 1)

	p := overview[0]
	assert.Equal(t, participant, p.Profile.ID)
	assert.Len(t, p.Logs, 2)
	require.NotNil(t, p.LatestLog)
	require.NotNil(t, p.WeightReduction)
	assert.InDelta(t, 3.5, *p.WeightReduction, 0.001)
	assert.Nil(t, p.BodyFatReduction, "latest log has no body fat measurement")
}

func TestProgressService_ParticipantWithoutLogs(t *testing.T) {
	fix := newServicesFixture(t)
	fix.cfg.Admin.UserID = fix.viewer.id.String()
	service := NewProgressService(fix.cfg, fix.tx(), fix.store, fix.viewer, testLogger())

	participant := uuid.New()
	fix.factory.profileRepo.profiles[participant] = &entity.Profile{ID: participant, OnboardingCompleted: true}

	overview, err := service.Overview(context.Background())
	require.NoError(t, err)
	require.Len(t, overview, 1)
	assert.Nil(t, overview[0].LatestLog)
	assert.Nil(t, overview[0].WeightReduction)
	assert.Empty(t, overview[0].Logs)
}
