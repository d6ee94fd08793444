package impl

import (
	"context"
	"sort"
	"sync"
	"time"

	"fitlog/internal/domain/entity"
	"fitlog/internal/domain/repository"

	"github.com/google/uuid"
)

// Hand-rolled in-memory repositories shared by the service tests. Every fake
// counts its reads so tests can assert on cache hits versus refetches.

type fakeProfileRepo struct {
	mu        sync.Mutex
	profiles  map[uuid.UUID]*entity.Profile
	findErr   error
	findGate  chan struct{} // when non-nil, FindByID blocks until closed
	findCalls int
	created   []*entity.Profile
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: make(map[uuid.UUID]*entity.Profile)}
}

func (f *fakeProfileRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Profile, error) {
	f.mu.Lock()
	f.findCalls++
	gate := f.findGate
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.findErr != nil {
		return nil, f.findErr
	}
	profile, ok := f.profiles[id]
	if !ok {
		return nil, repository.ErrProfileNotFound
	}

	return profile, nil
}

func (f *fakeProfileRepo) Create(_ context.Context, profile *entity.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profiles[profile.ID] = profile
	f.created = append(f.created, profile)

	return nil
}

func (f *fakeProfileRepo) Update(_ context.Context, profile *entity.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profiles[profile.ID] = profile

	return nil
}

func (f *fakeProfileRepo) ListOnboarded(_ context.Context) ([]*entity.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []*entity.Profile
	for _, p := range f.profiles {
		if p.OnboardingCompleted {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DisplayName() < out[j].DisplayName() })

	return out, nil
}

func (f *fakeProfileRepo) finds() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.findCalls
}

func (f *fakeProfileRepo) createdCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.created)
}

type fakeCommentRepo struct {
	mu         sync.Mutex
	nextID     int64
	comments   map[int64]*entity.Comment
	likes      map[int64]map[uuid.UUID]struct{}
	listCalls  int
	likedCalls int
	createErr  error
	likeErr    error
}

func newFakeCommentRepo() *fakeCommentRepo {
	return &fakeCommentRepo{
		nextID:   1,
		comments: make(map[int64]*entity.Comment),
		likes:    make(map[int64]map[uuid.UUID]struct{}),
	}
}

func (f *fakeCommentRepo) ListByPost(_ context.Context, postID int64) ([]*entity.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++

	var out []*entity.Comment
	for _, c := range f.comments {
		if c.PostID != postID {
			continue
		}
		row := *c
		row.LikeCount = len(f.likes[c.ID])
		out = append(out, &row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}

		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	return out, nil
}

func (f *fakeCommentRepo) LikedCommentIDs(_ context.Context, userID uuid.UUID, commentIDs []int64) (map[int64]struct{}, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.likedCalls++

	out := make(map[int64]struct{})
	for _, id := range commentIDs {
		if _, ok := f.likes[id][userID]; ok {
			out[id] = struct{}{}
		}
	}

	return out, nil
}

func (f *fakeCommentRepo) Create(_ context.Context, comment *entity.Comment) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.createErr != nil {
		return f.createErr
	}

	comment.ID = f.nextID
	f.nextID++
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now()
	}
	row := *comment
	f.comments[comment.ID] = &row

	return nil
}

func (f *fakeCommentRepo) Delete(_ context.Context, commentID int64, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	c, ok := f.comments[commentID]
	if !ok || c.UserID != userID {
		return repository.ErrCommentNotFound
	}
	delete(f.comments, commentID)

	return nil
}

func (f *fakeCommentRepo) AddLike(_ context.Context, commentID int64, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.likeErr != nil {
		return f.likeErr
	}
	if f.likes[commentID] == nil {
		f.likes[commentID] = make(map[uuid.UUID]struct{})
	}
	f.likes[commentID][userID] = struct{}{}

	return nil
}

func (f *fakeCommentRepo) RemoveLike(_ context.Context, commentID int64, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.likeErr != nil {
		return f.likeErr
	}
	delete(f.likes[commentID], userID)

	return nil
}

func (f *fakeCommentRepo) lists() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.listCalls
}

type fakePostRepo struct {
	mu        sync.Mutex
	nextID    int64
	posts     map[int64]*entity.Post
	likes     map[int64]map[uuid.UUID]struct{}
	listCalls int
	likeErr   error
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{
		nextID: 1,
		posts:  make(map[int64]*entity.Post),
		likes:  make(map[int64]map[uuid.UUID]struct{}),
	}
}

func (f *fakePostRepo) List(_ context.Context, category *entity.PostCategory) ([]*entity.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++

	var out []*entity.Post
	for _, p := range f.posts {
		if category != nil && p.Category != *category {
			continue
		}
		row := *p
		row.LikeCount = len(f.likes[p.ID])
		out = append(out, &row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}

		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	return out, nil
}

func (f *fakePostRepo) FindByID(_ context.Context, postID int64) (*entity.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	p, ok := f.posts[postID]
	if !ok {
		return nil, repository.ErrPostNotFound
	}
	row := *p
	row.LikeCount = len(f.likes[postID])

	return &row, nil
}

func (f *fakePostRepo) Create(_ context.Context, post *entity.Post) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	post.ID = f.nextID
	f.nextID++
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now()
	}
	row := *post
	f.posts[post.ID] = &row

	return nil
}

func (f *fakePostRepo) LikedPostIDs(_ context.Context, userID uuid.UUID) (map[int64]struct{}, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make(map[int64]struct{})
	for postID, users := range f.likes {
		if _, ok := users[userID]; ok {
			out[postID] = struct{}{}
		}
	}

	return out, nil
}

func (f *fakePostRepo) HasLiked(_ context.Context, postID int64, userID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	_, ok := f.likes[postID][userID]

	return ok, nil
}

func (f *fakePostRepo) AddLike(_ context.Context, postID int64, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.likeErr != nil {
		return f.likeErr
	}
	if f.likes[postID] == nil {
		f.likes[postID] = make(map[uuid.UUID]struct{})
	}
	f.likes[postID][userID] = struct{}{}

	return nil
}

func (f *fakePostRepo) RemoveLike(_ context.Context, postID int64, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.likeErr != nil {
		return f.likeErr
	}
	delete(f.likes[postID], userID)

	return nil
}

func (f *fakePostRepo) lists() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.listCalls
}

type fakeWeeklyLogRepo struct {
	mu        sync.Mutex
	nextID    int64
	logs      []*entity.WeeklyLog
	listCalls int
}

func newFakeWeeklyLogRepo() *fakeWeeklyLogRepo {
	return &fakeWeeklyLogRepo{nextID: 1}
}

func (f *fakeWeeklyLogRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]*entity.WeeklyLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++

	var out []*entity.WeeklyLog
	for _, l := range f.logs {
		if l.UserID == userID {
			row := *l
			out = append(out, &row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WeekStart.After(out[j].WeekStart) })

	return out, nil
}

func (f *fakeWeeklyLogRepo) ListAll(_ context.Context) ([]*entity.WeeklyLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]*entity.WeeklyLog, 0, len(f.logs))
	for _, l := range f.logs {
		row := *l
		out = append(out, &row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WeekStart.Before(out[j].WeekStart) })

	return out, nil
}

func (f *fakeWeeklyLogRepo) Create(_ context.Context, log *entity.WeeklyLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, l := range f.logs {
		if l.UserID == log.UserID && l.WeekStart.Equal(log.WeekStart) {
			return repository.ErrDuplicateWeekStart
		}
	}

	log.ID = f.nextID
	f.nextID++
	row := *log
	f.logs = append(f.logs, &row)

	return nil
}

func (f *fakeWeeklyLogRepo) lists() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.listCalls
}

type fakeChallengeRepo struct {
	mu       sync.Mutex
	settings map[uuid.UUID]*entity.ChallengeSettings
}

func newFakeChallengeRepo() *fakeChallengeRepo {
	return &fakeChallengeRepo{settings: make(map[uuid.UUID]*entity.ChallengeSettings)}
}

func (f *fakeChallengeRepo) FindByUser(_ context.Context, userID uuid.UUID) (*entity.ChallengeSettings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	s, ok := f.settings[userID]
	if !ok {
		return nil, repository.ErrChallengeSettingsNotFound
	}
	row := *s

	return &row, nil
}

func (f *fakeChallengeRepo) Upsert(_ context.Context, settings *entity.ChallengeSettings) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	row := *settings
	f.settings[settings.UserID] = &row

	return nil
}

type fakeNotificationRepo struct {
	mu            sync.Mutex
	nextID        int64
	notifications []*entity.Notification
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{nextID: 1}
}

func (f *fakeNotificationRepo) ListByUser(_ context.Context, userID uuid.UUID, limit int) ([]*entity.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []*entity.Notification
	for _, n := range f.notifications {
		if n.UserID == userID {
			row := *n
			out = append(out, &row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}

	return out, nil
}

func (f *fakeNotificationRepo) MarkRead(_ context.Context, id int64, userID uuid.UUID, readAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, n := range f.notifications {
		if n.ID == id && n.UserID == userID {
			at := readAt
			n.ReadAt = &at

			return nil
		}
	}

	return repository.ErrNotificationNotFound
}

func (f *fakeNotificationRepo) Create(_ context.Context, notification *entity.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	notification.ID = f.nextID
	f.nextID++
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now()
	}
	row := *notification
	f.notifications = append(f.notifications, &row)

	return nil
}

func (f *fakeNotificationRepo) byUser(userID uuid.UUID) []*entity.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []*entity.Notification
	for _, n := range f.notifications {
		if n.UserID == userID {
			row := *n
			out = append(out, &row)
		}
	}

	return out
}

type fakeRepoFactory struct {
	profileRepo      *fakeProfileRepo
	commentRepo      *fakeCommentRepo
	postRepo         *fakePostRepo
	weeklyLogRepo    *fakeWeeklyLogRepo
	challengeRepo    *fakeChallengeRepo
	notificationRepo *fakeNotificationRepo
}

func newFakeRepoFactory() *fakeRepoFactory {
	return &fakeRepoFactory{
		profileRepo:      newFakeProfileRepo(),
		commentRepo:      newFakeCommentRepo(),
		postRepo:         newFakePostRepo(),
		weeklyLogRepo:    newFakeWeeklyLogRepo(),
		challengeRepo:    newFakeChallengeRepo(),
		notificationRepo: newFakeNotificationRepo(),
	}
}

func (f *fakeRepoFactory) ProfileRepo() repository.ProfileRepository { return f.profileRepo }
func (f *fakeRepoFactory) CommentRepo() repository.CommentRepository { return f.commentRepo }
func (f *fakeRepoFactory) PostRepo() repository.PostRepository       { return f.postRepo }
func (f *fakeRepoFactory) WeeklyLogRepo() repository.WeeklyLogRepository {
	return f.weeklyLogRepo
}
func (f *fakeRepoFactory) ChallengeRepo() repository.ChallengeRepository {
	return f.challengeRepo
}
func (f *fakeRepoFactory) NotificationRepo() repository.NotificationRepository {
	return f.notificationRepo
}

type fakeTxManager struct {
	factory *fakeRepoFactory
}

func (f *fakeTxManager) Execute(_ context.Context, fn func(repository.RepositoryFactory) error) error {
	return fn(f.factory)
}

// fixedViewer satisfies usecase.ViewerProvider with a static identity.
type fixedViewer struct {
	id     uuid.UUID
	signed bool
}

func (v *fixedViewer) CurrentUserID() (uuid.UUID, bool) {
	if !v.signed {
		return uuid.Nil, false
	}

	return v.id, true
}
