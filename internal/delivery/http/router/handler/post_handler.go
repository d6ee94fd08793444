package handler

import (
	"log/slog"
	"net/http"
	"time"

	"fitlog/internal/delivery/http/response"
	"fitlog/internal/domain/entity"
	"fitlog/internal/errors"
	"fitlog/internal/usecase"

	"github.com/labstack/echo/v4"
)

// PostHandler serves the community feed.
type PostHandler struct {
	posts  usecase.PostUsecase
	logger *slog.Logger
}

// NewPostHandler is the constructor for PostHandler, injected by Fx.
func NewPostHandler(posts usecase.PostUsecase, logger *slog.Logger) *PostHandler {
	return &PostHandler{
		posts:  posts,
		logger: logger,
	}
}

// postView is a feed entry rendered to the client.
type postView struct {
	ID          int64              `json:"id"`
	UserID      string             `json:"userId"`
	Category    string             `json:"category"`
	Title       string             `json:"title"`
	Content     string             `json:"content"`
	AuthorName  *string            `json:"authorName"`
	LikeCount   int                `json:"likeCount"`
	LikedByUser bool               `json:"likedByUser"`
	Media       []entity.PostMedia `json:"media"`
	CreatedAt   time.Time          `json:"createdAt"`
}

func toPostView(post *entity.Post) postView {
	media := post.Media
	if media == nil {
		media = []entity.PostMedia{}
	}

	return postView{
		ID:          post.ID,
		UserID:      post.UserID.String(),
		Category:    string(post.Category),
		Title:       post.Title,
		Content:     post.Content,
		AuthorName:  post.AuthorName,
		LikeCount:   post.LikeCount,
		LikedByUser: post.LikedByUser,
		Media:       media,
		CreatedAt:   post.CreatedAt,
	}
}

func toPostViews(posts []*entity.Post) []postView {
	views := make([]postView, 0, len(posts))
	for _, post := range posts {
		views = append(views, toPostView(post))
	}

	return views
}

type toggleLikeRequest struct {
	Liked bool `json:"liked"`
}

// ListPosts returns the feed, optionally filtered by ?category=.
func (h *PostHandler) ListPosts(c echo.Context) error {
	var category *entity.PostCategory
	if raw := c.QueryParam("category"); raw != "" {
		parsed := entity.PostCategory(raw)
		category = &parsed
	}

	posts, err := h.posts.ListPosts(c.Request().Context(), category)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, toPostViews(posts), "")
}

// GetPost returns a single post.
func (h *PostHandler) GetPost(c echo.Context) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	post, err := h.posts.GetPost(c.Request().Context(), postID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, toPostView(post), "")
}

// CreatePost publishes a post from a multipart form with optional media files.
func (h *PostHandler) CreatePost(c echo.Context) error {
	input := usecase.CreatePostInput{
		Category: entity.PostCategory(c.FormValue("category")),
		Title:    c.FormValue("title"),
		Content:  c.FormValue("content"),
	}

	if form, err := c.MultipartForm(); err == nil {
		for _, fileHeader := range form.File["media"] {
			upload, closeFn, openErr := openUpload(fileHeader)
			if openErr != nil {
				return errors.WithStack(openErr)
			}
			defer closeFn()
			input.Media = append(input.Media, *upload)
		}
	}

	postID, err := h.posts.CreatePost(c.Request().Context(), input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, map[string]int64{"id": postID}, "Post created")
}

// ToggleLike flips the viewer's like on a post.
func (h *PostHandler) ToggleLike(c echo.Context) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req toggleLikeRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid like input")
	}

	if err := h.posts.TogglePostLike(c.Request().Context(), usecase.TogglePostLikeInput{
		PostID: postID,
		Liked:  req.Liked,
	}); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "Like toggled")
}
