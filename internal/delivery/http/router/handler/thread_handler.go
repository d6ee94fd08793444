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

// ThreadHandler serves a post's discussion thread.
type ThreadHandler struct {
	threads usecase.ThreadUsecase
	logger  *slog.Logger
}

// NewThreadHandler is the constructor for ThreadHandler, injected by Fx.
func NewThreadHandler(threads usecase.ThreadUsecase, logger *slog.Logger) *ThreadHandler {
	return &ThreadHandler{
		threads: threads,
		logger:  logger,
	}
}

// commentView is one node of the rendered comment forest.
type commentView struct {
	ID          int64         `json:"id"`
	ParentID    *int64        `json:"parentId"`
	Content     string        `json:"content"`
	AuthorName  *string       `json:"authorName"`
	LikeCount   int           `json:"likeCount"`
	LikedByUser bool          `json:"likedByUser"`
	IsMine      bool          `json:"isMine"`
	CreatedAt   time.Time     `json:"createdAt"`
	Children    []commentView `json:"children"`
}

func toCommentViews(comments []*entity.Comment) []commentView {
	views := make([]commentView, 0, len(comments))
	for _, comment := range comments {
		views = append(views, commentView{
			ID:          comment.ID,
			ParentID:    comment.ParentID,
			Content:     comment.Content,
			AuthorName:  comment.AuthorName,
			LikeCount:   comment.LikeCount,
			LikedByUser: comment.LikedByUser,
			IsMine:      comment.IsMine,
			CreatedAt:   comment.CreatedAt,
			Children:    toCommentViews(comment.Children),
		})
	}

	return views
}

type createCommentRequest struct {
	Content  string `json:"content" validate:"required"`
	ParentID *int64 `json:"parentId"`
}

// ListComments returns the post's nested comment forest.
func (h *ThreadHandler) ListComments(c echo.Context) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	comments, err := h.threads.ListComments(c.Request().Context(), postID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, toCommentViews(comments), "")
}

// CreateComment posts a comment or reply.
func (h *ThreadHandler) CreateComment(c echo.Context) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req createCommentRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid comment input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	if err := h.threads.CreateComment(c.Request().Context(), usecase.CreateCommentInput{
		PostID:   postID,
		Content:  req.Content,
		ParentID: req.ParentID,
	}); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, nil, "Comment created")
}

// DeleteComment removes the viewer's own comment.
func (h *ThreadHandler) DeleteComment(c echo.Context) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	commentID, err := parseID(c, "commentId")
	if err != nil {
		return err
	}

	if err := h.threads.DeleteComment(c.Request().Context(), postID, commentID); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "Comment deleted")
}

// ToggleLike flips the viewer's like on a comment.
func (h *ThreadHandler) ToggleLike(c echo.Context) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	commentID, err := parseID(c, "commentId")
	if err != nil {
		return err
	}

	var req toggleLikeRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid like input")
	}

	if err := h.threads.ToggleCommentLike(c.Request().Context(), usecase.ToggleCommentLikeInput{
		PostID:    postID,
		CommentID: commentID,
		Liked:     req.Liked,
	}); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "Like toggled")
}
