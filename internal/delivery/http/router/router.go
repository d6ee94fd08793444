// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"fitlog/internal/delivery/http/middleware"
	"fitlog/internal/delivery/http/router/handler"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	AuthHandler         *handler.AuthHandler
	ProfileHandler      *handler.ProfileHandler
	PostHandler         *handler.PostHandler
	ThreadHandler       *handler.ThreadHandler
	WeeklyLogHandler    *handler.WeeklyLogHandler
	ChallengeHandler    *handler.ChallengeHandler
	NotificationHandler *handler.NotificationHandler
	ProgressHandler     *handler.ProgressHandler
	SessionMiddleware   *middleware.SessionMiddleware
}

// router holds all the handlers that need to be registered.
type router struct {
	params RouterParams
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{params: params}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	// Auth routes
	authGroup := e.Group("/auth")
	{
		authGroup.GET("/session", r.params.AuthHandler.GetSession)
		authGroup.POST("/sign-in", r.params.AuthHandler.SignIn)
		authGroup.POST("/sign-up", r.params.AuthHandler.SignUp)
		authGroup.POST("/sign-out", r.params.AuthHandler.SignOut)
		authGroup.POST("/refresh-profile", r.params.AuthHandler.RefreshProfile)
	}

	// Everything below requires a tracked session.
	api := e.Group("/api", r.params.SessionMiddleware.RequireSession)
	{
		api.GET("/profile", r.params.ProfileHandler.GetProfile)
		api.PUT("/profile", r.params.ProfileHandler.UpdateProfile)
		api.POST("/profile/onboarding", r.params.ProfileHandler.CompleteOnboarding)

		api.GET("/posts", r.params.PostHandler.ListPosts)
		api.POST("/posts", r.params.PostHandler.CreatePost)
		api.GET("/posts/:id", r.params.PostHandler.GetPost)
		api.POST("/posts/:id/like", r.params.PostHandler.ToggleLike)

		api.GET("/posts/:id/comments", r.params.ThreadHandler.ListComments)
		api.POST("/posts/:id/comments", r.params.ThreadHandler.CreateComment)
		api.DELETE("/posts/:id/comments/:commentId", r.params.ThreadHandler.DeleteComment)
		api.POST("/posts/:id/comments/:commentId/like", r.params.ThreadHandler.ToggleLike)

		api.GET("/weekly-logs", r.params.WeeklyLogHandler.ListLogs)
		api.POST("/weekly-logs", r.params.WeeklyLogHandler.SubmitLog)

		api.GET("/challenge", r.params.ChallengeHandler.GetSettings)
		api.PUT("/challenge", r.params.ChallengeHandler.UpsertSettings)
		api.GET("/challenge/progress", r.params.ChallengeHandler.Progress)

		api.GET("/notifications", r.params.NotificationHandler.ListNotifications)
		api.POST("/notifications/:id/read", r.params.NotificationHandler.MarkRead)

		// Organizer-only; the usecase enforces the admin check.
		api.GET("/admin/progress", r.params.ProgressHandler.Overview)
	}
}
