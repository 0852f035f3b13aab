package router

import (
	"github.com/labstack/echo/v4"

	"mangareader/internal/adapter/api/handler"
	"mangareader/internal/adapter/api/middleware"
)

func SetupCommentRouter(e *echo.Echo, commentHandler *handler.CommentHandler, authMiddleware *middleware.AuthMiddleware) {
	e.GET("/v1/manga/:id/chapters/:chapter/comments", commentHandler.ListComments, authMiddleware.Optional)

	comments := e.Group("/v1/manga/:id/chapters/:chapter/comments")
	comments.Use(authMiddleware.Authenticate)

	comments.POST("", commentHandler.SubmitComment)
	comments.PUT("/:comment", commentHandler.EditComment)
	comments.DELETE("/:comment", commentHandler.DeleteComment)
	comments.POST("/:comment/like", commentHandler.ToggleCommentLike)

	comments.POST("/:comment/replies", commentHandler.SubmitReply)
	comments.PUT("/:comment/replies/:reply", commentHandler.EditReply)
	comments.DELETE("/:comment/replies/:reply", commentHandler.DeleteReply)
	comments.POST("/:comment/replies/:reply/like", commentHandler.ToggleReplyLike)
}
