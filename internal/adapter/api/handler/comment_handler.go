package handler

import (
	"github.com/labstack/echo/v4"

	"mangareader/internal/adapter/api/middleware"
	"mangareader/internal/usecase"
	"mangareader/pkg/response"
)

type CommentHandler struct {
	commentUseCase *usecase.CommentUseCase
}

func NewCommentHandler(commentUseCase *usecase.CommentUseCase) *CommentHandler {
	return &CommentHandler{
		commentUseCase: commentUseCase,
	}
}

type commentTextRequest struct {
	Text string `json:"text" validate:"required"`
}

func threadRef(c echo.Context) usecase.ThreadRef {
	return usecase.ThreadRef{MangaID: c.Param("id"), ChapterID: c.Param("chapter")}
}

// ListComments accepts ?expand=<commentId> to open one reply panel.
func (h *CommentHandler) ListComments(c echo.Context) error {
	thread, err := h.commentUseCase.ListComments(c.Request().Context(), threadRef(c), middleware.UID(c), c.QueryParam("expand"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, thread)
}

func (h *CommentHandler) SubmitComment(c echo.Context) error {
	var req commentTextRequest
	if err := bind(c, &req); err != nil {
		return response.Error(c, err)
	}

	comment, err := h.commentUseCase.SubmitComment(c.Request().Context(), threadRef(c), middleware.UID(c), req.Text)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, comment)
}

func (h *CommentHandler) SubmitReply(c echo.Context) error {
	var req commentTextRequest
	if err := bind(c, &req); err != nil {
		return response.Error(c, err)
	}

	reply, err := h.commentUseCase.SubmitReply(c.Request().Context(), threadRef(c), c.Param("comment"), middleware.UID(c), req.Text)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, reply)
}

func (h *CommentHandler) ToggleCommentLike(c echo.Context) error {
	result, err := h.commentUseCase.ToggleCommentLike(c.Request().Context(), threadRef(c), c.Param("comment"), middleware.UID(c))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, result)
}

func (h *CommentHandler) ToggleReplyLike(c echo.Context) error {
	result, err := h.commentUseCase.ToggleReplyLike(c.Request().Context(), threadRef(c), c.Param("comment"), c.Param("reply"), middleware.UID(c))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, result)
}

func (h *CommentHandler) EditComment(c echo.Context) error {
	var req commentTextRequest
	if err := bind(c, &req); err != nil {
		return response.Error(c, err)
	}

	comment, err := h.commentUseCase.EditComment(c.Request().Context(), threadRef(c), c.Param("comment"), middleware.UID(c), req.Text)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, comment)
}

func (h *CommentHandler) EditReply(c echo.Context) error {
	var req commentTextRequest
	if err := bind(c, &req); err != nil {
		return response.Error(c, err)
	}

	comment, err := h.commentUseCase.EditReply(c.Request().Context(), threadRef(c), c.Param("comment"), c.Param("reply"), middleware.UID(c), req.Text)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, comment)
}

func (h *CommentHandler) DeleteComment(c echo.Context) error {
	if err := h.commentUseCase.DeleteComment(c.Request().Context(), threadRef(c), c.Param("comment"), middleware.UID(c)); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{"message": "Comment deleted"})
}

func (h *CommentHandler) DeleteReply(c echo.Context) error {
	if err := h.commentUseCase.DeleteReply(c.Request().Context(), threadRef(c), c.Param("comment"), c.Param("reply"), middleware.UID(c)); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{"message": "Reply deleted"})
}
