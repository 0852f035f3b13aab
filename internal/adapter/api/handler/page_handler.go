package handler

import (
	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"

	"mangareader/internal/adapter/api/middleware"
	"mangareader/internal/domain/service"
	"mangareader/internal/usecase"
	"mangareader/pkg/errors"
	"mangareader/pkg/response"
)

// PageHandler serves the page-URL entry points. Links in notifications point
// here, so the query parameter names are part of the contract.
type PageHandler struct {
	catalogUseCase *usecase.CatalogUseCase
	commentUseCase *usecase.CommentUseCase
}

func NewPageHandler(catalogUseCase *usecase.CatalogUseCase, commentUseCase *usecase.CommentUseCase) *PageHandler {
	return &PageHandler{
		catalogUseCase: catalogUseCase,
		commentUseCase: commentUseCase,
	}
}

type readerPage struct {
	Chapter  *usecase.ChapterPage  `json:"chapter"`
	Comments service.CommentThread `json:"comments"`
	// Focus is the comment a link pointed at, if any.
	Focus string `json:"focus,omitempty"`
}

// MangaPage handles ?id=<manga>.
func (h *PageHandler) MangaPage(c echo.Context) error {
	id := c.QueryParam("id")
	if id == "" {
		return response.Error(c, errors.Validation("id is required"))
	}

	detail, err := h.catalogUseCase.GetManga(c.Request().Context(), id, middleware.UID(c))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, detail)
}

// ChapterPage handles ?manga=&chapter= with optional comment= and
// mode=replies, which opens that comment's replies.
func (h *PageHandler) ChapterPage(c echo.Context) error {
	mangaID := c.QueryParam("manga")
	chapter := c.QueryParam("chapter")
	if mangaID == "" || chapter == "" {
		return response.Error(c, errors.Validation("manga and chapter are required"))
	}

	focus := c.QueryParam("comment")
	expanded := ""
	if focus != "" && c.QueryParam("mode") == "replies" {
		expanded = focus
	}

	var page readerPage
	page.Focus = focus

	g, ctx := errgroup.WithContext(c.Request().Context())
	g.Go(func() error {
		var err error
		page.Chapter, err = h.catalogUseCase.ReadChapter(ctx, mangaID, chapter, viewerKey(c))
		return err
	})
	g.Go(func() error {
		var err error
		page.Comments, err = h.commentUseCase.ListComments(ctx, usecase.ThreadRef{MangaID: mangaID, ChapterID: chapter}, middleware.UID(c), expanded)
		return err
	})
	if err := g.Wait(); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, page)
}
