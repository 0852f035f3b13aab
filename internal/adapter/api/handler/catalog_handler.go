package handler

import (
	"github.com/labstack/echo/v4"

	"mangareader/internal/adapter/api/middleware"
	"mangareader/internal/usecase"
	"mangareader/pkg/response"
	"mangareader/pkg/utils"
)

type CatalogHandler struct {
	catalogUseCase *usecase.CatalogUseCase
}

func NewCatalogHandler(catalogUseCase *usecase.CatalogUseCase) *CatalogHandler {
	return &CatalogHandler{
		catalogUseCase: catalogUseCase,
	}
}

type createMangaRequest struct {
	ID          string `json:"id"`
	Name        string `json:"name" validate:"required"`
	Thumbnail   string `json:"thumbnail" validate:"omitempty,url"`
	Description string `json:"description"`
}

type putChapterRequest struct {
	Title       string   `json:"title"`
	Images      []string `json:"images" validate:"required,min=1,dive,required"`
	Description string   `json:"description"`
}

// ListManga serves the catalog grid: ?q= filters by name, ?sort=views|rating|latest|name
// and ?order=asc|desc order it, ?page and ?limit page it.
func (h *CatalogHandler) ListManga(c echo.Context) error {
	cards, err := h.catalogUseCase.ListManga(c.Request().Context(), usecase.ListMangaInput{
		Query: c.QueryParam("q"),
		Sort:  c.QueryParam("sort"),
		Order: c.QueryParam("order"),
	})
	if err != nil {
		return response.Error(c, err)
	}

	pagination := utils.GetPaginationParams(c)
	start, end := pagination.Window(len(cards))
	return response.Paginated(c, cards[start:end], int64(len(cards)), pagination.Page, pagination.PageSize)
}

func (h *CatalogHandler) GetManga(c echo.Context) error {
	detail, err := h.catalogUseCase.GetManga(c.Request().Context(), c.Param("id"), middleware.UID(c))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, detail)
}

func (h *CatalogHandler) ReadChapter(c echo.Context) error {
	page, err := h.catalogUseCase.ReadChapter(c.Request().Context(), c.Param("id"), c.Param("chapter"), viewerKey(c))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, page)
}

func (h *CatalogHandler) CreateManga(c echo.Context) error {
	var req createMangaRequest
	if err := bind(c, &req); err != nil {
		return response.Error(c, err)
	}

	manga, err := h.catalogUseCase.CreateManga(c.Request().Context(), usecase.MangaInput{
		ID:          req.ID,
		Name:        req.Name,
		Thumbnail:   req.Thumbnail,
		Description: req.Description,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, manga)
}

func (h *CatalogHandler) PutChapter(c echo.Context) error {
	var req putChapterRequest
	if err := bind(c, &req); err != nil {
		return response.Error(c, err)
	}

	ref, err := h.catalogUseCase.PutChapter(c.Request().Context(), c.Param("id"), usecase.ChapterInput{
		Number:      c.Param("chapter"),
		Title:       req.Title,
		Images:      req.Images,
		Description: req.Description,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, ref)
}

func (h *CatalogHandler) UploadPage(c echo.Context) error {
	file, contentType, err := imageFormFile(c, "image")
	if err != nil {
		return response.Error(c, err)
	}
	defer file.Close()

	url, err := h.catalogUseCase.UploadPage(c.Request().Context(), c.Param("id"), file, contentType)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, map[string]string{"url": url})
}

// viewerKey identifies a reader for view counting: the uid when signed in,
// the client IP otherwise.
func viewerKey(c echo.Context) string {
	if uid := middleware.UID(c); uid != "" {
		return uid
	}
	return "ip:" + c.RealIP()
}
