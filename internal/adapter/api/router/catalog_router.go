package router

import (
	"github.com/labstack/echo/v4"

	"mangareader/internal/adapter/api/handler"
	"mangareader/internal/adapter/api/middleware"
)

func SetupCatalogRouter(e *echo.Echo, catalogHandler *handler.CatalogHandler, ratingHandler *handler.RatingHandler, authMiddleware *middleware.AuthMiddleware) {
	manga := e.Group("/v1/manga")
	manga.Use(authMiddleware.Optional)

	manga.GET("", catalogHandler.ListManga)
	manga.GET("/:id", catalogHandler.GetManga)
	manga.GET("/:id/chapters/:chapter", catalogHandler.ReadChapter)
	manga.GET("/:id/rating", ratingHandler.GetRating)

	manga.PUT("/:id/rating", ratingHandler.RateManga, authMiddleware.Authenticate)
}
