package handler

import (
	"github.com/labstack/echo/v4"

	"mangareader/internal/adapter/api/middleware"
	"mangareader/internal/usecase"
	"mangareader/pkg/response"
)

type RatingHandler struct {
	ratingUseCase *usecase.RatingUseCase
}

func NewRatingHandler(ratingUseCase *usecase.RatingUseCase) *RatingHandler {
	return &RatingHandler{
		ratingUseCase: ratingUseCase,
	}
}

type rateRequest struct {
	Rating int `json:"rating" validate:"required,min=1,max=5"`
}

func (h *RatingHandler) RateManga(c echo.Context) error {
	var req rateRequest
	if err := bind(c, &req); err != nil {
		return response.Error(c, err)
	}

	result, err := h.ratingUseCase.RateManga(c.Request().Context(), middleware.UID(c), c.Param("id"), req.Rating)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, result)
}

// GetRating works anonymously; MyRating is only filled for a signed-in caller.
func (h *RatingHandler) GetRating(c echo.Context) error {
	result, err := h.ratingUseCase.GetRating(c.Request().Context(), middleware.UID(c), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, result)
}
