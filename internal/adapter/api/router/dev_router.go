package router

import (
	"github.com/labstack/echo/v4"

	"mangareader/internal/adapter/api/handler"
)

func SetupDevRouter(e *echo.Echo, environment string, devTokenHandler *handler.DevTokenHandler) {
	if environment != "development" {
		return
	}

	e.GET("/_dev/token/:uid", devTokenHandler.GenerateToken)
}
