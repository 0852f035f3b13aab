package handler

import (
	"net/http"
	"strings"

	gorillaws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"mangareader/internal/adapter/api/middleware"
	ws "mangareader/internal/infrastructure/websocket"
	"mangareader/pkg/errors"
	"mangareader/pkg/logger"
	"mangareader/pkg/response"
)

type WebSocketHandler struct {
	wsManager      *ws.Manager
	authMiddleware *middleware.AuthMiddleware
	upgrader       gorillaws.Upgrader
}

// NewWebSocketHandler accepts connections from allowedOrigins, or from any
// origin when the list is empty.
func NewWebSocketHandler(wsManager *ws.Manager, authMiddleware *middleware.AuthMiddleware, allowedOrigins []string) *WebSocketHandler {
	return &WebSocketHandler{
		wsManager:      wsManager,
		authMiddleware: authMiddleware,
		upgrader: gorillaws.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		if len(allowed) == 0 {
			return true
		}
		origin := r.Header.Get("Origin")
		for _, o := range allowed {
			if strings.EqualFold(o, origin) {
				return true
			}
		}
		return false
	}
}

// HandleWebSocket verifies ?token= (or a bearer header) before upgrading, so
// every connection is bound to a uid from the start.
func (h *WebSocketHandler) HandleWebSocket(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		if parts := strings.Split(c.Request().Header.Get("Authorization"), " "); len(parts) == 2 && parts[0] == "Bearer" {
			token = parts[1]
		}
	}
	if token == "" {
		return response.Error(c, errors.Unauthorized("token is required", nil))
	}

	userID, err := h.authMiddleware.GetUIDFromToken(c.Request().Context(), token)
	if err != nil {
		return response.Error(c, err)
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// The upgrader has already written the HTTP error.
		logger.Warn("WebSocket: upgrade failed for user %s: %v", userID, err)
		return nil
	}

	client := ws.NewClient(userID, conn)
	if !h.wsManager.Add(client) {
		logger.Debug("WebSocket: manager stopped, dropping connection of user %s", userID)
		return nil
	}

	go client.ReadPump(h.wsManager)
	go client.WritePump()

	return nil
}
