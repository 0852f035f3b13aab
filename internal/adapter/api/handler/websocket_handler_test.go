package handler

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gorillaws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mangareader/internal/adapter/api/middleware"
	"mangareader/internal/adapter/repository/memstore"
	"mangareader/internal/domain/entity"
	ws "mangareader/internal/infrastructure/websocket"
	"mangareader/internal/usecase"
	"mangareader/pkg/errors"
)

type prefixVerifier struct{}

func (prefixVerifier) VerifyToken(_ context.Context, token string) (string, error) {
	if !strings.HasPrefix(token, "token-") {
		return "", errors.Unauthorized("Invalid token", nil)
	}
	return strings.TrimPrefix(token, "token-"), nil
}

type wsFrame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func startWebSocketServer(t *testing.T) (*httptest.Server, *memstore.Store, *ws.Manager) {
	t.Helper()
	store := memstore.New()
	manager := ws.NewManager(usecase.NewLiveUseCase(store.Comments(), store.Notifications()))
	ctx, cancel := context.WithCancel(context.Background())
	manager.Start(ctx)

	e := echo.New()
	e.HTTPErrorHandler = ErrorHandler
	e.GET("/ws", NewWebSocketHandler(manager, middleware.NewAuthMiddleware(prefixVerifier{}), nil).HandleWebSocket)

	srv := httptest.NewServer(e)
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return srv, store, manager
}

func wsURL(srv *httptest.Server, query string) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws" + query
}

func readFrame(t *testing.T, conn *gorillaws.Conn) wsFrame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var frame wsFrame
	require.NoError(t, conn.ReadJSON(&frame))
	return frame
}

func TestWebSocket_RejectsMissingOrBadToken(t *testing.T) {
	srv, _, _ := startWebSocketServer(t)

	_, resp, err := gorillaws.DefaultDialer.Dial(wsURL(srv, ""), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	_, resp, err = gorillaws.DefaultDialer.Dial(wsURL(srv, "?token=forged"), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestWebSocket_StreamsCommentPatches(t *testing.T) {
	srv, store, manager := startWebSocketServer(t)

	conn, _, err := gorillaws.DefaultDialer.Dial(wsURL(srv, "?token=token-alice"), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(map[string]interface{}{"type": "ping"}))
	assert.Equal(t, ws.MessageTypePong, readFrame(t, conn).Type)
	assert.Eventually(t, func() bool { return manager.ConnectedClients("alice") == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.WriteJSON(map[string]interface{}{
		"type": "subscribe_comments",
		"data": map[string]string{"manga_id": "op", "chapter_id": "3"},
	}))
	assert.Equal(t, ws.MessageTypeSubscribed, readFrame(t, conn).Type)

	first := readFrame(t, conn)
	require.Equal(t, ws.MessageTypeCommentsPatch, first.Type)
	var initial ws.CommentsPatchData
	require.NoError(t, json.Unmarshal(first.Data, &initial))
	assert.Empty(t, initial.Upserts)
	assert.NotEmpty(t, initial.Placeholder)

	require.NoError(t, store.Comments().Create(context.Background(), &entity.Comment{
		ID: "c1", MangaID: "op", ChapterID: "chapter_3", UserID: "bob", UserName: "bob", Text: "hello",
	}))

	next := readFrame(t, conn)
	require.Equal(t, ws.MessageTypeCommentsPatch, next.Type)
	var patch ws.CommentsPatchData
	require.NoError(t, json.Unmarshal(next.Data, &patch))
	require.Len(t, patch.Upserts, 1)
	assert.Equal(t, "c1", patch.Upserts[0].ID)
	assert.False(t, patch.Upserts[0].CanEdit)
	assert.Equal(t, []string{"c1"}, patch.Order)
}

func TestWebSocket_LogoutClosesConnection(t *testing.T) {
	srv, _, manager := startWebSocketServer(t)

	conn, _, err := gorillaws.DefaultDialer.Dial(wsURL(srv, "?token=token-alice"), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return manager.ConnectedClients("alice") == 1 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, manager.DisconnectUser("alice"))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = conn.ReadMessage()
	assert.Error(t, err)
	assert.Zero(t, manager.ConnectedClients("alice"))
}

func TestWebSocket_ClosesConnectionAfterShutdown(t *testing.T) {
	store := memstore.New()
	manager := ws.NewManager(usecase.NewLiveUseCase(store.Comments(), store.Notifications()))
	ctx, cancel := context.WithCancel(context.Background())
	manager.Start(ctx)
	cancel()

	e := echo.New()
	e.HTTPErrorHandler = ErrorHandler
	e.GET("/ws", NewWebSocketHandler(manager, middleware.NewAuthMiddleware(prefixVerifier{}), nil).HandleWebSocket)
	srv := httptest.NewServer(e)
	defer srv.Close()

	conn, _, err := gorillaws.DefaultDialer.Dial(wsURL(srv, "?token=token-alice"), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = conn.ReadMessage()
	require.Error(t, err)
	netErr, ok := err.(net.Error)
	assert.False(t, ok && netErr.Timeout(), "connection was left open")
	assert.Zero(t, manager.ConnectedClients("alice"))
}
