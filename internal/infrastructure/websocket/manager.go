package websocket

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"mangareader/internal/domain/service"
	"mangareader/pkg/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 64
)

// LiveFeed runs the listeners a client subscribes to. Both calls block until
// ctx is done.
type LiveFeed interface {
	WatchThread(ctx context.Context, viewerID, mangaID, chapterID string, view *service.ThreadView, emit func(*service.ThreadPatch)) error
	WatchInbox(ctx context.Context, userID string, emit func(service.Inbox)) error
}

// Client is one websocket connection. A user may hold several.
type Client struct {
	ID     string
	UserID string
	Conn   *websocket.Conn
	Send   chan []byte

	ctx    context.Context
	cancel context.CancelFunc

	mutex         sync.Mutex
	subscriptions map[string]*subscription
	listeners     sync.WaitGroup
}

type subscription struct {
	cancel context.CancelFunc
	view   *service.ThreadView
}

// Manager tracks every connected client by user.
type Manager struct {
	clients    map[string]map[string]*Client
	Register   chan *Client
	Unregister chan *Client
	live       LiveFeed
	mutex      sync.RWMutex
	stopped    chan struct{}
}

func NewManager(live LiveFeed) *Manager {
	return &Manager{
		clients:    make(map[string]map[string]*Client),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		live:       live,
		stopped:    make(chan struct{}),
	}
}

// NewClient wraps an upgraded connection. The client lives until its
// connection closes or the user is disconnected.
func NewClient(userID string, conn *websocket.Conn) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	return &Client{
		ID:            uuid.New().String(),
		UserID:        userID,
		Conn:          conn,
		Send:          make(chan []byte, sendBuffer),
		ctx:           ctx,
		cancel:        cancel,
		subscriptions: make(map[string]*subscription),
	}
}

// Start runs the manager's main loop until ctx is done. On exit every
// remaining client is closed.
func (m *Manager) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case client := <-m.Register:
				m.mutex.Lock()
				if m.clients[client.UserID] == nil {
					m.clients[client.UserID] = make(map[string]*Client)
				}
				m.clients[client.UserID][client.ID] = client
				m.mutex.Unlock()
				logger.Debug("WebSocket: client %s registered for user %s", client.ID, client.UserID)

			case client := <-m.Unregister:
				m.remove(client)
				client.close()
				logger.Debug("WebSocket: client %s unregistered", client.ID)

			case <-ctx.Done():
				close(m.stopped)
				m.mutex.Lock()
				all := m.clients
				m.clients = make(map[string]map[string]*Client)
				m.mutex.Unlock()
				for _, set := range all {
					for _, client := range set {
						client.close()
					}
				}
				return
			}
		}
	}()
}

// Add hands client to the main loop. Once the manager has stopped the
// client is closed instead and Add reports false.
func (m *Manager) Add(client *Client) bool {
	select {
	case m.Register <- client:
		return true
	case <-m.stopped:
		client.close()
		return false
	}
}

func (m *Manager) remove(client *Client) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if set, ok := m.clients[client.UserID]; ok {
		delete(set, client.ID)
		if len(set) == 0 {
			delete(m.clients, client.UserID)
		}
	}
}

// DisconnectUser closes every connection of userID and detaches their
// listeners. It is called on sign-out.
func (m *Manager) DisconnectUser(userID string) int {
	m.mutex.Lock()
	set := m.clients[userID]
	delete(m.clients, userID)
	m.mutex.Unlock()

	for _, client := range set {
		client.close()
	}
	return len(set)
}

// ConnectedClients returns how many connections userID holds.
func (m *Manager) ConnectedClients(userID string) int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.clients[userID])
}

// close cancels every listener and waits for them to return.
func (c *Client) close() {
	c.cancel()
	c.mutex.Lock()
	c.subscriptions = make(map[string]*subscription)
	c.mutex.Unlock()
	c.listeners.Wait()
	if c.Conn != nil {
		_ = c.Conn.Close()
	}
}

// Done is closed once the client has been shut down.
func (c *Client) Done() <-chan struct{} {
	return c.ctx.Done()
}

func (c *Client) enqueue(message []byte) {
	select {
	case c.Send <- message:
	case <-c.ctx.Done():
	default:
		logger.Warn("WebSocket: send buffer full for client %s, dropping message", c.ID)
	}
}

// ReadPump reads messages until the connection fails, then unregisters.
func (c *Client) ReadPump(m *Manager) {
	defer func() {
		select {
		case m.Unregister <- c:
		case <-c.ctx.Done():
			// Already closed by DisconnectUser or shutdown.
		case <-m.stopped:
			c.close()
		}
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("WebSocket: read error for client %s: %v", c.ID, err)
			}
			return
		}

		m.HandleClientMessage(c, message)
	}
}

// WritePump sends queued messages and keeps the connection alive with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
	}()

	for {
		select {
		case message := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				logger.Warn("WebSocket: write error for client %s: %v", c.ID, err)
				return
			}

		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.Conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
