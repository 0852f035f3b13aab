package websocket

import (
	"context"
	"encoding/json"
	"time"

	"mangareader/internal/domain/service"
	"mangareader/pkg/logger"
)

// Client to server.
const (
	MessageTypePing                     = "ping"
	MessageTypeSubscribeComments        = "subscribe_comments"
	MessageTypeUnsubscribeComments      = "unsubscribe_comments"
	MessageTypeToggleReplies            = "toggle_replies"
	MessageTypeSubscribeNotifications   = "subscribe_notifications"
	MessageTypeUnsubscribeNotifications = "unsubscribe_notifications"
)

// Server to client.
const (
	MessageTypePong          = "pong"
	MessageTypeSubscribed    = "subscribed"
	MessageTypeUnsubscribed  = "unsubscribed"
	MessageTypeCommentsPatch = "comments_patch"
	MessageTypeNotifications = "notifications"
	MessageTypeError         = "error"
)

const notificationsKey = "notifications"

type WSMessage struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp string      `json:"timestamp"`
}

type inboundMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type ThreadData struct {
	MangaID   string `json:"manga_id"`
	ChapterID string `json:"chapter_id"`
	CommentID string `json:"comment_id,omitempty"`
}

type CommentsPatchData struct {
	MangaID   string `json:"manga_id"`
	ChapterID string `json:"chapter_id"`
	*service.ThreadPatch
}

type SubscriptionData struct {
	Channel   string `json:"channel"`
	MangaID   string `json:"manga_id,omitempty"`
	ChapterID string `json:"chapter_id,omitempty"`
}

func threadKey(mangaID, chapterID string) string {
	return "comments:" + mangaID + ":" + chapterID
}

// HandleClientMessage processes one incoming websocket frame.
func (m *Manager) HandleClientMessage(client *Client, messageBytes []byte) {
	var msg inboundMessage
	if err := json.Unmarshal(messageBytes, &msg); err != nil {
		logger.Debug("WebSocket: malformed message from client %s: %v", client.ID, err)
		m.sendErrorToClient(client, "Invalid message format")
		return
	}

	switch msg.Type {
	case MessageTypePing:
		m.sendToClient(client, MessageTypePong, map[string]string{"status": "alive"})

	case MessageTypeSubscribeComments:
		var data ThreadData
		if !m.decode(client, msg.Data, &data) || !m.requireThread(client, &data) {
			return
		}
		m.subscribeComments(client, data)

	case MessageTypeUnsubscribeComments:
		var data ThreadData
		if !m.decode(client, msg.Data, &data) || !m.requireThread(client, &data) {
			return
		}
		if client.unsubscribe(threadKey(data.MangaID, data.ChapterID)) {
			m.sendToClient(client, MessageTypeUnsubscribed, SubscriptionData{Channel: "comments", MangaID: data.MangaID, ChapterID: data.ChapterID})
		}

	case MessageTypeToggleReplies:
		var data ThreadData
		if !m.decode(client, msg.Data, &data) || !m.requireThread(client, &data) {
			return
		}
		if data.CommentID == "" {
			m.sendErrorToClient(client, "comment_id is required")
			return
		}
		view := client.threadView(threadKey(data.MangaID, data.ChapterID))
		if view == nil {
			m.sendErrorToClient(client, "Not subscribed to this chapter")
			return
		}
		view.Toggle(data.CommentID)

	case MessageTypeSubscribeNotifications:
		m.subscribeNotifications(client)

	case MessageTypeUnsubscribeNotifications:
		if client.unsubscribe(notificationsKey) {
			m.sendToClient(client, MessageTypeUnsubscribed, SubscriptionData{Channel: notificationsKey})
		}

	default:
		logger.Debug("WebSocket: unknown message type '%s' from client %s", msg.Type, client.ID)
		m.sendErrorToClient(client, "Unknown message type")
	}
}

func (m *Manager) decode(client *Client, raw json.RawMessage, v interface{}) bool {
	if len(raw) == 0 {
		m.sendErrorToClient(client, "Missing message data")
		return false
	}
	if err := json.Unmarshal(raw, v); err != nil {
		m.sendErrorToClient(client, "Invalid message data")
		return false
	}
	return true
}

// requireThread rewrites data.ChapterID to its chapter key so "3", "3.0"
// and "chapter_3" address the same subscription.
func (m *Manager) requireThread(client *Client, data *ThreadData) bool {
	if data.MangaID == "" || data.ChapterID == "" {
		m.sendErrorToClient(client, "manga_id and chapter_id are required")
		return false
	}
	number, err := service.ParseChapterNumber(data.ChapterID)
	if err != nil {
		m.sendErrorToClient(client, "chapter_id must be a positive number")
		return false
	}
	data.ChapterID = service.ChapterKey(number)
	return true
}

func (m *Manager) subscribeComments(client *Client, data ThreadData) {
	view := service.NewThreadView()
	if data.CommentID != "" {
		view.Expand(data.CommentID)
	}

	m.sendToClient(client, MessageTypeSubscribed, SubscriptionData{Channel: "comments", MangaID: data.MangaID, ChapterID: data.ChapterID})
	client.subscribe(threadKey(data.MangaID, data.ChapterID), view, func(ctx context.Context) error {
		return m.live.WatchThread(ctx, client.UserID, data.MangaID, data.ChapterID, view, func(patch *service.ThreadPatch) {
			m.sendToClient(client, MessageTypeCommentsPatch, CommentsPatchData{
				MangaID:     data.MangaID,
				ChapterID:   data.ChapterID,
				ThreadPatch: patch,
			})
		})
	}, func(err error) {
		logger.Warn("WebSocket: comment listener for %s/%s stopped: %v", data.MangaID, data.ChapterID, err)
		m.sendErrorToClient(client, "Comment feed unavailable")
	})
}

func (m *Manager) subscribeNotifications(client *Client) {
	m.sendToClient(client, MessageTypeSubscribed, SubscriptionData{Channel: notificationsKey})
	client.subscribe(notificationsKey, nil, func(ctx context.Context) error {
		return m.live.WatchInbox(ctx, client.UserID, func(inbox service.Inbox) {
			m.sendToClient(client, MessageTypeNotifications, inbox)
		})
	}, func(err error) {
		logger.Warn("WebSocket: inbox listener for %s stopped: %v", client.UserID, err)
		m.sendErrorToClient(client, "Notification feed unavailable")
	})
}

// subscribe starts run under key, replacing any listener already there.
// onErr is called when run fails on its own.
func (c *Client) subscribe(key string, view *service.ThreadView, run func(context.Context) error, onErr func(error)) bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if c.ctx.Err() != nil {
		return false
	}

	if old, ok := c.subscriptions[key]; ok {
		old.cancel()
	}
	ctx, cancel := context.WithCancel(c.ctx)
	c.subscriptions[key] = &subscription{cancel: cancel, view: view}

	c.listeners.Add(1)
	go func() {
		defer c.listeners.Done()
		defer cancel()
		if err := run(ctx); err != nil && ctx.Err() == nil {
			onErr(err)
		}
	}()
	return true
}

func (c *Client) unsubscribe(key string) bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	sub, ok := c.subscriptions[key]
	if !ok {
		return false
	}
	sub.cancel()
	delete(c.subscriptions, key)
	return true
}

func (c *Client) threadView(key string) *service.ThreadView {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if sub, ok := c.subscriptions[key]; ok {
		return sub.view
	}
	return nil
}

func (m *Manager) sendToClient(client *Client, messageType string, data interface{}) {
	payload, err := json.Marshal(WSMessage{
		Type:      messageType,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		logger.Error("WebSocket: failed to marshal %s message: %v", messageType, err)
		return
	}
	client.enqueue(payload)
}

func (m *Manager) sendErrorToClient(client *Client, message string) {
	m.sendToClient(client, MessageTypeError, map[string]string{"message": message})
}
