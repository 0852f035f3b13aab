package websocket

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"mangareader/internal/domain/service"
)

type fakeFeed struct {
	threads atomic.Int32
	inboxes atomic.Int32
	toggled chan struct{}
}

func (f *fakeFeed) WatchThread(ctx context.Context, viewerID, mangaID, chapterID string, view *service.ThreadView, emit func(*service.ThreadPatch)) error {
	f.threads.Add(1)
	defer f.threads.Add(-1)
	emit(&service.ThreadPatch{Order: []string{}, Placeholder: service.EmptyThreadPlaceholder})
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-view.Changed():
			if f.toggled != nil {
				f.toggled <- struct{}{}
			}
		}
	}
}

func (f *fakeFeed) WatchInbox(ctx context.Context, userID string, emit func(service.Inbox)) error {
	f.inboxes.Add(1)
	defer f.inboxes.Add(-1)
	emit(service.NewInbox(nil))
	<-ctx.Done()
	return nil
}

func newTestClient(userID string) *Client {
	return NewClient(userID, nil)
}

func readMessage(t *testing.T, c *Client) WSMessage {
	t.Helper()
	select {
	case raw := <-c.Send:
		var msg WSMessage
		require.NoError(t, json.Unmarshal(raw, &msg))
		return msg
	case <-time.After(time.Second):
		t.Fatal("no message")
		return WSMessage{}
	}
}

func send(m *Manager, c *Client, msgType string, data interface{}) {
	raw, _ := json.Marshal(map[string]interface{}{"type": msgType, "data": data})
	m.HandleClientMessage(c, raw)
}

func TestPing(t *testing.T) {
	m := NewManager(&fakeFeed{})
	c := newTestClient("u1")
	defer c.close()

	send(m, c, MessageTypePing, nil)

	assert.Equal(t, MessageTypePong, readMessage(t, c).Type)
}

func TestUnknownAndMalformedMessages(t *testing.T) {
	m := NewManager(&fakeFeed{})
	c := newTestClient("u1")
	defer c.close()

	m.HandleClientMessage(c, []byte("{not json"))
	assert.Equal(t, MessageTypeError, readMessage(t, c).Type)

	send(m, c, "dance", nil)
	assert.Equal(t, MessageTypeError, readMessage(t, c).Type)

	send(m, c, MessageTypeSubscribeComments, map[string]string{"manga_id": "m"})
	assert.Equal(t, MessageTypeError, readMessage(t, c).Type)
}

func TestSubscribeComments_ToggleAndUnsubscribe(t *testing.T) {
	defer goleak.VerifyNone(t)

	feed := &fakeFeed{toggled: make(chan struct{}, 1)}
	m := NewManager(feed)
	c := newTestClient("u1")
	thread := map[string]string{"manga_id": "m", "chapter_id": "chapter_1"}

	send(m, c, MessageTypeSubscribeComments, thread)
	assert.Equal(t, MessageTypeSubscribed, readMessage(t, c).Type)
	assert.Equal(t, MessageTypeCommentsPatch, readMessage(t, c).Type)

	send(m, c, MessageTypeToggleReplies, map[string]string{"manga_id": "m", "chapter_id": "chapter_1", "comment_id": "c1"})
	select {
	case <-feed.toggled:
	case <-time.After(time.Second):
		t.Fatal("toggle did not reach the listener")
	}
	assert.True(t, c.threadView(threadKey("m", "chapter_1")).IsExpanded("c1"))

	send(m, c, MessageTypeUnsubscribeComments, thread)
	assert.Equal(t, MessageTypeUnsubscribed, readMessage(t, c).Type)
	assert.Eventually(t, func() bool { return feed.threads.Load() == 0 }, time.Second, 10*time.Millisecond)

	c.close()
}

func TestToggleReplies_RequiresSubscription(t *testing.T) {
	m := NewManager(&fakeFeed{})
	c := newTestClient("u1")
	defer c.close()

	send(m, c, MessageTypeToggleReplies, map[string]string{"manga_id": "m", "chapter_id": "chapter_1", "comment_id": "c1"})

	assert.Equal(t, MessageTypeError, readMessage(t, c).Type)
}

func TestResubscribeReplacesListener(t *testing.T) {
	defer goleak.VerifyNone(t)

	feed := &fakeFeed{}
	m := NewManager(feed)
	c := newTestClient("u1")
	thread := map[string]string{"manga_id": "m", "chapter_id": "chapter_1"}

	send(m, c, MessageTypeSubscribeComments, thread)
	send(m, c, MessageTypeSubscribeComments, thread)

	assert.Eventually(t, func() bool { return feed.threads.Load() == 1 }, time.Second, 10*time.Millisecond)
	c.close()
	assert.Equal(t, int32(0), feed.threads.Load())
}

func TestChapterSpellingsShareOneSubscription(t *testing.T) {
	defer goleak.VerifyNone(t)

	feed := &fakeFeed{toggled: make(chan struct{}, 1)}
	m := NewManager(feed)
	c := newTestClient("u1")

	send(m, c, MessageTypeSubscribeComments, map[string]string{"manga_id": "m", "chapter_id": "3"})
	subscribed := readMessage(t, c)
	require.Equal(t, MessageTypeSubscribed, subscribed.Type)
	assert.Equal(t, "chapter_3", subscribed.Data.(map[string]interface{})["chapter_id"])
	assert.Equal(t, MessageTypeCommentsPatch, readMessage(t, c).Type)

	send(m, c, MessageTypeToggleReplies, map[string]string{"manga_id": "m", "chapter_id": "chapter_3", "comment_id": "c1"})
	select {
	case <-feed.toggled:
	case <-time.After(time.Second):
		t.Fatal("toggle did not reach the listener")
	}
	assert.True(t, c.threadView(threadKey("m", "chapter_3")).IsExpanded("c1"))

	send(m, c, MessageTypeSubscribeComments, map[string]string{"manga_id": "m", "chapter_id": "3.0"})
	assert.Eventually(t, func() bool { return feed.threads.Load() == 1 }, time.Second, 10*time.Millisecond)

	c.close()
	assert.Equal(t, int32(0), feed.threads.Load())
}

func TestSubscribeComments_RejectsNonNumericChapter(t *testing.T) {
	feed := &fakeFeed{}
	m := NewManager(feed)
	c := newTestClient("u1")
	defer c.close()

	send(m, c, MessageTypeSubscribeComments, map[string]string{"manga_id": "m", "chapter_id": "extra"})

	assert.Equal(t, MessageTypeError, readMessage(t, c).Type)
	assert.Zero(t, feed.threads.Load())
}

func TestDisconnectUser_DetachesEveryListener(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	feed := &fakeFeed{}
	m := NewManager(feed)
	m.Start(ctx)

	first, second := newTestClient("u1"), newTestClient("u1")
	other := newTestClient("u2")
	for _, c := range []*Client{first, second, other} {
		require.True(t, m.Add(c))
	}
	require.Eventually(t, func() bool { return m.ConnectedClients("u1") == 2 }, time.Second, 10*time.Millisecond)

	send(m, first, MessageTypeSubscribeComments, map[string]string{"manga_id": "m", "chapter_id": "chapter_1"})
	send(m, second, MessageTypeSubscribeNotifications, nil)
	send(m, other, MessageTypeSubscribeNotifications, nil)
	require.Eventually(t, func() bool {
		return feed.threads.Load() == 1 && feed.inboxes.Load() == 2
	}, time.Second, 10*time.Millisecond)

	assert.Equal(t, 2, m.DisconnectUser("u1"))

	assert.Equal(t, int32(0), feed.threads.Load())
	assert.Equal(t, int32(1), feed.inboxes.Load())
	assert.Equal(t, 0, m.ConnectedClients("u1"))
	<-first.Done()
	<-second.Done()

	cancel()
	require.Eventually(t, func() bool { return feed.inboxes.Load() == 0 }, time.Second, 10*time.Millisecond)
}

func TestAdd_AfterStopClosesClient(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	m := NewManager(&fakeFeed{})
	m.Start(ctx)
	cancel()

	c := newTestClient("u1")
	added := make(chan bool, 1)
	go func() { added <- m.Add(c) }()

	select {
	case ok := <-added:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("Add blocked on a stopped manager")
	}
	<-c.Done()
	assert.Zero(t, m.ConnectedClients("u1"))
}
