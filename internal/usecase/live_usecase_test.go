package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"mangareader/internal/domain/entity"
	"mangareader/internal/domain/service"
)

func nextPatch(t *testing.T, patches <-chan *service.ThreadPatch) *service.ThreadPatch {
	t.Helper()
	select {
	case p := <-patches:
		return p
	case <-time.After(2 * time.Second):
		t.Fatal("no patch")
		return nil
	}
}

func TestWatchThread_PatchesOnlyWhatChanged(t *testing.T) {
	defer goleak.VerifyNone(t)

	uc, store := newCommentUseCase(t)
	live := NewLiveUseCase(store.Comments(), store.Notifications())
	ctx, cancel := context.WithCancel(context.Background())

	first, err := uc.SubmitComment(context.Background(), thread, "alice", "first")
	require.NoError(t, err)

	view := service.NewThreadView()
	patches := make(chan *service.ThreadPatch, 16)
	done := make(chan error, 1)
	go func() {
		done <- live.WatchThread(ctx, "bob", "op", "3", view, func(p *service.ThreadPatch) { patches <- p })
	}()

	initial := nextPatch(t, patches)
	require.Len(t, initial.Upserts, 1)
	assert.Equal(t, []string{first.ID}, initial.Order)

	second, err := uc.SubmitComment(context.Background(), thread, "carol", "second")
	require.NoError(t, err)
	added := nextPatch(t, patches)
	require.Len(t, added.Upserts, 1)
	assert.Equal(t, second.ID, added.Upserts[0].ID)
	assert.Equal(t, []string{second.ID, first.ID}, added.Order)

	view.Toggle(first.ID)
	toggled := nextPatch(t, patches)
	require.Len(t, toggled.Upserts, 1)
	assert.True(t, toggled.Upserts[0].Expanded)

	// A reply arriving later keeps the panel open.
	_, err = uc.SubmitReply(context.Background(), thread, first.ID, "carol", "reply")
	require.NoError(t, err)
	replied := nextPatch(t, patches)
	require.Len(t, replied.Upserts, 1)
	assert.True(t, replied.Upserts[0].Expanded)
	assert.Equal(t, 1, replied.Upserts[0].ReplyCount)

	require.NoError(t, uc.DeleteComment(context.Background(), thread, first.ID, "alice"))
	removed := nextPatch(t, patches)
	assert.Equal(t, []string{first.ID}, removed.Removed)
	assert.False(t, view.IsExpanded(first.ID))

	cancel()
	assert.NoError(t, <-done)
}

func TestWatchThread_EmptyThreadGetsPlaceholder(t *testing.T) {
	defer goleak.VerifyNone(t)

	_, store := newCommentUseCase(t)
	live := NewLiveUseCase(store.Comments(), store.Notifications())
	ctx, cancel := context.WithCancel(context.Background())

	patches := make(chan *service.ThreadPatch, 4)
	done := make(chan error, 1)
	go func() {
		done <- live.WatchThread(ctx, "", "op", "chapter_9", service.NewThreadView(), func(p *service.ThreadPatch) { patches <- p })
	}()

	initial := nextPatch(t, patches)
	assert.Equal(t, service.EmptyThreadPlaceholder, initial.Placeholder)
	assert.Empty(t, initial.Order)

	cancel()
	assert.NoError(t, <-done)
}

func TestWatchThread_RejectsBadChapter(t *testing.T) {
	_, store := newCommentUseCase(t)
	live := NewLiveUseCase(store.Comments(), store.Notifications())

	err := live.WatchThread(context.Background(), "", "op", "x", service.NewThreadView(), func(*service.ThreadPatch) {})

	assert.Error(t, err)
}

func TestWatchInbox(t *testing.T) {
	defer goleak.VerifyNone(t)

	_, store := newCommentUseCase(t)
	live := NewLiveUseCase(store.Comments(), store.Notifications())
	ctx, cancel := context.WithCancel(context.Background())

	inboxes := make(chan service.Inbox, 4)
	done := make(chan error, 1)
	go func() {
		done <- live.WatchInbox(ctx, "alice", func(i service.Inbox) { inboxes <- i })
	}()

	assert.Zero(t, (<-inboxes).Unread)
	require.NoError(t, store.Notifications().CreateAll(context.Background(), []*entity.Notification{
		{UserID: "alice", Type: entity.NotificationTypeLike, CommentID: "c1"},
	}))
	select {
	case inbox := <-inboxes:
		assert.Equal(t, 1, inbox.Unread)
	case <-time.After(2 * time.Second):
		t.Fatal("inbox not updated")
	}

	cancel()
	assert.NoError(t, <-done)
}
