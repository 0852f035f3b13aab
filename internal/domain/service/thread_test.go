package service

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mangareader/internal/domain/entity"
)

var t0 = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func sampleComments() []*entity.Comment {
	return []*entity.Comment{
		{
			ID: "c1", UserID: "alice", UserName: "Alice", Text: "first", Timestamp: t0,
			Likes: 1, LikedBy: map[string]bool{"bob": true},
			Replies: map[string]*entity.Reply{
				"r2": {ID: "r2", UserID: "alice", Text: "later", Timestamp: t0.Add(2 * time.Minute)},
				"r1": {ID: "r1", UserID: "bob", Text: "earlier", Timestamp: t0.Add(time.Minute)},
			},
		},
		{ID: "c2", UserID: "bob", UserName: "Bob", Text: "second", Timestamp: t0.Add(time.Hour)},
	}
}

func TestBuildThread_EmptyShowsPlaceholder(t *testing.T) {
	thread := BuildThread(nil, "alice", nil)

	assert.Empty(t, thread.Comments)
	assert.Equal(t, 0, thread.Total)
	assert.Equal(t, EmptyThreadPlaceholder, thread.Placeholder)
}

func TestBuildThread_ViewerDerivedFields(t *testing.T) {
	thread := BuildThread(sampleComments(), "bob", func(id string) bool { return id == "c1" })
	require.Len(t, thread.Comments, 2)
	assert.Empty(t, thread.Placeholder)

	// newest comment first
	assert.Equal(t, []string{"c2", "c1"}, thread.IDs())

	c2, c1 := thread.Comments[0], thread.Comments[1]
	assert.True(t, c2.CanEdit)
	assert.False(t, c2.Expanded)

	assert.False(t, c1.CanEdit)
	assert.True(t, c1.LikedByMe)
	assert.True(t, c1.Expanded)
	assert.Equal(t, 2, c1.ReplyCount)
	// oldest reply first
	assert.Equal(t, "r1", c1.Replies[0].ID)
	assert.True(t, c1.Replies[0].CanEdit)
	assert.False(t, c1.Replies[1].CanEdit)
}

func TestBuildThread_AnonymousViewer(t *testing.T) {
	thread := BuildThread(sampleComments(), "", nil)
	for _, c := range thread.Comments {
		assert.False(t, c.CanEdit)
		assert.False(t, c.LikedByMe)
	}
}

func TestDiffThreads_OnlyChangedCommentsAreSent(t *testing.T) {
	comments := sampleComments()
	prev := BuildThread(comments, "bob", nil)

	comments[1].Text = "second (edited)"
	comments[1].Edited = true
	comments = append(comments, &entity.Comment{ID: "c3", UserID: "carol", Text: "third", Timestamp: t0.Add(2 * time.Hour)})
	next := BuildThread(comments, "bob", nil)

	patch := DiffThreads(prev, next)

	assert.False(t, patch.Empty())
	assert.Equal(t, []string{"c3", "c2", "c1"}, patch.Order)
	upserted := make([]string, 0, len(patch.Upserts))
	for _, u := range patch.Upserts {
		upserted = append(upserted, u.ID)
	}
	assert.Equal(t, []string{"c3", "c2"}, upserted)
	assert.Empty(t, patch.Removed)
}

func TestDiffThreads_Removal(t *testing.T) {
	comments := sampleComments()
	prev := BuildThread(comments, "", nil)
	next := BuildThread(comments[:1], "", nil)

	want := ThreadPatch{Order: []string{"c1"}, Removed: []string{"c2"}, Total: 1}
	got := DiffThreads(prev, next)
	if diff := cmp.Diff(want, got, cmpopts.IgnoreUnexported(ThreadPatch{})); diff != "" {
		t.Errorf("DiffThreads mismatch (-want +got):\n%s", diff)
	}
}

func TestDiffThreads_NoChange(t *testing.T) {
	prev := BuildThread(sampleComments(), "bob", nil)
	next := BuildThread(sampleComments(), "bob", nil)

	assert.True(t, DiffThreads(prev, next).Empty())
}

func TestDiffThreads_ToLastComment(t *testing.T) {
	prev := BuildThread(sampleComments(), "", nil)
	patch := DiffThreads(prev, BuildThread(nil, "", nil))

	assert.ElementsMatch(t, []string{"c1", "c2"}, patch.Removed)
	assert.Equal(t, EmptyThreadPlaceholder, patch.Placeholder)
	assert.Empty(t, patch.Order)
}

func TestThreadView_StateSurvivesRebuild(t *testing.T) {
	view := NewThreadView()
	comments := sampleComments()

	assert.True(t, view.Toggle("c1"))
	select {
	case <-view.Changed():
	default:
		t.Fatal("toggle did not signal a change")
	}

	// a realtime update arrives: c2 changes, c1's panel must stay open
	prev := BuildThread(comments, "bob", view.IsExpanded)
	comments[1].Likes = 5
	next := BuildThread(comments, "bob", view.IsExpanded)

	patch := DiffThreads(prev, next)
	require.Len(t, patch.Upserts, 1)
	assert.Equal(t, "c2", patch.Upserts[0].ID)
	assert.True(t, next.Comments[1].Expanded)

	assert.False(t, view.Toggle("c1"))
	assert.False(t, view.IsExpanded("c1"))
}

func TestThreadView_Retain(t *testing.T) {
	view := NewThreadView()
	view.Expand("c1")
	view.Expand("gone")

	view.Retain([]string{"c1", "c2"})

	assert.True(t, view.IsExpanded("c1"))
	assert.False(t, view.IsExpanded("gone"))
}
