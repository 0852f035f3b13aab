package service

import (
	"reflect"
	"sort"
	"sync"
	"time"

	"mangareader/internal/domain/entity"
)

const EmptyThreadPlaceholder = "No comments yet. Be the first to comment!"

// ReplyView is a reply as seen by one viewer.
type ReplyView struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	UserName   string    `json:"user_name"`
	UserAvatar string    `json:"user_avatar,omitempty"`
	Text       string    `json:"text"`
	Timestamp  time.Time `json:"timestamp"`
	Likes      int       `json:"likes"`
	LikedByMe  bool      `json:"liked_by_me"`
	CanEdit    bool      `json:"can_edit"`
	Edited     bool      `json:"edited"`
}

// CommentView is a comment as seen by one viewer, including the reply-panel state.
type CommentView struct {
	ID         string      `json:"id"`
	UserID     string      `json:"user_id"`
	UserName   string      `json:"user_name"`
	UserAvatar string      `json:"user_avatar,omitempty"`
	Text       string      `json:"text"`
	Timestamp  time.Time   `json:"timestamp"`
	Likes      int         `json:"likes"`
	LikedByMe  bool        `json:"liked_by_me"`
	CanEdit    bool        `json:"can_edit"`
	Edited     bool        `json:"edited"`
	ReplyCount int         `json:"reply_count"`
	Expanded   bool        `json:"expanded"`
	Replies    []ReplyView `json:"replies"`
}

// CommentThread is the rendered state of one chapter's comments.
type CommentThread struct {
	Comments    []CommentView `json:"comments"`
	Total       int           `json:"total"`
	Placeholder string        `json:"placeholder,omitempty"`
}

// BuildThread derives the viewer's thread: comments newest first, replies
// oldest first. An empty viewerID is an anonymous reader. expanded may be nil.
func BuildThread(comments []*entity.Comment, viewerID string, expanded func(commentID string) bool) CommentThread {
	views := make([]CommentView, 0, len(comments))
	for _, c := range comments {
		if c == nil {
			continue
		}
		views = append(views, buildCommentView(c, viewerID, expanded != nil && expanded(c.ID)))
	}

	sort.SliceStable(views, func(i, j int) bool {
		if !views[i].Timestamp.Equal(views[j].Timestamp) {
			return views[i].Timestamp.After(views[j].Timestamp)
		}
		return views[i].ID < views[j].ID
	})

	thread := CommentThread{Comments: views, Total: len(views)}
	if len(views) == 0 {
		thread.Placeholder = EmptyThreadPlaceholder
	}
	return thread
}

func buildCommentView(c *entity.Comment, viewerID string, expanded bool) CommentView {
	replies := make([]ReplyView, 0, len(c.Replies))
	for id, r := range c.Replies {
		if r == nil {
			continue
		}
		rid := r.ID
		if rid == "" {
			rid = id
		}
		replies = append(replies, ReplyView{
			ID:         rid,
			UserID:     r.UserID,
			UserName:   r.UserName,
			UserAvatar: r.UserAvatar,
			Text:       r.Text,
			Timestamp:  r.Timestamp.UTC(),
			Likes:      r.Likes,
			LikedByMe:  viewerID != "" && r.LikedBy[viewerID],
			CanEdit:    viewerID != "" && r.UserID == viewerID,
			Edited:     r.Edited,
		})
	}
	sort.SliceStable(replies, func(i, j int) bool {
		if !replies[i].Timestamp.Equal(replies[j].Timestamp) {
			return replies[i].Timestamp.Before(replies[j].Timestamp)
		}
		return replies[i].ID < replies[j].ID
	})

	return CommentView{
		ID:         c.ID,
		UserID:     c.UserID,
		UserName:   c.UserName,
		UserAvatar: c.UserAvatar,
		Text:       c.Text,
		Timestamp:  c.Timestamp.UTC(),
		Likes:      c.Likes,
		LikedByMe:  viewerID != "" && c.LikedBy[viewerID],
		CanEdit:    viewerID != "" && c.UserID == viewerID,
		Edited:     c.Edited,
		ReplyCount: len(replies),
		Expanded:   expanded,
		Replies:    replies,
	}
}

// ThreadView holds which reply panels a subscriber has open. It outlives
// individual snapshots so a realtime update never collapses an open panel.
type ThreadView struct {
	mu       sync.Mutex
	expanded map[string]bool
	changed  chan struct{}
}

func NewThreadView() *ThreadView {
	return &ThreadView{
		expanded: make(map[string]bool),
		changed:  make(chan struct{}, 1),
	}
}

// Toggle flips the panel for commentID and returns the new state.
func (v *ThreadView) Toggle(commentID string) bool {
	v.mu.Lock()
	open := !v.expanded[commentID]
	if open {
		v.expanded[commentID] = true
	} else {
		delete(v.expanded, commentID)
	}
	v.mu.Unlock()
	v.signal()
	return open
}

// Expand opens the panel for commentID.
func (v *ThreadView) Expand(commentID string) {
	v.mu.Lock()
	already := v.expanded[commentID]
	v.expanded[commentID] = true
	v.mu.Unlock()
	if !already {
		v.signal()
	}
}

func (v *ThreadView) IsExpanded(commentID string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.expanded[commentID]
}

// Retain forgets panels of comments that are no longer in the thread.
func (v *ThreadView) Retain(commentIDs []string) {
	keep := make(map[string]bool, len(commentIDs))
	for _, id := range commentIDs {
		keep[id] = true
	}
	v.mu.Lock()
	for id := range v.expanded {
		if !keep[id] {
			delete(v.expanded, id)
		}
	}
	v.mu.Unlock()
}

// Changed fires after Toggle or Expand altered the view.
func (v *ThreadView) Changed() <-chan struct{} {
	return v.changed
}

func (v *ThreadView) signal() {
	select {
	case v.changed <- struct{}{}:
	default:
	}
}

// ThreadPatch is a keyed difference between two renders of a thread.
type ThreadPatch struct {
	Upserts     []CommentView `json:"upserts,omitempty"`
	Removed     []string      `json:"removed,omitempty"`
	Order       []string      `json:"order"`
	Total       int           `json:"total"`
	Placeholder string        `json:"placeholder,omitempty"`

	orderChanged bool
}

// Empty reports whether applying the patch would change nothing.
func (p ThreadPatch) Empty() bool {
	return len(p.Upserts) == 0 && len(p.Removed) == 0 && !p.orderChanged
}

// DiffThreads computes the upserts, removals and order that turn prev into next.
func DiffThreads(prev, next CommentThread) ThreadPatch {
	before := make(map[string]CommentView, len(prev.Comments))
	prevOrder := make([]string, 0, len(prev.Comments))
	for _, c := range prev.Comments {
		before[c.ID] = c
		prevOrder = append(prevOrder, c.ID)
	}

	patch := ThreadPatch{
		Order:       make([]string, 0, len(next.Comments)),
		Total:       next.Total,
		Placeholder: next.Placeholder,
	}

	seen := make(map[string]bool, len(next.Comments))
	for _, c := range next.Comments {
		seen[c.ID] = true
		patch.Order = append(patch.Order, c.ID)
		if old, ok := before[c.ID]; !ok || !reflect.DeepEqual(old, c) {
			patch.Upserts = append(patch.Upserts, c)
		}
	}
	for _, id := range prevOrder {
		if !seen[id] {
			patch.Removed = append(patch.Removed, id)
		}
	}
	patch.orderChanged = !equalStrings(prevOrder, patch.Order)
	return patch
}

// IDs lists the comment ids of a thread in display order.
func (t CommentThread) IDs() []string {
	ids := make([]string, len(t.Comments))
	for i, c := range t.Comments {
		ids[i] = c.ID
	}
	return ids
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
