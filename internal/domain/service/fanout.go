package service

import (
	"fmt"
	"net/url"
	"sort"
	"time"
	"unicode/utf8"

	"mangareader/internal/domain/entity"
)

const snippetLength = 80

// ReplyNotifications returns the inbox writes caused by reply on comment:
// a "reply" to the comment owner and a "comment_reply" to every earlier
// replier. Nobody is notified twice and the actor is never notified.
func ReplyNotifications(comment *entity.Comment, reply *entity.Reply, actor entity.Author, now time.Time) []*entity.Notification {
	notified := map[string]bool{actor.ID: true}
	var out []*entity.Notification

	base := func(userID, kind, message string) *entity.Notification {
		return &entity.Notification{
			UserID:     userID,
			Type:       kind,
			FromUser:   actor.ID,
			SenderName: actor.Name,
			MangaID:    comment.MangaID,
			ChapterID:  comment.ChapterID,
			CommentID:  comment.ID,
			ReplyID:    reply.ID,
			Message:    message,
			Timestamp:  now,
		}
	}

	if comment.UserID != "" && !notified[comment.UserID] {
		notified[comment.UserID] = true
		out = append(out, base(comment.UserID, entity.NotificationTypeReply,
			fmt.Sprintf("%s replied to your comment: %s", actor.Name, snippet(reply.Text))))
	}

	earlier := make([]*entity.Reply, 0, len(comment.Replies))
	for _, r := range comment.Replies {
		if r != nil && r.ID != reply.ID {
			earlier = append(earlier, r)
		}
	}
	sort.Slice(earlier, func(i, j int) bool { return earlier[i].Timestamp.Before(earlier[j].Timestamp) })
	for _, r := range earlier {
		if r.UserID == "" || notified[r.UserID] {
			continue
		}
		notified[r.UserID] = true
		out = append(out, base(r.UserID, entity.NotificationTypeCommentReply,
			fmt.Sprintf("%s also replied to a comment you replied to: %s", actor.Name, snippet(reply.Text))))
	}

	return out
}

// LikeNotification returns the "like" notification for liking comment, or
// reply within it when reply is non-nil. It returns nil for self-likes.
func LikeNotification(comment *entity.Comment, reply *entity.Reply, actor entity.Author, now time.Time) *entity.Notification {
	owner, what, text, replyID := comment.UserID, "comment", comment.Text, ""
	if reply != nil {
		owner, what, text, replyID = reply.UserID, "reply", reply.Text, reply.ID
	}
	if owner == "" || owner == actor.ID {
		return nil
	}

	return &entity.Notification{
		UserID:     owner,
		Type:       entity.NotificationTypeLike,
		FromUser:   actor.ID,
		SenderName: actor.Name,
		MangaID:    comment.MangaID,
		ChapterID:  comment.ChapterID,
		CommentID:  comment.ID,
		ReplyID:    replyID,
		Message:    fmt.Sprintf("%s liked your %s: %s", actor.Name, what, snippet(text)),
		Timestamp:  now,
	}
}

// Inbox is a user's notification list as shown in the bell dropdown.
type Inbox struct {
	Notifications []*entity.Notification `json:"notifications"`
	Unread        int                    `json:"unread"`
}

// NewInbox sorts items newest first and counts the unread ones.
func NewInbox(items []*entity.Notification) Inbox {
	if items == nil {
		items = []*entity.Notification{}
	}
	unread := SortNotifications(items)
	return Inbox{Notifications: items, Unread: unread}
}

// SortNotifications orders newest first and returns how many are unread.
func SortNotifications(items []*entity.Notification) int {
	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].Timestamp.Equal(items[j].Timestamp) {
			return items[i].Timestamp.After(items[j].Timestamp)
		}
		return items[i].ID > items[j].ID
	})
	unread := 0
	for _, n := range items {
		if !n.Read {
			unread++
		}
	}
	return unread
}

// ReaderLink is the reader page query that opens the thread a notification points at.
func ReaderLink(n *entity.Notification) string {
	q := url.Values{}
	q.Set("manga", n.MangaID)
	q.Set("chapter", n.ChapterID)
	if n.CommentID != "" {
		q.Set("comment", n.CommentID)
		q.Set("mode", "replies")
	}
	return "/v1/pages/chapter?" + q.Encode()
}

func snippet(text string) string {
	if utf8.RuneCountInString(text) <= snippetLength {
		return text
	}
	r := []rune(text)
	return string(r[:snippetLength]) + "…"
}
