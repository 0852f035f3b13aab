package entity

import (
	"time"
)

const (
	NotificationTypeLike         = "like"
	NotificationTypeReply        = "reply"
	NotificationTypeCommentReply = "comment_reply"
)

// Notification lives at notifications/{userId}/inbox/{id}.
type Notification struct {
	ID         string    `json:"id" firestore:"id"`
	UserID     string    `json:"user_id" firestore:"userId"`
	Type       string    `json:"type" firestore:"type"`
	FromUser   string    `json:"from_user" firestore:"fromUser"`
	SenderName string    `json:"sender_name" firestore:"senderName"`
	MangaID    string    `json:"manga_id" firestore:"mangaId"`
	ChapterID  string    `json:"chapter_id" firestore:"chapterId"`
	CommentID  string    `json:"comment_id" firestore:"commentId"`
	ReplyID    string    `json:"reply_id,omitempty" firestore:"replyId,omitempty"`
	Message    string    `json:"message" firestore:"message"`
	Timestamp  time.Time `json:"timestamp" firestore:"timestamp"`
	Read       bool      `json:"read" firestore:"read"`
}
