package entity

import (
	"time"
)

// Comment lives at comments/{mangaId}/chapters/{chapterId}/comments/{id}.
// Replies are embedded so one document holds a whole thread.
type Comment struct {
	ID         string            `json:"id" firestore:"id"`
	MangaID    string            `json:"manga_id" firestore:"mangaId"`
	ChapterID  string            `json:"chapter_id" firestore:"chapterId"`
	UserID     string            `json:"user_id" firestore:"userId"`
	UserName   string            `json:"user_name" firestore:"userName"`
	UserAvatar string            `json:"user_avatar,omitempty" firestore:"userAvatar"`
	Text       string            `json:"text" firestore:"text"`
	Timestamp  time.Time         `json:"timestamp" firestore:"timestamp"`
	Likes      int               `json:"likes" firestore:"likes"`
	LikedBy    map[string]bool   `json:"liked_by,omitempty" firestore:"likedBy"`
	Replies    map[string]*Reply `json:"replies,omitempty" firestore:"replies"`
	Edited     bool              `json:"edited" firestore:"edited"`
	EditedAt   *time.Time        `json:"edited_at,omitempty" firestore:"editedAt,omitempty"`
}

type Reply struct {
	ID         string          `json:"id" firestore:"id"`
	UserID     string          `json:"user_id" firestore:"userId"`
	UserName   string          `json:"user_name" firestore:"userName"`
	UserAvatar string          `json:"user_avatar,omitempty" firestore:"userAvatar"`
	Text       string          `json:"text" firestore:"text"`
	Timestamp  time.Time       `json:"timestamp" firestore:"timestamp"`
	Likes      int             `json:"likes" firestore:"likes"`
	LikedBy    map[string]bool `json:"liked_by,omitempty" firestore:"likedBy"`
	Edited     bool            `json:"edited" firestore:"edited"`
	EditedAt   *time.Time      `json:"edited_at,omitempty" firestore:"editedAt,omitempty"`
}

// Author is the denormalized identity stamped on comments and replies.
type Author struct {
	ID     string
	Name   string
	Avatar string
}
