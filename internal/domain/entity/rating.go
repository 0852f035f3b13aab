package entity

import (
	"time"
)

// UserRating lives at user_ratings/{userId}/ratings/{mangaId}.
type UserRating struct {
	UserID    string    `json:"user_id" firestore:"userId"`
	MangaID   string    `json:"manga_id" firestore:"mangaId"`
	Rating    int       `json:"rating" firestore:"rating"`
	UpdatedAt time.Time `json:"updated_at" firestore:"updatedAt"`
}
