package entity

import (
	"time"
)

// Manga is a catalog entry. Chapters are keyed by chapter key ("chapter_12").
type Manga struct {
	ID          string              `json:"id" firestore:"id"`
	Name        string              `json:"name" firestore:"name"`
	Thumbnail   string              `json:"thumbnail" firestore:"thumbnail"`
	Description string              `json:"description" firestore:"description"`
	Views       int64               `json:"views" firestore:"views"`
	Rating      float64             `json:"rating" firestore:"rating"`
	RatingCount int                 `json:"rating_count" firestore:"ratingCount"`
	Chapters    map[string]*Chapter `json:"chapters,omitempty" firestore:"chapters"`
	CreatedAt   time.Time           `json:"created_at" firestore:"createdAt"`
	UpdatedAt   time.Time           `json:"updated_at" firestore:"updatedAt"`
}

type Chapter struct {
	Title       string    `json:"chapter_name" firestore:"chapter_name"`
	Images      []string  `json:"images" firestore:"images"`
	Description string    `json:"chapter_description,omitempty" firestore:"chapter_description,omitempty"`
	CreatedAt   time.Time `json:"created_at" firestore:"createdAt"`
}

// ChapterKeys returns the keys of the chapter map in no particular order.
// Null entries are left out.
func (m *Manga) ChapterKeys() []string {
	keys := make([]string, 0, len(m.Chapters))
	for k, ch := range m.Chapters {
		if ch != nil {
			keys = append(keys, k)
		}
	}
	return keys
}

// DropEmptyChapters removes null chapter entries.
func (m *Manga) DropEmptyChapters() {
	for k, ch := range m.Chapters {
		if ch == nil {
			delete(m.Chapters, k)
		}
	}
}
