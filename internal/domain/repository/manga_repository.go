package repository

import (
	"context"

	"mangareader/internal/domain/entity"
)

type MangaRepository interface {
	List(ctx context.Context) ([]*entity.Manga, error)
	GetByID(ctx context.Context, id string) (*entity.Manga, error)
	// Upsert creates the manga or merges it into the stored record. Counters
	// (views, rating) of an existing record are kept; chapters are merged by key.
	Upsert(ctx context.Context, manga *entity.Manga) error
	PutChapter(ctx context.Context, mangaID, key string, chapter *entity.Chapter) error
	IncrementViews(ctx context.Context, id string) error
}
