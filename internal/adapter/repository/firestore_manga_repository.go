package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"mangareader/internal/domain/entity"
	"mangareader/internal/domain/repository"
	"mangareader/pkg/errors"
)

const mangaCollection = "manga_list"

type firestoreMangaRepository struct {
	client *firestore.Client
}

func NewFirestoreMangaRepository(client *firestore.Client) repository.MangaRepository {
	return &firestoreMangaRepository{
		client: client,
	}
}

func (r *firestoreMangaRepository) List(ctx context.Context) ([]*entity.Manga, error) {
	iter := r.client.Collection(mangaCollection).Documents(ctx)
	defer iter.Stop()

	var items []*entity.Manga
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, storeError(err, "Manga", "Failed to list manga")
		}

		var manga entity.Manga
		if err := doc.DataTo(&manga); err != nil {
			return nil, errors.Internal("Failed to parse manga data", err)
		}
		manga.ID = doc.Ref.ID
		manga.DropEmptyChapters()
		items = append(items, &manga)
	}

	return items, nil
}

func (r *firestoreMangaRepository) GetByID(ctx context.Context, id string) (*entity.Manga, error) {
	doc, err := r.client.Collection(mangaCollection).Doc(id).Get(ctx)
	if err != nil {
		return nil, storeError(err, "Manga", "Failed to get manga")
	}

	var manga entity.Manga
	if err := doc.DataTo(&manga); err != nil {
		return nil, errors.Internal("Failed to parse manga data", err)
	}
	manga.ID = doc.Ref.ID
	manga.DropEmptyChapters()

	return &manga, nil
}

func (r *firestoreMangaRepository) Upsert(ctx context.Context, manga *entity.Manga) error {
	if manga.ID == "" {
		return errors.Validation("manga id is required")
	}
	ref := r.client.Collection(mangaCollection).Doc(manga.ID)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		now := time.Now()
		doc, err := tx.Get(ref)
		switch {
		case status.Code(err) == codes.NotFound:
			manga.CreatedAt = now
		case err != nil:
			return err
		default:
			var existing entity.Manga
			if err := doc.DataTo(&existing); err != nil {
				return err
			}
			manga.CreatedAt = existing.CreatedAt
			manga.Views = existing.Views
			manga.Rating = existing.Rating
			manga.RatingCount = existing.RatingCount
			merged := existing.Chapters
			if merged == nil {
				merged = make(map[string]*entity.Chapter, len(manga.Chapters))
			}
			for key, ch := range manga.Chapters {
				merged[key] = ch
			}
			manga.Chapters = merged
		}
		manga.UpdatedAt = now
		return tx.Set(ref, manga)
	})

	return storeError(err, "Manga", "Failed to save manga")
}

func (r *firestoreMangaRepository) PutChapter(ctx context.Context, mangaID, key string, chapter *entity.Chapter) error {
	if chapter.CreatedAt.IsZero() {
		chapter.CreatedAt = time.Now()
	}

	// Chapter keys may contain dots ("chapter_3.5"), so the path is built
	// from segments rather than a dotted string.
	_, err := r.client.Collection(mangaCollection).Doc(mangaID).Update(ctx, []firestore.Update{
		{FieldPath: firestore.FieldPath{"chapters", key}, Value: chapter},
		{Path: "updatedAt", Value: time.Now()},
	})
	return storeError(err, "Manga", "Failed to save chapter")
}

func (r *firestoreMangaRepository) IncrementViews(ctx context.Context, id string) error {
	_, err := r.client.Collection(mangaCollection).Doc(id).Update(ctx, []firestore.Update{
		{Path: "views", Value: firestore.Increment(1)},
	})
	return storeError(err, "Manga", "Failed to record view")
}
