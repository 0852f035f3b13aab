package memstore

import (
	"context"
	"sort"
	"time"

	"mangareader/internal/domain/entity"
	"mangareader/pkg/errors"
)

type mangaRepo struct{ s *Store }

func (r *mangaRepo) List(_ context.Context) ([]*entity.Manga, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.fail != nil {
		return nil, r.s.fail
	}

	items := make([]*entity.Manga, 0, len(r.s.manga))
	for _, m := range r.s.manga {
		items = append(items, cloneManga(m))
	}
	// Firestore returns documents ordered by id.
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (r *mangaRepo) GetByID(_ context.Context, id string) (*entity.Manga, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.fail != nil {
		return nil, r.s.fail
	}

	m, ok := r.s.manga[id]
	if !ok {
		return nil, errors.NotFound("Manga", nil)
	}
	return cloneManga(m), nil
}

func (r *mangaRepo) Upsert(_ context.Context, manga *entity.Manga) error {
	if manga.ID == "" {
		return errors.Validation("manga id is required")
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.fail != nil {
		return r.s.fail
	}

	now := time.Now()
	if existing, ok := r.s.manga[manga.ID]; ok {
		manga.CreatedAt = existing.CreatedAt
		manga.Views = existing.Views
		manga.Rating = existing.Rating
		manga.RatingCount = existing.RatingCount
		merged := cloneManga(existing).Chapters
		if merged == nil {
			merged = make(map[string]*entity.Chapter, len(manga.Chapters))
		}
		for key, ch := range manga.Chapters {
			merged[key] = ch
		}
		manga.Chapters = merged
	} else {
		manga.CreatedAt = now
	}
	manga.UpdatedAt = now
	r.s.manga[manga.ID] = cloneManga(manga)
	return nil
}

func (r *mangaRepo) PutChapter(_ context.Context, mangaID, key string, chapter *entity.Chapter) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.fail != nil {
		return r.s.fail
	}

	m, ok := r.s.manga[mangaID]
	if !ok {
		return errors.NotFound("Manga", nil)
	}
	if chapter.CreatedAt.IsZero() {
		chapter.CreatedAt = time.Now()
	}
	if m.Chapters == nil {
		m.Chapters = make(map[string]*entity.Chapter)
	}
	m.Chapters[key] = cloneChapter(chapter)
	m.UpdatedAt = time.Now()
	return nil
}

func (r *mangaRepo) IncrementViews(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.fail != nil {
		return r.s.fail
	}

	m, ok := r.s.manga[id]
	if !ok {
		return errors.NotFound("Manga", nil)
	}
	m.Views++
	return nil
}
