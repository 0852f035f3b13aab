package memstore

import (
	"context"
	"time"

	"mangareader/internal/domain/entity"
	"mangareader/internal/domain/repository"
	"mangareader/internal/domain/service"
	"mangareader/pkg/errors"
)

type ratingRepo struct{ s *Store }

// recompute must be called with the lock held.
func (r *ratingRepo) recompute(m *entity.Manga) repository.RatingSummary {
	values := make([]int, 0, len(r.s.ratings[m.ID]))
	for _, rating := range r.s.ratings[m.ID] {
		values = append(values, rating.Rating)
	}
	var summary repository.RatingSummary
	summary.Average, summary.Count = service.AverageRating(values)
	m.Rating = summary.Average
	m.RatingCount = summary.Count
	return summary
}

func (r *ratingRepo) Rate(_ context.Context, rating *entity.UserRating) (repository.RatingSummary, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.fail != nil {
		return repository.RatingSummary{}, r.s.fail
	}

	m, ok := r.s.manga[rating.MangaID]
	if !ok {
		return repository.RatingSummary{}, errors.NotFound("Manga", nil)
	}

	rating.UpdatedAt = time.Now()
	if r.s.ratings[rating.MangaID] == nil {
		r.s.ratings[rating.MangaID] = make(map[string]*entity.UserRating)
	}
	c := *rating
	r.s.ratings[rating.MangaID][rating.UserID] = &c

	return r.recompute(m), nil
}

func (r *ratingRepo) Get(_ context.Context, userID, mangaID string) (*entity.UserRating, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.fail != nil {
		return nil, r.s.fail
	}

	rating, ok := r.s.ratings[mangaID][userID]
	if !ok {
		return nil, errors.NotFound("Rating", nil)
	}
	c := *rating
	return &c, nil
}

func (r *ratingRepo) ListByManga(_ context.Context, mangaID string) ([]*entity.UserRating, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.fail != nil {
		return nil, r.s.fail
	}

	out := make([]*entity.UserRating, 0, len(r.s.ratings[mangaID]))
	for _, rating := range r.s.ratings[mangaID] {
		c := *rating
		out = append(out, &c)
	}
	return out, nil
}

func (r *ratingRepo) Recompute(_ context.Context, mangaID string) (repository.RatingSummary, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.fail != nil {
		return repository.RatingSummary{}, r.s.fail
	}

	m, ok := r.s.manga[mangaID]
	if !ok {
		return repository.RatingSummary{}, errors.NotFound("Manga", nil)
	}
	return r.recompute(m), nil
}
