package usecase

import (
	"context"

	"mangareader/internal/domain/entity"
	"mangareader/internal/domain/repository"
	"mangareader/internal/domain/service"
	"mangareader/internal/infrastructure/ratelimit"
	"mangareader/pkg/errors"
	"mangareader/pkg/logger"
)

type RatingUseCase struct {
	ratingRepo repository.RatingRepository
	mangaRepo  repository.MangaRepository
	cache      CatalogCache
	limiter    RateLimiter
}

func NewRatingUseCase(ratingRepo repository.RatingRepository, mangaRepo repository.MangaRepository, cache CatalogCache, limiter RateLimiter) *RatingUseCase {
	return &RatingUseCase{
		ratingRepo: ratingRepo,
		mangaRepo:  mangaRepo,
		cache:      cache,
		limiter:    limiter,
	}
}

type RatingResult struct {
	MangaID  string  `json:"manga_id"`
	MyRating int     `json:"my_rating,omitempty"`
	Average  float64 `json:"average"`
	Count    int     `json:"count"`
}

func (uc *RatingUseCase) RateManga(ctx context.Context, uid, mangaID string, rating int) (*RatingResult, error) {
	if err := service.ValidateRating(rating); err != nil {
		return nil, errors.Validation(err.Error())
	}
	if mangaID == "" {
		return nil, errors.Validation("manga id is required")
	}
	if uc.limiter != nil {
		if ok, wait := uc.limiter.Allow(uid, ratelimit.ActionRate); !ok {
			return nil, errors.TooManyRequests("You are rating too often, try again shortly", wait)
		}
	}

	summary, err := uc.ratingRepo.Rate(ctx, &entity.UserRating{
		UserID:  uid,
		MangaID: mangaID,
		Rating:  rating,
	})
	if err != nil {
		return nil, err
	}
	uc.cache.InvalidateCatalog(ctx)

	return &RatingResult{
		MangaID:  mangaID,
		MyRating: rating,
		Average:  summary.Average,
		Count:    summary.Count,
	}, nil
}

// GetRating returns the manga's aggregate and, when uid is set, the caller's
// own rating.
func (uc *RatingUseCase) GetRating(ctx context.Context, uid, mangaID string) (*RatingResult, error) {
	manga, err := uc.mangaRepo.GetByID(ctx, mangaID)
	if err != nil {
		return nil, err
	}

	result := &RatingResult{
		MangaID: mangaID,
		Average: manga.Rating,
		Count:   manga.RatingCount,
	}
	if uid == "" {
		return result, nil
	}

	mine, err := uc.ratingRepo.Get(ctx, uid, mangaID)
	switch {
	case err == nil:
		result.MyRating = mine.Rating
	case !errors.Is(err, "NOT_FOUND"):
		return nil, err
	}
	return result, nil
}

// RecomputeAll rewrites the mean of mangaID, or of every manga when mangaID
// is empty. It returns how many records were updated.
func (uc *RatingUseCase) RecomputeAll(ctx context.Context, mangaID string) (int, error) {
	ids := []string{mangaID}
	if mangaID == "" {
		items, err := uc.mangaRepo.List(ctx)
		if err != nil {
			return 0, err
		}
		ids = ids[:0]
		for _, m := range items {
			ids = append(ids, m.ID)
		}
	}

	updated := 0
	for _, id := range ids {
		summary, err := uc.ratingRepo.Recompute(ctx, id)
		if err != nil {
			return updated, err
		}
		logger.Debug("Recomputed rating of %s: %.2f over %d", id, summary.Average, summary.Count)
		updated++
	}
	if updated > 0 {
		uc.cache.InvalidateCatalog(ctx)
	}
	return updated, nil
}
