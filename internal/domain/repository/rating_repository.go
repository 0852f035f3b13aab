package repository

import (
	"context"

	"mangareader/internal/domain/entity"
)

// RatingSummary is the aggregate stored on the manga record.
type RatingSummary struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

type RatingRepository interface {
	// Rate stores the user's rating and rewrites the manga's mean in the
	// same transaction.
	Rate(ctx context.Context, rating *entity.UserRating) (RatingSummary, error)
	Get(ctx context.Context, userID, mangaID string) (*entity.UserRating, error)
	ListByManga(ctx context.Context, mangaID string) ([]*entity.UserRating, error)
	Recompute(ctx context.Context, mangaID string) (RatingSummary, error)
}
