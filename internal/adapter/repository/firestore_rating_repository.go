package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"mangareader/internal/domain/entity"
	"mangareader/internal/domain/repository"
	"mangareader/internal/domain/service"
	"mangareader/pkg/errors"
)

type firestoreRatingRepository struct {
	client *firestore.Client
}

func NewFirestoreRatingRepository(client *firestore.Client) repository.RatingRepository {
	return &firestoreRatingRepository{
		client: client,
	}
}

func (r *firestoreRatingRepository) ratingRef(userID, mangaID string) *firestore.DocumentRef {
	return r.client.Collection("user_ratings").Doc(userID).Collection("ratings").Doc(mangaID)
}

func (r *firestoreRatingRepository) byManga(mangaID string) firestore.Query {
	return r.client.CollectionGroup("ratings").Where("mangaId", "==", mangaID)
}

func (r *firestoreRatingRepository) Rate(ctx context.Context, rating *entity.UserRating) (repository.RatingSummary, error) {
	mangaRef := r.client.Collection(mangaCollection).Doc(rating.MangaID)
	rating.UpdatedAt = time.Now()

	var summary repository.RatingSummary
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		// Reads first: the manga must exist and every other user's rating is
		// needed for the mean.
		if _, err := tx.Get(mangaRef); err != nil {
			return err
		}
		docs, err := tx.Documents(r.byManga(rating.MangaID)).GetAll()
		if err != nil {
			return err
		}

		values := []int{rating.Rating}
		for _, doc := range docs {
			var other entity.UserRating
			if err := doc.DataTo(&other); err != nil {
				return err
			}
			if other.UserID == rating.UserID {
				continue
			}
			values = append(values, other.Rating)
		}
		summary.Average, summary.Count = service.AverageRating(values)

		if err := tx.Set(r.ratingRef(rating.UserID, rating.MangaID), rating); err != nil {
			return err
		}
		return tx.Update(mangaRef, []firestore.Update{
			{Path: "rating", Value: summary.Average},
			{Path: "ratingCount", Value: summary.Count},
		})
	})
	if err != nil {
		return repository.RatingSummary{}, storeError(err, "Manga", "Failed to save rating")
	}

	return summary, nil
}

func (r *firestoreRatingRepository) Get(ctx context.Context, userID, mangaID string) (*entity.UserRating, error) {
	doc, err := r.ratingRef(userID, mangaID).Get(ctx)
	if err != nil {
		return nil, storeError(err, "Rating", "Failed to get rating")
	}

	var rating entity.UserRating
	if err := doc.DataTo(&rating); err != nil {
		return nil, errors.Internal("Failed to parse rating data", err)
	}
	return &rating, nil
}

func (r *firestoreRatingRepository) ListByManga(ctx context.Context, mangaID string) ([]*entity.UserRating, error) {
	iter := r.byManga(mangaID).Documents(ctx)
	defer iter.Stop()

	var ratings []*entity.UserRating
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, storeError(err, "Ratings", "Failed to list ratings")
		}

		var rating entity.UserRating
		if err := doc.DataTo(&rating); err != nil {
			return nil, errors.Internal("Failed to parse rating data", err)
		}
		ratings = append(ratings, &rating)
	}
	return ratings, nil
}

func (r *firestoreRatingRepository) Recompute(ctx context.Context, mangaID string) (repository.RatingSummary, error) {
	mangaRef := r.client.Collection(mangaCollection).Doc(mangaID)

	var summary repository.RatingSummary
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(mangaRef); err != nil {
			return err
		}
		docs, err := tx.Documents(r.byManga(mangaID)).GetAll()
		if err != nil {
			return err
		}

		values := make([]int, 0, len(docs))
		for _, doc := range docs {
			var rating entity.UserRating
			if err := doc.DataTo(&rating); err != nil {
				return err
			}
			values = append(values, rating.Rating)
		}
		summary.Average, summary.Count = service.AverageRating(values)

		return tx.Update(mangaRef, []firestore.Update{
			{Path: "rating", Value: summary.Average},
			{Path: "ratingCount", Value: summary.Count},
		})
	})
	if err != nil {
		return repository.RatingSummary{}, storeError(err, "Manga", "Failed to recompute rating")
	}

	return summary, nil
}
