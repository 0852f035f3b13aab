package service

import "fmt"

const (
	MinRating = 1
	MaxRating = 5
)

func ValidateRating(rating int) error {
	if rating < MinRating || rating > MaxRating {
		return fmt.Errorf("rating must be between %d and %d", MinRating, MaxRating)
	}
	return nil
}

// AverageRating is the arithmetic mean of every valid rating, together with
// how many ratings contributed. No ratings yields (0, 0).
func AverageRating(ratings []int) (float64, int) {
	sum, count := 0, 0
	for _, r := range ratings {
		if ValidateRating(r) != nil {
			continue
		}
		sum += r
		count++
	}
	if count == 0 {
		return 0, 0
	}
	return float64(sum) / float64(count), count
}
