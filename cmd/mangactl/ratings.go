package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mangareader/internal/infrastructure/cache"
	"mangareader/internal/usecase"
)

func newRecomputeRatingsCmd(withBackend runWithBackend) *cobra.Command {
	var mangaID string

	cmd := &cobra.Command{
		Use:   "recompute-ratings",
		Short: "Rewrite the mean rating of one manga or of the whole catalog",
		Args:  cobra.NoArgs,
		RunE: withBackend(func(cmd *cobra.Command, b *backend) error {
			ratings := usecase.NewRatingUseCase(b.ratings, b.manga, cache.NoopCache{}, nil)
			updated, err := ratings.RecomputeAll(cmd.Context(), mangaID)
			if err != nil {
				return fmt.Errorf("recomputed %d manga: %w", updated, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "recomputed %d manga\n", updated)
			return nil
		}),
	}
	cmd.Flags().StringVar(&mangaID, "manga", "", "only this manga id")
	return cmd
}
