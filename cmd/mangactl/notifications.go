package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mangareader/internal/usecase"
)

func newPruneNotificationsCmd(withBackend runWithBackend) *cobra.Command {
	var commentID string

	cmd := &cobra.Command{
		Use:   "prune-notifications",
		Short: "Delete every notification that points at a comment",
		Long: `Deleting a comment through the API already removes its notifications.
This cleans up after comments removed some other way.`,
		Args: cobra.NoArgs,
		RunE: withBackend(func(cmd *cobra.Command, b *backend) error {
			removed, err := usecase.NewNotificationUseCase(b.notifications).PruneComment(cmd.Context(), commentID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d notifications\n", removed)
			return nil
		}),
	}
	cmd.Flags().StringVar(&commentID, "comment", "", "comment id")
	_ = cmd.MarkFlagRequired("comment")
	return cmd
}
