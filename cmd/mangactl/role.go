package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mangareader/internal/usecase"
)

func newSetRoleCmd(withBackend runWithBackend) *cobra.Command {
	var userID, role string

	cmd := &cobra.Command{
		Use:   "set-role",
		Short: "Grant or revoke admin rights",
		Long: `The first admin has to be created here since the admin API needs one.
The user must have signed up before.`,
		Args: cobra.NoArgs,
		RunE: withBackend(func(cmd *cobra.Command, b *backend) error {
			user, err := usecase.NewUserUseCase(b.users, nil, nil).SetRole(cmd.Context(), userID, role)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", user.ID, user.Role)
			return nil
		}),
	}
	cmd.Flags().StringVar(&userID, "user", "", "user id")
	cmd.Flags().StringVar(&role, "role", "admin", "user or admin")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
