// Command mangactl runs operator tasks against the catalog store.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mangareader/internal/adapter/repository"
	"mangareader/internal/adapter/repository/memstore"
	domainrepo "mangareader/internal/domain/repository"
	"mangareader/internal/infrastructure/firebase"
	"mangareader/pkg/config"
	"mangareader/pkg/logger"
)

// backend is the slice of the store the commands touch.
type backend struct {
	manga         domainrepo.MangaRepository
	ratings       domainrepo.RatingRepository
	notifications domainrepo.NotificationRepository
	users         domainrepo.UserRepository
	close         func() error
}

type backendFactory func(ctx context.Context, dryRun bool) (*backend, error)

func memoryBackend(store *memstore.Store) *backend {
	return &backend{
		manga:         store.Manga(),
		ratings:       store.Ratings(),
		notifications: store.Notifications(),
		users:         store.Users(),
		close:         func() error { return nil },
	}
}

// openBackend connects to Firestore, or to a throwaway in-memory store when
// dryRun is set.
func openBackend(ctx context.Context, dryRun bool) (*backend, error) {
	if dryRun {
		return memoryBackend(memstore.New()), nil
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger.Init(cfg.Environment)

	opt, err := firebase.CredentialsOption(cfg.FirebaseCredentialsJSON, cfg.FirebaseCredentialsPath)
	if err != nil {
		return nil, err
	}
	app, err := firebase.NewApp(ctx, cfg.FirebaseProject, opt)
	if err != nil {
		return nil, err
	}

	return &backend{
		manga:         repository.NewFirestoreMangaRepository(app.Firestore),
		ratings:       repository.NewFirestoreRatingRepository(app.Firestore),
		notifications: repository.NewFirestoreNotificationRepository(app.Firestore),
		users:         repository.NewFirestoreUserRepository(app.Firestore),
		close:         app.Close,
	}, nil
}

func newRootCmd(open backendFactory) *cobra.Command {
	var dryRun bool

	rootCmd := &cobra.Command{
		Use:           "mangactl",
		Short:         "Operator tasks for the manga reader backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "run against an in-memory store and write nothing")

	// withBackend opens the store for one command run and closes it after.
	withBackend := func(run func(cmd *cobra.Command, b *backend) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, _ []string) error {
			b, err := open(cmd.Context(), dryRun)
			if err != nil {
				return err
			}
			defer b.close()
			if dryRun {
				fmt.Fprintln(cmd.OutOrStdout(), "[dry-run] using an in-memory store, nothing is written")
			}
			return run(cmd, b)
		}
	}

	rootCmd.AddCommand(
		newSeedCmd(withBackend),
		newRecomputeRatingsCmd(withBackend),
		newPruneNotificationsCmd(withBackend),
		newSetRoleCmd(withBackend),
	)
	return rootCmd
}

type runWithBackend func(run func(cmd *cobra.Command, b *backend) error) func(*cobra.Command, []string) error

func main() {
	defer logger.Sync()

	if err := newRootCmd(openBackend).ExecuteContext(context.Background()); err != nil {
		logger.Error("mangactl: %v", err)
		fmt.Fprintln(os.Stderr, "Error:", err)
		logger.Sync()
		os.Exit(1)
	}
}
