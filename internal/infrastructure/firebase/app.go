package firebase

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"

	"cloud.google.com/go/firestore"
	fbapp "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// App holds the clients every entry point needs.
type App struct {
	Auth      *auth.Client
	Firestore *firestore.Client
	// Option carries the credentials for other Google clients (storage).
	Option option.ClientOption
}

// CredentialsOption prefers inline service-account JSON and falls back to
// the file at path.
func CredentialsOption(credentialsJSON, path string) (option.ClientOption, error) {
	if credentialsJSON != "" {
		return option.WithCredentialsJSON([]byte(credentialsJSON)), nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("service account file %s: %w", path, err)
	}
	return option.WithCredentialsFile(path), nil
}

func NewApp(ctx context.Context, projectID string, opt option.ClientOption) (*App, error) {
	app, err := fbapp.NewApp(ctx, &fbapp.Config{ProjectID: projectID}, opt)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase: %w", err)
	}

	authClient, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase auth: %w", err)
	}

	firestoreClient, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}

	return &App{Auth: authClient, Firestore: firestoreClient, Option: opt}, nil
}

// PingFirestore reads at most one catalog document.
func (a *App) PingFirestore(ctx context.Context) error {
	iter := a.Firestore.Collection("manga_list").Limit(1).Documents(ctx)
	defer iter.Stop()
	if _, err := iter.Next(); err != nil && !stderrors.Is(err, iterator.Done) {
		return err
	}
	return nil
}

func (a *App) Close() error {
	return a.Firestore.Close()
}
