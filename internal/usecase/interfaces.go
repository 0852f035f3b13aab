package usecase

import (
	"context"
	"io"
	"time"

	"mangareader/internal/domain/entity"
)

type FirebaseAuthClient interface {
	CreateUser(ctx context.Context, email, password, displayName string) (string, error)
	SignIn(ctx context.Context, email, password string) (*entity.Session, error)
	SendPasswordReset(ctx context.Context, email string) error
	RevokeSessions(ctx context.Context, uid string) error
	UpdateProfile(ctx context.Context, uid, displayName, photoURL string) error
	VerifyToken(ctx context.Context, token string) (string, error)
}

// SessionTerminator closes a user's live connections.
type SessionTerminator interface {
	DisconnectUser(userID string) int
}

type ImageStore interface {
	UploadImage(ctx context.Context, file io.Reader, contentType, folder string) (string, error)
	DeleteImage(ctx context.Context, fileURL string) error
}

type CatalogCache interface {
	GetCatalog(ctx context.Context) ([]*entity.Manga, bool)
	SetCatalog(ctx context.Context, items []*entity.Manga)
	InvalidateCatalog(ctx context.Context)
	FirstView(ctx context.Context, mangaID, chapterKey, viewer string) bool
}

type RateLimiter interface {
	Allow(userID, action string) (bool, time.Duration)
}
