package repository

import (
	"context"

	"mangareader/internal/domain/entity"
)

// CommentMutator edits a freshly read comment inside a transaction. It can
// run more than once when the transaction is retried.
type CommentMutator func(comment *entity.Comment) error

type CommentRepository interface {
	List(ctx context.Context, mangaID, chapterID string) ([]*entity.Comment, error)
	GetByID(ctx context.Context, mangaID, chapterID, id string) (*entity.Comment, error)
	Create(ctx context.Context, comment *entity.Comment) error
	// Update applies mutate atomically and returns the stored result.
	Update(ctx context.Context, mangaID, chapterID, id string, mutate CommentMutator) (*entity.Comment, error)
	Delete(ctx context.Context, mangaID, chapterID, id string) error

	// Watch calls fn with the full thread on every change until ctx is done.
	Watch(ctx context.Context, mangaID, chapterID string, fn func([]*entity.Comment)) error
}
