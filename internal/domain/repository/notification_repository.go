package repository

import (
	"context"

	"mangareader/internal/domain/entity"
)

type NotificationRepository interface {
	// CreateAll writes every notification or none of them.
	CreateAll(ctx context.Context, notifications []*entity.Notification) error
	List(ctx context.Context, userID string) ([]*entity.Notification, error)
	MarkRead(ctx context.Context, userID, id string) error
	MarkAllRead(ctx context.Context, userID string) (int, error)
	Delete(ctx context.Context, userID, id string) error
	// DeleteByComment removes notifications in every inbox that point at commentID.
	DeleteByComment(ctx context.Context, commentID string) (int, error)

	Watch(ctx context.Context, userID string, fn func([]*entity.Notification)) error
}
