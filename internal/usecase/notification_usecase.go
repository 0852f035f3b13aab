package usecase

import (
	"context"

	"mangareader/internal/domain/repository"
	"mangareader/internal/domain/service"
	"mangareader/pkg/errors"
)

type NotificationUseCase struct {
	notificationRepo repository.NotificationRepository
}

func NewNotificationUseCase(notificationRepo repository.NotificationRepository) *NotificationUseCase {
	return &NotificationUseCase{
		notificationRepo: notificationRepo,
	}
}

func (uc *NotificationUseCase) ListNotifications(ctx context.Context, uid string) (service.Inbox, error) {
	items, err := uc.notificationRepo.List(ctx, uid)
	if err != nil {
		return service.Inbox{}, err
	}
	return service.NewInbox(items), nil
}

func (uc *NotificationUseCase) MarkAsRead(ctx context.Context, uid, id string) error {
	if id == "" {
		return errors.Validation("notification id is required")
	}
	return uc.notificationRepo.MarkRead(ctx, uid, id)
}

func (uc *NotificationUseCase) MarkAllAsRead(ctx context.Context, uid string) (int, error) {
	return uc.notificationRepo.MarkAllRead(ctx, uid)
}

func (uc *NotificationUseCase) DeleteNotification(ctx context.Context, uid, id string) error {
	if id == "" {
		return errors.Validation("notification id is required")
	}
	return uc.notificationRepo.Delete(ctx, uid, id)
}

// PruneComment removes every notification pointing at commentID.
func (uc *NotificationUseCase) PruneComment(ctx context.Context, commentID string) (int, error) {
	if commentID == "" {
		return 0, errors.Validation("comment id is required")
	}
	return uc.notificationRepo.DeleteByComment(ctx, commentID)
}
