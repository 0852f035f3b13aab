package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"

	"mangareader/internal/domain/entity"
	"mangareader/internal/domain/repository"
	"mangareader/pkg/errors"
)

type firestoreNotificationRepository struct {
	client *firestore.Client
}

func NewFirestoreNotificationRepository(client *firestore.Client) repository.NotificationRepository {
	return &firestoreNotificationRepository{
		client: client,
	}
}

// inbox is notifications/{userId}/inbox.
func (r *firestoreNotificationRepository) inbox(userID string) *firestore.CollectionRef {
	return r.client.Collection("notifications").Doc(userID).Collection("inbox")
}

func (r *firestoreNotificationRepository) CreateAll(ctx context.Context, notifications []*entity.Notification) error {
	if len(notifications) == 0 {
		return nil
	}

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		for _, n := range notifications {
			if n.ID == "" {
				n.ID = uuid.New().String()
			}
			if n.Timestamp.IsZero() {
				n.Timestamp = time.Now()
			}
			if err := tx.Create(r.inbox(n.UserID).Doc(n.ID), n); err != nil {
				return err
			}
		}
		return nil
	})
	return storeError(err, "Notification", "Failed to create notifications")
}

func (r *firestoreNotificationRepository) List(ctx context.Context, userID string) ([]*entity.Notification, error) {
	iter := r.inbox(userID).OrderBy("timestamp", firestore.Desc).Documents(ctx)
	return collectNotifications(iter, userID)
}

func (r *firestoreNotificationRepository) MarkRead(ctx context.Context, userID, id string) error {
	_, err := r.inbox(userID).Doc(id).Update(ctx, []firestore.Update{
		{Path: "read", Value: true},
	})
	return storeError(err, "Notification", "Failed to mark notification as read")
}

func (r *firestoreNotificationRepository) MarkAllRead(ctx context.Context, userID string) (int, error) {
	var marked int
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		docs, err := tx.Documents(r.inbox(userID).Where("read", "==", false)).GetAll()
		if err != nil {
			return err
		}
		for _, doc := range docs {
			if err := tx.Update(doc.Ref, []firestore.Update{{Path: "read", Value: true}}); err != nil {
				return err
			}
		}
		marked = len(docs)
		return nil
	})
	if err != nil {
		return 0, storeError(err, "Notifications", "Failed to mark notifications as read")
	}
	return marked, nil
}

func (r *firestoreNotificationRepository) Delete(ctx context.Context, userID, id string) error {
	_, err := r.inbox(userID).Doc(id).Delete(ctx, firestore.Exists)
	return storeError(err, "Notification", "Failed to delete notification")
}

func (r *firestoreNotificationRepository) DeleteByComment(ctx context.Context, commentID string) (int, error) {
	iter := r.client.CollectionGroup("inbox").Where("commentId", "==", commentID).Documents(ctx)
	defer iter.Stop()

	bw := r.client.BulkWriter(ctx)
	var jobs []*firestore.BulkWriterJob
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			bw.End()
			return 0, storeError(err, "Notifications", "Failed to query notifications")
		}
		job, err := bw.Delete(doc.Ref)
		if err != nil {
			bw.End()
			return 0, errors.Internal("Failed to queue notification delete", err)
		}
		jobs = append(jobs, job)
	}
	bw.End()

	deleted := 0
	for _, job := range jobs {
		if _, err := job.Results(); err != nil {
			return deleted, storeError(err, "Notification", "Failed to delete notification")
		}
		deleted++
	}
	return deleted, nil
}

func (r *firestoreNotificationRepository) Watch(ctx context.Context, userID string, fn func([]*entity.Notification)) error {
	snapshots := r.inbox(userID).OrderBy("timestamp", firestore.Desc).Snapshots(ctx)
	defer snapshots.Stop()

	for {
		snap, err := snapshots.Next()
		if err != nil {
			if ctx.Err() != nil || isCanceled(err) {
				return nil
			}
			return storeError(err, "Notifications", "Notification listener failed")
		}

		items, err := collectNotifications(snap.Documents, userID)
		if err != nil {
			return err
		}
		fn(items)
	}
}

func collectNotifications(iter *firestore.DocumentIterator, userID string) ([]*entity.Notification, error) {
	defer iter.Stop()

	var items []*entity.Notification
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, storeError(err, "Notifications", "Failed to list notifications")
		}

		var n entity.Notification
		if err := doc.DataTo(&n); err != nil {
			return nil, errors.Internal("Failed to parse notification data", err)
		}
		n.ID = doc.Ref.ID
		n.UserID = userID
		items = append(items, &n)
	}
	return items, nil
}
