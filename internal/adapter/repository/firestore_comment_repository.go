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

type firestoreCommentRepository struct {
	client *firestore.Client
}

func NewFirestoreCommentRepository(client *firestore.Client) repository.CommentRepository {
	return &firestoreCommentRepository{
		client: client,
	}
}

// thread is comments/{mangaId}/chapters/{chapterId}/comments.
func (r *firestoreCommentRepository) thread(mangaID, chapterID string) *firestore.CollectionRef {
	return r.client.Collection("comments").Doc(mangaID).Collection("chapters").Doc(chapterID).Collection("comments")
}

func (r *firestoreCommentRepository) List(ctx context.Context, mangaID, chapterID string) ([]*entity.Comment, error) {
	iter := r.thread(mangaID, chapterID).Documents(ctx)
	defer iter.Stop()

	var comments []*entity.Comment
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, storeError(err, "Comments", "Failed to list comments")
		}

		comment, err := decodeComment(doc, mangaID, chapterID)
		if err != nil {
			return nil, err
		}
		comments = append(comments, comment)
	}

	return comments, nil
}

func (r *firestoreCommentRepository) GetByID(ctx context.Context, mangaID, chapterID, id string) (*entity.Comment, error) {
	doc, err := r.thread(mangaID, chapterID).Doc(id).Get(ctx)
	if err != nil {
		return nil, storeError(err, "Comment", "Failed to get comment")
	}
	return decodeComment(doc, mangaID, chapterID)
}

func (r *firestoreCommentRepository) Create(ctx context.Context, comment *entity.Comment) error {
	if comment.ID == "" {
		comment.ID = uuid.New().String()
	}
	if comment.Timestamp.IsZero() {
		comment.Timestamp = time.Now()
	}

	_, err := r.thread(comment.MangaID, comment.ChapterID).Doc(comment.ID).Create(ctx, comment)
	return storeError(err, "Comment", "Failed to create comment")
}

func (r *firestoreCommentRepository) Update(ctx context.Context, mangaID, chapterID, id string, mutate repository.CommentMutator) (*entity.Comment, error) {
	ref := r.thread(mangaID, chapterID).Doc(id)

	var updated *entity.Comment
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if err != nil {
			return err
		}
		comment, err := decodeComment(doc, mangaID, chapterID)
		if err != nil {
			return err
		}
		if err := mutate(comment); err != nil {
			return err
		}
		updated = comment
		return tx.Set(ref, comment)
	})
	if err != nil {
		return nil, storeError(err, "Comment", "Failed to update comment")
	}

	return updated, nil
}

func (r *firestoreCommentRepository) Delete(ctx context.Context, mangaID, chapterID, id string) error {
	_, err := r.thread(mangaID, chapterID).Doc(id).Delete(ctx, firestore.Exists)
	return storeError(err, "Comment", "Failed to delete comment")
}

func (r *firestoreCommentRepository) Watch(ctx context.Context, mangaID, chapterID string, fn func([]*entity.Comment)) error {
	snapshots := r.thread(mangaID, chapterID).Snapshots(ctx)
	defer snapshots.Stop()

	for {
		snap, err := snapshots.Next()
		if err != nil {
			if ctx.Err() != nil || isCanceled(err) {
				return nil
			}
			return storeError(err, "Comments", "Comment listener failed")
		}

		comments := make([]*entity.Comment, 0, snap.Size)
		docs := snap.Documents
		for {
			doc, err := docs.Next()
			if err == iterator.Done {
				break
			}
			if err != nil {
				return storeError(err, "Comments", "Comment listener failed")
			}
			comment, err := decodeComment(doc, mangaID, chapterID)
			if err != nil {
				return err
			}
			comments = append(comments, comment)
		}
		fn(comments)
	}
}

func decodeComment(doc *firestore.DocumentSnapshot, mangaID, chapterID string) (*entity.Comment, error) {
	var comment entity.Comment
	if err := doc.DataTo(&comment); err != nil {
		return nil, errors.Internal("Failed to parse comment data", err)
	}
	comment.ID = doc.Ref.ID
	comment.MangaID = mangaID
	comment.ChapterID = chapterID
	for id, reply := range comment.Replies {
		if reply == nil {
			delete(comment.Replies, id)
			continue
		}
		reply.ID = id
	}
	return &comment, nil
}
