package usecase

import (
	"context"

	"mangareader/internal/domain/entity"
	"mangareader/internal/domain/repository"
	"mangareader/internal/domain/service"
)

// LiveUseCase turns repository snapshots into what websocket clients see.
type LiveUseCase struct {
	commentRepo      repository.CommentRepository
	notificationRepo repository.NotificationRepository
}

func NewLiveUseCase(commentRepo repository.CommentRepository, notificationRepo repository.NotificationRepository) *LiveUseCase {
	return &LiveUseCase{
		commentRepo:      commentRepo,
		notificationRepo: notificationRepo,
	}
}

// WatchThread emits a patch for every change of the thread or of the
// viewer's expanded replies. The first patch carries the whole thread.
func (uc *LiveUseCase) WatchThread(ctx context.Context, viewerID, mangaID, chapterID string, view *service.ThreadView, emit func(*service.ThreadPatch)) error {
	ref, err := ThreadRef{MangaID: mangaID, ChapterID: chapterID}.normalize()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	snapshots := make(chan []*entity.Comment, 1)
	watchErr := make(chan error, 1)
	go func() {
		watchErr <- uc.commentRepo.Watch(ctx, ref.MangaID, ref.ChapterID, func(comments []*entity.Comment) {
			// Only the newest snapshot matters; drop one the loop has not taken yet.
			select {
			case <-snapshots:
			default:
			}
			select {
			case snapshots <- comments:
			case <-ctx.Done():
			}
		})
	}()

	var (
		latest  []*entity.Comment
		prev    service.CommentThread
		started bool
	)
	publish := func() {
		next := service.BuildThread(latest, viewerID, view.IsExpanded)
		if !started {
			started = true
			patch := service.DiffThreads(service.CommentThread{}, next)
			// The first patch always goes out, even for an empty thread.
			emit(&patch)
			prev = next
			return
		}
		patch := service.DiffThreads(prev, next)
		prev = next
		if !patch.Empty() {
			emit(&patch)
		}
	}

	for {
		select {
		case <-ctx.Done():
			cancel()
			return <-watchErr

		case err := <-watchErr:
			return err

		case comments := <-snapshots:
			latest = comments
			ids := make([]string, 0, len(comments))
			for _, c := range comments {
				ids = append(ids, c.ID)
			}
			view.Retain(ids)
			publish()

		case <-view.Changed():
			if started {
				publish()
			}
		}
	}
}

// WatchInbox emits the user's whole inbox on every change.
func (uc *LiveUseCase) WatchInbox(ctx context.Context, userID string, emit func(service.Inbox)) error {
	return uc.notificationRepo.Watch(ctx, userID, func(items []*entity.Notification) {
		emit(service.NewInbox(items))
	})
}
