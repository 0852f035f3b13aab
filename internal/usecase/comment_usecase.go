package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"mangareader/internal/domain/entity"
	"mangareader/internal/domain/repository"
	"mangareader/internal/domain/service"
	"mangareader/internal/infrastructure/ratelimit"
	"mangareader/pkg/errors"
	"mangareader/pkg/logger"
)

type CommentUseCase struct {
	commentRepo      repository.CommentRepository
	userRepo         repository.UserRepository
	notificationRepo repository.NotificationRepository
	limiter          RateLimiter
	now              func() time.Time
}

func NewCommentUseCase(
	commentRepo repository.CommentRepository,
	userRepo repository.UserRepository,
	notificationRepo repository.NotificationRepository,
	limiter RateLimiter,
) *CommentUseCase {
	return &CommentUseCase{
		commentRepo:      commentRepo,
		userRepo:         userRepo,
		notificationRepo: notificationRepo,
		limiter:          limiter,
		now:              time.Now,
	}
}

// ThreadRef addresses one chapter's comment thread. ChapterID accepts
// "3", "3.5" or "chapter_3".
type ThreadRef struct {
	MangaID   string
	ChapterID string
}

func (t ThreadRef) normalize() (ThreadRef, error) {
	if strings.TrimSpace(t.MangaID) == "" {
		return t, errors.Validation("manga id is required")
	}
	number, err := service.ParseChapterNumber(t.ChapterID)
	if err != nil {
		return t, errors.Validation("chapter must be a positive number")
	}
	return ThreadRef{MangaID: t.MangaID, ChapterID: service.ChapterKey(number)}, nil
}

type LikeResult struct {
	Liked bool `json:"liked"`
	Likes int  `json:"likes"`
}

func (uc *CommentUseCase) allow(uid, action string) error {
	if uc.limiter == nil {
		return nil
	}
	if ok, wait := uc.limiter.Allow(uid, action); !ok {
		return errors.TooManyRequests("You are doing that too often, try again shortly", wait)
	}
	return nil
}

// author resolves the identity stamped on new comments. A missing profile
// posts as Anonymous rather than failing.
func (uc *CommentUseCase) author(ctx context.Context, uid string) (entity.Author, error) {
	user, err := uc.userRepo.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, "NOT_FOUND") {
			return entity.Author{ID: uid, Name: "Anonymous"}, nil
		}
		return entity.Author{}, err
	}
	return user.Author(), nil
}

func (uc *CommentUseCase) notify(ctx context.Context, notifications []*entity.Notification) {
	if len(notifications) == 0 {
		return
	}
	// The comment is already stored; a failed inbox write must not undo it.
	if err := uc.notificationRepo.CreateAll(ctx, notifications); err != nil {
		logger.Warn("Failed to deliver %d notifications: %v", len(notifications), err)
	}
}

// ListComments returns the thread as the viewer sees it. expandedID opens
// one comment's replies, as a ?comment=..&mode=replies link does.
func (uc *CommentUseCase) ListComments(ctx context.Context, ref ThreadRef, viewerID, expandedID string) (service.CommentThread, error) {
	ref, err := ref.normalize()
	if err != nil {
		return service.CommentThread{}, err
	}

	comments, err := uc.commentRepo.List(ctx, ref.MangaID, ref.ChapterID)
	if err != nil {
		return service.CommentThread{}, err
	}

	return service.BuildThread(comments, viewerID, func(id string) bool { return id == expandedID }), nil
}

func (uc *CommentUseCase) SubmitComment(ctx context.Context, ref ThreadRef, uid, text string) (*entity.Comment, error) {
	ref, err := ref.normalize()
	if err != nil {
		return nil, err
	}
	text, err = service.NormalizeCommentText(text)
	if err != nil {
		return nil, errors.Validation(err.Error())
	}
	if err := uc.allow(uid, ratelimit.ActionComment); err != nil {
		return nil, err
	}

	author, err := uc.author(ctx, uid)
	if err != nil {
		return nil, err
	}

	comment := &entity.Comment{
		MangaID:    ref.MangaID,
		ChapterID:  ref.ChapterID,
		UserID:     author.ID,
		UserName:   author.Name,
		UserAvatar: author.Avatar,
		Text:       text,
		Timestamp:  uc.now(),
		LikedBy:    map[string]bool{},
		Replies:    map[string]*entity.Reply{},
	}
	if err := uc.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// SubmitReply appends a reply and notifies the comment owner and every
// earlier replier.
func (uc *CommentUseCase) SubmitReply(ctx context.Context, ref ThreadRef, commentID, uid, text string) (*entity.Reply, error) {
	ref, err := ref.normalize()
	if err != nil {
		return nil, err
	}
	text, err = service.NormalizeCommentText(text)
	if err != nil {
		return nil, errors.Validation(err.Error())
	}
	if err := uc.allow(uid, ratelimit.ActionReply); err != nil {
		return nil, err
	}

	author, err := uc.author(ctx, uid)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	reply := &entity.Reply{
		ID:         uuid.New().String(),
		UserID:     author.ID,
		UserName:   author.Name,
		UserAvatar: author.Avatar,
		Text:       text,
		Timestamp:  now,
		LikedBy:    map[string]bool{},
	}

	comment, err := uc.commentRepo.Update(ctx, ref.MangaID, ref.ChapterID, commentID, func(c *entity.Comment) error {
		if c.Replies == nil {
			c.Replies = make(map[string]*entity.Reply)
		}
		r := *reply
		c.Replies[reply.ID] = &r
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.notify(ctx, service.ReplyNotifications(comment, reply, author, now))
	return reply, nil
}

func (uc *CommentUseCase) ToggleCommentLike(ctx context.Context, ref ThreadRef, commentID, uid string) (*LikeResult, error) {
	return uc.toggleLike(ctx, ref, commentID, "", uid)
}

func (uc *CommentUseCase) ToggleReplyLike(ctx context.Context, ref ThreadRef, commentID, replyID, uid string) (*LikeResult, error) {
	if replyID == "" {
		return nil, errors.Validation("reply id is required")
	}
	return uc.toggleLike(ctx, ref, commentID, replyID, uid)
}

func (uc *CommentUseCase) toggleLike(ctx context.Context, ref ThreadRef, commentID, replyID, uid string) (*LikeResult, error) {
	ref, err := ref.normalize()
	if err != nil {
		return nil, err
	}
	if err := uc.allow(uid, ratelimit.ActionLike); err != nil {
		return nil, err
	}

	var result LikeResult
	comment, err := uc.commentRepo.Update(ctx, ref.MangaID, ref.ChapterID, commentID, func(c *entity.Comment) error {
		if replyID == "" {
			result.Liked = c.ToggleLike(uid)
			result.Likes = c.Likes
			return nil
		}
		r, ok := c.Replies[replyID]
		if !ok {
			return errors.NotFound("Reply", nil)
		}
		result.Liked = r.ToggleLike(uid)
		result.Likes = r.Likes
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Liked {
		author, err := uc.author(ctx, uid)
		if err != nil {
			logger.Warn("Failed to resolve liker %s: %v", uid, err)
			author = entity.Author{ID: uid, Name: "Anonymous"}
		}
		var reply *entity.Reply
		if replyID != "" {
			reply = comment.Replies[replyID]
		}
		if n := service.LikeNotification(comment, reply, author, uc.now()); n != nil {
			uc.notify(ctx, []*entity.Notification{n})
		}
	}

	return &result, nil
}

func (uc *CommentUseCase) EditComment(ctx context.Context, ref ThreadRef, commentID, uid, text string) (*entity.Comment, error) {
	return uc.edit(ctx, ref, commentID, "", uid, text)
}

func (uc *CommentUseCase) EditReply(ctx context.Context, ref ThreadRef, commentID, replyID, uid, text string) (*entity.Comment, error) {
	if replyID == "" {
		return nil, errors.Validation("reply id is required")
	}
	return uc.edit(ctx, ref, commentID, replyID, uid, text)
}

func (uc *CommentUseCase) edit(ctx context.Context, ref ThreadRef, commentID, replyID, uid, text string) (*entity.Comment, error) {
	ref, err := ref.normalize()
	if err != nil {
		return nil, err
	}
	text, err = service.NormalizeCommentText(text)
	if err != nil {
		return nil, errors.Validation(err.Error())
	}

	now := uc.now()
	return uc.commentRepo.Update(ctx, ref.MangaID, ref.ChapterID, commentID, func(c *entity.Comment) error {
		if replyID == "" {
			if c.UserID != uid {
				return errors.Forbidden("You can only edit your own comments", nil)
			}
			c.Text = text
			c.Edited = true
			c.EditedAt = &now
			return nil
		}

		r, ok := c.Replies[replyID]
		if !ok {
			return errors.NotFound("Reply", nil)
		}
		if r.UserID != uid {
			return errors.Forbidden("You can only edit your own replies", nil)
		}
		r.Text = text
		r.Edited = true
		r.EditedAt = &now
		return nil
	})
}

// DeleteComment removes the comment, its replies and every notification
// that points at it.
func (uc *CommentUseCase) DeleteComment(ctx context.Context, ref ThreadRef, commentID, uid string) error {
	ref, err := ref.normalize()
	if err != nil {
		return err
	}

	comment, err := uc.commentRepo.GetByID(ctx, ref.MangaID, ref.ChapterID, commentID)
	if err != nil {
		return err
	}
	if comment.UserID != uid {
		return errors.Forbidden("You can only delete your own comments", nil)
	}

	if err := uc.commentRepo.Delete(ctx, ref.MangaID, ref.ChapterID, commentID); err != nil {
		return err
	}

	if n, err := uc.notificationRepo.DeleteByComment(ctx, commentID); err != nil {
		logger.Warn("Failed to remove notifications of comment %s: %v", commentID, err)
	} else if n > 0 {
		logger.Debug("Removed %d notifications of comment %s", n, commentID)
	}
	return nil
}

func (uc *CommentUseCase) DeleteReply(ctx context.Context, ref ThreadRef, commentID, replyID, uid string) error {
	ref, err := ref.normalize()
	if err != nil {
		return err
	}

	_, err = uc.commentRepo.Update(ctx, ref.MangaID, ref.ChapterID, commentID, func(c *entity.Comment) error {
		r, ok := c.Replies[replyID]
		if !ok {
			return errors.NotFound("Reply", nil)
		}
		if r.UserID != uid {
			return errors.Forbidden("You can only delete your own replies", nil)
		}
		delete(c.Replies, replyID)
		return nil
	})
	return err
}
