// Package memstore keeps every repository in process memory. It backs the
// use-case and handler tests and `mangactl --dry-run`.
package memstore

import (
	"sync"

	"mangareader/internal/domain/entity"
	"mangareader/internal/domain/repository"
)

type threadKey struct {
	mangaID   string
	chapterID string
}

// Store holds all collections behind one lock, so every method is atomic
// the way a Firestore transaction is.
type Store struct {
	mu sync.Mutex

	users    map[string]*entity.User
	manga    map[string]*entity.Manga
	comments map[threadKey]map[string]*entity.Comment
	inbox    map[string]map[string]*entity.Notification
	// mangaID -> userID -> rating
	ratings map[string]map[string]*entity.UserRating

	threadWatchers map[threadKey]map[int]chan struct{}
	inboxWatchers  map[string]map[int]chan struct{}
	nextWatcher    int

	fail error
}

func New() *Store {
	return &Store{
		users:          make(map[string]*entity.User),
		manga:          make(map[string]*entity.Manga),
		comments:       make(map[threadKey]map[string]*entity.Comment),
		inbox:          make(map[string]map[string]*entity.Notification),
		ratings:        make(map[string]map[string]*entity.UserRating),
		threadWatchers: make(map[threadKey]map[int]chan struct{}),
		inboxWatchers:  make(map[string]map[int]chan struct{}),
	}
}

// FailWith makes every later call return err until it is called with nil.
func (s *Store) FailWith(err error) {
	s.mu.Lock()
	s.fail = err
	s.mu.Unlock()
}

func (s *Store) Users() repository.UserRepository                 { return &userRepo{s} }
func (s *Store) Manga() repository.MangaRepository                { return &mangaRepo{s} }
func (s *Store) Comments() repository.CommentRepository           { return &commentRepo{s} }
func (s *Store) Notifications() repository.NotificationRepository { return &notificationRepo{s} }
func (s *Store) Ratings() repository.RatingRepository             { return &ratingRepo{s} }

// watch registers a change signal in set. The returned func removes it.
func (s *Store) watch(add func(id int, ch chan struct{}), remove func(id int)) (chan struct{}, func()) {
	s.nextWatcher++
	id := s.nextWatcher
	ch := make(chan struct{}, 1)
	add(id, ch)
	return ch, func() {
		s.mu.Lock()
		remove(id)
		s.mu.Unlock()
	}
}

func signal(set map[int]chan struct{}) {
	for _, ch := range set {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func cloneComment(c *entity.Comment) *entity.Comment {
	out := *c
	out.LikedBy = cloneLikes(c.LikedBy)
	if c.Replies != nil {
		out.Replies = make(map[string]*entity.Reply, len(c.Replies))
		for id, r := range c.Replies {
			out.Replies[id] = cloneReply(r)
		}
	}
	if c.EditedAt != nil {
		t := *c.EditedAt
		out.EditedAt = &t
	}
	return &out
}

func cloneReply(r *entity.Reply) *entity.Reply {
	out := *r
	out.LikedBy = cloneLikes(r.LikedBy)
	if r.EditedAt != nil {
		t := *r.EditedAt
		out.EditedAt = &t
	}
	return &out
}

func cloneLikes(m map[string]bool) map[string]bool {
	if m == nil {
		return nil
	}
	out := make(map[string]bool, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneManga(m *entity.Manga) *entity.Manga {
	out := *m
	if m.Chapters != nil {
		out.Chapters = make(map[string]*entity.Chapter, len(m.Chapters))
		for k, ch := range m.Chapters {
			out.Chapters[k] = cloneChapter(ch)
		}
	}
	return &out
}

func cloneChapter(ch *entity.Chapter) *entity.Chapter {
	if ch == nil {
		return nil
	}
	out := *ch
	out.Images = append([]string(nil), ch.Images...)
	return &out
}
