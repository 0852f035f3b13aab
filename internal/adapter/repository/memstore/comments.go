package memstore

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"mangareader/internal/domain/entity"
	"mangareader/internal/domain/repository"
	"mangareader/pkg/errors"
)

type commentRepo struct{ s *Store }

func (r *commentRepo) snapshot(key threadKey) []*entity.Comment {
	thread := r.s.comments[key]
	out := make([]*entity.Comment, 0, len(thread))
	for _, c := range thread {
		out = append(out, cloneComment(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *commentRepo) List(_ context.Context, mangaID, chapterID string) ([]*entity.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.fail != nil {
		return nil, r.s.fail
	}
	return r.snapshot(threadKey{mangaID, chapterID}), nil
}

func (r *commentRepo) GetByID(_ context.Context, mangaID, chapterID, id string) (*entity.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.fail != nil {
		return nil, r.s.fail
	}

	c, ok := r.s.comments[threadKey{mangaID, chapterID}][id]
	if !ok {
		return nil, errors.NotFound("Comment", nil)
	}
	return cloneComment(c), nil
}

func (r *commentRepo) Create(_ context.Context, comment *entity.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.fail != nil {
		return r.s.fail
	}

	if comment.ID == "" {
		comment.ID = uuid.New().String()
	}
	if comment.Timestamp.IsZero() {
		comment.Timestamp = time.Now()
	}

	key := threadKey{comment.MangaID, comment.ChapterID}
	thread, ok := r.s.comments[key]
	if !ok {
		thread = make(map[string]*entity.Comment)
		r.s.comments[key] = thread
	}
	if _, exists := thread[comment.ID]; exists {
		return errors.Conflict("comment already exists")
	}
	thread[comment.ID] = cloneComment(comment)
	signal(r.s.threadWatchers[key])
	return nil
}

func (r *commentRepo) Update(_ context.Context, mangaID, chapterID, id string, mutate repository.CommentMutator) (*entity.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.fail != nil {
		return nil, r.s.fail
	}

	key := threadKey{mangaID, chapterID}
	stored, ok := r.s.comments[key][id]
	if !ok {
		return nil, errors.NotFound("Comment", nil)
	}

	working := cloneComment(stored)
	if err := mutate(working); err != nil {
		return nil, err
	}
	r.s.comments[key][id] = cloneComment(working)
	signal(r.s.threadWatchers[key])
	return working, nil
}

func (r *commentRepo) Delete(_ context.Context, mangaID, chapterID, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.fail != nil {
		return r.s.fail
	}

	key := threadKey{mangaID, chapterID}
	if _, ok := r.s.comments[key][id]; !ok {
		return errors.NotFound("Comment", nil)
	}
	delete(r.s.comments[key], id)
	signal(r.s.threadWatchers[key])
	return nil
}

func (r *commentRepo) Watch(ctx context.Context, mangaID, chapterID string, fn func([]*entity.Comment)) error {
	key := threadKey{mangaID, chapterID}

	r.s.mu.Lock()
	if r.s.fail != nil {
		err := r.s.fail
		r.s.mu.Unlock()
		return err
	}
	changed, stop := r.s.watch(
		func(id int, ch chan struct{}) {
			if r.s.threadWatchers[key] == nil {
				r.s.threadWatchers[key] = make(map[int]chan struct{})
			}
			r.s.threadWatchers[key][id] = ch
		},
		func(id int) { delete(r.s.threadWatchers[key], id) },
	)
	initial := r.snapshot(key)
	r.s.mu.Unlock()
	defer stop()

	fn(initial)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-changed:
			r.s.mu.Lock()
			comments := r.snapshot(key)
			r.s.mu.Unlock()
			fn(comments)
		}
	}
}
