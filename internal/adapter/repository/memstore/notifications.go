package memstore

import (
	"context"
	"time"

	"github.com/google/uuid"

	"mangareader/internal/domain/entity"
	"mangareader/internal/domain/service"
	"mangareader/pkg/errors"
)

type notificationRepo struct{ s *Store }

func (r *notificationRepo) snapshot(userID string) []*entity.Notification {
	box := r.s.inbox[userID]
	out := make([]*entity.Notification, 0, len(box))
	for _, n := range box {
		c := *n
		out = append(out, &c)
	}
	service.SortNotifications(out)
	return out
}

func (r *notificationRepo) CreateAll(_ context.Context, notifications []*entity.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.fail != nil {
		return r.s.fail
	}

	touched := make(map[string]bool)
	for _, n := range notifications {
		if n.ID == "" {
			n.ID = uuid.New().String()
		}
		if n.Timestamp.IsZero() {
			n.Timestamp = time.Now()
		}
		if r.s.inbox[n.UserID] == nil {
			r.s.inbox[n.UserID] = make(map[string]*entity.Notification)
		}
		c := *n
		r.s.inbox[n.UserID][n.ID] = &c
		touched[n.UserID] = true
	}
	for uid := range touched {
		signal(r.s.inboxWatchers[uid])
	}
	return nil
}

func (r *notificationRepo) List(_ context.Context, userID string) ([]*entity.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.fail != nil {
		return nil, r.s.fail
	}
	return r.snapshot(userID), nil
}

func (r *notificationRepo) MarkRead(_ context.Context, userID, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.fail != nil {
		return r.s.fail
	}

	n, ok := r.s.inbox[userID][id]
	if !ok {
		return errors.NotFound("Notification", nil)
	}
	n.Read = true
	signal(r.s.inboxWatchers[userID])
	return nil
}

func (r *notificationRepo) MarkAllRead(_ context.Context, userID string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.fail != nil {
		return 0, r.s.fail
	}

	marked := 0
	for _, n := range r.s.inbox[userID] {
		if !n.Read {
			n.Read = true
			marked++
		}
	}
	if marked > 0 {
		signal(r.s.inboxWatchers[userID])
	}
	return marked, nil
}

func (r *notificationRepo) Delete(_ context.Context, userID, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.fail != nil {
		return r.s.fail
	}

	if _, ok := r.s.inbox[userID][id]; !ok {
		return errors.NotFound("Notification", nil)
	}
	delete(r.s.inbox[userID], id)
	signal(r.s.inboxWatchers[userID])
	return nil
}

func (r *notificationRepo) DeleteByComment(_ context.Context, commentID string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.fail != nil {
		return 0, r.s.fail
	}

	deleted := 0
	for uid, box := range r.s.inbox {
		before := deleted
		for id, n := range box {
			if n.CommentID == commentID {
				delete(box, id)
				deleted++
			}
		}
		if deleted > before {
			signal(r.s.inboxWatchers[uid])
		}
	}
	return deleted, nil
}

func (r *notificationRepo) Watch(ctx context.Context, userID string, fn func([]*entity.Notification)) error {
	r.s.mu.Lock()
	if r.s.fail != nil {
		err := r.s.fail
		r.s.mu.Unlock()
		return err
	}
	changed, stop := r.s.watch(
		func(id int, ch chan struct{}) {
			if r.s.inboxWatchers[userID] == nil {
				r.s.inboxWatchers[userID] = make(map[int]chan struct{})
			}
			r.s.inboxWatchers[userID][id] = ch
		},
		func(id int) { delete(r.s.inboxWatchers[userID], id) },
	)
	initial := r.snapshot(userID)
	r.s.mu.Unlock()
	defer stop()

	fn(initial)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-changed:
			r.s.mu.Lock()
			items := r.snapshot(userID)
			r.s.mu.Unlock()
			fn(items)
		}
	}
}
