package memstore

import (
	"context"
	"time"

	"mangareader/internal/domain/entity"
	"mangareader/pkg/errors"
)

type userRepo struct{ s *Store }

func (r *userRepo) Create(_ context.Context, user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.fail != nil {
		return r.s.fail
	}

	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	u := *user
	r.s.users[user.ID] = &u
	return nil
}

func (r *userRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.fail != nil {
		return nil, r.s.fail
	}

	u, ok := r.s.users[id]
	if !ok {
		return nil, errors.NotFound("User", nil)
	}
	out := *u
	return &out, nil
}

func (r *userRepo) Update(_ context.Context, user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.fail != nil {
		return r.s.fail
	}

	u, ok := r.s.users[user.ID]
	if !ok {
		u = &entity.User{ID: user.ID, CreatedAt: time.Now()}
		r.s.users[user.ID] = u
	}
	user.UpdatedAt = time.Now()
	u.DisplayName = user.DisplayName
	if user.AvatarURL != "" {
		u.AvatarURL = user.AvatarURL
	}
	u.UpdatedAt = user.UpdatedAt
	return nil
}

func (r *userRepo) SetRole(_ context.Context, id, role string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.fail != nil {
		return r.s.fail
	}

	u, ok := r.s.users[id]
	if !ok {
		return errors.NotFound("User", nil)
	}
	u.Role = role
	u.UpdatedAt = time.Now()
	return nil
}
