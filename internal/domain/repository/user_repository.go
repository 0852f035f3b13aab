package repository

import (
	"context"

	"mangareader/internal/domain/entity"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
	SetRole(ctx context.Context, id, role string) error
}
