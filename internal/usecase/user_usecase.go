package usecase

import (
	"context"
	"io"
	"strings"

	"mangareader/internal/domain/entity"
	"mangareader/internal/domain/repository"
	"mangareader/pkg/errors"
	"mangareader/pkg/logger"
)

const maxDisplayNameLength = 50

type UserUseCase struct {
	userRepo     repository.UserRepository
	firebaseAuth FirebaseAuthClient
	images       ImageStore
}

func NewUserUseCase(userRepo repository.UserRepository, firebaseAuth FirebaseAuthClient, images ImageStore) *UserUseCase {
	return &UserUseCase{
		userRepo:     userRepo,
		firebaseAuth: firebaseAuth,
		images:       images,
	}
}

func (uc *UserUseCase) GetProfile(ctx context.Context, uid string) (*entity.User, error) {
	return uc.userRepo.GetByID(ctx, uid)
}

// UpdateProfile changes the display name. Comments already posted keep the
// name they were written under.
func (uc *UserUseCase) UpdateProfile(ctx context.Context, uid, displayName string) (*entity.User, error) {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return nil, errors.Validation("display name is required")
	}
	if len([]rune(displayName)) > maxDisplayNameLength {
		return nil, errors.Validation("display name must be at most 50 characters")
	}

	user, err := uc.userRepo.GetByID(ctx, uid)
	if err != nil {
		return nil, err
	}
	user.DisplayName = displayName

	if err := uc.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	if err := uc.firebaseAuth.UpdateProfile(ctx, uid, displayName, ""); err != nil {
		logger.Warn("Failed to sync display name of %s to auth: %v", uid, err)
	}

	return user, nil
}

func (uc *UserUseCase) UploadAvatar(ctx context.Context, uid string, file io.Reader, contentType string) (*entity.User, error) {
	if uc.images == nil {
		return nil, errors.Unavailable("Image storage is not configured", nil)
	}

	user, err := uc.userRepo.GetByID(ctx, uid)
	if err != nil {
		return nil, err
	}

	url, err := uc.images.UploadImage(ctx, file, contentType, "avatars/"+uid)
	if err != nil {
		return nil, err
	}

	previous := user.AvatarURL
	user.AvatarURL = url
	if err := uc.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	if err := uc.firebaseAuth.UpdateProfile(ctx, uid, "", url); err != nil {
		logger.Warn("Failed to sync avatar of %s to auth: %v", uid, err)
	}
	if previous != "" && previous != url {
		if err := uc.images.DeleteImage(ctx, previous); err != nil {
			logger.Warn("Failed to delete old avatar of %s: %v", uid, err)
		}
	}

	return user, nil
}

// SetRole promotes or demotes a user.
func (uc *UserUseCase) SetRole(ctx context.Context, uid, role string) (*entity.User, error) {
	if role != entity.RoleUser && role != entity.RoleAdmin {
		return nil, errors.Validation("role must be user or admin")
	}
	if err := uc.userRepo.SetRole(ctx, uid, role); err != nil {
		return nil, err
	}

	logger.Info("Role of %s set to %s", uid, role)
	return uc.userRepo.GetByID(ctx, uid)
}
