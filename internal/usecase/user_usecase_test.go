package usecase

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mangareader/internal/adapter/repository/memstore"
	"mangareader/internal/domain/entity"
	"mangareader/pkg/errors"
)

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	require.NoError(t, store.Users().Create(ctx, &entity.User{ID: "u1", DisplayName: "Old"}))
	uc := NewUserUseCase(store.Users(), newFakeAuth(), nil)

	user, err := uc.UpdateProfile(ctx, "u1", "  New Name ")
	require.NoError(t, err)
	assert.Equal(t, "New Name", user.DisplayName)

	_, err = uc.UpdateProfile(ctx, "u1", "   ")
	assert.True(t, errors.Is(err, "VALIDATION_ERROR"))
	_, err = uc.UpdateProfile(ctx, "u1", strings.Repeat("x", 51))
	assert.True(t, errors.Is(err, "VALIDATION_ERROR"))
}

func TestUploadAvatar_ReplacesPrevious(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	require.NoError(t, store.Users().Create(ctx, &entity.User{ID: "u1", DisplayName: "A"}))
	images := &fakeImages{}
	auth := newFakeAuth()
	uc := NewUserUseCase(store.Users(), auth, images)

	first, err := uc.UploadAvatar(ctx, "u1", strings.NewReader("png"), "image/png")
	require.NoError(t, err)
	firstURL := first.AvatarURL

	second, err := uc.UploadAvatar(ctx, "u1", strings.NewReader("png"), "image/png")
	require.NoError(t, err)

	assert.NotEqual(t, firstURL, second.AvatarURL)
	assert.Equal(t, []string{firstURL}, images.deleted)
	assert.Equal(t, second.AvatarURL, auth.profiles["u1"])
}

func TestUploadAvatar_WithoutStorage(t *testing.T) {
	uc := NewUserUseCase(memstore.New().Users(), newFakeAuth(), nil)

	_, err := uc.UploadAvatar(context.Background(), "u1", strings.NewReader(""), "image/png")

	assert.True(t, errors.Is(err, "SERVICE_UNAVAILABLE"))
}

func TestSetRole(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	require.NoError(t, store.Users().Create(ctx, &entity.User{ID: "u1", Role: entity.RoleUser}))
	uc := NewUserUseCase(store.Users(), newFakeAuth(), nil)

	user, err := uc.SetRole(ctx, "u1", entity.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, entity.RoleAdmin, user.Role)

	_, err = uc.SetRole(ctx, "u1", "owner")
	assert.True(t, errors.Is(err, "VALIDATION_ERROR"))
	_, err = uc.SetRole(ctx, "ghost", entity.RoleAdmin)
	assert.True(t, errors.Is(err, "NOT_FOUND"))
}
