package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"

	"mangareader/internal/domain/entity"
	"mangareader/internal/domain/repository"
)

type firestoreUserRepository struct {
	client *firestore.Client
}

func NewFirestoreUserRepository(client *firestore.Client) repository.UserRepository {
	return &firestoreUserRepository{
		client: client,
	}
}

func (r *firestoreUserRepository) Create(ctx context.Context, user *entity.User) error {
	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	_, err := r.client.Collection("users").Doc(user.ID).Set(ctx, user)
	return storeError(err, "User", "Failed to create user")
}

func (r *firestoreUserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	doc, err := r.client.Collection("users").Doc(id).Get(ctx)
	if err != nil {
		return nil, storeError(err, "User", "Failed to get user")
	}

	var user entity.User
	if err := doc.DataTo(&user); err != nil {
		return nil, storeError(err, "User", "Failed to parse user data")
	}
	user.ID = doc.Ref.ID

	return &user, nil
}

func (r *firestoreUserRepository) Update(ctx context.Context, user *entity.User) error {
	user.UpdatedAt = time.Now()

	updateData := map[string]interface{}{
		"displayName": user.DisplayName,
		"updatedAt":   user.UpdatedAt,
	}
	// Only include non-empty fields so a profile edit never clears the avatar.
	if user.AvatarURL != "" {
		updateData["avatarURL"] = user.AvatarURL
	}

	_, err := r.client.Collection("users").Doc(user.ID).Set(ctx, updateData, firestore.MergeAll)
	return storeError(err, "User", "Failed to update user")
}

// SetRole fails with NOT_FOUND when the profile does not exist yet.
func (r *firestoreUserRepository) SetRole(ctx context.Context, id, role string) error {
	_, err := r.client.Collection("users").Doc(id).Update(ctx, []firestore.Update{
		{Path: "role", Value: role},
		{Path: "updatedAt", Value: time.Now()},
	})
	return storeError(err, "User", "Failed to update user role")
}
