package usecase

import (
	"context"
	"strings"
	"time"

	"mangareader/internal/domain/entity"
	"mangareader/internal/domain/repository"
	"mangareader/pkg/errors"
	"mangareader/pkg/logger"
)

const MinPasswordLength = 6

type AuthUseCase struct {
	userRepo     repository.UserRepository
	firebaseAuth FirebaseAuthClient
	sessions     SessionTerminator
}

func NewAuthUseCase(userRepo repository.UserRepository, firebaseAuth FirebaseAuthClient, sessions SessionTerminator) *AuthUseCase {
	return &AuthUseCase{
		userRepo:     userRepo,
		firebaseAuth: firebaseAuth,
		sessions:     sessions,
	}
}

type RegisterInput struct {
	Email           string
	Password        string
	ConfirmPassword string
	DisplayName     string
}

type AuthResult struct {
	User    *entity.User    `json:"user"`
	Session *entity.Session `json:"session"`
}

func (uc *AuthUseCase) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	input.Email = strings.TrimSpace(input.Email)
	if len(input.Password) < MinPasswordLength {
		return nil, errors.Validation("password must be at least 6 characters")
	}
	if input.Password != input.ConfirmPassword {
		return nil, errors.Validation("passwords do not match")
	}

	displayName := strings.TrimSpace(input.DisplayName)
	if displayName == "" {
		displayName = defaultDisplayName(input.Email)
	}

	uid, err := uc.firebaseAuth.CreateUser(ctx, input.Email, input.Password, displayName)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := &entity.User{
		ID:          uid,
		Email:       input.Email,
		DisplayName: displayName,
		Role:        entity.RoleUser,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	// Sign in right after sign-up so the client gets a token immediately.
	session, err := uc.firebaseAuth.SignIn(ctx, input.Email, input.Password)
	if err != nil {
		return nil, err
	}

	logger.Info("User registered: %s", uid)
	return &AuthResult{User: user, Session: session}, nil
}

func (uc *AuthUseCase) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	session, err := uc.firebaseAuth.SignIn(ctx, strings.TrimSpace(email), password)
	if err != nil {
		return nil, err
	}

	user, err := uc.userRepo.GetByID(ctx, session.UserID)
	if errors.Is(err, "NOT_FOUND") {
		// Accounts created outside this API get their profile on first sign-in.
		user = &entity.User{
			ID:          session.UserID,
			Email:       session.Email,
			DisplayName: session.DisplayName,
			Role:        entity.RoleUser,
		}
		if user.DisplayName == "" {
			user.DisplayName = defaultDisplayName(session.Email)
		}
		err = uc.userRepo.Create(ctx, user)
	}
	if err != nil {
		return nil, err
	}

	return &AuthResult{User: user, Session: session}, nil
}

func (uc *AuthUseCase) SendPasswordReset(ctx context.Context, email string) error {
	return uc.firebaseAuth.SendPasswordReset(ctx, strings.TrimSpace(email))
}

// Logout revokes the user's refresh tokens and closes their live feeds.
func (uc *AuthUseCase) Logout(ctx context.Context, uid string) error {
	if err := uc.firebaseAuth.RevokeSessions(ctx, uid); err != nil {
		return err
	}
	if uc.sessions != nil {
		closed := uc.sessions.DisconnectUser(uid)
		logger.Debug("Closed %d live connections for %s", closed, uid)
	}
	return nil
}

func (uc *AuthUseCase) CurrentUser(ctx context.Context, uid string) (*entity.User, error) {
	return uc.userRepo.GetByID(ctx, uid)
}

func defaultDisplayName(email string) string {
	if i := strings.Index(email, "@"); i > 0 {
		return email[:i]
	}
	return "Anonymous"
}
