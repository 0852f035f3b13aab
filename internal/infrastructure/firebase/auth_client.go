package firebase

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/googleapi"
	identitytoolkit "google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/option"

	"mangareader/internal/domain/entity"
	"mangareader/pkg/errors"
)

// FirebaseAuthClient pairs the Admin SDK (user management, token checks)
// with the Identity Toolkit REST API, which is the only way to sign in with
// a password from a server.
type FirebaseAuthClient struct {
	client  *auth.Client
	toolkit *identitytoolkit.Service
}

func NewFirebaseAuthClient(ctx context.Context, client *auth.Client, apiKey string) (*FirebaseAuthClient, error) {
	f := &FirebaseAuthClient{client: client}
	if apiKey == "" {
		return f, nil
	}

	toolkit, err := identitytoolkit.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create identity toolkit client: %w", err)
	}
	f.toolkit = toolkit
	return f, nil
}

func (f *FirebaseAuthClient) CreateUser(ctx context.Context, email, password, displayName string) (string, error) {
	params := (&auth.UserToCreate{}).
		Email(email).
		Password(password).
		DisplayName(displayName)

	user, err := f.client.CreateUser(ctx, params)
	if err != nil {
		if auth.IsEmailAlreadyExists(err) {
			return "", errors.Conflict("email is already registered")
		}
		return "", errors.Internal("Failed to create account", err)
	}

	return user.UID, nil
}

func (f *FirebaseAuthClient) SignIn(ctx context.Context, email, password string) (*entity.Session, error) {
	if f.toolkit == nil {
		return nil, errors.Unavailable("Password sign-in is not configured", nil)
	}

	resp, err := f.toolkit.Relyingparty.VerifyPassword(&identitytoolkit.IdentitytoolkitRelyingpartyVerifyPasswordRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	}).Context(ctx).Do()
	if err != nil {
		return nil, toolkitError(err, "Failed to sign in")
	}

	return &entity.Session{
		IDToken:      resp.IdToken,
		RefreshToken: resp.RefreshToken,
		ExpiresIn:    resp.ExpiresIn,
		UserID:       resp.LocalId,
		Email:        resp.Email,
		DisplayName:  resp.DisplayName,
	}, nil
}

func (f *FirebaseAuthClient) SendPasswordReset(ctx context.Context, email string) error {
	if f.toolkit == nil {
		return errors.Unavailable("Password reset is not configured", nil)
	}

	_, err := f.toolkit.Relyingparty.GetOobConfirmationCode(&identitytoolkit.Relyingparty{
		RequestType: "PASSWORD_RESET",
		Email:       email,
	}).Context(ctx).Do()
	if err != nil {
		return toolkitError(err, "Failed to send password reset email")
	}
	return nil
}

// RevokeSessions invalidates every refresh token of uid. ID tokens issued
// before now fail VerifyToken from here on.
func (f *FirebaseAuthClient) RevokeSessions(ctx context.Context, uid string) error {
	if err := f.client.RevokeRefreshTokens(ctx, uid); err != nil {
		return errors.Internal("Failed to revoke sessions", err)
	}
	return nil
}

func (f *FirebaseAuthClient) UpdateProfile(ctx context.Context, uid, displayName, photoURL string) error {
	params := &auth.UserToUpdate{}
	if displayName != "" {
		params = params.DisplayName(displayName)
	}
	if photoURL != "" {
		params = params.PhotoURL(photoURL)
	}

	if _, err := f.client.UpdateUser(ctx, uid, params); err != nil {
		if auth.IsUserNotFound(err) {
			return errors.NotFound("User", err)
		}
		return errors.Internal("Failed to update profile", err)
	}
	return nil
}

// VerifyToken checks signature, expiry and revocation.
func (f *FirebaseAuthClient) VerifyToken(ctx context.Context, token string) (string, error) {
	result, err := f.client.VerifyIDTokenAndCheckRevoked(ctx, token)
	if err != nil {
		return "", errors.Unauthorized("Invalid or expired token", err)
	}

	return result.UID, nil
}

func toolkitError(err error, message string) error {
	var apiErr *googleapi.Error
	if stderrors.As(err, &apiErr) {
		switch {
		case strings.HasPrefix(apiErr.Message, "EMAIL_NOT_FOUND"),
			strings.HasPrefix(apiErr.Message, "INVALID_PASSWORD"),
			strings.HasPrefix(apiErr.Message, "INVALID_LOGIN_CREDENTIALS"),
			strings.HasPrefix(apiErr.Message, "USER_DISABLED"):
			return errors.Unauthorized("Invalid email or password", err)
		case strings.HasPrefix(apiErr.Message, "INVALID_EMAIL"):
			return errors.Validation("email must be a valid email address")
		case strings.HasPrefix(apiErr.Message, "TOO_MANY_ATTEMPTS_TRY_LATER"):
			return errors.TooManyRequests("Too many attempts, try again later", 0)
		}
	}
	return errors.Internal(message, err)
}
