package firebase

import (
	"context"

	identitytoolkit "google.golang.org/api/identitytoolkit/v3"

	"mangareader/pkg/errors"
)

// IssueDevToken mints an ID token for uid without a password. Only the
// development router exposes it.
func (f *FirebaseAuthClient) IssueDevToken(ctx context.Context, uid string) (string, error) {
	customToken, err := f.client.CustomToken(ctx, uid)
	if err != nil {
		return "", errors.Internal("Failed to mint custom token", err)
	}

	if f.toolkit == nil {
		return customToken, nil
	}

	resp, err := f.toolkit.Relyingparty.VerifyCustomToken(&identitytoolkit.IdentitytoolkitRelyingpartyVerifyCustomTokenRequest{
		Token:             customToken,
		ReturnSecureToken: true,
	}).Context(ctx).Do()
	if err != nil {
		return "", toolkitError(err, "Failed to exchange custom token")
	}
	return resp.IdToken, nil
}
