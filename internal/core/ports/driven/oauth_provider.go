package driven

import (
	"context"

	"github.com/custodia-labs/ledgerbridge/internal/core/domain"
)

// OAuthProvider talks to the remote authorization server.
// Implementations return *domain.OAuthError values.
type OAuthProvider interface {
	// AuthCodeURL builds the consent URL carrying state.
	// Returns domain.ErrNotConfigured if no client id is set.
	AuthCodeURL(state string) (string, error)

	// Exchange trades an authorization code for a token grant.
	// A grant missing the access token, refresh token or expiry is an
	// ErrAuthorizationFailed.
	Exchange(ctx context.Context, code string) (*domain.TokenGrant, error)

	// Refresh performs the refresh-token grant.
	// The returned grant may carry an empty RefreshToken when the provider
	// did not rotate it.
	Refresh(ctx context.Context, refreshToken string) (*domain.TokenGrant, error)
}
