package driving

import (
	"context"

	"github.com/custodia-labs/ledgerbridge/internal/core/domain"
)

// OAuthManager owns the OAuth token lifecycle for every owner.
type OAuthManager interface {
	// AuthorizationURL returns the provider consent URL carrying state.
	AuthorizationURL(state string) (string, error)

	// CompleteAuthorization exchanges code and stores the token for owner,
	// superseding any prior token.
	CompleteAuthorization(ctx context.Context, code, owner string) (*domain.OAuthToken, error)

	// GetValidToken returns a token that is not within the refresh buffer.
	// Returns nil if the owner has no token or refreshing it failed.
	GetValidToken(ctx context.Context, owner string) (*domain.OAuthToken, error)

	// Refresh performs the refresh-token grant and rewrites token in place.
	Refresh(ctx context.Context, token *domain.OAuthToken) (*domain.OAuthToken, error)

	// Revoke deletes the owner's token. Idempotent.
	Revoke(ctx context.Context, owner string) error

	// Status returns the stored token without refreshing it, or nil.
	Status(ctx context.Context, owner string) (*domain.OAuthToken, error)
}
