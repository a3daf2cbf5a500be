package driven

import (
	"context"

	"github.com/custodia-labs/ledgerbridge/internal/core/domain"
)

// TokenStore persists OAuth tokens keyed by owner.
// There is at most one token per owner.
type TokenStore interface {
	// Save stores a token, superseding any prior token for the same owner.
	Save(ctx context.Context, token domain.OAuthToken) error

	// GetByOwner retrieves the token for an owner.
	// Returns nil if no token exists for the owner.
	GetByOwner(ctx context.Context, ownerID string) (*domain.OAuthToken, error)

	// Update rewrites the access token, refresh token and expiry in place.
	// Returns domain.ErrNotFound if the owner has no token.
	Update(ctx context.Context, token domain.OAuthToken) error

	// Delete removes the owner's token. Deleting a missing token is not an error.
	Delete(ctx context.Context, ownerID string) error

	// Owners lists every owner that currently has a token.
	Owners(ctx context.Context) ([]string, error)
}
