package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/ledgerbridge/internal/core/domain"
	"github.com/custodia-labs/ledgerbridge/internal/core/ports/driven"
	"github.com/custodia-labs/ledgerbridge/internal/core/ports/driving"
	"github.com/custodia-labs/ledgerbridge/internal/logger"
)

// Ensure OAuthManager implements the interface.
var _ driving.OAuthManager = (*OAuthManager)(nil)

// OAuthManager exchanges, refreshes and revokes tokens.
// It is the only writer of the TokenStore.
type OAuthManager struct {
	provider      driven.OAuthProvider
	tokens        driven.TokenStore
	refreshBuffer time.Duration
	now           func() time.Time
}

// NewOAuthManager creates a new OAuth manager.
func NewOAuthManager(provider driven.OAuthProvider, tokens driven.TokenStore) *OAuthManager {
	return &OAuthManager{
		provider:      provider,
		tokens:        tokens,
		refreshBuffer: domain.RefreshBuffer,
		now:           time.Now,
	}
}

// AuthorizationURL returns the consent URL for state.
func (m *OAuthManager) AuthorizationURL(state string) (string, error) {
	if state == "" {
		return "", fmt.Errorf("%w: state is required", domain.ErrInvalidInput)
	}
	return m.provider.AuthCodeURL(state)
}

// CompleteAuthorization exchanges code and stores the resulting token for owner.
func (m *OAuthManager) CompleteAuthorization(ctx context.Context, code, owner string) (*domain.OAuthToken, error) {
	if code == "" {
		return nil, domain.NewOAuthError(domain.ErrInvalidCallback, "missing authorization code", nil)
	}

	grant, err := m.provider.Exchange(ctx, code)
	if err != nil {
		return nil, err
	}

	now := m.now()
	token := domain.OAuthToken{
		ID:           uuid.New().String(),
		OwnerID:      owner,
		AccessToken:  grant.AccessToken,
		RefreshToken: grant.RefreshToken,
		TokenType:    grant.TokenType,
		ExpiresAt:    grant.Expiry,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := m.tokens.Save(ctx, token); err != nil {
		return nil, fmt.Errorf("save token: %w", err)
	}

	logger.Info("Stored OAuth token for owner %s (expires %s)", owner, token.ExpiresAt.Format(time.RFC3339))
	return &token, nil
}

// GetValidToken returns the owner's token, refreshing it first when it is
// within the refresh buffer. A failed refresh deletes the token and returns nil.
func (m *OAuthManager) GetValidToken(ctx context.Context, owner string) (*domain.OAuthToken, error) {
	token, err := m.tokens.GetByOwner(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("get token: %w", err)
	}
	if token == nil {
		return nil, nil
	}

	if !token.ExpiresWithin(m.now(), m.refreshBuffer) {
		return token, nil
	}

	logger.Debug("Token for owner %s expires at %s, refreshing", owner, token.ExpiresAt.Format(time.RFC3339))
	refreshed, err := m.Refresh(ctx, token)
	if err != nil {
		if !errors.Is(err, domain.ErrRefreshFailed) {
			return nil, err
		}
		logger.Warn("Token refresh failed for owner %s, disconnecting: %v", owner, err)
		if delErr := m.tokens.Delete(ctx, owner); delErr != nil {
			logger.Error("Failed to delete token for owner %s: %v", owner, delErr)
		}
		return nil, nil
	}
	return refreshed, nil
}

// Refresh performs the refresh-token grant and rewrites token in place.
// Concurrent refreshes for one owner are not serialised; the last write wins.
func (m *OAuthManager) Refresh(ctx context.Context, token *domain.OAuthToken) (*domain.OAuthToken, error) {
	if token == nil || token.RefreshToken == "" {
		return nil, domain.NewOAuthError(domain.ErrRefreshFailed, "no refresh token", nil)
	}

	grant, err := m.provider.Refresh(ctx, token.RefreshToken)
	if err != nil {
		var oauthErr *domain.OAuthError
		if errors.As(err, &oauthErr) || errors.Is(err, domain.ErrNotConfigured) {
			return nil, err
		}
		return nil, domain.NewOAuthError(domain.ErrRefreshFailed, "", err)
	}

	token.AccessToken = grant.AccessToken
	if grant.RefreshToken != "" {
		token.RefreshToken = grant.RefreshToken
	}
	if grant.TokenType != "" {
		token.TokenType = grant.TokenType
	}
	token.ExpiresAt = grant.Expiry
	token.UpdatedAt = m.now()

	if err := m.tokens.Update(ctx, *token); err != nil {
		return nil, fmt.Errorf("update token: %w", err)
	}

	logger.Info("Refreshed OAuth token for owner %s", token.OwnerID)
	return token, nil
}

// Revoke deletes the owner's token.
func (m *OAuthManager) Revoke(ctx context.Context, owner string) error {
	if err := m.tokens.Delete(ctx, owner); err != nil {
		return fmt.Errorf("delete token: %w", err)
	}
	logger.Info("Revoked OAuth token for owner %s", owner)
	return nil
}

// Status returns the stored token without refreshing it.
func (m *OAuthManager) Status(ctx context.Context, owner string) (*domain.OAuthToken, error) {
	return m.tokens.GetByOwner(ctx, owner)
}
