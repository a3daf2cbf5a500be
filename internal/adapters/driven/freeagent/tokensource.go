package freeagent

import (
	"context"

	"golang.org/x/oauth2"

	"github.com/custodia-labs/ledgerbridge/internal/core/domain"
)

// Tokens supplies valid tokens per owner. Satisfied by the OAuth manager.
type Tokens interface {
	GetValidToken(ctx context.Context, owner string) (*domain.OAuthToken, error)
}

// ownerTokenSource adapts Tokens to oauth2.TokenSource for one owner.
type ownerTokenSource struct {
	ctx    context.Context
	tokens Tokens
	owner  string
}

// NewTokenSource creates an oauth2.TokenSource for owner.
// Token returns an ErrNoToken OAuthError when the owner is not connected.
func NewTokenSource(ctx context.Context, tokens Tokens, owner string) oauth2.TokenSource {
	return &ownerTokenSource{ctx: ctx, tokens: tokens, owner: owner}
}

// Token implements oauth2.TokenSource.
func (s *ownerTokenSource) Token() (*oauth2.Token, error) {
	token, err := s.tokens.GetValidToken(s.ctx, s.owner)
	if err != nil {
		return nil, err
	}
	if token == nil {
		return nil, domain.NewOAuthError(domain.ErrNoToken, "owner "+s.owner+" is not connected", nil)
	}

	tokenType := token.TokenType
	if tokenType == "" {
		tokenType = "Bearer"
	}
	return &oauth2.Token{
		AccessToken:  token.AccessToken,
		TokenType:    tokenType,
		RefreshToken: token.RefreshToken,
		Expiry:       token.ExpiresAt,
	}, nil
}
