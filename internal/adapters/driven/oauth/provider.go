// Package oauth implements the authorization-code and refresh-token grants
// against the remote authorization server.
package oauth

import (
	"context"
	"errors"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/custodia-labs/ledgerbridge/internal/core/domain"
	"github.com/custodia-labs/ledgerbridge/internal/core/ports/driven"
)

// Ensure Provider implements the interface.
var _ driven.OAuthProvider = (*Provider)(nil)

// DefaultTimeout bounds each token endpoint call.
const DefaultTimeout = 30 * time.Second

// Provider performs OAuth grants with golang.org/x/oauth2.
type Provider struct {
	config     *oauth2.Config
	configured bool
	httpClient *http.Client
}

// NewProvider creates a provider from resolved OAuth settings.
// Client credentials are sent with HTTP basic auth.
func NewProvider(settings domain.OAuthSettings) *Provider {
	return &Provider{
		config: &oauth2.Config{
			ClientID:     settings.ClientID,
			ClientSecret: settings.ClientSecret,
			RedirectURL:  settings.RedirectURI,
			Endpoint: oauth2.Endpoint{
				AuthURL:   settings.AuthURL,
				TokenURL:  settings.TokenURL,
				AuthStyle: oauth2.AuthStyleInHeader,
			},
		},
		configured: settings.IsConfigured(),
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
}

// AuthCodeURL builds the consent URL carrying state.
func (p *Provider) AuthCodeURL(state string) (string, error) {
	if p.config.ClientID == "" {
		return "", domain.ErrNotConfigured
	}
	return p.config.AuthCodeURL(state), nil
}

// Exchange trades an authorization code for a token grant.
func (p *Provider) Exchange(ctx context.Context, code string) (*domain.TokenGrant, error) {
	if !p.configured {
		return nil, domain.ErrNotConfigured
	}

	token, err := p.config.Exchange(p.clientContext(ctx), code)
	if err != nil {
		return nil, domain.NewOAuthError(domain.ErrAuthorizationFailed, describe(err), err)
	}

	switch {
	case token.AccessToken == "":
		return nil, domain.NewOAuthError(domain.ErrAuthorizationFailed, "response has no access token", nil)
	case token.RefreshToken == "":
		return nil, domain.NewOAuthError(domain.ErrAuthorizationFailed, "response has no refresh token", nil)
	case token.Expiry.IsZero():
		return nil, domain.NewOAuthError(domain.ErrAuthorizationFailed, "response has no expiry", nil)
	}
	return toGrant(token), nil
}

// Refresh performs the refresh-token grant.
func (p *Provider) Refresh(ctx context.Context, refreshToken string) (*domain.TokenGrant, error) {
	if !p.configured {
		return nil, domain.ErrNotConfigured
	}

	// An empty access token forces the source to hit the token endpoint.
	source := p.config.TokenSource(p.clientContext(ctx), &oauth2.Token{RefreshToken: refreshToken})
	token, err := source.Token()
	if err != nil {
		return nil, domain.NewOAuthError(domain.ErrRefreshFailed, describe(err), err)
	}
	switch {
	case token.AccessToken == "":
		return nil, domain.NewOAuthError(domain.ErrRefreshFailed, "response has no access token", nil)
	case token.Expiry.IsZero():
		return nil, domain.NewOAuthError(domain.ErrRefreshFailed, "response has no expiry", nil)
	}
	return toGrant(token), nil
}

func (p *Provider) clientContext(ctx context.Context) context.Context {
	if ctx.Value(oauth2.HTTPClient) != nil {
		return ctx
	}
	return context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
}

func toGrant(token *oauth2.Token) *domain.TokenGrant {
	return &domain.TokenGrant{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenType:    token.Type(),
		Expiry:       token.Expiry,
	}
}

// describe extracts the provider's error code from a token endpoint failure.
func describe(err error) string {
	var retrieveErr *oauth2.RetrieveError
	if !errors.As(err, &retrieveErr) {
		return "token endpoint unreachable"
	}
	detail := retrieveErr.ErrorCode
	if retrieveErr.ErrorDescription != "" {
		detail += " (" + retrieveErr.ErrorDescription + ")"
	}
	if detail == "" && retrieveErr.Response != nil {
		detail = retrieveErr.Response.Status
	}
	return detail
}
