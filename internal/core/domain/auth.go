package domain

import "time"

// SystemOwner is the owner key used when one connection serves every principal.
const SystemOwner = "system"

// RefreshBuffer is how long before expiry a token is treated as expiring.
const RefreshBuffer = 5 * time.Minute

// OAuthToken represents the stored OAuth credentials for one owner.
// There is at most one token per OwnerID.
type OAuthToken struct {
	// ID is the unique identifier (UUID).
	ID string `json:"id"`
	// OwnerID is the key the token is stored under.
	OwnerID string `json:"owner_id"`
	// AccessToken is the bearer token for API access.
	// SENSITIVE: never log this value.
	AccessToken string `json:"access_token"`
	// RefreshToken is used to obtain new access tokens.
	// SENSITIVE: never log this value.
	RefreshToken string `json:"refresh_token"`
	// TokenType is typically "Bearer".
	TokenType string `json:"token_type"`
	// ExpiresAt is when the access token expires.
	ExpiresAt time.Time `json:"expires_at"`
	// CreatedAt is when the token was first stored.
	CreatedAt time.Time `json:"created_at"`
	// UpdatedAt is when the token was last rewritten.
	UpdatedAt time.Time `json:"updated_at"`
}

// IsExpired returns true if the token has expired at now.
func (t *OAuthToken) IsExpired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// ExpiresWithin returns true if the token expires within d of now.
func (t *OAuthToken) ExpiresWithin(now time.Time, d time.Duration) bool {
	return t.ExpiresAt.Sub(now) < d
}

// TokenGrant is what the provider token endpoint returned.
type TokenGrant struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	Expiry       time.Time
}
