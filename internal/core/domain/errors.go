package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrForbidden indicates the principal may not perform the operation.
	ErrForbidden = errors.New("forbidden")

	// ErrReadOnly indicates a write was attempted against the read-only mirror.
	ErrReadOnly = errors.New("mirror is read-only")

	// ErrNotImplemented indicates functionality is not available in this build.
	ErrNotImplemented = errors.New("not implemented")

	// Configuration Errors.

	// ErrNotConfigured indicates OAuth client credentials are missing.
	// Fatal to any OAuth operation.
	ErrNotConfigured = errors.New("oauth client is not configured")

	// OAuth Errors. Used as the Kind of an OAuthError.

	// ErrAuthorizationFailed indicates the authorization-code exchange failed.
	ErrAuthorizationFailed = errors.New("authorization failed")

	// ErrRefreshFailed indicates the refresh-token grant failed.
	ErrRefreshFailed = errors.New("token refresh failed")

	// ErrInvalidCallback indicates the OAuth callback was malformed or the state did not match.
	ErrInvalidCallback = errors.New("invalid oauth callback")

	// ErrNoToken indicates no usable token exists for the owner.
	ErrNoToken = errors.New("no oauth token")

	// API Errors. Used as the Kind of an APIError.

	// ErrRequestFailed indicates the remote returned a non-success status.
	ErrRequestFailed = errors.New("request failed")

	// ErrRateLimited indicates the local or remote rate limit was exceeded.
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrAuthenticationFailed indicates the remote rejected the access token.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrNetwork indicates the remote could not be reached after retries.
	ErrNetwork = errors.New("network error")

	// ErrDecoding indicates a response body could not be decoded.
	ErrDecoding = errors.New("decoding error")
)

// OAuthError is returned by OAuth Manager operations.
// Kind is one of ErrAuthorizationFailed, ErrRefreshFailed,
// ErrInvalidCallback or ErrNoToken.
type OAuthError struct {
	Kind   error
	Detail string
	Err    error
}

// NewOAuthError creates an OAuthError of the given kind.
func NewOAuthError(kind error, detail string, cause error) *OAuthError {
	return &OAuthError{Kind: kind, Detail: detail, Err: cause}
}

func (e *OAuthError) Error() string {
	msg := "oauth: " + e.Kind.Error()
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the kind and the underlying cause to errors.Is.
func (e *OAuthError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// APIError is returned by the API Gateway.
// Kind is one of ErrRequestFailed, ErrRateLimited, ErrAuthenticationFailed,
// ErrNetwork or ErrDecoding.
type APIError struct {
	Kind       error
	StatusCode int
	Body       string
	Path       string
	Err        error
}

func (e *APIError) Error() string {
	msg := "api: " + e.Kind.Error()
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Path != "" {
		msg += " " + e.Path
	}
	if e.Body != "" {
		msg += ": " + e.Body
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the kind and the underlying cause to errors.Is.
func (e *APIError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// IsRateLimited checks if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

// IsUnauthorized checks if the error means the caller has no usable connection.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrAuthenticationFailed) || errors.Is(err, ErrNoToken)
}

// StatusCode returns the remote HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
