package cli

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ledgerbridge/internal/core/domain"
)

func TestConnectCmd_NonAdminForbidden(t *testing.T) {
	oauth := &mockOAuth{}
	cleanup := setupTestRuntime(&mockMirror{}, oauth)
	defer cleanup()

	_, err := run("connect", "--no-browser", "--admin=false")

	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestConnectCmd_NotConfigured(t *testing.T) {
	oauth := &mockOAuth{urlErr: domain.ErrNotConfigured}
	cleanup := setupTestRuntime(&mockMirror{}, oauth)
	defer cleanup()

	out, err := run("connect", "--no-browser")

	assert.ErrorIs(t, err, domain.ErrNotConfigured)
	assert.NotContains(t, out, "Waiting for the callback")
}

func TestDisconnectCmd(t *testing.T) {
	oauth := &mockOAuth{}
	cleanup := setupTestRuntime(&mockMirror{}, oauth)
	defer cleanup()

	out, err := run("disconnect")

	require.NoError(t, err)
	assert.Equal(t, []string{domain.SystemOwner}, oauth.revoked)
	assert.Contains(t, out, "Disconnected owner "+domain.SystemOwner)
}

func TestDisconnectCmd_NonAdminForbidden(t *testing.T) {
	oauth := &mockOAuth{}
	cleanup := setupTestRuntime(&mockMirror{}, oauth)
	defer cleanup()

	_, err := run("disconnect", "--admin=false")

	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.Empty(t, oauth.revoked)
}

func TestStatusCmd_NotConnected(t *testing.T) {
	cleanup := setupTestRuntime(&mockMirror{}, nil)
	defer cleanup()

	out, err := run("status")

	require.NoError(t, err)
	assert.Contains(t, out, "[Connection]")
	assert.Contains(t, out, "not connected")
	assert.Contains(t, out, "ID: cli")
	assert.Contains(t, out, "Administrator: true")
	assert.Contains(t, out, "Environment: sandbox")
	assert.Contains(t, out, "Database: memory")
}

func TestStatusCmd_LinkedPrincipal(t *testing.T) {
	mirror := &mockMirror{
		token: &domain.OAuthToken{OwnerID: domain.SystemOwner, ExpiresAt: time.Now().Add(time.Hour)},
		links: map[string]string{"alice": "https://api.test/v2/contacts/42"},
	}
	cleanup := setupTestRuntime(mirror, nil)
	defer cleanup()

	out, err := run("status", "--as", "alice", "--admin=false")

	require.NoError(t, err)
	assert.Contains(t, out, "Expires:")
	assert.Contains(t, out, "Linked contact: https://api.test/v2/contacts/42")
	assert.Contains(t, out, "Administrator: false")
}

func TestStatusCmd_EmptyPrincipal(t *testing.T) {
	cleanup := setupTestRuntime(&mockMirror{}, nil)
	defer cleanup()

	_, err := run("status", "--as", "")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestConnectionLabel(t *testing.T) {
	now := time.Now()

	assert.Contains(t, connectionLabel(nil, now), "not connected")
	assert.Contains(t, connectionLabel(&domain.OAuthToken{ExpiresAt: now.Add(-time.Minute)}, now), "expired")
	assert.Contains(t, connectionLabel(&domain.OAuthToken{ExpiresAt: now.Add(time.Hour)}, now), "connected")
}
