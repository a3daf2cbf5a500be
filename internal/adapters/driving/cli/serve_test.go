package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ledgerbridge/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/ledgerbridge/internal/core/domain"
)

func parseIssued(t *testing.T, raw string) *httpapi.Claims {
	t.Helper()
	claims := &httpapi.Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return []byte("cli-test-secret"), nil
	})
	require.NoError(t, err)
	require.True(t, token.Valid)
	return claims
}

func TestTokenCmd(t *testing.T) {
	cleanup := setupTestRuntime(&mockMirror{}, nil)
	defer cleanup()

	out, err := run("token", "alice")
	require.NoError(t, err)

	claims := parseIssued(t, strings.TrimSpace(out))
	assert.Equal(t, "alice", claims.Subject)
	assert.False(t, claims.Admin)
	assert.InDelta(t, time.Now().Add(24*time.Hour).Unix(), claims.ExpiresAt, 5)
}

func TestTokenCmd_GrantAdmin(t *testing.T) {
	cleanup := setupTestRuntime(&mockMirror{}, nil)
	defer cleanup()

	out, err := run("token", "ops", "--grant-admin", "--ttl", "1h")
	require.NoError(t, err)

	claims := parseIssued(t, strings.TrimSpace(out))
	assert.True(t, claims.Admin)
	assert.InDelta(t, time.Now().Add(time.Hour).Unix(), claims.ExpiresAt, 5)
}

func TestTokenCmd_MissingSecret(t *testing.T) {
	cleanup := setupTestRuntime(&mockMirror{}, nil)
	defer cleanup()
	rt.Config.Server.JWTSecret = ""

	_, err := run("token", "alice")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestServeCmd_RequiresSecrets(t *testing.T) {
	cleanup := setupTestRuntime(&mockMirror{}, nil)
	defer cleanup()

	// No session secret in the test runtime.
	_, err := run("serve", "--addr", "127.0.0.1:0")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestMCPCmd_EmptyPrincipal(t *testing.T) {
	cleanup := setupTestRuntime(&mockMirror{}, nil)
	defer cleanup()

	_, err := run("mcp", "--as", "")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
