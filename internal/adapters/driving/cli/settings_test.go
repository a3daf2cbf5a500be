package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ledgerbridge/internal/config"
	"github.com/custodia-labs/ledgerbridge/internal/core/domain"
)

func TestMaskSecret(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Short secret",
			input:    "abc123",
			expected: "****",
		},
		{
			name:     "Exactly 8 chars",
			input:    "12345678",
			expected: "****",
		},
		{
			name:     "Long secret",
			input:    "sk-1234567890abcdef",
			expected: "sk-1...cdef",
		},
		{
			name:     "Empty secret",
			input:    "",
			expected: "****",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, maskSecret(tt.input))
		})
	}
}

func TestDisplayValue(t *testing.T) {
	assert.Equal(t, "(not set)", displayValue(config.KeyClientSecret, ""))
	assert.Equal(t, "abcd...mnop", displayValue(config.KeyClientSecret, "abcdefghijklmnop"))
	assert.Equal(t, "a.test,b.test", displayValue(config.KeyAllowedOrigins, []string{"a.test", "b.test"}))
	assert.Equal(t, `""`, displayValue(config.KeyClientID, ""))
	assert.Equal(t, "120", displayValue(config.KeyRateLimit, 120))
}

func TestSettingsSetCmd_StoresTypedValue(t *testing.T) {
	cleanup := setupTestRuntime(&mockMirror{}, nil)
	defer cleanup()

	out, err := run("settings", "set", config.KeyPageSize, "25")

	require.NoError(t, err)
	assert.Contains(t, out, "Set pagination.page_size = 25")
	value, ok := settingsStore.Get(config.KeyPageSize)
	require.True(t, ok)
	assert.Equal(t, 25, value)
}

func TestSettingsSetCmd_RejectsInvalid(t *testing.T) {
	cleanup := setupTestRuntime(&mockMirror{}, nil)
	defer cleanup()

	_, err := run("settings", "set", config.KeyPageSize, "many")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = run("settings", "set", "no.such.key", "x")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSettingsSetCmd_RefusesSecrets(t *testing.T) {
	cleanup := setupTestRuntime(&mockMirror{}, nil)
	defer cleanup()

	_, err := run("settings", "set", config.KeyClientSecret, "hunter2")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "set-secret")
	_, ok := settingsStore.Get(config.KeyClientSecret)
	assert.False(t, ok)
}

func TestSettingsSetSecretCmd_ReadsInput(t *testing.T) {
	cleanup := setupTestRuntime(&mockMirror{}, nil)
	defer cleanup()
	rootCmd.SetIn(strings.NewReader("super-secret-value\n"))

	out, err := run("settings", "set-secret", config.KeyClientSecret)

	require.NoError(t, err)
	assert.NotContains(t, out, "super-secret-value")
	stored, _ := settingsStore.Get(config.KeyClientSecret)
	assert.Equal(t, "super-secret-value", stored)
}

func TestSettingsSetSecretCmd_EmptyInput(t *testing.T) {
	cleanup := setupTestRuntime(&mockMirror{}, nil)
	defer cleanup()
	rootCmd.SetIn(strings.NewReader("\n"))

	_, err := run("settings", "set-secret", config.KeyClientSecret)

	assert.Error(t, err)
}

func TestSettingsGetCmd(t *testing.T) {
	cleanup := setupTestRuntime(&mockMirror{}, nil)
	defer cleanup()
	require.NoError(t, settingsStore.Set(config.KeyClientID, "my-client"))

	out, err := run("settings", "get", config.KeyClientID)
	require.NoError(t, err)
	assert.Equal(t, "my-client\n", out)

	out, err = run("settings", "get")
	require.NoError(t, err)
	assert.Contains(t, out, config.KeyClientID)
	assert.Contains(t, out, "(settings)")
	assert.Contains(t, out, config.KeyLogLevel)
}

func TestSettingsGetCmd_UnknownKey(t *testing.T) {
	cleanup := setupTestRuntime(&mockMirror{}, nil)
	defer cleanup()

	_, err := run("settings", "get", "nope")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSettingsUnsetCmd(t *testing.T) {
	cleanup := setupTestRuntime(&mockMirror{}, nil)
	defer cleanup()
	require.NoError(t, settingsStore.Set(config.KeyOwnerMode, "per_user"))

	out, err := run("settings", "unset", config.KeyOwnerMode)

	require.NoError(t, err)
	assert.Contains(t, out, "Removed "+config.KeyOwnerMode)
	_, ok := settingsStore.Get(config.KeyOwnerMode)
	assert.False(t, ok)
}

func TestSettingsUnsetCmd_UnknownKey(t *testing.T) {
	cleanup := setupTestRuntime(&mockMirror{}, nil)
	defer cleanup()

	_, err := run("settings", "unset", "nope.nope")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
