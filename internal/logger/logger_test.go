package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reset() {
	SetVerbose(false)
	SetOutput(os.Stderr)
	_ = Init(Options{})
}

func TestSetVerbose(t *testing.T) {
	defer reset()

	SetVerbose(false)
	assert.False(t, IsVerbose())

	SetVerbose(true)
	assert.True(t, IsVerbose())

	SetVerbose(false)
	assert.False(t, IsVerbose())
}

func TestDebug_WhenVerbose(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(true)

	Debug("test message %s", "arg")

	assert.Contains(t, buf.String(), "test message arg")
	assert.Contains(t, buf.String(), "level=debug")
}

func TestDebug_WhenNotVerbose(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(false)

	Debug("hidden")
	Info("hidden too")

	assert.Empty(t, buf.String())
}

func TestWarn_DefaultLevel(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)

	Warn("careful %d", 1)
	Error("broken")

	assert.Contains(t, buf.String(), "careful 1")
	assert.Contains(t, buf.String(), "broken")
}

func TestInit_InfoJSON(t *testing.T) {
	defer reset()

	require.NoError(t, Init(Options{Level: "info", Format: "json"}))
	var buf bytes.Buffer
	SetOutput(&buf)

	Info("synced %d", 3)
	WithFields(Fields{"owner": "system"}).Info("with fields")

	out := buf.String()
	assert.Contains(t, out, `"msg":"synced 3"`)
	assert.Contains(t, out, `"owner":"system"`)
}

func TestInit_ReinitClosesPreviousFile(t *testing.T) {
	defer reset()
	prefix := filepath.Join(t.TempDir(), "ledgerbridge")

	require.NoError(t, Init(Options{Level: "info", File: prefix}))
	first := logFile
	require.NotNil(t, first)

	require.NoError(t, Init(Options{Level: "info", File: prefix}))
	assert.NotSame(t, first, logFile)
	_, err := first.Write([]byte("late"))
	assert.ErrorIs(t, err, os.ErrClosed)

	require.NoError(t, Close())
	assert.Nil(t, logFile)
}

func TestInit_WithoutFileClosesPreviousFile(t *testing.T) {
	defer reset()

	require.NoError(t, Init(Options{File: filepath.Join(t.TempDir(), "ledgerbridge")}))
	first := logFile
	require.NotNil(t, first)

	require.NoError(t, Init(Options{}))
	assert.Nil(t, logFile)
	_, err := first.Write([]byte("late"))
	assert.ErrorIs(t, err, os.ErrClosed)
}
