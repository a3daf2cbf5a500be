package cli

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ledgerbridge/internal/adapters/driving/tui"
	"github.com/custodia-labs/ledgerbridge/internal/adapters/driving/tui/messages"
)

func stubProgram(t *testing.T, fn func(tea.Model, ...tea.ProgramOption) error) {
	t.Helper()
	old := runProgram
	runProgram = fn
	t.Cleanup(func() { runProgram = old })
}

func TestBrowseCommand_RunsApp(t *testing.T) {
	cleanup := setupTestRuntime(&mockMirror{invoices: testInvoices()}, nil)
	defer cleanup()

	var got tea.Model
	stubProgram(t, func(m tea.Model, _ ...tea.ProgramOption) error {
		got = m
		return nil
	})

	_, err := run("browse", "--as", "alice", "--admin=false")
	require.NoError(t, err)

	app, ok := got.(*tui.App)
	require.True(t, ok)
	assert.Equal(t, messages.ViewMenu, app.CurrentView())
}

func TestBrowseCommand_ProgramError(t *testing.T) {
	cleanup := setupTestRuntime(&mockMirror{}, nil)
	defer cleanup()

	stubProgram(t, func(tea.Model, ...tea.ProgramOption) error {
		return errors.New("no tty")
	})

	_, err := run("browse")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TUI error: no tty")
}

func TestBrowseCommand_NoRuntime(t *testing.T) {
	cleanup := setupTestRuntime(&mockMirror{}, nil)
	defer cleanup()
	rt = nil
	oldBootstrap := bootstrap
	bootstrap = nil
	defer func() { bootstrap = oldBootstrap }()

	stubProgram(t, func(tea.Model, ...tea.ProgramOption) error {
		t.Fatal("program should not start")
		return nil
	})

	_, err := run("browse")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "runtime not configured")
}
