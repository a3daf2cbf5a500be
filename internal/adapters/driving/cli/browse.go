package cli

import (
	"fmt"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/ledgerbridge/internal/adapters/driving/tui"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse the mirror in an interactive terminal UI",
	Long: `Launch an interactive invoice browser acting as the --as principal.

Controls:
  ↑/k, ↓/j - Navigate
  Enter    - Open
  /        - Filter invoices
  s        - Sync invoices (administrators)
  f        - Re-fetch the open invoice (administrators)
  Esc      - Back
  q        - Quit`,
	Args: cobra.NoArgs,
	RunE: runBrowse,
}

// runProgram runs a bubbletea model to completion. Tests replace it.
var runProgram = func(model tea.Model, opts ...tea.ProgramOption) error {
	_, err := tea.NewProgram(model, opts...).Run()
	return err
}

func init() {
	rootCmd.AddCommand(browseCmd)
}

func runBrowse(cmd *cobra.Command, _ []string) error {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	r, p, err := session(cmd)
	if err != nil {
		return err
	}

	app, err := tui.NewApp(tui.NewPorts(r.Mirror, p))
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	app.WithContext(cmd.Context())

	if err := runProgram(app, tea.WithAltScreen(), tea.WithContext(cmd.Context())); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
