// Package cli implements the ledgerbridge command line.
//
// Commands drive the core through the driving ports. The composition root
// hands Execute a Bootstrap that builds those services lazily, so commands
// that only touch settings never open a database.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ledgerbridge/internal/core/domain"
	"github.com/custodia-labs/ledgerbridge/internal/core/ports/driven"
	"github.com/custodia-labs/ledgerbridge/internal/core/ports/driving"
	"github.com/custodia-labs/ledgerbridge/internal/logger"
)

// DefaultPrincipal is the principal id the CLI acts as without --as.
const DefaultPrincipal = "cli"

// Runtime is the wired application a command runs against.
type Runtime struct {
	Config domain.Config
	Mirror driving.MirrorService
	OAuth  driving.OAuthManager
	// Close releases stores and caches. May be nil.
	Close func() error
}

// Bootstrap builds the runtime for a settings directory.
type Bootstrap func(ctx context.Context, configDir string) (*Runtime, error)

// SettingsOpener opens the settings store in a settings directory.
type SettingsOpener func(configDir string) (driven.ConfigStore, error)

// Options configures Execute.
type Options struct {
	Version      string
	Bootstrap    Bootstrap
	OpenSettings SettingsOpener
}

var (
	version = "dev"

	bootstrap    Bootstrap
	openSettings SettingsOpener

	// rt and settingsStore are built on first use. Tests assign them directly.
	rt            *Runtime
	settingsStore driven.ConfigStore
)

// Global flags.
var (
	verbose     bool
	configDir   string
	asPrincipal string
	asAdmin     bool
)

var rootCmd = &cobra.Command{
	Use:   "ledgerbridge",
	Short: "Mirror FreeAgent invoices locally",
	Long: `ledgerbridge connects to FreeAgent over OAuth, mirrors contacts,
projects and invoices into a local database and serves them scoped to the
caller over the command line, HTTP and MCP.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		if verbose {
			logger.SetVerbose(true)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "Settings directory (default ~/.ledgerbridge)")
	rootCmd.PersistentFlags().StringVar(&asPrincipal, "as", DefaultPrincipal, "Principal id to act as")
	rootCmd.PersistentFlags().BoolVar(&asAdmin, "admin", true, "Act as an administrator")
}

// Execute runs the root command and releases the runtime afterwards.
func Execute(ctx context.Context, opts Options) error {
	if opts.Version != "" {
		version = opts.Version
	}
	bootstrap = opts.Bootstrap
	openSettings = opts.OpenSettings

	err := rootCmd.ExecuteContext(ctx)

	if rt != nil && rt.Close != nil {
		if closeErr := rt.Close(); closeErr != nil {
			logger.Warn("Failed to close runtime: %v", closeErr)
		}
	}
	return err
}

func loadRuntime(cmd *cobra.Command) (*Runtime, error) {
	if rt != nil {
		return rt, nil
	}
	if bootstrap == nil {
		return nil, errors.New("runtime not configured")
	}
	built, err := bootstrap(cmd.Context(), configDir)
	if err != nil {
		return nil, err
	}
	rt = built
	return rt, nil
}

func loadSettings() (driven.ConfigStore, error) {
	if settingsStore != nil {
		return settingsStore, nil
	}
	if openSettings == nil {
		return nil, errors.New("settings store not configured")
	}
	store, err := openSettings(configDir)
	if err != nil {
		return nil, fmt.Errorf("open settings: %w", err)
	}
	settingsStore = store
	return store, nil
}

// currentPrincipal builds the principal named by --as and --admin.
func currentPrincipal(cmd *cobra.Command, r *Runtime) (domain.Principal, error) {
	if asPrincipal == "" {
		return nil, fmt.Errorf("%w: --as must not be empty", domain.ErrInvalidInput)
	}
	return r.Mirror.Principal(cmd.Context(), asPrincipal, asAdmin)
}

// session loads the runtime and the acting principal in one step.
func session(cmd *cobra.Command) (*Runtime, domain.Principal, error) {
	r, err := loadRuntime(cmd)
	if err != nil {
		return nil, nil, err
	}
	p, err := currentPrincipal(cmd, r)
	if err != nil {
		return nil, nil, err
	}
	return r, p, nil
}
