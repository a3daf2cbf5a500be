package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/ledgerbridge/internal/config"
	"github.com/custodia-labs/ledgerbridge/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and change settings stored in settings.toml.

Stored settings take precedence over LEDGERBRIDGE_* environment variables,
which take precedence over built-in defaults.`,
	RunE: runSettingsShow,
}

var settingsGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Show one setting, or all of them",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSettingsGet,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Store a setting",
	Long: `Store a setting. Lists are comma separated and durations use Go
syntax such as 30m. Credentials must be set with set-secret.`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsSetSecretCmd = &cobra.Command{
	Use:   "set-secret [key]",
	Short: "Store a credential without echoing it",
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsSetSecret,
}

var settingsUnsetCmd = &cobra.Command{
	Use:   "unset [key]",
	Short: "Remove a stored setting so the environment or default applies",
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsUnset,
}

func init() {
	settingsCmd.AddCommand(settingsGetCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsSetSecretCmd)
	settingsCmd.AddCommand(settingsUnsetCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	return runSettingsGet(cmd, nil)
}

func runSettingsGet(cmd *cobra.Command, args []string) error {
	store, err := loadSettings()
	if err != nil {
		return err
	}
	resolver := config.NewResolver(store, configDir)

	if len(args) == 1 {
		key := args[0]
		if !config.IsKnown(key) {
			return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
		}
		cmd.Println(displayValue(key, resolver.Value(key)))
		return nil
	}

	cmd.Printf("Settings file: %s\n\n", store.Path())
	for _, key := range config.Keys() {
		cmd.Printf("  %-26s %-40s %s\n", key, displayValue(key, resolver.Value(key)),
			mutedStyle.Render("("+settingSource(store, key)+")"))
	}
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	key, raw := args[0], args[1]
	if config.IsSecret(key) {
		return fmt.Errorf("%s is a credential, use 'ledgerbridge settings set-secret %s'", key, key)
	}
	return storeSetting(cmd, key, raw)
}

func runSettingsSetSecret(cmd *cobra.Command, args []string) error {
	key := args[0]
	if !config.IsKnown(key) {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	cmd.Printf("Enter value for %s: ", key)
	secret := readPassword(cmd.InOrStdin())
	cmd.Println()
	if secret == "" {
		return errors.New("value must not be empty")
	}
	return storeSetting(cmd, key, secret)
}

func runSettingsUnset(cmd *cobra.Command, args []string) error {
	key := args[0]
	if !config.IsKnown(key) {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
	store, err := loadSettings()
	if err != nil {
		return err
	}
	if err := store.Unset(key); err != nil {
		return fmt.Errorf("failed to remove %s: %w", key, err)
	}
	cmd.Printf("Removed %s\n", key)
	return nil
}

func storeSetting(cmd *cobra.Command, key, raw string) error {
	value, err := config.ParseValue(key, raw)
	if err != nil {
		return err
	}
	store, err := loadSettings()
	if err != nil {
		return err
	}
	if err := store.Set(key, value); err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	cmd.Printf("Set %s = %s\n", key, displayValue(key, value))
	return nil
}

// settingSource names the layer key's effective value comes from.
func settingSource(store interface{ Get(string) (any, bool) }, key string) string {
	if _, ok := store.Get(key); ok {
		return "settings"
	}
	if _, ok := os.LookupEnv(config.EnvVar(key)); ok {
		return "env"
	}
	return "default"
}

func displayValue(key string, value any) string {
	text := fmt.Sprint(value)
	if list, ok := value.([]string); ok {
		text = strings.Join(list, ",")
	}
	if config.IsSecret(key) {
		if text == "" {
			return "(not set)"
		}
		return maskSecret(text)
	}
	if text == "" {
		return `""`
	}
	return text
}

// readPassword reads without echo from a terminal, else one line from in.
//
//nolint:errcheck // CLI helper, error ignored for UX
func readPassword(in io.Reader) string {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	reader := bufio.NewReader(in)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func maskSecret(secret string) string {
	if len(secret) <= 8 {
		return "****"
	}
	return secret[:4] + "..." + secret[len(secret)-4:]
}
