package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ledgerbridge/internal/adapters/driving/oauth"
	"github.com/custodia-labs/ledgerbridge/internal/core/domain"
	"github.com/custodia-labs/ledgerbridge/internal/core/services"
	"github.com/custodia-labs/ledgerbridge/internal/logger"
)

// connectTimeout bounds how long connect waits for the browser round trip.
const connectTimeout = 5 * time.Minute

var connectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Connect to FreeAgent",
	Long: `Runs the OAuth authorisation-code flow against FreeAgent.

A local callback server listens on the configured oauth.redirect_uri, the
consent page is opened in your browser and the resulting token is stored
for the acting owner. Any previous token for that owner is replaced.

The redirect URI registered with your FreeAgent app must match
oauth.redirect_uri exactly.`,
	RunE: runConnect,
}

var disconnectCmd = &cobra.Command{
	Use:   "disconnect",
	Short: "Forget the stored FreeAgent token",
	RunE:  runDisconnect,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show connection and configuration status",
	RunE:  runStatus,
}

var connectNoBrowser bool

func init() {
	connectCmd.Flags().BoolVar(&connectNoBrowser, "no-browser", false, "Print the consent URL without opening a browser")

	rootCmd.AddCommand(connectCmd)
	rootCmd.AddCommand(disconnectCmd)
	rootCmd.AddCommand(statusCmd)
}

func runConnect(cmd *cobra.Command, _ []string) error {
	r, p, err := session(cmd)
	if err != nil {
		return err
	}
	if !p.IsAdministrator() {
		return fmt.Errorf("connect: %w", domain.ErrForbidden)
	}

	state, err := services.GenerateState()
	if err != nil {
		return fmt.Errorf("generate state: %w", err)
	}
	consentURL, err := r.OAuth.AuthorizationURL(state)
	if err != nil {
		return err
	}

	callback, err := oauth.NewCallbackServer(r.Config.OAuth.RedirectURI, state)
	if err != nil {
		return err
	}
	if err := callback.Start(); err != nil {
		return err
	}
	defer func() {
		if err := callback.Stop(); err != nil {
			logger.Warn("Failed to stop callback server: %v", err)
		}
	}()

	cmd.Println("Open this URL to authorise ledgerbridge:")
	cmd.Println()
	cmd.Printf("  %s\n\n", consentURL)
	if !connectNoBrowser {
		if err := oauth.OpenBrowser(consentURL); err != nil {
			logger.Warn("Could not open browser: %v", err)
		}
	}
	cmd.Printf("Waiting for the callback on %s ...\n", callback.RedirectURI())

	ctx, cancel := context.WithTimeout(cmd.Context(), connectTimeout)
	defer cancel()

	code, err := callback.WaitForCode(ctx)
	if err != nil {
		return err
	}

	owner := r.Mirror.OwnerFor(p)
	token, err := r.OAuth.CompleteAuthorization(ctx, code, owner)
	if err != nil {
		return err
	}

	cmd.Printf("%s owner %s (token expires %s)\n",
		successStyle.Render("Connected"), owner, token.ExpiresAt.Local().Format(time.RFC1123))
	return nil
}

func runDisconnect(cmd *cobra.Command, _ []string) error {
	r, p, err := session(cmd)
	if err != nil {
		return err
	}
	if !p.IsAdministrator() {
		return fmt.Errorf("disconnect: %w", domain.ErrForbidden)
	}

	owner := r.Mirror.OwnerFor(p)
	if err := r.OAuth.Revoke(cmd.Context(), owner); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	cmd.Printf("Disconnected owner %s\n", owner)
	return nil
}

func runStatus(cmd *cobra.Command, _ []string) error {
	r, p, err := session(cmd)
	if err != nil {
		return err
	}

	token, err := r.Mirror.Connection(cmd.Context(), p)
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}

	cfg := r.Config
	cmd.Println("[Connection]")
	cmd.Printf("  Owner: %s\n", r.Mirror.OwnerFor(p))
	cmd.Printf("  Status: %s\n", connectionLabel(token, time.Now()))
	if token != nil {
		cmd.Printf("  Expires: %s\n", token.ExpiresAt.Local().Format(time.RFC1123))
	}
	cmd.Println()

	cmd.Println("[Principal]")
	cmd.Printf("  ID: %s\n", p.ID())
	cmd.Printf("  Administrator: %t\n", p.IsAdministrator())
	if contact, ok := p.LinkedContactID(); ok {
		cmd.Printf("  Linked contact: %s\n", contact)
	}
	cmd.Println()

	cmd.Println("[Configuration]")
	cmd.Printf("  Environment: %s\n", cfg.Environment)
	cmd.Printf("  API: %s\n", cfg.API.BaseURL)
	cmd.Printf("  OAuth client: %s\n", configuredLabel(cfg.OAuth.IsConfigured()))
	cmd.Printf("  Owner mode: %s\n", cfg.OAuth.Mode)
	cmd.Printf("  Database: %s\n", cfg.Database.Driver)
	cmd.Printf("  Cache: %s\n", cfg.Cache.Driver)
	return nil
}

func connectionLabel(token *domain.OAuthToken, now time.Time) string {
	switch {
	case token == nil:
		return dangerStyle.Render("not connected")
	case token.IsExpired(now):
		return warningStyle.Render("connected (access token expired, refreshes on next use)")
	default:
		return successStyle.Render("connected")
	}
}

func configuredLabel(ok bool) string {
	if ok {
		return successStyle.Render("configured")
	}
	return dangerStyle.Render("not configured")
}
