package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ledgerbridge/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/ledgerbridge/internal/logger"
)

// settingsWatcher is implemented by stores that can follow edits on disk.
type settingsWatcher interface {
	Watch(ctx context.Context, onChange func(error)) error
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API",
	Long: `Starts the HTTP API on server.addr.

Callers authenticate with an HS256 JWT signed with server.jwt_secret; use
'ledgerbridge token' to mint one. The connect flow needs server.session_secret
and an oauth.redirect_uri pointing at this server's /callback route.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var tokenCmd = &cobra.Command{
	Use:   "token [principal-id]",
	Short: "Issue an API token for a principal",
	Args:  cobra.ExactArgs(1),
	RunE:  runToken,
}

var (
	serveAddr     string
	tokenAdmin    bool
	tokenTTL      time.Duration
	secureCookies bool
)

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides server.addr)")
	serveCmd.Flags().BoolVar(&secureCookies, "secure-cookies", false, "Mark session cookies Secure (behind HTTPS)")
	tokenCmd.Flags().BoolVar(&tokenAdmin, "grant-admin", false, "Grant the administrator claim")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "Token lifetime")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(tokenCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	r, err := loadRuntime(cmd)
	if err != nil {
		return err
	}

	addr := r.Config.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	server, err := httpapi.NewServer(r.Mirror, r.OAuth, httpapi.Options{
		Addr:           addr,
		JWTSecret:      r.Config.Server.JWTSecret,
		SessionSecret:  r.Config.Server.SessionSecret,
		AllowedOrigins: r.Config.Server.AllowedOrigins,
		SecureCookies:  secureCookies,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	watchSettings(ctx)

	cmd.Printf("HTTP API listening on %s\n", addr)
	return server.Run(ctx)
}

// watchSettings reports hand edits to the settings file while serving.
// The running server keeps the configuration it started with.
func watchSettings(ctx context.Context) {
	store, err := loadSettings()
	if err != nil {
		return
	}
	watcher, ok := store.(settingsWatcher)
	if !ok {
		return
	}
	go func() {
		err := watcher.Watch(ctx, func(err error) {
			if err != nil {
				logger.Warn("Settings file changed but could not be read: %v", err)
				return
			}
			logger.Info("Settings file changed; restart serve to apply")
		})
		if err != nil {
			logger.Warn("Not watching settings file: %v", err)
		}
	}()
}

func runToken(cmd *cobra.Command, args []string) error {
	r, err := loadRuntime(cmd)
	if err != nil {
		return err
	}

	raw, err := httpapi.IssueToken([]byte(r.Config.Server.JWTSecret), args[0], tokenAdmin, tokenTTL)
	if err != nil {
		return fmt.Errorf("issue token: %w", err)
	}
	cmd.Println(raw)
	return nil
}
