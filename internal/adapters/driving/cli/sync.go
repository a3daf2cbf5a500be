package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ledgerbridge/internal/core/domain"
)

var syncCmd = &cobra.Command{
	Use:   "sync [contacts|projects|invoices]",
	Short: "Synchronise the mirror from FreeAgent",
	Long: `Forces a sync of one resource kind regardless of staleness.
Without an argument invoices are synchronised, which also refreshes
projects and any stale contacts.`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"contacts", "projects", "invoices"},
	RunE:      runSync,
}

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage cached API responses and staleness markers",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear the acting owner's cache",
	Long: `Drops cached API responses and staleness markers so the next read
syncs from FreeAgent. Use --all to clear every owner.`,
	Args: cobra.NoArgs,
	RunE: runCacheClear,
}

var cacheClearAll bool

func init() {
	cacheClearCmd.Flags().BoolVar(&cacheClearAll, "all", false, "Clear every owner's cache")

	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	kind := domain.ResourceInvoices
	if len(args) > 0 {
		kind = domain.ResourceKind(args[0])
		if !kind.IsValid() {
			return fmt.Errorf("%w: unknown resource %q (want contacts, projects or invoices)",
				domain.ErrInvalidInput, args[0])
		}
	}

	r, p, err := session(cmd)
	if err != nil {
		return err
	}

	cmd.Printf("Synchronising %s...\n", kind)
	stats, err := r.Mirror.SyncResource(cmd.Context(), p, kind)
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	cmd.Printf("Synchronised %d %s (%d created, %d updated, %d errors) in %s\n",
		stats.Total, kind, stats.Created, stats.Updated, stats.Errors, stats.Duration.Round(time.Millisecond))
	return nil
}

func runCacheClear(cmd *cobra.Command, _ []string) error {
	r, p, err := session(cmd)
	if err != nil {
		return err
	}

	if err := r.Mirror.ClearCache(cmd.Context(), p, cacheClearAll); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}

	if cacheClearAll {
		cmd.Println("Cleared cache for every owner.")
	} else {
		cmd.Printf("Cleared cache for owner %s.\n", r.Mirror.OwnerFor(p))
	}
	return nil
}
