package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ledgerbridge/internal/core/domain"
)

const dateLayout = "2006-01-02"

var invoiceCmd = &cobra.Command{
	Use:   "invoice",
	Short: "Browse mirrored invoices",
	Long: `List and inspect invoices in the local mirror.

Listing syncs from FreeAgent first when the invoice mirror is stale and the
owner is connected. Scoped principals only see their linked contact's
invoices.`,
}

var invoiceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List invoices",
	Args:  cobra.NoArgs,
	RunE:  runInvoiceList,
}

var invoiceShowCmd = &cobra.Command{
	Use:   "show [invoice-id]",
	Short: "Show one invoice",
	Args:  cobra.ExactArgs(1),
	RunE:  runInvoiceShow,
}

var invoiceRefreshCmd = &cobra.Command{
	Use:   "refresh [invoice-id]",
	Short: "Re-fetch one invoice from FreeAgent",
	Args:  cobra.ExactArgs(1),
	RunE:  runInvoiceRefresh,
}

var invoicePDFCmd = &cobra.Command{
	Use:   "pdf [invoice-id]",
	Short: "Download an invoice PDF",
	Args:  cobra.ExactArgs(1),
	RunE:  runInvoicePDF,
}

// invoicePDFOutput is the --output flag of invoice pdf.
var invoicePDFOutput string

func init() {
	invoicePDFCmd.Flags().StringVarP(&invoicePDFOutput, "output", "o", "", "File to write (default invoice-<id>.pdf)")

	invoiceCmd.AddCommand(invoiceListCmd)
	invoiceCmd.AddCommand(invoiceShowCmd)
	invoiceCmd.AddCommand(invoiceRefreshCmd)
	invoiceCmd.AddCommand(invoicePDFCmd)
	rootCmd.AddCommand(invoiceCmd)
}

func runInvoiceList(cmd *cobra.Command, _ []string) error {
	r, p, err := session(cmd)
	if err != nil {
		return err
	}

	invoices, err := r.Mirror.ListInvoices(cmd.Context(), p)
	if err != nil {
		return fmt.Errorf("failed to list invoices: %w", err)
	}

	if len(invoices) == 0 {
		cmd.Println("No invoices found.")
		return nil
	}

	cmd.Println(invoiceTable(invoices, time.Now()))
	cmd.Printf("Total: %d invoices\n", len(invoices))
	return nil
}

func runInvoiceShow(cmd *cobra.Command, args []string) error {
	r, p, err := session(cmd)
	if err != nil {
		return err
	}

	inv, err := r.Mirror.GetInvoice(cmd.Context(), p, args[0])
	if err != nil {
		return fmt.Errorf("failed to get invoice: %w", err)
	}

	printInvoice(cmd, inv)
	return nil
}

func runInvoiceRefresh(cmd *cobra.Command, args []string) error {
	r, p, err := session(cmd)
	if err != nil {
		return err
	}

	inv, err := r.Mirror.RefreshInvoice(cmd.Context(), p, args[0])
	if err != nil {
		return fmt.Errorf("failed to refresh invoice: %w", err)
	}

	cmd.Printf("Refreshed invoice %s\n\n", domain.ShortID(inv.RemoteID))
	printInvoice(cmd, inv)
	return nil
}

func runInvoicePDF(cmd *cobra.Command, args []string) error {
	r, p, err := session(cmd)
	if err != nil {
		return err
	}

	pdf, err := r.Mirror.DownloadInvoicePDF(cmd.Context(), p, args[0])
	if err != nil {
		return fmt.Errorf("failed to download invoice: %w", err)
	}

	path := invoicePDFOutput
	if path == "" {
		path = fmt.Sprintf("invoice-%s.pdf", domain.ShortID(args[0]))
	}
	if err := os.WriteFile(path, pdf, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	cmd.Printf("Saved %s (%d bytes)\n", path, len(pdf))
	return nil
}

func printInvoice(cmd *cobra.Command, inv *domain.Invoice) {
	now := time.Now()
	cmd.Printf("Invoice: %s\n", inv.Reference)
	cmd.Printf("  ID: %s\n", domain.ShortID(inv.RemoteID))
	cmd.Printf("  URL: %s\n", inv.RemoteID)
	cmd.Printf("  Status: %s\n", colourStyle(inv.StatusColor(now)).Render(inv.StatusLabel(now)))
	cmd.Printf("  Dated: %s\n", inv.DatedOn.Format(dateLayout))
	if inv.DueOn != nil {
		cmd.Printf("  Due: %s\n", inv.DueOn.Format(dateLayout))
	}
	cmd.Printf("  Net: %s %s\n", inv.NetValue, inv.Currency)
	cmd.Printf("  Tax: %s %s\n", inv.TaxValue, inv.Currency)
	cmd.Printf("  Total: %s %s\n", inv.TotalValue, inv.Currency)
	if inv.ContactRef != nil {
		cmd.Printf("  Contact: %s\n", *inv.ContactRef)
	}
	if inv.ProjectRef != nil {
		cmd.Printf("  Project: %s\n", *inv.ProjectRef)
	}
	cmd.Printf("  Synced: %s\n", inv.SyncedAt.Local().Format(time.RFC1123))
}
