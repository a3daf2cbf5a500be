// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/ledgerbridge/internal/core/domain"
)

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewMenu is the main navigation menu.
	ViewMenu ViewType = iota
	// ViewInvoices lists mirrored invoices.
	ViewInvoices
	// ViewInvoiceDetail shows one invoice.
	ViewInvoiceDetail
	// ViewContacts lists mirrored contacts.
	ViewContacts
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewInvoices:
		return "invoices"
	case ViewInvoiceDetail:
		return "invoice_detail"
	case ViewContacts:
		return "contacts"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}

// InvoicesLoaded carries the invoices visible to the principal.
type InvoicesLoaded struct {
	Invoices []domain.Invoice
	Err      error
}

// InvoiceSelected signals an invoice was chosen for the detail view.
type InvoiceSelected struct {
	Invoice domain.Invoice
}

// InvoiceRefreshed carries an invoice re-fetched from the remote API.
type InvoiceRefreshed struct {
	Invoice *domain.Invoice
	Err     error
}

// ContactsLoaded carries the contacts visible to the principal.
type ContactsLoaded struct {
	Contacts []domain.Contact
	Err      error
}

// SyncCompleted signals a forced sync finished.
type SyncCompleted struct {
	Stats domain.SyncStats
	Err   error
}
