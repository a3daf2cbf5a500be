package driving

import (
	"github.com/custodia-labs/ledgerbridge/internal/core/domain"
)

// ScopeResolver decides what a principal may see and do.
type ScopeResolver interface {
	// VisibleInvoicesFilter narrows invoice listings for p.
	VisibleInvoicesFilter(p domain.Principal) domain.InvoiceScope

	// CanViewInvoice reports whether p may read inv.
	CanViewInvoice(p domain.Principal, inv *domain.Invoice) bool

	// CanDownloadPDF reports whether p may download inv as a PDF.
	CanDownloadPDF(p domain.Principal, inv *domain.Invoice) bool

	// CanCreate, CanUpdate and CanDelete always deny; the mirror is read-only.
	CanCreate(p domain.Principal) bool
	CanUpdate(p domain.Principal, inv *domain.Invoice) bool
	CanDelete(p domain.Principal, inv *domain.Invoice) bool

	// CanManageConnection reports whether p may connect, sync and clear caches.
	CanManageConnection(p domain.Principal) bool
}

// OwnerResolver maps a principal to the owner key its token lives under.
type OwnerResolver interface {
	OwnerFor(p domain.Principal) string
}
