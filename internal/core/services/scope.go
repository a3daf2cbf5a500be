package services

import (
	"github.com/custodia-labs/ledgerbridge/internal/core/domain"
	"github.com/custodia-labs/ledgerbridge/internal/core/ports/driving"
)

// Ensure ScopeResolver implements the interface.
var _ driving.ScopeResolver = ScopeResolver{}

// ScopeResolver implements the administrator / scoped-user model.
// Administrators see everything. A scoped user sees invoices of their one
// linked contact, or nothing when unlinked. Nobody may write.
type ScopeResolver struct{}

// NewScopeResolver creates a new scope resolver.
func NewScopeResolver() ScopeResolver {
	return ScopeResolver{}
}

// VisibleInvoicesFilter returns All, Contact(X) or None.
func (ScopeResolver) VisibleInvoicesFilter(p domain.Principal) domain.InvoiceScope {
	if p == nil {
		return domain.InvoiceScope{Kind: domain.ScopeNone}
	}
	if p.IsAdministrator() {
		return domain.InvoiceScope{Kind: domain.ScopeAll}
	}
	if contact, ok := p.LinkedContactID(); ok {
		return domain.InvoiceScope{Kind: domain.ScopeContact, ContactRef: contact}
	}
	return domain.InvoiceScope{Kind: domain.ScopeNone}
}

// CanViewInvoice reports whether inv falls inside p's scope.
func (r ScopeResolver) CanViewInvoice(p domain.Principal, inv *domain.Invoice) bool {
	if inv == nil {
		return false
	}
	return r.VisibleInvoicesFilter(p).Matches(inv)
}

// CanDownloadPDF is identical to CanViewInvoice.
func (r ScopeResolver) CanDownloadPDF(p domain.Principal, inv *domain.Invoice) bool {
	return r.CanViewInvoice(p, inv)
}

// CanCreate always returns false.
func (ScopeResolver) CanCreate(domain.Principal) bool { return false }

// CanUpdate always returns false.
func (ScopeResolver) CanUpdate(domain.Principal, *domain.Invoice) bool { return false }

// CanDelete always returns false.
func (ScopeResolver) CanDelete(domain.Principal, *domain.Invoice) bool { return false }

// CanManageConnection reports whether p is an administrator.
func (ScopeResolver) CanManageConnection(p domain.Principal) bool {
	return p != nil && p.IsAdministrator()
}
