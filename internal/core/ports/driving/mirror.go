package driving

import (
	"context"

	"github.com/custodia-labs/ledgerbridge/internal/core/domain"
)

// MirrorService is the scoped read surface used by every boundary adapter.
type MirrorService interface {
	// ListInvoices syncs invoices when stale, then returns those visible to p.
	ListInvoices(ctx context.Context, p domain.Principal) ([]domain.Invoice, error)

	// GetInvoice returns one mirrored invoice by remote id or short id.
	GetInvoice(ctx context.Context, p domain.Principal, id string) (*domain.Invoice, error)

	// RefreshInvoice re-fetches one invoice. Administrators only.
	RefreshInvoice(ctx context.Context, p domain.Principal, id string) (*domain.Invoice, error)

	// DownloadInvoicePDF returns the invoice PDF bytes.
	DownloadInvoicePDF(ctx context.Context, p domain.Principal, id string) ([]byte, error)

	// ListContacts returns contacts visible to p.
	ListContacts(ctx context.Context, p domain.Principal) ([]domain.Contact, error)

	// ListProjects returns projects visible to p.
	ListProjects(ctx context.Context, p domain.Principal) ([]domain.Project, error)

	// SyncNow forces an invoice sync. Administrators only.
	SyncNow(ctx context.Context, p domain.Principal) (domain.SyncStats, error)

	// SyncResource forces a sync of one resource kind. Administrators only.
	SyncResource(ctx context.Context, p domain.Principal, kind domain.ResourceKind) (domain.SyncStats, error)

	// ClearCache clears p's owner namespace, or every owner when all is set.
	ClearCache(ctx context.Context, p domain.Principal, all bool) error

	// Link ties principalID to a contact. Administrators only.
	Link(ctx context.Context, p domain.Principal, principalID, contactID string) error

	// Unlink removes principalID's contact link. Administrators only.
	Unlink(ctx context.Context, p domain.Principal, principalID string) error

	// Connection returns the stored token for p's owner, or nil.
	Connection(ctx context.Context, p domain.Principal) (*domain.OAuthToken, error)

	// OwnerFor returns p's owner key.
	OwnerFor(p domain.Principal) string

	// Principal builds a principal for id, attaching its linked contact.
	Principal(ctx context.Context, id string, admin bool) (domain.Principal, error)
}
