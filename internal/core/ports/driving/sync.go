package driving

import (
	"context"

	"github.com/custodia-labs/ledgerbridge/internal/core/domain"
)

// SyncEngine refreshes the local mirror from the remote API.
type SyncEngine interface {
	// IsStale reports whether kind needs a resync for owner.
	IsStale(ctx context.Context, owner string, kind domain.ResourceKind) (bool, error)

	// SyncContacts pulls every contact and stamps the contacts marker.
	SyncContacts(ctx context.Context, owner string) (domain.SyncStats, error)

	// SyncProjects pulls projects, syncing contacts first if stale.
	SyncProjects(ctx context.Context, owner string, filter domain.Filter) (domain.SyncStats, error)

	// SyncInvoices pulls invoices after contacts (if stale) and projects.
	SyncInvoices(ctx context.Context, owner string, filter domain.Filter) (domain.SyncStats, error)

	// SyncOneInvoice refreshes a single invoice and its contact.
	SyncOneInvoice(ctx context.Context, owner, remoteID string) (*domain.Invoice, error)

	// ClearCache drops the owner's staleness markers and cached responses.
	ClearCache(ctx context.Context, owner string) error

	// ClearAll drops every owner's cached state.
	ClearAll(ctx context.Context) error
}
