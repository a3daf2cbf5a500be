package driven

import (
	"context"

	"github.com/custodia-labs/ledgerbridge/internal/core/domain"
)

// AccountingAPI is the gateway to the remote accounting service.
// Errors are *domain.APIError or *domain.OAuthError values.
type AccountingAPI interface {
	// FetchAll returns every record of kind, following pagination.
	// Results are read through the cache unless opts.BypassCache is set.
	FetchAll(ctx context.Context, owner string, kind domain.ResourceKind,
		filter domain.Filter, opts domain.FetchOptions) ([]domain.RemoteRecord, error)

	// FetchOne returns one record by remote id or short id.
	FetchOne(ctx context.Context, owner string, kind domain.ResourceKind,
		id string, opts domain.FetchOptions) (*domain.RemoteRecord, error)

	// FetchInvoicePDF returns the decoded PDF bytes for an invoice. Never cached.
	FetchInvoicePDF(ctx context.Context, owner, id string) ([]byte, error)
}
