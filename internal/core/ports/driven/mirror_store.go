package driven

import (
	"context"

	"github.com/custodia-labs/ledgerbridge/internal/core/domain"
)

// ContactStore persists mirrored contacts.
type ContactStore interface {
	// Upsert inserts or overwrites a contact keyed on RemoteID.
	// Returns true if the contact was created.
	Upsert(ctx context.Context, contact domain.Contact) (bool, error)

	// Get retrieves a contact by remote id or short id.
	// Returns domain.ErrNotFound if absent.
	Get(ctx context.Context, id string) (*domain.Contact, error)

	// List returns every contact ordered by display name.
	List(ctx context.Context) ([]domain.Contact, error)

	// Count returns the number of mirrored contacts.
	Count(ctx context.Context) (int, error)
}

// ProjectStore persists mirrored projects.
type ProjectStore interface {
	// Upsert inserts or overwrites a project keyed on RemoteID.
	// Returns true if the project was created.
	Upsert(ctx context.Context, project domain.Project) (bool, error)

	// Get retrieves a project by remote id.
	// Returns domain.ErrNotFound if absent.
	Get(ctx context.Context, remoteID string) (*domain.Project, error)

	// List returns projects. An empty contactRef returns every project.
	List(ctx context.Context, contactRef string) ([]domain.Project, error)

	// Count returns the number of mirrored projects.
	Count(ctx context.Context) (int, error)
}

// InvoiceStore persists mirrored invoices.
type InvoiceStore interface {
	// Upsert inserts or overwrites an invoice keyed on RemoteID.
	// Returns true if the invoice was created.
	Upsert(ctx context.Context, invoice domain.Invoice) (bool, error)

	// Get retrieves an invoice by remote id or short id.
	// Returns domain.ErrNotFound if absent.
	Get(ctx context.Context, id string) (*domain.Invoice, error)

	// List returns invoices inside scope, newest first.
	List(ctx context.Context, scope domain.InvoiceScope) ([]domain.Invoice, error)

	// Count returns the number of mirrored invoices.
	Count(ctx context.Context) (int, error)
}

// LinkStore persists the nullable principal to contact link.
type LinkStore interface {
	// Link ties a principal to a contact, replacing any previous link.
	Link(ctx context.Context, link domain.PrincipalLink) error

	// Unlink removes a principal's link. Unlinking twice is not an error.
	Unlink(ctx context.Context, principalID string) error

	// Get returns the principal's link, or nil if the principal is unlinked.
	Get(ctx context.Context, principalID string) (*domain.PrincipalLink, error)

	// List returns every link.
	List(ctx context.Context) ([]domain.PrincipalLink, error)
}
