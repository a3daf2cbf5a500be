package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/ledgerbridge/internal/core/domain"
	"github.com/custodia-labs/ledgerbridge/internal/core/ports/driven"
	"github.com/custodia-labs/ledgerbridge/internal/core/ports/driving"
	"github.com/custodia-labs/ledgerbridge/internal/logger"
)

// Ensure MirrorService implements the interface.
var _ driving.MirrorService = (*MirrorService)(nil)

// MirrorService serves scoped reads of the mirror, syncing lazily when stale.
type MirrorService struct {
	oauth    driving.OAuthManager
	sync     driving.SyncEngine
	scope    driving.ScopeResolver
	owners   driving.OwnerResolver
	api      driven.AccountingAPI
	contacts driven.ContactStore
	projects driven.ProjectStore
	invoices driven.InvoiceStore
	links    driven.LinkStore
}

// MirrorDeps groups the collaborators of a MirrorService.
type MirrorDeps struct {
	OAuth    driving.OAuthManager
	Sync     driving.SyncEngine
	Scope    driving.ScopeResolver
	Owners   driving.OwnerResolver
	API      driven.AccountingAPI
	Contacts driven.ContactStore
	Projects driven.ProjectStore
	Invoices driven.InvoiceStore
	Links    driven.LinkStore
}

// NewMirrorService creates a new mirror service.
func NewMirrorService(deps MirrorDeps) *MirrorService {
	return &MirrorService{
		oauth:    deps.OAuth,
		sync:     deps.Sync,
		scope:    deps.Scope,
		owners:   deps.Owners,
		api:      deps.API,
		contacts: deps.Contacts,
		projects: deps.Projects,
		invoices: deps.Invoices,
		links:    deps.Links,
	}
}

// OwnerFor returns p's owner key.
func (s *MirrorService) OwnerFor(p domain.Principal) string {
	return s.owners.OwnerFor(p)
}

// Principal builds a User for id with its linked contact, if any.
func (s *MirrorService) Principal(ctx context.Context, id string, admin bool) (domain.Principal, error) {
	user := domain.User{UserID: id, Admin: admin}
	link, err := s.links.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get principal link: %w", err)
	}
	if link != nil {
		user.Contact = link.ContactRemoteID
	}
	return user, nil
}

// ListInvoices syncs invoices when they are stale and the owner is connected,
// then returns the invoices visible to p.
func (s *MirrorService) ListInvoices(ctx context.Context, p domain.Principal) ([]domain.Invoice, error) {
	scope := s.scope.VisibleInvoicesFilter(p)
	if scope.Kind == domain.ScopeNone {
		return []domain.Invoice{}, nil
	}

	owner := s.owners.OwnerFor(p)
	stale, err := s.sync.IsStale(ctx, owner, domain.ResourceInvoices)
	if err != nil {
		return nil, err
	}
	if stale {
		token, err := s.oauth.GetValidToken(ctx, owner)
		if err != nil {
			return nil, err
		}
		if token != nil {
			if _, err := s.sync.SyncInvoices(ctx, owner, domain.Filter{}); err != nil {
				return nil, fmt.Errorf("sync invoices: %w", err)
			}
		} else {
			logger.Debug("Invoices stale for owner %s but not connected, serving mirror", owner)
		}
	}

	return s.invoices.List(ctx, scope)
}

// GetInvoice returns one invoice visible to p.
func (s *MirrorService) GetInvoice(ctx context.Context, p domain.Principal, id string) (*domain.Invoice, error) {
	inv, err := s.invoices.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.scope.CanViewInvoice(p, inv) {
		return nil, domain.ErrForbidden
	}
	return inv, nil
}

// RefreshInvoice re-fetches one invoice from the remote.
func (s *MirrorService) RefreshInvoice(ctx context.Context, p domain.Principal, id string) (*domain.Invoice, error) {
	if !s.scope.CanManageConnection(p) {
		return nil, domain.ErrForbidden
	}
	remoteID := id
	if inv, err := s.invoices.Get(ctx, id); err == nil {
		remoteID = inv.RemoteID
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	return s.sync.SyncOneInvoice(ctx, s.owners.OwnerFor(p), remoteID)
}

// DownloadInvoicePDF returns the PDF of an invoice visible to p.
func (s *MirrorService) DownloadInvoicePDF(ctx context.Context, p domain.Principal, id string) ([]byte, error) {
	inv, err := s.invoices.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.scope.CanDownloadPDF(p, inv) {
		return nil, domain.ErrForbidden
	}
	return s.api.FetchInvoicePDF(ctx, s.owners.OwnerFor(p), domain.ShortID(inv.RemoteID))
}

// ListContacts returns every contact to administrators and the linked
// contact to scoped users.
func (s *MirrorService) ListContacts(ctx context.Context, p domain.Principal) ([]domain.Contact, error) {
	if s.scope.CanManageConnection(p) {
		return s.contacts.List(ctx)
	}
	contactID, ok := linkedContact(p)
	if !ok {
		return []domain.Contact{}, nil
	}
	contact, err := s.contacts.Get(ctx, contactID)
	if errors.Is(err, domain.ErrNotFound) {
		return []domain.Contact{}, nil
	}
	if err != nil {
		return nil, err
	}
	return []domain.Contact{*contact}, nil
}

// ListProjects returns every project to administrators and the linked
// contact's projects to scoped users.
func (s *MirrorService) ListProjects(ctx context.Context, p domain.Principal) ([]domain.Project, error) {
	if s.scope.CanManageConnection(p) {
		return s.projects.List(ctx, "")
	}
	contactID, ok := linkedContact(p)
	if !ok {
		return []domain.Project{}, nil
	}
	return s.projects.List(ctx, contactID)
}

// SyncNow forces an invoice sync for p's owner.
func (s *MirrorService) SyncNow(ctx context.Context, p domain.Principal) (domain.SyncStats, error) {
	return s.SyncResource(ctx, p, domain.ResourceInvoices)
}

// SyncResource forces a sync of one resource kind for p's owner.
func (s *MirrorService) SyncResource(
	ctx context.Context, p domain.Principal, kind domain.ResourceKind,
) (domain.SyncStats, error) {
	if !s.scope.CanManageConnection(p) {
		return domain.SyncStats{}, domain.ErrForbidden
	}
	owner := s.owners.OwnerFor(p)
	switch kind {
	case domain.ResourceContacts:
		return s.sync.SyncContacts(ctx, owner)
	case domain.ResourceProjects:
		return s.sync.SyncProjects(ctx, owner, domain.Filter{})
	case domain.ResourceInvoices:
		return s.sync.SyncInvoices(ctx, owner, domain.Filter{})
	default:
		return domain.SyncStats{}, fmt.Errorf("%w: unknown resource kind %q", domain.ErrInvalidInput, kind)
	}
}

// ClearCache clears p's owner namespace, or everything when all is set.
func (s *MirrorService) ClearCache(ctx context.Context, p domain.Principal, all bool) error {
	if !s.scope.CanManageConnection(p) {
		return domain.ErrForbidden
	}
	if all {
		return s.sync.ClearAll(ctx)
	}
	return s.sync.ClearCache(ctx, s.owners.OwnerFor(p))
}

// Link ties principalID to a mirrored contact.
func (s *MirrorService) Link(ctx context.Context, p domain.Principal, principalID, contactID string) error {
	if !s.scope.CanManageConnection(p) {
		return domain.ErrForbidden
	}
	if principalID == "" {
		return fmt.Errorf("%w: principal id is required", domain.ErrInvalidInput)
	}
	contact, err := s.contacts.Get(ctx, contactID)
	if err != nil {
		return fmt.Errorf("get contact %s: %w", contactID, err)
	}
	return s.links.Link(ctx, domain.PrincipalLink{PrincipalID: principalID, ContactRemoteID: contact.RemoteID})
}

// Unlink removes principalID's contact link.
func (s *MirrorService) Unlink(ctx context.Context, p domain.Principal, principalID string) error {
	if !s.scope.CanManageConnection(p) {
		return domain.ErrForbidden
	}
	return s.links.Unlink(ctx, principalID)
}

// Connection returns the stored token for p's owner.
func (s *MirrorService) Connection(ctx context.Context, p domain.Principal) (*domain.OAuthToken, error) {
	return s.oauth.Status(ctx, s.owners.OwnerFor(p))
}

func linkedContact(p domain.Principal) (string, bool) {
	if p == nil {
		return "", false
	}
	return p.LinkedContactID()
}
