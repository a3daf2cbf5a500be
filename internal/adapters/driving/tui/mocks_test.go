package tui

import (
	"context"

	"github.com/custodia-labs/ledgerbridge/internal/core/domain"
)

// mockMirror implements driving.MirrorService for testing.
type mockMirror struct {
	invoices  []domain.Invoice
	contacts  []domain.Contact
	refreshed *domain.Invoice
	err       error
	syncs     int
}

func (m *mockMirror) ListInvoices(context.Context, domain.Principal) ([]domain.Invoice, error) {
	return m.invoices, m.err
}

func (m *mockMirror) GetInvoice(context.Context, domain.Principal, string) (*domain.Invoice, error) {
	return nil, domain.ErrNotFound
}

func (m *mockMirror) RefreshInvoice(context.Context, domain.Principal, string) (*domain.Invoice, error) {
	return m.refreshed, m.err
}

func (m *mockMirror) DownloadInvoicePDF(context.Context, domain.Principal, string) ([]byte, error) {
	return nil, m.err
}

func (m *mockMirror) ListContacts(context.Context, domain.Principal) ([]domain.Contact, error) {
	return m.contacts, m.err
}

func (m *mockMirror) ListProjects(context.Context, domain.Principal) ([]domain.Project, error) {
	return nil, m.err
}

func (m *mockMirror) SyncNow(context.Context, domain.Principal) (domain.SyncStats, error) {
	m.syncs++
	return domain.SyncStats{Kind: domain.ResourceInvoices, Total: len(m.invoices)}, m.err
}

func (m *mockMirror) SyncResource(ctx context.Context, p domain.Principal, _ domain.ResourceKind) (domain.SyncStats, error) {
	return m.SyncNow(ctx, p)
}

func (m *mockMirror) ClearCache(context.Context, domain.Principal, bool) error {
	return m.err
}

func (m *mockMirror) Link(context.Context, domain.Principal, string, string) error {
	return m.err
}

func (m *mockMirror) Unlink(context.Context, domain.Principal, string) error {
	return m.err
}

func (m *mockMirror) Connection(context.Context, domain.Principal) (*domain.OAuthToken, error) {
	return nil, m.err
}

func (m *mockMirror) OwnerFor(domain.Principal) string {
	return domain.SystemOwner
}

func (m *mockMirror) Principal(_ context.Context, id string, admin bool) (domain.Principal, error) {
	return domain.User{UserID: id, Admin: admin}, nil
}
