package mcp

import (
	"context"

	"github.com/custodia-labs/ledgerbridge/internal/core/domain"
)

// mockMirrorService implements driving.MirrorService for testing.
type mockMirrorService struct {
	invoices []domain.Invoice
	contacts []domain.Contact
	stats    domain.SyncStats
	err      error

	seen []domain.Principal
}

func (m *mockMirrorService) ListInvoices(_ context.Context, p domain.Principal) ([]domain.Invoice, error) {
	m.seen = append(m.seen, p)
	return m.invoices, m.err
}

func (m *mockMirrorService) GetInvoice(_ context.Context, p domain.Principal, id string) (*domain.Invoice, error) {
	m.seen = append(m.seen, p)
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.invoices {
		if m.invoices[i].RemoteID == id || domain.ShortID(m.invoices[i].RemoteID) == id {
			return &m.invoices[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockMirrorService) RefreshInvoice(ctx context.Context, p domain.Principal, id string) (*domain.Invoice, error) {
	return m.GetInvoice(ctx, p, id)
}

func (m *mockMirrorService) DownloadInvoicePDF(_ context.Context, _ domain.Principal, _ string) ([]byte, error) {
	return nil, m.err
}

func (m *mockMirrorService) ListContacts(_ context.Context, _ domain.Principal) ([]domain.Contact, error) {
	return m.contacts, m.err
}

func (m *mockMirrorService) ListProjects(_ context.Context, _ domain.Principal) ([]domain.Project, error) {
	return nil, m.err
}

func (m *mockMirrorService) SyncNow(_ context.Context, p domain.Principal) (domain.SyncStats, error) {
	m.seen = append(m.seen, p)
	return m.stats, m.err
}

func (m *mockMirrorService) SyncResource(ctx context.Context, p domain.Principal, _ domain.ResourceKind) (domain.SyncStats, error) {
	return m.SyncNow(ctx, p)
}

func (m *mockMirrorService) ClearCache(_ context.Context, _ domain.Principal, _ bool) error {
	return m.err
}

func (m *mockMirrorService) Link(_ context.Context, _ domain.Principal, _, _ string) error {
	return m.err
}

func (m *mockMirrorService) Unlink(_ context.Context, _ domain.Principal, _ string) error {
	return m.err
}

func (m *mockMirrorService) Connection(_ context.Context, _ domain.Principal) (*domain.OAuthToken, error) {
	return nil, m.err
}

func (m *mockMirrorService) OwnerFor(domain.Principal) string {
	return domain.SystemOwner
}

func (m *mockMirrorService) Principal(_ context.Context, id string, admin bool) (domain.Principal, error) {
	return domain.User{UserID: id, Admin: admin}, nil
}

var testAdmin = domain.User{UserID: "mcp", Admin: true}

func newTestServer(mirror *mockMirrorService) (*Server, error) {
	return NewServer(&Ports{Mirror: mirror, Principal: testAdmin})
}

func strPtr(s string) *string { return &s }
