package httpapi

import (
	"context"

	"github.com/custodia-labs/ledgerbridge/internal/core/domain"
)

// mockMirror implements driving.MirrorService. Unset funcs return zero values.
type mockMirror struct {
	links map[string]string

	listInvoices func(p domain.Principal) ([]domain.Invoice, error)
	getInvoice   func(p domain.Principal, id string) (*domain.Invoice, error)
	downloadPDF  func(p domain.Principal, id string) ([]byte, error)
	syncNow      func(p domain.Principal) (domain.SyncStats, error)
	clearCache   func(p domain.Principal, all bool) error
	link         func(p domain.Principal, principalID, contactID string) error
	refresh      func(p domain.Principal, id string) (*domain.Invoice, error)

	contacts    []domain.Contact
	projects    []domain.Project
	token       *domain.OAuthToken
	syncedKinds []domain.ResourceKind
}

func (m *mockMirror) ListInvoices(_ context.Context, p domain.Principal) ([]domain.Invoice, error) {
	if m.listInvoices != nil {
		return m.listInvoices(p)
	}
	return nil, nil
}

func (m *mockMirror) GetInvoice(_ context.Context, p domain.Principal, id string) (*domain.Invoice, error) {
	if m.getInvoice != nil {
		return m.getInvoice(p, id)
	}
	return nil, domain.ErrNotFound
}

func (m *mockMirror) RefreshInvoice(_ context.Context, p domain.Principal, id string) (*domain.Invoice, error) {
	if m.refresh != nil {
		return m.refresh(p, id)
	}
	return nil, domain.ErrNotFound
}

func (m *mockMirror) DownloadInvoicePDF(_ context.Context, p domain.Principal, id string) ([]byte, error) {
	if m.downloadPDF != nil {
		return m.downloadPDF(p, id)
	}
	return nil, domain.ErrNotFound
}

func (m *mockMirror) ListContacts(_ context.Context, _ domain.Principal) ([]domain.Contact, error) {
	return m.contacts, nil
}

func (m *mockMirror) ListProjects(_ context.Context, _ domain.Principal) ([]domain.Project, error) {
	return m.projects, nil
}

func (m *mockMirror) SyncNow(_ context.Context, p domain.Principal) (domain.SyncStats, error) {
	if m.syncNow != nil {
		return m.syncNow(p)
	}
	return domain.SyncStats{}, nil
}

func (m *mockMirror) SyncResource(ctx context.Context, p domain.Principal, kind domain.ResourceKind) (domain.SyncStats, error) {
	m.syncedKinds = append(m.syncedKinds, kind)
	return m.SyncNow(ctx, p)
}

func (m *mockMirror) ClearCache(_ context.Context, p domain.Principal, all bool) error {
	if m.clearCache != nil {
		return m.clearCache(p, all)
	}
	return nil
}

func (m *mockMirror) Link(_ context.Context, p domain.Principal, principalID, contactID string) error {
	if m.link != nil {
		return m.link(p, principalID, contactID)
	}
	return nil
}

func (m *mockMirror) Unlink(_ context.Context, _ domain.Principal, _ string) error {
	return nil
}

func (m *mockMirror) Connection(_ context.Context, _ domain.Principal) (*domain.OAuthToken, error) {
	return m.token, nil
}

func (m *mockMirror) OwnerFor(p domain.Principal) string {
	if p == nil {
		return domain.SystemOwner
	}
	return "owner-" + p.ID()
}

func (m *mockMirror) Principal(_ context.Context, id string, admin bool) (domain.Principal, error) {
	return domain.User{UserID: id, Admin: admin, Contact: m.links[id]}, nil
}

// mockOAuth implements driving.OAuthManager.
type mockOAuth struct {
	consentBase string
	exchanged   []string
	revoked     []string
}

func (m *mockOAuth) AuthorizationURL(state string) (string, error) {
	return m.consentBase + "?state=" + state, nil
}

func (m *mockOAuth) CompleteAuthorization(_ context.Context, code, owner string) (*domain.OAuthToken, error) {
	m.exchanged = append(m.exchanged, code+"@"+owner)
	return &domain.OAuthToken{OwnerID: owner, AccessToken: "at"}, nil
}

func (m *mockOAuth) GetValidToken(_ context.Context, _ string) (*domain.OAuthToken, error) {
	return nil, nil
}

func (m *mockOAuth) Refresh(_ context.Context, t *domain.OAuthToken) (*domain.OAuthToken, error) {
	return t, nil
}

func (m *mockOAuth) Revoke(_ context.Context, owner string) error {
	m.revoked = append(m.revoked, owner)
	return nil
}

func (m *mockOAuth) Status(_ context.Context, _ string) (*domain.OAuthToken, error) {
	return nil, nil
}
