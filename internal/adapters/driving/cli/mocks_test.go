package cli

import (
	"bytes"
	"context"
	"time"

	"github.com/custodia-labs/ledgerbridge/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/ledgerbridge/internal/core/domain"
)

// mockMirror implements driving.MirrorService for testing.
type mockMirror struct {
	invoices []domain.Invoice
	contacts []domain.Contact
	projects []domain.Project
	links    map[string]string
	token    *domain.OAuthToken
	pdf      []byte
	err      error

	syncedKinds []domain.ResourceKind
	clearedAll  *bool
	linked      [][2]string
	unlinked    []string
}

func (m *mockMirror) ListInvoices(_ context.Context, _ domain.Principal) ([]domain.Invoice, error) {
	return m.invoices, m.err
}

func (m *mockMirror) GetInvoice(_ context.Context, p domain.Principal, id string) (*domain.Invoice, error) {
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

func (m *mockMirror) RefreshInvoice(ctx context.Context, p domain.Principal, id string) (*domain.Invoice, error) {
	if !p.IsAdministrator() {
		return nil, domain.ErrForbidden
	}
	return m.GetInvoice(ctx, p, id)
}

func (m *mockMirror) DownloadInvoicePDF(_ context.Context, _ domain.Principal, _ string) ([]byte, error) {
	return m.pdf, m.err
}

func (m *mockMirror) ListContacts(_ context.Context, _ domain.Principal) ([]domain.Contact, error) {
	return m.contacts, m.err
}

func (m *mockMirror) ListProjects(_ context.Context, _ domain.Principal) ([]domain.Project, error) {
	return m.projects, m.err
}

func (m *mockMirror) SyncNow(ctx context.Context, p domain.Principal) (domain.SyncStats, error) {
	return m.SyncResource(ctx, p, domain.ResourceInvoices)
}

func (m *mockMirror) SyncResource(_ context.Context, p domain.Principal, kind domain.ResourceKind) (domain.SyncStats, error) {
	if !p.IsAdministrator() {
		return domain.SyncStats{}, domain.ErrForbidden
	}
	m.syncedKinds = append(m.syncedKinds, kind)
	return domain.SyncStats{Kind: kind, Total: 3, Created: 2, Updated: 1, Duration: 1200 * time.Millisecond}, m.err
}

func (m *mockMirror) ClearCache(_ context.Context, p domain.Principal, all bool) error {
	if !p.IsAdministrator() {
		return domain.ErrForbidden
	}
	m.clearedAll = &all
	return m.err
}

func (m *mockMirror) Link(_ context.Context, p domain.Principal, principalID, contactID string) error {
	if !p.IsAdministrator() {
		return domain.ErrForbidden
	}
	m.linked = append(m.linked, [2]string{principalID, contactID})
	return m.err
}

func (m *mockMirror) Unlink(_ context.Context, p domain.Principal, principalID string) error {
	if !p.IsAdministrator() {
		return domain.ErrForbidden
	}
	m.unlinked = append(m.unlinked, principalID)
	return m.err
}

func (m *mockMirror) Connection(_ context.Context, _ domain.Principal) (*domain.OAuthToken, error) {
	return m.token, m.err
}

func (m *mockMirror) OwnerFor(domain.Principal) string {
	return domain.SystemOwner
}

func (m *mockMirror) Principal(_ context.Context, id string, admin bool) (domain.Principal, error) {
	return domain.User{UserID: id, Admin: admin, Contact: m.links[id]}, nil
}

// mockOAuth implements driving.OAuthManager for testing.
type mockOAuth struct {
	urlErr  error
	revoked []string
}

func (m *mockOAuth) AuthorizationURL(state string) (string, error) {
	if m.urlErr != nil {
		return "", m.urlErr
	}
	return "https://remote.test/approve_app?state=" + state, nil
}

func (m *mockOAuth) CompleteAuthorization(_ context.Context, _, owner string) (*domain.OAuthToken, error) {
	return &domain.OAuthToken{OwnerID: owner, ExpiresAt: time.Now().Add(time.Hour)}, nil
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

// setupTestRuntime installs a runtime and a memory settings store, and
// returns a cleanup that restores globals and flag values.
func setupTestRuntime(mirror *mockMirror, oauth *mockOAuth) func() {
	oldRuntime, oldSettings := rt, settingsStore
	if oauth == nil {
		oauth = &mockOAuth{}
	}
	rt = &Runtime{
		Config: domain.Config{
			Environment: domain.EnvironmentSandbox,
			OAuth:       domain.OAuthSettings{RedirectURI: "http://127.0.0.1:0/callback", Mode: domain.OwnerModeSystem},
			Server:      domain.ServerSettings{Addr: ":0", JWTSecret: "cli-test-secret"},
			Database:    domain.DatabaseSettings{Driver: "memory"},
			Cache:       domain.CacheSettings{Driver: "memory"},
		},
		Mirror: mirror,
		OAuth:  oauth,
	}
	settingsStore = memory.NewConfigStore()

	return func() {
		rt, settingsStore = oldRuntime, oldSettings
		asPrincipal, asAdmin = DefaultPrincipal, true
		cacheClearAll = false
		invoicePDFOutput = ""
		connectNoBrowser = false
		tokenAdmin, tokenTTL = false, 24*time.Hour
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	}
}

// run executes args against rootCmd and returns combined output.
func run(args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func strPtr(s string) *string { return &s }

func testInvoices() []domain.Invoice {
	due := time.Date(2000, 1, 31, 0, 0, 0, 0, time.UTC)
	return []domain.Invoice{
		{
			RemoteID:   "https://api.test/v2/invoices/1",
			ContactRef: strPtr("https://api.test/v2/contacts/42"),
			Reference:  "INV-001",
			Status:     domain.InvoiceSent,
			DatedOn:    time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC),
			DueOn:      &due,
			NetValue:   "100.00",
			TaxValue:   "20.00",
			TotalValue: "120.00",
			Currency:   "GBP",
		},
		{
			RemoteID:   "https://api.test/v2/invoices/2",
			Reference:  "INV-002",
			Status:     domain.InvoicePaid,
			DatedOn:    time.Date(2000, 2, 1, 0, 0, 0, 0, time.UTC),
			TotalValue: "50.00",
			Currency:   "GBP",
		},
	}
}
