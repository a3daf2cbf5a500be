package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/ledgerbridge/internal/adapters/driven/cache"
	"github.com/custodia-labs/ledgerbridge/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/ledgerbridge/internal/core/domain"
	"github.com/custodia-labs/ledgerbridge/internal/core/ports/driven"
)

// --- Mock implementations for service testing ---

// mockProvider implements driven.OAuthProvider.
type mockProvider struct {
	mu            sync.Mutex
	exchange      *domain.TokenGrant
	exchangeErr   error
	refresh       *domain.TokenGrant
	refreshErr    error
	refreshCalls  int
	lastRefresh   string
	notConfigured bool
}

var _ driven.OAuthProvider = (*mockProvider)(nil)

func (m *mockProvider) AuthCodeURL(state string) (string, error) {
	if m.notConfigured {
		return "", domain.ErrNotConfigured
	}
	return "https://provider.example/approve_app?state=" + state, nil
}

func (m *mockProvider) Exchange(_ context.Context, code string) (*domain.TokenGrant, error) {
	if m.exchangeErr != nil {
		return nil, m.exchangeErr
	}
	if m.exchange == nil {
		return nil, domain.NewOAuthError(domain.ErrAuthorizationFailed, "unexpected code "+code, nil)
	}
	grant := *m.exchange
	return &grant, nil
}

func (m *mockProvider) Refresh(_ context.Context, refreshToken string) (*domain.TokenGrant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refreshCalls++
	m.lastRefresh = refreshToken
	if m.refreshErr != nil {
		return nil, m.refreshErr
	}
	grant := *m.refresh
	return &grant, nil
}

// fakeAPI implements driven.AccountingAPI from canned records.
type fakeAPI struct {
	mu      sync.Mutex
	records map[domain.ResourceKind][]domain.RemoteRecord
	errs    map[domain.ResourceKind]error
	calls   map[domain.ResourceKind]int
	pdf     []byte
	pdfIDs  []string
	filters []domain.Filter
}

var _ driven.AccountingAPI = (*fakeAPI)(nil)

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		records: make(map[domain.ResourceKind][]domain.RemoteRecord),
		errs:    make(map[domain.ResourceKind]error),
		calls:   make(map[domain.ResourceKind]int),
	}
}

func (f *fakeAPI) add(kind domain.ResourceKind, payload map[string]any) {
	data, err := json.Marshal(payload)
	if err != nil {
		panic(err)
	}
	url, _ := payload["url"].(string)
	f.records[kind] = append(f.records[kind], domain.RemoteRecord{URL: url, Payload: data})
}

func (f *fakeAPI) FetchAll(_ context.Context, _ string, kind domain.ResourceKind,
	filter domain.Filter, _ domain.FetchOptions) ([]domain.RemoteRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[kind]++
	f.filters = append(f.filters, filter)
	if err := f.errs[kind]; err != nil {
		return nil, err
	}
	return append([]domain.RemoteRecord(nil), f.records[kind]...), nil
}

func (f *fakeAPI) FetchOne(_ context.Context, _ string, kind domain.ResourceKind,
	id string, _ domain.FetchOptions) (*domain.RemoteRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[kind]++
	for _, rec := range f.records[kind] {
		if rec.URL == id || domain.ShortID(rec.URL) == domain.ShortID(id) {
			r := rec
			return &r, nil
		}
	}
	return nil, &domain.APIError{Kind: domain.ErrRequestFailed, StatusCode: 404, Path: fmt.Sprintf("/%s/%s", kind, id)}
}

func (f *fakeAPI) FetchInvoicePDF(_ context.Context, _, id string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pdfIDs = append(f.pdfIDs, id)
	return f.pdf, nil
}

// testEnv wires services over memory adapters.
type testEnv struct {
	api      *fakeAPI
	provider *mockProvider
	tokens   *memory.TokenStore
	contacts *memory.ContactStore
	projects *memory.ProjectStore
	invoices *memory.InvoiceStore
	links    *memory.LinkStore
	cache    *cache.Memory
	oauth    *OAuthManager
	engine   *SyncEngine
	mirror   *MirrorService
	now      time.Time
}

const testBase = "https://api.example.com/v2"

func newTestEnv() *testEnv {
	env := &testEnv{
		api:      newFakeAPI(),
		provider: &mockProvider{},
		tokens:   memory.NewTokenStore(),
		contacts: memory.NewContactStore(),
		projects: memory.NewProjectStore(),
		invoices: memory.NewInvoiceStore(),
		links:    memory.NewLinkStore(),
		cache:    cache.NewMemory(),
		now:      time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC),
	}
	clock := func() time.Time { return env.now }

	env.oauth = NewOAuthManager(env.provider, env.tokens)
	env.oauth.now = clock
	env.engine = NewSyncEngine(env.api, env.contacts, env.projects, env.invoices, env.cache, domain.CacheSettings{})
	env.engine.now = clock
	env.mirror = NewMirrorService(MirrorDeps{
		OAuth:    env.oauth,
		Sync:     env.engine,
		Scope:    NewScopeResolver(),
		Owners:   SystemOwnerResolver{},
		API:      env.api,
		Contacts: env.contacts,
		Projects: env.projects,
		Invoices: env.invoices,
		Links:    env.links,
	})
	return env
}

func contactURL(id string) string { return testBase + "/contacts/" + id }
func projectURL(id string) string { return testBase + "/projects/" + id }
func invoiceURL(id string) string { return testBase + "/invoices/" + id }

func (env *testEnv) seedRemote() {
	env.api.add(domain.ResourceContacts, map[string]any{
		"url": contactURL("42"), "organisation_name": "Acme Ltd", "status": "Active",
	})
	env.api.add(domain.ResourceContacts, map[string]any{
		"url": contactURL("7"), "first_name": "Jo", "last_name": "Bloggs", "status": "Hidden",
	})
	env.api.add(domain.ResourceProjects, map[string]any{
		"url": projectURL("1"), "name": "Website", "contact": contactURL("42"),
		"status": "Active", "budget": "1500.00", "currency": "GBP",
	})
	env.api.add(domain.ResourceInvoices, map[string]any{
		"url": invoiceURL("1"), "contact": contactURL("42"), "project": projectURL("1"),
		"reference": "INV-001", "status": "Open", "dated_on": "2026-03-01", "due_on": "2026-03-10",
		"net_value": "100.0", "sales_tax_value": "20.0", "total_value": "120.0", "currency": "GBP",
	})
	env.api.add(domain.ResourceInvoices, map[string]any{
		"url": invoiceURL("2"), "contact": contactURL("42"), "reference": "INV-002",
		"status": "Paid", "dated_on": "2026-02-01", "total_value": 50.5, "currency": "GBP",
	})
	env.api.add(domain.ResourceInvoices, map[string]any{
		"url": invoiceURL("3"), "contact": contactURL("7"), "reference": "INV-003",
		"status": "Draft", "dated_on": "2026-01-15", "total_value": "10.00", "currency": "GBP",
	})
}

func (env *testEnv) connect(expiresIn time.Duration) {
	_ = env.tokens.Save(context.Background(), domain.OAuthToken{
		ID: "tok-1", OwnerID: domain.SystemOwner, AccessToken: "access", RefreshToken: "refresh",
		TokenType: "Bearer", ExpiresAt: env.now.Add(expiresIn),
	})
}

var (
	admin    = domain.User{UserID: "admin", Admin: true}
	scoped42 = domain.User{UserID: "u42", Contact: contactURL("42")}
	unlinked = domain.User{UserID: "nobody"}
)
