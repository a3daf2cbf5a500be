package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ledgerbridge/internal/core/domain"
)

func TestMirrorService_ListInvoices_LazySyncWhenConnected(t *testing.T) {
	env := newTestEnv()
	env.seedRemote()
	env.connect(time.Hour)
	ctx := context.Background()

	invoices, err := env.mirror.ListInvoices(ctx, admin)
	require.NoError(t, err)
	assert.Len(t, invoices, 3)
	assert.Equal(t, 1, env.api.calls[domain.ResourceInvoices])

	// Fresh now, served from the mirror.
	_, err = env.mirror.ListInvoices(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, 1, env.api.calls[domain.ResourceInvoices])

	env.now = env.now.Add(31 * time.Minute)
	_, err = env.mirror.ListInvoices(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, 2, env.api.calls[domain.ResourceInvoices])
}

func TestMirrorService_ListInvoices_NotConnectedServesMirror(t *testing.T) {
	env := newTestEnv()
	env.seedRemote()
	ctx := context.Background()
	c42 := contactURL("42")
	_, err := env.invoices.Upsert(ctx, domain.Invoice{RemoteID: invoiceURL("old"), ContactRef: &c42})
	require.NoError(t, err)

	invoices, err := env.mirror.ListInvoices(ctx, admin)
	require.NoError(t, err)
	assert.Len(t, invoices, 1)
	assert.Zero(t, env.api.calls[domain.ResourceInvoices])
}

func TestMirrorService_ListInvoices_Scoped(t *testing.T) {
	env := newTestEnv()
	env.seedRemote()
	env.connect(time.Hour)
	ctx := context.Background()

	mine, err := env.mirror.ListInvoices(ctx, scoped42)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	none, err := env.mirror.ListInvoices(ctx, unlinked)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestMirrorService_ListInvoices_SyncErrorPropagates(t *testing.T) {
	env := newTestEnv()
	env.seedRemote()
	env.connect(time.Hour)
	env.api.errs[domain.ResourceContacts] = &domain.APIError{Kind: domain.ErrAuthenticationFailed, StatusCode: 401}

	_, err := env.mirror.ListInvoices(context.Background(), admin)
	assert.ErrorIs(t, err, domain.ErrAuthenticationFailed)
}

func TestMirrorService_GetInvoice(t *testing.T) {
	env := newTestEnv()
	env.seedRemote()
	ctx := context.Background()
	_, err := env.engine.SyncInvoices(ctx, owner, domain.Filter{})
	require.NoError(t, err)

	inv, err := env.mirror.GetInvoice(ctx, scoped42, "1")
	require.NoError(t, err)
	assert.Equal(t, invoiceURL("1"), inv.RemoteID)

	_, err = env.mirror.GetInvoice(ctx, scoped42, "3")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = env.mirror.GetInvoice(ctx, admin, "404")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMirrorService_DownloadInvoicePDF(t *testing.T) {
	env := newTestEnv()
	env.seedRemote()
	env.api.pdf = []byte("%PDF-1.4 test")
	ctx := context.Background()
	_, err := env.engine.SyncInvoices(ctx, owner, domain.Filter{})
	require.NoError(t, err)

	pdf, err := env.mirror.DownloadInvoicePDF(ctx, scoped42, invoiceURL("1"))
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4 test"), pdf)
	assert.Equal(t, []string{"1"}, env.api.pdfIDs)

	_, err = env.mirror.DownloadInvoicePDF(ctx, unlinked, "1")
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestMirrorService_AdminOnlyOperations(t *testing.T) {
	env := newTestEnv()
	env.seedRemote()
	ctx := context.Background()

	_, err := env.mirror.SyncNow(ctx, scoped42)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = env.mirror.RefreshInvoice(ctx, scoped42, "1")
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.ErrorIs(t, env.mirror.ClearCache(ctx, scoped42, false), domain.ErrForbidden)
	assert.ErrorIs(t, env.mirror.Link(ctx, scoped42, "u1", "42"), domain.ErrForbidden)
	assert.ErrorIs(t, env.mirror.Unlink(ctx, scoped42, "u1"), domain.ErrForbidden)

	stats, err := env.mirror.SyncNow(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Created)

	inv, err := env.mirror.RefreshInvoice(ctx, admin, "2")
	require.NoError(t, err)
	assert.Equal(t, domain.InvoicePaid, inv.Status)

	require.NoError(t, env.mirror.ClearCache(ctx, admin, true))
	stale, _ := env.engine.IsStale(ctx, owner, domain.ResourceInvoices)
	assert.True(t, stale)
}

func TestMirrorService_LinkAndPrincipal(t *testing.T) {
	env := newTestEnv()
	env.seedRemote()
	ctx := context.Background()
	_, err := env.engine.SyncInvoices(ctx, owner, domain.Filter{})
	require.NoError(t, err)

	require.NoError(t, env.mirror.Link(ctx, admin, "u1", "42"))
	assert.ErrorIs(t, env.mirror.Link(ctx, admin, "u1", "missing"), domain.ErrNotFound)

	p, err := env.mirror.Principal(ctx, "u1", false)
	require.NoError(t, err)
	contact, ok := p.LinkedContactID()
	assert.True(t, ok)
	assert.Equal(t, contactURL("42"), contact)

	contacts, err := env.mirror.ListContacts(ctx, p)
	require.NoError(t, err)
	require.Len(t, contacts, 1)
	assert.Equal(t, "Acme Ltd", contacts[0].DisplayName())

	projects, err := env.mirror.ListProjects(ctx, p)
	require.NoError(t, err)
	assert.Len(t, projects, 1)

	require.NoError(t, env.mirror.Unlink(ctx, admin, "u1"))
	p, err = env.mirror.Principal(ctx, "u1", false)
	require.NoError(t, err)
	contacts, err = env.mirror.ListContacts(ctx, p)
	require.NoError(t, err)
	assert.Empty(t, contacts)

	all, err := env.mirror.ListContacts(ctx, admin)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestMirrorService_Connection(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	tok, err := env.mirror.Connection(ctx, admin)
	require.NoError(t, err)
	assert.Nil(t, tok)

	env.connect(time.Hour)
	tok, err = env.mirror.Connection(ctx, admin)
	require.NoError(t, err)
	require.NotNil(t, tok)
	assert.Equal(t, "system", env.mirror.OwnerFor(scoped42))
}

func TestMirrorService_SyncResource(t *testing.T) {
	env := newTestEnv()
	env.seedRemote()
	ctx := context.Background()

	stats, err := env.mirror.SyncResource(ctx, admin, domain.ResourceContacts)
	require.NoError(t, err)
	assert.Equal(t, domain.ResourceContacts, stats.Kind)
	stale, _ := env.engine.IsStale(ctx, owner, domain.ResourceContacts)
	assert.False(t, stale)

	_, err = env.mirror.SyncResource(ctx, admin, domain.ResourceKind("expenses"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = env.mirror.SyncResource(ctx, scoped42, domain.ResourceContacts)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
