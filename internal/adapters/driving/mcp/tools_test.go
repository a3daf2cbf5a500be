package mcp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ledgerbridge/internal/core/domain"
)

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
			TotalValue: "120.00",
			Currency:   "GBP",
		},
		{
			RemoteID:   "https://api.test/v2/invoices/2",
			ContactRef: strPtr("https://api.test/v2/contacts/7"),
			Reference:  "INV-002",
			Status:     domain.InvoicePaid,
			DatedOn:    time.Date(2000, 2, 1, 0, 0, 0, 0, time.UTC),
			TotalValue: "50.00",
			Currency:   "GBP",
		},
	}
}

func TestServer_handleListInvoices(t *testing.T) {
	ctx := context.Background()

	t.Run("returns every invoice as the acting principal", func(t *testing.T) {
		mirror := &mockMirrorService{invoices: testInvoices()}
		server, err := newTestServer(mirror)
		require.NoError(t, err)

		_, output, err := server.handleListInvoices(ctx, nil, ListInvoicesInput{})

		require.NoError(t, err)
		assert.Equal(t, 2, output.Count)
		assert.Equal(t, 2, output.Total)
		assert.Equal(t, "1", output.Invoices[0].ID)
		assert.Equal(t, "INV-001", output.Invoices[0].Reference)
		assert.True(t, output.Invoices[0].Overdue)
		assert.Equal(t, "Overdue", output.Invoices[0].Status)
		assert.Equal(t, "2000-01-31", output.Invoices[0].DueOn)
		require.Len(t, mirror.seen, 1)
		assert.Equal(t, testAdmin, mirror.seen[0])
	})

	t.Run("filters by status and contact", func(t *testing.T) {
		server, err := newTestServer(&mockMirrorService{invoices: testInvoices()})
		require.NoError(t, err)

		_, paid, err := server.handleListInvoices(ctx, nil, ListInvoicesInput{Status: "Paid"})
		require.NoError(t, err)
		require.Equal(t, 1, paid.Count)
		assert.Equal(t, "INV-002", paid.Invoices[0].Reference)

		_, byContact, err := server.handleListInvoices(ctx, nil, ListInvoicesInput{Contact: "42"})
		require.NoError(t, err)
		require.Equal(t, 1, byContact.Count)
		assert.Equal(t, "INV-001", byContact.Invoices[0].Reference)
	})

	t.Run("limit caps the page but not the total", func(t *testing.T) {
		server, err := newTestServer(&mockMirrorService{invoices: testInvoices()})
		require.NoError(t, err)

		_, output, err := server.handleListInvoices(ctx, nil, ListInvoicesInput{Limit: 1})

		require.NoError(t, err)
		assert.Equal(t, 1, output.Count)
		assert.Equal(t, 2, output.Total)
	})

	t.Run("empty mirror returns empty list", func(t *testing.T) {
		server, err := newTestServer(&mockMirrorService{})
		require.NoError(t, err)

		_, output, err := server.handleListInvoices(ctx, nil, ListInvoicesInput{})

		require.NoError(t, err)
		assert.NotNil(t, output.Invoices)
		assert.Equal(t, 0, output.Count)
	})

	t.Run("returns error on list failure", func(t *testing.T) {
		server, err := newTestServer(&mockMirrorService{err: errors.New("sync failed")})
		require.NoError(t, err)

		_, _, err = server.handleListInvoices(ctx, nil, ListInvoicesInput{})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "sync failed")
	})
}

func TestServer_handleGetInvoice(t *testing.T) {
	ctx := context.Background()
	server, err := newTestServer(&mockMirrorService{invoices: testInvoices()})
	require.NoError(t, err)

	_, output, err := server.handleGetInvoice(ctx, nil, GetInvoiceInput{ID: "2"})
	require.NoError(t, err)
	assert.Equal(t, "INV-002", output.Invoice.Reference)
	assert.Equal(t, "https://api.test/v2/invoices/2", output.Invoice.URL)

	_, _, err = server.handleGetInvoice(ctx, nil, GetInvoiceInput{ID: "99"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestServer_handleSyncInvoices(t *testing.T) {
	ctx := context.Background()

	t.Run("returns stats", func(t *testing.T) {
		mirror := &mockMirrorService{stats: domain.SyncStats{
			Kind: domain.ResourceInvoices, Total: 3, Created: 2, Updated: 1, Duration: 1500 * time.Millisecond,
		}}
		server, err := newTestServer(mirror)
		require.NoError(t, err)

		_, output, err := server.handleSyncInvoices(ctx, nil, SyncInvoicesInput{})

		require.NoError(t, err)
		assert.Equal(t, SyncInvoicesOutput{Total: 3, Created: 2, Updated: 1, DurationMS: 1500}, output)
	})

	t.Run("propagates forbidden", func(t *testing.T) {
		server, err := newTestServer(&mockMirrorService{err: domain.ErrForbidden})
		require.NoError(t, err)

		_, _, err = server.handleSyncInvoices(ctx, nil, SyncInvoicesInput{})

		assert.ErrorIs(t, err, domain.ErrForbidden)
	})
}
