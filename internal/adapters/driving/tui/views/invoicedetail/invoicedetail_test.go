package invoicedetail

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ledgerbridge/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/ledgerbridge/internal/core/domain"
)

// MockRefresher implements Refresher for testing.
type MockRefresher struct {
	RefreshInvoiceFunc func(ctx context.Context, p domain.Principal, id string) (*domain.Invoice, error)
}

func (m *MockRefresher) RefreshInvoice(ctx context.Context, p domain.Principal, id string) (*domain.Invoice, error) {
	if m.RefreshInvoiceFunc != nil {
		return m.RefreshInvoiceFunc(ctx, p, id)
	}
	return nil, nil
}

var (
	admin    = domain.User{UserID: "ops", Admin: true}
	viewer   = domain.User{UserID: "alice", Contact: "https://api.test/v2/contacts/42"}
	fixedNow = time.Date(2000, 3, 1, 12, 0, 0, 0, time.UTC)
)

func strPtr(s string) *string { return &s }

func sampleInvoice() domain.Invoice {
	due := time.Date(2000, 2, 1, 0, 0, 0, 0, time.UTC)
	return domain.Invoice{
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
		RawPayload: []byte(`{"reference":"INV-001","total_value":"120.0"}`),
	}
}

func newView(t *testing.T, p domain.Principal, r Refresher) *View {
	t.Helper()
	v := NewView(context.Background(), nil, r, p)
	v.SetClock(func() time.Time { return fixedNow })
	v.SetDimensions(100, 40)
	v.SetInvoice(sampleInvoice())
	return v
}

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestNewView(t *testing.T) {
	v := NewView(context.Background(), nil, nil, admin)

	require.NotNil(t, v)
	assert.Nil(t, v.Init())
	assert.Nil(t, v.Invoice())
	assert.Contains(t, v.View(), "No invoice selected")
}

func TestView_RendersFields(t *testing.T) {
	v := newView(t, admin, &MockRefresher{})

	view := v.View()

	assert.Contains(t, view, "Invoice INV-001")
	assert.Contains(t, view, "https://api.test/v2/invoices/1")
	assert.Contains(t, view, "Overdue")
	assert.Contains(t, view, "2000-02-01")
	assert.Contains(t, view, "120.00 GBP")
	assert.Contains(t, view, "Contact:")
	assert.Contains(t, view, "Payload:")
	assert.Contains(t, view, `"total_value": "120.0"`)
	assert.Contains(t, view, "[f] re-fetch")
}

func TestView_BuildContent_InvalidPayload(t *testing.T) {
	v := newView(t, admin, &MockRefresher{})
	inv := sampleInvoice()
	inv.RawPayload = []byte("not json")
	v.SetInvoice(inv)

	lines := v.buildContent()

	assert.Contains(t, lines, "  not json")
}

func TestView_BuildContent_OptionalFields(t *testing.T) {
	v := newView(t, admin, &MockRefresher{})
	v.SetInvoice(domain.Invoice{RemoteID: "https://api.test/v2/invoices/9", Status: domain.InvoiceDraft})

	lines := v.buildContent()

	assert.Contains(t, lines, "Due:       -")
	assert.Contains(t, lines, "Total:     -")
	for _, line := range lines {
		assert.NotContains(t, line, "Contact:")
		assert.NotContains(t, line, "Payload:")
	}
}

func TestView_Scroll(t *testing.T) {
	v := newView(t, admin, &MockRefresher{})
	v.SetDimensions(100, 10) // three visible lines

	v.Update(keyRune('k'))
	assert.Equal(t, 0, v.scrollOffset)

	v.Update(keyRune('j'))
	v.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 2, v.scrollOffset)

	for i := 0; i < 100; i++ {
		v.Update(keyRune('j'))
	}
	assert.Equal(t, v.maxScrollOffset(), v.scrollOffset)
	assert.Contains(t, v.View(), "[Line")
}

func TestView_Esc_ReturnsToInvoices(t *testing.T) {
	v := newView(t, admin, &MockRefresher{})

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEsc})

	require.NotNil(t, cmd)
	assert.Equal(t, messages.ViewChanged{View: messages.ViewInvoices}, cmd())
}

func TestView_Refresh_Admin(t *testing.T) {
	var gotID string
	refresher := &MockRefresher{
		RefreshInvoiceFunc: func(_ context.Context, _ domain.Principal, id string) (*domain.Invoice, error) {
			gotID = id
			inv := sampleInvoice()
			inv.Status = domain.InvoicePaid
			return &inv, nil
		},
	}
	v := newView(t, admin, refresher)

	_, cmd := v.Update(keyRune('f'))
	require.NotNil(t, cmd)
	assert.Contains(t, v.View(), "Re-fetching...")

	_, again := v.Update(keyRune('f'))
	assert.Nil(t, again, "one refresh at a time")

	v.Update(cmd())

	assert.Equal(t, "https://api.test/v2/invoices/1", gotID)
	assert.Equal(t, domain.InvoicePaid, v.Invoice().Status)
	assert.Contains(t, v.View(), "Re-fetched from FreeAgent")
}

func TestView_Refresh_NonAdmin(t *testing.T) {
	v := newView(t, viewer, &MockRefresher{})

	_, cmd := v.Update(keyRune('f'))

	assert.Nil(t, cmd)
	assert.ErrorIs(t, v.Err(), domain.ErrForbidden)
	assert.NotContains(t, v.View(), "[f] re-fetch")
}

func TestView_Refresh_Error(t *testing.T) {
	refresher := &MockRefresher{
		RefreshInvoiceFunc: func(context.Context, domain.Principal, string) (*domain.Invoice, error) {
			return nil, domain.ErrNotFound
		},
	}
	v := newView(t, admin, refresher)

	_, cmd := v.Update(keyRune('f'))
	v.Update(cmd())

	assert.ErrorIs(t, v.Err(), domain.ErrNotFound)
	assert.Equal(t, "INV-001", v.Invoice().Reference)
	assert.Contains(t, v.View(), "Error: not found")
}

func TestView_ErrorOccurred(t *testing.T) {
	v := newView(t, admin, &MockRefresher{})

	v.Update(messages.ErrorOccurred{Err: errors.New("boom")})

	assert.EqualError(t, v.Err(), "boom")
}
