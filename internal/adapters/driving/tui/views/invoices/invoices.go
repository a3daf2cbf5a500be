// Package invoices provides the invoice list view for the TUI.
package invoices

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/ledgerbridge/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/ledgerbridge/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/ledgerbridge/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/ledgerbridge/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/ledgerbridge/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/ledgerbridge/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/ledgerbridge/internal/core/domain"
)

// Service is the part of the mirror the invoice list needs.
type Service interface {
	ListInvoices(ctx context.Context, p domain.Principal) ([]domain.Invoice, error)
	SyncNow(ctx context.Context, p domain.Principal) (domain.SyncStats, error)
}

var errNoService = errors.New("mirror service not available")

// View is the invoice list view.
type View struct {
	ctx       context.Context
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	service   Service
	principal domain.Principal

	list   *list.InvoiceList
	filter *input.FilterInput
	bar    *status.Bar

	width   int
	height  int
	loaded  bool
	loading bool
	syncing bool
	err     error
}

// NewView creates a new invoice list view.
func NewView(ctx context.Context, s *styles.Styles, service Service, p domain.Principal) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	km := keymap.DefaultKeyMap()

	return &View{
		ctx:       ctx,
		styles:    s,
		keymap:    km,
		service:   service,
		principal: p,
		list:      list.NewInvoiceList(s),
		filter:    input.NewFilterInput(s),
		bar:       status.NewBar(s, km),
		width:     80,
		height:    24,
	}
}

// Init loads invoices.
func (v *View) Init() tea.Cmd {
	return v.load()
}

// Activate loads invoices the first time the view is shown.
func (v *View) Activate() tea.Cmd {
	if v.loaded || v.loading {
		return nil
	}
	return v.load()
}

func (v *View) load() tea.Cmd {
	v.loading = true
	v.bar.SetState(status.StateLoading)
	service, ctx, p := v.service, v.ctx, v.principal
	return func() tea.Msg {
		if service == nil {
			return messages.InvoicesLoaded{Err: errNoService}
		}
		invoices, err := service.ListInvoices(ctx, p)
		return messages.InvoicesLoaded{Invoices: invoices, Err: err}
	}
}

func (v *View) sync() tea.Cmd {
	if v.principal == nil || !v.principal.IsAdministrator() {
		v.setError(fmt.Errorf("sync: %w", domain.ErrForbidden))
		return nil
	}
	v.syncing = true
	v.bar.SetState(status.StateSyncing)
	service, ctx, p := v.service, v.ctx, v.principal
	return func() tea.Msg {
		if service == nil {
			return messages.SyncCompleted{Err: errNoService}
		}
		stats, err := service.SyncNow(ctx, p)
		return messages.SyncCompleted{Stats: stats, Err: err}
	}
}

// Update handles messages for the invoice list view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		if v.filter.Focused() {
			return v.handleFilterKey(msg)
		}
		return v.handleKeyMsg(msg)

	case messages.InvoicesLoaded:
		v.loading = false
		if msg.Err != nil {
			v.setError(msg.Err)
			return v, nil
		}
		v.loaded = true
		v.err = nil
		v.list.SetInvoices(msg.Invoices)
		v.list.SetFilter(v.filter.Value())
		v.showListing()
		return v, nil

	case messages.SyncCompleted:
		v.syncing = false
		if msg.Err != nil {
			v.setError(msg.Err)
			return v, nil
		}
		v.bar.SetMessage(fmt.Sprintf("synced %d (%d new, %d updated) in %s",
			msg.Stats.Total, msg.Stats.Created, msg.Stats.Updated, msg.Stats.Duration.Round(time.Millisecond)))
		return v, v.load()

	case messages.ErrorOccurred:
		v.setError(msg.Err)
		return v, nil
	}

	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	key := msg.String()
	switch {
	case keymap.Matches(key, v.keymap.Back):
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	case keymap.Matches(key, v.keymap.Select):
		inv := v.list.SelectedInvoice()
		if inv == nil {
			return v, nil
		}
		selected := *inv
		return v, func() tea.Msg {
			return messages.InvoiceSelected{Invoice: selected}
		}
	case keymap.Matches(key, v.keymap.Filter):
		return v, v.filter.Focus()
	case keymap.Matches(key, v.keymap.Reload):
		if v.loading || v.syncing {
			return v, nil
		}
		return v, v.load()
	case keymap.Matches(key, v.keymap.Sync):
		if v.loading || v.syncing {
			return v, nil
		}
		return v, v.sync()
	}

	var cmd tea.Cmd
	v.list, cmd = v.list.Update(msg)
	return v, cmd
}

func (v *View) handleFilterKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		v.filter.Blur()
		v.filter.Reset()
		v.list.SetFilter("")
		v.showListing()
		return v, nil
	case tea.KeyEnter:
		v.filter.Blur()
		return v, nil
	}

	var cmd tea.Cmd
	v.filter, cmd = v.filter.Update(msg)
	v.list.SetFilter(v.filter.Value())
	v.showListing()
	return v, cmd
}

func (v *View) showListing() {
	if v.err != nil {
		return
	}
	v.bar.SetState(status.StateListing)
	v.bar.SetCounts(v.list.Count(), v.list.Total())
}

func (v *View) setError(err error) {
	v.err = err
	v.bar.SetState(status.StateError)
	v.bar.SetMessage(err.Error())
}

// ReplaceInvoice updates one row after it was re-fetched.
func (v *View) ReplaceInvoice(inv domain.Invoice) {
	v.list.ReplaceInvoice(inv)
}

// View renders the invoice list view.
func (v *View) View() string {
	var b strings.Builder

	title := "Invoices"
	if v.principal != nil {
		if contact, ok := v.principal.LinkedContactID(); ok {
			title += " - " + domain.ShortID(contact)
		}
	}
	b.WriteString(v.styles.Title.Render(title))
	b.WriteString("\n\n")

	if v.filter.Focused() || v.filter.Value() != "" {
		b.WriteString(v.filter.View())
		b.WriteString("\n\n")
	}

	switch {
	case v.loading && !v.loaded:
		b.WriteString(v.styles.Muted.Render("Loading invoices..."))
	case v.err != nil && !v.loaded:
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %s", v.err.Error())))
	default:
		b.WriteString(v.list.View())
	}

	b.WriteString("\n\n")
	b.WriteString(v.bar.View())
	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	// Title, filter and status bar take roughly eight lines.
	v.list.SetDimensions(width, height-8)
	v.filter.SetWidth(width)
	v.bar.SetWidth(width)
}

// SetClock overrides the clock used for overdue labels.
func (v *View) SetClock(now func() time.Time) {
	v.list.SetClock(now)
}

// Count returns the number of invoices shown.
func (v *View) Count() int {
	return v.list.Count()
}

// Selected returns the highlighted invoice, or nil.
func (v *View) Selected() *domain.Invoice {
	return v.list.SelectedInvoice()
}

// Filtering reports whether the filter input has focus.
func (v *View) Filtering() bool {
	return v.filter.Focused()
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
