package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/ledgerbridge/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/ledgerbridge/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/ledgerbridge/internal/adapters/driving/tui/views/contacts"
	"github.com/custodia-labs/ledgerbridge/internal/adapters/driving/tui/views/invoicedetail"
	"github.com/custodia-labs/ledgerbridge/internal/adapters/driving/tui/views/invoices"
	"github.com/custodia-labs/ledgerbridge/internal/adapters/driving/tui/views/menu"
	"github.com/custodia-labs/ledgerbridge/internal/core/domain"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles

	menuView     *menu.View
	invoicesView *invoices.View
	detailView   *invoicedetail.View
	contactsView *contacts.View

	// currentView tracks which view is active.
	currentView messages.ViewType

	// err holds the last error that occurred.
	err error

	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	a := &App{
		ports:       ports,
		styles:      styles.DefaultStyles(),
		currentView: messages.ViewMenu,
	}
	a.buildViews(context.Background())
	return a, nil
}

func (a *App) buildViews(ctx context.Context) {
	a.ctx = ctx
	p := a.ports.Principal
	a.menuView = menu.NewView(a.styles)
	a.menuView.SetPrincipal(principalLabel(p))
	a.invoicesView = invoices.NewView(ctx, a.styles, a.ports.Mirror, p)
	a.detailView = invoicedetail.NewView(ctx, a.styles, a.ports.Mirror, p)
	a.contactsView = contacts.NewView(ctx, a.styles, a.ports.Mirror, p)
	if a.ready {
		a.resize(a.width, a.height)
	}
}

func principalLabel(p domain.Principal) string {
	label := p.ID()
	if contact, ok := p.LinkedContactID(); ok {
		label += " (contact " + domain.ShortID(contact) + ")"
	} else if p.IsAdministrator() {
		label += " (admin)"
	}
	return label
}

// WithContext sets the context the views issue core calls with.
func (a *App) WithContext(ctx context.Context) *App {
	a.buildViews(ctx)
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		tea.SetWindowTitle("ledgerbridge"),
	)
}

// Update implements tea.Model.
//
//nolint:gocyclo // central message handler requires complexity
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.resize(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		switch a.currentView {
		case messages.ViewMenu:
			a.menuView, cmd = a.menuView.Update(msg)
		case messages.ViewInvoices:
			a.invoicesView, cmd = a.invoicesView.Update(msg)
		case messages.ViewInvoiceDetail:
			a.detailView, cmd = a.detailView.Update(msg)
		case messages.ViewContacts:
			a.contactsView, cmd = a.contactsView.Update(msg)
		case messages.ViewHelp:
			if msg.Type == tea.KeyEsc {
				a.currentView = messages.ViewMenu
			}
		}
		return a, cmd

	case messages.ViewChanged:
		a.currentView = msg.View
		switch msg.View {
		case messages.ViewInvoices:
			return a, a.invoicesView.Activate()
		case messages.ViewContacts:
			return a, a.contactsView.Init()
		case messages.ViewMenu, messages.ViewInvoiceDetail, messages.ViewHelp:
		}
		return a, nil

	case messages.InvoiceSelected:
		a.detailView.SetInvoice(msg.Invoice)
		a.currentView = messages.ViewInvoiceDetail
		return a, a.detailView.Init()

	case messages.InvoicesLoaded, messages.SyncCompleted:
		a.invoicesView, cmd = a.invoicesView.Update(msg)
		a.err = a.invoicesView.Err()
		return a, cmd

	case messages.InvoiceRefreshed:
		if msg.Err == nil && msg.Invoice != nil {
			a.invoicesView.ReplaceInvoice(*msg.Invoice)
		}
		a.detailView, cmd = a.detailView.Update(msg)
		a.err = msg.Err
		return a, cmd

	case messages.ContactsLoaded:
		a.contactsView, cmd = a.contactsView.Update(msg)
		a.err = msg.Err
		return a, cmd

	case messages.ErrorOccurred:
		a.err = msg.Err
		switch a.currentView {
		case messages.ViewInvoices:
			a.invoicesView, cmd = a.invoicesView.Update(msg)
		case messages.ViewInvoiceDetail:
			a.detailView, cmd = a.detailView.Update(msg)
		case messages.ViewContacts:
			a.contactsView, cmd = a.contactsView.Update(msg)
		case messages.ViewMenu, messages.ViewHelp:
		}
		return a, cmd

	case messages.Quit:
		return a, tea.Quit
	}

	// Forward anything else, such as textinput blinks, to the active view.
	switch a.currentView {
	case messages.ViewMenu:
		a.menuView, cmd = a.menuView.Update(msg)
	case messages.ViewInvoices:
		a.invoicesView, cmd = a.invoicesView.Update(msg)
	case messages.ViewInvoiceDetail:
		a.detailView, cmd = a.detailView.Update(msg)
	case messages.ViewContacts:
		a.contactsView, cmd = a.contactsView.Update(msg)
	case messages.ViewHelp:
	}
	return a, cmd
}

func (a *App) resize(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.menuView.SetDimensions(width, height)
	a.invoicesView.SetDimensions(width, height)
	a.detailView.SetDimensions(width, height)
	a.contactsView.SetDimensions(width, height)
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	switch a.currentView {
	case messages.ViewInvoices:
		return a.invoicesView.View()
	case messages.ViewInvoiceDetail:
		return a.detailView.View()
	case messages.ViewContacts:
		return a.contactsView.View()
	case messages.ViewHelp:
		return a.viewHelp()
	default:
		return a.menuView.View()
	}
}

func (a *App) viewHelp() string {
	help := `Help

Navigation:
  esc         Back
  ctrl+c      Quit

Menu:
  j/k, ↑/↓    Navigate options
  enter       Select option
  q           Quit

Invoices:
  j/k, ↑/↓    Navigate invoices
  g/G         First / last invoice
  enter       Open invoice
  /           Filter by id, reference, status or total
  r           Reload
  s           Sync from FreeAgent (administrators)

Invoice:
  j/k, ↑/↓    Scroll
  f           Re-fetch from FreeAgent (administrators)

[esc] back to menu`
	return a.styles.Normal.Render(help)
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has received its dimensions.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions (for testing).
func (a *App) SetDimensions(width, height int) {
	a.resize(width, height)
}
