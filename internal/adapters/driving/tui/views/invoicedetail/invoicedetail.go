// Package invoicedetail provides the single-invoice view for the TUI.
package invoicedetail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/ledgerbridge/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/ledgerbridge/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/ledgerbridge/internal/core/domain"
)

// Refresher re-fetches one invoice from the remote API.
type Refresher interface {
	RefreshInvoice(ctx context.Context, p domain.Principal, id string) (*domain.Invoice, error)
}

// View is the invoice detail view.
type View struct {
	ctx       context.Context
	styles    *styles.Styles
	refresher Refresher
	principal domain.Principal
	now       func() time.Time

	invoice      *domain.Invoice
	scrollOffset int
	width        int
	height       int
	refreshing   bool
	notice       string
	err          error
}

// NewView creates a new invoice detail view.
func NewView(ctx context.Context, s *styles.Styles, refresher Refresher, p domain.Principal) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		ctx:       ctx,
		styles:    s,
		refresher: refresher,
		principal: p,
		now:       time.Now,
		width:     80,
		height:    24,
	}
}

// SetInvoice sets the invoice to display.
func (v *View) SetInvoice(inv domain.Invoice) {
	v.invoice = &inv
	v.scrollOffset = 0
	v.notice = ""
	v.err = nil
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

// Update handles messages for the detail view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.InvoiceRefreshed:
		v.refreshing = false
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		if msg.Invoice != nil {
			v.SetInvoice(*msg.Invoice)
			v.notice = "Re-fetched from FreeAgent"
		}
		return v, nil

	case messages.ErrorOccurred:
		v.err = msg.Err
		return v, nil
	}

	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if v.scrollOffset > 0 {
			v.scrollOffset--
		}
	case "down", "j":
		if v.scrollOffset < v.maxScrollOffset() {
			v.scrollOffset++
		}
	case "f":
		return v, v.refresh()
	case "esc":
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewInvoices}
		}
	}
	return v, nil
}

func (v *View) refresh() tea.Cmd {
	if v.invoice == nil || v.refreshing {
		return nil
	}
	if v.principal == nil || !v.principal.IsAdministrator() {
		v.err = fmt.Errorf("refresh: %w", domain.ErrForbidden)
		return nil
	}
	v.refreshing = true
	v.err = nil
	refresher, ctx, p, id := v.refresher, v.ctx, v.principal, v.invoice.RemoteID
	return func() tea.Msg {
		if refresher == nil {
			return messages.InvoiceRefreshed{Err: fmt.Errorf("mirror service not available")}
		}
		inv, err := refresher.RefreshInvoice(ctx, p, id)
		return messages.InvoiceRefreshed{Invoice: inv, Err: err}
	}
}

// visibleLines returns the number of lines that can be displayed.
func (v *View) visibleLines() int {
	// Title, separator, notice and help.
	return max(v.height-7, 1)
}

func (v *View) maxScrollOffset() int {
	return max(len(v.buildContent())-v.visibleLines(), 0)
}

// buildContent builds the content lines for display.
func (v *View) buildContent() []string {
	inv := v.invoice
	if inv == nil {
		return nil
	}
	now := v.now()

	lines := []string{
		v.formatField("ID", domain.ShortID(inv.RemoteID)),
		v.formatField("URL", inv.RemoteID),
		v.formatField("Status", inv.StatusLabel(now)),
		v.formatField("Dated", formatDate(&inv.DatedOn)),
		v.formatField("Due", formatDate(inv.DueOn)),
		v.formatField("Net", money(inv.NetValue, inv.Currency)),
		v.formatField("Tax", money(inv.TaxValue, inv.Currency)),
		v.formatField("Total", money(inv.TotalValue, inv.Currency)),
	}
	if inv.ContactRef != nil {
		lines = append(lines, v.formatField("Contact", *inv.ContactRef))
	}
	if inv.ProjectRef != nil {
		lines = append(lines, v.formatField("Project", *inv.ProjectRef))
	}
	if !inv.SyncedAt.IsZero() {
		lines = append(lines, v.formatField("Synced", inv.SyncedAt.Local().Format("2006-01-02 15:04:05")))
	}

	if len(inv.RawPayload) > 0 {
		lines = append(lines, "", "Payload:")
		var pretty bytes.Buffer
		if err := json.Indent(&pretty, inv.RawPayload, "  ", "  "); err != nil {
			lines = append(lines, "  "+string(inv.RawPayload))
		} else {
			for _, line := range strings.Split(pretty.String(), "\n") {
				lines = append(lines, "  "+line)
			}
		}
	}

	return lines
}

func (v *View) formatField(label, value string) string {
	return fmt.Sprintf("%-10s %s", label+":", value)
}

func formatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02")
}

func money(value, currency string) string {
	if value == "" {
		return "-"
	}
	return value + " " + currency
}

// View renders the invoice detail view.
func (v *View) View() string {
	var b strings.Builder

	title := "Invoice"
	if v.invoice != nil && v.invoice.Reference != "" {
		title += " " + v.invoice.Reference
	}
	b.WriteString(v.styles.Title.Render(title))
	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", max(min(v.width-4, 60), 1)))
	b.WriteString("\n\n")

	if v.invoice == nil {
		b.WriteString(v.styles.Muted.Render("No invoice selected"))
		b.WriteString("\n\n")
		b.WriteString(v.renderHelp())
		return b.String()
	}

	now := v.now()
	lines := v.buildContent()
	visible := v.visibleLines()
	for i := v.scrollOffset; i < len(lines) && i < v.scrollOffset+visible; i++ {
		b.WriteString(v.renderLine(lines[i], now))
		b.WriteString("\n")
	}

	if len(lines) > visible {
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  [Line %d-%d of %d]",
			v.scrollOffset+1, min(v.scrollOffset+visible, len(lines)), len(lines))))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	switch {
	case v.refreshing:
		b.WriteString(v.styles.Muted.Render("Re-fetching..."))
		b.WriteString("\n")
	case v.err != nil:
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %s", v.err.Error())))
		b.WriteString("\n")
	case v.notice != "":
		b.WriteString(v.styles.Success.Render(v.notice))
		b.WriteString("\n")
	}
	b.WriteString(v.renderHelp())
	return b.String()
}

func (v *View) renderLine(line string, now time.Time) string {
	switch {
	case line == "Payload:":
		return v.styles.Subtitle.Render(line)
	case strings.HasPrefix(line, "  "):
		return v.styles.Muted.Render(line)
	case strings.HasPrefix(line, "Status:"):
		label, value, _ := strings.Cut(line, ":")
		return v.styles.Subtitle.Render(label+":") +
			v.styles.ForColour(v.invoice.StatusColor(now)).Render(value)
	}
	if label, value, ok := strings.Cut(line, ":"); ok {
		return v.styles.Subtitle.Render(label+":") + v.styles.Normal.Render(value)
	}
	return v.styles.Normal.Render(line)
}

func (v *View) renderHelp() string {
	if v.principal != nil && v.principal.IsAdministrator() {
		return v.styles.Help.Render("[↑/↓] scroll  [f] re-fetch  [esc] back")
	}
	return v.styles.Help.Render("[↑/↓] scroll  [esc] back")
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
}

// SetClock overrides the clock used for overdue labels.
func (v *View) SetClock(now func() time.Time) {
	v.now = now
}

// Invoice returns the invoice on screen.
func (v *View) Invoice() *domain.Invoice {
	return v.invoice
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
