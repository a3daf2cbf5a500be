// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/ledgerbridge/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/ledgerbridge/internal/core/domain"
)

// InvoiceList displays invoices in a navigable, filterable list.
type InvoiceList struct {
	invoices []domain.Invoice
	// visible holds indexes into invoices that pass the filter.
	visible  []int
	filter   string
	selected int
	offset   int
	styles   *styles.Styles
	width    int
	height   int
	now      func() time.Time
}

// NewInvoiceList creates a new invoice list component.
func NewInvoiceList(s *styles.Styles) *InvoiceList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &InvoiceList{
		styles: s,
		width:  80,
		height: 10,
		now:    time.Now,
	}
}

// Init initialises the list.
func (l *InvoiceList) Init() tea.Cmd {
	return nil
}

// Update handles list navigation messages.
func (l *InvoiceList) Update(msg tea.Msg) (*InvoiceList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			l.MoveUp()
		case "down", "j":
			l.MoveDown()
		case "home", "g":
			l.selected, l.offset = 0, 0
		case "end", "G":
			if n := len(l.visible); n > 0 {
				l.selected = n - 1
				l.adjustScroll()
			}
		}
	}
	return l, nil
}

// View renders the invoice list.
func (l *InvoiceList) View() string {
	if len(l.invoices) == 0 {
		return l.styles.Muted.Render("No invoices")
	}
	if len(l.visible) == 0 {
		return l.styles.Muted.Render(fmt.Sprintf("No invoices match %q", l.filter))
	}

	rows := l.rowCount()
	lines := make([]string, 0, rows+1)
	lines = append(lines, l.styles.Subtitle.Render(
		fmt.Sprintf("  %-8s %-14s %-16s %-10s %12s", "ID", "Reference", "Status", "Due", "Total")))

	now := l.now()
	end := min(l.offset+rows, len(l.visible))
	for pos := l.offset; pos < end; pos++ {
		lines = append(lines, l.renderRow(pos, &l.invoices[l.visible[pos]], now))
	}

	if len(l.visible) > rows {
		lines = append(lines, l.styles.Muted.Render(
			fmt.Sprintf("  [%d-%d of %d]", l.offset+1, end, len(l.visible))))
	}
	return strings.Join(lines, "\n")
}

func (l *InvoiceList) renderRow(pos int, inv *domain.Invoice, now time.Time) string {
	due := "-"
	if inv.DueOn != nil {
		due = inv.DueOn.Format("2006-01-02")
	}
	total := inv.TotalValue + " " + inv.Currency
	label := truncate(inv.StatusLabel(now), 16)

	if pos == l.selected {
		return l.styles.Selected.Render(fmt.Sprintf("> %-8s %-14s %-16s %-10s %12s",
			truncate(domain.ShortID(inv.RemoteID), 8), truncate(inv.Reference, 14), label, due, total))
	}
	status := l.styles.ForColour(inv.StatusColor(now)).Render(fmt.Sprintf("%-16s", label))
	return l.styles.Normal.Render(fmt.Sprintf("  %-8s %-14s ",
		truncate(domain.ShortID(inv.RemoteID), 8), truncate(inv.Reference, 14))) +
		status + l.styles.Normal.Render(fmt.Sprintf(" %-10s %12s", due, total))
}

// rowCount is the number of invoice rows that fit below the header.
func (l *InvoiceList) rowCount() int {
	return max(l.height-2, 1)
}

func (l *InvoiceList) adjustScroll() {
	rows := l.rowCount()
	if l.selected < l.offset {
		l.offset = l.selected
	} else if l.selected >= l.offset+rows {
		l.offset = l.selected - rows + 1
	}
}

// SetInvoices replaces the list contents and reapplies the filter.
func (l *InvoiceList) SetInvoices(invoices []domain.Invoice) {
	l.invoices = invoices
	l.applyFilter()
}

// ReplaceInvoice swaps in inv where the list holds the same RemoteID,
// keeping the selection. It reports whether a match was found.
func (l *InvoiceList) ReplaceInvoice(inv domain.Invoice) bool {
	for i := range l.invoices {
		if l.invoices[i].RemoteID == inv.RemoteID {
			l.invoices[i] = inv
			return true
		}
	}
	return false
}

// SetFilter narrows the list to invoices whose id, reference, status or
// total contain text, case-insensitively.
func (l *InvoiceList) SetFilter(text string) {
	l.filter = strings.TrimSpace(text)
	l.applyFilter()
}

// Filter returns the active filter text.
func (l *InvoiceList) Filter() string {
	return l.filter
}

func (l *InvoiceList) applyFilter() {
	l.visible = l.visible[:0]
	needle := strings.ToLower(l.filter)
	now := l.now()
	for i := range l.invoices {
		if needle == "" || matches(&l.invoices[i], needle, now) {
			l.visible = append(l.visible, i)
		}
	}
	l.selected, l.offset = 0, 0
}

func matches(inv *domain.Invoice, needle string, now time.Time) bool {
	for _, field := range []string{
		domain.ShortID(inv.RemoteID),
		inv.Reference,
		inv.StatusLabel(now),
		inv.TotalValue,
	} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

// SelectedInvoice returns the highlighted invoice, or nil if none.
func (l *InvoiceList) SelectedInvoice() *domain.Invoice {
	if l.selected < 0 || l.selected >= len(l.visible) {
		return nil
	}
	return &l.invoices[l.visible[l.selected]]
}

// Selected returns the highlighted row among visible invoices.
func (l *InvoiceList) Selected() int {
	return l.selected
}

// MoveUp moves selection up.
func (l *InvoiceList) MoveUp() {
	if l.selected > 0 {
		l.selected--
		l.adjustScroll()
	}
}

// MoveDown moves selection down.
func (l *InvoiceList) MoveDown() {
	if l.selected < len(l.visible)-1 {
		l.selected++
		l.adjustScroll()
	}
}

// SetDimensions sets the component dimensions.
func (l *InvoiceList) SetDimensions(width, height int) {
	l.width = width
	l.height = height
	l.adjustScroll()
}

// SetClock overrides the time used to derive overdue labels.
func (l *InvoiceList) SetClock(now func() time.Time) {
	l.now = now
}

// Count returns the number of visible invoices.
func (l *InvoiceList) Count() int {
	return len(l.visible)
}

// Total returns the number of invoices before filtering.
func (l *InvoiceList) Total() int {
	return len(l.invoices)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
