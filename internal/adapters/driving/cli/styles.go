package cli

import (
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/custodia-labs/ledgerbridge/internal/core/domain"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	borderStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#45475A"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#A6E3A1"))
	dangerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F38BA8"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F9E2AF"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#06B6D4"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086"))
)

// colourStyle maps a presentation colour name onto a style.
func colourStyle(colour string) lipgloss.Style {
	switch colour {
	case domain.ColorSuccess:
		return successStyle
	case domain.ColorDanger:
		return dangerStyle
	case domain.ColorWarning:
		return warningStyle
	case domain.ColorInfo:
		return infoStyle
	default:
		return mutedStyle
	}
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

func invoiceTable(invoices []domain.Invoice, now time.Time) string {
	t := newTable("ID", "Reference", "Status", "Dated", "Due", "Total", "Currency")
	for i := range invoices {
		inv := &invoices[i]
		due := "-"
		if inv.DueOn != nil {
			due = inv.DueOn.Format(dateLayout)
		}
		status := colourStyle(inv.StatusColor(now)).Render(inv.StatusLabel(now))
		t.Row(
			domain.ShortID(inv.RemoteID),
			inv.Reference,
			status,
			inv.DatedOn.Format(dateLayout),
			due,
			inv.TotalValue,
			inv.Currency,
		)
	}
	return t.String()
}

func contactTable(contacts []domain.Contact) string {
	t := newTable("ID", "Name", "Email", "Type", "Active")
	for i := range contacts {
		c := &contacts[i]
		active := mutedStyle.Render("no")
		if c.IsActive {
			active = successStyle.Render("yes")
		}
		t.Row(domain.ShortID(c.RemoteID), c.DisplayName(), c.Email, string(c.Type), active)
	}
	return t.String()
}

func projectTable(projects []domain.Project) string {
	t := newTable("ID", "Name", "Status", "Contact", "Budget", "Currency")
	for i := range projects {
		p := &projects[i]
		contact, budget := "-", "-"
		if p.ContactRef != nil {
			contact = domain.ShortID(*p.ContactRef)
		}
		if p.Budget != nil {
			budget = *p.Budget
		}
		t.Row(domain.ShortID(p.RemoteID), p.Name, p.Status, contact, budget, p.Currency)
	}
	return t.String()
}
