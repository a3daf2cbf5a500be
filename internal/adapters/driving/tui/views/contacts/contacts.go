// Package contacts provides the contact list view for the TUI.
package contacts

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/ledgerbridge/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/ledgerbridge/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/ledgerbridge/internal/core/domain"
)

// Lister returns the contacts a principal may see.
type Lister interface {
	ListContacts(ctx context.Context, p domain.Principal) ([]domain.Contact, error)
}

// View is the contact list view.
type View struct {
	ctx       context.Context
	styles    *styles.Styles
	lister    Lister
	principal domain.Principal

	contacts     []domain.Contact
	selected     int
	scrollOffset int
	width        int
	height       int
	loading      bool
	err          error
}

// NewView creates a new contacts view.
func NewView(ctx context.Context, s *styles.Styles, lister Lister, p domain.Principal) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		ctx:       ctx,
		styles:    s,
		lister:    lister,
		principal: p,
		width:     80,
		height:    24,
	}
}

// Init loads contacts.
func (v *View) Init() tea.Cmd {
	v.loading = true
	lister, ctx, p := v.lister, v.ctx, v.principal
	return func() tea.Msg {
		if lister == nil {
			return messages.ContactsLoaded{Err: fmt.Errorf("mirror service not available")}
		}
		contacts, err := lister.ListContacts(ctx, p)
		return messages.ContactsLoaded{Contacts: contacts, Err: err}
	}
}

// Update handles messages for the contacts view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.ContactsLoaded:
		v.loading = false
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.contacts = msg.Contacts
		v.selected, v.scrollOffset = 0, 0
		v.err = nil
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
		if v.selected > 0 {
			v.selected--
			v.adjustScroll()
		}
	case "down", "j":
		if v.selected < len(v.contacts)-1 {
			v.selected++
			v.adjustScroll()
		}
	case "r":
		if !v.loading {
			return v, v.Init()
		}
	case "esc":
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	}
	return v, nil
}

func (v *View) adjustScroll() {
	visible := v.visibleItemCount()
	if v.selected < v.scrollOffset {
		v.scrollOffset = v.selected
	} else if v.selected >= v.scrollOffset+visible {
		v.scrollOffset = v.selected - visible + 1
	}
}

func (v *View) visibleItemCount() int {
	// Title, header, scroll indicator and help.
	return max(v.height-7, 1)
}

// View renders the contacts view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render(fmt.Sprintf("Contacts (%d)", len(v.contacts))))
	b.WriteString("\n\n")

	switch {
	case v.loading && len(v.contacts) == 0:
		b.WriteString(v.styles.Muted.Render("Loading contacts..."))
	case v.err != nil:
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %s", v.err.Error())))
	case len(v.contacts) == 0:
		b.WriteString(v.styles.Muted.Render("No contacts mirrored yet."))
	default:
		b.WriteString(v.renderList())
	}

	b.WriteString("\n\n")
	b.WriteString(v.styles.Help.Render("[↑/↓] navigate  [r] reload  [esc] back"))
	return b.String()
}

func (v *View) renderList() string {
	nameWidth := max(v.width/2-12, 16)
	lines := []string{v.styles.Subtitle.Render(
		fmt.Sprintf("  %-8s %-*s %-28s %s", "ID", nameWidth, "Name", "Email", "Active"))}

	visible := v.visibleItemCount()
	end := min(v.scrollOffset+visible, len(v.contacts))
	for i := v.scrollOffset; i < end; i++ {
		c := &v.contacts[i]
		name := c.DisplayName()
		if len(name) > nameWidth {
			name = name[:nameWidth-3] + "..."
		}
		active := "no"
		if c.IsActive {
			active = "yes"
		}
		row := fmt.Sprintf("%-8s %-*s %-28s ", domain.ShortID(c.RemoteID), nameWidth, name, c.Email)

		if i == v.selected {
			lines = append(lines, v.styles.Selected.Render("> "+row+active))
			continue
		}
		activeStyle := v.styles.Muted
		if c.IsActive {
			activeStyle = v.styles.Success
		}
		lines = append(lines, v.styles.Normal.Render("  "+row)+activeStyle.Render(active))
	}

	if len(v.contacts) > visible {
		lines = append(lines, v.styles.Muted.Render(fmt.Sprintf("  [%d-%d of %d]",
			v.scrollOffset+1, end, len(v.contacts))))
	}
	return strings.Join(lines, "\n")
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
}

// Contacts returns the loaded contacts.
func (v *View) Contacts() []domain.Contact {
	return v.contacts
}

// SelectedIndex returns the highlighted row.
func (v *View) SelectedIndex() int {
	return v.selected
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
