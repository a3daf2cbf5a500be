package menu

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ledgerbridge/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/ledgerbridge/internal/adapters/driving/tui/styles"
)

func TestNewView(t *testing.T) {
	view := NewView(styles.DefaultStyles())

	require.NotNil(t, view)
	assert.NotNil(t, view.styles)
	assert.Len(t, view.items, 4)
	assert.Equal(t, 0, view.selected)
	assert.Equal(t, 80, view.width)
	assert.Equal(t, 24, view.height)
}

func TestNewView_NilStyles(t *testing.T) {
	view := NewView(nil)

	require.NotNil(t, view)
	assert.NotNil(t, view.styles)
}

func TestView_Init(t *testing.T) {
	assert.Nil(t, NewView(nil).Init())
}

func TestView_Update_WindowSize(t *testing.T) {
	view := NewView(nil)

	updated, cmd := view.Update(tea.WindowSizeMsg{Width: 100, Height: 50})

	assert.Equal(t, view, updated)
	assert.Nil(t, cmd)
	assert.True(t, view.ready)
	assert.Equal(t, 100, view.width)
	assert.Equal(t, 50, view.height)
}

func TestView_Update_Navigate(t *testing.T) {
	view := NewView(nil)
	down := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}}
	up := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}}

	view.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, view.selected)
	view.Update(down)
	view.Update(down)
	assert.Equal(t, 3, view.selected)

	// Can't go past the last item.
	view.Update(down)
	assert.Equal(t, 3, view.selected)

	view.Update(tea.KeyMsg{Type: tea.KeyUp})
	view.Update(up)
	view.Update(up)
	assert.Equal(t, 0, view.selected)

	// Can't go before the first item.
	view.Update(up)
	assert.Equal(t, 0, view.selected)
}

func TestView_Update_Enter_ChangesView(t *testing.T) {
	tests := []struct {
		selected int
		want     messages.ViewType
	}{
		{0, messages.ViewInvoices},
		{1, messages.ViewContacts},
		{2, messages.ViewHelp},
	}

	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			view := NewView(nil)
			view.selected = tt.selected

			_, cmd := view.Update(tea.KeyMsg{Type: tea.KeyEnter})

			require.NotNil(t, cmd)
			changed, ok := cmd().(messages.ViewChanged)
			require.True(t, ok)
			assert.Equal(t, tt.want, changed.View)
		})
	}
}

func TestView_Update_Enter_Quit(t *testing.T) {
	view := NewView(nil)
	view.selected = 3

	_, cmd := view.Update(tea.KeyMsg{Type: tea.KeyEnter})

	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestView_Update_Q(t *testing.T) {
	_, cmd := NewView(nil).Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})

	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestView_View_NotReady(t *testing.T) {
	assert.Contains(t, NewView(nil).View(), "Initialising")
}

func TestView_View_Ready(t *testing.T) {
	view := NewView(nil)
	view.SetDimensions(80, 24)

	output := view.View()

	assert.Contains(t, output, "ledgerbridge")
	assert.Contains(t, output, "FreeAgent invoice mirror")
	assert.Contains(t, output, "> Invoices")
	assert.Contains(t, output, "Contacts")
	assert.Contains(t, output, "Help")
	assert.Contains(t, output, "Quit")
	assert.NotContains(t, output, " as ")
}

func TestView_SetPrincipal(t *testing.T) {
	view := NewView(nil)
	view.SetDimensions(80, 24)

	view.SetPrincipal("alice (contact 42)")

	assert.Contains(t, view.View(), "as alice (contact 42)")
}

func TestView_SetDimensions(t *testing.T) {
	view := NewView(nil)

	view.SetDimensions(120, 60)

	assert.Equal(t, 120, view.width)
	assert.Equal(t, 60, view.height)
	assert.True(t, view.ready)
}

func TestView_Selected(t *testing.T) {
	view := NewView(nil)
	view.selected = 2

	assert.Equal(t, 2, view.Selected())
}

func TestMenuItem_Properties(t *testing.T) {
	view := NewView(nil)

	assert.Equal(t, "Invoices", view.items[0].Label)
	assert.Equal(t, messages.ViewInvoices, view.items[0].View)
	assert.Equal(t, "Contacts", view.items[1].Label)
	assert.Equal(t, messages.ViewContacts, view.items[1].View)
	assert.Equal(t, "Help", view.items[2].Label)
	assert.Equal(t, messages.ViewHelp, view.items[2].View)
	assert.Equal(t, "Quit", view.items[3].Label)
	assert.True(t, view.items[3].Quit)
	for _, item := range view.items[:3] {
		assert.False(t, item.Quit)
	}
}
