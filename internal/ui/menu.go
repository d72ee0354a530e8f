package ui

import tea "github.com/charmbracelet/bubbletea"

// menuAction is one entry in a dropdown menu.
type menuAction struct {
	label string
	cmd   func() tea.Cmd
}

// Menu is the single open dropdown. Opening a menu for another target
// replaces this one, so at most one menu is visible at a time.
type Menu struct {
	target  string
	actions []menuAction
	index   int
}

func newMenu(target string, actions []menuAction) *Menu {
	return &Menu{target: target, actions: actions}
}

// Update routes a key press to the menu. The second return value reports
// whether the menu should close.
func (m *Menu) Update(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch msg.String() {
	case "esc":
		return nil, true
	case "up", "k":
		if m.index > 0 {
			m.index--
		}
		return nil, false
	case "down", "j":
		if m.index < len(m.actions)-1 {
			m.index++
		}
		return nil, false
	case "enter":
		return m.actions[m.index].cmd(), true
	}
	return nil, false
}

// View renders the open menu under its target name.
func (m *Menu) View() string {
	out := styles.title.Render(m.target) + "\n"
	for i, action := range m.actions {
		if i == m.index {
			out += styles.menuOn.Render("> "+action.label) + "\n"
		} else {
			out += styles.menuItem.Render("  "+action.label) + "\n"
		}
	}
	out += styles.help.Render("enter: run  esc: close")
	return out
}
