package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// modalKind enumerates the dialog shapes the panel uses.
type modalKind int

const (
	modalConfirm modalKind = iota
	modalInput
	modalFavorite
)

// modalErrorMsg surfaces a validation problem as a toast while the modal
// stays open.
type modalErrorMsg struct {
	text string
}

func modalError(text string) tea.Cmd {
	return func() tea.Msg { return modalErrorMsg{text: text} }
}

// Modal is the single active dialog. At most one modal exists at a time;
// opening a new one replaces the old. Escape always closes without side
// effects.
type Modal struct {
	kind  modalKind
	title string

	// confirm
	onConfirm tea.Cmd

	// input
	input    textinput.Model
	onSubmit func(value string) tea.Cmd

	// favorite editor
	titleInput  textinput.Model
	promptInput textinput.Model
	focusPrompt bool
	onSave      func(title, prompt string) tea.Cmd
}

// newConfirmModal builds a yes/no dialog. confirm runs on y or enter.
func newConfirmModal(title string, confirm tea.Cmd) *Modal {
	return &Modal{kind: modalConfirm, title: title, onConfirm: confirm}
}

// newInputModal builds a single-field dialog seeded with an initial value.
func newInputModal(title, placeholder, initial string, submit func(string) tea.Cmd) *Modal {
	input := textinput.New()
	input.Placeholder = placeholder
	input.SetValue(initial)
	input.Focus()

	return &Modal{kind: modalInput, title: title, input: input, onSubmit: submit}
}

// newFavoriteModal builds the two-field favorite editor. Tab moves between
// title and prompt.
func newFavoriteModal(title, favTitle, favPrompt string, save func(title, prompt string) tea.Cmd) *Modal {
	titleInput := textinput.New()
	titleInput.Placeholder = "Title"
	titleInput.SetValue(favTitle)
	titleInput.Focus()

	promptInput := textinput.New()
	promptInput.Placeholder = "Prompt"
	promptInput.SetValue(favPrompt)

	return &Modal{
		kind:        modalFavorite,
		title:       title,
		titleInput:  titleInput,
		promptInput: promptInput,
		onSave:      save,
	}
}

// Update routes a key press to the modal. The second return value reports
// whether the modal should close.
func (m *Modal) Update(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch msg.String() {
	case "esc":
		return nil, true
	}

	switch m.kind {
	case modalConfirm:
		switch msg.String() {
		case "y", "enter":
			return m.onConfirm, true
		case "n":
			return nil, true
		}
		return nil, false

	case modalInput:
		if msg.String() == "enter" {
			value := strings.TrimSpace(m.input.Value())
			if value == "" {
				return modalError("A value is required"), false
			}
			return m.onSubmit(value), true
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return cmd, false

	case modalFavorite:
		switch msg.String() {
		case "tab", "shift+tab":
			m.focusPrompt = !m.focusPrompt
			if m.focusPrompt {
				m.titleInput.Blur()
				m.promptInput.Focus()
			} else {
				m.promptInput.Blur()
				m.titleInput.Focus()
			}
			return nil, false
		case "enter":
			title := strings.TrimSpace(m.titleInput.Value())
			prompt := strings.TrimSpace(m.promptInput.Value())
			if title == "" || prompt == "" {
				return modalError("Title and prompt are both required"), false
			}
			// The editor stays open until the save result arrives, so a
			// failed save keeps the typed text for retry.
			return m.onSave(title, prompt), false
		}

		var cmd tea.Cmd
		if m.focusPrompt {
			m.promptInput, cmd = m.promptInput.Update(msg)
		} else {
			m.titleInput, cmd = m.titleInput.Update(msg)
		}
		return cmd, false
	}

	return nil, false
}

// View renders the modal box.
func (m *Modal) View() string {
	var body string
	switch m.kind {
	case modalConfirm:
		body = m.title + "\n\n" + styles.help.Render("y: confirm  n/esc: cancel")
	case modalInput:
		body = m.title + "\n\n" + m.input.View() + "\n\n" + styles.help.Render("enter: submit  esc: cancel")
	case modalFavorite:
		body = m.title + "\n\n" +
			"Title:  " + m.titleInput.View() + "\n" +
			"Prompt: " + m.promptInput.View() + "\n\n" +
			styles.help.Render("tab: switch field  enter: save  esc: cancel")
	}
	return styles.modal.Render(body)
}
