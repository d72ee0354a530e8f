package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// toastTTL is how long a toast stays on screen before auto-dismissing.
const toastTTL = 3500 * time.Millisecond

// ToastLevel selects the rendering style of a toast.
type ToastLevel int

const (
	ToastInfo ToastLevel = iota
	ToastSuccess
	ToastError
)

// Toast is one transient notification with an explicit expiry.
type Toast struct {
	ID    int
	Level ToastLevel
	Text  string
}

type toastExpiredMsg struct {
	id int
}

// ToastManager holds the visible toast stack. Toasts never block input; they
// render above the active view and remove themselves when their timer fires.
type ToastManager struct {
	toasts []Toast
	nextID int
}

// Push adds a toast and returns the command that expires it. Each toast owns
// its own timer, so overlapping toasts dismiss independently.
func (t *ToastManager) Push(level ToastLevel, text string) tea.Cmd {
	t.nextID++
	id := t.nextID
	t.toasts = append(t.toasts, Toast{ID: id, Level: level, Text: text})

	return tea.Tick(toastTTL, func(time.Time) tea.Msg {
		return toastExpiredMsg{id: id}
	})
}

// Expire removes the toast with the given id. Expiry of an already-dismissed
// toast is a no-op.
func (t *ToastManager) Expire(id int) {
	kept := t.toasts[:0]
	for _, toast := range t.toasts {
		if toast.ID != id {
			kept = append(kept, toast)
		}
	}
	t.toasts = kept
}

// Active returns the visible toasts, oldest first.
func (t *ToastManager) Active() []Toast {
	return t.toasts
}

// View renders the toast stack, one line per toast.
func (t *ToastManager) View() string {
	out := ""
	for _, toast := range t.toasts {
		line := toast.Text
		switch toast.Level {
		case ToastSuccess:
			line = styles.ok.Render("✓ " + line)
		case ToastError:
			line = styles.err.Render("✗ " + line)
		default:
			line = styles.warn.Render("• " + line)
		}
		out += line + "\n"
	}
	return out
}
