package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"

	"drpanel/internal/models"
	"drpanel/internal/shared"
)

// View renders the UI based on the current tab, layering the open modal or
// menu and the toast stack on top.
func (m *Model) View() string {
	var body string
	switch m.view {
	case GenerateView:
		body = m.renderGenerate()
	case FilesView:
		body = m.renderFiles()
	case ProjectsView:
		body = m.renderProjects()
	case FavoritesView:
		body = m.renderFavorites()
	case SettingsView:
		body = m.renderSettings()
	}

	if m.menu != nil {
		body += "\n" + m.menu.View()
	}
	if m.modal != nil {
		body += "\n" + m.modal.View()
	}

	toasts := m.toasts.View()
	if toasts != "" {
		body = toasts + "\n" + body
	}

	return m.renderTabs() + "\n" + body
}

func (m *Model) renderTabs() string {
	parts := make([]string, len(tabNames))
	for i, name := range tabNames {
		if ViewState(i) == m.view {
			parts[i] = styles.tabOn.Render(name)
		} else {
			parts[i] = styles.tab.Render(name)
		}
	}
	return strings.Join(parts, "") + styles.help.Render("   "+m.projects.Active())
}

func (m *Model) renderGenerate() string {
	var b strings.Builder

	b.WriteString(styles.title.Render("Generate") + "\n")
	b.WriteString(m.form.View(m.modelList.Models()))

	if m.busy {
		b.WriteString("\n" + m.spin.View() + " generating...\n")
	}
	if m.logs.Height > 0 && strings.TrimSpace(m.logs.View()) != "" {
		b.WriteString("\n" + styles.help.Render("── logs ──") + "\n" + m.logs.View() + "\n")
	}

	helpKeys := []key.Binding{
		key.NewBinding(key.WithKeys("ctrl+g"), key.WithHelp("ctrl+g", "generate")),
		key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("ctrl+t", "simple/advanced")),
		key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "prompt/audio")),
		key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save favorite")),
		key.NewBinding(key.WithKeys("]"), key.WithHelp("[/]", "tabs")),
	}
	b.WriteString("\n" + m.help.ShortHelpView(helpKeys))
	return b.String()
}

func (m *Model) renderFiles() string {
	body := m.fileList.View()
	if detail := m.renderFileDetail(); detail != "" {
		body += "\n" + detail
	}

	helpKeys := []key.Binding{
		m.keys.enter,
		key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "details")),
		m.keys.rename, m.keys.delete, m.keys.refresh, m.keys.quit,
	}
	return body + "\n\n" + m.help.ShortHelpView(helpKeys)
}

// renderFileDetail shows the generation parameters recorded for the selected
// file. Hidden until toggled, and empty when the file has no history entry.
func (m *Model) renderFileDetail() string {
	if !m.showDetail {
		return ""
	}
	name, ok := m.selectedFile()
	if !ok {
		return ""
	}
	entry, ok := m.files.LatestFor(name)
	if !ok {
		return styles.help.Render("No generation record for " + name)
	}

	var b strings.Builder
	b.WriteString(styles.title.Render(name) + "\n")
	b.WriteString(fmt.Sprintf("  Model    %s\n", entry.RepoID))
	b.WriteString(fmt.Sprintf("  Length   %s\n", shared.FormatDuration(entry.AudioLength)))
	b.WriteString(fmt.Sprintf("  Steps    %d   CFG %.1f   Batch %d\n",
		entry.Steps, entry.CfgStrength, entry.BatchInferNum))
	if entry.Chunked {
		b.WriteString("  Chunked  yes\n")
	}
	if entry.RefMode == models.RefPrompt && entry.Prompt != "" {
		b.WriteString("  Prompt   " + entry.Prompt + "\n")
	} else if entry.RefAudio != "" {
		b.WriteString("  RefAudio " + entry.RefAudio + "\n")
	}
	return b.String()
}

func (m *Model) renderProjects() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.newItem, m.keys.rename, m.keys.delete, m.keys.quit}
	return m.projectList.View() + "\n\n" + m.help.ShortHelpView(helpKeys)
}

func (m *Model) renderFavorites() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.newItem, m.keys.edit, m.keys.delete, m.keys.quit}
	return m.favoriteList.View() + "\n\n" + m.help.ShortHelpView(helpKeys)
}

func (m *Model) renderSettings() string {
	var b strings.Builder
	cfg := m.config.Config()

	b.WriteString(styles.title.Render("Settings") + "\n")
	for i, field := range settingsFields {
		line := fmt.Sprintf("%-13s %s", field.label, field.get(cfg))
		if i == m.settingsIndex {
			b.WriteString(styles.fieldOn.Render("> "+line) + "\n")
		} else {
			b.WriteString(styles.field.Render("  "+line) + "\n")
		}
	}

	mark := "[ ]"
	if cfg.UseChunked {
		mark = "[x]"
	}
	line := fmt.Sprintf("%-13s %s", "Chunked", mark)
	if m.settingsIndex == len(settingsFields) {
		b.WriteString(styles.fieldOn.Render("> "+line) + "\n")
	} else {
		b.WriteString(styles.field.Render("  "+line) + "\n")
	}

	helpKeys := []key.Binding{m.keys.up, m.keys.down, m.keys.enter, m.keys.quit}
	b.WriteString("\n" + m.help.ShortHelpView(helpKeys))
	return b.String()
}
