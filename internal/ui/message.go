package ui

import (
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"drpanel/internal/models"
	"drpanel/internal/shared"
	"drpanel/internal/tasks"
)

// collection identifies which store a message refers to.
type collection int

const (
	colProjects collection = iota
	colFiles
	colFavorites
	colConfig
	colModels
)

// loadedMsg reports the outcome of a store load.
type loadedMsg struct {
	what collection
	err  error
}

// actionDoneMsg reports the outcome of a mutating action. The store has
// already reloaded itself on success; the model only rebuilds its list items
// and shows the note.
type actionDoneMsg struct {
	note   string
	reload []collection
	err    error
}

// generateFinishedMsg reports a finished generation attempt.
type generateFinishedMsg struct {
	result models.GenerateResult
	err    error
}

func (m *Model) loadProjects() tea.Cmd {
	return func() tea.Msg {
		return loadedMsg{what: colProjects, err: m.projects.Load(m.ctx)}
	}
}

func (m *Model) loadFiles() tea.Cmd {
	return func() tea.Msg {
		return loadedMsg{what: colFiles, err: m.files.Load(m.ctx, m.projects.Active())}
	}
}

func (m *Model) loadFavorites() tea.Cmd {
	return func() tea.Msg {
		return loadedMsg{what: colFavorites, err: m.favorites.Load(m.ctx)}
	}
}

func (m *Model) loadConfig() tea.Cmd {
	return func() tea.Msg {
		return loadedMsg{what: colConfig, err: m.config.Load(m.ctx)}
	}
}

func (m *Model) loadModels() tea.Cmd {
	return func() tea.Msg {
		return loadedMsg{what: colModels, err: m.modelList.Load(m.ctx, m.config.Config().RepoID)}
	}
}

func (m *Model) selectProject(name string) tea.Cmd {
	return func() tea.Msg {
		changed, err := m.projects.Select(m.ctx, name)
		if err != nil {
			return actionDoneMsg{err: err}
		}
		if !changed {
			return actionDoneMsg{}
		}
		return actionDoneMsg{
			note:   fmt.Sprintf("Switched to %s", name),
			reload: []collection{colFiles},
		}
	}
}

func (m *Model) createProject(name string) tea.Cmd {
	return func() tea.Msg {
		if err := m.projects.Create(m.ctx, name); err != nil {
			return actionDoneMsg{err: err}
		}
		return actionDoneMsg{note: fmt.Sprintf("Created %s", name)}
	}
}

func (m *Model) renameProject(oldName, newName string) tea.Cmd {
	return func() tea.Msg {
		if err := m.projects.Rename(m.ctx, oldName, newName); err != nil {
			return actionDoneMsg{err: err}
		}
		return actionDoneMsg{note: fmt.Sprintf("Renamed to %s", newName), reload: []collection{colFiles}}
	}
}

func (m *Model) deleteProject(name string) tea.Cmd {
	return func() tea.Msg {
		if err := m.projects.Delete(m.ctx, name); err != nil {
			return actionDoneMsg{err: err}
		}
		return actionDoneMsg{note: fmt.Sprintf("Deleted %s", name), reload: []collection{colFiles}}
	}
}

func (m *Model) renameFile(src, dst string) tea.Cmd {
	return func() tea.Msg {
		if err := m.files.Rename(m.ctx, src, dst); err != nil {
			return actionDoneMsg{err: err}
		}
		return actionDoneMsg{note: fmt.Sprintf("Renamed to %s", dst)}
	}
}

func (m *Model) deleteFile(name string) tea.Cmd {
	return func() tea.Msg {
		if err := m.files.Delete(m.ctx, name); err != nil {
			return actionDoneMsg{err: err}
		}
		return actionDoneMsg{note: fmt.Sprintf("Deleted %s", name)}
	}
}

func (m *Model) playFile(name string) tea.Cmd {
	return func() tea.Msg {
		if err := shared.OpenBrowser(m.files.PlayURL(name)); err != nil {
			return actionDoneMsg{err: err}
		}
		return actionDoneMsg{note: fmt.Sprintf("Playing %s", name)}
	}
}

func (m *Model) downloadFile(name string) tea.Cmd {
	return func() tea.Msg {
		path := filepath.Base(name)
		f, err := os.Create(path)
		if err != nil {
			return actionDoneMsg{err: err}
		}
		defer f.Close()

		written, err := m.client.Download(m.ctx, m.files.Project(), name, f)
		if err != nil {
			os.Remove(path)
			return actionDoneMsg{err: err}
		}
		return actionDoneMsg{note: fmt.Sprintf("Saved %s (%s)", path, shared.FormatSize(written))}
	}
}

func (m *Model) downloadAllFiles() tea.Cmd {
	files := m.files.Files()
	names := make([]string, len(files))
	for i, file := range files {
		names[i] = file.Name
	}
	project := m.files.Project()

	return func() tea.Msg {
		// A nil progress channel is fine, updates are dropped.
		summary, err := m.engine.BulkDownload(m.ctx, nil, project, names, tasks.BulkDownloadOpts{})
		if err != nil {
			return actionDoneMsg{err: err}
		}
		return actionDoneMsg{note: fmt.Sprintf(
			"Downloaded %d/%d files to %s", summary.Downloaded, summary.TotalFiles, summary.OutputDirectory)}
	}
}

func (m *Model) addFavorite(title, prompt string) tea.Cmd {
	return func() tea.Msg {
		if _, err := m.favorites.Add(m.ctx, title, prompt); err != nil {
			return actionDoneMsg{err: err}
		}
		return actionDoneMsg{note: "Favorite saved"}
	}
}

func (m *Model) editFavorite(index int, revision uint64, title, prompt string) tea.Cmd {
	return func() tea.Msg {
		if err := m.favorites.Edit(m.ctx, index, revision, title, prompt); err != nil {
			return actionDoneMsg{err: err}
		}
		return actionDoneMsg{note: "Favorite updated"}
	}
}

func (m *Model) deleteFavorite(index int, revision uint64) tea.Cmd {
	return func() tea.Msg {
		if err := m.favorites.Delete(m.ctx, index, revision); err != nil {
			return actionDoneMsg{err: err}
		}
		return actionDoneMsg{note: "Favorite deleted"}
	}
}

func (m *Model) saveConfig(cfg models.Config) tea.Cmd {
	return func() tea.Msg {
		if err := m.config.Save(m.ctx, cfg); err != nil {
			return actionDoneMsg{err: err}
		}
		return actionDoneMsg{note: "Settings saved", reload: []collection{colModels}}
	}
}

func (m *Model) runGenerate() tea.Cmd {
	req, err := m.form.BuildRequest(m.projects.Active(), m.modelList.Models())
	if err != nil {
		return m.toasts.Push(ToastError, err.Error())
	}

	m.busy = true
	return tea.Batch(m.spin.Tick, func() tea.Msg {
		result, err := m.generator.Generate(m.ctx, req)
		return generateFinishedMsg{result: result, err: err}
	})
}
