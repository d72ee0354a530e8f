package ui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"drpanel/internal/api"
	"drpanel/internal/models"
	"drpanel/internal/shared"
	"drpanel/internal/stores"
	"drpanel/internal/tasks"
)

// ViewState represents the active tab of the panel.
type ViewState int

const (
	GenerateView ViewState = iota
	FilesView
	ProjectsView
	FavoritesView
	SettingsView
)

var tabNames = []string{"Generate", "Files", "Projects", "Favorites", "Settings"}

// Model represents the panel application state.
type Model struct {
	ctx    context.Context
	client *api.Client
	logger *log.Logger

	projects  *stores.ProjectStore
	files     *stores.FileStore
	favorites *stores.FavoriteStore
	config    *stores.ConfigStore
	modelList *stores.ModelStore
	generator *stores.Generator
	engine    *tasks.DownloadEngine

	width  int
	height int
	view   ViewState
	keys   keyMap
	help   help.Model

	fileList     list.Model
	projectList  list.Model
	favoriteList list.Model
	favRevision  uint64
	showDetail   bool

	form GenerateForm
	spin spinner.Model
	logs viewport.Model
	busy bool

	settingsIndex int

	toasts ToastManager
	modal  *Modal
	menu   *Menu
}

// Deps bundles the dependencies the panel needs.
type Deps struct {
	Client    *api.Client
	Projects  *stores.ProjectStore
	Files     *stores.FileStore
	Favorites *stores.FavoriteStore
	Config    *stores.ConfigStore
	Models    *stores.ModelStore
	Generator *stores.Generator
	Engine    *tasks.DownloadEngine
	Logger    *log.Logger
}

// NewModel creates a new panel model with the provided dependencies.
func NewModel(ctx context.Context, deps Deps) *Model {
	if deps.Logger == nil {
		deps.Logger = shared.NewLogger(nil)
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := &Model{
		ctx:       ctx,
		client:    deps.Client,
		logger:    deps.Logger,
		projects:  deps.Projects,
		files:     deps.Files,
		favorites: deps.Favorites,
		config:    deps.Config,
		modelList: deps.Models,
		generator: deps.Generator,
		engine:    deps.Engine,
		view:      GenerateView,
		keys:      newKeyMap(),
		help:      help.New(),
		form:      NewGenerateForm(models.Config{}),
		spin:      sp,
		logs:      viewport.New(0, 0),
	}

	m.fileList = newPanelList("Files")
	m.projectList = newPanelList("Projects")
	m.favoriteList = newPanelList("Favorites")
	return m
}

func newPanelList(title string) list.Model {
	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.Title = title
	l.SetShowHelp(false)
	return l
}

// Init kicks off the initial loads for every collection.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.loadConfig(),
		m.loadProjects(),
		m.loadFiles(),
		m.loadFavorites(),
		m.loadModels(),
	)
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.fileList.SetSize(msg.Width-4, msg.Height-10)
		m.projectList.SetSize(msg.Width-4, msg.Height-10)
		m.favoriteList.SetSize(msg.Width-4, msg.Height-10)
		m.logs.Width = msg.Width - 4
		m.logs.Height = max(msg.Height/3, 5)
		return m, nil

	case toastExpiredMsg:
		m.toasts.Expire(msg.id)
		return m, nil

	case modalErrorMsg:
		return m, m.toasts.Push(ToastError, msg.text)

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKeys(msg)

	case loadedMsg:
		return m.handleLoaded(msg)

	case actionDoneMsg:
		return m.handleActionDone(msg)

	case generateFinishedMsg:
		return m.handleGenerateFinished(msg)
	}

	return m.updateLists(msg)
}

func (m *Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// A modal captures everything until it closes.
	if m.modal != nil {
		cmd, done := m.modal.Update(msg)
		if done {
			m.modal = nil
		}
		return m, cmd
	}

	// A dropdown menu is next in line.
	if m.menu != nil {
		cmd, done := m.menu.Update(msg)
		if done {
			m.menu = nil
		}
		return m, cmd
	}

	switch {
	case msg.String() == "ctrl+c":
		return m, tea.Quit
	case msg.String() == "q" && m.view != GenerateView:
		return m, tea.Quit
	}

	// The generate form consumes most keys, so tab switching there is
	// restricted to bracket keys.
	if m.view == GenerateView {
		return m.handleGenerateKeys(msg)
	}

	switch {
	case matches(msg, m.keys.nextTab):
		m.view = ViewState((int(m.view) + 1) % len(tabNames))
		return m, nil
	case matches(msg, m.keys.prevTab):
		m.view = ViewState((int(m.view) + len(tabNames) - 1) % len(tabNames))
		return m, nil
	case matches(msg, m.keys.refresh):
		return m, m.Init()
	}

	switch m.view {
	case FilesView:
		return m.handleFilesKeys(msg)
	case ProjectsView:
		return m.handleProjectsKeys(msg)
	case FavoritesView:
		return m.handleFavoritesKeys(msg)
	case SettingsView:
		return m.handleSettingsKeys(msg)
	}
	return m, nil
}

func (m *Model) handleGenerateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "]":
		m.view = FilesView
		return m, nil
	case "[":
		m.view = SettingsView
		return m, nil
	case "ctrl+g":
		if m.busy {
			return m, m.toasts.Push(ToastInfo, "A generation is already running")
		}
		return m, m.runGenerate()
	case "ctrl+s":
		prompt := strings.TrimSpace(m.form.Prompt())
		if prompt == "" {
			return m, m.toasts.Push(ToastError, "Nothing to save: the prompt is empty")
		}
		m.modal = newFavoriteModal("Save favorite", models.SuggestTitle(prompt), prompt, func(title, text string) tea.Cmd {
			return m.addFavorite(title, text)
		})
		return m, nil
	case "ctrl+t":
		m.form.ToggleMode()
		return m, nil
	case "ctrl+r":
		m.form.ToggleRefMode()
		return m, nil
	}

	return m, m.form.Update(msg, len(m.modelList.Models()))
}

func (m *Model) handleFilesKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	selected, ok := m.selectedFile()

	switch {
	case matches(msg, m.keys.enter) && ok:
		m.menu = newMenu(selected, m.fileMenuActions(selected))
		return m, nil
	case msg.String() == "i" && ok:
		m.showDetail = !m.showDetail
		return m, nil
	case matches(msg, m.keys.rename) && ok:
		m.openRenameFile(selected)
		return m, nil
	case matches(msg, m.keys.delete) && ok:
		m.openDeleteFile(selected)
		return m, nil
	}

	var cmd tea.Cmd
	m.fileList, cmd = m.fileList.Update(msg)
	return m, cmd
}

// fileMenuActions builds the dropdown for one file. Entries that need state
// the current selection does not have are left out.
func (m *Model) fileMenuActions(selected string) []menuAction {
	actions := []menuAction{
		{label: "Play in browser", cmd: func() tea.Cmd { return m.playFile(selected) }},
		{label: "Download", cmd: func() tea.Cmd { return m.downloadFile(selected) }},
		{label: "Use as reference", cmd: func() tea.Cmd {
			m.form.UseAudioReference(selected)
			m.view = GenerateView
			return m.toasts.Push(ToastInfo, fmt.Sprintf("Next generation will reference %s", selected))
		}},
	}

	if entry, ok := m.files.LatestFor(selected); ok && entry.Prompt != "" {
		prompt := entry.Prompt
		actions = append(actions, menuAction{label: "Reuse prompt", cmd: func() tea.Cmd {
			m.form.UsePrompt(prompt)
			m.view = GenerateView
			return m.toasts.Push(ToastInfo, "Prompt loaded from file history")
		}})
	}

	if m.engine != nil {
		actions = append(actions, menuAction{label: "Download all", cmd: func() tea.Cmd {
			return m.downloadAllFiles()
		}})
	}

	return append(actions,
		menuAction{label: "Rename", cmd: func() tea.Cmd { m.openRenameFile(selected); return nil }},
		menuAction{label: "Delete", cmd: func() tea.Cmd { m.openDeleteFile(selected); return nil }},
	)
}

func (m *Model) openRenameFile(name string) {
	m.modal = newInputModal(fmt.Sprintf("Rename %s", name), "New name", name, func(value string) tea.Cmd {
		return m.renameFile(name, value)
	})
}

func (m *Model) openDeleteFile(name string) {
	m.modal = newConfirmModal(fmt.Sprintf("Delete %s?", name), m.deleteFile(name))
}

func (m *Model) handleProjectsKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	selected, ok := m.selectedProject()

	switch {
	case matches(msg, m.keys.enter) && ok:
		return m, m.selectProject(selected)
	case matches(msg, m.keys.newItem):
		m.modal = newInputModal("New project", "Project name", "", func(value string) tea.Cmd {
			return m.createProject(value)
		})
		return m, nil
	case matches(msg, m.keys.rename) && ok:
		if models.IsProtectedProject(selected) {
			return m, m.toasts.Push(ToastError, "The Default project cannot be renamed")
		}
		m.modal = newInputModal(fmt.Sprintf("Rename %s", selected), "New name", selected, func(value string) tea.Cmd {
			return m.renameProject(selected, value)
		})
		return m, nil
	case matches(msg, m.keys.delete) && ok:
		if models.IsProtectedProject(selected) {
			return m, m.toasts.Push(ToastError, "The Default project cannot be deleted")
		}
		m.modal = newConfirmModal(
			fmt.Sprintf("Delete %s and all its files?", selected),
			m.deleteProject(selected),
		)
		return m, nil
	}

	var cmd tea.Cmd
	m.projectList, cmd = m.projectList.Update(msg)
	return m, cmd
}

func (m *Model) handleFavoritesKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	item, ok := m.selectedFavorite()

	switch {
	case matches(msg, m.keys.enter) && ok:
		m.form.UsePrompt(item.favorite.Prompt)
		m.view = GenerateView
		return m, m.toasts.Push(ToastInfo, "Prompt loaded from favorite")
	case matches(msg, m.keys.newItem):
		m.modal = newFavoriteModal("New favorite", "", "", func(title, prompt string) tea.Cmd {
			return m.addFavorite(title, prompt)
		})
		return m, nil
	case matches(msg, m.keys.edit) && ok:
		index, revision := item.index, m.favRevision
		m.modal = newFavoriteModal("Edit favorite", item.favorite.Title, item.favorite.Prompt, func(title, prompt string) tea.Cmd {
			return m.editFavorite(index, revision, title, prompt)
		})
		return m, nil
	case matches(msg, m.keys.delete) && ok:
		title := item.favorite.Title
		if title == "" {
			title = models.DefaultFavoriteTitle
		}
		m.modal = newConfirmModal(
			fmt.Sprintf("Delete favorite %q?", title),
			m.deleteFavorite(item.index, m.favRevision),
		)
		return m, nil
	}

	var cmd tea.Cmd
	m.favoriteList, cmd = m.favoriteList.Update(msg)
	return m, cmd
}

// settingsField describes one editable server default.
type settingsField struct {
	label string
	get   func(models.Config) string
	set   func(*models.Config, string) error
}

var settingsFields = []settingsField{
	{
		label: "Model repo",
		get:   func(c models.Config) string { return c.RepoID },
		set:   func(c *models.Config, v string) error { c.RepoID = v; return nil },
	},
	{
		label: "Audio length",
		get:   func(c models.Config) string { return strconv.Itoa(c.AudioLength) },
		set: func(c *models.Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%w: audio length must be a whole number", shared.ErrInvalidInput)
			}
			c.AudioLength = n
			return nil
		},
	},
	{
		label: "Steps",
		get:   func(c models.Config) string { return strconv.Itoa(c.Steps) },
		set: func(c *models.Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%w: steps must be a whole number", shared.ErrInvalidInput)
			}
			c.Steps = n
			return nil
		},
	},
	{
		label: "CFG strength",
		get:   func(c models.Config) string { return strconv.FormatFloat(c.CfgStrength, 'f', 1, 64) },
		set: func(c *models.Config, v string) error {
			n, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("%w: cfg strength must be a number", shared.ErrInvalidInput)
			}
			c.CfgStrength = n
			return nil
		},
	},
	{
		label: "Batch size",
		get:   func(c models.Config) string { return strconv.Itoa(c.BatchInferNum) },
		set: func(c *models.Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%w: batch size must be a whole number", shared.ErrInvalidInput)
			}
			c.BatchInferNum = n
			return nil
		},
	},
	{
		label: "CUDA devices",
		get:   func(c models.Config) string { return c.CudaVisibleDevices },
		set:   func(c *models.Config, v string) error { c.CudaVisibleDevices = v; return nil },
	},
}

func (m *Model) handleSettingsKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case matches(msg, m.keys.up):
		if m.settingsIndex > 0 {
			m.settingsIndex--
		}
	case matches(msg, m.keys.down):
		if m.settingsIndex < len(settingsFields) {
			m.settingsIndex++
		}
	case matches(msg, m.keys.enter):
		if m.settingsIndex == len(settingsFields) {
			// The chunked toggle lives after the text fields.
			cfg := m.config.Config()
			cfg.UseChunked = !cfg.UseChunked
			return m, m.saveConfig(cfg)
		}

		field := settingsFields[m.settingsIndex]
		current := field.get(m.config.Config())
		m.modal = newInputModal(field.label, current, current, func(value string) tea.Cmd {
			cfg := m.config.Config()
			if err := field.set(&cfg, value); err != nil {
				return m.toasts.Push(ToastError, err.Error())
			}
			return m.saveConfig(cfg)
		})
	}
	return m, nil
}

func (m *Model) handleLoaded(msg loadedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.logger.Warn("load failed", "collection", msg.what, "error", msg.err)
		return m, m.toasts.Push(ToastError, msg.err.Error())
	}

	switch msg.what {
	case colProjects:
		m.rebuildProjectItems()
	case colFiles:
		m.rebuildFileItems()
	case colFavorites:
		m.rebuildFavoriteItems()
	case colConfig:
		m.form.SetDefaults(m.config.Config())
	}
	return m, nil
}

func (m *Model) handleActionDone(msg actionDoneMsg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	if msg.err != nil {
		// A modal waiting on this result (the favorite editor) stays open
		// so the typed text survives for a retry.
		cmds = append(cmds, m.toasts.Push(ToastError, msg.err.Error()))
	} else {
		if msg.note != "" {
			cmds = append(cmds, m.toasts.Push(ToastSuccess, msg.note))
		}
		m.modal = nil
	}

	m.rebuildProjectItems()
	m.rebuildFileItems()
	m.rebuildFavoriteItems()

	for _, col := range msg.reload {
		switch col {
		case colFiles:
			cmds = append(cmds, m.loadFiles())
		case colModels:
			cmds = append(cmds, m.loadModels())
		}
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) handleGenerateFinished(msg generateFinishedMsg) (tea.Model, tea.Cmd) {
	m.busy = false

	if msg.err != nil {
		return m, m.toasts.Push(ToastError, msg.err.Error())
	}

	m.logs.SetContent(msg.result.Logs)
	m.logs.GotoBottom()
	m.rebuildFileItems()

	if !msg.result.OK {
		note := "Generation failed"
		if msg.result.Error != "" {
			note = msg.result.Error
		}
		return m, m.toasts.Push(ToastError, note)
	}
	return m, m.toasts.Push(ToastSuccess, fmt.Sprintf("Generated %s", msg.result.OutfileName))
}

func (m *Model) rebuildFileItems() {
	files := m.files.Files()
	items := make([]list.Item, len(files))
	for i, file := range files {
		item := fileItem{file: file}
		if entry, ok := m.files.LatestFor(file.Name); ok {
			item.latest = &entry
		}
		items[i] = item
	}
	m.fileList.SetItems(items)
	m.fileList.Title = fmt.Sprintf("Files in %s", m.files.Project())
}

func (m *Model) rebuildProjectItems() {
	projects := m.projects.Projects()
	active := m.projects.Active()
	items := make([]list.Item, len(projects))
	for i, project := range projects {
		items[i] = projectItem{project: project, active: project.Name == active}
	}
	m.projectList.SetItems(items)
}

func (m *Model) rebuildFavoriteItems() {
	favorites, revision := m.favorites.All()
	m.favRevision = revision
	items := make([]list.Item, len(favorites))
	for i, favorite := range favorites {
		items[i] = favoriteItem{favorite: favorite, index: i}
	}
	m.favoriteList.SetItems(items)
}

func (m *Model) selectedFile() (string, bool) {
	if item, ok := m.fileList.SelectedItem().(fileItem); ok {
		return item.file.Name, true
	}
	return "", false
}

func (m *Model) selectedProject() (string, bool) {
	if item, ok := m.projectList.SelectedItem().(projectItem); ok {
		return item.project.Name, true
	}
	return "", false
}

func (m *Model) selectedFavorite() (favoriteItem, bool) {
	item, ok := m.favoriteList.SelectedItem().(favoriteItem)
	return item, ok
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case FilesView:
		m.fileList, cmd = m.fileList.Update(msg)
	case ProjectsView:
		m.projectList, cmd = m.projectList.Update(msg)
	case FavoritesView:
		m.favoriteList, cmd = m.favoriteList.Update(msg)
	}
	return m, cmd
}

func matches(msg tea.KeyMsg, binding key.Binding) bool {
	return key.Matches(msg, binding)
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
