package ui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"drpanel/internal/api"
	"drpanel/internal/models"
	"drpanel/internal/shared"
	"drpanel/internal/stores"
	tu "drpanel/internal/testing"
)

func newTestModel(t *testing.T) (*Model, *tu.FakePanelServer) {
	t.Helper()
	srv := tu.NewFakePanelServer()
	t.Cleanup(srv.Close)

	client := api.NewClient(srv.URL(), nil)
	files := stores.NewFileStore(client)
	m := NewModel(context.Background(), Deps{
		Client:    client,
		Projects:  stores.NewProjectStore(client),
		Files:     files,
		Favorites: stores.NewFavoriteStore(client),
		Config:    stores.NewConfigStore(client),
		Models:    stores.NewModelStore(client),
		Generator: stores.NewGenerator(client, files, nil, nil),
	})
	m.width = 100
	m.height = 40
	return m, srv
}

// drive runs a command synchronously and feeds its message back into Update.
func drive(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		return
	}
	msg := cmd()
	if msg == nil {
		return
	}
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			drive(t, m, c)
		}
		return
	}
	// Commands returned by Update are timer-backed (toast expiry, spinner
	// ticks) and are not followed; tests assert on the scheduled state.
	m.Update(msg)
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func TestToastManager(t *testing.T) {
	t.Run("Push And Expire", func(t *testing.T) {
		var tm ToastManager
		cmd := tm.Push(ToastSuccess, "saved")
		if cmd == nil {
			t.Fatal("expected an expiry command")
		}
		if len(tm.Active()) != 1 {
			t.Fatalf("expected one toast, got %d", len(tm.Active()))
		}

		id := tm.Active()[0].ID
		tm.Expire(id)
		if len(tm.Active()) != 0 {
			t.Error("expected toast removed after expiry")
		}

		tm.Expire(id)
		if len(tm.Active()) != 0 {
			t.Error("double expiry must be a no-op")
		}
	})

	t.Run("Independent Timers", func(t *testing.T) {
		var tm ToastManager
		tm.Push(ToastInfo, "first")
		tm.Push(ToastError, "second")

		tm.Expire(tm.Active()[0].ID)
		remaining := tm.Active()
		if len(remaining) != 1 || remaining[0].Text != "second" {
			t.Errorf("expected only the second toast, got %v", remaining)
		}
	})
}

func TestModal(t *testing.T) {
	t.Run("Escape Closes Without Side Effects", func(t *testing.T) {
		called := false
		m := newConfirmModal("Delete?", func() tea.Msg { called = true; return nil })

		cmd, done := m.Update(keyPress("esc"))
		if !done || cmd != nil {
			t.Error("escape must close with no command")
		}
		if called {
			t.Error("escape must not run the confirm action")
		}
	})

	t.Run("Confirm Runs On Yes", func(t *testing.T) {
		ran := false
		m := newConfirmModal("Delete?", func() tea.Msg { ran = true; return nil })

		cmd, done := m.Update(keyPress("y"))
		if !done || cmd == nil {
			t.Fatal("expected the confirm command")
		}
		cmd()
		if !ran {
			t.Error("expected confirm action to run")
		}
	})

	t.Run("Empty Input Is Blocked With Feedback", func(t *testing.T) {
		submitted := ""
		m := newInputModal("Rename", "name", "", func(v string) tea.Cmd {
			return func() tea.Msg { submitted = v; return nil }
		})

		cmd, done := m.Update(keyPress("enter"))
		if done {
			t.Error("empty submit must keep the modal open")
		}
		if cmd == nil {
			t.Fatal("expected a validation message")
		}
		if _, ok := cmd().(modalErrorMsg); !ok {
			t.Error("expected a modalErrorMsg")
		}
		if submitted != "" {
			t.Error("empty submit must not call the handler")
		}
	})

	t.Run("Input Submits Trimmed Value", func(t *testing.T) {
		submitted := ""
		m := newInputModal("Rename", "name", "  take-2.wav  ", func(v string) tea.Cmd {
			return func() tea.Msg { submitted = v; return nil }
		})

		cmd, done := m.Update(keyPress("enter"))
		if !done || cmd == nil {
			t.Fatal("expected a submit command")
		}
		cmd()
		if submitted != "take-2.wav" {
			t.Errorf("expected trimmed value, got %q", submitted)
		}
	})

	t.Run("Favorite Editor Requires Both Fields", func(t *testing.T) {
		called := false
		m := newFavoriteModal("New favorite", "Trailer", "   ", func(title, prompt string) tea.Cmd {
			called = true
			return nil
		})

		cmd, done := m.Update(keyPress("enter"))
		if done {
			t.Error("invalid submit must keep the editor open")
		}
		if cmd == nil {
			t.Fatal("expected a validation message")
		}
		if _, ok := cmd().(modalErrorMsg); !ok {
			t.Error("expected a modalErrorMsg")
		}
		if called {
			t.Error("invalid submit must not call the save handler")
		}
	})

	t.Run("Favorite Editor Waits For The Save Result", func(t *testing.T) {
		m := newFavoriteModal("New favorite", "Trailer", "epic brass", func(title, prompt string) tea.Cmd {
			return func() tea.Msg { return actionDoneMsg{note: "Favorite saved"} }
		})

		cmd, done := m.Update(keyPress("enter"))
		if done {
			t.Error("the editor must stay open until the result arrives")
		}
		if cmd == nil {
			t.Fatal("expected the save command")
		}
	})

	t.Run("Favorite Editor Tabs Between Fields", func(t *testing.T) {
		m := newFavoriteModal("Edit", "title", "prompt", func(title, prompt string) tea.Cmd {
			return nil
		})

		if m.focusPrompt {
			t.Fatal("title focused first")
		}
		m.Update(keyPress("tab"))
		if !m.focusPrompt {
			t.Error("tab must move focus to the prompt")
		}
		m.Update(keyPress("tab"))
		if m.focusPrompt {
			t.Error("tab must move focus back to the title")
		}
	})
}

func TestMenu(t *testing.T) {
	ran := ""
	m := newMenu("output-1.wav", []menuAction{
		{label: "Play", cmd: func() tea.Cmd { return func() tea.Msg { ran = "play"; return nil } }},
		{label: "Delete", cmd: func() tea.Cmd { return func() tea.Msg { ran = "delete"; return nil } }},
	})

	m.Update(keyPress("j"))
	cmd, done := m.Update(keyPress("enter"))
	if !done || cmd == nil {
		t.Fatal("expected selection to close the menu with a command")
	}
	cmd()
	if ran != "delete" {
		t.Errorf("expected the second action, got %q", ran)
	}

	m2 := newMenu("x", []menuAction{{label: "a", cmd: func() tea.Cmd { return nil }}})
	if _, done := m2.Update(keyPress("esc")); !done {
		t.Error("escape must close the menu")
	}
}

func TestGenerateForm(t *testing.T) {
	cfg := models.Config{
		RepoID:        "ASLP-lab/DiffRhythm-1_2",
		AudioLength:   95,
		Steps:         56,
		CfgStrength:   3.8,
		BatchInferNum: 1,
	}

	t.Run("Mode Switch Preserves Values", func(t *testing.T) {
		f := NewGenerateForm(cfg)
		f.UsePrompt("ambient drone")
		f.steps.SetValue("72")

		f.ToggleMode()
		if f.Mode() != models.ModeAdvanced {
			t.Fatalf("expected advanced mode, got %s", f.Mode())
		}
		f.ToggleMode()
		if f.Prompt() != "ambient drone" || f.steps.Value() != "72" {
			t.Error("mode switch must not clear values")
		}
	})

	t.Run("Ref Mode Switch Preserves Values", func(t *testing.T) {
		f := NewGenerateForm(cfg)
		f.UsePrompt("ambient drone")
		f.audio.SetValue("/tmp/ref.wav")

		f.ToggleRefMode()
		if f.RefMode() != models.RefAudio {
			t.Fatalf("expected audio mode, got %s", f.RefMode())
		}
		if f.Prompt() != "ambient drone" {
			t.Error("hidden prompt value must survive the switch")
		}
		f.ToggleRefMode()
		if f.audio.Value() != "/tmp/ref.wav" {
			t.Error("hidden audio value must survive the switch")
		}
	})

	t.Run("Visible Fields Per Mode", func(t *testing.T) {
		f := NewGenerateForm(cfg)
		simple := f.visible()
		for _, field := range simple {
			if field == fieldSteps || field == fieldCfg || field == fieldLrc {
				t.Errorf("simple mode must not expose field %d", field)
			}
		}

		f.ToggleMode()
		advanced := f.visible()
		if len(advanced) <= len(simple) {
			t.Error("advanced mode must expose more fields")
		}
	})

	t.Run("Simple Request Applies Preset", func(t *testing.T) {
		f := NewGenerateForm(cfg)
		f.UsePrompt("upbeat funk")
		f.presetIndex = 2

		req, err := f.BuildRequest("Default", []models.ModelInfo{{RepoID: cfg.RepoID}})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if req.Steps != 72 || req.CfgStrength != 4.0 {
			t.Errorf("expected high preset applied, got %+v", req)
		}
		if req.BatchInferNum != 1 || req.UseChunked {
			t.Errorf("simple mode must pin batch and chunking, got %+v", req)
		}
		if req.RepoID != cfg.RepoID {
			t.Errorf("expected repo from model list, got %q", req.RepoID)
		}
	})

	t.Run("Advanced Request Takes Typed Values", func(t *testing.T) {
		f := NewGenerateForm(cfg)
		f.ToggleMode()
		f.UsePrompt("upbeat funk")
		f.steps.SetValue("64")
		f.cfg.SetValue("4.2")
		f.batch.SetValue("2")
		f.chunked = true

		req, err := f.BuildRequest("Default", nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if req.Steps != 64 || req.CfgStrength != 4.2 || req.BatchInferNum != 2 || !req.UseChunked {
			t.Errorf("unexpected request %+v", req)
		}
	})

	t.Run("Ref Mode Is Independent Per UI Mode", func(t *testing.T) {
		f := NewGenerateForm(cfg)
		f.ToggleRefMode()
		if f.RefMode() != models.RefAudio {
			t.Fatalf("expected audio mode in the simple form, got %s", f.RefMode())
		}

		f.ToggleMode()
		if f.RefMode() != models.RefPrompt {
			t.Errorf("the advanced reference must not follow the simple form, got %s", f.RefMode())
		}

		f.ToggleRefMode()
		f.ToggleRefMode()
		f.ToggleMode()
		if f.RefMode() != models.RefAudio {
			t.Errorf("the simple reference must survive the round trip, got %s", f.RefMode())
		}
	})

	t.Run("Existing File Reference", func(t *testing.T) {
		f := NewGenerateForm(cfg)
		f.UseAudioReference("a.wav")
		if f.RefMode() != models.RefAudio {
			t.Fatalf("expected audio mode, got %s", f.RefMode())
		}

		req, err := f.BuildRequest("Default", nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if req.RefAudioExisting != "a.wav" || req.RefAudioPath != "" {
			t.Errorf("expected existing-file reference, got %+v", req)
		}

		f.audio.SetValue("/tmp/local.wav")
		req, err = f.BuildRequest("Default", nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if req.RefAudioPath != "/tmp/local.wav" || req.RefAudioExisting != "" {
			t.Errorf("typed path must win over the existing file, got %+v", req)
		}
	})

	t.Run("Invalid Number Rejected", func(t *testing.T) {
		f := NewGenerateForm(cfg)
		f.ToggleMode()
		f.steps.SetValue("plenty")

		_, err := f.BuildRequest("Default", nil)
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})
}

func TestModelUpdate(t *testing.T) {
	t.Run("Initial Load Populates Lists", func(t *testing.T) {
		m, srv := newTestModel(t)
		srv.Files[models.DefaultProject] = []models.AudioFile{{Name: "output-1.wav", Mtime: 10}}
		srv.Favorites = []models.Favorite{{ID: "f1", Title: "Trailer", Prompt: "epic"}}

		drive(t, m, m.Init())

		if len(m.fileList.Items()) != 1 {
			t.Errorf("expected one file item, got %d", len(m.fileList.Items()))
		}
		if len(m.projectList.Items()) != 1 {
			t.Errorf("expected one project item, got %d", len(m.projectList.Items()))
		}
		if len(m.favoriteList.Items()) != 1 {
			t.Errorf("expected one favorite item, got %d", len(m.favoriteList.Items()))
		}
	})

	t.Run("Load Failure Becomes Toast", func(t *testing.T) {
		m, srv := newTestModel(t)
		srv.FailPaths["/api/projects/list"] = "backend down"

		drive(t, m, m.loadProjects())

		toasts := m.toasts.Active()
		if len(toasts) != 1 || toasts[0].Level != ToastError {
			t.Fatalf("expected one error toast, got %v", toasts)
		}
	})

	t.Run("Modal Captures Keys", func(t *testing.T) {
		m, _ := newTestModel(t)
		m.view = ProjectsView
		m.modal = newInputModal("New project", "name", "", func(string) tea.Cmd { return nil })

		m.Update(keyPress("q"))
		if m.modal == nil {
			t.Fatal("typing into a modal must not quit or close it")
		}

		m.Update(keyPress("esc"))
		if m.modal != nil {
			t.Error("escape must close the modal")
		}
	})

	t.Run("Protected Project Actions Send Nothing", func(t *testing.T) {
		m, srv := newTestModel(t)
		drive(t, m, m.loadProjects())
		before := len(srv.Requests())

		m.view = ProjectsView
		m.Update(keyPress("r"))
		if m.modal != nil {
			t.Error("rename on Default must not open a modal")
		}
		m.Update(keyPress("d"))
		if m.modal != nil {
			t.Error("delete on Default must not open a modal")
		}
		if len(srv.Requests()) != before {
			t.Error("protected actions must not reach the server")
		}

		toasts := m.toasts.Active()
		if len(toasts) != 2 {
			t.Errorf("expected two error toasts, got %d", len(toasts))
		}
	})

	t.Run("Favorite Enter Loads Prompt Into Form", func(t *testing.T) {
		m, srv := newTestModel(t)
		srv.Favorites = []models.Favorite{{ID: "f1", Title: "Trailer", Prompt: "epic brass"}}
		drive(t, m, m.loadFavorites())

		m.view = FavoritesView
		m.Update(keyPress("enter"))

		if m.view != GenerateView {
			t.Error("selecting a favorite must switch to the generate tab")
		}
		if m.form.Prompt() != "epic brass" {
			t.Errorf("expected prompt loaded, got %q", m.form.Prompt())
		}
	})

	t.Run("Favorite Save Failure Keeps The Editor Open", func(t *testing.T) {
		m, srv := newTestModel(t)
		drive(t, m, m.loadFavorites())
		srv.FailPaths["/api/favorites"] = "disk full"

		m.view = FavoritesView
		m.modal = newFavoriteModal("New favorite", "", "", func(title, prompt string) tea.Cmd {
			return m.addFavorite(title, prompt)
		})
		m.modal.titleInput.SetValue("Trailer")
		m.modal.promptInput.SetValue("epic brass")

		_, cmd := m.Update(keyPress("enter"))
		if m.modal == nil {
			t.Fatal("the editor must stay open while the save is in flight")
		}
		drive(t, m, cmd)

		if m.modal == nil {
			t.Fatal("a failed save must keep the editor open for retry")
		}
		if m.modal.titleInput.Value() != "Trailer" || m.modal.promptInput.Value() != "epic brass" {
			t.Error("typed text must survive a failed save")
		}

		toasts := m.toasts.Active()
		if len(toasts) != 1 || toasts[0].Level != ToastError {
			t.Fatalf("expected one error toast, got %v", toasts)
		}
	})

	t.Run("Favorite Save Success Closes The Editor", func(t *testing.T) {
		m, srv := newTestModel(t)
		drive(t, m, m.loadFavorites())

		m.view = FavoritesView
		m.modal = newFavoriteModal("New favorite", "", "", func(title, prompt string) tea.Cmd {
			return m.addFavorite(title, prompt)
		})
		m.modal.titleInput.SetValue("Trailer")
		m.modal.promptInput.SetValue("epic brass")

		_, cmd := m.Update(keyPress("enter"))
		drive(t, m, cmd)

		if m.modal != nil {
			t.Error("a successful save must close the editor")
		}
		if len(srv.Favorites) != 1 || srv.Favorites[0].Title != "Trailer" {
			t.Errorf("expected the favorite persisted, got %+v", srv.Favorites)
		}
	})

	t.Run("File Menu Is Single", func(t *testing.T) {
		m, srv := newTestModel(t)
		srv.Files[models.DefaultProject] = []models.AudioFile{
			{Name: "a.wav", Mtime: 20},
			{Name: "b.wav", Mtime: 10},
		}
		drive(t, m, m.loadFiles())

		m.view = FilesView
		m.Update(keyPress("enter"))
		if m.menu == nil {
			t.Fatal("expected a menu for the selected file")
		}
		first := m.menu.target

		m.Update(keyPress("esc"))
		if m.menu != nil {
			t.Fatal("escape must close the menu")
		}

		m.Update(keyPress("j"))
		m.Update(keyPress("enter"))
		if m.menu == nil || m.menu.target == first {
			t.Error("opening a menu for another file must replace the old target")
		}
	})

	t.Run("File Menu Use As Reference", func(t *testing.T) {
		m, srv := newTestModel(t)
		srv.Files[models.DefaultProject] = []models.AudioFile{{Name: "a.wav", Mtime: 20}}
		drive(t, m, m.loadFiles())

		m.view = FilesView
		m.Update(keyPress("enter"))
		if m.menu == nil {
			t.Fatal("expected a menu for the selected file")
		}

		// Play, Download, then Use as reference.
		m.Update(keyPress("j"))
		m.Update(keyPress("j"))
		m.Update(keyPress("enter"))

		if m.view != GenerateView {
			t.Error("picking a reference must switch to the generate tab")
		}
		if m.form.RefMode() != models.RefAudio {
			t.Errorf("expected audio mode, got %s", m.form.RefMode())
		}
		req, err := m.form.BuildRequest("Default", nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if req.RefAudioExisting != "a.wav" {
			t.Errorf("expected the selected file as reference, got %+v", req)
		}
	})

	t.Run("File Detail Toggle", func(t *testing.T) {
		m, srv := newTestModel(t)
		srv.Files[models.DefaultProject] = []models.AudioFile{{Name: "a.wav", Mtime: 20}}
		srv.History[models.DefaultProject] = []models.HistoryEntry{{
			File:        "a.wav",
			Ts:          5,
			RefMode:     models.RefPrompt,
			Prompt:      "warm piano",
			RepoID:      "ASLP-lab/DiffRhythm-1_2",
			AudioLength: 95,
			Steps:       56,
			CfgStrength: 3.8,
		}}
		drive(t, m, m.loadFiles())
		m.view = FilesView

		if m.renderFileDetail() != "" {
			t.Error("detail must be hidden by default")
		}

		m.Update(keyPress("i"))
		detail := m.renderFileDetail()
		if !strings.Contains(detail, "warm piano") || !strings.Contains(detail, "ASLP-lab/DiffRhythm-1_2") {
			t.Errorf("expected generation parameters in detail, got %q", detail)
		}

		m.Update(keyPress("i"))
		if m.renderFileDetail() != "" {
			t.Error("second toggle must hide the detail again")
		}
	})

	t.Run("Generation Success Updates Logs And Files", func(t *testing.T) {
		m, srv := newTestModel(t)
		srv.GenerateResult = models.GenerateResult{OK: true, Logs: "all good", OutfileName: "output-9.wav"}
		drive(t, m, m.Init())

		m.form.UsePrompt("test prompt")
		drive(t, m, m.runGenerate())

		if m.busy {
			t.Error("busy flag must clear when generation finishes")
		}
		found := false
		for _, item := range m.fileList.Items() {
			if fi, ok := item.(fileItem); ok && fi.file.Name == "output-9.wav" {
				found = true
			}
		}
		if !found {
			t.Error("expected the new file in the list")
		}
	})

	t.Run("Empty Prompt Generation Is Rejected Locally", func(t *testing.T) {
		m, srv := newTestModel(t)
		drive(t, m, m.Init())
		before := srv.RequestCount("/api/generate")

		drive(t, m, m.runGenerate())

		if srv.RequestCount("/api/generate") != before {
			t.Error("invalid input must not reach the server")
		}
		if m.busy {
			t.Error("validation failure must not leave the panel busy")
		}
	})
}
