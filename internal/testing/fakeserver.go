package testing

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"time"

	"drpanel/internal/models"
)

// FakePanelServer is an in-process implementation of the panel server's HTTP
// contract, backed by in-memory state. Store and client tests run against it
// instead of a live backend.
//
// It mimics the documented envelope behavior: JSON bodies everywhere, a 400
// with {ok:false, error} on rule violations, and the reserved-name rules for
// the Default project.
type FakePanelServer struct {
	mu sync.Mutex

	Config    models.Config
	Files     map[string][]models.AudioFile
	History   map[string][]models.HistoryEntry
	Favorites []models.Favorite
	Models    []models.ModelInfo

	// GenerateResult is returned by both generate endpoints. LastGenerate
	// records the multipart fields of the most recent generation request.
	GenerateResult models.GenerateResult
	LastGenerate   map[string]string

	// FailPaths maps a URL path to an error message; matching requests get
	// a 500 with that message.
	FailPaths map[string]string

	requests []string
	srv      *httptest.Server
}

// NewFakePanelServer starts a fake server with a Default project and stock
// config.
func NewFakePanelServer() *FakePanelServer {
	f := &FakePanelServer{
		Config: models.Config{
			RepoID:             "ASLP-lab/DiffRhythm-1_2",
			AudioLength:        95,
			BatchInferNum:      1,
			Steps:              56,
			CfgStrength:        3.8,
			CudaVisibleDevices: "0",
			ActiveProject:      models.DefaultProject,
		},
		Files:     map[string][]models.AudioFile{models.DefaultProject: {}},
		History:   map[string][]models.HistoryEntry{},
		FailPaths: map[string]string{},
	}
	f.srv = httptest.NewServer(http.HandlerFunc(f.handle))
	return f
}

// URL returns the base URL of the running fake server.
func (f *FakePanelServer) URL() string { return f.srv.URL }

// Close shuts the server down.
func (f *FakePanelServer) Close() { f.srv.Close() }

// Requests returns the "METHOD /path" log of everything received so far.
func (f *FakePanelServer) Requests() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...)
}

// RequestCount counts received requests whose path matches exactly.
func (f *FakePanelServer) RequestCount(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, r := range f.requests {
		if strings.HasSuffix(r, " "+path) {
			count++
		}
	}
	return count
}

func (f *FakePanelServer) handle(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.requests = append(f.requests, r.Method+" "+r.URL.Path)

	if msg, ok := f.FailPaths[r.URL.Path]; ok {
		writeError(w, http.StatusInternalServerError, msg)
		return
	}

	switch {
	case r.URL.Path == "/api/config":
		f.handleConfig(w, r)
	case r.URL.Path == "/api/projects/list":
		f.handleProjectList(w)
	case r.URL.Path == "/api/projects/create":
		f.handleProjectCreate(w, r)
	case r.URL.Path == "/api/projects/rename":
		f.handleProjectRename(w, r)
	case r.URL.Path == "/api/projects/delete":
		f.handleProjectDelete(w, r)
	case r.URL.Path == "/api/files/list":
		f.handleFileList(w, r)
	case r.URL.Path == "/api/files/rename":
		f.handleFileRename(w, r)
	case r.URL.Path == "/api/files/delete":
		f.handleFileDelete(w, r)
	case r.URL.Path == "/api/favorites":
		f.handleFavorites(w, r)
	case strings.HasPrefix(r.URL.Path, "/api/favorites/"):
		f.handleFavoriteDelete(w, r)
	case r.URL.Path == "/api/models":
		f.handleModels(w)
	case r.URL.Path == "/api/generate":
		f.handleGenerate(w, r)
	case r.URL.Path == "/api/generate/json":
		f.handleGenerateJSON(w, r)
	case strings.HasPrefix(r.URL.Path, "/download/"), strings.HasPrefix(r.URL.Path, "/play/"):
		f.handleMedia(w, r)
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]any{"ok": false, "error": msg})
}

func writeOK(w http.ResponseWriter) {
	writeJSON(w, map[string]any{"ok": true})
}

func (f *FakePanelServer) handleConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		writeJSON(w, f.Config)
		return
	}

	var patch map[string]any
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	// Partial merge like the real server: only provided keys change.
	if v, ok := patch["active_project"].(string); ok {
		f.Config.ActiveProject = v
	}
	if v, ok := patch["repo_id"].(string); ok {
		f.Config.RepoID = v
	}
	if v, ok := patch["audio_length"].(float64); ok {
		f.Config.AudioLength = int(v)
	}
	if v, ok := patch["steps"].(float64); ok {
		f.Config.Steps = int(v)
	}
	if v, ok := patch["cfg_strength"].(float64); ok {
		f.Config.CfgStrength = v
	}
	if v, ok := patch["batch_infer_num"].(float64); ok {
		f.Config.BatchInferNum = int(v)
	}
	if v, ok := patch["use_chunked"].(bool); ok {
		f.Config.UseChunked = v
	}
	if v, ok := patch["cuda_visible_devices"].(string); ok {
		f.Config.CudaVisibleDevices = v
	}
	if v, ok := patch["base_dir"].(string); ok {
		f.Config.BaseDir = v
	}
	writeJSON(w, map[string]any{"ok": true, "config": f.Config})
}

func (f *FakePanelServer) handleProjectList(w http.ResponseWriter) {
	names := make([]string, 0, len(f.Files))
	for name := range f.Files {
		names = append(names, name)
	}
	sort.Strings(names)

	projects := make([]models.Project, 0, len(names))
	for _, name := range names {
		projects = append(projects, models.Project{Name: name, Count: len(f.Files[name])})
	}
	writeJSON(w, map[string]any{"projects": projects, "active": f.Config.ActiveProject})
}

func (f *FakePanelServer) handleProjectCreate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name"`
	}
	json.NewDecoder(r.Body).Decode(&body)
	name := strings.TrimSpace(body.Name)

	if models.IsProtectedProject(name) {
		writeError(w, http.StatusBadRequest, "The name 'Default' is reserved.")
		return
	}
	if _, exists := f.Files[name]; exists {
		writeError(w, http.StatusBadRequest, "Project already exists")
		return
	}
	f.Files[name] = []models.AudioFile{}
	writeJSON(w, map[string]any{"ok": true, "name": name})
}

func (f *FakePanelServer) handleProjectRename(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Old string `json:"old"`
		New string `json:"new"`
	}
	json.NewDecoder(r.Body).Decode(&body)

	if models.IsProtectedProject(body.Old) {
		writeError(w, http.StatusBadRequest, "The 'Default' project cannot be renamed.")
		return
	}
	if models.IsProtectedProject(body.New) {
		writeError(w, http.StatusBadRequest, "You cannot rename a project to the reserved name 'Default'.")
		return
	}
	files, ok := f.Files[body.Old]
	if !ok {
		writeError(w, http.StatusBadRequest, "Source project does not exist")
		return
	}
	if _, exists := f.Files[body.New]; exists {
		writeError(w, http.StatusBadRequest, "Target project already exists")
		return
	}

	delete(f.Files, body.Old)
	f.Files[body.New] = files
	f.History[body.New] = f.History[body.Old]
	delete(f.History, body.Old)
	if f.Config.ActiveProject == body.Old {
		f.Config.ActiveProject = body.New
	}
	writeOK(w)
}

func (f *FakePanelServer) handleProjectDelete(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name  string `json:"name"`
		Force bool   `json:"force"`
	}
	json.NewDecoder(r.Body).Decode(&body)

	if models.IsProtectedProject(body.Name) {
		writeError(w, http.StatusBadRequest, "The 'Default' project cannot be deleted.")
		return
	}
	if _, ok := f.Files[body.Name]; !ok {
		writeError(w, http.StatusBadRequest, "Project does not exist")
		return
	}
	delete(f.Files, body.Name)
	delete(f.History, body.Name)
	if f.Config.ActiveProject == body.Name {
		f.Config.ActiveProject = models.DefaultProject
	}
	writeOK(w)
}

func (f *FakePanelServer) handleFileList(w http.ResponseWriter, r *http.Request) {
	project := r.URL.Query().Get("project")
	if project == "" {
		project = f.Config.ActiveProject
	}
	files := f.Files[project]
	if files == nil {
		files = []models.AudioFile{}
	}
	history := f.History[project]
	if history == nil {
		history = []models.HistoryEntry{}
	}
	writeJSON(w, map[string]any{"project": project, "files": files, "history": history})
}

func (f *FakePanelServer) handleFileRename(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Project string `json:"project"`
		Src     string `json:"src"`
		Dst     string `json:"dst"`
	}
	json.NewDecoder(r.Body).Decode(&body)

	files := f.Files[body.Project]
	for i, file := range files {
		if file.Name == body.Src {
			files[i].Name = body.Dst
			for j, entry := range f.History[body.Project] {
				if entry.File == body.Src {
					f.History[body.Project][j].File = body.Dst
				}
			}
			writeOK(w)
			return
		}
	}
	writeError(w, http.StatusBadRequest, "no such file")
}

func (f *FakePanelServer) handleFileDelete(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Project string `json:"project"`
		Name    string `json:"name"`
	}
	json.NewDecoder(r.Body).Decode(&body)

	files := f.Files[body.Project]
	for i, file := range files {
		if file.Name == body.Name {
			f.Files[body.Project] = append(files[:i], files[i+1:]...)
			kept := f.History[body.Project][:0]
			for _, entry := range f.History[body.Project] {
				if entry.File != body.Name {
					kept = append(kept, entry)
				}
			}
			f.History[body.Project] = kept
			writeOK(w)
			return
		}
	}
	writeError(w, http.StatusBadRequest, "no such file")
}

func (f *FakePanelServer) handleFavorites(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		favorites := f.Favorites
		if favorites == nil {
			favorites = []models.Favorite{}
		}
		writeJSON(w, map[string]any{"favorites": favorites})
		return
	}

	var body struct {
		Favorites []models.Favorite `json:"favorites"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	f.Favorites = body.Favorites
	writeOK(w)
}

func (f *FakePanelServer) handleFavoriteDelete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/api/favorites/")
	kept := make([]models.Favorite, 0, len(f.Favorites))
	for _, fav := range f.Favorites {
		if fav.ID != id {
			kept = append(kept, fav)
		}
	}
	f.Favorites = kept
	writeOK(w)
}

func (f *FakePanelServer) handleModels(w http.ResponseWriter) {
	if f.Models == nil {
		writeError(w, http.StatusInternalServerError, "model discovery failed")
		return
	}
	writeJSON(w, map[string]any{"ok": true, "models": f.Models})
}

func (f *FakePanelServer) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}

	f.LastGenerate = map[string]string{}
	for key, values := range r.MultipartForm.Value {
		if len(values) > 0 {
			f.LastGenerate[key] = values[0]
		}
	}
	for key, files := range r.MultipartForm.File {
		if len(files) > 0 {
			f.LastGenerate[key] = files[0].Filename
		}
	}

	f.finishGenerate(w, f.LastGenerate["project"])
}

func (f *FakePanelServer) handleGenerateJSON(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	f.LastGenerate = map[string]string{}
	for key, value := range body {
		f.LastGenerate[key] = fmt.Sprintf("%v", value)
	}
	project, _ := body["project"].(string)
	f.finishGenerate(w, project)
}

// finishGenerate appends the produced file on success, mirroring the real
// server's read-after-write expectations.
func (f *FakePanelServer) finishGenerate(w http.ResponseWriter, project string) {
	result := f.GenerateResult
	if result.OK && result.OutfileName != "" {
		if project == "" {
			project = f.Config.ActiveProject
		}
		f.Files[project] = append(f.Files[project], models.AudioFile{
			Name:  result.OutfileName,
			Mtime: time.Now().Unix(),
		})
	}
	writeJSON(w, result)
}

func (f *FakePanelServer) handleMedia(w http.ResponseWriter, r *http.Request) {
	parts := strings.SplitN(strings.TrimPrefix(r.URL.Path, "/"), "/", 3)
	if len(parts) != 3 {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	project, name := parts[1], parts[2]
	for _, file := range f.Files[project] {
		if file.Name == name {
			w.Header().Set("Content-Type", "audio/wav")
			fmt.Fprintf(w, "RIFF-fake-%s", name)
			return
		}
	}
	writeError(w, http.StatusNotFound, "not found")
}
