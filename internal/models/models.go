package models

import (
	"sort"
	"strings"
)

// RefMode selects how a generation is conditioned.
type RefMode string

const (
	RefPrompt RefMode = "prompt"
	RefAudio  RefMode = "audio"
)

// UIMode selects which form presentation drives a generation.
type UIMode string

const (
	ModeSimple   UIMode = "simple"
	ModeAdvanced UIMode = "advanced"
)

// DefaultProject is the protected project every server starts with.
const DefaultProject = "Default"

// Config represents the server-owned generation defaults.
//
// It is a singleton resource: the client replaces it wholesale on save and
// never patches individual fields locally.
type Config struct {
	RepoID             string  `json:"repo_id"`
	AudioLength        int     `json:"audio_length"`
	BatchInferNum      int     `json:"batch_infer_num"`
	UseChunked         bool    `json:"use_chunked"`
	Steps              int     `json:"steps"`
	CfgStrength        float64 `json:"cfg_strength"`
	CudaVisibleDevices string  `json:"cuda_visible_devices"`
	BaseDir            string  `json:"base_dir"`
	ActiveProject      string  `json:"active_project"`
	PythonBin          string  `json:"python_bin,omitempty"`
}

// Project represents a named folder-like grouping of generated files.
type Project struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// IsProtectedProject reports whether name refers to the reserved Default
// project. The comparison is case-insensitive, matching the server.
func IsProtectedProject(name string) bool {
	return strings.EqualFold(strings.TrimSpace(name), DefaultProject)
}

// AudioFile represents a generated artifact scoped to a project.
type AudioFile struct {
	Name  string `json:"name"`
	Size  int64  `json:"size"`
	Mtime int64  `json:"mtime"`
}

// SortFilesByMtime orders files newest first. Ties break by name so the
// rendered order is deterministic.
func SortFilesByMtime(files []AudioFile) {
	sort.SliceStable(files, func(i, j int) bool {
		if files[i].Mtime != files[j].Mtime {
			return files[i].Mtime > files[j].Mtime
		}
		return files[i].Name < files[j].Name
	})
}

// HistoryEntry is the server's record of the parameters that produced a file.
//
// Many entries may reference the same file (e.g. after a rename collision);
// consumers must join latest-wins via [LatestByFile].
type HistoryEntry struct {
	Ts            int64   `json:"ts"`
	File          string  `json:"file"`
	Mode          UIMode  `json:"mode,omitempty"`
	RefMode       RefMode `json:"ref_mode"`
	Prompt        string  `json:"prompt,omitempty"`
	RefAudio      string  `json:"ref_audio,omitempty"`
	AudioLength   int     `json:"audio_length"`
	RepoID        string  `json:"repo_id"`
	Steps         int     `json:"steps"`
	CfgStrength   float64 `json:"cfg_strength"`
	Chunked       bool    `json:"chunked"`
	BatchInferNum int     `json:"batch_infer_num"`
}

// LatestByFile joins history entries to files latest-wins: for each file name
// the entry with the maximum timestamp is kept.
func LatestByFile(history []HistoryEntry) map[string]HistoryEntry {
	latest := make(map[string]HistoryEntry, len(history))
	for _, entry := range history {
		if entry.File == "" {
			continue
		}
		if prev, ok := latest[entry.File]; !ok || entry.Ts > prev.Ts {
			latest[entry.File] = entry
		}
	}
	return latest
}

// Favorite is a saved (title, prompt) pair for quick reuse.
//
// Title and prompt are mutable. The id and icon are set at creation time and
// must survive edits untouched.
type Favorite struct {
	ID     string `json:"id,omitempty"`
	Title  string `json:"title"`
	Prompt string `json:"prompt"`
	Icon   string `json:"icon,omitempty"`
}

// ModelInfo describes a discoverable model checkpoint.
type ModelInfo struct {
	RepoID string `json:"repo_id"`
	Label  string `json:"label"`
}

// GenerateResult is the server's response to a generation request.
type GenerateResult struct {
	OK          bool   `json:"ok"`
	ReturnCode  int    `json:"returncode,omitempty"`
	Logs        string `json:"logs,omitempty"`
	Outfile     string `json:"outfile,omitempty"`
	OutfileName string `json:"outfile_name,omitempty"`
	Error       string `json:"error,omitempty"`
}
