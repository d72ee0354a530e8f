package ui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/list"

	"drpanel/internal/models"
	"drpanel/internal/shared"
)

var (
	_ list.Item = fileItem{}
	_ list.Item = projectItem{}
	_ list.Item = favoriteItem{}
)

// fileItem wraps [models.AudioFile] to implement [list.Item]. The latest
// history entry for the file, when known, feeds the description.
type fileItem struct {
	file   models.AudioFile
	latest *models.HistoryEntry
}

func (i fileItem) FilterValue() string { return i.file.Name }
func (i fileItem) Title() string       { return i.file.Name }
func (i fileItem) Description() string {
	desc := fmt.Sprintf("%s • %s",
		shared.FormatSize(i.file.Size),
		time.Unix(i.file.Mtime, 0).Format("2006-01-02 15:04"))
	if i.latest != nil {
		desc = fmt.Sprintf("%s • %s, %s", desc, i.latest.RepoID, shared.FormatDuration(i.latest.AudioLength))
	}
	return desc
}

// projectItem wraps [models.Project] to implement [list.Item].
type projectItem struct {
	project models.Project
	active  bool
}

func (i projectItem) FilterValue() string { return i.project.Name }
func (i projectItem) Title() string {
	if i.active {
		return i.project.Name + " (active)"
	}
	return i.project.Name
}
func (i projectItem) Description() string {
	return fmt.Sprintf("%d files", i.project.Count)
}

// favoriteItem wraps [models.Favorite] to implement [list.Item].
type favoriteItem struct {
	favorite models.Favorite
	index    int
}

func (i favoriteItem) FilterValue() string { return i.favorite.Title }
func (i favoriteItem) Title() string {
	title := i.favorite.Title
	if title == "" {
		title = models.DefaultFavoriteTitle
	}
	if i.favorite.Icon != "" {
		title = i.favorite.Icon + " " + title
	}
	return title
}
func (i favoriteItem) Description() string { return i.favorite.Prompt }
