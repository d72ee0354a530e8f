package stores

import (
	"context"
	"strings"

	"drpanel/internal/api"
	"drpanel/internal/models"
)

// FileStore caches the files and generation history of one project at a
// time.
type FileStore struct {
	guard
	client *api.Client

	project string
	files   []models.AudioFile
	history []models.HistoryEntry
	latest  map[string]models.HistoryEntry
}

// NewFileStore creates a file store scoped to the Default project until the
// first Load.
func NewFileStore(client *api.Client) *FileStore {
	return &FileStore{client: client, project: models.DefaultProject}
}

// Project returns the project the cache currently describes.
func (s *FileStore) Project() string {
	var out string
	s.read(func() { out = s.project })
	return out
}

// Files returns a copy of the cached files, newest first.
func (s *FileStore) Files() []models.AudioFile {
	var out []models.AudioFile
	s.read(func() { out = append(out, s.files...) })
	return out
}

// History returns a copy of the cached history entries.
func (s *FileStore) History() []models.HistoryEntry {
	var out []models.HistoryEntry
	s.read(func() { out = append(out, s.history...) })
	return out
}

// LatestFor returns the most recent history entry for a file, if any.
func (s *FileStore) LatestFor(name string) (models.HistoryEntry, bool) {
	var entry models.HistoryEntry
	var ok bool
	s.read(func() { entry, ok = s.latest[name] })
	return entry, ok
}

// Load fetches files and history for the project, replacing both caches.
// Files are kept sorted newest first and the latest-wins history join is
// recomputed.
func (s *FileStore) Load(ctx context.Context, project string) error {
	token := s.next()

	list, err := s.client.ListFiles(ctx, project)
	if err != nil {
		return err
	}

	files := append([]models.AudioFile(nil), list.Files...)
	models.SortFilesByMtime(files)

	s.apply(token, func() {
		s.project = project
		s.files = files
		s.history = list.History
		s.latest = models.LatestByFile(list.History)
	})
	return nil
}

// Reload refetches the current project.
func (s *FileStore) Reload(ctx context.Context) error {
	return s.Load(ctx, s.Project())
}

// Rename renames a file and reloads. An empty or unchanged destination is a
// silent no-op.
func (s *FileStore) Rename(ctx context.Context, src, dst string) error {
	dst = strings.TrimSpace(dst)
	if dst == "" || dst == src {
		return nil
	}

	project := s.Project()
	if err := s.client.RenameFile(ctx, project, src, dst); err != nil {
		return err
	}
	return s.Load(ctx, project)
}

// Delete deletes a file and reloads. Confirmation is the caller's
// responsibility.
func (s *FileStore) Delete(ctx context.Context, name string) error {
	project := s.Project()
	if err := s.client.DeleteFile(ctx, project, name); err != nil {
		return err
	}
	return s.Load(ctx, project)
}

// PlayURL returns the streaming URL for a cached file.
func (s *FileStore) PlayURL(name string) string {
	return s.client.PlayURL(s.Project(), name)
}

// DownloadURL returns the attachment URL for a cached file.
func (s *FileStore) DownloadURL(name string) string {
	return s.client.DownloadURL(s.Project(), name)
}
