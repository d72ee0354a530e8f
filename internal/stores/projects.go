package stores

import (
	"context"
	"fmt"
	"strings"

	"drpanel/internal/api"
	"drpanel/internal/models"
	"drpanel/internal/shared"
)

// ProjectStore caches the project list and the active project name.
type ProjectStore struct {
	guard
	client *api.Client

	projects []models.Project
	active   string
}

// NewProjectStore creates a project store starting on the Default project.
func NewProjectStore(client *api.Client) *ProjectStore {
	return &ProjectStore{client: client, active: models.DefaultProject}
}

// Projects returns a copy of the cached project list.
func (s *ProjectStore) Projects() []models.Project {
	var out []models.Project
	s.read(func() { out = append(out, s.projects...) })
	return out
}

// Active returns the cached active project name.
func (s *ProjectStore) Active() string {
	var out string
	s.read(func() { out = s.active })
	return out
}

// Load fetches the project list and replaces the cache. The active name
// comes from the server response, falling back to the previous local value
// when the server omits it.
func (s *ProjectStore) Load(ctx context.Context) error {
	token := s.next()

	list, err := s.client.ListProjects(ctx)
	if err != nil {
		return err
	}

	s.apply(token, func() {
		s.projects = list.Projects
		if list.Active != "" {
			s.active = list.Active
		}
	})
	return nil
}

// Select makes name the active project, persisting it to the server config.
// A no-op when name is already active; returns whether anything changed so
// the caller knows to reload dependent files.
func (s *ProjectStore) Select(ctx context.Context, name string) (bool, error) {
	if s.Active() == name {
		return false, nil
	}

	if err := s.client.SetActiveProject(ctx, name); err != nil {
		return false, err
	}

	token := s.next()
	s.apply(token, func() { s.active = name })
	return true, nil
}

// Create creates a project and refetches the list.
func (s *ProjectStore) Create(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: project name is required", shared.ErrInvalidInput)
	}

	if err := s.client.CreateProject(ctx, name); err != nil {
		return err
	}
	return s.Load(ctx)
}

// Rename renames a project and refetches the list. The Default project is
// rejected before any request is sent; an empty or unchanged new name is a
// silent no-op.
func (s *ProjectStore) Rename(ctx context.Context, oldName, newName string) error {
	if models.IsProtectedProject(oldName) {
		return fmt.Errorf("%w: it cannot be renamed", shared.ErrProtectedProject)
	}

	newName = strings.TrimSpace(newName)
	if newName == "" || newName == oldName {
		return nil
	}

	if err := s.client.RenameProject(ctx, oldName, newName); err != nil {
		return err
	}
	return s.Load(ctx)
}

// Delete force-deletes a project and refetches the list. The Default project
// is rejected before any request is sent. Confirmation is the caller's
// responsibility.
func (s *ProjectStore) Delete(ctx context.Context, name string) error {
	if models.IsProtectedProject(name) {
		return fmt.Errorf("%w: it cannot be deleted", shared.ErrProtectedProject)
	}

	if err := s.client.DeleteProject(ctx, name); err != nil {
		return err
	}
	return s.Load(ctx)
}
