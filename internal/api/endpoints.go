package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"drpanel/internal/models"
	"drpanel/internal/shared"
)

// ProjectList is the response of GET /api/projects/list.
type ProjectList struct {
	Projects []models.Project `json:"projects"`
	Active   string           `json:"active"`
}

// FileList is the response of GET /api/files/list.
type FileList struct {
	Project string                `json:"project"`
	Files   []models.AudioFile    `json:"files"`
	History []models.HistoryEntry `json:"history"`
}

type favoritesEnvelope struct {
	Favorites []models.Favorite `json:"favorites"`
}

type modelsEnvelope struct {
	OK     bool               `json:"ok"`
	Models []models.ModelInfo `json:"models"`
	Error  string             `json:"error"`
}

type okEnvelope struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// checkOK surfaces an {ok:false} body that arrived with a 2xx status.
func checkOK(env okEnvelope) error {
	if env.OK || env.Error == "" {
		return nil
	}
	return fmt.Errorf("%w: %s", shared.ErrAPIRequest, env.Error)
}

// GetConfig fetches the server-owned generation defaults.
func (c *Client) GetConfig(ctx context.Context) (*models.Config, error) {
	var cfg models.Config
	if err := c.doJSON(ctx, http.MethodGet, "/api/config", nil, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SaveConfig replaces the server config wholesale and returns the stored copy.
func (c *Client) SaveConfig(ctx context.Context, cfg models.Config) (*models.Config, error) {
	var resp struct {
		okEnvelope
		Config models.Config `json:"config"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/api/config", cfg, &resp); err != nil {
		return nil, err
	}
	if err := checkOK(resp.okEnvelope); err != nil {
		return nil, err
	}
	return &resp.Config, nil
}

// SetActiveProject persists the active project name. The config endpoint
// merges partial bodies server-side, so only the one field is sent.
func (c *Client) SetActiveProject(ctx context.Context, name string) error {
	payload := map[string]string{"active_project": name}
	var resp okEnvelope
	if err := c.doJSON(ctx, http.MethodPost, "/api/config", payload, &resp); err != nil {
		return err
	}
	return checkOK(resp)
}

// ListProjects fetches all projects and the active project name.
func (c *Client) ListProjects(ctx context.Context) (*ProjectList, error) {
	var list ProjectList
	if err := c.doJSON(ctx, http.MethodGet, "/api/projects/list", nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// CreateProject creates a new empty project.
func (c *Client) CreateProject(ctx context.Context, name string) error {
	payload := map[string]string{"name": name}
	var resp okEnvelope
	if err := c.doJSON(ctx, http.MethodPost, "/api/projects/create", payload, &resp); err != nil {
		return err
	}
	return checkOK(resp)
}

// RenameProject renames a project on the server.
func (c *Client) RenameProject(ctx context.Context, oldName, newName string) error {
	payload := map[string]string{"old": oldName, "new": newName}
	var resp okEnvelope
	if err := c.doJSON(ctx, http.MethodPost, "/api/projects/rename", payload, &resp); err != nil {
		return err
	}
	return checkOK(resp)
}

// DeleteProject force-deletes a project and its files.
func (c *Client) DeleteProject(ctx context.Context, name string) error {
	payload := map[string]any{"name": name, "force": true}
	var resp okEnvelope
	if err := c.doJSON(ctx, http.MethodPost, "/api/projects/delete", payload, &resp); err != nil {
		return err
	}
	return checkOK(resp)
}

// ListFiles fetches the files and generation history for a project.
func (c *Client) ListFiles(ctx context.Context, project string) (*FileList, error) {
	path := "/api/files/list?project=" + url.QueryEscape(project)
	var list FileList
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// RenameFile renames a file within a project.
func (c *Client) RenameFile(ctx context.Context, project, src, dst string) error {
	payload := map[string]string{"project": project, "src": src, "dst": dst}
	var resp okEnvelope
	if err := c.doJSON(ctx, http.MethodPost, "/api/files/rename", payload, &resp); err != nil {
		return err
	}
	return checkOK(resp)
}

// DeleteFile deletes a file from a project.
func (c *Client) DeleteFile(ctx context.Context, project, name string) error {
	payload := map[string]string{"project": project, "name": name}
	var resp okEnvelope
	if err := c.doJSON(ctx, http.MethodPost, "/api/files/delete", payload, &resp); err != nil {
		return err
	}
	return checkOK(resp)
}

// ListFavorites fetches the favorites collection in server order.
func (c *Client) ListFavorites(ctx context.Context) ([]models.Favorite, error) {
	var env favoritesEnvelope
	if err := c.doJSON(ctx, http.MethodGet, "/api/favorites", nil, &env); err != nil {
		return nil, err
	}
	return env.Favorites, nil
}

// SaveFavorites replaces the entire favorites collection. There is no patch
// endpoint; every mutation round-trips the whole list.
func (c *Client) SaveFavorites(ctx context.Context, favorites []models.Favorite) error {
	if favorites == nil {
		favorites = []models.Favorite{}
	}
	payload := favoritesEnvelope{Favorites: favorites}
	var resp okEnvelope
	if err := c.doJSON(ctx, http.MethodPost, "/api/favorites", payload, &resp); err != nil {
		return err
	}
	return checkOK(resp)
}

// DeleteFavorite removes a single favorite by its server-visible id.
func (c *Client) DeleteFavorite(ctx context.Context, id string) error {
	path := "/api/favorites/" + url.PathEscape(id)
	var resp okEnvelope
	if err := c.doJSON(ctx, http.MethodDelete, path, nil, &resp); err != nil {
		return err
	}
	return checkOK(resp)
}

// ListModels fetches the discoverable model checkpoints.
func (c *Client) ListModels(ctx context.Context) ([]models.ModelInfo, error) {
	var env modelsEnvelope
	if err := c.doJSON(ctx, http.MethodGet, "/api/models", nil, &env); err != nil {
		return nil, err
	}
	if !env.OK {
		msg := env.Error
		if msg == "" {
			msg = "model discovery failed"
		}
		return nil, fmt.Errorf("%w: %s", shared.ErrAPIRequest, msg)
	}
	return env.Models, nil
}

// PlayURL returns the streaming URL for a file, with both path segments
// URL-encoded.
func (c *Client) PlayURL(project, file string) string {
	return fmt.Sprintf("%s/play/%s/%s", c.baseURL, url.PathEscape(project), url.PathEscape(file))
}

// DownloadURL returns the attachment URL for a file.
func (c *Client) DownloadURL(project, file string) string {
	return fmt.Sprintf("%s/download/%s/%s", c.baseURL, url.PathEscape(project), url.PathEscape(file))
}

// Download streams a file's bytes into w, returning the number of bytes
// written.
func (c *Client) Download(ctx context.Context, project, file string, w io.Writer) (int64, error) {
	path := fmt.Sprintf("/download/%s/%s", url.PathEscape(project), url.PathEscape(file))
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return 0, err
	}

	resp, err := c.longClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return 0, decodeError(resp.StatusCode, body)
	}

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, fmt.Errorf("failed to stream file: %w", err)
	}
	return n, nil
}
