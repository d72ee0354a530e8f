package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"drpanel/internal/formatter"
	"drpanel/internal/shared"
)

// ProjectsList lists every project along with which one is active.
func (r *Runner) ProjectsList(ctx context.Context, cmd *cli.Command) error {
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	if err := r.projects.Load(ctx); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	projects := r.projects.Projects()
	active := r.projects.Active()

	if useJSON {
		return r.writeJSON(map[string]any{"projects": projects, "active": active}, pretty)
	}

	if _, err := r.output.Write(formatter.ProjectsToText(projects, active)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// ProjectsCreate creates a new project on the server.
func (r *Runner) ProjectsCreate(ctx context.Context, cmd *cli.Command) error {
	name := cmd.StringArg("name")
	if name == "" {
		return fmt.Errorf("%w: project name", shared.ErrMissingArgument)
	}

	r.logger.Info("creating project", "name", name)

	if err := r.projects.Create(ctx, name); err != nil {
		return err
	}

	return r.writePlain("✓ Created project %q\n", name)
}

// ProjectsSelect switches the server's active project.
func (r *Runner) ProjectsSelect(ctx context.Context, cmd *cli.Command) error {
	name := cmd.StringArg("name")
	if name == "" {
		return fmt.Errorf("%w: project name", shared.ErrMissingArgument)
	}

	changed, err := r.projects.Select(ctx, name)
	if err != nil {
		return err
	}

	if !changed {
		return r.writePlain("%q is already the active project\n", name)
	}
	return r.writePlain("✓ Active project is now %q\n", name)
}

// ProjectsRename renames a project. The Default project is rejected locally
// before any request reaches the server.
func (r *Runner) ProjectsRename(ctx context.Context, cmd *cli.Command) error {
	oldName := cmd.StringArg("old")
	newName := cmd.StringArg("new")
	if oldName == "" || newName == "" {
		return fmt.Errorf("%w: old and new project names", shared.ErrMissingArgument)
	}

	r.logger.Info("renaming project", "from", oldName, "to", newName)

	if err := r.projects.Rename(ctx, oldName, newName); err != nil {
		return err
	}

	return r.writePlain("✓ Renamed project %q to %q\n", oldName, newName)
}

// ProjectsDelete deletes a project and everything in it.
func (r *Runner) ProjectsDelete(ctx context.Context, cmd *cli.Command) error {
	name := cmd.StringArg("name")
	if name == "" {
		return fmt.Errorf("%w: project name", shared.ErrMissingArgument)
	}

	r.logger.Info("deleting project", "name", name)

	if err := r.projects.Delete(ctx, name); err != nil {
		return err
	}

	return r.writePlain("✓ Deleted project %q\n", name)
}
