package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"drpanel/internal/formatter"
	"drpanel/internal/models"
	"drpanel/internal/shared"
	"drpanel/internal/tasks"
)

// loadFiles resolves the target project and loads its file cache. An empty
// project falls back to the server's active project.
func (r *Runner) loadFiles(ctx context.Context, project string) (string, error) {
	if project == "" {
		if err := r.projects.Load(ctx); err != nil {
			return "", fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
		}
		project = r.projects.Active()
	}

	if err := r.files.Load(ctx, project); err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	return project, nil
}

// FilesList lists a project's files newest first.
func (r *Runner) FilesList(ctx context.Context, cmd *cli.Command) error {
	format := cmd.String("format")

	project, err := r.loadFiles(ctx, cmd.String("project"))
	if err != nil {
		return err
	}

	latest := models.LatestByFile(r.files.History())
	data, err := formatter.RenderFiles(format, project, r.files.Files(), latest)
	if err != nil {
		return err
	}

	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// FilesRename renames a file within its project.
func (r *Runner) FilesRename(ctx context.Context, cmd *cli.Command) error {
	src := cmd.StringArg("src")
	dst := cmd.StringArg("dst")
	if src == "" || dst == "" {
		return fmt.Errorf("%w: source and destination names", shared.ErrMissingArgument)
	}

	if _, err := r.loadFiles(ctx, cmd.String("project")); err != nil {
		return err
	}

	r.logger.Info("renaming file", "from", src, "to", dst)

	if err := r.files.Rename(ctx, src, dst); err != nil {
		return err
	}

	return r.writePlain("✓ Renamed %q to %q\n", src, dst)
}

// FilesDelete deletes a single file.
func (r *Runner) FilesDelete(ctx context.Context, cmd *cli.Command) error {
	name := cmd.StringArg("name")
	if name == "" {
		return fmt.Errorf("%w: file name", shared.ErrMissingArgument)
	}

	if _, err := r.loadFiles(ctx, cmd.String("project")); err != nil {
		return err
	}

	r.logger.Info("deleting file", "name", name)

	if err := r.files.Delete(ctx, name); err != nil {
		return err
	}

	return r.writePlain("✓ Deleted %q\n", name)
}

// FilesDownload downloads one file, or every file in the project with --all.
func (r *Runner) FilesDownload(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("all") {
		return r.filesDownloadAll(ctx, cmd)
	}

	name := cmd.StringArg("name")
	if name == "" {
		return fmt.Errorf("%w: file name (or --all)", shared.ErrMissingArgument)
	}

	project, err := r.loadFiles(ctx, cmd.String("project"))
	if err != nil {
		return err
	}

	outPath := cmd.String("output")
	if outPath == "" {
		outPath = filepath.Base(name)
	}

	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	written, err := r.client.Download(ctx, project, name, f)
	closeErr := f.Close()
	if err != nil {
		os.Remove(outPath)
		return fmt.Errorf("download failed: %w", err)
	}
	if closeErr != nil {
		os.Remove(outPath)
		return fmt.Errorf("failed to close output file: %w", closeErr)
	}

	r.logger.Info("downloaded file", "project", project, "name", name, "bytes", written)
	return r.writePlain("✓ Downloaded %s (%s)\n", outPath, shared.FormatSize(written))
}

// filesDownloadAll runs a bulk export of the whole project through the
// download engine, echoing progress lines as they arrive.
func (r *Runner) filesDownloadAll(ctx context.Context, cmd *cli.Command) error {
	project, err := r.loadFiles(ctx, cmd.String("project"))
	if err != nil {
		return err
	}

	files := r.files.Files()
	if len(files) == 0 {
		return r.writePlain("No files in project %q\n", project)
	}

	names := make([]string, 0, len(files))
	for _, file := range files {
		names = append(names, file.Name)
	}

	prog := make(chan tasks.ProgressUpdate, len(names)*3+1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range prog {
			r.writePlain("%s\n", update.Message)
		}
	}()

	result, err := r.engine.BulkDownload(ctx, prog, project, names, tasks.BulkDownloadOpts{
		OutputDir:  cmd.String("output"),
		NumWorkers: cmd.Int("workers"),
		RateLimit:  cmd.Float("rate"),
	})
	close(prog)
	<-done

	if err != nil {
		return err
	}

	r.writePlain("\n✓ Downloaded %d/%d files to %s\n", result.Downloaded, result.TotalFiles, result.OutputDirectory)
	if result.Failed > 0 {
		r.writePlain("✗ %d files failed; see %s\n", result.Failed, result.ManifestPath)
	}
	return nil
}

// FilesPlay opens a file's streaming URL in the default browser.
func (r *Runner) FilesPlay(ctx context.Context, cmd *cli.Command) error {
	name := cmd.StringArg("name")
	if name == "" {
		return fmt.Errorf("%w: file name", shared.ErrMissingArgument)
	}

	if _, err := r.loadFiles(ctx, cmd.String("project")); err != nil {
		return err
	}

	url := r.files.PlayURL(name)
	if err := shared.OpenBrowser(url); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}

	return r.writePlain("✓ Opened %s\n", url)
}
