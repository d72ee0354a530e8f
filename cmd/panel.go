package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"drpanel/internal/shared"
	"drpanel/internal/ui"
)

// Panel launches the interactive terminal panel.
func (r *Runner) Panel(ctx context.Context, cmd *cli.Command) error {
	if r.client == nil {
		return fmt.Errorf("%w: API client not initialized", shared.ErrServiceUnavailable)
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	logPath := r.config.Log.File
	if logPath == "" {
		logPath = "./tmp/drpanel.log"
	}
	fileLogger, err := shared.NewFileLogger(logPath)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)
	r.generator.SetLogger(fileLogger)

	model := ui.NewModel(ctx, ui.Deps{
		Client:    r.client,
		Projects:  r.projects,
		Files:     r.files,
		Favorites: r.favorites,
		Config:    r.panelCfg,
		Models:    r.modelList,
		Generator: r.generator,
		Engine:    r.engine,
		Logger:    fileLogger,
	})
	p := tea.NewProgram(model, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running panel: %w", err)
	}

	return nil
}
