package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"drpanel/internal/api"
	"drpanel/internal/runlog"
	"drpanel/internal/shared"
)

// openRunLog opens the local run-log database. Recording is best effort, so
// any failure downgrades to a nil log rather than aborting the command.
func openRunLog(config *shared.Config, logger *log.Logger) *runlog.Log {
	if config.Database.Path == "" {
		return nil
	}

	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		logger.Warn("run log unavailable", "path", config.Database.Path, "error", err)
		return nil
	}

	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		logger.Warn("run log migrations failed", "error", err)
		db.Close()
		return nil
	}

	return runlog.New(db)
}

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		} else {
			logger.Warn("failed to load config.toml, using defaults", "error", err)
		}
	}

	httpClient := &http.Client{
		Timeout: time.Duration(config.Server.TimeoutSeconds) * time.Second,
	}
	client := api.NewClient(config.Server.URL, httpClient)

	if config.Server.HeadersFile != "" {
		if headers, err := shared.ParseCurlFile(config.Server.HeadersFile); err == nil {
			client.SetProxyHeaders(headers)
		} else {
			logger.Warn("failed to parse headers file", "path", config.Server.HeadersFile, "error", err)
		}
	}

	runner := NewRunner(RunnerOpts{
		Config: config,
		Client: client,
		RunLog: openRunLog(config, logger),
		Logger: logger,
	})

	app := &cli.Command{
		Name:     "drpanel",
		Usage:    "Control panel for a DiffRhythm generation server",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		err_ := errors.Unwrap(err)
		if errors.Is(err_, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		} else {
			logger.Fatalf("application error: %v", err)
		}
	}
}
