package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"drpanel/internal/api"
	"drpanel/internal/runlog"
	"drpanel/internal/shared"
	"drpanel/internal/stores"
	"drpanel/internal/tasks"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config    *shared.Config
	client    *api.Client
	projects  *stores.ProjectStore
	files     *stores.FileStore
	favorites *stores.FavoriteStore
	panelCfg  *stores.ConfigStore
	modelList *stores.ModelStore
	generator *stores.Generator
	runLog    *runlog.Log
	engine    *tasks.DownloadEngine
	logger    *log.Logger
	output    io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config *shared.Config
	Client *api.Client
	RunLog *runlog.Log
	Logger *log.Logger
	Output io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Client == nil {
		opts.Client = api.NewClient("", nil)
	}

	files := stores.NewFileStore(opts.Client)

	// A typed nil must not become a non-nil RunRecorder interface.
	var recorder stores.RunRecorder
	if opts.RunLog != nil {
		recorder = opts.RunLog
	}

	return &Runner{
		config:    opts.Config,
		client:    opts.Client,
		projects:  stores.NewProjectStore(opts.Client),
		files:     files,
		favorites: stores.NewFavoriteStore(opts.Client),
		panelCfg:  stores.NewConfigStore(opts.Client),
		modelList: stores.NewModelStore(opts.Client),
		generator: stores.NewGenerator(opts.Client, files, recorder, opts.Logger),
		runLog:    opts.RunLog,
		engine:    tasks.NewDownloadEngine(opts.Client),
		logger:    opts.Logger,
		output:    opts.Output,
	}
}

// SetLogger swaps the runner's logger, e.g. to a file logger before the
// interactive panel takes over the terminal.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, projectsCommand, filesCommand, favoritesCommand,
		modelsCommand, configCommand, generateCommand, historyCommand,
		apiCommand, openCommand, panelCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
