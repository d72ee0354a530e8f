// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// formatFlag is shared by every listing command that renders through the
// formatter package.
func formatFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   "Output format (json, csv, markdown, txt)",
		Value:   "json",
	}
}

func projectFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "project",
		Aliases: []string{"p"},
		Usage:   "Project name (default: the server's active project)",
	}
}

// projectsCommand handles project operations
func projectsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "projects",
		Aliases: []string{"proj"},
		Usage:   "Manage projects on the panel server",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List projects with file counts",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.ProjectsList,
			},
			{
				Name:  "create",
				Usage: "Create a new project",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "name"},
				},
				Action: r.ProjectsCreate,
			},
			{
				Name:  "select",
				Usage: "Make a project the active one",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "name"},
				},
				Action: r.ProjectsSelect,
			},
			{
				Name:  "rename",
				Usage: "Rename a project",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "old"},
					&cli.StringArg{Name: "new"},
				},
				Action: r.ProjectsRename,
			},
			{
				Name:  "delete",
				Usage: "Delete a project and its files",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "name"},
				},
				Action: r.ProjectsDelete,
			},
		},
	}
}

// filesCommand handles generated file operations
func filesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "files",
		Usage: "Manage generated audio files",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List files in a project, newest first",
				Flags: []cli.Flag{
					projectFlag(),
					formatFlag(),
				},
				Action: r.FilesList,
			},
			{
				Name:  "rename",
				Usage: "Rename a file within its project",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "src"},
					&cli.StringArg{Name: "dst"},
				},
				Flags: []cli.Flag{
					projectFlag(),
				},
				Action: r.FilesRename,
			},
			{
				Name:  "delete",
				Usage: "Delete a file",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "name"},
				},
				Flags: []cli.Flag{
					projectFlag(),
				},
				Action: r.FilesDelete,
			},
			{
				Name:  "download",
				Usage: "Download one file, or a whole project with --all",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "name"},
				},
				Flags: []cli.Flag{
					projectFlag(),
					&cli.BoolFlag{
						Name:  "all",
						Usage: "Download every file in the project",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file, or output directory with --all",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent download workers with --all",
						Value: 5,
					},
					&cli.FloatFlag{
						Name:  "rate",
						Usage: "Request rate limit per second with --all",
						Value: 5,
					},
				},
				Action: r.FilesDownload,
			},
			{
				Name:  "play",
				Usage: "Open a file's streaming URL in the browser",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "name"},
				},
				Flags: []cli.Flag{
					projectFlag(),
				},
				Action: r.FilesPlay,
			},
		},
	}
}

// favoritesCommand handles favorite prompt operations
func favoritesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "favorites",
		Aliases: []string{"fav"},
		Usage:   "Manage favorite prompts",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List saved favorites",
				Flags: []cli.Flag{
					formatFlag(),
				},
				Action: r.FavoritesList,
			},
			{
				Name:  "add",
				Usage: "Save a new favorite prompt",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "title",
						Aliases:  []string{"t"},
						Usage:    "Display title",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "prompt",
						Usage:    "Style prompt text",
						Required: true,
					},
				},
				Action: r.FavoritesAdd,
			},
			{
				Name:  "delete",
				Usage: "Delete a favorite by its list position",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "index"},
				},
				Action: r.FavoritesDelete,
			},
		},
	}
}

// modelsCommand lists discoverable model checkpoints
func modelsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "models",
		Usage:  "List model checkpoints known to the server",
		Action: r.ModelsList,
	}
}

// configCommand reads and writes the server-side generation defaults
func configCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Server-side generation defaults",
		Commands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Show the current defaults",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.ConfigShow,
			},
			{
				Name:  "set",
				Usage: "Update defaults; unset flags keep their current value",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "repo",
						Usage: "Model repository ID",
					},
					&cli.IntFlag{
						Name:  "length",
						Usage: "Audio length in seconds",
					},
					&cli.IntFlag{
						Name:  "steps",
						Usage: "Diffusion steps",
					},
					&cli.FloatFlag{
						Name:  "cfg",
						Usage: "Classifier-free guidance strength",
					},
					&cli.IntFlag{
						Name:  "batch",
						Usage: "Batch inference count",
					},
					&cli.BoolFlag{
						Name:  "chunked",
						Usage: "Use chunked decoding",
					},
					&cli.StringFlag{
						Name:  "cuda",
						Usage: "CUDA_VISIBLE_DEVICES value",
					},
				},
				Action: r.ConfigSet,
			},
		},
	}
}

// generateCommand submits a generation job and waits for the result
func generateCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "generate",
		Aliases: []string{"gen"},
		Usage:   "Generate audio and wait for the result",
		Flags: []cli.Flag{
			projectFlag(),
			&cli.StringFlag{
				Name:  "prompt",
				Usage: "Style prompt to condition on",
			},
			&cli.StringFlag{
				Name:  "audio",
				Usage: "Local reference audio file to upload",
			},
			&cli.StringFlag{
				Name:  "audio-existing",
				Usage: "Name of a project file to use as the reference",
			},
			&cli.StringFlag{
				Name:  "lyrics",
				Usage: "Local LRC lyrics file to upload",
			},
			&cli.StringFlag{
				Name:  "preset",
				Usage: "Quality preset (fast, balanced, high); overrides steps and cfg",
			},
			&cli.StringFlag{
				Name:  "repo",
				Usage: "Model repository ID (default: server config)",
			},
			&cli.IntFlag{
				Name:  "length",
				Usage: "Audio length in seconds (default: server config)",
			},
			&cli.IntFlag{
				Name:  "steps",
				Usage: "Diffusion steps (default: server config)",
			},
			&cli.FloatFlag{
				Name:  "cfg",
				Usage: "Classifier-free guidance strength (default: server config)",
			},
			&cli.IntFlag{
				Name:  "batch",
				Usage: "Batch inference count (default: server config)",
			},
			&cli.BoolFlag{
				Name:  "chunked",
				Usage: "Use chunked decoding",
			},
			&cli.StringFlag{
				Name:  "cuda",
				Usage: "CUDA_VISIBLE_DEVICES value for this run",
			},
			&cli.BoolFlag{
				Name:  "logs",
				Usage: "Print server logs after the run",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Use the JSON endpoint; attachments are sent base64-encoded",
			},
		},
		Action: r.Generate,
	}
}

// historyCommand reads the local run log
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Show locally recorded generation runs",
		Flags: []cli.Flag{
			projectFlag(),
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "Maximum number of runs to show",
				Value:   20,
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
				Value: true,
			},
		},
		Action: r.History,
	}
}

// apiCommand handles direct panel server calls
func apiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Direct API calls to the panel server",
		Commands: []*cli.Command{
			{
				Name:  "get",
				Usage: "Direct GET to the panel server, prints raw JSON",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
						Value: true,
					},
				},
				Action: r.APIGet,
			},
			{
				Name:  "post",
				Usage: "Direct POST with JSON body",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "data",
						Aliases:  []string{"d"},
						Usage:    "JSON body to send",
						Required: true,
					},
				},
				Action: r.APIPost,
			},
		},
	}
}

// setupCommand handles local setup operations
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "database",
				Usage: "Initialize the run-log database and run migrations",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupDatabase,
			},
			{
				Name:  "config",
				Usage: "Write a config.toml template to the current directory",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Destination path",
						Value:   "config.toml",
					},
				},
				Action: r.SetupConfig,
			},
		},
	}
}

// openCommand opens the server's own web UI
func openCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "open",
		Usage:  "Open the panel server's web UI in the browser",
		Action: r.Open,
	}
}

// panelCommand returns the top-level command for the interactive panel.
func panelCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "panel",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive control panel",
		Action:  r.Panel,
	}
}
