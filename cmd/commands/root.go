package commands

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/dohr-michael/todolist/internal/config"
)

// NewRootCommand returns the top-level CLI command.
func NewRootCommand() *cli.Command {
	return &cli.Command{
		Name:  "todolist",
		Usage: "A single-user task list served as one web page",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file (.jsonc or .yaml)",
				Value:   config.ConfigPath(),
			},
			&cli.StringFlag{
				Name:  "data",
				Usage: "Path to the task file (overrides store.path)",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
			},
		},
		Commands: []*cli.Command{
			NewServeCommand(),
			NewTasksCommand(),
		},
		DefaultCommand: "serve",
	}
}

// loadConfig reads the config named by --config, falling back to defaults,
// applies --data, and installs the logger.
func loadConfig(cmd *cli.Command) *config.Config {
	configPath := cmd.String("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			slog.Warn("config not loaded, using defaults", "path", configPath, "error", err)
		}
		cfg = config.Default()
	}

	if cmd.IsSet("data") {
		cfg.Store.Path = cmd.String("data")
	}

	level := cfg.Log.SlogLevel()
	if cmd.Bool("debug") {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	return cfg
}
