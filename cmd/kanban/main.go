package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/fang"
	"github.com/google/uuid"
	"github.com/hylla/kanban/internal/adapters/storage/sqlite"
	"github.com/hylla/kanban/internal/app"
	"github.com/hylla/kanban/internal/config"
	"github.com/hylla/kanban/internal/platform"
	"github.com/hylla/kanban/internal/tui"
	"github.com/spf13/cobra"
)

// version is overridden at build time.
var version = "dev"

// program is the slice of tea.Program that run drives.
type program interface {
	Run() (tea.Model, error)
}

// programFactory builds the TUI program. Tests replace it to avoid a terminal.
var programFactory = func(m tea.Model) program {
	return tea.NewProgram(m)
}

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		os.Exit(1)
	}
}

// run executes one CLI invocation through fang, which prints styled errors to stderr.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	root := newRootCommand(stdout, stderr)
	root.SetArgs(args)
	return fang.Execute(ctx, root, fang.WithVersion(version))
}

// cliOptions holds flag values shared by the root command and its subcommands.
type cliOptions struct {
	configPath string
	dbPath     string
	appName    string
	devMode    bool
}

// newRootCommand wires the kanban command tree.
func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}

	opts := &cliOptions{appName: platform.DefaultAppName, devMode: version == "dev"}
	if envDev, ok := parseBoolEnv("KANBAN_DEV_MODE"); ok {
		opts.devMode = envDev
	}
	if envApp := strings.TrimSpace(os.Getenv("KANBAN_APP_NAME")); envApp != "" {
		opts.appName = envApp
	}

	root := &cobra.Command{
		Use:           "kanban",
		Short:         "Terminal kanban board",
		Long:          "A three-column kanban board for the terminal, stored in a local SQLite file.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBoard(cmd.Context(), opts, stderr)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "path to config TOML")
	flags.StringVar(&opts.dbPath, "db", "", "path to sqlite database")
	flags.StringVar(&opts.appName, "app", opts.appName, "application name for config/data path resolution")
	flags.BoolVar(&opts.devMode, "dev", opts.devMode, "use dev mode paths (<app>-dev)")

	root.AddCommand(&cobra.Command{
		Use:   "paths",
		Short: "Print resolved config and data paths",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return printPaths(stdout, opts)
		},
	})
	return root
}

// printPaths writes the resolved runtime paths.
func printPaths(stdout io.Writer, opts *cliOptions) error {
	paths, err := platform.DefaultPathsWithOptions(platform.Options{
		AppName: opts.appName,
		DevMode: opts.devMode,
	})
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(stdout, "app: %s\n", opts.appName)
	_, _ = fmt.Fprintf(stdout, "dev_mode: %t\n", opts.devMode)
	_, _ = fmt.Fprintf(stdout, "config: %s\n", paths.ConfigPath)
	_, _ = fmt.Fprintf(stdout, "data_dir: %s\n", paths.DataDir)
	_, _ = fmt.Fprintf(stdout, "db: %s\n", paths.DBPath)
	return nil
}

// resolvedConfig is the outcome of flag, env and file resolution.
type resolvedConfig struct {
	cfg        config.Config
	configPath string
	paths      platform.Paths
}

// resolveConfig applies flag > env > platform default for the config and database paths,
// then loads the config file.
func resolveConfig(opts *cliOptions) (resolvedConfig, error) {
	paths, err := platform.DefaultPathsWithOptions(platform.Options{
		AppName: opts.appName,
		DevMode: opts.devMode,
	})
	if err != nil {
		return resolvedConfig{}, err
	}

	configPath := strings.TrimSpace(opts.configPath)
	if configPath == "" {
		if envPath := strings.TrimSpace(os.Getenv("KANBAN_CONFIG")); envPath != "" {
			configPath = envPath
		} else {
			configPath = paths.ConfigPath
		}
	}
	dbPath := strings.TrimSpace(opts.dbPath)
	dbOverridden := dbPath != ""
	if !dbOverridden {
		if envPath := strings.TrimSpace(os.Getenv("KANBAN_DB_PATH")); envPath != "" {
			dbPath = envPath
			dbOverridden = true
		} else {
			dbPath = paths.DBPath
		}
	}

	cfg, err := config.Load(configPath, config.Default(dbPath))
	if err != nil {
		return resolvedConfig{}, fmt.Errorf("load config %q: %w", configPath, err)
	}
	if dbOverridden {
		cfg.Database.Path = dbPath
	}
	return resolvedConfig{cfg: cfg, configPath: configPath, paths: paths}, nil
}

// runBoard opens the store and runs the interactive board until the user quits.
func runBoard(ctx context.Context, opts *cliOptions, stderr io.Writer) error {
	resolved, err := resolveConfig(opts)
	if err != nil {
		return err
	}
	cfg := resolved.cfg
	if err := config.EnsureConfigDir(resolved.configPath); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	logger, err := newRuntimeLogger(stderr, opts.appName, opts.devMode, cfg.Logging, time.Now)
	if err != nil {
		return fmt.Errorf("configure runtime logger: %w", err)
	}
	defer func() {
		if closeErr := logger.Close(); closeErr != nil && logger.shouldLogToSink(logger.consoleSink) {
			_, _ = fmt.Fprintf(stderr, "warning: close runtime log sink: %v\n", closeErr)
		}
	}()

	logger.Info("startup configuration resolved", "app", opts.appName, "dev_mode", opts.devMode)
	logger.Debug("runtime paths resolved", "config_path", resolved.configPath, "data_dir", resolved.paths.DataDir, "db_path", cfg.Database.Path)
	if devPath := logger.DevLogPath(); devPath != "" {
		logger.Info("dev file logging enabled", "path", devPath)
	}

	logger.Info("opening sqlite repository", "db_path", cfg.Database.Path)
	repo, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		logger.Error("sqlite open failed", "db_path", cfg.Database.Path, "err", err)
		return fmt.Errorf("open sqlite repository: %w", err)
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			logger.Warn("sqlite close failed", "db_path", cfg.Database.Path, "err", closeErr)
		}
	}()

	svc := app.NewService(repo, uuid.NewString, nil, app.ServiceConfig{
		BoardOrder: cfg.BoardOrder(),
	})
	count, err := svc.CountTasks(ctx)
	if err != nil {
		logger.Warn("task count failed", "err", err)
	}
	categories, err := svc.ListCategories(ctx)
	if err != nil {
		logger.Warn("category list failed", "err", err)
	}
	logger.Info("sqlite repository ready", "db_path", cfg.Database.Path, "tasks", count, "categories", len(categories))

	m := tui.NewModel(svc, tuiOptions(cfg, logger)...)

	// Runtime logs stay in the dev-file sink while the board owns the terminal.
	logger.SetConsoleEnabled(false)
	logger.Info("starting tui program loop", "board_order", svc.BoardOrder())
	if _, err := programFactory(m).Run(); err != nil {
		logger.Error("tui program terminated with error", "err", err)
		return fmt.Errorf("run tui program: %w", err)
	}
	logger.Info("tui program loop complete")
	return nil
}

// tuiOptions maps persisted config values onto model options.
func tuiOptions(cfg config.Config, logger tui.Logger) []tui.Option {
	return []tui.Option{
		tui.WithBoardConfig(tui.BoardConfig{
			ShowCategories:  cfg.Board.ShowCategories,
			ShowBodyPreview: cfg.Board.ShowBodyPreview,
		}),
		tui.WithConfirmDelete(cfg.UI.ConfirmDelete),
		tui.WithKeyConfig(tui.KeyConfig{
			AddTask:     cfg.Keys.AddTask,
			EditTask:    cfg.Keys.EditTask,
			DeleteTask:  cfg.Keys.DeleteTask,
			PromoteTask: cfg.Keys.PromoteTask,
			RegressTask: cfg.Keys.RegressTask,
			YankTitle:   cfg.Keys.YankTitle,
		}),
		tui.WithLogger(logger),
	}
}

// parseBoolEnv reads a boolean environment variable. ok is false when unset or unparsable.
func parseBoolEnv(name string) (bool, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}
