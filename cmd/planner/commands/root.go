package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	httpHandlers "github.com/fokusplaner/core/internal/adapters/http"
	"github.com/fokusplaner/core/internal/adapters/storage"
	"github.com/fokusplaner/core/internal/adapters/terminal"
	"github.com/fokusplaner/core/internal/application/services"
	"github.com/fokusplaner/core/internal/infrastructure/config"
	"github.com/fokusplaner/core/internal/infrastructure/logger"
	"github.com/fokusplaner/core/internal/infrastructure/metrics"
	"github.com/fokusplaner/core/internal/ports"
)

// Version is set at build time
var Version = "dev"

const skipSetup = "skip-setup"

type rootOptions struct {
	configFile string
	yes        bool
	json       bool
}

// app holds everything a command needs once the configuration is loaded
type app struct {
	opts rootOptions

	cfg      *config.Config
	log      *logger.Logger
	metrics  *metrics.Metrics
	storage  ports.Storage
	planner  *services.Planner
	feed     *httpHandlers.NotificationFeed
	renderer *terminal.Renderer
}

// NewRootCommand creates the planner command tree
func NewRootCommand() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "planner",
		Short:         "FokusPlaner task and notes planner",
		Long:          `FokusPlaner keeps tasks, notes and groups in local JSON files and runs focus sessions against tasks.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Annotations[skipSetup] == "true" {
				return nil
			}
			return a.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDashboard(a, cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.opts.configFile, "config", "", "config file (yaml, json or toml)")
	flags.BoolVarP(&a.opts.yes, "yes", "y", false, "answer yes to every confirmation")
	flags.BoolVar(&a.opts.json, "json", false, "print JSON instead of formatted text")
	flags.String("data-dir", "", "directory of the JSON data files")
	flags.String("backend", "", "storage backend (file, memory, redis, sql)")
	flags.String("log-level", "", "log level (debug, info, warn, error)")

	// Add commands
	rootCmd.AddCommand(NewServeCommand(a))
	rootCmd.AddCommand(NewTaskCommand(a))
	rootCmd.AddCommand(NewNoteCommand(a))
	rootCmd.AddCommand(NewGroupCommand(a))
	rootCmd.AddCommand(NewFocusCommand(a))
	rootCmd.AddCommand(NewArchiveCommand(a))
	rootCmd.AddCommand(NewStatsCommand(a))
	rootCmd.AddCommand(NewSearchCommand(a))
	rootCmd.AddCommand(NewBackupCommand(a))
	rootCmd.AddCommand(NewSettingsCommand(a))
	rootCmd.AddCommand(NewDashboardCommand(a))
	rootCmd.AddCommand(NewVersionCommand())

	return rootCmd
}

func (a *app) setup(cmd *cobra.Command) error {
	ctx := cmd.Context()

	cfg, err := config.Load(a.opts.configFile, cmd.Flags())
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	a.cfg = cfg

	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.log = appLogger

	if cfg.Metrics.Enabled {
		a.metrics = metrics.New(cfg.Metrics.Namespace)
	}

	st, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to open %s storage: %w", cfg.Storage.Backend, err)
	}
	a.storage = st

	a.feed = httpHandlers.NewNotificationFeed(cfg.Server.NotificationHistory, services.LogNotifier(appLogger))
	a.planner = services.NewPlanner(st, appLogger, services.Options{
		ArchiveCompletedAfter: cfg.Tasks.ArchiveCompletedAfter,
		RecentLimit:           cfg.Tasks.RecentLimit,
		BackupDir:             cfg.Storage.BackupDir,
		BackupWriter:          storage.WriteJSONFile,
		TickInterval:          cfg.Focus.TickInterval,
		DefaultFocusMinutes:   cfg.Focus.DefaultMinutes,
		Notifier:              a.feed,
		Metrics:               a.metrics,
	})
	if err := a.planner.Load(ctx); err != nil {
		return fmt.Errorf("failed to load data: %w", err)
	}

	settings, err := a.planner.Settings.GetSettings(ctx)
	if err != nil {
		return err
	}
	a.renderer = terminal.NewRenderer(terminal.NewStyles(terminal.ThemeByName(settings.Theme)))

	appLogger.Debugw("Planner ready", "backend", cfg.Storage.Backend, "location", st.Info().Location)
	return nil
}

func (a *app) close() error {
	var err error
	if a.planner != nil {
		err = a.planner.Close()
		a.planner = nil
	}
	if a.log != nil {
		_ = a.log.Close()
	}
	return err
}

// context returns the command context with the confirmer of this run
func (a *app) context(cmd *cobra.Command) context.Context {
	var c ports.Confirmer = ports.StaticConfirmer(true)
	if !a.opts.yes {
		c = newPromptConfirmer(cmd.InOrStdin(), cmd.ErrOrStderr())
	}
	return ports.WithConfirmer(cmd.Context(), c)
}

// emit prints v as JSON with --json and the rendered text otherwise
func (a *app) emit(cmd *cobra.Command, v interface{}, render func() string) error {
	out := cmd.OutOrStdout()
	if a.opts.json {
		return writeJSON(out, v)
	}
	_, err := fmt.Fprintln(out, render())
	return err
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print FokusPlaner version",
		Annotations: map[string]string{skipSetup: "true"},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "FokusPlaner %s\n", Version)
		},
	}
}
