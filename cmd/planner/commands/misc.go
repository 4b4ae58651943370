package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fokusplaner/core/internal/adapters/view"
	"github.com/fokusplaner/core/internal/ports"
)

// NewDashboardCommand creates the dashboard command
func NewDashboardCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show today's statistics and the latest open tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDashboard(a, cmd)
		},
	}
}

func runDashboard(a *app, cmd *cobra.Command) error {
	ctx := cmd.Context()

	stats, err := a.planner.Stats.GetStats(ctx)
	if err != nil {
		return err
	}
	tasks, err := a.planner.Tasks.ListTasks(ctx, ports.TaskFilter{})
	if err != nil {
		return err
	}
	recent, err := a.planner.Tasks.RecentTasks(ctx, 0)
	if err != nil {
		return err
	}
	groups, err := a.planner.Groups.ListGroups(ctx)
	if err != nil {
		return err
	}

	dash := view.NewDashboard(*stats, tasks, recent, groups, a.planner.Store.Now())
	return a.emit(cmd, dash, func() string {
		return a.renderer.Dashboard(dash)
	})
}

// NewStatsCommand creates the stats command
func NewStatsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show focus time, completed tasks and created notes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := a.planner.Stats.GetStats(cmd.Context())
			if err != nil {
				return err
			}
			today, err := a.planner.Stats.TodayStats(cmd.Context())
			if err != nil {
				return err
			}
			return a.emit(cmd, stats, func() string {
				var sb strings.Builder
				fmt.Fprintf(&sb, "Today:    focus %s · completed tasks %d · notes %d\n",
					view.FormatMinutes(today.FocusTime), today.CompletedTasks, today.CreatedNotes)
				fmt.Fprintf(&sb, "All time: focus %s · completed tasks %d · notes %d",
					view.FormatMinutes(stats.TotalFocusTime), stats.CompletedTasks, stats.CreatedNotes)
				return sb.String()
			})
		},
	}
}

// NewSearchCommand creates the search command
func NewSearchCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "search TERM...",
		Short: "Search tasks, notes and the archive",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			results, err := a.planner.Search.Search(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			return a.emit(cmd, results, func() string {
				return a.renderer.Search(results)
			})
		},
	}
}

// NewBackupCommand creates the backup command with subcommands
func NewBackupCommand(a *app) *cobra.Command {
	backupCmd := &cobra.Command{
		Use:   "backup",
		Short: "Write a snapshot of all data into the backup directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := a.planner.Backup.CreateBackup(cmd.Context())
			if err != nil {
				return err
			}
			return a.emit(cmd, map[string]string{"path": path}, func() string {
				return "Backup written to " + path
			})
		},
	}

	var (
		format string
		output string
	)
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Print all data as JSON or YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("failed to create export file: %w", err)
				}
				defer f.Close()
				w = f
			}
			return a.planner.Backup.Export(cmd.Context(), w, ports.BackupFormat(format))
		},
	}
	exportCmd.Flags().StringVarP(&format, "format", "f", string(ports.BackupJSON), "json or yaml")
	exportCmd.Flags().StringVarP(&output, "output", "o", "", "write to this file instead of stdout")
	backupCmd.AddCommand(exportCmd)

	return backupCmd
}

// NewSettingsCommand creates the settings command with subcommands
func NewSettingsCommand(a *app) *cobra.Command {
	settingsCmd := &cobra.Command{
		Use:   "settings",
		Short: "Show the preferences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := a.planner.Settings.GetSettings(cmd.Context())
			if err != nil {
				return err
			}
			return a.emit(cmd, settings, func() string {
				return a.renderer.Settings(*settings)
			})
		},
	}

	var (
		focusTimer, breakDuration, longBreak, autoSaveInterval int
		theme, viewMode                                        string
		notifications, autoArchive, autoSave                   bool
	)
	setCmd := &cobra.Command{
		Use:   "set",
		Short: "Change preferences; only the given flags are applied",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var req ports.UpdateSettingsRequest
			flags := cmd.Flags()
			if flags.Changed("focus-timer") {
				req.FocusTimer = &focusTimer
			}
			if flags.Changed("break") {
				req.BreakDuration = &breakDuration
			}
			if flags.Changed("long-break") {
				req.LongBreakDuration = &longBreak
			}
			if flags.Changed("theme") {
				req.Theme = &theme
			}
			if flags.Changed("view-mode") {
				req.ViewMode = &viewMode
			}
			if flags.Changed("notifications") {
				req.Notifications = &notifications
			}
			if flags.Changed("auto-archive") {
				req.AutoArchive = &autoArchive
			}
			if flags.Changed("auto-save") {
				req.AutoSave = &autoSave
			}
			if flags.Changed("auto-save-interval") {
				req.AutoSaveInterval = &autoSaveInterval
			}

			settings, err := a.planner.Settings.UpdateSettings(cmd.Context(), req)
			if err != nil {
				return err
			}
			return a.emit(cmd, settings, func() string {
				return a.renderer.Settings(*settings)
			})
		},
	}
	setCmd.Flags().IntVar(&focusTimer, "focus-timer", 0, "focus session minutes")
	setCmd.Flags().IntVar(&breakDuration, "break", 0, "short break minutes")
	setCmd.Flags().IntVar(&longBreak, "long-break", 0, "long break minutes")
	setCmd.Flags().StringVar(&theme, "theme", "", "dark or light")
	setCmd.Flags().StringVar(&viewMode, "view-mode", "", "grid, list or kanban")
	setCmd.Flags().BoolVar(&notifications, "notifications", true, "show focus notifications")
	setCmd.Flags().BoolVar(&autoArchive, "auto-archive", false, "archive completed tasks automatically")
	setCmd.Flags().BoolVar(&autoSave, "auto-save", true, "save automatically")
	setCmd.Flags().IntVar(&autoSaveInterval, "auto-save-interval", 0, "auto save interval in milliseconds")
	settingsCmd.AddCommand(setCmd)

	return settingsCmd
}
