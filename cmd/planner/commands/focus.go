package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/fokusplaner/core/internal/adapters/terminal"
	"github.com/fokusplaner/core/internal/adapters/view"
	"github.com/fokusplaner/core/internal/domain/entities"
	"github.com/fokusplaner/core/internal/ports"
)

// NewFocusCommand creates the focus command with subcommands
func NewFocusCommand(a *app) *cobra.Command {
	focusCmd := &cobra.Command{
		Use:     "focus",
		Aliases: []string{"f"},
		Short:   "Focus timer commands",
	}

	var (
		plain bool
		notes []string
	)
	startCmd := &cobra.Command{
		Use:   "start TASK_ID",
		Short: "Run a focus session for a task",
		Long: `Run a focus session for a task. The session lives as long as the command;
space pauses and resumes, s or q stops and books the elapsed minutes.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := a.context(cmd)
			task, err := a.planner.Tasks.GetTask(ctx, args[0])
			if err != nil {
				return err
			}
			session, err := a.planner.Focus.Start(ctx, task.ID)
			if err != nil {
				return err
			}
			for _, text := range notes {
				if _, err := a.planner.Focus.AddNote(ctx, text); err != nil {
					return err
				}
			}

			var result *ports.FocusResult
			if plain || a.opts.json {
				result, err = a.runPlainFocus(cmd, task)
			} else {
				result, err = a.runFocusUI(cmd, task, session)
			}
			if err != nil {
				return err
			}
			return a.emit(cmd, result, func() string {
				if result == nil {
					return "Focus session ended."
				}
				if result.State == entities.FocusCompleted {
					return fmt.Sprintf("Focus session completed! %s booked on %q.", view.FormatMinutes(result.ElapsedMinutes), task.Title)
				}
				return fmt.Sprintf("Focus session stopped. %s booked on %q.", view.FormatMinutes(result.ElapsedMinutes), task.Title)
			})
		},
	}
	startCmd.Flags().BoolVar(&plain, "plain", false, "print the countdown instead of the interactive timer")
	startCmd.Flags().StringArrayVar(&notes, "note", nil, "session note, repeatable")
	focusCmd.AddCommand(startCmd)

	focusCmd.AddCommand(&cobra.Command{
		Use:       "break [short|long]",
		Short:     "Take a break and wait until it is over",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{string(ports.BreakShort), string(ports.BreakLong)},
		RunE: func(cmd *cobra.Command, args []string) error {
			kind := ports.BreakShort
			if len(args) == 1 {
				kind = ports.BreakKind(args[0])
			}
			ctx := cmd.Context()
			d, err := a.planner.Focus.StartBreak(ctx, kind)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s break started. Take a rest!\n", view.FormatMinutes(int(d.Minutes())))

			select {
			case <-ctx.Done():
				return nil
			case <-time.After(d):
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Break is over! Ready for the next session?")
			return nil
		},
	})

	return focusCmd
}

func (a *app) runFocusUI(cmd *cobra.Command, task *entities.Task, session *entities.FocusSession) (*ports.FocusResult, error) {
	ctx := cmd.Context()
	model := terminal.NewFocusModel(ctx, a.planner.Focus, a.renderer, task, session, a.cfg.Focus.TickInterval, a.cfg.Focus.DefaultMinutes)

	program := tea.NewProgram(model,
		tea.WithContext(ctx),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.OutOrStdout()),
	)
	final, err := program.Run()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return nil, fmt.Errorf("focus timer failed: %w", err)
	}

	fm, ok := final.(terminal.FocusModel)
	if !ok || fm.Result() == nil {
		return a.stopFocus(), nil
	}
	if fm.Err() != nil {
		return fm.Result(), fm.Err()
	}
	return fm.Result(), nil
}

// runPlainFocus ticks the session and prints the remaining time every
// minute until it completes or the command is interrupted.
func (a *app) runPlainFocus(cmd *cobra.Command, task *entities.Task) (*ports.FocusResult, error) {
	ctx := cmd.Context()
	ticker := time.NewTicker(a.cfg.Focus.TickInterval)
	defer ticker.Stop()

	if !a.opts.json {
		fmt.Fprintf(cmd.OutOrStdout(), "Focusing on %q. Press Ctrl+C to stop.\n", task.Title)
	}
	for {
		select {
		case <-ctx.Done():
			return a.stopFocus(), nil
		case <-ticker.C:
			res, err := a.planner.Focus.Tick(ctx)
			if err != nil {
				return nil, err
			}
			switch res.State {
			case entities.FocusCompleted:
				return res, nil
			case entities.FocusIdle:
				return nil, nil
			}
			if !a.opts.json && res.Session.RemainingMs%time.Minute.Milliseconds() == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "%s remaining\n", view.FormatRemaining(res.Session.RemainingMs))
			}
		}
	}
}

// stopFocus ends a session left running when the timer exits early
func (a *app) stopFocus() *ports.FocusResult {
	res, err := a.planner.Focus.Stop(context.Background())
	if err != nil {
		return nil
	}
	return res
}
