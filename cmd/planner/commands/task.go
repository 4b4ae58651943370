package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/fokusplaner/core/internal/adapters/view"
	"github.com/fokusplaner/core/internal/domain/entities"
	"github.com/fokusplaner/core/internal/ports"
)

const dueLayout = "2006-01-02"

// NewTaskCommand creates the task command with subcommands
func NewTaskCommand(a *app) *cobra.Command {
	taskCmd := &cobra.Command{
		Use:     "task",
		Aliases: []string{"tasks", "t"},
		Short:   "Task management commands",
	}

	taskCmd.AddCommand(newTaskAddCommand(a))
	taskCmd.AddCommand(newTaskListCommand(a))
	taskCmd.AddCommand(newTaskEditCommand(a))
	taskCmd.AddCommand(&cobra.Command{
		Use:   "recent",
		Short: "Show the latest open tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks, err := a.planner.Tasks.RecentTasks(cmd.Context(), 0)
			if err != nil {
				return err
			}
			return a.emitTasks(cmd, tasks)
		},
	})
	taskCmd.AddCommand(&cobra.Command{
		Use:   "show ID",
		Short: "Show a task with its subtasks and notes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			task, err := a.planner.Tasks.GetTask(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.emitTask(cmd, task)
		},
	})

	taskCmd.AddCommand(a.taskAction("done ID", "Mark a task as completed", func(ctx context.Context, id string) (*entities.Task, error) {
		return a.planner.Tasks.CompleteTask(ctx, id)
	}))
	taskCmd.AddCommand(a.taskAction("undone ID", "Reopen a completed task", func(ctx context.Context, id string) (*entities.Task, error) {
		return a.planner.Tasks.UncompleteTask(ctx, id)
	}))
	taskCmd.AddCommand(a.taskAction("dup ID", "Duplicate a task", func(ctx context.Context, id string) (*entities.Task, error) {
		return a.planner.Tasks.DuplicateTask(ctx, id)
	}))

	taskCmd.AddCommand(&cobra.Command{
		Use:     "rm ID",
		Aliases: []string{"delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.planner.Tasks.DeleteTask(a.context(cmd), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Task deleted.")
			return nil
		},
	})
	taskCmd.AddCommand(&cobra.Command{
		Use:   "archive ID",
		Short: "Move a task to the archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.planner.Tasks.ArchiveTask(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Task archived.")
			return nil
		},
	})

	taskCmd.AddCommand(newSubtaskCommand(a))
	taskCmd.AddCommand(newTaskNoteCommand(a))

	return taskCmd
}

func (a *app) taskAction(use, short string, fn func(ctx context.Context, id string) (*entities.Task, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			task, err := fn(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.emitTask(cmd, task)
		},
	}
}

func newTaskAddCommand(a *app) *cobra.Command {
	var (
		req      ports.CreateTaskRequest
		priority string
		due      string
		subtasks []string
	)

	cmd := &cobra.Command{
		Use:   "add TITLE...",
		Short: "Create a new task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Title = strings.Join(args, " ")
			req.Priority = entities.Priority(priority)

			dueDate, err := parseDue(due)
			if err != nil {
				return err
			}
			req.DueDate = dueDate

			for _, text := range subtasks {
				req.Subtasks = append(req.Subtasks, entities.Subtask{Text: text})
			}

			task, err := a.planner.Tasks.CreateTask(cmd.Context(), req)
			if err != nil {
				return err
			}
			return a.emitTask(cmd, task)
		},
	}

	cmd.Flags().StringVarP(&req.Description, "desc", "d", "", "task description")
	cmd.Flags().StringVarP(&req.GroupID, "group", "g", "", "group ID (default group when empty)")
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "priority (low, medium, high)")
	cmd.Flags().StringSliceVarP(&req.Tags, "tag", "t", nil, "tags, repeatable or comma separated")
	cmd.Flags().StringVar(&due, "due", "", "due date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&req.EstimatedTime, "estimate", 0, "estimated minutes")
	cmd.Flags().StringArrayVarP(&subtasks, "subtask", "s", nil, "subtask text, repeatable")

	return cmd
}

func newTaskListCommand(a *app) *cobra.Command {
	var (
		filter   ports.TaskFilter
		priority string
		done     bool
		open     bool
		layout   string
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tasks",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			filter.Priority = entities.Priority(priority)
			switch {
			case done && open:
				return fmt.Errorf("--done and --open exclude each other")
			case done:
				filter.Completed = &done
			case open:
				completed := false
				filter.Completed = &completed
			}

			tasks, err := a.planner.Tasks.ListTasks(ctx, filter)
			if err != nil {
				return err
			}
			if a.opts.json {
				return writeJSON(cmd.OutOrStdout(), tasks)
			}

			if layout == "" {
				settings, err := a.planner.Settings.GetSettings(ctx)
				if err != nil {
					return err
				}
				layout = settings.ViewMode
			}
			groups, err := a.planner.Groups.ListGroups(ctx)
			if err != nil {
				return err
			}

			now := a.planner.Store.Now()
			var out string
			switch layout {
			case "grid":
				out = a.renderer.TaskCards(view.TaskCards(tasks, groups, now))
			case "list":
				out = a.renderer.GroupedList(view.GroupedList(tasks, groups, now))
			case "kanban":
				out = a.renderer.Kanban(view.Kanban(tasks, groups, now))
			default:
				return fmt.Errorf("unknown view %q", layout)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
			return err
		},
	}

	cmd.Flags().StringVar(&filter.Search, "search", "", "search in title, description and tags")
	cmd.Flags().StringVarP(&filter.GroupID, "group", "g", "", "only tasks of this group")
	cmd.Flags().StringVarP(&filter.Tag, "tag", "t", "", "only tasks with this tag")
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "only tasks with this priority")
	cmd.Flags().BoolVar(&done, "done", false, "only completed tasks")
	cmd.Flags().BoolVar(&open, "open", false, "only open tasks")
	cmd.Flags().StringVar(&layout, "view", "", "layout (grid, list, kanban); defaults to the view mode setting")

	return cmd
}

func newTaskEditCommand(a *app) *cobra.Command {
	var (
		title, desc, group, priority, due string
		tags                              []string
		estimate, actual                  int
	)

	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Change task fields; only the given flags are applied",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var req ports.UpdateTaskRequest
			flags := cmd.Flags()
			if flags.Changed("title") {
				req.Title = &title
			}
			if flags.Changed("desc") {
				req.Description = &desc
			}
			if flags.Changed("group") {
				req.GroupID = &group
			}
			if flags.Changed("priority") {
				p := entities.Priority(priority)
				req.Priority = &p
			}
			if flags.Changed("tag") {
				req.Tags = &tags
			}
			if flags.Changed("due") {
				dueDate, err := parseDue(due)
				if err != nil {
					return err
				}
				req.DueDate = dueDate
			}
			if flags.Changed("estimate") {
				req.EstimatedTime = &estimate
			}
			if flags.Changed("actual") {
				req.ActualTime = &actual
			}

			task, err := a.planner.Tasks.UpdateTask(cmd.Context(), args[0], req)
			if err != nil {
				return err
			}
			return a.emitTask(cmd, task)
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVarP(&desc, "desc", "d", "", "new description")
	cmd.Flags().StringVarP(&group, "group", "g", "", "move to group ID")
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "new priority")
	cmd.Flags().StringSliceVarP(&tags, "tag", "t", nil, "replace the tags")
	cmd.Flags().StringVar(&due, "due", "", "new due date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&estimate, "estimate", 0, "estimated minutes")
	cmd.Flags().IntVar(&actual, "actual", 0, "minutes spent")

	return cmd
}

func newSubtaskCommand(a *app) *cobra.Command {
	subCmd := &cobra.Command{
		Use:     "sub",
		Aliases: []string{"subtask"},
		Short:   "Subtask commands",
	}

	subCmd.AddCommand(&cobra.Command{
		Use:   "add TASK_ID TEXT...",
		Short: "Append a subtask",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			subtask, err := a.planner.Tasks.AddSubtask(cmd.Context(), args[0], strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			return a.emit(cmd, subtask, func() string { return "Subtask added: " + subtask.ID })
		},
	})
	subCmd.AddCommand(&cobra.Command{
		Use:   "edit TASK_ID SUBTASK_ID TEXT...",
		Short: "Change the text of a subtask",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			task, err := a.planner.Tasks.UpdateSubtaskText(cmd.Context(), args[0], args[1], strings.Join(args[2:], " "))
			if err != nil {
				return err
			}
			return a.emitTask(cmd, task)
		},
	})
	subCmd.AddCommand(&cobra.Command{
		Use:   "toggle TASK_ID SUBTASK_ID",
		Short: "Check or uncheck a subtask",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			task, err := a.planner.Tasks.ToggleSubtask(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return a.emitTask(cmd, task)
		},
	})
	subCmd.AddCommand(&cobra.Command{
		Use:   "rm TASK_ID SUBTASK_ID",
		Short: "Remove a subtask",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			task, err := a.planner.Tasks.DeleteSubtask(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return a.emitTask(cmd, task)
		},
	})

	return subCmd
}

func newTaskNoteCommand(a *app) *cobra.Command {
	noteCmd := &cobra.Command{
		Use:   "note",
		Short: "Notes attached to a task",
	}

	noteCmd.AddCommand(&cobra.Command{
		Use:   "add TASK_ID TEXT...",
		Short: "Add a note to a task",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			note, err := a.planner.Tasks.AddTaskNote(cmd.Context(), args[0], strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			return a.emit(cmd, note, func() string { return "Note added: " + note.ID })
		},
	})
	noteCmd.AddCommand(&cobra.Command{
		Use:   "edit TASK_ID NOTE_ID TEXT...",
		Short: "Change the text of a task note",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			task, err := a.planner.Tasks.UpdateTaskNote(cmd.Context(), args[0], args[1], strings.Join(args[2:], " "))
			if err != nil {
				return err
			}
			return a.emitTask(cmd, task)
		},
	})
	noteCmd.AddCommand(&cobra.Command{
		Use:   "important TASK_ID NOTE_ID",
		Short: "Toggle the important flag of a task note",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			task, err := a.planner.Tasks.ToggleTaskNoteImportant(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return a.emitTask(cmd, task)
		},
	})
	noteCmd.AddCommand(&cobra.Command{
		Use:   "rm TASK_ID NOTE_ID",
		Short: "Remove a task note",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			task, err := a.planner.Tasks.DeleteTaskNote(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return a.emitTask(cmd, task)
		},
	})

	return noteCmd
}

func (a *app) emitTask(cmd *cobra.Command, task *entities.Task) error {
	return a.emit(cmd, task, func() string {
		groups, _ := a.planner.Groups.ListGroups(cmd.Context())
		return a.renderer.TaskDetail(*task, view.NewTaskCard(*task, groups, a.planner.Store.Now()))
	})
}

func (a *app) emitTasks(cmd *cobra.Command, tasks []entities.Task) error {
	return a.emit(cmd, tasks, func() string {
		groups, _ := a.planner.Groups.ListGroups(cmd.Context())
		return a.renderer.TaskCards(view.TaskCards(tasks, groups, a.planner.Store.Now()))
	})
}

// parseDue reads a local calendar date; empty means no due date
func parseDue(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	due, err := time.ParseInLocation(dueLayout, raw, time.Local)
	if err != nil {
		return nil, fmt.Errorf("invalid due date %q, expected YYYY-MM-DD", raw)
	}
	return &due, nil
}
