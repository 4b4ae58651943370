package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fokusplaner/core/internal/adapters/view"
	"github.com/fokusplaner/core/internal/domain/entities"
	"github.com/fokusplaner/core/internal/ports"
)

// NewNoteCommand creates the note command with subcommands
func NewNoteCommand(a *app) *cobra.Command {
	noteCmd := &cobra.Command{
		Use:     "note",
		Aliases: []string{"notes", "n"},
		Short:   "Note management commands",
	}

	var createReq ports.CreateNoteRequest
	addCmd := &cobra.Command{
		Use:   "add CONTENT...",
		Short: "Create a note; the title is derived from the content when empty",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			createReq.Content = strings.Join(args, " ")
			note, err := a.planner.Notes.CreateNote(cmd.Context(), createReq)
			if err != nil {
				return err
			}
			return a.emitNote(cmd, note)
		},
	}
	addCmd.Flags().StringVar(&createReq.Title, "title", "", "note title")
	addCmd.Flags().StringSliceVarP(&createReq.Tags, "tag", "t", nil, "tags, repeatable or comma separated")
	noteCmd.AddCommand(addCmd)

	var (
		filter ports.NoteFilter
		pinned bool
	)
	listCmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List notes, pinned first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if pinned {
				filter.Pinned = &pinned
			}
			notes, err := a.planner.Notes.ListNotes(cmd.Context(), filter)
			if err != nil {
				return err
			}
			return a.emit(cmd, notes, func() string {
				return a.renderer.Notes(view.NoteCards(notes))
			})
		},
	}
	listCmd.Flags().StringVar(&filter.Search, "search", "", "search in title, content and tags")
	listCmd.Flags().StringVarP(&filter.Tag, "tag", "t", "", "only notes with this tag")
	listCmd.Flags().BoolVar(&pinned, "pinned", false, "only pinned notes")
	noteCmd.AddCommand(listCmd)

	noteCmd.AddCommand(&cobra.Command{
		Use:   "show ID",
		Short: "Show a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			note, err := a.planner.Notes.GetNote(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.emit(cmd, note, func() string {
				return fmt.Sprintf("%s\n\n%s", note.Title, note.Content)
			})
		},
	})

	var (
		title, content string
		tags           []string
	)
	editCmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Change note fields; only the given flags are applied",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var req ports.UpdateNoteRequest
			if cmd.Flags().Changed("title") {
				req.Title = &title
			}
			if cmd.Flags().Changed("content") {
				req.Content = &content
			}
			if cmd.Flags().Changed("tag") {
				req.Tags = &tags
			}
			note, err := a.planner.Notes.UpdateNote(cmd.Context(), args[0], req)
			if err != nil {
				return err
			}
			return a.emitNote(cmd, note)
		},
	}
	editCmd.Flags().StringVar(&title, "title", "", "new title; empty derives it from the content")
	editCmd.Flags().StringVar(&content, "content", "", "new content")
	editCmd.Flags().StringSliceVarP(&tags, "tag", "t", nil, "replace the tags")
	noteCmd.AddCommand(editCmd)

	noteCmd.AddCommand(&cobra.Command{
		Use:     "rm ID",
		Aliases: []string{"delete"},
		Short:   "Delete a note",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.planner.Notes.DeleteNote(a.context(cmd), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Note deleted.")
			return nil
		},
	})
	noteCmd.AddCommand(&cobra.Command{
		Use:   "pin ID",
		Short: "Pin or unpin a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			note, err := a.planner.Notes.TogglePin(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.emitNote(cmd, note)
		},
	})
	noteCmd.AddCommand(&cobra.Command{
		Use:   "archive ID",
		Short: "Move a note to the archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.planner.Notes.ArchiveNote(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Note archived.")
			return nil
		},
	})

	var group string
	convertCmd := &cobra.Command{
		Use:   "convert ID",
		Short: "Turn a note into a task and archive the note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			task, err := a.planner.Notes.ConvertToTask(cmd.Context(), args[0], group)
			if err != nil {
				return err
			}
			return a.emitTask(cmd, task)
		},
	}
	convertCmd.Flags().StringVarP(&group, "group", "g", "", "group of the new task")
	noteCmd.AddCommand(convertCmd)

	return noteCmd
}

func (a *app) emitNote(cmd *cobra.Command, note *entities.Note) error {
	return a.emit(cmd, note, func() string {
		return a.renderer.Notes([]view.NoteCard{view.NewNoteCard(*note)})
	})
}
