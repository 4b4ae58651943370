package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fokusplaner/core/internal/adapters/view"
	"github.com/fokusplaner/core/internal/ports"
)

// NewArchiveCommand creates the archive command with subcommands
func NewArchiveCommand(a *app) *cobra.Command {
	archiveCmd := &cobra.Command{
		Use:   "archive",
		Short: "Archived tasks and notes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			archive, err := a.planner.Archive.GetArchive(cmd.Context())
			if err != nil {
				return err
			}
			return a.emit(cmd, archive, func() string {
				return a.renderer.Archive(view.ArchiveView(*archive))
			})
		},
	}

	archiveCmd.AddCommand(&cobra.Command{
		Use:   "restore KIND ID",
		Short: "Restore an archived task or note (KIND is task or note)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.planner.Archive.RestoreItem(cmd.Context(), ports.ArchiveKind(args[0]), args[1]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Item restored.")
			return nil
		},
	})
	archiveCmd.AddCommand(&cobra.Command{
		Use:   "rm KIND ID",
		Short: "Delete an archived item permanently",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.planner.Archive.DeleteItem(a.context(cmd), ports.ArchiveKind(args[0]), args[1]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Item deleted.")
			return nil
		},
	})
	archiveCmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Delete every archived item",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.planner.Archive.ClearArchive(a.context(cmd)); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Archive cleared.")
			return nil
		},
	})

	return archiveCmd
}
