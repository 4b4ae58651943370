package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fokusplaner/core/internal/domain/entities"
	"github.com/fokusplaner/core/internal/ports"
)

// NewGroupCommand creates the group command with subcommands
func NewGroupCommand(a *app) *cobra.Command {
	groupCmd := &cobra.Command{
		Use:     "group",
		Aliases: []string{"groups", "g"},
		Short:   "Group management commands",
	}

	var color string
	addCmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Create a group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			group, err := a.planner.Groups.CreateGroup(cmd.Context(), ports.CreateGroupRequest{Name: args[0], Color: color})
			if err != nil {
				return err
			}
			return a.emit(cmd, group, func() string {
				return fmt.Sprintf("Group %q created: %s", group.Name, group.ID)
			})
		},
	}
	addCmd.Flags().StringVarP(&color, "color", "c", "", "hex color such as #4a9eff")
	groupCmd.AddCommand(addCmd)

	groupCmd.AddCommand(&cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List groups with their open task counts",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.emitGroups(cmd, nil)
		},
	})

	var name, newColor string
	editCmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Rename or recolor a group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var req ports.UpdateGroupRequest
			if cmd.Flags().Changed("name") {
				req.Name = &name
			}
			if cmd.Flags().Changed("color") {
				req.Color = &newColor
			}
			group, err := a.planner.Groups.UpdateGroup(cmd.Context(), args[0], req)
			if err != nil {
				return err
			}
			return a.emit(cmd, group, func() string {
				return fmt.Sprintf("Group %q updated.", group.Name)
			})
		},
	}
	editCmd.Flags().StringVar(&name, "name", "", "new name")
	editCmd.Flags().StringVarP(&newColor, "color", "c", "", "new hex color")
	groupCmd.AddCommand(editCmd)

	groupCmd.AddCommand(&cobra.Command{
		Use:     "rm ID",
		Aliases: []string{"delete"},
		Short:   "Delete a group; its tasks move to the default group",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.planner.Groups.DeleteGroup(a.context(cmd), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Group deleted.")
			return nil
		},
	})
	groupCmd.AddCommand(&cobra.Command{
		Use:   "order ID...",
		Short: "Set the display order; unlisted groups follow",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			groups, err := a.planner.Groups.ReorderGroups(cmd.Context(), args)
			if err != nil {
				return err
			}
			return a.emitGroups(cmd, groups)
		},
	})
	groupCmd.AddCommand(&cobra.Command{
		Use:   "reset-order",
		Short: "Order groups by name with the default group first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			groups, err := a.planner.Groups.ResetGroupOrder(cmd.Context())
			if err != nil {
				return err
			}
			return a.emitGroups(cmd, groups)
		},
	})

	return groupCmd
}

// emitGroups prints groups, listing them first when nil
func (a *app) emitGroups(cmd *cobra.Command, groups []entities.Group) error {
	ctx := cmd.Context()
	if groups == nil {
		var err error
		if groups, err = a.planner.Groups.ListGroups(ctx); err != nil {
			return err
		}
	}
	counts, err := a.planner.Groups.TaskCounts(ctx)
	if err != nil {
		return err
	}
	return a.emit(cmd, groups, func() string {
		return a.renderer.Groups(groups, counts)
	})
}
