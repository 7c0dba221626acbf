package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

func newArchiveCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Browse, restore and delete archived tasks",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List archived tasks, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, _, port, err := app.openTasks(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer port.Close()

			arch := st.Archived()
			return writeOut(cmd, app, map[string]any{"data": arch, "meta": map[string]any{"count": len(arch)}})
		},
	}

	restoreCmd := &cobra.Command{
		Use:   "restore <task-id>",
		Short: "Move an archived task back to the top of the active list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, _, port, err := app.openTasks(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer port.Close()

			id := strings.TrimSpace(args[0])
			if !st.RestoreTask(id) {
				return writeErr(cmd, errNotFound("archived task", id))
			}
			if err := saveErr(cmd, st); err != nil {
				return err
			}
			return writeOut(cmd, app, map[string]any{"data": st.State().Active[0]})
		},
	}

	rmCmd := &cobra.Command{
		Use:     "rm <task-id>",
		Aliases: []string{"delete"},
		Short:   "Delete an archived task for good",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, _, port, err := app.openTasks(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer port.Close()

			id := strings.TrimSpace(args[0])
			if !st.DeleteArchived(id) {
				return writeErr(cmd, errNotFound("archived task", id))
			}
			if err := saveErr(cmd, st); err != nil {
				return err
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"deleted": id}})
		},
	}

	var yes bool
	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every archived task (requires --yes)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return writeErr(cmd, errNeedsConfirm)
			}
			st, _, port, err := app.openTasks(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer port.Close()

			n := st.ClearArchived()
			if err := saveErr(cmd, st); err != nil {
				return err
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"cleared": n}})
		},
	}
	clearCmd.Flags().BoolVar(&yes, "yes", false, "Confirm clearing the archive")

	cmd.AddCommand(listCmd, restoreCmd, rmCmd, clearCmd)
	return cmd
}
