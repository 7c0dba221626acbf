package cli

import (
	"strings"

	"home-cli/internal/model"
	"home-cli/internal/tasks"

	"github.com/spf13/cobra"
)

func newTasksCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tasks",
		Aliases: []string{"task", "t"},
		Short:   "List and edit active tasks",
	}
	cmd.AddCommand(newTasksListCmd(app))
	cmd.AddCommand(newTasksAddCmd(app))
	cmd.AddCommand(newTasksEditCmd(app))
	cmd.AddCommand(newTasksCheckCmd(app, "check", true))
	cmd.AddCommand(newTasksCheckCmd(app, "uncheck", false))
	cmd.AddCommand(newTasksRmCmd(app))
	cmd.AddCommand(newTasksPublishCmd(app))
	return cmd
}

func listMeta(l model.TaskList, res tasks.LoadResult) map[string]any {
	meta := map[string]any{
		"active":   len(l.Active),
		"archived": len(l.Archived),
		"load":     res.Status.String(),
	}
	if len(res.Repairs) > 0 {
		meta["repairs"] = res.Repairs
	}
	return meta
}

func newTasksListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List active tasks in order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, res, port, err := app.openTasks(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer port.Close()

			l := st.State()
			return writeOut(cmd, app, map[string]any{"data": l.Active, "meta": listMeta(l, res)})
		},
	}
}

func newTasksAddCmd(app *App) *cobra.Command {
	var afterID string
	var text string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Insert a task after --after (default: at the end)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, _, port, err := app.openTasks(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer port.Close()

			afterID = strings.TrimSpace(afterID)
			if afterID != "" && st.State().IndexOf(afterID) < 0 {
				return writeErr(cmd, errNotFound("task", afterID))
			}
			id := st.CreateTask(afterID)
			if text != "" {
				st.SetText(id, text)
			}
			if err := saveErr(cmd, st); err != nil {
				return err
			}
			l := st.State()
			return writeOut(cmd, app, map[string]any{"data": l.Active[l.IndexOf(id)]})
		},
	}
	cmd.Flags().StringVar(&afterID, "after", "", "Insert after this task id")
	cmd.Flags().StringVar(&text, "text", "", "Task text")
	return cmd
}

func newTasksEditCmd(app *App) *cobra.Command {
	var text string

	cmd := &cobra.Command{
		Use:   "edit <task-id>",
		Short: "Replace a task's text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, _, port, err := app.openTasks(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer port.Close()

			id := strings.TrimSpace(args[0])
			if !st.SetText(id, text) {
				return writeErr(cmd, errNotFound("task", id))
			}
			if err := saveErr(cmd, st); err != nil {
				return err
			}
			l := st.State()
			return writeOut(cmd, app, map[string]any{"data": l.Active[l.IndexOf(id)]})
		},
	}
	cmd.Flags().StringVar(&text, "text", "", "New text")
	_ = cmd.MarkFlagRequired("text")
	return cmd
}

func newTasksCheckCmd(app *App, use string, checked bool) *cobra.Command {
	short := "Check a task; it is archived once the grace period has passed"
	if !checked {
		short = "Uncheck a task, cancelling its pending archive"
	}
	return &cobra.Command{
		Use:   use + " <task-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, _, port, err := app.openTasks(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer port.Close()

			id := strings.TrimSpace(args[0])
			if !st.SetChecked(id, checked) {
				return writeErr(cmd, errNotFound("task", id))
			}
			if err := saveErr(cmd, st); err != nil {
				return err
			}
			l := st.State()
			return writeOut(cmd, app, map[string]any{
				"data":   l.Active[l.IndexOf(id)],
				"_hints": checkHints(checked),
			})
		},
	}
}

func checkHints(checked bool) []string {
	if !checked {
		return []string{}
	}
	return []string{"home sweep --watch", "home tasks uncheck <task-id>"}
}

func newTasksRmCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <task-id>",
		Aliases: []string{"delete"},
		Short:   "Delete an active task (the last one can't be deleted)",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, _, port, err := app.openTasks(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer port.Close()

			id := strings.TrimSpace(args[0])
			l := st.State()
			if l.IndexOf(id) < 0 {
				return writeErr(cmd, errNotFound("task", id))
			}
			focusID, ok := st.DeleteTask(id)
			if !ok {
				return writeErr(cmd, errLastTask)
			}
			if err := saveErr(cmd, st); err != nil {
				return err
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{"deleted": id, "focus": focusID},
			})
		},
	}
}
