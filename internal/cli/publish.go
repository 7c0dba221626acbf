package cli

import (
	"fmt"
	"strings"

	"home-cli/internal/publish"

	"github.com/spf13/cobra"
)

func newTasksPublishCmd(app *App) *cobra.Command {
	var out string
	var title string
	var includeArchived bool
	var render bool
	var width int
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Render the checklist as Markdown",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, _, port, err := app.openTasks(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer port.Close()

			md := publish.Markdown(st.State(), publish.RenderOptions{
				Title:           title,
				IncludeArchived: includeArchived,
			})

			out = strings.TrimSpace(out)
			if out != "" {
				if err := publish.WriteFile(out, md, overwrite); err != nil {
					return writeErr(cmd, err)
				}
				return writeOut(cmd, app, map[string]any{"data": map[string]any{"written": []string{out}}})
			}
			if render {
				md = publish.Render(md, width, "")
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), md)
			return err
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write Markdown to this file instead of stdout")
	cmd.Flags().StringVar(&title, "title", "", "Document title (default: Tasks)")
	cmd.Flags().BoolVar(&includeArchived, "include-archived", false, "Append the archive")
	cmd.Flags().BoolVar(&render, "render", false, "Style the Markdown for the terminal")
	cmd.Flags().IntVar(&width, "width", 80, "Wrap width for --render")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite an existing --out file")
	return cmd
}
