package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"home-cli/internal/archive"
	"home-cli/internal/tasks"

	"github.com/spf13/cobra"
)

// reloadingSweeper re-reads storage before each sweep so edits made by
// other processes (the TUI, other CLI calls) are not overwritten.
type reloadingSweeper struct {
	st *tasks.Store
}

func (r reloadingSweeper) ArchiveDue(now time.Time) int {
	r.st.Reload()
	return r.st.ArchiveDue(now)
}

func newSweepCmd(app *App) *cobra.Command {
	var watch bool
	var at string
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Archive checked tasks whose grace period has passed",
		Long: strings.TrimSpace(`
Runs one archival sweep and prints how many tasks moved.

With --watch it keeps sweeping on the configured archive_interval until
interrupted, which is what the TUI does internally.
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, _, port, err := app.openTasks(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer port.Close()

			if !watch {
				now := app.now()
				if strings.TrimSpace(at) != "" {
					t, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(at))
					if err != nil {
						return writeErr(cmd, err)
					}
					now = t
				}
				n := st.ArchiveDue(now)
				if err := saveErr(cmd, st); err != nil {
					return err
				}
				l := st.State()
				meta := map[string]any{"active": len(l.Active), "archivedTotal": len(l.Archived)}
				if next, ok := archive.NextDue(l); ok {
					meta["nextDue"] = next.UTC().Format(time.RFC3339Nano)
				}
				return writeOut(cmd, app, map[string]any{
					"data": map[string]any{"archived": n},
					"meta": meta,
				})
			}

			if interval <= 0 {
				cfg, err := app.config()
				if err != nil {
					return writeErr(cmd, err)
				}
				interval = cfg.Interval()
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger := app.logger(cmd)
			logger.Info("sweeping", "interval", interval, "db", port.Path())
			s := &archive.Scheduler{
				Sweeper:  reloadingSweeper{st: st},
				Interval: interval,
				Now:      app.now,
				Log:      logger,
			}
			if err := s.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return writeErr(cmd, err)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&watch, "watch", false, "Keep sweeping until interrupted")
	cmd.Flags().StringVar(&at, "at", "", "Sweep as if the time were this RFC3339 timestamp")
	cmd.Flags().DurationVar(&interval, "interval", 0, "Sweep interval for --watch (default: archive_interval from config)")
	_ = cmd.Flags().MarkHidden("at")
	return cmd
}
