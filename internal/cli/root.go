package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"home-cli/internal/format"
	"home-cli/internal/logging"
	"home-cli/internal/store"
	"home-cli/internal/tasks"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

type App struct {
	Dir        string
	PrettyJSON bool
	Format     string

	// Now and NewID are swapped out by tests.
	Now   func() time.Time
	NewID func() string

	cfg *store.Config
	log *log.Logger

	// openStore defaults to store.OpenSQLite.
	openStore func(ctx context.Context, dir string, logger *log.Logger) (kvStore, error)
}

// kvStore is an opened Port plus the lifecycle the commands need.
type kvStore interface {
	store.Port
	store.PrefixReplacer
	Path() string
	Close() error
}

func NewRootCmd() *cobra.Command {
	return newRootCmd(&App{})
}

func newRootCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "home",
		Short:        "Keyboard checklist with auto-archive, plus settings export/import",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive checklist
  home

  # Scriptable commands
  home tasks add --text "Walk dog"
  home tasks check <task-id>
  home sweep

  # Move settings between machines (or to/from the browser start page)
  home settings export -o settings.txt
  home settings import settings.txt --yes
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if len(args) == 0 {
				return runTUI(cmd, app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if !format.Valid(app.Format) {
			return writeErr(cmd, fmt.Errorf("unknown format: %s (want one of %s)", app.Format, strings.Join(format.Names, ", ")))
		}
		return nil
	}

	cmd.PersistentFlags().StringVar(&app.Dir, "dir", envOr("HOME_DIR", ""), "Data dir holding home.sqlite (overrides data_dir in config)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("HOME_FORMAT", "json"), "Output format (json|edn|yaml)")

	cmd.AddCommand(newTasksCmd(app))
	cmd.AddCommand(newArchiveCmd(app))
	cmd.AddCommand(newSweepCmd(app))
	cmd.AddCommand(newSettingsCmd(app))
	cmd.AddCommand(newConfigCmd(app))
	cmd.AddCommand(newVersionCmd(app))

	return cmd
}

func (app *App) now() time.Time {
	if app.Now != nil {
		return app.Now()
	}
	return time.Now()
}

func (app *App) config() (*store.Config, error) {
	if app.cfg != nil {
		return app.cfg, nil
	}
	cfg, err := store.LoadConfig()
	if err != nil {
		return nil, err
	}
	app.cfg = cfg
	return cfg, nil
}

// logger writes to the command's stderr at the configured level.
func (app *App) logger(cmd *cobra.Command) *log.Logger {
	if app.log != nil {
		return app.log
	}
	level := store.DefaultLogLevel
	if cfg, err := app.config(); err == nil {
		level = cfg.LogLevel
	}
	app.log = logging.New(cmd.ErrOrStderr(), level)
	return app.log
}

// dataDir resolves --dir / HOME_DIR, then data_dir from config.
func (app *App) dataDir() (string, error) {
	if d := strings.TrimSpace(app.Dir); d != "" {
		return (&store.Config{DataDir: d}).ResolveDataDir()
	}
	cfg, err := app.config()
	if err != nil {
		return "", err
	}
	return cfg.ResolveDataDir()
}

func (app *App) openPort(ctx context.Context, cmd *cobra.Command) (kvStore, error) {
	dir, err := app.dataDir()
	if err != nil {
		return nil, err
	}
	if app.openStore != nil {
		return app.openStore(ctx, dir, app.logger(cmd))
	}
	s, err := store.OpenSQLite(ctx, dir, app.logger(cmd))
	if err != nil {
		return nil, err
	}
	return s, nil
}

// openTasks opens the port and the task store on top of it. The caller must
// close the returned port.
func (app *App) openTasks(cmd *cobra.Command) (*tasks.Store, tasks.LoadResult, kvStore, error) {
	port, err := app.openPort(cmd.Context(), cmd)
	if err != nil {
		return nil, tasks.LoadResult{}, nil, err
	}
	st, res := tasks.Open(port, tasks.Options{
		Now:    app.now,
		NewID:  app.NewID,
		Logger: app.logger(cmd),
	})
	return st, res, port, nil
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

// saveErr reports a write the task store swallowed. A one-shot command has no
// later write to reconcile storage, so it must fail instead.
func saveErr(cmd *cobra.Command, st *tasks.Store) error {
	if err := st.LastSaveErr(); err != nil {
		return writeErr(cmd, fmt.Errorf("not saved: %w", err))
	}
	return nil
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
