package cli

import (
	"home-cli/internal/logging"
	"home-cli/internal/store"
	"home-cli/internal/tasks"
	"home-cli/internal/tui"
	"home-cli/internal/version"

	"github.com/spf13/cobra"
)

func runTUI(cmd *cobra.Command, app *App) error {
	cfg, err := app.config()
	if err != nil {
		return writeErr(cmd, err)
	}
	dir, err := app.dataDir()
	if err != nil {
		return writeErr(cmd, err)
	}

	// The alt screen owns stderr while the TUI runs; logs go to log_file or nowhere.
	logger, closer, err := logging.OpenFile(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return writeErr(cmd, err)
	}
	defer closer.Close()
	app.log = logger

	port, err := app.openPort(cmd.Context(), cmd)
	if err != nil {
		return writeErr(cmd, err)
	}
	defer port.Close()

	st, res := tasks.Open(port, tasks.Options{Now: app.now, NewID: app.NewID, Logger: logger})
	logger.Info("tui start", "db", port.Path(), "load", res.Status)

	return tui.Run(tui.Options{
		Store:    st,
		State:    store.TUIStateFile{Dir: dir},
		Interval: cfg.Interval(),
		Now:      app.now,
		Log:      logger,
		Version:  version.Version,
	})
}
