package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"home-cli/internal/keys"
	"home-cli/internal/snapshot"
	"home-cli/internal/store"
	"home-cli/internal/version"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"
)

// clipboardWrite is swapped out by tests; CI machines have no clipboard.
var clipboardWrite = clipboard.WriteAll

func newSettingsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Export, import and inspect stored " + keys.Namespace + "* settings",
	}
	cmd.AddCommand(newSettingsExportCmd(app))
	cmd.AddCommand(newSettingsImportCmd(app))
	cmd.AddCommand(newSettingsKeysCmd(app))
	cmd.AddCommand(newSettingsGetCmd(app))
	cmd.AddCommand(newSettingsSetCmd(app))
	return cmd
}

func newSettingsExportCmd(app *App) *cobra.Command {
	var out string
	var toStdout bool
	var toClipboard bool

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every " + keys.Namespace + "* setting to a portable text file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			port, err := app.openPort(cmd.Context(), cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer port.Close()

			now := app.now()
			text, doc := snapshot.Export(port, now, version.Version)

			if toStdout {
				_, err := io.WriteString(cmd.OutOrStdout(), text)
				return err
			}

			res := map[string]any{"keys": entryKeys(doc), "exportedAt": now.UTC().Format(snapshot.ExportedAtLayout)}
			if toClipboard {
				if err := clipboardWrite(text); err != nil {
					return writeErr(cmd, fmt.Errorf("copy to clipboard: %w", err))
				}
				res["clipboard"] = true
			}
			out = strings.TrimSpace(out)
			if out == "" && !toClipboard {
				out = snapshot.Filename(now)
			}
			if out != "" {
				if err := store.WriteFileAtomic(out, []byte(text)); err != nil {
					return writeErr(cmd, err)
				}
				res["path"] = out
			}
			return writeOut(cmd, app, map[string]any{"data": res})
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default: home-settings-<timestamp>.txt)")
	cmd.Flags().BoolVar(&toStdout, "stdout", false, "Print the export instead of writing a file")
	cmd.Flags().BoolVar(&toClipboard, "clipboard", false, "Copy the export to the system clipboard")
	return cmd
}

func entryKeys(doc snapshot.Document) []string {
	out := make([]string, 0, len(doc.Entries))
	for _, e := range doc.Entries {
		out = append(out, e.Key)
	}
	return out
}

func readInput(cmd *cobra.Command, path string) (string, error) {
	if path == "-" {
		b, err := io.ReadAll(cmd.InOrStdin())
		return string(b), err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("could not read the file: %w", err)
	}
	return string(b), nil
}

func newSettingsImportCmd(app *App) *cobra.Command {
	var yes bool
	var noBackup bool

	cmd := &cobra.Command{
		Use:   "import <file|->",
		Short: "Replace ALL " + keys.Namespace + "* settings with the contents of an export",
		Long: strings.TrimSpace(`
Validates the whole file first; a rejected file leaves storage untouched.
Keys under the namespace that are absent from the file are removed.

Unless --no-backup is given, the current settings are exported to
<data dir>/backups before anything is replaced.
`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			doc, err := snapshot.Stage(snapshot.Parse(text))
			if err != nil {
				return writeErr(cmd, fmt.Errorf("import failed: %w", err))
			}
			if !yes {
				return writeErr(cmd, errNeedsConfirm)
			}

			port, err := app.openPort(cmd.Context(), cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer port.Close()

			incoming := doc.Map()
			removed := []string{}
			for _, k := range port.Keys(keys.Namespace) {
				if _, ok := incoming[k]; !ok {
					removed = append(removed, k)
				}
			}

			res := map[string]any{"imported": entryKeys(doc), "removed": removed}
			if !noBackup {
				dir, err := app.dataDir()
				if err != nil {
					return writeErr(cmd, err)
				}
				path, err := snapshot.WriteBackup(port, dir, app.now(), version.Version)
				if err != nil {
					return writeErr(cmd, err)
				}
				res["backup"] = path
			}
			if err := snapshot.Apply(port, doc); err != nil {
				return writeErr(cmd, err)
			}
			app.logger(cmd).Info("settings imported", "keys", len(doc.Entries), "removed", len(removed))

			meta := map[string]any{"version": doc.Version}
			if !doc.ExportedAt.IsZero() {
				meta["exportedAt"] = doc.ExportedAt.Format(snapshot.ExportedAtLayout)
			}
			return writeOut(cmd, app, map[string]any{"data": res, "meta": meta})
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm overwriting current settings")
	cmd.Flags().BoolVar(&noBackup, "no-backup", false, "Skip the safety export before importing")
	return cmd
}

type keyInfo struct {
	Key   string `json:"key"`
	Known bool   `json:"known"`
	Bytes int    `json:"bytes"`
	// Name and Version are set for keys of the form home.<name>.v<n>.
	Name    string `json:"name,omitempty"`
	Version int    `json:"version,omitempty"`
}

func newSettingsKeysCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "List stored " + keys.Namespace + "* keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			port, err := app.openPort(cmd.Context(), cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer port.Close()

			out := []keyInfo{}
			for _, k := range port.Keys(keys.Namespace) {
				v, _ := port.Get(k)
				info := keyInfo{Key: k, Known: keys.Known(k), Bytes: len(v)}
				if parsed, ok := keys.Parse(k); ok {
					info.Name, info.Version = parsed.Name, parsed.Version
				}
				out = append(out, info)
			}
			return writeOut(cmd, app, map[string]any{"data": out})
		},
	}
}

func newSettingsGetCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Print one stored value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			port, err := app.openPort(cmd.Context(), cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer port.Close()

			k := strings.TrimSpace(args[0])
			v, ok := port.Get(k)
			if !ok {
				return writeErr(cmd, errNotFound("key", k))
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"key": k, "value": v}})
		},
	}
}

func newSettingsSetCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Store a raw value under a " + keys.Namespace + "* key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			k := strings.TrimSpace(args[0])
			if !keys.InNamespace(k) {
				return writeErr(cmd, errors.New("key must start with "+keys.Namespace))
			}
			port, err := app.openPort(cmd.Context(), cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer port.Close()

			if err := port.Set(k, args[1]); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"key": k, "bytes": len(args[1])}})
		},
	}
}

// backupsIn lists existing safety exports, newest last.
func backupsIn(dataDir string) []string {
	matches, _ := filepath.Glob(filepath.Join(snapshot.BackupDir(dataDir), "home-settings-*.txt"))
	return matches
}
