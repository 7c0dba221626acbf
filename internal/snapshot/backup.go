package snapshot

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"home-cli/internal/store"
)

// BackupDir holds the safety copies written before an import.
func BackupDir(dataDir string) string {
	return filepath.Join(dataDir, "backups")
}

// WriteBackup exports the current contents of port into BackupDir and
// returns the file path.
func WriteBackup(port store.Port, dataDir string, now time.Time, version string) (string, error) {
	dir := BackupDir(dataDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create backup dir: %w", err)
	}
	text, _ := Export(port, now, version)
	path := filepath.Join(dir, Filename(now))
	if err := store.WriteFileAtomic(path, []byte(text)); err != nil {
		return "", fmt.Errorf("write backup: %w", err)
	}
	return path, nil
}
