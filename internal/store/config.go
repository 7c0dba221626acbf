package store

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	configFileName = "config.toml"

	DefaultArchiveInterval = 500 * time.Millisecond
	DefaultLogLevel        = "warn"
)

// Config is the user-level configuration (~/.home/config.toml).
type Config struct {
	// DataDir holds home.sqlite, backups and tui_state.json.
	// Empty means <config dir>/data.
	DataDir string `toml:"data_dir,omitempty"`

	// ArchiveInterval is how often the archival sweep runs (Go duration string, e.g. "500ms").
	ArchiveInterval string `toml:"archive_interval,omitempty"`

	LogLevel string `toml:"log_level,omitempty"`

	// LogFile receives logs while the TUI owns the terminal. Empty disables TUI logging.
	LogFile string `toml:"log_file,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		ArchiveInterval: DefaultArchiveInterval.String(),
		LogLevel:        DefaultLogLevel,
	}
}

func ConfigDir() (string, error) {
	// Test/advanced override (keeps unit tests from touching ~/.home).
	if v := strings.TrimSpace(os.Getenv("HOME_CONFIG_DIR")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".home"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// LoadConfig reads the config file. A missing file yields DefaultConfig; unset
// fields are filled with defaults.
func LoadConfig() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if strings.TrimSpace(cfg.ArchiveInterval) == "" {
		cfg.ArchiveInterval = DefaultArchiveInterval.String()
	}
	if strings.TrimSpace(cfg.LogLevel) == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	return cfg, nil
}

// Interval parses ArchiveInterval, falling back to the default for empty,
// malformed or non-positive values.
func (c *Config) Interval() time.Duration {
	if c == nil {
		return DefaultArchiveInterval
	}
	d, err := time.ParseDuration(strings.TrimSpace(c.ArchiveInterval))
	if err != nil || d <= 0 {
		return DefaultArchiveInterval
	}
	return d
}

// ResolveDataDir returns DataDir with "~" expanded, or <config dir>/data.
func (c *Config) ResolveDataDir() (string, error) {
	dir := ""
	if c != nil {
		dir = strings.TrimSpace(c.DataDir)
	}
	if dir == "" {
		cfgDir, err := ConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(cfgDir, "data"), nil
	}
	if dir == "~" || strings.HasPrefix(dir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(home, strings.TrimPrefix(dir, "~"))
	}
	return filepath.Clean(dir), nil
}

func atomicWriteFile(dir, tmpPattern, path string, b []byte, perm os.FileMode) error {
	f, err := os.CreateTemp(dir, tmpPattern)
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	_ = os.Chmod(tmp, perm)
	return os.Rename(tmp, path)
}

// WriteFileAtomic writes b to path via a temp file in the same directory.
func WriteFileAtomic(path string, b []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return atomicWriteFile(dir, filepath.Base(path)+".*.tmp", path, b, 0o644)
}

func SaveConfig(cfg *Config) error {
	if cfg == nil {
		return errors.New("nil config")
	}
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return err
	}

	// Keep a copy of the previous config; ignore errors so a bad backup never blocks saving.
	if prev, err := os.ReadFile(path); err == nil && len(prev) > 0 {
		_ = atomicWriteFile(dir, configFileName+".bak.*.tmp", path+".bak", prev, 0o644)
	}
	return atomicWriteFile(dir, configFileName+".*.tmp", path, buf.Bytes(), 0o600)
}
