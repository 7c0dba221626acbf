package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	_ "modernc.org/sqlite"
)

const sqliteFileName = "home.sqlite"

// SQLite is the on-disk Port: one kv table in <Dir>/home.sqlite.
type SQLite struct {
	Dir string

	db  *sql.DB
	log *log.Logger
}

// OpenSQLite opens (creating if needed) the store under dir and applies migrations.
// A nil logger discards read failures silently.
func OpenSQLite(ctx context.Context, dir string, logger *log.Logger) (*SQLite, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("open store: missing dir")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", filepath.Join(dir, sqliteFileName))
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	// WAL enables one writer + many readers; busy_timeout helps avoid "database is locked"
	// when the CLI runs while the TUI is open.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("open store: %w", err)
		}
	}
	if err := migrateKV(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate store: %w", err)
	}
	return &SQLite{Dir: dir, db: db, log: logger}, nil
}

func migrateKV(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			k TEXT PRIMARY KEY,
			v TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS kv (
			k TEXT PRIMARY KEY,
			v TEXT NOT NULL,
			updated_at_unixms INTEGER NOT NULL
		);`,
		`INSERT OR IGNORE INTO meta(k, v) VALUES('schema_version', '1');`,
	}
	for _, st := range stmts {
		if _, err := db.ExecContext(ctx, st); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLite) Path() string {
	return filepath.Join(s.Dir, sqliteFileName)
}

func (s *SQLite) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLite) Get(key string) (string, bool) {
	v, ok, err := s.Read(key)
	if err != nil && s.log != nil {
		s.log.Warn("store read failed", "key", key, "err", err)
	}
	return v, ok
}

func (s *SQLite) Read(key string) (string, bool, error) {
	var v string
	err := s.db.QueryRowContext(context.Background(), `SELECT v FROM kv WHERE k = ?`, key).Scan(&v)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return "", false, nil
	case err != nil:
		return "", false, fmt.Errorf("read %s: %w", key, err)
	}
	return v, true, nil
}

func (s *SQLite) Set(key, value string) error {
	_, err := s.db.ExecContext(context.Background(),
		`INSERT OR REPLACE INTO kv(k, v, updated_at_unixms) VALUES(?, ?, ?)`,
		key, value, time.Now().UTC().UnixMilli())
	return err
}

func (s *SQLite) Keys(prefix string) []string {
	rows, err := s.db.QueryContext(context.Background(),
		`SELECT k FROM kv WHERE substr(k, 1, length(?)) = ? ORDER BY k`, prefix, prefix)
	if err != nil {
		if s.log != nil {
			s.log.Warn("store list failed", "prefix", prefix, "err", err)
		}
		return nil
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return out
		}
		out = append(out, k)
	}
	return out
}

func (s *SQLite) Remove(key string) error {
	_, err := s.db.ExecContext(context.Background(), `DELETE FROM kv WHERE k = ?`, key)
	return err
}

// ReplacePrefix deletes every key under prefix and writes values in one transaction.
func (s *SQLite) ReplacePrefix(prefix string, values map[string]string) error {
	ctx := context.Background()
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM kv WHERE substr(k, 1, length(?)) = ?`, prefix, prefix); err != nil {
		return err
	}
	nowMs := time.Now().UTC().UnixMilli()
	for k, v := range values {
		if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO kv(k, v, updated_at_unixms) VALUES(?, ?, ?)`, k, v, nowMs); err != nil {
			return err
		}
	}
	return tx.Commit()
}
