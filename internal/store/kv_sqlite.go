package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// KV is the host-side configuration store: string keys to string values,
// backed by a SQLite file. It plays the role of the native app's preferences.
type KV struct {
	db *sql.DB
}

// OpenKV opens (creating if needed) the config database at path.
func OpenKV(ctx context.Context, path string) (*KV, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("kv: missing path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL enables one writer + many readers; busy_timeout helps avoid "database is locked"
	// when the CLI and the TUI touch the config at the same time.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if err := migrateKV(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &KV{db: db}, nil
}

// OpenDefaultKV opens the config database in the resolved config dir.
func OpenDefaultKV(ctx context.Context) (*KV, error) {
	path, err := SQLitePath()
	if err != nil {
		return nil, err
	}
	return OpenKV(ctx, path)
}

func migrateKV(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS config (
			k TEXT PRIMARY KEY,
			v TEXT NOT NULL,
			updated_at_unixms INTEGER NOT NULL
		);`,
	}
	for _, st := range stmts {
		if _, err := db.ExecContext(ctx, st); err != nil {
			return err
		}
	}
	return nil
}

func (kv *KV) Close() error {
	if kv == nil || kv.db == nil {
		return nil
	}
	return kv.db.Close()
}

// Get returns the value for key and whether it was set.
func (kv *KV) Get(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := kv.db.QueryRowContext(ctx, `SELECT v FROM config WHERE k = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (kv *KV) Set(ctx context.Context, key, value string) error {
	_, err := kv.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO config(k, v, updated_at_unixms) VALUES(?, ?, ?)`,
		key, value, time.Now().UTC().UnixMilli())
	return err
}

// GetMany returns the values of the keys that are set. Missing keys are
// absent from the result.
func (kv *KV) GetMany(ctx context.Context, keys []string) (map[string]string, error) {
	out := make(map[string]string, len(keys))
	for _, k := range keys {
		v, ok, err := kv.Get(ctx, k)
		if err != nil {
			return nil, err
		}
		if ok {
			out[k] = v
		}
	}
	return out, nil
}

// SetMany writes all values in one transaction.
func (kv *KV) SetMany(ctx context.Context, values map[string]string) error {
	tx, err := kv.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	nowMs := time.Now().UTC().UnixMilli()
	for k, v := range values {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO config(k, v, updated_at_unixms) VALUES(?, ?, ?)`, k, v, nowMs); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Keys lists every stored key in lexical order.
func (kv *KV) Keys(ctx context.Context) ([]string, error) {
	rows, err := kv.db.QueryContext(ctx, `SELECT k FROM config ORDER BY k`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, rows.Err()
}
