// Package sqlkv stores keys in a single SQL table, on SQLite or PostgreSQL.
package sqlkv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/aretw0/introspection"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/aretw0/quire/pkg/core"
)

// DBType is the database/sql driver name.
type DBType string

const (
	SQLite   DBType = "sqlite3"
	Postgres DBType = "postgres"
)

// DefaultTable is the table holding the keys.
const DefaultTable = "quire_kv"

// Config holds the configuration of a SQL-backed KV.
type Config struct {
	Driver DBType
	DSN    string
	Table  string
	Logger *slog.Logger
}

// KV is a core.KV backed by a table (key TEXT PRIMARY KEY, value TEXT).
type KV struct {
	db     *sql.DB
	config Config
	logger *slog.Logger
}

// Open connects to the database and creates the table when missing.
func Open(ctx context.Context, config Config) (*KV, error) {
	if config.Logger == nil {
		config.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if config.Table == "" {
		config.Table = DefaultTable
	}
	switch config.Driver {
	case SQLite, Postgres:
	default:
		return nil, fmt.Errorf("unsupported driver %q", config.Driver)
	}
	if config.DSN == "" {
		return nil, errors.New("dsn is required")
	}

	db, err := sql.Open(string(config.Driver), config.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", config.Driver, err)
	}
	if config.Driver == SQLite {
		// A single connection keeps in-memory databases shared and avoids
		// SQLITE_BUSY between our own writers.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to %s: %w", config.Driver, err)
	}

	kv := &KV{db: db, config: config, logger: config.Logger}
	if err := kv.initSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return kv, nil
}

// Close closes the database handle.
func (kv *KV) Close() error {
	return kv.db.Close()
}

func (kv *KV) initSchema(ctx context.Context) error {
	stmt := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`, kv.config.Table)
	if _, err := kv.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("failed to create table %s: %w", kv.config.Table, err)
	}
	kv.logger.Debug("schema ready", "driver", kv.config.Driver, "table", kv.config.Table)
	return nil
}

// rebind converts ? placeholders to $1, $2, ... for PostgreSQL.
func (kv *KV) rebind(query string) string {
	if kv.config.Driver != Postgres {
		return query
	}
	var b strings.Builder
	n := 1
	for _, c := range query {
		if c == '?' {
			fmt.Fprintf(&b, "$%d", n)
			n++
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}

// Get implements core.KV.
func (kv *KV) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := kv.db.QueryRowContext(ctx,
		kv.rebind(fmt.Sprintf(`SELECT value FROM %s WHERE key = ?`, kv.config.Table)), key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return value, true, nil
}

// Set implements core.KV.
func (kv *KV) Set(ctx context.Context, key, value string) error {
	return kv.SetMany(ctx, map[string]string{key: value})
}

// SetMany implements core.Batcher: the values are written in one transaction.
func (kv *KV) SetMany(ctx context.Context, values map[string]string) error {
	tx, err := kv.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, kv.rebind(fmt.Sprintf(
		`INSERT INTO %s (key, value) VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value`, kv.config.Table)))
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	for k, v := range values {
		if _, err := stmt.ExecContext(ctx, k, v); err != nil {
			return fmt.Errorf("failed to write %s: %w", k, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// Delete implements core.KV.
func (kv *KV) Delete(ctx context.Context, key string) error {
	_, err := kv.db.ExecContext(ctx,
		kv.rebind(fmt.Sprintf(`DELETE FROM %s WHERE key = ?`, kv.config.Table)), key)
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// Keys lists the stored keys in lexical order.
func (kv *KV) Keys(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows, err := kv.db.QueryContext(ctx, fmt.Sprintf(`SELECT key FROM %s ORDER BY key`, kv.config.Table))
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}
	defer rows.Close()

	keys := []string{}
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// ComponentType implements introspection.Component.
func (kv *KV) ComponentType() string {
	return string(kv.config.Driver)
}

var _ core.KV = (*KV)(nil)
var _ core.Lister = (*KV)(nil)
var _ core.Batcher = (*KV)(nil)
var _ introspection.Component = (*KV)(nil)
