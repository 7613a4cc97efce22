package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
)

const (
	selectHashQuery = `SELECT field, value FROM kv_hashes WHERE key = $1`

	upsertFieldQuery = `INSERT INTO kv_hashes (key, field, value) VALUES ($1, $2, $3)
              ON CONFLICT (key, field) DO UPDATE SET value = EXCLUDED.value`

	lockKeyQuery = `SELECT pg_advisory_xact_lock(hashtext($1))`
)

// Database is the Postgres-backed Store. Hashes live in the kv_hashes table,
// one row per field.
type Database struct {
	db *sql.DB
}

type DatabaseConfig struct {
	DSN            string
	MigrationsPath string
	// Every atomic section holds one connection until commit, so this also
	// caps concurrent settlements. Zero leaves database/sql's default.
	MaxOpenConns   int
}

// NewDatabase opens the kv_hashes store and brings its schema up to date.
func NewDatabase(cfg DatabaseConfig) (*Database, error) {
	migrationsDir, err := resolveMigrationsDir(cfg.MigrationsPath)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	database := &Database{db: db}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if err := database.Migrate(migrationsDir); err != nil {
		db.Close()
		return nil, err
	}
	return database, nil
}

// NewDatabaseFromDB wraps an already opened connection without migrating it.
func NewDatabaseFromDB(db *sql.DB) *Database {
	return &Database{db: db}
}

func resolveMigrationsDir(path string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve migrations path %q: %w", path, err)
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return "", fmt.Errorf("migrations directory %s: %w", absPath, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("migrations path %s is not a directory", absPath)
	}
	return absPath, nil
}

// Migrate applies every pending migration from dir. An up-to-date schema is
// not an error.
func (d *Database) Migrate(dir string) error {
	driver, err := postgres.WithInstance(d.db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+filepath.ToSlash(dir), "postgres", driver)
	if err != nil {
		return fmt.Errorf("failed to load migrations from %s: %w", dir, err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to migrate kv_hashes schema: %w", err)
	}
	return nil
}

func (d *Database) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	return readHash(ctx, d.db, key)
}

func (d *Database) HSet(ctx context.Context, key string, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := writeHash(ctx, tx, key, values); err != nil {
		return err
	}
	return tx.Commit()
}

// Atomic serializes callers on the advisory locks of keys. Locks are taken in
// sorted order so two sections over the same keys cannot deadlock.
func (d *Database) Atomic(ctx context.Context, keys []string, fn func(tx Tx) error) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	sorted := append([]string(nil), keys...)
	sort.Strings(sorted)
	for _, key := range sorted {
		if _, err := tx.ExecContext(ctx, lockKeyQuery, key); err != nil {
			return fmt.Errorf("failed to lock %s: %w", key, err)
		}
	}

	ptx := &postgresTx{ctx: ctx, tx: tx, writes: newPendingWrites()}
	if err := fn(ptx); err != nil {
		return err
	}

	for _, key := range ptx.writes.keys {
		if err := writeHash(ctx, tx, key, ptx.writes.values[key]); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (d *Database) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

func (d *Database) Close() error {
	return d.db.Close()
}

type postgresTx struct {
	ctx    context.Context
	tx     *sql.Tx
	writes *pendingWrites
}

func (t *postgresTx) HGetAll(key string) (map[string]string, error) {
	values, err := readHash(t.ctx, t.tx, key)
	if err != nil {
		return nil, err
	}
	return t.writes.overlay(key, values), nil
}

func (t *postgresTx) HSet(key string, values map[string]string) {
	t.writes.add(key, values)
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

func readHash(ctx context.Context, q queryer, key string) (map[string]string, error) {
	rows, err := q.QueryContext(ctx, selectHashQuery, key)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	values := make(map[string]string)
	for rows.Next() {
		var field, value string
		if err := rows.Scan(&field, &value); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		values[field] = value
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return values, nil
}

func writeHash(ctx context.Context, tx *sql.Tx, key string, values map[string]string) error {
	fields := make([]string, 0, len(values))
	for f := range values {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	for _, f := range fields {
		if _, err := tx.ExecContext(ctx, upsertFieldQuery, key, f, values[f]); err != nil {
			return fmt.Errorf("failed to write %s.%s: %w", key, f, err)
		}
	}
	return nil
}
