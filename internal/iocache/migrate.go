package iocache

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/huangsam/contacts/schema"
)

//go:embed migrations
var migrationsFS embed.FS

// migrateDrivers wraps an open database in the golang-migrate driver of its backend.
var migrateDrivers = map[schema.DatabaseBackend]func(*sql.DB) (database.Driver, error){
	schema.SQLiteBackend: func(db *sql.DB) (database.Driver, error) {
		return sqlite.WithInstance(db, &sqlite.Config{})
	},
	schema.MySQLBackend: func(db *sql.DB) (database.Driver, error) {
		return mysql.WithInstance(db, &mysql.Config{})
	},
	schema.PostgreSQLBackend: func(db *sql.DB) (database.Driver, error) {
		return postgres.WithInstance(db, &postgres.Config{})
	},
}

// MigrateCache moves the query cache schema to targetVersion and reports what happened on w.
// A negative target means the latest version. Zero rolls every migration back.
func MigrateCache(w io.Writer, backend schema.DatabaseBackend, connStr string, targetVersion int) error {
	if backend == schema.NoneBackend {
		return fmt.Errorf("migrations are not supported for NoneBackend")
	}

	m, err := newMigrator(backend, connStr)
	if err != nil {
		return err
	}
	defer func() { _, _ = m.Close() }()

	from, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to get current migration version: %w", err)
	}
	if dirty {
		return fmt.Errorf("database is in a dirty state at version %d. Please fix manually or force version", from)
	}

	step := m.Up
	switch {
	case targetVersion == 0:
		step = m.Down
	case targetVersion > 0:
		step = func() error { return m.Migrate(uint(targetVersion)) }
	}

	target := "the latest version"
	if targetVersion >= 0 {
		target = fmt.Sprintf("version %d", targetVersion)
	}
	switch err := step(); {
	case errors.Is(err, migrate.ErrNoChange):
		_, _ = fmt.Fprintf(w, "No migration needed. Query cache is already at %s.\n", target)
		return nil
	case err != nil:
		return fmt.Errorf("failed to migrate query cache to %s: %w", target, err)
	}

	to, _, _ := m.Version()
	_, _ = fmt.Fprintf(w, "Successfully migrated query cache from version %d to version %d\n", from, to)
	return nil
}

// newMigrator opens the backend and pairs it with the embedded migrations of its dialect.
func newMigrator(backend schema.DatabaseBackend, connStr string) (*migrate.Migrate, error) {
	wrap, ok := migrateDrivers[backend]
	if !ok {
		return nil, fmt.Errorf("unsupported cache backend for migrations: %s", backend)
	}
	db, err := openDB(backend, connStr)
	if err != nil {
		return nil, err
	}
	driver, err := wrap(db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create %s migrate driver: %w", backend, err)
	}

	sub, err := fs.Sub(migrationsFS, "migrations/"+string(backend))
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to access migrations directory: %w", err)
	}
	source, err := iofs.New(sub, ".")
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "contacts", driver)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return m, nil
}
