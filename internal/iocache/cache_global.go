package iocache

import (
	"database/sql"
	"errors"
	"fmt"
	"os"

	"github.com/huangsam/contacts/schema"
)

// ClearCache drops every persisted query result of the backend.
// SQLite loses its whole file, MySQL and PostgreSQL lose the query table,
// and the none backend has nothing to clear.
func ClearCache(backend schema.DatabaseBackend, dbFilePath, connStr string) error {
	switch backend {
	case schema.NoneBackend:
		return nil
	case schema.SQLiteBackend:
		if dbFilePath == "" {
			return errors.New("dbFilePath cannot be empty for SQLite backend")
		}
		if err := os.Remove(dbFilePath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove SQLite database file %s: %w", dbFilePath, err)
		}
		return nil
	}

	d, err := dialectFor(backend)
	if err != nil {
		return err
	}
	db, err := sql.Open(d.driver, connStr)
	if err != nil {
		return fmt.Errorf("failed to connect to %s database: %w", backend, err)
	}
	defer func() { _ = db.Close() }()

	if _, err := db.Exec("DROP TABLE IF EXISTS " + d.quote(QueryTable)); err != nil {
		return fmt.Errorf("failed to drop table %s: %w", QueryTable, err)
	}
	return nil
}
