package iocache

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/huangsam/contacts/internal/contract"
	"github.com/huangsam/contacts/schema"
)

// QueryStore persists query cache payloads in one SQL table, keyed by the
// hashed query key. The none backend has no database and stores nothing.
type QueryStore struct {
	db        *sql.DB
	dialect   dialect
	tableName string
	table     string // quoted
	backend   schema.DatabaseBackend
	connStr   string
}

var _ contract.CacheStore = &QueryStore{} // Compile-time check

// openDB opens and pings the database behind a backend.
func openDB(backend schema.DatabaseBackend, connStr string) (*sql.DB, error) {
	d, err := dialectFor(backend)
	if err != nil {
		return nil, err
	}

	if backend == schema.SQLiteBackend && connStr == "" {
		connStr = contract.GetCacheDBFilePath()
	}
	db, err := sql.Open(d.driver, connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s cache: %w", backend, err)
	}
	if backend == schema.SQLiteBackend {
		// Limit SQLite to a single open connection to avoid "database is locked" errors
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to %s database. Check that the server is running and connection parameters are valid: %w", backend, err)
	}
	return db, nil
}

// NewCacheStore opens the query table for the backend, creating it when missing.
func NewCacheStore(tableName string, backend schema.DatabaseBackend, connStr string) (*QueryStore, error) {
	// Validate table name to prevent SQL injection
	if err := validateTableName(tableName); err != nil {
		return nil, err
	}

	st := &QueryStore{tableName: tableName, backend: backend, connStr: connStr}
	if backend == schema.NoneBackend {
		return st, nil
	}

	d, err := dialectFor(backend)
	if err != nil {
		return nil, err
	}
	db, err := openDB(backend, connStr)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(d.createTable(tableName)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create table %s: %w", tableName, err)
	}

	st.db, st.dialect, st.table = db, d, d.quote(tableName)
	return st, nil
}

// Get returns the payload, payload version and write time of key.
// A missing key yields sql.ErrNoRows.
func (st *QueryStore) Get(key string) ([]byte, int, int64, error) {
	if st.db == nil {
		return nil, 0, 0, sql.ErrNoRows
	}

	var (
		value   []byte
		version int
		ts      int64
	)
	query := fmt.Sprintf(`SELECT cache_value, cache_version, cache_timestamp FROM %s WHERE cache_key = %s`, st.table, st.dialect.param(1))
	if err := st.db.QueryRow(query, key).Scan(&value, &version, &ts); err != nil {
		return nil, 0, 0, err
	}
	return value, version, ts, nil
}

// Set writes or replaces the payload of key.
func (st *QueryStore) Set(key string, value []byte, version int, timestamp int64) error {
	if st.db == nil {
		return nil
	}
	_, err := st.db.Exec(fmt.Sprintf(st.dialect.upsert, st.table), key, value, version, timestamp)
	return err
}

// Delete removes key. Deleting a missing key is not an error.
func (st *QueryStore) Delete(key string) error {
	if st.db == nil {
		return nil
	}
	_, err := st.db.Exec(fmt.Sprintf(`DELETE FROM %s WHERE cache_key = %s`, st.table, st.dialect.param(1)), key)
	return err
}

// Prune removes every payload written before cutoff and reports how many went.
func (st *QueryStore) Prune(cutoff time.Time) (int64, error) {
	if st.db == nil {
		return 0, nil
	}
	res, err := st.db.Exec(fmt.Sprintf(`DELETE FROM %s WHERE cache_timestamp < %s`, st.table, st.dialect.param(1)), cutoff.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to prune %s: %w", st.tableName, err)
	}
	return res.RowsAffected()
}

// Close closes the underlying DB connection.
func (st *QueryStore) Close() error {
	if st.db != nil {
		return st.db.Close()
	}
	return nil
}

// GetStatus reports entry count, entry time range and table size.
func (st *QueryStore) GetStatus() (schema.CacheStatus, error) {
	status := schema.CacheStatus{
		Backend:   string(st.backend),
		Connected: st.db != nil,
	}
	if st.db == nil {
		return status, nil
	}

	row := st.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", st.table))
	if err := row.Scan(&status.TotalEntries); err != nil {
		return status, fmt.Errorf("failed to get total entries: %w", err)
	}
	if status.TotalEntries == 0 {
		return status, nil
	}

	var lastTs, oldestTs int64
	row = st.db.QueryRow(fmt.Sprintf("SELECT MAX(cache_timestamp), MIN(cache_timestamp) FROM %s", st.table))
	if err := row.Scan(&lastTs, &oldestTs); err != nil {
		return status, fmt.Errorf("failed to get entry time range: %w", err)
	}
	status.LastEntryTime = time.Unix(lastTs, 0)
	status.OldestEntryTime = time.Unix(oldestTs, 0)

	if size, ok := st.dialect.tableSize(st); ok {
		status.TableSizeBytes = size
	} else if st.backend != schema.SQLiteBackend {
		// Rough estimate when the server cannot say
		status.TableSizeBytes = int64(status.TotalEntries) * 1000
	}
	return status, nil
}
