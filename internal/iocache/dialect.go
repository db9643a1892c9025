package iocache

import (
	"fmt"

	"github.com/go-sql-driver/mysql" // MySQL driver
	"github.com/huangsam/contacts/schema"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "modernc.org/sqlite"             // SQLite driver
)

// dialect holds the SQL that differs between backends for the query table.
// param numbers from 1 and upsert takes the quoted table name as its only verb.
type dialect struct {
	driver   string
	quote    func(name string) string
	param    func(n int) string
	keyType  string
	blobType string
	intType  string
	upsert   string

	// tableSize reports the on-disk size of a table, or false when unknown.
	tableSize func(st *QueryStore) (int64, bool)
}

func backtick(name string) string { return "`" + name + "`" }
func dquote(name string) string   { return `"` + name + `"` }
func question(int) string         { return "?" }
func dollar(n int) string         { return fmt.Sprintf("$%d", n) }

var dialects = map[schema.DatabaseBackend]dialect{
	schema.SQLiteBackend: {
		driver:   "sqlite",
		quote:    dquote,
		param:    question,
		keyType:  "TEXT",
		blobType: "BLOB",
		intType:  "INTEGER",
		upsert:   `INSERT OR REPLACE INTO %s (cache_key, cache_value, cache_version, cache_timestamp) VALUES (?, ?, ?, ?)`,
		tableSize: func(st *QueryStore) (int64, bool) {
			var size int64
			row := st.db.QueryRow("SELECT page_count * page_size FROM pragma_page_count(), pragma_page_size()")
			return size, row.Scan(&size) == nil
		},
	},
	schema.MySQLBackend: {
		driver:   "mysql",
		quote:    backtick,
		param:    question,
		keyType:  "VARCHAR(255)",
		blobType: "BLOB",
		intType:  "BIGINT",
		upsert: `INSERT INTO %s (cache_key, cache_value, cache_version, cache_timestamp) VALUES (?, ?, ?, ?) AS new
			ON DUPLICATE KEY UPDATE cache_value = new.cache_value, cache_version = new.cache_version, cache_timestamp = new.cache_timestamp`,
		tableSize: func(st *QueryStore) (int64, bool) {
			cfg, err := mysql.ParseDSN(st.connStr)
			if err != nil || cfg.DBName == "" {
				return 0, false
			}
			var size int64
			row := st.db.QueryRow("SELECT data_length + index_length FROM information_schema.tables WHERE table_schema = ? AND table_name = ?",
				cfg.DBName, st.tableName)
			return size, row.Scan(&size) == nil
		},
	},
	schema.PostgreSQLBackend: {
		driver:   "pgx",
		quote:    dquote,
		param:    dollar,
		keyType:  "TEXT",
		blobType: "BYTEA",
		intType:  "BIGINT",
		upsert: `INSERT INTO %s (cache_key, cache_value, cache_version, cache_timestamp) VALUES ($1, $2, $3, $4)
			ON CONFLICT (cache_key) DO UPDATE SET cache_value = EXCLUDED.cache_value, cache_version = EXCLUDED.cache_version, cache_timestamp = EXCLUDED.cache_timestamp`,
		tableSize: func(st *QueryStore) (int64, bool) {
			var size int64
			row := st.db.QueryRow("SELECT pg_total_relation_size($1)", st.tableName)
			return size, row.Scan(&size) == nil
		},
	},
}

// dialectFor returns the dialect of a SQL backend.
func dialectFor(backend schema.DatabaseBackend) (dialect, error) {
	d, ok := dialects[backend]
	if !ok {
		return dialect{}, fmt.Errorf("unsupported cache backend: %s. Must be sqlite, mysql, postgresql, or none", backend)
	}
	return d, nil
}

// createTable returns the CREATE TABLE statement for the query table.
func (d dialect) createTable(table string) string {
	return fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			cache_key %s PRIMARY KEY,
			cache_value %s NOT NULL,
			cache_version INTEGER NOT NULL,
			cache_timestamp %s NOT NULL
		);
	`, d.quote(table), d.keyType, d.blobType, d.intType)
}
