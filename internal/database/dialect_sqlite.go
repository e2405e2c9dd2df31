package database

import (
	"strconv"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// sqliteBusyTimeout lets a fetch record wait for a concurrent writer
// instead of failing with SQLITE_BUSY
const sqliteBusyTimeout = 5 * time.Second

// SQLiteDialect is the default archive: a local file in WAL mode
type SQLiteDialect struct{}

func NewSQLiteDialect() *SQLiteDialect {
	return &SQLiteDialect{}
}

func (d *SQLiteDialect) DriverName() string {
	return "sqlite3"
}

// DSN sets WAL and the busy timeout through driver parameters so every
// pooled connection gets them, not only the first.
func (d *SQLiteDialect) DSN(target Target) string {
	sep := "?"
	if strings.Contains(target.Path, "?") {
		sep = "&"
	}
	return target.Path + sep + "_journal_mode=WAL&_busy_timeout=" + strconv.FormatInt(sqliteBusyTimeout.Milliseconds(), 10)
}

func (d *SQLiteDialect) RewriteQuery(query string) string {
	return query
}

func (d *SQLiteDialect) SupportsLastInsertId() bool {
	return true
}

// Pool keeps few connections: SQLite serializes writers anyway
func (d *SQLiteDialect) Pool() PoolSettings {
	return PoolSettings{MaxOpen: 4, MaxIdle: 2, MaxLifetime: time.Hour}
}

func (d *SQLiteDialect) MigrationsSubdir() string {
	return "sqlite"
}

func (d *SQLiteDialect) MultiStatement() bool {
	return true
}

func (d *SQLiteDialect) CreateMigrationsTableQuery() string {
	return `
		CREATE TABLE IF NOT EXISTS migrations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			filename TEXT UNIQUE NOT NULL,
			executed_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
	`
}
