package database

import (
	"strings"

	"github.com/lib/pq"
)

// PostgresDialect stores the archive in PostgreSQL
type PostgresDialect struct{}

func NewPostgresDialect() *PostgresDialect {
	return &PostgresDialect{}
}

func (d *PostgresDialect) DriverName() string {
	return "postgres"
}

// DSN converts a postgres:// URL to key/value form and names the
// application unless the URL already does. Key/value input is used as is.
func (d *PostgresDialect) DSN(target Target) string {
	dsn, err := pq.ParseURL(target.URL)
	if err != nil {
		return target.URL
	}
	if !strings.Contains(dsn, "application_name=") {
		dsn += " application_name=" + applicationName
	}
	return dsn
}

func (d *PostgresDialect) RewriteQuery(query string) string {
	return numberPlaceholders(query)
}

func (d *PostgresDialect) SupportsLastInsertId() bool {
	return false
}

func (d *PostgresDialect) Pool() PoolSettings {
	return serverPool
}

func (d *PostgresDialect) MigrationsSubdir() string {
	return "postgres"
}

func (d *PostgresDialect) MultiStatement() bool {
	return true
}

func (d *PostgresDialect) CreateMigrationsTableQuery() string {
	return `
		CREATE TABLE IF NOT EXISTS migrations (
			id BIGSERIAL PRIMARY KEY,
			filename TEXT UNIQUE NOT NULL,
			executed_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
		);
	`
}
