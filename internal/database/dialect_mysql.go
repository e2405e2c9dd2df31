package database

import (
	"github.com/go-sql-driver/mysql"
)

// MySQLDialect stores the archive in MySQL
type MySQLDialect struct{}

func NewMySQLDialect() *MySQLDialect {
	return &MySQLDialect{}
}

func (d *MySQLDialect) DriverName() string {
	return "mysql"
}

// DSN forces parseTime so DATETIME columns scan into time.Time. A URL the
// driver cannot parse is passed through and fails at Ping.
func (d *MySQLDialect) DSN(target Target) string {
	cfg, err := mysql.ParseDSN(target.URL)
	if err != nil {
		return target.URL
	}
	cfg.ParseTime = true
	return cfg.FormatDSN()
}

func (d *MySQLDialect) RewriteQuery(query string) string {
	return query
}

func (d *MySQLDialect) SupportsLastInsertId() bool {
	return true
}

func (d *MySQLDialect) Pool() PoolSettings {
	return serverPool
}

func (d *MySQLDialect) MigrationsSubdir() string {
	return "mysql"
}

// MultiStatement is false: the driver rejects several statements per Exec
// unless multiStatements is set in the DSN.
func (d *MySQLDialect) MultiStatement() bool {
	return false
}

func (d *MySQLDialect) CreateMigrationsTableQuery() string {
	return `
		CREATE TABLE IF NOT EXISTS migrations (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			filename VARCHAR(255) UNIQUE NOT NULL,
			executed_at DATETIME(6) DEFAULT CURRENT_TIMESTAMP(6)
		);
	`
}
