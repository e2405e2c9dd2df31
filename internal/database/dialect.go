package database

import (
	"database/sql"
	"strconv"
	"strings"
	"time"
)

// applicationName tags archive connections on servers that support it
const applicationName = "englishexplorer"

// Dialect hides the differences between the archive backends
type Dialect interface {
	DriverName() string
	DSN(target Target) string

	// RewriteQuery turns ? placeholders into the driver's syntax
	RewriteQuery(query string) string

	// SupportsLastInsertId is false where inserts need RETURNING id
	SupportsLastInsertId() bool

	Pool() PoolSettings
	MigrationsSubdir() string

	// MultiStatement reports whether one Exec may carry several statements
	MultiStatement() bool
	CreateMigrationsTableQuery() string
}

// Target says where the archive lives: a file for SQLite, a URL otherwise
type Target struct {
	Path string
	URL  string
}

// PoolSettings bounds the connection pool. The archive writes a row or two
// per content fetch, so small pools are enough.
type PoolSettings struct {
	MaxOpen     int
	MaxIdle     int
	MaxLifetime time.Duration
	MaxIdleTime time.Duration
}

func (p PoolSettings) apply(db *sql.DB) {
	db.SetMaxOpenConns(p.MaxOpen)
	db.SetMaxIdleConns(p.MaxIdle)
	db.SetConnMaxLifetime(p.MaxLifetime)
	db.SetConnMaxIdleTime(p.MaxIdleTime)
}

var serverPool = PoolSettings{
	MaxOpen:     10,
	MaxIdle:     2,
	MaxLifetime: 5 * time.Minute,
	MaxIdleTime: time.Minute,
}

// numberPlaceholders rewrites ? to $1, $2, ... leaving quoted text alone,
// so a stored '?' in a literal is not mistaken for a parameter.
func numberPlaceholders(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)

	n := 0
	inQuote := false
	for i := 0; i < len(query); i++ {
		c := query[i]
		switch {
		case c == '\'':
			inQuote = !inQuote
			b.WriteByte(c)
		case c == '?' && !inQuote:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
