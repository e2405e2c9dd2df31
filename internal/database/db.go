package database

import (
	"database/sql"
	"fmt"
	"strings"

	"englishexplorer/internal/config"
	"englishexplorer/internal/logger"

	"go.uber.org/zap"
)

// DB wraps the database connection with dialect support
type DB struct {
	*sql.DB
	Dialect Dialect
}

// OpenSQLite opens a SQLite database at path
func OpenSQLite(path string) (*DB, error) {
	return open(NewSQLiteDialect(), Target{Path: path})
}

// Open connects to the archive database named by cfg
func Open(cfg *config.Config) (*DB, error) {
	dialect, target, err := dialectFor(cfg)
	if err != nil {
		return nil, err
	}
	db, err := open(dialect, target)
	if err != nil {
		return nil, err
	}
	logger.Info("database connected", zap.String("driver", dialect.DriverName()))
	return db, nil
}

func dialectFor(cfg *config.Config) (Dialect, Target, error) {
	switch strings.ToLower(cfg.DatabaseType) {
	case "postgres", "postgresql":
		return NewPostgresDialect(), Target{URL: cfg.DatabaseURL}, nil
	case "mysql":
		return NewMySQLDialect(), Target{URL: cfg.DatabaseURL}, nil
	case "sqlite", "sqlite3", "":
		return NewSQLiteDialect(), Target{Path: cfg.DatabasePath}, nil
	}
	return nil, Target{}, fmt.Errorf("unsupported database type: %s", cfg.DatabaseType)
}

func open(dialect Dialect, target Target) (*DB, error) {
	db, err := sql.Open(dialect.DriverName(), dialect.DSN(target))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	dialect.Pool().apply(db)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{DB: db, Dialect: dialect}, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.DB.Close()
}

// Query executes a query with automatic placeholder rewriting
func (db *DB) Query(query string, args ...any) (*sql.Rows, error) {
	return db.DB.Query(db.Dialect.RewriteQuery(query), args...)
}

// QueryRow executes a query that returns a single row with automatic placeholder rewriting
func (db *DB) QueryRow(query string, args ...any) *sql.Row {
	return db.DB.QueryRow(db.Dialect.RewriteQuery(query), args...)
}

// Exec executes a query that doesn't return rows with automatic placeholder rewriting
func (db *DB) Exec(query string, args ...any) (sql.Result, error) {
	return db.DB.Exec(db.Dialect.RewriteQuery(query), args...)
}

// ExecReturningID executes an INSERT and returns the new row's ID. PostgreSQL
// has no LastInsertId, so the query gets a RETURNING clause there.
func (db *DB) ExecReturningID(query string, args ...any) (int64, error) {
	return execReturningID(db.DB, db.Dialect, query, args...)
}

type execQueryer interface {
	Exec(query string, args ...any) (sql.Result, error)
	QueryRow(query string, args ...any) *sql.Row
}

func execReturningID(q execQueryer, dialect Dialect, query string, args ...any) (int64, error) {
	rewritten := dialect.RewriteQuery(query)

	if dialect.SupportsLastInsertId() {
		result, err := q.Exec(rewritten, args...)
		if err != nil {
			return 0, err
		}
		return result.LastInsertId()
	}

	rewritten = strings.TrimSuffix(strings.TrimSpace(rewritten), ";") + " RETURNING id"

	var id int64
	if err := q.QueryRow(rewritten, args...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}
