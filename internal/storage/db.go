// Package storage persists consistency reports in SQLite.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/ramonehamilton/commander-consistency/internal/storage/repository"
)

// DB wraps the database connection and provides access to repositories.
type DB struct {
	conn    *sql.DB
	reports repository.ReportRepository
}

// Config holds database configuration settings.
type Config struct {
	// Path is the file path to the SQLite database.
	Path string

	// MaxOpenConns sets the maximum number of open connections.
	// Default: 4
	MaxOpenConns int

	// BusyTimeout sets how long to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration

	// JournalMode sets the SQLite journal mode.
	// Default: WAL
	JournalMode string

	// AutoMigrate runs pending migrations on Open.
	AutoMigrate bool
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig(path string) *Config {
	return &Config{
		Path:         path,
		MaxOpenConns: 4,
		BusyTimeout:  5 * time.Second,
		JournalMode:  "WAL",
		AutoMigrate:  true,
	}
}

// dsn builds a modernc DSN carrying the pragmas from config.
func (c *Config) dsn() string {
	q := url.Values{}
	q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", c.BusyTimeout.Milliseconds()))
	q.Add("_pragma", fmt.Sprintf("journal_mode(%s)", c.JournalMode))
	return c.Path + "?" + q.Encode()
}

// Open creates the database directory if needed, runs migrations when
// AutoMigrate is set, and opens a connection pool.
func Open(config *Config) (*DB, error) {
	if config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if config.Path == "" {
		return nil, fmt.Errorf("database path is required")
	}

	if err := os.MkdirAll(filepath.Dir(config.Path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	if config.AutoMigrate {
		if _, err := migrateUp(config.Path); err != nil {
			return nil, err
		}
	}

	conn, err := sql.Open("sqlite", config.dsn())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	conn.SetMaxOpenConns(config.MaxOpenConns)

	if err := conn.Ping(); err != nil {
		return nil, errors.Join(fmt.Errorf("failed to ping database: %w", err), conn.Close())
	}

	return &DB{conn: conn, reports: repository.NewReportRepository(conn)}, nil
}

// migrateUp applies pending migrations and reports the resulting version.
func migrateUp(path string) (SchemaStatus, error) {
	mgr, err := NewMigrationManager(path)
	if err != nil {
		return SchemaStatus{}, err
	}
	err = mgr.Up()
	var status SchemaStatus
	if err == nil {
		status, err = mgr.Status()
	}
	if closeErr := mgr.Close(); closeErr != nil {
		err = errors.Join(err, fmt.Errorf("failed to close migration manager: %w", closeErr))
	}
	if err != nil {
		return SchemaStatus{}, err
	}
	if status.Dirty {
		return status, fmt.Errorf("report schema version %d is dirty", status.Version)
	}
	return status, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	if db.conn == nil {
		return nil
	}
	return db.conn.Close()
}

// Conn returns the underlying sql.DB connection.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Reports returns the report repository.
func (db *DB) Reports() repository.ReportRepository {
	return db.reports
}
