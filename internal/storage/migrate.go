package storage

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SchemaStatus is the applied schema version of a report database.
type SchemaStatus struct {
	Version uint
	Dirty   bool
}

// MigrationManager applies the embedded report schema to a SQLite file.
type MigrationManager struct {
	m *migrate.Migrate
}

// sqliteURL turns a file path into a migrate database URL. Windows drive
// paths gain a leading slash.
func sqliteURL(dbPath string) string {
	p := filepath.ToSlash(dbPath)
	if filepath.IsAbs(dbPath) && !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return "sqlite://" + p
}

// NewMigrationManager prepares migrations for the database at dbPath.
func NewMigrationManager(dbPath string) (*MigrationManager, error) {
	sub, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to access migrations directory: %w", err)
	}
	src, err := iofs.New(sub, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to create source driver: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, sqliteURL(dbPath))
	if err != nil {
		return nil, fmt.Errorf("failed to create migration instance: %w", err)
	}
	return &MigrationManager{m: m}, nil
}

// ignoreNoChange treats an already current schema as success.
func ignoreNoChange(err error) error {
	if errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	return err
}

// Up brings the schema to the latest version.
func (mm *MigrationManager) Up() error {
	if err := ignoreNoChange(mm.m.Up()); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// Steps moves n versions up, or -n versions down when n is negative.
func (mm *MigrationManager) Steps(n int) error {
	if err := ignoreNoChange(mm.m.Steps(n)); err != nil {
		return fmt.Errorf("failed to migrate %d steps: %w", n, err)
	}
	return nil
}

// Status reports the applied version. An empty database is version 0.
func (mm *MigrationManager) Status() (SchemaStatus, error) {
	v, dirty, err := mm.m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		return SchemaStatus{}, nil
	case err != nil:
		return SchemaStatus{}, fmt.Errorf("failed to get migration version: %w", err)
	}
	return SchemaStatus{Version: v, Dirty: dirty}, nil
}

// Version is Status split into its fields.
func (mm *MigrationManager) Version() (uint, bool, error) {
	s, err := mm.Status()
	return s.Version, s.Dirty, err
}

// Close releases both migrate drivers.
func (mm *MigrationManager) Close() error {
	srcErr, dbErr := mm.m.Close()
	return errors.Join(srcErr, dbErr)
}
