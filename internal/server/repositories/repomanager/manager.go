// Package repomanager vends dialect-specific repositories and applies the
// embedded goose migrations for the configured database driver.
package repomanager

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"

	"github.com/dmitrijs2005/filedo/internal/dbx"
	"github.com/dmitrijs2005/filedo/internal/server/migrations"
	"github.com/dmitrijs2005/filedo/internal/server/repositories/manifests"
	"github.com/pressly/goose/v3"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Manifests(db dbx.DBTX) manifests.Repository
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// runMigrations points goose at one embedded dialect directory and applies it.
func runMigrations(ctx context.Context, db *sql.DB, fsys fs.FS, dir string, dialect goose.Dialect) error {
	goose.SetBaseFS(fsys)
	if err := goose.SetDialect(string(dialect)); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	if err := gooseUpContext(ctx, db, dir); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// New returns the manager for a database/sql driver name.
func New(driver string) (RepositoryManager, error) {
	switch driver {
	case dbx.DriverPostgres:
		return &PostgresRepositoryManager{}, nil
	case dbx.DriverMySQL:
		return &MySQLRepositoryManager{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", dbx.ErrUnsupportedDriver, driver)
	}
}

// PostgresRepositoryManager vends pgx-backed repositories.
type PostgresRepositoryManager struct{}

func (m *PostgresRepositoryManager) Manifests(db dbx.DBTX) manifests.Repository {
	return manifests.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	return runMigrations(ctx, db, migrations.Postgres, "postgres", goose.DialectPostgres)
}

// MySQLRepositoryManager vends repositories for the mysql driver.
type MySQLRepositoryManager struct{}

func (m *MySQLRepositoryManager) Manifests(db dbx.DBTX) manifests.Repository {
	return manifests.NewMySQLRepository(db)
}

func (m *MySQLRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	return runMigrations(ctx, db, migrations.MySQL, "mysql", goose.DialectMySQL)
}
