package storage

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// RunMigrations brings the schema at dbPath up to date.
func RunMigrations(dbPath string) error {
	r, err := migrateUp(dbPath)
	if err != nil {
		return err
	}
	r.close()
	return nil
}

// MigrateUp applies pending migrations and reports the resulting schema
// version and whether anything changed.
func MigrateUp(dbPath string) (version uint, changed bool, err error) {
	m, err := migrateUp(dbPath)
	if err != nil {
		return 0, false, err
	}
	version, dirty, err := m.version()
	if err != nil {
		return 0, false, err
	}
	if dirty {
		return version, m.changed, fmt.Errorf("schema version %d is dirty", version)
	}
	return version, m.changed, nil
}

type migrationResult struct {
	db      *sql.DB
	mig     *migrate.Migrate
	changed bool
}

func (r *migrationResult) version() (uint, bool, error) {
	defer r.close()
	v, dirty, err := r.mig.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("read schema version: %w", err)
	}
	return v, dirty, nil
}

func (r *migrationResult) close() {
	r.mig.Close()
	r.db.Close()
}

func migrateUp(dbPath string) (*migrationResult, error) {
	// Separate connection so the main handle is left untouched
	migrateDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open migration database: %w", err)
	}

	driver, err := sqlite.WithInstance(migrateDB, &sqlite.Config{})
	if err != nil {
		migrateDB.Close()
		return nil, fmt.Errorf("create sqlite driver: %w", err)
	}

	d, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		migrateDB.Close()
		return nil, fmt.Errorf("create iofs source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", d, "sqlite", driver)
	if err != nil {
		migrateDB.Close()
		return nil, fmt.Errorf("create migrate instance: %w", err)
	}

	res := &migrationResult{db: migrateDB, mig: m, changed: true}
	if err := m.Up(); err != nil {
		if !errors.Is(err, migrate.ErrNoChange) {
			res.close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		res.changed = false
	}
	return res, nil
}
