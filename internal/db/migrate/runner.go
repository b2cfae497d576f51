// Package migrate applies the platform schema from the SQL files embedded in
// internal/db.
package migrate

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"smartbox-platform/backend/internal/db"
)

// ErrNoChange reports that the schema is already at the requested version.
var ErrNoChange = migrate.ErrNoChange

// Run migrates the smartbox schema in the given direction, "up" or "down".
// A schema already at the target version is success, not an error; a bad DSN,
// an unreachable database, or broken SQL is returned to the caller.
func Run(dsn, direction string) error {
	if dsn == "" {
		return errors.New("migrate: DATABASE_URL is not set; copy .env.example to .env or export it")
	}

	var apply func(*migrate.Migrate) error
	switch direction {
	case "up":
		apply = (*migrate.Migrate).Up
	case "down":
		apply = (*migrate.Migrate).Down
	default:
		return fmt.Errorf("migrate: direction must be up or down, got %q", direction)
	}

	src, err := iofs.New(db.MigrationFS, "migrations")
	if err != nil {
		return fmt.Errorf("load embedded schema files: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, dsn)
	if err != nil {
		return fmt.Errorf("open migrator: %w", err)
	}
	defer func() { _, _ = m.Close() }()

	if err := apply(m); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply schema %s: %w", direction, err)
	}
	return nil
}
