package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*/*.sql
var migrationFiles embed.FS

var gooseDialects = map[string]string{
	DriverSQLite:   "sqlite3",
	DriverMySQL:    "mysql",
	DriverPostgres: "postgres",
}

// Migrate applies the embedded migrations for driver. The results table is
// created if absent, so running it on every start is safe.
func Migrate(ctx context.Context, database *sql.DB, driver string) error {
	dialect, ok := gooseDialects[driver]
	if !ok {
		return fmt.Errorf("migrate: unsupported driver %q", driver)
	}
	goose.SetBaseFS(migrationFiles)
	if err := goose.SetDialect(dialect); err != nil {
		return err
	}
	return goose.UpContext(ctx, database, "migrations/"+driver)
}
