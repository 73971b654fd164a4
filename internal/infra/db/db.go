package db

import (
	"context"
	"database/sql"
	"fmt"

	domain "github.com/bryanwahyu/insight-pipeline/internal/domain/pipeline"
	"github.com/bryanwahyu/insight-pipeline/internal/infra/db/mysql"
	"github.com/bryanwahyu/insight-pipeline/internal/infra/db/postgres"
	"github.com/bryanwahyu/insight-pipeline/internal/infra/db/sqlite"
)

const (
	DriverSQLite   = "sqlite"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

// Options selects the store backend. DSN is used by mysql and postgres,
// Path by sqlite.
type Options struct {
	Driver string
	Path   string
	DSN    string
}

// Open acquires the process-wide pool, ensures the schema and returns the
// repository bound to it. The caller owns the *sql.DB and must Close it.
func Open(ctx context.Context, opts Options) (*sql.DB, domain.Repository, error) {
	var (
		database *sql.DB
		repo     domain.Repository
		err      error
	)
	switch opts.Driver {
	case DriverSQLite, "":
		opts.Driver = DriverSQLite
		database, err = sqlite.Connect(ctx, opts.Path)
		if err == nil {
			repo = sqlite.NewResultRepository(database)
		}
	case DriverMySQL:
		database, err = mysql.Connect(ctx, opts.DSN)
		if err == nil {
			repo = mysql.NewResultRepository(database)
		}
	case DriverPostgres:
		database, err = postgres.Connect(ctx, opts.DSN)
		if err == nil {
			repo = postgres.NewResultRepository(database)
		}
	default:
		return nil, nil, fmt.Errorf("unsupported database driver %q", opts.Driver)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("%s connect: %w", opts.Driver, err)
	}

	if err := Migrate(ctx, database, opts.Driver); err != nil {
		database.Close()
		return nil, nil, fmt.Errorf("%s migrate: %w", opts.Driver, err)
	}
	return database, repo, nil
}
