package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// DefaultPath is the local database file used when none is configured
const DefaultPath = "pipeline.db"

// Connect opens the database file with a single pooled connection so writers
// queue in-process instead of contending on the file lock.
func Connect(ctx context.Context, path string) (*sql.DB, error) {
	if strings.TrimSpace(path) == "" {
		path = DefaultPath
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	ctx2, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx2); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
