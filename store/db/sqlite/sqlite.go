// Package sqlite implements the request-log driver on SQLite
// (modernc.org/sqlite, no cgo). The default DSN is ":memory:" so the log
// lives and dies with the process.
package sqlite

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/peswahq/ussd-simulator/internal/profile"
)

type DB struct {
	db      *sql.DB
	profile *profile.Profile
}

// NewDB opens a database instance for the given profile.
func NewDB(profile *profile.Profile) (*DB, error) {
	if profile == nil {
		return nil, errors.New("profile is nil")
	}

	sqliteDB, err := sql.Open("sqlite", profile.DSN)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open db with dsn: %s", profile.DSN)
	}

	// An in-memory database exists per connection; keep the pool at one so
	// every query sees the same schema and rows.
	sqliteDB.SetMaxOpenConns(1)

	driver := DB{db: sqliteDB, profile: profile}
	return &driver, nil
}

func (d *DB) GetDB() *sql.DB {
	return d.db
}

func (d *DB) Close() error {
	return d.db.Close()
}

// Migrate creates the schema. The request log has a single table and no
// versioned migrations: the database is recreated on every start.
func (d *DB) Migrate(ctx context.Context) error {
	_, err := d.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS request_log (
			id TEXT PRIMARY KEY,
			created_ts INTEGER NOT NULL,
			session_id TEXT NOT NULL,
			request TEXT NOT NULL,
			response TEXT,
			success INTEGER NOT NULL,
			error TEXT NOT NULL DEFAULT '',
			duration_ms INTEGER NOT NULL DEFAULT 0
		);
		CREATE INDEX IF NOT EXISTS idx_request_log_session_id ON request_log (session_id);
	`)
	if err != nil {
		return errors.Wrap(err, "failed to create request_log schema")
	}
	return nil
}
