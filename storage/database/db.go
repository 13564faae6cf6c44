// Package database opens the SQLite file behind the persistent store and keeps its schema current.
package database

import (
	"context"
	_ "embed"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/trezcool/darasa/core"
)

const driverName = "sqlite"

//go:embed schema.sql
var schemaSQL string

func init() {
	sqlx.BindDriver(driverName, sqlx.QUESTION)
}

func dsn(path string, busyTimeout time.Duration) string {
	q := make(url.Values)
	q.Add("_pragma", "foreign_keys(1)")
	q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", busyTimeout.Milliseconds()))
	q.Add("_pragma", "journal_mode(WAL)")
	q.Add("_pragma", "synchronous(NORMAL)")
	return "file:" + path + "?" + q.Encode()
}

// OpenFile opens the database file at path. The pool is capped at one connection:
// SQLite serializes writers and the pragmas above are per connection.
func OpenFile(path string, busyTimeout time.Duration) (*sqlx.DB, error) {
	if busyTimeout <= 0 {
		busyTimeout = 5 * time.Second
	}
	db, err := sqlx.Open(driverName, dsn(path, busyTimeout))
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	db.SetMaxOpenConns(1)

	if err = ping(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func Open(conf *core.Config) (*sqlx.DB, error) {
	return OpenFile(conf.Database.Path, conf.Database.BusyTimeout)
}

// ping waits for the database to be ready. Waits 100ms longer between each attempt.
func ping(db *sqlx.DB) error {
	var err error
	maxAttempts := 10
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		err = db.Ping()
		if err == nil {
			break
		}
		time.Sleep(time.Duration(attempts) * 100 * time.Millisecond)
	}

	if err != nil {
		return errors.Wrap(err, "DB ping timeout")
	}
	return nil
}

// CreateIfNotExist creates the directory holding the database file.
// The file itself is created by the driver on first open.
func CreateIfNotExist(conf *core.Config) error {
	dir := filepath.Dir(conf.Database.Path)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "creating data directory")
	}
	return nil
}

// Migrate creates every missing table and index. It is safe to run on every start.
func Migrate(ctx context.Context, db core.DBExecutor) error {
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return errors.Wrap(err, "migrating database")
	}
	return nil
}
