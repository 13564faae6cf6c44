// Package sqlitedb is the persistent Store, backed by a single SQLite file.
package sqlitedb

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/reflectx"
	"github.com/pkg/errors"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/school"
	"github.com/trezcool/darasa/storage/database"
)

// timeLayout is fixed width so that stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

type DB struct {
	db  core.DB
	now func() time.Time
}

var _ school.Store = (*DB)(nil) // interface compliance check

// New wraps an open connection pool. Rows are mapped onto the school types through their json tags.
func New(db *sqlx.DB) *DB {
	x := sqlx.NewDb(db.DB, db.DriverName())
	x.Mapper = reflectx.NewMapperFunc("json", strings.ToLower)
	return &DB{db: x, now: time.Now}
}

// Open opens (creating if needed) the database file at path, migrates it and seeds the subject catalog.
func Open(ctx context.Context, path string, busyTimeout time.Duration) (*DB, error) {
	x, err := database.OpenFile(path, busyTimeout)
	if err != nil {
		return nil, err
	}
	db := New(x)
	if err = db.Init(ctx); err != nil {
		_ = x.Close()
		return nil, err
	}
	return db, nil
}

// Init applies the schema and seeds the subject catalog when it is empty.
func (db *DB) Init(ctx context.Context) error {
	if err := database.Migrate(ctx, db.db); err != nil {
		return err
	}
	return db.withTx(ctx, func(tx *sqlx.Tx) error {
		return seedSubjects(ctx, tx)
	})
}

func (db *DB) Close() error {
	return db.db.Close()
}

func (db *DB) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) (err error) {
	tx, err := db.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = errors.Wrap(tx.Commit(), "committing transaction")
	}()
	return fn(tx)
}

func seedSubjects(ctx context.Context, tx *sqlx.Tx) error {
	var n int
	if err := tx.GetContext(ctx, &n, "SELECT COUNT(*) FROM subjects"); err != nil {
		return errors.Wrap(err, "counting subjects")
	}
	if n > 0 {
		return nil
	}
	for _, sub := range school.DefaultSubjects {
		if _, err := tx.NamedExecContext(ctx, "INSERT INTO subjects (name, code, color) VALUES (:name, :code, :color)", sub); err != nil {
			return errors.Wrapf(err, "seeding subject %s", sub.Code)
		}
	}
	return nil
}

// constraint reports which kind of constraint a failed statement broke, if any.
func constraint(err error) (unique, foreignKey bool) {
	var se *sqlite.Error
	if !errors.As(err, &se) || se.Code()&0xff != sqlite3.SQLITE_CONSTRAINT {
		return false, false
	}
	msg := se.Error()
	return strings.Contains(msg, "UNIQUE"), strings.Contains(msg, "FOREIGN KEY")
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		// rows written by other tools
		if t, err = time.Parse(time.RFC3339Nano, s); err != nil {
			return time.Time{}, errors.Wrapf(err, "parsing timestamp %q", s)
		}
	}
	return t.UTC(), nil
}

func notFound(err error, sentinel error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return sentinel
	}
	return err
}
