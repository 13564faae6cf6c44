package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/darasa/core"
)

func TestCreateIfNotExist(t *testing.T) {
	conf := &core.Config{}
	conf.Database.Path = filepath.Join(t.TempDir(), "nested", "data", "darasa.db")

	require.NoError(t, CreateIfNotExist(conf))
	info, err := os.Stat(filepath.Dir(conf.Database.Path))
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	// existing directory
	require.NoError(t, CreateIfNotExist(conf))
}

func TestMigrate(t *testing.T) {
	ctx := context.Background()
	db, err := OpenFile(filepath.Join(t.TempDir(), "darasa.db"), time.Second)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	require.NoError(t, Migrate(ctx, db))
	require.NoError(t, Migrate(ctx, db)) // idempotent

	var tables []string
	err = db.SelectContext(ctx, &tables, "SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"attendance", "classrooms", "grades", "health_checks", "measurements", "schedule_slots", "students", "subjects",
	}, tables)

	var fk int
	require.NoError(t, db.GetContext(ctx, &fk, "PRAGMA foreign_keys"))
	assert.Equal(t, 1, fk)
}

func TestDSN(t *testing.T) {
	got := dsn("data/darasa.db", 2*time.Second)
	assert.Contains(t, got, "file:data/darasa.db?")
	assert.Contains(t, got, "busy_timeout%282000%29")
	assert.Contains(t, got, "foreign_keys%281%29")
}
