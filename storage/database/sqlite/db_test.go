package sqlitedb_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/darasa/core/school"
	"github.com/trezcool/darasa/storage/database/sqlite"
	"github.com/trezcool/darasa/tests"
)

func open(t *testing.T) school.Store {
	db, err := sqlitedb.Open(context.Background(), filepath.Join(t.TempDir(), "darasa.db"), time.Second)
	require.NoError(t, err)
	return db
}

func TestStoreContract(t *testing.T) {
	testutil.RunStoreContract(t, open)
}

func TestOpen_persists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "darasa.db")

	db, err := sqlitedb.Open(ctx, path, time.Second)
	require.NoError(t, err)
	c := testutil.CreateClassroom(t, db, "ม.1/1")
	s := testutil.CreateStudent(t, db, c.ID, "1001", "Somchai", "Jaidee", "2012-05-01")
	require.NoError(t, db.Close())

	// reopening migrates and seeds again without touching the data
	db, err = sqlitedb.Open(ctx, path, time.Second)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	got, err := db.GetClassroom(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c, got)

	st, err := db.GetStudent(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, s, st)

	subjects, err := db.ListSubjects(ctx)
	require.NoError(t, err)
	assert.Len(t, subjects, len(school.DefaultSubjects))

	next := testutil.CreateClassroom(t, db, "ม.1/2")
	assert.Greater(t, next.ID, c.ID)
}

func TestDB_failedImportKeepsConnectionUsable(t *testing.T) {
	ctx := context.Background()
	db := open(t)
	defer func() { _ = db.Close() }()

	err := db.Import(ctx, school.Snapshot{
		Students: []school.Student{{ID: 1, StudentID: "1001", FirstName: "A", ClassroomID: 42, IsActive: true}},
	})
	require.ErrorIs(t, err, school.ErrInvalidSnapshot)

	// the single pooled connection must not be stuck in the rolled back transaction
	c := testutil.CreateClassroom(t, db, "ม.1/1")
	assert.Equal(t, 1, c.ID)
}
