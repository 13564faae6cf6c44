package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/darasa/core/school"
	"github.com/trezcool/darasa/services/spreadsheet"
	"github.com/trezcool/darasa/storage/database/memory"
	"github.com/trezcool/darasa/tests"
)

func setup(t *testing.T, input string) (*commandLine, *memdb.DB, *bytes.Buffer) {
	db, err := memdb.Open()
	require.NoError(t, err)
	out := new(bytes.Buffer)
	return &commandLine{
		svc: school.NewService(db),
		in:  strings.NewReader(input),
		out: out,
	}, db, out
}

type cliTest struct {
	name       string
	args       []string // without program name
	input      string
	terminal   bool
	wantErr    error
	wantErrStr string
	wantOut    string
}

func runCLITests(t *testing.T, newCLI func(input string) *commandLine, tests []cliTest) {
	defer func(f func(int) bool) { isTerminalFunc = f }(isTerminalFunc)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isTerminalFunc = func(int) bool { return tt.terminal }
			cli := newCLI(tt.input)
			err := cli.run(tt.args)
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.wantErrStr != "":
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErrStr)
			default:
				require.NoError(t, err)
			}
			if tt.wantOut != "" {
				assert.Contains(t, cli.out.(*bytes.Buffer).String(), tt.wantOut)
			}
		})
	}
}

func Test_commandLine_usage(t *testing.T) {
	newCLI := func(input string) *commandLine {
		cli, _, _ := setup(t, input)
		return cli
	}
	runCLITests(t, newCLI, []cliTest{
		{name: "no command", wantOut: "Usage:"},
		{name: "unknown command", args: []string{"lol"}, wantErrStr: `unknown command "lol"`},
		{name: "import without file", args: []string{"import"}, wantErrStr: `required flag(s) "input" not set`},
		{name: "import-students without file", args: []string{"import-students"}, wantErrStr: `required flag(s) "file" not set`},
		{name: "diff needs two files", args: []string{"diff", "a.json"}, wantErrStr: "accepts 2 arg(s)"},
	})
}

func Test_commandLine_exportImport(t *testing.T) {
	src, db, out := setup(t, "")
	testutil.Populate(t, db)
	dir := t.TempDir()
	backup := filepath.Join(dir, "backup.json")

	require.NoError(t, src.run([]string{"export", "-o", backup}))
	assert.Contains(t, out.String(), "exported to "+backup)

	out.Reset()
	require.NoError(t, src.run([]string{"export"}))
	assert.Contains(t, out.String(), `"version": "1.0"`)

	dst, dstDB, out := setup(t, "")
	require.NoError(t, dst.run([]string{"import", "-i", backup}))
	assert.Contains(t, out.String(), "imported "+backup)

	students, err := dstDB.ListStudents(context.Background(), school.StudentFilter{})
	require.NoError(t, err)
	assert.Len(t, students, 2)

	empty := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(empty, []byte(`{"version":"1.0"}`), 0o644))
	broken := filepath.Join(dir, "broken.json")
	require.NoError(t, os.WriteFile(broken, []byte(`{"classrooms":[{"id":0}]}`), 0o644))

	runCLITests(t, func(string) *commandLine { return dst }, []cliTest{
		{name: "missing file", args: []string{"import", "-i", filepath.Join(dir, "nope.json")}, wantErrStr: "reading backup"},
		{name: "empty snapshot", args: []string{"import", "-i", empty}, wantErrStr: "snapshot has no collections"},
		{name: "invalid snapshot", args: []string{"import", "-i", broken}, wantErr: school.ErrInvalidSnapshot},
	})
}

func Test_commandLine_clear(t *testing.T) {
	var db *memdb.DB
	newCLI := func(input string) *commandLine {
		var cli *commandLine
		cli, db, _ = setup(t, input)
		testutil.CreateClassroom(t, db, "ม.1/1")
		return cli
	}

	tests := []cliTest{
		{name: "not a terminal", args: []string{"clear"}, wantErr: errNotConfirmed},
		{name: "declined", args: []string{"clear"}, terminal: true, input: "no\n", wantErr: errAborted},
		{name: "no answer", args: []string{"clear"}, terminal: true, wantErr: errAborted},
		{name: "confirmed", args: []string{"clear"}, terminal: true, input: "yes\n", wantOut: "store cleared"},
		{name: "--yes", args: []string{"clear", "--yes"}, wantOut: "store cleared"},
	}
	for _, tt := range tests {
		runCLITests(t, newCLI, []cliTest{tt})

		classrooms, err := db.ListClassrooms(context.Background())
		require.NoError(t, err)
		if tt.wantErr != nil {
			assert.Len(t, classrooms, 1, tt.name)
		} else {
			assert.Empty(t, classrooms, tt.name)
		}
	}
}

func Test_commandLine_diff(t *testing.T) {
	cli, db, out := setup(t, "")
	testutil.Populate(t, db)
	dir := t.TempDir()
	a := filepath.Join(dir, "a.json")
	b := filepath.Join(dir, "b.json")
	c := filepath.Join(dir, "c.json")

	require.NoError(t, cli.run([]string{"export", "-o", a}))
	require.NoError(t, cli.run([]string{"export", "-o", b})) // later exported_at
	testutil.CreateClassroom(t, db, "ม.2/1")
	require.NoError(t, cli.run([]string{"export", "-o", c}))

	out.Reset()
	require.NoError(t, cli.run([]string{"diff", a, b}))
	assert.Equal(t, "no differences\n", out.String())

	out.Reset()
	require.NoError(t, cli.run([]string{"diff", a, c}))
	diff := out.String()
	assert.Contains(t, diff, "--- "+a)
	assert.Contains(t, diff, "+++ "+c)
	assert.Contains(t, diff, `+      "name": "ม.2/1",`)
	assert.NotContains(t, diff, "exported_at\": \"2")

	err := cli.run([]string{"diff", a, filepath.Join(dir, "nope.json")})
	assert.ErrorContains(t, err, "reading backup")
}

func Test_commandLine_importStudents(t *testing.T) {
	cli, db, out := setup(t, "")
	c := testutil.CreateClassroom(t, db, "ม.1/1")
	testutil.CreateStudent(t, db, c.ID, "1001", "Somchai", "Jaidee")

	roster := filepath.Join(t.TempDir(), "roster.xlsx")
	f, err := os.Create(roster)
	require.NoError(t, err)
	require.NoError(t, sheetsvc.WriteRoster(f, []school.StudentRow{
		{Student: school.Student{StudentID: "1001", FirstName: "Dup"}},
		{Student: school.Student{StudentID: "1002", FirstName: "Suda", LastName: "Rakdee"}},
		{Student: school.Student{StudentID: "1003", FirstName: "Mana"}, ClassroomName: "ม.1/1"},
	}))
	require.NoError(t, f.Close())

	require.NoError(t, cli.run([]string{"import-students", "-f", roster, "-c", "ม.1/1"}))
	assert.Equal(t, "imported 2, skipped 1\n", out.String())

	students, err := db.ListStudents(context.Background(), school.StudentFilter{ClassroomID: c.ID})
	require.NoError(t, err)
	assert.Len(t, students, 3)

	notXLSX := filepath.Join(t.TempDir(), "roster.csv")
	require.NoError(t, os.WriteFile(notXLSX, []byte("student_id,first_name\n"), 0o644))
	err = cli.run([]string{"import-students", "-f", notXLSX})
	assert.ErrorIs(t, err, sheetsvc.ErrUnreadable)
}
