package echoapi_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/trezcool/darasa/apps/api/echo"
	"github.com/trezcool/darasa/core/school"
	"github.com/trezcool/darasa/tests"
)

func TestHome(t *testing.T) {
	app := setup(t)
	req, rec := newRequest(http.MethodGet, "/", false)
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Welcome to Darasa API!", rec.Body.String())
}

func Test_classroomApi_create(t *testing.T) {
	app := setup(t)

	runHTTPTests(t, app, []httpTest{
		{
			name: "required fields", method: http.MethodPost, path: "/api/classrooms", body: []byte(`{}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"name":          "this field is required",
				"level":         "this field is required",
				"academic_year": "this field is required",
			}),
		},
		{
			name: "blank fields", method: http.MethodPost, path: "/api/classrooms",
			body:     []byte(`{"name":"  ","level":"มัธยมศึกษาตอนต้น","academic_year":"2568"}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"name": "this field is required"}),
		},
		{
			name: "malformed body", method: http.MethodPost, path: "/api/classrooms", body: []byte(`{"name":`),
			wantCode: http.StatusBadRequest,
		},
	})

	rec := do(t, app, http.MethodPost, "/api/classrooms", school.NewClassroom{Name: " ม.1/1 ", Level: "มัธยมศึกษาตอนต้น", AcademicYear: "2568"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var c school.Classroom
	decode(t, rec, &c)
	assert.Equal(t, 1, c.ID)
	assert.Equal(t, "ม.1/1", c.Name)
	assert.Equal(t, "2568", c.AcademicYear)
	assert.False(t, c.CreatedAt.IsZero())
}

func Test_classroomApi_listRetrieveUpdateDestroy(t *testing.T) {
	app := setup(t)
	c1 := testutil.CreateClassroom(t, app.mem, "ม.1/1")
	c2 := testutil.CreateClassroom(t, app.mem, "ม.1/2")
	testutil.CreateStudent(t, app.mem, c1.ID, "1001", "Somchai", "Jaidee")

	var list []school.ClassroomSummary
	rec := do(t, app, http.MethodGet, "/api/classrooms", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &list)
	require.Len(t, list, 2)
	assert.Equal(t, c2.ID, list[0].ID) // newest first
	assert.Equal(t, 1, list[1].StudentCount)

	runHTTPTests(t, app, []httpTest{
		{name: "retrieve unknown", path: "/api/classrooms/99", wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"})},
		{name: "retrieve bad id", path: "/api/classrooms/abc", wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"id": "must be a positive integer"})},
		{name: "update unknown is a no-op", method: http.MethodPut, path: "/api/classrooms/99", body: []byte(`{"name":"x"}`), wantCode: http.StatusNoContent},
		{name: "destroy unknown is a no-op", method: http.MethodDelete, path: "/api/classrooms/99", wantCode: http.StatusNoContent},
	})

	rec = do(t, app, http.MethodPut, "/api/classrooms/1", map[string]string{"name": "ม.1/9"})
	require.Equal(t, http.StatusOK, rec.Code)
	var c school.Classroom
	decode(t, rec, &c)
	assert.Equal(t, "ม.1/9", c.Name)
	assert.Equal(t, c1.Level, c.Level)

	rec = do(t, app, http.MethodGet, "/api/classrooms/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &c)
	assert.Equal(t, "ม.1/9", c.Name)

	rec = do(t, app, http.MethodDelete, "/api/classrooms/1", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	students, err := app.mem.ListStudents(context.Background(), school.StudentFilter{})
	require.NoError(t, err)
	assert.Empty(t, students)
}

func TestBackendSelection(t *testing.T) {
	app := setup(t)
	testutil.CreateClassroom(t, app.disk, "ม.6/1")

	var list []school.ClassroomSummary
	rec := do(t, app, http.MethodGet, "/api/classrooms", nil)
	assert.Equal(t, "ephemeral", rec.Header().Get(BackendHeader))
	decode(t, rec, &list)
	assert.Empty(t, list)

	rec = do(t, app, http.MethodGet, "/api/classrooms", nil, true)
	assert.Equal(t, "persistent", rec.Header().Get(BackendHeader))
	decode(t, rec, &list)
	require.Len(t, list, 1)
	assert.Equal(t, "ม.6/1", list[0].Name)

	// the process-wide flag wins over a missing marker
	desktop := setup(t, func(o *Options) { o.DesktopMode = true })
	testutil.CreateClassroom(t, desktop.disk, "ม.6/2")
	rec = do(t, desktop, http.MethodGet, "/api/classrooms", nil)
	assert.Equal(t, "persistent", rec.Header().Get(BackendHeader))
	decode(t, rec, &list)
	require.Len(t, list, 1)
	assert.Equal(t, "ม.6/2", list[0].Name)
}

type brokenStore struct {
	school.Store
}

func (brokenStore) ListClassrooms(context.Context) ([]school.ClassroomSummary, error) {
	return nil, errors.New("disk I/O error: /var/lib/darasa/darasa.db")
}

func TestServerErrorsDoNotLeak(t *testing.T) {
	broken := school.NewService(brokenStore{})
	app := newServer(school.Backends{Ephemeral: broken, Persistent: broken})

	runHTTPTests(t, app, []httpTest{
		{
			name: "backend failure", path: "/api/classrooms",
			wantCode: http.StatusInternalServerError,
			wantData: marchallObj(t, httpErr{Error: "Internal Server Error"}),
		},
		{
			name: "unknown route", path: "/api/nothing",
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "Not Found"}),
		},
	})
}
