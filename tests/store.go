package testutil

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core/school"
)

// StoreFactory returns a fresh store with nothing but the subject catalog in it.
type StoreFactory func(t *testing.T) school.Store

// RunStoreContract runs the behaviour every school.Store must share against the stores built by newStore.
func RunStoreContract(t *testing.T, newStore StoreFactory) {
	tests := []struct {
		name string
		run  func(t *testing.T, store school.Store, newStore StoreFactory)
	}{
		{"SubjectsSeeded", testSubjectsSeeded},
		{"ClassroomIDsMonotonic", testClassroomIDsMonotonic},
		{"ClassroomCRUD", testClassroomCRUD},
		{"Students", testStudents},
		{"ListStudents", testListStudents},
		{"SearchFoldsASCIIOnly", testSearchFoldsASCIIOnly},
		{"UpdateStudent", testUpdateStudent},
		{"ImportStudents", testImportStudents},
		{"AttendanceScenario", testAttendanceScenario},
		{"AttendanceUpsert", testAttendanceUpsert},
		{"HealthChecks", testHealthChecks},
		{"Measurements", testMeasurements},
		{"Grades", testGrades},
		{"Schedule", testSchedule},
		{"DeleteClassroomCascades", testDeleteClassroomCascades},
		{"ExportImportRoundTrip", testExportImportRoundTrip},
		{"ImportMovesCounters", testImportMovesCounters},
		{"ImportRejectsBrokenSnapshot", testImportRejectsBrokenSnapshot},
		{"ImportReplacesPresentCollectionsOnly", testImportPartial},
		{"Clear", testClear},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := newStore(t)
			t.Cleanup(func() { _ = store.Close() })
			tc.run(t, store, newStore)
		})
	}
}

const day = "2025-06-01"

// Populate fills store with two classrooms, three students (one inactive) and a record of every kind.
func Populate(t *testing.T, store school.Store) (c1, c2 school.Classroom) {
	ctx := context.Background()
	c1 = CreateClassroom(t, store, "ม.1/1")
	c2 = CreateClassroom(t, store, "ม.1/2")
	s1 := CreateStudent(t, store, c1.ID, "1001", "Somchai", "Jaidee", "2012-05-01")
	s2 := CreateStudent(t, store, c2.ID, "1002", "Suda", "Rakdee")
	s3 := CreateStudent(t, store, c1.ID, "1003", "Mana", "Meesuk")
	require.NoError(t, store.DeactivateStudent(ctx, s3.ID))

	for _, s := range []school.Student{s1, s2, s3} {
		require.NoError(t, store.UpsertAttendance(ctx, school.Attendance{StudentID: s.ID, ClassroomID: s.ClassroomID, Date: day, Status: school.StatusLate, Note: "bus"}))
		require.NoError(t, store.UpsertHealthCheck(ctx, school.HealthCheck{StudentID: s.ID, ClassroomID: s.ClassroomID, Date: day, BrushedTeeth: true}))
		require.NoError(t, store.UpsertMeasurement(ctx, school.Measurement{StudentID: s.ID, ClassroomID: s.ClassroomID, Date: day, Weight: 42.5, Height: 151}))
		require.NoError(t, store.UpsertGrade(ctx, school.Grade{StudentID: s.ID, ClassroomID: s.ClassroomID, SubjectCode: "MATH", Semester: 1, AcademicYear: "2568", Score: 78.5}))
	}
	require.NoError(t, store.UpsertScheduleSlot(ctx, school.ScheduleSlot{ClassroomID: c1.ID, DayOfWeek: 1, Period: 1, SubjectCode: "MATH", SubjectName: "คณิตศาสตร์", Room: "201"}))
	require.NoError(t, store.UpsertScheduleSlot(ctx, school.ScheduleSlot{ClassroomID: c2.ID, DayOfWeek: 5, Period: 8, SubjectCode: "ART", SubjectName: "ศิลปะ"}))
	return c1, c2
}

func testSubjectsSeeded(t *testing.T, store school.Store, _ StoreFactory) {
	subjects, err := store.ListSubjects(context.Background())
	require.NoError(t, err)
	require.Len(t, subjects, len(school.DefaultSubjects))
	assert.True(t, sort.SliceIsSorted(subjects, func(i, j int) bool { return subjects[i].Name < subjects[j].Name }))

	codes := make(map[string]bool)
	for _, sub := range subjects {
		assert.Positive(t, sub.ID)
		codes[sub.Code] = true
	}
	for _, sub := range school.DefaultSubjects {
		assert.True(t, codes[sub.Code], sub.Code)
	}
}

func testClassroomIDsMonotonic(t *testing.T, store school.Store, _ StoreFactory) {
	ctx := context.Background()
	var last int
	for i, name := range []string{"ม.1/1", "ม.1/2", "ม.1/3"} {
		c := CreateClassroom(t, store, name)
		assert.Greater(t, c.ID, last, i)
		last = c.ID
	}

	// ids are never reused
	require.NoError(t, store.DeleteClassroom(ctx, last))
	c := CreateClassroom(t, store, "ม.1/4")
	assert.Greater(t, c.ID, last)
}

func testClassroomCRUD(t *testing.T, store school.Store, _ StoreFactory) {
	ctx := context.Background()
	c1 := CreateClassroom(t, store, "ม.1/1")
	c2 := CreateClassroom(t, store, "ม.2/1")
	assert.False(t, c1.CreatedAt.IsZero())
	assert.Equal(t, time.UTC, c1.CreatedAt.Location())

	got, err := store.GetClassroom(ctx, c1.ID)
	require.NoError(t, err)
	assert.Equal(t, c1, got)

	s := CreateStudent(t, store, c1.ID, "1001", "Somchai", "Jaidee")
	CreateStudent(t, store, c1.ID, "1002", "Suda", "Rakdee")
	require.NoError(t, store.DeactivateStudent(ctx, s.ID))

	list, err := store.ListClassrooms(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, c2.ID, list[0].ID) // newest first
	assert.Equal(t, 0, list[0].StudentCount)
	assert.Equal(t, c1.ID, list[1].ID)
	assert.Equal(t, 1, list[1].StudentCount)

	name := "ม.1/5"
	updated, err := store.UpdateClassroom(ctx, c1.ID, school.ClassroomUpdate{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, name, updated.Name)
	assert.Equal(t, c1.Level, updated.Level)
	assert.Equal(t, c1.AcademicYear, updated.AcademicYear)
	assert.Equal(t, c1.CreatedAt, updated.CreatedAt)

	got, err = store.GetClassroom(ctx, c1.ID)
	require.NoError(t, err)
	assert.Equal(t, updated, got)

	_, err = store.GetClassroom(ctx, 999)
	assert.ErrorIs(t, err, school.ErrNotFound)
	_, err = store.UpdateClassroom(ctx, 999, school.ClassroomUpdate{Name: &name})
	assert.ErrorIs(t, err, school.ErrNotFound)
	assert.ErrorIs(t, store.DeleteClassroom(ctx, 999), school.ErrNotFound)
}

func testStudents(t *testing.T, store school.Store, _ StoreFactory) {
	ctx := context.Background()
	c1 := CreateClassroom(t, store, "ม.1/1")
	c2 := CreateClassroom(t, store, "ม.1/2")
	s := CreateStudent(t, store, c1.ID, "1001", "Somchai", "Jaidee", "2012-05-01")
	assert.Positive(t, s.ID)
	assert.True(t, s.IsActive)

	got, err := store.GetStudent(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, s, got)

	_, err = store.CreateStudent(ctx, school.Student{StudentID: "1001", FirstName: "Suda", ClassroomID: c2.ID, IsActive: true})
	assert.ErrorIs(t, err, school.ErrStudentIDExists)
	_, err = store.CreateStudent(ctx, school.Student{StudentID: "2000", FirstName: "Suda", ClassroomID: 999, IsActive: true})
	assert.ErrorIs(t, err, school.ErrUnknownClassroom)

	// soft delete
	require.NoError(t, store.DeactivateStudent(ctx, s.ID))
	rows, err := store.ListStudents(ctx, school.StudentFilter{ClassroomID: c1.ID})
	require.NoError(t, err)
	assert.Empty(t, rows)
	rows, err = store.ListStudents(ctx, school.StudentFilter{})
	require.NoError(t, err)
	assert.Empty(t, rows)

	got, err = store.GetStudent(ctx, s.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	// the code is free again
	again := CreateStudent(t, store, c2.ID, "1001", "Suda", "Rakdee")
	assert.Greater(t, again.ID, s.ID)

	_, err = store.GetStudent(ctx, 999)
	assert.ErrorIs(t, err, school.ErrNotFound)
	assert.ErrorIs(t, store.DeactivateStudent(ctx, 999), school.ErrNotFound)
}

func testListStudents(t *testing.T, store school.Store, _ StoreFactory) {
	ctx := context.Background()
	cB := CreateClassroom(t, store, "ม.1/2")
	cA := CreateClassroom(t, store, "ม.1/1")
	CreateStudent(t, store, cB.ID, "1003", "Mana", "Meesuk")
	CreateStudent(t, store, cA.ID, "1002", "Suda", "Rakdee")
	CreateStudent(t, store, cA.ID, "1001", "Somchai", "Jaidee")
	CreateStudent(t, store, cB.ID, "1000", "Piti", "Somsak")

	codes := func(rows []school.StudentRow) []string {
		out := make([]string, 0, len(rows))
		for _, r := range rows {
			out = append(out, r.StudentID)
		}
		return out
	}

	rows, err := store.ListStudents(ctx, school.StudentFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"1001", "1002", "1000", "1003"}, codes(rows))
	assert.Equal(t, "ม.1/1", rows[0].ClassroomName)
	assert.Equal(t, "ม.1/2", rows[3].ClassroomName)

	rows, err = store.ListStudents(ctx, school.StudentFilter{ClassroomID: cB.ID})
	require.NoError(t, err)
	assert.Equal(t, []string{"1000", "1003"}, codes(rows))

	tests := []struct {
		search string
		want   []string
	}{
		{"som", []string{"1001", "1000"}}, // first and last names, any case
		{"RAKDEE", []string{"1002"}},
		{"100", []string{"1001", "1002", "1000", "1003"}},
		{"nobody", []string{}},
	}
	for _, tc := range tests {
		rows, err = store.ListStudents(ctx, school.StudentFilter{Search: tc.search})
		require.NoError(t, err)
		assert.Equal(t, tc.want, codes(rows), tc.search)
	}
}

func testSearchFoldsASCIIOnly(t *testing.T, store school.Store, _ StoreFactory) {
	ctx := context.Background()
	c := CreateClassroom(t, store, "ม.1/1")
	CreateStudent(t, store, c.ID, "1001", "Émile", "Dubois")
	CreateStudent(t, store, c.ID, "1002", "Somchai", "Jaidee")

	tests := []struct {
		search string
		want   int
	}{
		{"DUBOIS", 1},
		{"ÉMI", 1},
		{"Émile", 1},
		{"émile", 0}, // only ASCII letters fold
		{"สมชาย", 0},
	}
	for _, tc := range tests {
		rows, err := store.ListStudents(ctx, school.StudentFilter{Search: tc.search})
		require.NoError(t, err)
		assert.Len(t, rows, tc.want, tc.search)
	}
}

func testUpdateStudent(t *testing.T, store school.Store, _ StoreFactory) {
	ctx := context.Background()
	c1 := CreateClassroom(t, store, "ม.1/1")
	c2 := CreateClassroom(t, store, "ม.1/2")
	s := CreateStudent(t, store, c1.ID, "1001", "Somchai", "Jaidee")
	CreateStudent(t, store, c1.ID, "1002", "Suda", "Rakdee")

	first, birth := "Somsak", "2012-05-01"
	updated, err := store.UpdateStudent(ctx, s.ID, school.StudentUpdate{
		FirstName:   &first,
		ClassroomID: &c2.ID,
		BirthDate:   &birth,
	})
	require.NoError(t, err)
	assert.Equal(t, school.Student{
		ID:          s.ID,
		StudentID:   "1001",
		FirstName:   "Somsak",
		LastName:    "Jaidee",
		ClassroomID: c2.ID,
		BirthDate:   null.StringFrom(birth),
		IsActive:    true,
	}, updated)

	got, err := store.GetStudent(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, updated, got)

	empty := ""
	updated, err = store.UpdateStudent(ctx, s.ID, school.StudentUpdate{BirthDate: &empty})
	require.NoError(t, err)
	assert.False(t, updated.BirthDate.Valid)

	taken := "1002"
	_, err = store.UpdateStudent(ctx, s.ID, school.StudentUpdate{StudentID: &taken})
	assert.ErrorIs(t, err, school.ErrStudentIDExists)

	unknown := 999
	_, err = store.UpdateStudent(ctx, s.ID, school.StudentUpdate{ClassroomID: &unknown})
	assert.ErrorIs(t, err, school.ErrUnknownClassroom)

	_, err = store.UpdateStudent(ctx, 999, school.StudentUpdate{FirstName: &first})
	assert.ErrorIs(t, err, school.ErrNotFound)

	// failed updates leave the row alone
	got, err = store.GetStudent(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "1001", got.StudentID)
	assert.Equal(t, c2.ID, got.ClassroomID)
}

func testImportStudents(t *testing.T, store school.Store, _ StoreFactory) {
	ctx := context.Background()
	c1 := CreateClassroom(t, store, "ม.1/1")
	c2 := CreateClassroom(t, store, "ม.1/2")
	CreateStudent(t, store, c1.ID, "1001", "Somchai", "Jaidee")

	imported, skipped, err := store.ImportStudents(ctx, []school.Student{
		{StudentID: "1001", FirstName: "Dup", ClassroomID: c1.ID},
		{StudentID: "1002", FirstName: "Suda", ClassroomID: c1.ID, BirthDate: null.StringFrom("2012-01-31")},
		{StudentID: "1003", FirstName: "Lost", ClassroomID: 999},
		{StudentID: "1002", FirstName: "Twice", ClassroomID: c1.ID},
		{StudentID: "1004", FirstName: "Mana", ClassroomID: c2.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, imported)
	assert.Equal(t, 3, skipped)

	rows, err := store.ListStudents(ctx, school.StudentFilter{})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	for _, r := range rows {
		assert.True(t, r.IsActive)
	}
	assert.Equal(t, "Suda", rows[1].FirstName)
	assert.Equal(t, null.StringFrom("2012-01-31"), rows[1].BirthDate)
}

func testAttendanceScenario(t *testing.T, store school.Store, _ StoreFactory) {
	ctx := context.Background()
	c, err := store.CreateClassroom(ctx, school.Classroom{Name: "ม.1/1", Level: "มัธยมศึกษาตอนต้น", AcademicYear: "2568"})
	require.NoError(t, err)
	a := CreateStudent(t, store, c.ID, "1001", "Somchai", "Jaidee")

	err = store.UpsertAttendance(ctx, school.Attendance{StudentID: a.ID, ClassroomID: c.ID, Date: day, Status: school.StatusPresent})
	require.NoError(t, err)

	rows, err := store.ListAttendance(ctx, c.ID, day)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, a.ID, rows[0].ID)
	assert.Equal(t, a.StudentID, rows[0].StudentID)
	assert.Equal(t, school.StatusPresent, rows[0].Status)
	assert.True(t, rows[0].Recorded)
}

func testAttendanceUpsert(t *testing.T, store school.Store, _ StoreFactory) {
	ctx := context.Background()
	c := CreateClassroom(t, store, "ม.1/1")
	a := CreateStudent(t, store, c.ID, "1001", "Somchai", "Jaidee")
	b := CreateStudent(t, store, c.ID, "1002", "Suda", "Rakdee")
	gone := CreateStudent(t, store, c.ID, "1003", "Mana", "Meesuk")
	require.NoError(t, store.DeactivateStudent(ctx, gone.ID))

	rows, err := store.ListAttendance(ctx, c.ID, day)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	for _, r := range rows {
		assert.Equal(t, school.StatusPresent, r.Status)
		assert.False(t, r.Recorded)
	}

	require.NoError(t, store.UpsertAttendance(ctx, school.Attendance{StudentID: a.ID, ClassroomID: c.ID, Date: day, Status: school.StatusPresent}))
	require.NoError(t, store.UpsertAttendance(ctx, school.Attendance{StudentID: a.ID, ClassroomID: c.ID, Date: day, Status: school.StatusAbsent, Note: "ป่วย"}))
	require.NoError(t, store.UpsertAttendance(ctx, school.Attendance{StudentID: b.ID, ClassroomID: c.ID, Date: "2025-07-01"}))

	rows, err = store.ListAttendance(ctx, c.ID, day)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, school.AttendanceRow{
		ID:        a.ID,
		StudentID: "1001",
		FirstName: "Somchai",
		LastName:  "Jaidee",
		Status:    school.StatusAbsent,
		Note:      "ป่วย",
		Recorded:  true,
	}, rows[0])
	assert.False(t, rows[1].Recorded)

	records, err := store.ListAttendanceRange(ctx, c.ID, "2025-06-01", "2025-06-30")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, school.StatusAbsent, records[0].Status)

	records, err = store.ListAttendanceRange(ctx, c.ID, "2025-06-01", "2025-07-01")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, school.StatusPresent, records[1].Status) // empty status defaults to present

	snap, err := store.Export(ctx)
	require.NoError(t, err)
	assert.Len(t, snap.Attendance, 2)

	err = store.UpsertAttendance(ctx, school.Attendance{StudentID: 999, ClassroomID: c.ID, Date: day, Status: school.StatusPresent})
	assert.ErrorIs(t, err, school.ErrUnknownStudent)
}

func testHealthChecks(t *testing.T, store school.Store, _ StoreFactory) {
	ctx := context.Background()
	c := CreateClassroom(t, store, "ม.1/1")
	a := CreateStudent(t, store, c.ID, "1001", "Somchai", "Jaidee")
	CreateStudent(t, store, c.ID, "1002", "Suda", "Rakdee")

	require.NoError(t, store.UpsertHealthCheck(ctx, school.HealthCheck{StudentID: a.ID, ClassroomID: c.ID, Date: day, BrushedTeeth: true}))
	require.NoError(t, store.UpsertHealthCheck(ctx, school.HealthCheck{StudentID: a.ID, ClassroomID: c.ID, Date: day, BrushedTeeth: true, DrankMilk: true, Note: "ok"}))

	rows, err := store.ListHealthChecks(ctx, c.ID, day)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, school.HealthCheckRow{
		ID:           a.ID,
		StudentID:    "1001",
		FirstName:    "Somchai",
		LastName:     "Jaidee",
		BrushedTeeth: true,
		DrankMilk:    true,
		Note:         "ok",
		Recorded:     true,
	}, rows[0])
	assert.False(t, rows[1].Recorded)
	assert.False(t, rows[1].BrushedTeeth)

	records, err := store.ListHealthCheckRange(ctx, c.ID, day, day)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.True(t, records[0].DrankMilk)

	err = store.UpsertHealthCheck(ctx, school.HealthCheck{StudentID: 999, ClassroomID: c.ID, Date: day})
	assert.ErrorIs(t, err, school.ErrUnknownStudent)
}

func testMeasurements(t *testing.T, store school.Store, _ StoreFactory) {
	ctx := context.Background()
	c := CreateClassroom(t, store, "ม.1/1")
	a := CreateStudent(t, store, c.ID, "1001", "Somchai", "Jaidee")
	CreateStudent(t, store, c.ID, "1002", "Suda", "Rakdee")

	require.NoError(t, store.UpsertMeasurement(ctx, school.Measurement{StudentID: a.ID, ClassroomID: c.ID, Date: day, Weight: 55, Height: 160}))
	require.NoError(t, store.UpsertMeasurement(ctx, school.Measurement{StudentID: a.ID, ClassroomID: c.ID, Date: day, Weight: 60, Height: 165}))

	rows, err := store.ListMeasurements(ctx, c.ID, day)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, a.ID, rows[0].ID)
	assert.Equal(t, 60.0, rows[0].Weight)
	assert.Equal(t, 165.0, rows[0].Height)
	assert.True(t, rows[0].Recorded)
	assert.False(t, rows[1].Recorded)
	assert.Zero(t, rows[1].Weight)

	records, err := store.ListMeasurementRange(ctx, c.ID, "2025-01-01", "2025-12-31")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 60.0, records[0].Weight)

	err = store.UpsertMeasurement(ctx, school.Measurement{StudentID: 999, ClassroomID: c.ID, Date: day})
	assert.ErrorIs(t, err, school.ErrUnknownStudent)
}

func testGrades(t *testing.T, store school.Store, _ StoreFactory) {
	ctx := context.Background()
	c := CreateClassroom(t, store, "ม.1/1")
	a := CreateStudent(t, store, c.ID, "1001", "Somchai", "Jaidee")
	b := CreateStudent(t, store, c.ID, "1002", "Suda", "Rakdee")

	grade := school.Grade{StudentID: a.ID, ClassroomID: c.ID, SubjectCode: "MATH", Semester: 1, AcademicYear: "2568", Score: 75}
	require.NoError(t, store.UpsertGrade(ctx, grade))
	grade.Score = 85
	require.NoError(t, store.UpsertGrade(ctx, grade))
	require.NoError(t, store.UpsertGrade(ctx, school.Grade{StudentID: b.ID, ClassroomID: c.ID, SubjectCode: "TH", Semester: 2, AcademicYear: "2568", Score: 60}))

	rows, err := store.ListGrades(ctx, school.GradeFilter{ClassroomID: c.ID, Semester: 1, AcademicYear: "2568"})
	require.NoError(t, err)
	n := len(school.DefaultSubjects)
	require.Len(t, rows, 2*n)
	for i, r := range rows {
		if i < n {
			assert.Equal(t, a.ID, r.ID)
		} else {
			assert.Equal(t, b.ID, r.ID)
			assert.False(t, r.Score.Valid, "other semester")
		}
		if r.ID == a.ID && r.SubjectCode == "MATH" {
			assert.Equal(t, null.Float64From(85), r.Score)
			assert.Equal(t, "คณิตศาสตร์", r.SubjectName)
		}
	}
	assert.True(t, sort.SliceIsSorted(rows[:n], func(i, j int) bool { return rows[i].SubjectName < rows[j].SubjectName }))

	grades, err := store.ListStudentGrades(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, grades, 1)
	assert.Equal(t, 85.0, grades[0].Score)

	grades, err = store.ListStudentGrades(ctx, a.ID, b.ID)
	require.NoError(t, err)
	require.Len(t, grades, 2)
	assert.Less(t, grades[0].ID, grades[1].ID)

	grades, err = store.ListStudentGrades(ctx)
	require.NoError(t, err)
	assert.NotNil(t, grades)
	assert.Empty(t, grades)

	grade.StudentID = 999
	assert.ErrorIs(t, store.UpsertGrade(ctx, grade), school.ErrUnknownStudent)
}

func testSchedule(t *testing.T, store school.Store, _ StoreFactory) {
	ctx := context.Background()
	c := CreateClassroom(t, store, "ม.1/1")
	other := CreateClassroom(t, store, "ม.1/2")

	slot := school.ScheduleSlot{ClassroomID: c.ID, DayOfWeek: 2, Period: 3, SubjectCode: "MATH", SubjectName: "คณิตศาสตร์"}
	require.NoError(t, store.UpsertScheduleSlot(ctx, slot))
	slot.SubjectCode, slot.SubjectName, slot.Room = "SCI", "วิทยาศาสตร์", "Lab 1"
	require.NoError(t, store.UpsertScheduleSlot(ctx, slot))
	require.NoError(t, store.UpsertScheduleSlot(ctx, school.ScheduleSlot{ClassroomID: c.ID, DayOfWeek: 1, Period: 8, SubjectCode: "CLUB", SubjectName: "ชุมนุม"}))
	require.NoError(t, store.UpsertScheduleSlot(ctx, school.ScheduleSlot{ClassroomID: other.ID, DayOfWeek: 1, Period: 1, SubjectCode: "TH"}))

	slots, err := store.ListSchedule(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, "1-8", slots[0].Key())
	assert.Empty(t, slots[0].Color) // not in the catalog
	assert.Equal(t, "2-3", slots[1].Key())
	assert.Equal(t, "SCI", slots[1].SubjectCode)
	assert.Equal(t, "Lab 1", slots[1].Room)
	assert.Equal(t, "#F59E0B", slots[1].Color)

	err = store.UpsertScheduleSlot(ctx, school.ScheduleSlot{ClassroomID: 999, DayOfWeek: 1, Period: 1})
	assert.ErrorIs(t, err, school.ErrUnknownClassroom)
}

func testDeleteClassroomCascades(t *testing.T, store school.Store, _ StoreFactory) {
	ctx := context.Background()
	c1, c2 := Populate(t, store)

	require.NoError(t, store.DeleteClassroom(ctx, c1.ID))

	list, err := store.ListClassrooms(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, c2.ID, list[0].ID)

	snap, err := store.Export(ctx)
	require.NoError(t, err)
	require.Len(t, snap.Students, 1)
	survivor := snap.Students[0].ID
	assert.Equal(t, c2.ID, snap.Students[0].ClassroomID)
	for _, a := range snap.Attendance {
		assert.Equal(t, survivor, a.StudentID)
	}
	for _, h := range snap.HealthChecks {
		assert.Equal(t, survivor, h.StudentID)
	}
	for _, m := range snap.Measurements {
		assert.Equal(t, survivor, m.StudentID)
	}
	for _, g := range snap.Grades {
		assert.Equal(t, survivor, g.StudentID)
	}
	for _, slot := range snap.Schedule {
		assert.Equal(t, c2.ID, slot.ClassroomID)
	}
	assert.Len(t, snap.Attendance, 1)
	assert.Len(t, snap.HealthChecks, 1)
	assert.Len(t, snap.Measurements, 1)
	assert.Len(t, snap.Grades, 1)
	assert.Len(t, snap.Schedule, 1)
	assert.Len(t, snap.Subjects, len(school.DefaultSubjects))
}

func testExportImportRoundTrip(t *testing.T, store school.Store, newStore StoreFactory) {
	ctx := context.Background()
	Populate(t, store)

	first, err := store.Export(ctx)
	require.NoError(t, err)
	assert.Len(t, first.Classrooms, 2)
	assert.Len(t, first.Students, 3)
	assert.Len(t, first.Attendance, 3)
	assert.Len(t, first.Schedule, 2)

	other := newStore(t)
	t.Cleanup(func() { _ = other.Close() })
	require.NoError(t, other.Import(ctx, first))

	second, err := other.Export(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// importing the same snapshot again changes nothing
	require.NoError(t, other.Import(ctx, second))
	third, err := other.Export(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, third)
}

func testImportMovesCounters(t *testing.T, store school.Store, _ StoreFactory) {
	ctx := context.Background()
	CreateClassroom(t, store, "ม.1/1")

	err := store.Import(ctx, school.Snapshot{
		Classrooms: []school.Classroom{{ID: 40, Name: "ม.3/1", Level: "มัธยมศึกษาตอนต้น", AcademicYear: "2568", CreatedAt: time.Date(2025, 5, 16, 8, 0, 0, 0, time.UTC)}},
		Students: []school.Student{
			{ID: 75, StudentID: "3001", FirstName: "Somchai", ClassroomID: 40, IsActive: true},
			{ID: 12, StudentID: "3002", FirstName: "Suda", ClassroomID: 40, IsActive: true},
		},
	})
	require.NoError(t, err)

	s := CreateStudent(t, store, 40, "3003", "Mana", "Meesuk")
	assert.Greater(t, s.ID, 75)
	c := CreateClassroom(t, store, "ม.3/2")
	assert.Greater(t, c.ID, 40)

	got, err := store.GetStudent(ctx, 12)
	require.NoError(t, err)
	assert.Equal(t, "3002", got.StudentID)
}

func testImportRejectsBrokenSnapshot(t *testing.T, store school.Store, _ StoreFactory) {
	ctx := context.Background()
	c := CreateClassroom(t, store, "ม.1/1")
	s := CreateStudent(t, store, c.ID, "1001", "Somchai", "Jaidee")
	require.NoError(t, store.UpsertAttendance(ctx, school.Attendance{StudentID: s.ID, ClassroomID: c.ID, Date: day}))
	before, err := store.Export(ctx)
	require.NoError(t, err)

	tests := []struct {
		name string
		snap school.Snapshot
	}{
		{"unknown classroom", school.Snapshot{
			Students: []school.Student{{ID: 1, StudentID: "1001", FirstName: "A", ClassroomID: 999, IsActive: true}},
		}},
		{"orphaned records", school.Snapshot{
			Classrooms: []school.Classroom{{ID: 5, Name: "ม.2/1"}},
			Students:   []school.Student{{ID: 7, StudentID: "2001", FirstName: "A", ClassroomID: 5, IsActive: true}},
		}},
		{"unknown student", school.Snapshot{
			Grades: []school.Grade{{ID: 1, StudentID: 999, SubjectCode: "MATH", Semester: 1, AcademicYear: "2568"}},
		}},
		{"duplicate ids", school.Snapshot{
			Subjects: []school.Subject{{ID: 1, Name: "A", Code: "A"}, {ID: 1, Name: "B", Code: "B"}},
		}},
		{"duplicate natural key", school.Snapshot{
			Subjects: []school.Subject{{ID: 1, Name: "A", Code: "A"}, {ID: 2, Name: "B", Code: "A"}},
		}},
		{"bad status", school.Snapshot{
			Attendance: []school.Attendance{{ID: 1, StudentID: s.ID, ClassroomID: c.ID, Date: day, Status: "asleep"}},
		}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := store.Import(ctx, tc.snap)
			assert.ErrorIs(t, err, school.ErrInvalidSnapshot)

			after, err := store.Export(ctx)
			require.NoError(t, err)
			assert.Equal(t, before, after)
		})
	}
}

func testImportPartial(t *testing.T, store school.Store, _ StoreFactory) {
	ctx := context.Background()
	c1, _ := Populate(t, store)

	err := store.Import(ctx, school.Snapshot{
		Subjects:   []school.Subject{{ID: 3, Name: "ดนตรี", Code: "MUS", Color: "#000000"}},
		Attendance: []school.Attendance{},
	})
	require.NoError(t, err)

	subjects, err := store.ListSubjects(ctx)
	require.NoError(t, err)
	assert.Equal(t, []school.Subject{{ID: 3, Name: "ดนตรี", Code: "MUS", Color: "#000000"}}, subjects)

	snap, err := store.Export(ctx)
	require.NoError(t, err)
	assert.Empty(t, snap.Attendance)
	assert.Len(t, snap.Classrooms, 2)
	assert.Len(t, snap.Students, 3)
	assert.Len(t, snap.HealthChecks, 3)

	rows, err := store.ListGrades(ctx, school.GradeFilter{ClassroomID: c1.ID, Semester: 1, AcademicYear: "2568"})
	require.NoError(t, err)
	assert.Len(t, rows, 1) // one active student, one subject
}

func testClear(t *testing.T, store school.Store, _ StoreFactory) {
	ctx := context.Background()
	Populate(t, store)

	require.NoError(t, store.Clear(ctx))

	snap, err := store.Export(ctx)
	require.NoError(t, err)
	assert.Empty(t, snap.Classrooms)
	assert.Empty(t, snap.Students)
	assert.Empty(t, snap.Grades)
	assert.Empty(t, snap.Schedule)
	assert.Empty(t, snap.Attendance)
	assert.Empty(t, snap.HealthChecks)
	assert.Empty(t, snap.Measurements)
	assert.Len(t, snap.Subjects, len(school.DefaultSubjects))

	c := CreateClassroom(t, store, "ม.1/1")
	assert.Equal(t, 1, c.ID)
	s := CreateStudent(t, store, c.ID, "1001", "Somchai", "Jaidee")
	assert.Equal(t, 1, s.ID)
}
