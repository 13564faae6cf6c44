package school_test

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/school"
	"github.com/trezcool/darasa/storage/database/memory"
	"github.com/trezcool/darasa/tests"
)

func newService(t *testing.T) (*school.Service, *memdb.DB) {
	db, err := memdb.Open()
	require.NoError(t, err)
	return school.NewService(db), db
}

func TestService_ImportRoster(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()
	c1 := testutil.CreateClassroom(t, db, "ม.1/1")
	c2 := testutil.CreateClassroom(t, db, "ม.1/2")
	testutil.CreateStudent(t, db, c1.ID, "1001", "Somchai", "Jaidee")

	// 1001 is taken, ม.9/9 does not exist and one row has no code
	res, err := svc.ImportRoster(ctx, []school.RosterRow{
		{StudentID: "1001", FirstName: "Dup", Classroom: "ม.1/1"},
		{StudentID: " 1002 ", FirstName: " Suda ", Classroom: " ม.1/2 "},
		{StudentID: "1003", FirstName: "Mana"},
		{StudentID: "1004", FirstName: "Niran", Classroom: "ม.9/9"},
		{StudentID: "", FirstName: "Nobody", Classroom: "ม.1/1"},
		{StudentID: "1005", FirstName: "Pim", Classroom: "ม.1/1", BirthDate: "soon"},
	}, "ม.1/2")
	require.NoError(t, err)
	assert.Equal(t, school.ImportResult{Imported: 3, Skipped: 3}, res)

	rows, err := svc.ListStudents(ctx, school.StudentFilter{ClassroomID: c2.ID})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "1002", rows[0].StudentID)
	assert.Equal(t, "Suda", rows[0].FirstName)
	assert.Equal(t, "1003", rows[1].StudentID)

	rows, err = svc.ListStudents(ctx, school.StudentFilter{Search: "pim"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.False(t, rows[0].BirthDate.Valid)
}

func TestService_SaveAttendanceSheet(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()
	c := testutil.CreateClassroom(t, db, "ม.1/1")
	s1 := testutil.CreateStudent(t, db, c.ID, "1001", "Somchai", "Jaidee")
	s2 := testutil.CreateStudent(t, db, c.ID, "1002", "Suda", "Rakdee")

	err := svc.SaveAttendanceSheet(ctx, school.AttendanceSheet{
		Date:        "2025-06-02",
		ClassroomID: c.ID,
		Attendance:  map[string]school.AttendanceEntry{"1": {Status: "ลา", Note: " fever "}},
		Health:      map[string]school.HealthEntry{"2": {BrushedTeeth: true, DrankMilk: true}},
	})
	require.NoError(t, err)

	rows, err := svc.AttendanceSheet(ctx, c.ID, "2025-06-02")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, s1.ID, rows[0].ID)
	assert.Equal(t, school.StatusLeave, rows[0].Status)
	assert.Equal(t, "fever", rows[0].Note)
	assert.True(t, rows[0].Recorded)
	assert.False(t, rows[0].HealthRecorded)

	assert.Equal(t, s2.ID, rows[1].ID)
	assert.Equal(t, school.StatusPresent, rows[1].Status)
	assert.False(t, rows[1].Recorded)
	assert.True(t, rows[1].BrushedTeeth)
	assert.True(t, rows[1].DrankMilk)
	assert.True(t, rows[1].HealthRecorded)

	err = svc.SaveAttendanceSheet(ctx, school.AttendanceSheet{
		Date: "2025-06-02", ClassroomID: c.ID,
		Attendance: map[string]school.AttendanceEntry{"1": {Status: "sick"}},
	})
	var valErr *core.ValidationError
	assert.ErrorAs(t, err, &valErr)

	// a bad key or status anywhere in the sheet rejects all of it
	for _, sheet := range []school.AttendanceSheet{
		{Attendance: map[string]school.AttendanceEntry{"1": {Status: "ขาด"}, "x": {Status: "ขาด"}}},
		{Attendance: map[string]school.AttendanceEntry{"1": {Status: "ขาด"}, "2": {Status: "sick"}}},
		{
			Attendance: map[string]school.AttendanceEntry{"1": {Status: "ขาด"}},
			Health:     map[string]school.HealthEntry{"2": {}, "two": {}},
		},
	} {
		sheet.Date, sheet.ClassroomID = "2025-06-02", c.ID
		err = svc.SaveAttendanceSheet(ctx, sheet)
		assert.ErrorAs(t, err, &valErr)
	}
	rows, err = svc.AttendanceSheet(ctx, c.ID, "2025-06-02")
	require.NoError(t, err)
	assert.Equal(t, school.StatusLeave, rows[0].Status)
	assert.True(t, rows[1].BrushedTeeth)
	assert.True(t, rows[1].DrankMilk)
}

func TestService_RecordMeasurement(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()
	c := testutil.CreateClassroom(t, db, "ม.1/1")
	s := testutil.CreateStudent(t, db, c.ID, "1001", "Somchai", "Jaidee")

	r, err := svc.RecordMeasurement(ctx, school.NewMeasurement{StudentID: s.ID, Date: "2025-06-02", Weight: 60, Height: 165})
	require.NoError(t, err)
	assert.Equal(t, c.ID, r.ClassroomID)
	assert.Equal(t, 22.0, r.BMI)
	assert.Equal(t, school.BMINormal, r.BMIStatus)

	_, err = svc.RecordMeasurement(ctx, school.NewMeasurement{StudentID: 99, Date: "2025-06-02", Weight: 60, Height: 165})
	assert.ErrorIs(t, err, school.ErrUnknownStudent)

	rows, err := svc.Measurements(ctx, c.ID, "2025-06-02")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 22.0, rows[0].BMI)

	readings, err := svc.MeasurementsInRange(ctx, c.ID, "2025-06-03", "2025-06-30")
	require.NoError(t, err)
	assert.Empty(t, readings)
}

func TestService_SaveGradeSheet(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()
	c := testutil.CreateClassroom(t, db, "ม.1/1")
	s := testutil.CreateStudent(t, db, c.ID, "1001", "Somchai", "Jaidee")

	saved, err := svc.SaveGradeSheet(ctx, school.GradeSheet{
		ClassroomID:  c.ID,
		Semester:     1,
		AcademicYear: "2568",
		Scores: map[string]map[string]interface{}{
			"1": {"MATH": 85.0, "TH": "72", "SCI": nil, "SOC": "", "PE": math.NaN(), " ": 50.0},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, saved)

	rows, err := svc.Grades(ctx, school.GradeFilter{ClassroomID: c.ID, Semester: 1, AcademicYear: "2568"})
	require.NoError(t, err)
	got := make(map[string]float64)
	for _, r := range rows {
		require.Equal(t, s.ID, r.ID)
		if r.Score.Valid {
			got[r.SubjectCode] = r.Score.Float64
		}
	}
	assert.Equal(t, map[string]float64{"MATH": 85, "TH": 72}, got)

	// resaving overwrites
	saved, err = svc.SaveGradeSheet(ctx, school.GradeSheet{
		ClassroomID: c.ID, Semester: 1, AcademicYear: "2568",
		Scores: map[string]map[string]interface{}{"1": {"MATH": 90.0}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, saved)
	res, err := svc.Search(ctx, "somchai")
	require.NoError(t, err)
	require.Len(t, res.Grades, 2)

	saved, err = svc.SaveGradeSheet(ctx, school.GradeSheet{
		ClassroomID: c.ID, Semester: 1, AcademicYear: "2568",
		Scores: map[string]map[string]interface{}{"1": {"MATH": 10.0, "SCI": 60.0}, "x": {"MATH": 90.0}},
	})
	var valErr *core.ValidationError
	assert.ErrorAs(t, err, &valErr)
	assert.Equal(t, 0, saved)

	// nothing of the rejected sheet was written
	res, err = svc.Search(ctx, "somchai")
	require.NoError(t, err)
	require.Len(t, res.Grades, 2)
	for _, g := range res.Grades {
		assert.NotEqual(t, "SCI", g.SubjectCode)
		if g.SubjectCode == "MATH" {
			assert.Equal(t, 90.0, g.Score)
		}
	}
}

func TestService_SaveSchedule(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()
	c := testutil.CreateClassroom(t, db, "ม.1/1")

	saved, err := svc.SaveSchedule(ctx, school.ScheduleSheet{
		ClassroomID: c.ID,
		Slots: map[string]school.SlotEntry{
			"2-1": {SubjectCode: "SCI", SubjectName: "วิทยาศาสตร์"},
			"1-2": {SubjectCode: "TH", SubjectName: "ภาษาไทย", Room: " 101 "},
			"1-1": {SubjectCode: "MATH"},
			"3-3": {SubjectCode: " ", SubjectName: ""},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, saved)

	slots, err := svc.Schedule(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, slots, 3)
	keys := []string{slots[0].Key(), slots[1].Key(), slots[2].Key()}
	assert.Equal(t, []string{"1-1", "1-2", "2-1"}, keys)
	assert.Equal(t, "#3B82F6", slots[1].Color)
	assert.Equal(t, "101", slots[1].Room)

	_, err = svc.SaveSchedule(ctx, school.ScheduleSheet{
		ClassroomID: 99,
		Slots:       map[string]school.SlotEntry{"1-1": {SubjectCode: "MATH"}},
	})
	assert.ErrorIs(t, err, school.ErrUnknownClassroom)

	saved, err = svc.SaveSchedule(ctx, school.ScheduleSheet{
		ClassroomID: c.ID,
		Slots:       map[string]school.SlotEntry{"1-1": {SubjectCode: "ART"}, "8-1": {SubjectCode: "PE"}},
	})
	var valErr *core.ValidationError
	assert.ErrorAs(t, err, &valErr)
	assert.Equal(t, 0, saved)
	slots, err = svc.Schedule(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "MATH", slots[0].SubjectCode)
}

func TestService_Search(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()
	testutil.Populate(t, db)

	tests := []struct {
		name       string
		query      string
		wantIDs    []string
		wantGrades int
	}{
		{name: "too short", query: "s"},
		{name: "blank", query: "   "},
		{name: "first name", query: "SOM", wantIDs: []string{"1001"}, wantGrades: 1},
		{name: "code", query: "100", wantIDs: []string{"1001", "1002"}, wantGrades: 2},
		{name: "inactive hidden", query: "mana"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := svc.Search(ctx, tt.query)
			require.NoError(t, err)
			ids := make([]string, 0, len(res.Students))
			for _, s := range res.Students {
				ids = append(ids, s.StudentID)
			}
			if tt.wantIDs == nil {
				tt.wantIDs = []string{}
			}
			assert.Equal(t, tt.wantIDs, ids)
			assert.Len(t, res.Grades, tt.wantGrades)
			assert.NotNil(t, res.Grades)
		})
	}
}

func TestService_Report(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()
	c1, _ := testutil.Populate(t, db)

	report, err := svc.Report(ctx, school.ReportFilter{ClassroomID: c1.ID, From: "2025-06-01", To: "2025-06-01"})
	require.NoError(t, err)
	assert.Equal(t, c1.Name, report.Classroom.Name)
	require.Len(t, report.Students, 1)
	assert.Equal(t, []string{"2025-06-01"}, report.AttendanceDates)
	assert.Equal(t, []string{"2025-06-01"}, report.HealthDates)
	for _, a := range report.Attendance {
		assert.Equal(t, c1.ID, a.ClassroomID)
	}

	report, err = svc.Report(ctx, school.ReportFilter{ClassroomID: c1.ID, From: "2025-06-02", To: "2025-06-30"})
	require.NoError(t, err)
	assert.NotNil(t, report.Attendance)
	assert.Empty(t, report.Attendance)
	assert.Empty(t, report.HealthDates)

	_, err = svc.Report(ctx, school.ReportFilter{ClassroomID: 99, From: "2025-06-01", To: "2025-06-30"})
	assert.ErrorIs(t, err, school.ErrNotFound)
}

func TestService_ExportImport(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()
	testutil.Populate(t, db)
	stamp := time.Date(2025, 6, 1, 8, 30, 0, 0, time.FixedZone("ICT", 7*3600))
	school.SetClock(svc, func() time.Time { return stamp })

	snap, err := svc.Export(ctx)
	require.NoError(t, err)
	assert.Equal(t, stamp.UTC(), snap.ExportedAt)
	assert.Equal(t, time.UTC, snap.ExportedAt.Location())
	assert.Equal(t, school.SnapshotVersion, snap.Version)

	other, _ := newService(t)
	require.NoError(t, other.Import(ctx, snap))
	copied, err := other.Export(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, snap.Students, copied.Students)
	assert.ElementsMatch(t, snap.Grades, copied.Grades)

	require.NoError(t, svc.Clear(ctx))
	cleared, err := svc.Export(ctx)
	require.NoError(t, err)
	assert.Empty(t, cleared.Classrooms)
	assert.Len(t, cleared.Subjects, len(school.DefaultSubjects))
}
