package sheetsvc

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"
	"github.com/xuri/excelize/v2"

	"github.com/trezcool/darasa/core/school"
)

func workbook(t *testing.T, rows [][]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	for i, row := range rows {
		row := row
		require.NoError(t, f.SetSheetRow("Sheet1", cell("A", i+1), &row))
	}
	buf := new(bytes.Buffer)
	require.NoError(t, f.Write(buf))
	return buf
}

func openWorkbook(t *testing.T, buf *bytes.Buffer) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func value(t *testing.T, f *excelize.File, sheet, axis string) string {
	t.Helper()
	v, err := f.GetCellValue(sheet, axis)
	require.NoError(t, err)
	return v
}

func TestParseRoster(t *testing.T) {
	buf := workbook(t, [][]interface{}{
		{"ชื่อ", "นามสกุล", " รหัสนักเรียน ", "ห้อง", "เพศ", "วันเกิด"},
		{"สมชาย", "ใจดี", "1001", "ม.1/1", "ชาย", "01/05/2555"},
		{},
		{" Suda ", "Rakthai", "1002", "", "หญิง"},
	})

	rows, err := ParseRoster(buf)
	require.NoError(t, err)
	assert.Equal(t, []school.RosterRow{
		{StudentID: "1001", FirstName: "สมชาย", LastName: "ใจดี", Classroom: "ม.1/1", Gender: "ชาย", BirthDate: "2012-05-01"},
		{StudentID: "1002", FirstName: "Suda", LastName: "Rakthai", Gender: "หญิง"},
	}, rows)
}

func TestParseRoster_errors(t *testing.T) {
	tests := []struct {
		name string
		file *bytes.Buffer
		err  error
	}{
		{
			name: "not a workbook",
			file: bytes.NewBufferString("student_id,first_name\n1001,Somchai\n"),
			err:  ErrUnreadable,
		},
		{
			name: "header only",
			file: workbook(t, [][]interface{}{{"student_id", "first_name"}}),
			err:  ErrNoRows,
		},
		{
			name: "blank rows only",
			file: workbook(t, [][]interface{}{{"student_id", "first_name"}, {}, {""}}),
			err:  ErrNoRows,
		},
		{
			name: "missing id column",
			file: workbook(t, [][]interface{}{{"name", "first_name"}, {"x", "Somchai"}}),
			err:  ErrBadHeader,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRoster(tt.file)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestParseRoster_tooManyRows(t *testing.T) {
	rows := [][]interface{}{{"student_id", "first_name"}}
	for i := 0; i <= MaxRosterRows; i++ {
		rows = append(rows, []interface{}{i, "x"})
	}
	_, err := ParseRoster(workbook(t, rows))
	assert.ErrorIs(t, err, ErrTooManyRows)
}

func TestNormalizeDate(t *testing.T) {
	tests := map[string]string{
		"":           "",
		"2012-05-01": "2012-05-01",
		"2555-05-01": "2012-05-01",
		"1/5/2012":   "2012-05-01",
		"01/05/2555": "2012-05-01",
		"01-05-2012": "2012-05-01",
		"41030":      "2012-05-01",
		"someday":    "someday",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeDate(in), in)
	}
}

func TestWriteRoster(t *testing.T) {
	students := []school.StudentRow{
		{Student: school.Student{StudentID: "1001", FirstName: "Somchai", LastName: "Jaidee", Gender: "M", BirthDate: null.StringFrom("2012-05-01")}, ClassroomName: "ม.1/1"},
		{Student: school.Student{StudentID: "1002", FirstName: "Suda", LastName: "Rakthai"}, ClassroomName: "ม.1/2"},
	}
	buf := new(bytes.Buffer)
	require.NoError(t, WriteRoster(buf, students))

	rows, err := ParseRoster(buf)
	require.NoError(t, err)
	assert.Equal(t, []school.RosterRow{
		{StudentID: "1001", FirstName: "Somchai", LastName: "Jaidee", Classroom: "ม.1/1", Gender: "M", BirthDate: "2012-05-01"},
		{StudentID: "1002", FirstName: "Suda", LastName: "Rakthai", Classroom: "ม.1/2"},
	}, rows)
}

func TestWriteAttendanceReport(t *testing.T) {
	report := school.ClassroomReport{
		Classroom: school.Classroom{ID: 1, Name: "ม.1/1", CreatedAt: time.Now().UTC()},
		Students: []school.StudentRow{
			{Student: school.Student{ID: 1, StudentID: "1001", FirstName: "Somchai", LastName: "Jaidee"}},
			{Student: school.Student{ID: 2, StudentID: "1002", FirstName: "Suda", LastName: "Rakthai"}},
		},
		Attendance: []school.Attendance{
			{StudentID: 1, Date: "2025-06-02", Status: school.StatusPresent},
			{StudentID: 2, Date: "2025-06-02", Status: school.StatusAbsent},
			{StudentID: 2, Date: "2025-06-03", Status: school.StatusLate},
			{StudentID: 9, Date: "2025-06-03", Status: school.StatusLeave}, // no longer listed
		},
		Health: []school.HealthCheck{
			{StudentID: 1, Date: "2025-06-03", BrushedTeeth: true},
		},
		AttendanceDates: []string{"2025-06-02", "2025-06-03"},
		HealthDates:     []string{"2025-06-03"},
		From:            "2025-06-01",
		To:              "2025-06-30",
	}

	buf := new(bytes.Buffer)
	require.NoError(t, WriteAttendanceReport(buf, report))
	f := openWorkbook(t, buf)

	assert.Equal(t, []string{AttendanceSheet, HealthSheet}, f.GetSheetList())
	assert.True(t, strings.HasPrefix(value(t, f, AttendanceSheet, "A1"), "รายงานการมาเรียน ม.1/1"))
	assert.Equal(t, "รหัสนักเรียน", value(t, f, AttendanceSheet, "B2"))
	assert.Equal(t, "2025-06-02", value(t, f, AttendanceSheet, "E2"))
	assert.Equal(t, "2025-06-03", value(t, f, AttendanceSheet, "F2"))

	assert.Equal(t, "1001", value(t, f, AttendanceSheet, "B3"))
	assert.Equal(t, "มา", value(t, f, AttendanceSheet, "E3"))
	assert.Equal(t, "", value(t, f, AttendanceSheet, "F3"))
	assert.Equal(t, "ขาด", value(t, f, AttendanceSheet, "E4"))
	assert.Equal(t, "สาย", value(t, f, AttendanceSheet, "F4"))
	assert.Equal(t, "", value(t, f, AttendanceSheet, "B5"))

	assert.Equal(t, "แปรงฟัน ✓ นม ✗", value(t, f, HealthSheet, "E3"))
	assert.Equal(t, "", value(t, f, HealthSheet, "E4"))
}

func TestWriteGradeBook(t *testing.T) {
	rows := []school.GradeRow{
		{ID: 1, StudentID: "1001", FirstName: "Somchai", SubjectCode: "MATH", SubjectName: "คณิตศาสตร์", Score: null.Float64From(85)},
		{ID: 1, StudentID: "1001", FirstName: "Somchai", SubjectCode: "TH", SubjectName: "ภาษาไทย", Score: null.Float64From(72)},
		{ID: 2, StudentID: "1002", FirstName: "Suda", SubjectCode: "MATH", SubjectName: "คณิตศาสตร์", Score: null.Float64From(49)},
		{ID: 2, StudentID: "1002", FirstName: "Suda", SubjectCode: "TH", SubjectName: "ภาษาไทย"},
		{ID: 3, StudentID: "1003", FirstName: "Niran", SubjectCode: "MATH", SubjectName: "คณิตศาสตร์"},
		{ID: 3, StudentID: "1003", FirstName: "Niran", SubjectCode: "TH", SubjectName: "ภาษาไทย"},
	}

	buf := new(bytes.Buffer)
	require.NoError(t, WriteGradeBook(buf, school.Classroom{Name: "ม.1/1"}, 1, "2568", rows))
	f := openWorkbook(t, buf)

	assert.Equal(t, "ผลการเรียน ม.1/1 ภาคเรียนที่ 1 ปีการศึกษา 2568", value(t, f, GradeSheet, "A1"))
	assert.Equal(t, "คณิตศาสตร์", value(t, f, GradeSheet, "E2"))
	assert.Equal(t, "ภาษาไทย", value(t, f, GradeSheet, "F2"))
	assert.Equal(t, "GPA", value(t, f, GradeSheet, "G2"))

	assert.Equal(t, "85", value(t, f, GradeSheet, "E3"))
	assert.Equal(t, "72", value(t, f, GradeSheet, "F3"))
	assert.Equal(t, "3.5", value(t, f, GradeSheet, "G3")) // (4 + 3) / 2

	assert.Equal(t, "49", value(t, f, GradeSheet, "E4"))
	assert.Equal(t, "", value(t, f, GradeSheet, "F4"))
	assert.Equal(t, "0", value(t, f, GradeSheet, "G4"))

	assert.Equal(t, "1003", value(t, f, GradeSheet, "B5"))
	assert.Equal(t, "", value(t, f, GradeSheet, "G5"))
}
