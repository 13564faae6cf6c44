package school

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAttendanceStatus(t *testing.T) {
	tests := []struct {
		in     string
		want   AttendanceStatus
		wantOk bool
	}{
		{"", StatusPresent, true},
		{"present", StatusPresent, true},
		{"Absent", StatusAbsent, true},
		{" late ", StatusLate, true},
		{"มา", StatusPresent, true},
		{"ขาด", StatusAbsent, true},
		{"ลา", StatusLeave, true},
		{"สาย", StatusLate, true},
		{"sick", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseAttendanceStatus(tt.in)
		if got != tt.want || ok != tt.wantOk {
			t.Errorf("ParseAttendanceStatus(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.wantOk)
		}
	}
	assert.Equal(t, "ขาด", StatusAbsent.Thai())
}

func TestParseSlotKey(t *testing.T) {
	day, period, err := ParseSlotKey("3-7")
	require.NoError(t, err)
	assert.Equal(t, 3, day)
	assert.Equal(t, 7, period)
	assert.Equal(t, "3-7", SlotKey(day, period))

	for _, key := range []string{"", "3", "0-1", "6-1", "1-0", "1-11", "a-b", "1-2-3"} {
		_, _, err := ParseSlotKey(key)
		assert.Error(t, err, key)
	}
}

func TestSlotEntry_IsEmpty(t *testing.T) {
	assert.True(t, SlotEntry{Room: "201"}.IsEmpty())
	assert.True(t, SlotEntry{SubjectCode: " ", SubjectName: ""}.IsEmpty())
	assert.False(t, SlotEntry{SubjectName: "ชุมนุม"}.IsEmpty())
	assert.False(t, SlotEntry{SubjectCode: "MATH"}.IsEmpty())
}

func TestCheckbox_UnmarshalJSON(t *testing.T) {
	var entry struct {
		A Checkbox `json:"a"`
		B Checkbox `json:"b"`
		C Checkbox `json:"c"`
		D Checkbox `json:"d"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":true,"b":1,"c":"0","d":null}`), &entry))
	assert.True(t, bool(entry.A))
	assert.True(t, bool(entry.B))
	assert.False(t, bool(entry.C))
	assert.False(t, bool(entry.D))

	assert.Error(t, json.Unmarshal([]byte(`{"a":"maybe"}`), &entry))
}

func TestStudentUpdate_Apply(t *testing.T) {
	s := Student{ID: 4, StudentID: "001", FirstName: "Somchai", LastName: "Jaidee", ClassroomID: 1, IsActive: true}
	fn, cls, bd := "Somsak", 2, "2015-01-31"
	StudentUpdate{FirstName: &fn, ClassroomID: &cls, BirthDate: &bd}.Apply(&s)

	assert.Equal(t, 4, s.ID)
	assert.Equal(t, "001", s.StudentID)
	assert.Equal(t, "Somsak", s.FirstName)
	assert.Equal(t, "Jaidee", s.LastName)
	assert.Equal(t, 2, s.ClassroomID)
	assert.Equal(t, "2015-01-31", s.BirthDate.String)
	assert.True(t, s.IsActive)

	empty := ""
	StudentUpdate{BirthDate: &empty}.Apply(&s)
	assert.False(t, s.BirthDate.Valid)
}

func TestStudentUpdate_IgnoresUnlistedFields(t *testing.T) {
	var upd StudentUpdate
	payload := `{"first_name":"Mali","is_active":false,"id":99,"created_at":"x"}`
	require.NoError(t, json.Unmarshal([]byte(payload), &upd))

	s := Student{ID: 1, FirstName: "Manee", IsActive: true}
	upd.Apply(&s)
	assert.Equal(t, Student{ID: 1, FirstName: "Mali", IsActive: true}, s)
}

func TestSnapshot_UnmarshalJSON(t *testing.T) {
	payload := `{
		"classrooms": [{"id": 3, "name": "ม.1/1", "level": "มัธยมศึกษาตอนต้น", "academic_year": "2568"}],
		"students": [
			{"id": 7, "student_id": "001", "first_name": "A", "classroom_id": 3},
			{"id": 8, "student_id": "002", "first_name": "B", "classroom_id": 3, "is_active": false}
		],
		"grades": [],
		"version": "1.0"
	}`
	var snap Snapshot
	require.NoError(t, json.Unmarshal([]byte(payload), &snap))

	require.Len(t, snap.Classrooms, 1)
	assert.Equal(t, 3, snap.Classrooms[0].ID)
	require.Len(t, snap.Students, 2)
	assert.True(t, snap.Students[0].IsActive)
	assert.False(t, snap.Students[1].IsActive)
	assert.Equal(t, "001", snap.Students[0].StudentID)
	assert.NotNil(t, snap.Grades)
	assert.Empty(t, snap.Grades)
	assert.Nil(t, snap.Attendance)
	assert.Nil(t, snap.Subjects)
	assert.Equal(t, "1.0", snap.Version)
	assert.False(t, snap.IsEmpty())
	assert.True(t, Snapshot{}.IsEmpty())
}
