package school

import (
	"strings"

	"github.com/trezcool/darasa/core"
)

type AttendanceStatus string

const (
	StatusPresent AttendanceStatus = "present"
	StatusAbsent  AttendanceStatus = "absent"
	StatusLeave   AttendanceStatus = "leave"
	StatusLate    AttendanceStatus = "late"
)

// Thai labels used on printed sheets and in older backups.
var thaiStatuses = map[string]AttendanceStatus{
	"มา":  StatusPresent,
	"ขาด": StatusAbsent,
	"ลา":  StatusLeave,
	"สาย": StatusLate,
}

// ParseAttendanceStatus accepts the English values and their Thai labels; "" means present.
func ParseAttendanceStatus(s string) (AttendanceStatus, bool) {
	s = core.CleanString(s)
	if s == "" {
		return StatusPresent, true
	}
	if st, ok := thaiStatuses[s]; ok {
		return st, true
	}
	switch st := AttendanceStatus(strings.ToLower(s)); st {
	case StatusPresent, StatusAbsent, StatusLeave, StatusLate:
		return st, true
	}
	return "", false
}

func (st AttendanceStatus) Thai() string {
	for label, s := range thaiStatuses {
		if s == st {
			return label
		}
	}
	return ""
}

type Attendance struct {
	ID          int              `json:"id"`
	StudentID   int              `json:"student_id"`   // Student.ID
	ClassroomID int              `json:"classroom_id"` // classroom at the time of writing
	Date        string           `json:"date"`
	Status      AttendanceStatus `json:"status"`
	Note        string           `json:"note"`
}

// AttendanceRow is a roster line of a classroom's attendance for one day.
// Recorded is false when the student has no record and Status holds the default.
type AttendanceRow struct {
	ID        int              `json:"id"`         // Student.ID
	StudentID string           `json:"student_id"` // Student.StudentID
	FirstName string           `json:"first_name"`
	LastName  string           `json:"last_name"`
	Status    AttendanceStatus `json:"status"`
	Note      string           `json:"note"`
	Recorded  bool             `json:"recorded"`
}
