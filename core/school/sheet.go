package school

import (
	"bytes"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
)

// Checkbox decodes a JSON true/false, 0/1 or "true"/"false".
type Checkbox bool

func (c *Checkbox) UnmarshalJSON(b []byte) error {
	switch string(bytes.Trim(b, `"`)) {
	case "true", "1":
		*c = true
	case "false", "0", "", "null":
		*c = false
	default:
		return errors.Errorf("invalid checkbox value %s", b)
	}
	return nil
}

type AttendanceEntry struct {
	Status string `json:"status"`
	Note   string `json:"note"`
}

type HealthEntry struct {
	BrushedTeeth Checkbox `json:"brushed_teeth"`
	DrankMilk    Checkbox `json:"drank_milk"`
	Note         string   `json:"note"`
}

// AttendanceSheet is a classroom's daily attendance and health checks keyed by Student.ID.
type AttendanceSheet struct {
	Date        string                     `json:"date" validate:"required,isodate"`
	ClassroomID int                        `json:"classroom" validate:"required,min=1"`
	Attendance  map[string]AttendanceEntry `json:"attendance"`
	Health      map[string]HealthEntry     `json:"health"`
}

func (as *AttendanceSheet) Validate(validate *validator.Validate) error {
	as.Date = core.CleanString(as.Date)
	if err := validate.Struct(as); err != nil {
		return err
	}
	_, _, err := as.parse()
	return err
}

// parse resolves the Student.ID keys and statuses of the whole sheet, failing on the first bad entry.
func (as *AttendanceSheet) parse() (ids map[string]int, statuses map[string]AttendanceStatus, err error) {
	if ids, err = studentIDs("attendance", as.Attendance); err != nil {
		return nil, nil, err
	}
	statuses = make(map[string]AttendanceStatus, len(as.Attendance))
	for _, key := range sortedKeys(as.Attendance) {
		entry := as.Attendance[key]
		status, ok := ParseAttendanceStatus(entry.Status)
		if !ok {
			return nil, nil, core.NewValidationError(nil, core.FieldError{Field: "attendance", Error: "invalid status " + strconv.Quote(entry.Status)})
		}
		statuses[key] = status
	}
	healthIDs, err := studentIDs("health", as.Health)
	if err != nil {
		return nil, nil, err
	}
	for key, id := range healthIDs {
		ids[key] = id
	}
	return ids, statuses, nil
}

// studentIDs parses every Student.ID key of a sheet section.
func studentIDs[V any](field string, m map[string]V) (map[string]int, error) {
	ids := make(map[string]int, len(m))
	for _, key := range sortedKeys(m) {
		id, err := strconv.Atoi(key)
		if err != nil {
			return nil, core.NewValidationError(nil, core.FieldError{Field: field, Error: "invalid student id " + strconv.Quote(key)})
		}
		ids[key] = id
	}
	return ids, nil
}

// AttendanceSheetRow is a roster line combining a student's attendance and health check for one day.
type AttendanceSheetRow struct {
	AttendanceRow
	BrushedTeeth   bool   `json:"brushed_teeth"`
	DrankMilk      bool   `json:"drank_milk"`
	HealthNote     string `json:"health_note"`
	HealthRecorded bool   `json:"health_recorded"`
}

// ClassroomReport gathers a classroom's records over a date range for printing.
type ClassroomReport struct {
	Classroom       Classroom     `json:"classroom"`
	Students        []StudentRow  `json:"students"`
	Attendance      []Attendance  `json:"attendance"`
	Health          []HealthCheck `json:"health"`
	AttendanceDates []string      `json:"attendance_dates"`
	HealthDates     []string      `json:"health_dates"`
	From            string        `json:"from"`
	To              string        `json:"to"`
}

type ReportFilter struct {
	ClassroomID int    `query:"classroom" validate:"required,min=1"`
	From        string `query:"startDate" validate:"required,isodate"`
	To          string `query:"endDate" validate:"required,isodate"`
}

func (rf *ReportFilter) Validate(validate *validator.Validate) error {
	rf.From = core.CleanString(rf.From)
	rf.To = core.CleanString(rf.To)
	if err := validate.Struct(rf); err != nil {
		return err
	}
	if rf.To < rf.From {
		return core.NewValidationError(nil, core.FieldError{Field: "endDate", Error: "must not be before startDate"})
	}
	return nil
}
