package school

import (
	"context"
	"sort"
	"time"
	"unicode/utf8"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
)

// Service holds the behaviour shared by both backends on top of a Store.
type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// Classrooms

func (svc *Service) CreateClassroom(ctx context.Context, nc NewClassroom) (Classroom, error) {
	return svc.store.CreateClassroom(ctx, nc.Classroom())
}

func (svc *Service) ListClassrooms(ctx context.Context) ([]ClassroomSummary, error) {
	return svc.store.ListClassrooms(ctx)
}

func (svc *Service) GetClassroom(ctx context.Context, id int) (Classroom, error) {
	return svc.store.GetClassroom(ctx, id)
}

func (svc *Service) UpdateClassroom(ctx context.Context, id int, upd ClassroomUpdate) (Classroom, error) {
	return svc.store.UpdateClassroom(ctx, id, upd)
}

func (svc *Service) DeleteClassroom(ctx context.Context, id int) error {
	return svc.store.DeleteClassroom(ctx, id)
}

// Students

func (svc *Service) CreateStudent(ctx context.Context, ns NewStudent) (Student, error) {
	return svc.store.CreateStudent(ctx, ns.Student())
}

func (svc *Service) ListStudents(ctx context.Context, filter StudentFilter) ([]StudentRow, error) {
	filter.Clean()
	return svc.store.ListStudents(ctx, filter)
}

func (svc *Service) GetStudent(ctx context.Context, id int) (Student, error) {
	return svc.store.GetStudent(ctx, id)
}

func (svc *Service) UpdateStudent(ctx context.Context, id int, upd StudentUpdate) (Student, error) {
	return svc.store.UpdateStudent(ctx, id, upd)
}

func (svc *Service) DeactivateStudent(ctx context.Context, id int) error {
	return svc.store.DeactivateStudent(ctx, id)
}

// ImportRoster resolves each row's classroom by exact name (defaultClassroom fills blanks)
// and inserts the students whose student_id is not already taken.
// Rows without a resolvable classroom or without a student_id or name are skipped.
func (svc *Service) ImportRoster(ctx context.Context, rows []RosterRow, defaultClassroom string) (ImportResult, error) {
	classrooms, err := svc.store.ListClassrooms(ctx)
	if err != nil {
		return ImportResult{}, errors.Wrap(err, "listing classrooms")
	}
	// the oldest classroom wins a name clash; the list is newest first
	byName := make(map[string]int, len(classrooms))
	for i := len(classrooms) - 1; i >= 0; i-- {
		if _, ok := byName[classrooms[i].Name]; !ok {
			byName[classrooms[i].Name] = classrooms[i].ID
		}
	}

	var res ImportResult
	students := make([]Student, 0, len(rows))
	defaultClassroom = core.CleanString(defaultClassroom)
	for _, row := range rows {
		row.Clean()
		if row.Classroom == "" {
			row.Classroom = defaultClassroom
		}
		classroomID, ok := byName[row.Classroom]
		if !ok || row.StudentID == "" || row.FirstName == "" {
			res.Skipped++
			continue
		}
		birthDate := row.BirthDate
		if !core.IsDate(birthDate) {
			birthDate = ""
		}
		students = append(students, NewStudent{
			StudentID:   row.StudentID,
			FirstName:   row.FirstName,
			LastName:    row.LastName,
			ClassroomID: classroomID,
			Gender:      row.Gender,
			BirthDate:   birthDate,
		}.Student())
	}

	imported, skipped, err := svc.store.ImportStudents(ctx, students)
	if err != nil {
		return ImportResult{}, errors.Wrap(err, "importing students")
	}
	res.Imported = imported
	res.Skipped += skipped
	return res, nil
}

// Attendance & Health

// AttendanceSheet returns the classroom roster with each student's attendance and health check for the day.
func (svc *Service) AttendanceSheet(ctx context.Context, classroomID int, date string) ([]AttendanceSheetRow, error) {
	attendance, err := svc.store.ListAttendance(ctx, classroomID, date)
	if err != nil {
		return nil, errors.Wrap(err, "listing attendance")
	}
	checks, err := svc.store.ListHealthChecks(ctx, classroomID, date)
	if err != nil {
		return nil, errors.Wrap(err, "listing health checks")
	}
	byStudent := make(map[int]HealthCheckRow, len(checks))
	for _, hc := range checks {
		byStudent[hc.ID] = hc
	}

	rows := make([]AttendanceSheetRow, 0, len(attendance))
	for _, a := range attendance {
		hc := byStudent[a.ID]
		rows = append(rows, AttendanceSheetRow{
			AttendanceRow:  a,
			BrushedTeeth:   hc.BrushedTeeth,
			DrankMilk:      hc.DrankMilk,
			HealthNote:     hc.Note,
			HealthRecorded: hc.Recorded,
		})
	}
	return rows, nil
}

// SaveAttendanceSheet upserts every attendance and health entry of the sheet.
// A bad key or status rejects the sheet before anything is written.
func (svc *Service) SaveAttendanceSheet(ctx context.Context, sheet AttendanceSheet) error {
	ids, statuses, err := sheet.parse()
	if err != nil {
		return err
	}
	for _, key := range sortedKeys(sheet.Attendance) {
		err := svc.store.UpsertAttendance(ctx, Attendance{
			StudentID:   ids[key],
			ClassroomID: sheet.ClassroomID,
			Date:        sheet.Date,
			Status:      statuses[key],
			Note:        core.CleanString(sheet.Attendance[key].Note),
		})
		if err != nil {
			return errors.Wrapf(err, "saving attendance of student %d", ids[key])
		}
	}
	for _, key := range sortedKeys(sheet.Health) {
		entry := sheet.Health[key]
		err := svc.store.UpsertHealthCheck(ctx, HealthCheck{
			StudentID:    ids[key],
			ClassroomID:  sheet.ClassroomID,
			Date:         sheet.Date,
			BrushedTeeth: bool(entry.BrushedTeeth),
			DrankMilk:    bool(entry.DrankMilk),
			Note:         core.CleanString(entry.Note),
		})
		if err != nil {
			return errors.Wrapf(err, "saving health check of student %d", ids[key])
		}
	}
	return nil
}

// Measurements returns the classroom roster with each student's weight, height and BMI for the day.
func (svc *Service) Measurements(ctx context.Context, classroomID int, date string) ([]MeasurementRow, error) {
	rows, err := svc.store.ListMeasurements(ctx, classroomID, date)
	if err != nil {
		return nil, errors.Wrap(err, "listing measurements")
	}
	for i := range rows {
		rows[i].BMI, rows[i].BMIStatus = ComputeBMI(rows[i].Weight, rows[i].Height)
	}
	return rows, nil
}

func (svc *Service) MeasurementsInRange(ctx context.Context, classroomID int, from, to string) ([]MeasurementReading, error) {
	ms, err := svc.store.ListMeasurementRange(ctx, classroomID, from, to)
	if err != nil {
		return nil, errors.Wrap(err, "listing measurements")
	}
	readings := make([]MeasurementReading, 0, len(ms))
	for _, m := range ms {
		r := MeasurementReading{Measurement: m}
		r.BMI, r.BMIStatus = ComputeBMI(m.Weight, m.Height)
		readings = append(readings, r)
	}
	return readings, nil
}

// RecordMeasurement upserts a student's weight and height under the student's current classroom.
func (svc *Service) RecordMeasurement(ctx context.Context, nm NewMeasurement) (MeasurementReading, error) {
	st, err := svc.store.GetStudent(ctx, nm.StudentID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return MeasurementReading{}, ErrUnknownStudent
		}
		return MeasurementReading{}, errors.Wrap(err, "getting student")
	}
	m := Measurement{
		StudentID:   st.ID,
		ClassroomID: st.ClassroomID,
		Date:        nm.Date,
		Weight:      nm.Weight,
		Height:      nm.Height,
	}
	if err = svc.store.UpsertMeasurement(ctx, m); err != nil {
		return MeasurementReading{}, errors.Wrap(err, "saving measurement")
	}
	r := MeasurementReading{Measurement: m}
	r.BMI, r.BMIStatus = ComputeBMI(m.Weight, m.Height)
	return r, nil
}

// Grades

func (svc *Service) Grades(ctx context.Context, filter GradeFilter) ([]GradeRow, error) {
	return svc.store.ListGrades(ctx, filter)
}

// SaveGradeSheet upserts every usable score of the sheet and returns how many were saved.
// Missing, empty and NaN scores are dropped. A bad student key rejects the sheet before anything is written.
func (svc *Service) SaveGradeSheet(ctx context.Context, sheet GradeSheet) (int, error) {
	ids, err := studentIDs("grades", sheet.Scores)
	if err != nil {
		return 0, err
	}
	var saved int
	for _, key := range sortedKeys(sheet.Scores) {
		studentID := ids[key]
		scores := sheet.Scores[key]
		for _, code := range sortedKeys(scores) {
			score, ok := ParseScore(scores[code])
			code = core.CleanString(code)
			if !ok || code == "" {
				continue
			}
			err = svc.store.UpsertGrade(ctx, Grade{
				StudentID:    studentID,
				ClassroomID:  sheet.ClassroomID,
				SubjectCode:  code,
				Semester:     sheet.Semester,
				AcademicYear: sheet.AcademicYear,
				Score:        score,
			})
			if err != nil {
				return saved, errors.Wrapf(err, "saving %s grade of student %d", code, studentID)
			}
			saved++
		}
	}
	return saved, nil
}

// Schedule

func (svc *Service) Schedule(ctx context.Context, classroomID int) ([]ScheduleSlot, error) {
	return svc.store.ListSchedule(ctx, classroomID)
}

// SaveSchedule upserts every non-empty slot of the sheet and returns how many were saved.
func (svc *Service) SaveSchedule(ctx context.Context, sheet ScheduleSheet) (int, error) {
	keys := sortedKeys(sheet.Slots)
	for _, key := range keys {
		if _, _, err := ParseSlotKey(key); err != nil {
			return 0, core.NewValidationError(nil, core.FieldError{Field: "schedule", Error: err.Error()})
		}
	}
	var saved int
	for _, key := range keys {
		entry := sheet.Slots[key]
		if entry.IsEmpty() {
			continue
		}
		day, period, _ := ParseSlotKey(key)
		err := svc.store.UpsertScheduleSlot(ctx, ScheduleSlot{
			ClassroomID: sheet.ClassroomID,
			DayOfWeek:   day,
			Period:      period,
			SubjectCode: core.CleanString(entry.SubjectCode),
			SubjectName: core.CleanString(entry.SubjectName),
			ClassLevel:  core.CleanString(entry.ClassLevel),
			Room:        core.CleanString(entry.Room),
		})
		if err != nil {
			return saved, errors.Wrapf(err, "saving slot %s", key)
		}
		saved++
	}
	return saved, nil
}

func (svc *Service) Subjects(ctx context.Context) ([]Subject, error) {
	return svc.store.ListSubjects(ctx)
}

// Search & Reports

type SearchResult struct {
	Students []StudentRow `json:"students"`
	Grades   []Grade      `json:"grades"`
}

// Search finds active students by name or code along with all their grades.
func (svc *Service) Search(ctx context.Context, query string) (SearchResult, error) {
	res := SearchResult{Students: []StudentRow{}, Grades: []Grade{}}
	query = core.CleanString(query)
	if utf8.RuneCountInString(query) < MinSearchLen {
		return res, nil
	}

	students, err := svc.store.ListStudents(ctx, StudentFilter{Search: query})
	if err != nil {
		return res, errors.Wrap(err, "searching students")
	}
	if len(students) == 0 {
		return res, nil
	}
	ids := make([]int, 0, len(students))
	for _, s := range students {
		ids = append(ids, s.ID)
	}
	grades, err := svc.store.ListStudentGrades(ctx, ids...)
	if err != nil {
		return res, errors.Wrap(err, "listing grades")
	}
	res.Students = students
	if grades != nil {
		res.Grades = grades
	}
	return res, nil
}

// Report gathers the classroom's roster, attendance and health checks within [from, to].
func (svc *Service) Report(ctx context.Context, filter ReportFilter) (ClassroomReport, error) {
	classroom, err := svc.store.GetClassroom(ctx, filter.ClassroomID)
	if err != nil {
		return ClassroomReport{}, errors.Wrap(err, "getting classroom")
	}
	students, err := svc.store.ListStudents(ctx, StudentFilter{ClassroomID: classroom.ID})
	if err != nil {
		return ClassroomReport{}, errors.Wrap(err, "listing students")
	}
	attendance, err := svc.store.ListAttendanceRange(ctx, classroom.ID, filter.From, filter.To)
	if err != nil {
		return ClassroomReport{}, errors.Wrap(err, "listing attendance")
	}
	checks, err := svc.store.ListHealthCheckRange(ctx, classroom.ID, filter.From, filter.To)
	if err != nil {
		return ClassroomReport{}, errors.Wrap(err, "listing health checks")
	}

	report := ClassroomReport{
		Classroom:       classroom,
		Students:        nonNil(students),
		Attendance:      nonNil(attendance),
		Health:          nonNil(checks),
		AttendanceDates: []string{},
		HealthDates:     []string{},
		From:            filter.From,
		To:              filter.To,
	}
	for _, a := range attendance {
		report.AttendanceDates = append(report.AttendanceDates, a.Date)
	}
	for _, h := range checks {
		report.HealthDates = append(report.HealthDates, h.Date)
	}
	report.AttendanceDates = distinctSorted(report.AttendanceDates)
	report.HealthDates = distinctSorted(report.HealthDates)
	return report, nil
}

// Bulk transfer

func (svc *Service) Export(ctx context.Context) (Snapshot, error) {
	snap, err := svc.store.Export(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	snap.ExportedAt = svc.now().UTC()
	snap.Version = SnapshotVersion
	return snap, nil
}

func (svc *Service) Import(ctx context.Context, snap Snapshot) error {
	return svc.store.Import(ctx, snap)
}

func (svc *Service) Clear(ctx context.Context) error {
	return svc.store.Clear(ctx)
}

// helpers

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func distinctSorted(ss []string) []string {
	sort.Strings(ss)
	out := make([]string, 0, len(ss))
	for _, s := range ss {
		if len(out) == 0 || out[len(out)-1] != s {
			out = append(out, s)
		}
	}
	return out
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
