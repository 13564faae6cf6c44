package school

import (
	"context"

	"github.com/pkg/errors"
)

var (
	// errors
	ErrNotFound         = errors.New("record not found")
	ErrStudentIDExists  = errors.New("an active student with this student_id already exists")
	ErrUnknownClassroom = errors.New("classroom does not exist")
	ErrUnknownStudent   = errors.New("student does not exist")
	ErrInvalidSnapshot  = errors.New("snapshot breaks a reference or uniqueness constraint")
)

type (
	ClassroomRepository interface {
		CreateClassroom(ctx context.Context, c Classroom) (Classroom, error)
		// ListClassrooms returns every classroom, newest first, with its number of active students.
		ListClassrooms(ctx context.Context) ([]ClassroomSummary, error)
		GetClassroom(ctx context.Context, id int) (Classroom, error)
		UpdateClassroom(ctx context.Context, id int, upd ClassroomUpdate) (Classroom, error)
		// DeleteClassroom removes the classroom along with its students, schedule slots, grades,
		// attendance, health checks and measurements.
		DeleteClassroom(ctx context.Context, id int) error
	}

	StudentRepository interface {
		CreateStudent(ctx context.Context, s Student) (Student, error)
		// ListStudents only returns active students.
		ListStudents(ctx context.Context, filter StudentFilter) ([]StudentRow, error)
		// GetStudent returns the raw row, inactive students included.
		GetStudent(ctx context.Context, id int) (Student, error)
		UpdateStudent(ctx context.Context, id int, upd StudentUpdate) (Student, error)
		DeactivateStudent(ctx context.Context, id int) error
		// ImportStudents inserts each student unless an active student already holds its student_id.
		ImportStudents(ctx context.Context, students []Student) (imported, skipped int, err error)
	}

	AttendanceRepository interface {
		// ListAttendance returns one row per active student of the classroom.
		ListAttendance(ctx context.Context, classroomID int, date string) ([]AttendanceRow, error)
		ListAttendanceRange(ctx context.Context, classroomID int, from, to string) ([]Attendance, error)
		UpsertAttendance(ctx context.Context, a Attendance) error
	}

	HealthRepository interface {
		// ListHealthChecks returns one row per active student of the classroom.
		ListHealthChecks(ctx context.Context, classroomID int, date string) ([]HealthCheckRow, error)
		ListHealthCheckRange(ctx context.Context, classroomID int, from, to string) ([]HealthCheck, error)
		UpsertHealthCheck(ctx context.Context, h HealthCheck) error

		// ListMeasurements returns one row per active student of the classroom.
		ListMeasurements(ctx context.Context, classroomID int, date string) ([]MeasurementRow, error)
		ListMeasurementRange(ctx context.Context, classroomID int, from, to string) ([]Measurement, error)
		UpsertMeasurement(ctx context.Context, m Measurement) error
	}

	GradeRepository interface {
		// ListGrades returns one row per active student of the classroom per catalog subject.
		ListGrades(ctx context.Context, filter GradeFilter) ([]GradeRow, error)
		ListStudentGrades(ctx context.Context, studentIDs ...int) ([]Grade, error)
		UpsertGrade(ctx context.Context, g Grade) error
	}

	ScheduleRepository interface {
		ListSchedule(ctx context.Context, classroomID int) ([]ScheduleSlot, error)
		UpsertScheduleSlot(ctx context.Context, slot ScheduleSlot) error
	}

	SubjectRepository interface {
		ListSubjects(ctx context.Context) ([]Subject, error)
	}

	TransferRepository interface {
		// Export returns every row of every collection ordered by id.
		Export(ctx context.Context) (Snapshot, error)
		// Import replaces each collection present in the snapshot, preserving ids.
		Import(ctx context.Context, snap Snapshot) error
		// Clear empties the store, resets id counters and reseeds the subject catalog.
		Clear(ctx context.Context) error
	}

	// Store is implemented by both the persistent and the ephemeral backend.
	Store interface {
		ClassroomRepository
		StudentRepository
		AttendanceRepository
		HealthRepository
		GradeRepository
		ScheduleRepository
		SubjectRepository
		TransferRepository

		Close() error
	}
)
