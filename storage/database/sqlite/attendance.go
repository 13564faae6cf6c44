package sqlitedb

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/school"
)

// recordErr maps a failed upsert on a per-student table.
func recordErr(err error, action string) error {
	if _, fk := constraint(err); fk {
		return school.ErrUnknownStudent
	}
	return errors.Wrap(err, action)
}

func (db *DB) ListAttendance(ctx context.Context, classroomID int, date string) ([]school.AttendanceRow, error) {
	const q = `
		SELECT s.id, s.student_id, s.first_name, s.last_name,
		       COALESCE(a.status, 'present') AS status, COALESCE(a.note, '') AS note, a.id IS NOT NULL AS recorded
		FROM students s
		LEFT JOIN attendance a ON a.student_id = s.id AND a.date = ?
		WHERE s.classroom_id = ? AND s.is_active = 1
		ORDER BY s.student_id, s.id`

	rows := make([]school.AttendanceRow, 0)
	if err := db.db.SelectContext(ctx, &rows, q, date, classroomID); err != nil {
		return nil, errors.Wrap(err, "selecting attendance")
	}
	return rows, nil
}

func (db *DB) ListAttendanceRange(ctx context.Context, classroomID int, from, to string) ([]school.Attendance, error) {
	const q = `
		SELECT id, student_id, classroom_id, date, status, note
		FROM attendance
		WHERE classroom_id = ? AND date BETWEEN ? AND ?
		ORDER BY date, student_id`

	records := make([]school.Attendance, 0)
	if err := db.db.SelectContext(ctx, &records, q, classroomID, from, to); err != nil {
		return nil, errors.Wrap(err, "selecting attendance")
	}
	return records, nil
}

func (db *DB) UpsertAttendance(ctx context.Context, a school.Attendance) error {
	if a.Status == "" {
		a.Status = school.StatusPresent
	}
	_, err := db.db.ExecContext(ctx, `
		INSERT INTO attendance (student_id, classroom_id, date, status, note) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (student_id, date) DO UPDATE
		SET classroom_id = excluded.classroom_id, status = excluded.status, note = excluded.note`,
		a.StudentID, a.ClassroomID, a.Date, string(a.Status), a.Note,
	)
	return recordErr(err, "upserting attendance")
}
