package sqlitedb

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/school"
)

func (db *DB) ListGrades(ctx context.Context, filter school.GradeFilter) ([]school.GradeRow, error) {
	const q = `
		SELECT s.id, s.student_id, s.first_name, s.last_name,
		       sub.code AS subject_code, sub.name AS subject_name, g.score
		FROM students s
		CROSS JOIN subjects sub
		LEFT JOIN grades g
		       ON g.student_id = s.id AND g.subject_code = sub.code
		      AND g.semester = ? AND g.academic_year = ?
		WHERE s.classroom_id = ? AND s.is_active = 1
		ORDER BY s.student_id, s.id, sub.name, sub.id`

	rows := make([]school.GradeRow, 0)
	if err := db.db.SelectContext(ctx, &rows, q, filter.Semester, filter.AcademicYear, filter.ClassroomID); err != nil {
		return nil, errors.Wrap(err, "selecting grades")
	}
	return rows, nil
}

func (db *DB) ListStudentGrades(ctx context.Context, studentIDs ...int) ([]school.Grade, error) {
	grades := make([]school.Grade, 0)
	if len(studentIDs) == 0 {
		return grades, nil
	}
	q, args, err := sqlx.In(`
		SELECT id, student_id, classroom_id, subject_code, semester, academic_year, score
		FROM grades WHERE student_id IN (?) ORDER BY id`, studentIDs)
	if err != nil {
		return nil, errors.Wrap(err, "building grades query")
	}
	if err = db.db.SelectContext(ctx, &grades, db.db.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "selecting grades")
	}
	return grades, nil
}

func (db *DB) UpsertGrade(ctx context.Context, g school.Grade) error {
	_, err := db.db.ExecContext(ctx, `
		INSERT INTO grades (student_id, classroom_id, subject_code, semester, academic_year, score) VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (student_id, subject_code, semester, academic_year) DO UPDATE
		SET classroom_id = excluded.classroom_id, score = excluded.score`,
		g.StudentID, g.ClassroomID, g.SubjectCode, g.Semester, g.AcademicYear, g.Score,
	)
	return recordErr(err, "upserting grade")
}
