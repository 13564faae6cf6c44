package sqlitedb

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/school"
)

// tables in reverse dependency order
var tables = []string{"grades", "attendance", "health_checks", "measurements", "schedule_slots", "students", "subjects", "classrooms"}

const (
	insertStudent = `INSERT INTO students (id, student_id, first_name, last_name, classroom_id, gender, birth_date, is_active)
		VALUES (:id, :student_id, :first_name, :last_name, :classroom_id, :gender, :birth_date, :is_active)`
	insertSubject = `INSERT INTO subjects (id, name, code, color) VALUES (:id, :name, :code, :color)`
	insertGrade   = `INSERT INTO grades (id, student_id, classroom_id, subject_code, semester, academic_year, score)
		VALUES (:id, :student_id, :classroom_id, :subject_code, :semester, :academic_year, :score)`
	insertSlot = `INSERT INTO schedule_slots (id, classroom_id, day_of_week, period, subject_code, subject_name, class_level, room)
		VALUES (:id, :classroom_id, :day_of_week, :period, :subject_code, :subject_name, :class_level, :room)`
	insertAttendance = `INSERT INTO attendance (id, student_id, classroom_id, date, status, note)
		VALUES (:id, :student_id, :classroom_id, :date, :status, :note)`
	insertHealthCheck = `INSERT INTO health_checks (id, student_id, classroom_id, date, brushed_teeth, drank_milk, note)
		VALUES (:id, :student_id, :classroom_id, :date, :brushed_teeth, :drank_milk, :note)`
	insertMeasurement = `INSERT INTO measurements (id, student_id, classroom_id, date, weight, height)
		VALUES (:id, :student_id, :classroom_id, :date, :weight, :height)`
)

func (db *DB) Export(ctx context.Context) (school.Snapshot, error) {
	var snap school.Snapshot
	err := db.withTx(ctx, func(tx *sqlx.Tx) error {
		var classrooms []classroomRow
		if err := tx.SelectContext(ctx, &classrooms, "SELECT id, name, level, academic_year, created_at FROM classrooms ORDER BY id"); err != nil {
			return errors.Wrap(err, "selecting classrooms")
		}
		snap.Classrooms = make([]school.Classroom, 0, len(classrooms))
		for _, row := range classrooms {
			c, err := row.unboil()
			if err != nil {
				return err
			}
			snap.Classrooms = append(snap.Classrooms, c)
		}

		snap.Students = make([]school.Student, 0)
		snap.Subjects = make([]school.Subject, 0)
		snap.Grades = make([]school.Grade, 0)
		snap.Schedule = make([]school.ScheduleSlot, 0)
		snap.Attendance = make([]school.Attendance, 0)
		snap.HealthChecks = make([]school.HealthCheck, 0)
		snap.Measurements = make([]school.Measurement, 0)
		selects := []struct {
			dest  interface{}
			query string
		}{
			{&snap.Students, "SELECT " + studentColumns + " FROM students s ORDER BY s.id"},
			{&snap.Subjects, "SELECT id, name, code, color FROM subjects ORDER BY id"},
			{&snap.Grades, "SELECT id, student_id, classroom_id, subject_code, semester, academic_year, score FROM grades ORDER BY id"},
			{&snap.Schedule, "SELECT id, classroom_id, day_of_week, period, subject_code, subject_name, class_level, room FROM schedule_slots ORDER BY id"},
			{&snap.Attendance, "SELECT id, student_id, classroom_id, date, status, note FROM attendance ORDER BY id"},
			{&snap.HealthChecks, "SELECT id, student_id, classroom_id, date, brushed_teeth, drank_milk, note FROM health_checks ORDER BY id"},
			{&snap.Measurements, "SELECT id, student_id, classroom_id, date, weight, height FROM measurements ORDER BY id"},
		}
		for _, s := range selects {
			if err := tx.SelectContext(ctx, s.dest, s.query); err != nil {
				return errors.Wrap(err, "exporting")
			}
		}
		return nil
	})
	if err != nil {
		return school.Snapshot{}, err
	}
	return snap, nil
}

// Import replaces the collections present in the snapshot in a single transaction.
// Foreign keys are checked once every collection is written; any dangling reference
// rolls the whole import back.
func (db *DB) Import(ctx context.Context, snap school.Snapshot) error {
	if err := snap.Check(); err != nil {
		return err
	}

	return db.withTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, "PRAGMA defer_foreign_keys = ON"); err != nil {
			return errors.Wrap(err, "deferring foreign keys")
		}

		if snap.Classrooms != nil {
			rows := make([]classroomRow, 0, len(snap.Classrooms))
			for _, c := range snap.Classrooms {
				rows = append(rows, boilClassroom(c))
			}
			err := replace(ctx, tx, "classrooms", rows,
				`INSERT INTO classrooms (id, name, level, academic_year, created_at)
				VALUES (:id, :name, :level, :academic_year, :created_at)`)
			if err != nil {
				return err
			}
		}
		if snap.Students != nil {
			if err := replace(ctx, tx, "students", snap.Students, insertStudent); err != nil {
				return err
			}
		}
		if snap.Subjects != nil {
			if err := replace(ctx, tx, "subjects", snap.Subjects, insertSubject); err != nil {
				return err
			}
		}
		if snap.Grades != nil {
			if err := replace(ctx, tx, "grades", snap.Grades, insertGrade); err != nil {
				return err
			}
		}
		if snap.Schedule != nil {
			if err := replace(ctx, tx, "schedule_slots", snap.Schedule, insertSlot); err != nil {
				return err
			}
		}
		if snap.Attendance != nil {
			if err := replace(ctx, tx, "attendance", snap.Attendance, insertAttendance); err != nil {
				return err
			}
		}
		if snap.HealthChecks != nil {
			if err := replace(ctx, tx, "health_checks", snap.HealthChecks, insertHealthCheck); err != nil {
				return err
			}
		}
		if snap.Measurements != nil {
			if err := replace(ctx, tx, "measurements", snap.Measurements, insertMeasurement); err != nil {
				return err
			}
		}
		return checkForeignKeys(ctx, tx)
	})
}

// replace empties table, inserts rows with their ids and points the id counter at the highest one.
func replace[T any](ctx context.Context, tx *sqlx.Tx, table string, rows []T, insert string) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
		return errors.Wrapf(err, "emptying %s", table)
	}
	for _, row := range rows {
		if _, err := tx.NamedExecContext(ctx, insert, row); err != nil {
			if unique, _ := constraint(err); unique {
				return errors.Wrapf(school.ErrInvalidSnapshot, "%s: %v", table, err)
			}
			return errors.Wrapf(err, "inserting into %s", table)
		}
	}
	_, err := tx.ExecContext(ctx,
		"UPDATE sqlite_sequence SET seq = (SELECT COALESCE(MAX(id), 0) FROM "+table+") WHERE name = ?", table)
	return errors.Wrapf(err, "resetting %s id counter", table)
}

func checkForeignKeys(ctx context.Context, tx *sqlx.Tx) error {
	rows, err := tx.QueryContext(ctx, "PRAGMA foreign_key_check")
	if err != nil {
		return errors.Wrap(err, "checking foreign keys")
	}
	defer func() { _ = rows.Close() }()

	if rows.Next() {
		var (
			table, parent string
			rowID, fkID   sql.NullInt64
		)
		if err = rows.Scan(&table, &rowID, &parent, &fkID); err != nil {
			return errors.Wrap(err, "checking foreign keys")
		}
		return errors.Wrapf(school.ErrInvalidSnapshot, "%s row %d references a missing %s row", table, rowID.Int64, parent)
	}
	return errors.Wrap(rows.Err(), "checking foreign keys")
}

// Clear empties every table, resets the id counters and reseeds the subject catalog.
func (db *DB) Clear(ctx context.Context) error {
	return db.withTx(ctx, func(tx *sqlx.Tx) error {
		for _, table := range tables {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return errors.Wrapf(err, "emptying %s", table)
			}
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM sqlite_sequence"); err != nil {
			return errors.Wrap(err, "resetting id counters")
		}
		return seedSubjects(ctx, tx)
	})
}
