package sqlitedb

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/school"
)

const studentColumns = "s.id, s.student_id, s.first_name, s.last_name, s.classroom_id, s.gender, s.birth_date, s.is_active"

func studentErr(err error, action string) error {
	unique, fk := constraint(err)
	switch {
	case unique:
		return school.ErrStudentIDExists
	case fk:
		return school.ErrUnknownClassroom
	}
	return errors.Wrap(err, action)
}

func (db *DB) CreateStudent(ctx context.Context, s school.Student) (school.Student, error) {
	res, err := db.db.ExecContext(ctx, `
		INSERT INTO students (student_id, first_name, last_name, classroom_id, gender, birth_date, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		s.StudentID, s.FirstName, s.LastName, s.ClassroomID, s.Gender, s.BirthDate, s.IsActive,
	)
	if err != nil {
		return school.Student{}, studentErr(err, "inserting student")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return school.Student{}, errors.Wrap(err, "reading student id")
	}
	s.ID = int(id)
	return s, nil
}

func (db *DB) ListStudents(ctx context.Context, filter school.StudentFilter) ([]school.StudentRow, error) {
	var (
		where = []string{"s.is_active = 1"}
		args  []interface{}
		order = "c.name, s.student_id, s.id"
	)
	if filter.ClassroomID > 0 {
		where = append(where, "s.classroom_id = ?")
		args = append(args, filter.ClassroomID)
		order = "s.student_id, s.id"
	}
	if filter.Search != "" {
		where = append(where, "(instr(lower(s.first_name), lower(?)) > 0 OR instr(lower(s.last_name), lower(?)) > 0 OR instr(lower(s.student_id), lower(?)) > 0)")
		args = append(args, filter.Search, filter.Search, filter.Search)
	}
	q := "SELECT " + studentColumns + ", COALESCE(c.name, '') AS classroom_name " +
		"FROM students s LEFT JOIN classrooms c ON c.id = s.classroom_id " +
		"WHERE " + strings.Join(where, " AND ") + " ORDER BY " + order

	rows := make([]school.StudentRow, 0)
	if err := db.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "selecting students")
	}
	return rows, nil
}

func getStudent(ctx context.Context, q sqlx.QueryerContext, id int) (school.Student, error) {
	var s school.Student
	if err := sqlx.GetContext(ctx, q, &s, "SELECT "+studentColumns+" FROM students s WHERE s.id = ?", id); err != nil {
		return school.Student{}, notFound(err, school.ErrNotFound)
	}
	return s, nil
}

func (db *DB) GetStudent(ctx context.Context, id int) (school.Student, error) {
	return getStudent(ctx, db.db, id)
}

func (db *DB) UpdateStudent(ctx context.Context, id int, upd school.StudentUpdate) (school.Student, error) {
	var s school.Student
	err := db.withTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		if s, err = getStudent(ctx, tx, id); err != nil {
			return err
		}
		// only save allow-listed fields
		upd.Apply(&s)
		_, err = tx.ExecContext(ctx, `
			UPDATE students
			SET student_id = ?, first_name = ?, last_name = ?, classroom_id = ?, gender = ?, birth_date = ?
			WHERE id = ?`,
			s.StudentID, s.FirstName, s.LastName, s.ClassroomID, s.Gender, s.BirthDate, s.ID,
		)
		if err != nil {
			return studentErr(err, "updating student")
		}
		return nil
	})
	if err != nil {
		return school.Student{}, err
	}
	return s, nil
}

func (db *DB) DeactivateStudent(ctx context.Context, id int) error {
	res, err := db.db.ExecContext(ctx, "UPDATE students SET is_active = 0 WHERE id = ?", id)
	if err != nil {
		return errors.Wrap(err, "deactivating student")
	}
	if n, err := res.RowsAffected(); err != nil {
		return errors.Wrap(err, "deactivating student")
	} else if n == 0 {
		return school.ErrNotFound
	}
	return nil
}

func (db *DB) ImportStudents(ctx context.Context, students []school.Student) (imported, skipped int, err error) {
	err = db.withTx(ctx, func(tx *sqlx.Tx) error {
		for _, s := range students {
			var ok bool
			err := tx.GetContext(ctx, &ok, `
				SELECT EXISTS (SELECT 1 FROM classrooms WHERE id = ?)
				   AND NOT EXISTS (SELECT 1 FROM students WHERE student_id = ? AND is_active = 1)`,
				s.ClassroomID, s.StudentID,
			)
			if err != nil {
				return errors.Wrap(err, "checking student")
			}
			if !ok {
				skipped++
				continue
			}
			_, err = tx.ExecContext(ctx, `
				INSERT INTO students (student_id, first_name, last_name, classroom_id, gender, birth_date, is_active)
				VALUES (?, ?, ?, ?, ?, ?, 1)`,
				s.StudentID, s.FirstName, s.LastName, s.ClassroomID, s.Gender, s.BirthDate,
			)
			if err != nil {
				return errors.Wrap(err, "inserting student")
			}
			imported++
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	return imported, skipped, nil
}
