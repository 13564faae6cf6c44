package sqlitedb

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/school"
)

// classroomRow carries created_at as stored text.
type classroomRow struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	Level        string `json:"level"`
	AcademicYear string `json:"academic_year"`
	CreatedAt    string `json:"created_at"`
}

type classroomSummaryRow struct {
	classroomRow
	StudentCount int `json:"student_count"`
}

func boilClassroom(c school.Classroom) classroomRow {
	return classroomRow{
		ID:           c.ID,
		Name:         c.Name,
		Level:        c.Level,
		AcademicYear: c.AcademicYear,
		CreatedAt:    formatTime(c.CreatedAt),
	}
}

func (row classroomRow) unboil() (school.Classroom, error) {
	createdAt, err := parseTime(row.CreatedAt)
	if err != nil {
		return school.Classroom{}, err
	}
	return school.Classroom{
		ID:           row.ID,
		Name:         row.Name,
		Level:        row.Level,
		AcademicYear: row.AcademicYear,
		CreatedAt:    createdAt,
	}, nil
}

func (db *DB) CreateClassroom(ctx context.Context, c school.Classroom) (school.Classroom, error) {
	c.CreatedAt = db.now().UTC()
	res, err := db.db.ExecContext(ctx,
		"INSERT INTO classrooms (name, level, academic_year, created_at) VALUES (?, ?, ?, ?)",
		c.Name, c.Level, c.AcademicYear, formatTime(c.CreatedAt),
	)
	if err != nil {
		return school.Classroom{}, errors.Wrap(err, "inserting classroom")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return school.Classroom{}, errors.Wrap(err, "reading classroom id")
	}
	c.ID = int(id)
	return c, nil
}

func (db *DB) ListClassrooms(ctx context.Context) ([]school.ClassroomSummary, error) {
	const q = `
		SELECT c.id, c.name, c.level, c.academic_year, c.created_at,
		       (SELECT COUNT(*) FROM students s WHERE s.classroom_id = c.id AND s.is_active = 1) AS student_count
		FROM classrooms c
		ORDER BY c.created_at DESC, c.id DESC`

	var rows []classroomSummaryRow
	if err := db.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, errors.Wrap(err, "selecting classrooms")
	}
	classrooms := make([]school.ClassroomSummary, 0, len(rows))
	for _, row := range rows {
		c, err := row.unboil()
		if err != nil {
			return nil, err
		}
		classrooms = append(classrooms, school.ClassroomSummary{Classroom: c, StudentCount: row.StudentCount})
	}
	return classrooms, nil
}

func getClassroom(ctx context.Context, q sqlx.QueryerContext, id int) (school.Classroom, error) {
	var row classroomRow
	err := sqlx.GetContext(ctx, q, &row, "SELECT id, name, level, academic_year, created_at FROM classrooms WHERE id = ?", id)
	if err != nil {
		return school.Classroom{}, notFound(err, school.ErrNotFound)
	}
	return row.unboil()
}

func (db *DB) GetClassroom(ctx context.Context, id int) (school.Classroom, error) {
	return getClassroom(ctx, db.db, id)
}

func (db *DB) UpdateClassroom(ctx context.Context, id int, upd school.ClassroomUpdate) (school.Classroom, error) {
	var c school.Classroom
	err := db.withTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		if c, err = getClassroom(ctx, tx, id); err != nil {
			return err
		}
		upd.Apply(&c)
		_, err = tx.ExecContext(ctx,
			"UPDATE classrooms SET name = ?, level = ?, academic_year = ? WHERE id = ?",
			c.Name, c.Level, c.AcademicYear, c.ID,
		)
		return errors.Wrap(err, "updating classroom")
	})
	if err != nil {
		return school.Classroom{}, err
	}
	return c, nil
}

// DeleteClassroom removes the classroom and everything owned by it in one transaction.
// Records are matched by the classroom's students as well as by their own classroom_id.
func (db *DB) DeleteClassroom(ctx context.Context, id int) error {
	return db.withTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := getClassroom(ctx, tx, id); err != nil {
			return err
		}
		for _, table := range []string{"grades", "attendance", "health_checks", "measurements"} {
			q := "DELETE FROM " + table + " WHERE classroom_id = ? OR student_id IN (SELECT id FROM students WHERE classroom_id = ?)"
			if _, err := tx.ExecContext(ctx, q, id, id); err != nil {
				return errors.Wrapf(err, "deleting %s", table)
			}
		}
		for _, table := range []string{"schedule_slots", "students", "classrooms"} {
			col := "classroom_id"
			if table == "classrooms" {
				col = "id"
			}
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE "+col+" = ?", id); err != nil {
				return errors.Wrapf(err, "deleting %s", table)
			}
		}
		return nil
	})
}
