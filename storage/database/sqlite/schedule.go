package sqlitedb

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/school"
)

func (db *DB) ListSchedule(ctx context.Context, classroomID int) ([]school.ScheduleSlot, error) {
	const q = `
		SELECT ss.id, ss.classroom_id, ss.day_of_week, ss.period, ss.subject_code, ss.subject_name,
		       ss.class_level, ss.room, COALESCE(sub.color, '') AS color
		FROM schedule_slots ss
		LEFT JOIN subjects sub ON sub.code = ss.subject_code
		WHERE ss.classroom_id = ?
		ORDER BY ss.day_of_week, ss.period`

	slots := make([]school.ScheduleSlot, 0)
	if err := db.db.SelectContext(ctx, &slots, q, classroomID); err != nil {
		return nil, errors.Wrap(err, "selecting schedule")
	}
	return slots, nil
}

func (db *DB) UpsertScheduleSlot(ctx context.Context, slot school.ScheduleSlot) error {
	_, err := db.db.ExecContext(ctx, `
		INSERT INTO schedule_slots (classroom_id, day_of_week, period, subject_code, subject_name, class_level, room)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (classroom_id, day_of_week, period) DO UPDATE
		SET subject_code = excluded.subject_code, subject_name = excluded.subject_name,
		    class_level = excluded.class_level, room = excluded.room`,
		slot.ClassroomID, slot.DayOfWeek, slot.Period, slot.SubjectCode, slot.SubjectName, slot.ClassLevel, slot.Room,
	)
	if _, fk := constraint(err); fk {
		return school.ErrUnknownClassroom
	}
	return errors.Wrap(err, "upserting schedule slot")
}

func (db *DB) ListSubjects(ctx context.Context) ([]school.Subject, error) {
	subjects := make([]school.Subject, 0)
	if err := db.db.SelectContext(ctx, &subjects, "SELECT id, name, code, color FROM subjects ORDER BY name, id"); err != nil {
		return nil, errors.Wrap(err, "selecting subjects")
	}
	return subjects, nil
}
