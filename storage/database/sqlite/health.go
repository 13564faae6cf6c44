package sqlitedb

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/school"
)

func (db *DB) ListHealthChecks(ctx context.Context, classroomID int, date string) ([]school.HealthCheckRow, error) {
	const q = `
		SELECT s.id, s.student_id, s.first_name, s.last_name,
		       COALESCE(h.brushed_teeth, 0) AS brushed_teeth, COALESCE(h.drank_milk, 0) AS drank_milk,
		       COALESCE(h.note, '') AS note, h.id IS NOT NULL AS recorded
		FROM students s
		LEFT JOIN health_checks h ON h.student_id = s.id AND h.date = ?
		WHERE s.classroom_id = ? AND s.is_active = 1
		ORDER BY s.student_id, s.id`

	rows := make([]school.HealthCheckRow, 0)
	if err := db.db.SelectContext(ctx, &rows, q, date, classroomID); err != nil {
		return nil, errors.Wrap(err, "selecting health checks")
	}
	return rows, nil
}

func (db *DB) ListHealthCheckRange(ctx context.Context, classroomID int, from, to string) ([]school.HealthCheck, error) {
	const q = `
		SELECT id, student_id, classroom_id, date, brushed_teeth, drank_milk, note
		FROM health_checks
		WHERE classroom_id = ? AND date BETWEEN ? AND ?
		ORDER BY date, student_id`

	records := make([]school.HealthCheck, 0)
	if err := db.db.SelectContext(ctx, &records, q, classroomID, from, to); err != nil {
		return nil, errors.Wrap(err, "selecting health checks")
	}
	return records, nil
}

func (db *DB) UpsertHealthCheck(ctx context.Context, h school.HealthCheck) error {
	_, err := db.db.ExecContext(ctx, `
		INSERT INTO health_checks (student_id, classroom_id, date, brushed_teeth, drank_milk, note) VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (student_id, date) DO UPDATE
		SET classroom_id = excluded.classroom_id, brushed_teeth = excluded.brushed_teeth,
		    drank_milk = excluded.drank_milk, note = excluded.note`,
		h.StudentID, h.ClassroomID, h.Date, h.BrushedTeeth, h.DrankMilk, h.Note,
	)
	return recordErr(err, "upserting health check")
}

func (db *DB) ListMeasurements(ctx context.Context, classroomID int, date string) ([]school.MeasurementRow, error) {
	const q = `
		SELECT s.id, s.student_id, s.first_name, s.last_name,
		       COALESCE(m.weight, 0) AS weight, COALESCE(m.height, 0) AS height, m.id IS NOT NULL AS recorded
		FROM students s
		LEFT JOIN measurements m ON m.student_id = s.id AND m.date = ?
		WHERE s.classroom_id = ? AND s.is_active = 1
		ORDER BY s.student_id, s.id`

	rows := make([]school.MeasurementRow, 0)
	if err := db.db.SelectContext(ctx, &rows, q, date, classroomID); err != nil {
		return nil, errors.Wrap(err, "selecting measurements")
	}
	return rows, nil
}

func (db *DB) ListMeasurementRange(ctx context.Context, classroomID int, from, to string) ([]school.Measurement, error) {
	const q = `
		SELECT id, student_id, classroom_id, date, weight, height
		FROM measurements
		WHERE classroom_id = ? AND date BETWEEN ? AND ?
		ORDER BY date, student_id`

	records := make([]school.Measurement, 0)
	if err := db.db.SelectContext(ctx, &records, q, classroomID, from, to); err != nil {
		return nil, errors.Wrap(err, "selecting measurements")
	}
	return records, nil
}

func (db *DB) UpsertMeasurement(ctx context.Context, m school.Measurement) error {
	_, err := db.db.ExecContext(ctx, `
		INSERT INTO measurements (student_id, classroom_id, date, weight, height) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (student_id, date) DO UPDATE
		SET classroom_id = excluded.classroom_id, weight = excluded.weight, height = excluded.height`,
		m.StudentID, m.ClassroomID, m.Date, m.Weight, m.Height,
	)
	return recordErr(err, "upserting measurement")
}
