package memdb

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/school"
)

func (db *DB) Export(_ context.Context) (school.Snapshot, error) {
	db.RLock()
	defer db.RUnlock()

	return school.Snapshot{
		Classrooms:   values(db.classrooms),
		Students:     values(db.students),
		Subjects:     values(db.subjects),
		Grades:       values(db.grades),
		Schedule:     values(db.schedule),
		Attendance:   values(db.attendance),
		HealthChecks: values(db.healthChecks),
		Measurements: values(db.measurements),
	}, nil
}

// Import builds the new state aside and swaps it in only when every reference resolves,
// so a rejected snapshot leaves the store untouched.
func (db *DB) Import(_ context.Context, snap school.Snapshot) error {
	if err := snap.Check(); err != nil {
		return err
	}

	db.Lock()
	defer db.Unlock()

	next := &DB{
		classrooms:   db.classrooms,
		students:     db.students,
		attendance:   db.attendance,
		healthChecks: db.healthChecks,
		measurements: db.measurements,
		grades:       db.grades,
		schedule:     db.schedule,
		subjects:     db.subjects,
		pk:           db.pk,
		now:          db.now,
	}
	if snap.Classrooms != nil {
		next.classrooms, next.pk.classroom = table(snap.Classrooms, func(c school.Classroom) int { return c.ID })
	}
	if snap.Students != nil {
		next.students, next.pk.student = table(snap.Students, func(s school.Student) int { return s.ID })
	}
	if snap.Subjects != nil {
		next.subjects, next.pk.subject = table(snap.Subjects, func(s school.Subject) int { return s.ID })
	}
	if snap.Grades != nil {
		next.grades, next.pk.grade = table(snap.Grades, func(g school.Grade) int { return g.ID })
	}
	if snap.Schedule != nil {
		next.schedule, next.pk.slot = table(snap.Schedule, func(s school.ScheduleSlot) int { return s.ID })
		for _, slot := range next.schedule {
			slot.Color = ""
		}
	}
	if snap.Attendance != nil {
		next.attendance, next.pk.attendance = table(snap.Attendance, func(a school.Attendance) int { return a.ID })
	}
	if snap.HealthChecks != nil {
		next.healthChecks, next.pk.healthCheck = table(snap.HealthChecks, func(h school.HealthCheck) int { return h.ID })
	}
	if snap.Measurements != nil {
		next.measurements, next.pk.measurement = table(snap.Measurements, func(m school.Measurement) int { return m.ID })
	}

	if err := next.checkReferences(); err != nil {
		return err
	}

	db.classrooms = next.classrooms
	db.students = next.students
	db.attendance = next.attendance
	db.healthChecks = next.healthChecks
	db.measurements = next.measurements
	db.grades = next.grades
	db.schedule = next.schedule
	db.subjects = next.subjects
	db.pk = next.pk
	return nil
}

func (db *DB) Clear(_ context.Context) error {
	db.Lock()
	defer db.Unlock()

	db.reset()
	return nil
}

// table copies rows into a fresh collection and returns it with the highest id.
func table[T any](rows []T, id func(T) int) (map[int]*T, int) {
	t := make(map[int]*T, len(rows))
	var maxID int
	for _, row := range rows {
		row := row
		t[id(row)] = &row
		if id(row) > maxID {
			maxID = id(row)
		}
	}
	return t, maxID
}

func (db *DB) checkReferences() error {
	for _, s := range db.students {
		if _, ok := db.classrooms[s.ClassroomID]; !ok {
			return errors.Wrapf(school.ErrInvalidSnapshot, "student %d: unknown classroom %d", s.ID, s.ClassroomID)
		}
	}
	for _, slot := range db.schedule {
		if _, ok := db.classrooms[slot.ClassroomID]; !ok {
			return errors.Wrapf(school.ErrInvalidSnapshot, "schedule slot %d: unknown classroom %d", slot.ID, slot.ClassroomID)
		}
	}

	studentExists := func(kind string, id, studentID int) error {
		if _, ok := db.students[studentID]; !ok {
			return errors.Wrapf(school.ErrInvalidSnapshot, "%s %d: unknown student %d", kind, id, studentID)
		}
		return nil
	}
	for _, g := range db.grades {
		if err := studentExists("grade", g.ID, g.StudentID); err != nil {
			return err
		}
	}
	for _, a := range db.attendance {
		if err := studentExists("attendance", a.ID, a.StudentID); err != nil {
			return err
		}
	}
	for _, h := range db.healthChecks {
		if err := studentExists("health check", h.ID, h.StudentID); err != nil {
			return err
		}
	}
	for _, m := range db.measurements {
		if err := studentExists("measurement", m.ID, m.StudentID); err != nil {
			return err
		}
	}
	return nil
}
