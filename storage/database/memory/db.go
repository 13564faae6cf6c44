// Package memdb is the ephemeral Store: process-lifetime collections with no durability.
// Every DB owns its state and id counters; two DBs never share data.
package memdb

import (
	"sort"
	"sync"
	"time"

	"github.com/trezcool/darasa/core/school"
)

type (
	DB struct {
		sync.RWMutex

		classrooms   map[int]*school.Classroom
		students     map[int]*school.Student
		attendance   map[int]*school.Attendance
		healthChecks map[int]*school.HealthCheck
		measurements map[int]*school.Measurement
		grades       map[int]*school.Grade
		schedule     map[int]*school.ScheduleSlot
		subjects     map[int]*school.Subject

		pk  pkCounters
		now func() time.Time
	}

	// pkCounters hold the last id handed out per collection.
	pkCounters struct {
		classroom, student, attendance, healthCheck, measurement, grade, slot, subject int
	}
)

var _ school.Store = (*DB)(nil) // interface compliance check

// Open returns an empty store with the subject catalog seeded.
func Open() (*DB, error) {
	db := &DB{now: time.Now}
	db.reset()
	return db, nil
}

func (db *DB) Close() error {
	return nil
}

// reset empties every collection, resets the counters and seeds the subject catalog.
// Callers hold the write lock (or own db exclusively).
func (db *DB) reset() {
	db.classrooms = make(map[int]*school.Classroom)
	db.students = make(map[int]*school.Student)
	db.attendance = make(map[int]*school.Attendance)
	db.healthChecks = make(map[int]*school.HealthCheck)
	db.measurements = make(map[int]*school.Measurement)
	db.grades = make(map[int]*school.Grade)
	db.schedule = make(map[int]*school.ScheduleSlot)
	db.subjects = make(map[int]*school.Subject)
	db.pk = pkCounters{}
	db.seedSubjects()
}

func (db *DB) seedSubjects() {
	if len(db.subjects) > 0 {
		return
	}
	for _, sub := range school.DefaultSubjects {
		db.pk.subject++
		sub.ID = db.pk.subject
		db.subjects[sub.ID] = &sub
	}
}

// activeStudents returns the active students of a classroom ordered by student_id.
func (db *DB) activeStudents(classroomID int) []school.Student {
	var students []school.Student
	for _, s := range db.students {
		if s.IsActive && s.ClassroomID == classroomID {
			students = append(students, *s)
		}
	}
	sort.Slice(students, func(i, j int) bool {
		if students[i].StudentID != students[j].StudentID {
			return students[i].StudentID < students[j].StudentID
		}
		return students[i].ID < students[j].ID
	})
	return students
}

// values copies the rows of a collection ordered by id.
func values[T any](table map[int]*T) []T {
	ids := make([]int, 0, len(table))
	for id := range table {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	rows := make([]T, 0, len(table))
	for _, id := range ids {
		rows = append(rows, *table[id])
	}
	return rows
}

func inRange(date, from, to string) bool {
	return date >= from && date <= to
}
