package memdb

import (
	"context"
	"sort"

	"github.com/trezcool/darasa/core/school"
)

// studentIDTaken reports whether an active student other than excludedID holds the code.
func (db *DB) studentIDTaken(code string, excludedID int) bool {
	for _, s := range db.students {
		if s.IsActive && s.StudentID == code && s.ID != excludedID {
			return true
		}
	}
	return false
}

func (db *DB) CreateStudent(_ context.Context, s school.Student) (school.Student, error) {
	db.Lock()
	defer db.Unlock()

	if _, ok := db.classrooms[s.ClassroomID]; !ok {
		return school.Student{}, school.ErrUnknownClassroom
	}
	if s.IsActive && db.studentIDTaken(s.StudentID, 0) {
		return school.Student{}, school.ErrStudentIDExists
	}

	db.pk.student++
	s.ID = db.pk.student
	db.students[s.ID] = &s
	return s, nil
}

func (db *DB) ListStudents(_ context.Context, filter school.StudentFilter) ([]school.StudentRow, error) {
	db.RLock()
	defer db.RUnlock()

	rows := make([]school.StudentRow, 0)
	for _, s := range db.students {
		if !s.IsActive {
			continue
		}
		if filter.ClassroomID > 0 && s.ClassroomID != filter.ClassroomID {
			continue
		}
		if filter.Search != "" && !s.Matches(filter.Search) {
			continue
		}
		row := school.StudentRow{Student: *s}
		if c, ok := db.classrooms[s.ClassroomID]; ok {
			row.ClassroomName = c.Name
		}
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool {
		ri, rj := rows[i], rows[j]
		if filter.ClassroomID == 0 && ri.ClassroomName != rj.ClassroomName {
			return ri.ClassroomName < rj.ClassroomName
		}
		if ri.StudentID != rj.StudentID {
			return ri.StudentID < rj.StudentID
		}
		return ri.ID < rj.ID
	})
	return rows, nil
}

func (db *DB) GetStudent(_ context.Context, id int) (school.Student, error) {
	db.RLock()
	defer db.RUnlock()

	if s, ok := db.students[id]; ok {
		return *s, nil
	}
	return school.Student{}, school.ErrNotFound
}

func (db *DB) UpdateStudent(_ context.Context, id int, upd school.StudentUpdate) (school.Student, error) {
	db.Lock()
	defer db.Unlock()

	orig, ok := db.students[id]
	if !ok {
		return school.Student{}, school.ErrNotFound
	}

	// only save allow-listed fields
	s := *orig
	upd.Apply(&s)
	if _, ok := db.classrooms[s.ClassroomID]; !ok {
		return school.Student{}, school.ErrUnknownClassroom
	}
	if s.IsActive && db.studentIDTaken(s.StudentID, s.ID) {
		return school.Student{}, school.ErrStudentIDExists
	}

	db.students[id] = &s
	return s, nil
}

func (db *DB) DeactivateStudent(_ context.Context, id int) error {
	db.Lock()
	defer db.Unlock()

	s, ok := db.students[id]
	if !ok {
		return school.ErrNotFound
	}
	s.IsActive = false
	return nil
}

func (db *DB) ImportStudents(_ context.Context, students []school.Student) (imported, skipped int, err error) {
	db.Lock()
	defer db.Unlock()

	for _, s := range students {
		if _, ok := db.classrooms[s.ClassroomID]; !ok || db.studentIDTaken(s.StudentID, 0) {
			skipped++
			continue
		}
		db.pk.student++
		s.ID = db.pk.student
		s.IsActive = true
		db.students[s.ID] = &s
		imported++
	}
	return imported, skipped, nil
}
