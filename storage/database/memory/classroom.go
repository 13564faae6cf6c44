package memdb

import (
	"context"
	"sort"

	"github.com/trezcool/darasa/core/school"
)

func (db *DB) CreateClassroom(_ context.Context, c school.Classroom) (school.Classroom, error) {
	db.Lock()
	defer db.Unlock()

	db.pk.classroom++
	c.ID = db.pk.classroom
	c.CreatedAt = db.now().UTC()
	db.classrooms[c.ID] = &c
	return c, nil
}

func (db *DB) ListClassrooms(_ context.Context) ([]school.ClassroomSummary, error) {
	db.RLock()
	defer db.RUnlock()

	counts := make(map[int]int, len(db.classrooms))
	for _, s := range db.students {
		if s.IsActive {
			counts[s.ClassroomID]++
		}
	}

	classrooms := make([]school.ClassroomSummary, 0, len(db.classrooms))
	for _, c := range db.classrooms {
		classrooms = append(classrooms, school.ClassroomSummary{Classroom: *c, StudentCount: counts[c.ID]})
	}
	// newest first
	sort.Slice(classrooms, func(i, j int) bool {
		ci, cj := classrooms[i], classrooms[j]
		if !ci.CreatedAt.Equal(cj.CreatedAt) {
			return ci.CreatedAt.After(cj.CreatedAt)
		}
		return ci.ID > cj.ID
	})
	return classrooms, nil
}

func (db *DB) GetClassroom(_ context.Context, id int) (school.Classroom, error) {
	db.RLock()
	defer db.RUnlock()

	if c, ok := db.classrooms[id]; ok {
		return *c, nil
	}
	return school.Classroom{}, school.ErrNotFound
}

func (db *DB) UpdateClassroom(_ context.Context, id int, upd school.ClassroomUpdate) (school.Classroom, error) {
	db.Lock()
	defer db.Unlock()

	c, ok := db.classrooms[id]
	if !ok {
		return school.Classroom{}, school.ErrNotFound
	}
	upd.Apply(c)
	return *c, nil
}

func (db *DB) DeleteClassroom(_ context.Context, id int) error {
	db.Lock()
	defer db.Unlock()

	if _, ok := db.classrooms[id]; !ok {
		return school.ErrNotFound
	}

	students := make(map[int]bool)
	for _, s := range db.students {
		if s.ClassroomID == id {
			students[s.ID] = true
		}
	}
	owned := func(studentID, classroomID int) bool {
		return students[studentID] || classroomID == id
	}

	for k, s := range db.students {
		if s.ClassroomID == id {
			delete(db.students, k)
		}
	}
	for k, slot := range db.schedule {
		if slot.ClassroomID == id {
			delete(db.schedule, k)
		}
	}
	for k, g := range db.grades {
		if owned(g.StudentID, g.ClassroomID) {
			delete(db.grades, k)
		}
	}
	for k, a := range db.attendance {
		if owned(a.StudentID, a.ClassroomID) {
			delete(db.attendance, k)
		}
	}
	for k, h := range db.healthChecks {
		if owned(h.StudentID, h.ClassroomID) {
			delete(db.healthChecks, k)
		}
	}
	for k, m := range db.measurements {
		if owned(m.StudentID, m.ClassroomID) {
			delete(db.measurements, k)
		}
	}
	delete(db.classrooms, id)
	return nil
}
