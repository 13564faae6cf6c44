package memdb

import (
	"context"
	"sort"

	"github.com/trezcool/darasa/core/school"
)

func (db *DB) ListAttendance(_ context.Context, classroomID int, date string) ([]school.AttendanceRow, error) {
	db.RLock()
	defer db.RUnlock()

	byStudent := make(map[int]*school.Attendance)
	for _, a := range db.attendance {
		if a.Date == date {
			byStudent[a.StudentID] = a
		}
	}

	students := db.activeStudents(classroomID)
	rows := make([]school.AttendanceRow, 0, len(students))
	for _, s := range students {
		row := school.AttendanceRow{
			ID:        s.ID,
			StudentID: s.StudentID,
			FirstName: s.FirstName,
			LastName:  s.LastName,
			Status:    school.StatusPresent,
		}
		if a, ok := byStudent[s.ID]; ok {
			row.Status = a.Status
			row.Note = a.Note
			row.Recorded = true
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (db *DB) ListAttendanceRange(_ context.Context, classroomID int, from, to string) ([]school.Attendance, error) {
	db.RLock()
	defer db.RUnlock()

	records := make([]school.Attendance, 0)
	for _, a := range db.attendance {
		if a.ClassroomID == classroomID && inRange(a.Date, from, to) {
			records = append(records, *a)
		}
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].Date != records[j].Date {
			return records[i].Date < records[j].Date
		}
		return records[i].StudentID < records[j].StudentID
	})
	return records, nil
}

func (db *DB) UpsertAttendance(_ context.Context, a school.Attendance) error {
	db.Lock()
	defer db.Unlock()

	if _, ok := db.students[a.StudentID]; !ok {
		return school.ErrUnknownStudent
	}
	if a.Status == "" {
		a.Status = school.StatusPresent
	}

	for _, existing := range db.attendance {
		if existing.StudentID == a.StudentID && existing.Date == a.Date {
			existing.ClassroomID = a.ClassroomID
			existing.Status = a.Status
			existing.Note = a.Note
			return nil
		}
	}
	db.pk.attendance++
	a.ID = db.pk.attendance
	db.attendance[a.ID] = &a
	return nil
}
