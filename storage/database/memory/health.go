package memdb

import (
	"context"
	"sort"

	"github.com/trezcool/darasa/core/school"
)

func (db *DB) ListHealthChecks(_ context.Context, classroomID int, date string) ([]school.HealthCheckRow, error) {
	db.RLock()
	defer db.RUnlock()

	byStudent := make(map[int]*school.HealthCheck)
	for _, h := range db.healthChecks {
		if h.Date == date {
			byStudent[h.StudentID] = h
		}
	}

	students := db.activeStudents(classroomID)
	rows := make([]school.HealthCheckRow, 0, len(students))
	for _, s := range students {
		row := school.HealthCheckRow{
			ID:        s.ID,
			StudentID: s.StudentID,
			FirstName: s.FirstName,
			LastName:  s.LastName,
		}
		if h, ok := byStudent[s.ID]; ok {
			row.BrushedTeeth = h.BrushedTeeth
			row.DrankMilk = h.DrankMilk
			row.Note = h.Note
			row.Recorded = true
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (db *DB) ListHealthCheckRange(_ context.Context, classroomID int, from, to string) ([]school.HealthCheck, error) {
	db.RLock()
	defer db.RUnlock()

	records := make([]school.HealthCheck, 0)
	for _, h := range db.healthChecks {
		if h.ClassroomID == classroomID && inRange(h.Date, from, to) {
			records = append(records, *h)
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

func (db *DB) UpsertHealthCheck(_ context.Context, h school.HealthCheck) error {
	db.Lock()
	defer db.Unlock()

	if _, ok := db.students[h.StudentID]; !ok {
		return school.ErrUnknownStudent
	}
	for _, existing := range db.healthChecks {
		if existing.StudentID == h.StudentID && existing.Date == h.Date {
			existing.ClassroomID = h.ClassroomID
			existing.BrushedTeeth = h.BrushedTeeth
			existing.DrankMilk = h.DrankMilk
			existing.Note = h.Note
			return nil
		}
	}
	db.pk.healthCheck++
	h.ID = db.pk.healthCheck
	db.healthChecks[h.ID] = &h
	return nil
}

func (db *DB) ListMeasurements(_ context.Context, classroomID int, date string) ([]school.MeasurementRow, error) {
	db.RLock()
	defer db.RUnlock()

	byStudent := make(map[int]*school.Measurement)
	for _, m := range db.measurements {
		if m.Date == date {
			byStudent[m.StudentID] = m
		}
	}

	students := db.activeStudents(classroomID)
	rows := make([]school.MeasurementRow, 0, len(students))
	for _, s := range students {
		row := school.MeasurementRow{
			ID:        s.ID,
			StudentID: s.StudentID,
			FirstName: s.FirstName,
			LastName:  s.LastName,
		}
		if m, ok := byStudent[s.ID]; ok {
			row.Weight = m.Weight
			row.Height = m.Height
			row.Recorded = true
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (db *DB) ListMeasurementRange(_ context.Context, classroomID int, from, to string) ([]school.Measurement, error) {
	db.RLock()
	defer db.RUnlock()

	records := make([]school.Measurement, 0)
	for _, m := range db.measurements {
		if m.ClassroomID == classroomID && inRange(m.Date, from, to) {
			records = append(records, *m)
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

func (db *DB) UpsertMeasurement(_ context.Context, m school.Measurement) error {
	db.Lock()
	defer db.Unlock()

	if _, ok := db.students[m.StudentID]; !ok {
		return school.ErrUnknownStudent
	}
	for _, existing := range db.measurements {
		if existing.StudentID == m.StudentID && existing.Date == m.Date {
			existing.ClassroomID = m.ClassroomID
			existing.Weight = m.Weight
			existing.Height = m.Height
			return nil
		}
	}
	db.pk.measurement++
	m.ID = db.pk.measurement
	db.measurements[m.ID] = &m
	return nil
}
