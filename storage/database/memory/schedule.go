package memdb

import (
	"context"
	"sort"

	"github.com/trezcool/darasa/core/school"
)

func (db *DB) ListSchedule(_ context.Context, classroomID int) ([]school.ScheduleSlot, error) {
	db.RLock()
	defer db.RUnlock()

	colors := make(map[string]string, len(db.subjects))
	for _, sub := range db.subjects {
		colors[sub.Code] = sub.Color
	}

	slots := make([]school.ScheduleSlot, 0)
	for _, slot := range db.schedule {
		if slot.ClassroomID == classroomID {
			s := *slot
			s.Color = colors[s.SubjectCode]
			slots = append(slots, s)
		}
	}
	sort.Slice(slots, func(i, j int) bool {
		if slots[i].DayOfWeek != slots[j].DayOfWeek {
			return slots[i].DayOfWeek < slots[j].DayOfWeek
		}
		return slots[i].Period < slots[j].Period
	})
	return slots, nil
}

func (db *DB) UpsertScheduleSlot(_ context.Context, slot school.ScheduleSlot) error {
	db.Lock()
	defer db.Unlock()

	if _, ok := db.classrooms[slot.ClassroomID]; !ok {
		return school.ErrUnknownClassroom
	}
	slot.Color = ""
	for _, existing := range db.schedule {
		if existing.ClassroomID == slot.ClassroomID && existing.DayOfWeek == slot.DayOfWeek && existing.Period == slot.Period {
			existing.SubjectCode = slot.SubjectCode
			existing.SubjectName = slot.SubjectName
			existing.ClassLevel = slot.ClassLevel
			existing.Room = slot.Room
			return nil
		}
	}
	db.pk.slot++
	slot.ID = db.pk.slot
	db.schedule[slot.ID] = &slot
	return nil
}

func (db *DB) ListSubjects(_ context.Context) ([]school.Subject, error) {
	db.RLock()
	defer db.RUnlock()
	return db.sortedSubjects(), nil
}
