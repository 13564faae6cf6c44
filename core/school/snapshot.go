package school

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/pkg/errors"
)

const SnapshotVersion = "1.0"

// Snapshot is the full-store backup payload.
// On import a nil collection is left untouched while an empty one is emptied.
type Snapshot struct {
	Classrooms   []Classroom    `json:"classrooms"`
	Students     []Student      `json:"students"`
	Subjects     []Subject      `json:"subjects"`
	Grades       []Grade        `json:"grades"`
	Schedule     []ScheduleSlot `json:"schedule"`
	Attendance   []Attendance   `json:"attendance"`
	HealthChecks []HealthCheck  `json:"health_check"`
	Measurements []Measurement  `json:"measurements"`
	ExportedAt   time.Time      `json:"exported_at"`
	Version      string         `json:"version"`
}

// snapshotStudent lets a backup omit is_active, which then defaults to true.
type snapshotStudent struct {
	Student
	IsActive *bool `json:"is_active"`
}

func (s *Snapshot) UnmarshalJSON(b []byte) error {
	type alias Snapshot
	aux := struct {
		*alias
		Students []snapshotStudent `json:"students"`
	}{alias: (*alias)(s)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}

	s.Students = nil
	if aux.Students != nil {
		s.Students = make([]Student, 0, len(aux.Students))
		for _, ss := range aux.Students {
			st := ss.Student
			st.IsActive = ss.IsActive == nil || *ss.IsActive
			s.Students = append(s.Students, st)
		}
	}
	return nil
}

// IsEmpty reports whether the snapshot carries no collection at all.
func (s Snapshot) IsEmpty() bool {
	return s.Classrooms == nil && s.Students == nil && s.Subjects == nil && s.Grades == nil &&
		s.Schedule == nil && s.Attendance == nil && s.HealthChecks == nil && s.Measurements == nil
}

// Check normalizes attendance statuses and rejects a snapshot holding non-positive or duplicate ids,
// or two rows sharing a natural key inside one collection. References across collections are left
// to the store, which knows the collections the snapshot does not replace.
func (s *Snapshot) Check() error {
	ids := newIDSet()
	keys := make(map[string]struct{})
	unique := func(kind, key string) error {
		key = kind + "|" + key
		if _, ok := keys[key]; ok {
			return errors.Wrapf(ErrInvalidSnapshot, "duplicate %s %s", kind, key)
		}
		keys[key] = struct{}{}
		return nil
	}

	for _, c := range s.Classrooms {
		if err := ids.add("classroom", c.ID); err != nil {
			return err
		}
	}
	for _, st := range s.Students {
		if err := ids.add("student", st.ID); err != nil {
			return err
		}
		if st.IsActive {
			if err := unique("active student", st.StudentID); err != nil {
				return err
			}
		}
	}
	for _, sub := range s.Subjects {
		if err := ids.add("subject", sub.ID); err != nil {
			return err
		}
		if err := unique("subject", sub.Code); err != nil {
			return err
		}
	}
	for _, g := range s.Grades {
		if err := ids.add("grade", g.ID); err != nil {
			return err
		}
		if err := unique("grade", fmt.Sprintf("%d/%s/%d/%s", g.StudentID, g.SubjectCode, g.Semester, g.AcademicYear)); err != nil {
			return err
		}
	}
	for _, slot := range s.Schedule {
		if err := ids.add("schedule slot", slot.ID); err != nil {
			return err
		}
		if err := unique("schedule slot", fmt.Sprintf("%d/%s", slot.ClassroomID, slot.Key())); err != nil {
			return err
		}
	}
	for i, a := range s.Attendance {
		if err := ids.add("attendance", a.ID); err != nil {
			return err
		}
		if err := unique("attendance", fmt.Sprintf("%d/%s", a.StudentID, a.Date)); err != nil {
			return err
		}
		status, ok := ParseAttendanceStatus(string(a.Status))
		if !ok {
			return errors.Wrapf(ErrInvalidSnapshot, "attendance %d: invalid status %q", a.ID, a.Status)
		}
		s.Attendance[i].Status = status
	}
	for _, h := range s.HealthChecks {
		if err := ids.add("health check", h.ID); err != nil {
			return err
		}
		if err := unique("health check", fmt.Sprintf("%d/%s", h.StudentID, h.Date)); err != nil {
			return err
		}
	}
	for _, m := range s.Measurements {
		if err := ids.add("measurement", m.ID); err != nil {
			return err
		}
		if err := unique("measurement", fmt.Sprintf("%d/%s", m.StudentID, m.Date)); err != nil {
			return err
		}
	}
	return nil
}

type idSet map[string]map[int]struct{}

func newIDSet() idSet {
	return make(idSet)
}

func (set idSet) add(kind string, id int) error {
	if id <= 0 {
		return errors.Wrapf(ErrInvalidSnapshot, "%s without a valid id", kind)
	}
	if set[kind] == nil {
		set[kind] = make(map[int]struct{})
	}
	if _, ok := set[kind][id]; ok {
		return errors.Wrapf(ErrInvalidSnapshot, "duplicate %s id %d", kind, id)
	}
	set[kind][id] = struct{}{}
	return nil
}
