package memdb

import (
	"context"
	"sort"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core/school"
)

func (db *DB) sortedSubjects() []school.Subject {
	subjects := values(db.subjects)
	sort.SliceStable(subjects, func(i, j int) bool { return subjects[i].Name < subjects[j].Name })
	return subjects
}

func (db *DB) ListGrades(_ context.Context, filter school.GradeFilter) ([]school.GradeRow, error) {
	db.RLock()
	defer db.RUnlock()

	type gradeKey struct {
		student int
		subject string
	}
	scores := make(map[gradeKey]float64)
	for _, g := range db.grades {
		if g.Semester == filter.Semester && g.AcademicYear == filter.AcademicYear {
			scores[gradeKey{g.StudentID, g.SubjectCode}] = g.Score
		}
	}

	students := db.activeStudents(filter.ClassroomID)
	subjects := db.sortedSubjects()
	rows := make([]school.GradeRow, 0, len(students)*len(subjects))
	for _, s := range students {
		for _, sub := range subjects {
			row := school.GradeRow{
				ID:          s.ID,
				StudentID:   s.StudentID,
				FirstName:   s.FirstName,
				LastName:    s.LastName,
				SubjectCode: sub.Code,
				SubjectName: sub.Name,
			}
			if score, ok := scores[gradeKey{s.ID, sub.Code}]; ok {
				row.Score = null.Float64From(score)
			}
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func (db *DB) ListStudentGrades(_ context.Context, studentIDs ...int) ([]school.Grade, error) {
	db.RLock()
	defer db.RUnlock()

	wanted := make(map[int]bool, len(studentIDs))
	for _, id := range studentIDs {
		wanted[id] = true
	}
	grades := make([]school.Grade, 0)
	for _, g := range values(db.grades) {
		if wanted[g.StudentID] {
			grades = append(grades, g)
		}
	}
	return grades, nil
}

func (db *DB) UpsertGrade(_ context.Context, g school.Grade) error {
	db.Lock()
	defer db.Unlock()

	if _, ok := db.students[g.StudentID]; !ok {
		return school.ErrUnknownStudent
	}
	for _, existing := range db.grades {
		if existing.StudentID == g.StudentID && existing.SubjectCode == g.SubjectCode &&
			existing.Semester == g.Semester && existing.AcademicYear == g.AcademicYear {
			existing.ClassroomID = g.ClassroomID
			existing.Score = g.Score
			return nil
		}
	}
	db.pk.grade++
	g.ID = db.pk.grade
	db.grades[g.ID] = &g
	return nil
}
