package sheetsvc

import (
	"fmt"
	"io"
	"math"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/school"
)

type gradeLine struct {
	student school.StudentRow
	scores  map[string]float64
}

// WriteGradeBook writes a classroom's grade sheet for one term: a line per student, a score column
// per subject in the order rows first mention them, then the grade point average of the recorded scores.
// Missing scores stay blank and do not count towards the average.
func WriteGradeBook(w io.Writer, classroom school.Classroom, semester int, year string, rows []school.GradeRow) error {
	var (
		lines    []*gradeLine
		byID     = make(map[int]*gradeLine)
		subjects []string
		names    = make(map[string]string)
	)
	for _, r := range rows {
		if _, ok := names[r.SubjectCode]; !ok {
			names[r.SubjectCode] = r.SubjectName
			subjects = append(subjects, r.SubjectCode)
		}
		line, ok := byID[r.ID]
		if !ok {
			line = &gradeLine{scores: make(map[string]float64)}
			line.student.ID = r.ID
			line.student.StudentID = r.StudentID
			line.student.FirstName = r.FirstName
			line.student.LastName = r.LastName
			byID[r.ID] = line
			lines = append(lines, line)
		}
		if r.Score.Valid {
			line.scores[r.SubjectCode] = r.Score.Float64
		}
	}

	f, st, err := newWorkbook(GradeSheet)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	header := make([]string, 0, len(subjects)+1)
	for _, code := range subjects {
		header = append(header, names[code])
	}
	header = append(header, "GPA")

	students := make([]school.StudentRow, len(lines))
	for i, l := range lines {
		students[i] = l.student
	}
	title := fmt.Sprintf("ผลการเรียน %s ภาคเรียนที่ %d ปีการศึกษา %s", classroom.Name, semester, year)
	rowOf, err := writeFrame(f, st, GradeSheet, title, students, header)
	if err != nil {
		return errors.Wrap(err, "writing grade sheet")
	}

	gpaCol := colName(len(studentHeader) + len(subjects))
	for _, l := range lines {
		row := rowOf[l.student.ID]
		var total float64
		for i, code := range subjects {
			score, ok := l.scores[code]
			if !ok {
				continue
			}
			total += school.GradePoint(score)
			if err := f.SetCellValue(GradeSheet, cell(colName(len(studentHeader)+i), row), score); err != nil {
				return errors.Wrap(err, "writing score")
			}
		}
		if len(l.scores) > 0 {
			gpa := math.Round(total/float64(len(l.scores))*100) / 100
			if err := f.SetCellValue(GradeSheet, cell(gpaCol, row), gpa); err != nil {
				return errors.Wrap(err, "writing gpa")
			}
		}
	}

	return errors.Wrap(f.Write(w), "writing workbook")
}
