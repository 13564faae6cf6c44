package sheetsvc

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/trezcool/darasa/core/school"
)

const (
	AttendanceSheet = "การมาเรียน"
	HealthSheet     = "สุขภาพ"
	GradeSheet      = "ผลการเรียน"
)

// first data row; row 1 is the title, row 2 the header
const firstRow = 3

var studentHeader = []string{"ลำดับ", "รหัสนักเรียน", "ชื่อ", "นามสกุล"}

type styles struct {
	title  int
	header int
}

func newWorkbook(sheets ...string) (*excelize.File, styles, error) {
	f := excelize.NewFile()
	for i, name := range sheets {
		idx, err := f.NewSheet(name)
		if err != nil {
			_ = f.Close()
			return nil, styles{}, errors.Wrapf(err, "creating sheet %s", name)
		}
		if i == 0 {
			f.SetActiveSheet(idx)
		}
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		_ = f.Close()
		return nil, styles{}, errors.Wrap(err, "removing default sheet")
	}

	var st styles
	var err error
	if st.title, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}}); err != nil {
		_ = f.Close()
		return nil, styles{}, errors.Wrap(err, "title style")
	}
	st.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		_ = f.Close()
		return nil, styles{}, errors.Wrap(err, "header style")
	}
	return f, st, nil
}

// writeFrame writes the title, the student columns and one header per extra column,
// then one line per student. It returns the row of each student by Student.ID.
func writeFrame(f *excelize.File, st styles, sheet, title string, students []school.StudentRow, extra []string) (map[int]int, error) {
	if err := f.SetCellValue(sheet, "A1", title); err != nil {
		return nil, err
	}
	_ = f.SetCellStyle(sheet, "A1", "A1", st.title)

	header := append(append([]string{}, studentHeader...), extra...)
	for i, h := range header {
		if err := f.SetCellValue(sheet, cell(colName(i), 2), h); err != nil {
			return nil, err
		}
	}
	_ = f.SetCellStyle(sheet, "A2", cell(colName(len(header)-1), 2), st.header)
	_ = f.SetColWidth(sheet, "A", "A", 8)
	_ = f.SetColWidth(sheet, "B", "B", 14)
	_ = f.SetColWidth(sheet, "C", "D", 18)

	rows := make(map[int]int, len(students))
	for i, s := range students {
		row := firstRow + i
		rows[s.ID] = row
		line := []interface{}{i + 1, s.StudentID, s.FirstName, s.LastName}
		if err := f.SetSheetRow(sheet, cell("A", row), &line); err != nil {
			return nil, err
		}
	}
	return rows, nil
}

// WriteAttendanceReport writes a classroom's range report: one attendance and one health sheet,
// a line per student and a column per recorded date.
func WriteAttendanceReport(w io.Writer, report school.ClassroomReport) error {
	f, st, err := newWorkbook(AttendanceSheet, HealthSheet)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	period := fmt.Sprintf("%s %s - %s", report.Classroom.Name, report.From, report.To)

	rows, err := writeFrame(f, st, AttendanceSheet, "รายงานการมาเรียน "+period, report.Students, report.AttendanceDates)
	if err != nil {
		return errors.Wrap(err, "writing attendance sheet")
	}
	cols := dateColumns(report.AttendanceDates)
	for _, a := range report.Attendance {
		row, ok := rows[a.StudentID]
		col, found := cols[a.Date]
		if !ok || !found {
			continue
		}
		if err := f.SetCellValue(AttendanceSheet, cell(col, row), a.Status.Thai()); err != nil {
			return errors.Wrap(err, "writing attendance")
		}
	}

	rows, err = writeFrame(f, st, HealthSheet, "รายงานสุขภาพ "+period, report.Students, report.HealthDates)
	if err != nil {
		return errors.Wrap(err, "writing health sheet")
	}
	cols = dateColumns(report.HealthDates)
	for _, h := range report.Health {
		row, ok := rows[h.StudentID]
		col, found := cols[h.Date]
		if !ok || !found {
			continue
		}
		if err := f.SetCellValue(HealthSheet, cell(col, row), healthLabel(h)); err != nil {
			return errors.Wrap(err, "writing health check")
		}
	}

	return errors.Wrap(f.Write(w), "writing workbook")
}

func dateColumns(dates []string) map[string]string {
	cols := make(map[string]string, len(dates))
	for i, d := range dates {
		cols[d] = colName(len(studentHeader) + i)
	}
	return cols
}

func healthLabel(h school.HealthCheck) string {
	return fmt.Sprintf("แปรงฟัน %s นม %s", mark(h.BrushedTeeth), mark(h.DrankMilk))
}

func mark(ok bool) string {
	if ok {
		return "✓"
	}
	return "✗"
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
