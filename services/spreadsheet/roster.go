// Package sheetsvc reads class rosters from workbooks and writes attendance reports and grade books.
package sheetsvc

import (
	"io"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/school"
)

const MaxRosterRows = 2000

var (
	ErrNoRows       = errors.New("roster has no data rows (the first row is the header)")
	ErrTooManyRows  = errors.Errorf("roster has more than %d rows", MaxRosterRows)
	ErrBadHeader    = errors.New("roster header needs a student id and a first name column")
	ErrUnreadable   = errors.New("file is not a readable xlsx workbook")
	buddhistEraDiff = 543
)

// header labels per roster column, English and Thai
var rosterHeaders = map[string][]string{
	"student_id": {"student_id", "student id", "code", "รหัสนักเรียน", "เลขประจำตัว", "เลขประจำตัวนักเรียน"},
	"first_name": {"first_name", "first name", "ชื่อ"},
	"last_name":  {"last_name", "last name", "นามสกุล"},
	"classroom":  {"classroom", "class", "ห้อง", "ชั้น", "ห้องเรียน"},
	"gender":     {"gender", "sex", "เพศ"},
	"birth_date": {"birth_date", "birth date", "วันเกิด", "วันเดือนปีเกิด"},
}

func headerIndex(header []string) map[string]int {
	idx := make(map[string]int, len(rosterHeaders))
	for col := range rosterHeaders {
		idx[col] = -1
	}
	for i, h := range header {
		h = core.CleanString(h, true)
		for col, labels := range rosterHeaders {
			if idx[col] >= 0 {
				continue
			}
			for _, label := range labels {
				if h == label {
					idx[col] = i
					break
				}
			}
		}
	}
	return idx
}

// ParseRoster reads the first sheet of an xlsx workbook. The first row is the header;
// columns may come in any order. Blank rows are skipped.
func ParseRoster(r io.Reader) ([]school.RosterRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errors.Wrap(ErrUnreadable, err.Error())
	}
	defer func() { _ = f.Close() }()

	excelRows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, errors.Wrap(err, "reading sheet")
	}
	if len(excelRows) < 2 {
		return nil, ErrNoRows
	}

	idx := headerIndex(excelRows[0])
	if idx["student_id"] < 0 || idx["first_name"] < 0 {
		return nil, ErrBadHeader
	}
	value := func(row []string, col string) string {
		if i := idx[col]; i >= 0 && i < len(row) {
			return core.CleanString(row[i])
		}
		return ""
	}

	var rows []school.RosterRow
	for _, row := range excelRows[1:] {
		item := school.RosterRow{
			StudentID: value(row, "student_id"),
			FirstName: value(row, "first_name"),
			LastName:  value(row, "last_name"),
			Classroom: value(row, "classroom"),
			Gender:    value(row, "gender"),
			BirthDate: NormalizeDate(value(row, "birth_date")),
		}
		if item == (school.RosterRow{}) {
			continue
		}
		rows = append(rows, item)
	}

	if len(rows) == 0 {
		return nil, ErrNoRows
	}
	if len(rows) > MaxRosterRows {
		return nil, ErrTooManyRows
	}
	return rows, nil
}

var dateLayouts = []string{core.DateLayout, "2/1/2006", "02/01/2006", "2-1-2006", "02-01-2006"}

// NormalizeDate rewrites the usual spreadsheet spellings of a date (day first, Buddhist era years)
// as YYYY-MM-DD. Anything it cannot read is returned unchanged.
func NormalizeDate(s string) string {
	if s == "" {
		return ""
	}
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		if t.Year() > 2400 {
			t = t.AddDate(-buddhistEraDiff, 0, 0)
		}
		return t.Format(core.DateLayout)
	}
	// excel serial day number
	if n, err := strconv.ParseFloat(s, 64); err == nil && n > 0 {
		if t, err := excelize.ExcelDateToTime(n, false); err == nil {
			return t.Format(core.DateLayout)
		}
	}
	return s
}

// WriteRoster writes students as a workbook ParseRoster reads back.
func WriteRoster(w io.Writer, students []school.StudentRow) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	const sheet = "Roster"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return errors.Wrap(err, "naming sheet")
	}
	header := []interface{}{"student_id", "first_name", "last_name", "classroom", "gender", "birth_date"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return errors.Wrap(err, "writing header")
	}
	for i, s := range students {
		row := []interface{}{s.StudentID, s.FirstName, s.LastName, s.ClassroomName, s.Gender, s.BirthDate.String}
		if err := f.SetSheetRow(sheet, cell("A", i+2), &row); err != nil {
			return errors.Wrapf(err, "writing row %d", i+2)
		}
	}
	return errors.Wrap(f.Write(w), "writing workbook")
}
