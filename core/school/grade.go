package school

import (
	"math"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core"
)

type Grade struct {
	ID           int     `json:"id"`
	StudentID    int     `json:"student_id"`
	ClassroomID  int     `json:"classroom_id"`
	SubjectCode  string  `json:"subject_code"`
	Semester     int     `json:"semester"`
	AcademicYear string  `json:"academic_year"`
	Score        float64 `json:"score"` // expected within [0, 100], not enforced
}

// GradeRow is a roster line of a classroom's grade sheet for one subject.
type GradeRow struct {
	ID          int          `json:"id"`
	StudentID   string       `json:"student_id"`
	FirstName   string       `json:"first_name"`
	LastName    string       `json:"last_name"`
	SubjectCode string       `json:"subject_code"`
	SubjectName string       `json:"subject_name"`
	Score       null.Float64 `json:"score"`
}

type GradeFilter struct {
	ClassroomID  int    `query:"classroom" validate:"required,min=1"`
	Semester     int    `query:"semester" validate:"required,oneof=1 2"`
	AcademicYear string `query:"year" validate:"required"`
}

func (gf *GradeFilter) Validate(validate *validator.Validate) error {
	gf.AcademicYear = core.CleanString(gf.AcademicYear)
	return validate.Struct(gf)
}

var gradeSteps = []struct {
	min   float64
	point float64
}{
	{80, 4.0},
	{75, 3.5},
	{70, 3.0},
	{65, 2.5},
	{60, 2.0},
	{55, 1.5},
	{50, 1.0},
}

// GradePoint maps a score to the 0.0-4.0 grade scale; each bucket includes its lower bound.
func GradePoint(score float64) float64 {
	for _, step := range gradeSteps {
		if score >= step.min {
			return step.point
		}
	}
	return 0
}

// ParseScore reads a score sent as a JSON number or a numeric string.
// nil, "", non-numeric strings and NaN are reported as absent.
func ParseScore(v interface{}) (float64, bool) {
	var f float64
	switch s := v.(type) {
	case float64:
		f = s
	case int:
		f = float64(s)
	case string:
		var err error
		if f, err = strconv.ParseFloat(strings.TrimSpace(s), 64); err != nil {
			return 0, false
		}
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// GradeSheet is a batch of scores for one classroom, semester and academic year.
// Scores maps a Student.ID (as a string key) to subject codes and their scores.
type GradeSheet struct {
	ClassroomID  int                               `json:"classroom" validate:"required,min=1"`
	Semester     int                               `json:"semester" validate:"required,oneof=1 2"`
	AcademicYear string                            `json:"year" validate:"required"`
	Scores       map[string]map[string]interface{} `json:"grades"`
}

func (gs *GradeSheet) Validate(validate *validator.Validate) error {
	gs.AcademicYear = core.CleanString(gs.AcademicYear)
	if err := validate.Struct(gs); err != nil {
		return err
	}
	_, err := studentIDs("grades", gs.Scores)
	return err
}
