package school

import (
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core"
)

// MinSearchLen is the shortest search query that filters anything.
const MinSearchLen = 2

type Student struct {
	ID          int         `json:"id"`
	StudentID   string      `json:"student_id"` // school-issued code, unique among active students
	FirstName   string      `json:"first_name"`
	LastName    string      `json:"last_name"`
	ClassroomID int         `json:"classroom_id"`
	Gender      string      `json:"gender"`
	BirthDate   null.String `json:"birth_date"`
	IsActive    bool        `json:"is_active"`
}

// Matches reports whether the query is a case-insensitive substring of the student's names or code.
func (s Student) Matches(query string) bool {
	return core.ContainsFold(s.FirstName, query) ||
		core.ContainsFold(s.LastName, query) ||
		core.ContainsFold(s.StudentID, query)
}

type StudentRow struct {
	Student
	ClassroomName string `json:"classroom_name"`
}

// NewStudent contains information needed to create a new Student.
type NewStudent struct {
	StudentID   string `json:"student_id" validate:"required"`
	FirstName   string `json:"first_name" validate:"required"`
	LastName    string `json:"last_name" validate:"required"`
	ClassroomID int    `json:"classroom_id" validate:"required,min=1"`
	Gender      string `json:"gender"`
	BirthDate   string `json:"birth_date" validate:"omitempty,isodate"`
}

func (ns *NewStudent) Validate(validate *validator.Validate) error {
	ns.StudentID = core.CleanString(ns.StudentID)
	ns.FirstName = core.CleanString(ns.FirstName)
	ns.LastName = core.CleanString(ns.LastName)
	ns.Gender = core.CleanString(ns.Gender)
	ns.BirthDate = core.CleanString(ns.BirthDate)
	return validate.Struct(ns)
}

func (ns NewStudent) Student() Student {
	return Student{
		StudentID:   ns.StudentID,
		FirstName:   ns.FirstName,
		LastName:    ns.LastName,
		ClassroomID: ns.ClassroomID,
		Gender:      ns.Gender,
		BirthDate:   null.NewString(ns.BirthDate, ns.BirthDate != ""),
		IsActive:    true,
	}
}

// StudentUpdate is the allow-list of Student fields a client may change.
// Anything else in a client payload (id, is_active, ...) is never written.
type StudentUpdate struct {
	StudentID   *string `json:"student_id" validate:"omitempty,min=1"`
	FirstName   *string `json:"first_name" validate:"omitempty,min=1"`
	LastName    *string `json:"last_name" validate:"omitempty,min=1"`
	ClassroomID *int    `json:"classroom_id" validate:"omitempty,min=1"`
	Gender      *string `json:"gender"`
	BirthDate   *string `json:"birth_date"` // "" clears it
}

func (su *StudentUpdate) Validate(validate *validator.Validate) error {
	cleanPtr(su.StudentID)
	cleanPtr(su.FirstName)
	cleanPtr(su.LastName)
	cleanPtr(su.Gender)
	cleanPtr(su.BirthDate)
	if err := validate.Struct(su); err != nil {
		return err
	}
	if su.BirthDate != nil && *su.BirthDate != "" && !core.IsDate(*su.BirthDate) {
		return core.NewValidationError(nil, core.FieldError{Field: "birth_date", Error: "must be a date formatted as YYYY-MM-DD"})
	}
	return nil
}

func (su StudentUpdate) IsEmpty() bool {
	return su.StudentID == nil && su.FirstName == nil && su.LastName == nil &&
		su.ClassroomID == nil && su.Gender == nil && su.BirthDate == nil
}

// Apply merges the set fields into s.
func (su StudentUpdate) Apply(s *Student) {
	if su.StudentID != nil {
		s.StudentID = *su.StudentID
	}
	if su.FirstName != nil {
		s.FirstName = *su.FirstName
	}
	if su.LastName != nil {
		s.LastName = *su.LastName
	}
	if su.ClassroomID != nil {
		s.ClassroomID = *su.ClassroomID
	}
	if su.Gender != nil {
		s.Gender = *su.Gender
	}
	if su.BirthDate != nil {
		s.BirthDate = null.NewString(*su.BirthDate, *su.BirthDate != "")
	}
}

type StudentFilter struct {
	ClassroomID int    `query:"classroom"`
	Search      string `query:"q"`
}

// Clean trims the search and drops it when it is too short to filter.
func (sf *StudentFilter) Clean() {
	sf.Search = core.CleanString(sf.Search)
	if utf8.RuneCountInString(sf.Search) < MinSearchLen {
		sf.Search = ""
	}
}

// RosterRow is one student line of a spreadsheet roster; the classroom is referenced by name.
type RosterRow struct {
	StudentID string `json:"student_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Classroom string `json:"classroom"`
	Gender    string `json:"gender"`
	BirthDate string `json:"birth_date"`
}

func (r *RosterRow) Clean() {
	r.StudentID = core.CleanString(r.StudentID)
	r.FirstName = core.CleanString(r.FirstName)
	r.LastName = core.CleanString(r.LastName)
	r.Classroom = core.CleanString(r.Classroom)
	r.Gender = core.CleanString(r.Gender)
	r.BirthDate = core.CleanString(r.BirthDate)
}

type ImportResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}
