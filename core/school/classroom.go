package school

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/darasa/core"
)

type Classroom struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Level        string    `json:"level"`         // grade band label, e.g. มัธยมศึกษาตอนต้น
	AcademicYear string    `json:"academic_year"` // e.g. 2568
	CreatedAt    time.Time `json:"created_at"`    // UTC
}

type ClassroomSummary struct {
	Classroom
	StudentCount int `json:"student_count"`
}

// NewClassroom contains information needed to create a new Classroom.
type NewClassroom struct {
	Name         string `json:"name" validate:"required"`
	Level        string `json:"level" validate:"required"`
	AcademicYear string `json:"academic_year" validate:"required"`
}

func (nc *NewClassroom) Validate(validate *validator.Validate) error {
	nc.Name = core.CleanString(nc.Name)
	nc.Level = core.CleanString(nc.Level)
	nc.AcademicYear = core.CleanString(nc.AcademicYear)
	return validate.Struct(nc)
}

func (nc NewClassroom) Classroom() Classroom {
	return Classroom{Name: nc.Name, Level: nc.Level, AcademicYear: nc.AcademicYear}
}

// ClassroomUpdate holds the fields to merge into an existing Classroom; nil fields are left untouched.
type ClassroomUpdate struct {
	Name         *string `json:"name" validate:"omitempty,min=1"`
	Level        *string `json:"level" validate:"omitempty,min=1"`
	AcademicYear *string `json:"academic_year" validate:"omitempty,min=1"`
}

func (cu *ClassroomUpdate) Validate(validate *validator.Validate) error {
	cleanPtr(cu.Name)
	cleanPtr(cu.Level)
	cleanPtr(cu.AcademicYear)
	return validate.Struct(cu)
}

func (cu ClassroomUpdate) IsEmpty() bool {
	return cu.Name == nil && cu.Level == nil && cu.AcademicYear == nil
}

// Apply merges the set fields into c.
func (cu ClassroomUpdate) Apply(c *Classroom) {
	if cu.Name != nil {
		c.Name = *cu.Name
	}
	if cu.Level != nil {
		c.Level = *cu.Level
	}
	if cu.AcademicYear != nil {
		c.AcademicYear = *cu.AcademicYear
	}
}

func cleanPtr(s *string) {
	if s != nil {
		*s = core.CleanString(*s)
	}
}
