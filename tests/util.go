package testutil

import (
	"context"
	"testing"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core/school"
)

func CreateClassroom(t *testing.T, store school.ClassroomRepository, name string, academicYear ...string) school.Classroom {
	year := "2568"
	if len(academicYear) > 0 {
		year = academicYear[0]
	}
	c, err := store.CreateClassroom(context.Background(), school.Classroom{
		Name:         name,
		Level:        "มัธยมศึกษาตอนต้น",
		AcademicYear: year,
	})
	if err != nil {
		t.Fatalf("createClassroom() failed: %v", err)
	}
	return c
}

func CreateStudent(
	t *testing.T,
	store school.StudentRepository,
	classroomID int,
	code, firstName, lastName string,
	birthDate ...string,
) school.Student {
	s := school.Student{
		StudentID:   code,
		FirstName:   firstName,
		LastName:    lastName,
		ClassroomID: classroomID,
		IsActive:    true,
	}
	if len(birthDate) > 0 {
		s.BirthDate = null.StringFrom(birthDate[0])
	}
	s, err := store.CreateStudent(context.Background(), s)
	if err != nil {
		t.Fatalf("createStudent() failed: %v", err)
	}
	return s
}
