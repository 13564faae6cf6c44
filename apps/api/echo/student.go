package echoapi

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/school"
	"github.com/trezcool/darasa/services/spreadsheet"
)

func registerStudentAPI(g *echo.Group, h handlers) {
	sg := g.Group("/students")
	sg.GET("", h.listStudents)
	sg.POST("", h.createStudent)
	sg.POST("/import", h.importStudents)
	sg.POST("/import/xlsx", h.importStudentsWorkbook)
	sg.GET("/xlsx", h.studentsWorkbook)
	sg.GET("/:id", h.retrieveStudent)
	sg.PUT("/:id", h.updateStudent)
	sg.DELETE("/:id", h.destroyStudent)
}

func (h handlers) listStudents(ctx echo.Context) error {
	svc, err := getService(ctx)
	if err != nil {
		return err
	}
	var filter school.StudentFilter
	if err := (&echo.DefaultBinder{}).BindQueryParams(ctx, &filter); err != nil {
		return errors.Wrap(err, "binding to StudentFilter")
	}

	students, err := svc.ListStudents(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "listing students")
	}
	if students == nil {
		students = []school.StudentRow{}
	}
	return ctx.JSON(http.StatusOK, students)
}

func (h handlers) createStudent(ctx echo.Context) error {
	svc, err := getService(ctx)
	if err != nil {
		return err
	}
	var data school.NewStudent
	if err := h.bindJSON(ctx, &data, "NewStudent"); err != nil {
		return err
	}

	s, err := svc.CreateStudent(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating student")
	}
	return ctx.JSON(http.StatusCreated, s)
}

// retrieveStudent returns the raw record, inactive students included.
func (h handlers) retrieveStudent(ctx echo.Context) error {
	svc, err := getService(ctx)
	if err != nil {
		return err
	}
	id, err := pathID(ctx)
	if err != nil {
		return err
	}

	s, err := svc.GetStudent(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "getting student")
	}
	return ctx.JSON(http.StatusOK, s)
}

func (h handlers) updateStudent(ctx echo.Context) error {
	svc, err := getService(ctx)
	if err != nil {
		return err
	}
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	var data school.StudentUpdate
	if err := h.bindJSON(ctx, &data, "StudentUpdate"); err != nil {
		return err
	}

	s, err := svc.UpdateStudent(ctx.Request().Context(), id, data)
	if err != nil {
		if errors.Is(err, school.ErrNotFound) {
			return ctx.NoContent(http.StatusNoContent)
		}
		return errors.Wrap(err, "updating student")
	}
	return ctx.JSON(http.StatusOK, s)
}

// destroyStudent deactivates the student.
func (h handlers) destroyStudent(ctx echo.Context) error {
	svc, err := getService(ctx)
	if err != nil {
		return err
	}
	id, err := pathID(ctx)
	if err != nil {
		return err
	}

	if err := svc.DeactivateStudent(ctx.Request().Context(), id); err != nil && !errors.Is(err, school.ErrNotFound) {
		return errors.Wrap(err, "deactivating student")
	}
	return ctx.NoContent(http.StatusNoContent)
}

type StudentImportRequest struct {
	Students    []school.RosterRow `json:"students" validate:"required"`
	ClassroomID int                `json:"classroom_id"` // fills rows without a classroom
	Classroom   string             `json:"classroom"`    // same, by name
}

func (sr *StudentImportRequest) Validate(validate *validator.Validate) error {
	sr.Classroom = core.CleanString(sr.Classroom)
	return validate.Struct(sr)
}

func (h handlers) importStudents(ctx echo.Context) error {
	svc, err := getService(ctx)
	if err != nil {
		return err
	}
	var data StudentImportRequest
	if err := h.bindJSON(ctx, &data, "StudentImportRequest"); err != nil {
		return err
	}

	fallback, err := defaultClassroom(ctx, svc, data.ClassroomID, data.Classroom)
	if err != nil {
		return err
	}
	res, err := svc.ImportRoster(ctx.Request().Context(), data.Students, fallback)
	if err != nil {
		return errors.Wrap(err, "importing students")
	}
	return ctx.JSON(http.StatusOK, res)
}

// importStudentsWorkbook imports the roster uploaded as the `file` form field.
// The optional `classroom_id` or `classroom` form values fill rows without a classroom.
func (h handlers) importStudentsWorkbook(ctx echo.Context) error {
	svc, err := getService(ctx)
	if err != nil {
		return err
	}
	fh, err := ctx.FormFile("file")
	if err != nil {
		return core.NewValidationError(nil, core.FieldError{Field: "file", Error: requiredText})
	}
	var classroomID int
	if v := core.CleanString(ctx.FormValue("classroom_id")); v != "" {
		if classroomID, err = strconv.Atoi(v); err != nil {
			return core.NewValidationError(nil, core.FieldError{Field: "classroom_id", Error: "must be an integer"})
		}
	}
	fallback, err := defaultClassroom(ctx, svc, classroomID, core.CleanString(ctx.FormValue("classroom")))
	if err != nil {
		return err
	}

	file, err := fh.Open()
	if err != nil {
		return errors.Wrap(err, "opening upload")
	}
	defer func() { _ = file.Close() }()

	rows, err := sheetsvc.ParseRoster(file)
	if err != nil {
		return errors.Wrap(err, "parsing roster")
	}
	res, err := svc.ImportRoster(ctx.Request().Context(), rows, fallback)
	if err != nil {
		return errors.Wrap(err, "importing students")
	}
	return ctx.JSON(http.StatusOK, res)
}

// studentsWorkbook exports the active students matching the list filter as a roster
// that importStudentsWorkbook reads back.
func (h handlers) studentsWorkbook(ctx echo.Context) error {
	svc, err := getService(ctx)
	if err != nil {
		return err
	}
	var filter school.StudentFilter
	if err := (&echo.DefaultBinder{}).BindQueryParams(ctx, &filter); err != nil {
		return errors.Wrap(err, "binding to StudentFilter")
	}

	students, err := svc.ListStudents(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "listing students")
	}
	buf := new(bytes.Buffer)
	if err := sheetsvc.WriteRoster(buf, students); err != nil {
		return errors.Wrap(err, "writing roster")
	}
	name := "students.xlsx"
	if filter.ClassroomID > 0 {
		name = fmt.Sprintf("students_%d.xlsx", filter.ClassroomID)
	}
	return attachment(ctx, name, buf)
}

const requiredText = "this field is required"

// defaultClassroom resolves the classroom name used for roster rows that name none.
func defaultClassroom(ctx echo.Context, svc *school.Service, id int, name string) (string, error) {
	if id < 1 {
		return name, nil
	}
	c, err := svc.GetClassroom(ctx.Request().Context(), id)
	if err != nil {
		if errors.Is(err, school.ErrNotFound) {
			return "", school.ErrUnknownClassroom
		}
		return "", errors.Wrap(err, "getting classroom")
	}
	return c.Name, nil
}
