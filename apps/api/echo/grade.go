package echoapi

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/school"
	"github.com/trezcool/darasa/services/spreadsheet"
)

const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func registerGradeAPI(g *echo.Group, h handlers) {
	g.GET("/grades", h.grades)
	g.POST("/grades", h.saveGradeSheet)
	g.GET("/grades/xlsx", h.gradeBook)
}

type SavedResponse struct {
	Success bool `json:"success"`
	Saved   int  `json:"saved"`
}

func (h handlers) grades(ctx echo.Context) error {
	svc, err := getService(ctx)
	if err != nil {
		return err
	}
	var filter school.GradeFilter
	if err := h.bindQuery(ctx, &filter, "GradeFilter"); err != nil {
		return err
	}

	rows, err := svc.Grades(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "listing grades")
	}
	if rows == nil {
		rows = []school.GradeRow{}
	}
	return ctx.JSON(http.StatusOK, rows)
}

func (h handlers) saveGradeSheet(ctx echo.Context) error {
	svc, err := getService(ctx)
	if err != nil {
		return err
	}
	var data school.GradeSheet
	if err := h.bindJSON(ctx, &data, "GradeSheet"); err != nil {
		return err
	}

	saved, err := svc.SaveGradeSheet(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "saving grade sheet")
	}
	return ctx.JSON(http.StatusOK, SavedResponse{Success: true, Saved: saved})
}

func (h handlers) gradeBook(ctx echo.Context) error {
	svc, err := getService(ctx)
	if err != nil {
		return err
	}
	var filter school.GradeFilter
	if err := h.bindQuery(ctx, &filter, "GradeFilter"); err != nil {
		return err
	}

	classroom, err := svc.GetClassroom(ctx.Request().Context(), filter.ClassroomID)
	if err != nil {
		return errors.Wrap(err, "getting classroom")
	}
	rows, err := svc.Grades(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "listing grades")
	}

	buf := new(bytes.Buffer)
	if err := sheetsvc.WriteGradeBook(buf, classroom, filter.Semester, filter.AcademicYear, rows); err != nil {
		return errors.Wrap(err, "writing grade book")
	}
	name := fmt.Sprintf("grades_%d_%d_%s.xlsx", classroom.ID, filter.Semester, filter.AcademicYear)
	return attachment(ctx, name, buf)
}

func attachment(ctx echo.Context, name string, buf *bytes.Buffer) error {
	ctx.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name))
	return ctx.Blob(http.StatusOK, xlsxMIME, buf.Bytes())
}
