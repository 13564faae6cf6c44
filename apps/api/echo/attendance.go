package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/school"
)

func registerAttendanceAPI(g *echo.Group, h handlers) {
	g.GET("/attendance", h.attendanceSheet)
	g.POST("/attendance", h.saveAttendanceSheet)
	g.GET("/health", h.measurements)
	g.POST("/health", h.recordMeasurement)
}

type (
	DayQuery struct {
		ClassroomID int    `query:"classroom" validate:"required,min=1"`
		Date        string `query:"date" validate:"required,isodate"`
	}

	MeasurementQuery struct {
		Mode        string `query:"mode" validate:"omitempty,oneof=export"`
		ClassroomID int    `query:"classroom" validate:"required,min=1"`
		Date        string `query:"date" validate:"required_without=Mode,omitempty,isodate"`
		From        string `query:"startDate" validate:"required_with=Mode,omitempty,isodate"`
		To          string `query:"endDate" validate:"required_with=Mode,omitempty,isodate"`
	}
)

func (dq *DayQuery) Validate(validate *validator.Validate) error {
	dq.Date = core.CleanString(dq.Date)
	return validate.Struct(dq)
}

func (mq *MeasurementQuery) Validate(validate *validator.Validate) error {
	mq.Mode = core.CleanString(mq.Mode, true)
	mq.Date = core.CleanString(mq.Date)
	mq.From = core.CleanString(mq.From)
	mq.To = core.CleanString(mq.To)
	return validate.Struct(mq)
}

func (h handlers) attendanceSheet(ctx echo.Context) error {
	svc, err := getService(ctx)
	if err != nil {
		return err
	}
	var query DayQuery
	if err := h.bindQuery(ctx, &query, "DayQuery"); err != nil {
		return err
	}

	rows, err := svc.AttendanceSheet(ctx.Request().Context(), query.ClassroomID, query.Date)
	if err != nil {
		return errors.Wrap(err, "reading attendance sheet")
	}
	return ctx.JSON(http.StatusOK, rows)
}

func (h handlers) saveAttendanceSheet(ctx echo.Context) error {
	svc, err := getService(ctx)
	if err != nil {
		return err
	}
	var data school.AttendanceSheet
	if err := h.bindJSON(ctx, &data, "AttendanceSheet"); err != nil {
		return err
	}

	if err := svc.SaveAttendanceSheet(ctx.Request().Context(), data); err != nil {
		return errors.Wrap(err, "saving attendance sheet")
	}
	return success(ctx)
}

// measurements answers the day's roster, or with mode=export every reading in [startDate, endDate].
func (h handlers) measurements(ctx echo.Context) error {
	svc, err := getService(ctx)
	if err != nil {
		return err
	}
	var query MeasurementQuery
	if err := h.bindQuery(ctx, &query, "MeasurementQuery"); err != nil {
		return err
	}

	if query.Mode == "export" {
		readings, err := svc.MeasurementsInRange(ctx.Request().Context(), query.ClassroomID, query.From, query.To)
		if err != nil {
			return errors.Wrap(err, "listing measurements")
		}
		return ctx.JSON(http.StatusOK, readings)
	}

	rows, err := svc.Measurements(ctx.Request().Context(), query.ClassroomID, query.Date)
	if err != nil {
		return errors.Wrap(err, "reading measurements")
	}
	return ctx.JSON(http.StatusOK, rows)
}

func (h handlers) recordMeasurement(ctx echo.Context) error {
	svc, err := getService(ctx)
	if err != nil {
		return err
	}
	var data school.NewMeasurement
	if err := h.bindJSON(ctx, &data, "NewMeasurement"); err != nil {
		return err
	}

	reading, err := svc.RecordMeasurement(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "recording measurement")
	}
	return ctx.JSON(http.StatusOK, reading)
}
