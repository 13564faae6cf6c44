package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/school"
)

func registerScheduleAPI(g *echo.Group, h handlers) {
	g.GET("/schedule", h.schedule)
	g.POST("/schedule", h.saveSchedule)
	g.GET("/subjects", h.subjects)
}

type ClassroomQuery struct {
	ClassroomID int `query:"classroom" validate:"required,min=1"`
}

func (cq *ClassroomQuery) Validate(validate *validator.Validate) error {
	return validate.Struct(cq)
}

func (h handlers) schedule(ctx echo.Context) error {
	svc, err := getService(ctx)
	if err != nil {
		return err
	}
	var query ClassroomQuery
	if err := h.bindQuery(ctx, &query, "ClassroomQuery"); err != nil {
		return err
	}

	slots, err := svc.Schedule(ctx.Request().Context(), query.ClassroomID)
	if err != nil {
		return errors.Wrap(err, "listing schedule")
	}
	if slots == nil {
		slots = []school.ScheduleSlot{}
	}
	return ctx.JSON(http.StatusOK, slots)
}

func (h handlers) saveSchedule(ctx echo.Context) error {
	svc, err := getService(ctx)
	if err != nil {
		return err
	}
	var data school.ScheduleSheet
	if err := h.bindJSON(ctx, &data, "ScheduleSheet"); err != nil {
		return err
	}

	saved, err := svc.SaveSchedule(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "saving schedule")
	}
	return ctx.JSON(http.StatusOK, SavedResponse{Success: true, Saved: saved})
}

func (h handlers) subjects(ctx echo.Context) error {
	svc, err := getService(ctx)
	if err != nil {
		return err
	}
	subjects, err := svc.Subjects(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "listing subjects")
	}
	return ctx.JSON(http.StatusOK, subjects)
}
