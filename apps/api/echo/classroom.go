package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/school"
)

func registerClassroomAPI(g *echo.Group, h handlers) {
	cg := g.Group("/classrooms")
	cg.GET("", h.listClassrooms)
	cg.POST("", h.createClassroom)
	cg.GET("/:id", h.retrieveClassroom)
	cg.PUT("/:id", h.updateClassroom)
	cg.DELETE("/:id", h.destroyClassroom)
}

func (h handlers) listClassrooms(ctx echo.Context) error {
	svc, err := getService(ctx)
	if err != nil {
		return err
	}
	classrooms, err := svc.ListClassrooms(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "listing classrooms")
	}
	if classrooms == nil {
		classrooms = []school.ClassroomSummary{}
	}
	return ctx.JSON(http.StatusOK, classrooms)
}

func (h handlers) createClassroom(ctx echo.Context) error {
	svc, err := getService(ctx)
	if err != nil {
		return err
	}
	var data school.NewClassroom
	if err := h.bindJSON(ctx, &data, "NewClassroom"); err != nil {
		return err
	}

	c, err := svc.CreateClassroom(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating classroom")
	}
	return ctx.JSON(http.StatusCreated, c)
}

func (h handlers) retrieveClassroom(ctx echo.Context) error {
	svc, err := getService(ctx)
	if err != nil {
		return err
	}
	id, err := pathID(ctx)
	if err != nil {
		return err
	}

	c, err := svc.GetClassroom(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "getting classroom")
	}
	return ctx.JSON(http.StatusOK, c)
}

// updateClassroom merges the sent fields; an unknown id is a no-op.
func (h handlers) updateClassroom(ctx echo.Context) error {
	svc, err := getService(ctx)
	if err != nil {
		return err
	}
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	var data school.ClassroomUpdate
	if err := h.bindJSON(ctx, &data, "ClassroomUpdate"); err != nil {
		return err
	}

	c, err := svc.UpdateClassroom(ctx.Request().Context(), id, data)
	if err != nil {
		if errors.Is(err, school.ErrNotFound) {
			return ctx.NoContent(http.StatusNoContent)
		}
		return errors.Wrap(err, "updating classroom")
	}
	return ctx.JSON(http.StatusOK, c)
}

// destroyClassroom deletes the classroom with its students and their records; an unknown id is a no-op.
func (h handlers) destroyClassroom(ctx echo.Context) error {
	svc, err := getService(ctx)
	if err != nil {
		return err
	}
	id, err := pathID(ctx)
	if err != nil {
		return err
	}

	if err := svc.DeleteClassroom(ctx.Request().Context(), id); err != nil && !errors.Is(err, school.ErrNotFound) {
		return errors.Wrap(err, "deleting classroom")
	}
	return ctx.NoContent(http.StatusNoContent)
}
