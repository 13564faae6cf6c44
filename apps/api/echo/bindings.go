package echoapi

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
)

type validatable interface {
	Validate(*validator.Validate) error
}

// bindJSON binds the request body into data and validates it.
func (h handlers) bindJSON(ctx echo.Context, data validatable, name string) error {
	if err := (&echo.DefaultBinder{}).BindBody(ctx, data); err != nil {
		return errors.Wrap(err, "binding to "+name)
	}
	return data.Validate(h.validate)
}

// bindQuery binds the query string into data and validates it.
func (h handlers) bindQuery(ctx echo.Context, data validatable, name string) error {
	if err := (&echo.DefaultBinder{}).BindQueryParams(ctx, data); err != nil {
		return errors.Wrap(err, "binding to "+name)
	}
	return data.Validate(h.validate)
}

// pathID reads the `:id` path parameter.
func pathID(ctx echo.Context) (int, error) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil || id < 1 {
		return 0, core.NewValidationError(nil, core.FieldError{Field: "id", Error: "must be a positive integer"})
	}
	return id, nil
}

type SuccessResponse struct {
	Success bool `json:"success"`
}

func success(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: true})
}
