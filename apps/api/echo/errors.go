package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/school"
	"github.com/trezcool/darasa/services/spreadsheet"
)

var errHttpNotFound = echo.NewHTTPError(http.StatusNotFound, "not found")

// client errors answered with their own message
var (
	conflictErrors   = []error{school.ErrStudentIDExists}
	badRequestErrors = []error{
		school.ErrUnknownClassroom,
		school.ErrUnknownStudent,
		school.ErrInvalidSnapshot,
		sheetsvc.ErrNoRows,
		sheetsvc.ErrTooManyRows,
		sheetsvc.ErrBadHeader,
		sheetsvc.ErrUnreadable,
	}
)

func matchAny(err error, targets []error) error {
	for _, target := range targets {
		if errors.Is(err, target) {
			return target
		}
	}
	return nil
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// Server errors are logged with their detail and answered with a generic message.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		var vErrs validator.ValidationErrors
		var valErr *core.ValidationError
		var httpErr *echo.HTTPError

		switch {
		case errors.As(err, &httpErr):
			if herr, ok := httpErr.Internal.(*echo.HTTPError); ok {
				httpErr = herr
			}
			code = httpErr.Code
			message = httpErr.Message
		case errors.As(err, &vErrs):
			fldErrs := make(map[string]string, len(vErrs))
			for _, vErr := range vErrs {
				fldErrs[vErr.Field()] = vErr.Translate(translator)
			}
			code = http.StatusBadRequest
			message = fldErrs
		case errors.As(err, &valErr):
			if valErr.Fields != nil {
				fldErrs := make(map[string]string, len(valErr.Fields))
				for _, fErr := range valErr.Fields {
					fldErrs[fErr.Field] = fErr.Error
				}
				message = fldErrs
			} else {
				message = valErr.Error()
			}
			code = http.StatusBadRequest
		case errors.Is(err, school.ErrNotFound):
			code = errHttpNotFound.Code
			message = errHttpNotFound.Message
		case matchAny(err, conflictErrors) != nil:
			code = http.StatusConflict
			message = matchAny(err, conflictErrors).Error()
		case matchAny(err, badRequestErrors) != nil:
			code = http.StatusBadRequest
			message = matchAny(err, badRequestErrors).Error()
		default: // any other error is a server error
			code = http.StatusInternalServerError
			msg := http.StatusText(http.StatusInternalServerError)
			message = msg
			logger.Error(msg, errors.Wrap(err, msg), ctx.Request())
		}

		if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
