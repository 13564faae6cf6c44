package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/school"
)

// BackendHeader tells the client which backend answered.
const BackendHeader = "X-Backend"

const serviceKey = "service"

var errNoServiceInCtx = errors.New("service not found in echo.Context")

// backendMiddleware picks the backend once per request and stores its Service in the context.
func backendMiddleware(backends school.Backends, desktopMode bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			kind := school.SelectBackend(desktopMode, ctx.Request().Header.Get(school.DesktopHeader))
			ctx.Set(serviceKey, backends.Service(kind))
			ctx.Response().Header().Set(BackendHeader, kind.String())
			return next(ctx)
		}
	}
}

func getService(ctx echo.Context) (*school.Service, error) {
	svc, ok := ctx.Get(serviceKey).(*school.Service)
	if !ok || svc == nil {
		return nil, errNoServiceInCtx
	}
	return svc, nil
}
