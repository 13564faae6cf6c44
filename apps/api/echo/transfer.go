package echoapi

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/school"
	"github.com/trezcool/darasa/services/spreadsheet"
)

func registerTransferAPI(g *echo.Group, h handlers) {
	g.GET("/settings", h.exportSnapshot)
	g.POST("/settings", h.importSnapshot)
	g.DELETE("/settings", h.clear)
	g.GET("/search", h.search)
	g.GET("/export", h.report)
}

func (h handlers) exportSnapshot(ctx echo.Context) error {
	svc, err := getService(ctx)
	if err != nil {
		return err
	}
	snap, err := svc.Export(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "exporting snapshot")
	}
	return ctx.JSON(http.StatusOK, snap)
}

// importSnapshot replaces every collection present in the body, all or nothing.
func (h handlers) importSnapshot(ctx echo.Context) error {
	svc, err := getService(ctx)
	if err != nil {
		return err
	}
	var snap school.Snapshot
	if err := (&echo.DefaultBinder{}).BindBody(ctx, &snap); err != nil {
		return errors.Wrap(err, "binding to Snapshot")
	}
	if snap.IsEmpty() {
		return core.NewValidationError(errors.New("snapshot has no collections"))
	}

	if err := svc.Import(ctx.Request().Context(), snap); err != nil {
		return errors.Wrap(err, "importing snapshot")
	}
	h.logger.Info("snapshot imported", ctx.Request())
	return success(ctx)
}

func (h handlers) clear(ctx echo.Context) error {
	svc, err := getService(ctx)
	if err != nil {
		return err
	}
	if err := svc.Clear(ctx.Request().Context()); err != nil {
		return errors.Wrap(err, "clearing store")
	}
	h.logger.Warn("store cleared", ctx.Request())
	return success(ctx)
}

type SearchQuery struct {
	Query string `query:"q"`
}

func (h handlers) search(ctx echo.Context) error {
	svc, err := getService(ctx)
	if err != nil {
		return err
	}
	var query SearchQuery
	if err := (&echo.DefaultBinder{}).BindQueryParams(ctx, &query); err != nil {
		return errors.Wrap(err, "binding to SearchQuery")
	}

	res, err := svc.Search(ctx.Request().Context(), query.Query)
	if err != nil {
		return errors.Wrap(err, "searching")
	}
	return ctx.JSON(http.StatusOK, res)
}

type ReportQuery struct {
	school.ReportFilter
	Format string `query:"format" validate:"omitempty,oneof=json xlsx"`
}

func (rq *ReportQuery) Validate(validate *validator.Validate) error {
	rq.Format = core.CleanString(rq.Format, true)
	if err := rq.ReportFilter.Validate(validate); err != nil {
		return err
	}
	return validate.Struct(rq)
}

// report answers a classroom's range report as JSON, or as a workbook with format=xlsx.
func (h handlers) report(ctx echo.Context) error {
	svc, err := getService(ctx)
	if err != nil {
		return err
	}
	var query ReportQuery
	if err := h.bindQuery(ctx, &query, "ReportQuery"); err != nil {
		return err
	}

	report, err := svc.Report(ctx.Request().Context(), query.ReportFilter)
	if err != nil {
		return errors.Wrap(err, "building report")
	}
	if query.Format != "xlsx" {
		return ctx.JSON(http.StatusOK, report)
	}

	buf := new(bytes.Buffer)
	if err := sheetsvc.WriteAttendanceReport(buf, report); err != nil {
		return errors.Wrap(err, "writing report")
	}
	name := fmt.Sprintf("report_%d_%s_%s.xlsx", report.Classroom.ID, report.From, report.To)
	return attachment(ctx, name, buf)
}
