package echoapi

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/tkabila/chekechea/core"
	"github.com/tkabila/chekechea/core/attendance"
	"github.com/tkabila/chekechea/core/child"
)

const dateParamLayout = "2006-01-02"

type attendanceApi struct {
	svc      attendance.ServiceInterface
	validate *validator.Validate
}

func registerAttendanceAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc attendance.ServiceInterface,
	childSvc child.ServiceInterface,
	validate *validator.Validate,
) {
	api := attendanceApi{svc: svc, validate: validate}

	ag := g.Group("/attendance", jwt)
	ag.POST("/check-in", api.checkIn, staffMiddleware())
	ag.POST("/check-out", api.checkOut, staffMiddleware())
	ag.GET("/today", api.today, staffMiddleware())

	// per-child endpoints; a child's parent may consult these too
	ag.GET("/status/:id", api.status, childObjectMiddleware(childSvc, RoleStaff))
	ag.GET("/child/:id", api.listForChild, childObjectMiddleware(childSvc, RoleStaff))
}

// Handlers

func (api *attendanceApi) checkIn(ctx echo.Context) error {
	var data attendance.CheckIn
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to CheckIn")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	rec, err := api.svc.CheckIn(ctx.Request().Context(), data.ChildID)
	if err != nil {
		switch errors.Cause(err) {
		case child.ErrNotFound:
			return errHttpNotFound
		case attendance.ErrDuplicateCheckIn:
			return errDuplicateCheckIn
		}
		return errors.Wrap(err, "checking in")
	}
	return jsonMessage(ctx, http.StatusCreated, rec, "checked in")
}

func (api *attendanceApi) checkOut(ctx echo.Context) error {
	var data attendance.CheckOut
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to CheckOut")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	rec, err := api.svc.CheckOut(ctx.Request().Context(), data)
	if err != nil {
		switch errors.Cause(err) {
		case child.ErrNotFound, attendance.ErrNotFound:
			return errHttpNotFound
		case attendance.ErrNoOpenCheckIn:
			return errNoOpenCheckIn
		}
		return errors.Wrap(err, "checking out")
	}
	return jsonMessage(ctx, http.StatusOK, rec, "checked out")
}

// today lists the day's records; an optional ?date=YYYY-MM-DD looks at
// another day instead.
func (api *attendanceApi) today(ctx echo.Context) error {
	day := core.NowFunc()
	if raw := ctx.QueryParam("date"); raw != "" {
		parsed, err := time.ParseInLocation(dateParamLayout, raw, time.Local)
		if err != nil {
			return core.NewValidationError(nil, core.FieldError{Field: "date", Error: "must be a YYYY-MM-DD date"})
		}
		day = parsed
	}

	records, err := api.svc.ListForDay(ctx.Request().Context(), day)
	if err != nil {
		return errors.Wrap(err, "listing day attendance")
	}
	if records == nil {
		records = []attendance.Record{}
	}
	return jsonData(ctx, http.StatusOK, records)
}

func (api *attendanceApi) status(ctx echo.Context) error {
	ch, ok := ctx.Get("object").(child.Child)
	if !ok {
		return errors.Wrap(errChildNotFoundInCtx, "retrieving object from context")
	}

	status, err := api.svc.Status(ctx.Request().Context(), ch.ID)
	if err != nil {
		return errors.Wrap(err, "getting attendance status")
	}
	return jsonData(ctx, http.StatusOK, status)
}

// listForChild returns a child's history, optionally bounded by inclusive
// ?start and ?end dates.
func (api *attendanceApi) listForChild(ctx echo.Context) error {
	ch, ok := ctx.Get("object").(child.Child)
	if !ok {
		return errors.Wrap(errChildNotFoundInCtx, "retrieving object from context")
	}

	var start, end time.Time
	if raw := ctx.QueryParam("start"); raw != "" {
		parsed, err := time.ParseInLocation(dateParamLayout, raw, time.Local)
		if err != nil {
			return core.NewValidationError(nil, core.FieldError{Field: "start", Error: "must be a YYYY-MM-DD date"})
		}
		start = parsed
	}
	if raw := ctx.QueryParam("end"); raw != "" {
		parsed, err := time.ParseInLocation(dateParamLayout, raw, time.Local)
		if err != nil {
			return core.NewValidationError(nil, core.FieldError{Field: "end", Error: "must be a YYYY-MM-DD date"})
		}
		end = parsed
	}

	records, err := api.svc.ListForChild(ctx.Request().Context(), ch.ID, start, end)
	if err != nil {
		return errors.Wrap(err, "listing child attendance")
	}
	if records == nil {
		records = []attendance.Record{}
	}
	return jsonData(ctx, http.StatusOK, records)
}
