package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/tkabila/chekechea/core"
	"github.com/tkabila/chekechea/core/billing"
)

var invoiceOrderingFields = []string{"year", "month", "total_amount", "status", "created_at"}

type billingApi struct {
	svc billing.ServiceInterface
}

func registerBillingAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc billing.ServiceInterface) {
	api := billingApi{svc: svc}

	bg := g.Group("/billing", jwt, adminMiddleware())
	bg.POST("/generate/:year/:month", api.generate)
	bg.GET("/invoices", api.query)
	bg.GET("/invoices/:id", api.retrieve)
	bg.PATCH("/invoices/:id/pay", api.markPaid)
}

// Handlers

func (api *billingApi) generate(ctx echo.Context) error {
	year, err := strconv.Atoi(ctx.Param("year"))
	if err != nil {
		return core.NewValidationError(nil, core.FieldError{Field: "year", Error: "must be a number"})
	}
	month, err := strconv.Atoi(ctx.Param("month"))
	if err != nil {
		return core.NewValidationError(nil, core.FieldError{Field: "month", Error: "must be a number"})
	}

	run, err := api.svc.GenerateMonthlyInvoices(ctx.Request().Context(), year, month)
	if err != nil {
		return errors.Wrap(err, "generating invoices")
	}
	return jsonMessage(ctx, http.StatusOK, run, "invoices generated")
}

func (api *billingApi) query(ctx echo.Context) error {
	filter := new(billing.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return jsonData(ctx, http.StatusOK, []billing.Invoice{})
	}
	filter.Clean()
	ordering := new(Ordering)
	ordering.Bind(ctx, invoiceOrderingFields...)

	invoices, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying invoices")
	}
	if invoices == nil {
		invoices = []billing.Invoice{}
	}
	return jsonData(ctx, http.StatusOK, invoices)
}

func (api *billingApi) retrieve(ctx echo.Context) error {
	inv, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == billing.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding invoice by ID")
	}
	return jsonData(ctx, http.StatusOK, inv)
}

func (api *billingApi) markPaid(ctx echo.Context) error {
	inv, err := api.svc.MarkPaid(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == billing.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "marking invoice paid")
	}
	return jsonMessage(ctx, http.StatusOK, inv, "invoice marked as paid")
}
