package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/tkabila/chekechea/core/child"
)

var errChildNotFoundInCtx = errors.New("child object not found in echo.Context")

var childOrderingFields = []string{"name", "enrollment_date", "status", "created_at"}

type childApi struct {
	svc      child.ServiceInterface
	validate *validator.Validate
}

func registerChildAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc child.ServiceInterface, validate *validator.Validate) {
	api := childApi{svc: svc, validate: validate}

	cg := g.Group("/children", jwt)
	cg.POST("", api.create, roleMiddleware(RoleAdmin, RoleParent))
	cg.GET("", api.query)

	// detail endpoints
	dg := cg.Group("/:id", childObjectMiddleware(api.svc))
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy, adminMiddleware())
	dg.PATCH("/caregiver", api.assignCaregiver, adminMiddleware())
}

// Handlers

func (api *childApi) create(ctx echo.Context) error {
	var data child.NewChild
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewChild")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	// parents always register under their own account
	parentID := claims.Subject
	if claims.IsAdmin() && data.ParentID != "" {
		parentID = data.ParentID
	}

	ch, err := api.svc.Create(ctx.Request().Context(), data, parentID)
	if err != nil {
		return errors.Wrap(err, "creating child")
	}
	return jsonMessage(ctx, http.StatusCreated, ch, "child registered")
}

func (api *childApi) query(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	filter := new(child.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return jsonData(ctx, http.StatusOK, []child.Child{})
	}
	filter.Clean()
	if claims.IsParent() {
		// parents only ever see their own children
		filter.ParentID = claims.Subject
	}

	ordering := new(Ordering)
	ordering.Bind(ctx, childOrderingFields...)

	children, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying children")
	}
	if children == nil {
		children = []child.Child{}
	}
	return jsonData(ctx, http.StatusOK, children)
}

func (api *childApi) retrieve(ctx echo.Context) error {
	ch, ok := ctx.Get("object").(child.Child)
	if !ok {
		return errors.Wrap(errChildNotFoundInCtx, "retrieving object from context")
	}
	return jsonData(ctx, http.StatusOK, ch)
}

func (api *childApi) update(ctx echo.Context) error {
	ch, ok := ctx.Get("object").(child.Child)
	if !ok {
		return errors.Wrap(errChildNotFoundInCtx, "retrieving object from context")
	}

	var data child.UpdateChild
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateChild")
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	if !claims.IsAdmin() {
		// `Status` and `BaseDailyFee` can only be changed by admin
		if data.Status != "" || data.BaseDailyFee != nil {
			return errHttpForbidden
		}
	}

	if err := data.Validate(ch, api.validate); err != nil {
		return err
	}

	ch, err = api.svc.Update(ctx.Request().Context(), ch, data)
	if err != nil {
		return errors.Wrap(err, "updating child")
	}
	return jsonMessage(ctx, http.StatusOK, ch, "child updated")
}

func (api *childApi) destroy(ctx echo.Context) error {
	ch, ok := ctx.Get("object").(child.Child)
	if !ok {
		return errors.Wrap(errChildNotFoundInCtx, "retrieving object from context")
	}
	if err := api.svc.Delete(ctx.Request().Context(), ch.ID); err != nil {
		return errors.Wrap(err, "deleting child")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *childApi) assignCaregiver(ctx echo.Context) error {
	ch, ok := ctx.Get("object").(child.Child)
	if !ok {
		return errors.Wrap(errChildNotFoundInCtx, "retrieving object from context")
	}

	var data AssignCaregiverRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AssignCaregiverRequest")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	ch, err := api.svc.AssignCaregiver(ctx.Request().Context(), ch, data.CaregiverID)
	if err != nil {
		return errors.Wrap(err, "assigning caregiver")
	}
	return jsonMessage(ctx, http.StatusOK, ch, "caregiver assigned")
}

type AssignCaregiverRequest struct {
	CaregiverID string `json:"caregiver_id" validate:"omitempty,uuid4"`
}
