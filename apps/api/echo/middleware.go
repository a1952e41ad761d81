package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/tkabila/chekechea/core/child"
)

func roleMiddleware(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			for _, role := range roles {
				if claims.Role == role {
					return next(ctx)
				}
			}
			return errHttpForbidden
		}
	}
}

func adminMiddleware() echo.MiddlewareFunc {
	return roleMiddleware(RoleAdmin)
}

func staffMiddleware() echo.MiddlewareFunc {
	return roleMiddleware(RoleAdmin, RoleStaff)
}

// childObjectMiddleware loads the child referenced by the :id param into the
// context under "object". Admins and the child's own parent always pass;
// extraRoles widens access (e.g. staff for attendance endpoints). Anything
// else gets a 404 so outsiders cannot probe for existing IDs.
func childObjectMiddleware(svc child.ServiceInterface, extraRoles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}

			ch, err := svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
			if err != nil {
				if errors.Cause(err) == child.ErrNotFound {
					return errHttpNotFound
				}
				return errors.Wrap(err, "finding child by ID")
			}

			allowed := claims.IsAdmin() || (claims.IsParent() && ch.ParentID == claims.Subject)
			for _, role := range extraRoles {
				allowed = allowed || claims.Role == role
			}
			if !allowed {
				return errHttpNotFound
			}

			ctx.Set("object", ch)
			return next(ctx)
		}
	}
}
