package echoapi

import (
	"github.com/labstack/echo/v4"

	"github.com/trezcool/masomo/core/user"
)

// roleMiddleware lets through users having one of roles. Admins always pass.
func roleMiddleware(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return err
			}
			if claims.HasRole(user.RoleAdmin) || claims.HasRole(roles...) {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}

func adminMiddleware() echo.MiddlewareFunc {
	return roleMiddleware(user.RoleAdmin)
}

func mentorMiddleware() echo.MiddlewareFunc {
	return roleMiddleware(user.RoleMentor)
}
