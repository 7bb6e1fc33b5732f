package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// evaluatorMiddleware restricts an endpoint to evaluators (or admins) holding
// any of the given roles.
func evaluatorMiddleware(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if (claims.IsEvaluator || claims.IsAdmin) && contextHasAnyRole(ctx, roles) {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}
