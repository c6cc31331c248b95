package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RequireSuperuser lets only superusers through. A missing principal is a
// 401, which the gate turns into a login redirect.
func RequireSuperuser() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			u := Principal(c)
			if u == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}
			if !u.IsSuperuser {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
