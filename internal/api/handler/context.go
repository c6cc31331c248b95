package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/gameshelf/gameshelf/internal/api/middleware"
	"github.com/gameshelf/gameshelf/internal/core/domain"
)

// currentUser returns the principal the gate attached. Its absence on a
// protected route means the gate did not run; answer 401 so the gate's
// rewrite sends the client to the login page.
func currentUser(c echo.Context) (*domain.User, error) {
	u := middleware.Principal(c)
	if u == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	return u, nil
}
