package middleware

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/gameshelf/gameshelf/internal/core/domain"
)

type principalKey struct{}

// ContextWithPrincipal attaches the resolved user to ctx.
func ContextWithPrincipal(ctx context.Context, u *domain.User) context.Context {
	return context.WithValue(ctx, principalKey{}, u)
}

// PrincipalFromContext returns the user attached by the gate, or nil.
func PrincipalFromContext(ctx context.Context) *domain.User {
	u, _ := ctx.Value(principalKey{}).(*domain.User)
	return u
}

// Principal is PrincipalFromContext for an echo handler.
func Principal(c echo.Context) *domain.User {
	return PrincipalFromContext(c.Request().Context())
}
