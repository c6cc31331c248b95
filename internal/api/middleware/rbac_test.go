package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gameshelf/gameshelf/internal/core/domain"
)

func runRequireSuperuser(t *testing.T, u *domain.User) (*httptest.ResponseRecorder, bool, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/games", nil)
	if u != nil {
		req = req.WithContext(ContextWithPrincipal(req.Context(), u))
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	err := RequireSuperuser()(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})(c)
	return rec, called, err
}

func TestRequireSuperuser_Allows(t *testing.T) {
	rec, called, err := runRequireSuperuser(t, &domain.User{Username: "admin_user", IsSuperuser: true})
	require.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireSuperuser_ForbidsRegularUser(t *testing.T) {
	rec, called, err := runRequireSuperuser(t, &domain.User{Username: "player_one"})
	require.NoError(t, err)
	assert.False(t, called)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireSuperuser_MissingPrincipal(t *testing.T) {
	_, called, err := runRequireSuperuser(t, nil)
	assert.False(t, called)

	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusUnauthorized, he.Code)
}
