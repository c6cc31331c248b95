package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/gameshelf/gameshelf/internal/api/cookies"
	"github.com/gameshelf/gameshelf/internal/core/domain"
	"github.com/gameshelf/gameshelf/internal/core/ports"
	"github.com/gameshelf/gameshelf/internal/web"
)

// ProfileHandler serves the current user's profile and public user pages.
type ProfileHandler struct {
	users ports.UserService
	jar   cookies.Jar
}

func NewProfileHandler(users ports.UserService, jar cookies.Jar) *ProfileHandler {
	return &ProfileHandler{users: users, jar: jar}
}

// Show handles GET /profile.
func (h *ProfileHandler) Show(c echo.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "profile", web.Page{Viewer: u, User: u})
}

// Public handles GET /users/:username.
func (h *ProfileHandler) Public(c echo.Context) error {
	viewer, err := currentUser(c)
	if err != nil {
		return err
	}
	u, err := h.users.GetProfile(c.Request().Context(), c.Param("username"))
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "user", web.Page{Viewer: viewer, User: u})
}

// EditPage handles GET /profile/edit.
func (h *ProfileHandler) EditPage(c echo.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "profile_edit", web.Page{Viewer: u, Form: profileValues(u)})
}

// Edit handles POST /profile/edit. Empty fields leave the stored value as is.
// A username change reissues both cookies for the new subject.
func (h *ProfileHandler) Edit(c echo.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}

	var form profileForm
	if err := c.Bind(&form); err != nil {
		return h.renderEdit(c, http.StatusBadRequest, u, form, "Invalid form submission.")
	}
	form.trim()
	if err := c.Validate(&form); err != nil {
		return h.renderEdit(c, http.StatusBadRequest, u, form, err.Error())
	}

	in, err := toUpdateProfileInput(form)
	if err != nil {
		return h.renderEdit(c, http.StatusBadRequest, u, form, err.Error())
	}

	res, err := h.users.UpdateProfile(c.Request().Context(), u.ID, in)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrEmailTaken):
		return h.renderEdit(c, http.StatusConflict, u, form, "This email is already registered.")
	case errors.Is(err, domain.ErrUsernameTaken), errors.Is(err, domain.ErrUserExists):
		return h.renderEdit(c, http.StatusConflict, u, form, "This username is already taken.")
	case errors.Is(err, domain.ErrPasswordTooShort), errors.Is(err, domain.ErrInvalidUsername):
		return h.renderEdit(c, http.StatusBadRequest, u, form, err.Error())
	default:
		return err
	}

	if res.Tokens != nil {
		cookies.Write(c.Response().Header(), h.jar.Pair(*res.Tokens))
	}
	return c.Redirect(http.StatusSeeOther, "/profile")
}

func (h *ProfileHandler) renderEdit(c echo.Context, status int, u *domain.User, form profileForm, msg string) error {
	return c.Render(status, "profile_edit", web.Page{Viewer: u, Error: msg, Form: form.values()})
}

func toUpdateProfileInput(f profileForm) (ports.UpdateProfileInput, error) {
	var in ports.UpdateProfileInput
	if f.Email != "" {
		in.Email = &f.Email
	}
	if f.Username != "" {
		in.Username = &f.Username
	}
	if f.FullName != "" {
		in.FullName = &f.FullName
	}
	if f.Password != "" {
		in.Password = &f.Password
	}
	if f.Birthday != "" {
		b, err := time.Parse(time.DateOnly, f.Birthday)
		if err != nil {
			return in, errors.New("birthday must be a date in YYYY-MM-DD format")
		}
		in.Birthday = &b
	}
	return in, nil
}

func profileValues(u *domain.User) map[string]string {
	v := map[string]string{"email": u.Email, "username": u.Username, "full_name": u.FullName}
	if u.Birthday != nil {
		v["birthday"] = u.Birthday.Format(time.DateOnly)
	}
	return v
}
