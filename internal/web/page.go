package web

import "github.com/gameshelf/gameshelf/internal/core/domain"

// Page is the view model every template receives.
type Page struct {
	Viewer   *domain.User
	User     *domain.User
	Form     map[string]string
	Error    string
	Username string
	Status   int
	Message  string
}
