package handler

import "strings"

// Form payloads for the server-rendered pages.

type loginForm struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
}

type registerForm struct {
	Email    string `form:"email"     validate:"required,email,max=100"`
	Username string `form:"username"  validate:"required,min=6,max=50"`
	FullName string `form:"full_name" validate:"max=100"`
	Password string `form:"password"  validate:"required,min=8,max=30"`
}

// trim drops surrounding whitespace so length rules apply to what gets stored.
// The password is kept as typed.
func (f *registerForm) trim() {
	f.Email = strings.TrimSpace(f.Email)
	f.Username = strings.TrimSpace(f.Username)
	f.FullName = strings.TrimSpace(f.FullName)
}

// values echoes the submitted fields back into the form, never the password.
func (f registerForm) values() map[string]string {
	return map[string]string{"email": f.Email, "username": f.Username, "full_name": f.FullName}
}

type profileForm struct {
	Email    string `form:"email"     validate:"omitempty,email,max=100"`
	Username string `form:"username"  validate:"omitempty,min=6,max=50"`
	FullName string `form:"full_name" validate:"omitempty,max=100"`
	Birthday string `form:"birthday"  validate:"omitempty,datetime=2006-01-02"`
	Password string `form:"password"  validate:"omitempty,min=8,max=30"`
}

func (f *profileForm) trim() {
	f.Email = strings.TrimSpace(f.Email)
	f.Username = strings.TrimSpace(f.Username)
	f.FullName = strings.TrimSpace(f.FullName)
	f.Birthday = strings.TrimSpace(f.Birthday)
}

func (f profileForm) values() map[string]string {
	return map[string]string{
		"email":     f.Email,
		"username":  f.Username,
		"full_name": f.FullName,
		"birthday":  f.Birthday,
	}
}
