// Package cookies builds and reads the two session cookies.
package cookies

import (
	"net/http"
	"strings"
	"time"

	"github.com/gameshelf/gameshelf/internal/core/ports"
)

const (
	AccessName  = "access_token"
	RefreshName = "refresh_token"
)

// Jar creates session cookies with a fixed attribute set: HttpOnly,
// SameSite=Lax, Path=/ and Secure when configured. Max-ages follow the
// token lifetimes.
type Jar struct {
	secure     bool
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewJar(secure bool, accessTTL, refreshTTL time.Duration) Jar {
	return Jar{secure: secure, accessTTL: accessTTL, refreshTTL: refreshTTL}
}

func (j Jar) Access(token string) *http.Cookie {
	return j.cookie(AccessName, token, int(j.accessTTL/time.Second))
}

func (j Jar) Refresh(token string) *http.Cookie {
	return j.cookie(RefreshName, token, int(j.refreshTTL/time.Second))
}

// Pair returns both cookies for a freshly issued token pair.
func (j Jar) Pair(tokens ports.TokenPair) []*http.Cookie {
	return []*http.Cookie{j.Access(tokens.AccessToken), j.Refresh(tokens.RefreshToken)}
}

// Clear returns expired versions of both cookies.
func (j Jar) Clear() []*http.Cookie {
	return []*http.Cookie{j.cookie(AccessName, "", -1), j.cookie(RefreshName, "", -1)}
}

// Write appends Set-Cookie headers for every cookie to h.
func Write(h http.Header, cs []*http.Cookie) {
	for _, c := range cs {
		if v := c.String(); v != "" {
			h.Add("Set-Cookie", v)
		}
	}
}

// Present reports whether h already sets a session cookie.
func Present(h http.Header) bool {
	for _, v := range h.Values("Set-Cookie") {
		if strings.HasPrefix(v, AccessName+"=") || strings.HasPrefix(v, RefreshName+"=") {
			return true
		}
	}
	return false
}

// Read returns the access and refresh token values; missing cookies are "".
func Read(r *http.Request) (access, refresh string) {
	if c, err := r.Cookie(AccessName); err == nil {
		access = c.Value
	}
	if c, err := r.Cookie(RefreshName); err == nil {
		refresh = c.Value
	}
	return access, refresh
}

func (j Jar) cookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   j.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
