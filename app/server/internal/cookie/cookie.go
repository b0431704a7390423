// Package cookie handles the session_token cookie shared by pages and proxy routes.
package cookie

import (
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Name is the session cookie name. It carries the backend bearer token, URL-encoded.
const Name = "session_token"

// Settings control how the session cookie is written.
type Settings struct {
	Secure bool          // set Secure flag, enable in production (HTTPS)
	TTL    time.Duration // default lifetime when backend does not report expiration
}

// Token returns the URL-decoded session token from the request, empty if missing.
// A value that fails to decode is returned as is.
func Token(r *http.Request) string {
	c, err := r.Cookie(Name)
	if err != nil {
		return ""
	}
	value := strings.TrimSpace(c.Value)
	if value == "" {
		return ""
	}
	decoded, err := url.PathUnescape(value)
	if err != nil {
		return value
	}
	return decoded
}

// Present reports whether the request carries a non-empty session cookie.
func Present(r *http.Request) bool {
	return Token(r) != ""
}

// Set writes the session cookie. ttl overrides the default lifetime when positive.
func (s Settings) Set(w http.ResponseWriter, token string, ttl time.Duration) {
	if ttl <= 0 {
		ttl = s.TTL
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	http.SetCookie(w, &http.Cookie{
		Name:     Name,
		Value:    url.PathEscape(token),
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		Expires:  time.Now().Add(ttl),
		HttpOnly: true,
		Secure:   s.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Clear overwrites the session cookie with an expired one.
func (s Settings) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   s.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Mask returns a masked version of token for safe logging (shows first 4 chars).
func Mask(token string) string {
	if len(token) <= 4 {
		return "****"
	}
	return token[:4] + "****"
}
