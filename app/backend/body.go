package backend

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TokenFields are the login response fields checked for a session token, in order.
var TokenFields = []string{"token", "access_token"}

// User is the current user as reported by the backend.
type User struct {
	ID      string
	Email   string
	Name    string
	Role    string
	Company string
}

// DisplayName returns the name, falling back to email.
func (u User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

// SessionToken extracts the session token and its lifetime from a decoded login response.
// The token is looked up at the top level first, then inside "data".
func SessionToken(body any) (token string, ttl time.Duration) {
	m, ok := body.(map[string]any)
	if !ok {
		return "", 0
	}
	data, _ := m["data"].(map[string]any)
	for _, obj := range []map[string]any{m, data} {
		if obj == nil {
			continue
		}
		for _, field := range TokenFields {
			if s, ok := obj[field].(string); ok && s != "" {
				return s, expiresIn(obj, m)
			}
		}
	}
	return "", 0
}

// expiresIn looks for expires_in (seconds) in the given objects.
func expiresIn(objs ...map[string]any) time.Duration {
	for _, obj := range objs {
		switch v := obj["expires_in"].(type) {
		case float64:
			if v > 0 {
				return time.Duration(v) * time.Second
			}
		case string:
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				return time.Duration(n) * time.Second
			}
		}
	}
	return 0
}

// UserFromBody extracts the user from a decoded current-user response.
// Accepts a bare user object or one wrapped in "data" and/or "user".
func UserFromBody(body any) (User, bool) {
	m, ok := body.(map[string]any)
	if !ok {
		return User{}, false
	}
	for _, key := range []string{"data", "user"} {
		if inner, ok := m[key].(map[string]any); ok {
			m = inner
		}
	}

	u := User{
		ID:    scalar(m["id"]),
		Email: scalar(m["email"]),
		Role:  scalar(m["role"]),
	}
	switch {
	case scalar(m["name"]) != "":
		u.Name = scalar(m["name"])
	case scalar(m["full_name"]) != "":
		u.Name = scalar(m["full_name"])
	default:
		u.Name = strings.TrimSpace(scalar(m["first_name"]) + " " + scalar(m["last_name"]))
	}
	switch c := m["company"].(type) {
	case map[string]any:
		u.Company = scalar(c["name"])
	default:
		u.Company = scalar(c)
	}
	if u.Company == "" {
		u.Company = scalar(m["company_name"])
	}

	if u.ID == "" && u.Email == "" && u.Name == "" {
		return User{}, false
	}
	return u, true
}

// ErrorMessage extracts a human-readable message from a decoded error body.
// Checks message, detail, error and the first validation item; returns empty string if none found.
func ErrorMessage(body any) string {
	switch v := body.(type) {
	case string:
		return v
	case map[string]any:
		for _, key := range []string{"message", "detail", "error"} {
			if s, ok := v[key].(string); ok && s != "" {
				return s
			}
		}
		// validation errors, e.g. {"detail": [{"loc": [...], "msg": "field required"}]}
		for _, key := range []string{"detail", "errors"} {
			if items, ok := v[key].([]any); ok && len(items) > 0 {
				if msg := itemMessage(items[0]); msg != "" {
					return msg
				}
			}
		}
	}
	return ""
}

// itemMessage returns the message of a single validation item.
func itemMessage(item any) string {
	switch it := item.(type) {
	case string:
		return it
	case map[string]any:
		for _, key := range []string{"msg", "message"} {
			if s, ok := it[key].(string); ok && s != "" {
				if loc, ok := it["loc"].([]any); ok && len(loc) > 0 {
					return fmt.Sprintf("%s: %s", scalar(loc[len(loc)-1]), s)
				}
				return s
			}
		}
	}
	return ""
}

// StatusFlag normalizes a backend "status" field to a bool.
// The second return is false if the value is not recognized.
func StatusFlag(v any) (ok, known bool) {
	switch s := v.(type) {
	case bool:
		return s, true
	case string:
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "success", "ok", "true", "succeeded":
			return true, true
		case "error", "fail", "failed", "failure", "false":
			return false, true
		}
	}
	return false, false
}

// scalar formats a decoded JSON scalar as a string.
func scalar(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(s)
	}
	return ""
}
