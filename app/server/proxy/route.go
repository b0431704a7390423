package proxy

import (
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/kycdash/screengate/app/enum"
)

// PathPrefix is the inbound path prefix served by the proxy.
const PathPrefix = "/api/"

// paramRe matches {name} and {name...} wildcards in path templates.
var paramRe = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*)(\.\.\.)?\}`)

// filenameRe matches characters not allowed in synthesized attachment filenames.
var filenameRe = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// Route is a single proxied endpoint: an inbound pattern mapped to a backend path.
type Route struct {
	Name     string
	Method   string
	Path     string // inbound pattern, e.g. /api/products/{id}
	Backend  string // backend path template, e.g. /products/{id}
	Auth     bool   // session token required
	Body     enum.BodyKind
	Timeout  time.Duration // zero means proxy default
	Filename string        // attachment filename template for binary responses
	Cache    bool          // cache successful responses, public GET only
	Session  enum.SessionAction
}

// Pattern returns the ServeMux pattern of the route.
func (rt Route) Pattern() string {
	return rt.Method + " " + rt.Path
}

// BackendPath expands the backend template with path values of the matched request.
// Values are path-escaped, {name...} values are escaped per segment.
func (rt Route) BackendPath(r *http.Request) string {
	return paramRe.ReplaceAllStringFunc(rt.Backend, func(m string) string {
		sub := paramRe.FindStringSubmatch(m)
		val := r.PathValue(sub[1])
		if sub[2] == "" {
			return url.PathEscape(val)
		}
		segments := strings.Split(val, "/")
		for i, s := range segments {
			segments[i] = url.PathEscape(s)
		}
		return strings.Join(segments, "/")
	})
}

// AttachmentName expands the filename template with path values, keeping only safe characters.
func (rt Route) AttachmentName(r *http.Request, fallback string) string {
	if rt.Filename == "" {
		return fallback
	}
	name := paramRe.ReplaceAllStringFunc(rt.Filename, func(m string) string {
		return r.PathValue(paramRe.FindStringSubmatch(m)[1])
	})
	name = filenameRe.ReplaceAllString(name, "_")
	if strings.Trim(name, "._") == "" {
		return fallback
	}
	return name
}

// validate checks a single route for consistency.
func (rt Route) validate() error {
	if rt.Name == "" {
		return fmt.Errorf("route %s has no name", rt.Pattern())
	}
	switch rt.Method {
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
	default:
		return fmt.Errorf("route %q: unsupported method %q", rt.Name, rt.Method)
	}
	if !strings.HasPrefix(rt.Path, PathPrefix) {
		return fmt.Errorf("route %q: path %q must start with %s", rt.Name, rt.Path, PathPrefix)
	}
	if !strings.HasPrefix(rt.Backend, "/") {
		return fmt.Errorf("route %q: backend path %q must start with /", rt.Name, rt.Backend)
	}

	inbound := map[string]bool{}
	for _, m := range paramRe.FindAllStringSubmatch(rt.Path, -1) {
		inbound[m[1]] = true
	}
	for _, tmpl := range []string{rt.Backend, rt.Filename} {
		for _, m := range paramRe.FindAllStringSubmatch(tmpl, -1) {
			if !inbound[m[1]] {
				return fmt.Errorf("route %q: parameter {%s} is not defined in path %q", rt.Name, m[1], rt.Path)
			}
		}
	}

	if rt.Timeout < 0 {
		return fmt.Errorf("route %q: negative timeout", rt.Name)
	}
	if rt.Cache && (rt.Method != http.MethodGet || rt.Auth || rt.Session.IsSet()) {
		return fmt.Errorf("route %q: cache is allowed only on public GET routes", rt.Name)
	}
	if rt.Session == enum.SessionActionLogin && (rt.Method != http.MethodPost || rt.Auth) {
		return fmt.Errorf("route %q: login route must be a public POST", rt.Name)
	}
	return nil
}
