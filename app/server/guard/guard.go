// Package guard gates page navigation by the presence of the session cookie.
//
// The guard never validates the token itself: an expired or revoked token still counts
// as authenticated here, the backend rejects it later and pages handle the 401.
package guard

import (
	"net/http"
	"strings"

	log "github.com/go-pkgz/lgr"

	"github.com/kycdash/screengate/app/server/internal/cookie"
)

// Decision is the guard verdict for a request.
type Decision int

// guard decisions
const (
	Pass Decision = iota
	RedirectLogin
	RedirectLanding
)

// String returns the decision name.
func (d Decision) String() string {
	switch d {
	case RedirectLogin:
		return "login"
	case RedirectLanding:
		return "landing"
	default:
		return "pass"
	}
}

// Recorder receives guard redirects, used for metrics.
type Recorder interface {
	GuardRedirect(target string)
}

// Config is the guard routing table.
type Config struct {
	ProtectedPrefix string // paths at or under this prefix need a session, e.g. /dashboard
	LoginPath       string // auth-only page, e.g. /login
	LandingPath     string // where authenticated visitors of LoginPath are sent
}

// Guard is the edge request gate.
type Guard struct {
	cfg      Config
	recorder Recorder
}

// New makes a guard, filling empty config fields with defaults.
func New(cfg Config, rec Recorder) *Guard {
	if cfg.ProtectedPrefix == "" {
		cfg.ProtectedPrefix = "/dashboard"
	}
	cfg.ProtectedPrefix = "/" + strings.Trim(cfg.ProtectedPrefix, "/")
	if cfg.LoginPath == "" {
		cfg.LoginPath = "/login"
	}
	if cfg.LandingPath == "" {
		cfg.LandingPath = cfg.ProtectedPrefix + "/profile"
	}
	return &Guard{cfg: cfg, recorder: rec}
}

// Config returns the effective routing table.
func (g *Guard) Config() Config {
	return g.cfg
}

// Decide returns the decision for a path given whether a session cookie is present.
func (g *Guard) Decide(path string, hasSession bool) Decision {
	switch {
	case g.isProtected(path) && !hasSession:
		return RedirectLogin
	case path == g.cfg.LoginPath && hasSession:
		return RedirectLanding
	default:
		return Pass
	}
}

// Middleware redirects by Decide and passes everything else through unmodified.
func (g *Guard) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch d := g.Decide(r.URL.Path, cookie.Present(r)); d {
		case RedirectLogin:
			g.redirect(w, r, g.cfg.LoginPath, d)
		case RedirectLanding:
			g.redirect(w, r, g.cfg.LandingPath, d)
		default:
			next.ServeHTTP(w, r)
		}
	})
}

func (g *Guard) redirect(w http.ResponseWriter, r *http.Request, target string, d Decision) {
	log.Printf("[DEBUG] guard redirect %s -> %s", r.URL.Path, target)
	if g.recorder != nil {
		g.recorder.GuardRedirect(d.String())
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// isProtected checks if path is the protected prefix itself or below it.
func (g *Guard) isProtected(path string) bool {
	return path == g.cfg.ProtectedPrefix || strings.HasPrefix(path, g.cfg.ProtectedPrefix+"/")
}
