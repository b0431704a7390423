// Package web serves the server-rendered pages: the login form and the dashboard shell.
//
// Session state is explicit per request. The dashboard handler resolves the current user
// from the backend on every render and passes it into the template, nothing is kept globally.
package web

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"

	"github.com/go-pkgz/routegroup"

	"github.com/kycdash/screengate/app/backend"
	"github.com/kycdash/screengate/app/server/internal/cookie"
)

//go:generate moq -out mocks/backend.go -pkg mocks -skip-ensure -fmt goimports . Backend

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed static
var staticFS embed.FS

// Backend is the subset of the backend client used by pages.
type Backend interface {
	Login(ctx context.Context, creds backend.Credentials) (backend.Session, error)
	Logout(ctx context.Context, token string) error
	Me(ctx context.Context, token string) (backend.User, error)
}

// Config holds page routing and presentation settings.
type Config struct {
	ProtectedPrefix string // dashboard prefix, e.g. /dashboard
	LoginPath       string
	LandingPath     string
	Cookie          cookie.Settings
	AppName         string
	Version         string
}

// Page is a dashboard section shown in the navigation.
type Page struct {
	Slug  string
	Title string
}

// Session is the per-request authenticated state handed to templates.
type Session struct {
	User  backend.User
	Token string
}

// pages lists dashboard sections in navigation order.
var pages = []Page{
	{Slug: "profile", Title: "Profile"},
	{Slug: "companies", Title: "Companies"},
	{Slug: "products", Title: "Products"},
	{Slug: "customers", Title: "Customers"},
	{Slug: "onboarding", Title: "Onboarding"},
	{Slug: "screening", Title: "Screening"},
	{Slug: "goaml", Title: "GOAML Reports"},
	{Slug: "support", Title: "Support"},
}

// Handler renders pages.
type Handler struct {
	backend Backend
	cfg     Config
	tmpl    *template.Template
}

// New creates a page handler, filling empty config fields with defaults.
func New(b Backend, cfg Config) (*Handler, error) {
	if b == nil {
		return nil, fmt.Errorf("backend is required")
	}
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
	if cfg.AppName == "" {
		cfg.AppName = "screengate"
	}

	tmpl, err := template.New("").Funcs(templateFuncs()).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return &Handler{backend: b, cfg: cfg, tmpl: tmpl}, nil
}

// StaticFS returns the embedded static files rooted at the static directory.
func StaticFS() (fs.FS, error) {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("failed to get static fs: %w", err)
	}
	return sub, nil
}

// Register adds page routes to the router. The router is expected to run the edge guard.
func (h *Handler) Register(r *routegroup.Bundle) {
	r.HandleFunc("GET /{$}", h.handleRoot)
	r.HandleFunc("GET "+h.cfg.LoginPath, h.handleLoginPage)
	r.HandleFunc("POST "+h.cfg.LoginPath, h.handleLogin)
	r.HandleFunc("POST /logout", h.handleLogout)
	r.HandleFunc("GET "+h.cfg.ProtectedPrefix, h.handleRoot)
	r.HandleFunc("GET "+h.cfg.ProtectedPrefix+"/{page...}", h.handleDashboard)
}

// templateFuncs returns functions available in templates.
func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"initials": func(u backend.User) string {
			name := strings.Fields(u.DisplayName())
			var out []rune
			for _, part := range name {
				out = append(out, []rune(part)[0])
				if len(out) == 2 {
					break
				}
			}
			if len(out) == 0 {
				return "?"
			}
			return strings.ToUpper(string(out))
		},
	}
}

// findPage returns the page for the first segment of a dashboard sub-path.
func findPage(path string) (Page, bool) {
	slug, _, _ := strings.Cut(strings.Trim(path, "/"), "/")
	for _, p := range pages {
		if p.Slug == slug {
			return p, true
		}
	}
	return Page{}, false
}
