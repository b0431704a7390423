package web

import (
	"errors"
	"net/http"
	"strings"

	log "github.com/go-pkgz/lgr"

	"github.com/kycdash/screengate/app/backend"
	"github.com/kycdash/screengate/app/server/internal/cookie"
)

// templateData is shared by all page templates.
type templateData struct {
	AppName   string
	Version   string
	LoginPath string
	Prefix    string
	Session   *Session
	Pages     []Page
	Active    Page
	SubPath   string
	Email     string
	Error     string
	Status    int
}

func (h *Handler) data() templateData {
	return templateData{
		AppName:   h.cfg.AppName,
		Version:   h.cfg.Version,
		LoginPath: h.cfg.LoginPath,
		Prefix:    h.cfg.ProtectedPrefix,
		Pages:     pages,
	}
}

// handleRoot sends visitors to the landing page, the guard takes care of anonymous ones.
func (h *Handler) handleRoot(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, h.cfg.LandingPath, http.StatusSeeOther)
}

// handleLoginPage renders the login form.
func (h *Handler) handleLoginPage(w http.ResponseWriter, _ *http.Request) {
	h.render(w, http.StatusOK, "login.html", h.data())
}

// handleLogin posts the form credentials to the backend and sets the session cookie.
func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		data := h.data()
		data.Error = "Invalid form submission"
		h.render(w, http.StatusBadRequest, "login.html", data)
		return
	}

	creds := backend.Credentials{
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
	}
	if creds.Email == "" || creds.Password == "" {
		data := h.data()
		data.Email = creds.Email
		data.Error = "Email and password are required"
		h.render(w, http.StatusBadRequest, "login.html", data)
		return
	}

	sess, err := h.backend.Login(r.Context(), creds)
	if err != nil {
		status, msg := loginFailure(err)
		log.Printf("[WARN] login failed for %s: %v", creds.Email, err)
		data := h.data()
		data.Email = creds.Email
		data.Error = msg
		h.render(w, status, "login.html", data)
		return
	}

	h.cfg.Cookie.Set(w, sess.Token, sess.TTL)
	log.Printf("[INFO] login succeeded for %s", creds.Email)
	http.Redirect(w, r, h.cfg.LandingPath, http.StatusSeeOther)
}

// handleLogout invalidates the backend session and clears the cookie.
// Backend failures are logged only, the cookie is always cleared.
func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if token := cookie.Token(r); token != "" {
		if err := h.backend.Logout(r.Context(), token); err != nil {
			log.Printf("[WARN] backend logout failed for %s: %v", cookie.Mask(token), err)
		}
	}
	h.cfg.Cookie.Clear(w)
	http.Redirect(w, r, h.cfg.LoginPath, http.StatusSeeOther)
}

// handleDashboard renders the dashboard shell for the requested section.
func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	sub := r.PathValue("page")
	if strings.Trim(sub, "/") == "" {
		http.Redirect(w, r, h.cfg.LandingPath, http.StatusSeeOther)
		return
	}

	token := cookie.Token(r)
	user, err := h.backend.Me(r.Context(), token)
	switch {
	case errors.Is(err, backend.ErrUnauthorized):
		log.Printf("[DEBUG] session rejected by backend, redirect to %s", h.cfg.LoginPath)
		h.cfg.Cookie.Clear(w)
		http.Redirect(w, r, h.cfg.LoginPath, http.StatusSeeOther)
		return
	case err != nil:
		log.Printf("[ERROR] failed to load current user: %v", err)
		data := h.data()
		data.Status = http.StatusServiceUnavailable
		data.Error = "The compliance service is unavailable, try again later"
		h.render(w, http.StatusServiceUnavailable, "error.html", data)
		return
	}

	data := h.data()
	data.Session = &Session{User: user, Token: token}
	page, ok := findPage(sub)
	if !ok {
		data.Status = http.StatusNotFound
		data.Error = "Page not found"
		h.render(w, http.StatusNotFound, "error.html", data)
		return
	}
	data.Active = page
	data.SubPath = strings.Trim(sub, "/")
	h.render(w, http.StatusOK, "dashboard.html", data)
}

// render writes a template with the given status.
func (h *Handler) render(w http.ResponseWriter, status int, name string, data templateData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := h.tmpl.ExecuteTemplate(w, name, data); err != nil {
		log.Printf("[ERROR] failed to execute template %s: %v", name, err)
	}
}

// loginFailure maps a backend login error to a status and a message for the form.
func loginFailure(err error) (int, string) {
	var respErr *backend.ResponseError
	switch {
	case errors.Is(err, backend.ErrUnauthorized), errors.Is(err, backend.ErrForbidden):
		return http.StatusUnauthorized, "Invalid email or password"
	case errors.Is(err, backend.ErrTimeout), errors.Is(err, backend.ErrUnreachable):
		return http.StatusServiceUnavailable, "The compliance service is unavailable, try again later"
	case errors.Is(err, backend.ErrNoToken):
		return http.StatusBadGateway, "Login response did not include a session token"
	case errors.As(err, &respErr) && respErr.Message != "":
		return respErr.StatusCode, respErr.Message
	default:
		return http.StatusBadGateway, "Login failed"
	}
}
