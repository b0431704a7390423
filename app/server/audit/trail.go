package audit

import (
	"net/http"
	"strings"
	"time"

	log "github.com/go-pkgz/lgr"
	"github.com/go-pkgz/rest/realip"

	"github.com/kycdash/screengate/app/enum"
	"github.com/kycdash/screengate/app/server/internal/cookie"
	"github.com/kycdash/screengate/app/store"
)

const anonymous = "anonymous"

// trail writes one audit entry per request under prefix.
type trail struct {
	store   Store
	prefix  string
	resolve RouteResolver
}

// Middleware records every request under pathPrefix once the handler is done,
// including requests rejected before reaching the backend. A nil resolve leaves Route empty.
func Middleware(auditStore Store, pathPrefix string, resolve RouteResolver) func(http.Handler) http.Handler {
	t := &trail{store: auditStore, prefix: pathPrefix, resolve: resolve}
	return t.wrap
}

func (t *trail) wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, t.prefix) {
			next.ServeHTTP(w, r)
			return
		}

		var route string
		if t.resolve != nil {
			route = t.resolve(r) // before serving, a reload may swap the table mid-request
		}
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w}
		next.ServeHTTP(sw, r)

		entry := newEntry(r, route, sw.code(), time.Since(start))
		if err := t.store.LogAudit(r.Context(), entry); err != nil {
			log.Printf("[WARN] failed to record audit entry for %s %s: %v", r.Method, r.URL.Path, err)
		}
	})
}

func newEntry(r *http.Request, route string, status int, took time.Duration) store.AuditEntry {
	entry := store.AuditEntry{
		Timestamp:  time.Now(),
		Route:      route,
		Action:     actionOf(r.Method),
		Method:     r.Method,
		Path:       r.URL.Path,
		Actor:      anonymous,
		ActorType:  enum.ActorTypePublic,
		Result:     resultOf(status),
		Status:     status,
		DurationMS: took.Milliseconds(),
		UserAgent:  r.UserAgent(),
		RequestID:  r.Header.Get("X-Request-ID"),
	}
	if token := cookie.Token(r); token != "" {
		entry.Actor, entry.ActorType = cookie.Mask(token), enum.ActorTypeSession
	}
	if ip, err := realip.Get(r); err == nil {
		entry.IP = ip
	}
	return entry
}

func actionOf(method string) enum.AuditAction {
	switch method {
	case http.MethodPost:
		return enum.AuditActionCreate
	case http.MethodPut, http.MethodPatch:
		return enum.AuditActionUpdate
	case http.MethodDelete:
		return enum.AuditActionDelete
	default:
		return enum.AuditActionRead
	}
}

// resultOf classifies the status sent to the browser.
func resultOf(status int) enum.AuditResult {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return enum.AuditResultDenied
	case http.StatusNotFound:
		return enum.AuditResultNotFound
	case http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return enum.AuditResultUnavailable
	}
	if status < 400 {
		return enum.AuditResultSuccess
	}
	return enum.AuditResultFailed
}
