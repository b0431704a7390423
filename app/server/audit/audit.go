// Package audit records proxied API calls into the audit trail and serves
// admin queries over it.
package audit

import (
	"context"
	"fmt"
	"net/http"

	"github.com/kycdash/screengate/app/store"
)

//go:generate moq -out mocks/store.go -pkg mocks -skip-ensure -fmt goimports . Store

// Store is the audit trail storage.
type Store interface {
	LogAudit(ctx context.Context, entry store.AuditEntry) error
	QueryAudit(ctx context.Context, q store.AuditQuery) ([]store.AuditEntry, int, error)
}

// RouteResolver names the proxy route serving a request, empty if none.
type RouteResolver func(r *http.Request) string

// NoopMiddleware passes requests through, used when the audit trail is off.
func NoopMiddleware(next http.Handler) http.Handler {
	return next
}

// statusWriter remembers the first status sent by the wrapped handler.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (sw *statusWriter) WriteHeader(code int) {
	if sw.status == 0 {
		sw.status = code
	}
	sw.ResponseWriter.WriteHeader(code)
}

func (sw *statusWriter) Write(b []byte) (int, error) {
	if sw.status == 0 {
		sw.status = http.StatusOK
	}
	n, err := sw.ResponseWriter.Write(b)
	if err != nil {
		return n, fmt.Errorf("write: %w", err)
	}
	return n, nil
}

// Unwrap exposes the underlying writer to http.ResponseController.
func (sw *statusWriter) Unwrap() http.ResponseWriter {
	return sw.ResponseWriter
}

// code returns the sent status, 200 if the handler wrote nothing.
func (sw *statusWriter) code() int {
	if sw.status == 0 {
		return http.StatusOK
	}
	return sw.status
}
