package audit

import (
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	log "github.com/go-pkgz/lgr"
	"github.com/go-pkgz/rest"

	"github.com/kycdash/screengate/app/enum"
	"github.com/kycdash/screengate/app/store"
)

const defaultMaxLimit = 10000

// Handler serves admin queries over the audit trail.
type Handler struct {
	store    Store
	token    string
	maxLimit int
}

// NewHandler makes a query handler guarded by adminToken. An empty token rejects every query.
func NewHandler(auditStore Store, adminToken string, maxLimit int) *Handler {
	if maxLimit <= 0 {
		maxLimit = defaultMaxLimit
	}
	return &Handler{store: auditStore, token: adminToken, maxLimit: maxLimit}
}

// QueryRequest is the body of POST /audit/query. Path and Route take a trailing * for prefix match.
type QueryRequest struct {
	Path      string `json:"path,omitempty"`
	Route     string `json:"route,omitempty"`      // proxy route name, e.g. "goaml.*"
	Actor     string `json:"actor,omitempty"`      // masked token as recorded
	ActorType string `json:"actor_type,omitempty"` // session, public
	Action    string `json:"action,omitempty"`     // read, create, update, delete
	Result    string `json:"result,omitempty"`     // success, denied, not_found, failed, unavailable
	From      string `json:"from,omitempty"`       // RFC3339
	To        string `json:"to,omitempty"`         // RFC3339
	Limit     int    `json:"limit,omitempty"`
	Offset    int    `json:"offset,omitempty"`
}

// QueryResponse is a page of audit entries.
type QueryResponse struct {
	Entries []store.AuditEntry `json:"entries"`
	Total   int                `json:"total"`
	Limit   int                `json:"limit"`
}

// HandleQuery handles POST /audit/query.
// The admin token goes in "Authorization: Bearer" or "X-Auth-Token".
func (h *Handler) HandleQuery(w http.ResponseWriter, r *http.Request) {
	if status, msg := h.authorize(r); status != http.StatusOK {
		rest.SendErrorJSON(w, r, log.Default(), status, nil, msg)
		return
	}

	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rest.SendErrorJSON(w, r, log.Default(), http.StatusBadRequest, err, "invalid request body")
		return
	}
	q, err := h.query(req)
	if err != nil {
		rest.SendErrorJSON(w, r, log.Default(), http.StatusBadRequest, err, "invalid query parameters")
		return
	}

	entries, total, err := h.store.QueryAudit(r.Context(), q)
	if err != nil {
		rest.SendErrorJSON(w, r, log.Default(), http.StatusInternalServerError, err, "failed to query audit log")
		return
	}
	if entries == nil {
		entries = []store.AuditEntry{}
	}
	log.Printf("[DEBUG] audit query %+v, %d of %d entries", req, len(entries), total)
	rest.RenderJSON(w, QueryResponse{Entries: entries, Total: total, Limit: q.Limit})
}

// authorize checks the admin token, returning 200 or the rejection status and message.
func (h *Handler) authorize(r *http.Request) (int, string) {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		token = r.Header.Get("X-Auth-Token")
	}
	token = strings.TrimSpace(token)

	switch {
	case token == "" || h.token == "":
		return http.StatusUnauthorized, "unauthorized"
	case subtle.ConstantTimeCompare([]byte(token), []byte(h.token)) != 1:
		return http.StatusForbidden, "admin access required"
	default:
		return http.StatusOK, ""
	}
}

// query validates req and converts it to store filters, capping the limit.
func (h *Handler) query(req QueryRequest) (q store.AuditQuery, err error) {
	q = store.AuditQuery{Path: req.Path, Route: req.Route, Actor: req.Actor, Offset: max(req.Offset, 0), Limit: req.Limit}
	if q.Limit <= 0 || q.Limit > h.maxLimit {
		q.Limit = h.maxLimit
	}

	if q.ActorType, err = parseField("actor_type", req.ActorType, enum.ParseActorType); err != nil {
		return store.AuditQuery{}, err
	}
	if q.Action, err = parseField("action", req.Action, enum.ParseAuditAction); err != nil {
		return store.AuditQuery{}, err
	}
	if q.Result, err = parseField("result", req.Result, enum.ParseAuditResult); err != nil {
		return store.AuditQuery{}, err
	}
	parseTime := func(s string) (time.Time, error) { return time.Parse(time.RFC3339, s) }
	if q.From, err = parseField("from", req.From, parseTime); err != nil {
		return store.AuditQuery{}, err
	}
	if q.To, err = parseField("to", req.To, parseTime); err != nil {
		return store.AuditQuery{}, err
	}
	return q, nil
}

// parseField parses an optional request field, empty values give the zero value.
func parseField[T any](name, value string, parse func(string) (T, error)) (T, error) {
	var zero T
	if value == "" {
		return zero, nil
	}
	v, err := parse(value)
	if err != nil {
		return zero, fmt.Errorf("invalid %s %q: %w", name, value, err)
	}
	return v, nil
}
