package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	log "github.com/go-pkgz/lgr"

	"github.com/kycdash/screengate/app/enum"
)

// defaultQueryLimit caps QueryAudit results when no limit is given.
const defaultQueryLimit = 10000

// auditColumns lists audit_log columns in insert and select order, id excluded.
var auditColumns = []string{"timestamp", "route", "action", "method", "path", "actor", "actor_type",
	"result", "status", "duration_ms", "ip", "user_agent", "request_id"}

// AuditEntry is a single proxied API call in the audit trail.
type AuditEntry struct {
	ID         int64            `json:"id"`
	Timestamp  time.Time        `json:"timestamp"`
	Route      string           `json:"route,omitempty"` // proxy route name, e.g. customers.get
	Action     enum.AuditAction `json:"action"`
	Method     string           `json:"method"`
	Path       string           `json:"path"`
	Actor      string           `json:"actor"` // masked session token or "anonymous"
	ActorType  enum.ActorType   `json:"actor_type"`
	Result     enum.AuditResult `json:"result"`
	Status     int              `json:"status"`
	DurationMS int64            `json:"duration_ms"`
	IP         string           `json:"ip,omitempty"`
	UserAgent  string           `json:"user_agent,omitempty"`
	RequestID  string           `json:"request_id,omitempty"`
}

// AuditQuery defines filters for querying the audit trail.
// Path and Route match exactly, or by prefix when they end with "*".
type AuditQuery struct {
	Path      string
	Route     string
	Actor     string
	ActorType enum.ActorType
	Action    enum.AuditAction
	Result    enum.AuditResult
	From      time.Time // inclusive
	To        time.Time // inclusive
	Limit     int
	Offset    int
}

// LogAudit appends an entry to the audit trail.
func (s *Store) LogAudit(ctx context.Context, entry AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(auditColumns)), ", ")
	query := s.adoptQuery(fmt.Sprintf("INSERT INTO audit_log (%s) VALUES (%s)",
		strings.Join(auditColumns, ", "), placeholders))

	if _, err := s.db.ExecContext(ctx, query,
		formatTime(entry.Timestamp), entry.Route, entry.Action.String(), entry.Method, entry.Path,
		entry.Actor, entry.ActorType.String(), entry.Result.String(), entry.Status, entry.DurationMS,
		entry.IP, entry.UserAgent, entry.RequestID,
	); err != nil {
		return fmt.Errorf("failed to insert audit entry: %w", err)
	}
	return nil
}

// QueryAudit returns entries matching q, newest first, and the total number of matches.
func (s *Store) QueryAudit(ctx context.Context, q AuditQuery) ([]AuditEntry, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var f filter
	f.match("path", q.Path)
	f.match("route", q.Route)
	f.equal("actor", q.Actor)
	f.equal("actor_type", q.ActorType.String())
	f.equal("action", q.Action.String())
	f.equal("result", q.Result.String())
	if !q.From.IsZero() {
		f.add("timestamp >= ?", formatTime(q.From))
	}
	if !q.To.IsZero() {
		f.add("timestamp <= ?", formatTime(q.To))
	}
	where := f.clause()

	var total int
	if err := s.db.GetContext(ctx, &total, s.adoptQuery("SELECT COUNT(*) FROM audit_log"+where), f.args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count audit entries: %w", err)
	}

	limit := q.Limit
	if limit <= 0 {
		limit = defaultQueryLimit
	}
	query := s.adoptQuery("SELECT id, " + strings.Join(auditColumns, ", ") + " FROM audit_log" + where +
		" ORDER BY timestamp DESC, id DESC LIMIT ? OFFSET ?")

	var rows []auditRow
	if err := s.db.SelectContext(ctx, &rows, query, append(f.args, limit, max(q.Offset, 0))...); err != nil {
		return nil, 0, fmt.Errorf("failed to query audit entries: %w", err)
	}
	entries := make([]AuditEntry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, r.entry())
	}
	return entries, total, nil
}

// DeleteAuditOlderThan removes entries recorded before olderThan and returns how many were removed.
func (s *Store) DeleteAuditOlderThan(ctx context.Context, olderThan time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, s.adoptQuery("DELETE FROM audit_log WHERE timestamp < ?"), formatTime(olderThan))
	if err != nil {
		return 0, fmt.Errorf("failed to delete old audit entries: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return n, nil
}

// filter accumulates WHERE conditions and their arguments.
type filter struct {
	conds []string
	args  []any
}

func (f *filter) add(cond string, arg any) {
	f.conds = append(f.conds, cond)
	f.args = append(f.args, arg)
}

// equal adds an exact match, skipped for empty values.
func (f *filter) equal(column, value string) {
	if value != "" {
		f.add(column+" = ?", value)
	}
}

// match adds an exact match, or a prefix match for values ending with "*".
func (f *filter) match(column, pattern string) {
	if prefix, ok := strings.CutSuffix(pattern, "*"); ok {
		f.add(column+" LIKE ?", prefix+"%")
		return
	}
	f.equal(column, pattern)
}

func (f *filter) clause() string {
	if len(f.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(f.conds, " AND ")
}

// formatTime renders timestamps as sortable UTC RFC3339 text, the same on both engines.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// auditRow is an audit_log row as scanned by sqlx.
type auditRow struct {
	ID         int64          `db:"id"`
	Timestamp  string         `db:"timestamp"`
	Route      string         `db:"route"`
	Action     string         `db:"action"`
	Method     string         `db:"method"`
	Path       string         `db:"path"`
	Actor      string         `db:"actor"`
	ActorType  string         `db:"actor_type"`
	Result     string         `db:"result"`
	Status     int            `db:"status"`
	DurationMS int64          `db:"duration_ms"`
	IP         sql.NullString `db:"ip"`
	UserAgent  sql.NullString `db:"user_agent"`
	RequestID  sql.NullString `db:"request_id"`
}

// entry converts the row, logging values that no longer parse instead of failing the query.
func (r auditRow) entry() AuditEntry {
	warn := func(field, value string, err error) {
		if err != nil {
			log.Printf("[WARN] bad audit %s %q in entry %d: %v", field, value, r.ID, err)
		}
	}
	ts, err := time.Parse(time.RFC3339, r.Timestamp)
	warn("timestamp", r.Timestamp, err)
	action, err := enum.ParseAuditAction(r.Action)
	warn("action", r.Action, err)
	actorType, err := enum.ParseActorType(r.ActorType)
	warn("actor_type", r.ActorType, err)
	result, err := enum.ParseAuditResult(r.Result)
	warn("result", r.Result, err)

	return AuditEntry{
		ID:         r.ID,
		Timestamp:  ts,
		Route:      r.Route,
		Action:     action,
		Method:     r.Method,
		Path:       r.Path,
		Actor:      r.Actor,
		ActorType:  actorType,
		Result:     result,
		Status:     r.Status,
		DurationMS: r.DurationMS,
		IP:         r.IP.String,
		UserAgent:  r.UserAgent.String,
		RequestID:  r.RequestID.String,
	}
}
