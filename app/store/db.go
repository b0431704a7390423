package store

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	log "github.com/go-pkgz/lgr"
	_ "github.com/jackc/pgx/v5/stdlib" // postgresql driver
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // sqlite driver
)

// Store keeps the audit trail in SQLite or PostgreSQL.
type Store struct {
	db     *sqlx.DB
	dbType DBType
	mu     RWLocker
}

// auditTable is the audit_log definition, %[1]s is the id column type, %[2]s the big integer type.
const auditTable = `CREATE TABLE IF NOT EXISTS audit_log (
	id %[1]s,
	timestamp TEXT NOT NULL,
	route TEXT NOT NULL DEFAULT '',
	action TEXT NOT NULL,
	method TEXT NOT NULL DEFAULT '',
	path TEXT NOT NULL,
	actor TEXT NOT NULL,
	actor_type TEXT NOT NULL,
	result TEXT NOT NULL,
	status INTEGER NOT NULL DEFAULT 0,
	duration_ms %[2]s NOT NULL DEFAULT 0,
	ip TEXT,
	user_agent TEXT,
	request_id TEXT
)`

// auditIndexes maps index names to indexed audit_log columns.
var auditIndexes = map[string]string{
	"idx_audit_timestamp": "timestamp",
	"idx_audit_route":     "route",
	"idx_audit_path":      "path",
	"idx_audit_actor":     "actor",
}

// New opens the audit database and creates the schema.
// postgres:// and postgresql:// URLs select PostgreSQL, anything else is a SQLite file path.
func New(dbURL string) (*Store, error) {
	s := &Store{dbType: detectDBType(dbURL)}

	var err error
	if s.dbType == DBTypePostgres {
		s.db, err = connectPostgres(dbURL)
		s.mu = noopLocker{}
	} else {
		s.db, err = connectSQLite(dbURL)
		s.mu = &sync.RWMutex{}
	}
	if err != nil {
		return nil, err
	}

	if err := s.createSchema(); err != nil {
		_ = s.db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	log.Printf("[DEBUG] initialized %s audit store", s.dbType)
	return s, nil
}

func detectDBType(url string) DBType {
	lower := strings.ToLower(url)
	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") {
		return DBTypePostgres
	}
	return DBTypeSQLite
}

// connectSQLite opens a single-writer WAL database.
func connectSQLite(dbPath string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to sqlite: %w", err)
	}
	for _, pragma := range []string{"journal_mode=WAL", "busy_timeout=5000", "synchronous=NORMAL"} {
		if _, err := db.Exec("PRAGMA " + pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to set pragma %s: %w", pragma, err)
		}
	}
	db.SetMaxOpenConns(1)
	return db, nil
}

func connectPostgres(dbURL string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("pgx", dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	return db, nil
}

// createSchema creates audit_log and its indexes if missing.
func (s *Store) createSchema() error {
	idType, bigType := "INTEGER PRIMARY KEY AUTOINCREMENT", "INTEGER"
	if s.dbType == DBTypePostgres {
		idType, bigType = "BIGSERIAL PRIMARY KEY", "BIGINT"
	}

	stmts := []string{fmt.Sprintf(auditTable, idType, bigType)}
	for name, column := range auditIndexes {
		stmts = append(stmts, fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON audit_log(%s)", name, column))
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to execute %q: %w", strings.SplitN(stmt, "(", 2)[0], err)
		}
	}
	return nil
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping %s: %w", s.dbType, err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}

// adoptQuery rewrites ? placeholders to $N for PostgreSQL.
func (s *Store) adoptQuery(query string) string {
	if s.dbType != DBTypePostgres {
		return query
	}
	var sb strings.Builder
	sb.Grow(len(query) + 16)
	n := 0
	for _, part := range strings.SplitAfter(query, "?") {
		if p, ok := strings.CutSuffix(part, "?"); ok {
			n++
			sb.WriteString(p)
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(n))
			continue
		}
		sb.WriteString(part)
	}
	return sb.String()
}
