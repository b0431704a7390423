// Package store provides audit trail storage on SQLite or PostgreSQL.
package store

// DBType identifies the database engine.
type DBType int

// supported database types
const (
	DBTypeSQLite DBType = iota
	DBTypePostgres
)

// String returns the engine name.
func (t DBType) String() string {
	if t == DBTypePostgres {
		return "postgres"
	}
	return "sqlite"
}

// RWLocker is a subset of sync.RWMutex used to serialize SQLite access.
type RWLocker interface {
	Lock()
	Unlock()
	RLock()
	RUnlock()
}

// noopLocker is used for PostgreSQL which handles concurrency itself.
type noopLocker struct{}

func (noopLocker) Lock()    {}
func (noopLocker) Unlock()  {}
func (noopLocker) RLock()   {}
func (noopLocker) RUnlock() {}
